package scraper

import "context"

// ActionType labels one planned filesystem effect.
type ActionType string

const (
	ActionMove           ActionType = "move"
	ActionCreateNFO      ActionType = "create-nfo"
	ActionDownloadPoster ActionType = "download-poster"
	ActionCreateDir      ActionType = "create-dir"
)

// Action is one entry in a scrape plan.
type Action struct {
	Type          ActionType `json:"type"`
	Source        string     `json:"source,omitempty"`
	Destination   string     `json:"destination"`
	WillOverwrite bool       `json:"willOverwrite"`
}

// ImpactSummary aggregates a plan for confirmation UIs.
type ImpactSummary struct {
	FilesMoving         int      `json:"filesMoving"`
	NFOCreating         int      `json:"nfoCreating"`
	NFOOverwriting      int      `json:"nfoOverwriting"`
	PostersDownloading  int      `json:"postersDownloading"`
	DirectoriesCreating []string `json:"directoriesCreating"`
}

// Plan is the full predicted effect of processing a set of items.
type Plan struct {
	Actions       []Action      `json:"actions"`
	ImpactSummary ImpactSummary `json:"impactSummary"`
}

// step pairs a plan action with the closure that performs it. Preview stops
// at the actions; process runs the closures in order.
type step struct {
	action Action
	run    func(context.Context) error
}

// plan accumulates steps for one or more items.
type plan struct {
	steps []step
}

func (p *plan) add(action Action, run func(context.Context) error) {
	p.steps = append(p.steps, step{action: action, run: run})
}

// Plan flattens the steps into the client-facing shape.
func (p *plan) Plan() *Plan {
	out := &Plan{
		Actions: make([]Action, 0, len(p.steps)),
		ImpactSummary: ImpactSummary{
			DirectoriesCreating: []string{},
		},
	}
	for _, st := range p.steps {
		out.Actions = append(out.Actions, st.action)
		switch st.action.Type {
		case ActionMove:
			out.ImpactSummary.FilesMoving++
		case ActionCreateNFO:
			if st.action.WillOverwrite {
				out.ImpactSummary.NFOOverwriting++
			} else {
				out.ImpactSummary.NFOCreating++
			}
		case ActionDownloadPoster:
			out.ImpactSummary.PostersDownloading++
		case ActionCreateDir:
			out.ImpactSummary.DirectoriesCreating = append(out.ImpactSummary.DirectoriesCreating, st.action.Destination)
		}
	}
	return out
}

// execute runs every step in order, stopping at the first failure.
func (p *plan) execute(ctx context.Context) error {
	for _, st := range p.steps {
		if err := st.run(ctx); err != nil {
			return err
		}
	}
	return nil
}
