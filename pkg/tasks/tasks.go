// Package tasks tracks long-running scrape operations. Tasks live in a store
// behind an interface so the in-memory default can later be swapped for a
// persistent one without touching the registry.
package tasks

import (
	"math"
	"time"

	"github.com/yfmeii/media-scraper-web/pkg/machine"
)

// Status is a task lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

// lifecycle returns a state machine positioned at the given status. Pending
// tasks may start or be cancelled; running tasks may only finish.
func lifecycle(current Status) *machine.Machine[Status] {
	return machine.New(current,
		machine.From(StatusPending).To(StatusRunning, StatusCancelled),
		machine.From(StatusRunning).To(StatusSuccess, StatusFailed),
	)
}

// Type categorizes what a task is doing.
type Type string

const (
	TypeScrape     Type = "scrape"
	TypeProcess    Type = "process"
	TypeRefresh    Type = "refresh"
	TypeSupplement Type = "supplement"
	TypeFixAssets  Type = "fix-assets"
)

// Task is one tracked operation. Timestamps are unix milliseconds to match
// what the web clients expect.
type Task struct {
	ID         string   `json:"id"`
	Type       Type     `json:"type"`
	Target     string   `json:"target"`
	Status     Status   `json:"status"`
	Progress   int      `json:"progress"`
	Message    string   `json:"message,omitempty"`
	Logs       []string `json:"logs"`
	CreatedAt  int64    `json:"createdAt"`
	StartedAt  int64    `json:"startedAt,omitempty"`
	FinishedAt int64    `json:"finishedAt,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Stats are lifecycle counts over the whole store, computed on demand.
type Stats struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Success   int `json:"success"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"`
}

// BatchStatus summarizes a batch run for polling clients.
type BatchStatus struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Failed  int `json:"failed"`
	Percent int `json:"percent"`
}

// BatchProgress computes batch completion including failed items; a batch
// with every item failed still reaches 100 percent.
func BatchProgress(done, failed, total int) BatchStatus {
	status := BatchStatus{Total: total, Done: done, Failed: failed}
	if total > 0 {
		status.Percent = int(math.Round(float64(done+failed) / float64(total) * 100))
	}
	return status
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
