package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yfmeii/media-scraper-web/pkg/pagination"
)

// DefaultKeepRecent is how many terminal tasks Cleanup retains.
const DefaultKeepRecent = 50

// Registry owns task lifecycle transitions. All mutation goes through it so
// the state machine is enforced in one place regardless of the store backend.
type Registry struct {
	mu         sync.Mutex
	store      Store
	keepRecent int
}

type RegistryOption func(*Registry)

func WithKeepRecent(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.keepRecent = n
		}
	}
}

func NewRegistry(store Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:      store,
		keepRecent: DefaultKeepRecent,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a new pending task and returns it.
func (r *Registry) Create(taskType Type, target string) Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	task := Task{
		ID:        uuid.New().String(),
		Type:      taskType,
		Target:    target,
		Status:    StatusPending,
		Logs:      []string{},
		CreatedAt: nowMillis(),
	}
	r.store.Put(task)
	return task
}

// Start moves a pending task to running.
func (r *Registry) Start(id string) (Task, error) {
	return r.transition(id, StatusRunning, func(task *Task) {
		task.StartedAt = nowMillis()
	})
}

// Update sets progress and an optional status message on a running task.
func (r *Registry) Update(id string, progress int, message string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.store.Get(id)
	if !ok {
		return Task{}, fmt.Errorf("task %q not found", id)
	}

	if progress >= 0 {
		if progress > 100 {
			progress = 100
		}
		task.Progress = progress
	}
	if message != "" {
		task.Message = message
	}

	return task, r.store.Put(task)
}

// AppendLog records a timestamped log line on a task. Unknown ids are
// ignored; logging must never fail the operation being logged.
func (r *Registry) AppendLog(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.store.Get(id)
	if !ok {
		return
	}
	task.Logs = append(task.Logs, fmt.Sprintf("[%s] %s", time.Now().UTC().Format("15:04:05"), message))
	r.store.Put(task)
}

// Complete finishes a running task. Success forces progress to 100; failure
// preserves whatever progress was reached and records the message as error.
func (r *Registry) Complete(id string, success bool, message string) (Task, error) {
	status := StatusFailed
	if success {
		status = StatusSuccess
	}

	return r.transition(id, status, func(task *Task) {
		task.FinishedAt = nowMillis()
		task.Message = message
		if success {
			task.Progress = 100
			task.Error = ""
		} else {
			task.Error = message
		}
	})
}

// Cancel aborts a task that has not started yet.
func (r *Registry) Cancel(id string) (Task, error) {
	return r.transition(id, StatusCancelled, func(task *Task) {
		task.FinishedAt = nowMillis()
		task.Message = "task cancelled by user"
	})
}

func (r *Registry) transition(id string, to Status, mutate func(*Task)) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.store.Get(id)
	if !ok {
		return Task{}, fmt.Errorf("task %q not found", id)
	}

	m := lifecycle(task.Status)
	if err := m.Transition(to); err != nil {
		return Task{}, fmt.Errorf("task %q cannot move from %s to %s: %w", id, task.Status, to, err)
	}

	task.Status = m.Current()
	mutate(&task)
	return task, r.store.Put(task)
}

// Get returns a task by id.
func (r *Registry) Get(id string) (Task, bool) {
	return r.store.Get(id)
}

// List returns all tasks, newest first.
func (r *Registry) List() []Task {
	return r.store.All()
}

// ListPage returns one page of tasks, optionally filtered by status, plus
// paging metadata.
func (r *Registry) ListPage(status Status, params pagination.Params) ([]Task, pagination.Meta) {
	matched := []Task{}
	for _, task := range r.store.All() {
		if status != "" && task.Status != status {
			continue
		}
		matched = append(matched, task)
	}
	offset, limit := params.Window(len(matched))
	return matched[offset : offset+limit], params.BuildMeta(len(matched))
}

// Active returns tasks that are pending or running.
func (r *Registry) Active() []Task {
	var active []Task
	for _, task := range r.store.All() {
		if !task.Status.Terminal() {
			active = append(active, task)
		}
	}
	return active
}

// Stats counts tasks by status.
func (r *Registry) Stats() Stats {
	var stats Stats
	for _, task := range r.store.All() {
		switch task.Status {
		case StatusPending:
			stats.Pending++
		case StatusRunning:
			stats.Running++
		case StatusSuccess:
			stats.Success++
		case StatusFailed:
			stats.Failed++
		case StatusCancelled:
			stats.Cancelled++
		}
		stats.Total++
	}
	return stats
}

// Cleanup drops terminal tasks beyond the keep-recent window and returns how
// many were removed. Active tasks are never touched.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var terminal []Task
	for _, task := range r.store.All() {
		if task.Status.Terminal() {
			terminal = append(terminal, task)
		}
	}

	removed := 0
	for _, task := range terminal[min(r.keepRecent, len(terminal)):] {
		if err := r.store.Delete(task.ID); err == nil {
			removed++
		}
	}
	return removed
}
