package tasks

import (
	"fmt"
	"sort"
	"sync"
)

// Store persists tasks. Implementations must be safe for concurrent use.
type Store interface {
	Put(task Task) error
	Get(id string) (Task, bool)
	// All returns every task, newest first.
	All() []Task
	Delete(id string) error
}

// MemoryStore keeps tasks in a map. Tasks do not survive a restart, matching
// their advisory nature; the library itself is the source of truth.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]Task)}
}

func (s *MemoryStore) Put(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
	return nil
}

func (s *MemoryStore) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	return task, ok
}

func (s *MemoryStore) All() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		all = append(all, task)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt > all[j].CreatedAt
		}
		return all[i].ID > all[j].ID
	})
	return all
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("task %q not found", id)
	}
	delete(s.tasks, id)
	return nil
}
