package tasks

import (
	"math"
	"sync"
)

// EventType tags a progress event.
type EventType string

const (
	EventStart    EventType = "start"
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one progress update published to stream subscribers.
type Event struct {
	Type    EventType `json:"type"`
	TaskID  string    `json:"taskId"`
	Item    string    `json:"item,omitempty"`
	Current int       `json:"current"`
	Total   int       `json:"total"`
	Percent int       `json:"percent"`
	Message string    `json:"message,omitempty"`
}

const subscriberBuffer = 16

// Bus fans progress events out to subscribers. Delivery is best effort: a
// subscriber that stops draining its channel loses progress events rather
// than blocking the publisher. Completion and error events displace the
// oldest queued event instead of being dropped.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called to
// release the subscription; the channel is closed by it.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish delivers an event to all current subscribers without blocking.
// Progress events are dropped when a subscriber's buffer is full; complete
// and error events evict the oldest queued event instead, so a subscriber
// that eventually drains still observes how the task ended.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keep := event.Type == EventComplete || event.Type == EventError
	for ch := range b.subs {
		select {
		case ch <- event:
			continue
		default:
		}
		if !keep {
			continue
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}

// Emit publishes an event with the percent derived from current/total.
func (b *Bus) Emit(taskID string, eventType EventType, current, total int, item, message string) {
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(current) / float64(total) * 100))
	}
	b.Publish(Event{
		Type:    eventType,
		TaskID:  taskID,
		Item:    item,
		Current: current,
		Total:   total,
		Percent: percent,
		Message: message,
	})
}
