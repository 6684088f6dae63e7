package events

import (
	"context"
	"sync"
)

// Journal keeps the most recent events in memory.
type Journal struct {
	mu     sync.Mutex
	limit  int
	events []Event
}

// NewJournal constructs a journal retaining at most limit events. A non-positive limit keeps 100.
func NewJournal(limit int) *Journal {
	if limit <= 0 {
		limit = 100
	}
	return &Journal{limit: limit}
}

// Append implements EventStore.
func (j *Journal) Append(_ context.Context, event Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, event)
	if over := len(j.events) - j.limit; over > 0 {
		j.events = append([]Event(nil), j.events[over:]...)
	}
	return nil
}

// Recent returns retained events, newest first, optionally filtered by topic.
func (j *Journal) Recent(topic string) []Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Event, 0, len(j.events))
	for i := len(j.events) - 1; i >= 0; i-- {
		if topic != "" && j.events[i].Topic != topic {
			continue
		}
		out = append(out, j.events[i])
	}
	return out
}
