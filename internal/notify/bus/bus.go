// Package bus provides an in-process fan-out implementation of
// notify.Notifier for callers embedding the engine, each subscriber gets its
// own buffered channel.
package bus

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/edusys/delego/internal/notify"
)

// Bus fans events out to all subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan notify.Event
}

var _ notify.Notifier = (*Bus)(nil)

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[string]chan notify.Event),
	}
}

// Subscribe registers a new subscriber and returns its ID and channel.
func (b *Bus) Subscribe(bufSize int) (string, <-chan notify.Event) {
	id := ulid.Make().String()
	ch := make(chan notify.Event, bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Notify delivers the events to every subscriber. A subscriber with a full
// buffer misses the event instead of blocking the caller.
func (b *Bus) Notify(ctx context.Context, events ...notify.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ev := range events {
		for _, ch := range b.subscribers {
			select {
			case ch <- ev:
			default:
			}
		}
	}

	return nil
}
