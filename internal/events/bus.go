// Package events provides the in-process publish/subscribe bus that
// connects the engine to the SSE stream and background jobs.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a class of event on the bus
type EventType string

const (
	// PositionsImported - a brokerage export was parsed and loaded
	PositionsImported EventType = "positions.imported"
	// GroupsChanged - a group was created, renamed, or deleted
	GroupsChanged EventType = "groups.changed"
	// TickerAssigned - a ticker moved between groups (or to unassigned)
	TickerAssigned EventType = "ticker.assigned"
	// TickerRemoved - a ticker was removed from the workspace
	TickerRemoved EventType = "ticker.removed"
	// ReorderPending - rows were marked dirty, a settle timer is running
	ReorderPending EventType = "reorder.pending"
	// ReorderSettled - display order snapped to canonical rank order
	ReorderSettled EventType = "reorder.settled"
	// SnapshotSaved - a view snapshot was written to history
	SnapshotSaved EventType = "snapshot.saved"
	// SettingsChanged - a setting was updated through the API
	SettingsChanged EventType = "settings.changed"
)

// Event is the envelope delivered to subscribers
type Event struct {
	Type      EventType   `json:"type"`
	Module    string      `json:"module"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Handler processes a published event. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(*Event)

type subscription struct {
	id int
	fn Handler
}

// Bus is a minimal in-process pub/sub dispatcher. Subscribers register per
// event type; publishers fire typed payloads. Dispatch is synchronous.
type Bus struct {
	mu     sync.RWMutex
	subs   map[EventType][]subscription
	nextID int
	log    zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[EventType][]subscription),
		log:  log.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers a handler for an event type and returns an
// unsubscribe function. Safe for concurrent use.
func (b *Bus) Subscribe(t EventType, fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[t] = append(b.subs[t], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[t]
		for i, sub := range list {
			if sub.id == id {
				b.subs[t] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// Publish builds an event from a typed payload and dispatches it to every
// subscriber of the payload's type.
func (b *Bus) Publish(module string, data EventData) {
	b.publish(&Event{
		Type:      data.EventType(),
		Module:    module,
		Timestamp: time.Now(),
		Data:      data,
	})
}

func (b *Bus) publish(event *Event) {
	b.mu.RLock()
	list := b.subs[event.Type]
	handlers := make([]Handler, len(list))
	for i, sub := range list {
		handlers[i] = sub.fn
	}
	b.mu.RUnlock()

	b.log.Debug().
		Str("event_type", string(event.Type)).
		Str("module", event.Module).
		Int("subscribers", len(handlers)).
		Msg("Publishing event")

	for _, fn := range handlers {
		fn(event)
	}
}
