package events

import (
	"sync"
	"time"

	"venuehouse/internal/logger"
)

type EventType string

const (
	EventHoldCreated      EventType = "hold_created"
	EventHoldDeleted      EventType = "hold_deleted"
	EventHoldDatesChanged EventType = "hold_dates_changed"
	EventHoldUpgraded     EventType = "hold_upgraded"
	EventStatusChanged    EventType = "status_changed"
)

// Event is an outbound notice emitted after a transition has committed.
// Consumers run asynchronously; the emitting operation never waits on
// them and never learns their outcome.
type Event struct {
	Type       EventType `json:"type"`
	RequestID  int64     `json:"request_id"`
	ResourceID int64     `json:"resource_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

// Bus is a small in-process fan-out. Publish never blocks: a subscriber
// that cannot keep up loses events, which is acceptable because every
// consumer is idempotent against a full resync.
type Bus struct {
	mu   sync.RWMutex
	subs []chan Event
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel receiving all future events.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the event to every subscriber without blocking.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			logger.Warn("event dropped, subscriber queue full", "type", string(e.Type), "request_id", e.RequestID)
		}
	}
}
