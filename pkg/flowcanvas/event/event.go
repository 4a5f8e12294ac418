// Package event delivers user-facing notices from the flow engine to the
// presentation layer, which renders them as toasts.
//
// Delivery is synchronous: Publish returns after every matching handler ran,
// in subscription order. This keeps notices ordered with the mutations that
// caused them.
package event

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types published by a flowcanvas Session.
const (
	TypeFlowSaved          = "flow.saved"
	TypeFlowSaveFailed     = "flow.save_failed"
	TypeFlowRestored       = "flow.restored"
	TypeFlowRestoreFailed  = "flow.restore_failed"
	TypeFlowMalformed      = "flow.malformed"
	TypeConnectionRejected = "connection.rejected"
)

// Level is the severity of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notice is the payload shown to the user.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Event is an immutable notification.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Notice    Notice    `json:"notice"`
}

// New creates an event with a fresh id and the current time.
func New(eventType, source string, n Notice) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Notice:    n,
	}
}

// Handler receives published events.
type Handler func(Event)

type subscriber struct {
	id      int
	types   map[string]bool // empty = all types
	handler Handler
}

// Bus fans events out to subscribers. The zero value is ready to use.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscriber
	nextID int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for the given event types, or for every
// type when none are given. The returned func removes the subscription.
func (b *Bus) Subscribe(handler Handler, types ...string) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s := subscriber{id: b.nextID, handler: handler}
	if len(types) > 0 {
		s.types = make(map[string]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
	b.subs = append(b.subs, s)

	id := s.id
	return func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers evt to every matching subscriber. A nil bus drops it.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if len(s.types) == 0 || s.types[evt.Type] {
			s.handler(evt)
		}
	}
}

// Recorder collects events; handy for tests and polling clients.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Handle implements Handler.
func (r *Recorder) Handle(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Drain returns and forgets everything recorded so far.
func (r *Recorder) Drain() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}
