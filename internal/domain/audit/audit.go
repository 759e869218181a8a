package audit

import "time"

// Event is one auditable action: who did what to which entity, and why.
type Event struct {
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Detail     map[string]any
	At         time.Time
}

// Sink receives audit events. Record must not block the caller; a sink that
// cannot keep up drops events rather than stalling the business operation.
type Sink interface {
	Record(event Event)
}

// NopSink discards every event. Used in tests.
type NopSink struct{}

func (NopSink) Record(Event) {}
