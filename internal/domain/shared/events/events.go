// Package events carries facts recorded by aggregates to the outbox.
package events

import "time"

// DomainEvent is encoded to JSON as is, so implementations expose their
// payload through exported fields only.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder is embedded by aggregates. Pending events survive until the
// application layer collects them after a successful save.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(evs ...DomainEvent) {
	for _, ev := range evs {
		if ev != nil {
			r.pending = append(r.pending, ev)
		}
	}
}

func (r *EventRecorder) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}

// Generic is an event without a dedicated type.
type Generic struct {
	Name      string    `json:"name"`
	Aggregate string    `json:"aggregate"`
	At        time.Time `json:"at"`
}

func (e Generic) EventName() string     { return e.Name }
func (e Generic) AggregateID() string   { return e.Aggregate }
func (e Generic) OccurredAt() time.Time { return e.At }
