package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata. Concrete events embed it and add
// their own EventName plus payload fields.
type BaseEvent struct {
	ID        uuid.UUID
	Timestamp time.Time
}

// NewBaseEvent assigns a fresh event identity with the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// EventHolder is implemented by entities that buffer domain events until the
// enclosing unit of work commits.
type EventHolder interface {
	Events() []Event
	ClearEvents()
}

// EventRecorder is an embeddable event buffer. It is never persisted; models
// embedding it should tag the field with gorm:"-".
type EventRecorder struct {
	pending []Event
}

// Record appends an event to the buffer.
func (r *EventRecorder) Record(e Event) {
	r.pending = append(r.pending, e)
}

// Events returns a snapshot of the buffered events in insertion order.
func (r *EventRecorder) Events() []Event {
	if len(r.pending) == 0 {
		return nil
	}
	out := make([]Event, len(r.pending))
	copy(out, r.pending)
	return out
}

// ClearEvents empties the buffer.
func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}

var _ EventHolder = (*EventRecorder)(nil)
