package event

import (
	"slices"
	"time"
)

// Event is something that happened to an aggregate and is published after
// the change is committed.
type Event interface {
	Name() string
	AggregateID() string
	OccurredAt() time.Time
}

// Recorder collects events raised by an aggregate until they are drained.
type Recorder struct {
	pending []Event
}

func (r *Recorder) Record(e Event) {
	if e == nil {
		return
	}
	r.pending = append(r.pending, e)
}

func (r *Recorder) Pending() []Event {
	return slices.Clone(r.pending)
}

// Drain returns the pending events and forgets them.
func (r *Recorder) Drain() []Event {
	out := r.pending
	r.pending = nil
	return out
}
