package event_test

import (
	"testing"
	"time"

	"campbook/internal/domain/event"

	"github.com/stretchr/testify/assert"
)

type pinged struct{ at time.Time }

func (p pinged) Name() string          { return "test.pinged" }
func (p pinged) AggregateID() string   { return "agg-1" }
func (p pinged) OccurredAt() time.Time { return p.at }

func TestRecorder(t *testing.T) {
	var r event.Recorder
	r.Record(nil)
	assert.Empty(t, r.Pending())

	at := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	r.Record(pinged{at: at})
	r.Record(pinged{at: at.Add(time.Second)})

	pending := r.Pending()
	assert.Len(t, pending, 2)
	pending[0] = nil
	assert.NotNil(t, r.Pending()[0])

	drained := r.Drain()
	assert.Len(t, drained, 2)
	assert.Equal(t, "test.pinged", drained[1].Name())
	assert.Equal(t, at.Add(time.Second), drained[1].OccurredAt())
	assert.Empty(t, r.Pending())
	assert.Empty(t, r.Drain())
}
