package events

import (
	"encoding/json"
	"time"

	"campbook/internal/domain/event"
	"campbook/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	specVersion = "1.0"
	contentType = "application/json"
	// Source identifies this service in every envelope.
	Source = "campbook/booking"
)

// Envelope is the CloudEvents 1.0 structured-mode JSON wrapper.
type Envelope struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

// Type is the versioned event type, e.g. "hold.created.v1".
func Type(e event.Event) string {
	return e.Name() + ".v1"
}

func NewEnvelope(e event.Event) (Envelope, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Envelope{}, errs.Wrapf(err, "failed to encode %s", e.Name())
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Envelope{}, errs.Wrap(err, "failed to generate event id")
	}
	return Envelope{
		SpecVersion:     specVersion,
		ID:              id.String(),
		Type:            Type(e),
		Source:          Source,
		Subject:         e.AggregateID(),
		Time:            e.OccurredAt().UTC(),
		DataContentType: contentType,
		Data:            data,
	}, nil
}
