package events

import (
	"context"
	"log/slog"

	"campbook/internal/domain/event"
)

// LogPublisher writes events to the structured log. Used when no broker is
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, evts ...event.Event) error {
	for _, e := range evts {
		p.logger.InfoContext(ctx, "booking event",
			"type", Type(e),
			"aggregate_id", e.AggregateID(),
			"occurred_at", e.OccurredAt(),
			"payload", e)
	}
	return nil
}
