package components

import (
	"context"
	"log/slog"

	"campbook/internal/infra/events"
	"campbook/internal/infra/payment"
	"campbook/internal/infra/redislock"
	"campbook/internal/pkg/config"
	"campbook/internal/usecase/shared"

	"go.uber.org/fx"
)

var IntegrationModule = fx.Module("integration",
	fx.Provide(
		NewSiteLocker,
		NewEventPublisher,
		NewPaymentVerifier,
	),
)

// NewSiteLocker returns nil when Redis is not configured or unreachable.
func NewSiteLocker(lc fx.Lifecycle, cfg config.Config) shared.SiteLocker {
	client := redislock.NewClient(cfg.Redis)
	if client == nil {
		slog.Info("distributed site lock disabled")
		return nil
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})
	return redislock.NewSiteLocker(client, cfg.Redis.LockTTL)
}

func NewEventPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (shared.EventPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		slog.Info("no kafka brokers configured, booking events go to the log")
		return events.NewLogPublisher(logger), nil
	}
	pub, err := events.NewKafkaPublisher(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return pub.Close()
		},
	})
	slog.Info("publishing booking events to kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return pub, nil
}

func NewPaymentVerifier(cfg config.Config) shared.PaymentVerifier {
	return payment.NewPrefixVerifier(cfg.Payment.IntentPrefix)
}
