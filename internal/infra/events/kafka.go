package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"campbook/internal/domain/event"
	"campbook/internal/pkg/config"
	"campbook/internal/pkg/errs"

	"github.com/IBM/sarama"
)

// KafkaPublisher writes booking events to one topic keyed by aggregate id,
// so the events of a reservation stay ordered within a partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Version = sarama.V2_8_0_0
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Idempotent = true
	sc.Producer.Return.Successes = true
	sc.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create kafka producer")
	}
	return NewKafkaPublisherWithProducer(producer, cfg.Topic), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evts ...event.Event) error {
	if len(evts) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msgs := make([]*sarama.ProducerMessage, 0, len(evts))
	for _, e := range evts {
		env, err := NewEnvelope(e)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(env)
		if err != nil {
			return errs.Wrapf(err, "failed to encode envelope for %s", e.Name())
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(e.AggregateID()),
			Value: sarama.ByteEncoder(payload),
			Headers: []sarama.RecordHeader{
				{Key: []byte("ce_type"), Value: []byte(env.Type)},
				{Key: []byte("ce_id"), Value: []byte(env.ID)},
				{Key: []byte("content-type"), Value: []byte(contentType)},
			},
		})
	}

	if err := p.producer.SendMessages(msgs); err != nil {
		return errs.Wrapf(err, "failed to publish %d events to %s", len(msgs), p.topic)
	}
	slog.Debug("published booking events", "topic", p.topic, "count", len(msgs))
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
