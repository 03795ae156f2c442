// Package notify mirrors audit events onto a Kafka topic so downstream
// consumers (mailers, dashboards) can react to registration decisions. The
// side channel is best-effort: a broker outage never blocks or rolls back a
// registration write.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"regdesk/internal/audit"
)

const produceTimeout = 2 * time.Second

// KafkaSink publishes audit events as JSON records keyed by normalized email.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaSink connects to the brokers. Returns an error only when the client
// cannot be constructed; broker availability is checked lazily on produce.
func NewKafkaSink(brokers []string, topic string, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, err
	}
	return &KafkaSink{client: client, topic: topic, logger: logger}, nil
}

// Publish sends the event asynchronously. Failures are logged, never
// surfaced; the caller has already committed the domain write.
func (s *KafkaSink) Publish(ctx context.Context, event audit.Event) {
	if s == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode notification", "error", err.Error())
		return
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Email),
		Value: payload,
	}
	// Detach from the request context so a client disconnect does not cancel
	// the produce; bound it with our own timeout instead.
	produceCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), produceTimeout)
	s.client.Produce(produceCtx, record, func(r *kgo.Record, err error) {
		defer cancel()
		if err != nil {
			s.logger.Error("failed to publish notification",
				"topic", s.topic,
				"action", string(event.Action),
				"error", err.Error(),
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (s *KafkaSink) Close(ctx context.Context) {
	if s == nil {
		return
	}
	if err := s.client.Flush(ctx); err != nil {
		s.logger.Error("failed to flush notifications", "error", err.Error())
	}
	s.client.Close()
}
