package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultBatchSize     = 256
	defaultFlushInterval = time.Second
)

// Kafka publishes lifecycle events to a Kafka topic through a ring buffer and
// a background flush loop. Emission is fail-open: on produce errors the batch
// is logged and dropped, never retried into the caller's path.
type Kafka struct {
	client *kgo.Client
	buffer *RingBuffer
	logger *slog.Logger
	topic  string

	flushInterval time.Duration
	batchSize     int
}

// KafkaOption configures the Kafka publisher.
type KafkaOption func(*Kafka)

// WithBufferCapacity bounds the in-flight event buffer.
func WithBufferCapacity(n int) KafkaOption {
	return func(k *Kafka) {
		k.buffer = NewRingBuffer(n)
	}
}

// WithFlushInterval overrides how often buffered events are flushed.
func WithFlushInterval(d time.Duration) KafkaOption {
	return func(k *Kafka) {
		if d > 0 {
			k.flushInterval = d
		}
	}
}

// NewKafka connects to the brokers and returns a publisher for the topic.
// Call Run to start the flush loop.
func NewKafka(brokers []string, topic string, logger *slog.Logger, opts ...KafkaOption) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	k := &Kafka{
		client:        client,
		buffer:        NewRingBuffer(0),
		logger:        logger,
		topic:         topic,
		flushInterval: defaultFlushInterval,
		batchSize:     defaultBatchSize,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Emit enqueues the event; it never blocks on the broker.
func (k *Kafka) Emit(_ context.Context, event Event) {
	k.buffer.Enqueue(event)
}

// Run flushes buffered events until ctx is cancelled, then drains once more.
func (k *Kafka) Run(ctx context.Context) error {
	ticker := time.NewTicker(k.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			k.flush(drainCtx)
			cancel()
			return ctx.Err()
		case <-ticker.C:
			k.flush(ctx)
		}
	}
}

func (k *Kafka) flush(ctx context.Context) {
	for {
		batch := k.buffer.DequeueBatch(k.batchSize)
		if len(batch) == 0 {
			return
		}

		records := make([]*kgo.Record, 0, len(batch))
		for _, event := range batch {
			payload, err := json.Marshal(event)
			if err != nil {
				k.logger.Error("marshal lifecycle event", "event_id", event.ID, "error", err)
				continue
			}
			records = append(records, &kgo.Record{
				Key:   []byte(event.Agent),
				Value: payload,
			})
		}

		if err := k.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
			k.logger.Error("produce lifecycle events",
				"topic", k.topic,
				"batch", len(records),
				"error", err,
			)
			return
		}
	}
}

// Close drains the buffer and releases the client.
func (k *Kafka) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	k.flush(ctx)
	k.client.Close()
	return nil
}
