// Package kafka provides the write-behind archive sink. Every batch the
// store accepts is also published here so long-term retention survives the
// store's TTL window.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/observability"
)

// Archive produces item batches to the archive topic.
// It implements ingest.Archive.
type Archive struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewArchive creates a Kafka producer for the archive topic.
func NewArchive(brokers []string, topic string, metrics *observability.Metrics, logger *slog.Logger) *Archive {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Archive{writer: w, metrics: metrics, logger: logger}
}

// Publish serializes and publishes a batch in a single WriteMessages call.
func (a *Archive) Publish(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(items))
	for i := range items {
		msg, err := serializeToMessage(items[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := a.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish archive batch: %w", err)
	}
	a.metrics.ArchivePublished.Add(float64(len(items)))
	return nil
}

func (a *Archive) Close() error {
	return a.writer.Close()
}

// serializeToMessage marshals an item into a Kafka message. The key is the
// item ID so compacted topics keep one copy per item.
func serializeToMessage(item domain.Item) (kafkago.Message, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize item: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(item.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source_type", Value: []byte(item.SourceType)},
			{Key: "category", Value: []byte(item.Category)},
		},
	}, nil
}
