//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/geowatch/osint-monitor/internal/adapter/kafka"
	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/ingest"
	"github.com/geowatch/osint-monitor/internal/observability"
	"github.com/geowatch/osint-monitor/internal/source"
	"github.com/geowatch/osint-monitor/internal/store"
)

const testArchiveTopic = "test-archive"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp",
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func archivedItem(id string) domain.Item {
	lat, lon := 46.48, 30.72
	return domain.Item{
		ID:          id,
		Title:       "Explosion reported in Odesa",
		URL:         "https://example.com/" + id,
		Source:      "testwire",
		SourceType:  domain.SourceRSS,
		Category:    domain.CategoryConflict,
		Topics:      []string{domain.TopicWar},
		Severity:    4,
		Lat:         &lat,
		Lon:         &lon,
		CountryCode: "UA",
		MediaURLs:   []string{},
		PublishedAt: "2025-06-02T10:00:00Z",
	}
}

// TestArchiveSink verifies the adapter layer: a published batch round-trips
// through Kafka with key, headers, and payload intact.
func TestArchiveSink(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testArchiveTopic)

	archive := kafka.NewArchive([]string{broker}, testArchiveTopic,
		observability.NewMetricsForTesting(), discardLogger())
	t.Cleanup(func() { _ = archive.Close() })

	require.NoError(t, archive.Publish(ctx, []domain.Item{archivedItem("arc1")}))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testArchiveTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from archive topic")

	assert.Equal(t, "arc1", string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "rss", headers["source_type"])
	assert.Equal(t, "conflict", headers["category"])

	var item domain.Item
	require.NoError(t, json.Unmarshal(msg.Value, &item))
	assert.Equal(t, "arc1", item.ID)
	assert.Equal(t, 4, item.Severity)
	assert.Equal(t, "UA", item.CountryCode)
}

type fixedSource struct {
	items []domain.Item
}

func (f *fixedSource) Name() string { return "fixture" }

func (f *fixedSource) Fetch(context.Context) ([]domain.Item, error) {
	return f.items, nil
}

// TestIngestCycleArchivesBatch wires a full ingestion cycle (source → store
// → archive) against real Kafka and verifies the batch lands in both.
func TestIngestCycleArchivesBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testArchiveTopic)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	st := store.New(client, 12*time.Hour, observability.NewMetricsForTesting(), discardLogger())

	archive := kafka.NewArchive([]string{broker}, testArchiveTopic,
		observability.NewMetricsForTesting(), discardLogger())
	t.Cleanup(func() { _ = archive.Close() })

	items := []domain.Item{archivedItem("c1"), archivedItem("c2")}
	runner := ingest.NewRunner("events", store.NamespaceEvents,
		[]source.Source{&fixedSource{items: items}}, st, archive,
		observability.NewMetricsForTesting(), discardLogger())
	runner.Run(ctx)

	stored, err := st.ReadAll(ctx, store.NamespaceEvents)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testArchiveTopic,
		GroupID:     fmt.Sprintf("test-cycle-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err)
		seen[string(msg.Key)] = true
	}
	assert.True(t, seen["c1"])
	assert.True(t, seen["c2"])
}
