// Package store persists normalized items in Redis under a TTL so the
// working set is always a sliding window of recent activity. Keys are
// "<namespace>:<id>"; writing an already-seen ID overwrites the previous
// copy and resets its TTL, which makes ingestion idempotent.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/observability"
)

const (
	// NamespaceEvents holds geo-tagged news items, NamespaceTweets holds
	// social posts. They are queried independently.
	NamespaceEvents = "event"
	NamespaceTweets = "tweet"

	scanBatchSize = 200
)

// Store is the Redis-backed time-windowed item store.
type Store struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

func New(client *redis.Client, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Store {
	return &Store{
		client:  client,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

// Filter narrows a Query. Zero values mean "don't filter on this axis".
type Filter struct {
	GeoOnly      bool
	Since        time.Time
	MinSeverity  int
	Category     string
	Topic        string
	BreakingOnly bool
	Source       string
	SourceType   domain.SourceType
	Account      string
	Limit        int
}

// Write persists a batch, stamping each item's fetch time. Writes are
// pipelined; a failed item is counted and logged but never aborts the rest
// of the batch.
func (s *Store) Write(ctx context.Context, namespace string, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	now := domain.Now().UTC()
	pipe := s.client.Pipeline()
	for i := range items {
		items[i].FetchedAt = now
		payload, err := json.Marshal(items[i])
		if err != nil {
			s.metrics.StoreWriteErrors.WithLabelValues(namespace).Inc()
			s.logger.Error("marshal item",
				slog.String("id", items[i].ID),
				slog.String("error", err.Error()))
			continue
		}
		pipe.Set(ctx, namespace+":"+items[i].ID, payload, s.ttl)
	}

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("write batch to %s: %w", namespace, err)
	}

	for _, cmd := range cmds {
		if cmd.Err() != nil {
			s.metrics.StoreWriteErrors.WithLabelValues(namespace).Inc()
			s.logger.Error("store write", slog.String("error", cmd.Err().Error()))
			continue
		}
		s.metrics.StoreWrites.WithLabelValues(namespace).Inc()
	}
	return nil
}

// ReadAll returns every live item in a namespace. Entries that no longer
// unmarshal are skipped, not fatal; Redis may hold stale shapes across
// deploys.
func (s *Store) ReadAll(ctx context.Context, namespace string) ([]domain.Item, error) {
	keys, err := s.scanKeys(ctx, namespace+":*")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []domain.Item{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget %s: %w", namespace, err)
	}

	items := make([]domain.Item, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Expired between SCAN and MGET.
			continue
		}
		var item domain.Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			s.logger.Warn("skipping malformed stored item",
				slog.String("key", keys[i]),
				slog.String("error", err.Error()))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// Query reads a namespace and applies the filter, newest first.
func (s *Store) Query(ctx context.Context, namespace string, f Filter) ([]domain.Item, error) {
	timer := time.Now()
	defer func() {
		s.metrics.QueryDuration.Observe(time.Since(timer).Seconds())
	}()

	all, err := s.ReadAll(ctx, namespace)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Item, 0, len(all))
	for _, item := range all {
		if !matches(item, f) {
			continue
		}
		matched = append(matched, item)
	}

	// Newest first. Items with unparsable timestamps sink to the end
	// instead of sorting on raw bytes.
	sort.SliceStable(matched, func(i, j int) bool {
		ti, oki := matched[i].PublishedTime()
		tj, okj := matched[j].PublishedTime()
		if oki != okj {
			return oki
		}
		return ti.After(tj)
	})

	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func matches(item domain.Item, f Filter) bool {
	if f.GeoOnly && !item.HasGeo() {
		return false
	}
	if !f.Since.IsZero() {
		// Items whose timestamp cannot be parsed fail recency checks
		// rather than sneaking through forever.
		ts, ok := item.PublishedTime()
		if !ok || ts.Before(f.Since) {
			return false
		}
	}
	if f.MinSeverity > 0 && item.Severity < f.MinSeverity {
		return false
	}
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Topic != "" && !slices.Contains(item.Topics, f.Topic) {
		return false
	}
	if f.BreakingOnly && !item.IsBreaking {
		return false
	}
	if f.Source != "" && !strings.EqualFold(item.Source, f.Source) {
		return false
	}
	if f.SourceType != "" && item.SourceType != f.SourceType {
		return false
	}
	if f.Account != "" && !strings.EqualFold(item.Account, f.Account) {
		return false
	}
	return true
}

// Stats summarizes the live window for the stats endpoint.
type Stats struct {
	Events       int            `json:"events"`
	Tweets       int            `json:"tweets"`
	Breaking     int            `json:"breaking"`
	HighSeverity int            `json:"high_severity"`
	Accounts     int            `json:"accounts"`
	ByCategory   map[string]int `json:"by_category"`
	BySeverity   map[int]int    `json:"by_severity"`
	ByCountry    map[string]int `json:"by_country"`
}

// highSeverityFloor marks the severity level counted as high in stats.
const highSeverityFloor = 4

// Stats counts both namespaces; the breakdowns cover events only, since
// the dashboard charts the map feed. Accounts come from the tweet side.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{
		ByCategory: map[string]int{},
		BySeverity: map[int]int{},
		ByCountry:  map[string]int{},
	}

	events, err := s.ReadAll(ctx, NamespaceEvents)
	if err != nil {
		return Stats{}, err
	}
	tweets, err := s.ReadAll(ctx, NamespaceTweets)
	if err != nil {
		return Stats{}, err
	}

	st.Events = len(events)
	st.Tweets = len(tweets)
	for _, item := range events {
		st.ByCategory[item.Category]++
		st.BySeverity[item.Severity]++
		if item.IsBreaking {
			st.Breaking++
		}
		if item.Severity >= highSeverityFloor {
			st.HighSeverity++
		}
		if item.CountryCode != "" {
			st.ByCountry[item.CountryCode]++
		}
	}

	accounts := make(map[string]struct{})
	for _, item := range tweets {
		if item.Account != "" {
			accounts[item.Account] = struct{}{}
		}
	}
	st.Accounts = len(accounts)
	return st, nil
}

// Ping verifies Redis connectivity; the service refuses to start without it.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *Store) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", pattern, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}
