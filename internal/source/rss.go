package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/geowatch/osint-monitor/internal/classify"
	"github.com/geowatch/osint-monitor/internal/config"
	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/observability"
)

const (
	rssFetchTimeout = 15 * time.Second
	rssMaxEntries   = 20
	rssSummaryLimit = 500
	rssUserAgent    = "osint-monitor/1.0"
)

// RSSFeed ingests one RSS/Atom feed. Items whose geo-resolution comes up
// empty are dropped: this source type only feeds the map.
type RSSFeed struct {
	feed       config.Feed
	httpClient *http.Client
	resolver   Resolver
	engine     *classify.Engine
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewRSSFeed creates a Source for a single configured feed.
func NewRSSFeed(feed config.Feed, resolver Resolver, engine *classify.Engine, logger *slog.Logger, metrics *observability.Metrics) *RSSFeed {
	return &RSSFeed{
		feed:       feed,
		httpClient: &http.Client{Timeout: rssFetchTimeout},
		resolver:   resolver,
		engine:     engine,
		logger:     logger,
		metrics:    metrics,
	}
}

func (f *RSSFeed) Name() string {
	return "rss:" + f.feed.Name
}

// Fetch downloads and parses the feed, returning geo-tagged normalized items.
func (f *RSSFeed) Fetch(ctx context.Context) ([]domain.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", rssUserAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", f.feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: status %d", f.feed.Name, resp.StatusCode)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", f.feed.Name, err)
	}

	entries := parsed.Items
	if len(entries) > rssMaxEntries {
		entries = entries[:rssMaxEntries]
	}

	items := make([]domain.Item, 0, len(entries))
	for _, entry := range entries {
		if entry.Link == "" {
			f.metrics.ItemsSkipped.WithLabelValues(string(domain.SourceRSS), "parse").Inc()
			continue
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}
		summary = truncate(stripHTML(summary), rssSummaryLimit)

		publishedAt := domain.Now().UTC().Format(time.RFC3339)
		if entry.PublishedParsed != nil {
			publishedAt = entry.PublishedParsed.UTC().Format(time.RFC3339)
		}

		fullText := entry.Title + " " + summary

		geoResult, ok := f.resolver.Resolve(ctx, fullText, nil)
		if !ok {
			f.metrics.ItemsSkipped.WithLabelValues(string(domain.SourceRSS), "geo").Inc()
			continue
		}

		verdict := f.engine.Classify(fullText)
		items = append(items, domain.Item{
			ID:           domain.NewsID(entry.Link, entry.Title),
			Title:        entry.Title,
			Text:         summary,
			URL:          entry.Link,
			Source:       f.feed.Name,
			SourceType:   domain.SourceRSS,
			Category:     verdict.Category,
			Topics:       verdict.Topics,
			Severity:     verdict.Severity,
			IsBreaking:   verdict.IsBreaking,
			Lat:          &geoResult.Lat,
			Lon:          &geoResult.Lon,
			LocationName: geoResult.LocationName,
			CountryCode:  geoResult.CountryCode,
			MediaURLs:    []string{},
			PublishedAt:  publishedAt,
		})
	}

	f.metrics.ItemsIngested.WithLabelValues(string(domain.SourceRSS)).Add(float64(len(items)))
	return items, nil
}
