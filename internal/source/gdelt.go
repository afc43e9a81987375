package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/geowatch/osint-monitor/internal/classify"
	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/observability"
)

const (
	gdeltBaseURL      = "https://api.gdeltproject.org/api/v2/doc/doc"
	gdeltFetchTimeout = 20 * time.Second
	gdeltTimespan     = "15min"
	gdeltSeenLayout   = "20060102T150405Z"
	gdeltQuery        = `(conflict OR war OR protest OR earthquake OR flood OR attack OR explosion) sourcelang:english`
)

type gdeltArticle struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Description   string `json:"seendescription"`
	SeenDate      string `json:"seendate"`
	SocialImage   string `json:"socialimage"`
	Domain        string `json:"domain"`
	SourceCountry string `json:"sourcecountry"`
	Themes        string `json:"themes"`
	Language      string `json:"language"`
}

type gdeltResponse struct {
	Articles []gdeltArticle `json:"articles"`
}

// GDELT polls the GDELT 2.0 doc API for recent articles matching the
// monitoring query. Like RSS, items that cannot be geo-resolved are dropped.
type GDELT struct {
	baseURL    string
	maxRecords int
	httpClient *http.Client
	resolver   Resolver
	engine     *classify.Engine
	logger     *slog.Logger
	metrics    *observability.Metrics
}

func NewGDELT(maxRecords int, resolver Resolver, engine *classify.Engine, logger *slog.Logger, metrics *observability.Metrics) *GDELT {
	return &GDELT{
		baseURL:    gdeltBaseURL,
		maxRecords: maxRecords,
		httpClient: &http.Client{Timeout: gdeltFetchTimeout},
		resolver:   resolver,
		engine:     engine,
		logger:     logger,
		metrics:    metrics,
	}
}

func (g *GDELT) Name() string {
	return "gdelt"
}

func (g *GDELT) Fetch(ctx context.Context) ([]domain.Item, error) {
	params := url.Values{}
	params.Set("query", gdeltQuery)
	params.Set("mode", "artlist")
	params.Set("maxrecords", strconv.Itoa(g.maxRecords))
	params.Set("timespan", gdeltTimespan)
	params.Set("format", "json")
	params.Set("sort", "HybridRel")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", rssUserAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch gdelt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch gdelt: status %d", resp.StatusCode)
	}

	var payload gdeltResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode gdelt response: %w", err)
	}

	items := make([]domain.Item, 0, len(payload.Articles))
	for _, art := range payload.Articles {
		if art.URL == "" || art.Title == "" {
			g.metrics.ItemsSkipped.WithLabelValues(string(domain.SourceGDELT), "parse").Inc()
			continue
		}

		// The description often names the place when the title does not,
		// so both feed resolution and classification.
		fullText := strings.TrimSpace(art.Title + " " + art.Description)
		geoResult, ok := g.resolver.Resolve(ctx, fullText, nil)
		if !ok && art.SourceCountry != "" {
			// Neither named a resolvable place; fall back to the
			// article's source country before giving up.
			geoResult, ok = g.resolver.Resolve(ctx, "", []string{art.SourceCountry})
		}
		if !ok {
			g.metrics.ItemsSkipped.WithLabelValues(string(domain.SourceGDELT), "geo").Inc()
			continue
		}

		publishedAt := domain.Now().UTC().Format(time.RFC3339)
		if ts, err := time.Parse(gdeltSeenLayout, art.SeenDate); err == nil {
			publishedAt = ts.UTC().Format(time.RFC3339)
		}

		media := []string{}
		if art.SocialImage != "" {
			media = append(media, art.SocialImage)
		}

		var rawTags []string
		if art.Themes != "" {
			rawTags = strings.Split(art.Themes, ";")
		}

		verdict := g.engine.Classify(fullText)
		items = append(items, domain.Item{
			ID:           domain.NewsID(art.URL, art.Title),
			Title:        art.Title,
			Text:         truncate(art.Description, rssSummaryLimit),
			URL:          art.URL,
			Source:       art.Domain,
			SourceType:   domain.SourceGDELT,
			Category:     verdict.Category,
			Topics:       verdict.Topics,
			Severity:     verdict.Severity,
			IsBreaking:   verdict.IsBreaking,
			Lat:          &geoResult.Lat,
			Lon:          &geoResult.Lon,
			LocationName: geoResult.LocationName,
			CountryCode:  geoResult.CountryCode,
			MediaURLs:    media,
			RawTags:      rawTags,
			PublishedAt:  publishedAt,
		})
	}

	g.metrics.ItemsIngested.WithLabelValues(string(domain.SourceGDELT)).Add(float64(len(items)))
	return items, nil
}
