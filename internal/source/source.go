// Package source contains the ingestion adapters. Each adapter fetches raw
// entries from one external endpoint, then normalizes, geo-resolves,
// classifies, and assigns identity, producing []domain.Item. Per-item
// failures (malformed entry, geo miss, parse failure) skip that item and
// continue; whole-adapter failures surface as an error the orchestrator
// isolates to that adapter.
package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/geowatch/osint-monitor/internal/domain"
)

// Source fetches and normalizes items from one external endpoint.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Item, error)
}

// Resolver is the geo-resolution entry point adapters depend on.
// Satisfied by *geo.Resolver; tests substitute fakes.
type Resolver interface {
	Resolve(ctx context.Context, text string, hints []string) (domain.GeoResult, bool)
}

var (
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	hashtagRe = regexp.MustCompile(`#(\w+)`)
)

// stripHTML removes markup tags from feed summaries.
func stripHTML(s string) string {
	return htmlTagRe.ReplaceAllString(s, "")
}

// truncate bounds a string to n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// hashtags returns the bare tags mentioned in a post, in order. They double
// as geocode hints: OSINT accounts routinely tag the place they report on.
func hashtags(text string) []string {
	matches := hashtagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// collapseWhitespace flattens runs of whitespace to single spaces, used when
// extracting text from scraped HTML.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
