// Package classify maps raw item text to a category, topic set, severity
// level, and breaking-news flag via case-insensitive keyword containment.
// All methods are pure and safe for concurrent use; identical text always
// yields identical output.
package classify

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/geowatch/osint-monitor/internal/domain"
)

// Engine holds one Aho-Corasick automaton per keyword table, giving a single
// O(n) pass per table instead of per-keyword scans.
type Engine struct {
	categories map[string]*ahocorasick.Matcher
	topics     map[string]*ahocorasick.Matcher
	severity   map[int]*ahocorasick.Matcher
}

// Verdict bundles the four classification axes for one piece of text.
type Verdict struct {
	Category   string   `json:"category"`
	Topics     []string `json:"topics"`
	Severity   int      `json:"severity"`
	IsBreaking bool     `json:"is_breaking"`
}

// NewEngine builds matchers from the given tables.
func NewEngine(t Tables) *Engine {
	e := &Engine{
		categories: make(map[string]*ahocorasick.Matcher, len(t.Categories)),
		topics:     make(map[string]*ahocorasick.Matcher, len(t.Topics)),
		severity:   make(map[int]*ahocorasick.Matcher, len(t.Severity)),
	}
	for label, keywords := range t.Categories {
		e.categories[label] = newMatcher(keywords)
	}
	for label, keywords := range t.Topics {
		e.topics[label] = newMatcher(keywords)
	}
	for level, keywords := range t.Severity {
		e.severity[level] = newMatcher(keywords)
	}
	return e
}

func newMatcher(keywords []string) *ahocorasick.Matcher {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return ahocorasick.NewStringMatcher(lowered)
}

// matches reports whether any keyword of the table is contained in text.
// MatchThreadSafe keeps the automaton usable from concurrent adapters.
func matches(m *ahocorasick.Matcher, text string) bool {
	if m == nil {
		return false
	}
	return len(m.MatchThreadSafe([]byte(text))) > 0
}

// Category returns exactly one category for the text. A breaking-keyword hit
// is demoted whenever a more specific category (conflict, disaster, politics,
// in that priority order) also matches; "breaking" is only returned when none
// of the three do. Without a breaking hit the priority order decides, with
// "general" as the default.
func (e *Engine) Category(text string) string {
	lower := strings.ToLower(text)

	if matches(e.categories[domain.CategoryBreaking], lower) {
		for _, cat := range categoryPriority {
			if matches(e.categories[cat], lower) {
				return cat
			}
		}
		return domain.CategoryBreaking
	}

	for _, cat := range categoryPriority {
		if matches(e.categories[cat], lower) {
			return cat
		}
	}
	return domain.CategoryGeneral
}

// Topics returns every topic label with at least one keyword hit. The result
// is a union; label order is fixed but does not affect membership. Returns a
// non-nil empty slice when nothing matches.
func (e *Engine) Topics(text string) []string {
	lower := strings.ToLower(text)

	matched := make([]string, 0, len(topicOrder))
	for _, topic := range topicOrder {
		if matches(e.topics[topic], lower) {
			matched = append(matched, topic)
		}
	}
	return matched
}

// Severity returns 1-5, checking level tables from 5 down to 2; the first
// level with a hit wins. Severity vocabulary may overlap category
// vocabulary; the two are independent signals.
func (e *Engine) Severity(text string) int {
	lower := strings.ToLower(text)

	for _, level := range severityOrder {
		if matches(e.severity[level], lower) {
			return level
		}
	}
	return 1
}

// IsBreaking reports whether any breaking keyword is present, independent of
// the category demotion logic.
func (e *Engine) IsBreaking(text string) bool {
	return matches(e.categories[domain.CategoryBreaking], strings.ToLower(text))
}

// Classify runs all four axes over the text.
func (e *Engine) Classify(text string) Verdict {
	return Verdict{
		Category:   e.Category(text),
		Topics:     e.Topics(text),
		Severity:   e.Severity(text),
		IsBreaking: e.IsBreaking(text),
	}
}
