package classify

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/geowatch/osint-monitor/internal/domain"
)

//go:embed keywords.yaml
var defaultTables []byte

// Tables is the keyword data backing the classification engine, keyed by
// label. Kept as loadable data so vocabularies can be versioned and tested
// independently of the matching logic.
type Tables struct {
	Categories map[string][]string `yaml:"categories"`
	Topics     map[string][]string `yaml:"topics"`
	Severity   map[int][]string    `yaml:"severity"`
}

// categoryPriority is the order specific categories are checked in. Breaking
// is handled separately: it only wins when none of these match.
var categoryPriority = []string{
	domain.CategoryConflict,
	domain.CategoryDisaster,
	domain.CategoryPolitics,
}

// topicOrder fixes the label order of multi-topic results.
var topicOrder = []string{
	domain.TopicWar,
	domain.TopicProtests,
	domain.TopicChristianPersecution,
	domain.TopicTerrorism,
	domain.TopicNaturalDisasters,
}

// severityOrder is the level check order; first hit wins.
var severityOrder = []int{5, 4, 3, 2}

// DefaultTables parses the embedded keyword tables.
func DefaultTables() (Tables, error) {
	return ParseTables(defaultTables)
}

// LoadTables reads keyword tables from a YAML file, or the embedded defaults
// when path is empty.
func LoadTables(path string) (Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read classification tables: %w", err)
	}
	return ParseTables(data)
}

// ParseTables unmarshals and validates keyword tables.
func ParseTables(data []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parse classification tables: %w", err)
	}

	for _, cat := range append([]string{domain.CategoryBreaking}, categoryPriority...) {
		if len(t.Categories[cat]) == 0 {
			return Tables{}, fmt.Errorf("classification tables: missing category %q", cat)
		}
	}
	for _, topic := range topicOrder {
		if len(t.Topics[topic]) == 0 {
			return Tables{}, fmt.Errorf("classification tables: missing topic %q", topic)
		}
	}
	for _, level := range severityOrder {
		if len(t.Severity[level]) == 0 {
			return Tables{}, fmt.Errorf("classification tables: missing severity level %d", level)
		}
	}

	return t, nil
}
