package geo

import (
	"log/slog"

	prose "github.com/jdkato/prose/v2"
)

// entityTextLimit bounds how much text feeds the NER model. Place names
// relevant for mapping almost always appear early, and tagging is the
// slowest stage of the pipeline.
const entityTextLimit = 1000

// EntityExtractor produces candidate place names from free text.
// Extraction is best-effort: implementations return an empty slice on any
// failure rather than an error.
type EntityExtractor interface {
	PlaceNames(text string) []string
}

// ProseExtractor extracts geopolitical (GPE) and location (LOC) entities
// with the prose NER model.
type ProseExtractor struct {
	logger *slog.Logger
}

// NewProseExtractor creates an extractor backed by prose's default model.
func NewProseExtractor(logger *slog.Logger) *ProseExtractor {
	return &ProseExtractor{logger: logger}
}

// PlaceNames returns GPE/LOC entity texts in first-seen order, deduplicated.
// A tagger failure yields an empty slice.
func (p *ProseExtractor) PlaceNames(text string) []string {
	if runes := []rune(text); len(runes) > entityTextLimit {
		text = string(runes[:entityTextLimit])
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		p.logger.Warn("entity extraction failed", "error", err)
		return nil
	}

	var names []string
	seen := make(map[string]struct{})
	for _, ent := range doc.Entities() {
		if ent.Label != "GPE" && ent.Label != "LOC" {
			continue
		}
		if _, dup := seen[ent.Text]; dup {
			continue
		}
		seen[ent.Text] = struct{}{}
		names = append(names, ent.Text)
	}
	return names
}
