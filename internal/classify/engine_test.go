package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	tables, err := DefaultTables()
	require.NoError(t, err)
	return NewEngine(tables)
}

func TestEngine_Category(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		text string
		want string
	}{
		{"conflict", "Airstrike hits northern district overnight", "conflict"},
		{"disaster", "Earthquake of magnitude 7.1 recorded offshore", "disaster"},
		{"politics", "Parliament passes sanctions package", "politics"},
		{"general", "Local festival draws record crowds", "general"},
		{"pure breaking", "BREAKING: significant incident reported", "breaking"},
		{"breaking demoted to conflict", "BREAKING: missile strike on the port", "conflict"},
		{"breaking demoted to disaster", "URGENT: flood waters rising in the delta", "disaster"},
		{"breaking demoted to politics", "Just in: the election results are contested", "politics"},
		{"conflict beats disaster in priority order", "Wildfire sparked by shelling near the front", "conflict"},
		{"case insensitive", "EARTHQUAKE SHAKES THE COAST", "disaster"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Category(tt.text))
		})
	}
}

func TestEngine_Topics(t *testing.T) {
	e := newTestEngine(t)

	t.Run("multi label", func(t *testing.T) {
		got := e.Topics("Artillery shelling triggered flooding after the dam breach; casualties reported")
		assert.Contains(t, got, "war")
		assert.Contains(t, got, "natural_disasters")
	})

	t.Run("single label", func(t *testing.T) {
		got := e.Topics("Demonstrators clashed with police, tear gas deployed")
		assert.Equal(t, []string{"protests"}, got)
	})

	t.Run("no labels", func(t *testing.T) {
		got := e.Topics("Quiet afternoon at the museum")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("terrorism and persecution", func(t *testing.T) {
		got := e.Topics("Suicide bomber targets church congregation")
		assert.Contains(t, got, "terrorism")
		assert.Contains(t, got, "christian_persecution")
	})
}

func TestEngine_Severity(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"level five", "Officials warn of a catastrophic failure", 5},
		{"level four", "State of emergency declared in the region", 4},
		{"level three", "Explosion reported near the depot", 3},
		{"level two", "Rising tensions along the border", 2},
		{"default one", "Committee publishes annual report", 1},
		{"five beats three", "Mass casualty event after the explosion", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Severity(tt.text))
		})
	}
}

func TestEngine_IsBreaking(t *testing.T) {
	e := newTestEngine(t)

	// IsBreaking is independent of category demotion: a breaking keyword
	// alongside a conflict keyword still sets the flag.
	assert.True(t, e.IsBreaking("BREAKING: missile strike on the port"))
	assert.True(t, e.IsBreaking("urgent appeal issued"))
	assert.False(t, e.IsBreaking("routine council meeting"))
}

func TestEngine_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	text := "BREAKING: Earthquake of magnitude 7.1 strikes near the coast, casualties feared"

	first := e.Classify(text)
	for range 10 {
		assert.Equal(t, first, e.Classify(text))
	}
}

func TestEngine_SpecExample(t *testing.T) {
	e := newTestEngine(t)
	text := "Earthquake of magnitude 7.1 strikes near 35.68,139.69"

	v := e.Classify(text)
	assert.Equal(t, "disaster", v.Category)
	assert.Contains(t, v.Topics, "natural_disasters")
	assert.GreaterOrEqual(t, v.Severity, 3)
}

func TestParseTables_Invalid(t *testing.T) {
	t.Run("not yaml", func(t *testing.T) {
		_, err := ParseTables([]byte("{{nope"))
		assert.Error(t, err)
	})

	t.Run("missing category table", func(t *testing.T) {
		_, err := ParseTables([]byte("categories:\n  conflict: [war]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing category")
	})
}
