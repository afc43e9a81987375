package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsID_Deterministic(t *testing.T) {
	a := NewsID("https://example.com/article", "Earthquake strikes capital")
	b := NewsID("https://example.com/article", "Earthquake strikes capital")

	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestNewsID_DistinctInputs(t *testing.T) {
	a := NewsID("https://example.com/article", "Earthquake strikes capital")
	b := NewsID("https://example.com/article", "Floods recede in delta")

	assert.NotEqual(t, a, b)
}

func TestSocialID_TruncatesText(t *testing.T) {
	long := strings.Repeat("x", 200)

	// Identity depends only on the first 80 characters.
	a := SocialID("sentdefender", long)
	b := SocialID("sentdefender", long[:80]+"different tail")
	assert.Equal(t, a, b)

	c := SocialID("othersource", long)
	assert.NotEqual(t, a, c)
}

func TestItem_HasGeo(t *testing.T) {
	lat, lon := 35.68, 139.69

	assert.False(t, Item{}.HasGeo())
	assert.False(t, Item{Lat: &lat}.HasGeo())
	assert.True(t, Item{Lat: &lat, Lon: &lon}.HasGeo())
}

func TestItem_PublishedTime(t *testing.T) {
	t.Run("valid RFC3339", func(t *testing.T) {
		ts, ok := Item{PublishedAt: "2026-08-30T12:00:00Z"}.PublishedTime()
		require.True(t, ok)
		assert.Equal(t, 2026, ts.Year())
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := Item{}.PublishedTime()
		assert.False(t, ok)
	})

	t.Run("garbage", func(t *testing.T) {
		_, ok := Item{PublishedAt: "yesterday-ish"}.PublishedTime()
		assert.False(t, ok)
	})
}
