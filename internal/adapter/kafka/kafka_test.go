package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geowatch/osint-monitor/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	lat, lon := 50.45, 30.52
	item := domain.Item{
		ID:          "abc123",
		Title:       "Shelling reported near Kyiv",
		URL:         "https://example.com/a1",
		Source:      "testwire",
		SourceType:  domain.SourceRSS,
		Category:    domain.CategoryConflict,
		Topics:      []string{domain.TopicWar},
		Severity:    4,
		Lat:         &lat,
		Lon:         &lon,
		MediaURLs:   []string{},
		PublishedAt: "2025-06-02T10:00:00Z",
	}

	msg, err := serializeToMessage(item)
	require.NoError(t, err)

	assert.Equal(t, []byte("abc123"), msg.Key)
	assert.Contains(t, string(msg.Value), `"category":"conflict"`)
	assert.Contains(t, string(msg.Value), `"severity":4`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "source_type", msg.Headers[0].Key)
	assert.Equal(t, []byte("rss"), msg.Headers[0].Value)
	assert.Equal(t, "category", msg.Headers[1].Key)
	assert.Equal(t, []byte("conflict"), msg.Headers[1].Value)
}
