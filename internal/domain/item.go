package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// SourceType identifies the ingestion channel an item came from.
type SourceType string

const (
	SourceRSS        SourceType = "rss"
	SourceGDELT      SourceType = "gdelt"
	SourceTwitterAPI SourceType = "twitter_api"
	SourceNitter     SourceType = "nitter"
)

// Categories assigned by the classification engine. Exactly one per item.
const (
	CategoryConflict = "conflict"
	CategoryDisaster = "disaster"
	CategoryPolitics = "politics"
	CategoryBreaking = "breaking"
	CategoryGeneral  = "general"
)

// Topic labels. Unlike categories, an item may carry several.
const (
	TopicWar                  = "war"
	TopicProtests             = "protests"
	TopicChristianPersecution = "christian_persecution"
	TopicTerrorism            = "terrorism"
	TopicNaturalDisasters     = "natural_disasters"
)

// Item is the normalized unit flowing through the whole pipeline: produced
// by a source adapter, written to the store, returned by queries. Immutable
// after creation; a re-seen item overwrites its prior copy under the same ID.
type Item struct {
	ID         string     `json:"id"`
	Title      string     `json:"title,omitempty"`
	Text       string     `json:"text,omitempty"`
	URL        string     `json:"url"`
	Source     string     `json:"source"`
	SourceType SourceType `json:"source_type"`
	Account    string     `json:"account,omitempty"`

	Category   string   `json:"category"`
	Topics     []string `json:"topics"`
	Severity   int      `json:"severity"`
	IsBreaking bool     `json:"is_breaking"`

	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	LocationName string   `json:"location_name,omitempty"`
	CountryCode  string   `json:"country_code,omitempty"`

	MediaURLs []string `json:"media_urls"`
	Hashtags  []string `json:"hashtags,omitempty"`
	RawTags   []string `json:"raw_tags,omitempty"`

	PublishedAt string    `json:"published_at"`
	FetchedAt   time.Time `json:"fetched_at,omitempty"`
}

// HasGeo reports whether the item carries a resolved coordinate pair.
func (i Item) HasGeo() bool {
	return i.Lat != nil && i.Lon != nil
}

// PublishedTime parses PublishedAt. ok is false for empty or unparsable
// values; callers treat those as "reject" when filtering by recency.
func (i Item) PublishedTime() (time.Time, bool) {
	if i.PublishedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, i.PublishedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// socialIDTextLen bounds how much tweet text feeds the social ID hash, so
// edits past the lede (e.g. appended links) do not change identity.
const socialIDTextLen = 80

// idHexLen is the truncated hex length of item IDs.
const idHexLen = 16

// NewsID derives the deterministic ID for a news or search item.
func NewsID(url, title string) string {
	return shortHash(url + title)
}

// SocialID derives the deterministic ID for a social post.
func SocialID(account, text string) string {
	if len(text) > socialIDTextLen {
		text = text[:socialIDTextLen]
	}
	return shortHash(account + text)
}

func shortHash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:idHexLen]
}
