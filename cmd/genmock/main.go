// Command genmock seeds Redis with synthetic items so the query API can be
// exercised without live sources. It runs the real classification engine
// over the synthetic headlines, so category, topic, and severity values
// match what ingestion would produce.
//
// Usage:
//
//	go run ./cmd/genmock -redis localhost:6379
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/geowatch/osint-monitor/internal/classify"
	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/observability"
	"github.com/geowatch/osint-monitor/internal/store"
)

var baseTime = time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)

type mockEvent struct {
	title    string
	source   string
	lat, lon float64
	location string
	country  string
}

var mockEvents = []mockEvent{
	{"Airstrike hits residential district in Kharkiv, casualties reported", "BBC World", 49.9935, 36.2304, "Kharkiv, Ukraine", "UA"},
	{"Earthquake of magnitude 7.1 strikes near Tokyo, tsunami warning issued", "Reuters", 35.6762, 139.6503, "Tokyo, Japan", "JP"},
	{"Protesters clash with police outside parliament in Tbilisi", "Al Jazeera", 41.7151, 44.8271, "Tbilisi, Georgia", "GE"},
	{"Flooding displaces thousands in Jakarta after torrential rain", "CNA Asia", -6.2088, 106.8456, "Jakarta, Indonesia", "ID"},
	{"Ceasefire talks resume as shelling continues near Donetsk", "Guardian", 48.0159, 37.8028, "Donetsk, Ukraine", "UA"},
	{"Suicide bombing at market kills dozens in Mogadishu", "Al Arabiya", 2.0469, 45.3182, "Mogadishu, Somalia", "SO"},
	{"Wildfire forces evacuations north of Athens", "Sky News", 37.9838, 23.7275, "Athens, Greece", "GR"},
	{"Election results disputed as opposition alleges fraud in Caracas", "NPR World", 10.4806, -66.9036, "Caracas, Venezuela", "VE"},
}

type mockTweet struct {
	account string
	text    string
}

var mockTweets = []mockTweet{
	{"sentdefender", "BREAKING: Multiple explosions reported in #Kyiv, air defense active across the city"},
	{"OSINTdefender", "Footage shows large convoy moving toward the border crossing near #Belgorod"},
	{"GeoConfirmed", "Geolocated: strike footage matches intersection at 50.4501, 30.5234 #Ukraine"},
	{"WarMonitors", "Unconfirmed reports of gunfire near the presidential palace"},
	{"Intel_Sky", "Tanker on fire in the Red Sea after reported drone attack #RedSea"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	redisAddr := flag.String("redis", "localhost:6379", "redis address to seed")
	ttl := flag.Duration("ttl", 12*time.Hour, "TTL for seeded items")
	flag.Parse()

	// Fixed clock for reproducible FetchedAt stamps.
	domain.SetClock(clockwork.NewFakeClockAt(baseTime))
	defer domain.SetClock(nil)

	tables, err := classify.DefaultTables()
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	engine := classify.NewEngine(tables)

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	st := store.New(client, *ttl, observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx := context.Background()
	if err := st.Ping(ctx); err != nil {
		return err
	}

	events := make([]domain.Item, 0, len(mockEvents))
	for i, e := range mockEvents {
		lat, lon := e.lat, e.lon
		verdict := engine.Classify(e.title)
		events = append(events, domain.Item{
			ID:           domain.NewsID(fmt.Sprintf("https://example.com/mock/%d", i), e.title),
			Title:        e.title,
			URL:          fmt.Sprintf("https://example.com/mock/%d", i),
			Source:       e.source,
			SourceType:   domain.SourceRSS,
			Category:     verdict.Category,
			Topics:       verdict.Topics,
			Severity:     verdict.Severity,
			IsBreaking:   verdict.IsBreaking,
			Lat:          &lat,
			Lon:          &lon,
			LocationName: e.location,
			CountryCode:  e.country,
			MediaURLs:    []string{},
			PublishedAt:  baseTime.Add(-time.Duration(i) * 23 * time.Minute).Format(time.RFC3339),
		})
	}
	if err := st.Write(ctx, store.NamespaceEvents, events); err != nil {
		return err
	}
	log.Printf("seeded %d events", len(events))

	tweets := make([]domain.Item, 0, len(mockTweets))
	for i, tw := range mockTweets {
		verdict := engine.Classify(tw.text)
		tweets = append(tweets, domain.Item{
			ID:          domain.SocialID(tw.account, tw.text),
			Text:        tw.text,
			URL:         fmt.Sprintf("https://twitter.com/%s/status/%d", tw.account, 1000+i),
			Source:      tw.account,
			SourceType:  domain.SourceNitter,
			Account:     tw.account,
			Category:    verdict.Category,
			Topics:      verdict.Topics,
			Severity:    verdict.Severity,
			IsBreaking:  verdict.IsBreaking,
			MediaURLs:   []string{},
			PublishedAt: baseTime.Add(-time.Duration(i) * 11 * time.Minute).Format(time.RFC3339),
		})
	}
	if err := st.Write(ctx, store.NamespaceTweets, tweets); err != nil {
		return err
	}
	log.Printf("seeded %d tweets", len(tweets))

	printStats(events, tweets)
	return nil
}

func printStats(events, tweets []domain.Item) {
	byCategory := map[string]int{}
	bySeverity := map[int]int{}
	for _, item := range append(events, tweets...) {
		byCategory[item.Category]++
		bySeverity[item.Severity]++
	}
	fmt.Println("\n=== Seeded data breakdown ===")
	fmt.Printf("Events: %d, Tweets: %d\n", len(events), len(tweets))
	fmt.Printf("By category: %v\n", byCategory)
	fmt.Printf("By severity: %v\n", bySeverity)
}
