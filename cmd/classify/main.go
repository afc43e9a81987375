// Command classify runs the classification and geo-resolution stages over
// text from stdin, one input per line, and prints one JSON result per line.
// Useful for tuning keyword tables without running the full service.
//
// Usage:
//
//	echo "Earthquake of magnitude 7.1 strikes near 35.68,139.69" | go run ./cmd/classify
//	go run ./cmd/classify -tables custom.yaml -geocode < headlines.txt
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/geowatch/osint-monitor/internal/adapter/nominatim"
	"github.com/geowatch/osint-monitor/internal/classify"
	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/geo"
	"github.com/geowatch/osint-monitor/internal/observability"
)

type result struct {
	Text    string            `json:"text"`
	Verdict classify.Verdict  `json:"verdict"`
	Geo     *domain.GeoResult `json:"geo,omitempty"`
}

func main() {
	tablesPath := flag.String("tables", "", "path to a YAML keyword table file (default: embedded tables)")
	geocode := flag.Bool("geocode", false, "resolve place names via Nominatim (makes network calls)")
	flag.Parse()

	if err := run(*tablesPath, *geocode, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(tablesPath string, geocode bool, in io.Reader, out io.Writer) error {
	tables, err := loadTables(tablesPath)
	if err != nil {
		return err
	}
	engine := classify.NewEngine(tables)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var geocoder domain.Geocoder
	if geocode {
		metrics := observability.NewMetricsForTesting()
		client := nominatim.NewClient("osint-monitor-classify/1.0", 5*time.Second, time.Second, metrics, logger)
		geocoder = nominatim.NewCachedGeocoder(client, 256, metrics)
	}
	resolver := geo.NewResolver(geo.NewProseExtractor(logger), geocoder, logger)

	enc := json.NewEncoder(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}

		r := result{Text: text, Verdict: engine.Classify(text)}
		if g, ok := resolver.Resolve(context.Background(), text, nil); ok {
			r.Geo = &g
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func loadTables(path string) (classify.Tables, error) {
	if path != "" {
		return classify.LoadTables(path)
	}
	return classify.DefaultTables()
}
