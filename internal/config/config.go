package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Feed is one configured RSS source.
type Feed struct {
	Name string
	URL  string
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StoreTTL      time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Ingestion sources.
	RSSFeeds        []Feed
	GDELTMaxRecords int
	TwitterBearer   string
	OSINTAccounts   []string
	NitterInstances []string

	// Scheduler intervals per source group.
	RSSInterval     time.Duration
	GDELTInterval   time.Duration
	TwitterInterval time.Duration

	// Geocoding configuration.
	GeocodeUserAgent   string
	GeocodeTimeout     time.Duration
	GeocodeMinInterval time.Duration
	GeocodeCacheSize   int

	// Optional external classification tables (YAML); empty uses the
	// embedded defaults.
	ClassifyTables string

	// Optional Kafka write-behind archive. Enabled when brokers are set.
	ArchiveKafkaBrokers []string
	ArchiveKafkaTopic   string
}

// defaultFeeds mirrors the wire services and conflict-focused outlets the
// monitor watches out of the box. Overridable via RSS_FEEDS.
var defaultFeeds = []Feed{
	{Name: "BBC World", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
	{Name: "Reuters", URL: "https://rss.reuters.com/reuters/worldNews"},
	{Name: "Al Jazeera", URL: "https://www.aljazeera.com/xml/rss/all.xml"},
	{Name: "NPR World", URL: "https://feeds.npr.org/1004/rss.xml"},
	{Name: "Guardian", URL: "https://www.theguardian.com/world/rss"},
	{Name: "Sky News", URL: "https://feeds.skynews.com/feeds/rss/world.xml"},
	{Name: "The Intercept", URL: "https://theintercept.com/feed/?rss"},
	{Name: "Bellingcat", URL: "https://www.bellingcat.com/feed/"},
	{Name: "RFERL", URL: "https://www.rferl.org/api/zpqos-uyovem"},
	{Name: "Al Arabiya", URL: "https://english.alarabiya.net/rss.xml"},
	{Name: "CNA Asia", URL: "https://www.channelnewsasia.com/rssfeeds/8395986"},
	{Name: "ReliefWeb", URL: "https://reliefweb.int/updates/rss.xml"},
	{Name: "PressTV", URL: "https://www.presstv.ir/rss.xml"},
	{Name: "TASS", URL: "https://tass.com/rss/v2.xml"},
}

const defaultAccounts = "sentdefender,IntelCrab,OSINTdefender,RALee85,GeoConfirmed,Conflicts," +
	"WarMonitors,Intel_Sky,Osinttechnical,Tendar,Archer83Actual,AA_Battlespace"

const defaultNitterInstances = "https://nitter.net,https://nitter.it,https://nitter.poast.org"

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	storeTTL, err := parseDurationEnv("STORE_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	rssInterval, err := parseDurationEnv("RSS_POLL_INTERVAL", 2*time.Minute)
	if err != nil {
		return nil, err
	}
	gdeltInterval, err := parseDurationEnv("GDELT_POLL_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	twitterInterval, err := parseDurationEnv("TWITTER_POLL_INTERVAL", 3*time.Minute)
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDurationEnv("GEOCODE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	geocodeMinInterval, err := parseDurationEnv("GEOCODE_MIN_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}

	redisDB, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	gdeltMaxRecords, err := parseIntEnv("GDELT_MAX_RECORDS", 75)
	if err != nil {
		return nil, err
	}
	geocodeCacheSize, err := parseIntEnv("GEOCODE_CACHE_SIZE", 2048)
	if err != nil {
		return nil, err
	}

	feeds, err := parseFeeds(os.Getenv("RSS_FEEDS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RedisAddr:     envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		StoreTTL:      storeTTL,

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		RSSFeeds:        feeds,
		GDELTMaxRecords: gdeltMaxRecords,
		TwitterBearer:   os.Getenv("TWITTER_BEARER_TOKEN"),
		OSINTAccounts:   parseList(envOrDefault("OSINT_ACCOUNTS", defaultAccounts)),
		NitterInstances: parseList(envOrDefault("NITTER_INSTANCES", defaultNitterInstances)),

		RSSInterval:     rssInterval,
		GDELTInterval:   gdeltInterval,
		TwitterInterval: twitterInterval,

		GeocodeUserAgent:   envOrDefault("GEOCODE_USER_AGENT", "osint-monitor/1.0"),
		GeocodeTimeout:     geocodeTimeout,
		GeocodeMinInterval: geocodeMinInterval,
		GeocodeCacheSize:   geocodeCacheSize,

		ClassifyTables: os.Getenv("CLASSIFY_TABLES"),

		ArchiveKafkaBrokers: parseList(os.Getenv("ARCHIVE_KAFKA_BROKERS")),
		ArchiveKafkaTopic:   envOrDefault("ARCHIVE_KAFKA_TOPIC", "osint-items"),
	}

	if cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ADDR is required")
	}
	if len(cfg.RSSFeeds) == 0 {
		return nil, errors.New("RSS_FEEDS must name at least one feed")
	}

	return cfg, nil
}

// ArchiveEnabled reports whether the Kafka write-behind sink is configured.
func (c *Config) ArchiveEnabled() bool {
	return len(c.ArchiveKafkaBrokers) > 0
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseIntEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

// parseList splits a comma-separated value, trimming whitespace and
// dropping empty entries.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseFeeds parses RSS_FEEDS entries of the form "Name=URL,Name=URL".
// An empty value selects the built-in feed list.
func parseFeeds(s string) ([]Feed, error) {
	if s == "" {
		return defaultFeeds, nil
	}
	var feeds []Feed
	for _, entry := range parseList(s) {
		name, url, ok := strings.Cut(entry, "=")
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid RSS_FEEDS entry: %q", entry)
		}
		feeds = append(feeds, Feed{Name: strings.TrimSpace(name), URL: strings.TrimSpace(url)})
	}
	return feeds, nil
}
