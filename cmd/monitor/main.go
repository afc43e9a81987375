package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/geowatch/osint-monitor/internal/adapter/httpapi"
	kafkaadapter "github.com/geowatch/osint-monitor/internal/adapter/kafka"
	"github.com/geowatch/osint-monitor/internal/adapter/nominatim"
	"github.com/geowatch/osint-monitor/internal/classify"
	"github.com/geowatch/osint-monitor/internal/config"
	"github.com/geowatch/osint-monitor/internal/geo"
	"github.com/geowatch/osint-monitor/internal/ingest"
	"github.com/geowatch/osint-monitor/internal/observability"
	"github.com/geowatch/osint-monitor/internal/source"
	"github.com/geowatch/osint-monitor/internal/store"
)

// refresher kicks every registered runner at once, outside the schedule.
type refresher struct {
	runners []*ingest.Runner
}

func (r *refresher) RefreshAll(ctx context.Context) {
	for _, runner := range r.runners {
		runner.Run(ctx)
	}
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is the working set; there is nothing to serve without it.
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	st := store.New(client, cfg.StoreTTL, metrics, logger)
	if err := st.Ping(ctx); err != nil {
		logger.Error("redis unavailable", "error", err)
		os.Exit(1)
	}

	tables, err := loadTables(cfg)
	if err != nil {
		logger.Error("failed to load classification tables", "error", err)
		os.Exit(1)
	}
	engine := classify.NewEngine(tables)

	geocoderClient := nominatim.NewClient(cfg.GeocodeUserAgent, cfg.GeocodeTimeout,
		cfg.GeocodeMinInterval, metrics, logger)
	geocoder := nominatim.NewCachedGeocoder(geocoderClient, cfg.GeocodeCacheSize, metrics)
	resolver := geo.NewResolver(geo.NewProseExtractor(logger), geocoder, logger)

	var archive ingest.Archive
	if cfg.ArchiveEnabled() {
		kafkaArchive := kafkaadapter.NewArchive(cfg.ArchiveKafkaBrokers, cfg.ArchiveKafkaTopic, metrics, logger)
		defer func() {
			if err := kafkaArchive.Close(); err != nil {
				logger.Error("kafka archive close error", "error", err)
			}
		}()
		archive = kafkaArchive
		logger.Info("kafka archive enabled", "topic", cfg.ArchiveKafkaTopic)
	}

	// News sources feed the event namespace, social sources the tweet
	// namespace. Each group cycles on its own interval.
	var newsSources []source.Source
	for _, feed := range cfg.RSSFeeds {
		newsSources = append(newsSources, source.NewRSSFeed(feed, resolver, engine, logger, metrics))
	}
	gdeltSource := source.NewGDELT(cfg.GDELTMaxRecords, resolver, engine, logger, metrics)

	var twitterAPI *source.TwitterAPI
	if cfg.TwitterBearer != "" {
		twitterAPI = source.NewTwitterAPI(cfg.TwitterBearer)
	} else {
		logger.Info("no twitter bearer token, social ingestion uses nitter only")
	}
	nitter := source.NewNitter(cfg.NitterInstances, logger)

	var socialSources []source.Source
	for _, account := range cfg.OSINTAccounts {
		socialSources = append(socialSources,
			source.NewSocialAccount(account, twitterAPI, nitter, resolver, engine, logger, metrics))
	}

	rssRunner := ingest.NewRunner("rss", store.NamespaceEvents, newsSources, st, archive, metrics, logger)
	gdeltRunner := ingest.NewRunner("gdelt", store.NamespaceEvents,
		[]source.Source{gdeltSource}, st, archive, metrics, logger)
	socialRunner := ingest.NewRunner("social", store.NamespaceTweets, socialSources, st, archive, metrics, logger)

	scheduler := ingest.NewScheduler(ctx, logger)
	for _, reg := range []struct {
		name     string
		interval time.Duration
		runner   *ingest.Runner
	}{
		{"rss", cfg.RSSInterval, rssRunner},
		{"gdelt", cfg.GDELTInterval, gdeltRunner},
		{"social", cfg.TwitterInterval, socialRunner},
	} {
		if err := scheduler.Register(reg.name, reg.interval, reg.runner.Run); err != nil {
			logger.Error("failed to schedule group", "group", reg.name, "error", err)
			os.Exit(1)
		}
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, st,
		&refresher{runners: []*ingest.Runner{rssRunner, gdeltRunner, socialRunner}},
		cfg.OSINTAccounts, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	scheduler.Start()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	scheduler.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := client.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func loadTables(cfg *config.Config) (classify.Tables, error) {
	if cfg.ClassifyTables != "" {
		return classify.LoadTables(cfg.ClassifyTables)
	}
	return classify.DefaultTables()
}
