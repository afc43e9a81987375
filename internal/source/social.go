package source

import (
	"context"
	"log/slog"
	"time"

	"github.com/geowatch/osint-monitor/internal/classify"
	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/observability"
)

// SocialAccount ingests one monitored account. The official API is preferred
// when a bearer token is configured; any failure there, including an empty
// timeline, drops through to Nitter scraping. Unlike the news sources, items
// without resolved coordinates are kept.
type SocialAccount struct {
	account  string
	twitter  *TwitterAPI
	nitter   *Nitter
	resolver Resolver
	engine   *classify.Engine
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewSocialAccount creates a Source for one account. twitter may be nil when
// no bearer token is configured, in which case Nitter is the only path.
func NewSocialAccount(account string, twitter *TwitterAPI, nitter *Nitter, resolver Resolver, engine *classify.Engine, logger *slog.Logger, metrics *observability.Metrics) *SocialAccount {
	return &SocialAccount{
		account:  account,
		twitter:  twitter,
		nitter:   nitter,
		resolver: resolver,
		engine:   engine,
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *SocialAccount) Name() string {
	return "social:" + s.account
}

// Fetch pulls the account timeline and normalizes it. Total mirror failure
// is reported as an empty batch rather than an error so one dead account
// never aborts a cycle.
func (s *SocialAccount) Fetch(ctx context.Context) ([]domain.Item, error) {
	sourceType := domain.SourceTwitterAPI
	var tweets []tweet

	if s.twitter != nil {
		var err error
		tweets, err = s.twitter.Tweets(ctx, s.account)
		if err != nil {
			s.logger.Warn("twitter api failed, falling back to nitter",
				slog.String("account", s.account),
				slog.String("error", err.Error()))
			tweets = nil
		}
	}

	if len(tweets) == 0 {
		sourceType = domain.SourceNitter
		var err error
		tweets, err = s.nitter.Tweets(ctx, s.account)
		if err != nil {
			s.logger.Warn("nitter scrape failed",
				slog.String("account", s.account),
				slog.String("error", err.Error()))
			return nil, nil
		}
	}

	items := make([]domain.Item, 0, len(tweets))
	for _, tw := range tweets {
		if tw.Text == "" {
			s.metrics.ItemsSkipped.WithLabelValues(string(sourceType), "parse").Inc()
			continue
		}

		publishedAt := tw.PublishedAt
		if publishedAt == "" {
			publishedAt = domain.Now().UTC().Format(time.RFC3339)
		}

		tags := hashtags(tw.Text)

		item := domain.Item{
			ID:          domain.SocialID(s.account, tw.Text),
			Text:        tw.Text,
			URL:         tw.URL,
			Source:      s.account,
			SourceType:  sourceType,
			Account:     s.account,
			Hashtags:    tags,
			MediaURLs:   tw.Media,
			PublishedAt: publishedAt,
		}
		if item.MediaURLs == nil {
			item.MediaURLs = []string{}
		}

		// Hashtags often name the place directly, so they go in ahead of
		// whatever entity extraction finds in the body.
		if geoResult, ok := s.resolver.Resolve(ctx, tw.Text, tags); ok {
			lat, lon := geoResult.Lat, geoResult.Lon
			item.Lat = &lat
			item.Lon = &lon
			item.LocationName = geoResult.LocationName
			item.CountryCode = geoResult.CountryCode
		}

		verdict := s.engine.Classify(tw.Text)
		item.Category = verdict.Category
		item.Topics = verdict.Topics
		item.Severity = verdict.Severity
		item.IsBreaking = verdict.IsBreaking

		items = append(items, item)
	}

	s.metrics.ItemsIngested.WithLabelValues(string(sourceType)).Add(float64(len(items)))
	return items, nil
}
