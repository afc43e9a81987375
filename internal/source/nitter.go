package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	nitterFetchTimeout = 15 * time.Second
	nitterDateLayout   = "Jan 2, 2006 · 3:04 PM UTC"
	nitterMaxTweets    = 10
)

// Nitter scrapes public Nitter mirrors as the fallback when the official API
// is unavailable. Mirrors are tried in order; the first one that yields
// tweets wins.
type Nitter struct {
	instances  []string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewNitter(instances []string, logger *slog.Logger) *Nitter {
	return &Nitter{
		instances:  instances,
		httpClient: &http.Client{Timeout: nitterFetchTimeout},
		logger:     logger,
	}
}

// Tweets scrapes an account timeline, returning an error only when every
// mirror failed or came back empty.
func (n *Nitter) Tweets(ctx context.Context, account string) ([]tweet, error) {
	var lastErr error
	for _, instance := range n.instances {
		tweets, err := n.scrape(ctx, instance, account)
		if err != nil {
			n.logger.Debug("nitter mirror failed",
				slog.String("instance", instance),
				slog.String("account", account),
				slog.String("error", err.Error()))
			lastErr = err
			continue
		}
		if len(tweets) > 0 {
			return tweets, nil
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("all nitter mirrors failed for %s: %w", account, lastErr)
	}
	return nil, fmt.Errorf("no nitter mirror returned tweets for %s", account)
}

func (n *Nitter) scrape(ctx context.Context, instance, account string) ([]tweet, error) {
	endpoint := strings.TrimRight(instance, "/") + "/" + account
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", rssUserAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var tweets []tweet
	doc.Find(".timeline-item").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := collapseWhitespace(sel.Find(".tweet-content").Text())
		if text == "" {
			return true
		}

		publishedAt := ""
		if title, ok := sel.Find(".tweet-date a").Attr("title"); ok {
			if ts, err := time.Parse(nitterDateLayout, title); err == nil {
				publishedAt = ts.UTC().Format(time.RFC3339)
			}
		}

		tweetURL := endpoint
		if href, ok := sel.Find(".tweet-date a").Attr("href"); ok {
			tweetURL = absoluteURL(instance, href)
		}

		var media []string
		sel.Find(".attachment img").Each(func(_ int, img *goquery.Selection) {
			if src, ok := img.Attr("src"); ok && src != "" {
				media = append(media, absoluteURL(instance, src))
			}
		})
		sel.Find("video source").Each(func(_ int, vid *goquery.Selection) {
			if src, ok := vid.Attr("src"); ok && src != "" {
				media = append(media, absoluteURL(instance, src))
			}
		})

		tweets = append(tweets, tweet{
			Text:        text,
			URL:         tweetURL,
			PublishedAt: publishedAt,
			Media:       media,
		})
		return len(tweets) < nitterMaxTweets
	})
	return tweets, nil
}

// absoluteURL prefixes mirror-relative media and status links with the
// instance origin.
func absoluteURL(instance, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(instance, "/") + "/" + strings.TrimLeft(ref, "/")
}
