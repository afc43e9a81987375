package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	twitterBaseURL      = "https://api.twitter.com"
	twitterFetchTimeout = 15 * time.Second
	twitterMaxResults   = 10
)

// tweet is the source-neutral shape both the official API and the Nitter
// scraper normalize into before item construction.
type tweet struct {
	Text        string
	URL         string
	PublishedAt string
	Media       []string
}

// TwitterAPI talks to the official v2 API. Lookups are two-step: resolve the
// username to a numeric ID, then page the user timeline.
type TwitterAPI struct {
	baseURL    string
	bearer     string
	httpClient *http.Client
}

func NewTwitterAPI(bearer string) *TwitterAPI {
	return &TwitterAPI{
		baseURL:    twitterBaseURL,
		bearer:     bearer,
		httpClient: &http.Client{Timeout: twitterFetchTimeout},
	}
}

type twitterUserResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type twitterMedia struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url"`
	PreviewImageURL string `json:"preview_image_url"`
}

type twitterTimelineResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Text        string `json:"text"`
		CreatedAt   string `json:"created_at"`
		Attachments struct {
			MediaKeys []string `json:"media_keys"`
		} `json:"attachments"`
	} `json:"data"`
	Includes struct {
		Media []twitterMedia `json:"media"`
	} `json:"includes"`
}

// Tweets fetches the most recent tweets for a username.
func (t *TwitterAPI) Tweets(ctx context.Context, account string) ([]tweet, error) {
	userID, err := t.lookupUserID(ctx, account)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("max_results", fmt.Sprintf("%d", twitterMaxResults))
	// attachments must be requested as a tweet field or the API omits
	// media_keys, leaving nothing to join against includes.media.
	params.Set("tweet.fields", "created_at,entities,attachments")
	params.Set("expansions", "attachments.media_keys")
	params.Set("media.fields", "url,preview_image_url")

	var timeline twitterTimelineResponse
	endpoint := fmt.Sprintf("%s/2/users/%s/tweets?%s", t.baseURL, userID, params.Encode())
	if err := t.getJSON(ctx, endpoint, &timeline); err != nil {
		return nil, fmt.Errorf("fetch timeline for %s: %w", account, err)
	}

	// The includes block carries media separately, keyed by media_key.
	mediaByKey := make(map[string]twitterMedia, len(timeline.Includes.Media))
	for _, m := range timeline.Includes.Media {
		mediaByKey[m.MediaKey] = m
	}

	tweets := make([]tweet, 0, len(timeline.Data))
	for _, tw := range timeline.Data {
		publishedAt := ""
		if ts, err := time.Parse(time.RFC3339, tw.CreatedAt); err == nil {
			publishedAt = ts.UTC().Format(time.RFC3339)
		}

		var media []string
		for _, key := range tw.Attachments.MediaKeys {
			m, ok := mediaByKey[key]
			if !ok {
				continue
			}
			switch {
			case m.URL != "":
				media = append(media, m.URL)
			case m.PreviewImageURL != "":
				media = append(media, m.PreviewImageURL)
			}
		}

		tweets = append(tweets, tweet{
			Text:        tw.Text,
			URL:         fmt.Sprintf("https://twitter.com/%s/status/%s", account, tw.ID),
			PublishedAt: publishedAt,
			Media:       media,
		})
	}
	return tweets, nil
}

func (t *TwitterAPI) lookupUserID(ctx context.Context, account string) (string, error) {
	var user twitterUserResponse
	endpoint := fmt.Sprintf("%s/2/users/by/username/%s", t.baseURL, url.PathEscape(account))
	if err := t.getJSON(ctx, endpoint, &user); err != nil {
		return "", fmt.Errorf("lookup user %s: %w", account, err)
	}
	if user.Data.ID == "" {
		return "", fmt.Errorf("lookup user %s: no id in response", account)
	}
	return user.Data.ID, nil
}

func (t *TwitterAPI) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.bearer)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
