// Package nominatim implements domain.Geocoder against the OpenStreetMap
// Nominatim search API. All calls flow through a process-wide rate limiter:
// Nominatim's usage policy caps anonymous clients at one request per second,
// and the limiter must not be bypassed by concurrent adapters.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/geowatch/osint-monitor/internal/domain"
	"github.com/geowatch/osint-monitor/internal/observability"
)

// maxRetries is the number of extra attempts after a failed call.
const maxRetries = 2

// Client implements domain.Geocoder using the Nominatim search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. minInterval is the minimum spacing
// between any two outgoing requests, shared across all callers.
func NewClient(userAgent string, timeout, minInterval time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://nominatim.openstreetmap.org/search",
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Every(minInterval), 1),
		metrics:    metrics,
		logger:     logger,
	}
}

// Geocode resolves a free-form place name. A zero result with nil error
// means the provider had no match.
func (c *Client) Geocode(ctx context.Context, name string) (domain.GeocodeResult, error) {
	params := url.Values{
		"q":      {name},
		"format": {"json"},
		"limit":  {"1"},
	}
	fullURL := c.baseURL + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return domain.GeocodeResult{}, fmt.Errorf("rate limiter: %w", err)
		}

		result, err := c.doRequest(ctx, fullURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		c.logger.Debug("geocode attempt failed", "name", name, "attempt", attempt+1, "error", err)
	}

	c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	return domain.GeocodeResult{}, lastErr
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.GeocodeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.GeocodeResult{}, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.GeocodeResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(places) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		return domain.GeocodeResult{}, nil
	}

	p := places[0]
	lat, errLat := strconv.ParseFloat(p.Lat, 64)
	lon, errLon := strconv.ParseFloat(p.Lon, 64)
	if errLat != nil || errLon != nil {
		return domain.GeocodeResult{}, fmt.Errorf("parse coordinates %q,%q", p.Lat, p.Lon)
	}

	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	return domain.GeocodeResult{
		Lat:         lat,
		Lon:         lon,
		DisplayName: p.DisplayName,
	}, nil
}

// Nominatim API response element. Coordinates arrive as strings.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
