package usgs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// maxFeedBytes bounds the body read. The weekly all-magnitude feed is a few MB.
const maxFeedBytes = 64 << 20

// Client fetches a USGS GeoJSON summary feed.
type Client struct {
	feedURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client for feedURL.
func NewClient(feedURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		feedURL: feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// FetchFeed issues one GET for the feed and parses it. Every failure wraps
// domain.ErrFeedUnavailable. There is no retry.
func (c *Client) FetchFeed(ctx context.Context) (domain.Feed, error) {
	start := time.Now()
	feed, err := c.fetch(ctx)
	c.metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.FeedFetches.WithLabelValues("error").Inc()
		return domain.Feed{}, err
	}
	c.metrics.FeedFetches.WithLabelValues("success").Inc()
	c.logger.Debug("feed fetched",
		"url", c.feedURL,
		"earthquakes", len(feed.Earthquakes),
		"rejected", len(feed.Rejected),
		"duration", time.Since(start),
	)
	return feed, nil
}

func (c *Client) fetch(ctx context.Context) (domain.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return domain.Feed{}, fmt.Errorf("%w: create request: %w", domain.ErrFeedUnavailable, err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Feed{}, fmt.Errorf("%w: feed request: %w", domain.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Feed{}, fmt.Errorf("%w: status %d: %s", domain.ErrFeedUnavailable, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return domain.Feed{}, fmt.Errorf("%w: read body: %w", domain.ErrFeedUnavailable, err)
	}

	return domain.ParseFeed(body)
}
