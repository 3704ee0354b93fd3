package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// FeedLoader fetches the earthquake feed.
type FeedLoader interface {
	FetchFeed(ctx context.Context) (domain.Feed, error)
}

// MarkerPublisher sends a batch of mapped markers downstream.
type MarkerPublisher interface {
	PublishMarkers(ctx context.Context, markers []domain.Marker) error
}

// QuakeMap runs the load, map, render pass.
type QuakeMap struct {
	loader    FeedLoader
	geocoder  domain.Geocoder
	publisher MarkerPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool

	publishMu     sync.Mutex
	lastPublished time.Time
}

// New creates a QuakeMap. geocoder and publisher may be nil to disable
// place enrichment and marker publishing.
func New(loader FeedLoader, geocoder domain.Geocoder, publisher MarkerPublisher, logger *slog.Logger, metrics *observability.Metrics) *QuakeMap {
	return &QuakeMap{
		loader:    loader,
		geocoder:  geocoder,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a map has been built from a live feed.
func (q *QuakeMap) CheckReadiness(_ context.Context) error {
	if !q.ready.Load() {
		return errors.New("no earthquake feed has been loaded yet")
	}
	return nil
}

// Build fetches the feed and produces the map view. When the feed is
// unavailable it logs one error, returns the base view with no legend and no
// markers, and returns the error for the caller to branch on. Callers must not
// log it again.
func (q *QuakeMap) Build(ctx context.Context) (domain.MapView, error) {
	start := time.Now()

	feed, err := q.loader.FetchFeed(ctx)
	if err != nil {
		q.logger.Error("failed to fetch earthquake feed", "error", err)
		return domain.BaseView(), err
	}

	for _, r := range feed.Rejected {
		q.logger.Warn("skipping invalid feature",
			"index", r.Index,
			"event_id", r.ID,
			"error", r.Err,
		)
	}
	q.metrics.RejectedFeatures.Add(float64(len(feed.Rejected)))

	// The loader may hand out a cached feed; enrichment must not write into it.
	quakes := slices.Clone(feed.Earthquakes)
	quakes = domain.EnrichWithGeocoding(ctx, quakes, q.geocoder, q.logger)

	markers := domain.BuildMarkers(quakes)
	q.publish(ctx, feed.Generated, markers)

	view := domain.NewMapView(markers)

	q.metrics.MarkersRendered.Set(float64(len(markers)))
	q.metrics.BuildDuration.Observe(time.Since(start).Seconds())
	q.ready.Store(true)

	q.logger.Debug("map built",
		"markers", len(markers),
		"rejected", len(feed.Rejected),
		"duration", time.Since(start),
	)
	return view, nil
}

// Markers runs Build and returns only the markers. It exists for API callers
// that do not need the page layout.
func (q *QuakeMap) Markers(ctx context.Context) ([]domain.Marker, error) {
	view, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}
	return view.Markers, nil
}

// publish sends markers once per distinct feed document. A zero generated
// time means the feed carried no metadata, so every build is published.
func (q *QuakeMap) publish(ctx context.Context, generated time.Time, markers []domain.Marker) {
	if q.publisher == nil || len(markers) == 0 {
		return
	}

	q.publishMu.Lock()
	defer q.publishMu.Unlock()

	if !generated.IsZero() && generated.Equal(q.lastPublished) {
		return
	}

	if err := q.publisher.PublishMarkers(ctx, markers); err != nil {
		q.logger.Warn("publish markers failed", "error", err, "batch_size", len(markers))
		q.metrics.PublishErrors.Inc()
		return
	}
	q.metrics.MarkersPublished.Add(float64(len(markers)))
	q.lastPublished = generated
}
