//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map-service/internal/adapter/usgs"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/couchcryptid/quake-map-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "test-earthquake-markers"

const sampleFeed = `{
  "type": "FeatureCollection",
  "metadata": {"generated": 1714132800000, "title": "USGS All Earthquakes, Past Week", "count": 3},
  "features": [
    {"type": "Feature", "id": "us7000m9g4",
     "properties": {"mag": 6.1, "place": "Tonga", "time": 1714130000000},
     "geometry": {"type": "Point", "coordinates": [-174.1, -18.5, 120.4]}},
    {"type": "Feature", "id": "ci40734167",
     "properties": {"mag": 1.3, "place": "8 km SW of Ridgecrest, CA", "time": 1714120000000},
     "geometry": {"type": "Point", "coordinates": [-117.7, 35.6, 6.2]}},
    {"type": "Feature", "id": "nn00877000",
     "properties": {"mag": null, "place": "Nevada", "time": 1714110000000},
     "geometry": {"type": "Point", "coordinates": [-118.1, 38.2, 9.0]}}
  ]
}`

// publishedMarker holds a deserialized message read from the marker topic.
type publishedMarker struct {
	Marker  domain.Marker
	Key     string
	Headers map[string]string
}

func readMarker(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMarker {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from marker topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var m domain.Marker
	require.NoError(t, json.Unmarshal(msg.Value, &m), "unmarshal marker message")

	return publishedMarker{Marker: m, Key: string(msg.Key), Headers: headers}
}

func newConsumer(broker string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		Partition:   0,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
}

// TestFeedToKafka drives a build from an HTTP feed through to the marker
// topic and checks every published marker.
func TestFeedToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		io.WriteString(w, sampleFeed) //nolint:errcheck // test server
	}))
	defer feedSrv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}

	writer := kafka.NewWriter(cfg, logger)
	defer writer.Close()

	client := usgs.NewClient(feedSrv.URL, 5*time.Second, metrics, logger)
	q := pipeline.New(client, nil, writer, logger, metrics)

	view, err := q.Build(ctx)
	require.NoError(t, err)
	require.Len(t, view.Markers, 2, "null-magnitude feature is rejected")

	// Same generated timestamp: nothing new is published.
	_, err = q.Build(ctx)
	require.NoError(t, err)

	consumer := newConsumer(broker)
	defer consumer.Close()

	first := readMarker(ctx, t, consumer)
	assert.Equal(t, "us7000m9g4", first.Key)
	assert.Equal(t, "#ea2c2c", first.Headers["depth_color"])
	assert.NotEmpty(t, first.Headers["published_at"])
	assert.InDelta(t, 30.5, first.Marker.Radius, 1e-9)
	assert.InDelta(t, 120.4, first.Marker.Depth, 1e-9)
	assert.Contains(t, first.Marker.Popup, "Location: Tonga")

	second := readMarker(ctx, t, consumer)
	assert.Equal(t, "ci40734167", second.Key)
	assert.Equal(t, "#98ee00", second.Headers["depth_color"])
	assert.Equal(t, "8 km SW of Ridgecrest, CA", second.Marker.Place)

	// The topic holds exactly one batch.
	shortCtx, shortCancel := context.WithTimeout(ctx, 3*time.Second)
	defer shortCancel()
	_, err = consumer.ReadMessage(shortCtx)
	assert.Error(t, err, "duplicate build must not republish")
}

// TestFeedUnavailablePublishesNothing checks that a failed fetch leaves the
// topic empty while the map falls back to the base layer.
func TestFeedUnavailablePublishesNothing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream maintenance", http.StatusServiceUnavailable)
	}))
	defer feedSrv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(&config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}, logger)
	defer writer.Close()

	q := pipeline.New(usgs.NewClient(feedSrv.URL, 5*time.Second, metrics, logger), nil, writer, logger, metrics)

	view, err := q.Build(ctx)
	require.ErrorIs(t, err, domain.ErrFeedUnavailable)
	assert.Nil(t, view.Legend)
	assert.Empty(t, view.Markers)

	consumer := newConsumer(broker)
	defer consumer.Close()

	shortCtx, shortCancel := context.WithTimeout(ctx, 3*time.Second)
	defer shortCancel()
	_, err = consumer.ReadMessage(shortCtx)
	assert.Error(t, err, "nothing is published for an unavailable feed")
}
