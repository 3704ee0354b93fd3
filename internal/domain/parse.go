package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// feedDocument mirrors the parts of the USGS summary feed we read. orb's
// geojson types drop the third coordinate, which carries depth, so the feed
// is decoded into these structs instead.
type feedDocument struct {
	Type     string        `json:"type"`
	Metadata feedMetadata  `json:"metadata"`
	Features []json.RawMessage `json:"features"` // decoded one by one in ParseFeed
}

type feedMetadata struct {
	Generated int64  `json:"generated"` // epoch ms
	Title     string `json:"title"`
	Count     int    `json:"count"`
}

type feedFeature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Properties featureProps   `json:"properties"`
	Geometry   *pointGeometry `json:"geometry"`
}

type featureProps struct {
	Mag   *float64 `json:"mag"`
	Place *string  `json:"place"`
	Time  int64    `json:"time"`
	URL   string   `json:"url"`
}

type pointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []*float64 `json:"coordinates"` // nil entries are JSON nulls
}

// FeatureError describes one feature rejected during ParseFeed.
type FeatureError struct {
	Index int
	ID    string
	Err   error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("feature %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }

// ParseFeed decodes a feed body into a Feed. A body that is not a GeoJSON
// FeatureCollection returns an error wrapping ErrFeedUnavailable. Features
// that fail to decode or validate are skipped and listed in Feed.Rejected;
// they never abort the parse.
func ParseFeed(body []byte) (Feed, error) {
	var doc feedDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return Feed{}, fmt.Errorf("%w: decode feed: %w", ErrFeedUnavailable, err)
	}
	if doc.Type != "FeatureCollection" {
		return Feed{}, fmt.Errorf("%w: unexpected document type %q", ErrFeedUnavailable, doc.Type)
	}

	feed := Feed{
		Title:       doc.Metadata.Title,
		Earthquakes: make([]Earthquake, 0, len(doc.Features)),
	}
	if doc.Metadata.Generated > 0 {
		feed.Generated = time.UnixMilli(doc.Metadata.Generated).UTC()
	}

	for i, raw := range doc.Features {
		var f feedFeature
		if err := json.Unmarshal(raw, &f); err != nil {
			feed.Rejected = append(feed.Rejected, &FeatureError{
				Index: i,
				ID:    featureID(raw),
				Err:   fmt.Errorf("%w: decode: %w", ErrInvalidFeature, err),
			})
			continue
		}
		q, err := parseFeature(f)
		if err != nil {
			feed.Rejected = append(feed.Rejected, &FeatureError{Index: i, ID: f.ID, Err: err})
			continue
		}
		feed.Earthquakes = append(feed.Earthquakes, q)
	}

	return feed, nil
}

func parseFeature(f feedFeature) (Earthquake, error) {
	if f.Properties.Mag == nil {
		return Earthquake{}, fmt.Errorf("%w: missing magnitude", ErrInvalidFeature)
	}
	if f.Geometry == nil || f.Geometry.Type != "Point" {
		return Earthquake{}, fmt.Errorf("%w: geometry is not a Point", ErrInvalidFeature)
	}
	if len(f.Geometry.Coordinates) < 3 {
		return Earthquake{}, fmt.Errorf("%w: expected [lon, lat, depth], got %d coordinates",
			ErrInvalidFeature, len(f.Geometry.Coordinates))
	}

	mag := *f.Properties.Mag
	if math.IsInf(Radius(mag), 0) {
		return Earthquake{}, fmt.Errorf("%w: magnitude %g out of range", ErrInvalidFeature, mag)
	}
	lon, lat, depth := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1], f.Geometry.Coordinates[2]
	if lon == nil || lat == nil || depth == nil {
		return Earthquake{}, fmt.Errorf("%w: null coordinate", ErrInvalidFeature)
	}

	q := Earthquake{
		ID:        f.ID,
		Magnitude: mag,
		Lon:       *lon,
		Lat:       *lat,
		Depth:     *depth,
		URL:       f.Properties.URL,
	}
	if f.Properties.Place != nil {
		q.Place = *f.Properties.Place
	}
	if f.Properties.Time > 0 {
		q.Time = time.UnixMilli(f.Properties.Time).UTC()
	}
	return q, nil
}

// featureID recovers the id of a feature that failed to decode, if the id
// itself is readable.
func featureID(raw json.RawMessage) string {
	var f struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &f)
	return f.ID
}
