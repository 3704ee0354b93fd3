package domain

import (
	"context"
	"log/slog"
	"strings"
)

// EnrichWithGeocoding fills in the place of earthquakes that arrived without
// one. Quakes that already have a place are left alone. A nil geocoder is a
// no-op. Lookup failures keep the empty place so the popup falls back to
// "Unknown location".
func EnrichWithGeocoding(ctx context.Context, quakes []Earthquake, geocoder Geocoder, logger *slog.Logger) []Earthquake {
	if geocoder == nil {
		return quakes
	}

	for i := range quakes {
		if strings.TrimSpace(quakes[i].Place) != "" {
			continue
		}
		if ctx.Err() != nil {
			return quakes
		}

		result, err := geocoder.ReverseGeocode(ctx, quakes[i].Lat, quakes[i].Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"event_id", quakes[i].ID,
				"lat", quakes[i].Lat,
				"lon", quakes[i].Lon,
				"error", err,
			)
			continue
		}
		if result.FormattedAddress != "" {
			quakes[i].Place = result.FormattedAddress
		}
	}
	return quakes
}
