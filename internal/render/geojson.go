package render

import (
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MarkerCollection converts markers into a GeoJSON FeatureCollection whose
// properties carry everything the page needs to draw each circle. Depth is
// repeated as a property because orb points are two-dimensional.
func MarkerCollection(markers []domain.Marker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(markers))
	for _, m := range markers {
		f := geojson.NewFeature(orb.Point{m.Lon, m.Lat})
		f.ID = m.ID
		f.Properties["mag"] = m.Magnitude
		f.Properties["place"] = m.Place
		f.Properties["depth"] = m.Depth
		f.Properties["radius"] = m.Radius
		f.Properties["color"] = m.Color
		f.Properties["popup"] = m.Popup
		if !m.Time.IsZero() {
			f.Properties["time"] = m.Time.UnixMilli()
		}
		if m.URL != "" {
			f.Properties["url"] = m.URL
		}
		fc.Append(f)
	}
	return fc
}
