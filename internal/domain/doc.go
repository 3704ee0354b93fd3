// Package domain models USGS earthquake feed data and the visual attributes
// derived from it.
//
// # Data Source
//
// Earthquakes come from the USGS real-time GeoJSON summary feeds, by default
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson.
// The document is a FeatureCollection; each Feature is one event.
//
// # Feed Conventions
//
// Geometry:
//
//	Point with coordinates [longitude, latitude, depth].
//	Depth is in kilometres below the reference surface. Negative depths are
//	valid and mean the hypocentre lies above sea level.
//
// Properties used here:
//
//	mag    number or null. Null happens for events that have not been sized yet.
//	place  string or null, e.g. "10 km SSW of Idyllwild, CA".
//	time   epoch milliseconds.
//	url    event page on earthquake.usgs.gov.
//
// # Validation
//
// A feature without a magnitude, without a Point geometry, or with fewer than
// three coordinates is rejected (see [ErrInvalidFeature]) and left out of the
// feed. Rejected features never reach the attribute mapper, so every derived
// slice stays index-aligned with [Feed.Earthquakes]. A missing place is kept
// as an empty string and may be filled in by reverse geocoding.
//
// # Visual Attributes
//
// Marker radius is magnitude times [RadiusFactor]. Marker colour is picked by
// depth bucket, evaluated from the deepest bucket down with strict
// greater-than, so a depth sitting exactly on a boundary falls to the
// shallower bucket:
//
//	> 90 km   #ea2c2c
//	70–90 km  #ea822c
//	50–70 km  #ee9c00
//	30–50 km  #eecc00
//	10–30 km  #d4ee00
//	≤ 10 km   #98ee00
//
// NaN compares false against every threshold and lands in the shallowest
// bucket.
package domain
