package domain

import (
	"errors"
	"time"
)

var (
	// ErrFeedUnavailable covers every way the feed request can fail: transport
	// errors, non-2xx responses and bodies that are not a FeatureCollection.
	ErrFeedUnavailable = errors.New("earthquake feed unavailable")

	// ErrInvalidFeature marks a single feature that cannot be placed on the map.
	ErrInvalidFeature = errors.New("invalid earthquake feature")
)

// Earthquake is one event from the feed.
type Earthquake struct {
	ID        string    `json:"id"`
	Magnitude float64   `json:"mag"`
	Depth     float64   `json:"depth"` // km, negative above sea level
	Place     string    `json:"place"`
	Lon       float64   `json:"lon"`
	Lat       float64   `json:"lat"`
	Time      time.Time `json:"time"`
	URL       string    `json:"url,omitempty"`
}

// Feed is a parsed and validated feed document.
type Feed struct {
	Title       string
	Generated   time.Time
	Earthquakes []Earthquake
	Rejected    []*FeatureError // features dropped by validation
}

// Attributes holds the per-earthquake visual attributes, index-aligned with
// the slice they were derived from.
type Attributes struct {
	Sizes  []float64
	Colors []string
}

// Marker is an earthquake together with everything needed to draw it.
type Marker struct {
	Earthquake
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
	Popup  string  `json:"popup"`
}

// MapView is the complete description of one rendered map.
type MapView struct {
	Center      [2]float64 // lat, lon
	Zoom        int
	TileURL     string
	Attribution string
	Legend      *Legend // nil when the feed could not be loaded
	Markers     []Marker
	GeneratedAt time.Time
}

const (
	// TileURL is the base layer template.
	TileURL = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"

	// TileAttribution is shown in the map's attribution control.
	TileAttribution = `Map data: &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors, ` +
		`<a href="http://viewfinderpanoramas.org">SRTM</a> | Map style: &copy; <a href="https://opentopomap.org">OpenTopoMap</a> ` +
		`(<a href="https://creativecommons.org/licenses/by-sa/3.0/">CC-BY-SA</a>)`

	// DefaultZoom shows the whole world at common screen sizes.
	DefaultZoom = 2
)

// BaseView returns a view with only the base tile layer: no legend, no markers.
func BaseView() MapView {
	return MapView{
		Center:      [2]float64{0, 0},
		Zoom:        DefaultZoom,
		TileURL:     TileURL,
		Attribution: TileAttribution,
		GeneratedAt: clock.Now(),
	}
}

// NewMapView builds the full view for a set of markers.
func NewMapView(markers []Marker) MapView {
	view := BaseView()
	legend := BuildLegend()
	view.Legend = &legend
	view.Markers = markers
	if view.Markers == nil {
		view.Markers = []Marker{}
	}
	return view
}
