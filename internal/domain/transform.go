package domain

import (
	"html"
	"strconv"
	"strings"
)

// RadiusFactor scales magnitude to marker radius in pixels.
const RadiusFactor = 5

// Bucket is a depth range mapped to a fixed display colour.
type Bucket struct {
	Floor float64 // exclusive lower bound in km; ignored for the shallowest bucket
	Color string
	Label string
}

// buckets is ordered deepest first. DepthColor walks it top-down.
var buckets = [...]Bucket{
	{Floor: 90, Color: "#ea2c2c", Label: "> 90 km"},
	{Floor: 70, Color: "#ea822c", Label: "70–90 km"},
	{Floor: 50, Color: "#ee9c00", Label: "50–70 km"},
	{Floor: 30, Color: "#eecc00", Label: "30–50 km"},
	{Floor: 10, Color: "#d4ee00", Label: "10–30 km"},
	{Color: "#98ee00", Label: "≤ 10 km"},
}

// Buckets returns the six depth buckets, deepest first.
func Buckets() []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets[:])
	return out
}

// DepthColor maps a depth in km to its bucket colour.
func DepthColor(depth float64) string {
	return buckets[bucketIndex(depth)].Color
}

// bucketIndex returns the index into buckets for depth. Lower index means
// deeper.
func bucketIndex(depth float64) int {
	last := len(buckets) - 1
	for i := 0; i < last; i++ {
		if depth > buckets[i].Floor {
			return i
		}
	}
	return last
}

// Radius maps a magnitude to a marker radius.
func Radius(magnitude float64) float64 {
	return magnitude * RadiusFactor
}

// MapAttributes derives a radius and colour for every earthquake, in order.
func MapAttributes(quakes []Earthquake) Attributes {
	attrs := Attributes{
		Sizes:  make([]float64, len(quakes)),
		Colors: make([]string, len(quakes)),
	}
	for i, q := range quakes {
		attrs.Sizes[i] = Radius(q.Magnitude)
		attrs.Colors[i] = DepthColor(q.Depth)
	}
	return attrs
}

// BuildMarkers combines earthquakes with their mapped attributes and popup
// text. Marker order follows quake order.
func BuildMarkers(quakes []Earthquake) []Marker {
	attrs := MapAttributes(quakes)
	markers := make([]Marker, len(quakes))
	for i, q := range quakes {
		markers[i] = Marker{
			Earthquake: q,
			Radius:     attrs.Sizes[i],
			Color:      attrs.Colors[i],
			Popup:      Popup(q),
		}
	}
	return markers
}

// Popup renders the HTML popup body for one earthquake.
func Popup(q Earthquake) string {
	place := strings.TrimSpace(q.Place)
	if place == "" {
		place = "Unknown location"
	}
	var b strings.Builder
	b.WriteString("Magnitude: ")
	b.WriteString(formatNumber(q.Magnitude))
	b.WriteString("<br>Location: ")
	b.WriteString(html.EscapeString(place))
	b.WriteString("<br>Depth: ")
	b.WriteString(formatNumber(q.Depth))
	b.WriteString(" km")
	return b.String()
}

// formatNumber prints the shortest decimal that round-trips, e.g. 4.5 or 10.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
