// Package geoindex answers bounding-box queries over map markers.
package geoindex

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

// ErrInvalidBBox is returned by ParseBBox for malformed input.
var ErrInvalidBBox = errors.New("invalid bbox")

// Index is an immutable R-tree over a marker slice. Each marker is stored as
// a degenerate box at its epicentre, keyed by its position in the slice.
type Index struct {
	tree    rtree.RTreeG[int]
	markers []domain.Marker
}

// New indexes markers. The slice is retained, not copied.
func New(markers []domain.Marker) *Index {
	idx := &Index{markers: markers}
	for i, m := range markers {
		p := [2]float64{m.Lon, m.Lat}
		idx.tree.Insert(p, p, i)
	}
	return idx
}

// Len returns the number of indexed markers.
func (idx *Index) Len() int {
	return idx.tree.Len()
}

// Within returns markers whose epicentre lies inside b, edges included, in
// their original order. A bound that crosses the antimeridian (Min.Lon >
// Max.Lon) is split in two.
func (idx *Index) Within(b orb.Bound) []domain.Marker {
	var hits []int
	collect := func(_, _ [2]float64, i int) bool {
		hits = append(hits, i)
		return true
	}

	if b.Min.Lon() > b.Max.Lon() {
		idx.tree.Search([2]float64{b.Min.Lon(), b.Min.Lat()}, [2]float64{180, b.Max.Lat()}, collect)
		idx.tree.Search([2]float64{-180, b.Min.Lat()}, [2]float64{b.Max.Lon(), b.Max.Lat()}, collect)
	} else {
		idx.tree.Search([2]float64(b.Min), [2]float64(b.Max), collect)
	}

	slices.Sort(hits)
	hits = slices.Compact(hits)

	out := make([]domain.Marker, len(hits))
	for i, h := range hits {
		out[i] = idx.markers[h]
	}
	return out
}

// ParseBBox parses "minLon,minLat,maxLon,maxLat" in degrees. minLon may
// exceed maxLon for boxes crossing the antimeridian; minLat may not exceed
// maxLat.
func ParseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("%w: want 4 comma-separated numbers, got %d", ErrInvalidBBox, len(parts))
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return orb.Bound{}, fmt.Errorf("%w: %q is not a finite number", ErrInvalidBBox, p)
		}
		v[i] = f
	}

	minLon, minLat, maxLon, maxLat := v[0], v[1], v[2], v[3]
	if minLon < -180 || maxLon > 180 || minLon > 180 || maxLon < -180 {
		return orb.Bound{}, fmt.Errorf("%w: longitude out of range", ErrInvalidBBox)
	}
	if minLat < -90 || maxLat > 90 || minLat > maxLat {
		return orb.Bound{}, fmt.Errorf("%w: latitude out of range", ErrInvalidBBox)
	}

	return orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}, nil
}
