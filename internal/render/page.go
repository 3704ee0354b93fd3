// Package render turns a MapView into a self-contained Leaflet page.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/domain"
)

// Marker styling shared by every circle.
const (
	markerStroke      = "#000"
	markerWeight      = 1
	markerOpacity     = 1
	markerFillOpacity = 0.7
)

var pageTemplate = template.Must(template.New("map").Parse(pageHTML))

type pageData struct {
	Title       string
	Center      [2]float64
	Zoom        int
	TileURL     string
	Attribution string
	Legend      *domain.Legend
	MarkerCount int
	Markers     template.JS
	GeneratedAt string

	Stroke      string
	Weight      int
	Opacity     float64
	FillOpacity float64
}

// Page writes the HTML page for view to w. A view without a legend renders
// the base tile layer only.
func Page(w io.Writer, view domain.MapView) error {
	markers, err := MarkerCollection(view.Markers).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode markers: %w", err)
	}

	data := pageData{
		Title:       "Earthquakes, Past Week",
		Center:      view.Center,
		Zoom:        view.Zoom,
		TileURL:     view.TileURL,
		Attribution: view.Attribution,
		Legend:      view.Legend,
		MarkerCount: len(view.Markers),
		Markers:     template.JS(markers),
		GeneratedAt: view.GeneratedAt.UTC().Format(time.RFC3339),

		Stroke:      markerStroke,
		Weight:      markerWeight,
		Opacity:     markerOpacity,
		FillOpacity: markerFillOpacity,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// WriteFile renders view to path. It writes to a temp file first and
// renames, so a browser never reads a partial page.
func WriteFile(path string, view domain.MapView) error {
	var buf bytes.Buffer
	if err := Page(&buf, view); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css" />
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <style>
    html, body, #map { height: 100%; margin: 0; }
    .legend { background: rgba(255, 255, 255, 0.85); padding: 6px 10px; line-height: 18px; color: #333; border-radius: 4px; }
    .legend h4 { margin: 0 0 6px; }
    .legend i { width: 18px; height: 18px; float: left; margin-right: 8px; opacity: 0.9; }
  </style>
</head>
<body data-generated-at="{{.GeneratedAt}}" data-marker-count="{{.MarkerCount}}">
  <div id="map"></div>
  <script>
    var map = L.map('map').setView({{.Center}}, {{.Zoom}});

    L.tileLayer({{.TileURL}}, { attribution: {{.Attribution}} }).addTo(map);
{{- if .Legend}}

    var legendData = {{.Legend}};
    var legend = L.control({ position: legendData.position });
    legend.onAdd = function () {
      var div = L.DomUtil.create('div', 'info legend');
      var title = document.createElement('h4');
      title.textContent = legendData.title;
      div.appendChild(title);
      legendData.rows.forEach(function (row) {
        var swatch = document.createElement('i');
        swatch.style.background = row.color;
        div.appendChild(swatch);
        div.appendChild(document.createTextNode(row.label));
        div.appendChild(document.createElement('br'));
      });
      return div;
    };
    legend.addTo(map);

    var markers = {{.Markers}};
    L.geoJSON(markers, {
      pointToLayer: function (feature, latlng) {
        return L.circleMarker(latlng, {
          radius: feature.properties.radius,
          fillColor: feature.properties.color,
          color: {{.Stroke}},
          weight: {{.Weight}},
          opacity: {{.Opacity}},
          fillOpacity: {{.FillOpacity}}
        });
      },
      onEachFeature: function (feature, layer) {
        layer.bindPopup(feature.properties.popup);
      }
    }).addTo(map);
{{- end}}
  </script>
</body>
</html>
`
