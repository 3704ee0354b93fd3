package domain

// LegendTitle heads the legend overlay.
const LegendTitle = "Depth Legend"

// LegendRow is one swatch in the legend.
type LegendRow struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Legend is the static depth legend. It does not depend on feed content.
type Legend struct {
	Title    string      `json:"title"`
	Position string      `json:"position"`
	Rows     []LegendRow `json:"rows"`
}

// BuildLegend returns the six depth buckets as legend rows, deepest first.
func BuildLegend() Legend {
	rows := make([]LegendRow, len(buckets))
	for i, b := range buckets {
		rows[i] = LegendRow{Color: b.Color, Label: b.Label}
	}
	return Legend{
		Title:    LegendTitle,
		Position: "bottomleft",
		Rows:     rows,
	}
}
