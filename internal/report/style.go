package report

import (
	"math"
	"strings"

	"github.com/KaramelBytes/atmscope/internal/geo"
)

// DensityMapFile is the file name of the ward density map.
const DensityMapFile = "atm_density_heatmap.html"

// Style is a marker color and glyph.
type Style struct {
	Color string
	Icon  string
}

// Tier maps a ward's ATM count to its marker style.
func Tier(count int) Style {
	switch {
	case count >= 50:
		return Style{Color: "red", Icon: "fire"}
	case count >= 30:
		return Style{Color: "orange", Icon: "star"}
	case count >= 20:
		return Style{Color: "yellow", Icon: "info-sign"}
	case count >= 10:
		return Style{Color: "blue", Icon: "ok-sign"}
	default:
		return Style{Color: "green", Icon: "minus-sign"}
	}
}

// MapFilename derives the per-name map file name.
func MapFilename(name string) string {
	s := strings.ReplaceAll(name, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ToLower(s) + "_atm_map.html"
}

// ZoomFor picks an initial zoom level from the larger axis span in degrees.
func ZoomFor(e geo.Extent) int {
	span := e.Span()
	switch {
	case math.IsNaN(span):
		return 13
	case span > 0.1:
		return 10
	case span > 0.05:
		return 11
	case span > 0.01:
		return 12
	default:
		return 13
	}
}
