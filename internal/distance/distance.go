package distance

import (
	"math"

	"github.com/KaramelBytes/atmscope/internal/logger"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// KmToMiles converts kilometres to statute miles for display.
const KmToMiles = 0.621371

// Stats reduces the pairwise distances of a point set.
type Stats struct {
	Pairs   int // pairs that contributed
	Skipped int // degenerate pairs left out
	MinKm   float64
	MaxKm   float64
	MeanKm  float64
}

// Result is the outcome of a pairwise sweep. Stats is nil when there
// were fewer than two points or no pair produced a usable distance.
type Result struct {
	Points       int
	Insufficient bool
	Stats        *Stats
}

// Kilometres returns the great-circle distance between two lon/lat points.
func Kilometres(a, b orb.Point) float64 {
	return geo.DistanceHaversine(a, b) / 1000
}

// Analyze computes great-circle distances for every unordered pair and
// reduces them to min, max and mean. Pairs whose distance is not finite
// are logged and skipped.
func Analyze(points []orb.Point, log *logger.Logger) Result {
	if log == nil {
		log = logger.Nop()
	}
	res := Result{Points: len(points)}
	if len(points) < 2 {
		res.Insufficient = true
		return res
	}
	st := Stats{MinKm: math.Inf(1), MaxKm: math.Inf(-1)}
	var sum float64
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			d := Kilometres(points[i], points[j])
			if math.IsNaN(d) || math.IsInf(d, 0) {
				log.Warn("skipping degenerate pair", "i", i, "j", j, "a", points[i], "b", points[j])
				st.Skipped++
				continue
			}
			st.Pairs++
			sum += d
			if d < st.MinKm {
				st.MinKm = d
			}
			if d > st.MaxKm {
				st.MaxKm = d
			}
		}
	}
	if st.Pairs == 0 {
		log.Warn("no valid distances calculated", "skipped", st.Skipped)
		return res
	}
	st.MeanKm = sum / float64(st.Pairs)
	res.Stats = &st
	return res
}
