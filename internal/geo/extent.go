package geo

import "github.com/paulmach/orb"

// Extent summarizes the range of a point set per axis.
type Extent struct {
	Count int
	Bound orb.Bound
	Mean  orb.Point
}

// Span returns the larger of the two axis spans.
func (e Extent) Span() float64 {
	dx := e.Bound.Max[0] - e.Bound.Min[0]
	dy := e.Bound.Max[1] - e.Bound.Min[1]
	if dx > dy {
		return dx
	}
	return dy
}

// Describe computes the extent of the points. An empty input yields a
// zero Extent.
func Describe(points []orb.Point) Extent {
	if len(points) == 0 {
		return Extent{}
	}
	var sx, sy float64
	for _, p := range points {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(points))
	return Extent{
		Count: len(points),
		Bound: orb.MultiPoint(points).Bound(),
		Mean:  orb.Point{sx / n, sy / n},
	}
}
