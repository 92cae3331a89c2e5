package atm

import "github.com/paulmach/orb"

// Record is one ATM row as read from the store. X and Y are planar
// coordinates in the configured source projection.
type Record struct {
	Name    string
	Address string
	X       float64
	Y       float64
	Ward    string
	ZipCode string
}

// Planar returns the projected coordinate pair as an orb.Point (x, y).
func (r Record) Planar() orb.Point { return orb.Point{r.X, r.Y} }

// Located is a Record whose coordinates converted to a valid
// geographic point. Point is stored in lon/lat order.
type Located struct {
	Record
	Point orb.Point
}

// Lat returns the latitude in degrees.
func (l Located) Lat() float64 { return l.Point.Lat() }

// Lon returns the longitude in degrees.
func (l Located) Lon() float64 { return l.Point.Lon() }

// Points extracts the geographic points of the given records in order.
func Points(recs []Located) []orb.Point {
	out := make([]orb.Point, len(recs))
	for i, r := range recs {
		out[i] = r.Point
	}
	return out
}
