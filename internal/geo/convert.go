package geo

import (
	"math"

	"github.com/KaramelBytes/atmscope/internal/atm"
	"github.com/KaramelBytes/atmscope/internal/logger"
	"github.com/paulmach/orb"
)

// Result is the outcome of converting one planar pair. Point is in
// lon/lat order; Valid reports whether it is usable.
type Result struct {
	Point orb.Point
	Valid bool
}

// Stats reports record counts before and after validity filtering.
type Stats struct {
	Before int
	After  int
}

// Dropped returns the number of records removed by filtering.
func (s Stats) Dropped() int { return s.Before - s.After }

// Converter reprojects planar coordinates to geographic coordinates.
type Converter struct {
	proj Projection
	log  *logger.Logger
}

// NewConverter returns a Converter for the given projection. A nil logger
// disables logging.
func NewConverter(proj Projection, log *logger.Logger) *Converter {
	if log == nil {
		log = logger.Nop()
	}
	return &Converter{proj: proj, log: log.With("projection", proj.Name())}
}

// Projection returns the source projection.
func (c *Converter) Projection() Projection { return c.proj }

// Convert produces exactly one Result per input pair, in input order.
func (c *Converter) Convert(xy []orb.Point) []Result {
	out := make([]Result, len(xy))
	for i, p := range xy {
		lon, lat := c.proj.Inverse(p[0], p[1])
		out[i] = Result{Point: orb.Point{lon, lat}, Valid: ValidLonLat(lon, lat)}
	}
	return out
}

// Locate converts the records and keeps only those with valid
// coordinates, preserving input order.
func (c *Converter) Locate(recs []atm.Record) ([]atm.Located, Stats) {
	xy := make([]orb.Point, len(recs))
	for i, r := range recs {
		xy[i] = r.Planar()
	}
	results := c.Convert(xy)
	out := make([]atm.Located, 0, len(recs))
	for i, res := range results {
		if !res.Valid {
			c.log.Debug("dropping record with invalid coordinates",
				"name", recs[i].Name, "address", recs[i].Address, "x", recs[i].X, "y", recs[i].Y)
			continue
		}
		out = append(out, atm.Located{Record: recs[i], Point: res.Point})
	}
	st := Stats{Before: len(recs), After: len(out)}
	if st.Dropped() > 0 {
		c.log.Warn("invalid coordinates filtered", "before", st.Before, "after", st.After)
	} else {
		c.log.Info("coordinates converted", "records", st.After)
	}
	return out, st
}

// ValidLonLat reports whether lon/lat are finite and within geographic range.
func ValidLonLat(lon, lat float64) bool {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
