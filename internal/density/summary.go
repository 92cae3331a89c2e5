package density

// Summary holds run-level statistics over the ward and ZIP aggregates.
type Summary struct {
	TotalATMs   int
	TotalWards  int
	TotalZips   int
	AvgPerWard  float64
	AvgPerZip   float64
	HighestWard *Aggregate
	LowestWard  *Aggregate
	HighestZip  *Aggregate
	LowestZip   *Aggregate
}

// Summarize computes a Summary. wards and zips must be sorted by count
// descending, as returned by Group.
func Summarize(total int, wards, zips []Aggregate) Summary {
	s := Summary{TotalATMs: total, TotalWards: len(wards), TotalZips: len(zips)}
	if len(wards) > 0 {
		s.AvgPerWard = float64(total) / float64(len(wards))
		s.HighestWard = &wards[0]
		s.LowestWard = &wards[len(wards)-1]
	}
	if len(zips) > 0 {
		s.AvgPerZip = float64(total) / float64(len(zips))
		s.HighestZip = &zips[0]
		s.LowestZip = &zips[len(zips)-1]
	}
	return s
}
