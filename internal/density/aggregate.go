package density

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/atmscope/internal/atm"
	"github.com/paulmach/orb"
)

// KeyKind selects the categorical column records are grouped by.
type KeyKind int

const (
	Ward KeyKind = iota
	ZipCode
)

func (k KeyKind) String() string {
	switch k {
	case Ward:
		return "ward"
	case ZipCode:
		return "zipcode"
	default:
		return fmt.Sprintf("KeyKind(%d)", int(k))
	}
}

// Label is the column heading used in reports.
func (k KeyKind) Label() string {
	if k == ZipCode {
		return "ZIP Code"
	}
	return "Ward"
}

// Of extracts the key of this kind from a record.
func (k KeyKind) Of(r atm.Located) string {
	if k == ZipCode {
		return r.ZipCode
	}
	return r.Ward
}

// Aggregate is the per-key density summary.
type Aggregate struct {
	Key      string
	Count    int
	Centroid orb.Point // lon/lat
	Rank     int
}

// CentroidLat returns the mean latitude of the group.
func (a Aggregate) CentroidLat() float64 { return a.Centroid.Lat() }

// CentroidLon returns the mean longitude of the group.
func (a Aggregate) CentroidLon() float64 { return a.Centroid.Lon() }

// Group partitions items by key and returns one Aggregate per distinct key,
// sorted by Count descending. Keys with equal counts keep the order in which
// they first appeared. Rank is a dense rank over Count.
func Group[T any](items []T, key func(T) string, point func(T) orb.Point) []Aggregate {
	type acc struct {
		n      int
		sumLon float64
		sumLat float64
	}
	order := make([]string, 0)
	groups := map[string]*acc{}
	for _, it := range items {
		k := key(it)
		g := groups[k]
		if g == nil {
			g = &acc{}
			groups[k] = g
			order = append(order, k)
		}
		p := point(it)
		g.n++
		g.sumLon += p.Lon()
		g.sumLat += p.Lat()
	}

	out := make([]Aggregate, 0, len(order))
	for _, k := range order {
		g := groups[k]
		n := float64(g.n)
		out = append(out, Aggregate{
			Key:      k,
			Count:    g.n,
			Centroid: orb.Point{g.sumLon / n, g.sumLat / n},
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	denseRank(out)
	return out
}

// ByKey groups located records by the given key kind.
func ByKey(recs []atm.Located, kind KeyKind) []Aggregate {
	return Group(recs, kind.Of, func(r atm.Located) orb.Point { return r.Point })
}

// denseRank assigns ranks to aggregates already sorted by Count descending.
func denseRank(aggs []Aggregate) {
	rank := 0
	for i := range aggs {
		if i == 0 || aggs[i].Count != aggs[i-1].Count {
			rank++
		}
		aggs[i].Rank = rank
	}
}

// Lookup indexes aggregates by key.
func Lookup(aggs []Aggregate) map[string]Aggregate {
	m := make(map[string]Aggregate, len(aggs))
	for _, a := range aggs {
		m[a.Key] = a
	}
	return m
}

// Total sums Count across aggregates.
func Total(aggs []Aggregate) int {
	n := 0
	for _, a := range aggs {
		n += a.Count
	}
	return n
}
