package density

import (
	"sort"
	"strconv"

	"github.com/KaramelBytes/atmscope/internal/atm"
)

// Crosstab counts ATMs per (area key, ATM name).
type Crosstab struct {
	Kind   KeyKind
	Rows   []string // area keys
	Cols   []string // ATM names, sorted
	Counts map[string]map[string]int
}

// Count returns the number of ATMs with the given name in the given area.
func (c *Crosstab) Count(row, col string) int {
	return c.Counts[row][col]
}

// WardCrosstab tabulates names for the first limit wards in key order.
// limit <= 0 keeps every ward.
func WardCrosstab(recs []atm.Located, limit int) *Crosstab {
	keys := distinctKeys(recs, Ward)
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return buildCrosstab(recs, Ward, clip(keys, limit))
}

// ZipCrosstab tabulates names for the limit ZIP codes with the most ATMs.
func ZipCrosstab(recs []atm.Located, limit int) *Crosstab {
	aggs := ByKey(recs, ZipCode)
	keys := make([]string, 0, len(aggs))
	for _, a := range aggs {
		keys = append(keys, a.Key)
	}
	keys = clip(keys, limit)
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return buildCrosstab(recs, ZipCode, keys)
}

func buildCrosstab(recs []atm.Located, kind KeyKind, rows []string) *Crosstab {
	want := make(map[string]bool, len(rows))
	for _, r := range rows {
		want[r] = true
	}
	ct := &Crosstab{Kind: kind, Rows: rows, Counts: map[string]map[string]int{}}
	names := map[string]bool{}
	for _, r := range recs {
		k := kind.Of(r)
		if !want[k] {
			continue
		}
		m := ct.Counts[k]
		if m == nil {
			m = map[string]int{}
			ct.Counts[k] = m
		}
		m[r.Name]++
		names[r.Name] = true
	}
	for n := range names {
		ct.Cols = append(ct.Cols, n)
	}
	sort.Strings(ct.Cols)
	return ct
}

func distinctKeys(recs []atm.Located, kind KeyKind) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range recs {
		k := kind.Of(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// keyLess orders numeric keys numerically and everything else lexically.
func keyLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}

func clip(keys []string, limit int) []string {
	if limit > 0 && len(keys) > limit {
		return keys[:limit]
	}
	return keys
}
