package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/atmscope/internal/density"
	"github.com/KaramelBytes/atmscope/internal/distance"
	"github.com/KaramelBytes/atmscope/internal/geo"
)

// DefaultZipTop is the number of ZIP codes listed when no limit is given.
const DefaultZipTop = 15

// Banner writes a titled section separator.
func Banner(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", strings.Repeat("=", 50), title, strings.Repeat("=", 50))
}

// WardTable writes the per-ward density table, one row per aggregate.
func WardTable(w io.Writer, aggs []density.Aggregate) {
	Banner(w, "ATM DENSITY BY WARD")
	writeAggregates(w, density.Ward, aggs, 6, 68)
}

// ZipTable writes the top N ZIP codes. topN <= 0 uses DefaultZipTop.
func ZipTable(w io.Writer, aggs []density.Aggregate, topN int) {
	if topN <= 0 {
		topN = DefaultZipTop
	}
	Banner(w, "ATM DENSITY BY ZIP CODE")
	fmt.Fprintf(w, "Top %d ZIP codes by ATM count:\n", topN)
	if len(aggs) > topN {
		aggs = aggs[:topN]
	}
	writeAggregates(w, density.ZipCode, aggs, 10, 74)
}

func writeAggregates(w io.Writer, kind density.KeyKind, aggs []density.Aggregate, keyWidth, rule int) {
	fmt.Fprintf(w, "%-*s %-12s %-14s %-12s %-12s\n", keyWidth, kind.Label(), "ATM Count", "Density Rank", "Center Lat", "Center Lon")
	fmt.Fprintln(w, strings.Repeat("-", rule))
	for _, a := range aggs {
		fmt.Fprintf(w, "%-*s %-12d %-14d %.6f %.6f\n", keyWidth, a.Key, a.Count, a.Rank, a.CentroidLat(), a.CentroidLon())
	}
}

// CrosstabTable writes a name-by-area count matrix under the given title.
func CrosstabTable(w io.Writer, title string, ct *density.Crosstab) {
	Banner(w, title)
	if ct == nil || len(ct.Rows) == 0 {
		fmt.Fprintln(w, "(no data)")
		return
	}
	keyWidth := len(ct.Kind.Label())
	for _, r := range ct.Rows {
		if len(r) > keyWidth {
			keyWidth = len(r)
		}
	}
	widths := make([]int, len(ct.Cols))
	fmt.Fprintf(w, "%-*s", keyWidth, ct.Kind.Label())
	for i, c := range ct.Cols {
		widths[i] = len(c)
		if widths[i] < 3 {
			widths[i] = 3
		}
		fmt.Fprintf(w, "  %*s", widths[i], c)
	}
	fmt.Fprintln(w)
	for _, r := range ct.Rows {
		fmt.Fprintf(w, "%-*s", keyWidth, r)
		for i, c := range ct.Cols {
			fmt.Fprintf(w, "  %*d", widths[i], ct.Count(r, c))
		}
		fmt.Fprintln(w)
	}
}

// SummaryText writes the run-level summary block.
func SummaryText(w io.Writer, s density.Summary) {
	Banner(w, "SUMMARY STATISTICS")
	fmt.Fprintf(w, "Total ATMs: %d\n", s.TotalATMs)
	fmt.Fprintf(w, "Total Wards: %d\n", s.TotalWards)
	fmt.Fprintf(w, "Total ZIP Codes: %d\n", s.TotalZips)
	fmt.Fprintf(w, "Average ATMs per Ward: %.1f\n", s.AvgPerWard)
	fmt.Fprintf(w, "Average ATMs per ZIP: %.1f\n", s.AvgPerZip)
	if s.HighestWard != nil {
		fmt.Fprintf(w, "\nHighest density Ward: %s (%d ATMs)\n", s.HighestWard.Key, s.HighestWard.Count)
		fmt.Fprintf(w, "Lowest density Ward: %s (%d ATMs)\n", s.LowestWard.Key, s.LowestWard.Count)
	}
	if s.HighestZip != nil {
		fmt.Fprintf(w, "\nHighest density ZIP: %s (%d ATMs)\n", s.HighestZip.Key, s.HighestZip.Count)
		fmt.Fprintf(w, "Lowest density ZIP: %s (%d ATMs)\n", s.LowestZip.Key, s.LowestZip.Count)
	}
}

// DistanceText writes the pairwise distance statistics in km and miles.
func DistanceText(w io.Writer, res distance.Result) {
	if res.Insufficient {
		fmt.Fprintln(w, "Not enough valid ATMs to calculate distances.")
		return
	}
	if res.Stats == nil {
		fmt.Fprintln(w, "No valid distances calculated.")
		return
	}
	st := res.Stats
	fmt.Fprintln(w, "\nDistance Statistics:")
	line := func(label string, km float64) {
		fmt.Fprintf(w, "%s distance between ATMs: %.2f km (%.2f miles)\n", label, km, km*distance.KmToMiles)
	}
	line("Shortest", st.MinKm)
	line("Farthest", st.MaxKm)
	line("Average", st.MeanKm)
	if st.Skipped > 0 {
		fmt.Fprintf(w, "⚠ %d degenerate pair(s) skipped\n", st.Skipped)
	}
}

// ExtentText writes a per-axis range description of a point set.
func ExtentText(w io.Writer, title string, xLabel, yLabel string, e geo.Extent) {
	fmt.Fprintf(w, "\n%s\n", title)
	if e.Count == 0 {
		fmt.Fprintln(w, "  (no points)")
		return
	}
	fmt.Fprintf(w, "  count: %d\n", e.Count)
	fmt.Fprintf(w, "  %-9s min %.6f  max %.6f  mean %.6f\n", xLabel, e.Bound.Min[0], e.Bound.Max[0], e.Mean[0])
	fmt.Fprintf(w, "  %-9s min %.6f  max %.6f  mean %.6f\n", yLabel, e.Bound.Min[1], e.Bound.Max[1], e.Mean[1])
}
