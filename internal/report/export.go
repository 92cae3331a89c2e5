package report

import (
	"fmt"

	"github.com/KaramelBytes/atmscope/internal/atm"
	"github.com/KaramelBytes/atmscope/internal/density"
	"github.com/KaramelBytes/atmscope/internal/utils"
	"github.com/paulmach/orb/geojson"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	SheetWards   = "Wards"
	SheetZips    = "ZIP Codes"
	SheetSummary = "Summary"
)

// WriteWorkbook exports the ward and ZIP aggregates and the summary to an
// XLSX file.
func WriteWorkbook(path string, wards, zips []density.Aggregate, s density.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	first := -1
	for _, sh := range []struct {
		name string
		kind density.KeyKind
		aggs []density.Aggregate
	}{
		{SheetWards, density.Ward, wards},
		{SheetZips, density.ZipCode, zips},
	} {
		idx, err := writeAggregateSheet(f, sh.name, sh.kind, sh.aggs)
		if err != nil {
			return err
		}
		if first < 0 {
			first = idx
		}
	}
	if err := writeSummarySheet(f, s); err != nil {
		return err
	}
	f.SetActiveSheet(first)
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeAggregateSheet(f *excelize.File, name string, kind density.KeyKind, aggs []density.Aggregate) (int, error) {
	index, err := f.NewSheet(name)
	if err != nil {
		return 0, fmt.Errorf("new sheet %s: %w", name, err)
	}
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return 0, err
	}
	header := []interface{}{kind.Label(), "ATM Count", "Density Rank", "Center Lat", "Center Lon"}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, err
	}
	for i, a := range aggs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{a.Key, a.Count, a.Rank, a.CentroidLat(), a.CentroidLon()}
		if err := sw.SetRow(cell, row); err != nil {
			return 0, err
		}
	}
	if err := sw.Flush(); err != nil {
		return 0, err
	}
	return index, nil
}

func writeSummarySheet(f *excelize.File, s density.Summary) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("new sheet %s: %w", SheetSummary, err)
	}
	sw, err := f.NewStreamWriter(SheetSummary)
	if err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total ATMs", s.TotalATMs},
		{"Total Wards", s.TotalWards},
		{"Total ZIP Codes", s.TotalZips},
		{"Average ATMs per Ward", s.AvgPerWard},
		{"Average ATMs per ZIP", s.AvgPerZip},
	}
	add := func(label string, a *density.Aggregate) {
		if a != nil {
			rows = append(rows, []interface{}{label, fmt.Sprintf("%s (%d ATMs)", a.Key, a.Count)})
		}
	}
	add("Highest density Ward", s.HighestWard)
	add("Lowest density Ward", s.LowestWard)
	add("Highest density ZIP", s.HighestZip)
	add("Lowest density ZIP", s.LowestZip)
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := sw.SetRow(cell, r); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// FeatureCollection builds a GeoJSON collection of located records, each
// carrying its ward's count and rank when known.
func FeatureCollection(recs []atm.Located, wards []density.Aggregate) *geojson.FeatureCollection {
	byWard := density.Lookup(wards)
	fc := geojson.NewFeatureCollection()
	for _, r := range recs {
		f := geojson.NewFeature(r.Point)
		f.Properties["name"] = r.Name
		f.Properties["address"] = r.Address
		f.Properties["ward"] = r.Ward
		f.Properties["zipcode"] = r.ZipCode
		if a, ok := byWard[r.Ward]; ok {
			f.Properties["ward_count"] = a.Count
			f.Properties["ward_rank"] = a.Rank
		}
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes the located records as a GeoJSON FeatureCollection.
func WriteGeoJSON(path string, recs []atm.Located, wards []density.Aggregate) error {
	b, err := FeatureCollection(recs, wards).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return utils.SafeWriteFile(path, b)
}
