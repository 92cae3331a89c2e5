package report

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/atmscope/internal/atm"
	"github.com/KaramelBytes/atmscope/internal/density"
	"github.com/KaramelBytes/atmscope/internal/distance"
	"github.com/KaramelBytes/atmscope/internal/geo"
	"github.com/paulmach/orb"
	"github.com/xuri/excelize/v2"
)

func located(name, ward, zip string, lon, lat float64) atm.Located {
	return atm.Located{
		Record: atm.Record{Name: name, Address: "1 Main St", Ward: ward, ZipCode: zip},
		Point:  orb.Point{lon, lat},
	}
}

func sample() []atm.Located {
	return []atm.Located{
		located("PNC Bank", "2", "20006", -77.04, 38.90),
		located("Capital One", "2", "20005", -77.03, 38.91),
		located("PNC Bank", "6", "20003", -77.00, 38.88),
	}
}

func TestTierThresholds(t *testing.T) {
	cases := []struct {
		n    int
		want Style
	}{
		{0, Style{"green", "minus-sign"}},
		{9, Style{"green", "minus-sign"}},
		{10, Style{"blue", "ok-sign"}},
		{19, Style{"blue", "ok-sign"}},
		{20, Style{"yellow", "info-sign"}},
		{30, Style{"orange", "star"}},
		{49, Style{"orange", "star"}},
		{50, Style{"red", "fire"}},
		{500, Style{"red", "fire"}},
	}
	for _, c := range cases {
		if got := Tier(c.n); got != c.want {
			t.Errorf("Tier(%d) = %+v, want %+v", c.n, got, c.want)
		}
	}
}

func TestMapFilename(t *testing.T) {
	cases := map[string]string{
		"PNC Bank":          "pnc_bank_atm_map.html",
		"Wells Fargo/Chase": "wells_fargo_chase_atm_map.html",
		"ATM":               "atm_atm_map.html",
	}
	for in, want := range cases {
		if got := MapFilename(in); got != want {
			t.Errorf("MapFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestZoomFor(t *testing.T) {
	ext := func(span float64) geo.Extent {
		return geo.Describe([]orb.Point{{-77, 38.9}, {-77 + span, 38.9}})
	}
	cases := []struct {
		span float64
		want int
	}{
		{0.2, 10}, {0.07, 11}, {0.02, 12}, {0.005, 13}, {0, 13},
	}
	for _, c := range cases {
		if got := ZoomFor(ext(c.span)); got != c.want {
			t.Errorf("ZoomFor(span=%v) = %d, want %d", c.span, got, c.want)
		}
	}
}

func TestWardAndZipTables(t *testing.T) {
	recs := sample()
	wards := density.ByKey(recs, density.Ward)
	var buf bytes.Buffer
	WardTable(&buf, wards)
	out := buf.String()
	if !strings.Contains(out, "ATM DENSITY BY WARD") || !strings.Contains(out, strings.Repeat("-", 68)) {
		t.Fatalf("ward table header missing:\n%s", out)
	}
	if !strings.Contains(out, "2      2            1              38.905000 -77.035000") {
		t.Fatalf("ward row malformed:\n%s", out)
	}

	buf.Reset()
	zips := density.ByKey(recs, density.ZipCode)
	ZipTable(&buf, zips, 2)
	out = buf.String()
	if !strings.Contains(out, "Top 2 ZIP codes by ATM count:") {
		t.Fatalf("zip title missing:\n%s", out)
	}
	if strings.Contains(out, "20003") {
		t.Fatalf("zip table not limited to top 2:\n%s", out)
	}
}

func TestDistanceText(t *testing.T) {
	var buf bytes.Buffer
	DistanceText(&buf, distance.Result{Points: 1, Insufficient: true})
	if !strings.Contains(buf.String(), "Not enough valid ATMs") {
		t.Fatalf("got %q", buf.String())
	}
	buf.Reset()
	DistanceText(&buf, distance.Result{Points: 2, Stats: &distance.Stats{Pairs: 1, MinKm: 10, MaxKm: 10, MeanKm: 10}})
	if !strings.Contains(buf.String(), "Shortest distance between ATMs: 10.00 km (6.21 miles)") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestSummaryAndCrosstab(t *testing.T) {
	recs := sample()
	wards := density.ByKey(recs, density.Ward)
	zips := density.ByKey(recs, density.ZipCode)
	var buf bytes.Buffer
	SummaryText(&buf, density.Summarize(len(recs), wards, zips))
	if !strings.Contains(buf.String(), "Highest density Ward: 2 (2 ATMs)") {
		t.Fatalf("summary = %s", buf.String())
	}
	buf.Reset()
	CrosstabTable(&buf, "ATM TYPES BY WARD", density.WardCrosstab(recs, 10))
	out := buf.String()
	if !strings.Contains(out, "Capital One") || !strings.Contains(out, "PNC Bank") {
		t.Fatalf("crosstab = %s", out)
	}
}

func TestDensityMapEmbedsFeatures(t *testing.T) {
	recs := sample()
	recs[0].Name = "<script>alert(1)</script>"
	var buf bytes.Buffer
	if err := DensityMap(&buf, recs, density.ByKey(recs, density.Ward), MapOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	compact := strings.ReplaceAll(out, " ", "")
	for _, want := range []string{"L.heatLayer", "radius:15", "blur:10", "ATMDensitybyWard", "Ward2:2ATMs"} {
		if !strings.Contains(compact, want) {
			t.Errorf("density map missing %q", want)
		}
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Fatalf("record name not escaped")
	}
}

func TestDensityFeaturesEscapeMarkup(t *testing.T) {
	recs := sample()
	recs[0].Ward = "<img src=x onerror=alert(1)>"
	recs[0].Address = "<b>1 Main</b>"
	fc := densityFeatures(recs, density.ByKey(recs, density.Ward))
	props := fc.Features[0].Properties
	tooltip, _ := props["tooltip"].(string)
	popup, _ := props["popup"].(string)
	if strings.Contains(tooltip, "<img") || !strings.Contains(tooltip, "&lt;img src=x onerror=alert(1)&gt;: 1 ATMs") {
		t.Fatalf("tooltip not escaped: %q", tooltip)
	}
	if strings.Contains(popup, "<img") || strings.Contains(popup, "<b>1 Main") {
		t.Fatalf("popup not escaped: %q", popup)
	}
	if got, _ := fc.Features[1].Properties["tooltip"].(string); got != "Ward 2: 1 ATMs" {
		t.Fatalf("plain tooltip = %q", got)
	}
}

func TestNameMap(t *testing.T) {
	recs := sample()[:1]
	var buf bytes.Buffer
	if err := NameMap(&buf, "PNC Bank", recs); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"university"`) || strings.Contains(out, "L.heatLayer") {
		t.Fatalf("unexpected name map:\n%s", out)
	}
	if !strings.Contains(strings.ReplaceAll(out, " ", ""), "],13);") {
		t.Fatalf("single point should use the closest zoom")
	}
}

func TestFeatureCollection(t *testing.T) {
	recs := sample()
	fc := FeatureCollection(recs, density.ByKey(recs, density.Ward))
	if len(fc.Features) != 3 {
		t.Fatalf("features = %d", len(fc.Features))
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	f := decoded.Features[0]
	if f.Geometry.Coordinates[0] != -77.04 || f.Properties["ward_count"].(float64) != 2 {
		t.Fatalf("feature = %+v", f)
	}
}

func TestWriteWorkbook(t *testing.T) {
	recs := sample()
	wards := density.ByKey(recs, density.Ward)
	zips := density.ByKey(recs, density.ZipCode)
	p := filepath.Join(t.TempDir(), "density.xlsx")
	if err := WriteWorkbook(p, wards, zips, density.Summarize(len(recs), wards, zips)); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenFile(p)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != SheetWards {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(SheetWards)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "Ward" || rows[1][0] != "2" || rows[1][1] != "2" {
		t.Fatalf("ward rows = %v", rows)
	}
	rows, err = f.GetRows(SheetZips)
	if err != nil || len(rows) != 4 || rows[0][0] != "ZIP Code" {
		t.Fatalf("zip rows = %v, %v", rows, err)
	}
}
