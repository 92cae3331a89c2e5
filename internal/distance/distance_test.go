package distance

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestIdenticalPointsAreZero(t *testing.T) {
	pts := []orb.Point{{-77.0, 38.9}, {-77.0, 38.9}, {-77.0, 38.9}}
	res := Analyze(pts, nil)
	if res.Insufficient || res.Stats == nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	st := res.Stats
	if st.Pairs != 3 || st.MinKm != 0 || st.MaxKm != 0 || st.MeanKm != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestTwoPointsMinEqualsMaxEqualsMean(t *testing.T) {
	res := Analyze([]orb.Point{{-77.0365, 38.8977}, {-77.0091, 38.8899}}, nil)
	st := res.Stats
	if st == nil || st.Pairs != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if st.MinKm != st.MaxKm || st.MinKm != st.MeanKm {
		t.Fatalf("expected min=mean=max, got %+v", st)
	}
	// White House to the Capitol is roughly 2.5 km
	if st.MinKm < 2.2 || st.MinKm > 2.8 {
		t.Fatalf("implausible distance %.3f km", st.MinKm)
	}
}

func TestOrdering(t *testing.T) {
	pts := []orb.Point{{-77.03, 38.90}, {-77.00, 38.95}, {-76.95, 38.85}, {-77.10, 38.93}}
	st := Analyze(pts, nil).Stats
	if st == nil || st.Pairs != 6 {
		t.Fatalf("stats = %+v", st)
	}
	if !(st.MinKm <= st.MeanKm && st.MeanKm <= st.MaxKm) {
		t.Fatalf("expected min <= mean <= max, got %+v", st)
	}
}

func TestInsufficient(t *testing.T) {
	for _, pts := range [][]orb.Point{nil, {{-77, 38.9}}} {
		res := Analyze(pts, nil)
		if !res.Insufficient || res.Stats != nil || res.Points != len(pts) {
			t.Fatalf("points=%d: %+v", len(pts), res)
		}
	}
}

func TestDegeneratePairsSkipped(t *testing.T) {
	pts := []orb.Point{{-77.0, 38.9}, {math.NaN(), 38.9}, {-77.0, 38.91}}
	st := Analyze(pts, nil).Stats
	if st == nil {
		t.Fatalf("expected stats from the remaining pair")
	}
	if st.Pairs != 1 || st.Skipped != 2 {
		t.Fatalf("stats = %+v", st)
	}

	all := Analyze([]orb.Point{{math.NaN(), 0}, {math.NaN(), 0}}, nil)
	if all.Insufficient || all.Stats != nil {
		t.Fatalf("all-degenerate result = %+v", all)
	}
}
