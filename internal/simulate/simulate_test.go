package simulate

import (
	"errors"
	"math"
	"testing"

	"frontier/internal/apperr"
	"frontier/internal/market"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func sixteenYearTable() market.GainTable {
	table := make(market.GainTable, 16)
	for y := 2000; y < 2016; y++ {
		row := make([]float64, 4)
		for i := range row {
			row[i] = 1 + 0.03 + 0.01*float64(i)
		}
		table[y] = row
	}
	return table
}

// S2: weights=(10,20,30,40), selector first-to-last, 16-year constant-gain
// table where asset i has constant annual gain 1+0.03+0.01*i.
func TestSimulate_S2(t *testing.T) {
	table := sixteenYearTable()
	stats, err := Simulate([]int32{10, 20, 30, 40}, table, FirstToLast{})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if !approxEqual(float64(stats.Gain), 2.45785, 1e-3) {
		t.Errorf("gain = %v, want ~2.45785", stats.Gain)
	}
	if !approxEqual(float64(stats.CAGRPercent), 5.782, 1e-2) {
		t.Errorf("cagr_percent = %v, want ~5.782", stats.CAGRPercent)
	}
	if !approxEqual(float64(stats.Variance), 1.827e-3, 1e-4) {
		t.Errorf("variance = %v, want ~1.827e-3", stats.Variance)
	}
	if !approxEqual(float64(stats.Stddev), 0.04275, 1e-3) {
		t.Errorf("stddev = %v, want ~0.04275", stats.Stddev)
	}
}

func TestSimulate_EmptyYearRange(t *testing.T) {
	table := market.GainTable{2000: {1.1}}
	_, err := Simulate([]int32{100}, table, SlidingWindow{K: 5})
	if !errors.Is(err, apperr.ErrEmptyYearRange) {
		t.Fatalf("expected ErrEmptyYearRange, got %v", err)
	}
}

func TestSimulate_DegenerateVariance(t *testing.T) {
	table := market.GainTable{2000: {1.1}, 2001: {1.2}}
	// single-year sliding window => ranges of length 1 => degenerate.
	_, err := Simulate([]int32{100}, table, SlidingWindow{K: 1})
	if !errors.Is(err, apperr.ErrDegenerateVariance) {
		t.Fatalf("expected ErrDegenerateVariance, got %v", err)
	}
}

// SimulateDynamic must pick a potentially different asset each year rather
// than pinning one asset for the whole range: asset A beats B in year one,
// B beats A in year two, so the best-asset-per-year portfolio should beat
// either fixed single-asset allocation over both years combined.
func TestSimulateDynamic_BeatsEitherFixedAsset(t *testing.T) {
	table := market.GainTable{
		2000: {1.5, 1.1},
		2001: {1.1, 1.5},
	}
	dynamicStats, err := SimulateDynamic(func(yearGains []float64) []float64 {
		return market.AutoWeights(market.AutoMax, yearGains)
	}, table, FirstToLast{})
	if err != nil {
		t.Fatalf("SimulateDynamic: %v", err)
	}
	fixedA, err := Simulate([]int32{100, 0}, table, FirstToLast{})
	if err != nil {
		t.Fatalf("Simulate(fixed A): %v", err)
	}
	fixedB, err := Simulate([]int32{0, 100}, table, FirstToLast{})
	if err != nil {
		t.Fatalf("Simulate(fixed B): %v", err)
	}
	if dynamicStats.Gain <= fixedA.Gain || dynamicStats.Gain <= fixedB.Gain {
		t.Errorf("dynamic gain %v should exceed both fixed-asset gains %v, %v", dynamicStats.Gain, fixedA.Gain, fixedB.Gain)
	}
}

func TestParseSelector(t *testing.T) {
	cases := map[string]Selector{
		"first-to-last":     FirstToLast{},
		"first-to-all":      FirstToAll{},
		"all-to-last":       AllToLast{},
		"all-to-all":        AllToAll{},
		"sliding-window-5":  SlidingWindow{K: 5},
	}
	for name, want := range cases {
		got, err := ParseSelector(name)
		if err != nil {
			t.Fatalf("ParseSelector(%q): %v", name, err)
		}
		if got.String() != want.String() {
			t.Errorf("ParseSelector(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseSelector("bogus"); err == nil {
		t.Error("expected error for unknown selector name")
	}
}

func TestSelectors_RangeCounts(t *testing.T) {
	years := []int{2000, 2001, 2002, 2003}
	if got := len(FirstToLast{}.Ranges(years)); got != 1 {
		t.Errorf("FirstToLast ranges = %d, want 1", got)
	}
	if got := len(FirstToAll{}.Ranges(years)); got != 3 {
		t.Errorf("FirstToAll ranges = %d, want 3", got)
	}
	if got := len(AllToLast{}.Ranges(years)); got != 3 {
		t.Errorf("AllToLast ranges = %d, want 3", got)
	}
	if got := len(AllToAll{}.Ranges(years)); got != 6 {
		t.Errorf("AllToAll ranges = %d, want 6", got)
	}
	if got := len(SlidingWindow{K: 2}.Ranges(years)); got != 3 {
		t.Errorf("SlidingWindow(2) ranges = %d, want 3", got)
	}
}
