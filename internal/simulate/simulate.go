// Package simulate maps one allocation to its summary statistics under a
// configurable year-range selector (spec.md §4.2).
package simulate

import (
	"fmt"
	"math"

	"frontier/internal/apperr"
	"frontier/internal/market"
)

// Statistics is the fixed set of scalar results for one allocation.
type Statistics struct {
	Gain        float32
	CAGRPercent float32
	Variance    float32
	Stddev      float32
	Sharpe      float32
}

// Field looks up one scalar of s by name, mirroring the original
// pipeline's simulate_stat_order index: "gain", "cagr_percent", "variance",
// "stddev", "sharpe".
func (s Statistics) Field(name string) (float64, error) {
	switch name {
	case "gain":
		return float64(s.Gain), nil
	case "cagr_percent":
		return float64(s.CAGRPercent), nil
	case "variance":
		return float64(s.Variance), nil
	case "stddev":
		return float64(s.Stddev), nil
	case "sharpe":
		return float64(s.Sharpe), nil
	default:
		return 0, fmt.Errorf("unknown statistic field %q", name)
	}
}

// WeightFunc resolves one year's fractional asset weights (summing to 1)
// from that year's gain vector — the "callable that picks the weights for
// one year given that year's gain vector" variant of spec.md §9's Design
// Note "Always plot", as opposed to a fixed Allocation.
type WeightFunc func(yearGains []float64) []float64

// Simulate computes Statistics for the fixed allocation w under the given
// gain table and year-range selector (spec.md §4.2). w's entries are
// integer percent weights summing to 100.
func Simulate(w []int32, table market.GainTable, sel Selector) (Statistics, error) {
	weights := make([]float64, len(w))
	for i, v := range w {
		weights[i] = float64(v) / 100
	}
	return simulateWeightFunc(func([]float64) []float64 { return weights }, table, sel)
}

// SimulateDynamic computes Statistics for a per-year weight function rather
// than a fixed allocation, used for the "auto" always-plot portfolios that
// invest in a potentially different asset each year (spec.md §9,
// market.AutoWeights).
func SimulateDynamic(wf WeightFunc, table market.GainTable, sel Selector) (Statistics, error) {
	return simulateWeightFunc(wf, table, sel)
}

func simulateWeightFunc(wf WeightFunc, table market.GainTable, sel Selector) (Statistics, error) {
	years := table.SortedYears()
	ranges := sel.Ranges(years)
	if len(ranges) == 0 {
		return Statistics{}, fmt.Errorf("selector %s over %d years: %w", sel, len(years), apperr.ErrEmptyYearRange)
	}

	var sumGain, sumCAGR, sumVar, sumStddev float64
	for _, r := range ranges {
		gain, cagr, variance, stddev, err := simulateRange(wf, table, years[r[0]:r[1]+1])
		if err != nil {
			return Statistics{}, err
		}
		sumGain += gain
		sumCAGR += cagr
		sumVar += variance
		sumStddev += stddev
	}
	n := float64(len(ranges))
	meanGain := sumGain / n
	meanCAGR := sumCAGR / n
	meanVar := sumVar / n
	meanStddev := sumStddev / n
	if meanStddev == 0 {
		return Statistics{}, apperr.ErrDegenerateVariance
	}
	sharpe := meanCAGR / meanStddev

	return Statistics{
		Gain:        float32(meanGain),
		CAGRPercent: float32(meanCAGR * 100),
		Variance:    float32(meanVar),
		Stddev:      float32(meanStddev),
		Sharpe:      float32(sharpe),
	}, nil
}

// simulateRange runs the per-range simulation of spec.md §4.2 over one
// contiguous slice of years, resolving each year's weights via wf.
func simulateRange(wf WeightFunc, table market.GainTable, rangeYears []int) (gain, cagr, variance, stddev float64, err error) {
	if len(rangeYears) < 2 {
		return 0, 0, 0, 0, apperr.ErrDegenerateVariance
	}
	annualGains := make([]float64, 0, len(rangeYears))
	for _, y := range rangeYears {
		row := table[y]
		weights := wf(row)
		ag := 0.0
		for i, w := range weights {
			ag += w * row[i]
		}
		annualGains = append(annualGains, ag)
	}

	gain = 1
	for _, ag := range annualGains {
		gain *= ag
	}
	n := float64(len(annualGains))
	cagr = math.Pow(gain, 1/n) - 1

	sumSq := 0.0
	for _, ag := range annualGains {
		d := ag - cagr - 1
		sumSq += d * d
	}
	variance = sumSq / (n - 1)
	stddev = math.Sqrt(variance)
	return gain, cagr, variance, stddev, nil
}
