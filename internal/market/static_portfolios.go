package market

import (
	"encoding/json"
	"fmt"
	"os"

	"frontier/internal/apperr"
)

// AutoKind names a non-fixed "always plot" portfolio (Design Note
// "auto-allocation portfolios"): AutoMax invests each year in that year's
// best asset and AutoMin in its worst (see AutoWeights); ResolveAuto gives
// the single-asset allocation used to display it.
type AutoKind string

const (
	AutoNone AutoKind = ""
	AutoMin  AutoKind = "min" // worst-asset-per-year
	AutoMax  AutoKind = "max" // best-asset-per-year
)

// StaticPortfolio is one entry from the static-portfolios JSON config: a
// tagged variant that is either a concrete asset->weight mapping, or an
// Auto directive resolved from the market data.
type StaticPortfolio struct {
	Name    string
	Weights map[string]int32 // nil when Auto != AutoNone
	Auto    AutoKind
}

type staticPortfolioJSON struct {
	Name    string           `json:"name,omitempty"`
	Auto    string           `json:"auto,omitempty"`
	Weights map[string]int32 `json:"weights,omitempty"`
}

// ReadStaticPortfoliosJSON parses the static-portfolios config: a list whose
// entries are either bare mappings asset name -> integer weight (each
// summing to 100), objects {"name": ..., "weights": {asset: weight}}, or
// {"name": ..., "auto": "min"|"max"} directives.
func ReadStaticPortfoliosJSON(path string) ([]StaticPortfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read static portfolios json %s: %w", path, apperr.ErrIO)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse static portfolios json %s: %w", path, err)
	}
	out := make([]StaticPortfolio, len(raw))
	for i, entry := range raw {
		var r staticPortfolioJSON
		if err := json.Unmarshal(entry, &r); err != nil {
			return nil, fmt.Errorf("parse static portfolios json %s entry %d: %w", path, i, err)
		}
		if r.Weights == nil && r.Auto == "" {
			// bare asset name -> weight mapping
			if err := json.Unmarshal(entry, &r.Weights); err != nil {
				return nil, fmt.Errorf("parse static portfolios json %s entry %d: %w", path, i, err)
			}
		}
		out[i] = StaticPortfolio{
			Name:    r.Name,
			Weights: r.Weights,
			Auto:    AutoKind(r.Auto),
		}
	}
	return out, nil
}

// ValidateStaticPortfolios checks every static portfolio against the asset universe and
// color map, collecting every problem (spec.md §7: "the error report
// enumerates every invalid static portfolio rather than bailing on the
// first").
func ValidateStaticPortfolios(portfolios []StaticPortfolio, universe Universe, colors ColorMap) error {
	var errs apperr.MultiError
	known := make(map[string]bool, len(universe))
	for _, a := range universe {
		known[a] = true
	}
	for _, p := range portfolios {
		if p.Auto != AutoNone {
			continue
		}
		sum := int32(0)
		for asset, weight := range p.Weights {
			sum += weight
			if !known[asset] {
				errs.Add(fmt.Errorf("portfolio %q references %q: %w", p.Name, asset, apperr.ErrUnknownAsset))
				continue
			}
			if _, ok := colors[asset]; !ok {
				errs.Add(fmt.Errorf("portfolio %q asset %q: %w", p.Name, asset, apperr.ErrColorMissing))
			}
		}
		if sum != 100 {
			errs.Add(fmt.Errorf("portfolio %q sums to %d: %w", p.Name, sum, apperr.ErrWeightSumNot100))
		}
	}
	return errs.ErrOrNil()
}

// ToVector resolves a StaticPortfolio's Weights map into a dense
// allocation.Vector ordered by universe, given the universe's index order.
// Auto portfolios must be resolved separately via ResolveAuto.
func (p StaticPortfolio) ToVector(universe Universe) []int32 {
	v := make([]int32, len(universe))
	for asset, weight := range p.Weights {
		if idx := universe.Index(asset); idx >= 0 {
			v[idx] = weight
		}
	}
	return v
}

// ResolveAuto computes a *display* representative for an Auto directive: a
// 100%-weighted allocation in the single asset with the best (AutoMax) or
// worst (AutoMin) gain multiplier in any year of table. This is used only
// for coloring and as a dedup key — the actual best/worst-asset-per-year
// portfolio invests in a potentially different asset every year, which is
// why its simulated Statistics must come from AutoWeights via
// simulate.SimulateDynamic rather than from this fixed vector.
func ResolveAuto(kind AutoKind, universe Universe, table GainTable) []int32 {
	best := -1
	bestVal := 0.0
	for _, gains := range table {
		for i, g := range gains {
			if best == -1 {
				best, bestVal = i, g
				continue
			}
			switch kind {
			case AutoMax:
				if g > bestVal {
					best, bestVal = i, g
				}
			case AutoMin:
				if g < bestVal {
					best, bestVal = i, g
				}
			}
		}
	}
	v := make([]int32, len(universe))
	if best >= 0 {
		v[best] = 100
	}
	return v
}

// AutoWeights resolves one year's fractional weights for an Auto directive:
// kind==AutoMax invests the year's entire capital in whichever single asset
// had that year's best gain multiplier; AutoMin, the worst. Unlike
// ResolveAuto this varies year to year — it is the "callable that picks the
// weights for one year given that year's gain vector" variant of spec.md
// §9's Design Note "Always plot", meant to be used as a simulate.WeightFunc.
func AutoWeights(kind AutoKind, yearGains []float64) []float64 {
	best := 0
	for i := 1; i < len(yearGains); i++ {
		switch kind {
		case AutoMax:
			if yearGains[i] > yearGains[best] {
				best = i
			}
		case AutoMin:
			if yearGains[i] < yearGains[best] {
				best = i
			}
		}
	}
	w := make([]float64, len(yearGains))
	if len(w) > 0 {
		w[best] = 1
	}
	return w
}
