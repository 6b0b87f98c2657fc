// Package frontier assembles the portfolios a run ultimately plots: the
// points an internal/hull.Reducer kept, unioned with whatever portfolios
// must always be shown regardless of hull membership (spec.md §4.7).
package frontier

import (
	"fmt"
	"sort"

	"frontier/internal/allocation"
	"frontier/internal/apperr"
	"frontier/internal/hull"
	"frontier/internal/market"
	"frontier/internal/record"
	"frontier/internal/simulate"
)

// Portfolio is one plottable allocation, with everything a plot descriptor
// needs to draw and label it.
type Portfolio struct {
	Allocation allocation.Vector
	Stats      simulate.Statistics
	Marker     string
	AlwaysPlot bool
	Color      [3]float64 // weighted blend of per-asset colors
}

// NumNonZeroWeights reports how many assets p actually holds, used both for
// the edge-of-simplex "always plot" rule and the draw-order sort below.
func (p Portfolio) NumNonZeroWeights() int {
	return p.Allocation.NumNonZero()
}

// Assemble materializes drained hull points into Portfolio values by
// decoding their embedded record bytes, unions the result with always
// (already fully formed Portfolio values — auto min/max, static named
// portfolios, edge-of-simplex forces), and orders the combined sequence by
// NumNonZeroWeights descending so that simple, easily-legible portfolios
// draw last and stay visible on top (spec.md §4.7).
//
// Colors are not computed here: drained portfolios carry a zero Color
// until a caller with access to the asset color map runs BlendColors over
// the result.
func Assemble(universe market.Universe, drained []hull.Point, always []Portfolio) []Portfolio {
	assets := len(universe)
	out := make([]Portfolio, 0, len(drained)+len(always))
	seen := make(map[string]int, len(drained)+len(always))

	add := func(p Portfolio) {
		key := allocationKey(p.Allocation)
		if idx, ok := seen[key]; ok {
			if p.AlwaysPlot {
				out[idx] = mergeAlwaysPlot(out[idx], p)
			}
			return
		}
		seen[key] = len(out)
		out = append(out, p)
	}

	for _, p := range drained {
		rec, err := record.Decode(p.Record, assets)
		if err != nil {
			continue // malformed frame from a corrupted pipeline write; drop rather than crash a plot
		}
		add(Portfolio{
			Allocation: allocation.Vector(rec.Allocation),
			Stats:      rec.Stats,
		})
	}
	for _, p := range always {
		p.AlwaysPlot = true
		add(p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NumNonZeroWeights() > out[j].NumNonZeroWeights()
	})
	return out
}

// mergeAlwaysPlot keeps the hull-drained stats (computed the same way
// either way) but promotes marker/always-plot metadata from the forced
// entry, so a portfolio that is both hull-kept and force-plotted draws
// with its marker.
func mergeAlwaysPlot(existing, forced Portfolio) Portfolio {
	existing.AlwaysPlot = true
	if forced.Marker != "" {
		existing.Marker = forced.Marker
	}
	return existing
}

func allocationKey(v allocation.Vector) string {
	b := make([]byte, 0, 4*len(v))
	for _, w := range v {
		b = append(b, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	return string(b)
}

// BlendColor computes the weighted asset-color blend for one allocation,
// following the per-asset RGB average of the original data pipeline: each
// channel accumulates colors[asset][c] * weight/100 over every non-zero
// asset in the allocation, then all three channels are divided by
// max(r, g, b, 1) so the result stays within the unit cube.
func BlendColor(universe market.Universe, colors market.ColorMap, weights allocation.Vector) ([3]float64, error) {
	var sum [3]float64
	for i, w := range weights {
		if w == 0 {
			continue
		}
		asset := universe[i]
		rgb, ok := colors[asset]
		if !ok {
			return [3]float64{}, fmt.Errorf("asset %q: %w", asset, apperr.ErrColorMissing)
		}
		frac := float64(w) / 100
		sum[0] += rgb[0] * frac
		sum[1] += rgb[1] * frac
		sum[2] += rgb[2] * frac
	}
	max := 1.0
	for _, c := range sum {
		if c > max {
			max = c
		}
	}
	return [3]float64{sum[0] / max, sum[1] / max, sum[2] / max}, nil
}

// BlendColors fills in Color on every portfolio in place, returning the
// first color-lookup error encountered (which should not happen for a
// universe validated against colors up front).
func BlendColors(universe market.Universe, colors market.ColorMap, portfolios []Portfolio) error {
	for i := range portfolios {
		c, err := BlendColor(universe, colors, portfolios[i].Allocation)
		if err != nil {
			return err
		}
		portfolios[i].Color = c
	}
	return nil
}
