package market

import (
	"encoding/json"
	"fmt"
	"os"

	"frontier/internal/apperr"
)

// ColorMap maps asset name -> [R, G, B], each channel in [0, 1].
type ColorMap map[string][3]float64

// ReadColorsJSON parses a Color config JSON file: a mapping asset name ->
// [R, G, B].
func ReadColorsJSON(path string) (ColorMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read colors json %s: %w", path, apperr.ErrIO)
	}
	var raw map[string][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse colors json %s: %w", path, err)
	}
	out := make(ColorMap, len(raw))
	for asset, rgb := range raw {
		if len(rgb) != 3 {
			return nil, fmt.Errorf("colors json entry %q must have exactly 3 channels, got %d", asset, len(rgb))
		}
		for _, c := range rgb {
			if c < 0 || c > 1 {
				return nil, fmt.Errorf("colors json entry %q channel %v out of [0,1]", asset, c)
			}
		}
		out[asset] = [3]float64{rgb[0], rgb[1], rgb[2]}
	}
	return out, nil
}

// ValidateColors checks that every asset in universe has a color entry,
// returning an apperr.MultiError enumerating every missing asset rather
// than failing on the first (spec.md §7 propagation policy).
func ValidateColors(universe Universe, colors ColorMap) error {
	var errs apperr.MultiError
	for _, asset := range universe {
		if _, ok := colors[asset]; !ok {
			errs.Add(fmt.Errorf("asset %q: %w", asset, apperr.ErrColorMissing))
		}
	}
	return errs.ErrOrNil()
}
