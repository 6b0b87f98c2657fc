// Package market ingests the CSV returns file and the JSON color/
// static-portfolio config files into the read-only data model shared by
// the rest of a frontier run.
package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"frontier/internal/apperr"
)

// Universe is the ordered, fixed sequence of asset names for a run. Order
// matches the column order of the Returns CSV.
type Universe []string

// Index returns the column index of name, or -1 if absent.
func (u Universe) Index(name string) int {
	for i, n := range u {
		if n == name {
			return i
		}
	}
	return -1
}

// GainTable maps year -> per-asset gain multiplier (1 + fractional return).
// Years form a contiguous integer range [Y0, Y1].
type GainTable map[int][]float64

// SortedYears returns the table's years in ascending order.
func (g GainTable) SortedYears() []int {
	years := make([]int, 0, len(g))
	for y := range g {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// ReadReturnsCSV parses a Returns file: header "year,<asset1>,<asset2>,...",
// each row a year followed by per-asset percentage returns (bare floats or
// with a trailing '%'). Trailing '%' is stripped and converted to the gain
// multiplier 1 + pct/100, matching the original capitalgain.csv ingest.
func ReadReturnsCSV(path string) (Universe, GainTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open returns csv %s: %w", path, apperr.ErrIO)
	}
	defer f.Close()
	return parseReturnsCSV(f)
}

func parseReturnsCSV(r io.Reader) (Universe, GainTable, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse returns csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("returns csv must have a header and at least one data row")
	}
	header := rows[0]
	if len(header) < 2 || strings.ToLower(header[0]) != "year" {
		return nil, nil, fmt.Errorf("returns csv header must start with \"year\", got %v", header)
	}
	assets := Universe(append([]string(nil), header[1:]...))
	table := make(GainTable, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, nil, fmt.Errorf("returns csv row has %d columns, want %d: %v", len(row), len(header), row)
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, nil, fmt.Errorf("returns csv year %q: %w", row[0], err)
		}
		gains := make([]float64, len(assets))
		for i, cell := range row[1:] {
			pct, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(cell), "%"), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("returns csv value %q for year %d: %w", cell, year, err)
			}
			gains[i] = 1 + pct/100
		}
		table[year] = gains
	}
	years := table.SortedYears()
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]+1 {
			return nil, nil, fmt.Errorf("returns csv years are not contiguous: %d then %d", years[i-1], years[i])
		}
	}
	return assets, table, nil
}
