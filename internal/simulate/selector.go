package simulate

import (
	"fmt"
	"strconv"
	"strings"
)

// Selector picks the (start, end) year ranges a Simulate call aggregates
// over. A closed sum type: FirstToLast, FirstToAll, SlidingWindow,
// AllToLast, AllToAll (spec.md §4.2).
type Selector interface {
	// Ranges returns the [start, end] year-index pairs (indices into the
	// sorted years slice, inclusive) this selector contributes.
	Ranges(years []int) [][2]int
	fmt.Stringer
}

// FirstToLast is the single range spanning the whole data set.
type FirstToLast struct{}

func (FirstToLast) Ranges(years []int) [][2]int {
	if len(years) == 0 {
		return nil
	}
	return [][2]int{{0, len(years) - 1}}
}
func (FirstToLast) String() string { return "first-to-last" }

// FirstToAll yields the range from Y0 to each subsequent year.
type FirstToAll struct{}

func (FirstToAll) Ranges(years []int) [][2]int {
	out := make([][2]int, 0, len(years)-1)
	for end := 1; end < len(years); end++ {
		out = append(out, [2]int{0, end})
	}
	return out
}
func (FirstToAll) String() string { return "first-to-all" }

// SlidingWindow yields every contiguous K-year range.
type SlidingWindow struct{ K int }

func (s SlidingWindow) Ranges(years []int) [][2]int {
	if s.K <= 0 || s.K > len(years) {
		return nil
	}
	out := make([][2]int, 0, len(years)-s.K+1)
	for start := 0; start+s.K-1 < len(years); start++ {
		out = append(out, [2]int{start, start + s.K - 1})
	}
	return out
}
func (s SlidingWindow) String() string { return fmt.Sprintf("sliding-window-%d", s.K) }

// AllToLast yields the range from each year to the last.
type AllToLast struct{}

func (AllToLast) Ranges(years []int) [][2]int {
	out := make([][2]int, 0, len(years)-1)
	for start := 0; start < len(years)-1; start++ {
		out = append(out, [2]int{start, len(years) - 1})
	}
	return out
}
func (AllToLast) String() string { return "all-to-last" }

// AllToAll yields every pair start < end.
type AllToAll struct{}

func (AllToAll) Ranges(years []int) [][2]int {
	var out [][2]int
	for start := 0; start < len(years); start++ {
		for end := start + 1; end < len(years); end++ {
			out = append(out, [2]int{start, end})
		}
	}
	return out
}
func (AllToAll) String() string { return "all-to-all" }

// ParseSelector parses a --years flag value into a Selector, representing
// the fixed closed set of names from spec.md §4.2 as a sum type rather
// than dynamic name lookup inside the hot loop (Design Note
// "Configuration").
func ParseSelector(name string) (Selector, error) {
	switch {
	case name == "first-to-last":
		return FirstToLast{}, nil
	case name == "first-to-all":
		return FirstToAll{}, nil
	case name == "all-to-last":
		return AllToLast{}, nil
	case name == "all-to-all":
		return AllToAll{}, nil
	case strings.HasPrefix(name, "sliding-window-"):
		kStr := strings.TrimPrefix(name, "sliding-window-")
		k, err := strconv.Atoi(kStr)
		if err != nil || k <= 0 {
			return nil, fmt.Errorf("invalid sliding-window size %q", kStr)
		}
		return SlidingWindow{K: k}, nil
	default:
		return nil, fmt.Errorf("unknown year-range selector %q", name)
	}
}
