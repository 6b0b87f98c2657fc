// Package apperr defines the sentinel error taxonomy shared by every
// stage of a frontier run, and a MultiError for ingest-time validation
// that must report every problem instead of bailing on the first.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Wrap with fmt.Errorf("...: %w", Err...) for context.
var (
	ErrInvalidStep        = errors.New("precision does not divide 100")
	ErrUnknownAsset       = errors.New("asset not present in market data or color map")
	ErrWeightSumNot100    = errors.New("allocation weights do not sum to 100")
	ErrEmptyYearRange     = errors.New("year-range selector produced zero ranges")
	ErrDegenerateVariance = errors.New("fewer than two annual gains in a selected range, or zero standard deviation")
	ErrFraming            = errors.New("record stream length is not a multiple of the frame size")
	ErrColorMissing       = errors.New("market asset has no color entry")
	ErrIO                 = errors.New("byte pipe I/O error")
)

// MultiError collects zero or more errors so ingest validation can report
// every invalid static portfolio in one pass rather than stopping at the
// first (spec propagation policy: ingest-time errors abort the run before
// any simulation begins, but enumerate every problem).
type MultiError struct {
	Errs []error
}

// Add appends err to the collection if it is non-nil.
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errs = append(m.Errs, err)
	}
}

// Len reports how many errors have been collected.
func (m *MultiError) Len() int {
	return len(m.Errs)
}

// ErrOrNil returns m if it holds at least one error, else nil — the usual
// "return multiErr.ErrOrNil()" idiom so callers can treat MultiError as a
// plain error.
func (m *MultiError) ErrOrNil() error {
	if m == nil || len(m.Errs) == 0 {
		return nil
	}
	return m
}

func (m *MultiError) Error() string {
	lines := make([]string, len(m.Errs))
	for i, e := range m.Errs {
		lines[i] = fmt.Sprintf("- %v", e)
	}
	return fmt.Sprintf("%d error(s):\n%s", len(m.Errs), strings.Join(lines, "\n"))
}

// Unwrap exposes the underlying errors for errors.Is/errors.As traversal.
func (m *MultiError) Unwrap() []error {
	return m.Errs
}
