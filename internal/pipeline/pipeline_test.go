package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"frontier/internal/config"
	"frontier/internal/hull"
	"frontier/internal/market"
	"frontier/internal/record"
	"frontier/internal/simulate"
)

type memSink struct {
	mu      sync.Mutex
	batches [][]byte
	finished bool
	writeErr error
}

func (s *memSink) Write(b []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]byte(nil), b...))
	return nil
}

func (s *memSink) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
	return nil
}

func threeAssetTable() market.GainTable {
	table := make(market.GainTable, 4)
	for y := 2000; y < 2004; y++ {
		table[y] = []float64{1.05, 1.03, 1.08}
	}
	return table
}

// Universal property: total returned by Run equals allocation.Count(A,step),
// and the concatenation of every non-sentinel batch decodes back to that
// many records (S1/S6-style round trip at pipeline scope).
func TestRun_TotalMatchesCount(t *testing.T) {
	table := threeAssetTable()
	sel := simulate.FirstToLast{}
	cfg := RunConfig{Assets: 3, Step: 25, Selector: sel, ChunkSize: 4}
	sink := &memSink{}

	total, err := Run(context.Background(), cfg, table, sink)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if total != 15 { // C(4+3-1,3-1): 100/25=4 units split over 3 assets
		t.Fatalf("total = %d, want 15", total)
	}
	if !sink.finished {
		t.Fatal("sink.Finish was never called")
	}

	count := 0
	for _, b := range sink.batches {
		if len(b)%record.FrameSize(3) != 0 {
			t.Fatalf("batch length %d not a multiple of frame size", len(b))
		}
		count += len(b) / record.FrameSize(3)
	}
	if count != total {
		t.Fatalf("decoded %d records across batches, want %d", count, total)
	}
}

// A simulation error aborts the run without calling sink.Finish.
func TestRun_SimulationErrorAborts(t *testing.T) {
	table := market.GainTable{2000: {1.1, 1.1, 1.1}} // single year -> degenerate variance
	cfg := RunConfig{Assets: 3, Step: 50, Selector: simulate.FirstToLast{}, ChunkSize: 4}
	sink := &memSink{}

	_, err := Run(context.Background(), cfg, table, sink)
	if err == nil {
		t.Fatal("expected an error from degenerate-variance simulations")
	}
	if sink.finished {
		t.Fatal("sink.Finish must not be called after a fatal simulation error")
	}
}

// A sink write error propagates and also skips Finish.
func TestRun_SinkWriteErrorAborts(t *testing.T) {
	table := threeAssetTable()
	cfg := RunConfig{Assets: 3, Step: 25, Selector: simulate.FirstToLast{}, ChunkSize: 2}
	sink := &memSink{writeErr: errors.New("disk full")}

	_, err := Run(context.Background(), cfg, table, sink)
	if err == nil {
		t.Fatal("expected the sink write error to propagate")
	}
}

// Fanout forwards the sentinel to every sink's Finish and every
// non-sentinel frame to every sink's Write, preserving source order.
func TestFanout_OrderingAndSentinel(t *testing.T) {
	source := make(chan []byte, 4)
	frames := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, f := range frames {
		source <- f
	}
	source <- Sentinel

	sinkA := &memSink{}
	sinkB := &memSink{}
	err := Fanout(context.Background(), source, []Sink{sinkA, sinkB})
	if err != nil {
		t.Fatalf("Fanout: %v", err)
	}
	for _, s := range []*memSink{sinkA, sinkB} {
		if !s.finished {
			t.Error("sink did not receive the sentinel")
		}
		if len(s.batches) != len(frames) {
			t.Fatalf("sink got %d frames, want %d", len(s.batches), len(frames))
		}
		for i, f := range frames {
			if string(s.batches[i]) != string(f) {
				t.Errorf("frame %d = %q, want %q (ordering broken)", i, s.batches[i], f)
			}
		}
	}
}

// HullSink decodes each batch, projects onto its axis, and drains into the
// callback on Finish.
func TestHullSink_ProjectsAndDrains(t *testing.T) {
	universe := 2
	reducer := hull.New(1, 8)
	var drainedAxis config.AxisPair
	var drainedPts []hull.Point
	sink := NewHullSink(universe, config.AxisPair{X: "gain", Y: "stddev"}, reducer, func(axis config.AxisPair, pts []hull.Point) error {
		drainedAxis = axis
		drainedPts = pts
		return nil
	})

	var buf []byte
	buf = record.Encode(buf, record.Record{
		Stats:      simulate.Statistics{Gain: 1.5, Stddev: 0.1},
		Allocation: []int32{100, 0},
	})
	buf = record.Encode(buf, record.Record{
		Stats:      simulate.Statistics{Gain: 2.0, Stddev: 0.2},
		Allocation: []int32{0, 100},
	})
	if err := sink.Write(buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := sink.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if drainedAxis.X != "gain" || drainedAxis.Y != "stddev" {
		t.Fatalf("onDrain got axis %+v", drainedAxis)
	}
	if len(drainedPts) != 2 {
		t.Fatalf("drained %d points, want 2", len(drainedPts))
	}
}
