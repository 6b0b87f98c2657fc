package pipeline

import (
	"context"

	"frontier/internal/config"
	"frontier/internal/hull"
	"frontier/internal/record"
)

// ChanSink bridges SimulationPipeline.Run's Sink contract to Fanout's
// channel source: every Write/Finish call is a blocking send on ch, so the
// two stages run concurrently with exactly one batch of backpressure
// between them.
type ChanSink struct {
	ctx context.Context
	ch  chan<- []byte
}

// NewChanSink builds a ChanSink that sends to ch, aborting sends once ctx
// is done.
func NewChanSink(ctx context.Context, ch chan<- []byte) *ChanSink {
	return &ChanSink{ctx: ctx, ch: ch}
}

func (s *ChanSink) Write(batch []byte) error {
	buf := append([]byte(nil), batch...)
	select {
	case s.ch <- buf:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

func (s *ChanSink) Finish() error {
	select {
	case s.ch <- Sentinel:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// HullSink is a Fanout consumer for one statistic-pair axis: it decodes
// each batch's records, projects each onto the axis pair, and inserts the
// projected point into its Reducer. Finish drains the reducer and hands
// the surviving points to onDrain (in cmd/frontier, internal/frontier.Assemble
// followed by color blending).
type HullSink struct {
	assets  int
	axis    config.AxisPair
	reducer *hull.Reducer
	onDrain func(axis config.AxisPair, drained []hull.Point) error
}

// NewHullSink builds a HullSink projecting onto axis, backed by reducer.
func NewHullSink(assets int, axis config.AxisPair, reducer *hull.Reducer, onDrain func(config.AxisPair, []hull.Point) error) *HullSink {
	return &HullSink{assets: assets, axis: axis, reducer: reducer, onDrain: onDrain}
}

func (s *HullSink) Write(batch []byte) error {
	return record.DecodeAll(batch, s.assets, func(r record.Record) bool {
		x, errX := r.Stats.Field(s.axis.X)
		y, errY := r.Stats.Field(s.axis.Y)
		if errX != nil || errY != nil {
			return true // unknown axis field name: skip the record rather than abort mid-stream
		}
		s.reducer.Insert(hull.Point{X: x, Y: y, Record: record.Encode(nil, r)})
		return true
	})
}

func (s *HullSink) Finish() error {
	drained := s.reducer.Drain()
	if s.onDrain == nil {
		return nil
	}
	return s.onDrain(s.axis, drained)
}
