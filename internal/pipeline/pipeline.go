// Package pipeline runs the parallel simulate-and-encode stage
// (SimulationPipeline, spec.md §4.4) and the single-source, multi-sink
// copy stage that follows it (Fanout, spec.md §4.5).
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"frontier/internal/allocation"
	"frontier/internal/market"
	"frontier/internal/record"
	"frontier/internal/simulate"
)

// Sentinel marks the end of a record stream. Fanout forwards it verbatim
// to every sink and stops reading; a Sink's Finish writes it.
var Sentinel = []byte("DataStreamFinished")

// Sink is a byte-stream consumer: a sequence of batch writes terminated by
// Finish, which is responsible for writing the Sentinel frame.
type Sink interface {
	Write(batch []byte) error
	Finish() error
}

// RunConfig parameterizes one SimulationPipeline run.
type RunConfig struct {
	Assets    int
	Step      int
	Selector  simulate.Selector
	ChunkSize int
}

// Run enumerates every allocation for cfg.Assets/cfg.Step, partitions the
// count across runtime.NumCPU() contiguous slices, simulates each
// allocation against table, and writes chunked, encoded batches to sink in
// the order spec.md §4.4 describes. It returns the total number of
// allocations simulated.
//
// A per-record simulation error or a Sink error is fatal: it cancels every
// worker's context and the run returns that error without calling
// sink.Finish (spec.md §4.4 Failure semantics).
func Run(ctx context.Context, cfg RunConfig, table market.GainTable, sink Sink) (int, error) {
	total := allocation.Count(cfg.Assets, cfg.Step)
	if total == 0 {
		return 0, sink.Finish()
	}
	workers := runtime.NumCPU()
	sliceSize := (total + workers - 1) / workers

	ctx2, cancel := context.WithCancel(ctx)
	defer cancel()

	batchCh := make(chan []byte, 1)
	var writeErr error
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for b := range batchCh {
			if writeErr != nil {
				continue // already failed; drain to unblock producers
			}
			if err := sink.Write(b); err != nil {
				writeErr = err
				cancel()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx2)
	counts := make([]int, workers)
	for p := 0; p < workers; p++ {
		start := p * sliceSize
		if start >= total {
			continue
		}
		end := start + sliceSize
		if end > total {
			end = total
		}
		p := p
		g.Go(func() error {
			n, err := simulateSlice(gctx, cfg, table, start, end, batchCh)
			counts[p] = n
			return err
		})
	}
	workErr := g.Wait()
	close(batchCh)
	<-writerDone

	sum := 0
	for _, c := range counts {
		sum += c
	}
	if writeErr != nil {
		return sum, writeErr
	}
	if workErr != nil {
		return sum, workErr
	}
	return sum, sink.Finish()
}

// simulateSlice re-enumerates the full allocation space from index 0,
// skipping everything outside [start, end), per spec.md §4.4 ("skipping is
// by re-enumeration, not by random access, because the enumerator has no
// index"). Within the slice, allocations are grouped into cfg.ChunkSize
// batches and handed to batchCh one at a time (the one-deep pipelined
// write: at most one encoded batch is ever in flight awaiting the writer
// goroutine while the next is being built).
func simulateSlice(ctx context.Context, cfg RunConfig, table market.GainTable, start, end int, batchCh chan<- []byte) (int, error) {
	frameSize := record.FrameSize(cfg.Assets)
	batch := make([]byte, 0, cfg.ChunkSize*frameSize)
	count := 0
	idx := -1

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		select {
		case batchCh <- batch:
		case <-ctx.Done():
			return ctx.Err()
		}
		batch = make([]byte, 0, cfg.ChunkSize*frameSize)
		return nil
	}

	var simErr, sendErr error
	enumErr := allocation.Enumerate(cfg.Assets, cfg.Step, func(v allocation.Vector) bool {
		idx++
		if idx < start {
			return true
		}
		if idx >= end {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		default:
		}
		stats, err := simulate.Simulate(v, table, cfg.Selector)
		if err != nil {
			simErr = fmt.Errorf("allocation %v: %w", []int32(v), err)
			return false
		}
		batch = record.Encode(batch, record.Record{Stats: stats, Allocation: v.Clone()})
		count++
		if (count)%cfg.ChunkSize == 0 {
			if err := flush(); err != nil {
				sendErr = err
				return false
			}
		}
		return true
	})
	if enumErr != nil {
		return count, enumErr
	}
	if simErr != nil {
		return count, simErr
	}
	if sendErr != nil {
		return count, sendErr
	}
	if err := flush(); err != nil {
		return count, err
	}
	return count, nil
}

// Fanout reads one frame at a time from source; on the Sentinel it
// forwards the sentinel to every sink and returns. Non-sentinel frames
// dispatch to every sink concurrently; the next source read happens only
// after every sink's write for the current frame has completed
// (backpressure, spec.md §4.5).
func Fanout(ctx context.Context, source <-chan []byte, sinks []Sink) error {
	for {
		var frame []byte
		select {
		case frame = <-source:
		case <-ctx.Done():
			return ctx.Err()
		}

		isSentinel := string(frame) == string(Sentinel)
		g, _ := errgroup.WithContext(ctx)
		for _, s := range sinks {
			s := s
			if isSentinel {
				g.Go(s.Finish)
			} else {
				g.Go(func() error { return s.Write(frame) })
			}
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if isSentinel {
			return nil
		}
	}
}
