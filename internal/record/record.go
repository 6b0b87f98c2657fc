// Package record packs and unpacks one (Allocation, Statistics) record to
// a fixed-width little-endian binary frame (spec.md §4.3). The stream is a
// bare concatenation of frames: no headers, no separators; a reader must
// know the asset count A out-of-band.
package record

import (
	"encoding/binary"
	"fmt"
	"math"

	"frontier/internal/apperr"
	"frontier/internal/simulate"
)

// Record is one packed allocation-plus-statistics tuple.
type Record struct {
	Stats      simulate.Statistics
	Allocation []int32
}

// FrameSize returns the byte width of one frame for the given asset count:
// 5 float32 stats + A int32 weights = 20 + 4*assets bytes.
func FrameSize(assets int) int {
	return 20 + 4*assets
}

// Encode appends r's frame to dst and returns the extended slice, in the
// order {gain, cagr_percent, variance, stddev, sharpe} followed by the
// allocation weights.
func Encode(dst []byte, r Record) []byte {
	var buf [4]byte
	putFloat32 := func(v float32) {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		dst = append(dst, buf[:]...)
	}
	putFloat32(r.Stats.Gain)
	putFloat32(r.Stats.CAGRPercent)
	putFloat32(r.Stats.Variance)
	putFloat32(r.Stats.Stddev)
	putFloat32(r.Stats.Sharpe)
	for _, w := range r.Allocation {
		binary.LittleEndian.PutUint32(buf[:], uint32(w))
		dst = append(dst, buf[:]...)
	}
	return dst
}

// Decode unpacks one frame of the given asset count from the front of src.
func Decode(src []byte, assets int) (Record, error) {
	size := FrameSize(assets)
	if len(src) < size {
		return Record{}, fmt.Errorf("record frame needs %d bytes, got %d: %w", size, len(src), apperr.ErrFraming)
	}
	getFloat32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(src[off : off+4]))
	}
	stats := simulate.Statistics{
		Gain:        getFloat32(0),
		CAGRPercent: getFloat32(4),
		Variance:    getFloat32(8),
		Stddev:      getFloat32(12),
		Sharpe:      getFloat32(16),
	}
	alloc := make([]int32, assets)
	for i := 0; i < assets; i++ {
		off := 20 + 4*i
		alloc[i] = int32(binary.LittleEndian.Uint32(src[off : off+4]))
	}
	return Record{Stats: stats, Allocation: alloc}, nil
}

// DecodeAll decodes every frame in src, calling yield once per record in
// stream order. Returns apperr.ErrFraming if len(src) is not a multiple of
// the frame size.
func DecodeAll(src []byte, assets int, yield func(Record) bool) error {
	size := FrameSize(assets)
	if size <= 0 || len(src)%size != 0 {
		return fmt.Errorf("stream length %d not a multiple of frame size %d: %w", len(src), size, apperr.ErrFraming)
	}
	for off := 0; off < len(src); off += size {
		rec, err := Decode(src[off:off+size], assets)
		if err != nil {
			return err
		}
		if !yield(rec) {
			return nil
		}
	}
	return nil
}
