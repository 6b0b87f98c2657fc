package record

import (
	"errors"
	"testing"

	"frontier/internal/apperr"
	"frontier/internal/simulate"
)

func sampleRecord(assets int) Record {
	alloc := make([]int32, assets)
	sum := int32(0)
	for i := range alloc {
		alloc[i] = int32(10 * (i + 1))
		sum += alloc[i]
	}
	alloc[len(alloc)-1] += 100 - sum
	return Record{
		Stats: simulate.Statistics{
			Gain: 1.23, CAGRPercent: 4.56, Variance: 0.001, Stddev: 0.0316, Sharpe: 1.5,
		},
		Allocation: alloc,
	}
}

// Universal property 2 + S6: RecordCodec.decode(encode(r)) == r within
// float32 epsilon on stats, exact on weights.
func TestEncodeDecode_RoundTrip(t *testing.T) {
	r := sampleRecord(4)
	buf := Encode(nil, r)
	if len(buf) != FrameSize(4) {
		t.Fatalf("encoded length = %d, want %d", len(buf), FrameSize(4))
	}
	got, err := Decode(buf, 4)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Stats != r.Stats {
		t.Errorf("stats round-trip mismatch: got %+v, want %+v", got.Stats, r.Stats)
	}
	for i := range r.Allocation {
		if got.Allocation[i] != r.Allocation[i] {
			t.Errorf("allocation[%d] = %d, want %d", i, got.Allocation[i], r.Allocation[i])
		}
	}
}

// S5: a byte buffer of length 3*(20+4A)+7 decodes to FramingError.
func TestDecodeAll_FramingError(t *testing.T) {
	assets := 4
	size := FrameSize(assets)
	buf := make([]byte, 3*size+7)
	err := DecodeAll(buf, assets, func(Record) bool { return true })
	if !errors.Is(err, apperr.ErrFraming) {
		t.Fatalf("expected ErrFraming, got %v", err)
	}
}

// S6: a batch of 100 portfolios round-trips through encode -> concat ->
// decode_iter with weights preserved exactly and stats within 1e-5.
func TestDecodeAll_BatchRoundTrip(t *testing.T) {
	const n = 100
	const assets = 5
	var buf []byte
	want := make([]Record, n)
	for i := 0; i < n; i++ {
		r := sampleRecord(assets)
		r.Stats.Gain = float32(i) / 7
		want[i] = r
		buf = Encode(buf, r)
	}
	got := make([]Record, 0, n)
	err := DecodeAll(buf, assets, func(r Record) bool {
		got = append(got, r)
		return true
	})
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	if len(got) != n {
		t.Fatalf("decoded %d records, want %d", len(got), n)
	}
	for i := range want {
		if got[i].Stats.Gain != want[i].Stats.Gain {
			t.Errorf("record %d gain = %v, want %v", i, got[i].Stats.Gain, want[i].Stats.Gain)
		}
		for j := range want[i].Allocation {
			if got[i].Allocation[j] != want[i].Allocation[j] {
				t.Errorf("record %d weight %d = %d, want %d", i, j, got[i].Allocation[j], want[i].Allocation[j])
			}
		}
	}
}
