package partitioner

import (
	"testing"

	"github.com/oriondb/oriondb/internal/types"
)

func TestAddAssignsSharedMonotonicEdgeID(t *testing.T) {
	var flushed []*Bucket
	p := New(100, 10, func(b *Bucket) error {
		cp := *b
		cp.Rows = append([]Row(nil), b.Rows...)
		flushed = append(flushed, &cp)
		return nil
	})

	tuple := EdgeTuple{SrcTable: 1, DstTable: 2, SrcOffset: 5, DstOffset: 9}
	if err := p.Add(tuple); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := p.Add(tuple); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var fwdIDs, bwdIDs []types.Offset
	for _, b := range flushed {
		for _, r := range b.Rows {
			if b.Direction == FWD {
				fwdIDs = append(fwdIDs, r.EdgeID)
			} else {
				bwdIDs = append(bwdIDs, r.EdgeID)
			}
		}
	}
	if len(fwdIDs) != 2 || len(bwdIDs) != 2 {
		t.Fatalf("expected 2 FWD and 2 BWD rows, got %d/%d", len(fwdIDs), len(bwdIDs))
	}
	if fwdIDs[0] != bwdIDs[0] || fwdIDs[1] != bwdIDs[1] {
		t.Fatalf("FWD/BWD edge ids for the same edge must match: fwd=%v bwd=%v", fwdIDs, bwdIDs)
	}
	if fwdIDs[0] == fwdIDs[1] {
		t.Fatalf("edge ids must be monotonically increasing, got %v", fwdIDs)
	}
}

func TestFlushesOnThresholdCrossing(t *testing.T) {
	flushes := 0
	p := New(100, 2, func(b *Bucket) error {
		flushes++
		return nil
	})

	for i := 0; i < 5; i++ {
		if err := p.Add(EdgeTuple{SrcTable: 1, DstTable: 2, SrcOffset: types.Offset(i), DstOffset: types.Offset(i + 100)}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	// 5 edges -> 5 FWD rows + 5 BWD rows, threshold 2: flush triggers at 2,4 rows
	// per bucket twice each (FWD, BWD), leaving a partial bucket of 1 row each
	// for Close to flush.
	beforeClose := flushes
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if flushes <= beforeClose {
		t.Fatalf("Close should flush the remaining partial buckets")
	}
}

func TestCloseFlushesRemainingPartialBucket(t *testing.T) {
	var total int
	p := New(1, 10, func(b *Bucket) error {
		total += len(b.Rows)
		return nil
	})
	if err := p.Add(EdgeTuple{SrcTable: 1, DstTable: 2, SrcOffset: 1, DstOffset: 2}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if total != 0 {
		t.Fatalf("flush should not have fired before Close, total=%d", total)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if total != 2 {
		t.Fatalf("Close should flush both FWD and BWD rows, total=%d, want 2", total)
	}
}

func TestSeenBitmapTracksOffsets(t *testing.T) {
	var seenLens []uint64
	p := New(5, 10, func(b *Bucket) error {
		seenLens = append(seenLens, b.Seen.GetCardinality())
		return nil
	})
	if err := p.Add(EdgeTuple{SrcTable: 1, DstTable: 2, SrcOffset: 3, DstOffset: 4}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	for _, n := range seenLens {
		if n == 0 {
			t.Fatalf("expected non-empty Seen bitmap on flush, got %v", seenLens)
		}
	}
}
