package planner

import (
	"testing"

	"github.com/oriondb/oriondb/internal/binder"
	"github.com/oriondb/oriondb/internal/types"
)

func collectKinds(root *Op) []OpKind {
	var kinds []OpKind
	_ = Walk(root, func(op *Op) error {
		kinds = append(kinds, op.Kind)
		return nil
	})
	return kinds
}

func TestPlanCopyFromNodeTableIsScanProjectionWrite(t *testing.T) {
	info := binder.BoundCopyFromInfo{
		TableID: 7,
		FileScan: binder.BoundFileScanInfo{
			FileType: binder.FileTypeCSV,
			Columns:  []binder.BoundColumn{{Name: "id", Type: types.Int64()}},
		},
	}
	op, err := PlanCopyFrom(info)
	if err != nil {
		t.Fatalf("PlanCopyFrom: %v", err)
	}
	got := collectKinds(op)
	want := []OpKind{OpCopyFromNodeWriter, OpProjection, OpScanSource}
	if !kindsEqual(got, want) {
		t.Fatalf("plan shape = %v, want %v", got, want)
	}
	if op.TargetTable != 7 {
		t.Fatalf("TargetTable = %v, want 7", op.TargetTable)
	}
}

func TestPlanCopyFromTurtleNodeUsesDistinct(t *testing.T) {
	info := binder.BoundCopyFromInfo{
		TableID: 9,
		FileScan: binder.BoundFileScanInfo{
			FileType: binder.FileTypeTurtle,
		},
	}
	op, err := PlanCopyFrom(info)
	if err != nil {
		t.Fatalf("PlanCopyFrom: %v", err)
	}
	got := collectKinds(op)
	want := []OpKind{OpCopyFromNodeWriter, OpDistinct, OpScanSource}
	if !kindsEqual(got, want) {
		t.Fatalf("plan shape = %v, want %v (RDF resource ingest must dedup repeated IRIs)", got, want)
	}
}

func TestPlanCopyFromRelTableIsLookupPartitionWrite(t *testing.T) {
	info := binder.BoundCopyFromInfo{
		TableID: 3,
		FileScan: binder.BoundFileScanInfo{
			FileType: binder.FileTypeCSV,
		},
		RelInfo: &binder.ExtraBoundCopyRelInfo{
			SrcTableID: 1, DstTableID: 2, SrcKeyCol: "src_id", DstKeyCol: "dst_id",
		},
	}
	op, err := PlanCopyFrom(info)
	if err != nil {
		t.Fatalf("PlanCopyFrom: %v", err)
	}
	got := collectKinds(op)
	want := []OpKind{OpCopyFromRelWriter, OpPartitioner, OpIndexLookup, OpScanSource}
	if !kindsEqual(got, want) {
		t.Fatalf("plan shape = %v, want %v", got, want)
	}
	if op.RelInfo == nil || op.RelInfo.SrcTableID != 1 {
		t.Fatalf("RelInfo not carried through to the root op: %+v", op.RelInfo)
	}
	// RelInfo must be threaded onto every stage that needs it, not just the root.
	for op := op; op != nil; op = op.Child {
		if op.Kind == OpIndexLookup || op.Kind == OpPartitioner || op.Kind == OpCopyFromRelWriter {
			if op.RelInfo == nil {
				t.Fatalf("stage %v is missing RelInfo", op.Kind)
			}
		}
	}
}

func TestPlanCopyToRejectsEmptyProjection(t *testing.T) {
	if err := PlanCopyTo(binder.BoundCopyToInfo{}); err == nil {
		t.Fatalf("expected error for empty projection")
	}
}

func kindsEqual(a, b []OpKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
