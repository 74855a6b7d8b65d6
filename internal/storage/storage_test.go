package storage

import (
	"testing"

	"github.com/oriondb/oriondb/internal/types"
)

func TestMemStoreAppendRowAssignsSequentialOffsets(t *testing.T) {
	m := NewMemStore()
	var table types.TableId = 1

	off0, err := m.AppendRow(table, map[types.PropertyId]any{1: "a"})
	if err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	off1, err := m.AppendRow(table, map[types.PropertyId]any{1: "b"})
	if err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if off0 != 0 || off1 != 1 {
		t.Fatalf("offsets = %d, %d, want 0, 1", off0, off1)
	}
	if got := m.RowCount(table); got != 2 {
		t.Fatalf("RowCount = %d, want 2", got)
	}
}

func TestMemStorePKIndexRejectsDuplicate(t *testing.T) {
	m := NewMemStore()
	var table types.TableId = 1

	if err := m.Insert(table, "k1", 0); err != nil {
		t.Fatalf("first Insert: %v", err)
	}
	if err := m.Insert(table, "k1", 1); err == nil {
		t.Fatalf("expected duplicate-key error on second Insert")
	}
	off, ok := m.Lookup(table, "k1")
	if !ok || off != 0 {
		t.Fatalf("Lookup(k1) = (%d, %v), want (0, true)", off, ok)
	}
	if _, ok := m.Lookup(table, "missing"); ok {
		t.Fatalf("Lookup(missing) should not resolve")
	}
}

func TestMemStoreAppendEdgeTracksBothDirections(t *testing.T) {
	m := NewMemStore()
	var table types.TableId = 2

	if err := m.AppendEdge(table, 0, 10, 20, nil); err != nil {
		t.Fatalf("AppendEdge: %v", err)
	}
	if err := m.AppendEdge(table, 1, 11, 21, nil); err != nil {
		t.Fatalf("AppendEdge: %v", err)
	}
	if got := m.EdgeCount(table); got != 2 {
		t.Fatalf("EdgeCount = %d, want 2", got)
	}
}

func TestMemStoreBeginReturnsNoopTxn(t *testing.T) {
	m := NewMemStore()
	txn, err := m.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := txn.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := txn.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
}
