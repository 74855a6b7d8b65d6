// Package storage declares the narrow interfaces the bulk-load pipeline
// needs from the external collaborators spec.md keeps out of scope:
// *Storage* (page/buffer management), the primary-key index, and *TxnMgr*
// (transaction/WAL/checkpoint). The core here never implements a real
// buffer pool or WAL; it only consumes read/write-transaction handles and a
// PK-lookup/append surface, the same way the teacher's wal.Consumer only
// consumes a *reactive.Registry and never touches Postgres's own WAL files.
package storage

import (
	"sync"

	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
)

// PKIndex resolves a Node table's primary key value to its internal
// Offset, and registers newly-appended rows. One index instance is shared
// per node table; IndexLookup (planner) reads it, node-ingest writes it,
// matching spec.md §5's "shared-read during lookup, exclusive-write during
// node ingest" rule.
type PKIndex interface {
	Lookup(table types.TableId, key any) (types.Offset, bool)
	Insert(table types.TableId, key any, offset types.Offset) error
}

// NodeWriter appends rows to a Node table and reports its current offset
// count (spec.md §8: "offset-count equals N" after a COPY).
type NodeWriter interface {
	AppendRow(table types.TableId, values map[types.PropertyId]any) (types.Offset, error)
	RowCount(table types.TableId) types.Offset
}

// RelWriter appends one edge in both the FWD and BWD adjacency directions
// under a caller-assigned edge id, per spec.md §4.4's "FWD and BWD writes
// for the same edge share an ID".
type RelWriter interface {
	AppendEdge(table types.TableId, edgeID types.Offset, srcOffset, dstOffset types.Offset, props map[types.PropertyId]any) error
	EdgeCount(table types.TableId) types.Offset
}

// TxnHandle is the opaque write-transaction handle the core commits
// through; the core never manages WAL or checkpoints itself.
type TxnHandle interface {
	Commit() error
	Rollback() error
}

// TxnMgr begins new write transactions.
type TxnMgr interface {
	Begin() (TxnHandle, error)
}

// MemStore is an in-process fake implementing PKIndex, NodeWriter,
// RelWriter and TxnMgr, standing in for *Storage*/*TxnMgr* so the pipeline
// and its tests can run without a real page/buffer backend. It mirrors the
// teacher's reactive.Registry: one mutex-guarded map, no persistence.
type MemStore struct {
	mu sync.Mutex

	pk       map[types.TableId]map[any]types.Offset
	rows     map[types.TableId][]map[types.PropertyId]any
	edgesFwd map[types.TableId][]edgeRow
	edgesBwd map[types.TableId][]edgeRow
}

type edgeRow struct {
	id, src, dst types.Offset
	props        map[types.PropertyId]any
}

func NewMemStore() *MemStore {
	return &MemStore{
		pk:       make(map[types.TableId]map[any]types.Offset),
		rows:     make(map[types.TableId][]map[types.PropertyId]any),
		edgesFwd: make(map[types.TableId][]edgeRow),
		edgesBwd: make(map[types.TableId][]edgeRow),
	}
}

func (m *MemStore) Lookup(table types.TableId, key any) (types.Offset, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	off, ok := m.pk[table][key]
	return off, ok
}

func (m *MemStore) Insert(table types.TableId, key any, offset types.Offset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pk[table] == nil {
		m.pk[table] = make(map[any]types.Offset)
	}
	if _, dup := m.pk[table][key]; dup {
		return oriorerr.WithCode(oriorerr.Catalog, "Duplicate", "duplicate primary key during ingest")
	}
	m.pk[table][key] = offset
	return nil
}

func (m *MemStore) AppendRow(table types.TableId, values map[types.PropertyId]any) (types.Offset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	off := types.Offset(len(m.rows[table]))
	m.rows[table] = append(m.rows[table], values)
	return off, nil
}

func (m *MemStore) RowCount(table types.TableId) types.Offset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.Offset(len(m.rows[table]))
}

func (m *MemStore) AppendEdge(table types.TableId, edgeID types.Offset, srcOffset, dstOffset types.Offset, props map[types.PropertyId]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edgesFwd[table] = append(m.edgesFwd[table], edgeRow{id: edgeID, src: srcOffset, dst: dstOffset, props: props})
	m.edgesBwd[table] = append(m.edgesBwd[table], edgeRow{id: edgeID, src: srcOffset, dst: dstOffset, props: props})
	return nil
}

func (m *MemStore) EdgeCount(table types.TableId) types.Offset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.Offset(len(m.edgesFwd[table]))
}

// Begin/Commit/Rollback satisfy TxnMgr/TxnHandle with a no-op transaction:
// MemStore has no WAL, so there is nothing to actually replay or discard.
func (m *MemStore) Begin() (TxnHandle, error) { return noopTxn{}, nil }

type noopTxn struct{}

func (noopTxn) Commit() error   { return nil }
func (noopTxn) Rollback() error { return nil }
