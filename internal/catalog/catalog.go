package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/oriondb/oriondb/internal/logutil"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
	"go.uber.org/zap"
)

// Snapshot is an immutable view of the catalog observed by readers. A
// reader holds onto one Snapshot for the whole lifetime of its statement;
// subsequent catalog commits never mutate it.
type Snapshot struct {
	tables      map[types.TableId]TableSchema
	byName      map[string]types.TableId
	nextTableID types.TableId
	Checksum    string
	GeneratedAt time.Time
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		tables: make(map[types.TableId]TableSchema),
		byName: make(map[string]types.TableId),
	}
}

// Lookup resolves a table name to its TableId.
func (s *Snapshot) Lookup(name string) (types.TableId, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// Get returns the schema for id. Callers must check ok; unlike the source
// this never panics on an unknown id.
func (s *Snapshot) Get(id types.TableId) (TableSchema, bool) {
	t, ok := s.tables[id]
	return t, ok
}

// MustGet panics iff id is unknown, matching the source's get(id) -> &TableSchema
// contract for call sites that have already validated id via Lookup/bind.
func (s *Snapshot) MustGet(id types.TableId) TableSchema {
	t, ok := s.tables[id]
	if !ok {
		panic("catalog: unknown table id")
	}
	return t
}

// ListTables returns every table in the snapshot, grounded on kuzu's
// show_tables table function.
func (s *Snapshot) ListTables() []TableSchema {
	out := make([]TableSchema, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	return out
}

// DescribeTable is the table_info table-function equivalent: schema plus a
// resolved property list, for admin/introspection use.
func (s *Snapshot) DescribeTable(id types.TableId) (TableSchema, bool) {
	return s.Get(id)
}

func (s *Snapshot) clone() *Snapshot {
	tables := make(map[types.TableId]TableSchema, len(s.tables))
	byName := make(map[string]types.TableId, len(s.byName))
	for id, t := range s.tables {
		tables[id] = t.Clone()
	}
	for name, id := range s.byName {
		byName[name] = id
	}
	return &Snapshot{
		tables:      tables,
		byName:      byName,
		nextTableID: s.nextTableID,
	}
}

func (s *Snapshot) computeChecksum() string {
	// Deterministic over table id order.
	ids := make([]types.TableId, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	sortTableIDs(ids)
	h := sha256.New()
	for _, id := range ids {
		t := s.tables[id]
		var buf offsetWriter
		serializeTableSchema(&buf, t)
		h.Write(buf.bytes)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sortTableIDs(ids []types.TableId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// Catalog is the versioned, durable schema registry. Readers call Snapshot
// to get an immutable view; writers open a single WriteTxn at a time via
// BeginWrite and Commit a new snapshot pointer swap.
type Catalog struct {
	mu       sync.RWMutex
	snap     *Snapshot
	cond     *sync.Cond
	writing  bool
	log      *zap.Logger
}

// New returns an empty catalog.
func New() *Catalog {
	c := &Catalog{snap: emptySnapshot(), log: zap.L().Named("catalog")}
	c.cond = sync.NewCond(&c.mu)
	c.snap.Checksum = c.snap.computeChecksum()
	return c
}

// NewFromSnapshot wraps a previously-loaded Snapshot (e.g. via
// LoadFromPath) as the catalog's initial committed state, for CLI
// invocations that reopen an on-disk catalog file between commands.
func NewFromSnapshot(snap *Snapshot) *Catalog {
	c := &Catalog{snap: snap, log: zap.L().Named("catalog")}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Snapshot returns the current immutable snapshot. Safe for concurrent use.
func (c *Catalog) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// WaitUntilCommitted blocks until a commit lands whose checksum differs
// from prevChecksum, mirroring richcatalog's WaitUntilRefreshed.
func (c *Catalog) WaitUntilCommitted(prevChecksum string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.snap.Checksum == prevChecksum {
		c.cond.Wait()
	}
}

// BeginWrite opens the single writable view, bound to one writer
// transaction at a time. Returns oriorerr.Catalog if a write is already
// in progress.
func (c *Catalog) BeginWrite() (*WriteTxn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writing {
		return nil, oriorerr.WithCode(oriorerr.Catalog, "WriteInProgress",
			"a catalog write transaction is already open")
	}
	c.writing = true
	return &WriteTxn{
		cat:  c,
		snap: c.snap.clone(),
	}, nil
}

// commit atomically swaps in txn's snapshot and wakes waiters.
func (c *Catalog) commit(txn *WriteTxn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	txn.snap.GeneratedAt = time.Now()
	txn.snap.Checksum = txn.snap.computeChecksum()
	c.snap = txn.snap
	c.writing = false
	c.cond.Broadcast()
	c.log.Info("catalog commit", zap.String("checksum", c.snap.Checksum), logutil.Values(
		zap.Int("num_tables", len(c.snap.tables)),
	))
}

// rollback discards txn's writable snapshot without ever publishing it.
func (c *Catalog) rollback(txn *WriteTxn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writing = false
	c.log.Warn("catalog write rolled back")
}

type offsetWriter struct {
	bytes []byte
}

func (w *offsetWriter) Write(p []byte) (int, error) {
	w.bytes = append(w.bytes, p...)
	return len(p), nil
}
