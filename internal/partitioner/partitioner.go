// Package partitioner implements the per-direction x per-bound-node-table
// bucketization of resolved edge tuples described in spec.md §4.4, so the
// storage layer can commit each node table's adjacency as one contiguous
// range. It is grounded on the same "classify, accumulate, flush on
// threshold" shape as the teacher's wal.Consumer's Registry.ForEach fanout,
// generalized from WAL change-events to edge tuples.
package partitioner

import (
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
	"go.uber.org/zap"
)

// Direction distinguishes the FWD stream (keyed by the edge's source node
// table) from the BWD stream (keyed by its destination node table).
type Direction int

const (
	FWD Direction = iota
	BWD
)

func (d Direction) String() string {
	if d == FWD {
		return "FWD"
	}
	return "BWD"
}

// DefaultFlushThreshold is the implementation-defined "one storage page's
// worth" flush size spec.md §4.4 leaves open.
const DefaultFlushThreshold = 2048

// EdgeTuple is one resolved edge: offsets already looked up against the PK
// index, tagged with the node table each offset belongs to. For a plain
// (non-grouped) Rel table SrcTable/DstTable are constants equal to the
// table's own src/dst; for a Rel group's underlying stream they vary
// row-by-row, which is what makes the partitioner's keying "real" per
// spec.md §4.4.
type EdgeTuple struct {
	SrcTable, DstTable   types.TableId
	SrcOffset, DstOffset types.Offset
	Props                map[types.PropertyId]any
}

// Row is one bucketed output row, ready for the RelWriter.
type Row struct {
	EdgeID               types.Offset
	SrcOffset, DstOffset types.Offset
	Props                map[types.PropertyId]any
}

// Bucket accumulates rows for one (direction, node table) key until it is
// sealed and flushed. Seen tracks, as a roaring bitmap, which node offsets
// (the end bound by this bucket's direction) have landed here so far — the
// Partitioner's "which offsets landed in this bucket" accounting from
// SPEC_FULL's domain-stack wiring.
type Bucket struct {
	Direction Direction
	NodeTable types.TableId
	Rows      []Row
	Seen      *roaring.Bitmap
}

type bucketKey struct {
	dir   Direction
	table types.TableId
}

// FlushFunc commits one sealed bucket to the RelWriter; called both when a
// bucket crosses the flush threshold mid-stream and at Close for every
// bucket still open.
type FlushFunc func(b *Bucket) error

// Partitioner buckets one Rel table's (or Rel group's) edge stream. It
// owns the table's monotonic edge-id counter so FWD and BWD rows for the
// same input edge always share an id, per spec.md §4.4.
type Partitioner struct {
	relTable  types.TableId
	threshold int
	flush     FlushFunc
	log       *zap.Logger

	mu        sync.Mutex
	buckets   map[bucketKey]*Bucket
	nextEdgeID uint64
}

func New(relTable types.TableId, threshold int, flush FlushFunc) *Partitioner {
	if threshold <= 0 {
		threshold = DefaultFlushThreshold
	}
	return &Partitioner{
		relTable:  relTable,
		threshold: threshold,
		flush:     flush,
		log:       zap.L().Named("partitioner"),
		buckets:   make(map[bucketKey]*Bucket),
	}
}

// Add classifies one resolved edge into its FWD and BWD buckets, assigning
// it a fresh monotonic edge id. Within a bucket, input order is preserved;
// across buckets no ordering is guaranteed (spec.md §4.4).
func (p *Partitioner) Add(t EdgeTuple) error {
	edgeID := types.Offset(atomic.AddUint64(&p.nextEdgeID, 1) - 1)
	row := Row{EdgeID: edgeID, SrcOffset: t.SrcOffset, DstOffset: t.DstOffset, Props: t.Props}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.appendLocked(bucketKey{FWD, t.SrcTable}, row, t.SrcOffset); err != nil {
		return err
	}
	if err := p.appendLocked(bucketKey{BWD, t.DstTable}, row, t.DstOffset); err != nil {
		return err
	}
	return nil
}

func (p *Partitioner) appendLocked(key bucketKey, row Row, seenOffset types.Offset) error {
	b, ok := p.buckets[key]
	if !ok {
		b = &Bucket{Direction: key.dir, NodeTable: key.table, Seen: roaring.New()}
		p.buckets[key] = b
	}
	b.Rows = append(b.Rows, row)
	b.Seen.Add(uint32(seenOffset))

	if len(b.Rows) >= p.threshold {
		if err := p.flush(b); err != nil {
			return oriorerr.Wrap(oriorerr.IO, "flushing partitioner bucket", err)
		}
		delete(p.buckets, key)
	}
	return nil
}

// Close flushes every bucket still holding rows. Called once at stream
// end; safe to call even if Add was never called.
func (p *Partitioner) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, b := range p.buckets {
		if len(b.Rows) == 0 {
			continue
		}
		if err := p.flush(b); err != nil {
			return oriorerr.Wrap(oriorerr.IO, "final flush of partitioner bucket", err)
		}
		delete(p.buckets, key)
	}
	p.log.Debug("partitioner closed", zap.Uint64("edges", atomic.LoadUint64(&p.nextEdgeID)))
	return nil
}
