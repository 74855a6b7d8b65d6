// Package planner turns a bound COPY statement into the logical operator
// DAG spec.md §4.3 describes. It only builds the plan shape; actually
// driving it (pulling chunks, invoking the reader/partitioner/writer) is
// internal/copypipeline's job — the dependency-ordered pipeline spec.md §2
// draws between Planner (15%) and CopyFromPipeline (20%). This mirrors how
// pg_lineage/rewrite_pks.go only rewrites a query tree and leaves actually
// running it to the caller's *sql.DB.
package planner

import (
	"github.com/oriondb/oriondb/internal/binder"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
)

// OpKind discriminates the logical operator DAG's node kinds.
type OpKind int

const (
	OpScanSource OpKind = iota
	OpProjection
	OpDistinct
	OpAccumulate
	OpIndexLookup
	OpPartitioner
	OpCopyFromNodeWriter
	OpCopyFromRelWriter
)

func (k OpKind) String() string {
	switch k {
	case OpScanSource:
		return "ScanSource"
	case OpProjection:
		return "Projection"
	case OpDistinct:
		return "Distinct"
	case OpAccumulate:
		return "Accumulate"
	case OpIndexLookup:
		return "IndexLookup"
	case OpPartitioner:
		return "Partitioner"
	case OpCopyFromNodeWriter:
		return "CopyFrom(NodeWriter)"
	case OpCopyFromRelWriter:
		return "CopyFrom(RelWriter)"
	default:
		return "Unknown"
	}
}

// Op is one node of the logical plan DAG. Only the fields relevant to its
// Kind are populated; this mirrors the catalog's tagged-variant-over-one-
// struct style rather than an interface hierarchy, since the DAG shapes
// are few and fixed.
type Op struct {
	Kind  OpKind
	Child *Op

	// OpScanSource
	FileScan *binder.BoundFileScanInfo

	// OpIndexLookup / OpPartitioner / OpCopyFromRelWriter
	RelInfo    *binder.ExtraBoundCopyRelInfo
	RdfRelInfo *binder.ExtraBoundCopyRdfRelInfo

	// OpCopyFromNodeWriter / OpCopyFromRelWriter
	TargetTable types.TableId
}

// PlanCopyFrom builds the logical plan for a bound COPY FROM, dispatching
// on whether the target is a Node or Rel table per spec.md §4.3.
func PlanCopyFrom(info binder.BoundCopyFromInfo) (*Op, error) {
	switch {
	case info.RelInfo != nil || info.RdfRelInfo != nil:
		return planRelCopy(info), nil
	default:
		return planNodeCopy(info), nil
	}
}

// planNodeCopy builds ScanSource → Projection → CopyFrom(NodeWriter), or,
// for RDF resource-node ingest, ScanSource → Distinct → CopyFrom(NodeWriter)
// — Distinct is essential there since a Turtle file mentions the same IRI
// many times (spec.md §4.3).
func planNodeCopy(info binder.BoundCopyFromInfo) *Op {
	scan := &Op{Kind: OpScanSource, FileScan: &info.FileScan}
	if info.FileScan.FileType == binder.FileTypeTurtle {
		distinct := &Op{Kind: OpDistinct, Child: scan}
		return &Op{Kind: OpCopyFromNodeWriter, Child: distinct, TargetTable: info.TableID}
	}
	proj := &Op{Kind: OpProjection, Child: scan}
	return &Op{Kind: OpCopyFromNodeWriter, Child: proj, TargetTable: info.TableID}
}

// planRelCopy builds ScanSource → IndexLookup → Partitioner →
// CopyFrom(RelWriter) (spec.md §4.3). The RDF-rel case reuses the same
// shape; IndexLookup resolves IRIs against the resource node's PK index
// instead of a declared property.
func planRelCopy(info binder.BoundCopyFromInfo) *Op {
	scan := &Op{Kind: OpScanSource, FileScan: &info.FileScan}
	lookup := &Op{Kind: OpIndexLookup, Child: scan, RelInfo: info.RelInfo, RdfRelInfo: info.RdfRelInfo}
	part := &Op{Kind: OpPartitioner, Child: lookup, RelInfo: info.RelInfo, RdfRelInfo: info.RdfRelInfo}
	return &Op{Kind: OpCopyFromRelWriter, Child: part, TargetTable: info.TableID, RelInfo: info.RelInfo, RdfRelInfo: info.RdfRelInfo}
}

// Walk visits every Op in the DAG from root to leaf, the reverse of
// execution order (child before parent is the caller's concern — Walk just exposes the
// chain so callers like copypipeline can dispatch kind by kind).
func Walk(root *Op, visit func(*Op) error) error {
	for op := root; op != nil; op = op.Child {
		if err := visit(op); err != nil {
			return err
		}
	}
	return nil
}

// PlanCopyTo validates a bound COPY TO has a usable projection; the actual
// sub-query plan is out of scope (Executor territory per spec.md §1), so
// this only checks the shape the bound statement already guarantees.
func PlanCopyTo(info binder.BoundCopyToInfo) error {
	if len(info.Projection) == 0 {
		return oriorerr.WithCode(oriorerr.Binder, "EmptyProjection", "COPY TO has no projected columns")
	}
	return nil
}
