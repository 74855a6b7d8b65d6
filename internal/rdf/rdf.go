// Package rdf implements the RDF graph ↔ 4-table decomposition of
// spec.md §4.5: a Turtle stream of (subject, predicate, object) triples
// mapped onto a resource node table, a literal node table, and two rel
// tables carrying the triples themselves. The ingest state machine below
// follows spec.md's Init → LoadResources → IndexResources → LoadLiterals →
// LoadResourceTriples → LoadLiteralTriples → Done chain, aborting with no
// partial catalog change on any step's failure — the same
// open-file/decode-loop/dispatch shape the teacher's wal.Consumer.OnMessage
// uses for WAL change events, generalized from JSON envelopes to RDF
// triples.
package rdf

import (
	"io"
	"os"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/knakk/rdf"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/storage"
	"github.com/oriondb/oriondb/internal/types"
	"go.uber.org/zap"
)

// Mode names the four reader roles spec.md §4.5 assigns to the Turtle
// decoder; each corresponds to one of the four child tables' ingest pass.
type Mode int

const (
	ModeResource Mode = iota
	ModeLiteral
	ModeResourceTriple
	ModeLiteralTriple
)

// State is the RDF-graph ingest state machine's current step.
type State int

const (
	StateInit State = iota
	StateLoadResources
	StateIndexResources
	StateLoadLiterals
	StateLoadResourceTriples
	StateLoadLiteralTriples
	StateDone
	StateAbort
)

// GraphTables names the four synthesized child tables an RDF graph's COPY
// targets, identified the way catalog.RdfGraphSchema already resolves
// them (spec.md §3.4-7 naming: N_r/N_l/N_rt/N_lt).
type GraphTables struct {
	ResourceNode     types.TableId
	LiteralNode      types.TableId
	ResourceTripleRel types.TableId
	LiteralTripleRel  types.TableId

	// LiteralValuePropertyID is the single non-PK property the literal
	// table carries (iri: RdfVariant; the resource table's PK itself is the
	// iri, so it needs no separate property id). PredicatePropertyID is the
	// triple rel tables' predicate property.
	LiteralValuePropertyID types.PropertyId
	PredicatePropertyID    types.PropertyId
}

// Counts reports the per-table row counts an RDF ingest produced, per
// spec.md §8 ("U unique IRIs, L unique literals, T_r resource-triples,
// T_l literal-triples").
type Counts struct {
	Resources       int
	Literals        int
	ResourceTriples int
	LiteralTriples  int
}

// literalValue is the decoded form of an XSD-typed literal, matching the
// RdfVariant {_type, _value} shape (spec.md §3.1, §4.5).
type literalValue struct {
	typeTag string
	raw     string
}

// Ingest drives one RDF graph's four-pass COPY against the storage
// collaborators; State tracks progress so a failed pass can be reported
// as Abort without partially committing later passes.
type Ingest struct {
	tables GraphTables
	nodes  storage.NodeWriter
	pk     storage.PKIndex
	edges  storage.RelWriter
	log    *zap.Logger

	state State
	seen  *roaring.Bitmap // resource-table offsets already emitted, for the Distinct accounting spec.md §4.3 calls for
}

func New(tables GraphTables, nodes storage.NodeWriter, pk storage.PKIndex, edges storage.RelWriter) *Ingest {
	return &Ingest{
		tables: tables,
		nodes:  nodes,
		pk:     pk,
		edges:  edges,
		log:    zap.L().Named("rdf"),
		state:  StateInit,
		seen:   roaring.New(),
	}
}

// Run executes the full state machine against one Turtle file. On any
// step's failure the Ingest transitions to StateAbort and returns the
// error; no later pass runs.
func (in *Ingest) Run(path string) (Counts, error) {
	triples, err := decodeTurtle(path)
	if err != nil {
		in.state = StateAbort
		return Counts{}, err
	}

	in.state = StateLoadResources
	resourceIRIs := collectResourceIRIs(triples)

	in.state = StateIndexResources
	var counts Counts
	for _, iri := range resourceIRIs {
		if _, dup := in.pk.Lookup(in.tables.ResourceNode, iri); dup {
			continue
		}
		offset, err := in.nodes.AppendRow(in.tables.ResourceNode, nil)
		if err != nil {
			in.state = StateAbort
			return counts, oriorerr.Wrap(oriorerr.IO, "appending resource node row", err)
		}
		if err := in.pk.Insert(in.tables.ResourceNode, iri, offset); err != nil {
			in.state = StateAbort
			return counts, err
		}
		in.seen.Add(uint32(offset))
		counts.Resources++
	}

	in.state = StateLoadLiterals
	literals := collectLiterals(triples)
	litOffsets := make(map[literalValue]types.Offset, len(literals))
	for _, lit := range literals {
		if _, dup := in.pk.Lookup(in.tables.LiteralNode, lit); dup {
			continue
		}
		props := map[types.PropertyId]any{
			in.tables.LiteralValuePropertyID: lit,
		}
		offset, err := in.nodes.AppendRow(in.tables.LiteralNode, props)
		if err != nil {
			in.state = StateAbort
			return counts, oriorerr.Wrap(oriorerr.IO, "appending literal node row", err)
		}
		if err := in.pk.Insert(in.tables.LiteralNode, lit, offset); err != nil {
			in.state = StateAbort
			return counts, err
		}
		litOffsets[lit] = offset
		counts.Literals++
	}

	in.state = StateLoadResourceTriples
	var edgeID uint64
	for _, t := range triples {
		if _, isLiteral := t.Obj.(rdf.Literal); isLiteral {
			continue
		}
		subjOff, ok1 := in.pk.Lookup(in.tables.ResourceNode, t.Subj.String())
		predOff, ok2 := in.pk.Lookup(in.tables.ResourceNode, t.Pred.String())
		objOff, ok3 := in.pk.Lookup(in.tables.ResourceNode, t.Obj.String())
		if !ok1 || !ok2 || !ok3 {
			in.state = StateAbort
			return counts, oriorerr.WithCode(oriorerr.KeyNotFound, "RdfResourceNotIndexed", "resource triple referenced an IRI missing from the resource index")
		}
		props := map[types.PropertyId]any{in.tables.PredicatePropertyID: predOff}
		if err := in.edges.AppendEdge(in.tables.ResourceTripleRel, types.Offset(edgeID), subjOff, objOff, props); err != nil {
			in.state = StateAbort
			return counts, oriorerr.Wrap(oriorerr.IO, "appending resource triple", err)
		}
		edgeID++
		counts.ResourceTriples++
	}

	in.state = StateLoadLiteralTriples
	edgeID = 0
	for _, t := range triples {
		lit, isLiteral := t.Obj.(rdf.Literal)
		if !isLiteral {
			continue
		}
		subjOff, ok1 := in.pk.Lookup(in.tables.ResourceNode, t.Subj.String())
		predOff, ok2 := in.pk.Lookup(in.tables.ResourceNode, t.Pred.String())
		if !ok1 || !ok2 {
			in.state = StateAbort
			return counts, oriorerr.WithCode(oriorerr.KeyNotFound, "RdfResourceNotIndexed", "literal triple referenced a subject/predicate IRI missing from the resource index")
		}
		litID, ok := litOffsets[literalFromTerm(lit)]
		if !ok {
			in.state = StateAbort
			return counts, oriorerr.WithCode(oriorerr.KeyNotFound, "RdfLiteralNotIndexed", "literal triple referenced a literal missing from the literal index")
		}
		props := map[types.PropertyId]any{in.tables.PredicatePropertyID: predOff}
		if err := in.edges.AppendEdge(in.tables.LiteralTripleRel, types.Offset(edgeID), subjOff, litID, props); err != nil {
			in.state = StateAbort
			return counts, oriorerr.Wrap(oriorerr.IO, "appending literal triple", err)
		}
		edgeID++
		counts.LiteralTriples++
	}

	in.state = StateDone
	in.log.Debug("rdf ingest complete",
		zap.Int("resources", counts.Resources),
		zap.Int("literals", counts.Literals),
		zap.Int("resource_triples", counts.ResourceTriples),
		zap.Int("literal_triples", counts.LiteralTriples),
	)
	return counts, nil
}

func decodeTurtle(path string) ([]rdf.Triple, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, oriorerr.Wrap(oriorerr.IO, "opening turtle file "+path, err)
	}
	defer f.Close()

	dec := rdf.NewTripleDecoder(f, rdf.Turtle)
	var out []rdf.Triple
	for {
		t, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, oriorerr.Wrap(oriorerr.ParseData, "decoding turtle triple", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// collectResourceIRIs returns, in first-seen order, every distinct IRI
// appearing as subject, predicate, or as a resource object — the resource
// node table's row set (spec.md §4.5).
func collectResourceIRIs(triples []rdf.Triple) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, t := range triples {
		add(t.Subj.String())
		add(t.Pred.String())
		if _, isLiteral := t.Obj.(rdf.Literal); !isLiteral {
			add(t.Obj.String())
		}
	}
	return out
}

// collectLiterals returns, in first-seen order, every distinct typed
// literal value appearing as a triple object.
func collectLiterals(triples []rdf.Triple) []literalValue {
	seen := make(map[literalValue]struct{})
	var out []literalValue
	for _, t := range triples {
		lit, isLiteral := t.Obj.(rdf.Literal)
		if !isLiteral {
			continue
		}
		lv := literalFromTerm(lit)
		if _, ok := seen[lv]; ok {
			continue
		}
		seen[lv] = struct{}{}
		out = append(out, lv)
	}
	return out
}

func literalFromTerm(lit rdf.Literal) literalValue {
	return literalValue{typeTag: xsdTypeTag(lit.DataType.String()), raw: lit.String()}
}

// xsdTypeTag maps an XSD datatype IRI to the RdfVariant's _type
// discriminator (spec.md §4.5: integer, double, decimal, boolean, date,
// dateTime, nonNegativeInteger, positiveInteger, float, or untyped).
func xsdTypeTag(datatypeIRI string) string {
	switch datatypeIRI {
	case "http://www.w3.org/2001/XMLSchema#integer":
		return "integer"
	case "http://www.w3.org/2001/XMLSchema#double":
		return "double"
	case "http://www.w3.org/2001/XMLSchema#decimal":
		return "decimal"
	case "http://www.w3.org/2001/XMLSchema#boolean":
		return "boolean"
	case "http://www.w3.org/2001/XMLSchema#date":
		return "date"
	case "http://www.w3.org/2001/XMLSchema#dateTime":
		return "dateTime"
	case "http://www.w3.org/2001/XMLSchema#nonNegativeInteger":
		return "nonNegativeInteger"
	case "http://www.w3.org/2001/XMLSchema#positiveInteger":
		return "positiveInteger"
	case "http://www.w3.org/2001/XMLSchema#float":
		return "float"
	default:
		return "untyped"
	}
}
