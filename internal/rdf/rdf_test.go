package rdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oriondb/oriondb/internal/storage"
	"github.com/oriondb/oriondb/internal/types"
)

func writeTurtle(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.ttl")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func newTestTables() (GraphTables, *storage.MemStore) {
	store := storage.NewMemStore()
	tables := GraphTables{
		ResourceNode:           1,
		LiteralNode:            2,
		ResourceTripleRel:      3,
		LiteralTripleRel:       4,
		LiteralValuePropertyID: 10,
		PredicatePropertyID:    11,
	}
	return tables, store
}

func TestRunDecomposesResourceAndLiteralTriples(t *testing.T) {
	path := writeTurtle(t, `
@prefix ex: <http://example.org/> .
ex:alice ex:knows ex:bob .
ex:alice ex:name "Alice" .
`)
	tables, store := newTestTables()
	ing := New(tables, store, store, store)

	counts, err := ing.Run(path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if counts.Resources != 4 {
		t.Fatalf("Resources = %d, want 4 (alice, knows, bob, name)", counts.Resources)
	}
	if counts.Literals != 1 {
		t.Fatalf("Literals = %d, want 1", counts.Literals)
	}
	if counts.ResourceTriples != 1 {
		t.Fatalf("ResourceTriples = %d, want 1", counts.ResourceTriples)
	}
	if counts.LiteralTriples != 1 {
		t.Fatalf("LiteralTriples = %d, want 1", counts.LiteralTriples)
	}
	if ing.state != StateDone {
		t.Fatalf("state = %v, want StateDone", ing.state)
	}
	if store.RowCount(tables.ResourceNode) != types.Offset(counts.Resources) {
		t.Fatalf("resource node row count mismatch")
	}
	if store.RowCount(tables.LiteralNode) != types.Offset(counts.Literals) {
		t.Fatalf("literal node row count mismatch")
	}
	if store.EdgeCount(tables.ResourceTripleRel) != types.Offset(counts.ResourceTriples) {
		t.Fatalf("resource triple edge count mismatch")
	}
	if store.EdgeCount(tables.LiteralTripleRel) != types.Offset(counts.LiteralTriples) {
		t.Fatalf("literal triple edge count mismatch")
	}
}

func TestRunDedupesRepeatedIRIsAndLiterals(t *testing.T) {
	path := writeTurtle(t, `
@prefix ex: <http://example.org/> .
ex:alice ex:knows ex:bob .
ex:alice ex:knows ex:carol .
ex:bob ex:knows ex:alice .
ex:alice ex:age "30" .
ex:bob ex:age "30" .
`)
	tables, _ := newTestTables()
	store := storage.NewMemStore()
	ing := New(tables, store, store, store)

	counts, err := ing.Run(path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// resources: alice, knows, bob, carol, age = 5 distinct IRIs
	if counts.Resources != 5 {
		t.Fatalf("Resources = %d, want 5", counts.Resources)
	}
	// literal "30" appears twice but is a single distinct literal value
	if counts.Literals != 1 {
		t.Fatalf("Literals = %d, want 1 (repeated literal value must dedup)", counts.Literals)
	}
	if counts.ResourceTriples != 3 {
		t.Fatalf("ResourceTriples = %d, want 3", counts.ResourceTriples)
	}
	if counts.LiteralTriples != 2 {
		t.Fatalf("LiteralTriples = %d, want 2", counts.LiteralTriples)
	}
}

func TestXsdTypeTagMapsKnownDatatypes(t *testing.T) {
	cases := map[string]string{
		"http://www.w3.org/2001/XMLSchema#integer": "integer",
		"http://www.w3.org/2001/XMLSchema#boolean": "boolean",
		"http://example.org/unknown":                "untyped",
	}
	for iri, want := range cases {
		if got := xsdTypeTag(iri); got != want {
			t.Fatalf("xsdTypeTag(%s) = %s, want %s", iri, got, want)
		}
	}
}
