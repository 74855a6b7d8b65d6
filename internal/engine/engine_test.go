package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oriondb/oriondb/internal/ast"
	"github.com/oriondb/oriondb/internal/binder"
	"github.com/oriondb/oriondb/internal/catalog"
	"github.com/oriondb/oriondb/internal/reactive"
	"github.com/oriondb/oriondb/internal/storage"
)

func newTestEngine() (*Engine, *catalog.Catalog) {
	cat := catalog.New()
	store := storage.NewMemStore()
	reg := reactive.NewRegistry()
	deps := reactive.Deps{Broadcast: func(*reactive.Job, string, any) {}}
	return New(cat, store, reg, deps), cat
}

func bindOrFatal(t *testing.T, cat *catalog.Catalog, stmt ast.Stmt) binder.BoundStatement {
	t.Helper()
	bound, err := binder.New(cat.Snapshot()).Bind(stmt)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	return bound
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestExecuteDDLCreatesNodeTable(t *testing.T) {
	eng, cat := newTestEngine()
	bound := bindOrFatal(t, cat, &ast.CreateNodeTableStmt{
		TableName: "Person",
		Properties: []ast.PropertyDef{
			{Name: "id", TypeName: "INT64"},
			{Name: "name", TypeName: "STRING"},
		},
		PrimaryKey: "id",
	})

	id, err := eng.ExecuteDDL(bound)
	if err != nil {
		t.Fatalf("ExecuteDDL: %v", err)
	}
	schema, ok := cat.Snapshot().Get(id)
	if !ok || schema.Name() != "Person" {
		t.Fatalf("Person table not committed: schema=%v ok=%v", schema, ok)
	}
}

func TestExecuteDDLCreatesRelTableReferencingNodes(t *testing.T) {
	eng, cat := newTestEngine()
	if _, err := eng.ExecuteDDL(bindOrFatal(t, cat, &ast.CreateNodeTableStmt{
		TableName:  "Person",
		Properties: []ast.PropertyDef{{Name: "id", TypeName: "INT64"}},
		PrimaryKey: "id",
	})); err != nil {
		t.Fatalf("create Person: %v", err)
	}

	relID, err := eng.ExecuteDDL(bindOrFatal(t, cat, &ast.CreateRelTableStmt{
		TableName:    "Knows",
		SrcTableName: "Person",
		DstTableName: "Person",
		Multiplicity: "MANY_MANY",
	}))
	if err != nil {
		t.Fatalf("ExecuteDDL(Knows): %v", err)
	}
	schema, ok := cat.Snapshot().Get(relID)
	if !ok || schema.GetRel() == nil {
		t.Fatalf("Knows rel table not committed")
	}
}

func TestExecuteDDLRollsBackOnFailure(t *testing.T) {
	eng, cat := newTestEngine()
	// Bind succeeds against the empty snapshot, but by the time ExecuteDDL
	// runs a concurrent writer could already hold BeginWrite; simulate that
	// by holding a write txn open across the call.
	txn, err := cat.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	defer txn.Rollback()

	bound := bindOrFatal(t, cat, &ast.CreateNodeTableStmt{
		TableName:  "Person",
		Properties: []ast.PropertyDef{{Name: "id", TypeName: "INT64"}},
		PrimaryKey: "id",
	})
	if _, err := eng.ExecuteDDL(bound); err == nil {
		t.Fatalf("expected ExecuteDDL to fail while another write txn is open")
	}
	if _, ok := cat.Snapshot().Lookup("Person"); ok {
		t.Fatalf("Person should not be visible after a failed ExecuteDDL")
	}
}

func TestExecuteCopyFromNodeTableRegistersJob(t *testing.T) {
	eng, cat := newTestEngine()
	if _, err := eng.ExecuteDDL(bindOrFatal(t, cat, &ast.CreateNodeTableStmt{
		TableName: "Person",
		Properties: []ast.PropertyDef{
			{Name: "id", TypeName: "INT64"},
			{Name: "name", TypeName: "STRING"},
		},
		PrimaryKey: "id",
	})); err != nil {
		t.Fatalf("create Person: %v", err)
	}

	path := writeFile(t, "people.csv", "id,name\n1,Alice\n2,Bob\n")
	bound := bindOrFatal(t, cat, &ast.CopyFromStmt{TableName: "Person", Paths: []string{path}, Options: map[string]string{"header": "true"}})

	job, err := eng.ExecuteCopyFrom(bound.GetCopyFrom().Info)
	if err != nil {
		t.Fatalf("ExecuteCopyFrom: %v", err)
	}
	if job.RowsWritten != 2 || !job.Done {
		t.Fatalf("job = %+v, want RowsWritten=2 Done=true", job)
	}
	if _, ok := eng.Registry.Get(job.ID); !ok {
		t.Fatalf("job %s not registered", job.ID)
	}
}

func TestExecuteCopyFromRelTableFailsOnUnresolvedKey(t *testing.T) {
	eng, cat := newTestEngine()
	mustCreate := func(stmt ast.Stmt) {
		if _, err := eng.ExecuteDDL(bindOrFatal(t, cat, stmt)); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	mustCreate(&ast.CreateNodeTableStmt{TableName: "Person", Properties: []ast.PropertyDef{{Name: "id", TypeName: "INT64"}}, PrimaryKey: "id"})
	mustCreate(&ast.CreateRelTableStmt{TableName: "Knows", SrcTableName: "Person", DstTableName: "Person", Multiplicity: "MANY_MANY"})

	path := writeFile(t, "knows.csv", "_FROM,_TO\n1,2\n")
	bound := bindOrFatal(t, cat, &ast.CopyFromStmt{TableName: "Knows", Paths: []string{path}})

	job, err := eng.ExecuteCopyFrom(bound.GetCopyFrom().Info)
	if err == nil {
		t.Fatalf("expected unresolved-key error, got job %+v", job)
	}
	if job == nil || job.Err == "" {
		t.Fatalf("expected job to record the failure, got %+v", job)
	}
}

func TestExecuteCopyFromRdfTurtleDecomposesAllFourTables(t *testing.T) {
	eng, cat := newTestEngine()
	if _, err := eng.ExecuteDDL(bindOrFatal(t, cat, &ast.CreateRdfGraphStmt{GraphName: "kg"})); err != nil {
		t.Fatalf("create rdf graph: %v", err)
	}

	ttl := writeFile(t, "triples.ttl", `
@prefix ex: <http://example.org/> .
ex:alice ex:knows ex:bob .
ex:alice ex:age "30"^^<http://www.w3.org/2001/XMLSchema#integer> .
`)

	bound := bindOrFatal(t, cat, &ast.CopyFromStmt{TableName: "kg_rt", Paths: []string{ttl}})
	job, err := eng.ExecuteCopyFrom(bound.GetCopyFrom().Info)
	if err != nil {
		t.Fatalf("ExecuteCopyFrom: %v", err)
	}
	if !job.Done || job.Kind != "rdf_graph" {
		t.Fatalf("job = %+v, want Done=true Kind=rdf_graph", job)
	}

	snap := cat.Snapshot()
	graphID, _ := snap.Lookup("kg")
	graph := snap.MustGet(graphID).GetRdf()
	// Resource nodes are every distinct subject/predicate/non-literal-object
	// IRI: alice, bob, ex:knows, and ex:age (spec.md §4.5 indexes predicates
	// as resources too, since a later triple's predicate might also be used
	// as some other triple's subject or object).
	if n := eng.Store.RowCount(graph.ResourceNode()); n != 4 {
		t.Fatalf("resource node rows = %d, want 4", n)
	}
	if n := eng.Store.RowCount(graph.LiteralNode()); n != 1 {
		t.Fatalf("literal node rows = %d, want 1", n)
	}
	if n := eng.Store.EdgeCount(graph.ResourceTripleRel()); n != 1 {
		t.Fatalf("resource triple edges = %d, want 1", n)
	}
	if n := eng.Store.EdgeCount(graph.LiteralTripleRel()); n != 1 {
		t.Fatalf("literal triple edges = %d, want 1", n)
	}
}

func TestExecuteCopyToRejectsEmptyProjection(t *testing.T) {
	eng, cat := newTestEngine()
	if _, err := eng.ExecuteDDL(bindOrFatal(t, cat, &ast.CreateNodeTableStmt{
		TableName:  "Person",
		Properties: []ast.PropertyDef{{Name: "id", TypeName: "INT64"}},
		PrimaryKey: "id",
	})); err != nil {
		t.Fatalf("create Person: %v", err)
	}

	_, err := binder.New(cat.Snapshot()).Bind(&ast.CopyToStmt{Query: "", Path: "out.csv"})
	if err == nil {
		t.Fatalf("expected bind to reject an empty COPY TO projection")
	}
}
