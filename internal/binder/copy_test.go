package binder

import (
	"testing"

	"github.com/oriondb/oriondb/internal/ast"
	"github.com/oriondb/oriondb/internal/catalog"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
)

func TestBindCopyFromNodeTableCSV(t *testing.T) {
	c := newCatalogWithNodeTable(t, "Person", "id", "INT64")
	b := New(c.Snapshot())

	bound, err := b.Bind(&ast.CopyFromStmt{TableName: "Person", Paths: []string{"people.csv"}})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	info := bound.GetCopyFrom().Info
	if info.RelInfo != nil || info.RdfRelInfo != nil {
		t.Fatalf("Node table COPY FROM should have no Rel/Rdf extra info: %+v", info)
	}
}

func TestBindCopyFromRejectsTurtleTargetingNodeTable(t *testing.T) {
	c := newCatalogWithNodeTable(t, "Person", "id", "INT64")
	b := New(c.Snapshot())

	_, err := b.Bind(&ast.CopyFromStmt{TableName: "Person", Paths: []string{"data.ttl"}})
	if !oriorerr.Is(err, oriorerr.NotImplemented) {
		t.Fatalf("err = %v, want NotImplemented (RDF node ingest must go through CREATE RDF GRAPH)", err)
	}
}

func TestBindCopyFromRdfRelTableTurtleOK(t *testing.T) {
	c := catalog.New()
	txn := mustBeginWrite(t, c)
	if _, err := txn.AddRdfGraph("kg"); err != nil {
		t.Fatalf("AddRdfGraph: %v", err)
	}
	txn.Commit()

	b := New(c.Snapshot())
	bound, err := b.Bind(&ast.CopyFromStmt{TableName: "kg_rt", Paths: []string{"triples.ttl"}})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	info := bound.GetCopyFrom().Info
	if info.RdfRelInfo == nil {
		t.Fatalf("expected RdfRelInfo to be set for a Turtle COPY against an RDF rel table")
	}
	if info.RelInfo != nil {
		t.Fatalf("RdfRelInfo and RelInfo should be mutually exclusive: %+v", info)
	}
}

func TestBindCopyFromRdfLiteralTripleTableTurtleOK(t *testing.T) {
	// kg_lt has SrcTable=resource node, DstTable=literal node — src != dst,
	// per spec.md §4.5 ("edges from resource subject to literal object").
	// Binding must still succeed; graph ownership is the membership test,
	// not a src==dst shape check.
	c := catalog.New()
	txn := mustBeginWrite(t, c)
	if _, err := txn.AddRdfGraph("kg"); err != nil {
		t.Fatalf("AddRdfGraph: %v", err)
	}
	txn.Commit()

	b := New(c.Snapshot())
	bound, err := b.Bind(&ast.CopyFromStmt{TableName: "kg_lt", Paths: []string{"triples.ttl"}})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if bound.GetCopyFrom().Info.RdfRelInfo == nil {
		t.Fatalf("expected RdfRelInfo to be set for a Turtle COPY against kg_lt")
	}
}

func TestBindCopyFromRejectsTurtleTargetingNonRdfRelTable(t *testing.T) {
	c := newCatalogWithNodeTable(t, "Person", "id", "INT64")
	txn := mustBeginWrite(t, c)
	personID, _ := c.Snapshot().Lookup("Person")
	props, err := New(c.Snapshot()).bindProperties(nil)
	if err != nil {
		t.Fatalf("bindProperties: %v", err)
	}
	if _, err := txn.AddRelTable("Knows", types.ManyMany, personID, personID, props); err != nil {
		t.Fatalf("AddRelTable: %v", err)
	}
	txn.Commit()

	b := New(c.Snapshot())
	_, err = b.Bind(&ast.CopyFromStmt{TableName: "Knows", Paths: []string{"triples.ttl"}})
	if !oriorerr.IsCode(err, oriorerr.Binder, "BadRef") {
		t.Fatalf("err = %v, want Binder{BadRef}", err)
	}
}

func TestBindCopyFromRejectsMixedFileTypes(t *testing.T) {
	c := newCatalogWithNodeTable(t, "Person", "id", "INT64")
	b := New(c.Snapshot())

	_, err := b.Bind(&ast.CopyFromStmt{TableName: "Person", Paths: []string{"a.csv", "b.parquet"}})
	if !oriorerr.IsCode(err, oriorerr.Binder, "MixedFileTypes") {
		t.Fatalf("err = %v, want Binder{MixedFileTypes}", err)
	}
}

func TestBindCopyFromNpyRequiresByColumn(t *testing.T) {
	c := newCatalogWithNodeTable(t, "Person", "id", "INT64")
	b := New(c.Snapshot())

	_, err := b.Bind(&ast.CopyFromStmt{TableName: "Person", Paths: []string{"ids.npy"}})
	if !oriorerr.IsCode(err, oriorerr.Binder, "NpyRequiresByColumn") {
		t.Fatalf("err = %v, want Binder{NpyRequiresByColumn}", err)
	}
}

func TestBindCopyFromByColumnRejectedForNonNpy(t *testing.T) {
	c := newCatalogWithNodeTable(t, "Person", "id", "INT64")
	b := New(c.Snapshot())

	_, err := b.Bind(&ast.CopyFromStmt{TableName: "Person", Paths: []string{"people.csv"}, ByColumn: true})
	if !oriorerr.IsCode(err, oriorerr.Binder, "ByColumnNotAllowed") {
		t.Fatalf("err = %v, want Binder{ByColumnNotAllowed}", err)
	}
}

func TestBindCopyFromRejectsUnknownTable(t *testing.T) {
	c := catalog.New()
	b := New(c.Snapshot())

	_, err := b.Bind(&ast.CopyFromStmt{TableName: "Ghost", Paths: []string{"x.csv"}})
	if !oriorerr.IsCode(err, oriorerr.Binder, "NotFound") {
		t.Fatalf("err = %v, want Binder{NotFound}", err)
	}
}

func TestBindCopyToRejectsUnsupportedFileType(t *testing.T) {
	c := catalog.New()
	b := New(c.Snapshot())

	_, err := b.Bind(&ast.CopyToStmt{Query: "1", Path: "out.ttl"})
	if !oriorerr.IsCode(err, oriorerr.Binder, "UnsupportedFileType") {
		t.Fatalf("err = %v, want Binder{UnsupportedFileType}", err)
	}
}
