package catalog

import (
	"testing"

	"github.com/oriondb/oriondb/internal/types"
)

func mustBeginWrite(t *testing.T, c *Catalog) *WriteTxn {
	t.Helper()
	txn, err := c.BeginWrite()
	if err != nil {
		t.Fatalf("BeginWrite: %v", err)
	}
	return txn
}

func TestAddNodeTableThenLookup(t *testing.T) {
	c := New()
	txn := mustBeginWrite(t, c)
	id, err := txn.AddNodeTable("Person", []types.Property{
		{Name: "id", DType: types.Int64()},
		{Name: "name", DType: types.String()},
	}, 0)
	if err != nil {
		t.Fatalf("AddNodeTable: %v", err)
	}
	txn.Commit()

	snap := c.Snapshot()
	gotID, ok := snap.Lookup("Person")
	if !ok || gotID != id {
		t.Fatalf("Lookup(Person) = (%v, %v), want (%v, true)", gotID, ok, id)
	}
	schema, ok := snap.Get(gotID)
	if !ok || schema.Name() != "Person" {
		t.Fatalf("Get(%v) = (%v, %v)", gotID, schema, ok)
	}
}

func TestAlterRenameTable(t *testing.T) {
	c := New()
	txn := mustBeginWrite(t, c)
	id, _ := txn.AddNodeTable("Person", []types.Property{
		{Name: "id", DType: types.Int64()},
	}, 0)
	txn.Commit()

	txn2 := mustBeginWrite(t, c)
	if err := txn2.Alter(id, AlterOp{Kind: AlterRename, NewTableName: "Human"}); err != nil {
		t.Fatalf("Alter rename: %v", err)
	}
	txn2.Commit()

	snap := c.Snapshot()
	if _, ok := snap.Lookup("Person"); ok {
		t.Fatalf("old name Person still resolves")
	}
	gotID, ok := snap.Lookup("Human")
	if !ok || gotID != id {
		t.Fatalf("Lookup(Human) = (%v, %v), want (%v, true)", gotID, ok, id)
	}
}

func TestNodePrimaryKeyInvariant(t *testing.T) {
	c := New()
	txn := mustBeginWrite(t, c)
	_, err := txn.AddNodeTable("Bad", []types.Property{
		{Name: "x", DType: types.Double()},
	}, 0)
	if err == nil {
		t.Fatalf("expected InvalidPk error for DOUBLE primary key")
	}
	txn.Rollback()

	snap := c.Snapshot()
	if _, ok := snap.Lookup("Bad"); ok {
		t.Fatalf("failed CREATE must not leave a lookup entry")
	}
}

func TestRelTableHasBuiltinIDProperty(t *testing.T) {
	c := New()
	txn := mustBeginWrite(t, c)
	personID, _ := txn.AddNodeTable("Person", []types.Property{
		{Name: "id", DType: types.Int64()},
	}, 0)
	relID, err := txn.AddRelTable("Knows", types.ManyMany, personID, personID, []types.Property{
		{Name: "since", DType: types.Int64()},
	})
	if err != nil {
		t.Fatalf("AddRelTable: %v", err)
	}
	txn.Commit()

	snap := c.Snapshot()
	rel, _ := snap.Get(relID)
	props := rel.Properties()
	if len(props) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(props))
	}
	if props[0].Name != "ID" || props[0].Id != types.InternalRelIDPropertyID || props[0].DType.Kind != types.KindInternalId {
		t.Fatalf("property 0 must be ID: InternalId, got %+v", props[0])
	}
}

func TestRelTableForbidsSerialAndStruct(t *testing.T) {
	c := New()
	txn := mustBeginWrite(t, c)
	personID, _ := txn.AddNodeTable("Person", []types.Property{
		{Name: "id", DType: types.Int64()},
	}, 0)
	_, err := txn.AddRelTable("Bad", types.ManyMany, personID, personID, []types.Property{
		{Name: "x", DType: types.Serial()},
	})
	if err == nil {
		t.Fatalf("expected ForbiddenType error for Serial rel property")
	}
}

func TestDropTableReferencedByRel(t *testing.T) {
	c := New()
	txn := mustBeginWrite(t, c)
	personID, _ := txn.AddNodeTable("Person", []types.Property{
		{Name: "id", DType: types.Int64()},
	}, 0)
	_, err := txn.AddRelTable("Knows", types.ManyMany, personID, personID, nil)
	if err != nil {
		t.Fatalf("AddRelTable: %v", err)
	}
	txn.Commit()

	txn2 := mustBeginWrite(t, c)
	if err := txn2.DropTable(personID); err == nil {
		t.Fatalf("expected Referenced error dropping a Node table with live Rel references")
	}
}

func TestRdfGraphShape(t *testing.T) {
	c := New()
	txn := mustBeginWrite(t, c)
	_, err := txn.AddRdfGraph("G")
	if err != nil {
		t.Fatalf("AddRdfGraph: %v", err)
	}
	txn.Commit()

	snap := c.Snapshot()
	for _, name := range []string{"G_r", "G_l", "G_rt", "G_lt"} {
		if _, ok := snap.Lookup(name); !ok {
			t.Fatalf("missing child table %s", name)
		}
	}
	rID, _ := snap.Lookup("G_r")
	rtID, _ := snap.Lookup("G_rt")
	ltID, _ := snap.Lookup("G_lt")
	rt, _ := snap.Get(rtID)
	if rt.GetRel().SrcTable() != rID || rt.GetRel().DstTable() != rID {
		t.Fatalf("resource-triple table must have src==dst==resource node table")
	}
	lt, _ := snap.Get(ltID)
	if lt.GetRel().SrcTable() != rID {
		t.Fatalf("literal-triple table must have src==resource node table")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	c := New()
	txn := mustBeginWrite(t, c)
	personID, _ := txn.AddNodeTable("Person", []types.Property{
		{Name: "id", DType: types.Int64()},
		{Name: "name", DType: types.String()},
	}, 0)
	_, err := txn.AddRelTable("Knows", types.ManyMany, personID, personID, []types.Property{
		{Name: "since", DType: types.Int64()},
	})
	if err != nil {
		t.Fatalf("AddRelTable: %v", err)
	}
	_, err = txn.AddRdfGraph("G")
	if err != nil {
		t.Fatalf("AddRdfGraph: %v", err)
	}
	txn.Commit()

	snap := c.Snapshot()
	rt, err := snap.RoundTrip()
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if len(rt.tables) != len(snap.tables) {
		t.Fatalf("table count mismatch after round trip: got %d want %d", len(rt.tables), len(snap.tables))
	}
	for name := range snap.byName {
		if _, ok := rt.Lookup(name); !ok {
			t.Fatalf("round-tripped catalog lost table %s", name)
		}
	}
}

func TestConcurrentWriteRejected(t *testing.T) {
	c := New()
	txn1, err := c.BeginWrite()
	if err != nil {
		t.Fatalf("first BeginWrite: %v", err)
	}
	defer txn1.Rollback()

	if _, err := c.BeginWrite(); err == nil {
		t.Fatalf("expected second concurrent BeginWrite to fail")
	}
}
