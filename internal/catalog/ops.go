package catalog

import (
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
)

// WriteTxn is the writable view keyed by a single writer transaction. All
// mutations happen against a private copy-on-write clone of the snapshot;
// nothing is visible to readers until Commit.
type WriteTxn struct {
	cat  *Catalog
	snap *Snapshot
	done bool
}

func (w *WriteTxn) nextTableID() types.TableId {
	id := w.snap.nextTableID
	w.snap.nextTableID++
	return id
}

func (w *WriteTxn) checkNameAvailable(name string) error {
	if _, exists := w.snap.byName[name]; exists {
		return oriorerr.WithCode(oriorerr.Binder, "Duplicate", "table "+name+" already exists")
	}
	return nil
}

func (w *WriteTxn) register(t TableSchema) {
	w.snap.tables[t.TableID()] = t
	w.snap.byName[t.Name()] = t.TableID()
}

// AddNodeTable implements add_node_table(name, pk_idx, props).
func (w *WriteTxn) AddNodeTable(name string, properties []types.Property, primaryKeyIdx int) (types.TableId, error) {
	if err := w.checkNameAvailable(name); err != nil {
		return types.InvalidTableId, err
	}
	for _, p := range properties {
		if types.IsReservedPropertyName(p.Name) {
			return types.InvalidTableId, oriorerr.WithCode(oriorerr.Binder, "ReservedName",
				"property name "+p.Name+" is reserved")
		}
	}
	if primaryKeyIdx < 0 || primaryKeyIdx >= len(properties) {
		return types.InvalidTableId, oriorerr.WithCode(oriorerr.Binder, "InvalidPk", "primary key column not found")
	}
	pk := properties[primaryKeyIdx]
	if !types.IsValidPrimaryKeyType(pk.DType) {
		return types.InvalidTableId, oriorerr.WithCode(oriorerr.Binder, "InvalidPk",
			"primary key must be INT64, STRING, or SERIAL")
	}
	serialCount := 0
	for i, p := range properties {
		if p.DType.Kind == types.KindSerial {
			serialCount++
			if i != primaryKeyIdx {
				return types.InvalidTableId, oriorerr.WithCode(oriorerr.Binder, "InvalidPk",
					"SERIAL is only legal on the primary key")
			}
		}
	}
	if serialCount > 1 {
		return types.InvalidTableId, oriorerr.WithCode(oriorerr.Binder, "InvalidPk",
			"at most one SERIAL property is allowed")
	}

	id := w.nextTableID()
	props := make([]types.Property, len(properties))
	for i, p := range properties {
		p.Id = types.PropertyId(i)
		p.Table = id
		props[i] = p
	}
	node := NewNodeTableSchema(name, id, props, types.PropertyId(primaryKeyIdx))
	w.register(node)
	return id, nil
}

// AddRelTable implements add_rel_table(name, mult, src, dst, props).
func (w *WriteTxn) AddRelTable(name string, mult types.RelMultiplicity, src, dst types.TableId, properties []types.Property) (types.TableId, error) {
	if err := w.checkNameAvailable(name); err != nil {
		return types.InvalidTableId, err
	}
	srcNode, dstNode, err := w.resolveSrcDst(src, dst)
	if err != nil {
		return types.InvalidTableId, err
	}
	for _, p := range properties {
		if types.IsReservedPropertyName(p.Name) {
			return types.InvalidTableId, oriorerr.WithCode(oriorerr.Binder, "ReservedName",
				"property name "+p.Name+" is reserved")
		}
		if types.IsForbiddenOnRelTable(p.DType) {
			return types.InvalidTableId, oriorerr.WithCode(oriorerr.Binder, "ForbiddenType",
				"property "+p.Name+" has a type forbidden on Rel tables")
		}
	}
	srcPK, _ := srcNode.PrimaryKeyProperty()
	dstPK, _ := dstNode.PrimaryKeyProperty()

	id := w.nextTableID()
	userProps := make([]types.Property, len(properties))
	for i, p := range properties {
		p.Id = types.PropertyId(i + 1)
		userProps[i] = p
	}
	rel := NewRelTableSchema(name, id, mult, src, dst, srcPK.DType, dstPK.DType, userProps)
	w.register(rel)

	srcNode.addFwdRelTable(id)
	dstNode.addBwdRelTable(id)
	return id, nil
}

func (w *WriteTxn) resolveSrcDst(src, dst types.TableId) (*NodeTableSchema, *NodeTableSchema, error) {
	srcT, ok := w.snap.tables[src]
	if !ok || srcT.GetNode() == nil {
		return nil, nil, oriorerr.WithCode(oriorerr.Binder, "BadRef", "src table is not a live Node table")
	}
	dstT, ok := w.snap.tables[dst]
	if !ok || dstT.GetNode() == nil {
		return nil, nil, oriorerr.WithCode(oriorerr.Binder, "BadRef", "dst table is not a live Node table")
	}
	return srcT.GetNode(), dstT.GetNode(), nil
}

// AddRelGroupPair names one (src,dst) pair within a CREATE REL TABLE GROUP.
type AddRelGroupPair struct {
	Src types.TableId
	Dst types.TableId
}

// AddRelGroup implements add_rel_group: for each (src,dst) pair a child Rel
// table named "name_src_dst" is synthesized sharing the declared property
// list, then all child ids are bundled under the group's own TableId.
func (w *WriteTxn) AddRelGroup(name string, pairs []AddRelGroupPair, mult types.RelMultiplicity, properties []types.Property) (types.TableId, []types.TableId, error) {
	if err := w.checkNameAvailable(name); err != nil {
		return types.InvalidTableId, nil, err
	}
	childIDs := make([]types.TableId, 0, len(pairs))
	for _, pair := range pairs {
		srcT, ok := w.snap.tables[pair.Src]
		if !ok || srcT.GetNode() == nil {
			return types.InvalidTableId, nil, oriorerr.WithCode(oriorerr.Binder, "BadRef", "src table is not a live Node table")
		}
		dstT, ok := w.snap.tables[pair.Dst]
		if !ok || dstT.GetNode() == nil {
			return types.InvalidTableId, nil, oriorerr.WithCode(oriorerr.Binder, "BadRef", "dst table is not a live Node table")
		}
		childName := name + "_" + srcT.Name() + "_" + dstT.Name()
		childID, err := w.AddRelTable(childName, mult, pair.Src, pair.Dst, properties)
		if err != nil {
			return types.InvalidTableId, nil, err
		}
		childIDs = append(childIDs, childID)
	}
	groupID := w.nextTableID()
	group := NewRelTableGroupSchema(name, groupID, childIDs)
	w.register(group)
	return groupID, childIDs, nil
}

// AddRdfGraph implements add_rdf_graph(name): synthesizes the four child
// tables per the naming and shape invariants (spec §3.4-7).
func (w *WriteTxn) AddRdfGraph(name string) (types.TableId, error) {
	if err := w.checkNameAvailable(name); err != nil {
		return types.InvalidTableId, err
	}

	resourceNodeID, err := w.AddNodeTable(ChildTableName(name, "r"), []types.Property{
		{Name: "iri", DType: types.String()},
	}, 0)
	if err != nil {
		return types.InvalidTableId, err
	}
	literalNodeID, err := w.AddNodeTable(ChildTableName(name, "l"), []types.Property{
		{Name: "id", DType: types.Serial()},
		{Name: "iri", DType: types.RdfVariant()},
	}, 0)
	if err != nil {
		return types.InvalidTableId, err
	}
	resourceTripleID, err := w.AddRelTable(ChildTableName(name, "rt"), types.ManyMany, resourceNodeID, resourceNodeID, []types.Property{
		{Name: "pid", DType: types.InternalId()},
	})
	if err != nil {
		return types.InvalidTableId, err
	}
	literalTripleID, err := w.AddRelTable(ChildTableName(name, "lt"), types.ManyMany, resourceNodeID, literalNodeID, []types.Property{
		{Name: "pid", DType: types.InternalId()},
	})
	if err != nil {
		return types.InvalidTableId, err
	}

	groupID := w.nextTableID()
	rdf := NewRdfGraphSchema(name, groupID, resourceNodeID, literalNodeID, resourceTripleID, literalTripleID)
	w.register(rdf)
	return groupID, nil
}

// DropTable implements drop_table(id), enforcing invariant (4): a node
// table may be dropped only if no Rel table still references it, and a Rel
// table only if no RelGroup references it.
func (w *WriteTxn) DropTable(id types.TableId) error {
	t, ok := w.snap.tables[id]
	if !ok {
		return oriorerr.WithCode(oriorerr.Catalog, "NotFound", "unknown table id")
	}
	if node := t.GetNode(); node != nil {
		if len(node.fwdRelTables) > 0 || len(node.bwdRelTables) > 0 {
			return oriorerr.WithCode(oriorerr.Catalog, "Referenced",
				"node table "+t.Name()+" is still referenced by a Rel table")
		}
	}
	if t.GetRel() != nil {
		for _, other := range w.snap.tables {
			if g := other.GetRelGroup(); g != nil {
				for _, childID := range g.relTableIDs {
					if childID == id {
						return oriorerr.WithCode(oriorerr.Catalog, "Referenced",
							"rel table "+t.Name()+" is still referenced by rel group "+other.Name())
					}
				}
			}
			if rdf := other.GetRdf(); rdf != nil {
				if rdf.resourceTripleRel == id || rdf.literalTripleRel == id {
					return oriorerr.WithCode(oriorerr.Catalog, "Referenced",
						"rel table "+t.Name()+" is still referenced by RDF graph "+other.Name())
				}
			}
		}
	}
	if node := t.GetNode(); node != nil {
		for _, other := range w.snap.tables {
			if rdf := other.GetRdf(); rdf != nil {
				if rdf.resourceNode == id || rdf.literalNode == id {
					return oriorerr.WithCode(oriorerr.Catalog, "Referenced",
						"node table "+t.Name()+" is still referenced by RDF graph "+other.Name())
				}
			}
		}
	}

	if rel := t.GetRel(); rel != nil {
		if src, ok := w.snap.tables[rel.SrcTable()]; ok {
			if n := src.GetNode(); n != nil {
				n.dropFwdRelTable(id)
			}
		}
		if dst, ok := w.snap.tables[rel.DstTable()]; ok {
			if n := dst.GetNode(); n != nil {
				n.dropBwdRelTable(id)
			}
		}
	}

	delete(w.snap.tables, id)
	delete(w.snap.byName, t.Name())
	return nil
}

// Commit publishes the write transaction's snapshot atomically.
func (w *WriteTxn) Commit() {
	if w.done {
		return
	}
	w.done = true
	w.cat.commit(w)
}

// Rollback discards every mutation made through this transaction.
func (w *WriteTxn) Rollback() {
	if w.done {
		return
	}
	w.done = true
	w.cat.rollback(w)
}

// Lookup and Get read through the transaction's own in-progress snapshot,
// so a writer observes its own prior mutations within the same txn.
func (w *WriteTxn) Lookup(name string) (types.TableId, bool) { return w.snap.Lookup(name) }
func (w *WriteTxn) Get(id types.TableId) (TableSchema, bool)  { return w.snap.Get(id) }
