package binder

import (
	"github.com/oriondb/oriondb/internal/ast"
	"github.com/oriondb/oriondb/internal/catalog"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
)

// bindCreateNodeTable implements the CREATE NODE TABLE key algorithm:
// bind property definitions, reject reserved names, locate the declared PK
// name (error if absent), validate its type, reject SERIAL on non-PK
// properties.
func (b *Binder) bindCreateNodeTable(s *ast.CreateNodeTableStmt) (BoundStatement, error) {
	if _, exists := b.snap.Lookup(s.TableName); exists {
		return nil, oriorerr.WithCode(oriorerr.Binder, "Duplicate", "table "+s.TableName+" already exists")
	}
	props, err := b.bindProperties(s.Properties)
	if err != nil {
		return nil, err
	}

	pkIdx := -1
	for i, d := range s.Properties {
		if d.Name == s.PrimaryKey {
			pkIdx = i
			break
		}
	}
	if pkIdx == -1 {
		return nil, oriorerr.WithCode(oriorerr.Binder, "InvalidPk", "declared primary key "+s.PrimaryKey+" not found among properties")
	}
	if !types.IsValidPrimaryKeyType(props[pkIdx].DType) {
		return nil, oriorerr.WithCode(oriorerr.Binder, "InvalidPk", "primary key must be INT64, STRING, or SERIAL")
	}
	for i, p := range props {
		if p.DType.Kind == types.KindSerial && i != pkIdx {
			return nil, oriorerr.WithCode(oriorerr.Binder, "InvalidPk", "SERIAL is only legal on the primary key")
		}
	}

	return &BoundCreateTable{Info: BoundCreateTableInfo{Node: &BoundCreateNodeTableInfo{
		TableName:     s.TableName,
		Properties:    props,
		PrimaryKeyIdx: pkIdx,
	}}}, nil
}

// bindCreateRelTable implements CREATE REL TABLE: bind properties, reject
// forbidden types, resolve and validate src/dst (must exist and be Node).
func (b *Binder) bindCreateRelTable(s *ast.CreateRelTableStmt) (BoundStatement, error) {
	if _, exists := b.snap.Lookup(s.TableName); exists {
		return nil, oriorerr.WithCode(oriorerr.Binder, "Duplicate", "table "+s.TableName+" already exists")
	}
	props, err := b.bindProperties(s.Properties)
	if err != nil {
		return nil, err
	}
	for _, p := range props {
		if types.IsForbiddenOnRelTable(p.DType) {
			return nil, oriorerr.WithCode(oriorerr.Binder, "ForbiddenType", "property "+p.Name+" has a type forbidden on Rel tables")
		}
	}
	if _, _, err := b.validateNodeTableExists(s.SrcTableName); err != nil {
		return nil, err
	}
	if _, _, err := b.validateNodeTableExists(s.DstTableName); err != nil {
		return nil, err
	}
	mult, err := resolveMultiplicity(s.Multiplicity)
	if err != nil {
		return nil, err
	}

	return &BoundCreateTable{Info: BoundCreateTableInfo{Rel: &BoundCreateRelTableInfo{
		TableName:    s.TableName,
		Multiplicity: mult,
		SrcTableName: s.SrcTableName,
		DstTableName: s.DstTableName,
		Properties:   props,
	}}}, nil
}

// bindCreateRelTableGroup implements CREATE REL TABLE GROUP: validate each
// (src,dst) pair and share one bound property list across the synthesized
// children; AddRelGroup names each child "group_src_dst" internally.
func (b *Binder) bindCreateRelTableGroup(s *ast.CreateRelTableGroupStmt) (BoundStatement, error) {
	if _, exists := b.snap.Lookup(s.GroupName); exists {
		return nil, oriorerr.WithCode(oriorerr.Binder, "Duplicate", "table "+s.GroupName+" already exists")
	}
	props, err := b.bindProperties(s.Properties)
	if err != nil {
		return nil, err
	}
	for _, p := range props {
		if types.IsForbiddenOnRelTable(p.DType) {
			return nil, oriorerr.WithCode(oriorerr.Binder, "ForbiddenType", "property "+p.Name+" has a type forbidden on Rel tables")
		}
	}
	pairs := make([]catalog.AddRelGroupPair, 0, len(s.Pairs))
	for _, pair := range s.Pairs {
		srcID, _, err := b.validateNodeTableExists(pair.SrcTableName)
		if err != nil {
			return nil, err
		}
		dstID, _, err := b.validateNodeTableExists(pair.DstTableName)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, catalog.AddRelGroupPair{Src: srcID, Dst: dstID})
	}
	mult, err := resolveMultiplicity(s.Multiplicity)
	if err != nil {
		return nil, err
	}

	return &BoundCreateTable{Info: BoundCreateTableInfo{RelGroup: &BoundCreateRelGroupInfo{
		GroupName:    s.GroupName,
		Pairs:        pairs,
		Multiplicity: mult,
		Properties:   props,
	}}}, nil
}

// bindCreateRdfGraph implements CREATE RDF GRAPH: synthesizes the four
// child BoundCreateTableInfos per the naming/shape invariant. No
// user-declared properties are permitted, so there is nothing to bind
// beyond the name.
func (b *Binder) bindCreateRdfGraph(s *ast.CreateRdfGraphStmt) (BoundStatement, error) {
	if _, exists := b.snap.Lookup(s.GraphName); exists {
		return nil, oriorerr.WithCode(oriorerr.Binder, "Duplicate", "table "+s.GraphName+" already exists")
	}
	return &BoundCreateTable{Info: BoundCreateTableInfo{Rdf: &BoundCreateRdfGraphInfo{
		GraphName: s.GraphName,
	}}}, nil
}

// bindDropTable implements drop_table validation at bind time; the actual
// invariant-4 "still referenced" check happens inside catalog.WriteTxn.DropTable
// since it needs a consistent view of the whole table graph under the write
// lock, not just the read snapshot the Binder holds.
func (b *Binder) bindDropTable(s *ast.DropTableStmt) (BoundStatement, error) {
	id, ok := b.snap.Lookup(s.TableName)
	if !ok {
		return nil, oriorerr.WithCode(oriorerr.Catalog, "NotFound", "table "+s.TableName+" does not exist")
	}
	return &BoundDropTable{TableID: id}, nil
}

// bindAlterTable implements ALTER: resolve table; for ADD_PROPERTY check
// the name and resolve the declared type; for DROP_PROPERTY forbid dropping
// the Node PK; for RelGroup/Rdf reject all per-property ALTERs. The
// statement's DefaultExpr is not bound or carried into the AlterOp.
func (b *Binder) bindAlterTable(s *ast.AlterTableStmt) (BoundStatement, error) {
	id, ok := b.snap.Lookup(s.TableName)
	if !ok {
		return nil, oriorerr.WithCode(oriorerr.Catalog, "NotFound", "table "+s.TableName+" does not exist")
	}
	schema, _ := b.snap.Get(id)

	if s.Kind != ast.AlterTableRename {
		if schema.GetRelGroup() != nil || schema.GetRdf() != nil {
			return nil, oriorerr.WithCode(oriorerr.Binder, "CompositeAlterForbidden",
				"per-property ALTER is not allowed on a RelGroup or Rdf table")
		}
	}

	switch s.Kind {
	case ast.AlterTableRename:
		if _, exists := b.snap.Lookup(s.NewTableName); exists {
			return nil, oriorerr.WithCode(oriorerr.Binder, "Duplicate", "table "+s.NewTableName+" already exists")
		}
		return &BoundAlterTable{TableID: id, Op: catalog.AlterOp{
			Kind:         catalog.AlterRename,
			NewTableName: s.NewTableName,
		}}, nil

	case ast.AlterTableAddProperty:
		if types.IsReservedPropertyName(s.NewProperty.Name) {
			return nil, oriorerr.WithCode(oriorerr.Binder, "ReservedName", "property name "+s.NewProperty.Name+" is reserved")
		}
		if schema.ContainsProperty(s.NewProperty.Name) {
			return nil, oriorerr.WithCode(oriorerr.Binder, "Duplicate", "property "+s.NewProperty.Name+" already exists")
		}
		dtype, err := resolveTypeName(s.NewProperty.TypeName)
		if err != nil {
			return nil, err
		}
		if schema.GetRel() != nil && types.IsForbiddenOnRelTable(dtype) {
			return nil, oriorerr.WithCode(oriorerr.Binder, "ForbiddenType", "type forbidden on Rel tables")
		}
		return &BoundAlterTable{TableID: id, Op: catalog.AlterOp{
			Kind:        catalog.AlterAddProperty,
			NewProperty: types.Property{Name: s.NewProperty.Name, DType: dtype},
		}}, nil

	case ast.AlterTableDropProperty:
		pid, ok := schema.PropertyIDByName(s.PropertyName)
		if !ok {
			return nil, oriorerr.WithCode(oriorerr.Catalog, "NotFound", "unknown property "+s.PropertyName)
		}
		if node := schema.GetNode(); node != nil && node.PrimaryKeyPID() == pid {
			return nil, oriorerr.WithCode(oriorerr.Binder, "DropPkForbidden", "cannot drop the primary key property")
		}
		return &BoundAlterTable{TableID: id, Op: catalog.AlterOp{
			Kind:           catalog.AlterDropProperty,
			DropPropertyID: pid,
		}}, nil

	case ast.AlterTableRenameProperty:
		pid, ok := schema.PropertyIDByName(s.PropertyName)
		if !ok {
			return nil, oriorerr.WithCode(oriorerr.Catalog, "NotFound", "unknown property "+s.PropertyName)
		}
		if schema.ContainsProperty(s.NewPropertyName) {
			return nil, oriorerr.WithCode(oriorerr.Binder, "Duplicate", "property "+s.NewPropertyName+" already exists")
		}
		return &BoundAlterTable{TableID: id, Op: catalog.AlterOp{
			Kind:             catalog.AlterRenameProperty,
			RenamePropertyID: pid,
			NewPropertyName:  s.NewPropertyName,
		}}, nil

	default:
		return nil, oriorerr.New(oriorerr.NotImplemented, "unknown ALTER kind")
	}
}
