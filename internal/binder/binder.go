package binder

import (
	"strings"

	"github.com/oriondb/oriondb/internal/ast"
	"github.com/oriondb/oriondb/internal/catalog"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
	"go.uber.org/zap"
)

// Binder binds one statement at a time against a fixed catalog.Snapshot;
// it is purely synchronous and never mutates the catalog itself — DDL
// execution applies the bound result through a catalog.WriteTxn separately.
type Binder struct {
	snap *catalog.Snapshot
	log  *zap.Logger
}

func New(snap *catalog.Snapshot) *Binder {
	return &Binder{snap: snap, log: zap.L().Named("binder")}
}

// Bind dispatches on the AST node's concrete variant, mirroring the
// Get*()-based dispatch the rest of the codebase uses for typed unions.
func (b *Binder) Bind(stmt ast.Stmt) (BoundStatement, error) {
	switch {
	case stmt.GetCreateNodeTable() != nil:
		return b.bindCreateNodeTable(stmt.GetCreateNodeTable())
	case stmt.GetCreateRelTable() != nil:
		return b.bindCreateRelTable(stmt.GetCreateRelTable())
	case stmt.GetCreateRelTableGroup() != nil:
		return b.bindCreateRelTableGroup(stmt.GetCreateRelTableGroup())
	case stmt.GetCreateRdfGraph() != nil:
		return b.bindCreateRdfGraph(stmt.GetCreateRdfGraph())
	case stmt.GetDropTable() != nil:
		return b.bindDropTable(stmt.GetDropTable())
	case stmt.GetAlterTable() != nil:
		return b.bindAlterTable(stmt.GetAlterTable())
	case stmt.GetCopyFrom() != nil:
		return b.bindCopyFrom(stmt.GetCopyFrom())
	case stmt.GetCopyTo() != nil:
		return b.bindCopyTo(stmt.GetCopyTo())
	default:
		return nil, oriorerr.New(oriorerr.NotImplemented, "unrecognized statement")
	}
}

// resolveTypeName turns a bare type-name token from the AST into a
// types.LogicalType. Parameterized types (LIST/STRUCT/UNION/MAP) are not
// part of the surface this Binder accepts as property declarations; only
// the COPY-bound expected-column types ever construct those directly.
func resolveTypeName(name string) (types.LogicalType, error) {
	switch strings.ToUpper(name) {
	case "BOOL", "BOOLEAN":
		return types.Bool(), nil
	case "INT64", "INT":
		return types.Int64(), nil
	case "INT32":
		return types.Int32(), nil
	case "INT16":
		return types.Int16(), nil
	case "DOUBLE":
		return types.Double(), nil
	case "FLOAT":
		return types.Float(), nil
	case "STRING":
		return types.String(), nil
	case "DATE":
		return types.Date(), nil
	case "TIMESTAMP":
		return types.Timestamp(), nil
	case "INTERVAL":
		return types.Interval(), nil
	case "BLOB":
		return types.Blob(), nil
	case "SERIAL":
		return types.Serial(), nil
	default:
		return types.LogicalType{}, oriorerr.WithCode(oriorerr.Binder, "UnknownType", "unknown type name "+name)
	}
}

func resolveMultiplicity(name string) (types.RelMultiplicity, error) {
	switch strings.ToUpper(name) {
	case "ONE_ONE":
		return types.OneOne, nil
	case "ONE_MANY":
		return types.OneMany, nil
	case "MANY_ONE":
		return types.ManyOne, nil
	case "MANY_MANY", "":
		return types.ManyMany, nil
	default:
		return 0, oriorerr.WithCode(oriorerr.Binder, "UnknownMultiplicity", "unknown multiplicity "+name)
	}
}

func (b *Binder) bindProperties(defs []ast.PropertyDef) ([]types.Property, error) {
	out := make([]types.Property, 0, len(defs))
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if types.IsReservedPropertyName(d.Name) {
			return nil, oriorerr.WithCode(oriorerr.Binder, "ReservedName", "property name "+d.Name+" is reserved")
		}
		if _, dup := seen[d.Name]; dup {
			return nil, oriorerr.WithCode(oriorerr.Binder, "Duplicate", "duplicate property name "+d.Name)
		}
		seen[d.Name] = struct{}{}
		dtype, err := resolveTypeName(d.TypeName)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Property{Name: d.Name, DType: dtype})
	}
	return out, nil
}

func (b *Binder) validateNodeTableExists(name string) (types.TableId, catalog.TableSchema, error) {
	id, ok := b.snap.Lookup(name)
	if !ok {
		return types.InvalidTableId, nil, oriorerr.WithCode(oriorerr.Binder, "NotFound", "table "+name+" does not exist")
	}
	schema, _ := b.snap.Get(id)
	if schema.GetNode() == nil {
		return types.InvalidTableId, nil, oriorerr.WithCode(oriorerr.Binder, "BadRef", name+" is not a Node table")
	}
	return id, schema, nil
}

func (b *Binder) validateNodeOrRelTableExists(name string) (types.TableId, catalog.TableSchema, error) {
	id, ok := b.snap.Lookup(name)
	if !ok {
		return types.InvalidTableId, nil, oriorerr.WithCode(oriorerr.Binder, "NotFound", "table "+name+" does not exist")
	}
	schema, _ := b.snap.Get(id)
	if schema.GetNode() == nil && schema.GetRel() == nil {
		return types.InvalidTableId, nil, oriorerr.WithCode(oriorerr.Binder, "BadRef", name+" is not a Node or Rel table")
	}
	return id, schema, nil
}
