package catalog

import (
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
)

// AlterKind discriminates the four ALTER TABLE sub-operations.
type AlterKind int

const (
	AlterRename AlterKind = iota
	AlterAddProperty
	AlterDropProperty
	AlterRenameProperty
)

// AlterOp is the bound form of one ALTER TABLE statement.
type AlterOp struct {
	Kind AlterKind

	NewTableName string // AlterRename

	NewProperty types.Property // AlterAddProperty

	DropPropertyID types.PropertyId // AlterDropProperty

	RenamePropertyID types.PropertyId // AlterRenameProperty
	NewPropertyName  string
}

// Alter implements alter(id, AlterOp). RelGroup and Rdf tables reject every
// per-property ALTER; composite schemas are altered via their children.
func (w *WriteTxn) Alter(id types.TableId, op AlterOp) error {
	t, ok := w.snap.tables[id]
	if !ok {
		return oriorerr.WithCode(oriorerr.Catalog, "NotFound", "unknown table id")
	}

	if op.Kind != AlterRename {
		if t.GetRelGroup() != nil || t.GetRdf() != nil {
			return oriorerr.WithCode(oriorerr.Binder, "CompositeAlterForbidden",
				"per-property ALTER is not allowed on a RelGroup or Rdf table")
		}
	}

	switch op.Kind {
	case AlterRename:
		if err := w.checkNameAvailable(op.NewTableName); err != nil {
			return err
		}
		delete(w.snap.byName, t.Name())
		t.setName(op.NewTableName)
		w.snap.byName[op.NewTableName] = id
		return nil

	case AlterAddProperty:
		if types.IsReservedPropertyName(op.NewProperty.Name) {
			return oriorerr.WithCode(oriorerr.Binder, "ReservedName", "property name "+op.NewProperty.Name+" is reserved")
		}
		if t.ContainsProperty(op.NewProperty.Name) {
			return errDuplicateProperty(t.Name(), op.NewProperty.Name)
		}
		if t.GetRel() != nil && types.IsForbiddenOnRelTable(op.NewProperty.DType) {
			return oriorerr.WithCode(oriorerr.Binder, "ForbiddenType", "type forbidden on Rel tables")
		}
		p := op.NewProperty
		p.Table = id
		p.Id = t.NextPropertyID()
		t.addProperty(p)
		return nil

	case AlterDropProperty:
		if node := t.GetNode(); node != nil && node.PrimaryKeyPID() == op.DropPropertyID {
			return oriorerr.WithCode(oriorerr.Binder, "DropPkForbidden", "cannot drop the primary key property")
		}
		if _, ok := t.PropertyByID(op.DropPropertyID); !ok {
			return oriorerr.WithCode(oriorerr.Catalog, "NotFound", "unknown property id")
		}
		t.dropProperty(op.DropPropertyID)
		return nil

	case AlterRenameProperty:
		if _, ok := t.PropertyByID(op.RenamePropertyID); !ok {
			return oriorerr.WithCode(oriorerr.Catalog, "NotFound", "unknown property id")
		}
		if t.ContainsProperty(op.NewPropertyName) {
			return errDuplicateProperty(t.Name(), op.NewPropertyName)
		}
		t.renameProperty(op.RenamePropertyID, op.NewPropertyName)
		return nil

	default:
		return oriorerr.New(oriorerr.NotImplemented, "unknown AlterKind")
	}
}
