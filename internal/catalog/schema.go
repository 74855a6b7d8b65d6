// Package catalog implements the versioned, in-memory schema registry:
// node, relationship, relationship-group, and RDF-graph tables, their
// properties, and the invariants binding them together.
package catalog

import (
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
)

// TableSchema is the common interface over the four table-schema variants.
// Dispatch is done by calling the Get* accessor matching TableType(); all
// but one return nil, mirroring the oneof-style nodes a real Cypher parser
// would hand the binder.
type TableSchema interface {
	TableID() types.TableId
	Name() string
	TableType() types.TableType
	Comment() string
	Properties() []types.Property
	NextPropertyID() types.PropertyId
	NumProperties() int

	ContainsProperty(name string) bool
	PropertyIDByName(name string) (types.PropertyId, bool)
	PropertyByID(id types.PropertyId) (*types.Property, bool)
	PropertyNameByID(id types.PropertyId) (string, bool)

	GetNode() *NodeTableSchema
	GetRel() *RelTableSchema
	GetRelGroup() *RelTableGroupSchema
	GetRdf() *RdfGraphSchema

	Clone() TableSchema

	// internal mutators used only by Catalog's copy-on-write DDL path
	setName(string)
	setComment(string)
	addProperty(types.Property)
	dropProperty(types.PropertyId)
	renameProperty(types.PropertyId, string)
}

// base holds the fields common to every TableSchema variant.
type base struct {
	tableType      types.TableType
	name           string
	tableID        types.TableId
	properties     []types.Property
	comment        string
	nextPropertyID types.PropertyId
}

func (b *base) TableID() types.TableId             { return b.tableID }
func (b *base) Name() string                       { return b.name }
func (b *base) TableType() types.TableType         { return b.tableType }
func (b *base) Comment() string                    { return b.comment }
func (b *base) Properties() []types.Property       { return b.properties }
func (b *base) NextPropertyID() types.PropertyId   { return b.nextPropertyID }
func (b *base) NumProperties() int                 { return len(b.properties) }

func (b *base) setName(n string)    { b.name = n }
func (b *base) setComment(c string) { b.comment = c }

func (b *base) ContainsProperty(name string) bool {
	for _, p := range b.properties {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (b *base) PropertyIDByName(name string) (types.PropertyId, bool) {
	for _, p := range b.properties {
		if p.Name == name {
			return p.Id, true
		}
	}
	return types.InvalidPropertyId, false
}

func (b *base) PropertyByID(id types.PropertyId) (*types.Property, bool) {
	for i := range b.properties {
		if b.properties[i].Id == id {
			return &b.properties[i], true
		}
	}
	return nil, false
}

func (b *base) PropertyNameByID(id types.PropertyId) (string, bool) {
	p, ok := b.PropertyByID(id)
	if !ok {
		return "", false
	}
	return p.Name, true
}

func (b *base) addProperty(p types.Property) {
	if p.Id >= b.nextPropertyID {
		b.nextPropertyID = p.Id + 1
	}
	b.properties = append(b.properties, p)
}

func (b *base) allocatePropertyID() types.PropertyId {
	id := b.nextPropertyID
	b.nextPropertyID++
	return id
}

func (b *base) dropProperty(id types.PropertyId) {
	out := b.properties[:0]
	for _, p := range b.properties {
		if p.Id != id {
			out = append(out, p)
		}
	}
	b.properties = out
}

func (b *base) renameProperty(id types.PropertyId, newName string) {
	for i := range b.properties {
		if b.properties[i].Id == id {
			b.properties[i].Name = newName
			return
		}
	}
}

func (b *base) cloneBase() base {
	props := make([]types.Property, len(b.properties))
	copy(props, b.properties)
	return base{
		tableType:      b.tableType,
		name:           b.name,
		tableID:        b.tableID,
		properties:     props,
		comment:        b.comment,
		nextPropertyID: b.nextPropertyID,
	}
}

// default no-op variant accessors; embedded in each concrete schema and
// shadowed by the one matching its own kind.
type noVariants struct{}

func (noVariants) GetNode() *NodeTableSchema           { return nil }
func (noVariants) GetRel() *RelTableSchema              { return nil }
func (noVariants) GetRelGroup() *RelTableGroupSchema    { return nil }
func (noVariants) GetRdf() *RdfGraphSchema              { return nil }

// errDuplicateProperty is a convenience for the alter path (alter.go's
// add-property and rename-property checks share the same Code string).
func errDuplicateProperty(table, prop string) error {
	return oriorerr.WithCode(oriorerr.Catalog, "Duplicate",
		"table "+table+" already has property "+prop)
}
