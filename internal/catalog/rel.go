package catalog

import "github.com/oriondb/oriondb/internal/types"

// RelTableSchema is the Rel variant of TableSchema. Every Rel table carries
// a built-in ID: InternalId property at PropertyId 0 before any user
// property is appended.
type RelTableSchema struct {
	base
	noVariants

	multiplicity types.RelMultiplicity
	srcTable     types.TableId
	dstTable     types.TableId
	srcPKType    types.LogicalType
	dstPKType    types.LogicalType
}

func NewRelTableSchema(name string, id types.TableId, mult types.RelMultiplicity,
	src, dst types.TableId, srcPKType, dstPKType types.LogicalType, userProps []types.Property) *RelTableSchema {

	props := make([]types.Property, 0, len(userProps)+1)
	props = append(props, types.Property{
		Name:  "ID",
		Id:    types.InternalRelIDPropertyID,
		Table: id,
		DType: types.InternalId(),
	})
	nextID := types.InternalRelIDPropertyID + 1
	for _, p := range userProps {
		p.Table = id
		props = append(props, p)
		if p.Id >= nextID {
			nextID = p.Id + 1
		}
	}
	return &RelTableSchema{
		base: base{
			tableType:      types.TableTypeRel,
			name:           name,
			tableID:        id,
			properties:     props,
			nextPropertyID: nextID,
		},
		multiplicity: mult,
		srcTable:     src,
		dstTable:     dst,
		srcPKType:    srcPKType,
		dstPKType:    dstPKType,
	}
}

func (r *RelTableSchema) GetRel() *RelTableSchema { return r }

func (r *RelTableSchema) Multiplicity() types.RelMultiplicity { return r.multiplicity }
func (r *RelTableSchema) SrcTable() types.TableId             { return r.srcTable }
func (r *RelTableSchema) DstTable() types.TableId             { return r.dstTable }
func (r *RelTableSchema) SrcPKType() types.LogicalType        { return r.srcPKType }
func (r *RelTableSchema) DstPKType() types.LogicalType        { return r.dstPKType }

func (r *RelTableSchema) Clone() TableSchema {
	return &RelTableSchema{
		base:         r.cloneBase(),
		multiplicity: r.multiplicity,
		srcTable:     r.srcTable,
		dstTable:     r.dstTable,
		srcPKType:    r.srcPKType,
		dstPKType:    r.dstPKType,
	}
}
