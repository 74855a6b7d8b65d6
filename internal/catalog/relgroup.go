package catalog

import "github.com/oriondb/oriondb/internal/types"

// RelTableGroupSchema is the RelGroup variant: a named bundle of Rel tables
// sharing a declared schema but differing in (src, dst). It owns no
// properties of its own.
type RelTableGroupSchema struct {
	base
	noVariants

	relTableIDs []types.TableId
}

func NewRelTableGroupSchema(name string, id types.TableId, relTableIDs []types.TableId) *RelTableGroupSchema {
	return &RelTableGroupSchema{
		base: base{
			tableType: types.TableTypeRelGroup,
			name:      name,
			tableID:   id,
		},
		relTableIDs: relTableIDs,
	}
}

func (g *RelTableGroupSchema) GetRelGroup() *RelTableGroupSchema { return g }

func (g *RelTableGroupSchema) RelTableIDs() []types.TableId {
	out := make([]types.TableId, len(g.relTableIDs))
	copy(out, g.relTableIDs)
	return out
}

func (g *RelTableGroupSchema) Clone() TableSchema {
	ids := make([]types.TableId, len(g.relTableIDs))
	copy(ids, g.relTableIDs)
	return &RelTableGroupSchema{base: g.cloneBase(), relTableIDs: ids}
}
