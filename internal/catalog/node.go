package catalog

import "github.com/oriondb/oriondb/internal/types"

// NodeTableSchema is the Node variant of TableSchema.
type NodeTableSchema struct {
	base
	noVariants

	primaryKeyPID types.PropertyId
	fwdRelTables  map[types.TableId]struct{}
	bwdRelTables  map[types.TableId]struct{}
}

func NewNodeTableSchema(name string, id types.TableId, properties []types.Property, primaryKeyPID types.PropertyId) *NodeTableSchema {
	nextID := types.PropertyId(0)
	for _, p := range properties {
		if p.Id >= nextID {
			nextID = p.Id + 1
		}
	}
	return &NodeTableSchema{
		base: base{
			tableType:      types.TableTypeNode,
			name:           name,
			tableID:        id,
			properties:     properties,
			nextPropertyID: nextID,
		},
		primaryKeyPID: primaryKeyPID,
		fwdRelTables:  make(map[types.TableId]struct{}),
		bwdRelTables:  make(map[types.TableId]struct{}),
	}
}

func (n *NodeTableSchema) GetNode() *NodeTableSchema { return n }

func (n *NodeTableSchema) PrimaryKeyPID() types.PropertyId { return n.primaryKeyPID }

func (n *NodeTableSchema) PrimaryKeyProperty() (*types.Property, bool) {
	return n.PropertyByID(n.primaryKeyPID)
}

func (n *NodeTableSchema) FwdRelTables() []types.TableId {
	return setKeys(n.fwdRelTables)
}

func (n *NodeTableSchema) BwdRelTables() []types.TableId {
	return setKeys(n.bwdRelTables)
}

func (n *NodeTableSchema) addFwdRelTable(id types.TableId) { n.fwdRelTables[id] = struct{}{} }
func (n *NodeTableSchema) addBwdRelTable(id types.TableId) { n.bwdRelTables[id] = struct{}{} }
func (n *NodeTableSchema) dropFwdRelTable(id types.TableId) { delete(n.fwdRelTables, id) }
func (n *NodeTableSchema) dropBwdRelTable(id types.TableId) { delete(n.bwdRelTables, id) }

func (n *NodeTableSchema) Clone() TableSchema {
	c := &NodeTableSchema{
		base:          n.cloneBase(),
		primaryKeyPID: n.primaryKeyPID,
		fwdRelTables:  make(map[types.TableId]struct{}, len(n.fwdRelTables)),
		bwdRelTables:  make(map[types.TableId]struct{}, len(n.bwdRelTables)),
	}
	for id := range n.fwdRelTables {
		c.fwdRelTables[id] = struct{}{}
	}
	for id := range n.bwdRelTables {
		c.bwdRelTables[id] = struct{}{}
	}
	return c
}

func setKeys(m map[types.TableId]struct{}) []types.TableId {
	out := make([]types.TableId, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}
