package catalog

import "github.com/oriondb/oriondb/internal/types"

// RdfGraphSchema is the synthetic Rdf variant: it holds no properties of
// its own, only the four child table ids that the RDF decomposition
// actually stores rows in.
type RdfGraphSchema struct {
	base
	noVariants

	resourceNode       types.TableId
	literalNode        types.TableId
	resourceTripleRel  types.TableId
	literalTripleRel   types.TableId
}

func NewRdfGraphSchema(name string, id, resourceNode, literalNode, resourceTripleRel, literalTripleRel types.TableId) *RdfGraphSchema {
	return &RdfGraphSchema{
		base: base{
			tableType: types.TableTypeRdf,
			name:      name,
			tableID:   id,
		},
		resourceNode:      resourceNode,
		literalNode:       literalNode,
		resourceTripleRel: resourceTripleRel,
		literalTripleRel:  literalTripleRel,
	}
}

func (g *RdfGraphSchema) GetRdf() *RdfGraphSchema { return g }

func (g *RdfGraphSchema) ResourceNode() types.TableId      { return g.resourceNode }
func (g *RdfGraphSchema) LiteralNode() types.TableId       { return g.literalNode }
func (g *RdfGraphSchema) ResourceTripleRel() types.TableId { return g.resourceTripleRel }
func (g *RdfGraphSchema) LiteralTripleRel() types.TableId  { return g.literalTripleRel }

// ChildTableIDs returns the four children in the fixed N_r, N_l, N_rt, N_lt
// order used for serialization and for the ingest state machine.
func (g *RdfGraphSchema) ChildTableIDs() [4]types.TableId {
	return [4]types.TableId{g.resourceNode, g.literalNode, g.resourceTripleRel, g.literalTripleRel}
}

func (g *RdfGraphSchema) Clone() TableSchema {
	return &RdfGraphSchema{
		base:              g.cloneBase(),
		resourceNode:       g.resourceNode,
		literalNode:        g.literalNode,
		resourceTripleRel:  g.resourceTripleRel,
		literalTripleRel:   g.literalTripleRel,
	}
}

// ChildTableName returns the conventional N_r/N_l/N_rt/N_lt name for graph
// name N, per the naming invariant.
func ChildTableName(graphName string, suffix string) string {
	return graphName + "_" + suffix
}
