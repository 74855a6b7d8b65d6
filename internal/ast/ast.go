// Package ast is the typed Go shape of the statement tree the external
// *Parser* collaborator would hand to the Binder (spec.md §1, §4.1). This
// core never parses Cypher-like source text; tests and callers construct
// ast.Stmt values directly, the way a generated parser's AST package would
// be consumed, modeled on pg_query_go's oneof Node/Get*() pattern.
package ast

// Stmt is the sum type over every statement the Binder accepts. Exactly
// one Get* accessor returns non-nil for a given value.
type Stmt interface {
	GetCreateNodeTable() *CreateNodeTableStmt
	GetCreateRelTable() *CreateRelTableStmt
	GetCreateRelTableGroup() *CreateRelTableGroupStmt
	GetCreateRdfGraph() *CreateRdfGraphStmt
	GetDropTable() *DropTableStmt
	GetAlterTable() *AlterTableStmt
	GetCopyFrom() *CopyFromStmt
	GetCopyTo() *CopyToStmt
}

type stmtBase struct{}

func (stmtBase) GetCreateNodeTable() *CreateNodeTableStmt           { return nil }
func (stmtBase) GetCreateRelTable() *CreateRelTableStmt             { return nil }
func (stmtBase) GetCreateRelTableGroup() *CreateRelTableGroupStmt   { return nil }
func (stmtBase) GetCreateRdfGraph() *CreateRdfGraphStmt             { return nil }
func (stmtBase) GetDropTable() *DropTableStmt                       { return nil }
func (stmtBase) GetAlterTable() *AlterTableStmt                     { return nil }
func (stmtBase) GetCopyFrom() *CopyFromStmt                         { return nil }
func (stmtBase) GetCopyTo() *CopyToStmt                             { return nil }

// PropertyDef is an unresolved, as-parsed property declaration: the type
// name is still a bare string (e.g. "INT64", "STRING", "SERIAL") until the
// Binder resolves it to a types.LogicalType.
type PropertyDef struct {
	Name     string
	TypeName string
}

// CreateNodeTableStmt is CREATE NODE TABLE name(props...) PRIMARY KEY(pk).
type CreateNodeTableStmt struct {
	stmtBase
	TableName  string
	Properties []PropertyDef
	PrimaryKey string
}

func (s *CreateNodeTableStmt) GetCreateNodeTable() *CreateNodeTableStmt { return s }

// CreateRelTableStmt is CREATE REL TABLE name(FROM src TO dst, props..., MULT).
type CreateRelTableStmt struct {
	stmtBase
	TableName     string
	SrcTableName  string
	DstTableName  string
	Multiplicity  string // "ONE_ONE" | "ONE_MANY" | "MANY_ONE" | "MANY_MANY"
	Properties    []PropertyDef
}

func (s *CreateRelTableStmt) GetCreateRelTable() *CreateRelTableStmt { return s }

// RelPair names one (FROM src TO dst) pair within CREATE REL TABLE GROUP.
type RelPair struct {
	SrcTableName string
	DstTableName string
}

// CreateRelTableGroupStmt is CREATE REL TABLE GROUP name(pairs..., props..., MULT).
type CreateRelTableGroupStmt struct {
	stmtBase
	GroupName    string
	Pairs        []RelPair
	Multiplicity string
	Properties   []PropertyDef
}

func (s *CreateRelTableGroupStmt) GetCreateRelTableGroup() *CreateRelTableGroupStmt { return s }

// CreateRdfGraphStmt is CREATE RDF GRAPH name.
type CreateRdfGraphStmt struct {
	stmtBase
	GraphName string
}

func (s *CreateRdfGraphStmt) GetCreateRdfGraph() *CreateRdfGraphStmt { return s }

// DropTableStmt is DROP TABLE name.
type DropTableStmt struct {
	stmtBase
	TableName string
}

func (s *DropTableStmt) GetDropTable() *DropTableStmt { return s }

// AlterTableKind discriminates ALTER TABLE sub-forms at the AST level,
// before the Binder turns it into a catalog.AlterOp.
type AlterTableKind int

const (
	AlterTableRename AlterTableKind = iota
	AlterTableAddProperty
	AlterTableDropProperty
	AlterTableRenameProperty
)

// AlterTableStmt is ALTER TABLE name {RENAME TO|ADD|DROP|RENAME} ...
type AlterTableStmt struct {
	stmtBase
	TableName string
	Kind      AlterTableKind

	NewTableName string // AlterTableRename

	NewProperty PropertyDef // AlterTableAddProperty
	DefaultExpr string      // optional default expression text; the binder does not read it

	PropertyName string // AlterTableDropProperty / AlterTableRenameProperty
	NewPropertyName string // AlterTableRenameProperty
}

func (s *AlterTableStmt) GetAlterTable() *AlterTableStmt { return s }

// CopyFromStmt is COPY table FROM paths [(opt=val,...)] [BY COLUMN].
type CopyFromStmt struct {
	stmtBase
	TableName string
	Paths     []string
	ByColumn  bool
	Options   map[string]string

	// Subquery is set instead of Paths for COPY table FROM (<regular-query>).
	Subquery string
}

func (s *CopyFromStmt) GetCopyFrom() *CopyFromStmt { return s }

// CopyToStmt is COPY (<regular-query>) TO path.
type CopyToStmt struct {
	stmtBase
	Query   string
	Path    string
	Options map[string]string
}

func (s *CopyToStmt) GetCopyTo() *CopyToStmt { return s }
