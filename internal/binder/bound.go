// Package binder transforms the Parser's typed AST (internal/ast) into a
// catalog-resolved BoundStatement tree, reading through a single
// catalog.Snapshot for the whole statement.
package binder

import (
	"github.com/oriondb/oriondb/internal/catalog"
	"github.com/oriondb/oriondb/internal/copyopts"
	"github.com/oriondb/oriondb/internal/expr"
	"github.com/oriondb/oriondb/internal/types"
)

// BoundStatement is the sum type over every statement Bind can produce.
type BoundStatement interface {
	GetCreateTable() *BoundCreateTable
	GetDropTable() *BoundDropTable
	GetAlterTable() *BoundAlterTable
	GetCopyFrom() *BoundCopyFrom
	GetCopyTo() *BoundCopyTo
}

type boundBase struct{}

func (boundBase) GetCreateTable() *BoundCreateTable { return nil }
func (boundBase) GetDropTable() *BoundDropTable     { return nil }
func (boundBase) GetAlterTable() *BoundAlterTable   { return nil }
func (boundBase) GetCopyFrom() *BoundCopyFrom       { return nil }
func (boundBase) GetCopyTo() *BoundCopyTo           { return nil }

// BoundCreateTableInfo is the resolved, catalog-ready form of a CREATE
// statement; exactly one of its Node/Rel/RelGroup/Rdf fields is set.
type BoundCreateTableInfo struct {
	Node     *BoundCreateNodeTableInfo
	Rel      *BoundCreateRelTableInfo
	RelGroup *BoundCreateRelGroupInfo
	Rdf      *BoundCreateRdfGraphInfo
}

type BoundCreateNodeTableInfo struct {
	TableName      string
	Properties     []types.Property
	PrimaryKeyIdx  int
}

type BoundCreateRelTableInfo struct {
	TableName    string
	Multiplicity types.RelMultiplicity
	SrcTableName string
	DstTableName string
	Properties   []types.Property
}

type BoundCreateRelGroupInfo struct {
	GroupName    string
	Pairs        []catalog.AddRelGroupPair
	Multiplicity types.RelMultiplicity
	Properties   []types.Property
}

type BoundCreateRdfGraphInfo struct {
	GraphName string
}

// BoundCreateTable is the bound form of every CREATE {NODE|REL [GROUP]|RDF
// GRAPH} TABLE statement.
type BoundCreateTable struct {
	boundBase
	Info BoundCreateTableInfo
}

func (s *BoundCreateTable) GetCreateTable() *BoundCreateTable { return s }

// BoundDropTable is the bound form of DROP TABLE.
type BoundDropTable struct {
	boundBase
	TableID types.TableId
}

func (s *BoundDropTable) GetDropTable() *BoundDropTable { return s }

// BoundAlterTable is the bound form of ALTER TABLE.
type BoundAlterTable struct {
	boundBase
	TableID types.TableId
	Op      catalog.AlterOp
}

func (s *BoundAlterTable) GetAlterTable() *BoundAlterTable { return s }

// FileType is the inferred source/target format of a COPY statement.
type FileType int

const (
	FileTypeCSV FileType = iota
	FileTypeParquet
	FileTypeNpy
	FileTypeTurtle
)

func (f FileType) String() string {
	switch f {
	case FileTypeCSV:
		return "CSV"
	case FileTypeParquet:
		return "PARQUET"
	case FileTypeNpy:
		return "NPY"
	case FileTypeTurtle:
		return "TURTLE"
	default:
		return "UNKNOWN"
	}
}

// BoundFileScanInfo describes the source side of a COPY FROM: the files,
// the expected column list (name + type, per bindExpectedNodeFileColumns /
// bindExpectedRelFileColumns), and whether any target column is SERIAL.
type BoundFileScanInfo struct {
	FileType       FileType
	FilePaths      []string
	ParsingOptions copyopts.Options
	Columns        []BoundColumn
	ContainsSerial bool
}

// BoundColumn is one expected input column: a name plus the LogicalType
// the reader must produce (or widen to) for it.
type BoundColumn struct {
	Name string
	Type types.LogicalType
}

// ExtraBoundCopyRelInfo carries the additional binding state a Rel-table
// COPY FROM needs beyond the file scan: resolved src/dst node schemas and
// the two synthetic key columns.
type ExtraBoundCopyRelInfo struct {
	SrcTableID types.TableId
	DstTableID types.TableId
	SrcKeyCol  string
	DstKeyCol  string
}

// ExtraBoundCopyRdfRelInfo is the RDF-specific analogue: the shared
// resource-node table id and the three (subject, predicate, object) key
// columns the Turtle reader will produce.
type ExtraBoundCopyRdfRelInfo struct {
	ResourceNodeTableID types.TableId
	SubjectKeyCol       string
	PredicateKeyCol     string
	ObjectKeyCol        string
}

// BoundCopyFromInfo is the fully bound COPY FROM, consumed by the Planner.
type BoundCopyFromInfo struct {
	TableID        types.TableId
	FileScan       BoundFileScanInfo
	ContainsSerial bool

	// Exactly one of these is set, or neither for a plain node COPY.
	RelInfo    *ExtraBoundCopyRelInfo
	RdfRelInfo *ExtraBoundCopyRdfRelInfo
}

type BoundCopyFrom struct {
	boundBase
	Info BoundCopyFromInfo
}

func (s *BoundCopyFrom) GetCopyFrom() *BoundCopyFrom { return s }

// BoundCopyToInfo is the fully bound COPY TO.
type BoundCopyToInfo struct {
	FileType    FileType
	Path        string
	ColumnNames []string
	ColumnTypes []types.LogicalType
	Projection  []expr.Expr
	Options     copyopts.Options
}

type BoundCopyTo struct {
	boundBase
	Info BoundCopyToInfo
}

func (s *BoundCopyTo) GetCopyTo() *BoundCopyTo { return s }
