package binder

import (
	"path/filepath"
	"strings"

	"github.com/oriondb/oriondb/internal/ast"
	"github.com/oriondb/oriondb/internal/catalog"
	"github.com/oriondb/oriondb/internal/copyopts"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
)

// Synthetic column names the file-scan columns carry; mirrors
// Property::OFFSET_NAME / REL_FROM_PROPERTY_NAME / REL_TO_PROPERTY_NAME and
// the RDF _SUBJECT/_PREDICATE/_OBJECT constants from bind_copy.cpp.
const (
	colOffset      = "_OFFSET"
	colRelFrom     = "_FROM"
	colRelTo       = "_TO"
	colRdfSubject  = "_SUBJECT"
	colRdfPredicate = "_PREDICATE"
	colRdfObject   = "_OBJECT"
)

// inferFileType infers the file type from a path's extension, never from
// spoken grammar (spec §6.1).
func inferFileType(path string) (FileType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FileTypeCSV, nil
	case ".parquet":
		return FileTypeParquet, nil
	case ".npy":
		return FileTypeNpy, nil
	case ".ttl", ".turtle":
		return FileTypeTurtle, nil
	default:
		return 0, oriorerr.WithCode(oriorerr.Binder, "UnknownFileType", "cannot infer file type from path "+path)
	}
}

func skipPropertyInFile(p types.Property) bool {
	return p.DType.Kind == types.KindSerial || types.IsReservedPropertyName(p.Name)
}

// bindExpectedNodeFileColumns mirrors Binder::bindExpectedNodeFileColumns.
func bindExpectedNodeFileColumns(props []types.Property, ft FileType) []BoundColumn {
	var out []BoundColumn
	switch ft {
	case FileTypeTurtle:
		out = []BoundColumn{
			{Name: colRdfSubject, Type: types.String()},
			{Name: colRdfPredicate, Type: types.String()},
			{Name: colRdfObject, Type: types.String()},
		}
	case FileTypeCSV:
		for _, p := range props {
			if skipPropertyInFile(p) {
				continue
			}
			out = append(out, BoundColumn{Name: p.Name, Type: p.DType})
		}
	case FileTypeNpy, FileTypeParquet:
		for _, p := range props {
			if skipPropertyInFile(p) {
				continue
			}
			out = append(out, BoundColumn{Name: p.Name, Type: types.ArrowColumn()})
		}
	}
	return out
}

// bindExpectedRelFileColumns mirrors Binder::bindExpectedRelFileColumns:
// prepend two synthetic key columns, then non-reserved property columns.
func bindExpectedRelFileColumns(props []types.Property, ft FileType) []BoundColumn {
	var out []BoundColumn
	switch ft {
	case FileTypeTurtle:
		out = []BoundColumn{
			{Name: colRdfSubject, Type: types.String()},
			{Name: colRdfPredicate, Type: types.String()},
			{Name: colRdfObject, Type: types.String()},
		}
	case FileTypeCSV, FileTypeParquet, FileTypeNpy:
		out = append(out,
			BoundColumn{Name: colRelFrom, Type: types.ArrowColumn()},
			BoundColumn{Name: colRelTo, Type: types.ArrowColumn()},
		)
		for _, p := range props {
			if skipPropertyInFile(p) {
				continue
			}
			out = append(out, BoundColumn{Name: p.Name, Type: types.ArrowColumn()})
		}
	}
	return out
}

func containsSerial(props []types.Property) bool {
	for _, p := range props {
		if p.DType.Kind == types.KindSerial {
			return true
		}
	}
	return false
}

// bindParsingOptions validates the raw option bag for the inferred file
// type, enforcing the closed per-file-type enum (spec Design Notes).
func bindParsingOptions(ft FileType, raw map[string]string) (copyopts.Options, error) {
	switch ft {
	case FileTypeCSV:
		csv, err := copyopts.ParseCsv(raw)
		if err != nil {
			return copyopts.Options{}, err
		}
		return copyopts.Options{Csv: &csv}, nil
	case FileTypeParquet:
		if err := copyopts.ValidateNoOptions(raw, "Parquet"); err != nil {
			return copyopts.Options{}, err
		}
		return copyopts.Options{Parquet: &copyopts.ParquetOptions{}}, nil
	case FileTypeNpy:
		if err := copyopts.ValidateNoOptions(raw, "NPY"); err != nil {
			return copyopts.Options{}, err
		}
		return copyopts.Options{}, nil
	case FileTypeTurtle:
		if err := copyopts.ValidateNoOptions(raw, "Turtle"); err != nil {
			return copyopts.Options{}, err
		}
		return copyopts.Options{}, nil
	default:
		return copyopts.Options{}, oriorerr.New(oriorerr.NotImplemented, "unknown file type")
	}
}

// bindCopyFrom implements Binder::bindCopyFromClause end to end.
func (b *Binder) bindCopyFrom(s *ast.CopyFromStmt) (BoundStatement, error) {
	tableID, schema, err := b.validateNodeOrRelTableExists(s.TableName)
	if err != nil {
		return nil, err
	}
	if len(s.Paths) == 0 {
		return nil, oriorerr.New(oriorerr.NotImplemented, "COPY FROM (<regular-query>) sub-query sources are not implemented")
	}

	ft, err := inferFileType(s.Paths[0])
	if err != nil {
		return nil, err
	}
	for _, p := range s.Paths[1:] {
		otherFt, err := inferFileType(p)
		if err != nil {
			return nil, err
		}
		if otherFt != ft {
			return nil, oriorerr.WithCode(oriorerr.Binder, "MixedFileTypes", "all COPY FROM files must share one file type")
		}
	}

	if ft == FileTypeNpy && !s.ByColumn {
		return nil, oriorerr.WithCode(oriorerr.Binder, "NpyRequiresByColumn", "NPY files must be loaded BY COLUMN")
	}
	if ft != FileTypeNpy && s.ByColumn {
		return nil, oriorerr.WithCode(oriorerr.Binder, "ByColumnNotAllowed", "BY COLUMN is only legal for NPY files")
	}

	opts, err := bindParsingOptions(ft, s.Options)
	if err != nil {
		return nil, err
	}

	nonReserved := countNonReserved(schema.Properties())
	if ft == FileTypeNpy {
		if schema.GetRel() != nil {
			return nil, oriorerr.WithCode(oriorerr.Binder, "NpyNotForRelTables", "NPY COPY FROM is not supported for Rel tables")
		}
		if len(s.Paths) != nonReserved {
			return nil, oriorerr.WithCode(oriorerr.Binder, "NpyFileCountMismatch",
				"number of npy files does not equal number of non-reserved properties")
		}
	}

	cs := containsSerial(schema.Properties())

	switch schema.TableType() {
	case types.TableTypeNode:
		if ft == FileTypeTurtle {
			return nil, oriorerr.New(oriorerr.NotImplemented, "RDF node ingest is bound through CREATE RDF GRAPH's COPY plan, not a direct Turtle COPY of a Node table")
		}
		cols := bindExpectedNodeFileColumns(schema.Properties(), ft)
		return &BoundCopyFrom{Info: BoundCopyFromInfo{
			TableID: tableID,
			FileScan: BoundFileScanInfo{
				FileType:       ft,
				FilePaths:      s.Paths,
				ParsingOptions: opts,
				Columns:        cols,
				ContainsSerial: cs,
			},
			ContainsSerial: cs,
		}}, nil

	case types.TableTypeRel:
		rel := schema.GetRel()
		cols := bindExpectedRelFileColumns(schema.Properties(), ft)
		info := BoundCopyFromInfo{
			TableID: tableID,
			FileScan: BoundFileScanInfo{
				FileType:       ft,
				FilePaths:      s.Paths,
				ParsingOptions: opts,
				Columns:        cols,
				ContainsSerial: cs,
			},
			ContainsSerial: cs,
		}
		if ft == FileTypeTurtle {
			if !isRdfTripleRelTable(b.snap, tableID) {
				return nil, oriorerr.WithCode(oriorerr.Binder, "BadRef", "Turtle COPY FROM must target one of an RDF graph's triple rel tables")
			}
			info.RdfRelInfo = &ExtraBoundCopyRdfRelInfo{
				ResourceNodeTableID: rel.SrcTable(),
				SubjectKeyCol:       colRdfSubject,
				PredicateKeyCol:     colRdfPredicate,
				ObjectKeyCol:        colRdfObject,
			}
		} else {
			info.RelInfo = &ExtraBoundCopyRelInfo{
				SrcTableID: rel.SrcTable(),
				DstTableID: rel.DstTable(),
				SrcKeyCol:  colRelFrom,
				DstKeyCol:  colRelTo,
			}
		}
		return &BoundCopyFrom{Info: info}, nil

	default:
		return nil, oriorerr.New(oriorerr.NotImplemented, "COPY FROM is only implemented for Node and Rel tables")
	}
}

// isRdfTripleRelTable reports whether id is one of some RdfGraphSchema's
// two triple rel tables (N_rt or N_lt). N_rt has src==dst (resource to
// resource); N_lt does not (resource subject to literal object, per
// spec.md §4.5) — so graph ownership, not a src==dst shape check, is the
// correct membership test.
func isRdfTripleRelTable(snap *catalog.Snapshot, id types.TableId) bool {
	for _, t := range snap.ListTables() {
		g := t.GetRdf()
		if g == nil {
			continue
		}
		if g.ResourceTripleRel() == id || g.LiteralTripleRel() == id {
			return true
		}
	}
	return false
}

func countNonReserved(props []types.Property) int {
	n := 0
	for _, p := range props {
		if !skipPropertyInFile(p) {
			n++
		}
	}
	return n
}

// bindCopyTo implements Binder::bindCopyToClause: bind the projection,
// restrict to CSV or Parquet, allow parsing options only for CSV.
func (b *Binder) bindCopyTo(s *ast.CopyToStmt) (BoundStatement, error) {
	ft, err := inferFileType(s.Path)
	if err != nil {
		return nil, err
	}
	if ft != FileTypeCSV && ft != FileTypeParquet {
		return nil, oriorerr.WithCode(oriorerr.Binder, "UnsupportedFileType", "COPY TO currently only supports csv and parquet files")
	}

	names, projExprs, err := b.bindCopyToProjection(s.Query)
	if err != nil {
		return nil, err
	}
	colTypes := make([]types.LogicalType, len(projExprs))
	for i, e := range projExprs {
		colTypes[i] = e.Type
	}

	var opts copyopts.Options
	if ft == FileTypeCSV {
		opts, err = bindParsingOptions(ft, s.Options)
	} else {
		err = copyopts.ValidateNoOptions(s.Options, "Parquet")
	}
	if err != nil {
		return nil, err
	}

	return &BoundCopyTo{Info: BoundCopyToInfo{
		FileType:    ft,
		Path:        s.Path,
		ColumnNames: names,
		ColumnTypes: colTypes,
		Projection:  projExprs,
		Options:     opts,
	}}, nil
}
