package copypipeline

import (
	"encoding/json"
	"fmt"

	"github.com/oriondb/oriondb/internal/binder"
	"github.com/oriondb/oriondb/internal/copyopts"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetSource reads rows from one or more Parquet files column-mapped
// by name to the bound file-scan columns, widening Int32 → Int64 per
// spec.md §6.2. Files are self-describing, so the reader needs no schema
// handed in — opening with a nil target object puts the reader in its
// generic map-per-row mode.
type parquetSource struct {
	paths   []string
	pathIdx int
	cur     *reader.ParquetReader
	curFile *local.LocalFile
	rowIdx  int64
	rows    int64
	cols    []binder.BoundColumn
}

func newParquetSource(info binder.BoundFileScanInfo) (Source, error) {
	s := &parquetSource{paths: info.FilePaths, cols: info.Columns}
	if err := s.openNext(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *parquetSource) openNext() error {
	if s.cur != nil {
		s.cur.ReadStop()
	}
	if s.curFile != nil {
		s.curFile.Close()
		s.curFile = nil
	}
	if s.pathIdx >= len(s.paths) {
		s.cur = nil
		return nil
	}
	fr, err := local.NewLocalFileReader(s.paths[s.pathIdx])
	if err != nil {
		return oriorerr.Wrap(oriorerr.IO, "opening Parquet file "+s.paths[s.pathIdx], err)
	}
	s.pathIdx++

	pr, err := reader.NewParquetReader(fr, nil, 4)
	if err != nil {
		return oriorerr.Wrap(oriorerr.IO, "reading Parquet schema", err)
	}
	s.cur = pr
	s.rowIdx = 0
	s.rows = pr.GetNumRows()
	return nil
}

func (s *parquetSource) Next() (Row, bool, error) {
	for {
		if s.cur == nil {
			return nil, false, nil
		}
		if s.rowIdx >= s.rows {
			if err := s.openNext(); err != nil {
				return nil, false, err
			}
			continue
		}
		recs, err := s.cur.ReadByNumber(1)
		if err != nil {
			return nil, false, oriorerr.Wrap(oriorerr.IO, "reading Parquet row", err)
		}
		s.rowIdx++
		if len(recs) == 0 {
			continue
		}
		m, ok := recs[0].(map[string]interface{})
		if !ok {
			return nil, false, oriorerr.WithCode(oriorerr.ParseData, "BadParquetRow", "row did not decode to a named-column map")
		}
		return s.mapColumns(m)
	}
}

func (s *parquetSource) mapColumns(m map[string]interface{}) (Row, bool, error) {
	row := make(Row, len(s.cols))
	for _, col := range s.cols {
		v, ok := m[col.Name]
		if !ok {
			if col.Type.Kind == types.KindSerial {
				continue
			}
			return nil, false, oriorerr.WithCode(oriorerr.ParseData, "MissingColumn", "Parquet file has no column named "+col.Name)
		}
		row[col.Name] = widenParquetValue(v, col.Type)
	}
	return row, true, nil
}

// widenParquetValue applies the Int32 → Int64 widening spec.md §6.2 calls
// out explicitly; every other type passes through unchanged.
func widenParquetValue(v interface{}, t types.LogicalType) any {
	if t.Kind == types.KindInt64 {
		switch n := v.(type) {
		case int32:
			return int64(n)
		case int:
			return int64(n)
		}
	}
	return v
}

func (s *parquetSource) Close() error {
	if s.cur != nil {
		s.cur.ReadStop()
	}
	if s.curFile != nil {
		return s.curFile.Close()
	}
	return nil
}

// WriteParquet implements the COPY TO Parquet writer side: rows already
// projected by the planner are appended column-by-column through a
// JSON-schema-defined writer, since the projection's column set is only
// known at bind time, not as a compiled Go struct.
func WriteParquet(path string, names []string, colTypes []types.LogicalType, opts copyopts.Options, rows []Row) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return oriorerr.Wrap(oriorerr.IO, "creating Parquet output file", err)
	}
	defer fw.Close()

	schema := parquetJSONSchema(names, colTypes)
	pw, err := writer.NewJSONWriter(schema, fw, 4)
	if err != nil {
		return oriorerr.Wrap(oriorerr.IO, "building Parquet writer schema", err)
	}

	for _, row := range rows {
		rec := make(map[string]interface{}, len(names))
		for _, n := range names {
			rec[n] = row[n]
		}
		b, _ := json.Marshal(rec)
		if err := pw.Write(string(b)); err != nil {
			return oriorerr.Wrap(oriorerr.IO, "writing Parquet row", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return oriorerr.Wrap(oriorerr.IO, "finalizing Parquet file", err)
	}
	return nil
}

func parquetJSONSchema(names []string, colTypes []types.LogicalType) string {
	fields := ""
	for i, n := range names {
		if i > 0 {
			fields += ","
		}
		fields += fmt.Sprintf(`{"Tag":"name=%s, type=%s, repetitiontype=OPTIONAL"}`, n, parquetTypeTag(colTypes[i]))
	}
	return fmt.Sprintf(`{"Tag":"name=parquet-go-root","Fields":[%s]}`, fields)
}

func parquetTypeTag(t types.LogicalType) string {
	switch t.Kind {
	case types.KindBool:
		return "BOOLEAN"
	case types.KindInt32, types.KindInt16:
		return "INT32"
	case types.KindInt64, types.KindInternalId, types.KindSerial:
		return "INT64"
	case types.KindDouble, types.KindFloat:
		return "DOUBLE"
	default:
		return "BYTE_ARRAY, convertedtype=UTF8"
	}
}
