package copypipeline

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oriondb/oriondb/internal/binder"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
)

// csvSource reads one or more RFC-4180-ish CSV files in sequence,
// decoding each cell against the bound column's LogicalType. Multiple
// files are concatenated in path order (COPY FROM accepts a file list,
// not just one path).
type csvSource struct {
	opts    binder.BoundFileScanInfo
	paths   []string
	pathIdx int
	cur     *csv.Reader
	curFile *os.File
	cols    []binder.BoundColumn
}

func newCSVSource(info binder.BoundFileScanInfo) (Source, error) {
	s := &csvSource{opts: info, paths: info.FilePaths, cols: info.Columns}
	if err := s.openNext(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *csvSource) openNext() error {
	if s.curFile != nil {
		s.curFile.Close()
		s.curFile = nil
	}
	if s.pathIdx >= len(s.paths) {
		s.cur = nil
		return nil
	}
	f, err := os.Open(s.paths[s.pathIdx])
	if err != nil {
		return oriorerr.Wrap(oriorerr.IO, "opening CSV file "+s.paths[s.pathIdx], err)
	}
	s.pathIdx++
	s.curFile = f

	r := csv.NewReader(f)
	csvOpts := s.opts.ParsingOptions.Csv
	if csvOpts != nil && csvOpts.Delimiter != "" {
		r.Comma = []rune(csvOpts.Delimiter)[0]
	}
	s.cur = r

	if csvOpts != nil {
		for i := 0; i < csvOpts.Skip; i++ {
			if _, err := r.Read(); err != nil {
				break
			}
		}
		if csvOpts.Header {
			if _, err := r.Read(); err != nil && err != io.EOF {
				return oriorerr.Wrap(oriorerr.IO, "reading CSV header", err)
			}
		}
	}
	return nil
}

func (s *csvSource) Next() (Row, bool, error) {
	for {
		if s.cur == nil {
			return nil, false, nil
		}
		rec, err := s.cur.Read()
		if err == io.EOF {
			if err := s.openNext(); err != nil {
				return nil, false, err
			}
			continue
		}
		if err != nil {
			return nil, false, oriorerr.Wrap(oriorerr.IO, "reading CSV row", err)
		}
		return s.decode(rec)
	}
}

func (s *csvSource) decode(rec []string) (Row, bool, error) {
	row := make(Row, len(s.cols))
	for i, col := range s.cols {
		if i >= len(rec) {
			if col.Type.Kind == types.KindSerial {
				continue // assigned by the writer, not read from the file
			}
			return nil, false, oriorerr.WithCode(oriorerr.ParseData, "ShortRow", "CSV row has fewer fields than expected columns")
		}
		v, err := decodeCSVCell(rec[i], col.Type)
		if err != nil {
			return nil, false, err
		}
		row[col.Name] = v
	}
	return row, true, nil
}

func decodeCSVCell(s string, t types.LogicalType) (any, error) {
	switch t.Kind {
	case types.KindBool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, oriorerr.WithCode(oriorerr.ParseData, "BadBool", "cannot parse "+s+" as BOOL")
		}
		return v, nil
	case types.KindInt64, types.KindInt32, types.KindInt16, types.KindSerial, types.KindInternalId:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, oriorerr.WithCode(oriorerr.ParseData, "BadInt", "cannot parse "+s+" as an integer type")
		}
		return v, nil
	case types.KindDouble, types.KindFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, oriorerr.WithCode(oriorerr.ParseData, "BadFloat", "cannot parse "+s+" as a floating-point type")
		}
		return v, nil
	case types.KindDate:
		v, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, oriorerr.WithCode(oriorerr.ParseData, "BadDate", "cannot parse "+s+" as DATE")
		}
		return v, nil
	case types.KindTimestamp:
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, oriorerr.WithCode(oriorerr.ParseData, "BadTimestamp", "cannot parse "+s+" as TIMESTAMP")
		}
		return v, nil
	case types.KindString, types.KindBlob:
		return s, nil
	default:
		return s, nil
	}
}

func (s *csvSource) Close() error {
	if s.curFile != nil {
		return s.curFile.Close()
	}
	return nil
}
