package copypipeline

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/oriondb/oriondb/internal/binder"
	"github.com/oriondb/oriondb/internal/oriorerr"
)

var npyMagic = []byte{0x93, 'N', 'U', 'M', 'P', 'Y'}

// descrRe and shapeRe pull 'descr', 'shape' out of the NPY header's Python-dict
// literal without a full Python parser — the header is always a flat
// single-level dict of a few known keys.
var (
	descrRe = regexp.MustCompile(`'descr':\s*'([^']+)'`)
	shapeRe = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)
)

// npyColumn is one decoded .npy file: its dtype, row count, and an Arrow
// array holding the column's values — NPY columns arrive pre-typed on
// disk, so apache/arrow's typed builders are a natural fit for the
// "ArrowColumn" LogicalType spec.md §3.1 reserves for them.
type npyColumn struct {
	name string
	arr  arrow.Array
	rows int
}

// npySource reads one .npy file per bound column (COPY ... BY COLUMN) and
// zips them into rows; the binder already checked file-count ==
// non-reserved-property-count and rejects Rel tables (spec.md §4.2).
type npySource struct {
	cols []npyColumn
	rows int
	idx  int
}

func newNpySource(info binder.BoundFileScanInfo) (Source, error) {
	if len(info.FilePaths) != len(info.Columns) {
		return nil, oriorerr.WithCode(oriorerr.Binder, "NpyFileCountMismatch", "number of npy files does not match number of columns")
	}
	pool := memory.NewGoAllocator()
	cols := make([]npyColumn, len(info.Columns))
	rows := -1
	for i, col := range info.Columns {
		c, err := readNpyFile(info.FilePaths[i], col.Name, pool)
		if err != nil {
			return nil, err
		}
		if rows == -1 {
			rows = c.rows
		} else if c.rows != rows {
			return nil, oriorerr.WithCode(oriorerr.ParseData, "RowCountMismatch", "npy files disagree on row count")
		}
		cols[i] = c
	}
	if rows < 0 {
		rows = 0
	}
	return &npySource{cols: cols, rows: rows}, nil
}

func readNpyFile(path, colName string, pool memory.Allocator) (npyColumn, error) {
	f, err := os.Open(path)
	if err != nil {
		return npyColumn{}, oriorerr.Wrap(oriorerr.IO, "opening npy file "+path, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	magic := make([]byte, 6)
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != string(npyMagic) {
		return npyColumn{}, oriorerr.WithCode(oriorerr.ParseData, "BadNpyMagic", path+" is not a valid .npy file")
	}
	verMajor, _ := r.ReadByte()
	_, _ = r.ReadByte() // minor version, unused

	var headerLen int
	if verMajor == 1 {
		var hl uint16
		if err := binary.Read(r, binary.LittleEndian, &hl); err != nil {
			return npyColumn{}, oriorerr.Wrap(oriorerr.IO, "reading npy header length", err)
		}
		headerLen = int(hl)
	} else {
		var hl uint32
		if err := binary.Read(r, binary.LittleEndian, &hl); err != nil {
			return npyColumn{}, oriorerr.Wrap(oriorerr.IO, "reading npy header length", err)
		}
		headerLen = int(hl)
	}
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return npyColumn{}, oriorerr.Wrap(oriorerr.IO, "reading npy header", err)
	}

	descrMatch := descrRe.FindStringSubmatch(string(header))
	shapeMatch := shapeRe.FindStringSubmatch(string(header))
	if descrMatch == nil || shapeMatch == nil {
		return npyColumn{}, oriorerr.WithCode(oriorerr.ParseData, "BadNpyHeader", path+" header is missing descr/shape")
	}
	descr := descrMatch[1]
	nrows, err := parseNpyRowCount(shapeMatch[1])
	if err != nil {
		return npyColumn{}, err
	}

	arr, err := decodeNpyBody(r, descr, nrows, pool)
	if err != nil {
		return npyColumn{}, err
	}
	return npyColumn{name: colName, arr: arr, rows: nrows}, nil
}

func parseNpyRowCount(shape string) (int, error) {
	parts := strings.Split(shape, ",")
	first := strings.TrimSpace(parts[0])
	if first == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(first)
	if err != nil {
		return 0, oriorerr.WithCode(oriorerr.ParseData, "BadNpyShape", "could not parse npy shape "+shape)
	}
	return n, nil
}

// decodeNpyBody reads nrows values in dtype descr into an Arrow array. The
// supported dtypes are the ones the catalog's LogicalTypes can actually
// round-trip as NPY columns: int64/int32/int16, float64/float32, bool.
func decodeNpyBody(r io.Reader, descr string, nrows int, pool memory.Allocator) (arrow.Array, error) {
	switch descr {
	case "<i8":
		b := array.NewInt64Builder(pool)
		defer b.Release()
		for i := 0; i < nrows; i++ {
			var v int64
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, oriorerr.Wrap(oriorerr.IO, "reading npy int64 element", err)
			}
			b.Append(v)
		}
		return b.NewArray(), nil
	case "<i4":
		b := array.NewInt32Builder(pool)
		defer b.Release()
		for i := 0; i < nrows; i++ {
			var v int32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, oriorerr.Wrap(oriorerr.IO, "reading npy int32 element", err)
			}
			b.Append(v)
		}
		return b.NewArray(), nil
	case "<i2":
		b := array.NewInt16Builder(pool)
		defer b.Release()
		for i := 0; i < nrows; i++ {
			var v int16
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, oriorerr.Wrap(oriorerr.IO, "reading npy int16 element", err)
			}
			b.Append(v)
		}
		return b.NewArray(), nil
	case "<f8":
		b := array.NewFloat64Builder(pool)
		defer b.Release()
		for i := 0; i < nrows; i++ {
			var v float64
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, oriorerr.Wrap(oriorerr.IO, "reading npy float64 element", err)
			}
			b.Append(v)
		}
		return b.NewArray(), nil
	case "<f4":
		b := array.NewFloat32Builder(pool)
		defer b.Release()
		for i := 0; i < nrows; i++ {
			var v float32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, oriorerr.Wrap(oriorerr.IO, "reading npy float32 element", err)
			}
			b.Append(v)
		}
		return b.NewArray(), nil
	case "|b1":
		b := array.NewBooleanBuilder(pool)
		defer b.Release()
		for i := 0; i < nrows; i++ {
			var v uint8
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, oriorerr.Wrap(oriorerr.IO, "reading npy bool element", err)
			}
			b.Append(v != 0)
		}
		return b.NewArray(), nil
	default:
		return nil, oriorerr.WithCode(oriorerr.NotImplemented, "unsupported npy dtype "+descr)
	}
}

func (s *npySource) Next() (Row, bool, error) {
	if s.idx >= s.rows {
		return nil, false, nil
	}
	row := make(Row, len(s.cols))
	for _, c := range s.cols {
		row[c.name] = arrowValueAt(c.arr, s.idx)
	}
	s.idx++
	return row, true, nil
}

func arrowValueAt(arr arrow.Array, i int) any {
	switch a := arr.(type) {
	case *array.Int64:
		return a.Value(i)
	case *array.Int32:
		return a.Value(i)
	case *array.Int16:
		return a.Value(i)
	case *array.Float64:
		return a.Value(i)
	case *array.Float32:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	default:
		return nil
	}
}

func (s *npySource) Close() error {
	for _, c := range s.cols {
		c.arr.Release()
	}
	return nil
}
