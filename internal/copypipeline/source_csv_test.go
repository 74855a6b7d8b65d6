package copypipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oriondb/oriondb/internal/binder"
	"github.com/oriondb/oriondb/internal/copyopts"
	"github.com/oriondb/oriondb/internal/types"
)

func writeTempCSV(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCSVSourceDecodesTypedColumns(t *testing.T) {
	path := writeTempCSV(t, "1,Alice,true\n2,Bob,false\n")
	info := binder.BoundFileScanInfo{
		FileType:  binder.FileTypeCSV,
		FilePaths: []string{path},
		Columns: []binder.BoundColumn{
			{Name: "id", Type: types.Int64()},
			{Name: "name", Type: types.String()},
			{Name: "active", Type: types.Bool()},
		},
	}
	src, err := OpenSource(info)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	defer src.Close()

	row, ok, err := src.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", row, ok, err)
	}
	if row["id"] != int64(1) || row["name"] != "Alice" || row["active"] != true {
		t.Fatalf("row = %+v", row)
	}

	row2, ok, err := src.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", row2, ok, err)
	}
	if row2["id"] != int64(2) || row2["active"] != false {
		t.Fatalf("row2 = %+v", row2)
	}

	_, ok, err = src.Next()
	if err != nil || ok {
		t.Fatalf("expected EOF after 2 rows, got ok=%v err=%v", ok, err)
	}
}

func TestCSVSourceSkipsMissingSerialColumn(t *testing.T) {
	path := writeTempCSV(t, "Alice\n")
	info := binder.BoundFileScanInfo{
		FileType:  binder.FileTypeCSV,
		FilePaths: []string{path},
		Columns: []binder.BoundColumn{
			{Name: "id", Type: types.Serial()},
			{Name: "name", Type: types.String()},
		},
	}
	src, err := OpenSource(info)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	defer src.Close()
	row, ok, err := src.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", row, ok, err)
	}
	if _, present := row["id"]; present {
		t.Fatalf("Serial column should not appear in the decoded row, got %+v", row)
	}
}

func TestCSVSourceRejectsShortRow(t *testing.T) {
	path := writeTempCSV(t, "1\n")
	info := binder.BoundFileScanInfo{
		FileType:  binder.FileTypeCSV,
		FilePaths: []string{path},
		Columns: []binder.BoundColumn{
			{Name: "id", Type: types.Int64()},
			{Name: "name", Type: types.String()},
		},
	}
	src, err := OpenSource(info)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	defer src.Close()
	if _, _, err := src.Next(); err == nil {
		t.Fatalf("expected ShortRow ParseData error")
	}
}

func TestCSVSourceHonorsHeaderAndDelimiterOptions(t *testing.T) {
	path := writeTempCSV(t, "id;name\n1;Alice\n")
	info := binder.BoundFileScanInfo{
		FileType:  binder.FileTypeCSV,
		FilePaths: []string{path},
		Columns: []binder.BoundColumn{
			{Name: "id", Type: types.Int64()},
			{Name: "name", Type: types.String()},
		},
		ParsingOptions: copyopts.Options{Csv: &copyopts.CsvOptions{Delimiter: ";", Header: true}},
	}
	src, err := OpenSource(info)
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	defer src.Close()
	row, ok, err := src.Next()
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", row, ok, err)
	}
	if row["id"] != int64(1) || row["name"] != "Alice" {
		t.Fatalf("row = %+v, header line should have been skipped", row)
	}
}
