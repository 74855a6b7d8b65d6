// Package copyopts implements the closed parsing-option bag for COPY
// statements: "the parser validates option keys against a closed enum at
// bind time; unknown keys raise Binder{UnknownOption}" (spec.md Design
// Notes). Options are a variant keyed by file type rather than a dynamic
// map, so each file type's legal keys are enumerated once.
package copyopts

import (
	"github.com/oriondb/oriondb/internal/oriorerr"
)

// CsvOptions are the recognized CSV parsing options.
type CsvOptions struct {
	Delimiter string
	Quote     string
	Escape    string
	Header    bool
	Skip      int
	ListBegin string
	ListEnd   string
}

// ParquetOptions is currently empty: Parquet has no parsing options (spec
// §9 Open Question 1 resolves non-CSV COPY TO options as a bind-time
// rejection, which this empty struct enforces by construction).
type ParquetOptions struct{}

// Options is the file-type-tagged option variant, matching the source's
// `variant {Csv(CsvOpts), Parquet(ParquetOpts), Npy, Turtle}`: at most one
// of Csv / Parquet is set, and for Npy and Turtle neither is.
type Options struct {
	Csv     *CsvOptions
	Parquet *ParquetOptions
}

// csvKeys is the closed set of option keys legal for CSV.
var csvKeys = map[string]struct{}{
	"delimiter":   {},
	"quote":       {},
	"escape":      {},
	"header":      {},
	"skip":        {},
	"list_begin":  {},
	"list_end":    {},
}

// ParseCsv validates raw against the closed CSV option-key enum and builds
// a CsvOptions, defaulting unset fields to RFC-4180-ish conventions.
func ParseCsv(raw map[string]string) (CsvOptions, error) {
	opts := CsvOptions{Delimiter: ",", Quote: `"`, Escape: `"`, Header: false}
	for k, v := range raw {
		if _, ok := csvKeys[k]; !ok {
			return CsvOptions{}, oriorerr.WithCode(oriorerr.Binder, "UnknownOption", "unrecognized CSV option "+k)
		}
		switch k {
		case "delimiter":
			opts.Delimiter = v
		case "quote":
			opts.Quote = v
		case "escape":
			opts.Escape = v
		case "header":
			opts.Header = v == "true" || v == "1"
		case "skip":
			opts.Skip = parseIntOrZero(v)
		case "list_begin":
			opts.ListBegin = v
		case "list_end":
			opts.ListEnd = v
		}
	}
	return opts, nil
}

// ValidateNoOptions rejects every key for file types that carry no parsing
// options at all (Parquet, NPY, Turtle); this is the "reject" resolution
// of the COPY TO options Open Question.
func ValidateNoOptions(raw map[string]string, fileTypeName string) error {
	for k := range raw {
		return oriorerr.WithCode(oriorerr.Binder, "UnknownOption",
			"option "+k+" is not allowed for "+fileTypeName+" files")
	}
	return nil
}

func parseIntOrZero(s string) int {
	n := 0
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n
}
