package dataset

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Row is a single record keyed by column name. Cell values are one of
// string, float64, bool, or nil for missing/empty cells.
type Row = map[string]any

// Dataset is an in-memory tabular dataset: ordered columns, a coarse type
// tag per column, and the loaded rows. All rows share the same column
// universe, though any cell may be nil.
type Dataset struct {
	Columns  []string
	DTypes   map[string]string // number|string|bool|date
	Rows     []Row
	Warnings []string
}

// Options controls dataset loading.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, auto-detects from the file extension.
	Delimiter rune
	// SheetName selects an XLSX sheet by name; takes precedence over SheetIndex.
	SheetName string
	// SheetIndex is the 1-based XLSX sheet index. Defaults to the first sheet.
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for loading.
func DefaultOptions() Options {
	return Options{MaxRows: 100000, SheetIndex: 1}
}

// ErrUnsupported indicates the file format is not supported.
type ErrUnsupported struct{ Ext string }

func (e *ErrUnsupported) Error() string {
	return fmt.Sprintf("unsupported file format: %q (expected .csv, .tsv, or .xlsx)", e.Ext)
}

// Load reads a tabular file into a Dataset, dispatching on extension.
func Load(path string, opt Options) (*Dataset, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".tsv":
		return LoadCSV(path, opt)
	case ".xlsx":
		return LoadXLSX(path, opt)
	default:
		return nil, &ErrUnsupported{Ext: ext}
	}
}

// coerceCell converts a raw string cell to a typed scalar: empty → nil,
// numeric → float64, true/false → bool, anything else stays a string.
func coerceCell(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

// buildDataset finalizes headers and raw string records into a Dataset,
// coercing cells and inferring per-column dtypes.
func buildDataset(header []string, records [][]string, warnings []string) *Dataset {
	ncol := len(header)
	cols := make([]string, ncol)
	seen := map[string]bool{}
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if seen[name] {
			warnings = append(warnings, fmt.Sprintf("duplicate column name %q: later column overwrites earlier values", name))
		}
		seen[name] = true
		cols[i] = name
	}

	type counts struct{ num, str, boolean, date int }
	acc := make([]counts, ncol)

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, ncol)
		for i, name := range cols {
			var raw string
			if i < len(rec) {
				raw = rec[i]
			}
			v := coerceCell(raw)
			row[name] = v
			switch tv := v.(type) {
			case float64:
				acc[i].num++
			case bool:
				acc[i].boolean++
			case string:
				if looksLikeDate(tv) {
					acc[i].date++
				} else {
					acc[i].str++
				}
			}
		}
		rows = append(rows, row)
	}

	dtypes := make(map[string]string, ncol)
	for i, name := range cols {
		c := acc[i]
		switch {
		case c.num >= c.str && c.num >= c.boolean && c.num >= c.date && c.num > 0:
			dtypes[name] = "number"
		case c.date >= c.str && c.date >= c.boolean && c.date > 0:
			dtypes[name] = "date"
		case c.boolean >= c.str && c.boolean > 0:
			dtypes[name] = "bool"
		default:
			dtypes[name] = "string"
		}
	}

	return &Dataset{Columns: cols, DTypes: dtypes, Rows: rows, Warnings: warnings}
}

// looksLikeDate matches the common ISO-ish layouts the loader cares about.
func looksLikeDate(s string) bool {
	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006-01-02 15:04:05"} {
		if len(s) == len(layout) {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
	}
	return false
}
