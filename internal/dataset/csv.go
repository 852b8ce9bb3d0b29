package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadCSV reads a CSV or TSV file into a Dataset. The first record is the
// header; short records are padded with missing cells.
func LoadCSV(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Dataset{DTypes: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	maxRows := opt.MaxRows
	var warnings []string
	var records [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		if maxRows > 0 && len(records) >= maxRows {
			warnings = append(warnings, fmt.Sprintf("row limit reached: loaded only the first %d rows", maxRows))
			break
		}
		rowCopy := make([]string, len(rec))
		copy(rowCopy, rec)
		records = append(records, rowCopy)
	}
	return buildDataset(header, records, warnings), nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
