package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads one sheet of an .xlsx workbook into a Dataset. The sheet is
// selected by opt.SheetName if set, else by the 1-based opt.SheetIndex, else
// the first sheet. The first row is the header.
func LoadXLSX(path string, opt Options) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Dataset{DTypes: map[string]string{}}, nil
	}
	sheet, err := resolveSheet(sheets, opt)
	if err != nil {
		return nil, err
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(raw) == 0 {
		return &Dataset{DTypes: map[string]string{}}, nil
	}

	header := raw[0]
	records := raw[1:]
	var warnings []string
	if opt.MaxRows > 0 && len(records) > opt.MaxRows {
		records = records[:opt.MaxRows]
		warnings = append(warnings, fmt.Sprintf("row limit reached: loaded only the first %d rows", opt.MaxRows))
	}
	return buildDataset(header, records, warnings), nil
}

func resolveSheet(sheets []string, opt Options) (string, error) {
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, opt.SheetName) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", opt.SheetName, strings.Join(sheets, ", "))
	}
	idx := opt.SheetIndex
	if idx <= 0 {
		idx = 1
	}
	if idx > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range (workbook has %d sheets)", idx, len(sheets))
	}
	return sheets[idx-1], nil
}
