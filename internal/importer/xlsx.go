// Package importer turns uploaded spreadsheets into validated import
// candidates. excelize handles the binary format; this package owns header
// alias resolution and required-field validation.
package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawRow is one spreadsheet row keyed by its column headers, with header
// keys normalized to lower case.
type RawRow map[string]string

// ParseWorkbook reads the first sheet of an .xlsx/.xls workbook. The first
// row is taken as headers; every following non-empty row becomes a RawRow.
func ParseWorkbook(r io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	if len(rows) == 0 {
		return []RawRow{}, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]RawRow, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(RawRow, len(headers))
		empty := true
		for i, header := range headers {
			if header == "" {
				continue
			}
			value := ""
			if i < len(cells) {
				value = strings.TrimSpace(cells[i])
			}
			if value != "" {
				empty = false
			}
			row[header] = value
		}
		if !empty {
			out = append(out, row)
		}
	}

	return out, nil
}
