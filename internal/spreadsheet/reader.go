package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"crime-dashboard/internal/utils"
)

var (
	ErrEmptyWorkbook  = errors.New("workbook has no sheets")
	ErrMissingColumns = errors.New("missing required columns")
)

// Sheet is the first worksheet of a workbook, decoded by header.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []Row
}

// Row maps header text to the cell value. It never leaves this package's
// parse functions; callers get typed inputs instead.
type Row struct {
	Index  int
	values map[string]string
}

func (r Row) Get(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := r.values[k]; ok {
			return v, true
		}
	}
	return "", false
}

// ReadFirstSheet decodes an xlsx stream and returns its first sheet.
// Header cells are whitespace-collapsed; blank rows are skipped.
func ReadFirstSheet(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	sheet := &Sheet{Name: sheets[0]}
	if len(rows) == 0 {
		return sheet, nil
	}

	for _, h := range rows[0] {
		sheet.Headers = append(sheet.Headers, utils.CollapseSpaces(h))
	}

	for i, cells := range rows[1:] {
		values := make(map[string]string, len(sheet.Headers))
		blank := true
		for j, header := range sheet.Headers {
			if header == "" || j >= len(cells) {
				continue
			}
			values[header] = cells[j]
			if strings.TrimSpace(cells[j]) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		// +2: one for the header row, one for 1-based sheet numbering
		sheet.Rows = append(sheet.Rows, Row{Index: i + 2, values: values})
	}

	return sheet, nil
}

// HasColumn reports whether any of the given header spellings is present.
func (s *Sheet) HasColumn(names ...string) bool {
	for _, h := range s.Headers {
		for _, n := range names {
			if h == n {
				return true
			}
		}
	}
	return false
}
