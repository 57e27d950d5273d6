// Package sheets reads employee rosters from spreadsheets and writes directory and
// attendance exports.
package sheets

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/phillip-england/hrms/internal/forms"
	"github.com/xuri/excelize/v2"
)

const maxRows = 100000

// ReadRows returns the cells of the only worksheet in an .xls or .xlsx upload.
func ReadRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, err
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("no worksheet found")
		}
		if workbook.NumSheets() > 1 {
			return nil, fmt.Errorf("multiple worksheets found; please upload a file with a single sheet")
		}
		rows := workbook.ReadAllCells(maxRows)
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	case ".xlsx":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("worksheet is empty")
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q: upload an .xlsx or .xls file", filepath.Ext(filename))
	}
}

// RosterRow is one employee row of an import, numbered as in the spreadsheet.
type RosterRow struct {
	Line int
	Form forms.EmployeeForm
}

// ParseRoster maps rows to employee forms using the header row. Blank rows are skipped.
func ParseRoster(rows [][]string) ([]RosterRow, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}
	headerIndex := map[string]int{}
	for i, header := range rows[0] {
		headerIndex[normalizeHeader(header)] = i
	}

	columns := map[string]int{}
	for _, col := range []string{"employee id", "full name", "email", "department"} {
		idx, ok := headerIndex[col]
		if !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
		columns[col] = idx
	}

	var out []RosterRow
	for i, row := range rows[1:] {
		form := forms.EmployeeForm{
			EmployeeID: cellValue(row, columns["employee id"]),
			FullName:   cellValue(row, columns["full name"]),
			Email:      cellValue(row, columns["email"]),
			Department: cellValue(row, columns["department"]),
		}
		if form == (forms.EmployeeForm{}) {
			continue
		}
		out = append(out, RosterRow{Line: i + 2, Form: form})
	}
	return out, nil
}

func normalizeHeader(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	header = strings.ReplaceAll(header, "_", " ")
	return strings.Join(strings.Fields(header), " ")
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
