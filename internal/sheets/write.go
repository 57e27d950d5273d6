package sheets

import (
	"fmt"
	"io"

	"github.com/phillip-england/hrms/internal/hrapi"
	"github.com/xuri/excelize/v2"
)

const (
	employeesSheet  = "Employees"
	attendanceSheet = "Attendance"
)

func WriteEmployees(w io.Writer, employees []hrapi.Employee) error {
	rows := make([][]any, 0, len(employees))
	for _, emp := range employees {
		rows = append(rows, []any{emp.EmployeeID, emp.FullName, emp.Email, emp.Department, emp.TotalPresentDays, emp.CreatedAt})
	}
	return writeSheet(w, employeesSheet,
		[]any{"Employee ID", "Full Name", "Email", "Department", "Present Days", "Joined"},
		[]float64{14, 28, 32, 20, 14, 26},
		rows,
	)
}

func WriteAttendance(w io.Writer, records []hrapi.AttendanceRecord) error {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{rec.EmployeeStringID, rec.EmployeeName, rec.Date, rec.Status})
	}
	return writeSheet(w, attendanceSheet,
		[]any{"Employee ID", "Employee", "Date", "Status"},
		[]float64{14, 28, 14, 12},
		rows,
	)
}

func writeSheet(w io.Writer, name string, header []any, widths []float64, rows [][]any) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName(file.GetSheetName(0), name); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	headerStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := file.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(name, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := file.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(name, cell, &rows[i]); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := file.SetPanes(name, &excelize.Panes{Freeze: true, Split: false, XSplit: 0, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	_, err = file.WriteTo(w)
	return err
}
