package clientapp

import (
	"github.com/phillip-england/hrms/internal/forms"
	"github.com/phillip-england/hrms/internal/hrapi"
)

type pageData struct {
	Title          string
	Nav            string
	Path           string
	Theme          string
	CSRF           string
	TodayLabel     string
	SuccessMessage string
	ToastError     string
	Error          string
	Warning        string

	Dashboard dashboardView

	Employees       []employeeRow
	EmployeeTotal   int
	Loaded          bool
	Departments     []string
	EmployeeForm    forms.EmployeeForm
	AttendanceForm  forms.AttendanceForm
	FormErrors      forms.Errors
	FormError       string
	ModalOpen       bool
	ImportOpen      bool
	DeleteTarget    *employeeRow
	EmployeeOptions []hrapi.Employee
	CanMark         bool

	Records        []attendanceRow
	RecordTotal    int
	PresentCount   int
	AbsentCount    int
	FilterDate     string
	FilterEmployee string
	ListHeading    string
	EmptyTitle     string
	EmptyMessage   string
	Today          string

	EmployeeID string
}

type employeeRow struct {
	hrapi.Employee
	Initials string
}

type attendanceRow struct {
	hrapi.AttendanceRecord
	Initials string
	Present  bool
}

type summaryRow struct {
	hrapi.EmployeeSummary
	Initials  string
	Rate      int
	HasRate   bool
	RateClass string
}

type dashboardView struct {
	TotalEmployees int
	PresentToday   int
	AbsentToday    int
	Rows           []summaryRow
}

func employeeRows(employees []hrapi.Employee) []employeeRow {
	rows := make([]employeeRow, 0, len(employees))
	for _, emp := range employees {
		rows = append(rows, employeeRow{Employee: emp, Initials: initials(emp.FullName)})
	}
	return rows
}

func attendanceRows(records []hrapi.AttendanceRecord) (rows []attendanceRow, present, absent int) {
	rows = make([]attendanceRow, 0, len(records))
	for _, rec := range records {
		isPresent := rec.Status == hrapi.StatusPresent
		if isPresent {
			present++
		} else {
			absent++
		}
		rows = append(rows, attendanceRow{
			AttendanceRecord: rec,
			Initials:         initials(rec.EmployeeName),
			Present:          isPresent,
		})
	}
	return rows, present, absent
}

func summaryRows(summaries []hrapi.EmployeeSummary) []summaryRow {
	rows := make([]summaryRow, 0, len(summaries))
	for _, sum := range summaries {
		row := summaryRow{EmployeeSummary: sum, Initials: initials(sum.FullName)}
		row.Rate, row.HasRate = sum.Rate()
		if row.HasRate {
			row.RateClass = rateClass(row.Rate)
		}
		rows = append(rows, row)
	}
	return rows
}
