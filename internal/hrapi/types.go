package hrapi

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// Departments is the fixed list offered by the employee form.
var Departments = []string{
	"Engineering",
	"Design",
	"Product",
	"Marketing",
	"Sales",
	"HR",
	"Finance",
	"Operations",
	"Customer Support",
	"Legal",
}

type Employee struct {
	ID               int64  `json:"id"`
	EmployeeID       string `json:"employee_id"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Department       string `json:"department"`
	CreatedAt        string `json:"created_at"`
	TotalPresentDays int    `json:"total_present_days"`
}

type EmployeeInput struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

type EmployeeList struct {
	Total     int        `json:"total"`
	Employees []Employee `json:"employees"`
}

type AttendanceRecord struct {
	ID               int64  `json:"id"`
	EmployeeRef      int64  `json:"employee_id"`
	EmployeeStringID string `json:"employee_string_id"`
	EmployeeName     string `json:"employee_name"`
	Date             string `json:"date"`
	Status           string `json:"status"`
}

type AttendanceInput struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

type AttendanceList struct {
	Total   int                `json:"total"`
	Records []AttendanceRecord `json:"records"`
}

type EmployeeSummary struct {
	EmployeeID   string `json:"employee_id"`
	FullName     string `json:"full_name"`
	Department   string `json:"department"`
	TotalPresent int    `json:"total_present"`
	TotalAbsent  int    `json:"total_absent"`
}

type DashboardSummary struct {
	TotalEmployees    int               `json:"total_employees"`
	TotalPresentToday int               `json:"total_present_today"`
	TotalAbsentToday  int               `json:"total_absent_today"`
	EmployeesSummary  []EmployeeSummary `json:"employees_summary"`
}
