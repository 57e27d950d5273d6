package clientapp

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/phillip-england/hrms/internal/forms"
	"github.com/phillip-england/hrms/internal/hrapi"
	"github.com/phillip-england/hrms/internal/lifecycle"
	"github.com/phillip-england/hrms/internal/sheets"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type attendanceFilter struct {
	Date     string
	Employee string
}

func filterFromQuery(values url.Values) attendanceFilter {
	return attendanceFilter{
		Date:     strings.TrimSpace(values.Get("date")),
		Employee: strings.TrimSpace(values.Get("employee")),
	}
}

func (f attendanceFilter) params() url.Values {
	params := url.Values{}
	if f.Date != "" {
		params.Set("date", f.Date)
	}
	if f.Employee != "" {
		params.Set("employee", f.Employee)
	}
	return params
}

// apply narrows records to one employee. The date filter is applied by the backend.
func (f attendanceFilter) apply(records []hrapi.AttendanceRecord) []hrapi.AttendanceRecord {
	if f.Employee == "" {
		return records
	}
	out := make([]hrapi.AttendanceRecord, 0, len(records))
	for _, rec := range records {
		if rec.EmployeeStringID == f.Employee {
			out = append(out, rec)
		}
	}
	return out
}

func (s *server) attendanceRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.attendancePage(w, r, filterFromQuery(r.URL.Query()), pageData{
			ModalOpen:      r.URL.Query().Get("modal") == "mark",
			AttendanceForm: s.initialAttendanceForm(),
		}, http.StatusOK)
	case http.MethodPost:
		s.markAttendance(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) initialAttendanceForm() forms.AttendanceForm {
	return forms.AttendanceForm{Date: s.validator.Today(), Status: hrapi.StatusPresent}
}

// attendancePage fetches the employee options and the records for the date filter
// concurrently. Each read keeps its own error so one failing never hides the other.
func (s *server) attendancePage(w http.ResponseWriter, r *http.Request, filter attendanceFilter, data pageData, status int) {
	employees := lifecycle.NewQuery(func(ctx context.Context, _ struct{}) (hrapi.EmployeeList, error) {
		return s.api.Employees.List(ctx)
	}, true)
	records := lifecycle.NewQuery(func(ctx context.Context, date string) (hrapi.AttendanceList, error) {
		return s.api.Attendance.List(ctx, date)
	}, true)

	var (
		g          errgroup.Group
		empState   lifecycle.State[hrapi.EmployeeList]
		recordsSet lifecycle.State[hrapi.AttendanceList]
	)
	g.Go(func() error {
		empState = employees.Sync(r.Context(), struct{}{})
		return nil
	})
	g.Go(func() error {
		recordsSet = records.Sync(r.Context(), filter.Date)
		return nil
	})
	_ = g.Wait()

	data.Title = "Attendance"
	data.Nav = "attendance"
	data.Today = s.validator.Today()
	data.FilterDate = filter.Date
	data.FilterEmployee = filter.Employee
	data.Loaded = recordsSet.Fetched
	if data.FormErrors == nil {
		data.FormErrors = forms.Errors{}
	}

	switch {
	case recordsSet.Err != "":
		data.Error = recordsSet.Err
	case empState.Err != "":
		data.Error = empState.Err
	}

	if empState.Fetched {
		data.EmployeeOptions = empState.Data.Employees
	}
	data.CanMark = len(data.EmployeeOptions) > 0
	if empState.Fetched && len(data.EmployeeOptions) == 0 {
		data.Warning = "Add employees before marking attendance."
	}

	visible := filter.apply(recordsSet.Data.Records)
	data.Records, data.PresentCount, data.AbsentCount = attendanceRows(visible)
	data.RecordTotal = len(visible)

	if filter.Date != "" {
		data.ListHeading = "Attendance for " + formatDate(filter.Date)
		data.EmptyTitle = "No records for this date"
		data.EmptyMessage = "No attendance has been marked for " + formatDate(filter.Date) + "."
	} else {
		data.ListHeading = "All Attendance Records"
		data.EmptyTitle = "No attendance records"
		data.EmptyMessage = "Mark attendance to start tracking your team."
	}
	s.render(w, r, s.attendanceTmpl, status, data)
}

func (s *server) markAttendance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	filter := attendanceFilter{
		Date:     strings.TrimSpace(r.FormValue("filter_date")),
		Employee: strings.TrimSpace(r.FormValue("filter_employee")),
	}
	form := forms.AttendanceForm{
		EmployeeID: r.FormValue("employee_id"),
		Date:       r.FormValue("date"),
		Status:     r.FormValue("status"),
	}.Normalize()

	if errs := s.validator.Attendance(form); errs.Any() {
		s.attendancePage(w, r, filter, pageData{ModalOpen: true, AttendanceForm: form, FormErrors: errs}, http.StatusUnprocessableEntity)
		return
	}

	mark := lifecycle.NewMutation(s.api.Attendance.Mark)
	res := mark.Run(r.Context(), form.Input())
	if !res.OK {
		s.logger.Warn("mark attendance failed",
			zap.String("employee_id", form.EmployeeID),
			zap.String("date", form.Date),
			zap.String("error", res.Message),
		)
		s.attendancePage(w, r, filter, pageData{ModalOpen: true, AttendanceForm: form, FormError: res.Message}, statusFor(res.Err))
		return
	}

	who := res.Value.EmployeeName
	if who == "" {
		who = form.EmployeeID
	}
	redirectWithMessage(w, r, "/attendance", filter.params(), "Attendance marked: "+who+" — "+form.Status)
}

// employeeAttendancePage serves GET /attendance/{employee_id}.
func (s *server) employeeAttendancePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	raw := strings.Trim(strings.TrimPrefix(r.URL.EscapedPath(), "/attendance/"), "/")
	employeeID, err := url.PathUnescape(raw)
	if err != nil || employeeID == "" || strings.Contains(raw, "/") {
		http.NotFound(w, r)
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))

	history := lifecycle.NewQuery(func(ctx context.Context, d attendanceFilter) (hrapi.AttendanceList, error) {
		return s.api.Attendance.ByEmployee(ctx, d.Employee, d.Date)
	}, true)
	state := history.Sync(r.Context(), attendanceFilter{Date: date, Employee: employeeID})

	data := pageData{
		Title:      "Attendance History",
		Nav:        "attendance",
		EmployeeID: employeeID,
		FilterDate: date,
		Error:      state.Err,
		Loaded:     state.Fetched,
		EmptyTitle: "No attendance records",
	}
	data.Records, data.PresentCount, data.AbsentCount = attendanceRows(state.Data.Records)
	data.RecordTotal = len(data.Records)
	if len(state.Data.Records) > 0 {
		data.ListHeading = state.Data.Records[0].EmployeeName
	} else {
		data.ListHeading = employeeID
	}
	if date != "" {
		data.EmptyMessage = "No attendance was marked on " + formatDate(date) + "."
	} else {
		data.EmptyMessage = "Nothing has been marked for this employee yet."
	}
	s.render(w, r, s.employeeAttendanceTmpl, http.StatusOK, data)
}

func (s *server) exportAttendance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	filter := filterFromQuery(r.URL.Query())
	list, err := s.api.Attendance.List(r.Context(), filter.Date)
	if err != nil {
		redirectWithError(w, r, "/attendance", filter.params(), hrapi.ErrorMessage(err))
		return
	}
	var buf bytes.Buffer
	if err := sheets.WriteAttendance(&buf, filter.apply(list.Records)); err != nil {
		s.logger.Error("attendance export failed", zap.Error(err))
		redirectWithError(w, r, "/attendance", filter.params(), "Unable to build the export file")
		return
	}
	name := "attendance.xlsx"
	if filter.Date != "" {
		name = "attendance-" + filter.Date + ".xlsx"
	}
	writeAttachment(w, name, buf.Bytes())
}
