package clientapp

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/phillip-england/hrms/internal/forms"
	"github.com/phillip-england/hrms/internal/hrapi"
	"github.com/phillip-england/hrms/internal/lifecycle"
	"github.com/phillip-england/hrms/internal/sheets"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *server) employeesRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.employeesPage(w, r, pageData{
			ModalOpen:  r.URL.Query().Get("modal") == "create",
			ImportOpen: r.URL.Query().Get("modal") == "import",
		}, http.StatusOK)
	case http.MethodPost:
		s.createEmployee(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// employeesPage loads the directory and renders it around whatever form state the
// caller already put in data.
func (s *server) employeesPage(w http.ResponseWriter, r *http.Request, data pageData, status int) {
	list := lifecycle.NewQuery(func(ctx context.Context, _ struct{}) (hrapi.EmployeeList, error) {
		return s.api.Employees.List(ctx)
	}, true)
	state := list.Sync(r.Context(), struct{}{})

	data.Title = "Employees"
	data.Nav = "employees"
	data.Departments = hrapi.Departments
	data.Error = state.Err
	data.Loaded = state.Fetched
	if state.Fetched {
		data.Employees = employeeRows(state.Data.Employees)
		data.EmployeeTotal = state.Data.Total
	}
	if data.FormErrors == nil {
		data.FormErrors = forms.Errors{}
	}
	if confirmID := r.URL.Query().Get("confirm"); confirmID != "" && !data.ModalOpen {
		for i := range data.Employees {
			if data.Employees[i].EmployeeID == confirmID {
				data.DeleteTarget = &data.Employees[i]
				break
			}
		}
	}
	s.render(w, r, s.employeesTmpl, status, data)
}

func (s *server) createEmployee(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	form := forms.EmployeeForm{
		EmployeeID: r.FormValue("employee_id"),
		FullName:   r.FormValue("full_name"),
		Email:      r.FormValue("email"),
		Department: r.FormValue("department"),
	}.Normalize()

	if errs := s.validator.Employee(form); errs.Any() {
		s.employeesPage(w, r, pageData{ModalOpen: true, EmployeeForm: form, FormErrors: errs}, http.StatusUnprocessableEntity)
		return
	}

	create := lifecycle.NewMutation(s.api.Employees.Create)
	res := create.Run(r.Context(), form.Input())
	if !res.OK {
		s.logger.Warn("create employee failed", zap.String("employee_id", form.EmployeeID), zap.String("error", res.Message))
		s.employeesPage(w, r, pageData{ModalOpen: true, EmployeeForm: form, FormError: res.Message}, statusFor(res.Err))
		return
	}
	redirectWithMessage(w, r, "/employees", nil, "Employee "+form.FullName+" added successfully!")
}

// employeeActionRoutes serves POST /employees/{employee_id}/delete.
func (s *server) employeeActionRoutes(w http.ResponseWriter, r *http.Request) {
	employeeID, action, ok := parseEmployeeActionPath(r.URL.EscapedPath())
	if !ok || action != "delete" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimSpace(r.FormValue("full_name"))
	if name == "" {
		name = employeeID
	}
	remove := lifecycle.NewMutation(func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, s.api.Employees.Delete(ctx, id)
	})
	res := remove.Run(r.Context(), employeeID)
	if !res.OK {
		redirectWithError(w, r, "/employees", nil, res.Message)
		return
	}
	redirectWithMessage(w, r, "/employees", nil, name+" has been removed.")
}

func (s *server) exportEmployees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	list, err := s.api.Employees.List(r.Context())
	if err != nil {
		redirectWithError(w, r, "/employees", nil, hrapi.ErrorMessage(err))
		return
	}
	var buf bytes.Buffer
	if err := sheets.WriteEmployees(&buf, list.Employees); err != nil {
		s.logger.Error("employee export failed", zap.Error(err))
		redirectWithError(w, r, "/employees", nil, "Unable to build the export file")
		return
	}
	writeAttachment(w, "employees.xlsx", buf.Bytes())
}

func (s *server) importEmployees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		redirectWithError(w, r, "/employees", nil, "Upload a roster file")
		return
	}
	file, header, err := r.FormFile("roster_file")
	if err != nil {
		redirectWithError(w, r, "/employees", nil, "Upload a roster file")
		return
	}
	defer file.Close()

	rows, err := sheets.ReadRows(file, header.Filename)
	if err != nil {
		redirectWithError(w, r, "/employees", nil, err.Error())
		return
	}
	roster, err := sheets.ParseRoster(rows)
	if err != nil {
		redirectWithError(w, r, "/employees", nil, err.Error())
		return
	}

	result := s.importer.Import(r.Context(), roster)
	s.logger.Info("roster imported",
		zap.String("file", header.Filename),
		zap.Int("created", len(result.Created)),
		zap.Int("failed", len(result.Failures)),
	)
	if len(result.Failures) > 0 {
		params := url.Values{}
		params.Set("error", result.Failures[0].String())
		redirectWithMessage(w, r, "/employees", params, result.Summary())
		return
	}
	redirectWithMessage(w, r, "/employees", nil, result.Summary())
}

func writeAttachment(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func parseEmployeeActionPath(path string) (employeeID, action string, ok bool) {
	trimmed := strings.Trim(strings.TrimPrefix(path, "/employees/"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	employeeID, err := url.PathUnescape(parts[0])
	if err != nil {
		return "", "", false
	}
	return employeeID, parts[1], true
}

// statusFor maps a failed backend call to the status of the re-rendered page.
func statusFor(err error) int {
	var apiErr *hrapi.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
