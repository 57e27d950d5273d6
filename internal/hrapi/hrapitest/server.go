// Package hrapitest runs an in-memory stand-in for the HR backend in tests.
package hrapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phillip-england/hrms/internal/hrapi"
)

type failure struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	employees []hrapi.Employee
	records   []hrapi.AttendanceRecord
	nextID    int64
	calls     map[string]int
	failures  map[string]failure
	blocks    map[string]chan struct{}
	today     func() string
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		nextID:   1,
		calls:    map[string]int{},
		failures: map[string]failure{},
		blocks:   map[string]chan struct{}{},
		today:    func() string { return time.Now().Format("2006-01-02") },
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.route))
	t.Cleanup(s.Close)
	return s
}

// Calls reports how many requests hit "METHOD /path" (query string excluded).
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// FailNext makes the next request to "METHOD /path" answer status with body.
func (s *Server) FailNext(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Block holds requests to "METHOD /path" until the returned func is called.
func (s *Server) Block(method, path string) func() {
	ch := make(chan struct{})
	s.mu.Lock()
	s.blocks[method+" "+path] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (s *Server) SetToday(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.today = func() string { return date }
}

func (s *Server) SeedEmployee(in hrapi.EmployeeInput) hrapi.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addEmployeeLocked(in)
}

func (s *Server) SeedAttendance(in hrapi.AttendanceInput) hrapi.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, _ := s.addAttendanceLocked(in)
	return rec
}

func (s *Server) Employees() []hrapi.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]hrapi.Employee(nil), s.employees...)
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	s.mu.Lock()
	s.calls[key]++
	fail, failing := s.failures[key]
	delete(s.failures, key)
	block := s.blocks[key]
	delete(s.blocks, key)
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if failing {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fail.status)
		_, _ = w.Write([]byte(fail.body))
		return
	}

	switch {
	case r.URL.Path == "/health" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case r.URL.Path == "/employees/" && r.Method == http.MethodGet:
		s.listEmployees(w)
	case r.URL.Path == "/employees/" && r.Method == http.MethodPost:
		s.createEmployee(w, r)
	case strings.HasPrefix(r.URL.Path, "/employees/") && r.Method == http.MethodDelete:
		s.deleteEmployee(w, strings.TrimPrefix(r.URL.Path, "/employees/"))
	case r.URL.Path == "/attendance/" && r.Method == http.MethodGet:
		s.listAttendance(w, "", r.URL.Query().Get("date"))
	case r.URL.Path == "/attendance/" && r.Method == http.MethodPost:
		s.markAttendance(w, r)
	case strings.HasPrefix(r.URL.Path, "/attendance/") && r.Method == http.MethodGet:
		employeeID, _ := url.PathUnescape(strings.TrimPrefix(r.URL.Path, "/attendance/"))
		if _, ok := s.findEmployee(employeeID); !ok {
			writeDetail(w, http.StatusNotFound, fmt.Sprintf("Employee with ID '%s' not found.", employeeID))
			return
		}
		s.listAttendance(w, employeeID, r.URL.Query().Get("date"))
	case r.URL.Path == "/dashboard" && r.Method == http.MethodGet:
		s.dashboard(w)
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

func (s *Server) listEmployees(w http.ResponseWriter) {
	s.mu.Lock()
	out := hrapi.EmployeeList{Employees: make([]hrapi.Employee, 0, len(s.employees))}
	for _, emp := range s.employees {
		emp.TotalPresentDays = s.countLocked(emp.EmployeeID, hrapi.StatusPresent)
		out.Employees = append(out.Employees, emp)
	}
	s.mu.Unlock()
	out.Total = len(out.Employees)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var in hrapi.EmployeeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "Invalid JSON body"}},
		})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, emp := range s.employees {
		if emp.EmployeeID == in.EmployeeID {
			writeDetail(w, http.StatusConflict, fmt.Sprintf("Employee with ID '%s' already exists.", in.EmployeeID))
			return
		}
		if strings.EqualFold(emp.Email, in.Email) {
			writeDetail(w, http.StatusConflict, fmt.Sprintf("Employee with email '%s' already exists.", in.Email))
			return
		}
	}
	writeJSON(w, http.StatusCreated, s.addEmployeeLocked(in))
}

func (s *Server) deleteEmployee(w http.ResponseWriter, rawID string) {
	employeeID, _ := url.PathUnescape(rawID)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, emp := range s.employees {
		if emp.EmployeeID != employeeID {
			continue
		}
		s.employees = append(s.employees[:i], s.employees[i+1:]...)
		kept := s.records[:0]
		for _, rec := range s.records {
			if rec.EmployeeStringID != employeeID {
				kept = append(kept, rec)
			}
		}
		s.records = kept
		writeJSON(w, http.StatusOK, emp)
		return
	}
	writeDetail(w, http.StatusNotFound, fmt.Sprintf("Employee with ID '%s' not found.", employeeID))
}

func (s *Server) listAttendance(w http.ResponseWriter, employeeID, date string) {
	s.mu.Lock()
	out := hrapi.AttendanceList{Records: []hrapi.AttendanceRecord{}}
	for _, rec := range s.records {
		if employeeID != "" && rec.EmployeeStringID != employeeID {
			continue
		}
		if date != "" && rec.Date != date {
			continue
		}
		out.Records = append(out.Records, rec)
	}
	s.mu.Unlock()
	sort.SliceStable(out.Records, func(i, j int) bool { return out.Records[i].Date > out.Records[j].Date })
	out.Total = len(out.Records)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) markAttendance(w http.ResponseWriter, r *http.Request) {
	var in hrapi.AttendanceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "Invalid JSON body"}},
		})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.addAttendanceLocked(in)
	if err != nil {
		writeDetail(w, err.status, err.body)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) dashboard(w http.ResponseWriter) {
	s.mu.Lock()
	today := s.today()
	out := hrapi.DashboardSummary{
		TotalEmployees:   len(s.employees),
		EmployeesSummary: make([]hrapi.EmployeeSummary, 0, len(s.employees)),
	}
	for _, rec := range s.records {
		if rec.Date != today {
			continue
		}
		if rec.Status == hrapi.StatusPresent {
			out.TotalPresentToday++
		} else {
			out.TotalAbsentToday++
		}
	}
	for _, emp := range s.employees {
		out.EmployeesSummary = append(out.EmployeesSummary, hrapi.EmployeeSummary{
			EmployeeID:   emp.EmployeeID,
			FullName:     emp.FullName,
			Department:   emp.Department,
			TotalPresent: s.countLocked(emp.EmployeeID, hrapi.StatusPresent),
			TotalAbsent:  s.countLocked(emp.EmployeeID, hrapi.StatusAbsent),
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addEmployeeLocked(in hrapi.EmployeeInput) hrapi.Employee {
	emp := hrapi.Employee{
		ID:         s.nextID,
		EmployeeID: in.EmployeeID,
		FullName:   in.FullName,
		Email:      in.Email,
		Department: in.Department,
		CreatedAt:  time.Now().UTC().Format("2006-01-02T15:04:05.000000"),
	}
	s.nextID++
	s.employees = append(s.employees, emp)
	return emp
}

func (s *Server) addAttendanceLocked(in hrapi.AttendanceInput) (hrapi.AttendanceRecord, *failure) {
	var owner *hrapi.Employee
	for i := range s.employees {
		if s.employees[i].EmployeeID == in.EmployeeID {
			owner = &s.employees[i]
			break
		}
	}
	if owner == nil {
		return hrapi.AttendanceRecord{}, &failure{
			status: http.StatusNotFound,
			body:   fmt.Sprintf("Employee with ID '%s' not found.", in.EmployeeID),
		}
	}
	for _, rec := range s.records {
		if rec.EmployeeStringID == in.EmployeeID && rec.Date == in.Date {
			return hrapi.AttendanceRecord{}, &failure{
				status: http.StatusConflict,
				body:   fmt.Sprintf("Attendance for employee '%s' on %s already marked as '%s'.", in.EmployeeID, in.Date, rec.Status),
			}
		}
	}
	rec := hrapi.AttendanceRecord{
		ID:               s.nextID,
		EmployeeRef:      owner.ID,
		EmployeeStringID: owner.EmployeeID,
		EmployeeName:     owner.FullName,
		Date:             in.Date,
		Status:           in.Status,
	}
	s.nextID++
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *Server) findEmployee(employeeID string) (hrapi.Employee, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, emp := range s.employees {
		if emp.EmployeeID == employeeID {
			return emp, true
		}
	}
	return hrapi.Employee{}, false
}

func (s *Server) countLocked(employeeID, status string) int {
	n := 0
	for _, rec := range s.records {
		if rec.EmployeeStringID == employeeID && rec.Status == status {
			n++
		}
	}
	return n
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
