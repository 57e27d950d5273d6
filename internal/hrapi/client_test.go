package hrapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phillip-england/hrms/internal/contextutil"
	"github.com/phillip-england/hrms/internal/hrapi"
	"github.com/phillip-england/hrms/internal/hrapi/hrapitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(baseURL string) *hrapi.Client {
	return hrapi.New(hrapi.Config{BaseURL: baseURL + "/"})
}

func TestSend_SetsJSONHeadersAndRequestID(t *testing.T) {
	var got http.Header
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotURL = r.URL.String()
		_, _ = w.Write([]byte(`{"total":0,"records":[]}`))
	}))
	defer srv.Close()

	ctx := contextutil.WithRequestID(context.Background(), "rid-123")
	_, err := newClient(srv.URL).Attendance.List(ctx, "2024-05-01")
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "rid-123", got.Get("X-Request-ID"))
	assert.Equal(t, "/attendance/?date=2024-05-01", gotURL)
}

func TestNew_DefaultsBaseURLAndTimeout(t *testing.T) {
	c := hrapi.New(hrapi.Config{})
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
	assert.Equal(t, 60*time.Second, hrapi.DefaultTimeout)
}

func TestSend_NormalizesErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", http.StatusConflict, `{"detail":"Employee with ID 'EMP001' already exists."}`, "Employee with ID 'EMP001' already exists."},
		{"message field", http.StatusBadRequest, `{"message":"bad things"}`, "bad things"},
		{"detail wins over message", http.StatusBadRequest, `{"detail":"first","message":"second"}`, "first"},
		{"validation detail list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"}]}`, "value is not a valid email address"},
		{"empty detail falls through to message", http.StatusBadRequest, `{"detail":"","message":"use me"}`, "use me"},
		{"no structured message", http.StatusInternalServerError, `oops`, "Request failed with status code 500"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newClient(srv.URL).Employees.List(context.Background())
			require.Error(t, err)

			var apiErr *hrapi.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.want, hrapi.ErrorMessage(err))
		})
	}
}

func TestSend_TransportErrorUsesRawText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	_, err := newClient(baseURL).Dashboard.Get(context.Background())
	require.Error(t, err)

	var apiErr *hrapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Zero(t, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
	assert.NotEqual(t, hrapi.FallbackMessage, apiErr.Message)
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := hrapi.New(hrapi.Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := c.Dashboard.Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, hrapi.ErrorMessage(err), "Timeout")
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", hrapi.ErrorMessage(nil))
	assert.Equal(t, hrapi.FallbackMessage, hrapi.ErrorMessage(&hrapi.Error{}))
	assert.Equal(t, "plain", hrapi.ErrorMessage(errors.New("plain")))
}

func TestResources_AgainstFakeBackend(t *testing.T) {
	backend := hrapitest.New(t)
	backend.SetToday("2024-05-02")
	c := newClient(backend.URL)
	ctx := context.Background()

	created, err := c.Employees.Create(ctx, hrapi.EmployeeInput{
		EmployeeID: "EMP001",
		FullName:   "Ada Lovelace",
		Email:      "ada@example.com",
		Department: "Engineering",
	})
	require.NoError(t, err)
	assert.Equal(t, "EMP001", created.EmployeeID)

	_, err = c.Employees.Create(ctx, hrapi.EmployeeInput{EmployeeID: "EMP001", FullName: "Dup", Email: "dup@example.com", Department: "HR"})
	require.Error(t, err)
	assert.Equal(t, "Employee with ID 'EMP001' already exists.", hrapi.ErrorMessage(err))

	rec, err := c.Attendance.Mark(ctx, hrapi.AttendanceInput{EmployeeID: "EMP001", Date: "2024-05-02", Status: hrapi.StatusPresent})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", rec.EmployeeName)

	_, err = c.Attendance.Mark(ctx, hrapi.AttendanceInput{EmployeeID: "EMP001", Date: "2024-05-02", Status: hrapi.StatusAbsent})
	require.Error(t, err)
	assert.Contains(t, hrapi.ErrorMessage(err), "already marked as 'Present'")

	_, err = c.Attendance.Mark(ctx, hrapi.AttendanceInput{EmployeeID: "EMP001", Date: "2024-05-01", Status: hrapi.StatusAbsent})
	require.NoError(t, err)

	list, err := c.Employees.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, 1, list.Employees[0].TotalPresentDays)

	byDate, err := c.Attendance.List(ctx, "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 1, byDate.Total)

	history, err := c.Attendance.ByEmployee(ctx, "EMP001", "")
	require.NoError(t, err)
	assert.Equal(t, 2, history.Total)

	summary, err := c.Dashboard.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalEmployees)
	assert.Equal(t, 1, summary.TotalPresentToday)
	assert.Equal(t, 0, summary.TotalAbsentToday)
	require.Len(t, summary.EmployeesSummary, 1)
	assert.Equal(t, 1, summary.EmployeesSummary[0].TotalAbsent)

	require.NoError(t, c.Employees.Delete(ctx, "EMP001"))
	err = c.Employees.Delete(ctx, "EMP001")
	assert.Equal(t, "Employee with ID 'EMP001' not found.", hrapi.ErrorMessage(err))

	assert.Equal(t, 2, backend.Calls(http.MethodDelete, "/employees/EMP001"))
}

func TestCreate_SendsSnakeCaseBody(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"employee_id":"EMP010"}`))
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).Employees.Create(context.Background(), hrapi.EmployeeInput{
		EmployeeID: "EMP010", FullName: "Jane Doe", Email: "jane@co.com", Department: "Engineering",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"employee_id": "EMP010",
		"full_name":   "Jane Doe",
		"email":       "jane@co.com",
		"department":  "Engineering",
	}, body)
}
