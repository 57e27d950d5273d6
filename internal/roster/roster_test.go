package roster_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/phillip-england/hrms/internal/forms"
	"github.com/phillip-england/hrms/internal/hrapi"
	"github.com/phillip-england/hrms/internal/hrapi/hrapitest"
	"github.com/phillip-england/hrms/internal/roster"
	"github.com/phillip-england/hrms/internal/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport_CreatesValidRowsAndReportsTheRest(t *testing.T) {
	backend := hrapitest.New(t)
	backend.SeedEmployee(hrapi.EmployeeInput{EmployeeID: "EMP001", FullName: "Ada Lovelace", Email: "ada@example.com", Department: "Engineering"})

	api := hrapi.New(hrapi.Config{BaseURL: backend.URL, Timeout: 5 * time.Second})
	importer := roster.NewImporter(api, forms.New(nil))

	result := importer.Import(context.Background(), []sheets.RosterRow{
		{Line: 2, Form: forms.EmployeeForm{EmployeeID: "EMP002", FullName: "Grace Hopper", Email: "grace@example.com", Department: "Product"}},
		{Line: 3, Form: forms.EmployeeForm{EmployeeID: "EMP003", FullName: "", Email: "nope", Department: "Product"}},
		{Line: 4, Form: forms.EmployeeForm{EmployeeID: "EMP001", FullName: "Dup", Email: "dup@example.com", Department: "Sales"}},
		{Line: 5, Form: forms.EmployeeForm{EmployeeID: " EMP004 ", FullName: "Alan Turing", Email: "alan@example.com", Department: "Legal"}},
	})

	require.Len(t, result.Created, 2)
	assert.Equal(t, "EMP002", result.Created[0].EmployeeID)
	assert.Equal(t, "EMP004", result.Created[1].EmployeeID)

	assert.Equal(t, []roster.Failure{
		{Line: 3, EmployeeID: "EMP003", Message: "Full name is required"},
		{Line: 4, EmployeeID: "EMP001", Message: "Employee with ID 'EMP001' already exists."},
	}, result.Failures)
	assert.Equal(t, "Imported 2 employees, 2 failed", result.Summary())
	assert.Equal(t, 3, backend.Calls(http.MethodPost, "/employees/"))
}

func TestFailureString(t *testing.T) {
	assert.Equal(t, "row 3 (EMP003): Full name is required",
		roster.Failure{Line: 3, EmployeeID: "EMP003", Message: "Full name is required"}.String())
	assert.Equal(t, "row 7: Employee ID is required",
		roster.Failure{Line: 7, Message: "Employee ID is required"}.String())
}
