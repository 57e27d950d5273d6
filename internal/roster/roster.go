// Package roster creates employees in bulk from parsed spreadsheet rows.
package roster

import (
	"context"
	"fmt"
	"sort"

	"github.com/phillip-england/hrms/internal/forms"
	"github.com/phillip-england/hrms/internal/hrapi"
	"github.com/phillip-england/hrms/internal/lifecycle"
	"github.com/phillip-england/hrms/internal/sheets"
)

type Failure struct {
	Line       int
	EmployeeID string
	Message    string
}

func (f Failure) String() string {
	if f.EmployeeID == "" {
		return fmt.Sprintf("row %d: %s", f.Line, f.Message)
	}
	return fmt.Sprintf("row %d (%s): %s", f.Line, f.EmployeeID, f.Message)
}

type Result struct {
	Created  []hrapi.Employee
	Failures []Failure
}

func (r Result) Summary() string {
	return fmt.Sprintf("Imported %d employees, %d failed", len(r.Created), len(r.Failures))
}

type Importer struct {
	create    *lifecycle.Mutation[hrapi.EmployeeInput, hrapi.Employee]
	validator *forms.Validator
}

func NewImporter(api *hrapi.Client, validator *forms.Validator) *Importer {
	return &Importer{
		create:    lifecycle.NewMutation(api.Employees.Create),
		validator: validator,
	}
}

// Import validates every row with the employee form rules and creates the valid ones
// one at a time, in sheet order. A failing row never stops the rows after it.
func (i *Importer) Import(ctx context.Context, rows []sheets.RosterRow) Result {
	var out Result
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			out.Failures = append(out.Failures, Failure{Line: row.Line, EmployeeID: row.Form.EmployeeID, Message: err.Error()})
			continue
		}
		form := row.Form.Normalize()
		if errs := i.validator.Employee(form); errs.Any() {
			out.Failures = append(out.Failures, Failure{
				Line:       row.Line,
				EmployeeID: form.EmployeeID,
				Message:    firstError(errs),
			})
			continue
		}
		res := i.create.Run(ctx, form.Input())
		if !res.OK {
			out.Failures = append(out.Failures, Failure{Line: row.Line, EmployeeID: form.EmployeeID, Message: res.Message})
			continue
		}
		out.Created = append(out.Created, res.Value)
	}
	return out
}

var fieldOrder = map[string]int{"employee_id": 0, "full_name": 1, "email": 2, "department": 3}

func firstError(errs forms.Errors) string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(a, b int) bool {
		oa, okA := fieldOrder[fields[a]]
		ob, okB := fieldOrder[fields[b]]
		if okA != okB {
			return okA
		}
		if oa != ob {
			return oa < ob
		}
		return fields[a] < fields[b]
	})
	return errs[fields[0]]
}
