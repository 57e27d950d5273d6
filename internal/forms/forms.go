// Package forms validates the employee and attendance forms before anything is sent to
// the backend.
package forms

import (
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phillip-england/hrms/internal/hrapi"
)

const dateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors maps a form field name to the message shown next to it.
type Errors map[string]string

func (e Errors) Get(field string) string {
	return e[field]
}

func (e Errors) Any() bool {
	return len(e) > 0
}

type EmployeeForm struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	FullName   string `json:"full_name" validate:"required"`
	Email      string `json:"email" validate:"required,hrmsemail"`
	Department string `json:"department" validate:"required,department"`
}

func (f EmployeeForm) Normalize() EmployeeForm {
	return EmployeeForm{
		EmployeeID: strings.TrimSpace(f.EmployeeID),
		FullName:   strings.TrimSpace(f.FullName),
		Email:      strings.TrimSpace(f.Email),
		Department: strings.TrimSpace(f.Department),
	}
}

func (f EmployeeForm) Input() hrapi.EmployeeInput {
	return hrapi.EmployeeInput{
		EmployeeID: f.EmployeeID,
		FullName:   f.FullName,
		Email:      f.Email,
		Department: f.Department,
	}
}

type AttendanceForm struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Date       string `json:"date" validate:"required,isodate,notfuture"`
	Status     string `json:"status" validate:"required,oneof=Present Absent"`
}

func (f AttendanceForm) Normalize() AttendanceForm {
	return AttendanceForm{
		EmployeeID: strings.TrimSpace(f.EmployeeID),
		Date:       strings.TrimSpace(f.Date),
		Status:     strings.TrimSpace(f.Status),
	}
}

func (f AttendanceForm) Input() hrapi.AttendanceInput {
	return hrapi.AttendanceInput{
		EmployeeID: f.EmployeeID,
		Date:       f.Date,
		Status:     f.Status,
	}
}

// messages is keyed by "field.tag".
var messages = map[string]string{
	"employee_id.required":  "Employee ID is required",
	"full_name.required":    "Full name is required",
	"email.required":        "Email is required",
	"email.hrmsemail":       "Enter a valid email address",
	"department.required":   "Department is required",
	"department.department": "Select a valid department",

	"attendance.employee_id.required": "Please select an employee",
	"attendance.date.required":        "Date is required",
	"attendance.date.isodate":         "Enter a valid date",
	"attendance.date.notfuture":       "Date cannot be in the future",
	"attendance.status.required":      "Status is required",
	"attendance.status.oneof":         "Status must be Present or Absent",
}

type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New builds a validator. now supplies the current local time for the future-date
// rule; nil means time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled()), now: now}

	v.validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.validate.RegisterValidation("hrmsemail", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return slices.Contains(hrapi.Departments, fl.Field().String())
	})
	_ = v.validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.validate.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return !IsAfterToday(fl.Field().String(), v.now())
	})
	return v
}

// Employee validates a normalized employee form. An empty map means the form can be
// submitted.
func (v *Validator) Employee(f EmployeeForm) Errors {
	return v.collect(f, "")
}

func (v *Validator) Attendance(f AttendanceForm) Errors {
	return v.collect(f, "attendance.")
}

// Today is the current local date in the form's date format.
func (v *Validator) Today() string {
	return v.now().Format(dateLayout)
}

func (v *Validator) collect(form any, scope string) Errors {
	errs := Errors{}
	err := v.validate.Struct(form)
	if err == nil {
		return errs
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["_form"] = err.Error()
		return errs
	}
	for _, fe := range fieldErrs {
		if _, seen := errs[fe.Field()]; seen {
			continue
		}
		msg, ok := messages[scope+fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		errs[fe.Field()] = msg
	}
	return errs
}

func ValidEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// IsAfterToday reports whether an ISO date lies strictly after the local date of now.
// Unparseable values are not considered future dates.
func IsAfterToday(date string, now time.Time) bool {
	day, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return day.After(today)
}
