package hrapi

import (
	"context"
	"net/http"
	"net/url"
)

type EmployeesAPI struct {
	client *Client
}

func (a *EmployeesAPI) List(ctx context.Context) (EmployeeList, error) {
	var out EmployeeList
	err := a.client.Send(ctx, http.MethodGet, "/employees/", RequestOptions{}, &out)
	return out, err
}

func (a *EmployeesAPI) Create(ctx context.Context, in EmployeeInput) (Employee, error) {
	var out Employee
	err := a.client.Send(ctx, http.MethodPost, "/employees/", RequestOptions{Body: in}, &out)
	return out, err
}

func (a *EmployeesAPI) Delete(ctx context.Context, employeeID string) error {
	return a.client.Send(ctx, http.MethodDelete, "/employees/"+url.PathEscape(employeeID), RequestOptions{}, nil)
}
