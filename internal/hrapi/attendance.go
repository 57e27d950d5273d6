package hrapi

import (
	"context"
	"net/http"
	"net/url"
)

type AttendanceAPI struct {
	client *Client
}

// List returns all records, or only those on date when date is non-empty.
func (a *AttendanceAPI) List(ctx context.Context, date string) (AttendanceList, error) {
	var out AttendanceList
	err := a.client.Send(ctx, http.MethodGet, "/attendance/", RequestOptions{Query: dateQuery(date)}, &out)
	return out, err
}

func (a *AttendanceAPI) ByEmployee(ctx context.Context, employeeID, date string) (AttendanceList, error) {
	var out AttendanceList
	err := a.client.Send(ctx, http.MethodGet, "/attendance/"+url.PathEscape(employeeID), RequestOptions{Query: dateQuery(date)}, &out)
	return out, err
}

func (a *AttendanceAPI) Mark(ctx context.Context, in AttendanceInput) (AttendanceRecord, error) {
	var out AttendanceRecord
	err := a.client.Send(ctx, http.MethodPost, "/attendance/", RequestOptions{Body: in}, &out)
	return out, err
}

func dateQuery(date string) url.Values {
	if date == "" {
		return nil
	}
	return url.Values{"date": []string{date}}
}
