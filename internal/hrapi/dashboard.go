package hrapi

import (
	"context"
	"net/http"
)

type DashboardAPI struct {
	client *Client
}

func (a *DashboardAPI) Get(ctx context.Context) (DashboardSummary, error) {
	var out DashboardSummary
	err := a.client.Send(ctx, http.MethodGet, "/dashboard", RequestOptions{}, &out)
	return out, err
}
