package clientapp

import (
	"context"
	"net/http"

	"github.com/phillip-england/hrms/internal/hrapi"
	"github.com/phillip-england/hrms/internal/lifecycle"
)

func (s *server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary := lifecycle.NewQuery(func(ctx context.Context, _ struct{}) (hrapi.DashboardSummary, error) {
		return s.api.Dashboard.Get(ctx)
	}, true)
	state := summary.Sync(r.Context(), struct{}{})

	data := pageData{
		Title:  "Dashboard",
		Nav:    "dashboard",
		Error:  state.Err,
		Loaded: state.Fetched,
	}
	if state.Fetched {
		data.Dashboard = dashboardView{
			TotalEmployees: state.Data.TotalEmployees,
			PresentToday:   state.Data.TotalPresentToday,
			AbsentToday:    state.Data.TotalAbsentToday,
			Rows:           summaryRows(state.Data.EmployeesSummary),
		}
	}
	s.render(w, r, s.dashboardTmpl, http.StatusOK, data)
}
