package web

import (
	"net/http"
)

// handleDashboard routes /api/dashboard/* requests. All views are read-only.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	ctx := r.Context()
	city := r.URL.Query().Get("city")

	var (
		data interface{}
		err  error
		msg  string
	)
	switch subpath(r, "/api/dashboard") {
	case "cities":
		data, err = s.dashboard.Cities(ctx)
		msg = "Failed to fetch cities"
	case "metrics":
		data, err = s.dashboard.Metrics(ctx, city)
		msg = "Failed to fetch metrics"
	case "price-trends":
		data, err = s.dashboard.PriceTrends(ctx)
		msg = "Failed to fetch price trends"
	case "regional-distribution":
		data, err = s.dashboard.RegionalDistribution(ctx, city)
		msg = "Failed to fetch regional distribution"
	case "recent-transactions":
		data, err = s.dashboard.RecentTransactions(ctx, city)
		msg = "Failed to fetch transactions"
	case "city-stats":
		data, err = s.dashboard.CityStats(ctx)
		msg = "Failed to fetch city stats"
	case "summary":
		data, err = s.dashboard.Summary(ctx)
		msg = "Failed to fetch summary"
	default:
		apiError(w, "Endpoint not found", http.StatusNotFound)
		return
	}

	if err != nil {
		internalError(w, r, msg, err)
		return
	}
	apiJSON(w, data, http.StatusOK)
}
