package api

import "net/http"

func (a *API) handleDashboardStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, a.agg.DashboardStats())
}

func (a *API) handleOEE(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, a.agg.OEE())
}

func (a *API) handleUptime(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"uptimePercent": a.agg.UptimePercentage()})
}

func (a *API) handleScrapRate(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"scrapRate": a.agg.ScrapRate()})
}

func (a *API) handleToday(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, a.agg.TodayProductionSummary())
}

func (a *API) handleLinePerformance(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"lines": orEmpty(a.agg.LinePerformance())})
}

func (a *API) handleMachineStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, a.agg.MachineStatusBreakdown())
}

func (a *API) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	alerts := orEmpty(a.agg.Alerts())
	respondJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

func (a *API) handleProductionTrend(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"days": orEmpty(a.agg.ProductionTrend())})
}
