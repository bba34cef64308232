package aggregation

import (
	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/numeric"
)

// DowntimeStats summarizes downtime logs. MTTR is the mean duration in
// minutes of resolved events that have a duration.
type DowntimeStats struct {
	Total      int     `json:"total"`
	Open       int     `json:"open"`
	InProgress int     `json:"inProgress"`
	Resolved   int     `json:"resolved"`
	TotalHours float64 `json:"totalHours"`
	MTTR       float64 `json:"mttrMinutes"`
}

type MeasurementStats struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	PassRate float64 `json:"passRate"`
}

// DowntimeStats covers every machine when machineID is empty
func (a *Aggregator) DowntimeStats(machineID string) DowntimeStats {
	logs := a.store.DowntimeLogs()
	if machineID != "" {
		logs = a.store.DowntimeByMachine(machineID)
	}

	var stats DowntimeStats
	var totalMinutes, repairMinutes, repaired int
	for _, d := range logs {
		stats.Total++
		switch d.Status {
		case database.DowntimeOpen:
			stats.Open++
		case database.DowntimeInProgress:
			stats.InProgress++
		case database.DowntimeResolved:
			stats.Resolved++
		}

		if d.Duration == nil {
			continue
		}
		totalMinutes += *d.Duration
		if d.Status == database.DowntimeResolved && *d.Duration > 0 {
			repairMinutes += *d.Duration
			repaired++
		}
	}

	stats.TotalHours = numeric.Round(float64(totalMinutes)/60, 1)
	stats.MTTR = numeric.Round(numeric.Ratio(float64(repairMinutes), float64(repaired)), 1)
	return stats
}

// MeasurementStats covers every machine when machineID is empty
func (a *Aggregator) MeasurementStats(machineID string) MeasurementStats {
	measurements := a.store.Measurements()
	if machineID != "" {
		measurements = a.store.MeasurementsByMachine(machineID)
	}

	stats := MeasurementStats{Total: len(measurements)}
	for _, m := range measurements {
		if m.IsPass {
			stats.Passed++
		}
	}
	stats.Failed = stats.Total - stats.Passed
	stats.PassRate = numeric.Percent(float64(stats.Passed), float64(stats.Total), 2)
	return stats
}
