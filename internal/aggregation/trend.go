package aggregation

import (
	"slices"

	"github.com/smukkama/factory-monitor/internal/clock"
	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/numeric"
)

// TrendPoint is one calendar day of summed production
type TrendPoint struct {
	Date   string  `json:"date"`
	Output int     `json:"output"`
	Scrap  int     `json:"scrap"`
	Input  int     `json:"input"`
	Yield  float64 `json:"yield"`
}

// MachineSummary is the headline block on a machine's production page
type MachineSummary struct {
	MachineID    string  `json:"machineId"`
	Logs         int     `json:"logs"`
	AverageYield float64 `json:"averageYield"`
	TotalOutput  int     `json:"totalOutput"`
	TotalScrap   int     `json:"totalScrap"`
}

// ProductionTrend returns exactly TrendDays points ending today, oldest
// first. Days without logs are present with zero values.
func (a *Aggregator) ProductionTrend() []TrendPoint {
	days := max(a.windows.TrendDays, 0)
	today := clock.Today(a.clock)

	byDate := make(map[string][]database.ProductionLog)
	for _, p := range a.store.ProductionLogs() {
		byDate[p.ShiftDate] = append(byDate[p.ShiftDate], p)
	}

	points := make([]TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(database.ShiftDateLayout)
		points = append(points, trendPoint(date, byDate[date]))
	}
	return points
}

// MachineProductionTrend sums the machine's most recent MachineChart logs
// per shift date, ascending by date.
func (a *Aggregator) MachineProductionTrend(machineID string) []TrendPoint {
	recent := recentLogs(a.store.ProductionByMachine(machineID), a.windows.MachineChart)

	var dates []string
	byDate := make(map[string][]database.ProductionLog)
	for _, p := range recent {
		if _, seen := byDate[p.ShiftDate]; !seen {
			dates = append(dates, p.ShiftDate)
		}
		byDate[p.ShiftDate] = append(byDate[p.ShiftDate], p)
	}
	slices.Sort(dates)

	points := make([]TrendPoint, 0, len(dates))
	for _, date := range dates {
		points = append(points, trendPoint(date, byDate[date]))
	}
	return points
}

// MachineProductionSummary averages per-log yield over the machine's most
// recent MachineYield logs.
func (a *Aggregator) MachineProductionSummary(machineID string) MachineSummary {
	recent := recentLogs(a.store.ProductionByMachine(machineID), a.windows.MachineYield)

	yields := make([]float64, len(recent))
	for i, p := range recent {
		yields[i] = p.Yield
	}
	sum := summarize(recent)

	return MachineSummary{
		MachineID:    machineID,
		Logs:         len(recent),
		AverageYield: numeric.Round(numeric.Mean(yields), 2),
		TotalOutput:  sum.TotalOutput,
		TotalScrap:   sum.TotalScrap,
	}
}

func trendPoint(date string, logs []database.ProductionLog) TrendPoint {
	sum := summarize(logs)
	return TrendPoint{
		Date:   date,
		Output: sum.TotalOutput,
		Scrap:  sum.TotalScrap,
		Input:  sum.TotalInput,
		Yield:  sum.Yield,
	}
}
