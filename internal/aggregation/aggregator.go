package aggregation

import (
	"github.com/smukkama/factory-monitor/internal/clock"
	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/numeric"
	"github.com/smukkama/factory-monitor/internal/store"
	"github.com/smukkama/factory-monitor/pkg/config"
)

// Aggregator derives dashboard views from a record snapshot. Every call
// recomputes from scratch; nothing is cached.
type Aggregator struct {
	store      *store.Store
	clock      clock.Clock
	windows    config.Windows
	thresholds config.AlertThresholds
}

// NewAggregator creates a new aggregator over s
func NewAggregator(s *store.Store, c clock.Clock, windows config.Windows, thresholds config.AlertThresholds) *Aggregator {
	return &Aggregator{
		store:      s,
		clock:      c,
		windows:    windows,
		thresholds: thresholds,
	}
}

// Windows returns the recency windows in use
func (a *Aggregator) Windows() config.Windows {
	return a.windows
}

// DashboardStats is the flat KPI summary shown at the top of the dashboard
type DashboardStats struct {
	TotalLines          int     `json:"totalLines"`
	TotalMachines       int     `json:"totalMachines"`
	RunningMachines     int     `json:"runningMachines"`
	IdleMachines        int     `json:"idleMachines"`
	StoppedMachines     int     `json:"stoppedMachines"`
	MaintenanceMachines int     `json:"maintenanceMachines"`
	ActiveDowntimes     int     `json:"activeDowntimes"`
	AverageYield        float64 `json:"averageYield"`
}

// StatusBreakdown counts machines per status
type StatusBreakdown struct {
	Running     int `json:"running"`
	Idle        int `json:"idle"`
	Stopped     int `json:"stopped"`
	Maintenance int `json:"maintenance"`
	Total       int `json:"total"`
}

// OEE factors are percentages rounded to one decimal
type OEE struct {
	OEE          float64 `json:"oee"`
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Quality      float64 `json:"quality"`
}

// ProductionSummary sums a set of production logs
type ProductionSummary struct {
	Logs        int     `json:"logs"`
	TotalInput  int     `json:"totalInput"`
	TotalOutput int     `json:"totalOutput"`
	TotalScrap  int     `json:"totalScrap"`
	Yield       float64 `json:"yield"`
}

func (a *Aggregator) DashboardStats() DashboardStats {
	breakdown := countStatuses(a.store.Machines())

	active := 0
	for _, d := range a.store.DowntimeLogs() {
		if d.Status != database.DowntimeResolved {
			active++
		}
	}

	recent := recentLogs(a.store.ProductionLogs(), a.windows.SummaryYield)
	yields := make([]float64, len(recent))
	for i, p := range recent {
		yields[i] = p.Yield
	}

	return DashboardStats{
		TotalLines:          len(a.store.Lines()),
		TotalMachines:       breakdown.Total,
		RunningMachines:     breakdown.Running,
		IdleMachines:        breakdown.Idle,
		StoppedMachines:     breakdown.Stopped,
		MaintenanceMachines: breakdown.Maintenance,
		ActiveDowntimes:     active,
		AverageYield:        numeric.Round(numeric.Mean(yields), 2),
	}
}

func (a *Aggregator) MachineStatusBreakdown() StatusBreakdown {
	return countStatuses(a.store.Machines())
}

// UptimePercentage is the share of machines currently RUNNING
func (a *Aggregator) UptimePercentage() float64 {
	b := countStatuses(a.store.Machines())
	return numeric.Percent(float64(b.Running), float64(b.Total), 1)
}

// OEE multiplies availability, performance and quality. Performance and
// quality come from the most recent OEE-window logs.
func (a *Aggregator) OEE() OEE {
	b := countStatuses(a.store.Machines())
	sum := summarize(recentLogs(a.store.ProductionLogs(), a.windows.OEE))

	availability := numeric.Ratio(float64(b.Running), float64(b.Total))
	performance := numeric.Ratio(float64(sum.TotalOutput), float64(sum.TotalInput))
	quality := numeric.Ratio(float64(sum.TotalOutput-sum.TotalScrap), float64(sum.TotalOutput))

	return OEE{
		OEE:          numeric.Round(availability*performance*quality*100, 1),
		Availability: numeric.Round(availability*100, 1),
		Performance:  numeric.Round(performance*100, 1),
		Quality:      numeric.Round(quality*100, 1),
	}
}

// ScrapRate is scrap as a percentage of input over the OEE window
func (a *Aggregator) ScrapRate() float64 {
	sum := summarize(recentLogs(a.store.ProductionLogs(), a.windows.OEE))
	return numeric.Percent(float64(sum.TotalScrap), float64(sum.TotalInput), 2)
}

// TodayProductionSummary sums the logs whose shift date is today
func (a *Aggregator) TodayProductionSummary() ProductionSummary {
	today := clock.Today(a.clock).Format(database.ShiftDateLayout)

	var logs []database.ProductionLog
	for _, p := range a.store.ProductionLogs() {
		if p.ShiftDate == today {
			logs = append(logs, p)
		}
	}
	return summarize(logs)
}

func countStatuses(machines []database.Machine) StatusBreakdown {
	b := StatusBreakdown{Total: len(machines)}
	for _, m := range machines {
		switch m.Status {
		case database.MachineRunning:
			b.Running++
		case database.MachineIdle:
			b.Idle++
		case database.MachineStopped:
			b.Stopped++
		case database.MachineMaintenance:
			b.Maintenance++
		}
	}
	return b
}

// recentLogs returns at most n logs from the head of a newest-first slice
func recentLogs(logs []database.ProductionLog, n int) []database.ProductionLog {
	if n <= 0 {
		return nil
	}
	if n < len(logs) {
		return logs[:n]
	}
	return logs
}

func summarize(logs []database.ProductionLog) ProductionSummary {
	s := ProductionSummary{Logs: len(logs)}
	for _, p := range logs {
		s.TotalInput += p.Input
		s.TotalOutput += p.Output
		s.TotalScrap += p.Scrap
	}
	s.Yield = database.YieldPercent(s.TotalOutput, s.TotalInput)
	return s
}
