package aggregation

import (
	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/numeric"
)

// LinePerformance is one line's row in the performance table
type LinePerformance struct {
	LineID          string  `json:"lineId"`
	LineName        string  `json:"lineName"`
	Location        string  `json:"location"`
	TotalMachines   int     `json:"totalMachines"`
	RunningMachines int     `json:"runningMachines"`
	TotalOutput     int     `json:"totalOutput"`
	AverageYield    float64 `json:"averageYield"`
	UptimePercent   float64 `json:"uptimePercent"`
}

// LineSummary is the machine count card on the lines page
type LineSummary struct {
	database.Line
	MachineCount    int `json:"machineCount"`
	RunningMachines int `json:"runningMachines"`
	StoppedMachines int `json:"stoppedMachines"`
}

// LinePerformance returns one entry per line in declaration order. Yield is
// taken over the line's most recent Line-window logs.
func (a *Aggregator) LinePerformance() []LinePerformance {
	logs := a.store.ProductionLogs()
	lines := a.store.Lines()
	out := make([]LinePerformance, 0, len(lines))

	for _, line := range lines {
		machines := a.store.MachinesByLine(line.ID)
		onLine := make(map[string]bool, len(machines))
		running := 0
		for _, m := range machines {
			onLine[m.ID] = true
			if m.Status == database.MachineRunning {
				running++
			}
		}

		var lineLogs []database.ProductionLog
		for _, p := range logs {
			if onLine[p.MachineID] {
				lineLogs = append(lineLogs, p)
			}
		}
		sum := summarize(recentLogs(lineLogs, a.windows.Line))

		out = append(out, LinePerformance{
			LineID:          line.ID,
			LineName:        line.Name,
			Location:        line.Location,
			TotalMachines:   len(machines),
			RunningMachines: running,
			TotalOutput:     sum.TotalOutput,
			AverageYield:    sum.Yield,
			UptimePercent:   numeric.Percent(float64(running), float64(len(machines)), 1),
		})
	}

	return out
}

// LineSummaries counts machines per line. Machines under maintenance count
// as stopped.
func (a *Aggregator) LineSummaries() []LineSummary {
	lines := a.store.Lines()
	out := make([]LineSummary, 0, len(lines))

	for _, line := range lines {
		summary := LineSummary{Line: line}
		for _, m := range a.store.MachinesByLine(line.ID) {
			summary.MachineCount++
			switch m.Status {
			case database.MachineRunning:
				summary.RunningMachines++
			case database.MachineStopped, database.MachineMaintenance:
				summary.StoppedMachines++
			}
		}
		out = append(out, summary)
	}

	return out
}
