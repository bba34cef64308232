package aggregation

import (
	"fmt"
	"slices"
	"time"

	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/numeric"
)

// Alert severities
const (
	AlertWarning = "warning"
	AlertError   = "error"
	AlertInfo    = "info"
)

// Alert is one entry in the dashboard alert feed. ID is derived from the
// source record so the same condition always yields the same ID.
type Alert struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	MachineID   string    `json:"machineId"`
	MachineName string    `json:"machineName,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// rule is a threshold check applied to a single value
type rule struct {
	Operator  string
	Threshold float64
}

func (r rule) breached(value float64) bool {
	return evaluateCondition(value, r.Operator, r.Threshold)
}

// Alerts runs the temperature, open-downtime and low-yield scans and returns
// their union, newest first.
func (a *Aggregator) Alerts() []Alert {
	var alerts []Alert
	alerts = append(alerts, a.temperatureAlerts()...)
	alerts = append(alerts, a.downtimeAlerts()...)
	alerts = append(alerts, a.lowYieldAlerts()...)

	slices.SortStableFunc(alerts, func(x, y Alert) int {
		return y.Timestamp.Compare(x.Timestamp)
	})
	return alerts
}

func (a *Aggregator) temperatureAlerts() []Alert {
	hot := rule{Operator: ">", Threshold: a.thresholds.MaxTemperature}

	var alerts []Alert
	for _, m := range a.store.Machines() {
		reading := a.store.LatestSensor(m.ID)
		if reading == nil || !hot.breached(reading.Temperature) {
			continue
		}
		alerts = append(alerts, Alert{
			ID:          "alert-temp-" + m.ID,
			Type:        AlertWarning,
			Title:       "High Temperature",
			Message:     fmt.Sprintf("%s temperature at %.1f°C (threshold: %g°C)", m.Name, reading.Temperature, hot.Threshold),
			MachineID:   m.ID,
			MachineName: m.Name,
			Timestamp:   reading.RecordedAt,
		})
	}
	return alerts
}

func (a *Aggregator) downtimeAlerts() []Alert {
	var alerts []Alert
	for _, d := range a.store.DowntimeLogs() {
		if d.Status != database.DowntimeOpen {
			continue
		}
		name := a.machineName(d.MachineID)
		alerts = append(alerts, Alert{
			ID:          "alert-dt-" + d.ID,
			Type:        AlertError,
			Title:       "Machine Down",
			Message:     fmt.Sprintf("%s: %s", name, d.Description),
			MachineID:   d.MachineID,
			MachineName: name,
			Timestamp:   d.StartTime,
		})
	}
	return alerts
}

// lowYieldAlerts takes the LowYield window across all machines first, then
// groups it by machine.
func (a *Aggregator) lowYieldAlerts() []Alert {
	low := rule{Operator: "<", Threshold: a.thresholds.MinYield}
	recent := recentLogs(a.store.ProductionLogs(), a.windows.LowYield)

	var order []string
	yields := make(map[string][]float64)
	for _, p := range recent {
		if _, seen := yields[p.MachineID]; !seen {
			order = append(order, p.MachineID)
		}
		yields[p.MachineID] = append(yields[p.MachineID], p.Yield)
	}

	now := a.clock.Now()
	var alerts []Alert
	for _, machineID := range order {
		avg := numeric.Mean(yields[machineID])
		if !low.breached(avg) {
			continue
		}
		name := a.machineName(machineID)
		alerts = append(alerts, Alert{
			ID:          "alert-yield-" + machineID,
			Type:        AlertInfo,
			Title:       "Low Yield",
			Message:     fmt.Sprintf("%s average yield %.1f%% (target: ≥%g%%)", name, avg, low.Threshold),
			MachineID:   machineID,
			MachineName: name,
			Timestamp:   now,
		})
	}
	return alerts
}

func (a *Aggregator) machineName(id string) string {
	if m := a.store.MachineByID(id); m != nil {
		return m.Name
	}
	return ""
}

func evaluateCondition(value float64, operator string, threshold float64) bool {
	switch operator {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	default:
		return false
	}
}
