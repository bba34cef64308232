package aggregation

import (
	"math"
	"testing"
	"time"

	"github.com/smukkama/factory-monitor/internal/clock"
	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/store"
	"github.com/smukkama/factory-monitor/pkg/config"
)

var now = time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

func newTestAggregator(ds *database.Dataset) *Aggregator {
	return NewAggregator(store.New(ds), clock.Fixed{At: now}, config.DefaultWindows(), config.DefaultAlertThresholds())
}

func prod(id, machineID, date string, input, output, scrap int) database.ProductionLog {
	return database.NewProductionLog(id, machineID, date, database.ShiftDay, input, output, scrap, "u1", now)
}

func machine(id, lineID string, status database.MachineStatus) database.Machine {
	return database.Machine{ID: id, Name: "Machine " + id, LineID: lineID, Status: status, IsActive: true}
}

func TestDashboardStats_EndToEnd(t *testing.T) {
	agg := newTestAggregator(&database.Dataset{
		Lines: []database.Line{{ID: "line-1"}},
		Machines: []database.Machine{
			machine("m1", "line-1", database.MachineRunning),
			machine("m2", "line-1", database.MachineStopped),
		},
		DowntimeLogs: []database.DowntimeLog{
			database.NewDowntimeLog("dt-1", "m2", database.ReasonBreakdown, "jam", now.Add(-time.Hour), nil, database.DowntimeOpen, "u1", nil),
		},
	})

	stats := agg.DashboardStats()

	if stats.RunningMachines != 1 {
		t.Errorf("Expected runningMachines=1, got %d", stats.RunningMachines)
	}
	if stats.StoppedMachines != 1 {
		t.Errorf("Expected stoppedMachines=1, got %d", stats.StoppedMachines)
	}
	if stats.ActiveDowntimes != 1 {
		t.Errorf("Expected activeDowntimes=1, got %d", stats.ActiveDowntimes)
	}
	if stats.TotalMachines != 2 || stats.TotalLines != 1 {
		t.Errorf("Unexpected totals: %+v", stats)
	}
}

func TestDashboardStats_AverageYieldWindow(t *testing.T) {
	windows := config.DefaultWindows()
	windows.SummaryYield = 2

	ds := &database.Dataset{
		ProductionLogs: []database.ProductionLog{
			prod("p1", "m1", "2026-02-08", 100, 90, 10),
			prod("p2", "m1", "2026-02-07", 100, 95, 5),
			prod("p3", "m1", "2026-02-06", 100, 10, 90),
		},
	}
	agg := NewAggregator(store.New(ds), clock.Fixed{At: now}, windows, config.DefaultAlertThresholds())

	if got := agg.DashboardStats().AverageYield; got != 92.5 {
		t.Errorf("Expected average yield 92.5 over the two newest logs, got %v", got)
	}
}

func TestEmptyDataset_ZeroNotNaN(t *testing.T) {
	agg := newTestAggregator(&database.Dataset{})

	if got := agg.UptimePercentage(); got != 0 {
		t.Errorf("Expected uptime 0, got %v", got)
	}

	oee := agg.OEE()
	for name, v := range map[string]float64{
		"oee":          oee.OEE,
		"availability": oee.Availability,
		"performance":  oee.Performance,
		"quality":      oee.Quality,
	} {
		if v != 0 || math.IsNaN(v) {
			t.Errorf("Expected %s to be 0, got %v", name, v)
		}
	}

	if got := agg.DashboardStats().AverageYield; got != 0 {
		t.Errorf("Expected average yield 0, got %v", got)
	}
	if got := agg.ScrapRate(); got != 0 {
		t.Errorf("Expected scrap rate 0, got %v", got)
	}
	if len(agg.Alerts()) != 0 {
		t.Error("Expected no alerts")
	}
}

func TestOEE(t *testing.T) {
	agg := newTestAggregator(&database.Dataset{
		Machines: []database.Machine{
			machine("m1", "line-1", database.MachineRunning),
			machine("m2", "line-1", database.MachineRunning),
			machine("m3", "line-1", database.MachineIdle),
			machine("m4", "line-1", database.MachineMaintenance),
		},
		ProductionLogs: []database.ProductionLog{
			prod("p1", "m1", "2026-02-08", 600, 540, 60),
			prod("p2", "m2", "2026-02-08", 400, 360, 40),
		},
	})

	got := agg.OEE()
	want := OEE{OEE: 40, Availability: 50, Performance: 90, Quality: 88.9}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	if uptime := agg.UptimePercentage(); uptime != 50 {
		t.Errorf("Expected uptime 50, got %v", uptime)
	}
	if rate := agg.ScrapRate(); rate != 10 {
		t.Errorf("Expected scrap rate 10, got %v", rate)
	}
}

func TestOEE_ZeroOutput(t *testing.T) {
	agg := newTestAggregator(&database.Dataset{
		Machines:       []database.Machine{machine("m1", "line-1", database.MachineRunning)},
		ProductionLogs: []database.ProductionLog{prod("p1", "m1", "2026-02-08", 0, 0, 0)},
	})

	got := agg.OEE()
	if got.Quality != 0 || got.Performance != 0 || got.OEE != 0 {
		t.Errorf("Expected zero factors, got %+v", got)
	}
	if got.Availability != 100 {
		t.Errorf("Expected availability 100, got %v", got.Availability)
	}
}

func TestOEE_WindowKeepsNewestLogs(t *testing.T) {
	windows := config.DefaultWindows()
	windows.OEE = 2

	// fed oldest first; the store orders them newest first
	ds := &database.Dataset{
		Machines: []database.Machine{machine("m1", "line-1", database.MachineRunning)},
		ProductionLogs: []database.ProductionLog{
			prod("p1", "m1", "2026-02-05", 100, 10, 0),
			prod("p2", "m1", "2026-02-06", 100, 90, 10),
			prod("p3", "m1", "2026-02-07", 100, 80, 0),
		},
	}
	agg := NewAggregator(store.New(ds), clock.Fixed{At: now}, windows, config.DefaultAlertThresholds())

	got := agg.OEE()
	want := OEE{OEE: 80, Availability: 100, Performance: 85, Quality: 94.1}
	if got != want {
		t.Errorf("Expected %+v over the two newest logs, got %+v", want, got)
	}
	if rate := agg.ScrapRate(); rate != 5 {
		t.Errorf("Expected scrap rate 5 over the OEE window, got %v", rate)
	}
}

func TestMachineStatusBreakdown(t *testing.T) {
	agg := newTestAggregator(&database.Dataset{
		Machines: []database.Machine{
			machine("m1", "line-1", database.MachineRunning),
			machine("m2", "line-1", database.MachineIdle),
			machine("m3", "line-1", database.MachineStopped),
			machine("m4", "line-1", database.MachineMaintenance),
			machine("m5", "line-1", database.MachineRunning),
		},
	})

	got := agg.MachineStatusBreakdown()
	want := StatusBreakdown{Running: 2, Idle: 1, Stopped: 1, Maintenance: 1, Total: 5}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestTodayProductionSummary(t *testing.T) {
	agg := newTestAggregator(&database.Dataset{
		ProductionLogs: []database.ProductionLog{
			prod("p1", "m1", "2026-02-08", 1000, 900, 100),
			prod("p2", "m2", "2026-02-08", 1000, 950, 50),
			prod("p3", "m1", "2026-02-07", 1000, 500, 500),
		},
	})

	got := agg.TodayProductionSummary()
	want := ProductionSummary{Logs: 2, TotalInput: 2000, TotalOutput: 1850, TotalScrap: 150, Yield: 92.5}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}
