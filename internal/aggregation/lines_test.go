package aggregation

import (
	"testing"
	"time"

	"github.com/smukkama/factory-monitor/internal/clock"
	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/store"
	"github.com/smukkama/factory-monitor/pkg/config"
)

func TestLinePerformance_DeclarationOrder(t *testing.T) {
	agg := newTestAggregator(&database.Dataset{
		Lines: []database.Line{
			{ID: "line-b", Name: "B", Location: "North"},
			{ID: "line-a", Name: "A", Location: "South"},
			{ID: "line-empty", Name: "Empty"},
		},
		Machines: []database.Machine{
			machine("m1", "line-a", database.MachineRunning),
			machine("m2", "line-b", database.MachineRunning),
			machine("m3", "line-b", database.MachineStopped),
		},
		ProductionLogs: []database.ProductionLog{
			prod("p1", "m1", "2026-02-08", 1000, 990, 10),
			prod("p2", "m2", "2026-02-08", 1000, 900, 100),
			prod("p3", "m3", "2026-02-07", 1000, 800, 200),
		},
	})

	perf := agg.LinePerformance()
	if len(perf) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(perf))
	}

	b := perf[0]
	if b.LineID != "line-b" || b.TotalMachines != 2 || b.RunningMachines != 1 {
		t.Errorf("Unexpected line-b entry: %+v", b)
	}
	if b.TotalOutput != 1700 || b.AverageYield != 85 || b.UptimePercent != 50 {
		t.Errorf("Unexpected line-b metrics: %+v", b)
	}

	if perf[1].LineID != "line-a" || perf[1].AverageYield != 99 || perf[1].UptimePercent != 100 {
		t.Errorf("Unexpected line-a entry: %+v", perf[1])
	}

	empty := perf[2]
	if empty.TotalMachines != 0 || empty.UptimePercent != 0 || empty.AverageYield != 0 {
		t.Errorf("Expected zeroed entry for empty line, got %+v", empty)
	}
}

func TestLineSummaries_MaintenanceCountsAsStopped(t *testing.T) {
	agg := newTestAggregator(&database.Dataset{
		Lines: []database.Line{{ID: "line-1"}},
		Machines: []database.Machine{
			machine("m1", "line-1", database.MachineRunning),
			machine("m2", "line-1", database.MachineStopped),
			machine("m3", "line-1", database.MachineMaintenance),
			machine("m4", "line-1", database.MachineIdle),
		},
	})

	got := agg.LineSummaries()[0]
	if got.MachineCount != 4 || got.RunningMachines != 1 || got.StoppedMachines != 2 {
		t.Errorf("Unexpected summary: %+v", got)
	}
}

func TestDowntimeStats(t *testing.T) {
	start := now.Add(-24 * time.Hour)
	agg := newTestAggregator(&database.Dataset{
		DowntimeLogs: []database.DowntimeLog{
			database.NewDowntimeLog("d1", "m1", database.ReasonBreakdown, "", start, nil, database.DowntimeOpen, "u1", nil),
			database.NewDowntimeLog("d2", "m1", database.ReasonOther, "", start, nil, database.DowntimeInProgress, "u1", nil),
			database.NewDowntimeLog("d3", "m1", database.ReasonBreakdown, "", start, nil, database.DowntimeOpen, "u1", nil).Resolve(start.Add(60*time.Minute), "u1"),
			database.NewDowntimeLog("d4", "m2", database.ReasonChangeover, "", start, nil, database.DowntimeOpen, "u1", nil).Resolve(start.Add(30*time.Minute), "u1"),
		},
	})

	all := agg.DowntimeStats("")
	if all.Total != 4 || all.Open != 1 || all.InProgress != 1 || all.Resolved != 2 {
		t.Errorf("Unexpected counts: %+v", all)
	}
	if all.TotalHours != 1.5 {
		t.Errorf("Expected 1.5 hours, got %v", all.TotalHours)
	}
	if all.MTTR != 45 {
		t.Errorf("Expected MTTR 45, got %v", all.MTTR)
	}

	m1 := agg.DowntimeStats("m1")
	if m1.Total != 3 || m1.MTTR != 60 {
		t.Errorf("Unexpected m1 stats: %+v", m1)
	}

	if none := agg.DowntimeStats("missing"); none.MTTR != 0 || none.Total != 0 {
		t.Errorf("Expected zero stats, got %+v", none)
	}
}

func TestMeasurementStats(t *testing.T) {
	agg := newTestAggregator(&database.Dataset{
		Measurements: []database.Measurement{
			database.NewMeasurement("a", "m1", "u4", "QC", 25, 0, 0, 0, nil, "", now),
			database.NewMeasurement("b", "m1", "u4", "QC", 25, 0.9, 0, 0, nil, "", now),
			database.NewMeasurement("c", "m1", "u4", "QC", 24, 0.1, 0.1, 0.1, nil, "", now),
			database.NewMeasurement("d", "m2", "u4", "QC", 30, 0, 0, 0, nil, "", now),
		},
	})

	m1 := agg.MeasurementStats("m1")
	if m1.Total != 3 || m1.Passed != 2 || m1.Failed != 1 || m1.PassRate != 66.67 {
		t.Errorf("Unexpected m1 stats: %+v", m1)
	}

	all := agg.MeasurementStats("")
	if all.PassRate != 50 {
		t.Errorf("Expected pass rate 50, got %v", all.PassRate)
	}

	if none := agg.MeasurementStats("missing"); none.PassRate != 0 {
		t.Errorf("Expected pass rate 0, got %v", none.PassRate)
	}
}

func TestLinePerformance_LineWindowKeepsNewestLogs(t *testing.T) {
	windows := config.DefaultWindows()
	windows.Line = 2

	// fed oldest first; the store orders them newest first
	ds := &database.Dataset{
		Lines: []database.Line{{ID: "line-a"}, {ID: "line-b"}},
		Machines: []database.Machine{
			machine("m1", "line-a", database.MachineRunning),
			machine("m2", "line-b", database.MachineRunning),
		},
		ProductionLogs: []database.ProductionLog{
			prod("p1", "m1", "2026-02-05", 100, 0, 100),
			prod("p2", "m1", "2026-02-06", 100, 90, 10),
			prod("p3", "m1", "2026-02-07", 100, 80, 20),
			prod("p4", "m2", "2026-02-08", 100, 100, 0),
		},
	}
	agg := NewAggregator(store.New(ds), clock.Fixed{At: now}, windows, config.DefaultAlertThresholds())

	perf := agg.LinePerformance()
	a := perf[0]
	if a.TotalOutput != 170 || a.AverageYield != 85 {
		t.Errorf("Expected output 170 and yield 85 from the two newest logs, got %+v", a)
	}
	if perf[1].TotalOutput != 100 || perf[1].AverageYield != 100 {
		t.Errorf("Line window must apply per line, got %+v", perf[1])
	}
}
