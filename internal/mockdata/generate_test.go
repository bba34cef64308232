package mockdata

import (
	"reflect"
	"testing"
	"time"

	"github.com/smukkama/factory-monitor/internal/database"
)

var refDate = time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(42, refDate)
	b := Generate(42, refDate)

	if !reflect.DeepEqual(a.ProductionLogs, b.ProductionLogs) {
		t.Error("Production logs differ for the same seed")
	}
	if !reflect.DeepEqual(a.SensorHistory, b.SensorHistory) {
		t.Error("Sensor history differs for the same seed")
	}
	if !reflect.DeepEqual(a.Measurements, b.Measurements) {
		t.Error("Measurements differ for the same seed")
	}
}

func TestGenerate_ProductionInvariants(t *testing.T) {
	ds := Generate(7, refDate)

	want := productionDays * len(productionMachineIDs) * 2
	if len(ds.ProductionLogs) != want {
		t.Fatalf("Expected %d production logs, got %d", want, len(ds.ProductionLogs))
	}

	if got := ds.ProductionLogs[0].ShiftDate; got != "2026-02-08" {
		t.Errorf("Expected newest log first, got %s", got)
	}

	for _, p := range ds.ProductionLogs {
		if p.Input < 800 || p.Input >= 1300 {
			t.Fatalf("Input out of range: %+v", p)
		}
		if p.Output+p.Scrap != p.Input {
			t.Fatalf("Output + scrap must equal input: %+v", p)
		}
		if p.Yield != database.YieldPercent(p.Output, p.Input) {
			t.Fatalf("Yield not derived from counts: %+v", p)
		}
	}
}

func TestGenerate_SensorHistoryOrdering(t *testing.T) {
	ds := Generate(7, refDate)

	if len(ds.SensorHistory) != sensorIntervals*len(sensorMachineIDs) {
		t.Fatalf("Unexpected sensor history length %d", len(ds.SensorHistory))
	}

	first := ds.SensorHistory[0]
	last := ds.SensorHistory[sensorIntervals-1]
	if first.MachineID != last.MachineID {
		t.Fatal("Expected contiguous history per machine")
	}
	if !first.RecordedAt.Before(last.RecordedAt) {
		t.Error("Expected oldest reading first")
	}
	if want := refDate.Add(12 * time.Hour); !last.RecordedAt.Equal(want) {
		t.Errorf("Expected latest reading at %s, got %s", want, last.RecordedAt)
	}
}

func TestGenerate_MeasurementPassFlag(t *testing.T) {
	ds := Generate(99, refDate)

	if len(ds.Measurements) == 0 {
		t.Fatal("Expected measurements")
	}
	for _, m := range ds.Measurements {
		if m.IsPass != database.WithinTolerance(m.Gram, m.Pitch, m.Roll, m.Yaw) {
			t.Fatalf("Pass flag inconsistent: %+v", m)
		}
		if !m.IsPass && m.Notes == "" {
			t.Fatalf("Failed measurement without notes: %s", m.ID)
		}
	}
}

func TestGenerate_MachinesReferenceLines(t *testing.T) {
	ds := Generate(1, refDate)

	lineIDs := make(map[string]bool)
	for _, l := range ds.Lines {
		lineIDs[l.ID] = true
	}
	for _, m := range ds.Machines {
		if !lineIDs[m.LineID] {
			t.Errorf("Machine %s references unknown line %s", m.ID, m.LineID)
		}
	}
}
