// Package mockdata builds the deterministic in-memory dataset the dashboard
// runs on when no database is configured.
package mockdata

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/numeric"
)

const (
	productionDays    = 30
	measurementDays   = 14
	sensorIntervals   = 288 // 24h of 5-minute samples
	sensorStep        = 5 * time.Minute
	sensorHistoryHour = 12 // history ends at noon on the reference date
)

// Generate returns a dataset whose time-based records end at refDate. The
// same seed always yields the same dataset.
func Generate(seed uint64, refDate time.Time) *database.Dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	day := time.Date(refDate.Year(), refDate.Month(), refDate.Day(), 0, 0, 0, 0, time.UTC)

	return &database.Dataset{
		Users:          slices.Clone(users),
		Lines:          slices.Clone(lines),
		Machines:       slices.Clone(machines),
		ProductionLogs: productionLogs(rng, day),
		SensorHistory:  sensorHistory(rng, day.Add(sensorHistoryHour*time.Hour)),
		DowntimeLogs:   slices.Clone(downtimeLogs),
		Measurements:   measurements(rng, day),
		VistaTours:     slices.Clone(vistaTours),
	}
}

func productionLogs(rng *rand.Rand, day time.Time) []database.ProductionLog {
	logs := make([]database.ProductionLog, 0, productionDays*len(productionMachineIDs)*2)

	for offset := 0; offset < productionDays; offset++ {
		date := day.AddDate(0, 0, -offset)
		shiftDate := date.Format(database.ShiftDateLayout)

		for _, machineID := range productionMachineIDs {
			for _, shift := range []database.Shift{database.ShiftDay, database.ShiftNight} {
				input := 800 + rng.IntN(500)
				rate := 0.85 + rng.Float64()*0.13
				output := int(float64(input) * rate)
				operator := operatorIDs[rng.IntN(len(operatorIDs))]

				logs = append(logs, database.NewProductionLog(
					fmt.Sprintf("prod-%s-%s-%s", machineID, shiftDate, shift),
					machineID, shiftDate, shift,
					input, output, input-output,
					operator, date,
				))
			}
		}
	}

	return logs
}

type sensorBaseline struct {
	temp, humidity, pressure, vibration, power float64
}

func sensorHistory(rng *rand.Rand, end time.Time) []database.SensorReading {
	readings := make([]database.SensorReading, 0, sensorIntervals*len(sensorMachineIDs))

	for _, machineID := range sensorMachineIDs {
		base := sensorBaseline{
			temp:      40 + rng.Float64()*20,
			humidity:  45 + rng.Float64()*10,
			pressure:  1010 + rng.Float64()*10,
			vibration: 0.5 + rng.Float64()*1.5,
			power:     15 + rng.Float64()*10,
		}
		// the reflow oven runs hot
		if machineID == "machine-002" {
			base.temp = 74
		}

		for i := sensorIntervals - 1; i >= 0; i-- {
			recordedAt := end.Add(-time.Duration(i) * sensorStep)
			readings = append(readings, database.SensorReading{
				ID:               fmt.Sprintf("sensor-%s-%d", machineID, i),
				MachineID:        machineID,
				Temperature:      numeric.Round(base.temp+jitter(rng, 8), 1),
				Humidity:         numeric.Round(base.humidity+jitter(rng, 6), 1),
				Pressure:         numeric.Round(base.pressure+jitter(rng, 4), 1),
				Vibration:        numeric.Round(base.vibration+jitter(rng, 0.8), 2),
				PowerConsumption: numeric.Round(base.power+jitter(rng, 5), 1),
				Status:           database.SensorStatusNormal,
				RecordedAt:       recordedAt,
			})
		}
	}

	return readings
}

func measurements(rng *rand.Rand, day time.Time) []database.Measurement {
	var out []database.Measurement
	counter := 0

	for offset := 0; offset < measurementDays; offset++ {
		measuredAt := day.AddDate(0, 0, -offset)

		for _, machineID := range measuredMachineIDs {
			count := 2 + rng.IntN(2)
			for i := 0; i < count; i++ {
				counter++
				gram := numeric.Round(25+jitter(rng, 4), 2)
				pitch := numeric.Round(jitter(rng, 2), 3)
				roll := numeric.Round(jitter(rng, 2), 3)
				yaw := numeric.Round(jitter(rng, 2), 3)
				custom := map[string]float64{
					"thickness": numeric.Round(1.2+jitter(rng, 0.3), 2),
					"width":     numeric.Round(50+jitter(rng, 2), 2),
				}

				notes := ""
				if !database.WithinTolerance(gram, pitch, roll, yaw) {
					notes = "Out of tolerance, flagged for review"
				}

				out = append(out, database.NewMeasurement(
					fmt.Sprintf("meas-%04d", counter),
					machineID, inspectorID, "Standard QC",
					gram, pitch, roll, yaw, custom, notes, measuredAt,
				))
			}
		}
	}

	return out
}

// jitter returns a uniform value in [-spread/2, spread/2)
func jitter(rng *rand.Rand, spread float64) float64 {
	return (rng.Float64() - 0.5) * spread
}
