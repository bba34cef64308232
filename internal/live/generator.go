// Package live produces synthetic latest readings for machines on a fixed
// cadence and fans them out to subscribers and sinks.
package live

import (
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/smukkama/factory-monitor/internal/clock"
	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/numeric"
)

// warningChance is the probability a generated reading is flagged
const warningChance = 0.05

// Generator makes one plausible sensor reading per call. It is safe for
// concurrent use.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	clock clock.Clock
}

func NewGenerator(seed uint64, c clock.Clock) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed+1)),
		clock: c,
	}
}

// Next returns a fresh reading for machineID stamped with the clock's now
func (g *Generator) Next(machineID string) database.SensorReading {
	g.mu.Lock()
	defer g.mu.Unlock()

	status := database.SensorStatusNormal
	if g.rng.Float64() < warningChance {
		status = database.SensorStatusWarning
	}

	return database.SensorReading{
		ID:               uuid.New().String(),
		MachineID:        machineID,
		Temperature:      numeric.Round(g.around(50, 15), 1),
		Humidity:         numeric.Round(g.around(48, 6), 1),
		Pressure:         numeric.Round(g.around(1013, 4), 1),
		Vibration:        numeric.Round(g.around(1.2, 0.75), 2),
		PowerConsumption: numeric.Round(g.around(20, 5), 1),
		Status:           status,
		RecordedAt:       g.clock.Now(),
	}
}

// around returns a uniform value in [center-spread, center+spread)
func (g *Generator) around(center, spread float64) float64 {
	return center + (g.rng.Float64()*2-1)*spread
}
