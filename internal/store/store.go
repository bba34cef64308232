// Package store holds the immutable record snapshot the service serves from.
// A Store is built once and never mutated, so it is safe for concurrent use
// without locking. Every accessor returns copies.
package store

import (
	"cmp"
	"slices"

	"github.com/smukkama/factory-monitor/internal/database"
)

type Store struct {
	users       []database.User
	lines       []database.Line
	machines    []database.Machine
	production  []database.ProductionLog // newest shift date first
	sensors     []database.SensorReading // oldest first
	downtime    []database.DowntimeLog
	measurement []database.Measurement
	tours       []database.VistaTour

	machineIndex map[string]int
	lineIndex    map[string]int
	sensorsByID  map[string][]database.SensorReading
}

// New builds a store from ds. Production logs are ordered by descending
// shift date and sensor history by ascending time; ties keep their input
// order.
func New(ds *database.Dataset) *Store {
	if ds == nil {
		ds = &database.Dataset{}
	}

	s := &Store{
		users:        slices.Clone(ds.Users),
		lines:        slices.Clone(ds.Lines),
		machines:     slices.Clone(ds.Machines),
		production:   slices.Clone(ds.ProductionLogs),
		sensors:      slices.Clone(ds.SensorHistory),
		downtime:     slices.Clone(ds.DowntimeLogs),
		measurement:  slices.Clone(ds.Measurements),
		tours:        slices.Clone(ds.VistaTours),
		machineIndex: make(map[string]int, len(ds.Machines)),
		lineIndex:    make(map[string]int, len(ds.Lines)),
		sensorsByID:  make(map[string][]database.SensorReading),
	}

	slices.SortStableFunc(s.production, func(a, b database.ProductionLog) int {
		return cmp.Compare(b.ShiftDate, a.ShiftDate)
	})
	slices.SortStableFunc(s.sensors, func(a, b database.SensorReading) int {
		return a.RecordedAt.Compare(b.RecordedAt)
	})

	for i, m := range s.machines {
		s.machineIndex[m.ID] = i
	}
	for i, l := range s.lines {
		s.lineIndex[l.ID] = i
	}
	for _, r := range s.sensors {
		s.sensorsByID[r.MachineID] = append(s.sensorsByID[r.MachineID], r)
	}

	return s
}

func (s *Store) Users() []database.User { return slices.Clone(s.users) }

func (s *Store) Lines() []database.Line { return slices.Clone(s.lines) }

func (s *Store) Machines() []database.Machine { return slices.Clone(s.machines) }

// ProductionLogs returns every log, newest shift date first
func (s *Store) ProductionLogs() []database.ProductionLog { return slices.Clone(s.production) }

func (s *Store) DowntimeLogs() []database.DowntimeLog { return slices.Clone(s.downtime) }

func (s *Store) Measurements() []database.Measurement { return slices.Clone(s.measurement) }

func (s *Store) VistaTours() []database.VistaTour { return slices.Clone(s.tours) }

// LineByID returns nil if the line doesn't exist
func (s *Store) LineByID(id string) *database.Line {
	i, ok := s.lineIndex[id]
	if !ok {
		return nil
	}
	line := s.lines[i]
	return &line
}

// MachineByID returns nil if the machine doesn't exist
func (s *Store) MachineByID(id string) *database.Machine {
	i, ok := s.machineIndex[id]
	if !ok {
		return nil
	}
	machine := s.machines[i]
	return &machine
}

// MachinesByLine returns the line's machines in declaration order
func (s *Store) MachinesByLine(lineID string) []database.Machine {
	var out []database.Machine
	for _, m := range s.machines {
		if m.LineID == lineID {
			out = append(out, m)
		}
	}
	return out
}

// ProductionByMachine returns the machine's logs, newest first
func (s *Store) ProductionByMachine(machineID string) []database.ProductionLog {
	var out []database.ProductionLog
	for _, p := range s.production {
		if p.MachineID == machineID {
			out = append(out, p)
		}
	}
	return out
}

// LatestSensor returns the most recent reading for a machine, or nil
func (s *Store) LatestSensor(machineID string) *database.SensorReading {
	history := s.sensorsByID[machineID]
	if len(history) == 0 {
		return nil
	}
	latest := history[len(history)-1]
	return &latest
}

// SensorHistory returns the machine's readings, oldest first
func (s *Store) SensorHistory(machineID string) []database.SensorReading {
	return slices.Clone(s.sensorsByID[machineID])
}

// DowntimeByMachine returns the machine's downtime logs, newest start first
func (s *Store) DowntimeByMachine(machineID string) []database.DowntimeLog {
	var out []database.DowntimeLog
	for _, d := range s.downtime {
		if d.MachineID == machineID {
			out = append(out, d)
		}
	}
	slices.SortStableFunc(out, func(a, b database.DowntimeLog) int {
		return b.StartTime.Compare(a.StartTime)
	})
	return out
}

// MeasurementsByMachine returns the machine's measurements, newest first
func (s *Store) MeasurementsByMachine(machineID string) []database.Measurement {
	var out []database.Measurement
	for _, m := range s.measurement {
		if m.MachineID == machineID {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b database.Measurement) int {
		return b.MeasuredAt.Compare(a.MeasuredAt)
	})
	return out
}

// FirstUserWithRole returns the first user in directory order holding role,
// or nil.
func (s *Store) FirstUserWithRole(role database.Role) *database.User {
	for _, u := range s.users {
		if u.Role == role {
			user := u
			return &user
		}
	}
	return nil
}

// VistaToursByLine returns tours covering the line as a whole (no machine)
func (s *Store) VistaToursByLine(lineID string) []database.VistaTour {
	var out []database.VistaTour
	for _, t := range s.tours {
		if t.MachineID == nil && t.LineID != nil && *t.LineID == lineID {
			out = append(out, t)
		}
	}
	return out
}

// VistaTourByMachine returns the machine's tour, or nil
func (s *Store) VistaTourByMachine(machineID string) *database.VistaTour {
	for _, t := range s.tours {
		if t.MachineID != nil && *t.MachineID == machineID {
			tour := t
			return &tour
		}
	}
	return nil
}
