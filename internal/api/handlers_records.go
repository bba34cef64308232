package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smukkama/factory-monitor/internal/database"
)

var (
	errLineNotFound    = errors.New("line not found")
	errMachineNotFound = errors.New("machine not found")
	errTourNotFound    = errors.New("vista tour not found")
)

type machineDetail struct {
	database.Machine
	Line          *database.Line          `json:"line"`
	LatestReading *database.SensorReading `json:"latestReading"`
}

func (a *API) handleListLines(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"lines": orEmpty(a.agg.LineSummaries())})
}

func (a *API) handleGetLine(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")
	for _, summary := range a.agg.LineSummaries() {
		if summary.ID == lineID {
			respondJSON(w, http.StatusOK, summary)
			return
		}
	}
	respondError(w, http.StatusNotFound, errLineNotFound)
}

func (a *API) handleLineMachines(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")
	if a.store.LineByID(lineID) == nil {
		respondError(w, http.StatusNotFound, errLineNotFound)
		return
	}
	machines := orEmpty(a.store.MachinesByLine(lineID))
	respondJSON(w, http.StatusOK, map[string]any{"machines": machines})
}

func (a *API) handleLineVista(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")
	if a.store.LineByID(lineID) == nil {
		respondError(w, http.StatusNotFound, errLineNotFound)
		return
	}
	tours := orEmpty(a.store.VistaToursByLine(lineID))
	respondJSON(w, http.StatusOK, map[string]any{"tours": tours})
}

func (a *API) handleListMachines(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"machines": orEmpty(a.store.Machines())})
}

// machineOr404 resolves {machineID} or writes a 404
func (a *API) machineOr404(w http.ResponseWriter, r *http.Request) (*database.Machine, bool) {
	machine := a.store.MachineByID(chi.URLParam(r, "machineID"))
	if machine == nil {
		respondError(w, http.StatusNotFound, errMachineNotFound)
		return nil, false
	}
	return machine, true
}

func (a *API) handleGetMachine(w http.ResponseWriter, r *http.Request) {
	machine, ok := a.machineOr404(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, machineDetail{
		Machine:       *machine,
		Line:          a.store.LineByID(machine.LineID),
		LatestReading: a.store.LatestSensor(machine.ID),
	})
}

func (a *API) handleMachineProduction(w http.ResponseWriter, r *http.Request) {
	machine, ok := a.machineOr404(w, r)
	if !ok {
		return
	}
	n, err := queryLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	logs := orEmpty(a.store.ProductionByMachine(machine.ID))
	respondJSON(w, http.StatusOK, map[string]any{
		"logs":    limit(logs, n),
		"summary": a.agg.MachineProductionSummary(machine.ID),
	})
}

func (a *API) handleMachineProductionTrend(w http.ResponseWriter, r *http.Request) {
	machine, ok := a.machineOr404(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"days": orEmpty(a.agg.MachineProductionTrend(machine.ID))})
}

func (a *API) handleMachineSensors(w http.ResponseWriter, r *http.Request) {
	machine, ok := a.machineOr404(w, r)
	if !ok {
		return
	}
	history := orEmpty(a.store.SensorHistory(machine.ID))
	respondJSON(w, http.StatusOK, map[string]any{
		"latest":  a.store.LatestSensor(machine.ID),
		"history": history,
	})
}

func (a *API) handleMachineDowntime(w http.ResponseWriter, r *http.Request) {
	machine, ok := a.machineOr404(w, r)
	if !ok {
		return
	}
	logs := orEmpty(a.store.DowntimeByMachine(machine.ID))
	respondJSON(w, http.StatusOK, map[string]any{
		"logs":  logs,
		"stats": a.agg.DowntimeStats(machine.ID),
	})
}

func (a *API) handleMachineMeasurements(w http.ResponseWriter, r *http.Request) {
	machine, ok := a.machineOr404(w, r)
	if !ok {
		return
	}
	measurements := orEmpty(a.store.MeasurementsByMachine(machine.ID))
	respondJSON(w, http.StatusOK, map[string]any{
		"measurements": measurements,
		"stats":        a.agg.MeasurementStats(machine.ID),
	})
}

func (a *API) handleMachineVista(w http.ResponseWriter, r *http.Request) {
	machine, ok := a.machineOr404(w, r)
	if !ok {
		return
	}
	tour := a.store.VistaTourByMachine(machine.ID)
	if tour == nil {
		respondError(w, http.StatusNotFound, errTourNotFound)
		return
	}
	respondJSON(w, http.StatusOK, tour)
}

func (a *API) handleListProduction(w http.ResponseWriter, r *http.Request) {
	n, err := queryLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	logs := orEmpty(a.store.ProductionLogs())
	respondJSON(w, http.StatusOK, map[string]any{"logs": limit(logs, n), "total": len(logs)})
}

func (a *API) handleListDowntime(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"logs":  orEmpty(a.store.DowntimeLogs()),
		"stats": a.agg.DowntimeStats(""),
	})
}

func (a *API) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	n, err := queryLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"measurements": limit(orEmpty(a.store.Measurements()), n),
		"stats":        a.agg.MeasurementStats(""),
	})
}

func (a *API) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"users": orEmpty(a.store.Users())})
}
