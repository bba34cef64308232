package database

import (
	"math"
	"time"

	"github.com/smukkama/factory-monitor/internal/numeric"
)

// ShiftDateLayout is the calendar-date format used by production logs.
const ShiftDateLayout = "2006-01-02"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleOperator  Role = "OPERATOR"
	RoleInspector Role = "INSPECTOR"
	RoleViewer    Role = "VIEWER"
)

type MachineStatus string

const (
	MachineRunning     MachineStatus = "RUNNING"
	MachineIdle        MachineStatus = "IDLE"
	MachineStopped     MachineStatus = "STOPPED"
	MachineMaintenance MachineStatus = "MAINTENANCE"
)

type Shift string

const (
	ShiftDay   Shift = "DAY"
	ShiftNight Shift = "NIGHT"
)

type DowntimeReason string

const (
	ReasonPlannedMaintenance DowntimeReason = "PLANNED_MAINTENANCE"
	ReasonBreakdown          DowntimeReason = "BREAKDOWN"
	ReasonChangeover         DowntimeReason = "CHANGEOVER"
	ReasonOther              DowntimeReason = "OTHER"
)

type DowntimeStatus string

const (
	DowntimeOpen       DowntimeStatus = "OPEN"
	DowntimeInProgress DowntimeStatus = "IN_PROGRESS"
	DowntimeResolved   DowntimeStatus = "RESOLVED"
)

// Sensor reading status flags
const (
	SensorStatusNormal  = "normal"
	SensorStatusWarning = "warning"
)

// User is an actor referenced by production, downtime and measurement records
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Line is a production line; its machine count is derived from Machine.LineID
type Line struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Machine struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Model        string        `json:"model"`
	SerialNumber string        `json:"serialNumber"`
	LineID       string        `json:"lineId"`
	Status       MachineStatus `json:"status"`
	IsActive     bool          `json:"isActive"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// ProductionLog is one shift's counts for a machine. Build it with
// NewProductionLog so Yield stays consistent with Input and Output.
type ProductionLog struct {
	ID         string    `json:"id"`
	MachineID  string    `json:"machineId"`
	ShiftDate  string    `json:"shiftDate"`
	Shift      Shift     `json:"shift"`
	Input      int       `json:"input"`
	Output     int       `json:"output"`
	Scrap      int       `json:"scrap"`
	Yield      float64   `json:"yield"`
	OperatorID string    `json:"operatorId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewProductionLog fills the derived yield percentage
func NewProductionLog(id, machineID, shiftDate string, shift Shift, input, output, scrap int, operatorID string, createdAt time.Time) ProductionLog {
	return ProductionLog{
		ID:         id,
		MachineID:  machineID,
		ShiftDate:  shiftDate,
		Shift:      shift,
		Input:      input,
		Output:     output,
		Scrap:      scrap,
		Yield:      YieldPercent(output, input),
		OperatorID: operatorID,
		CreatedAt:  createdAt,
	}
}

// YieldPercent returns output/input*100 rounded to 2 decimals, or 0 when
// input is 0.
func YieldPercent(output, input int) float64 {
	return numeric.Percent(float64(output), float64(input), 2)
}

type SensorReading struct {
	ID               string    `json:"id"`
	MachineID        string    `json:"machineId"`
	Temperature      float64   `json:"temperature"`
	Humidity         float64   `json:"humidity"`
	Pressure         float64   `json:"pressure"`
	Vibration        float64   `json:"vibration"`
	PowerConsumption float64   `json:"powerConsumption"`
	Status           string    `json:"status"`
	RecordedAt       time.Time `json:"recordedAt"`
}

// DowntimeLog records a stoppage. Duration is nil until EndTime is set.
type DowntimeLog struct {
	ID           string         `json:"id"`
	MachineID    string         `json:"machineId"`
	Reason       DowntimeReason `json:"reason"`
	Description  string         `json:"description"`
	StartTime    time.Time      `json:"startTime"`
	EndTime      *time.Time     `json:"endTime"`
	Duration     *int           `json:"duration"`
	ReportedByID string         `json:"reportedById"`
	ResolvedByID *string        `json:"resolvedById"`
	Status       DowntimeStatus `json:"status"`
}

// NewDowntimeLog derives Duration from the start and optional end time
func NewDowntimeLog(id, machineID string, reason DowntimeReason, description string, start time.Time, end *time.Time, status DowntimeStatus, reportedBy string, resolvedBy *string) DowntimeLog {
	return DowntimeLog{
		ID:           id,
		MachineID:    machineID,
		Reason:       reason,
		Description:  description,
		StartTime:    start,
		EndTime:      end,
		Duration:     DurationMinutes(start, end),
		ReportedByID: reportedBy,
		ResolvedByID: resolvedBy,
		Status:       status,
	}
}

// Resolve returns a copy of the log closed at end by resolver.
func (d DowntimeLog) Resolve(end time.Time, resolver string) DowntimeLog {
	return NewDowntimeLog(d.ID, d.MachineID, d.Reason, d.Description, d.StartTime, &end, DowntimeResolved, d.ReportedByID, &resolver)
}

// DurationMinutes returns whole minutes between start and end, nil when end
// is unset.
func DurationMinutes(start time.Time, end *time.Time) *int {
	if end == nil {
		return nil
	}
	minutes := int(end.Sub(start) / time.Minute)
	return &minutes
}

// Measurement tolerance bands
const (
	GramMin           = 23.5
	GramMax           = 26.5
	AngleToleranceAbs = 0.8
)

type Measurement struct {
	ID              string             `json:"id"`
	MachineID       string             `json:"machineId"`
	InspectorID     string             `json:"inspectorId"`
	MeasurementType string             `json:"measurementType"`
	Gram            float64            `json:"gram"`
	Pitch           float64            `json:"pitch"`
	Roll            float64            `json:"roll"`
	Yaw             float64            `json:"yaw"`
	CustomValues    map[string]float64 `json:"customValues,omitempty"`
	IsPass          bool               `json:"isPass"`
	Notes           string             `json:"notes"`
	MeasuredAt      time.Time          `json:"measuredAt"`
}

// NewMeasurement derives IsPass from the tolerance bands
func NewMeasurement(id, machineID, inspectorID, measurementType string, gram, pitch, roll, yaw float64, custom map[string]float64, notes string, measuredAt time.Time) Measurement {
	return Measurement{
		ID:              id,
		MachineID:       machineID,
		InspectorID:     inspectorID,
		MeasurementType: measurementType,
		Gram:            gram,
		Pitch:           pitch,
		Roll:            roll,
		Yaw:             yaw,
		CustomValues:    custom,
		IsPass:          WithinTolerance(gram, pitch, roll, yaw),
		Notes:           notes,
		MeasuredAt:      measuredAt,
	}
}

// WithinTolerance reports whether all four readings are inside their bands
func WithinTolerance(gram, pitch, roll, yaw float64) bool {
	return gram >= GramMin && gram <= GramMax &&
		math.Abs(pitch) <= AngleToleranceAbs &&
		math.Abs(roll) <= AngleToleranceAbs &&
		math.Abs(yaw) <= AngleToleranceAbs
}

// VistaTour links a 360° walkthrough to a line and optionally one machine
type VistaTour struct {
	ID           string  `json:"id"`
	MachineID    *string `json:"machineId"`
	LineID       *string `json:"lineId"`
	TourURL      string  `json:"tourUrl"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
}

// Dataset is a full set of records as loaded at process start
type Dataset struct {
	Users          []User
	Lines          []Line
	Machines       []Machine
	ProductionLogs []ProductionLog
	SensorHistory  []SensorReading
	DowntimeLogs   []DowntimeLog
	Measurements   []Measurement
	VistaTours     []VistaTour
}
