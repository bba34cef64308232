package mockdata

import (
	"time"

	"github.com/smukkama/factory-monitor/internal/database"
)

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

var users = []database.User{
	{ID: "user-001", Email: "admin@coco.com", Name: "Somchai Admin", Role: database.RoleAdmin, CreatedAt: ts("2025-01-01T00:00:00Z"), UpdatedAt: ts("2025-01-01T00:00:00Z")},
	{ID: "user-002", Email: "operator1@coco.com", Name: "Napat Operator", Role: database.RoleOperator, CreatedAt: ts("2025-01-05T00:00:00Z"), UpdatedAt: ts("2025-01-05T00:00:00Z")},
	{ID: "user-003", Email: "operator2@coco.com", Name: "Kanya Operator", Role: database.RoleOperator, CreatedAt: ts("2025-02-01T00:00:00Z"), UpdatedAt: ts("2025-02-01T00:00:00Z")},
	{ID: "user-004", Email: "inspector@coco.com", Name: "Wichai Inspector", Role: database.RoleInspector, CreatedAt: ts("2025-01-10T00:00:00Z"), UpdatedAt: ts("2025-01-10T00:00:00Z")},
	{ID: "user-005", Email: "viewer@coco.com", Name: "Ploy Viewer", Role: database.RoleViewer, CreatedAt: ts("2025-03-01T00:00:00Z"), UpdatedAt: ts("2025-03-01T00:00:00Z")},
}

var lines = []database.Line{
	{
		ID:          "line-001",
		Name:        "Assembly Line A",
		Description: "Main assembly line for product series A: component assembly, soldering and final integration.",
		Location:    "Building 1, Floor 1",
		IsActive:    true,
		CreatedAt:   ts("2024-06-01T00:00:00Z"),
	},
	{
		ID:          "line-002",
		Name:        "Packaging Line B",
		Description: "Automated packaging line for finished products: labeling, boxing and palletizing.",
		Location:    "Building 1, Floor 2",
		IsActive:    true,
		CreatedAt:   ts("2024-07-15T00:00:00Z"),
	},
	{
		ID:          "line-003",
		Name:        "Testing Line C",
		Description: "Quality testing and inspection line: electrical, stress and visual inspection.",
		Location:    "Building 2, Floor 1",
		IsActive:    true,
		CreatedAt:   ts("2024-09-01T00:00:00Z"),
	},
}

var machines = []database.Machine{
	{ID: "machine-001", Name: "SMT Placer A1", Model: "Fuji NXT III", SerialNumber: "SN-A1-2024-001", LineID: "line-001", Status: database.MachineRunning, IsActive: true, CreatedAt: ts("2024-06-01T00:00:00Z")},
	{ID: "machine-002", Name: "Reflow Oven A2", Model: "Heller 1936 MK7", SerialNumber: "SN-A2-2024-002", LineID: "line-001", Status: database.MachineRunning, IsActive: true, CreatedAt: ts("2024-06-01T00:00:00Z")},
	{ID: "machine-003", Name: "Pick & Place A3", Model: "Yamaha YSM20R", SerialNumber: "SN-A3-2024-003", LineID: "line-001", Status: database.MachineRunning, IsActive: true, CreatedAt: ts("2024-06-10T00:00:00Z")},
	{ID: "machine-004", Name: "Wave Solder A4", Model: "ERSA Powerflow", SerialNumber: "SN-A4-2024-004", LineID: "line-001", Status: database.MachineMaintenance, IsActive: true, CreatedAt: ts("2024-06-10T00:00:00Z")},
	{ID: "machine-005", Name: "Labeler B1", Model: "Herma 500", SerialNumber: "SN-B1-2024-005", LineID: "line-002", Status: database.MachineRunning, IsActive: true, CreatedAt: ts("2024-07-15T00:00:00Z")},
	{ID: "machine-006", Name: "Case Packer B2", Model: "Douglas Axiom", SerialNumber: "SN-B2-2024-006", LineID: "line-002", Status: database.MachineRunning, IsActive: true, CreatedAt: ts("2024-07-15T00:00:00Z")},
	{ID: "machine-007", Name: "Palletizer B3", Model: "Fanuc M-410iC", SerialNumber: "SN-B3-2024-007", LineID: "line-002", Status: database.MachineStopped, IsActive: true, CreatedAt: ts("2024-07-20T00:00:00Z")},
	{ID: "machine-008", Name: "Shrink Wrapper B4", Model: "Lantech S-300", SerialNumber: "SN-B4-2024-008", LineID: "line-002", Status: database.MachineIdle, IsActive: true, CreatedAt: ts("2024-07-20T00:00:00Z")},
	{ID: "machine-009", Name: "AOI Tester C1", Model: "Koh Young Zenith", SerialNumber: "SN-C1-2024-009", LineID: "line-003", Status: database.MachineRunning, IsActive: true, CreatedAt: ts("2024-09-01T00:00:00Z")},
	{ID: "machine-010", Name: "ICT Tester C2", Model: "Keysight i3070", SerialNumber: "SN-C2-2024-010", LineID: "line-003", Status: database.MachineRunning, IsActive: true, CreatedAt: ts("2024-09-01T00:00:00Z")},
	{ID: "machine-011", Name: "Burn-in Rack C3", Model: "Reltech BR-48", SerialNumber: "SN-C3-2024-011", LineID: "line-003", Status: database.MachineRunning, IsActive: true, CreatedAt: ts("2024-09-15T00:00:00Z")},
	{ID: "machine-012", Name: "X-Ray Inspector C4", Model: "Nordson Quadra 7", SerialNumber: "SN-C4-2024-012", LineID: "line-003", Status: database.MachineStopped, IsActive: false, CreatedAt: ts("2024-09-15T00:00:00Z")},
}

// machines that report production counts
var productionMachineIDs = []string{
	"machine-001", "machine-002", "machine-003", "machine-005",
	"machine-006", "machine-008", "machine-009", "machine-010",
}

// machines with sensor history
var sensorMachineIDs = []string{
	"machine-001", "machine-002", "machine-003", "machine-005", "machine-006",
	"machine-008", "machine-009", "machine-010", "machine-011",
}

// machines inspected by QC
var measuredMachineIDs = []string{
	"machine-001", "machine-002", "machine-005", "machine-009", "machine-010",
}

var operatorIDs = []string{"user-002", "user-003"}

const inspectorID = "user-004"

var downtimeLogs = []database.DowntimeLog{
	database.NewDowntimeLog("dt-001", "machine-007", database.ReasonBreakdown,
		"Conveyor drive motor overheated and tripped", ts("2026-02-08T06:45:00Z"), nil,
		database.DowntimeOpen, "user-002", nil),
	database.NewDowntimeLog("dt-002", "machine-004", database.ReasonPlannedMaintenance,
		"Quarterly solder pot cleaning and nozzle replacement", ts("2026-02-08T02:00:00Z"), nil,
		database.DowntimeInProgress, "user-003", nil),
	database.NewDowntimeLog("dt-003", "machine-012", database.ReasonBreakdown,
		"X-ray tube failed self-test", ts("2026-02-07T22:10:00Z"), nil,
		database.DowntimeOpen, "user-003", nil),
	database.NewDowntimeLog("dt-004", "machine-001", database.ReasonChangeover,
		"Feeder changeover for product A-220", ts("2026-02-07T14:00:00Z"), ptr(ts("2026-02-07T14:45:00Z")),
		database.DowntimeResolved, "user-002", ptr("user-001")),
	database.NewDowntimeLog("dt-005", "machine-005", database.ReasonBreakdown,
		"Label applicator jammed", ts("2026-02-06T09:20:00Z"), ptr(ts("2026-02-06T10:50:00Z")),
		database.DowntimeResolved, "user-002", ptr("user-002")),
	database.NewDowntimeLog("dt-006", "machine-009", database.ReasonOther,
		"Camera recalibration after firmware update", ts("2026-02-05T16:00:00Z"), ptr(ts("2026-02-05T16:30:00Z")),
		database.DowntimeResolved, "user-003", ptr("user-001")),
	database.NewDowntimeLog("dt-007", "machine-002", database.ReasonPlannedMaintenance,
		"Zone 4 heater element replacement", ts("2026-02-03T01:00:00Z"), ptr(ts("2026-02-03T05:00:00Z")),
		database.DowntimeResolved, "user-003", ptr("user-001")),
	database.NewDowntimeLog("dt-008", "machine-006", database.ReasonBreakdown,
		"Glue gun clogged", ts("2026-02-01T11:30:00Z"), ptr(ts("2026-02-01T12:40:00Z")),
		database.DowntimeResolved, "user-002", ptr("user-003")),
}

var vistaTours = []database.VistaTour{
	{
		ID:           "vista-001",
		LineID:       ptr("line-001"),
		TourURL:      "https://my.matterport.com/show/?m=7ffnfBNamei",
		ThumbnailURL: "https://my.matterport.com/api/v1/player/models/7ffnfBNamei/thumb?width=800",
		Name:         "Assembly Line A Full Tour",
		Description:  "Walkthrough of the warehouse, production area and workstations",
	},
	{
		ID:           "vista-002",
		MachineID:    ptr("machine-001"),
		LineID:       ptr("line-001"),
		TourURL:      "https://my.matterport.com/show/?m=uB2E3DXZZL5",
		ThumbnailURL: "https://my.matterport.com/api/v1/player/models/uB2E3DXZZL5/thumb?width=800",
		Name:         "SMT Placer A1 Machine Detail",
		Description:  "Machine area with interactive hotspots for each component",
	},
	{
		ID:           "vista-003",
		LineID:       ptr("line-002"),
		TourURL:      "https://my.matterport.com/show/?m=Q3tJNr4Moyx",
		ThumbnailURL: "https://my.matterport.com/api/v1/player/models/Q3tJNr4Moyx/thumb?width=800",
		Name:         "Packaging Line B Overview",
		Description:  "Packaging line from labeling to palletizing",
	},
	{
		ID:           "vista-004",
		LineID:       ptr("line-003"),
		TourURL:      "https://my.matterport.com/show/?m=hcGmJG8kMtJ",
		ThumbnailURL: "https://my.matterport.com/api/v1/player/models/hcGmJG8kMtJ/thumb?width=800",
		Name:         "Testing Line C Quality Lab",
		Description:  "Cleanroom testing and quality inspection area",
	},
	{
		ID:           "vista-005",
		MachineID:    ptr("machine-005"),
		LineID:       ptr("line-002"),
		TourURL:      "https://my.matterport.com/show/?m=CwMGYNx4MyN",
		ThumbnailURL: "https://my.matterport.com/api/v1/player/models/CwMGYNx4MyN/thumb?width=800",
		Name:         "Labeler B1 Machine Detail",
		Description:  "Close-up of the labeling mechanism and control panel",
	},
	{
		ID:           "vista-006",
		MachineID:    ptr("machine-009"),
		LineID:       ptr("line-003"),
		TourURL:      "https://my.matterport.com/show/?m=fvVXVn144wg",
		ThumbnailURL: "https://my.matterport.com/api/v1/player/models/fvVXVn144wg/thumb?width=800",
		Name:         "AOI Tester C1 Inspection Bay",
		Description:  "Automated optical inspection equipment and testing stations",
	},
}
