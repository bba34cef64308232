package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// DB wraps the database connection. The service only reads from it: records
// are loaded once at start and served from memory afterwards.
type DB struct {
	*sql.DB
}

// Connect establishes a connection to the database
func Connect(ctx context.Context, connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &DB{db}, nil
}

// RunMigrations executes all SQL migration files in order
func (db *DB) RunMigrations(ctx context.Context, migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		log.Info().Str("file", filename).Msg("running migration")

		content, err := os.ReadFile(filepath.Join(migrationsDir, filename))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	return nil
}

// LoadDataset reads every record table into memory
func (db *DB) LoadDataset(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}

	loaders := []struct {
		name string
		fn   func(context.Context, *Dataset) error
	}{
		{"users", db.loadUsers},
		{"lines", db.loadLines},
		{"machines", db.loadMachines},
		{"production_logs", db.loadProductionLogs},
		{"sensor_readings", db.loadSensorReadings},
		{"downtime_logs", db.loadDowntimeLogs},
		{"measurements", db.loadMeasurements},
		{"vista_tours", db.loadVistaTours},
	}

	for _, l := range loaders {
		if err := l.fn(ctx, ds); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", l.name, err)
		}
	}

	return ds, nil
}

func (db *DB) loadUsers(ctx context.Context, ds *Dataset) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		ds.Users = append(ds.Users, u)
	}
	return rows.Err()
}

func (db *DB) loadLines(ctx context.Context, ds *Dataset) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, description, location, is_active, created_at
		FROM lines
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Location, &l.IsActive, &l.CreatedAt); err != nil {
			return err
		}
		ds.Lines = append(ds.Lines, l)
	}
	return rows.Err()
}

func (db *DB) loadMachines(ctx context.Context, ds *Dataset) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, model, serial_number, line_id, status, is_active, created_at
		FROM machines
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m Machine
		if err := rows.Scan(&m.ID, &m.Name, &m.Model, &m.SerialNumber, &m.LineID, &m.Status, &m.IsActive, &m.CreatedAt); err != nil {
			return err
		}
		ds.Machines = append(ds.Machines, m)
	}
	return rows.Err()
}

func (db *DB) loadProductionLogs(ctx context.Context, ds *Dataset) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, machine_id, shift_date, shift, input, output, scrap, operator_id, created_at
		FROM production_logs
		ORDER BY shift_date DESC, id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, machineID, operatorID string
			shiftDate, createdAt      time.Time
			shift                     Shift
			input, output, scrap      int
		)
		if err := rows.Scan(&id, &machineID, &shiftDate, &shift, &input, &output, &scrap, &operatorID, &createdAt); err != nil {
			return err
		}
		// yield is recomputed rather than trusted from storage
		ds.ProductionLogs = append(ds.ProductionLogs,
			NewProductionLog(id, machineID, shiftDate.Format(ShiftDateLayout), shift, input, output, scrap, operatorID, createdAt))
	}
	return rows.Err()
}

func (db *DB) loadSensorReadings(ctx context.Context, ds *Dataset) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, machine_id, temperature, humidity, pressure, vibration,
		       power_consumption, status, recorded_at
		FROM sensor_readings
		ORDER BY machine_id, recorded_at
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r SensorReading
		if err := rows.Scan(
			&r.ID,
			&r.MachineID,
			&r.Temperature,
			&r.Humidity,
			&r.Pressure,
			&r.Vibration,
			&r.PowerConsumption,
			&r.Status,
			&r.RecordedAt,
		); err != nil {
			return err
		}
		ds.SensorHistory = append(ds.SensorHistory, r)
	}
	return rows.Err()
}

func (db *DB) loadDowntimeLogs(ctx context.Context, ds *Dataset) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, machine_id, reason, description, start_time, end_time,
		       reported_by_id, resolved_by_id, status
		FROM downtime_logs
		ORDER BY start_time DESC
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, machineID, description, reportedBy string
			reason                                 DowntimeReason
			status                                 DowntimeStatus
			start                                  time.Time
			end                                    pq.NullTime
			resolvedBy                             sql.NullString
		)
		if err := rows.Scan(&id, &machineID, &reason, &description, &start, &end, &reportedBy, &resolvedBy, &status); err != nil {
			return err
		}

		var endPtr *time.Time
		if end.Valid {
			endPtr = &end.Time
		}
		var resolvedPtr *string
		if resolvedBy.Valid {
			resolvedPtr = &resolvedBy.String
		}

		ds.DowntimeLogs = append(ds.DowntimeLogs,
			NewDowntimeLog(id, machineID, reason, description, start, endPtr, status, reportedBy, resolvedPtr))
	}
	return rows.Err()
}

func (db *DB) loadMeasurements(ctx context.Context, ds *Dataset) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, machine_id, inspector_id, measurement_type,
		       gram, pitch, roll, yaw, notes, measured_at
		FROM measurements
		ORDER BY measured_at DESC, id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, machineID, inspectorID, mtype, notes string
			gram, pitch, roll, yaw                   float64
			measuredAt                               time.Time
		)
		if err := rows.Scan(&id, &machineID, &inspectorID, &mtype, &gram, &pitch, &roll, &yaw, &notes, &measuredAt); err != nil {
			return err
		}
		ds.Measurements = append(ds.Measurements,
			NewMeasurement(id, machineID, inspectorID, mtype, gram, pitch, roll, yaw, nil, notes, measuredAt))
	}
	return rows.Err()
}

func (db *DB) loadVistaTours(ctx context.Context, ds *Dataset) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, machine_id, line_id, tour_url, thumbnail_url, name, description
		FROM vista_tours
		ORDER BY id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			v                 VistaTour
			machineID, lineID sql.NullString
			thumbnail         sql.NullString
		)
		if err := rows.Scan(&v.ID, &machineID, &lineID, &v.TourURL, &thumbnail, &v.Name, &v.Description); err != nil {
			return err
		}
		if machineID.Valid {
			v.MachineID = &machineID.String
		}
		if lineID.Valid {
			v.LineID = &lineID.String
		}
		v.ThumbnailURL = thumbnail.String
		ds.VistaTours = append(ds.VistaTours, v)
	}
	return rows.Err()
}
