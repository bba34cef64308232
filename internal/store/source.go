package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/mockdata"
	"github.com/smukkama/factory-monitor/pkg/config"
)

// Data sources accepted by Open
const (
	SourceMock     = "mock"
	SourcePostgres = "postgres"
)

// Open builds a Store from the configured data source. For postgres the
// schema is migrated and every table is read once; the connection is closed
// before returning.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Data.Source {
	case SourceMock, "":
		ds := mockdata.Generate(cfg.Data.Seed, cfg.Data.ReferenceDate)
		log.Info().
			Uint64("seed", cfg.Data.Seed).
			Str("reference_date", cfg.Data.ReferenceDate.Format(config.ReferenceDateLayout)).
			Int("production_logs", len(ds.ProductionLogs)).
			Msg("generated mock dataset")
		return New(ds), nil

	case SourcePostgres:
		db, err := database.Connect(ctx, cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		defer db.Close()

		if err := db.RunMigrations(ctx, cfg.Data.MigrationsDir); err != nil {
			return nil, err
		}
		ds, err := db.LoadDataset(ctx)
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("host", cfg.Database.Host).
			Int("machines", len(ds.Machines)).
			Int("production_logs", len(ds.ProductionLogs)).
			Msg("loaded dataset from postgres")
		return New(ds), nil

	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}
