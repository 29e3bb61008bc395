package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stapelberg/postgrestest"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// SetupEphemeralPostgresDatabase starts a throwaway PostgreSQL server and
// returns a job store backed by it. Close stops the server.
func SetupEphemeralPostgresDatabase(ctx context.Context) (*BunDB, error) {
	Logger.Info("Starting ephemeral PostgreSQL server...")

	pgt, err := postgrestest.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start ephemeral postgres: %w", err)
	}
	Logger.Info("Ephemeral PostgreSQL server started", "dsn", pgt.DefaultDatabase())

	dsn, err := pgt.CreateDatabase(ctx)
	if err != nil {
		pgt.Cleanup()
		return nil, fmt.Errorf("failed to create pdf2image database: %w", err)
	}
	Logger.Info("Created ephemeral database", "dsn", dsn)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		pgt.Cleanup()
		return nil, fmt.Errorf("failed to open pdf2image database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		pgt.Cleanup()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	Logger.Info("Connected to ephemeral PostgreSQL database successfully")

	if err := runPostgresMigrations(sqlDB); err != nil {
		sqlDB.Close()
		pgt.Cleanup()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	result := &BunDB{
		db:      bun.NewDB(sqlDB, pgdialect.New()),
		dbType:  "ephemeral",
		cleanup: pgt.Cleanup,
	}
	result.addQueryHook()
	return result, nil
}
