package database

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// schemaMigration is a row of the migration tracking table
type schemaMigration struct {
	bun.BaseModel `bun:"table:bun_schema_migrations"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Version   string    `bun:"version,notnull,unique"`
	Name      string    `bun:"name"`
	AppliedAt time.Time `bun:"applied_at,notnull,default:current_timestamp"`
}

// migration is one in-code schema step
type migration struct {
	version string
	name    string
	up      func(context.Context, bun.Tx) error
}

// sqliteMigrations are applied in order by runMigrations
var sqliteMigrations = []migration{
	{"001", "create_jobs_table", init001CreateJobsTable},
}

// runMigrations applies the in-code migrations used by sqlite, skipping
// versions already recorded in bun_schema_migrations
func (b *BunDB) runMigrations(ctx context.Context) error {
	if _, err := b.db.NewCreateTable().
		Model((*schemaMigration)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []schemaMigration
	if err := b.db.NewSelect().Model(&applied).Scan(ctx); err != nil {
		return fmt.Errorf("failed to check applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, m := range applied {
		done[m.Version] = true
	}

	for _, m := range sqliteMigrations {
		if done[m.version] {
			continue
		}
		Logger.Info("Running migration", "version", m.version, "name", m.name, "database", b.dbType)

		// the step and its tracking row commit together
		err := b.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if err := m.up(ctx, tx); err != nil {
				return err
			}
			_, err := tx.NewInsert().
				Model(&schemaMigration{Version: m.version, Name: m.name, AppliedAt: time.Now()}).
				Exec(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
	}

	Logger.Info("Schema up to date", "migrations", len(sqliteMigrations), "previouslyApplied", len(applied))
	return nil
}

// Migration 001: Create jobs table
func init001CreateJobsTable(ctx context.Context, tx bun.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			status TEXT DEFAULT 'pending',
			source TEXT NOT NULL DEFAULT '',
			pages TEXT NOT NULL DEFAULT '',
			scale TEXT NOT NULL DEFAULT '',
			compression TEXT NOT NULL DEFAULT '',
			output_folder TEXT NOT NULL DEFAULT '',
			page_count INTEGER NOT NULL DEFAULT 0,
			files TEXT,
			error TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			started_at TIMESTAMP,
			completed_at TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create jobs table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)",
		"CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_jobs_completed_at ON jobs(completed_at) WHERE completed_at IS NOT NULL",
	}
	for _, idx := range indexes {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			// Partial indexes might not be supported in all SQLite versions
			Logger.Warn("Could not create index (might not be supported)", "error", err)
		}
	}
	return nil
}
