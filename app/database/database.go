// Package database opens the PostgreSQL handle and runs the module
// migrations in dependency order.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	catalogmigrations "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories/migrations"
	duelmigrations "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories/migrations"
	ledgermigrations "github.com/Black-And-White-Club/guessdle/app/modules/ledger/infrastructure/repositories/migrations"
	playmigrations "github.com/Black-And-White-Club/guessdle/app/modules/play/infrastructure/repositories/migrations"
	wagermigrations "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/repositories/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// Open connects to PostgreSQL through pgdriver and checks the connection.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(10*time.Second),
	))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// ModuleMigrator is one module's migrator.
type ModuleMigrator struct {
	Name     string
	Migrator *migrate.Migrator
}

// Migrators returns every module migrator in foreign key order: later
// modules reference tables created by earlier ones.
func Migrators(db *bun.DB) []ModuleMigrator {
	ordered := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"catalog", catalogmigrations.Migrations},
		{"ledger", ledgermigrations.Migrations},
		{"play", playmigrations.Migrations},
		{"wager", wagermigrations.Migrations},
		{"duel", duelmigrations.Migrations},
	}

	out := make([]ModuleMigrator, 0, len(ordered))
	for _, m := range ordered {
		out = append(out, ModuleMigrator{Name: m.name, Migrator: migrate.NewMigrator(db, m.migrations)})
	}
	return out
}

// Init creates the shared migration bookkeeping tables.
func Init(ctx context.Context, migrators []ModuleMigrator) error {
	if len(migrators) == 0 {
		return nil
	}
	if err := migrators[0].Migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	return nil
}

// Up applies pending migrations module by module and reports what ran.
func Up(ctx context.Context, migrators []ModuleMigrator, report func(module string, group *migrate.MigrationGroup)) error {
	for _, m := range migrators {
		group, err := m.Migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", m.Name, err)
		}
		if report != nil {
			report(m.Name, group)
		}
	}
	return nil
}

// Down rolls back the last migration group of every module, in reverse
// order so dependent tables go first.
func Down(ctx context.Context, migrators []ModuleMigrator, report func(module string, group *migrate.MigrationGroup)) error {
	for i := len(migrators) - 1; i >= 0; i-- {
		m := migrators[i]
		group, err := m.Migrator.Rollback(ctx)
		if err != nil {
			return fmt.Errorf("failed to roll back %s migrations: %w", m.Name, err)
		}
		if report != nil {
			report(m.Name, group)
		}
	}
	return nil
}

// MigrationStatus is the applied and pending migrations of one module.
type MigrationStatus struct {
	Module  string
	Applied []string
	Pending []string
}

// Status lists applied and pending migrations per module.
func Status(ctx context.Context, migrators []ModuleMigrator) ([]MigrationStatus, error) {
	out := make([]MigrationStatus, 0, len(migrators))
	for _, m := range migrators {
		ms, err := m.Migrator.MigrationsWithStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s migration status: %w", m.Name, err)
		}
		st := MigrationStatus{Module: m.Name}
		for _, mig := range ms {
			if mig.IsApplied() {
				st.Applied = append(st.Applied, mig.Name)
			} else {
				st.Pending = append(st.Pending, mig.Name)
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// Migrate runs Init then Up.
func Migrate(ctx context.Context, db *bun.DB) error {
	migrators := Migrators(db)
	if err := Init(ctx, migrators); err != nil {
		return err
	}
	return Up(ctx, migrators, nil)
}
