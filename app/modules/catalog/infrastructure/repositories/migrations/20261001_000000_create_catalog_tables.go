package catalogmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating catalog tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS games (
					id BIGSERIAL PRIMARY KEY,
					slug VARCHAR(100) NOT NULL UNIQUE,
					name VARCHAR(100) NOT NULL,
					attributes JSONB NOT NULL DEFAULT '[]'::jsonb,
					numeric_fields JSONB NOT NULL DEFAULT '[]'::jsonb,
					grouped_fields JSONB NOT NULL DEFAULT '[]'::jsonb,
					defaults JSONB NOT NULL DEFAULT '{}'::jsonb,
					active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create games table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS game_items (
					id BIGSERIAL PRIMARY KEY,
					game_id BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					name VARCHAR(255) NOT NULL,
					data JSONB NOT NULL DEFAULT '{}'::jsonb,
					deleted BOOLEAN NOT NULL DEFAULT FALSE,
					deleted_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (game_id, name)
				);
				CREATE INDEX IF NOT EXISTS idx_game_items_game_lower_name ON game_items(game_id, lower(name));
				CREATE INDEX IF NOT EXISTS idx_game_items_active ON game_items(game_id, id) WHERE deleted = FALSE;
			`); err != nil {
				return fmt.Errorf("failed to create game_items table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS daily_targets (
					id BIGSERIAL PRIMARY KEY,
					game_id BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					target_id BIGINT NOT NULL REFERENCES game_items(id),
					date DATE NOT NULL,
					is_team BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE (game_id, date, is_team)
				);
			`); err != nil {
				return fmt.Errorf("failed to create daily_targets table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping catalog tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, table := range []string{"daily_targets", "game_items", "games"} {
				if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE;"); err != nil {
					return fmt.Errorf("failed to drop %s: %w", table, err)
				}
			}
			return nil
		})
	})
}
