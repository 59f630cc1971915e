package playmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating play_sessions and attempts tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS play_sessions (
					id BIGSERIAL PRIMARY KEY,
					user_id VARCHAR(64) NOT NULL,
					game_id BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					session_type VARCHAR(16) NOT NULL CHECK (session_type IN ('DAILY', 'EXTRA', 'CHALLENGE')),
					reference_id BIGINT NOT NULL,
					won_at TIMESTAMPTZ,
					winning_attempts INTEGER CHECK (winning_attempts > 0),
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT play_sessions_key UNIQUE (user_id, game_id, session_type, reference_id),
					CONSTRAINT play_sessions_won_consistent CHECK ((won_at IS NULL) = (winning_attempts IS NULL))
				);
				CREATE INDEX IF NOT EXISTS idx_play_sessions_game_won
					ON play_sessions(game_id, session_type, won_at) WHERE won_at IS NOT NULL;
			`); err != nil {
				return fmt.Errorf("failed to create play_sessions table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS attempts (
					id BIGSERIAL PRIMARY KEY,
					session_id BIGINT NOT NULL REFERENCES play_sessions(id) ON DELETE CASCADE,
					user_id VARCHAR(64) NOT NULL,
					item_id BIGINT NOT NULL REFERENCES game_items(id),
					correct BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT attempts_session_item UNIQUE (session_id, item_id)
				);
				CREATE INDEX IF NOT EXISTS idx_attempts_session_created ON attempts(session_id, created_at);
			`); err != nil {
				return fmt.Errorf("failed to create attempts table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping attempts and play_sessions tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS attempts;
				DROP TABLE IF EXISTS play_sessions;
			`); err != nil {
				return fmt.Errorf("failed to drop play tables: %w", err)
			}
			return nil
		})
	})
}
