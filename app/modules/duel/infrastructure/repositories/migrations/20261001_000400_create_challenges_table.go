package duelmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating challenges table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS challenges (
					id BIGSERIAL PRIMARY KEY,
					challenger_id VARCHAR(64) NOT NULL,
					opponent_id VARCHAR(64) NOT NULL,
					game_id BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					target_id BIGINT NOT NULL REFERENCES game_items(id),
					accepted BOOLEAN NOT NULL DEFAULT FALSE,
					completed BOOLEAN NOT NULL DEFAULT FALSE,
					winner_id VARCHAR(64),
					challenger_attempts INTEGER CHECK (challenger_attempts > 0),
					opponent_attempts INTEGER CHECK (opponent_attempts > 0),
					points_assigned BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					completed_at TIMESTAMPTZ,
					CONSTRAINT challenges_distinct_users CHECK (challenger_id <> opponent_id),
					CONSTRAINT challenges_points_after_completion CHECK (NOT points_assigned OR completed)
				);
				CREATE INDEX IF NOT EXISTS idx_challenges_challenger ON challenges(challenger_id, completed);
				CREATE INDEX IF NOT EXISTS idx_challenges_opponent ON challenges(opponent_id, completed);
			`); err != nil {
				return fmt.Errorf("failed to create challenges table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping challenges table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS challenges;`); err != nil {
				return fmt.Errorf("failed to drop challenges table: %w", err)
			}
			return nil
		})
	})
}
