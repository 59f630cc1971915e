package wagermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating extra_plays table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS extra_plays (
					id BIGSERIAL PRIMARY KEY,
					user_id VARCHAR(64) NOT NULL,
					game_id BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					target_id BIGINT NOT NULL REFERENCES game_items(id),
					stake NUMERIC(14,2) NOT NULL CHECK (stake > 0),
					completed BOOLEAN NOT NULL DEFAULT FALSE,
					payout NUMERIC(14,2) NOT NULL DEFAULT 0,
					completed_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_extra_plays_user_game_created
					ON extra_plays(user_id, game_id, created_at);
			`); err != nil {
				return fmt.Errorf("failed to create extra_plays table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping extra_plays table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS extra_plays;`); err != nil {
				return fmt.Errorf("failed to drop extra_plays table: %w", err)
			}
			return nil
		})
	})
}
