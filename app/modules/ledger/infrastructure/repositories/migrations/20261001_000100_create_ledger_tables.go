package ledgermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating score_ledgers and scoring_rules tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS score_ledgers (
					user_id VARCHAR(64) NOT NULL,
					game_id BIGINT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
					points NUMERIC(14,2) NOT NULL DEFAULT 0,
					games_played INTEGER NOT NULL DEFAULT 0,
					rating DOUBLE PRECISION NOT NULL DEFAULT 1200,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (user_id, game_id),
					CONSTRAINT score_ledgers_points_non_negative CHECK (points >= 0)
				);
			`); err != nil {
				return fmt.Errorf("failed to create score_ledgers table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS scoring_rules (
					id BIGSERIAL PRIMARY KEY,
					game_id BIGINT REFERENCES games(id) ON DELETE CASCADE,
					attempt_no INTEGER NOT NULL CHECK (attempt_no > 0),
					points INTEGER NOT NULL
				);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_scoring_rules_game_attempt
					ON scoring_rules (COALESCE(game_id, 0), attempt_no);
			`); err != nil {
				return fmt.Errorf("failed to create scoring_rules table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO scoring_rules (game_id, attempt_no, points)
				VALUES (NULL, 1, 100), (NULL, 2, 75), (NULL, 3, 50)
				ON CONFLICT DO NOTHING;
			`); err != nil {
				return fmt.Errorf("failed to seed scoring rules: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping score_ledgers and scoring_rules tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS scoring_rules; DROP TABLE IF EXISTS score_ledgers;`); err != nil {
				return fmt.Errorf("failed to drop ledger tables: %w", err)
			}
			return nil
		})
	})
}
