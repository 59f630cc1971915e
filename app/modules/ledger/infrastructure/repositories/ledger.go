package ledgerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new ledger repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) LockLedger(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, initial decimal.Decimal, rating float64) (*ScoreLedger, error) {
	db = r.resolveDB(db)
	seed := &ScoreLedger{
		UserID:    userID,
		GameID:    gameID,
		Points:    initial,
		Rating:    rating,
		UpdatedAt: time.Now(),
	}
	if _, err := db.NewInsert().
		Model(seed).
		On("CONFLICT (user_id, game_id) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("ledgerdb.LockLedger: insert: %w", err)
	}

	ledger := new(ScoreLedger)
	err := db.NewSelect().
		Model(ledger).
		Where("user_id = ?", userID).
		Where("game_id = ?", gameID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.LockLedger: select: %w", err)
	}
	return ledger, nil
}

func (r *Impl) GetLedger(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) (*ScoreLedger, error) {
	db = r.resolveDB(db)
	ledger := new(ScoreLedger)
	err := db.NewSelect().
		Model(ledger).
		Where("user_id = ?", userID).
		Where("game_id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ledgerdb.GetLedger: %w", err)
	}
	return ledger, nil
}

func (r *Impl) ListLedgers(ctx context.Context, db bun.IDB, gameID int64) ([]ScoreLedger, error) {
	db = r.resolveDB(db)
	var ledgers []ScoreLedger
	err := db.NewSelect().
		Model(&ledgers).
		Where("game_id = ?", gameID).
		Order("user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.ListLedgers: %w", err)
	}
	return ledgers, nil
}

func (r *Impl) AddPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, delta decimal.Decimal, countGame bool) (*ScoreLedger, error) {
	db = r.resolveDB(db)
	played := 0
	if countGame {
		played = 1
	}
	ledger := new(ScoreLedger)
	_, err := db.NewUpdate().
		Model(ledger).
		Set("points = sl.points + ?", delta).
		Set("games_played = sl.games_played + ?", played).
		Set("updated_at = ?", time.Now()).
		Where("sl.user_id = ?", userID).
		Where("sl.game_id = ?", gameID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ledgerdb.AddPoints: %w", err)
	}
	if ledger.UserID == "" {
		return nil, ErrNotFound
	}
	return ledger, nil
}

func (r *Impl) DebitIfSufficient(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (*ScoreLedger, bool, error) {
	db = r.resolveDB(db)
	ledger := new(ScoreLedger)
	_, err := db.NewUpdate().
		Model(ledger).
		Set("points = sl.points - ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("sl.user_id = ?", userID).
		Where("sl.game_id = ?", gameID).
		Where("sl.points >= ?", amount).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("ledgerdb.DebitIfSufficient: %w", err)
	}
	if ledger.UserID == "" {
		return nil, false, nil
	}
	return ledger, true, nil
}

func (r *Impl) SetRating(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, rating float64) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Model((*ScoreLedger)(nil)).
		Set("rating = ?", rating).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Where("game_id = ?", gameID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledgerdb.SetRating: %w", err)
	}
	return nil
}

func (r *Impl) OpponentRatings(ctx context.Context, db bun.IDB, gameID int64, excludeUser sharedtypes.UserID) ([]float64, error) {
	db = r.resolveDB(db)
	var ratings []float64
	err := db.NewSelect().
		Model((*ScoreLedger)(nil)).
		Column("rating").
		Where("game_id = ?", gameID).
		Where("user_id <> ?", excludeUser).
		Where("games_played > 0").
		Scan(ctx, &ratings)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.OpponentRatings: %w", err)
	}
	return ratings, nil
}

func (r *Impl) FindScoringRule(ctx context.Context, db bun.IDB, gameID int64, attemptNo int) (*ScoringRule, error) {
	db = r.resolveDB(db)
	rule := new(ScoringRule)
	err := db.NewSelect().
		Model(rule).
		Where("attempt_no = ?", attemptNo).
		Where("(game_id = ? OR game_id IS NULL)", gameID).
		OrderExpr("game_id NULLS LAST").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ledgerdb.FindScoringRule: %w", err)
	}
	return rule, nil
}

func (r *Impl) AverageWinningAttempts(ctx context.Context, db bun.IDB, filter AverageFilter) (float64, bool, error) {
	db = r.resolveDB(db)
	q := db.NewSelect().
		TableExpr("play_sessions AS ps").
		ColumnExpr("AVG(ps.winning_attempts)::float8").
		Where("ps.game_id = ?", filter.GameID).
		Where("ps.won_at IS NOT NULL")
	if filter.SessionType != "" {
		q = q.Where("ps.session_type = ?", filter.SessionType)
	}
	if filter.ExcludeSessionID != 0 {
		q = q.Where("ps.id <> ?", filter.ExcludeSessionID)
	}
	if filter.ExcludeUserID != "" {
		q = q.Where("ps.user_id <> ?", filter.ExcludeUserID)
	}
	if filter.OnlyUserID != "" {
		q = q.Where("ps.user_id = ?", filter.OnlyUserID)
	}

	var avg sql.NullFloat64
	if err := q.Scan(ctx, &avg); err != nil {
		return 0, false, fmt.Errorf("ledgerdb.AverageWinningAttempts: %w", err)
	}
	return avg.Float64, avg.Valid, nil
}

func (r *Impl) ListRankings(ctx context.Context, db bun.IDB, gameID int64) ([]RankingRow, error) {
	db = r.resolveDB(db)
	q := db.NewSelect().
		TableExpr("play_sessions AS ps").
		ColumnExpr("ps.user_id").
		ColumnExpr("COUNT(*) AS games").
		ColumnExpr("AVG(ps.winning_attempts)::float8 AS average_attempts").
		Where("ps.won_at IS NOT NULL").
		GroupExpr("ps.user_id").
		OrderExpr("average_attempts ASC, ps.user_id ASC")
	if gameID != 0 {
		q = q.Where("ps.game_id = ?", gameID)
	}

	var rows []RankingRow
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("ledgerdb.ListRankings: %w", err)
	}
	return rows, nil
}

func (r *Impl) ListCompletedSessions(ctx context.Context, db bun.IDB, gameID int64, sessionType sharedtypes.SessionType) ([]CompletedSession, error) {
	db = r.resolveDB(db)
	var rows []CompletedSession
	err := db.NewSelect().
		TableExpr("play_sessions AS ps").
		ColumnExpr("ps.id, ps.user_id, ps.winning_attempts, ps.won_at").
		Where("ps.game_id = ?", gameID).
		Where("ps.session_type = ?", sessionType).
		Where("ps.won_at IS NOT NULL").
		OrderExpr("ps.won_at ASC, ps.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.ListCompletedSessions: %w", err)
	}
	return rows, nil
}

func (r *Impl) ResetRatings(ctx context.Context, db bun.IDB, gameID int64, rating float64) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Model((*ScoreLedger)(nil)).
		Set("rating = ?", rating).
		Set("updated_at = ?", time.Now()).
		Where("game_id = ?", gameID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledgerdb.ResetRatings: %w", err)
	}
	return nil
}

func (r *Impl) ResetStats(ctx context.Context, db bun.IDB, rating float64) (*ResetCounts, error) {
	db = r.resolveDB(db)
	counts := &ResetCounts{}

	deleteAll := func(table string, n *int64) error {
		res, err := db.NewDelete().TableExpr(table).Where("TRUE").Exec(ctx)
		if err != nil {
			return fmt.Errorf("ledgerdb.ResetStats: delete %s: %w", table, err)
		}
		*n, _ = res.RowsAffected()
		return nil
	}

	if err := deleteAll("attempts", &counts.Attempts); err != nil {
		return nil, err
	}
	if err := deleteAll("play_sessions", &counts.Sessions); err != nil {
		return nil, err
	}
	if err := deleteAll("extra_plays", &counts.ExtraPlays); err != nil {
		return nil, err
	}

	res, err := db.NewUpdate().
		Model((*ScoreLedger)(nil)).
		Set("points = 0").
		Set("games_played = 0").
		Set("rating = ?", rating).
		Set("updated_at = ?", time.Now()).
		Where("TRUE").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.ResetStats: reset ledgers: %w", err)
	}
	counts.Ledgers, _ = res.RowsAffected()
	return counts, nil
}
