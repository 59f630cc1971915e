package playdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	playdomain "github.com/Black-And-White-Club/guessdle/app/modules/play/domain"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new play repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetOrCreateSession(ctx context.Context, db bun.IDB, key playdomain.SessionKey) (*PlaySession, error) {
	db = r.resolveDB(db)
	session := &PlaySession{
		UserID:      key.UserID,
		GameID:      key.GameID,
		SessionType: key.Mode,
		ReferenceID: key.ReferenceID,
		CreatedAt:   time.Now(),
	}
	_, err := db.NewInsert().
		Model(session).
		On("CONFLICT (user_id, game_id, session_type, reference_id) DO NOTHING").
		Exec(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("playdb.GetOrCreateSession: %w", err)
	}
	existing, err := r.FindSession(ctx, db, key)
	if err != nil {
		return nil, fmt.Errorf("playdb.GetOrCreateSession: %w", err)
	}
	return existing, nil
}

func (r *Impl) FindSession(ctx context.Context, db bun.IDB, key playdomain.SessionKey) (*PlaySession, error) {
	db = r.resolveDB(db)
	session := new(PlaySession)
	err := db.NewSelect().
		Model(session).
		Where("user_id = ?", key.UserID).
		Where("game_id = ?", key.GameID).
		Where("session_type = ?", key.Mode).
		Where("reference_id = ?", key.ReferenceID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("playdb.FindSession: %w", err)
	}
	return session, nil
}

func (r *Impl) LockSession(ctx context.Context, db bun.IDB, id int64) (*PlaySession, error) {
	db = r.resolveDB(db)
	session := new(PlaySession)
	err := db.NewSelect().
		Model(session).
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("playdb.LockSession: %w", err)
	}
	return session, nil
}

func (r *Impl) InsertAttempt(ctx context.Context, db bun.IDB, attempt *Attempt) (bool, error) {
	db = r.resolveDB(db)
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	res, err := db.NewInsert().
		Model(attempt).
		On("CONFLICT (session_id, item_id) DO NOTHING").
		Returning("id").
		Exec(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		// RETURNING produced no row: the conflict clause skipped the insert.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("playdb.InsertAttempt: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("playdb.InsertAttempt: rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *Impl) ListAttempts(ctx context.Context, db bun.IDB, sessionID int64) ([]Attempt, error) {
	db = r.resolveDB(db)
	var attempts []Attempt
	err := db.NewSelect().
		Model(&attempts).
		Where("session_id = ?", sessionID).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("playdb.ListAttempts: %w", err)
	}
	return attempts, nil
}

func (r *Impl) CountAttempts(ctx context.Context, db bun.IDB, sessionID int64) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*Attempt)(nil)).
		Where("session_id = ?", sessionID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("playdb.CountAttempts: %w", err)
	}
	return n, nil
}

func (r *Impl) MarkWon(ctx context.Context, db bun.IDB, sessionID int64, attempts int, at time.Time) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*PlaySession)(nil)).
		Set("won_at = ?", at).
		Set("winning_attempts = ?", attempts).
		Where("id = ?", sessionID).
		Where("won_at IS NULL").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("playdb.MarkWon: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("playdb.MarkWon: rows affected: %w", err)
	}
	return rows > 0, nil
}
