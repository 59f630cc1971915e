package playdb

import (
	"context"
	"errors"
	"time"

	playdomain "github.com/Black-And-White-Club/guessdle/app/modules/play/domain"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("play session not found")

// Repository defines the contract for sessions and attempts.
type Repository interface {
	// GetOrCreateSession returns the one session for key, creating it if needed.
	GetOrCreateSession(ctx context.Context, db bun.IDB, key playdomain.SessionKey) (*PlaySession, error)
	FindSession(ctx context.Context, db bun.IDB, key playdomain.SessionKey) (*PlaySession, error)
	LockSession(ctx context.Context, db bun.IDB, id int64) (*PlaySession, error)
	// InsertAttempt reports false when the item was already guessed in the session.
	InsertAttempt(ctx context.Context, db bun.IDB, attempt *Attempt) (bool, error)
	// ListAttempts returns the session's attempts, newest first.
	ListAttempts(ctx context.Context, db bun.IDB, sessionID int64) ([]Attempt, error)
	CountAttempts(ctx context.Context, db bun.IDB, sessionID int64) (int, error)
	// MarkWon stamps the win once; it reports false when already won.
	MarkWon(ctx context.Context, db bun.IDB, sessionID int64, attempts int, at time.Time) (bool, error)
}
