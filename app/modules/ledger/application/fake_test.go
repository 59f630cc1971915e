package ledgerservice

import (
	"context"

	ledgerdb "github.com/Black-And-White-Club/guessdle/app/modules/ledger/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Ledger Repo
// ------------------------

// FakeLedgerRepo keeps ledgers in memory; the Func fields override behaviour.
type FakeLedgerRepo struct {
	trace   []string
	ledgers map[string]*ledgerdb.ScoreLedger
	rules   []ledgerdb.ScoringRule

	AverageWinningAttemptsFunc func(ctx context.Context, db bun.IDB, filter ledgerdb.AverageFilter) (float64, bool, error)
	ListRankingsFunc           func(ctx context.Context, db bun.IDB, gameID int64) ([]ledgerdb.RankingRow, error)
	ListCompletedSessionsFunc  func(ctx context.Context, db bun.IDB, gameID int64, sessionType sharedtypes.SessionType) ([]ledgerdb.CompletedSession, error)
	ResetStatsFunc             func(ctx context.Context, db bun.IDB, rating float64) (*ledgerdb.ResetCounts, error)
	LockLedgerErr              error
}

func NewFakeLedgerRepo() *FakeLedgerRepo {
	return &FakeLedgerRepo{
		trace:   []string{},
		ledgers: map[string]*ledgerdb.ScoreLedger{},
	}
}

func (f *FakeLedgerRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeLedgerRepo) seed(l ledgerdb.ScoreLedger) {
	f.ledgers[ledgerKey(l.UserID, l.GameID)] = &l
}

func (f *FakeLedgerRepo) LockLedger(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, initial decimal.Decimal, rating float64) (*ledgerdb.ScoreLedger, error) {
	f.record("LockLedger")
	if f.LockLedgerErr != nil {
		return nil, f.LockLedgerErr
	}
	key := ledgerKey(userID, gameID)
	if _, ok := f.ledgers[key]; !ok {
		f.ledgers[key] = &ledgerdb.ScoreLedger{UserID: userID, GameID: gameID, Points: initial, Rating: rating}
	}
	cp := *f.ledgers[key]
	return &cp, nil
}

func (f *FakeLedgerRepo) GetLedger(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) (*ledgerdb.ScoreLedger, error) {
	f.record("GetLedger")
	l, ok := f.ledgers[ledgerKey(userID, gameID)]
	if !ok {
		return nil, ledgerdb.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *FakeLedgerRepo) ListLedgers(ctx context.Context, db bun.IDB, gameID int64) ([]ledgerdb.ScoreLedger, error) {
	f.record("ListLedgers")
	var out []ledgerdb.ScoreLedger
	for _, l := range f.ledgers {
		if l.GameID == gameID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *FakeLedgerRepo) AddPoints(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, delta decimal.Decimal, countGame bool) (*ledgerdb.ScoreLedger, error) {
	f.record("AddPoints")
	l, ok := f.ledgers[ledgerKey(userID, gameID)]
	if !ok {
		return nil, ledgerdb.ErrNotFound
	}
	l.Points = l.Points.Add(delta)
	if countGame {
		l.GamesPlayed++
	}
	cp := *l
	return &cp, nil
}

func (f *FakeLedgerRepo) DebitIfSufficient(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (*ledgerdb.ScoreLedger, bool, error) {
	f.record("DebitIfSufficient")
	l, ok := f.ledgers[ledgerKey(userID, gameID)]
	if !ok || l.Points.LessThan(amount) {
		return nil, false, nil
	}
	l.Points = l.Points.Sub(amount)
	cp := *l
	return &cp, true, nil
}

func (f *FakeLedgerRepo) SetRating(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, rating float64) error {
	f.record("SetRating")
	if l, ok := f.ledgers[ledgerKey(userID, gameID)]; ok {
		l.Rating = rating
	}
	return nil
}

func (f *FakeLedgerRepo) OpponentRatings(ctx context.Context, db bun.IDB, gameID int64, excludeUser sharedtypes.UserID) ([]float64, error) {
	f.record("OpponentRatings")
	var out []float64
	for _, l := range f.ledgers {
		if l.GameID == gameID && l.UserID != excludeUser && l.GamesPlayed > 0 {
			out = append(out, l.Rating)
		}
	}
	return out, nil
}

func (f *FakeLedgerRepo) FindScoringRule(ctx context.Context, db bun.IDB, gameID int64, attemptNo int) (*ledgerdb.ScoringRule, error) {
	f.record("FindScoringRule")
	var global *ledgerdb.ScoringRule
	for i := range f.rules {
		r := f.rules[i]
		if r.AttemptNo != attemptNo {
			continue
		}
		if r.GameID != nil && *r.GameID == gameID {
			return &r, nil
		}
		if r.GameID == nil {
			global = &r
		}
	}
	if global != nil {
		return global, nil
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepo) AverageWinningAttempts(ctx context.Context, db bun.IDB, filter ledgerdb.AverageFilter) (float64, bool, error) {
	f.record("AverageWinningAttempts")
	if f.AverageWinningAttemptsFunc != nil {
		return f.AverageWinningAttemptsFunc(ctx, db, filter)
	}
	return 0, false, nil
}

func (f *FakeLedgerRepo) ListRankings(ctx context.Context, db bun.IDB, gameID int64) ([]ledgerdb.RankingRow, error) {
	f.record("ListRankings")
	if f.ListRankingsFunc != nil {
		return f.ListRankingsFunc(ctx, db, gameID)
	}
	return nil, nil
}

func (f *FakeLedgerRepo) ListCompletedSessions(ctx context.Context, db bun.IDB, gameID int64, sessionType sharedtypes.SessionType) ([]ledgerdb.CompletedSession, error) {
	f.record("ListCompletedSessions")
	if f.ListCompletedSessionsFunc != nil {
		return f.ListCompletedSessionsFunc(ctx, db, gameID, sessionType)
	}
	return nil, nil
}

func (f *FakeLedgerRepo) ResetRatings(ctx context.Context, db bun.IDB, gameID int64, rating float64) error {
	f.record("ResetRatings")
	for _, l := range f.ledgers {
		if l.GameID == gameID {
			l.Rating = rating
		}
	}
	return nil
}

func (f *FakeLedgerRepo) ResetStats(ctx context.Context, db bun.IDB, rating float64) (*ledgerdb.ResetCounts, error) {
	f.record("ResetStats")
	if f.ResetStatsFunc != nil {
		return f.ResetStatsFunc(ctx, db, rating)
	}
	return &ledgerdb.ResetCounts{}, nil
}

func (f *FakeLedgerRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ ledgerdb.Repository = (*FakeLedgerRepo)(nil)
