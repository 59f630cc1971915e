package wagerservice

import (
	"context"
	"time"

	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	ledgerservice "github.com/Black-And-White-Club/guessdle/app/modules/ledger/application"
	wagerdb "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Wager Repo
// ------------------------

type FakeWagerRepo struct {
	trace  []string
	plays  map[int64]*wagerdb.ExtraPlay
	nextID int64

	CountCreatedBetweenFunc func(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, from, to time.Time) (int, error)
}

func NewFakeWagerRepo() *FakeWagerRepo {
	return &FakeWagerRepo{trace: []string{}, plays: map[int64]*wagerdb.ExtraPlay{}}
}

func (f *FakeWagerRepo) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeWagerRepo) Create(ctx context.Context, db bun.IDB, play *wagerdb.ExtraPlay) error {
	f.record("Create")
	f.nextID++
	play.ID = f.nextID
	cp := *play
	f.plays[play.ID] = &cp
	return nil
}

func (f *FakeWagerRepo) Get(ctx context.Context, db bun.IDB, id int64) (*wagerdb.ExtraPlay, error) {
	f.record("Get")
	p, ok := f.plays[id]
	if !ok {
		return nil, wagerdb.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *FakeWagerRepo) GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*wagerdb.ExtraPlay, error) {
	f.record("GetForUpdate")
	p, ok := f.plays[id]
	if !ok {
		return nil, wagerdb.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *FakeWagerRepo) CountCreatedBetween(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, from, to time.Time) (int, error) {
	f.record("CountCreatedBetween")
	if f.CountCreatedBetweenFunc != nil {
		return f.CountCreatedBetweenFunc(ctx, db, userID, gameID, from, to)
	}
	n := 0
	for _, p := range f.plays {
		if p.UserID == userID && p.GameID == gameID && !p.CreatedAt.Before(from) && p.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (f *FakeWagerRepo) ListOpen(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) ([]wagerdb.ExtraPlay, error) {
	f.record("ListOpen")
	var out []wagerdb.ExtraPlay
	for _, p := range f.plays {
		if p.UserID == userID && p.GameID == gameID && !p.Completed {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *FakeWagerRepo) MarkCompleted(ctx context.Context, db bun.IDB, id int64, payout decimal.Decimal, at time.Time) (bool, error) {
	f.record("MarkCompleted")
	p, ok := f.plays[id]
	if !ok || p.Completed {
		return false, nil
	}
	p.Completed = true
	p.Payout = payout
	p.CompletedAt = &at
	return true, nil
}

// ------------------------
// Fake Ledger
// ------------------------

type FakeLedger struct {
	trace    []string
	balances map[sharedtypes.UserID]decimal.Decimal

	BaselineAttemptsFunc func(ctx context.Context, db bun.IDB, q ledgerservice.BaselineQuery) (float64, bool, error)
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{trace: []string{}, balances: map[sharedtypes.UserID]decimal.Decimal{}}
}

func (f *FakeLedger) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeLedger) LockBalance(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64) (decimal.Decimal, error) {
	f.record("LockBalance")
	return f.balances[userID], nil
}

func (f *FakeLedger) Debit(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	f.record("Debit")
	if f.balances[userID].LessThan(amount) {
		return decimal.Zero, ledgerservice.ErrInsufficientPoints
	}
	f.balances[userID] = f.balances[userID].Sub(amount)
	return f.balances[userID], nil
}

func (f *FakeLedger) Credit(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	f.record("Credit")
	f.balances[userID] = f.balances[userID].Add(amount)
	return f.balances[userID], nil
}

func (f *FakeLedger) BaselineAttempts(ctx context.Context, db bun.IDB, q ledgerservice.BaselineQuery) (float64, bool, error) {
	f.record("BaselineAttempts")
	if f.BaselineAttemptsFunc != nil {
		return f.BaselineAttemptsFunc(ctx, db, q)
	}
	return 0, false, nil
}

// ------------------------
// Fake Target Picker
// ------------------------

type FakeTargets struct {
	PickRandomTargetFunc func(ctx context.Context, db bun.IDB, gameID int64) (*catalogdb.Item, error)
}

func (f *FakeTargets) PickRandomTarget(ctx context.Context, db bun.IDB, gameID int64) (*catalogdb.Item, error) {
	if f.PickRandomTargetFunc != nil {
		return f.PickRandomTargetFunc(ctx, db, gameID)
	}
	return &catalogdb.Item{ID: 42, GameID: gameID, Name: "target"}, nil
}

var (
	_ wagerdb.Repository = (*FakeWagerRepo)(nil)
	_ Ledger             = (*FakeLedger)(nil)
	_ TargetPicker       = (*FakeTargets)(nil)
)
