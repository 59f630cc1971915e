package duelservice

import (
	"context"
	"time"

	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	dueldb "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories"
	ledgerservice "github.com/Black-And-White-Club/guessdle/app/modules/ledger/application"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Duel Repo
// ------------------------

type FakeDuelRepo struct {
	trace      []string
	challenges map[int64]*dueldb.Challenge
	nextID     int64

	GetForUpdateFunc func(ctx context.Context, db bun.IDB, id int64) (*dueldb.Challenge, error)
}

func NewFakeDuelRepo() *FakeDuelRepo {
	return &FakeDuelRepo{trace: []string{}, challenges: map[int64]*dueldb.Challenge{}}
}

func (f *FakeDuelRepo) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeDuelRepo) Create(ctx context.Context, db bun.IDB, c *dueldb.Challenge) error {
	f.record("Create")
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.challenges[c.ID] = &cp
	return nil
}

func (f *FakeDuelRepo) Get(ctx context.Context, db bun.IDB, id int64) (*dueldb.Challenge, error) {
	f.record("Get")
	c, ok := f.challenges[id]
	if !ok {
		return nil, dueldb.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *FakeDuelRepo) GetForUpdate(ctx context.Context, db bun.IDB, id int64) (*dueldb.Challenge, error) {
	f.record("GetForUpdate")
	if f.GetForUpdateFunc != nil {
		return f.GetForUpdateFunc(ctx, db, id)
	}
	c, ok := f.challenges[id]
	if !ok {
		return nil, dueldb.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *FakeDuelRepo) ListForUser(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, openOnly bool) ([]dueldb.Challenge, error) {
	f.record("ListForUser")
	var out []dueldb.Challenge
	for _, c := range f.challenges {
		if c.IsParticipant(userID) && (!openOnly || !c.Completed) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *FakeDuelRepo) MarkAccepted(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	f.record("MarkAccepted")
	c := f.challenges[id]
	if c.Accepted {
		return false, nil
	}
	c.Accepted = true
	return true, nil
}

func (f *FakeDuelRepo) SetAttempts(ctx context.Context, db bun.IDB, id int64, challenger bool, attempts int) (bool, error) {
	f.record("SetAttempts")
	c := f.challenges[id]
	n := attempts
	if challenger {
		if c.ChallengerAttempts != nil {
			return false, nil
		}
		c.ChallengerAttempts = &n
		return true, nil
	}
	if c.OpponentAttempts != nil {
		return false, nil
	}
	c.OpponentAttempts = &n
	return true, nil
}

func (f *FakeDuelRepo) MarkCompleted(ctx context.Context, db bun.IDB, id int64, winner *sharedtypes.UserID, at time.Time) (bool, error) {
	f.record("MarkCompleted")
	c := f.challenges[id]
	if c.Completed {
		return false, nil
	}
	c.Completed = true
	c.WinnerID = winner
	c.CompletedAt = &at
	return true, nil
}

func (f *FakeDuelRepo) MarkPointsAssigned(ctx context.Context, db bun.IDB, id int64) (bool, error) {
	f.record("MarkPointsAssigned")
	c := f.challenges[id]
	if !c.Completed || c.PointsAssigned {
		return false, nil
	}
	c.PointsAssigned = true
	return true, nil
}

// ------------------------
// Fake Ledger
// ------------------------

type FakeLedger struct {
	trace    []string
	balances map[sharedtypes.UserID]decimal.Decimal
	games    map[sharedtypes.UserID]int
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{
		trace:    []string{},
		balances: map[sharedtypes.UserID]decimal.Decimal{},
		games:    map[sharedtypes.UserID]int{},
	}
}

func (f *FakeLedger) AwardForAttempts(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, attempts int) (*ledgerservice.Award, error) {
	f.trace = append(f.trace, "AwardForAttempts:"+string(userID))
	points := max(50-10*(attempts-3), 0)
	switch attempts {
	case 1:
		points = 100
	case 2:
		points = 75
	}
	f.balances[userID] = f.balances[userID].Add(decimal.NewFromInt(int64(points)))
	f.games[userID]++
	return &ledgerservice.Award{Points: points, Balance: f.balances[userID], GamesPlayed: f.games[userID]}, nil
}

func (f *FakeLedger) Credit(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	f.trace = append(f.trace, "Credit:"+string(userID))
	f.balances[userID] = f.balances[userID].Add(amount)
	return f.balances[userID], nil
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
	return &catalogdb.Item{ID: 7, GameID: gameID, Name: "target"}, nil
}

var (
	_ dueldb.Repository = (*FakeDuelRepo)(nil)
	_ Ledger            = (*FakeLedger)(nil)
	_ TargetPicker      = (*FakeTargets)(nil)
)
