package duelhandlers

import (
	"context"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	duelservice "github.com/Black-And-White-Club/guessdle/app/modules/duel/application"
	dueldb "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/uptrace/bun"
)

// FakeService implements duelservice.Service for handler testing.
type FakeService struct {
	trace []string

	CreateChallengeFunc func(ctx context.Context, challengerID, opponentID sharedtypes.UserID, gameID int64) (*dueldb.Challenge, error)
	ReportAttemptsFunc  func(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID, attempts int) (*duelservice.Resolution, error)
}

func NewFakeService() *FakeService {
	return &FakeService{trace: []string{}}
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	return f.trace
}

func (f *FakeService) CreateChallenge(ctx context.Context, challengerID, opponentID sharedtypes.UserID, gameID int64) (*dueldb.Challenge, error) {
	f.record("CreateChallenge")
	if f.CreateChallengeFunc != nil {
		return f.CreateChallengeFunc(ctx, challengerID, opponentID, gameID)
	}
	return &dueldb.Challenge{ID: 5, ChallengerID: challengerID, OpponentID: opponentID, GameID: gameID}, nil
}

func (f *FakeService) GetChallenge(ctx context.Context, db bun.IDB, id int64) (*dueldb.Challenge, error) {
	f.record("GetChallenge")
	return nil, duelservice.ErrChallengeNotFound
}

func (f *FakeService) AcceptIfNeeded(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID) (*dueldb.Challenge, error) {
	f.record("AcceptIfNeeded")
	return nil, duelservice.ErrChallengeNotFound
}

func (f *FakeService) ReportAttempts(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID, attempts int) (*duelservice.Resolution, error) {
	f.record("ReportAttempts")
	if f.ReportAttemptsFunc != nil {
		return f.ReportAttemptsFunc(ctx, db, id, userID, attempts)
	}
	return &duelservice.Resolution{Status: duelservice.StatusPending}, nil
}

func (f *FakeService) Resolve(ctx context.Context, db bun.IDB, id int64) (*duelservice.Resolution, error) {
	f.record("Resolve")
	return &duelservice.Resolution{Status: duelservice.StatusPending}, nil
}

func (f *FakeService) ListChallenges(ctx context.Context, userID sharedtypes.UserID, openOnly bool) ([]dueldb.Challenge, error) {
	f.record("ListChallenges")
	return nil, nil
}

// FakeGames resolves a fixed set of slugs.
type FakeGames map[string]*catalogdb.Game

func (f FakeGames) GetGame(ctx context.Context, slug string) (*catalogdb.Game, error) {
	if g, ok := f[slug]; ok {
		return g, nil
	}
	return nil, catalogservice.ErrGameNotFound
}
