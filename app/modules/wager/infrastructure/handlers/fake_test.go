package wagerhandlers

import (
	"context"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	wagerservice "github.com/Black-And-White-Club/guessdle/app/modules/wager/application"
	wagerdb "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// FakeService implements wagerservice.Service for handler testing.
type FakeService struct {
	trace []string

	StartWagerFunc     func(ctx context.Context, userID sharedtypes.UserID, gameID int64, stake decimal.Decimal) (*wagerdb.ExtraPlay, error)
	RemainingTodayFunc func(ctx context.Context, userID sharedtypes.UserID, gameID int64) (int, error)
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

func (f *FakeService) StartWager(ctx context.Context, userID sharedtypes.UserID, gameID int64, stake decimal.Decimal) (*wagerdb.ExtraPlay, error) {
	f.record("StartWager")
	if f.StartWagerFunc != nil {
		return f.StartWagerFunc(ctx, userID, gameID, stake)
	}
	return &wagerdb.ExtraPlay{ID: 1, UserID: userID, GameID: gameID, Stake: stake}, nil
}

func (f *FakeService) GetWager(ctx context.Context, db bun.IDB, id int64) (*wagerdb.ExtraPlay, error) {
	f.record("GetWager")
	return nil, wagerservice.ErrWagerNotFound
}

func (f *FakeService) Settle(ctx context.Context, db bun.IDB, playID int64, sessionID int64, attempts int) (*wagerservice.Settlement, error) {
	f.record("Settle")
	return nil, wagerservice.ErrWagerNotFound
}

func (f *FakeService) RemainingToday(ctx context.Context, userID sharedtypes.UserID, gameID int64) (int, error) {
	f.record("RemainingToday")
	if f.RemainingTodayFunc != nil {
		return f.RemainingTodayFunc(ctx, userID, gameID)
	}
	return 1, nil
}

func (f *FakeService) ListOpen(ctx context.Context, userID sharedtypes.UserID, gameID int64) ([]wagerdb.ExtraPlay, error) {
	f.record("ListOpen")
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
