package playhandlers

import (
	"context"

	playservice "github.com/Black-And-White-Club/guessdle/app/modules/play/application"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
)

// FakeService implements playservice.Service for handler testing.
type FakeService struct {
	trace []string

	SubmitGuessFunc     func(ctx context.Context, req playservice.GuessRequest) (*playservice.GuessOutcome, error)
	GetSessionStateFunc func(ctx context.Context, req playservice.StateRequest) (*playservice.SessionState, error)
	IsDailyResolvedFunc func(ctx context.Context, player sharedtypes.Player, gameSlug string) (bool, error)
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

func (f *FakeService) SubmitGuess(ctx context.Context, req playservice.GuessRequest) (*playservice.GuessOutcome, error) {
	f.record("SubmitGuess")
	if f.SubmitGuessFunc != nil {
		return f.SubmitGuessFunc(ctx, req)
	}
	return &playservice.GuessOutcome{Accepted: true}, nil
}

func (f *FakeService) GetSessionState(ctx context.Context, req playservice.StateRequest) (*playservice.SessionState, error) {
	f.record("GetSessionState")
	if f.GetSessionStateFunc != nil {
		return f.GetSessionStateFunc(ctx, req)
	}
	return &playservice.SessionState{Mode: req.Mode}, nil
}

func (f *FakeService) IsDailyResolved(ctx context.Context, player sharedtypes.Player, gameSlug string) (bool, error) {
	f.record("IsDailyResolved")
	if f.IsDailyResolvedFunc != nil {
		return f.IsDailyResolvedFunc(ctx, player, gameSlug)
	}
	return false, nil
}
