package playhandlers

import (
	"context"

	playevents "github.com/Black-And-White-Club/guessdle/app/events/play"
	playservice "github.com/Black-And-White-Club/guessdle/app/modules/play/application"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
)

// HandleGuessSubmitRequested evaluates one guess. A guess that is not
// accepted is answered on the failed topic together with the names still
// open to guess.
func (h *PlayHandlers) HandleGuessSubmitRequested(
	ctx context.Context,
	payload *playevents.GuessSubmitRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	outcome, err := h.service.SubmitGuess(ctx, playservice.GuessRequest{
		Player:      payload.Player,
		Game:        payload.Game,
		Mode:        payload.Mode,
		ReferenceID: payload.ReferenceID,
		Guess:       payload.Guess,
	})
	if err == nil && !outcome.Accepted {
		err = playservice.ErrInvalidGuess
	}
	if err != nil {
		if !isFailure(err) {
			return nil, err
		}
		h.logger.InfoContext(ctx, "Guess rejected",
			attr.ExtractCorrelationID(ctx),
			attr.UserID(payload.Player.UserID),
			attr.String("game", payload.Game),
			attr.String("reason", err.Error()),
		)
		failed := &playevents.GuessSubmitFailedPayloadV1{
			Player:      payload.Player,
			Game:        payload.Game,
			Mode:        payload.Mode,
			ReferenceID: payload.ReferenceID,
			Reason:      err.Error(),
		}
		if outcome != nil {
			failed.SessionID = outcome.SessionID
			failed.Attempts = outcome.Attempts
			failed.RemainingNames = outcome.Remaining
		}
		return []handlerwrapper.Result{{
			Topic:   playevents.GuessSubmitFailedV1,
			Payload: failed,
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic: playevents.GuessSubmitSucceededV1,
		Payload: &playevents.GuessSubmitSucceededPayloadV1{
			Player:         payload.Player,
			Game:           payload.Game,
			Mode:           payload.Mode,
			ReferenceID:    payload.ReferenceID,
			Accepted:       outcome.Accepted,
			Correct:        outcome.Correct,
			Feedback:       outcome.Feedback,
			RemainingNames: outcome.Remaining,
			SessionID:      outcome.SessionID,
			Attempts:       outcome.Attempts,
			Reward:         rewardPayload(outcome.Reward),
		},
	}}, nil
}

func rewardPayload(r *playservice.Reward) *playevents.RewardV1 {
	if r == nil {
		return nil
	}
	out := &playevents.RewardV1{
		Points:  r.Points,
		Balance: r.Balance,
	}
	if r.Rating != nil && r.Rating.Applied {
		before, after := r.Rating.Before, r.Rating.After
		out.RatingBefore = &before
		out.RatingAfter = &after
	}
	if r.Wager != nil {
		won := r.Wager.Won
		out.WagerWon = &won
	}
	if r.Duel != nil {
		out.DuelStatus = string(r.Duel.Status)
		out.DuelWinnerID = r.Duel.WinnerID
	}
	return out
}
