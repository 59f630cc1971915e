package duelhandlers

import (
	"context"

	duelevents "github.com/Black-And-White-Club/guessdle/app/events/duel"
	"github.com/Black-And-White-Club/guessdle/app/observability/attr"
	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
)

// HandleChallengeCreateRequested opens a challenge from the requesting player.
func (h *DuelHandlers) HandleChallengeCreateRequested(
	ctx context.Context,
	payload *duelevents.ChallengeCreateRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	fail := func(err error) ([]handlerwrapper.Result, error) {
		if !isFailure(err) {
			return nil, err
		}
		return []handlerwrapper.Result{{
			Topic: duelevents.ChallengeCreateFailedV1,
			Payload: &duelevents.ChallengeCreateFailedPayloadV1{
				Player:     payload.Player,
				OpponentID: payload.OpponentID,
				Game:       payload.Game,
				Reason:     err.Error(),
			},
		}}, nil
	}

	game, err := h.games.GetGame(ctx, payload.Game)
	if err != nil {
		return fail(err)
	}

	challenge, err := h.service.CreateChallenge(ctx, payload.Player.UserID, payload.OpponentID, game.ID)
	if err != nil {
		return fail(err)
	}

	h.logger.InfoContext(ctx, "Challenge created",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("challenge_id", challenge.ID),
		attr.UserID(challenge.ChallengerID),
	)

	return []handlerwrapper.Result{{
		Topic: duelevents.ChallengeCreateSucceededV1,
		Payload: &duelevents.ChallengeCreateSucceededPayloadV1{
			ChallengeID:  challenge.ID,
			ChallengerID: challenge.ChallengerID,
			OpponentID:   challenge.OpponentID,
			Game:         game.Slug,
		},
	}}, nil
}

// HandleChallengeReportRequested records a participant's attempt count and
// resolves the challenge once both sides are in.
func (h *DuelHandlers) HandleChallengeReportRequested(
	ctx context.Context,
	payload *duelevents.ChallengeReportRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	res, err := h.service.ReportAttempts(ctx, nil, payload.ChallengeID, payload.Player.UserID, payload.Attempts)
	if err != nil {
		if !isFailure(err) {
			return nil, err
		}
		return []handlerwrapper.Result{{
			Topic: duelevents.ChallengeReportFailedV1,
			Payload: &duelevents.ChallengeReportFailedPayloadV1{
				Player:      payload.Player,
				ChallengeID: payload.ChallengeID,
				Reason:      err.Error(),
			},
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic: duelevents.ChallengeReportSucceededV1,
		Payload: &duelevents.ChallengeReportSucceededPayloadV1{
			ChallengeID: payload.ChallengeID,
			Status:      string(res.Status),
			WinnerID:    res.WinnerID,
			LoserID:     res.LoserID,
			Points:      res.Points,
		},
	}}, nil
}
