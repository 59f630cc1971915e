package playhandlers

import (
	"context"

	playevents "github.com/Black-And-White-Club/guessdle/app/events/play"
	playservice "github.com/Black-And-White-Club/guessdle/app/modules/play/application"
	"github.com/Black-And-White-Club/guessdle/app/shared/handlerwrapper"
)

// HandleSessionStateRequested returns the session view without changing it.
func (h *PlayHandlers) HandleSessionStateRequested(
	ctx context.Context,
	payload *playevents.SessionStateRequestedPayloadV1,
) ([]handlerwrapper.Result, error) {
	state, err := h.service.GetSessionState(ctx, playservice.StateRequest{
		Player:      payload.Player,
		Game:        payload.Game,
		Mode:        payload.Mode,
		ReferenceID: payload.ReferenceID,
	})
	if err != nil {
		if !isFailure(err) {
			return nil, err
		}
		return []handlerwrapper.Result{{
			Topic: playevents.SessionStateFailedV1,
			Payload: &playevents.SessionStateFailedPayloadV1{
				Player: payload.Player,
				Game:   payload.Game,
				Reason: err.Error(),
			},
		}}, nil
	}

	resp := &playevents.SessionStateSucceededPayloadV1{
		Player:          payload.Player,
		Game:            payload.Game,
		Mode:            state.Mode,
		ReferenceID:     state.ReferenceID,
		SessionID:       state.SessionID,
		Won:             state.Won,
		CanPlay:         state.CanPlay,
		Attempts:        make([]playevents.AttemptV1, 0, len(state.Attempts)),
		RemainingNames:  state.Remaining,
		YesterdayTarget: state.YesterdayTarget,
	}
	if state.Target != nil {
		resp.TargetName = state.Target.Name
	}
	for _, a := range state.Attempts {
		resp.Attempts = append(resp.Attempts, playevents.AttemptV1{
			Name:     a.Name,
			Correct:  a.Correct,
			Feedback: a.Feedback,
		})
	}

	return []handlerwrapper.Result{{Topic: playevents.SessionStateSucceededV1, Payload: resp}}, nil
}
