package duelhandlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	duelevents "github.com/Black-And-White-Club/guessdle/app/events/duel"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	duelservice "github.com/Black-And-White-Club/guessdle/app/modules/duel/application"
	dueldb "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestHandlers(svc duelservice.Service) Handlers {
	games := FakeGames{"heroes": &catalogdb.Game{ID: 9, Slug: "heroes"}}
	return NewDuelHandlers(svc, games, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestDuelHandlers_HandleChallengeCreateRequested(t *testing.T) {
	tests := []struct {
		name      string
		game      string
		create    func(ctx context.Context, challengerID, opponentID sharedtypes.UserID, gameID int64) (*dueldb.Challenge, error)
		wantErr   bool
		wantTopic string
	}{
		{name: "created", game: "heroes", wantTopic: duelevents.ChallengeCreateSucceededV1},
		{name: "unknown game", game: "villains", wantTopic: duelevents.ChallengeCreateFailedV1},
		{
			name: "self challenge",
			game: "heroes",
			create: func(ctx context.Context, challengerID, opponentID sharedtypes.UserID, gameID int64) (*dueldb.Challenge, error) {
				return nil, duelservice.ErrSelfChallenge
			},
			wantTopic: duelevents.ChallengeCreateFailedV1,
		},
		{
			name: "infrastructure error",
			game: "heroes",
			create: func(ctx context.Context, challengerID, opponentID sharedtypes.UserID, gameID int64) (*dueldb.Challenge, error) {
				return nil, errors.New("timeout")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFakeService()
			svc.CreateChallengeFunc = tt.create

			results, err := newTestHandlers(svc).HandleChallengeCreateRequested(context.Background(), &duelevents.ChallengeCreateRequestedPayloadV1{
				Player:     sharedtypes.Player{UserID: "alice"},
				OpponentID: "bob",
				Game:       tt.game,
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantTopic, results[0].Topic)
			if tt.wantTopic == duelevents.ChallengeCreateSucceededV1 {
				got := results[0].Payload.(*duelevents.ChallengeCreateSucceededPayloadV1)
				assert.Equal(t, int64(5), got.ChallengeID)
				assert.Equal(t, sharedtypes.UserID("alice"), got.ChallengerID)
				assert.Equal(t, sharedtypes.UserID("bob"), got.OpponentID)
			}
		})
	}
}

func TestDuelHandlers_HandleChallengeReportRequested(t *testing.T) {
	t.Run("resolved with winner", func(t *testing.T) {
		svc := NewFakeService()
		svc.ReportAttemptsFunc = func(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID, attempts int) (*duelservice.Resolution, error) {
			assert.Nil(t, db)
			assert.Equal(t, int64(5), id)
			assert.Equal(t, 2, attempts)
			return &duelservice.Resolution{
				Status:   duelservice.StatusWinner,
				WinnerID: "alice",
				LoserID:  "bob",
				Points: map[sharedtypes.UserID]decimal.Decimal{
					"alice": decimal.NewFromInt(190),
					"bob":   decimal.NewFromInt(60),
				},
			}, nil
		}
		results, err := newTestHandlers(svc).HandleChallengeReportRequested(context.Background(), &duelevents.ChallengeReportRequestedPayloadV1{
			Player:      sharedtypes.Player{UserID: "alice"},
			ChallengeID: 5,
			Attempts:    2,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, duelevents.ChallengeReportSucceededV1, results[0].Topic)
		got := results[0].Payload.(*duelevents.ChallengeReportSucceededPayloadV1)
		assert.Equal(t, "winner", got.Status)
		assert.Equal(t, sharedtypes.UserID("alice"), got.WinnerID)
		assert.True(t, got.Points["alice"].Equal(decimal.NewFromInt(190)))
	})

	t.Run("not a participant", func(t *testing.T) {
		svc := NewFakeService()
		svc.ReportAttemptsFunc = func(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID, attempts int) (*duelservice.Resolution, error) {
			return nil, duelservice.ErrNotParticipant
		}
		results, err := newTestHandlers(svc).HandleChallengeReportRequested(context.Background(), &duelevents.ChallengeReportRequestedPayloadV1{
			Player:      sharedtypes.Player{UserID: "mallory"},
			ChallengeID: 5,
			Attempts:    1,
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, duelevents.ChallengeReportFailedV1, results[0].Topic)
		assert.Equal(t, []string{"ReportAttempts"}, svc.Trace())
	})
}
