package duelservice

import (
	"context"
	"errors"
	"testing"
	"time"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	dueldomain "github.com/Black-And-White-Club/guessdle/app/modules/duel/domain"
	dueldb "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/shared/clock"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	alice = sharedtypes.UserID("alice")
	bob   = sharedtypes.UserID("bob")
	carol = sharedtypes.UserID("carol")
)

func newTestService(repo *FakeDuelRepo, ledger *FakeLedger) *DuelService {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	return NewDuelService(
		repo,
		ledger,
		&FakeTargets{},
		observability.NewNoop().Logger,
		observability.NewNoopMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		clock.NewAnchorClock(now),
		decimal.NewFromInt(100),
	)
}

func TestCreateChallenge(t *testing.T) {
	t.Run("creates pending challenge", func(t *testing.T) {
		repo := NewFakeDuelRepo()
		svc := newTestService(repo, NewFakeLedger())

		c, err := svc.CreateChallenge(context.Background(), alice, bob, 3)
		require.NoError(t, err)
		assert.Equal(t, int64(7), c.TargetID)
		assert.Equal(t, dueldomain.StatePendingAccept, c.State())
	})

	t.Run("rejects self challenge", func(t *testing.T) {
		repo := NewFakeDuelRepo()
		svc := newTestService(repo, NewFakeLedger())

		_, err := svc.CreateChallenge(context.Background(), alice, alice, 3)
		require.ErrorIs(t, err, ErrSelfChallenge)
		assert.Empty(t, repo.challenges)
	})

	t.Run("empty game", func(t *testing.T) {
		repo := NewFakeDuelRepo()
		svc := newTestService(repo, NewFakeLedger())
		svc.targets = &FakeTargets{PickRandomTargetFunc: func(ctx context.Context, db bun.IDB, gameID int64) (*catalogdb.Item, error) {
			return nil, catalogservice.ErrEmptyGame
		}}

		_, err := svc.CreateChallenge(context.Background(), alice, bob, 3)
		require.ErrorIs(t, err, catalogservice.ErrEmptyGame)
	})
}

func TestAcceptIfNeeded(t *testing.T) {
	repo := NewFakeDuelRepo()
	svc := newTestService(repo, NewFakeLedger())
	c, err := svc.CreateChallenge(context.Background(), alice, bob, 3)
	require.NoError(t, err)

	got, err := svc.AcceptIfNeeded(context.Background(), nil, c.ID, alice)
	require.NoError(t, err)
	assert.False(t, got.Accepted, "challenger interaction does not accept")

	got, err = svc.AcceptIfNeeded(context.Background(), nil, c.ID, bob)
	require.NoError(t, err)
	assert.True(t, got.Accepted)
	assert.Equal(t, dueldomain.StateAccepted, got.State())

	_, err = svc.AcceptIfNeeded(context.Background(), nil, c.ID, carol)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.AcceptIfNeeded(context.Background(), nil, 999, bob)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestReportAttempts(t *testing.T) {
	tests := []struct {
		name        string
		challenger  int
		opponent    int
		wantStatus  ResolutionStatus
		wantWinner  sharedtypes.UserID
		wantBalance map[sharedtypes.UserID]int64
	}{
		{
			name:        "challenger wins",
			challenger:  2,
			opponent:    4,
			wantStatus:  StatusWinner,
			wantWinner:  alice,
			wantBalance: map[sharedtypes.UserID]int64{alice: 175, bob: 40},
		},
		{
			name:        "opponent wins",
			challenger:  5,
			opponent:    1,
			wantStatus:  StatusWinner,
			wantWinner:  bob,
			wantBalance: map[sharedtypes.UserID]int64{alice: 30, bob: 200},
		},
		{
			name:        "tie gives base points to both",
			challenger:  3,
			opponent:    3,
			wantStatus:  StatusTie,
			wantBalance: map[sharedtypes.UserID]int64{alice: 50, bob: 50},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeDuelRepo()
			ledger := NewFakeLedger()
			svc := newTestService(repo, ledger)
			c, err := svc.CreateChallenge(context.Background(), alice, bob, 3)
			require.NoError(t, err)

			first, err := svc.ReportAttempts(context.Background(), nil, c.ID, alice, tt.challenger)
			require.NoError(t, err)
			assert.Equal(t, StatusPending, first.Status)
			assert.Empty(t, ledger.trace)

			res, err := svc.ReportAttempts(context.Background(), nil, c.ID, bob, tt.opponent)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantWinner, res.WinnerID)
			for user, want := range tt.wantBalance {
				assert.True(t, ledger.balances[user].Equal(decimal.NewFromInt(want)), "%s balance %s", user, ledger.balances[user])
			}

			stored := repo.challenges[c.ID]
			assert.True(t, stored.Accepted)
			assert.True(t, stored.Completed)
			assert.True(t, stored.PointsAssigned)
			assert.Equal(t, dueldomain.StatePointsAssigned, stored.State())
		})
	}
}

func TestReportAttempts_FirstReportKept(t *testing.T) {
	repo := NewFakeDuelRepo()
	svc := newTestService(repo, NewFakeLedger())
	c, err := svc.CreateChallenge(context.Background(), alice, bob, 3)
	require.NoError(t, err)

	_, err = svc.ReportAttempts(context.Background(), nil, c.ID, alice, 3)
	require.NoError(t, err)
	_, err = svc.ReportAttempts(context.Background(), nil, c.ID, alice, 1)
	require.NoError(t, err)

	require.NotNil(t, repo.challenges[c.ID].ChallengerAttempts)
	assert.Equal(t, 3, *repo.challenges[c.ID].ChallengerAttempts)
}

func TestReportAttempts_Errors(t *testing.T) {
	repo := NewFakeDuelRepo()
	svc := newTestService(repo, NewFakeLedger())
	c, err := svc.CreateChallenge(context.Background(), alice, bob, 3)
	require.NoError(t, err)

	_, err = svc.ReportAttempts(context.Background(), nil, c.ID, carol, 3)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.ReportAttempts(context.Background(), nil, c.ID, alice, 0)
	assert.ErrorIs(t, err, ErrInvalidAttempts)

	_, err = svc.ReportAttempts(context.Background(), nil, 404, alice, 2)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestResolve_BonusGrantedOnce(t *testing.T) {
	repo := NewFakeDuelRepo()
	ledger := NewFakeLedger()
	svc := newTestService(repo, ledger)
	c, err := svc.CreateChallenge(context.Background(), alice, bob, 3)
	require.NoError(t, err)

	_, err = svc.ReportAttempts(context.Background(), nil, c.ID, alice, 2)
	require.NoError(t, err)
	_, err = svc.ReportAttempts(context.Background(), nil, c.ID, bob, 5)
	require.NoError(t, err)

	for range 3 {
		res, err := svc.Resolve(context.Background(), nil, c.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusAlreadyResolved, res.Status)
		assert.Equal(t, alice, res.WinnerID)
	}

	assert.Equal(t, []string{"AwardForAttempts:alice", "Credit:alice", "AwardForAttempts:bob"}, ledger.trace)
	assert.True(t, ledger.balances[alice].Equal(decimal.NewFromInt(175)))
	assert.True(t, ledger.balances[bob].Equal(decimal.NewFromInt(30)))
}

func TestResolve_WinnerIsPermanent(t *testing.T) {
	repo := NewFakeDuelRepo()
	ledger := NewFakeLedger()
	svc := newTestService(repo, ledger)

	two, five := 2, 5
	winner := bob
	repo.challenges[1] = &dueldb.Challenge{
		ID: 1, ChallengerID: alice, OpponentID: bob, GameID: 3, Accepted: true,
		Completed: true, WinnerID: &winner,
		ChallengerAttempts: &two, OpponentAttempts: &five,
	}

	res, err := svc.Resolve(context.Background(), nil, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusWinner, res.Status)
	assert.Equal(t, bob, res.WinnerID)
	assert.Equal(t, alice, res.LoserID)
	assert.NotContains(t, repo.trace, "MarkCompleted")
}

func TestResolve_Pending(t *testing.T) {
	repo := NewFakeDuelRepo()
	svc := newTestService(repo, NewFakeLedger())
	c, err := svc.CreateChallenge(context.Background(), alice, bob, 3)
	require.NoError(t, err)

	res, err := svc.Resolve(context.Background(), nil, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, res.Status)
	assert.False(t, repo.challenges[c.ID].Completed)
}

func TestResolve_InfrastructureError(t *testing.T) {
	repo := NewFakeDuelRepo()
	svc := newTestService(repo, NewFakeLedger())
	boom := errors.New("connection reset")
	repo.GetForUpdateFunc = func(ctx context.Context, db bun.IDB, id int64) (*dueldb.Challenge, error) {
		return nil, boom
	}

	_, err := svc.Resolve(context.Background(), nil, 1)
	require.ErrorIs(t, err, boom)
}

func TestListChallenges(t *testing.T) {
	repo := NewFakeDuelRepo()
	svc := newTestService(repo, NewFakeLedger())
	_, err := svc.CreateChallenge(context.Background(), alice, bob, 3)
	require.NoError(t, err)
	_, err = svc.CreateChallenge(context.Background(), carol, alice, 3)
	require.NoError(t, err)

	got, err := svc.ListChallenges(context.Background(), bob, true)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = svc.ListChallenges(context.Background(), alice, false)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
