package catalogservice

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	"github.com/Black-And-White-Club/guessdle/app/observability"
	"github.com/Black-And-White-Club/guessdle/app/shared/clock"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo catalogdb.Repository, now time.Time) *CatalogService {
	madrid, _ := time.LoadLocation("Europe/Madrid")
	return NewCatalogService(
		repo,
		observability.NewNoop().Logger,
		observability.NewNoopMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		clock.NewAnchorClock(now),
		madrid,
		23,
	)
}

func TestGetGame_NormalisesSlug(t *testing.T) {
	repo := NewFakeCatalogRepo()
	var asked string
	repo.GetGameBySlugFunc = func(ctx context.Context, db bun.IDB, slug string) (*catalogdb.Game, error) {
		asked = slug
		if slug == "one-piece" {
			return &catalogdb.Game{ID: 1, Slug: slug}, nil
		}
		return nil, catalogdb.ErrNotFound
	}
	svc := newTestService(repo, time.Now())

	game, err := svc.GetGame(context.Background(), "One Piece")
	require.NoError(t, err)
	assert.Equal(t, int64(1), game.ID)
	assert.Equal(t, "one-piece", asked)

	_, err = svc.GetGame(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestPickRandomTarget(t *testing.T) {
	faker := gofakeit.New(42)
	var items []catalogdb.Item
	for i := int64(1); i <= 20; i++ {
		items = append(items, catalogdb.Item{ID: i, Name: faker.Name(), Deleted: i%3 == 0})
	}

	t.Run("never returns a deleted item", func(t *testing.T) {
		repo := NewFakeCatalogRepo().withItems(items)
		svc := newTestService(repo, time.Now())
		for i := 0; i < 200; i++ {
			it, err := svc.PickRandomTarget(context.Background(), nil, 1)
			require.NoError(t, err)
			assert.False(t, it.Deleted)
		}
	})

	t.Run("uses the picker index", func(t *testing.T) {
		repo := NewFakeCatalogRepo().withItems(items)
		svc := newTestService(repo, time.Now()).WithPicker(func(n int) int { return n - 1 })
		it, err := svc.PickRandomTarget(context.Background(), nil, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(20), it.ID)
	})

	t.Run("every item deleted", func(t *testing.T) {
		all := make([]catalogdb.Item, len(items))
		copy(all, items)
		for i := range all {
			all[i].Deleted = true
		}
		repo := NewFakeCatalogRepo().withItems(all)
		svc := newTestService(repo, time.Now())
		_, err := svc.PickRandomTarget(context.Background(), nil, 1)
		assert.ErrorIs(t, err, ErrEmptyGame)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := NewFakeCatalogRepo()
		repo.CountActiveItemsFunc = func(ctx context.Context, db bun.IDB, gameID int64) (int, error) {
			return 0, errors.New("db down")
		}
		svc := newTestService(repo, time.Now())
		_, err := svc.PickRandomTarget(context.Background(), nil, 1)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrEmptyGame)
	})
}

func TestGetTodayTarget_Cutoff(t *testing.T) {
	madrid, _ := time.LoadLocation("Europe/Madrid")

	tests := []struct {
		name     string
		now      time.Time
		wantDate string
	}{
		{"before cutoff", time.Date(2026, 10, 18, 22, 59, 0, 0, madrid), "2026-10-18"},
		{"at cutoff", time.Date(2026, 10, 18, 23, 0, 0, 0, madrid), "2026-10-19"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeCatalogRepo()
			var gotDate string
			var gotTeam bool
			repo.GetDailyTargetFunc = func(ctx context.Context, db bun.IDB, gameID int64, date time.Time, isTeam bool) (*catalogdb.DailyTarget, error) {
				gotDate = clock.DateKey(date)
				gotTeam = isTeam
				return &catalogdb.DailyTarget{ID: 9, GameID: gameID}, nil
			}
			svc := newTestService(repo, tt.now)

			target, err := svc.GetTodayTarget(context.Background(), nil, 1, true)
			require.NoError(t, err)
			assert.Equal(t, int64(9), target.ID)
			assert.Equal(t, tt.wantDate, gotDate)
			assert.True(t, gotTeam)
		})
	}
}

func TestGetTodayTarget_Missing(t *testing.T) {
	svc := newTestService(NewFakeCatalogRepo(), time.Now())
	_, err := svc.GetTodayTarget(context.Background(), nil, 1, false)
	assert.ErrorIs(t, err, ErrNoActiveTarget)
	_, err = svc.GetYesterdayTarget(context.Background(), nil, 1, false)
	assert.ErrorIs(t, err, ErrNoActiveTarget)
}

func TestResolveGuess(t *testing.T) {
	repo := NewFakeCatalogRepo()
	repo.GetItemByNameFunc = func(ctx context.Context, db bun.IDB, gameID int64, name string) (*catalogdb.Item, error) {
		if name == "luffy" {
			return &catalogdb.Item{ID: 3, Name: "Luffy"}, nil
		}
		return nil, catalogdb.ErrNotFound
	}
	svc := newTestService(repo, time.Now())

	it, err := svc.ResolveGuess(context.Background(), nil, 1, "luffy")
	require.NoError(t, err)
	assert.Equal(t, "Luffy", it.Name)

	_, err = svc.ResolveGuess(context.Background(), nil, 1, "buggy")
	assert.ErrorIs(t, err, ErrUnknownItem)
}

func TestGenerateDailyTargets(t *testing.T) {
	madrid, _ := time.LoadLocation("Europe/Madrid")
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, madrid)

	repo := NewFakeCatalogRepo().withItems([]catalogdb.Item{{ID: 1}, {ID: 2}})
	repo.ListActiveGamesFunc = func(ctx context.Context, db bun.IDB) ([]catalogdb.Game, error) {
		return []catalogdb.Game{{ID: 1, Slug: "pokemon"}, {ID: 2, Slug: "empty"}}, nil
	}
	existing := map[string]bool{"1/2026-10-18/false": true}
	repo.GetDailyTargetFunc = func(ctx context.Context, db bun.IDB, gameID int64, date time.Time, isTeam bool) (*catalogdb.DailyTarget, error) {
		key := keyOf(gameID, date, isTeam)
		if existing[key] {
			return &catalogdb.DailyTarget{}, nil
		}
		return nil, catalogdb.ErrNotFound
	}
	baseCount := repo.CountActiveItemsFunc
	repo.CountActiveItemsFunc = func(ctx context.Context, db bun.IDB, gameID int64) (int, error) {
		if gameID == 2 {
			return 0, nil
		}
		return baseCount(ctx, db, gameID)
	}
	var created []string
	repo.CreateDailyTargetFunc = func(ctx context.Context, db bun.IDB, target *catalogdb.DailyTarget) (bool, error) {
		created = append(created, keyOf(target.GameID, target.Date, target.IsTeam))
		return true, nil
	}

	svc := newTestService(repo, now)
	summary, err := svc.GenerateDailyTargets(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Created)
	assert.Equal(t, 1, summary.Existing)
	assert.Equal(t, []string{"empty"}, summary.EmptyGames)
	assert.ElementsMatch(t, []string{
		"1/2026-10-18/true",
		"1/2026-10-19/false",
		"1/2026-10-19/true",
	}, created)
}

func keyOf(gameID int64, date time.Time, isTeam bool) string {
	return strconv.FormatInt(gameID, 10) + "/" + clock.DateKey(date) + "/" + strconv.FormatBool(isTeam)
}
