package playservice

import (
	"context"
	"sort"
	"strings"
	"time"

	catalogservice "github.com/Black-And-White-Club/guessdle/app/modules/catalog/application"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	duelservice "github.com/Black-And-White-Club/guessdle/app/modules/duel/application"
	dueldb "github.com/Black-And-White-Club/guessdle/app/modules/duel/infrastructure/repositories"
	ledgerservice "github.com/Black-And-White-Club/guessdle/app/modules/ledger/application"
	playdomain "github.com/Black-And-White-Club/guessdle/app/modules/play/domain"
	playdb "github.com/Black-And-White-Club/guessdle/app/modules/play/infrastructure/repositories"
	wagerservice "github.com/Black-And-White-Club/guessdle/app/modules/wager/application"
	wagerdb "github.com/Black-And-White-Club/guessdle/app/modules/wager/infrastructure/repositories"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Play Repo
// ------------------------

type FakePlayRepo struct {
	trace    []string
	sessions map[playdomain.SessionKey]*playdb.PlaySession
	attempts map[int64][]playdb.Attempt
	nextID   int64
}

func NewFakePlayRepo() *FakePlayRepo {
	return &FakePlayRepo{
		trace:    []string{},
		sessions: map[playdomain.SessionKey]*playdb.PlaySession{},
		attempts: map[int64][]playdb.Attempt{},
	}
}

func (f *FakePlayRepo) record(step string) { f.trace = append(f.trace, step) }

func (f *FakePlayRepo) byID(id int64) *playdb.PlaySession {
	for _, s := range f.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (f *FakePlayRepo) GetOrCreateSession(ctx context.Context, db bun.IDB, key playdomain.SessionKey) (*playdb.PlaySession, error) {
	f.record("GetOrCreateSession")
	if s, ok := f.sessions[key]; ok {
		cp := *s
		return &cp, nil
	}
	f.nextID++
	s := &playdb.PlaySession{ID: f.nextID, UserID: key.UserID, GameID: key.GameID, SessionType: key.Mode, ReferenceID: key.ReferenceID}
	f.sessions[key] = s
	cp := *s
	return &cp, nil
}

func (f *FakePlayRepo) FindSession(ctx context.Context, db bun.IDB, key playdomain.SessionKey) (*playdb.PlaySession, error) {
	f.record("FindSession")
	s, ok := f.sessions[key]
	if !ok {
		return nil, playdb.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *FakePlayRepo) LockSession(ctx context.Context, db bun.IDB, id int64) (*playdb.PlaySession, error) {
	f.record("LockSession")
	s := f.byID(id)
	if s == nil {
		return nil, playdb.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *FakePlayRepo) InsertAttempt(ctx context.Context, db bun.IDB, attempt *playdb.Attempt) (bool, error) {
	f.record("InsertAttempt")
	for _, a := range f.attempts[attempt.SessionID] {
		if a.ItemID == attempt.ItemID {
			return false, nil
		}
	}
	attempt.ID = int64(len(f.attempts[attempt.SessionID]) + 1)
	f.attempts[attempt.SessionID] = append(f.attempts[attempt.SessionID], *attempt)
	return true, nil
}

func (f *FakePlayRepo) ListAttempts(ctx context.Context, db bun.IDB, sessionID int64) ([]playdb.Attempt, error) {
	f.record("ListAttempts")
	src := f.attempts[sessionID]
	out := make([]playdb.Attempt, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		out = append(out, src[i])
	}
	return out, nil
}

func (f *FakePlayRepo) CountAttempts(ctx context.Context, db bun.IDB, sessionID int64) (int, error) {
	f.record("CountAttempts")
	return len(f.attempts[sessionID]), nil
}

func (f *FakePlayRepo) MarkWon(ctx context.Context, db bun.IDB, sessionID int64, attempts int, at time.Time) (bool, error) {
	f.record("MarkWon")
	s := f.byID(sessionID)
	if s == nil || s.WonAt != nil {
		return false, nil
	}
	n := attempts
	s.WonAt = &at
	s.WinningAttempts = &n
	return true, nil
}

// ------------------------
// Fake Catalog
// ------------------------

type FakeCatalog struct {
	game      *catalogdb.Game
	items     map[int64]catalogdb.Item
	today     *catalogdb.DailyTarget
	yesterday *catalogdb.DailyTarget
}

func (f *FakeCatalog) GetGame(ctx context.Context, slug string) (*catalogdb.Game, error) {
	if f.game == nil || f.game.Slug != slug {
		return nil, catalogservice.ErrGameNotFound
	}
	return f.game, nil
}

func (f *FakeCatalog) GetTodayTarget(ctx context.Context, db bun.IDB, gameID int64, isTeam bool) (*catalogdb.DailyTarget, error) {
	if f.today == nil || f.today.IsTeam != isTeam {
		return nil, catalogservice.ErrNoActiveTarget
	}
	return f.today, nil
}

func (f *FakeCatalog) GetYesterdayTarget(ctx context.Context, db bun.IDB, gameID int64, isTeam bool) (*catalogdb.DailyTarget, error) {
	if f.yesterday == nil {
		return nil, catalogservice.ErrNoActiveTarget
	}
	return f.yesterday, nil
}

func (f *FakeCatalog) ResolveGuess(ctx context.Context, db bun.IDB, gameID int64, name string) (*catalogdb.Item, error) {
	for _, it := range f.items {
		if !it.Deleted && strings.EqualFold(it.Name, name) {
			cp := it
			return &cp, nil
		}
	}
	return nil, catalogservice.ErrUnknownItem
}

func (f *FakeCatalog) RemainingNames(ctx context.Context, db bun.IDB, gameID int64, exclude []int64) ([]string, error) {
	skip := map[int64]bool{}
	for _, id := range exclude {
		skip[id] = true
	}
	var names []string
	for _, it := range f.items {
		if !it.Deleted && !skip[it.ID] {
			names = append(names, it.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *FakeCatalog) ItemsByID(ctx context.Context, db bun.IDB, ids []int64) (map[int64]catalogdb.Item, error) {
	out := map[int64]catalogdb.Item{}
	for _, id := range ids {
		if it, ok := f.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

// ------------------------
// Fake Ledger / Wagers / Duels
// ------------------------

type FakeLedger struct {
	trace []string
}

func (f *FakeLedger) AwardForAttempts(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, attempts int) (*ledgerservice.Award, error) {
	f.trace = append(f.trace, "AwardForAttempts")
	points := map[int]int{1: 100, 2: 75, 3: 50}[attempts]
	return &ledgerservice.Award{Points: points, Balance: decimal.NewFromInt(int64(points)), GamesPlayed: 1}, nil
}

func (f *FakeLedger) UpdateRating(ctx context.Context, db bun.IDB, userID sharedtypes.UserID, gameID int64, attempts int, sessionID int64) (*ledgerservice.RatingChange, error) {
	f.trace = append(f.trace, "UpdateRating")
	return &ledgerservice.RatingChange{Before: 1200, After: 1200}, nil
}

type FakeWagers struct {
	plays   map[int64]*wagerdb.ExtraPlay
	settled []int64
}

func (f *FakeWagers) GetWager(ctx context.Context, db bun.IDB, id int64) (*wagerdb.ExtraPlay, error) {
	p, ok := f.plays[id]
	if !ok {
		return nil, wagerservice.ErrWagerNotFound
	}
	return p, nil
}

func (f *FakeWagers) Settle(ctx context.Context, db bun.IDB, playID int64, sessionID int64, attempts int) (*wagerservice.Settlement, error) {
	f.settled = append(f.settled, playID)
	p := f.plays[playID]
	payout := p.Stake.Mul(decimal.RequireFromString("1.5"))
	return &wagerservice.Settlement{Play: p, Won: true, Payout: payout, Balance: payout}, nil
}

type FakeDuels struct {
	challenges map[int64]*dueldb.Challenge
	accepted   []sharedtypes.UserID
	reports    map[sharedtypes.UserID]int
}

func (f *FakeDuels) GetChallenge(ctx context.Context, db bun.IDB, id int64) (*dueldb.Challenge, error) {
	c, ok := f.challenges[id]
	if !ok {
		return nil, duelservice.ErrChallengeNotFound
	}
	return c, nil
}

func (f *FakeDuels) AcceptIfNeeded(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID) (*dueldb.Challenge, error) {
	f.accepted = append(f.accepted, userID)
	return f.challenges[id], nil
}

func (f *FakeDuels) ReportAttempts(ctx context.Context, db bun.IDB, id int64, userID sharedtypes.UserID, attempts int) (*duelservice.Resolution, error) {
	if f.reports == nil {
		f.reports = map[sharedtypes.UserID]int{}
	}
	f.reports[userID] = attempts
	return &duelservice.Resolution{Challenge: f.challenges[id], Status: duelservice.StatusPending}, nil
}

var (
	_ playdb.Repository = (*FakePlayRepo)(nil)
	_ Catalog           = (*FakeCatalog)(nil)
	_ Ledger            = (*FakeLedger)(nil)
	_ Wagers            = (*FakeWagers)(nil)
	_ Duels             = (*FakeDuels)(nil)
)
