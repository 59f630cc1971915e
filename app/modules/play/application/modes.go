package playservice

import (
	"context"
	"errors"

	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	duelservice "github.com/Black-And-White-Club/guessdle/app/modules/duel/application"
	playdomain "github.com/Black-And-White-Club/guessdle/app/modules/play/domain"
	wagerservice "github.com/Black-And-White-Club/guessdle/app/modules/wager/application"
	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// modeResolver knows where a mode's target comes from and what a win pays.
type modeResolver interface {
	// load finds the session context without writing anything.
	load(ctx context.Context, db bun.IDB, player sharedtypes.Player, game *catalogdb.Game, referenceID int64) (playdomain.SessionContext, error)
	// touch records the player's interaction before a guess is stored.
	touch(ctx context.Context, db bun.IDB, player sharedtypes.Player, sc playdomain.SessionContext) error
	// onWin pays out a session that was just won in attempts guesses.
	onWin(ctx context.Context, db bun.IDB, player sharedtypes.Player, gameID int64, sc playdomain.SessionContext, sessionID int64, attempts int) (*Reward, error)
}

// ------------------------
// DAILY
// ------------------------

type dailyMode struct {
	catalog Catalog
	ledger  Ledger
}

func (m dailyMode) load(ctx context.Context, db bun.IDB, player sharedtypes.Player, game *catalogdb.Game, _ int64) (playdomain.SessionContext, error) {
	target, err := m.catalog.GetTodayTarget(ctx, db, game.ID, player.IsTeamAccount)
	if err != nil {
		return nil, err
	}
	return playdomain.DailyContext{
		DailyTargetID: target.ID,
		Target:        target.TargetID,
		Date:          target.Date,
		IsTeam:        target.IsTeam,
	}, nil
}

func (dailyMode) touch(context.Context, bun.IDB, sharedtypes.Player, playdomain.SessionContext) error {
	return nil
}

func (m dailyMode) onWin(ctx context.Context, db bun.IDB, player sharedtypes.Player, gameID int64, _ playdomain.SessionContext, sessionID int64, attempts int) (*Reward, error) {
	award, err := m.ledger.AwardForAttempts(ctx, db, player.UserID, gameID, attempts)
	if err != nil {
		return nil, err
	}
	rating, err := m.ledger.UpdateRating(ctx, db, player.UserID, gameID, attempts, sessionID)
	if err != nil {
		return nil, err
	}
	return &Reward{
		Points:  decimal.NewFromInt(int64(award.Points)),
		Balance: award.Balance,
		Rating:  rating,
	}, nil
}

// ------------------------
// EXTRA
// ------------------------

type extraMode struct {
	wagers Wagers
}

func (m extraMode) load(ctx context.Context, db bun.IDB, player sharedtypes.Player, game *catalogdb.Game, referenceID int64) (playdomain.SessionContext, error) {
	play, err := m.wagers.GetWager(ctx, db, referenceID)
	if err != nil {
		if errors.Is(err, wagerservice.ErrWagerNotFound) {
			return nil, ErrUnknownReference
		}
		return nil, err
	}
	if play.UserID != player.UserID || play.GameID != game.ID {
		return nil, ErrUnknownReference
	}
	return playdomain.ExtraContext{
		ExtraPlayID: play.ID,
		Target:      play.TargetID,
		Completed:   play.Completed,
	}, nil
}

func (extraMode) touch(context.Context, bun.IDB, sharedtypes.Player, playdomain.SessionContext) error {
	return nil
}

func (m extraMode) onWin(ctx context.Context, db bun.IDB, _ sharedtypes.Player, _ int64, sc playdomain.SessionContext, sessionID int64, attempts int) (*Reward, error) {
	settlement, err := m.wagers.Settle(ctx, db, sc.ReferenceID(), sessionID, attempts)
	if err != nil {
		return nil, err
	}
	return &Reward{
		Points:  settlement.Payout,
		Balance: settlement.Balance,
		Wager:   settlement,
	}, nil
}

// ------------------------
// CHALLENGE
// ------------------------

type duelMode struct {
	duels Duels
}

func (m duelMode) load(ctx context.Context, db bun.IDB, player sharedtypes.Player, game *catalogdb.Game, referenceID int64) (playdomain.SessionContext, error) {
	challenge, err := m.duels.GetChallenge(ctx, db, referenceID)
	if err != nil {
		if errors.Is(err, duelservice.ErrChallengeNotFound) {
			return nil, ErrUnknownReference
		}
		return nil, err
	}
	if !challenge.IsParticipant(player.UserID) || challenge.GameID != game.ID {
		return nil, ErrUnknownReference
	}
	return playdomain.DuelContext{
		ChallengeID:  challenge.ID,
		Target:       challenge.TargetID,
		ChallengerID: challenge.ChallengerID,
		OpponentID:   challenge.OpponentID,
	}, nil
}

func (m duelMode) touch(ctx context.Context, db bun.IDB, player sharedtypes.Player, sc playdomain.SessionContext) error {
	_, err := m.duels.AcceptIfNeeded(ctx, db, sc.ReferenceID(), player.UserID)
	return err
}

// onWin reports the attempt count; points move once both sides have reported.
func (m duelMode) onWin(ctx context.Context, db bun.IDB, player sharedtypes.Player, _ int64, sc playdomain.SessionContext, _ int64, attempts int) (*Reward, error) {
	resolution, err := m.duels.ReportAttempts(ctx, db, sc.ReferenceID(), player.UserID, attempts)
	if err != nil {
		return nil, err
	}
	reward := &Reward{Duel: resolution}
	if pts, ok := resolution.Points[player.UserID]; ok {
		reward.Points = pts
	}
	return reward, nil
}
