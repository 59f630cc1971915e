package wagerdb

import (
	"time"

	sharedtypes "github.com/Black-And-White-Club/guessdle/app/shared/types"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// ExtraPlay is a wagered round against a random target. The stake is debited
// when the row is created.
type ExtraPlay struct {
	bun.BaseModel `bun:"table:extra_plays,alias:ep"`

	ID          int64              `bun:"id,pk,autoincrement"`
	UserID      sharedtypes.UserID `bun:"user_id,notnull"`
	GameID      int64              `bun:"game_id,notnull"`
	TargetID    int64              `bun:"target_id,notnull"`
	Stake       decimal.Decimal    `bun:"stake,type:numeric(14,2),notnull"`
	Completed   bool               `bun:"completed,notnull,default:false"`
	Payout      decimal.Decimal    `bun:"payout,type:numeric(14,2),notnull,default:0"`
	CompletedAt *time.Time         `bun:"completed_at,nullzero"`
	CreatedAt   time.Time          `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
