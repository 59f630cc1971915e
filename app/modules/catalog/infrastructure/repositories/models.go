package catalogdb

import (
	"time"

	catalogdomain "github.com/Black-And-White-Club/guessdle/app/modules/catalog/domain"
	"github.com/uptrace/bun"
)

// Game is a guessing game and its attribute schema.
type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID            int64          `bun:"id,pk,autoincrement"`
	Slug          string         `bun:"slug,notnull,unique"`
	Name          string         `bun:"name,notnull"`
	Attributes    []string       `bun:"attributes,type:jsonb,notnull"`
	NumericFields []string       `bun:"numeric_fields,type:jsonb,notnull"`
	GroupedFields [][]string     `bun:"grouped_fields,type:jsonb,notnull"`
	Defaults      map[string]any `bun:"defaults,type:jsonb,notnull"`
	Active        bool           `bun:"active,notnull,default:true"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Schema returns the comparison schema of the game.
func (g *Game) Schema() catalogdomain.Schema {
	return catalogdomain.Schema{
		Attributes: g.Attributes,
		Numeric:    g.NumericFields,
		Groups:     g.GroupedFields,
		Defaults:   g.Defaults,
	}
}

// Item is a guessable entry of a game. Deleted items stay in the table so old
// attempts keep resolving.
type Item struct {
	bun.BaseModel `bun:"table:game_items,alias:gi"`

	ID        int64          `bun:"id,pk,autoincrement"`
	GameID    int64          `bun:"game_id,notnull"`
	Name      string         `bun:"name,notnull"`
	Data      map[string]any `bun:"data,type:jsonb,notnull"`
	Deleted   bool           `bun:"deleted,notnull,default:false"`
	DeletedAt *time.Time     `bun:"deleted_at,nullzero"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Domain converts the row into the comparator's view of an item.
func (i *Item) Domain() catalogdomain.Item {
	return catalogdomain.Item{ID: i.ID, Name: i.Name, Data: i.Data}
}

// DailyTarget is the scheduled target of a game for one date and account kind.
type DailyTarget struct {
	bun.BaseModel `bun:"table:daily_targets,alias:dt"`

	ID        int64     `bun:"id,pk,autoincrement"`
	GameID    int64     `bun:"game_id,notnull"`
	TargetID  int64     `bun:"target_id,notnull"`
	Date      time.Time `bun:"date,type:date,notnull"`
	IsTeam    bool      `bun:"is_team,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Target *Item `bun:"rel:belongs-to,join:target_id=id"`
}

// CalendarDate normalises t to midnight UTC of its own calendar date, the
// shape stored in date columns.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
