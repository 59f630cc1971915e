// Package dbtest starts a throwaway PostgreSQL for integration tests and
// seeds games into it.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/Black-And-White-Club/guessdle/app/database"
	catalogdb "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/docker/go-connections/nat"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

const (
	dbName   = "guessdle"
	user     = "guessdle"
	password = "guessdle"
)

// StartPostgres runs a postgres container, applies every migration and
// returns a bun handle. The test is skipped under -short.
func StartPostgres(t *testing.T) *bun.DB {
	t.Helper()
	db, _ := StartPostgresDSN(t)
	return db
}

// StartPostgresDSN is StartPostgres that also returns the connection string,
// for clients that open their own pool.
func StartPostgresDSN(t *testing.T) (*bun.DB, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port.Port(), dbName)
			}).WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		if pg != nil {
			_ = pg.Terminate(context.Background())
		}
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pg.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := pg.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	parsed, err := url.Parse(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	q := parsed.Query()
	q.Set("sslmode", "disable")
	parsed.RawQuery = q.Encode()

	sqldb, err := sql.Open("pgx", parsed.String())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db, parsed.String()
}

// Person is a seed item of the "heroes" test game.
type Person struct {
	Name   string
	Height any
	Team   any
}

// SeedHeroes inserts a game whose items compare on height (numeric) and
// team (exact) and returns it with its items in insertion order. Extra
// random filler items come after the named ones.
func SeedHeroes(t *testing.T, db bun.IDB, people []Person, filler int) (*catalogdb.Game, []catalogdb.Item) {
	t.Helper()
	ctx := context.Background()

	game := &catalogdb.Game{
		Slug:          "heroes",
		Name:          "Heroes",
		Attributes:    []string{"height", "team"},
		NumericFields: []string{"height"},
		GroupedFields: [][]string{},
		Defaults:      map[string]any{"team": "none"},
		Active:        true,
	}
	if _, err := db.NewInsert().Model(game).Exec(ctx); err != nil {
		t.Fatalf("failed to seed game: %v", err)
	}

	faker := gofakeit.New(42)
	for range filler {
		people = append(people, Person{
			Name:   faker.Name(),
			Height: faker.IntRange(140, 210),
			Team:   faker.RandomString([]string{"red", "blue", "green"}),
		})
	}

	items := make([]catalogdb.Item, 0, len(people))
	for _, p := range people {
		items = append(items, catalogdb.Item{
			GameID: game.ID,
			Name:   p.Name,
			Data:   map[string]any{"height": p.Height, "team": p.Team},
		})
	}
	if _, err := db.NewInsert().Model(&items).Exec(ctx); err != nil {
		t.Fatalf("failed to seed items: %v", err)
	}
	return game, items
}
