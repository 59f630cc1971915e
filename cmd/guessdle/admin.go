package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Black-And-White-Club/guessdle/app"
	catalogqueue "github.com/Black-And-White-Club/guessdle/app/modules/catalog/infrastructure/queue"
	"github.com/urfave/cli/v2"
)

// withApp runs fn against an App without the event transport.
func withApp(fn func(c *cli.Context, a *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		cfg.Game.Scheduler.Enabled = false

		a, err := app.Open(c.Context, cfg, app.Options{WithoutTransport: true})
		if err != nil {
			return err
		}
		return errors.Join(fn(c, a), a.Close())
	}
}

func gameID(c *cli.Context, a *app.App) (int64, error) {
	slug := c.String("game")
	if slug == "" {
		return 0, nil
	}
	game, err := a.CatalogModule.CatalogService.GetGame(c.Context, slug)
	if err != nil {
		return 0, fmt.Errorf("game %q: %w", slug, err)
	}
	return game.ID, nil
}

func targetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "targets",
		Usage: "daily target maintenance",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "pick today's and tomorrow's targets for every active game",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "enqueue", Usage: "hand the run to the river job queue instead of running it here"},
				},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					if c.Bool("enqueue") {
						return enqueueGeneration(c, a)
					}
					summary, err := a.CatalogModule.CatalogService.GenerateDailyTargets(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("created %d, already present %d\n", summary.Created, summary.Existing)
					for _, slug := range summary.EmptyGames {
						fmt.Printf("skipped %s: no selectable items\n", slug)
					}
					return nil
				}),
			},
		},
	}
}

func enqueueGeneration(c *cli.Context, a *app.App) error {
	queue, err := catalogqueue.NewService(c.Context, a.Config.Postgres.DSN, a.CatalogModule.CatalogService,
		a.Observability.Logger, nil, a.Config.Game.Scheduler.Interval)
	if err != nil {
		return err
	}
	id, err := queue.EnqueueGeneration(c.Context)
	if err != nil {
		return errors.Join(err, queue.Stop(c.Context))
	}
	fmt.Printf("enqueued job %d\n", id)
	return queue.Stop(c.Context)
}

func ratingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "ratings",
		Usage: "rating maintenance",
		Subcommands: []*cli.Command{
			{
				Name:  "recalculate",
				Usage: "replay finished daily sessions of a game to rebuild ratings",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "game", Required: true, Usage: "game slug"},
				},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					id, err := gameID(c, a)
					if err != nil {
						return err
					}
					n, err := a.LedgerModule.LedgerService.RecalculateRatings(c.Context, id)
					if err != nil {
						return err
					}
					fmt.Printf("replayed %d sessions\n", n)
					return nil
				}),
			},
		},
	}
}

func rankingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "rankings",
		Usage: "print players ordered by average winning attempts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "game", Usage: "game slug; all games when empty"},
		},
		Action: withApp(func(c *cli.Context, a *app.App) error {
			id, err := gameID(c, a)
			if err != nil {
				return err
			}
			entries, err := a.LedgerModule.LedgerService.GetRankings(c.Context, id)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tPLAYER\tGAMES\tAVG\tPOINTS\tRATING")
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%s\t%.0f\n", e.Position, e.UserID, e.Games, e.AverageAttempts, e.Points.StringFixed(2), e.Rating)
			}
			return w.Flush()
		}),
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "player statistics maintenance",
		Subcommands: []*cli.Command{
			{
				Name:  "reset",
				Usage: "delete every session, attempt and extra play and reset all ledgers",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Usage: "confirm the reset"},
				},
				Action: withApp(func(c *cli.Context, a *app.App) error {
					if !c.Bool("yes") {
						return errors.New("refusing to reset without --yes")
					}
					summary, err := a.LedgerModule.LedgerService.ResetStats(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("removed %d attempts, %d sessions, %d extra plays; reset %d ledgers\n",
						summary.Attempts, summary.Sessions, summary.ExtraPlays, summary.Ledgers)
					return nil
				}),
			},
		},
	}
}
