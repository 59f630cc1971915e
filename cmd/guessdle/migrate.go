package main

import (
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/guessdle/app/database"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func migrateCommand() *cli.Command {
	withMigrators := func(fn func(c *cli.Context, migrators []database.ModuleMigrator) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := database.Open(c.Context, cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer db.Close()
			return fn(c, database.Migrators(db))
		}
	}

	report := func(verb string) func(module string, group *migrate.MigrationGroup) {
		return func(module string, group *migrate.MigrationGroup) {
			if group.IsZero() {
				fmt.Printf("%s: nothing to %s\n", module, verb)
				return
			}
			fmt.Printf("%s: %s %s\n", module, verb, group)
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrators(func(c *cli.Context, migrators []database.ModuleMigrator) error {
					return database.Init(c.Context, migrators)
				}),
			},
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: withMigrators(func(c *cli.Context, migrators []database.ModuleMigrator) error {
					if err := database.Init(c.Context, migrators); err != nil {
						return err
					}
					return database.Up(c.Context, migrators, report("migrate"))
				}),
			},
			{
				Name:  "down",
				Usage: "roll back the last migration group of every module",
				Action: withMigrators(func(c *cli.Context, migrators []database.ModuleMigrator) error {
					return database.Down(c.Context, migrators, report("roll back"))
				}),
			},
			{
				Name:  "status",
				Usage: "print applied and pending migrations",
				Action: withMigrators(func(c *cli.Context, migrators []database.ModuleMigrator) error {
					statuses, err := database.Status(c.Context, migrators)
					if err != nil {
						return err
					}
					for _, st := range statuses {
						fmt.Printf("%s\n  applied: %s\n  pending: %s\n", st.Module, joinOrNone(st.Applied), joinOrNone(st.Pending))
					}
					return nil
				}),
			},
		},
	}
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
