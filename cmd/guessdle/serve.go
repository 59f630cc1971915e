package main

import (
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/guessdle/app"
	"github.com/Black-And-White-Club/guessdle/app/database"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the event handlers and the daily target scheduler",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "apply pending migrations before starting"},
			&cli.BoolFlag{Name: "in-memory", Usage: "use an in-process event bus instead of NATS"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			application, err := app.Open(c.Context, cfg, app.Options{InMemoryBus: c.Bool("in-memory")})
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			if c.Bool("migrate") {
				if err := database.Migrate(c.Context, application.DB); err != nil {
					return errors.Join(err, application.Close())
				}
			}

			runErr := application.Run(c.Context)
			return errors.Join(runErr, application.Close())
		},
	}
}
