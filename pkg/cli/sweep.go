package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/actio-dev/actio/pkg/cli/config"
	"github.com/actio-dev/actio/pkg/usecase"
	"github.com/actio-dev/actio/pkg/utils/logging"
	"github.com/actio-dev/actio/pkg/utils/safe"
)

func cmdSweep() *cli.Command {
	var repoCfg config.Repository
	var syncCfg config.Sync
	var notifyCfg config.Notify

	flags := append([]cli.Flag{}, repoCfg.Flags()...)
	flags = append(flags, syncCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:  "sweep",
		Usage: "Run a single overdue deadline sweep and exit",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			engine := syncCfg.Configure(repo)
			if err := engine.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start sync engine")
			}
			defer func() {
				if err := engine.Stop(ctx); err != nil {
					logging.Default().Error("failed to stop sync engine", "error", err.Error())
				}
			}()

			dispatcher, err := notifyCfg.Configure(engine)
			if err != nil {
				return goerr.Wrap(err, "failed to configure notifications")
			}

			uc := usecase.New(engine, usecase.WithDispatcher(dispatcher))

			swept, err := uc.SweepOverdue(ctx)
			if err != nil {
				return goerr.Wrap(err, "sweep failed")
			}

			logging.Default().Info("Sweep completed", "marked_delayed", swept)
			return nil
		},
	}
}
