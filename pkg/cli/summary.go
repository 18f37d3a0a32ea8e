package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/actio-dev/actio/pkg/cli/config"
	"github.com/actio-dev/actio/pkg/usecase"
	"github.com/actio-dev/actio/pkg/utils/logging"
	"github.com/actio-dev/actio/pkg/utils/safe"
)

func cmdSummary() *cli.Command {
	var repoCfg config.Repository
	var syncCfg config.Sync

	flags := append([]cli.Flag{}, repoCfg.Flags()...)
	flags = append(flags, syncCfg.Flags()...)

	return &cli.Command{
		Name:  "summary",
		Usage: "Print the aggregate action summary",
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

			uc := usecase.New(engine)
			summary, err := uc.Summary(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to compute summary")
			}

			fmt.Printf("%s  %d\n", color.GreenString("completed"), summary.Completed)
			fmt.Printf("%s    %d\n", color.RedString("delayed"), summary.Delayed)
			fmt.Printf("%s    %d\n", color.YellowString("pending"), summary.Pending)
			fmt.Printf("total      %d\n", summary.Total)
			fmt.Printf("rate       %.1f%%\n", summary.CompletionRate*100)
			return nil
		},
	}
}
