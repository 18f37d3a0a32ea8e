package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/actio-dev/actio/pkg/cli/config"
	httpctrl "github.com/actio-dev/actio/pkg/controller/http"
	syncsvc "github.com/actio-dev/actio/pkg/service/sync"
	"github.com/actio-dev/actio/pkg/service/worker"
	"github.com/actio-dev/actio/pkg/usecase"
	"github.com/actio-dev/actio/pkg/utils/logging"
	"github.com/actio-dev/actio/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var appConfigPath string
	var sweepInterval time.Duration
	var unreadInterval time.Duration
	var repoCfg config.Repository
	var syncCfg config.Sync
	var storageCfg config.Storage
	var notifyCfg config.Notify

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("ACTIO_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "app-config",
			Usage:       "Path to TOML file with role definitions",
			Sources:     cli.EnvVars("ACTIO_APP_CONFIG"),
			Destination: &appConfigPath,
		},
		&cli.DurationFlag{
			Name:        "sweep-interval",
			Usage:       "Interval between overdue deadline sweeps",
			Value:       15 * time.Minute,
			Sources:     cli.EnvVars("ACTIO_SWEEP_INTERVAL"),
			Destination: &sweepInterval,
		},
		&cli.DurationFlag{
			Name:        "unread-refresh-interval",
			Usage:       "Interval between unread badge refreshes",
			Value:       time.Minute,
			Sources:     cli.EnvVars("ACTIO_UNREAD_REFRESH_INTERVAL"),
			Destination: &unreadInterval,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, syncCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var appCfg *config.AppConfig
			if appConfigPath != "" {
				loaded, err := config.LoadAppConfig(appConfigPath)
				if err != nil {
					return goerr.Wrap(err, "failed to load app config")
				}
				appCfg = loaded
				logging.Default().Info("App config loaded",
					"path", appConfigPath, "roles", len(appCfg.Roles))
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			var syncOpts []syncsvc.Option
			if appCfg != nil && appCfg.Seed != nil {
				syncOpts = append(syncOpts, syncsvc.WithSeed(appCfg.Seed.Dataset()))
			}
			engine := syncCfg.Configure(repo, syncOpts...)
			if err := engine.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start sync engine")
			}

			blob, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize blob storage")
			}
			if blob != nil {
				defer safe.Close(ctx, blob)
			}

			dispatcher, err := notifyCfg.Configure(engine)
			if err != nil {
				return goerr.Wrap(err, "failed to configure notifications")
			}

			ucOpts := []usecase.Option{
				usecase.WithDispatcher(dispatcher),
			}
			if blob != nil {
				ucOpts = append(ucOpts, usecase.WithBlobStorage(blob))
			}
			uc := usecase.New(engine, ucOpts...)

			sweeper := worker.NewDeadlineSweeper(uc, sweepInterval)
			sweeper.Start(ctx)

			unread := worker.NewUnreadRefresher(engine, unreadInterval)
			unread.Start(ctx)

			ctrlOpts := []httpctrl.Option{
				httpctrl.WithUnreadRefresher(unread),
			}
			if appCfg != nil {
				ctrlOpts = append(ctrlOpts, httpctrl.WithRoles(appCfg.RoleCapabilities()))
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, ctrlOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				sweeper.Stop()
				unread.Stop()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				if err := engine.Stop(shutdownCtx); err != nil {
					logging.Default().Error("failed to stop sync engine", "error", err.Error())
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
