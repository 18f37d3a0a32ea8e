package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
	"github.com/actio-dev/actio/pkg/service/resolver"
	syncsvc "github.com/actio-dev/actio/pkg/service/sync"
)

// Sync holds CLI flags for the synchronization engine
type Sync struct {
	attempts     int
	delay        time.Duration
	snapshotPath string
}

// Flags returns CLI flags for sync engine configuration
func (s *Sync) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "sync-retry-attempts",
			Usage:       "Total attempts for a transient remote failure",
			Value:       3,
			Sources:     cli.EnvVars("ACTIO_SYNC_RETRY_ATTEMPTS"),
			Destination: &s.attempts,
		},
		&cli.DurationFlag{
			Name:        "sync-retry-delay",
			Usage:       "Fixed delay between retry attempts",
			Value:       200 * time.Millisecond,
			Sources:     cli.EnvVars("ACTIO_SYNC_RETRY_DELAY"),
			Destination: &s.delay,
		},
		&cli.StringFlag{
			Name:        "sync-snapshot-path",
			Usage:       "Local snapshot file used as offline startup fallback",
			Value:       "actio-snapshot.json",
			Sources:     cli.EnvVars("ACTIO_SYNC_SNAPSHOT_PATH"),
			Destination: &s.snapshotPath,
		},
	}
}

// Configure builds the sync engine over the repository, with the entity
// resolver wired into the write path.
func (s *Sync) Configure(repo interfaces.Repository, opts ...syncsvc.Option) *syncsvc.Engine {
	opts = append([]syncsvc.Option{syncsvc.WithResolver(resolver.New(repo))}, opts...)
	return syncsvc.New(repo, syncsvc.Config{
		Attempts:     s.attempts,
		Delay:        s.delay,
		SnapshotPath: s.snapshotPath,
	}, opts...)
}
