package worker

import (
	"context"
	"time"

	"github.com/actio-dev/actio/pkg/utils/errutil"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// OverdueSweeper marks actions past their end date as delayed
type OverdueSweeper interface {
	SweepOverdue(ctx context.Context) (int, error)
}

// DeadlineSweeper periodically runs the overdue sweep so actions whose
// end date passed while nobody touched them still flip to delayed.
type DeadlineSweeper struct {
	sweeper  OverdueSweeper
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewDeadlineSweeper(sweeper OverdueSweeper, interval time.Duration) *DeadlineSweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &DeadlineSweeper{
		sweeper:  sweeper,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep. The first sweep runs immediately.
func (w *DeadlineSweeper) Start(ctx context.Context) {
	logger := logging.From(ctx)
	logger.Info("starting deadline sweeper", "interval", w.interval)

	go func() {
		defer close(w.doneCh)

		w.sweep(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.sweep(ctx)
			case <-w.stopCh:
				logger.Info("deadline sweeper stopped")
				return
			case <-ctx.Done():
				logger.Info("deadline sweeper cancelled")
				return
			}
		}
	}()
}

func (w *DeadlineSweeper) sweep(ctx context.Context) {
	swept, err := w.sweeper.SweepOverdue(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "deadline sweep failed")
		return
	}
	if swept > 0 {
		logging.From(ctx).Info("marked overdue actions as delayed", "count", swept)
	}
}

// Stop halts the sweeper and waits for the loop to exit
func (w *DeadlineSweeper) Stop() {
	close(w.stopCh)
	<-w.doneCh
}
