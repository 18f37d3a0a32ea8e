package worker

import (
	"context"
	"sync"
	"time"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/utils/errutil"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// UnreadCounter exposes the reads the refresher needs from the sync engine
type UnreadCounter interface {
	ListEntities(ctx context.Context, kind types.EntityKind) ([]*model.Entity, error)
	CountUnread(ctx context.Context, recipientID types.EntityID) (int, error)
}

// UnreadRefresher keeps a per-recipient unread notification count warm so
// badge reads never touch the store on the request path.
type UnreadRefresher struct {
	counter  UnreadCounter
	interval time.Duration

	mu     sync.RWMutex
	counts map[types.EntityID]int

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewUnreadRefresher(counter UnreadCounter, interval time.Duration) *UnreadRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &UnreadRefresher{
		counter:  counter,
		interval: interval,
		counts:   make(map[types.EntityID]int),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the periodic refresh. The first refresh runs immediately.
func (w *UnreadRefresher) Start(ctx context.Context) {
	logger := logging.From(ctx)
	logger.Info("starting unread refresher", "interval", w.interval)

	go func() {
		defer close(w.doneCh)

		w.refresh(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.refresh(ctx)
			case <-w.stopCh:
				logger.Info("unread refresher stopped")
				return
			case <-ctx.Done():
				logger.Info("unread refresher cancelled")
				return
			}
		}
	}()
}

func (w *UnreadRefresher) refresh(ctx context.Context) {
	recipients, err := w.counter.ListEntities(ctx, types.KindResponsible)
	if err != nil {
		errutil.Handle(ctx, err, "failed to list recipients for unread refresh")
		return
	}

	counts := make(map[types.EntityID]int, len(recipients))
	for _, recipient := range recipients {
		count, err := w.counter.CountUnread(ctx, recipient.ID)
		if err != nil {
			errutil.Handle(ctx, err, "failed to count unread notifications")
			continue
		}
		counts[recipient.ID] = count
	}

	w.mu.Lock()
	w.counts = counts
	w.mu.Unlock()
}

// Get returns the last refreshed unread count for a recipient
func (w *UnreadRefresher) Get(recipientID types.EntityID) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.counts[recipientID]
}

// Stop halts the refresher and waits for the loop to exit
func (w *UnreadRefresher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}
