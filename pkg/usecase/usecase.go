package usecase

import (
	"time"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
	"github.com/actio-dev/actio/pkg/service/notify"
	"github.com/actio-dev/actio/pkg/service/sync"
)

// UseCases implements the operations exposed to controllers: the action
// status lifecycle, stage/task tree mutations, notes, attachments, the
// two-phase delete and the aggregate summary. All row access goes through
// the sync engine; notifications fan out through the dispatcher.
type UseCases struct {
	engine     *sync.Engine
	dispatcher *notify.Dispatcher
	blob       interfaces.BlobStorage
	now        func() time.Time
}

type Option func(*UseCases)

// WithDispatcher wires the notification dispatcher. Without it, state
// changes still commit but announce nothing.
func WithDispatcher(d *notify.Dispatcher) Option {
	return func(u *UseCases) {
		u.dispatcher = d
	}
}

// WithBlobStorage wires attachment byte storage
func WithBlobStorage(blob interfaces.BlobStorage) Option {
	return func(u *UseCases) {
		u.blob = blob
	}
}

// WithNow overrides the clock, for tests
func WithNow(now func() time.Time) Option {
	return func(u *UseCases) {
		u.now = now
	}
}

func New(engine *sync.Engine, opts ...Option) *UseCases {
	uc := &UseCases{
		engine: engine,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}
