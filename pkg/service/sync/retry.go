package sync

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// withRetry runs fn, retrying transient failures up to cfg.Attempts with a
// fixed delay between tries. Non-transient failures surface immediately
// without consuming further attempts.
func (e *Engine) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.cfg.Attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !types.IsTransient(err) {
			return err
		}

		lastErr = err
		logging.From(ctx).Warn("transient store failure",
			"op", op,
			"attempt", attempt,
			"max_attempts", e.cfg.Attempts,
			"error", err.Error())

		if attempt < e.cfg.Attempts {
			select {
			case <-time.After(e.cfg.Delay):
			case <-ctx.Done():
				return goerr.Wrap(ctx.Err(), "cancelled while retrying", goerr.V("op", op))
			}
		}
	}

	return goerr.Wrap(lastErr, "remote operation failed after retries",
		goerr.V("op", op), goerr.V("attempts", e.cfg.Attempts))
}
