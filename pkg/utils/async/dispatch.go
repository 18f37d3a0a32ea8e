package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/utils/logging"
)

// Dispatch executes a handler asynchronously in a new goroutine. The
// handler runs on a background context (detached from the caller's
// cancellation: in-flight remote writes are allowed to complete even when
// the originating request is gone), preserving only the logger.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
