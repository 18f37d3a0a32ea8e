package errutil

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// Handle logs the error with its goerr context and forwards it to Sentry
// when a hub is configured. The error is returned as-is for the caller.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.CaptureException(err)
	}

	return err
}

// HandleHTTP logs the error and writes an HTTP error response with a
// status derived from the error's classification tags.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	statusCode := StatusCode(err)
	_ = Handle(ctx, err, "HTTP error")
	http.Error(w, err.Error(), statusCode)
}

// StatusCode maps the error taxonomy onto HTTP status codes
func StatusCode(err error) int {
	switch {
	case goerr.HasTag(err, types.ErrTagValidation):
		return http.StatusBadRequest
	case goerr.HasTag(err, types.ErrTagPermission):
		return http.StatusForbidden
	case goerr.HasTag(err, types.ErrTagNotFound):
		return http.StatusNotFound
	case goerr.HasTag(err, types.ErrTagConsistency), goerr.HasTag(err, types.ErrTagConflict):
		return http.StatusConflict
	case goerr.HasTag(err, types.ErrTagTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
