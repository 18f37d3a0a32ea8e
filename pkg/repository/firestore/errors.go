package firestore

import (
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/actio-dev/actio/pkg/domain/types"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = goerr.New("record not found", goerr.T(types.ErrTagNotFound))

	// ErrRevisionMismatch is returned when an update carries a stale Rev
	ErrRevisionMismatch = goerr.New("revision mismatch", goerr.T(types.ErrTagConflict))
)

// wrapStoreErr classifies a Firestore error. Network-class failures are
// tagged transient so the sync engine retries them; everything else
// surfaces immediately.
func wrapStoreErr(err error, msg string, options ...goerr.Option) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
		options = append(options, goerr.T(types.ErrTagTransient))
	}
	return goerr.Wrap(err, msg, options...)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
