package memory

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/types"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = goerr.New("record not found", goerr.T(types.ErrTagNotFound))

	// ErrRevisionMismatch is returned when an update carries a stale Rev
	ErrRevisionMismatch = goerr.New("revision mismatch", goerr.T(types.ErrTagConflict))
)
