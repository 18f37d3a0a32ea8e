package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classifying failures across layers. The sync engine retries
// only transient failures; everything else surfaces immediately.
var (
	// ErrTagValidation marks errors rejected before any remote call
	ErrTagValidation = goerr.NewTag("validation")

	// ErrTagTransient marks network/timeout failures eligible for retry
	ErrTagTransient = goerr.NewTag("transient")

	// ErrTagPermission marks missing-capability rejections
	ErrTagPermission = goerr.NewTag("permission")

	// ErrTagConsistency marks ordering violations and cyclic stage parentage
	ErrTagConsistency = goerr.NewTag("consistency")

	// ErrTagConflict marks stale-revision writes rejected by the store
	ErrTagConflict = goerr.NewTag("conflict")

	// ErrTagNotFound marks lookups for rows that do not exist
	ErrTagNotFound = goerr.NewTag("not_found")
)

// IsValidation reports whether the error was rejected by local validation
func IsValidation(err error) bool {
	return goerr.HasTag(err, ErrTagValidation)
}

// IsTransient reports whether the error is retryable
func IsTransient(err error) bool {
	return goerr.HasTag(err, ErrTagTransient)
}

// IsNotFound reports whether the error is a missing-row lookup
func IsNotFound(err error) bool {
	return goerr.HasTag(err, ErrTagNotFound)
}

// IsConflict reports whether the error is a stale-revision rejection
func IsConflict(err error) bool {
	return goerr.HasTag(err, ErrTagConflict)
}
