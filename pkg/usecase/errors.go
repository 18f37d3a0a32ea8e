package usecase

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/types"
)

// Sentinel errors returned by the operations. Each carries a taxonomy tag
// so controllers can map it to a response without string matching.
var (
	ErrActionNotFound = goerr.New("action not found",
		goerr.T(types.ErrTagNotFound))

	ErrStageNotFound = goerr.New("stage not found",
		goerr.T(types.ErrTagNotFound))

	ErrNotificationNotFound = goerr.New("notification not found",
		goerr.T(types.ErrTagNotFound))

	// ErrMissingEvidence rejects a completion with nothing attached: a bare
	// status flip with no visible note and no attachment is never accepted.
	ErrMissingEvidence = goerr.New("completion requires at least one note or attachment",
		goerr.T(types.ErrTagValidation))

	// ErrOrderingViolation rejects a state change on a sequential stage's
	// child while an earlier sibling is not yet completed.
	ErrOrderingViolation = goerr.New("earlier sibling in sequential stage is not completed",
		goerr.T(types.ErrTagConsistency))

	ErrPermissionDenied = goerr.New("actor lacks the required capability",
		goerr.T(types.ErrTagPermission))

	// ErrCyclicStage rejects a stage edge that would loop back through its
	// own ancestry.
	ErrCyclicStage = goerr.New("stage parentage would form a cycle",
		goerr.T(types.ErrTagConsistency))

	// ErrStageNotEmpty rejects deleting a stage that still has descendant
	// stages or tasks without the force flag.
	ErrStageNotEmpty = goerr.New("stage has descendants, force required",
		goerr.T(types.ErrTagValidation))

	ErrInvalidTransition = goerr.New("transition not allowed from current status",
		goerr.T(types.ErrTagValidation))

	// ErrNotPendingDelete rejects a purge of an action that was never
	// marked for deletion. The two phases are separate, ordered operations.
	ErrNotPendingDelete = goerr.New("action is not marked for deletion",
		goerr.T(types.ErrTagValidation))
)
