package interfaces

import (
	"context"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// NoteRepository defines the interface for ActionNote data access.
// Notes are soft-deleted through Update; Delete is intentionally absent.
type NoteRepository interface {
	Create(ctx context.Context, note *model.ActionNote) (*model.ActionNote, error)
	Get(ctx context.Context, id types.NoteID) (*model.ActionNote, error)
	ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.ActionNote, error)
	Update(ctx context.Context, note *model.ActionNote) (*model.ActionNote, error)

	// Purge physically removes the rows of an action. Used only by the
	// second phase of the cascading action delete.
	Purge(ctx context.Context, actionID types.ActionID) error
}
