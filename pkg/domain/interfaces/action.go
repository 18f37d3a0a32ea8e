package interfaces

import (
	"context"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// ActionRepository defines the interface for Action data access
type ActionRepository interface {
	// Create persists a new action. ID and timestamps are assigned here;
	// Rev starts at 1.
	Create(ctx context.Context, action *model.Action) (*model.Action, error)

	// Get retrieves an action by ID
	Get(ctx context.Context, id types.ActionID) (*model.Action, error)

	// List retrieves all actions
	List(ctx context.Context) ([]*model.Action, error)

	// Update replaces an existing action. The write is rejected when the
	// given Rev does not match the stored row; on success Rev is bumped.
	Update(ctx context.Context, action *model.Action) (*model.Action, error)

	// Delete removes an action row by ID
	Delete(ctx context.Context, id types.ActionID) error

	// GetByParent retrieves the tasks under a root action
	GetByParent(ctx context.Context, parentID types.ActionID) ([]*model.Action, error)

	// GetByStage retrieves the tasks owned by a stage
	GetByStage(ctx context.Context, stageID types.StageID) ([]*model.Action, error)
}
