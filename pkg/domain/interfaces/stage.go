package interfaces

import (
	"context"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// StageRepository defines the interface for ActionStage data access
type StageRepository interface {
	Create(ctx context.Context, stage *model.ActionStage) (*model.ActionStage, error)
	Get(ctx context.Context, id types.StageID) (*model.ActionStage, error)
	ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.ActionStage, error)

	// ListChildren retrieves the direct child stages of a parent stage.
	// An empty parentID lists the root stages of the action.
	ListChildren(ctx context.Context, actionID types.ActionID, parentID types.StageID) ([]*model.ActionStage, error)

	Update(ctx context.Context, stage *model.ActionStage) (*model.ActionStage, error)
	Delete(ctx context.Context, id types.StageID) error
}
