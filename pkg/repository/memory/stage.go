package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

type stageRepository struct {
	mu     sync.RWMutex
	stages map[types.StageID]*model.ActionStage
	bus    *eventBus
}

func newStageRepository(bus *eventBus) *stageRepository {
	return &stageRepository{
		stages: make(map[types.StageID]*model.ActionStage),
		bus:    bus,
	}
}

func (r *stageRepository) Create(ctx context.Context, stage *model.ActionStage) (*model.ActionStage, error) {
	r.mu.Lock()

	now := time.Now().UTC()
	created := stage.Clone()
	if created.ID == "" {
		created.ID = types.NewStageID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Rev = 1

	r.stages[created.ID] = created
	result := created.Clone()
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionStages,
		ID:         created.ID.String(),
		Kind:       model.ChangeCreated,
	})
	return result, nil
}

func (r *stageRepository) Get(ctx context.Context, id types.StageID) (*model.ActionStage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stage, exists := r.stages[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "stage not found", goerr.V("id", id))
	}
	return stage.Clone(), nil
}

func (r *stageRepository) ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.ActionStage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.ActionStage, 0)
	for _, s := range r.stages {
		if s.ActionID == actionID {
			result = append(result, s.Clone())
		}
	}
	model.SortStages(result)
	return result, nil
}

func (r *stageRepository) ListChildren(ctx context.Context, actionID types.ActionID, parentID types.StageID) ([]*model.ActionStage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.ActionStage, 0)
	for _, s := range r.stages {
		if s.ActionID == actionID && s.ParentStageID == parentID {
			result = append(result, s.Clone())
		}
	}
	model.SortStages(result)
	return result, nil
}

func (r *stageRepository) Update(ctx context.Context, stage *model.ActionStage) (*model.ActionStage, error) {
	r.mu.Lock()

	existing, exists := r.stages[stage.ID]
	if !exists {
		r.mu.Unlock()
		return nil, goerr.Wrap(ErrNotFound, "stage not found", goerr.V("id", stage.ID))
	}
	if existing.Rev != stage.Rev {
		r.mu.Unlock()
		return nil, goerr.Wrap(ErrRevisionMismatch, "stale stage write rejected",
			goerr.V("id", stage.ID),
			goerr.V("stored_rev", existing.Rev),
			goerr.V("given_rev", stage.Rev))
	}

	updated := stage.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	updated.Rev = existing.Rev + 1

	r.stages[updated.ID] = updated
	result := updated.Clone()
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionStages,
		ID:         updated.ID.String(),
		Kind:       model.ChangeUpdated,
	})
	return result, nil
}

func (r *stageRepository) Delete(ctx context.Context, id types.StageID) error {
	r.mu.Lock()

	if _, exists := r.stages[id]; !exists {
		r.mu.Unlock()
		return goerr.Wrap(ErrNotFound, "stage not found", goerr.V("id", id))
	}
	delete(r.stages, id)
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionStages,
		ID:         id.String(),
		Kind:       model.ChangeDeleted,
	})
	return nil
}
