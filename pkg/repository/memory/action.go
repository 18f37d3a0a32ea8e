package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

type actionRepository struct {
	mu      sync.RWMutex
	actions map[types.ActionID]*model.Action
	bus     *eventBus
}

func newActionRepository(bus *eventBus) *actionRepository {
	return &actionRepository{
		actions: make(map[types.ActionID]*model.Action),
		bus:     bus,
	}
}

func (r *actionRepository) Create(ctx context.Context, action *model.Action) (*model.Action, error) {
	r.mu.Lock()

	now := time.Now().UTC()
	created := action.Clone()
	if created.ID == "" {
		created.ID = types.NewActionID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Rev = 1

	r.actions[created.ID] = created
	result := created.Clone()
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionActions,
		ID:         created.ID.String(),
		Kind:       model.ChangeCreated,
	})
	return result, nil
}

func (r *actionRepository) Get(ctx context.Context, id types.ActionID) (*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	action, exists := r.actions[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
	}
	return action.Clone(), nil
}

func (r *actionRepository) List(ctx context.Context) ([]*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Action, 0, len(r.actions))
	for _, a := range r.actions {
		result = append(result, a.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *actionRepository) Update(ctx context.Context, action *model.Action) (*model.Action, error) {
	r.mu.Lock()

	existing, exists := r.actions[action.ID]
	if !exists {
		r.mu.Unlock()
		return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", action.ID))
	}
	if existing.Rev != action.Rev {
		r.mu.Unlock()
		return nil, goerr.Wrap(ErrRevisionMismatch, "stale action write rejected",
			goerr.V("id", action.ID),
			goerr.V("stored_rev", existing.Rev),
			goerr.V("given_rev", action.Rev))
	}

	updated := action.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	updated.Rev = existing.Rev + 1

	r.actions[updated.ID] = updated
	result := updated.Clone()
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionActions,
		ID:         updated.ID.String(),
		Kind:       model.ChangeUpdated,
	})
	return result, nil
}

func (r *actionRepository) Delete(ctx context.Context, id types.ActionID) error {
	r.mu.Lock()

	if _, exists := r.actions[id]; !exists {
		r.mu.Unlock()
		return goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
	}
	delete(r.actions, id)
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionActions,
		ID:         id.String(),
		Kind:       model.ChangeDeleted,
	})
	return nil
}

func (r *actionRepository) GetByParent(ctx context.Context, parentID types.ActionID) ([]*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Action, 0)
	for _, a := range r.actions {
		if a.ParentActionID == parentID && a.IsSubtask {
			result = append(result, a.Clone())
		}
	}
	model.SortTasks(result)
	return result, nil
}

func (r *actionRepository) GetByStage(ctx context.Context, stageID types.StageID) ([]*model.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Action, 0)
	for _, a := range r.actions {
		if a.StageID == stageID {
			result = append(result, a.Clone())
		}
	}
	model.SortTasks(result)
	return result, nil
}
