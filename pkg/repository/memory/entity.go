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

type entityKey struct {
	kind types.EntityKind
	id   types.EntityID
}

type entityRepository struct {
	mu       sync.RWMutex
	entities map[entityKey]*model.Entity
	bus      *eventBus
}

func newEntityRepository(bus *eventBus) *entityRepository {
	return &entityRepository{
		entities: make(map[entityKey]*model.Entity),
		bus:      bus,
	}
}

func (r *entityRepository) Create(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
	if !entity.Kind.IsValid() {
		return nil, goerr.New("invalid entity kind", goerr.T(types.ErrTagValidation),
			goerr.V("kind", entity.Kind))
	}

	r.mu.Lock()

	now := time.Now().UTC()
	created := entity.Clone()
	if created.ID == "" {
		created.ID = types.NewEntityID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.entities[entityKey{kind: created.Kind, id: created.ID}] = created
	result := created.Clone()
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: created.Kind.Collection(),
		ID:         created.ID.String(),
		Kind:       model.ChangeCreated,
	})
	return result, nil
}

func (r *entityRepository) Get(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, exists := r.entities[entityKey{kind: kind, id: id}]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "entity not found",
			goerr.V("kind", kind), goerr.V("id", id))
	}
	return entity.Clone(), nil
}

func (r *entityRepository) GetByName(ctx context.Context, kind types.EntityKind, name string) (*model.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var match *model.Entity
	for _, e := range r.entities {
		if e.Kind != kind || e.Name != name {
			continue
		}
		// The oldest row wins when legacy data holds duplicates
		if match == nil || e.CreatedAt.Before(match.CreatedAt) {
			match = e
		}
	}
	if match == nil {
		return nil, goerr.Wrap(ErrNotFound, "entity not found by name",
			goerr.V("kind", kind), goerr.V("name", name))
	}
	return match.Clone(), nil
}

func (r *entityRepository) List(ctx context.Context, kind types.EntityKind) ([]*model.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Entity, 0)
	for _, e := range r.entities {
		if e.Kind == kind {
			result = append(result, e.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
