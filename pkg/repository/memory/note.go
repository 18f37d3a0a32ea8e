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

type noteRepository struct {
	mu    sync.RWMutex
	notes map[types.NoteID]*model.ActionNote
	bus   *eventBus
}

func newNoteRepository(bus *eventBus) *noteRepository {
	return &noteRepository{
		notes: make(map[types.NoteID]*model.ActionNote),
		bus:   bus,
	}
}

func (r *noteRepository) Create(ctx context.Context, note *model.ActionNote) (*model.ActionNote, error) {
	r.mu.Lock()

	created := note.Clone()
	if created.ID == "" {
		created.ID = types.NewNoteID()
	}
	created.CreatedAt = time.Now().UTC()

	r.notes[created.ID] = created
	result := created.Clone()
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionNotes,
		ID:         created.ID.String(),
		Kind:       model.ChangeCreated,
	})
	return result, nil
}

func (r *noteRepository) Get(ctx context.Context, id types.NoteID) (*model.ActionNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, exists := r.notes[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "note not found", goerr.V("id", id))
	}
	return note.Clone(), nil
}

func (r *noteRepository) ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.ActionNote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.ActionNote, 0)
	for _, n := range r.notes {
		if n.ActionID == actionID {
			result = append(result, n.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *noteRepository) Update(ctx context.Context, note *model.ActionNote) (*model.ActionNote, error) {
	r.mu.Lock()

	existing, exists := r.notes[note.ID]
	if !exists {
		r.mu.Unlock()
		return nil, goerr.Wrap(ErrNotFound, "note not found", goerr.V("id", note.ID))
	}

	updated := note.Clone()
	updated.CreatedAt = existing.CreatedAt

	r.notes[updated.ID] = updated
	result := updated.Clone()
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionNotes,
		ID:         updated.ID.String(),
		Kind:       model.ChangeUpdated,
	})
	return result, nil
}

func (r *noteRepository) Purge(ctx context.Context, actionID types.ActionID) error {
	r.mu.Lock()

	purged := make([]types.NoteID, 0)
	for id, n := range r.notes {
		if n.ActionID == actionID {
			delete(r.notes, id)
			purged = append(purged, id)
		}
	}
	r.mu.Unlock()

	for _, id := range purged {
		r.bus.publish(model.ChangeEvent{
			Collection: types.CollectionNotes,
			ID:         id.String(),
			Kind:       model.ChangeDeleted,
		})
	}
	return nil
}
