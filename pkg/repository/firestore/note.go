package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

type noteRepository struct {
	fs *Firestore
}

func newNoteRepository(fs *Firestore) *noteRepository {
	return &noteRepository{fs: fs}
}

func (r *noteRepository) col() *firestore.CollectionRef {
	return r.fs.collection(types.CollectionNotes)
}

func (r *noteRepository) Create(ctx context.Context, note *model.ActionNote) (*model.ActionNote, error) {
	created := note.Clone()
	if created.ID == "" {
		created.ID = types.NewNoteID()
	}
	created.CreatedAt = time.Now().UTC()

	if _, err := r.col().Doc(created.ID.String()).Set(ctx, created); err != nil {
		return nil, wrapStoreErr(err, "failed to create note", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *noteRepository) Get(ctx context.Context, id types.NoteID) (*model.ActionNote, error) {
	docSnap, err := r.col().Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "note not found", goerr.V("id", id))
		}
		return nil, wrapStoreErr(err, "failed to get note", goerr.V("id", id))
	}

	var n model.ActionNote
	if err := docSnap.DataTo(&n); err != nil {
		return nil, goerr.Wrap(err, "failed to decode note", goerr.V("id", id))
	}

	return &n, nil
}

func (r *noteRepository) ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.ActionNote, error) {
	iter := r.col().Where("ActionID", "==", actionID.String()).Documents(ctx)
	defer iter.Stop()

	notes := make([]*model.ActionNote, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate notes", goerr.V("action_id", actionID))
		}

		var n model.ActionNote
		if err := docSnap.DataTo(&n); err != nil {
			return nil, goerr.Wrap(err, "failed to decode note", goerr.V("doc_id", docSnap.Ref.ID))
		}

		notes = append(notes, &n)
	}

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
	return notes, nil
}

func (r *noteRepository) Update(ctx context.Context, note *model.ActionNote) (*model.ActionNote, error) {
	docRef := r.col().Doc(note.ID.String())

	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "note not found", goerr.V("id", note.ID))
		}
		return nil, wrapStoreErr(err, "failed to check note existence", goerr.V("id", note.ID))
	}

	updated := note.Clone()
	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, wrapStoreErr(err, "failed to update note", goerr.V("id", note.ID))
	}

	return updated, nil
}

func (r *noteRepository) Purge(ctx context.Context, actionID types.ActionID) error {
	notes, err := r.ListByAction(ctx, actionID)
	if err != nil {
		return goerr.Wrap(err, "failed to list notes for purge", goerr.V("action_id", actionID))
	}

	for _, n := range notes {
		if _, err := r.col().Doc(n.ID.String()).Delete(ctx); err != nil {
			return wrapStoreErr(err, "failed to purge note", goerr.V("id", n.ID))
		}
	}

	return nil
}
