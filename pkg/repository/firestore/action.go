package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

type actionRepository struct {
	fs *Firestore
}

func newActionRepository(fs *Firestore) *actionRepository {
	return &actionRepository{fs: fs}
}

func (r *actionRepository) col() *firestore.CollectionRef {
	return r.fs.collection(types.CollectionActions)
}

func (r *actionRepository) Create(ctx context.Context, action *model.Action) (*model.Action, error) {
	now := time.Now().UTC()
	created := action.Clone()
	if created.ID == "" {
		created.ID = types.NewActionID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Rev = 1

	if _, err := r.col().Doc(created.ID.String()).Set(ctx, created); err != nil {
		return nil, wrapStoreErr(err, "failed to create action", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *actionRepository) Get(ctx context.Context, id types.ActionID) (*model.Action, error) {
	docSnap, err := r.col().Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
		}
		return nil, wrapStoreErr(err, "failed to get action", goerr.V("id", id))
	}

	var a model.Action
	if err := docSnap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode action", goerr.V("id", id))
	}

	return &a, nil
}

func (r *actionRepository) List(ctx context.Context) ([]*model.Action, error) {
	iter := r.col().Documents(ctx)
	defer iter.Stop()

	actions := make([]*model.Action, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate actions")
		}

		var a model.Action
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode action", goerr.V("doc_id", docSnap.Ref.ID))
		}

		actions = append(actions, &a)
	}

	return actions, nil
}

// Update replaces the document inside a transaction that verifies the
// stored revision, so two sessions racing on the same action cannot both
// win: the stale write is rejected with a conflict.
func (r *actionRepository) Update(ctx context.Context, action *model.Action) (*model.Action, error) {
	docRef := r.col().Doc(action.ID.String())

	updated := action.Clone()
	updated.UpdatedAt = time.Now().UTC()

	err := r.fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", action.ID))
			}
			return wrapStoreErr(err, "failed to read action in transaction", goerr.V("id", action.ID))
		}

		var stored model.Action
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode action", goerr.V("id", action.ID))
		}
		if stored.Rev != action.Rev {
			return goerr.Wrap(ErrRevisionMismatch, "stale action write rejected",
				goerr.V("id", action.ID),
				goerr.V("stored_rev", stored.Rev),
				goerr.V("given_rev", action.Rev))
		}

		updated.CreatedAt = stored.CreatedAt
		updated.Rev = stored.Rev + 1
		return tx.Set(docRef, updated)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *actionRepository) Delete(ctx context.Context, id types.ActionID) error {
	docRef := r.col().Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "action not found", goerr.V("id", id))
		}
		return wrapStoreErr(err, "failed to check action existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return wrapStoreErr(err, "failed to delete action", goerr.V("id", id))
	}

	return nil
}

func (r *actionRepository) GetByParent(ctx context.Context, parentID types.ActionID) ([]*model.Action, error) {
	actions, err := r.query(ctx, r.col().
		Where("ParentActionID", "==", parentID.String()).
		Where("IsSubtask", "==", true))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get tasks by parent", goerr.V("parent_id", parentID))
	}
	model.SortTasks(actions)
	return actions, nil
}

func (r *actionRepository) GetByStage(ctx context.Context, stageID types.StageID) ([]*model.Action, error) {
	actions, err := r.query(ctx, r.col().Where("StageID", "==", stageID.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get tasks by stage", goerr.V("stage_id", stageID))
	}
	model.SortTasks(actions)
	return actions, nil
}

func (r *actionRepository) query(ctx context.Context, q firestore.Query) ([]*model.Action, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	actions := make([]*model.Action, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate actions")
		}

		var a model.Action
		if err := docSnap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode action", goerr.V("doc_id", docSnap.Ref.ID))
		}

		actions = append(actions, &a)
	}

	return actions, nil
}
