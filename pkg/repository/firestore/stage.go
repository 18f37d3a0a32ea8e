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

type stageRepository struct {
	fs *Firestore
}

func newStageRepository(fs *Firestore) *stageRepository {
	return &stageRepository{fs: fs}
}

func (r *stageRepository) col() *firestore.CollectionRef {
	return r.fs.collection(types.CollectionStages)
}

func (r *stageRepository) Create(ctx context.Context, stage *model.ActionStage) (*model.ActionStage, error) {
	now := time.Now().UTC()
	created := stage.Clone()
	if created.ID == "" {
		created.ID = types.NewStageID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now
	created.Rev = 1

	if _, err := r.col().Doc(created.ID.String()).Set(ctx, created); err != nil {
		return nil, wrapStoreErr(err, "failed to create stage", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *stageRepository) Get(ctx context.Context, id types.StageID) (*model.ActionStage, error) {
	docSnap, err := r.col().Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "stage not found", goerr.V("id", id))
		}
		return nil, wrapStoreErr(err, "failed to get stage", goerr.V("id", id))
	}

	var s model.ActionStage
	if err := docSnap.DataTo(&s); err != nil {
		return nil, goerr.Wrap(err, "failed to decode stage", goerr.V("id", id))
	}

	return &s, nil
}

func (r *stageRepository) ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.ActionStage, error) {
	stages, err := r.query(ctx, r.col().Where("ActionID", "==", actionID.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list stages", goerr.V("action_id", actionID))
	}
	model.SortStages(stages)
	return stages, nil
}

func (r *stageRepository) ListChildren(ctx context.Context, actionID types.ActionID, parentID types.StageID) ([]*model.ActionStage, error) {
	stages, err := r.query(ctx, r.col().
		Where("ActionID", "==", actionID.String()).
		Where("ParentStageID", "==", parentID.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list child stages",
			goerr.V("action_id", actionID), goerr.V("parent_id", parentID))
	}
	model.SortStages(stages)
	return stages, nil
}

func (r *stageRepository) Update(ctx context.Context, stage *model.ActionStage) (*model.ActionStage, error) {
	docRef := r.col().Doc(stage.ID.String())

	updated := stage.Clone()
	updated.UpdatedAt = time.Now().UTC()

	err := r.fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "stage not found", goerr.V("id", stage.ID))
			}
			return wrapStoreErr(err, "failed to read stage in transaction", goerr.V("id", stage.ID))
		}

		var stored model.ActionStage
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode stage", goerr.V("id", stage.ID))
		}
		if stored.Rev != stage.Rev {
			return goerr.Wrap(ErrRevisionMismatch, "stale stage write rejected",
				goerr.V("id", stage.ID),
				goerr.V("stored_rev", stored.Rev),
				goerr.V("given_rev", stage.Rev))
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

func (r *stageRepository) Delete(ctx context.Context, id types.StageID) error {
	docRef := r.col().Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "stage not found", goerr.V("id", id))
		}
		return wrapStoreErr(err, "failed to check stage existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return wrapStoreErr(err, "failed to delete stage", goerr.V("id", id))
	}

	return nil
}

func (r *stageRepository) query(ctx context.Context, q firestore.Query) ([]*model.ActionStage, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	stages := make([]*model.ActionStage, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate stages")
		}

		var s model.ActionStage
		if err := docSnap.DataTo(&s); err != nil {
			return nil, goerr.Wrap(err, "failed to decode stage", goerr.V("doc_id", docSnap.Ref.ID))
		}

		stages = append(stages, &s)
	}

	return stages, nil
}
