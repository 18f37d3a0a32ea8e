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

type entityRepository struct {
	fs *Firestore
}

func newEntityRepository(fs *Firestore) *entityRepository {
	return &entityRepository{fs: fs}
}

func (r *entityRepository) col(kind types.EntityKind) *firestore.CollectionRef {
	return r.fs.collection(kind.Collection())
}

func (r *entityRepository) Create(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
	if !entity.Kind.IsValid() {
		return nil, goerr.New("invalid entity kind", goerr.T(types.ErrTagValidation),
			goerr.V("kind", entity.Kind))
	}

	now := time.Now().UTC()
	created := entity.Clone()
	if created.ID == "" {
		created.ID = types.NewEntityID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.col(created.Kind).Doc(created.ID.String()).Set(ctx, created); err != nil {
		return nil, wrapStoreErr(err, "failed to create entity",
			goerr.V("kind", created.Kind), goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *entityRepository) Get(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error) {
	docSnap, err := r.col(kind).Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "entity not found",
				goerr.V("kind", kind), goerr.V("id", id))
		}
		return nil, wrapStoreErr(err, "failed to get entity",
			goerr.V("kind", kind), goerr.V("id", id))
	}

	var e model.Entity
	if err := docSnap.DataTo(&e); err != nil {
		return nil, goerr.Wrap(err, "failed to decode entity", goerr.V("id", id))
	}

	return &e, nil
}

func (r *entityRepository) GetByName(ctx context.Context, kind types.EntityKind, name string) (*model.Entity, error) {
	iter := r.col(kind).
		Where("Name", "==", name).
		OrderBy("CreatedAt", firestore.Asc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "entity not found by name",
			goerr.V("kind", kind), goerr.V("name", name))
	}
	if err != nil {
		return nil, wrapStoreErr(err, "failed to query entity by name",
			goerr.V("kind", kind), goerr.V("name", name))
	}

	var e model.Entity
	if err := docSnap.DataTo(&e); err != nil {
		return nil, goerr.Wrap(err, "failed to decode entity", goerr.V("doc_id", docSnap.Ref.ID))
	}

	return &e, nil
}

func (r *entityRepository) List(ctx context.Context, kind types.EntityKind) ([]*model.Entity, error) {
	iter := r.col(kind).Documents(ctx)
	defer iter.Stop()

	entities := make([]*model.Entity, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate entities", goerr.V("kind", kind))
		}

		var e model.Entity
		if err := docSnap.DataTo(&e); err != nil {
			return nil, goerr.Wrap(err, "failed to decode entity", goerr.V("doc_id", docSnap.Ref.ID))
		}

		entities = append(entities, &e)
	}

	sort.Slice(entities, func(i, j int) bool {
		return entities[i].CreatedAt.Before(entities[j].CreatedAt)
	})
	return entities, nil
}
