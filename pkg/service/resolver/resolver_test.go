package resolver_test

import (
	"context"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/repository/memory"
	"github.com/actio-dev/actio/pkg/service/resolver"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("canonical ID passes through unchanged", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()
		svc := resolver.New(repo)

		id := types.NewEntityID()
		resolved, err := svc.Resolve(ctx, types.KindCompany, model.EntityRef{ID: id})
		gt.NoError(t, err).Required()
		gt.Value(t, resolved).Equal(id)

		// No row is created for a canonical reference
		entities, err := repo.Entity().List(ctx, types.KindCompany)
		gt.NoError(t, err).Required()
		gt.Array(t, entities).Length(0)
	})

	t.Run("legacy ID without a name falls back to the oldest entity", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()
		svc := resolver.New(repo)

		oldest, err := repo.Entity().Create(ctx, &model.Entity{
			Kind: types.KindCompany, Name: "first",
		})
		gt.NoError(t, err).Required()

		resolved, err := svc.Resolve(ctx, types.KindCompany, model.EntityRef{ID: "legacy-42"})
		gt.NoError(t, err).Required()
		gt.Value(t, resolved).Equal(oldest.ID)

		// No row is minted for the legacy token
		entities, err := repo.Entity().List(ctx, types.KindCompany)
		gt.NoError(t, err).Required()
		gt.Array(t, entities).Length(1)
	})

	t.Run("legacy ID with no entities to fall back to fails", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()
		svc := resolver.New(repo)

		_, err := svc.Resolve(ctx, types.KindClient, model.EntityRef{ID: "legacy-42"})
		gt.Value(t, err).NotNil()
	})

	t.Run("legacy ID with a name resolves by the name", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()
		svc := resolver.New(repo)

		first, err := svc.Resolve(ctx, types.KindClient, model.EntityRef{ID: "legacy-42", Name: "Acme Corp"})
		gt.NoError(t, err).Required()
		gt.B(t, first.IsCanonical()).True()

		second, err := svc.Resolve(ctx, types.KindClient, model.EntityRef{ID: "legacy-43", Name: "Acme Corp"})
		gt.NoError(t, err).Required()
		gt.Value(t, second).Equal(first)

		entities, err := repo.Entity().List(ctx, types.KindClient)
		gt.NoError(t, err).Required()
		gt.Array(t, entities).Length(1)
		gt.Value(t, entities[0].Name).Equal("Acme Corp")
	})

	t.Run("bare name reuses the existing row", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()
		svc := resolver.New(repo)

		existing, err := repo.Entity().Create(ctx, &model.Entity{
			Kind: types.KindResponsible, Name: "alice",
		})
		gt.NoError(t, err).Required()

		resolved, err := svc.Resolve(ctx, types.KindResponsible, model.EntityRef{Name: "alice"})
		gt.NoError(t, err).Required()
		gt.Value(t, resolved).Equal(existing.ID)
	})

	t.Run("concurrent resolution creates a single row", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()
		svc := resolver.New(repo)

		const workers = 16
		ids := make([]types.EntityID, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id, err := svc.Resolve(ctx, types.KindCompany, model.EntityRef{Name: "Acme Corp"})
				if err == nil {
					ids[i] = id
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			gt.Value(t, id).Equal(ids[0])
		}
		entities, err := repo.Entity().List(ctx, types.KindCompany)
		gt.NoError(t, err).Required()
		gt.Array(t, entities).Length(1)
	})

	t.Run("empty reference falls back to the oldest entity", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()
		svc := resolver.New(repo)

		oldest, err := repo.Entity().Create(ctx, &model.Entity{
			Kind: types.KindCompany, Name: "first",
		})
		gt.NoError(t, err).Required()
		_, err = repo.Entity().Create(ctx, &model.Entity{
			Kind: types.KindCompany, Name: "second",
		})
		gt.NoError(t, err).Required()

		resolved, err := svc.Resolve(ctx, types.KindCompany, model.EntityRef{})
		gt.NoError(t, err).Required()
		gt.Value(t, resolved).Equal(oldest.ID)
	})

	t.Run("empty reference with no entities fails", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()
		svc := resolver.New(repo)

		_, err := svc.Resolve(ctx, types.KindClient, model.EntityRef{})
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid kind is rejected", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()
		svc := resolver.New(repo)

		_, err := svc.Resolve(ctx, "unknown", model.EntityRef{Name: "x"})
		gt.Value(t, err).NotNil()
	})
}
