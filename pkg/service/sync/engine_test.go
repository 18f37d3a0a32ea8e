package sync_test

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/repository/memory"
	syncsvc "github.com/actio-dev/actio/pkg/service/sync"
)

// flakyRepo wraps the in-memory backend and injects failures into the
// action repository to exercise the retry and rollback paths.
type flakyRepo struct {
	interfaces.Repository
	action *flakyActionRepo
}

func newFlakyRepo() *flakyRepo {
	inner := memory.New()
	return &flakyRepo{
		Repository: inner,
		action:     &flakyActionRepo{ActionRepository: inner.Action()},
	}
}

func (r *flakyRepo) Action() interfaces.ActionRepository {
	return r.action
}

type flakyActionRepo struct {
	interfaces.ActionRepository

	mu          gosync.Mutex
	failUpdates int
	updateCalls int
	failLists   int
	listCalls   int
	updateErr   error
}

func (r *flakyActionRepo) Update(ctx context.Context, action *model.Action) (*model.Action, error) {
	r.mu.Lock()
	r.updateCalls++
	fail := r.failUpdates > 0
	if fail {
		r.failUpdates--
	}
	injected := r.updateErr
	r.mu.Unlock()

	if fail {
		if injected != nil {
			return nil, injected
		}
		return nil, goerr.New("injected network failure", goerr.T(types.ErrTagTransient))
	}
	return r.ActionRepository.Update(ctx, action)
}

func (r *flakyActionRepo) List(ctx context.Context) ([]*model.Action, error) {
	r.mu.Lock()
	r.listCalls++
	fail := r.failLists > 0
	if fail {
		r.failLists--
	}
	r.mu.Unlock()

	if fail {
		return nil, goerr.New("injected network failure", goerr.T(types.ErrTagTransient))
	}
	return r.ActionRepository.List(ctx)
}

func (r *flakyActionRepo) calls() (updates, lists int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateCalls, r.listCalls
}

func testAction(subject string) *model.Action {
	return &model.Action{
		Subject:   subject,
		Status:    types.ActionStatusPending,
		CompanyID: types.NewEntityID(),
	}
}

func TestEngineRetry(t *testing.T) {
	ctx := context.Background()
	cfg := syncsvc.Config{Attempts: 3, Delay: time.Millisecond}

	t.Run("transient failure recovers within the attempt budget", func(t *testing.T) {
		repo := newFlakyRepo()
		engine := syncsvc.New(repo, cfg)

		created, err := engine.CreateAction(ctx, testAction("retry me"))
		gt.NoError(t, err).Required()

		repo.action.failUpdates = 2
		before, _ := repo.action.calls()

		created.Subject = "retried"
		updated, err := engine.UpdateAction(ctx, created)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Subject).Equal("retried")

		after, _ := repo.action.calls()
		gt.Value(t, after-before).Equal(3)
		gt.B(t, engine.IsDirty(types.CollectionActions, created.ID.String())).False()
	})

	t.Run("exhausted retries keep the optimistic row marked dirty", func(t *testing.T) {
		repo := newFlakyRepo()
		engine := syncsvc.New(repo, cfg)

		created, err := engine.CreateAction(ctx, testAction("keep me"))
		gt.NoError(t, err).Required()

		repo.action.failUpdates = 10
		before, _ := repo.action.calls()

		created.Subject = "optimistic"
		_, err = engine.UpdateAction(ctx, created)
		gt.Value(t, err).NotNil()
		gt.B(t, types.IsTransient(err)).True()

		after, _ := repo.action.calls()
		gt.Value(t, after-before).Equal(3)

		// The unconfirmed write stays visible but flagged
		gt.B(t, engine.IsDirty(types.CollectionActions, created.ID.String())).True()
		cached, err := engine.GetAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, cached.Subject).Equal("optimistic")
	})

	t.Run("non-transient rejection fails once and rolls back", func(t *testing.T) {
		repo := newFlakyRepo()
		engine := syncsvc.New(repo, cfg)

		created, err := engine.CreateAction(ctx, testAction("authoritative"))
		gt.NoError(t, err).Required()

		repo.action.failUpdates = 1
		repo.action.updateErr = goerr.New("stale revision", goerr.T(types.ErrTagConflict))
		before, _ := repo.action.calls()

		created.Subject = "rejected write"
		_, err = engine.UpdateAction(ctx, created)
		gt.Value(t, err).NotNil()
		gt.B(t, types.IsConflict(err)).True()

		after, _ := repo.action.calls()
		gt.Value(t, after-before).Equal(1)

		// The cache holds the remote truth, not the rejected write
		cached, err := engine.GetAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, cached.Subject).Equal("authoritative")
		gt.B(t, engine.IsDirty(types.CollectionActions, created.ID.String())).False()
	})
}

func TestEngineHydration(t *testing.T) {
	ctx := context.Background()

	t.Run("hydrates from remote store", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()

		seeded, err := repo.Action().Create(ctx, testAction("already there"))
		gt.NoError(t, err).Required()

		engine := syncsvc.New(repo, syncsvc.Config{Attempts: 1, Delay: time.Millisecond})
		gt.NoError(t, engine.Start(ctx)).Required()
		defer engine.Stop(ctx)

		actions, err := engine.ListActions(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, actions).Length(1)
		gt.Value(t, actions[0].ID).Equal(seeded.ID)
	})

	t.Run("falls back to the seed dataset when the store is unreachable", func(t *testing.T) {
		repo := newFlakyRepo()
		repo.action.failLists = 100

		engine := syncsvc.New(repo, syncsvc.Config{Attempts: 2, Delay: time.Millisecond})
		gt.NoError(t, engine.Start(ctx)).Required()
		defer engine.Stop(ctx)

		actions, err := engine.ListActions(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, actions).Length(1)
		gt.Value(t, actions[0].Subject).Equal("Welcome")

		entities, err := engine.ListEntities(ctx, types.KindCompany)
		gt.NoError(t, err).Required()
		gt.Array(t, entities).Length(1)
	})

	t.Run("uses the configured seed when one is provided", func(t *testing.T) {
		repo := newFlakyRepo()
		repo.action.failLists = 100

		engine := syncsvc.New(repo,
			syncsvc.Config{Attempts: 2, Delay: time.Millisecond},
			syncsvc.WithSeed(model.NewSeed("Acme Corp", "Alice", "Getting started", "")))
		gt.NoError(t, engine.Start(ctx)).Required()
		defer engine.Stop(ctx)

		actions, err := engine.ListActions(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, actions).Length(1)
		gt.Value(t, actions[0].Subject).Equal("Getting started")
	})

	t.Run("prefers the local snapshot over the seed", func(t *testing.T) {
		snapshotPath := t.TempDir() + "/snapshot.json"

		repo := memory.New()
		_, err := repo.Action().Create(ctx, testAction("from snapshot"))
		gt.NoError(t, err).Required()

		first := syncsvc.New(repo, syncsvc.Config{
			Attempts: 1, Delay: time.Millisecond, SnapshotPath: snapshotPath,
		})
		gt.NoError(t, first.Start(ctx)).Required()
		gt.NoError(t, first.Stop(ctx)).Required()
		repo.Close()

		offline := newFlakyRepo()
		offline.action.failLists = 100

		second := syncsvc.New(offline, syncsvc.Config{
			Attempts: 2, Delay: time.Millisecond, SnapshotPath: snapshotPath,
		})
		gt.NoError(t, second.Start(ctx)).Required()
		defer second.Stop(ctx)

		actions, err := second.ListActions(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, actions).Length(1)
		gt.Value(t, actions[0].Subject).Equal("from snapshot")
	})
}

func TestEngineChangeFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("reconciles rows written by another session", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()

		engine := syncsvc.New(repo, syncsvc.Config{Attempts: 1, Delay: time.Millisecond})
		gt.NoError(t, engine.Start(ctx)).Required()
		defer engine.Stop(ctx)

		created, err := repo.Action().Create(ctx, testAction("external write"))
		gt.NoError(t, err).Required()

		gt.B(t, eventually(func() bool {
			actions, err := engine.ListActions(ctx)
			return err == nil && len(actions) == 1 && actions[0].ID == created.ID
		})).True()
	})

	t.Run("removes rows deleted by another session", func(t *testing.T) {
		repo := memory.New()
		defer repo.Close()

		created, err := repo.Action().Create(ctx, testAction("to be deleted"))
		gt.NoError(t, err).Required()

		engine := syncsvc.New(repo, syncsvc.Config{Attempts: 1, Delay: time.Millisecond})
		gt.NoError(t, engine.Start(ctx)).Required()
		defer engine.Stop(ctx)

		gt.NoError(t, repo.Action().Delete(ctx, created.ID)).Required()

		gt.B(t, eventually(func() bool {
			actions, err := engine.ListActions(ctx)
			return err == nil && len(actions) == 0
		})).True()
	})
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}
