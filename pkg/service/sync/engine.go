package sync

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// Resolver maps a loose entity reference to a canonical stored entity ID.
// Writes passing through the engine resolve every non-canonical reference
// before they reach the remote store.
type Resolver interface {
	Resolve(ctx context.Context, kind types.EntityKind, ref model.EntityRef) (types.EntityID, error)
}

// Config controls retry behavior and local snapshot persistence
type Config struct {
	// Attempts is the total number of tries for a transient failure
	Attempts int

	// Delay is the fixed pause between retries
	Delay time.Duration

	// SnapshotPath is the local JSON file used as a startup fallback when
	// the remote store is unreachable. Empty disables snapshot persistence.
	SnapshotPath string
}

func (c *Config) normalize() {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.Delay <= 0 {
		c.Delay = 200 * time.Millisecond
	}
}

// Engine mirrors the remote collections into a local cache. Reads are
// served from the cache; writes update the cache optimistically and then
// confirm against the remote store with bounded retry. Change events from
// the store's subscription feed reconcile the cache, latest snapshot wins.
type Engine struct {
	repo     interfaces.Repository
	cfg      Config
	cache    *cache
	resolver Resolver
	seed     *model.Dataset

	cancelWatch context.CancelFunc
	watchWG     sync.WaitGroup
}

type Option func(*Engine)

// WithResolver wires the entity resolver into the write path
func WithResolver(r Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithSeed replaces the built-in fallback dataset used when neither the
// remote store nor a local snapshot is reachable at startup.
func WithSeed(d *model.Dataset) Option {
	return func(e *Engine) {
		e.seed = d
	}
}

func New(repo interfaces.Repository, cfg Config, opts ...Option) *Engine {
	cfg.normalize()
	engine := &Engine{
		repo:  repo,
		cfg:   cfg,
		cache: newCache(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Start hydrates the cache and subscribes to the change feed. Hydration
// prefers the remote store, then the last saved snapshot, then the
// built-in seed dataset, so startup never fails for lack of data.
func (e *Engine) Start(ctx context.Context) error {
	logger := logging.From(ctx)

	dataset, err := e.fetchRemote(ctx)
	switch {
	case err == nil:
		e.cache.load(dataset)
		logger.Info("cache hydrated from remote store",
			"actions", len(dataset.Actions), "entities", len(dataset.Entities))

	default:
		logger.Warn("remote store unavailable at startup", "error", err.Error())

		snapshot, snapErr := e.loadSnapshot()
		if snapErr == nil {
			e.cache.load(snapshot)
			logger.Info("cache hydrated from local snapshot",
				"path", e.cfg.SnapshotPath, "actions", len(snapshot.Actions))
		} else {
			logger.Warn("local snapshot unavailable, using seed dataset",
				"error", snapErr.Error())
			seed := e.seed
			if seed == nil {
				seed = model.DefaultSeed()
			}
			e.cache.load(seed)
		}
	}

	watchCtx, cancel := context.WithCancel(logging.With(context.Background(), logging.From(ctx)))
	e.cancelWatch = cancel

	for _, collection := range types.AllCollections() {
		events, watchErr := e.repo.Watch(watchCtx, collection)
		if watchErr != nil {
			cancel()
			e.watchWG.Wait()
			return goerr.Wrap(watchErr, "failed to subscribe to change feed",
				goerr.V("collection", collection))
		}

		e.watchWG.Add(1)
		go func(collection string, events <-chan model.ChangeEvent) {
			defer e.watchWG.Done()
			for event := range events {
				e.applyChange(watchCtx, event)
			}
		}(collection, events)
	}

	return nil
}

// IsDirty reports whether a row carries an optimistic update that has not
// been confirmed by the remote store yet.
func (e *Engine) IsDirty(collection, id string) bool {
	return e.cache.isDirty(collection, id)
}

// Stop cancels the change subscriptions and persists a snapshot of the
// current cache for the next offline startup.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancelWatch != nil {
		e.cancelWatch()
		e.watchWG.Wait()
	}

	if err := e.saveSnapshot(); err != nil {
		logging.From(ctx).Error("failed to persist cache snapshot", "error", err.Error())
		return err
	}
	return nil
}

// fetchRemote loads every mirrored collection from the remote store. Child
// collections (notes, attachments, stages, tasks) hang off actions, so
// actions are listed first and the rest follow per action.
func (e *Engine) fetchRemote(ctx context.Context) (*model.Dataset, error) {
	dataset := &model.Dataset{}

	if err := e.withRetry(ctx, "list actions", func(ctx context.Context) error {
		actions, err := e.repo.Action().List(ctx)
		if err != nil {
			return err
		}
		dataset.Actions = actions
		return nil
	}); err != nil {
		return nil, err
	}

	for _, action := range dataset.Actions {
		actionID := action.ID
		if err := e.withRetry(ctx, "list action children", func(ctx context.Context) error {
			notes, err := e.repo.Note().ListByAction(ctx, actionID)
			if err != nil {
				return err
			}
			attachments, err := e.repo.Attachment().ListByAction(ctx, actionID)
			if err != nil {
				return err
			}
			stages, err := e.repo.Stage().ListByAction(ctx, actionID)
			if err != nil {
				return err
			}
			dataset.Notes = append(dataset.Notes, notes...)
			dataset.Attachments = append(dataset.Attachments, attachments...)
			dataset.Stages = append(dataset.Stages, stages...)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	for _, kind := range types.AllEntityKinds() {
		entityKind := kind
		if err := e.withRetry(ctx, "list entities", func(ctx context.Context) error {
			entities, err := e.repo.Entity().List(ctx, entityKind)
			if err != nil {
				return err
			}
			dataset.Entities = append(dataset.Entities, entities...)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if err := e.withRetry(ctx, "list notifications", func(ctx context.Context) error {
		notifications, err := e.repo.Notification().List(ctx)
		if err != nil {
			return err
		}
		dataset.Notifications = notifications
		return nil
	}); err != nil {
		return nil, err
	}

	return dataset, nil
}

// applyChange reconciles one change event into the cache. Events without a
// row ID trigger a full reload of the collection; everything else refreshes
// the single row from the remote store so the latest snapshot wins.
func (e *Engine) applyChange(ctx context.Context, event model.ChangeEvent) {
	if event.ID == "" {
		e.reloadCollection(ctx, event.Collection)
		return
	}

	if event.Kind == model.ChangeDeleted {
		e.removeRow(event.Collection, event.ID)
		e.cache.clearDirty(event.Collection, event.ID)
		return
	}

	if err := e.refreshRow(ctx, event.Collection, event.ID); err != nil {
		if types.IsNotFound(err) {
			e.removeRow(event.Collection, event.ID)
			e.cache.clearDirty(event.Collection, event.ID)
			return
		}
		logging.From(ctx).Warn("failed to refresh changed row, reloading collection",
			"collection", event.Collection, "id", event.ID, "error", err.Error())
		e.reloadCollection(ctx, event.Collection)
		return
	}
	e.cache.clearDirty(event.Collection, event.ID)
}

func (e *Engine) refreshRow(ctx context.Context, collection, id string) error {
	switch collection {
	case types.CollectionActions:
		action, err := e.repo.Action().Get(ctx, types.ActionID(id))
		if err != nil {
			return err
		}
		e.cache.putAction(action)

	case types.CollectionNotes:
		note, err := e.repo.Note().Get(ctx, types.NoteID(id))
		if err != nil {
			return err
		}
		e.cache.putNote(note)

	case types.CollectionAttachments:
		attachment, err := e.repo.Attachment().Get(ctx, types.AttachmentID(id))
		if err != nil {
			return err
		}
		e.cache.putAttachment(attachment)

	case types.CollectionStages:
		stage, err := e.repo.Stage().Get(ctx, types.StageID(id))
		if err != nil {
			return err
		}
		e.cache.putStage(stage)

	case types.CollectionNotifications:
		notification, err := e.repo.Notification().Get(ctx, types.NotificationID(id))
		if err != nil {
			return err
		}
		e.cache.putNotification(notification)

	default:
		kind, ok := entityKindOf(collection)
		if !ok {
			return goerr.New("unknown collection in change event", goerr.V("collection", collection))
		}
		entity, err := e.repo.Entity().Get(ctx, kind, types.EntityID(id))
		if err != nil {
			return err
		}
		e.cache.putEntity(entity)
	}
	return nil
}

func (e *Engine) removeRow(collection, id string) {
	switch collection {
	case types.CollectionActions:
		e.cache.removeAction(types.ActionID(id))
	case types.CollectionNotes:
		e.cache.removeNote(types.NoteID(id))
	case types.CollectionAttachments:
		e.cache.removeAttachment(types.AttachmentID(id))
	case types.CollectionStages:
		e.cache.removeStage(types.StageID(id))
	case types.CollectionNotifications:
		e.cache.removeNotification(types.NotificationID(id))
	default:
		e.cache.removeEntity(types.EntityID(id))
	}
}

func (e *Engine) reloadCollection(ctx context.Context, collection string) {
	err := e.withRetry(ctx, "reload collection", func(ctx context.Context) error {
		switch collection {
		case types.CollectionActions:
			actions, err := e.repo.Action().List(ctx)
			if err != nil {
				return err
			}
			e.cache.replaceActions(actions)

		case types.CollectionNotes:
			var notes []*model.ActionNote
			for _, action := range e.cache.listActions() {
				rows, err := e.repo.Note().ListByAction(ctx, action.ID)
				if err != nil {
					return err
				}
				notes = append(notes, rows...)
			}
			e.cache.replaceNotes(notes)

		case types.CollectionAttachments:
			var attachments []*model.Attachment
			for _, action := range e.cache.listActions() {
				rows, err := e.repo.Attachment().ListByAction(ctx, action.ID)
				if err != nil {
					return err
				}
				attachments = append(attachments, rows...)
			}
			e.cache.replaceAttachments(attachments)

		case types.CollectionStages:
			var stages []*model.ActionStage
			for _, action := range e.cache.listActions() {
				rows, err := e.repo.Stage().ListByAction(ctx, action.ID)
				if err != nil {
					return err
				}
				stages = append(stages, rows...)
			}
			e.cache.replaceStages(stages)

		case types.CollectionNotifications:
			notifications, err := e.repo.Notification().List(ctx)
			if err != nil {
				return err
			}
			e.cache.replaceNotifications(notifications)

		default:
			kind, ok := entityKindOf(collection)
			if !ok {
				return goerr.New("unknown collection", goerr.V("collection", collection))
			}
			entities, err := e.repo.Entity().List(ctx, kind)
			if err != nil {
				return err
			}
			e.cache.replaceEntities(kind, entities)
		}
		return nil
	})
	if err != nil {
		logging.From(ctx).Error("failed to reload collection",
			"collection", collection, "error", err.Error())
	}
}

func entityKindOf(collection string) (types.EntityKind, bool) {
	for _, kind := range types.AllEntityKinds() {
		if kind.Collection() == collection {
			return kind, true
		}
	}
	return "", false
}
