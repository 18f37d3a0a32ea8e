package sync

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// Writes update the cache optimistically, then confirm against the remote
// store with bounded retry. When retries are exhausted on a transient
// failure the optimistic row stays visible but is marked dirty; the next
// change event for it restores the authoritative state. Non-transient
// rejections (validation, stale revision) roll the cache back instead.

// resolveActionRefs maps every non-canonical entity reference on the
// action to a canonical stored entity before the remote write.
func (e *Engine) resolveActionRefs(ctx context.Context, action *model.Action) error {
	if e.resolver == nil {
		return nil
	}

	refs := []struct {
		kind types.EntityKind
		id   *types.EntityID
	}{
		{types.KindCompany, &action.CompanyID},
		{types.KindClient, &action.ClientID},
		{types.KindResponsible, &action.ResponsibleID},
		{types.KindResponsible, &action.RequesterID},
	}

	for _, ref := range refs {
		if *ref.id == "" || ref.id.IsCanonical() {
			continue
		}
		resolved, err := e.resolver.Resolve(ctx, ref.kind, model.EntityRef{ID: *ref.id})
		if err != nil {
			return goerr.Wrap(err, "failed to resolve entity reference",
				goerr.V("kind", ref.kind), goerr.V("ref", *ref.id))
		}
		*ref.id = resolved
	}

	return nil
}

func (e *Engine) CreateAction(ctx context.Context, action *model.Action) (*model.Action, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}

	pending := action.Clone()
	if pending.ID == "" {
		pending.ID = types.NewActionID()
	}
	if err := e.resolveActionRefs(ctx, pending); err != nil {
		return nil, err
	}

	e.cache.putAction(pending)

	var created *model.Action
	err := e.withRetry(ctx, "create action", func(ctx context.Context) error {
		var err error
		created, err = e.repo.Action().Create(ctx, pending)
		return err
	})
	if err != nil {
		if types.IsTransient(err) {
			e.cache.markDirty(types.CollectionActions, pending.ID.String())
			return nil, err
		}
		e.cache.removeAction(pending.ID)
		return nil, err
	}

	e.cache.putAction(created)
	e.cache.clearDirty(types.CollectionActions, created.ID.String())
	return created, nil
}

func (e *Engine) UpdateAction(ctx context.Context, action *model.Action) (*model.Action, error) {
	if err := action.Validate(); err != nil {
		return nil, err
	}

	pending := action.Clone()
	if err := e.resolveActionRefs(ctx, pending); err != nil {
		return nil, err
	}

	prior, hadPrior := e.cache.getAction(pending.ID)
	e.cache.putAction(pending)

	var updated *model.Action
	err := e.withRetry(ctx, "update action", func(ctx context.Context) error {
		var err error
		updated, err = e.repo.Action().Update(ctx, pending)
		return err
	})
	if err != nil {
		if types.IsTransient(err) {
			e.cache.markDirty(types.CollectionActions, pending.ID.String())
			return nil, err
		}
		e.rollbackAction(ctx, pending.ID, prior, hadPrior)
		return nil, err
	}

	e.cache.putAction(updated)
	e.cache.clearDirty(types.CollectionActions, updated.ID.String())
	return updated, nil
}

// rollbackAction restores the authoritative row after a rejected write,
// preferring the remote state over the last cached one.
func (e *Engine) rollbackAction(ctx context.Context, id types.ActionID, prior *model.Action, hadPrior bool) {
	if current, err := e.repo.Action().Get(ctx, id); err == nil {
		e.cache.putAction(current)
		return
	}
	if hadPrior {
		e.cache.putAction(prior)
		return
	}
	e.cache.removeAction(id)
}

func (e *Engine) DeleteAction(ctx context.Context, id types.ActionID) error {
	err := e.withRetry(ctx, "delete action", func(ctx context.Context) error {
		return e.repo.Action().Delete(ctx, id)
	})
	if err != nil && !types.IsNotFound(err) {
		return err
	}

	e.cache.removeAction(id)
	e.cache.clearDirty(types.CollectionActions, id.String())
	return nil
}

func (e *Engine) CreateNote(ctx context.Context, note *model.ActionNote) (*model.ActionNote, error) {
	pending := note.Clone()
	if pending.ID == "" {
		pending.ID = types.NewNoteID()
	}
	e.cache.putNote(pending)

	var created *model.ActionNote
	err := e.withRetry(ctx, "create note", func(ctx context.Context) error {
		var err error
		created, err = e.repo.Note().Create(ctx, pending)
		return err
	})
	if err != nil {
		if types.IsTransient(err) {
			e.cache.markDirty(types.CollectionNotes, pending.ID.String())
			return nil, err
		}
		e.cache.removeNote(pending.ID)
		return nil, err
	}

	e.cache.putNote(created)
	e.cache.clearDirty(types.CollectionNotes, created.ID.String())
	return created, nil
}

func (e *Engine) UpdateNote(ctx context.Context, note *model.ActionNote) (*model.ActionNote, error) {
	prior, hadPrior := e.cache.getNote(note.ID)
	e.cache.putNote(note)

	var updated *model.ActionNote
	err := e.withRetry(ctx, "update note", func(ctx context.Context) error {
		var err error
		updated, err = e.repo.Note().Update(ctx, note)
		return err
	})
	if err != nil {
		if types.IsTransient(err) {
			e.cache.markDirty(types.CollectionNotes, note.ID.String())
			return nil, err
		}
		if hadPrior {
			e.cache.putNote(prior)
		} else {
			e.cache.removeNote(note.ID)
		}
		return nil, err
	}

	e.cache.putNote(updated)
	e.cache.clearDirty(types.CollectionNotes, updated.ID.String())
	return updated, nil
}

// PurgeNotes physically removes every note of an action. Used by the
// second phase of the cascading action delete.
func (e *Engine) PurgeNotes(ctx context.Context, actionID types.ActionID) error {
	err := e.withRetry(ctx, "purge notes", func(ctx context.Context) error {
		return e.repo.Note().Purge(ctx, actionID)
	})
	if err != nil {
		return err
	}

	e.cache.removeNotesByAction(actionID)
	return nil
}

func (e *Engine) CreateAttachment(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error) {
	pending := attachment.Clone()
	if pending.ID == "" {
		pending.ID = types.NewAttachmentID()
	}
	e.cache.putAttachment(pending)

	var created *model.Attachment
	err := e.withRetry(ctx, "create attachment", func(ctx context.Context) error {
		var err error
		created, err = e.repo.Attachment().Create(ctx, pending)
		return err
	})
	if err != nil {
		if types.IsTransient(err) {
			e.cache.markDirty(types.CollectionAttachments, pending.ID.String())
			return nil, err
		}
		e.cache.removeAttachment(pending.ID)
		return nil, err
	}

	e.cache.putAttachment(created)
	e.cache.clearDirty(types.CollectionAttachments, created.ID.String())
	return created, nil
}

func (e *Engine) DeleteAttachment(ctx context.Context, id types.AttachmentID) error {
	err := e.withRetry(ctx, "delete attachment", func(ctx context.Context) error {
		return e.repo.Attachment().Delete(ctx, id)
	})
	if err != nil && !types.IsNotFound(err) {
		return err
	}

	e.cache.removeAttachment(id)
	e.cache.clearDirty(types.CollectionAttachments, id.String())
	return nil
}

func (e *Engine) CreateStage(ctx context.Context, stage *model.ActionStage) (*model.ActionStage, error) {
	pending := stage.Clone()
	if pending.ID == "" {
		pending.ID = types.NewStageID()
	}
	e.cache.putStage(pending)

	var created *model.ActionStage
	err := e.withRetry(ctx, "create stage", func(ctx context.Context) error {
		var err error
		created, err = e.repo.Stage().Create(ctx, pending)
		return err
	})
	if err != nil {
		if types.IsTransient(err) {
			e.cache.markDirty(types.CollectionStages, pending.ID.String())
			return nil, err
		}
		e.cache.removeStage(pending.ID)
		return nil, err
	}

	e.cache.putStage(created)
	e.cache.clearDirty(types.CollectionStages, created.ID.String())
	return created, nil
}

func (e *Engine) UpdateStage(ctx context.Context, stage *model.ActionStage) (*model.ActionStage, error) {
	prior, hadPrior := e.cache.getStage(stage.ID)
	e.cache.putStage(stage)

	var updated *model.ActionStage
	err := e.withRetry(ctx, "update stage", func(ctx context.Context) error {
		var err error
		updated, err = e.repo.Stage().Update(ctx, stage)
		return err
	})
	if err != nil {
		if types.IsTransient(err) {
			e.cache.markDirty(types.CollectionStages, stage.ID.String())
			return nil, err
		}
		if current, gerr := e.repo.Stage().Get(ctx, stage.ID); gerr == nil {
			e.cache.putStage(current)
		} else if hadPrior {
			e.cache.putStage(prior)
		} else {
			e.cache.removeStage(stage.ID)
		}
		return nil, err
	}

	e.cache.putStage(updated)
	e.cache.clearDirty(types.CollectionStages, updated.ID.String())
	return updated, nil
}

func (e *Engine) DeleteStage(ctx context.Context, id types.StageID) error {
	err := e.withRetry(ctx, "delete stage", func(ctx context.Context) error {
		return e.repo.Stage().Delete(ctx, id)
	})
	if err != nil && !types.IsNotFound(err) {
		return err
	}

	e.cache.removeStage(id)
	e.cache.clearDirty(types.CollectionStages, id.String())
	return nil
}

func (e *Engine) CreateEntity(ctx context.Context, entity *model.Entity) (*model.Entity, error) {
	pending := entity.Clone()
	if pending.ID == "" {
		pending.ID = types.NewEntityID()
	}
	e.cache.putEntity(pending)

	var created *model.Entity
	err := e.withRetry(ctx, "create entity", func(ctx context.Context) error {
		var err error
		created, err = e.repo.Entity().Create(ctx, pending)
		return err
	})
	if err != nil {
		if types.IsTransient(err) {
			e.cache.markDirty(pending.Kind.Collection(), pending.ID.String())
			return nil, err
		}
		e.cache.removeEntity(pending.ID)
		return nil, err
	}

	e.cache.putEntity(created)
	e.cache.clearDirty(created.Kind.Collection(), created.ID.String())
	return created, nil
}

func (e *Engine) CreateNotification(ctx context.Context, notification *model.Notification) (*model.Notification, error) {
	pending := notification.Clone()
	if pending.ID == "" {
		pending.ID = types.NewNotificationID()
	}
	e.cache.putNotification(pending)

	var created *model.Notification
	err := e.withRetry(ctx, "create notification", func(ctx context.Context) error {
		var err error
		created, err = e.repo.Notification().Create(ctx, pending)
		return err
	})
	if err != nil {
		if types.IsTransient(err) {
			e.cache.markDirty(types.CollectionNotifications, pending.ID.String())
			return nil, err
		}
		e.cache.removeNotification(pending.ID)
		return nil, err
	}

	e.cache.putNotification(created)
	e.cache.clearDirty(types.CollectionNotifications, created.ID.String())
	return created, nil
}

func (e *Engine) UpdateNotification(ctx context.Context, notification *model.Notification) (*model.Notification, error) {
	prior, hadPrior := e.cache.getNotification(notification.ID)
	e.cache.putNotification(notification)

	var updated *model.Notification
	err := e.withRetry(ctx, "update notification", func(ctx context.Context) error {
		var err error
		updated, err = e.repo.Notification().Update(ctx, notification)
		return err
	})
	if err != nil {
		if types.IsTransient(err) {
			e.cache.markDirty(types.CollectionNotifications, notification.ID.String())
			return nil, err
		}
		if hadPrior {
			e.cache.putNotification(prior)
		} else {
			e.cache.removeNotification(notification.ID)
		}
		return nil, err
	}

	e.cache.putNotification(updated)
	e.cache.clearDirty(types.CollectionNotifications, updated.ID.String())
	return updated, nil
}
