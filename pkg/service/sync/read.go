package sync

import (
	"context"
	"sort"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

func sortEntitiesByCreation(entities []*model.Entity) {
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].CreatedAt.Before(entities[j].CreatedAt)
	})
}

func sortNotificationsNewestFirst(notifications []*model.Notification) {
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
}

// Reads are served from the cache. A miss falls through to the remote
// store once (with retry) and back-fills the cache, so a row created in
// another session is reachable before its change event arrives.

func (e *Engine) GetAction(ctx context.Context, id types.ActionID) (*model.Action, error) {
	if action, ok := e.cache.getAction(id); ok {
		return action, nil
	}

	var action *model.Action
	err := e.withRetry(ctx, "get action", func(ctx context.Context) error {
		var err error
		action, err = e.repo.Action().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.cache.putAction(action)
	return action, nil
}

func (e *Engine) ListActions(ctx context.Context) ([]*model.Action, error) {
	return e.cache.listActions(), nil
}

// ListRootActions lists actions that are not task rows under a stage
func (e *Engine) ListRootActions(ctx context.Context) ([]*model.Action, error) {
	roots := make([]*model.Action, 0)
	for _, action := range e.cache.listActions() {
		if !action.IsSubtask {
			roots = append(roots, action)
		}
	}
	return roots, nil
}

func (e *Engine) ListTasksByParent(ctx context.Context, parentID types.ActionID) ([]*model.Action, error) {
	tasks := make([]*model.Action, 0)
	for _, action := range e.cache.listActions() {
		if action.IsSubtask && action.ParentActionID == parentID {
			tasks = append(tasks, action)
		}
	}
	model.SortTasks(tasks)
	return tasks, nil
}

func (e *Engine) ListTasksByStage(ctx context.Context, stageID types.StageID) ([]*model.Action, error) {
	tasks := make([]*model.Action, 0)
	for _, action := range e.cache.listActions() {
		if action.StageID == stageID {
			tasks = append(tasks, action)
		}
	}
	model.SortTasks(tasks)
	return tasks, nil
}

func (e *Engine) GetNote(ctx context.Context, id types.NoteID) (*model.ActionNote, error) {
	if note, ok := e.cache.getNote(id); ok {
		return note, nil
	}

	var note *model.ActionNote
	err := e.withRetry(ctx, "get note", func(ctx context.Context) error {
		var err error
		note, err = e.repo.Note().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.cache.putNote(note)
	return note, nil
}

func (e *Engine) ListNotesByAction(ctx context.Context, actionID types.ActionID) ([]*model.ActionNote, error) {
	return e.cache.listNotesByAction(actionID), nil
}

func (e *Engine) GetAttachment(ctx context.Context, id types.AttachmentID) (*model.Attachment, error) {
	if attachment, ok := e.cache.getAttachment(id); ok {
		return attachment, nil
	}

	var attachment *model.Attachment
	err := e.withRetry(ctx, "get attachment", func(ctx context.Context) error {
		var err error
		attachment, err = e.repo.Attachment().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.cache.putAttachment(attachment)
	return attachment, nil
}

func (e *Engine) ListAttachmentsByAction(ctx context.Context, actionID types.ActionID) ([]*model.Attachment, error) {
	return e.cache.listAttachmentsByAction(actionID), nil
}

func (e *Engine) GetStage(ctx context.Context, id types.StageID) (*model.ActionStage, error) {
	if stage, ok := e.cache.getStage(id); ok {
		return stage, nil
	}

	var stage *model.ActionStage
	err := e.withRetry(ctx, "get stage", func(ctx context.Context) error {
		var err error
		stage, err = e.repo.Stage().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.cache.putStage(stage)
	return stage, nil
}

func (e *Engine) ListStagesByAction(ctx context.Context, actionID types.ActionID) ([]*model.ActionStage, error) {
	stages := e.cache.listStagesByAction(actionID)
	model.SortStages(stages)
	return stages, nil
}

// ListChildStages lists the direct children of a parent stage. An empty
// parentID lists the root stages of the action.
func (e *Engine) ListChildStages(ctx context.Context, actionID types.ActionID, parentID types.StageID) ([]*model.ActionStage, error) {
	children := make([]*model.ActionStage, 0)
	for _, stage := range e.cache.listStagesByAction(actionID) {
		if stage.ParentStageID == parentID {
			children = append(children, stage)
		}
	}
	model.SortStages(children)
	return children, nil
}

func (e *Engine) GetEntity(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error) {
	if entity, ok := e.cache.getEntity(id); ok && entity.Kind == kind {
		return entity, nil
	}

	var entity *model.Entity
	err := e.withRetry(ctx, "get entity", func(ctx context.Context) error {
		var err error
		entity, err = e.repo.Entity().Get(ctx, kind, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.cache.putEntity(entity)
	return entity, nil
}

// GetEntityByName looks up an entity by exact name against the remote
// store, falling back to the cache when the store is unreachable. The
// oldest row wins when duplicates exist.
func (e *Engine) GetEntityByName(ctx context.Context, kind types.EntityKind, name string) (*model.Entity, error) {
	var entity *model.Entity
	err := e.withRetry(ctx, "get entity by name", func(ctx context.Context) error {
		var err error
		entity, err = e.repo.Entity().GetByName(ctx, kind, name)
		return err
	})
	if err == nil {
		e.cache.putEntity(entity)
		return entity, nil
	}
	if !types.IsTransient(err) {
		return nil, err
	}

	var oldest *model.Entity
	for _, cached := range e.cache.listEntities(kind) {
		if cached.Name != name {
			continue
		}
		if oldest == nil || cached.CreatedAt.Before(oldest.CreatedAt) {
			oldest = cached
		}
	}
	if oldest == nil {
		return nil, err
	}
	return oldest, nil
}

func (e *Engine) ListEntities(ctx context.Context, kind types.EntityKind) ([]*model.Entity, error) {
	entities := e.cache.listEntities(kind)
	sortEntitiesByCreation(entities)
	return entities, nil
}

func (e *Engine) ListNotifications(ctx context.Context) ([]*model.Notification, error) {
	notifications := e.cache.listNotifications()
	sortNotificationsNewestFirst(notifications)
	return notifications, nil
}

func (e *Engine) ListNotificationsByRecipient(ctx context.Context, recipientID types.EntityID) ([]*model.Notification, error) {
	result := make([]*model.Notification, 0)
	for _, n := range e.cache.listNotifications() {
		if n.RecipientID == recipientID {
			result = append(result, n)
		}
	}
	sortNotificationsNewestFirst(result)
	return result, nil
}

// CountUnread returns the number of unread notifications for a recipient
func (e *Engine) CountUnread(ctx context.Context, recipientID types.EntityID) (int, error) {
	count := 0
	for _, n := range e.cache.listNotifications() {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}
