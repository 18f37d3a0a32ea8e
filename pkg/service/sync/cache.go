package sync

import (
	"sync"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// cache is the local mirror of the remote collections. Readers are served
// from here; writers update it optimistically before the remote write and
// the change feed overwrites entries with whatever the remote store holds
// (latest snapshot wins).
type cache struct {
	mu            sync.RWMutex
	actions       map[types.ActionID]*model.Action
	notes         map[types.NoteID]*model.ActionNote
	attachments   map[types.AttachmentID]*model.Attachment
	stages        map[types.StageID]*model.ActionStage
	entities      map[types.EntityID]*model.Entity
	notifications map[types.NotificationID]*model.Notification

	// dirty tracks rows whose optimistic update could not be confirmed
	// remotely. They are cleared when the change feed re-delivers the row.
	dirty map[string]map[string]struct{}
}

func newCache() *cache {
	return &cache{
		actions:       make(map[types.ActionID]*model.Action),
		notes:         make(map[types.NoteID]*model.ActionNote),
		attachments:   make(map[types.AttachmentID]*model.Attachment),
		stages:        make(map[types.StageID]*model.ActionStage),
		entities:      make(map[types.EntityID]*model.Entity),
		notifications: make(map[types.NotificationID]*model.Notification),
		dirty:         make(map[string]map[string]struct{}),
	}
}

func (c *cache) load(d *model.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.actions = make(map[types.ActionID]*model.Action, len(d.Actions))
	for _, a := range d.Actions {
		c.actions[a.ID] = a.Clone()
	}
	c.notes = make(map[types.NoteID]*model.ActionNote, len(d.Notes))
	for _, n := range d.Notes {
		c.notes[n.ID] = n.Clone()
	}
	c.attachments = make(map[types.AttachmentID]*model.Attachment, len(d.Attachments))
	for _, a := range d.Attachments {
		c.attachments[a.ID] = a.Clone()
	}
	c.stages = make(map[types.StageID]*model.ActionStage, len(d.Stages))
	for _, s := range d.Stages {
		c.stages[s.ID] = s.Clone()
	}
	c.entities = make(map[types.EntityID]*model.Entity, len(d.Entities))
	for _, e := range d.Entities {
		c.entities[e.ID] = e.Clone()
	}
	c.notifications = make(map[types.NotificationID]*model.Notification, len(d.Notifications))
	for _, n := range d.Notifications {
		c.notifications[n.ID] = n.Clone()
	}
	c.dirty = make(map[string]map[string]struct{})
}

func (c *cache) snapshot() *model.Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d := &model.Dataset{}
	for _, a := range c.actions {
		d.Actions = append(d.Actions, a.Clone())
	}
	for _, n := range c.notes {
		d.Notes = append(d.Notes, n.Clone())
	}
	for _, a := range c.attachments {
		d.Attachments = append(d.Attachments, a.Clone())
	}
	for _, s := range c.stages {
		d.Stages = append(d.Stages, s.Clone())
	}
	for _, e := range c.entities {
		d.Entities = append(d.Entities, e.Clone())
	}
	for _, n := range c.notifications {
		d.Notifications = append(d.Notifications, n.Clone())
	}
	return d
}

func (c *cache) markDirty(collection, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty[collection] == nil {
		c.dirty[collection] = make(map[string]struct{})
	}
	c.dirty[collection][id] = struct{}{}
}

func (c *cache) clearDirty(collection, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.dirty[collection], id)
}

func (c *cache) isDirty(collection, id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.dirty[collection][id]
	return ok
}

func (c *cache) replaceActions(actions []*model.Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = make(map[types.ActionID]*model.Action, len(actions))
	for _, a := range actions {
		c.actions[a.ID] = a.Clone()
	}
	delete(c.dirty, types.CollectionActions)
}

func (c *cache) replaceNotes(notes []*model.ActionNote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = make(map[types.NoteID]*model.ActionNote, len(notes))
	for _, n := range notes {
		c.notes[n.ID] = n.Clone()
	}
	delete(c.dirty, types.CollectionNotes)
}

func (c *cache) replaceAttachments(attachments []*model.Attachment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attachments = make(map[types.AttachmentID]*model.Attachment, len(attachments))
	for _, a := range attachments {
		c.attachments[a.ID] = a.Clone()
	}
	delete(c.dirty, types.CollectionAttachments)
}

func (c *cache) replaceStages(stages []*model.ActionStage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = make(map[types.StageID]*model.ActionStage, len(stages))
	for _, s := range stages {
		c.stages[s.ID] = s.Clone()
	}
	delete(c.dirty, types.CollectionStages)
}

func (c *cache) replaceEntities(kind types.EntityKind, entities []*model.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, e := range c.entities {
		if e.Kind == kind {
			delete(c.entities, id)
		}
	}
	for _, e := range entities {
		c.entities[e.ID] = e.Clone()
	}
	delete(c.dirty, kind.Collection())
}

func (c *cache) replaceNotifications(notifications []*model.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = make(map[types.NotificationID]*model.Notification, len(notifications))
	for _, n := range notifications {
		c.notifications[n.ID] = n.Clone()
	}
	delete(c.dirty, types.CollectionNotifications)
}

func (c *cache) removeNotesByAction(actionID types.ActionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, n := range c.notes {
		if n.ActionID == actionID {
			delete(c.notes, id)
		}
	}
}

func (c *cache) putAction(a *model.Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions[a.ID] = a.Clone()
}

func (c *cache) removeAction(id types.ActionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.actions, id)
}

func (c *cache) getAction(id types.ActionID) (*model.Action, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.actions[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

func (c *cache) listActions() []*model.Action {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*model.Action, 0, len(c.actions))
	for _, a := range c.actions {
		result = append(result, a.Clone())
	}
	return result
}

func (c *cache) putNote(n *model.ActionNote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes[n.ID] = n.Clone()
}

func (c *cache) removeNote(id types.NoteID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.notes, id)
}

func (c *cache) getNote(id types.NoteID) (*model.ActionNote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.notes[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

func (c *cache) listNotesByAction(actionID types.ActionID) []*model.ActionNote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*model.ActionNote, 0)
	for _, n := range c.notes {
		if n.ActionID == actionID {
			result = append(result, n.Clone())
		}
	}
	return result
}

func (c *cache) putAttachment(a *model.Attachment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attachments[a.ID] = a.Clone()
}

func (c *cache) removeAttachment(id types.AttachmentID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.attachments, id)
}

func (c *cache) getAttachment(id types.AttachmentID) (*model.Attachment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.attachments[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

func (c *cache) listAttachmentsByAction(actionID types.ActionID) []*model.Attachment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*model.Attachment, 0)
	for _, a := range c.attachments {
		if a.ActionID == actionID {
			result = append(result, a.Clone())
		}
	}
	return result
}

func (c *cache) putStage(s *model.ActionStage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages[s.ID] = s.Clone()
}

func (c *cache) removeStage(id types.StageID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stages, id)
}

func (c *cache) getStage(id types.StageID) (*model.ActionStage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.stages[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

func (c *cache) listStagesByAction(actionID types.ActionID) []*model.ActionStage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*model.ActionStage, 0)
	for _, s := range c.stages {
		if s.ActionID == actionID {
			result = append(result, s.Clone())
		}
	}
	return result
}

func (c *cache) putEntity(e *model.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities[e.ID] = e.Clone()
}

func (c *cache) removeEntity(id types.EntityID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entities, id)
}

func (c *cache) getEntity(id types.EntityID) (*model.Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entities[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

func (c *cache) listEntities(kind types.EntityKind) []*model.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*model.Entity, 0)
	for _, e := range c.entities {
		if e.Kind == kind {
			result = append(result, e.Clone())
		}
	}
	return result
}

func (c *cache) putNotification(n *model.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications[n.ID] = n.Clone()
}

func (c *cache) removeNotification(id types.NotificationID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.notifications, id)
}

func (c *cache) getNotification(id types.NotificationID) (*model.Notification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.notifications[id]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

func (c *cache) listNotifications() []*model.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*model.Notification, 0, len(c.notifications))
	for _, n := range c.notifications {
		result = append(result, n.Clone())
	}
	return result
}
