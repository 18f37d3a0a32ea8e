package memory

import (
	"context"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
	"github.com/actio-dev/actio/pkg/domain/model"
)

// Memory is an in-memory repository backend for development and tests.
// It emits the same change events as the Firestore backend so the sync
// engine behaves identically against both.
type Memory struct {
	bus           *eventBus
	action        *actionRepository
	note          *noteRepository
	attachment    *attachmentRepository
	stage         *stageRepository
	entity        *entityRepository
	notifications *notificationRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	bus := newEventBus()
	return &Memory{
		bus:           bus,
		action:        newActionRepository(bus),
		note:          newNoteRepository(bus),
		attachment:    newAttachmentRepository(bus),
		stage:         newStageRepository(bus),
		entity:        newEntityRepository(bus),
		notifications: newNotificationRepository(bus),
	}
}

func (m *Memory) Action() interfaces.ActionRepository {
	return m.action
}

func (m *Memory) Note() interfaces.NoteRepository {
	return m.note
}

func (m *Memory) Attachment() interfaces.AttachmentRepository {
	return m.attachment
}

func (m *Memory) Stage() interfaces.StageRepository {
	return m.stage
}

func (m *Memory) Entity() interfaces.EntityRepository {
	return m.entity
}

func (m *Memory) Notification() interfaces.NotificationRepository {
	return m.notifications
}

func (m *Memory) Watch(ctx context.Context, collection string) (<-chan model.ChangeEvent, error) {
	return m.bus.subscribe(ctx, collection), nil
}

func (m *Memory) Close() error {
	m.bus.close()
	return nil
}
