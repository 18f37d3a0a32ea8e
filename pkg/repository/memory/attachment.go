package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

type attachmentRepository struct {
	mu          sync.RWMutex
	attachments map[types.AttachmentID]*model.Attachment
	bus         *eventBus
}

func newAttachmentRepository(bus *eventBus) *attachmentRepository {
	return &attachmentRepository{
		attachments: make(map[types.AttachmentID]*model.Attachment),
		bus:         bus,
	}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error) {
	r.mu.Lock()

	created := attachment.Clone()
	if created.ID == "" {
		created.ID = types.NewAttachmentID()
	}
	created.CreatedAt = time.Now().UTC()

	r.attachments[created.ID] = created
	result := created.Clone()
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionAttachments,
		ID:         created.ID.String(),
		Kind:       model.ChangeCreated,
	})
	return result, nil
}

func (r *attachmentRepository) Get(ctx context.Context, id types.AttachmentID) (*model.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attachment, exists := r.attachments[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "attachment not found", goerr.V("id", id))
	}
	return attachment.Clone(), nil
}

func (r *attachmentRepository) ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Attachment, 0)
	for _, a := range r.attachments {
		if a.ActionID == actionID {
			result = append(result, a.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id types.AttachmentID) error {
	r.mu.Lock()

	if _, exists := r.attachments[id]; !exists {
		r.mu.Unlock()
		return goerr.Wrap(ErrNotFound, "attachment not found", goerr.V("id", id))
	}
	delete(r.attachments, id)
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionAttachments,
		ID:         id.String(),
		Kind:       model.ChangeDeleted,
	})
	return nil
}
