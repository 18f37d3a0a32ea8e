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

type notificationRepository struct {
	mu            sync.RWMutex
	notifications map[types.NotificationID]*model.Notification
	bus           *eventBus
}

func newNotificationRepository(bus *eventBus) *notificationRepository {
	return &notificationRepository{
		notifications: make(map[types.NotificationID]*model.Notification),
		bus:           bus,
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) (*model.Notification, error) {
	r.mu.Lock()

	now := time.Now().UTC()
	created := notification.Clone()
	if created.ID == "" {
		created.ID = types.NewNotificationID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	r.notifications[created.ID] = created
	result := created.Clone()
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionNotifications,
		ID:         created.ID.String(),
		Kind:       model.ChangeCreated,
	})
	return result, nil
}

func (r *notificationRepository) Get(ctx context.Context, id types.NotificationID) (*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notification, exists := r.notifications[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	return notification.Clone(), nil
}

func (r *notificationRepository) List(ctx context.Context) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Notification, 0, len(r.notifications))
	for _, n := range r.notifications {
		result = append(result, n.Clone())
	}
	sortNotifications(result)
	return result, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID types.EntityID) ([]*model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Notification, 0)
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			result = append(result, n.Clone())
		}
	}
	sortNotifications(result)
	return result, nil
}

func (r *notificationRepository) Update(ctx context.Context, notification *model.Notification) (*model.Notification, error) {
	r.mu.Lock()

	existing, exists := r.notifications[notification.ID]
	if !exists {
		r.mu.Unlock()
		return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", notification.ID))
	}

	updated := notification.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.notifications[updated.ID] = updated
	result := updated.Clone()
	r.mu.Unlock()

	r.bus.publish(model.ChangeEvent{
		Collection: types.CollectionNotifications,
		ID:         updated.ID.String(),
		Kind:       model.ChangeUpdated,
	})
	return result, nil
}

func sortNotifications(notifications []*model.Notification) {
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
}
