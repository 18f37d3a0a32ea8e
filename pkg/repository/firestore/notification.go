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

type notificationRepository struct {
	fs *Firestore
}

func newNotificationRepository(fs *Firestore) *notificationRepository {
	return &notificationRepository{fs: fs}
}

func (r *notificationRepository) col() *firestore.CollectionRef {
	return r.fs.collection(types.CollectionNotifications)
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) (*model.Notification, error) {
	now := time.Now().UTC()
	created := notification.Clone()
	if created.ID == "" {
		created.ID = types.NewNotificationID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.col().Doc(created.ID.String()).Set(ctx, created); err != nil {
		return nil, wrapStoreErr(err, "failed to create notification", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *notificationRepository) Get(ctx context.Context, id types.NotificationID) (*model.Notification, error) {
	docSnap, err := r.col().Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return nil, wrapStoreErr(err, "failed to get notification", goerr.V("id", id))
	}

	var n model.Notification
	if err := docSnap.DataTo(&n); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("id", id))
	}

	return &n, nil
}

func (r *notificationRepository) List(ctx context.Context) ([]*model.Notification, error) {
	return r.query(ctx, r.col().Query)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID types.EntityID) ([]*model.Notification, error) {
	notifications, err := r.query(ctx, r.col().Where("RecipientID", "==", recipientID.String()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications by recipient",
			goerr.V("recipient_id", recipientID))
	}
	return notifications, nil
}

func (r *notificationRepository) Update(ctx context.Context, notification *model.Notification) (*model.Notification, error) {
	docRef := r.col().Doc(notification.ID.String())

	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", notification.ID))
		}
		return nil, wrapStoreErr(err, "failed to check notification existence", goerr.V("id", notification.ID))
	}

	updated := notification.Clone()
	updated.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, updated); err != nil {
		return nil, wrapStoreErr(err, "failed to update notification", goerr.V("id", notification.ID))
	}

	return updated, nil
}

func (r *notificationRepository) query(ctx context.Context, q firestore.Query) ([]*model.Notification, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	notifications := make([]*model.Notification, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapStoreErr(err, "failed to iterate notifications")
		}

		var n model.Notification
		if err := docSnap.DataTo(&n); err != nil {
			return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("doc_id", docSnap.Ref.ID))
		}

		notifications = append(notifications, &n)
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}
