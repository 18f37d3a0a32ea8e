package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// ListNotifications lists a recipient's internal notifications, newest
// first.
func (u *UseCases) ListNotifications(ctx context.Context, recipientID types.EntityID) ([]*model.Notification, error) {
	return u.engine.ListNotificationsByRecipient(ctx, recipientID)
}

// UnreadCount returns the number of unread notifications for a recipient
func (u *UseCases) UnreadCount(ctx context.Context, recipientID types.EntityID) (int, error) {
	return u.engine.CountUnread(ctx, recipientID)
}

// MarkRead flags a notification as read. Marking twice is a no-op.
func (u *UseCases) MarkRead(ctx context.Context, id types.NotificationID) (*model.Notification, error) {
	return u.setRead(ctx, id, true)
}

// MarkUnread returns a notification to the unread state
func (u *UseCases) MarkUnread(ctx context.Context, id types.NotificationID) (*model.Notification, error) {
	return u.setRead(ctx, id, false)
}

func (u *UseCases) setRead(ctx context.Context, id types.NotificationID, read bool) (*model.Notification, error) {
	notifications, err := u.engine.ListNotifications(ctx)
	if err != nil {
		return nil, err
	}

	for _, n := range notifications {
		if n.ID != id {
			continue
		}
		if n.Read == read {
			return n, nil
		}
		n.Read = read
		return u.engine.UpdateNotification(ctx, n)
	}

	return nil, goerr.Wrap(ErrNotificationNotFound, "", goerr.V("id", id))
}
