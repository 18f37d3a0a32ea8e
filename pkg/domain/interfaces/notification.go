package interfaces

import (
	"context"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// NotificationRepository defines the interface for internal notification rows
type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) (*model.Notification, error)
	Get(ctx context.Context, id types.NotificationID) (*model.Notification, error)
	List(ctx context.Context) ([]*model.Notification, error)
	ListByRecipient(ctx context.Context, recipientID types.EntityID) ([]*model.Notification, error)
	Update(ctx context.Context, notification *model.Notification) (*model.Notification, error)
}
