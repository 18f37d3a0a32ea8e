package interfaces

import (
	"context"

	"github.com/actio-dev/actio/pkg/domain/model"
)

// Repository defines the interface for the authoritative row store
type Repository interface {
	Action() ActionRepository
	Note() NoteRepository
	Attachment() AttachmentRepository
	Stage() StageRepository
	Entity() EntityRepository
	Notification() NotificationRepository

	// Watch subscribes to change events for a collection. The returned
	// channel is closed when ctx is cancelled or the repository closes.
	Watch(ctx context.Context, collection string) (<-chan model.ChangeEvent, error)

	Close() error
}
