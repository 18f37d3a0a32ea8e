package interfaces

import (
	"context"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// AttachmentRepository defines the interface for Attachment data access
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *model.Attachment) (*model.Attachment, error)
	Get(ctx context.Context, id types.AttachmentID) (*model.Attachment, error)
	ListByAction(ctx context.Context, actionID types.ActionID) ([]*model.Attachment, error)
	Delete(ctx context.Context, id types.AttachmentID) error
}
