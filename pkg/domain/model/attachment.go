package model

import (
	"time"

	"github.com/actio-dev/actio/pkg/domain/types"
)

// Attachment references a stored file for an action. Only the storage path
// is kept here; bytes live behind the blob interface.
type Attachment struct {
	ID         types.AttachmentID
	ActionID   types.ActionID
	Path       string
	FileName   string
	UploadedBy types.EntityID
	Order      int
	CreatedAt  time.Time
}

// Clone creates a copy of the attachment
func (a *Attachment) Clone() *Attachment {
	copied := *a
	return &copied
}
