package model

import (
	"time"

	"github.com/actio-dev/actio/pkg/domain/types"
)

// ReferenceKindAction marks notifications that point back at an action
const ReferenceKindAction = "acao"

// Notification is an internal notification row. It models only the
// internal channel; delivery attempts on other channels are tracked per
// dispatch, not persisted here.
type Notification struct {
	ID            types.NotificationID
	RecipientID   types.EntityID
	SenderID      types.EntityID // optional
	Title         string
	Body          string
	ReferenceID   string // optional, e.g. an action ID
	ReferenceKind string // e.g. ReferenceKindAction
	Read          bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone creates a copy of the notification
func (n *Notification) Clone() *Notification {
	copied := *n
	return &copied
}
