package model

import (
	"time"

	"github.com/actio-dev/actio/pkg/domain/types"
)

// ActionNote is a comment attached to an action. Notes are soft-deleted:
// the row is never physically removed, IsDeleted excludes it from every
// visible projection.
type ActionNote struct {
	ID        types.NoteID
	ActionID  types.ActionID
	Content   string
	CreatedBy types.EntityID
	CreatedAt time.Time
	IsDeleted bool
}

// Clone creates a copy of the note
func (n *ActionNote) Clone() *ActionNote {
	copied := *n
	return &copied
}

// VisibleNotes filters out soft-deleted notes
func VisibleNotes(notes []*ActionNote) []*ActionNote {
	visible := make([]*ActionNote, 0, len(notes))
	for _, n := range notes {
		if !n.IsDeleted {
			visible = append(visible, n)
		}
	}
	return visible
}
