package types

import "github.com/google/uuid"

// ActionID identifies an action or task row
type ActionID string

// NoteID identifies an action note row
type NoteID string

// AttachmentID identifies an action attachment row
type AttachmentID string

// StageID identifies a stage row
type StageID string

// EntityID identifies a company, client or responsible row
type EntityID string

// NotificationID identifies an internal notification row
type NotificationID string

func (id ActionID) String() string       { return string(id) }
func (id NoteID) String() string         { return string(id) }
func (id AttachmentID) String() string   { return string(id) }
func (id StageID) String() string        { return string(id) }
func (id EntityID) String() string       { return string(id) }
func (id NotificationID) String() string { return string(id) }

// NewActionID generates a new UUID v4 ActionID
func NewActionID() ActionID {
	return ActionID(uuid.New().String())
}

// NewNoteID generates a new UUID v4 NoteID
func NewNoteID() NoteID {
	return NoteID(uuid.New().String())
}

// NewAttachmentID generates a new UUID v4 AttachmentID
func NewAttachmentID() AttachmentID {
	return AttachmentID(uuid.New().String())
}

// NewStageID generates a new UUID v4 StageID
func NewStageID() StageID {
	return StageID(uuid.New().String())
}

// NewEntityID generates a new UUID v4 EntityID
func NewEntityID() EntityID {
	return EntityID(uuid.New().String())
}

// NewNotificationID generates a new UUID v4 NotificationID
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New().String())
}

// IsCanonical reports whether the ID is a canonical identifier. Legacy
// references imported from older systems are arbitrary tokens; canonical
// IDs are always UUIDs.
func (id EntityID) IsCanonical() bool {
	_, err := uuid.Parse(string(id))
	return err == nil
}
