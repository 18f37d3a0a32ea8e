package model

// ChangeKind classifies a change event from the remote store
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent is emitted by the change-subscription feed whenever any
// write (local or from another session) touches a collection. ID may be
// empty when the backend cannot attribute the change to a single row; the
// sync engine then falls back to a full-collection reload.
type ChangeEvent struct {
	Collection string
	ID         string
	Kind       ChangeKind
}
