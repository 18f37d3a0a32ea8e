package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// Action represents a unit of work with a status lifecycle. The same
// structure also represents task leaf nodes inside a stage tree
// (IsSubtask set, ParentActionID pointing at the owning root action).
type Action struct {
	ID            types.ActionID
	Subject       string
	Description   string
	Status        types.ActionStatus
	ResponsibleID types.EntityID
	RequesterID   types.EntityID
	ClientID      types.EntityID // optional
	CompanyID     types.EntityID
	StartDate     time.Time
	EndDate       time.Time
	CompletedAt   *time.Time
	Approved      *bool
	ApprovedAt    *time.Time

	IsSubtask      bool
	ParentActionID types.ActionID // set when the action is a task under a stage
	StageID        types.StageID
	Order          int // sibling position within the stage

	CreatedBy     types.EntityID
	CreatedByName string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Rev is incremented on every successful remote write. Stores reject
	// updates whose Rev does not match the stored row.
	Rev int64

	// Two-phase delete: MarkForDeletion sets PendingDelete, the purge pass
	// garbage-collects dependents and removes the row.
	PendingDelete bool
	DeletedAt     *time.Time
}

// Validate checks required references before any remote call is issued
func (a *Action) Validate() error {
	if a.Subject == "" {
		return goerr.New("action subject is required", goerr.T(types.ErrTagValidation))
	}
	if a.CompanyID == "" {
		return goerr.New("action company is required", goerr.T(types.ErrTagValidation),
			goerr.V("subject", a.Subject))
	}
	if a.Status != "" && !a.Status.IsValid() {
		return goerr.New("invalid action status", goerr.T(types.ErrTagValidation),
			goerr.V("status", a.Status))
	}
	if !a.EndDate.IsZero() && !a.StartDate.IsZero() && a.EndDate.Before(a.StartDate) {
		return goerr.New("action end date precedes start date", goerr.T(types.ErrTagValidation),
			goerr.V("start", a.StartDate), goerr.V("end", a.EndDate))
	}
	return nil
}

// Overdue reports whether the action has passed its end date without
// being completed. Pending-delete rows are never swept.
func (a *Action) Overdue(now time.Time) bool {
	if a.PendingDelete || a.EndDate.IsZero() {
		return false
	}
	if a.Status == types.ActionStatusCompleted || a.Status == types.ActionStatusDelayed {
		return false
	}
	return a.EndDate.Before(now)
}

// Clone creates a deep copy of the action
func (a *Action) Clone() *Action {
	copied := *a
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		copied.CompletedAt = &t
	}
	if a.Approved != nil {
		b := *a.Approved
		copied.Approved = &b
	}
	if a.ApprovedAt != nil {
		t := *a.ApprovedAt
		copied.ApprovedAt = &t
	}
	if a.DeletedAt != nil {
		t := *a.DeletedAt
		copied.DeletedAt = &t
	}
	return &copied
}
