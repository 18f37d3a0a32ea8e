package model

import (
	"time"

	"github.com/actio-dev/actio/pkg/domain/types"
)

// Dataset is a full snapshot of every mirrored collection. It backs the
// local cache snapshot and the fixed seed fallback used when neither the
// remote store nor a snapshot is reachable at startup.
type Dataset struct {
	Actions       []*Action
	Notes         []*ActionNote
	Attachments   []*Attachment
	Stages        []*ActionStage
	Entities      []*Entity
	Notifications []*Notification
}

// Clone creates a deep copy of the dataset
func (d *Dataset) Clone() *Dataset {
	copied := &Dataset{}
	for _, a := range d.Actions {
		copied.Actions = append(copied.Actions, a.Clone())
	}
	for _, n := range d.Notes {
		copied.Notes = append(copied.Notes, n.Clone())
	}
	for _, at := range d.Attachments {
		copied.Attachments = append(copied.Attachments, at.Clone())
	}
	for _, s := range d.Stages {
		copied.Stages = append(copied.Stages, s.Clone())
	}
	for _, e := range d.Entities {
		copied.Entities = append(copied.Entities, e.Clone())
	}
	for _, n := range d.Notifications {
		copied.Notifications = append(copied.Notifications, n.Clone())
	}
	return copied
}

// DefaultSeed returns the built-in fallback dataset: a single company, a
// responsible belonging to it, and a welcome action. It exists only so a
// fresh install with no connectivity still has something to operate on.
func DefaultSeed() *Dataset {
	return NewSeed("Default Company", "Default Responsible",
		"Welcome", "This action was created from the offline seed dataset.")
}

// NewSeed builds a minimal seed dataset from the given names. Deployments
// override the defaults through the application config file.
func NewSeed(companyName, responsibleName, subject, description string) *Dataset {
	now := time.Now().UTC()
	company := &Entity{
		ID:        types.NewEntityID(),
		Kind:      types.KindCompany,
		Name:      companyName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	responsible := &Entity{
		ID:        types.NewEntityID(),
		Kind:      types.KindResponsible,
		Name:      responsibleName,
		CompanyID: company.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	action := &Action{
		ID:            types.NewActionID(),
		Subject:       subject,
		Description:   description,
		Status:        types.ActionStatusPending,
		ResponsibleID: responsible.ID,
		RequesterID:   responsible.ID,
		CompanyID:     company.ID,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, 7),
		CreatedBy:     responsible.ID,
		CreatedByName: responsible.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
		Rev:           1,
	}
	return &Dataset{
		Actions:  []*Action{action},
		Entities: []*Entity{company, responsible},
	}
}
