package model

import (
	"time"

	"github.com/actio-dev/actio/pkg/domain/types"
)

// Entity is a referenced company, client or responsible. The three kinds
// share a shape; each kind is stored in its own remote collection.
type Entity struct {
	ID        types.EntityID
	Kind      types.EntityKind
	Name      string
	CompanyID types.EntityID // empty for companies themselves
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone creates a copy of the entity
func (e *Entity) Clone() *Entity {
	copied := *e
	return &copied
}

// EntityRef is a loose reference to an entity: a legacy or canonical ID,
// a bare name, or both. The resolver maps it to a canonical stored row.
type EntityRef struct {
	ID   types.EntityID
	Name string
}
