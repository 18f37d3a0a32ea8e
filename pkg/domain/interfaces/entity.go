package interfaces

import (
	"context"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// EntityRepository defines the interface for Company/Client/Responsible
// data access, keyed by kind.
type EntityRepository interface {
	Create(ctx context.Context, entity *model.Entity) (*model.Entity, error)
	Get(ctx context.Context, kind types.EntityKind, id types.EntityID) (*model.Entity, error)

	// GetByName performs an exact-match lookup by entity name
	GetByName(ctx context.Context, kind types.EntityKind, name string) (*model.Entity, error)

	// List retrieves all entities of a kind ordered by creation time
	List(ctx context.Context, kind types.EntityKind) ([]*model.Entity, error)
}
