package resolver

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/interfaces"
	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/utils/logging"
)

// Service maps loose entity references (legacy IDs, bare names) to
// canonical stored entities. Resolution is idempotent: the same input
// always lands on the same stored row, creating it at most once.
type Service struct {
	repo interfaces.Repository

	// mu serializes lookup-or-create per entity kind so concurrent
	// resolutions of the same name cannot create duplicate rows.
	mu map[types.EntityKind]*sync.Mutex
}

func New(repo interfaces.Repository) *Service {
	mu := make(map[types.EntityKind]*sync.Mutex, len(types.AllEntityKinds()))
	for _, kind := range types.AllEntityKinds() {
		mu[kind] = &sync.Mutex{}
	}
	return &Service{
		repo: repo,
		mu:   mu,
	}
}

// Resolve returns the canonical entity ID for a reference.
//
// A canonical ID passes through unchanged. A reference carrying a name is
// resolved by exact name match, reusing the existing row (oldest wins) or
// creating one. A reference with no name, whether empty or a legacy token
// that is not canonical, falls back to the oldest entity of the kind.
func (s *Service) Resolve(ctx context.Context, kind types.EntityKind, ref model.EntityRef) (types.EntityID, error) {
	if !kind.IsValid() {
		return "", goerr.New("invalid entity kind", goerr.T(types.ErrTagValidation),
			goerr.V("kind", kind))
	}

	if ref.ID != "" && ref.ID.IsCanonical() {
		return ref.ID, nil
	}

	if ref.Name == "" {
		return s.fallback(ctx, kind)
	}

	name := ref.Name

	mu := s.mu[kind]
	mu.Lock()
	defer mu.Unlock()

	entity, err := s.repo.Entity().GetByName(ctx, kind, name)
	if err == nil {
		return entity.ID, nil
	}
	if !types.IsNotFound(err) {
		return "", goerr.Wrap(err, "failed to look up entity by name",
			goerr.V("kind", kind), goerr.V("name", name))
	}

	created, err := s.repo.Entity().Create(ctx, &model.Entity{
		Kind: kind,
		Name: name,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create entity for reference",
			goerr.V("kind", kind), goerr.V("name", name))
	}

	logging.From(ctx).Info("created entity for unresolved reference",
		"kind", kind.String(), "name", name, "id", created.ID.String())
	return created.ID, nil
}

// fallback picks the oldest entity of the kind when the reference carries
// no name to resolve by. Inherited rows predate referential integrity, so
// legacy actions may reference stale tokens or nothing at all.
func (s *Service) fallback(ctx context.Context, kind types.EntityKind) (types.EntityID, error) {
	entities, err := s.repo.Entity().List(ctx, kind)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list entities for fallback", goerr.V("kind", kind))
	}
	if len(entities) == 0 {
		return "", goerr.New("no entity available to resolve reference",
			goerr.T(types.ErrTagValidation), goerr.V("kind", kind))
	}

	logging.From(ctx).Warn("unresolvable entity reference, falling back to oldest entity",
		"kind", kind.String(), "id", entities[0].ID.String())
	return entities[0].ID, nil
}
