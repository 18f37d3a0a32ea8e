package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/actio-dev/actio/pkg/domain/types"
)

func TestActionStatus(t *testing.T) {
	t.Run("all statuses are valid", func(t *testing.T) {
		for _, status := range types.AllActionStatuses() {
			gt.B(t, status.IsValid()).True()
		}
	})

	t.Run("parse valid status", func(t *testing.T) {
		status, err := types.ParseActionStatus("concluido")
		gt.NoError(t, err).Required()
		gt.Value(t, status).Equal(types.ActionStatusCompleted)
	})

	t.Run("parse invalid status fails", func(t *testing.T) {
		_, err := types.ParseActionStatus("done")
		gt.Value(t, err).NotNil()
	})

	t.Run("empty status is invalid", func(t *testing.T) {
		gt.B(t, types.ActionStatus("").IsValid()).False()
	})
}

func TestCapabilitySet(t *testing.T) {
	t.Run("has reports membership", func(t *testing.T) {
		set := types.NewCapabilitySet(types.CapabilityCompleteAction, types.CapabilityApproveAction)
		gt.B(t, set.Has(types.CapabilityCompleteAction)).True()
		gt.B(t, set.Has(types.CapabilityApproveAction)).True()
		gt.B(t, set.Has(types.CapabilityDeleteAction)).False()
	})

	t.Run("empty set has nothing", func(t *testing.T) {
		set := types.NewCapabilitySet()
		gt.B(t, set.Has(types.CapabilityCompleteAction)).False()
	})
}

func TestEntityKind(t *testing.T) {
	t.Run("parse valid kind", func(t *testing.T) {
		kind, err := types.ParseEntityKind("company")
		gt.NoError(t, err).Required()
		gt.Value(t, kind).Equal(types.KindCompany)
	})

	t.Run("parse invalid kind fails with a validation error", func(t *testing.T) {
		_, err := types.ParseEntityKind("team")
		gt.Value(t, err).NotNil()
		gt.B(t, types.IsValidation(err)).True()
	})
}

func TestEntityID(t *testing.T) {
	t.Run("generated IDs are canonical", func(t *testing.T) {
		gt.B(t, types.NewEntityID().IsCanonical()).True()
	})

	t.Run("legacy tokens are not canonical", func(t *testing.T) {
		gt.B(t, types.EntityID("legacy-42").IsCanonical()).False()
		gt.B(t, types.EntityID("Acme Corp").IsCanonical()).False()
	})
}
