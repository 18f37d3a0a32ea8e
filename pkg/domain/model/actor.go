package model

import "github.com/actio-dev/actio/pkg/domain/types"

// Actor is the authenticated caller of an operation. Authentication and
// permission policy live outside this service; the capability set arrives
// already resolved and is evaluated locally per operation.
type Actor struct {
	ID           types.EntityID
	Name         string
	Capabilities types.CapabilitySet
}

// Can reports whether the actor holds the capability
func (a *Actor) Can(c types.Capability) bool {
	if a == nil {
		return false
	}
	return a.Capabilities.Has(c)
}
