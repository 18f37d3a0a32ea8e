package types

// Capability is a named permission flag evaluated per operation
type Capability string

const (
	CapabilityCompleteAction Capability = "complete_action"
	CapabilityApproveAction  Capability = "approve_action"
	CapabilityDeleteAction   Capability = "delete_action"
	CapabilityManageStages   Capability = "manage_stages"
)

// String returns the string representation of the capability
func (c Capability) String() string {
	return string(c)
}

// CapabilitySet is a set of capabilities held by an actor. It is resolved
// once by the caller (the permission policy itself lives outside this
// service) and evaluated locally before any remote write.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from the given capabilities
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether the capability is in the set
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// List returns the capabilities in the set
func (s CapabilitySet) List() []Capability {
	caps := make([]Capability, 0, len(s))
	for c := range s {
		caps = append(caps, c)
	}
	return caps
}
