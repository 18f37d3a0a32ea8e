package types

import "github.com/m-mizutani/goerr/v2"

// EntityKind distinguishes the referenced entity collections
type EntityKind string

const (
	KindCompany     EntityKind = "company"
	KindClient      EntityKind = "client"
	KindResponsible EntityKind = "responsible"
)

// AllEntityKinds returns all entity kinds
func AllEntityKinds() []EntityKind {
	return []EntityKind{KindCompany, KindClient, KindResponsible}
}

// IsValid checks if the entity kind is valid
func (k EntityKind) IsValid() bool {
	switch k {
	case KindCompany, KindClient, KindResponsible:
		return true
	default:
		return false
	}
}

// String returns the string representation of the entity kind
func (k EntityKind) String() string {
	return string(k)
}

// Collection returns the remote collection name for the kind
func (k EntityKind) Collection() string {
	switch k {
	case KindCompany:
		return CollectionCompanies
	case KindClient:
		return CollectionClients
	case KindResponsible:
		return CollectionResponsibles
	default:
		return ""
	}
}

// ParseEntityKind parses a string into an EntityKind
func ParseEntityKind(s string) (EntityKind, error) {
	kind := EntityKind(s)
	if !kind.IsValid() {
		return "", goerr.New("invalid entity kind", goerr.T(ErrTagValidation), goerr.V("kind", s))
	}
	return kind, nil
}
