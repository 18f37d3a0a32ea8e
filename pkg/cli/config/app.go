package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// AppConfig represents the application configuration
type AppConfig struct {
	Roles []Role `toml:"role"`
	Seed  *Seed  `toml:"seed"`
}

// Seed overrides the built-in offline fallback dataset
type Seed struct {
	Company            string `toml:"company"`
	Responsible        string `toml:"responsible"`
	WelcomeSubject     string `toml:"welcome_subject"`
	WelcomeDescription string `toml:"welcome_description"`
}

// Validate checks if the Seed is valid
func (s *Seed) Validate() error {
	if s.Company == "" {
		return goerr.New("seed company name is required")
	}
	if s.Responsible == "" {
		return goerr.New("seed responsible name is required")
	}
	return nil
}

// Dataset builds the fallback dataset from the configured names
func (s *Seed) Dataset() *model.Dataset {
	subject := s.WelcomeSubject
	if subject == "" {
		subject = "Welcome"
	}
	return model.NewSeed(s.Company, s.Responsible, subject, s.WelcomeDescription)
}

// Role maps a role name to the capability bundle it grants. The gateway in
// front of this service sends the role name as a header; the server expands
// it into the capability set here.
type Role struct {
	ID           string   `toml:"id"`
	Name         string   `toml:"name"`
	Capabilities []string `toml:"capabilities"`
}

var knownCapabilities = map[string]struct{}{
	types.CapabilityCompleteAction.String(): {},
	types.CapabilityApproveAction.String():  {},
	types.CapabilityDeleteAction.String():   {},
	types.CapabilityManageStages.String():   {},
}

// Validate checks if the Role is valid
func (r *Role) Validate() error {
	if r.ID == "" {
		return goerr.New("role ID is required")
	}
	for _, c := range r.Capabilities {
		if _, ok := knownCapabilities[c]; !ok {
			return goerr.New("unknown capability", goerr.V("role", r.ID), goerr.V("capability", c))
		}
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	roleIDs := make(map[string]bool)
	for _, role := range a.Roles {
		if err := role.Validate(); err != nil {
			return goerr.Wrap(err, "invalid role")
		}
		if roleIDs[role.ID] {
			return goerr.New("duplicate role ID", goerr.V("id", role.ID))
		}
		roleIDs[role.ID] = true
	}
	if a.Seed != nil {
		if err := a.Seed.Validate(); err != nil {
			return goerr.Wrap(err, "invalid seed")
		}
	}
	return nil
}

// RoleCapabilities returns the role ID to capability set mapping
func (a *AppConfig) RoleCapabilities() map[string]types.CapabilitySet {
	roles := make(map[string]types.CapabilitySet, len(a.Roles))
	for _, role := range a.Roles {
		caps := make([]types.Capability, 0, len(role.Capabilities))
		for _, c := range role.Capabilities {
			caps = append(caps, types.Capability(c))
		}
		roles[role.ID] = types.NewCapabilitySet(caps...)
	}
	return roles
}

// LoadAppConfig loads the application configuration from a TOML file
func LoadAppConfig(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return &config, nil
}
