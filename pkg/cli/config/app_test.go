package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/actio-dev/actio/pkg/cli/config"
	"github.com/actio-dev/actio/pkg/domain/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600)).Required()
	return path
}

func TestLoadAppConfig(t *testing.T) {
	t.Run("loads roles with capability bundles", func(t *testing.T) {
		path := writeConfig(t, `
[[role]]
id = "manager"
name = "Manager"
capabilities = ["complete_action", "approve_action", "delete_action", "manage_stages"]

[[role]]
id = "member"
name = "Member"
capabilities = ["complete_action"]
`)

		cfg, err := config.LoadAppConfig(path)
		gt.NoError(t, err).Required()
		gt.Array(t, cfg.Roles).Length(2)

		roles := cfg.RoleCapabilities()
		gt.B(t, roles["manager"].Has(types.CapabilityApproveAction)).True()
		gt.B(t, roles["member"].Has(types.CapabilityApproveAction)).False()
		gt.B(t, roles["member"].Has(types.CapabilityCompleteAction)).True()
	})

	t.Run("seed section builds the fallback dataset", func(t *testing.T) {
		path := writeConfig(t, `
[seed]
company = "Acme Corp"
responsible = "Alice"
welcome_subject = "Bem-vindo"
`)

		cfg, err := config.LoadAppConfig(path)
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.Seed).NotNil().Required()

		dataset := cfg.Seed.Dataset()
		gt.Array(t, dataset.Actions).Length(1)
		gt.Value(t, dataset.Actions[0].Subject).Equal("Bem-vindo")
		gt.Array(t, dataset.Entities).Length(2)
		gt.Value(t, dataset.Entities[0].Name).Equal("Acme Corp")
	})

	t.Run("seed without a company fails", func(t *testing.T) {
		path := writeConfig(t, `
[seed]
responsible = "Alice"
`)

		_, err := config.LoadAppConfig(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("rejects unknown capabilities", func(t *testing.T) {
		path := writeConfig(t, `
[[role]]
id = "manager"
capabilities = ["launch_rockets"]
`)

		_, err := config.LoadAppConfig(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("rejects duplicate role IDs", func(t *testing.T) {
		path := writeConfig(t, `
[[role]]
id = "manager"

[[role]]
id = "manager"
`)

		_, err := config.LoadAppConfig(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := config.LoadAppConfig(filepath.Join(t.TempDir(), "absent.toml"))
		gt.Value(t, err).NotNil()
	})
}
