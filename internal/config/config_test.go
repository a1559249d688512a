package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/famgraph/internal/kinship"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"FAMGRAPH_CONFIG", "FAMGRAPH_DB", "FAMGRAPH_LOG_LEVEL",
		"FAMGRAPH_MAX_PARENTS", "FAMGRAPH_MAX_PARTNERS",
	} {
		t.Setenv(k, "")
	}
	// An empty FAMGRAPH_FORBIDDEN_PARTNERS is meaningful, so unset it.
	t.Setenv("FAMGRAPH_FORBIDDEN_PARTNERS", "")
	os.Unsetenv("FAMGRAPH_FORBIDDEN_PARTNERS")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Rules.MaxParents)
	assert.Equal(t, 1, cfg.Rules.MaxPartners)
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout)
	assert.Equal(t, "2006-01-02", cfg.Validator.BirthDateFormat)
	assert.Contains(t, cfg.Rules.Forbidden(), kinship.MothersInLaw)
	assert.Len(t, cfg.Rules.Forbidden(), 10)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "famgraph.yaml")
	yml := `
database:
  path: /tmp/tree.db
  timeout: 250ms
log:
  level: debug
  format: json
rules:
  maxParents: 0
  maxPartners: 3
  forbiddenPartnerCategories: [siblings, cousins]
validator:
  birthDateFormat: "02/01/2006"
  birthDateMin: "01/01/1200"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/tree.db", cfg.Database.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 0, cfg.Rules.MaxParents)
	assert.Equal(t, 3, cfg.Rules.MaxPartners)
	assert.Equal(t, []kinship.Category{kinship.Siblings, kinship.Cousins}, cfg.Rules.Forbidden())
	assert.Equal(t, "01/01/1200", cfg.Validator.BirthDateMin)
}

func TestLoadFileFromEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "famgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  maxPartners: 4\n"), 0o644))
	t.Setenv("FAMGRAPH_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Rules.MaxPartners)
	assert.Equal(t, 2, cfg.Rules.MaxParents)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "famgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  maxParents: 5\n"), 0o644))
	t.Setenv("FAMGRAPH_MAX_PARENTS", "7")
	t.Setenv("FAMGRAPH_DB", "/data/env.db")
	t.Setenv("FAMGRAPH_FORBIDDEN_PARTNERS", " siblings , spouses ,")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Rules.MaxParents)
	assert.Equal(t, "/data/env.db", cfg.Database.Path)
	assert.Equal(t, []string{"siblings", "spouses"}, cfg.Rules.ForbiddenPartnerCategories)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rules: [unclosed"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("FAMGRAPH_MAX_PARTNERS", "many")
	_, err = Load("")
	assert.ErrorContains(t, err, "FAMGRAPH_MAX_PARTNERS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative parents", func(c *Config) { c.Rules.MaxParents = -1 }, "rules.maxParents"},
		{"negative partners", func(c *Config) { c.Rules.MaxPartners = -2 }, "rules.maxPartners"},
		{"unknown category", func(c *Config) { c.Rules.ForbiddenPartnerCategories = []string{"exes"} }, "forbiddenPartnerCategories"},
		{"min date layout", func(c *Config) { c.Validator.BirthDateMin = "1900" }, "birthDateMin"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"no db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}
