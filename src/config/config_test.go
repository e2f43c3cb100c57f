package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenDefaultFileMissing(t *testing.T) {
	{
		dir := t.TempDir()
		prev, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(prev) })
	}

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "docker", cfg.Docker.Binary)
	assert.Equal(t, "DOCKER_BUILD_ARG_", cfg.Build.ArgPrefix)
	assert.Equal(t, DefaultCacheVariables, cfg.Cache.Variables)
	assert.Equal(t, 1, cfg.Cache.Concurrency)
	assert.False(t, cfg.Labels.Revision)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, ".docker-build.yml", `
docker:
  binary: /usr/local/bin/docker
cache:
  variables: [CI_REGISTRY_IMAGE, MIRROR_IMAGE]
  concurrency: 2
labels:
  revision: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/docker", cfg.Docker.Binary)
	assert.Equal(t, []string{"CI_REGISTRY_IMAGE", "MIRROR_IMAGE"}, cfg.Cache.Variables)
	assert.Equal(t, 2, cfg.Cache.Concurrency)
	assert.True(t, cfg.Labels.Revision)
	assert.Equal(t, "DOCKER_BUILD_ARG_", cfg.Build.ArgPrefix, "unset keys keep defaults")
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "docker-build.toml", `
[build]
arg_prefix = "BUILD_ARG_"

[cache]
variables = ["REGISTRY_IMAGE"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "BUILD_ARG_", cfg.Build.ArgPrefix)
	assert.Equal(t, []string{"REGISTRY_IMAGE"}, cfg.Cache.Variables)
	assert.Equal(t, 1, cfg.Cache.Concurrency)
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := writeConfig(t, "bad.yml", "cache: [unclosed\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty binary", func(c *Config) { c.Docker.Binary = " " }, "docker.binary"},
		{"empty prefix", func(c *Config) { c.Build.ArgPrefix = "" }, "build.arg_prefix"},
		{"bad prefix", func(c *Config) { c.Build.ArgPrefix = "1-BAD" }, "build.arg_prefix"},
		{"too many variables", func(c *Config) { c.Cache.Variables = []string{"A", "B", "C", "D", "E"} }, "at most 4"},
		{"bad variable", func(c *Config) { c.Cache.Variables = []string{"NOT-VALID"} }, "cache.variables[0]"},
		{"zero concurrency", func(c *Config) { c.Cache.Concurrency = 0 }, "cache.concurrency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
