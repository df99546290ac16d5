package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqilarik/xpcache/namespace"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playground.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, EngineXPath, cfg.Engine)
	assert.Equal(t, namespace.DefaultFileName, cfg.Namespaces.Path)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
engine: expr
namespaces:
  path: /etc/xpcache/ns.properties
  watch: true
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, EngineExpr, cfg.Engine)
	assert.Equal(t, "/etc/xpcache/ns.properties", cfg.Namespaces.Path)
	assert.True(t, cfg.Namespaces.Watch)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log_level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, EngineXPath, cfg.Engine)
	assert.Equal(t, namespace.DefaultFileName, cfg.Namespaces.Path)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"engine", "engine: xquery\n", `unknown engine "xquery"`},
		{"log level", "log_level: loud\n", `unknown log level "loud"`},
		{"syntax", "engine: [xpath\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Config{}.SlogLevel())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "ERROR"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "warning"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{LogLevel: "bogus"}.SlogLevel())
}
