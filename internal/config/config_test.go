package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DevLab-Dome/kross-dashboard-2026/internal/errors"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "filesystem", cfg.Storage.Backend)
	assert.Equal(t, DefaultDataRoot, cfg.Storage.Root)
	assert.Len(t, cfg.Properties, 3)
	assert.NoError(t, cfg.validate())
}

func TestLoadFile_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	assert.Equal(t, Default().Cache.TTL, cfg.Cache.TTL)
}

func TestLoadFile_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
storage:
  backend: memory
cache:
  ttl: 2m
  key_prefix: "test:"
properties:
  - label: Villa Rosa
    folder: Villa_Rosa
    rooms: 7
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "unset keys keep defaults")
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "test:", cfg.Cache.KeyPrefix)
	require.Len(t, cfg.Properties, 1)
	assert.Equal(t, domain.Property{Label: "Villa Rosa", Folder: "Villa_Rosa", Rooms: 7}, cfg.Properties[0])
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("KROSS_SERVER_PORT", "7070")
	t.Setenv("KROSS_CACHE_TTL", "30s")
	t.Setenv("KROSS_LOGGING_LEVEL", "debug")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"redis without addr", "cache:\n  backend: redis\n"},
		{"unknown cache backend", "cache:\n  backend: memcached\n"},
		{"gcs without bucket", "storage:\n  backend: gcs\n"},
		{"unknown storage backend", "storage:\n  backend: s3\n"},
		{"duplicate folder", "properties:\n  - {label: A, folder: X}\n  - {label: B, folder: X}\n"},
		{"malformed yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
		})
	}
}

func TestLoadFile_MissingExplicitPath(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}

func TestStorageOptions(t *testing.T) {
	s := StorageConfig{Backend: "gcs", Bucket: "b", Root: "r", CredentialsFile: "c.json", Endpoint: "http://e"}
	o := s.Options()

	assert.Equal(t, "gcs", o.Backend)
	assert.Equal(t, "b", o.Bucket)
	assert.Equal(t, "r", o.Root)
	assert.Equal(t, "c.json", o.CredentialsFile)
	assert.Equal(t, "http://e", o.Endpoint)
}
