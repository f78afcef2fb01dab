package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/storage"
	pkgconfig "github.com/starford/folio/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled"}
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.AuthEnabled())
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, AuthModeDisabled, cfg.Mode)
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.AuthEnabled())

	cfg.Token = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is empty")
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	assert.Error(t, cfg.Validate())
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.App.HTTP.Address())
	assert.Equal(t, storage.DriverFS, cfg.Storage.Driver)
}

func TestStorageConfig_Validate(t *testing.T) {
	cfg := StorageConfig{Driver: "floppy", Path: "x", Key: "k"}
	assert.Error(t, cfg.Validate())

	cfg = StorageConfig{Driver: storage.DriverSQLite, Key: "k"}
	assert.Error(t, cfg.Validate(), "path is required for on-disk drivers")

	cfg = StorageConfig{Driver: storage.DriverMemory, Key: "k"}
	assert.NoError(t, cfg.Validate())

	cfg = StorageConfig{Driver: storage.DriverMemory, Key: "k", QuotaBytes: -1}
	assert.Error(t, cfg.Validate())

	cfg = StorageConfig{Driver: storage.DriverMemory}
	assert.Error(t, cfg.Validate())
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	assert.Error(t, cfg.Validate())
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	t.Setenv("FOLIO_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  http:
    port: 9090
  events:
    tree_throttle: 500ms
storage:
  driver: sqlite
  path: /tmp/folio
  quota_bytes: 5242880
auth:
  mode: token
  token: ${FOLIO_TEST_TOKEN}
`), 0o644))

	cfg := NewDefaultConfig()
	require.NoError(t, pkgconfig.Load(path, cfg))
	assert.Equal(t, 9090, cfg.App.HTTP.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.App.Events.TreeThrottle)
	assert.Equal(t, 10*time.Second, cfg.App.HTTP.ShutdownTimeout)
	assert.Equal(t, storage.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 5242880, cfg.Storage.QuotaBytes)
	assert.Equal(t, "notes-app-data", cfg.Storage.Key)
	assert.Equal(t, "s3cret", cfg.Auth.Token)
}
