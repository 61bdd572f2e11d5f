package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/layer-3/sigil/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Auth.ChallengeTTL)
	assert.False(t, cfg.Auth.Ethereum.LenientRecovery)
	assert.False(t, cfg.Replay.Enabled)
	assert.Equal(t, "memory", cfg.Replay.Backend)
	assert.Equal(t, "gochannel", cfg.Events.Backend)
	assert.False(t, cfg.NeedsRedis())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigil.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8088
auth:
  challenge_ttl: 90s
  ethereum:
    lenient_recovery: true
replay:
  enabled: true
  backend: redis
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, 90*time.Second, cfg.Auth.ChallengeTTL)
	assert.True(t, cfg.Auth.Ethereum.LenientRecovery)
	assert.True(t, cfg.NeedsRedis())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SIGIL_SERVER_PORT", "7000")
	t.Setenv("SIGIL_AUTH_CHALLENGE_TTL", "2m")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Auth.ChallengeTTL)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigil.yaml")
	require.NoError(t, os.WriteFile(path, []byte("replay:\n  backend: etcd\n"), 0o600))

	_, err := config.Load(path)
	assert.Error(t, err)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
