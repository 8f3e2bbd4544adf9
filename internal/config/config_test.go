package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default().Agents, cfg.Agents)
	require.Equal(t, Default().APIPort, cfg.APIPort)
	require.True(t, cfg.Torus)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agents: 250
grid_width: 20
grid_height: 20
torus: false
seed: 99
placement: clustered
grid_backing: sparse
tick_interval_ms: 50
api_port: 9090
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 250, cfg.Agents)
	require.Equal(t, 20, cfg.GridWidth)
	require.False(t, cfg.Torus)
	require.Equal(t, int64(99), cfg.Seed)
	require.Equal(t, "clustered", cfg.Placement)
	require.Equal(t, "sparse", cfg.Backing)
	require.Equal(t, 50*time.Millisecond, cfg.TickInterval())
	require.Equal(t, 9090, cfg.APIPort)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WEALTHSIM_ADMIN_KEY", "hunter2")
	t.Setenv("WEALTHSIM_PORT", "7070")
	t.Setenv("WEALTHSIM_DB", "/tmp/override.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "hunter2", cfg.Env.AdminKey)
	require.Equal(t, 7070, cfg.APIPort)
	require.Equal(t, "/tmp/override.db", cfg.DBPath)
}

func TestValidate(t *testing.T) {
	base := Default()

	cfg := base
	cfg.Agents = 0
	require.Error(t, cfg.Validate())

	cfg = base
	cfg.Agents = 200000
	require.Error(t, cfg.Validate())

	cfg = base
	cfg.GridWidth = 0
	require.Error(t, cfg.Validate())

	cfg = base
	cfg.Placement = "spiral"
	require.Error(t, cfg.Validate())

	cfg = base
	cfg.Backing = "btree"
	require.Error(t, cfg.Validate())

	cfg = base
	cfg.TickIntervalMs = 0
	require.Error(t, cfg.Validate())

	cfg = base
	cfg.APIPort = 70000
	require.Error(t, cfg.Validate())

	require.NoError(t, base.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agents: [not an int"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
