package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborloop/demoday/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "bitable", cfg.Store.Backend)
	require.Equal(t, 500, cfg.Store.Bitable.PageSize)
	require.Equal(t, 4, cfg.Store.Bitable.MaxTries)
	require.Equal(t, time.Minute, cfg.Stage.CacheTTL())
	require.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL())
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEMODAY_SERVER_PORT", "9090")
	t.Setenv("DEMODAY_STORE_BACKEND", "sqlite")
	t.Setenv("DEMODAY_SQLITE_PATH", "/tmp/event.db")
	t.Setenv("DEMODAY_STAGE_CACHE_TTL_SECONDS", "5")
	t.Setenv("DEMODAY_TABLE_PROJECTS", "tblProjects")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Store.Backend)
	require.Equal(t, "/tmp/event.db", cfg.Store.SQLite.Path)
	require.Equal(t, 5*time.Second, cfg.Stage.CacheTTL())
	require.Equal(t, "tblProjects", cfg.Store.Bitable.Tables.Projects)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7070
store:
  backend: sqlite
  bitable:
    app_id: cli_test
    tables:
      investments: tblInv
auth:
  secret: topsecret
`), 0o644))
	t.Setenv("DEMODAY_CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Store.Backend)
	require.Equal(t, "cli_test", cfg.Store.Bitable.AppID)
	require.Equal(t, "tblInv", cfg.Store.Bitable.Tables.Investments)
	require.Equal(t, "topsecret", cfg.Auth.Secret)
	// Untouched sections keep their defaults.
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o644))
	t.Setenv("DEMODAY_CONFIG_PATH", path)
	t.Setenv("DEMODAY_SERVER_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
}
