package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"address": ":9000"},
		"database": {"driver": "memory", "port": 3307},
		"contacts": {"pageSize": 25}
	}`), 0o600))

	t.Setenv("APP_CONFIG", path)
	t.Setenv("DB_PORT", "3310")
	t.Setenv("SESSION_EXPIRATION", "2h")
	t.Setenv("ALLOWED_METHODS", "GET, POST")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	// 文件覆盖默认值
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Contacts.PageSize)
	// 环境变量覆盖文件
	assert.Equal(t, 3310, cfg.Database.Port)
	assert.Equal(t, 2*time.Hour, cfg.Middleware.Session.ExpireDuration)
	assert.Equal(t, []string{"GET", "POST"}, cfg.Middleware.Security.AllowedMethods)
	assert.True(t, cfg.IsProd())
	// 未设置的项保持默认
	assert.Equal(t, "session", cfg.Middleware.Session.CookieName)
}

func TestLoadBadFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	t.Setenv("APP_CONFIG", path)

	cfg := Load()
	assert.Equal(t, Default().Server.Address, cfg.Server.Address)
	assert.Equal(t, 10, cfg.Contacts.PageSize)
}

func TestDSN(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "root:root@tcp(localhost:3306)/contacts?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())

	cfg.Database.UseUnixSock = true
	cfg.Database.Host = "/var/run/mysqld/mysqld.sock"
	assert.Equal(t, "root:root@unix(/var/run/mysqld/mysqld.sock)/contacts?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}

func TestHlogLevel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, hlog.LevelInfo, cfg.HlogLevel())
	cfg.Log.Level = "debug"
	assert.Equal(t, hlog.LevelDebug, cfg.HlogLevel())
	cfg.Log.Level = "bogus"
	assert.Equal(t, hlog.LevelInfo, cfg.HlogLevel())
}

func TestSplitEnvList(t *testing.T) {
	assert.Nil(t, splitEnvList(""))
	assert.Equal(t, []string{"a", "b"}, splitEnvList(" a ,, b"))
}
