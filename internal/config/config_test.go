package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/promowizard/internal/config"
	"github.com/aretw0/promowizard/pkg/adapters/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := config.LoadWithEnv("", envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, config.DriverMemory, cfg.Persistence.Driver)
	assert.Equal(t, 5, cfg.Catalog.PageSize)
	assert.Equal(t, remote.DefaultFields, cfg.Catalog.Fields)
	assert.Equal(t, 30*time.Second, cfg.Wizard.LockTTL)
	assert.False(t, cfg.Wizard.StrictSubmit)
	assert.Zero(t, cfg.Submit.Timeout, "submissions are not cut short by default")
	assert.NotZero(t, cfg.Catalog.Timeout)
}

func TestFileFormats(t *testing.T) {
	cases := map[string]string{
		"config.yaml": `
log:
  level: debug
catalog:
  base_url: https://catalog.example.com
  page_size: 10
  fields:
    id: product_id
  headers:
    Authorization: Bearer abc
persistence:
  driver: redis
  ttl: 1h
  redis:
    addr: redis:6379
    db: 2
wizard:
  strict_submit: true
  lock_ttl: 45
`,
		"config.toml": `
[log]
level = "debug"

[catalog]
base_url = "https://catalog.example.com"
page_size = 10

[catalog.fields]
id = "product_id"

[catalog.headers]
Authorization = "Bearer abc"

[persistence]
driver = "redis"
ttl = "1h"

[persistence.redis]
addr = "redis:6379"
db = 2

[wizard]
strict_submit = true
lock_ttl = 45
`,
		"config.json": `{
  "log": {"level": "debug"},
  "catalog": {
    "base_url": "https://catalog.example.com",
    "page_size": 10,
    "fields": {"id": "product_id"},
    "headers": {"Authorization": "Bearer abc"}
  },
  "persistence": {"driver": "redis", "ttl": "1h", "redis": {"addr": "redis:6379", "db": 2}},
  "wizard": {"strict_submit": true, "lock_ttl": 45}
}`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := config.LoadWithEnv(writeFile(t, name, content), envOf(nil))
			require.NoError(t, err)

			assert.Equal(t, "debug", cfg.Log.Level)
			assert.Equal(t, "text", cfg.Log.Format, "unset keys keep their defaults")
			assert.Equal(t, "https://catalog.example.com", cfg.Catalog.BaseURL)
			assert.Equal(t, 10, cfg.Catalog.PageSize)
			assert.Equal(t, "product_id", cfg.Catalog.Fields.ID)
			assert.Equal(t, "name", cfg.Catalog.Fields.Name)
			assert.Equal(t, "Bearer abc", cfg.Catalog.Headers["Authorization"])
			assert.Equal(t, config.DriverRedis, cfg.Persistence.Driver)
			assert.Equal(t, time.Hour, cfg.Persistence.TTL)
			assert.Equal(t, "redis:6379", cfg.Persistence.Redis.Addr)
			assert.Equal(t, 2, cfg.Persistence.Redis.DB)
			assert.True(t, cfg.Wizard.StrictSubmit)
			assert.Equal(t, 45*time.Second, cfg.Wizard.LockTTL)
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
log:
  level: debug
persistence:
  driver: file
  dir: /var/lib/promowizard
`)
	cfg, err := config.LoadWithEnv(path, envOf(map[string]string{
		"PROMOWIZARD_LOG_LEVEL":            "warn",
		"PROMOWIZARD_PERSISTENCE_DRIVER":   "redis",
		"PROMOWIZARD_REDIS_DB":             "3",
		"PROMOWIZARD_REDIS_LOCK":           "true",
		"PROMOWIZARD_WIZARD_LOCK_TTL":      "2m",
		"PROMOWIZARD_CATALOG_PAGE_SIZE":    "20",
		"PROMOWIZARD_WIZARD_STRICT_SUBMIT": "1",
		"PROMOWIZARD_SUBMIT_TIMEOUT":       "90s",
		"UNRELATED":                        "ignored",
	}))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, config.DriverRedis, cfg.Persistence.Driver)
	assert.Equal(t, "/var/lib/promowizard", cfg.Persistence.Dir)
	assert.Equal(t, 3, cfg.Persistence.Redis.DB)
	assert.True(t, cfg.Persistence.Redis.Lock)
	assert.Equal(t, 2*time.Minute, cfg.Wizard.LockTTL)
	assert.Equal(t, 20, cfg.Catalog.PageSize)
	assert.True(t, cfg.Wizard.StrictSubmit)
	assert.Equal(t, 90*time.Second, cfg.Submit.Timeout)
}

func TestErrors(t *testing.T) {
	_, err := config.LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), envOf(nil))
	assert.Error(t, err)

	_, err = config.LoadWithEnv(writeFile(t, "config.ini", "x=1"), envOf(nil))
	assert.ErrorContains(t, err, "unsupported format")

	_, err = config.LoadWithEnv(writeFile(t, "config.yaml", "log: [unclosed"), envOf(nil))
	assert.Error(t, err)

	_, err = config.LoadWithEnv("", envOf(map[string]string{"PROMOWIZARD_PERSISTENCE_DRIVER": "postgres"}))
	assert.ErrorContains(t, err, "unknown driver")

	_, err = config.LoadWithEnv("", envOf(map[string]string{"PROMOWIZARD_CATALOG_PAGE_SIZE": "0"}))
	assert.ErrorContains(t, err, "page_size")

	_, err = config.LoadWithEnv("", envOf(map[string]string{"PROMOWIZARD_WIZARD_LOCK_TTL": "soon"}))
	assert.Error(t, err)
}

func TestExampleConfig(t *testing.T) {
	cfg, err := config.LoadWithEnv(filepath.Join("..", "..", "examples", "promowizard.toml"), envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, config.DriverFile, cfg.Persistence.Driver)
	assert.Equal(t, "examples/catalog.yaml", cfg.Catalog.Fixture)
	assert.True(t, cfg.Persistence.Redis.Lock)
	assert.Equal(t, 30*time.Second, cfg.Wizard.LockTTL)
}
