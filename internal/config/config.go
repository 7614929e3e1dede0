// Package config loads promowizard settings from defaults, an optional file and
// PROMOWIZARD_* environment variables, in increasing order of precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/promowizard/pkg/adapters/remote"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PROMOWIZARD_"

// Persistence drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the complete application configuration.
type Config struct {
	Log         LogConfig         `mapstructure:"log"`
	Server      ServerConfig      `mapstructure:"server"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Submit      SubmitConfig      `mapstructure:"submit"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Wizard      WizardConfig      `mapstructure:"wizard"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr"`
	MCPAddr string `mapstructure:"mcp_addr"`
}

// CatalogConfig selects the catalog source: a remote service when BaseURL is set,
// otherwise the fixture file, otherwise an empty in-memory catalog.
type CatalogConfig struct {
	BaseURL  string            `mapstructure:"base_url"`
	Fixture  string            `mapstructure:"fixture"`
	PageSize int               `mapstructure:"page_size"`
	Fields   remote.Fields     `mapstructure:"fields"`
	Headers  map[string]string `mapstructure:"headers"`
	Timeout  time.Duration     `mapstructure:"timeout"`
}

// SubmitConfig selects the promotion service. Without BaseURL submissions are
// recorded in memory. A zero Timeout means none.
type SubmitConfig struct {
	BaseURL string            `mapstructure:"base_url"`
	Headers map[string]string `mapstructure:"headers"`
	Timeout time.Duration     `mapstructure:"timeout"`
}

type PersistenceConfig struct {
	Driver string        `mapstructure:"driver"`
	Dir    string        `mapstructure:"dir"`
	TTL    time.Duration `mapstructure:"ttl"`
	Redis  RedisConfig   `mapstructure:"redis"`

	// EncryptionKey enables at-rest encryption (hex or base64, 32 bytes).
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys are tried on read after a key rotation.
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
	Lock     bool   `mapstructure:"lock"`
}

type WizardConfig struct {
	StrictSubmit bool          `mapstructure:"strict_submit"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Addr: ":8080", MCPAddr: ":8081"},
		Catalog: CatalogConfig{
			PageSize: 5,
			Fields:   remote.DefaultFields,
			Timeout:  remote.DefaultTimeout,
		},
		Persistence: PersistenceConfig{
			Driver: DriverMemory,
			TTL:    24 * time.Hour,
			Redis:  RedisConfig{Addr: "localhost:6379"},
		},
		Wizard: WizardConfig{LockTTL: 30 * time.Second},
	}
}

// envKeys maps the supported environment variables (without prefix) to config paths.
var envKeys = map[string]string{
	"LOG_LEVEL":                  "log.level",
	"LOG_FORMAT":                 "log.format",
	"SERVER_ADDR":                "server.addr",
	"SERVER_MCP_ADDR":            "server.mcp_addr",
	"CATALOG_BASE_URL":           "catalog.base_url",
	"CATALOG_FIXTURE":            "catalog.fixture",
	"CATALOG_PAGE_SIZE":          "catalog.page_size",
	"CATALOG_TIMEOUT":            "catalog.timeout",
	"SUBMIT_BASE_URL":            "submit.base_url",
	"SUBMIT_TIMEOUT":             "submit.timeout",
	"PERSISTENCE_DRIVER":         "persistence.driver",
	"PERSISTENCE_DIR":            "persistence.dir",
	"PERSISTENCE_TTL":            "persistence.ttl",
	"PERSISTENCE_ENCRYPTION_KEY": "persistence.encryption_key",
	"REDIS_ADDR":                 "persistence.redis.addr",
	"REDIS_PASSWORD":             "persistence.redis.password",
	"REDIS_DB":                   "persistence.redis.db",
	"REDIS_PREFIX":               "persistence.redis.prefix",
	"REDIS_LOCK":                 "persistence.redis.lock",
	"WIZARD_STRICT_SUBMIT":       "wizard.strict_submit",
	"WIZARD_LOCK_TTL":            "wizard.lock_ttl",
}

// Load reads path (may be empty) and the process environment.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		var err error
		raw, err = readFile(path)
		if err != nil {
			return Config{}, err
		}
	}

	for env, key := range envKeys {
		if v, ok := lookup(EnvPrefix + env); ok {
			setPath(raw, strings.Split(key, "."), v)
		}
	}

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".json":
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return raw, nil
}

func setPath(m map[string]any, keys []string, v any) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = v
}

func decode(raw map[string]any, out *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			intToDuration,
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// intToDuration reads bare numbers as seconds.
func intToDuration(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}
	return data, nil
}

// Validate rejects settings no component can honor.
func (c Config) Validate() error {
	switch c.Persistence.Driver {
	case DriverMemory, DriverFile, DriverRedis:
	default:
		return fmt.Errorf("persistence.driver: unknown driver %q", c.Persistence.Driver)
	}
	if c.Catalog.PageSize < 1 {
		return fmt.Errorf("catalog.page_size must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Wizard.LockTTL <= 0 {
		return fmt.Errorf("wizard.lock_ttl must be positive, got %s", c.Wizard.LockTTL)
	}
	return nil
}
