// Package config loads claire's runtime configuration from a YAML file and
// CLAIRE_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config is the runtime configuration shared by the CLI commands.
type Config struct {
	Log struct {
		Level  string `yaml:"level" env:"CLAIRE_LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn warning error"`
		Format string `yaml:"format" env:"CLAIRE_LOG_FORMAT" env-default:"text" validate:"oneof=text json"`
	} `yaml:"log"`

	Store struct {
		Backend string `yaml:"backend" env:"CLAIRE_STORE" env-default:"file" validate:"oneof=memory file redis sqlite mongo"`
		// EncryptionKey is a hex encoded AES-256 key. Empty disables encryption.
		EncryptionKey string   `yaml:"encryption_key" env:"CLAIRE_ENCRYPTION_KEY"`
		FallbackKeys  []string `yaml:"fallback_keys" env:"CLAIRE_ENCRYPTION_FALLBACK_KEYS" env-separator:","`
		// PIIPatterns mask matching slot keys in inspection output. Stored state is never masked.
		PIIPatterns     []string      `yaml:"pii_patterns" env:"CLAIRE_PII_PATTERNS" env-separator:","`
		LockTTL         time.Duration `yaml:"lock_ttl" env:"CLAIRE_LOCK_TTL" env-default:"30s"`
		DistributedLock bool          `yaml:"distributed_lock" env:"CLAIRE_DISTRIBUTED_LOCK" env-default:"false"`
	} `yaml:"store"`

	File struct {
		Dir string `yaml:"dir" env:"CLAIRE_FILE_DIR" env-default:".claire/conversations"`
	} `yaml:"file"`

	Redis struct {
		Addr     string        `yaml:"addr" env:"CLAIRE_REDIS_ADDR" env-default:"127.0.0.1:6379"`
		Password string        `yaml:"password" env:"CLAIRE_REDIS_PASSWORD"`
		DB       int           `yaml:"db" env:"CLAIRE_REDIS_DB" env-default:"0"`
		Prefix   string        `yaml:"prefix" env:"CLAIRE_REDIS_PREFIX" env-default:"claire:conversation:"`
		TTL      time.Duration `yaml:"ttl" env:"CLAIRE_REDIS_TTL" env-default:"0s"`
	} `yaml:"redis"`

	SQLite struct {
		Path string `yaml:"path" env:"CLAIRE_SQLITE_PATH" env-default:".claire/claire.db"`
	} `yaml:"sqlite"`

	Mongo struct {
		URI        string `yaml:"uri" env:"CLAIRE_MONGO_URI" env-default:"mongodb://127.0.0.1:27017"`
		Database   string `yaml:"database" env:"CLAIRE_MONGO_DATABASE" env-default:"claire"`
		Collection string `yaml:"collection" env:"CLAIRE_MONGO_COLLECTION" env-default:"conversations"`
		User       string `yaml:"user" env:"CLAIRE_MONGO_USER"`
		Password   string `yaml:"password" env:"CLAIRE_MONGO_PASSWORD"`
	} `yaml:"mongo"`

	Routing struct {
		// Path to a YAML or JSON routing table. Empty uses the built-in table.
		Path string `yaml:"path" env:"CLAIRE_ROUTING"`
	} `yaml:"routing"`

	HTTP struct {
		Addr    string `yaml:"addr" env:"CLAIRE_HTTP_ADDR" env-default:"127.0.0.1:8080"`
		Metrics bool   `yaml:"metrics" env:"CLAIRE_HTTP_METRICS" env-default:"true"`
	} `yaml:"http"`
}

// Load reads path (when set) and the environment, which takes precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	if path == "" {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = cleanenv.ReadConfig(path, cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("failed to read config: %w\n%s", err, desc)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Usage describes the supported environment variables.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return desc
}
