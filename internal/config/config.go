// Package config loads VectorBid's runtime configuration, generalizing
// the teacher's services/api_gateway/src/config/config.go layered
// defaults-then-YAML-then-env pattern to the pipeline's own settings.
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PipelineConfig bounds how long each stage may run before it is cut off
// and the request falls back to a degraded result, per spec.md §5.
type PipelineConfig struct {
	RequestDeadline   time.Duration `yaml:"request_deadline"`
	LLMPrimaryTimeout time.Duration `yaml:"llm_primary_timeout"`
	LLMSecondaryTimeout time.Duration `yaml:"llm_secondary_timeout"`
	PackageReadTimeout  time.Duration `yaml:"package_read_timeout"`
	RulePackReadTimeout time.Duration `yaml:"rule_pack_read_timeout"`
}

// LLMConfig names the primary/secondary providers in the fallback ladder.
// Keys are read from the environment, never from YAML, so credentials
// never land in a config file on disk.
type LLMConfig struct {
	PrimaryModel   string
	SecondaryModel string
	PrimaryKey     string `yaml:"-"`
	SecondaryKey   string `yaml:"-"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

// RulePackConfig controls where compiled rule packs are read from and how
// many stay resident in the in-process LRU cache.
type RulePackConfig struct {
	Dir           string `yaml:"dir"`
	CacheCapacity int    `yaml:"cache_capacity"`
}

// PackageStoreConfig controls where content-addressed bid packages live.
type PackageStoreConfig struct {
	Dir string `yaml:"dir"`
}

// ContextStoreConfig controls where per-pilot context profiles live
// (spec.md §4.4 "Context Enricher"): one optional JSON file per
// <airline>/<pilot_id>, falling back to a neutral default when absent.
type ContextStoreConfig struct {
	Dir string `yaml:"dir"`
}

// ExportConfig controls export signing and the API key gating /api/export.
type ExportConfig struct {
	SigningSecret string
	APIKey        string
}

// RedisConfig is optional distributed-cache backing for the LLM response
// cache; the rule-pack cache is always in-process. Address empty means
// "use the in-process cache".
type RedisConfig struct {
	Address string `yaml:"address"`
	DB      int    `yaml:"db"`
}

// DatabaseConfig is the Postgres export audit store connection.
type DatabaseConfig struct {
	DSN            string
	MigrationsPath string `yaml:"migrations_path"`
}

// VaultConfig is optional; when Address is empty the env-var secrets
// provider is used instead (see internal/secrets).
type VaultConfig struct {
	Address string `yaml:"address"`
	Token   string
	Path    string `yaml:"path"`
}

// LoggingConfig controls the zap logger built by internal/observability/logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root configuration object, constructed once at startup by
// cmd/vectorbid/main.go and passed explicitly to every component.
type Config struct {
	Environment  string `yaml:"environment"`
	Server       ServerConfig       `yaml:"server"`
	Pipeline     PipelineConfig     `yaml:"pipeline"`
	LLM          LLMConfig          `yaml:"llm"`
	RulePack     RulePackConfig     `yaml:"rule_pack"`
	PackageStore PackageStoreConfig `yaml:"package_store"`
	ContextStore ContextStoreConfig `yaml:"context_store"`
	Export       ExportConfig       `yaml:"export"`
	Redis        RedisConfig        `yaml:"redis"`
	Database     DatabaseConfig     `yaml:"database"`
	Vault        VaultConfig        `yaml:"vault"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// defaultConfig returns the baseline configuration before the YAML file
// and environment overrides are applied.
func defaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Pipeline: PipelineConfig{
			RequestDeadline:     8 * time.Second,
			LLMPrimaryTimeout:   3 * time.Second,
			LLMSecondaryTimeout: 3 * time.Second,
			PackageReadTimeout:  2 * time.Second,
			RulePackReadTimeout: 500 * time.Millisecond,
		},
		LLM: LLMConfig{
			PrimaryModel:   "gpt-4o-mini",
			SecondaryModel: "gpt-4o-mini",
			CacheTTL:       10 * time.Minute,
		},
		RulePack: RulePackConfig{
			Dir:           "./rule_packs",
			CacheCapacity: 32,
		},
		PackageStore: PackageStoreConfig{
			Dir: "./packages",
		},
		ContextStore: ContextStoreConfig{
			Dir: "./contexts",
		},
		Database: DatabaseConfig{
			MigrationsPath: "./internal/export/audit/migrations",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds a Config: defaults, then an optional YAML file at path (if
// path is non-empty and the file exists), then environment overrides.
// Environment overrides always win, mirroring the teacher's precedence.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := loadConfigFile(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.Environment = getEnv("VECTORBID_ENV", cfg.Environment)

	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)

	cfg.Pipeline.RequestDeadline = getEnvDuration("REQUEST_DEADLINE_MS_DURATION", cfg.Pipeline.RequestDeadline)
	if ms := os.Getenv("REQUEST_DEADLINE_MS"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil {
			cfg.Pipeline.RequestDeadline = time.Duration(n) * time.Millisecond
		}
	}

	cfg.LLM.PrimaryModel = getEnv("LLM_PRIMARY_MODEL", cfg.LLM.PrimaryModel)
	cfg.LLM.SecondaryModel = getEnv("LLM_SECONDARY_MODEL", cfg.LLM.SecondaryModel)
	cfg.LLM.PrimaryKey = getEnv("LLM_PRIMARY_KEY", cfg.LLM.PrimaryKey)
	cfg.LLM.SecondaryKey = getEnv("LLM_SECONDARY_KEY", cfg.LLM.SecondaryKey)

	cfg.RulePack.Dir = getEnv("RULE_PACKS_DIR", cfg.RulePack.Dir)
	cfg.PackageStore.Dir = getEnv("PACKAGES_DIR", cfg.PackageStore.Dir)
	cfg.ContextStore.Dir = getEnv("CONTEXTS_DIR", cfg.ContextStore.Dir)

	cfg.Export.SigningSecret = getEnv("EXPORT_SIGNING_SECRET", cfg.Export.SigningSecret)
	cfg.Export.APIKey = getEnv("API_KEY_EXPORT", cfg.Export.APIKey)

	cfg.Redis.Address = getEnv("REDIS_URL", cfg.Redis.Address)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Database.DSN = getEnv("DATABASE_DSN", cfg.Database.DSN)
	cfg.Database.MigrationsPath = getEnv("DATABASE_MIGRATIONS_PATH", cfg.Database.MigrationsPath)

	cfg.Vault.Address = getEnv("VAULT_ADDR", cfg.Vault.Address)
	cfg.Vault.Token = getEnv("VAULT_TOKEN", cfg.Vault.Token)
	cfg.Vault.Path = getEnv("VAULT_SECRET_PATH", cfg.Vault.Path)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	return cfg, nil
}

func loadConfigFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
