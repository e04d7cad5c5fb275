package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/staysearch/internal/domain"
	"github.com/kailas-cloud/staysearch/internal/domain/search/request"
)

//go:embed default.yaml
var defaultYAML []byte

// Config holds the staysearch configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Search    SearchConfig    `yaml:"search"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// DatabaseConfig holds store connection settings.
type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	RetryIntervalMs int    `yaml:"retry_interval_ms"`
}

// Addr returns host:port.
func (d DatabaseConfig) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// RetryInterval returns the readiness poll interval.
func (d DatabaseConfig) RetryInterval() time.Duration {
	return time.Duration(d.RetryIntervalMs) * time.Millisecond
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider      string `yaml:"provider"`
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions"`
	TimeoutSec    int    `yaml:"timeout_sec"`
	MaxRetries    int    `yaml:"max_retries"`
	CacheTTLHours int    `yaml:"cache_ttl_hours"` // 0 disables the query cache
}

// Timeout returns the per-request timeout.
func (e EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSec) * time.Second
}

// CacheTTL returns the query-embedding cache TTL.
func (e EmbeddingConfig) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLHours) * time.Hour
}

// IndexConfig holds the FT index layout.
type IndexConfig struct {
	Name            string `yaml:"name"`
	KeyPrefix       string `yaml:"key_prefix"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// DatasetConfig holds ingestion source settings.
type DatasetConfig struct {
	Path          string `yaml:"path"`
	ProgressEvery int    `yaml:"progress_every"`
}

// SearchConfig holds interactive query defaults.
type SearchConfig struct {
	TopK     int   `yaml:"top_k"`
	MinPrice int64 `yaml:"min_price"`
	MaxPrice int64 `yaml:"max_price"`
}

// MetricsConfig holds the optional ops listener settings.
type MetricsConfig struct {
	Addr  string `yaml:"addr"`  // empty disables /metrics and /healthz
	Token string `yaml:"token"` // Bearer token for /metrics; empty disables auth
}

// Load reads configuration for the environment (local, docker, prod).
// A .env file in the working directory is applied first without overriding
// variables that are already set. When no config/<env>.yaml exists the
// embedded defaults are used.
func Load(env string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	data := defaultYAML
	if configPath, ok := findConfigPath(env); ok {
		raw, err := os.ReadFile(filepath.Clean(configPath))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
		data = raw
	}

	return Parse(data)
}

// Parse expands ${VAR} references in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 6379
	}
	if c.Database.RetryIntervalMs <= 0 {
		c.Database.RetryIntervalMs = 1000
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.MaxRetries < 0 {
		c.Embedding.MaxRetries = 0
	}
	idx := domain.DefaultIndexConfig()
	if c.Index.Name == "" {
		c.Index.Name = idx.Name
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = idx.KeyPrefix
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = idx.HNSWM
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = idx.HNSWEFConstruction
	}
	if c.Dataset.ProgressEvery <= 0 {
		c.Dataset.ProgressEvery = 100
	}
	if c.Search.TopK == 0 {
		c.Search.TopK = request.DefaultTopK
	}
	if c.Search.MaxPrice == 0 && c.Search.MinPrice == 0 {
		c.Search.MaxPrice = request.DefaultMaxPrice
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port must be between 1 and 65535, got %d", c.Database.Port)
	}
	if c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required (set OPENAI_API_KEY)")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.CacheTTLHours < 0 {
		return fmt.Errorf("embedding.cache_ttl_hours must not be negative, got %d", c.Embedding.CacheTTLHours)
	}
	if c.Search.TopK <= 0 {
		return fmt.Errorf("search.top_k must be positive, got %d", c.Search.TopK)
	}
	if c.Search.MinPrice < 0 {
		return fmt.Errorf("search.min_price must not be negative, got %d", c.Search.MinPrice)
	}
	if c.Search.MinPrice > c.Search.MaxPrice {
		return fmt.Errorf("search.min_price (%d) must not exceed search.max_price (%d)",
			c.Search.MinPrice, c.Search.MaxPrice)
	}
	return nil
}

// findConfigPath locates config/<env>.yaml.
func findConfigPath(env string) (string, bool) {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path, true
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path, true
	}

	return "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
