package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Embedding provider names.
const (
	ProviderVoyage = "voyage"
	ProviderOpenAI = "openai"
)

// Config holds the ideaboard service configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Similarity SimilarityConfig `yaml:"similarity"`
	Backfill   BackfillConfig   `yaml:"backfill"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Auth       AuthConfig       `yaml:"auth"`
	Index      IndexConfig      `yaml:"index"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. Empty APIKeys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	// MaxBodyKB caps request bodies.
	MaxBodyKB int `yaml:"max_body_kb"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds HNSW index settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// EmbeddingConfig selects and configures embedding providers.
type EmbeddingConfig struct {
	// Provider is the preferred provider: voyage (default) or openai.
	Provider string `yaml:"provider"`
	// Dimensions is the vector size stored in the index; every provider must produce it.
	Dimensions        int            `yaml:"dimensions"`
	Voyage            ProviderConfig `yaml:"voyage"`
	OpenAI            ProviderConfig `yaml:"openai"`
	RequestsPerSecond float64        `yaml:"requests_per_second"` // 0 = unlimited
	Burst             int            `yaml:"burst"`
	TimeoutSec        int            `yaml:"timeout_sec"`
	Cache             CacheConfig    `yaml:"cache"`
}

// ProviderConfig holds one embedding provider's settings.
type ProviderConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"` // defaults to embedding.dimensions
}

// Configured reports whether the provider has credentials.
func (p ProviderConfig) Configured() bool { return strings.TrimSpace(p.APIKey) != "" }

// CacheConfig controls the embedding cache.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"` // 0 = no expiry
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLHours) * time.Hour }

// SimilarityConfig tunes findSimilar.
type SimilarityConfig struct {
	MinChars         int     `yaml:"min_chars"`
	DefaultThreshold float64 `yaml:"default_threshold"`
	DefaultLimit     int     `yaml:"default_limit"`
	MaxLimit         int     `yaml:"max_limit"`
	TimeoutMs        int     `yaml:"timeout_ms"`
}

// Timeout returns the embed+search deadline.
func (s SimilarityConfig) Timeout() time.Duration { return time.Duration(s.TimeoutMs) * time.Millisecond }

// BackfillConfig tunes the embedding backfill.
type BackfillConfig struct {
	Concurrency int `yaml:"concurrency"`
	Limit       int `yaml:"limit"` // 0 = all pending ideas
}

// RateLimitConfig holds fixed-window limits per route bucket.
type RateLimitConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Similar  RuleConfig `yaml:"similar"`
	Comments RuleConfig `yaml:"comments"`
}

// RuleConfig is one fixed-window rule.
type RuleConfig struct {
	MaxRequests int `yaml:"max_requests"`
	WindowSec   int `yaml:"window_sec"`
}

// Window returns the window length.
func (r RuleConfig) Window() time.Duration { return time.Duration(r.WindowSec) * time.Second }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
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
//
//nolint:gocyclo // flat list of defaults
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 15
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyKB <= 0 {
		c.HTTP.MaxBodyKB = 64
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}

	c.applyEmbeddingDefaults()

	if c.Similarity.MinChars <= 0 {
		c.Similarity.MinChars = 30
	}
	if c.Similarity.DefaultThreshold <= 0 {
		c.Similarity.DefaultThreshold = 0.75
	}
	if c.Similarity.DefaultLimit <= 0 {
		c.Similarity.DefaultLimit = 5
	}
	if c.Similarity.MaxLimit <= 0 {
		c.Similarity.MaxLimit = 20
	}
	if c.Similarity.TimeoutMs <= 0 {
		c.Similarity.TimeoutMs = 3000
	}
	if c.Backfill.Concurrency <= 0 {
		c.Backfill.Concurrency = 4
	}
	if c.RateLimit.Similar.MaxRequests <= 0 {
		c.RateLimit.Similar.MaxRequests = 30
	}
	if c.RateLimit.Similar.WindowSec <= 0 {
		c.RateLimit.Similar.WindowSec = 60
	}
	if c.RateLimit.Comments.MaxRequests <= 0 {
		c.RateLimit.Comments.MaxRequests = 10
	}
	if c.RateLimit.Comments.WindowSec <= 0 {
		c.RateLimit.Comments.WindowSec = 60
	}
}

func (c *Config) applyEmbeddingDefaults() {
	e := &c.Embedding
	if e.Provider == "" {
		e.Provider = ProviderVoyage
	}
	if e.Dimensions <= 0 {
		e.Dimensions = 1024
	}
	if e.TimeoutSec <= 0 {
		e.TimeoutSec = 10
	}
	if e.Burst <= 0 {
		e.Burst = 1
	}
	if e.Voyage.Model == "" {
		e.Voyage.Model = "voyage-3.5"
	}
	if e.Voyage.BaseURL == "" {
		e.Voyage.BaseURL = "https://api.voyageai.com/v1"
	}
	if e.Voyage.Dimensions <= 0 {
		e.Voyage.Dimensions = e.Dimensions
	}
	if e.OpenAI.Model == "" {
		e.OpenAI.Model = "text-embedding-3-small"
	}
	if e.OpenAI.Dimensions <= 0 {
		e.OpenAI.Dimensions = e.Dimensions
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	switch c.Embedding.Provider {
	case ProviderVoyage, ProviderOpenAI:
	default:
		return fmt.Errorf("embedding.provider must be %q or %q, got %q",
			ProviderVoyage, ProviderOpenAI, c.Embedding.Provider)
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("embedding.requests_per_second must not be negative")
	}
	if c.Similarity.MinChars < 20 || c.Similarity.MinChars > 50 {
		return fmt.Errorf("similarity.min_chars must be between 20 and 50, got %d", c.Similarity.MinChars)
	}
	if c.Similarity.DefaultThreshold > 1 {
		return fmt.Errorf("similarity.default_threshold must be in (0, 1], got %g", c.Similarity.DefaultThreshold)
	}
	if c.Similarity.MaxLimit > 20 {
		return fmt.Errorf("similarity.max_limit must not exceed 20, got %d", c.Similarity.MaxLimit)
	}
	if c.Similarity.DefaultLimit > c.Similarity.MaxLimit {
		return fmt.Errorf("similarity.default_limit (%d) exceeds max_limit (%d)",
			c.Similarity.DefaultLimit, c.Similarity.MaxLimit)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
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
