package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Embedding.Provider != ProviderVoyage {
		t.Errorf("provider = %q, want voyage", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Voyage.Dimensions != 1024 || cfg.Embedding.OpenAI.Dimensions != 1024 {
		t.Errorf("provider dims must follow embedding.dimensions: %+v", cfg.Embedding)
	}
	if cfg.Similarity.DefaultThreshold != 0.75 || cfg.Similarity.DefaultLimit != 5 || cfg.Similarity.MaxLimit != 20 {
		t.Errorf("unexpected similarity defaults: %+v", cfg.Similarity)
	}
	if cfg.Similarity.Timeout() != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", cfg.Similarity.Timeout())
	}
	if cfg.Backfill.Concurrency != 4 {
		t.Errorf("concurrency = %d, want 4", cfg.Backfill.Concurrency)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("driver = %q, want valkey", cfg.Database.Driver)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"bad driver", func(c *Config) { c.Database.Driver = "memcached" }, "database.driver"},
		{"bad provider", func(c *Config) { c.Embedding.Provider = "cohere" }, "embedding.provider"},
		{"min chars low", func(c *Config) { c.Similarity.MinChars = 5 }, "min_chars"},
		{"min chars high", func(c *Config) { c.Similarity.MinChars = 80 }, "min_chars"},
		{"threshold > 1", func(c *Config) { c.Similarity.DefaultThreshold = 1.5 }, "default_threshold"},
		{"max limit", func(c *Config) { c.Similarity.MaxLimit = 50 }, "max_limit"},
		{"default over max", func(c *Config) {
			c.Similarity.MaxLimit = 3
			c.Similarity.DefaultLimit = 5
		}, "default_limit"},
		{"negative rps", func(c *Config) { c.Embedding.RequestsPerSecond = -1 }, "requests_per_second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProviderConfigured(t *testing.T) {
	if (ProviderConfig{APIKey: "  "}).Configured() {
		t.Error("blank key must not count as configured")
	}
	if !(ProviderConfig{APIKey: "pa-123"}).Configured() {
		t.Error("expected configured")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("IDEABOARD_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("a: ${IDEABOARD_TEST_KEY}\nb: ${IDEABOARD_MISSING:-fallback}\nc: ${IDEABOARD_MISSING}")))
	want := "a: secret\nb: fallback\nc: "
	if got != want {
		t.Errorf("expandEnvVars() = %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("VOYAGE_API_KEY", "pa-test")
	path := filepath.Join(t.TempDir(), "test.yaml")
	yml := `
http:
  port: 9090
database:
  addrs: ["localhost:6379"]
embedding:
  voyage:
    api_key: ${VOYAGE_API_KEY}
similarity:
  min_chars: 25
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.Embedding.Voyage.APIKey != "pa-test" || cfg.Similarity.MinChars != 25 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Embedding.OpenAI.Configured() {
		t.Error("openai must be unconfigured")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("GetEnv() = %q, want local", GetEnv())
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("GetEnv() = %q, want prod", GetEnv())
	}
}
