package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server      ServerConfig   `koanf:"server"`
	Runtime     RuntimeConfig  `koanf:"runtime"`
	OpenClaw    OpenClawConfig `koanf:"openclaw"`
	Mock        MockConfig     `koanf:"mock"`
	Storage     StorageConfig  `koanf:"storage"`
	Context     ContextConfig  `koanf:"context"`
	Environment string         `koanf:"environment"`
	// AllowMockRuntime permits the deterministic adapter even when
	// Environment is flagged as production.
	AllowMockRuntime bool `koanf:"allow_mock_runtime"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type RuntimeConfig struct {
	// Kind selects the adapter: a production alias ("openclaw",
	// "open-claw", "openclaw-gateway"), "mock", or anything else, which
	// falls back to the production adapter.
	Kind string `koanf:"kind"`
}

type OpenClawConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

type MockConfig struct {
	BaseURL      string `koanf:"base_url"`
	DefaultModel string `koanf:"default_model"`
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // sqlite, memory
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type ContextConfig struct {
	MaxBlocks    int    `koanf:"max_blocks"`
	DefaultModel string `koanf:"default_model"` // model used for token estimation
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads config.yaml if present, then applies NEXUS_-prefixed
// environment variables on top (double underscore maps to a nesting dot).
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider("config.yaml"), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := k.Load(env.Provider("NEXUS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "NEXUS_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("context.max_blocks") {
		k.Set("context.max_blocks", 12)
	}
	if !k.Exists("storage.type") {
		k.Set("storage.type", "memory")
	}

	// NODE_ENV-equivalent gates and the explicit mock override are honored
	// directly so deploy tooling does not need the NEXUS_ prefix.
	if v := os.Getenv("NEXUS_ENV"); v != "" && !k.Exists("environment") {
		k.Set("environment", v)
	}
	if v := os.Getenv("ALLOW_MOCK_RUNTIME"); v != "" {
		k.Set("allow_mock_runtime", v == "1" || strings.EqualFold(v, "true"))
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.OpenClaw.APIKey = substituteEnvVars(cfg.OpenClaw.APIKey)

	return &cfg, nil
}

// IsProduction reports whether the environment is flagged as production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
