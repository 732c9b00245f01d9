// Package config loads Ganbatte configuration from environment variables with
// an optional YAML file overlay.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LLM provider names.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// LLM extraction
	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OllamaHost      string `yaml:"ollama_host"`

	// Maps platform (geocoding + directions)
	MapsAPIKey   string `yaml:"maps_api_key"`
	GeocodeURL   string `yaml:"geocode_url"`
	DirectionsURL string `yaml:"directions_url"`

	// Server
	ServerPort string `yaml:"server_port"`
	ServerURL  string `yaml:"server_url"` // used by the CLI client

	// Intake
	DefaultAddress string `yaml:"default_address"` // substituted for "my shop" style phrases

	// Pricing
	BaseFeeCents int64 `yaml:"base_fee_cents"`
	PerKmCents   int64 `yaml:"per_km_cents"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables. If GANBATTE_CONFIG
// points at a YAML file, its values overlay the environment defaults.
func Load() (Config, error) {
	cfg := Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "ganbatte"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "jobs"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     getEnv("GANBATTE_LLM_PROVIDER", ProviderAnthropic),
		LLMModel:        getEnv("GANBATTE_LLM_MODEL", "claude-sonnet-4-20250514"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),

		MapsAPIKey:    os.Getenv("GANBATTE_MAPS_API_KEY"),
		GeocodeURL:    getEnv("GANBATTE_GEOCODE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
		DirectionsURL: getEnv("GANBATTE_DIRECTIONS_URL", "https://maps.googleapis.com/maps/api/directions/json"),

		ServerPort: getEnv("GANBATTE_SERVER_PORT", "8383"),
		ServerURL:  getEnv("GANBATTE_SERVER_URL", "http://localhost:8383"),

		DefaultAddress: os.Getenv("GANBATTE_DEFAULT_ADDRESS"),

		BaseFeeCents: getEnvInt64("GANBATTE_BASE_FEE_CENTS", 1500),
		PerKmCents:   getEnvInt64("GANBATTE_PER_KM_CENTS", 120),

		LogFile:  getEnv("GANBATTE_LOG_FILE", "/tmp/ganbatte.log"),
		LogLevel: parseLogLevel(getEnv("GANBATTE_LOG_LEVEL", "INFO")),
	}

	if path := os.Getenv("GANBATTE_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// overlayFile applies non-zero values from a YAML file on top of cfg.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.merge(overlay)
	return nil
}

func (c *Config) merge(o Config) {
	merge := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	merge(&c.SurrealDBURL, o.SurrealDBURL)
	merge(&c.SurrealDBNamespace, o.SurrealDBNamespace)
	merge(&c.SurrealDBDatabase, o.SurrealDBDatabase)
	merge(&c.SurrealDBUser, o.SurrealDBUser)
	merge(&c.SurrealDBPass, o.SurrealDBPass)
	merge(&c.SurrealDBAuthLevel, o.SurrealDBAuthLevel)
	merge(&c.LLMProvider, o.LLMProvider)
	merge(&c.LLMModel, o.LLMModel)
	merge(&c.OpenAIAPIKey, o.OpenAIAPIKey)
	merge(&c.AnthropicAPIKey, o.AnthropicAPIKey)
	merge(&c.OllamaHost, o.OllamaHost)
	merge(&c.MapsAPIKey, o.MapsAPIKey)
	merge(&c.GeocodeURL, o.GeocodeURL)
	merge(&c.DirectionsURL, o.DirectionsURL)
	merge(&c.ServerPort, o.ServerPort)
	merge(&c.ServerURL, o.ServerURL)
	merge(&c.DefaultAddress, o.DefaultAddress)
	merge(&c.LogFile, o.LogFile)
	if o.BaseFeeCents != 0 {
		c.BaseFeeCents = o.BaseFeeCents
	}
	if o.PerKmCents != 0 {
		c.PerKmCents = o.PerKmCents
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
