// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty disables redis
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	Provider        string            `yaml:"provider"` // auto | noop
	OpenAIKey       string            `yaml:"openai_key"`
	OpenAIBaseURL   string            `yaml:"openai_base_url"`
	GeminiKey       string            `yaml:"gemini_key"`
	GeminiURL       string            `yaml:"gemini_url"`
	DefaultModel    string            `yaml:"default_model"`
	Temperature     *float64          `yaml:"temperature"` // nil means 0.7
	RequestTimeout  time.Duration     `yaml:"request_timeout"`
	ConcurrentLimit int               `yaml:"concurrent_limit"` // max concurrent AI calls
	ModelProviders  map[string]string `yaml:"model_providers"`  // model -> openai|gemini
}

type GenerationConfig struct {
	Mode         string          `yaml:"mode"` // sync | async
	Backoff      []time.Duration `yaml:"backoff"`
	PollInterval time.Duration   `yaml:"poll_interval"`
	Workers      int             `yaml:"workers"`
	StuckAfter   time.Duration   `yaml:"stuck_after"`
	SweepEvery   time.Duration   `yaml:"sweep_every"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	AI         AIConfig         `yaml:"ai"`
	Generation GenerationConfig `yaml:"generation"`
	Auth       AuthConfig       `yaml:"auth"`
	Tracing    TracingConfig    `yaml:"tracing"`

	Runtime RuntimeConfig `yaml:"-"`
}

// Async reports whether jobs are executed by the background processor.
func (c GenerationConfig) Async() bool { return strings.EqualFold(c.Mode, "async") }

// LoadConfig reads the yaml file at path, loads a .env file when present and
// applies environment overrides for secrets.
func LoadConfig(path string, dev bool) (*Config, error) {
	loadEnvFile()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Parse decodes yaml, applies env overrides and defaults, and validates.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func applyEnv(cfg *Config) {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&cfg.Database.URL, "DATABASE_URL")
	override(&cfg.Redis.URL, "REDIS_URL")
	override(&cfg.AI.OpenAIKey, "OPENAI_API_KEY")
	override(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	override(&cfg.Auth.JWTSecret, "JWT_SECRET")
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 10 * time.Minute
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "auto"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.OpenAIBaseURL == "" {
		cfg.AI.OpenAIBaseURL = "https://api.openai.com/v1"
	}
	if cfg.AI.Temperature == nil {
		t := 0.7
		cfg.AI.Temperature = &t
	}
	if cfg.AI.RequestTimeout <= 0 {
		cfg.AI.RequestTimeout = 60 * time.Second
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}

	if cfg.Generation.Mode == "" {
		cfg.Generation.Mode = "sync"
	}
	if len(cfg.Generation.Backoff) == 0 {
		cfg.Generation.Backoff = []time.Duration{time.Second, 3 * time.Second, 7 * time.Second, 15 * time.Second}
	}
	if cfg.Generation.PollInterval <= 0 {
		cfg.Generation.PollInterval = 2 * time.Second
	}
	if cfg.Generation.Workers <= 0 {
		cfg.Generation.Workers = 4
	}
	if cfg.Generation.StuckAfter <= 0 {
		cfg.Generation.StuckAfter = 15 * time.Minute
	}
	if cfg.Generation.SweepEvery <= 0 {
		cfg.Generation.SweepEvery = time.Minute
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "trip-itinerary-ai"
	}
}

// Minimal validation
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	switch strings.ToLower(c.AI.Provider) {
	case "noop":
	case "auto":
		if c.AI.OpenAIKey == "" && c.AI.GeminiKey == "" {
			return errors.New("ai: at least one of openai_key or gemini_key is required (or provider: noop)")
		}
	default:
		return fmt.Errorf("ai.provider: unknown value %q", c.AI.Provider)
	}
	if t := *c.AI.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("ai.temperature: %v outside [0, 2]", t)
	}
	switch strings.ToLower(c.Generation.Mode) {
	case "sync", "async":
	default:
		return fmt.Errorf("generation.mode: unknown value %q", c.Generation.Mode)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
