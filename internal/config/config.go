package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"orderconfig/internal/configurator"
	"orderconfig/internal/storage"
)

const (
	defaultPort        = "8000"
	defaultConfigPath  = "configurator.yaml"
	defaultMessageTTL  = 4 * time.Second
	defaultIdleTimeout = 30 * time.Minute
)

// Config is the environment plus the optional YAML file.
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	JWTSecret   string
	R2          storage.R2Config

	Labels               configurator.Labels
	ValidationMessageTTL time.Duration
	AllowedOrigins       []string
	SessionIdleTimeout   time.Duration
}

// fileConfig mirrors the YAML file; every key is optional.
type fileConfig struct {
	InstructionLabels    *configurator.Labels `yaml:"instruction_labels"`
	ValidationMessageTTL string               `yaml:"validation_message_ttl"`
	AllowedOrigins       []string             `yaml:"allowed_origins"`
	SessionIdleTimeout   string               `yaml:"session_idle_timeout"`
}

// LoadEnv reads .env outside production. A missing file is not an error.
func LoadEnv() {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
}

// Load builds the config from the process environment. required lists the
// variables that must be present.
func Load(required ...string) (*Config, error) {
	for _, k := range required {
		if os.Getenv(k) == "" {
			return nil, fmt.Errorf("missing env var: %s", k)
		}
	}

	cfg := &Config{
		Env:         os.Getenv("APP_ENV"),
		Port:        envOr("PORT", defaultPort),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		R2: storage.R2Config{
			Endpoint:  os.Getenv("R2_ENDPOINT"),
			AccessKey: os.Getenv("R2_ACCESS_KEY"),
			SecretKey: os.Getenv("R2_SECRET_KEY"),
			Bucket:    os.Getenv("R2_BUCKET_NAME"),
		},
		Labels:               configurator.DefaultLabels,
		ValidationMessageTTL: defaultMessageTTL,
		AllowedOrigins:       []string{"http://localhost:3000", "http://localhost:5173"},
		SessionIdleTimeout:   defaultIdleTimeout,
	}

	path := envOr("CONFIGURATOR_CONFIG", defaultConfigPath)
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, nil
	case err != nil:
		return nil, err
	}

	if err := cfg.apply(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) apply(raw []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return err
	}

	if l := f.InstructionLabels; l != nil {
		if l.Without != "" {
			c.Labels.Without = l.Without
		}
		if l.Extra != "" {
			c.Labels.Extra = l.Extra
		}
		if l.Less != "" {
			c.Labels.Less = l.Less
		}
		if l.No != "" {
			c.Labels.No = l.No
		}
	}

	if f.ValidationMessageTTL != "" {
		d, err := time.ParseDuration(f.ValidationMessageTTL)
		if err != nil {
			return fmt.Errorf("validation_message_ttl: %w", err)
		}
		c.ValidationMessageTTL = d
	}
	if f.SessionIdleTimeout != "" {
		d, err := time.ParseDuration(f.SessionIdleTimeout)
		if err != nil {
			return fmt.Errorf("session_idle_timeout: %w", err)
		}
		c.SessionIdleTimeout = d
	}
	if len(f.AllowedOrigins) > 0 {
		c.AllowedOrigins = f.AllowedOrigins
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
