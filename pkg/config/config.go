// Package config loads relay settings. Values are layered: built-in
// defaults, then an optional TOML file, then RELAY_* environment variables.
// A .env file in the working directory is loaded into the environment first.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/papercomputeco/relay/pkg/credential"
	"github.com/papercomputeco/relay/pkg/upstream"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "RELAY_"

// Config holds every setting of the relay. The upstream API key is not part
// of it: only the name of the variable holding the key is, and the key is
// read from the environment on each request.
type Config struct {
	ListenAddr      string        `koanf:"listen_addr" validate:"required"`
	Route           string        `koanf:"route" validate:"required,startswith=/"`
	BodyLimit       int           `koanf:"body_limit" validate:"gte=0"`
	UpstreamURL     string        `koanf:"upstream_url" validate:"required,url"`
	Model           string        `koanf:"model" validate:"required"`
	MaxOutputTokens int           `koanf:"max_output_tokens" validate:"gt=0"`
	UpstreamTimeout time.Duration `koanf:"upstream_timeout" validate:"gte=0"`
	APIKeyEnv       string        `koanf:"api_key_env" validate:"required"`
	Debug           bool          `koanf:"debug"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		Route:           "/api/openai",
		UpstreamURL:     upstream.DefaultURL,
		Model:           upstream.DefaultModel,
		MaxOutputTokens: upstream.DefaultMaxOutputTokens,
		UpstreamTimeout: 2 * time.Minute,
		APIKeyEnv:       credential.DefaultEnvVar,
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(tomlFile(path), nil); err != nil {
			return nil, fmt.Errorf("could not load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
