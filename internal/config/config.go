// Package config loads the service configuration from the environment,
// with an optional .env file for local runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the validated service settings. SnapshotDir is the only
// required value: the API cannot do anything without input files.
type Config struct {
	AppEnv             string        `validate:"required"`
	Port               string        `validate:"required"`
	SnapshotDir        string        `validate:"required,dir"`
	CORSAllowedOrigins []string      `validate:"-"`
	RateLimitMax       int           `validate:"min=0"`
	RateLimitWindow    time.Duration `validate:"min=0"`
	ResultCacheSize    int           `validate:"min=1"`
	ShutdownTimeout    time.Duration `validate:"min=0"`
}

// Load reads configuration from environment variables and an optional
// .env file, applies defaults and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		SnapshotDir:        strings.TrimSpace(k.String("SNAPSHOT_DIR")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		RateLimitMax:       parseInt(k.String("RATE_LIMIT_MAX"), 120),
		RateLimitWindow:    parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		ResultCacheSize:    parseInt(k.String("RESULT_CACHE_SIZE"), 8),
		ShutdownTimeout:    parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// MustLoad behaves like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// HTTPAddr returns the listen address derived from Port.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(value, fallback string) time.Duration {
	s := strings.TrimSpace(value)
	if s == "" {
		s = fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	s := strings.TrimSpace(value)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// LoadForTests runs Load under the given environment overrides and
// restores the previous values afterwards. An empty override unsets the
// variable for the duration of the call.
func LoadForTests(overrides map[string]string) (*Config, error) {
	type saved struct {
		value string
		set   bool
	}
	previous := make(map[string]saved, len(overrides))
	for key, value := range overrides {
		prev, ok := os.LookupEnv(key)
		previous[key] = saved{value: prev, set: ok}
		if err := setEnvVar(key, value); err != nil {
			return nil, err
		}
	}

	cfg, loadErr := Load()

	var restoreErrs []string
	for key, prev := range previous {
		var err error
		if prev.set {
			err = os.Setenv(key, prev.value)
		} else {
			err = os.Unsetenv(key)
		}
		if err != nil {
			restoreErrs = append(restoreErrs, fmt.Sprintf("%s: %v", key, err))
		}
	}

	if loadErr != nil {
		return nil, loadErr
	}
	if len(restoreErrs) > 0 {
		return cfg, fmt.Errorf("restore env: %s", strings.Join(restoreErrs, "; "))
	}
	return cfg, nil
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}
