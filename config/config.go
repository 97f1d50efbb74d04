// Package config loads settings for the relay binary from a YAML file, then
// applies RELAY_* environment overrides on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Static    StaticConfig    `yaml:"static"`
	Cors      CorsConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Admin     AdminConfig     `yaml:"admin"`
	Session   SessionConfig   `yaml:"session"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
	// Headers are extra "Name: value" lines added to every response.
	Headers []string `yaml:"headers"`
}

type RateLimitConfig struct {
	RPS     float64       `yaml:"rps"`
	Burst   int           `yaml:"burst"`
	IdleTTL time.Duration `yaml:"idleTTL"`
}

// Enabled reports whether requests should be rate limited at all.
func (c RateLimitConfig) Enabled() bool {
	return c.RPS > 0 && c.Burst > 0
}

type StaticConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
}

type CorsConfig struct {
	Origins []string `yaml:"origins"`
	// TrustedOrigins bypass the cross-origin request forgery check.
	TrustedOrigins []string `yaml:"trustedOrigins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Color  bool   `yaml:"color"`
}

// SlogLevel parses Level, falling back to info.
func (c LogConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// AdminConfig is the basic auth account allowed to modify data. An empty
// password disables the admin routes.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SessionConfig controls the session cookie and how long an unused
// session is kept.
type SessionConfig struct {
	CookieName string        `yaml:"cookieName"`
	IdleTTL    time.Duration `yaml:"idleTTL"`
	Secure     bool          `yaml:"secure"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":42069",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestTimeout:  20 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		RateLimit: RateLimitConfig{
			RPS:     20,
			Burst:   40,
			IdleTTL: 5 * time.Minute,
		},
		Static: StaticConfig{Prefix: "/static"},
		Log:    LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "relay",
		},
		Admin: AdminConfig{Username: "admin"},
		Session: SessionConfig{
			CookieName: "relay_session",
			IdleTTL:    30 * time.Minute,
		},
	}
}

var defaultPaths = []string{"relay.yaml", "configs/relay.yaml"}

// Load reads the file at path over the defaults. With an empty path the
// default locations are tried and a missing file is not an error. Env
// overrides are applied last in both cases.
func Load(path string) (Config, error) {
	cfg := Default()

	candidates := defaultPaths
	if path != "" {
		candidates = []string{path}
	}

	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) && path == "" {
			continue
		}
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", p, err)
		}
		break
	}

	ApplyEnvOverrides(&cfg, os.Getenv)
	return cfg, nil
}

// Parse decodes YAML onto cfg. Keys absent from data keep their value.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnvOverrides applies RELAY_* variables read through getenv.
// Malformed values are ignored.
func ApplyEnvOverrides(cfg *Config, getenv func(string) string) {
	env := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	if v := env("RELAY_ADDR"); v != "" {
		cfg.Server.Address = v
	}
	if v, err := strconv.ParseInt(env("RELAY_MAX_BODY_BYTES"), 10, 64); err == nil {
		cfg.Server.MaxBodyBytes = v
	}
	if v, err := time.ParseDuration(env("RELAY_REQUEST_TIMEOUT")); err == nil {
		cfg.Server.RequestTimeout = v
	}
	if v, err := strconv.ParseFloat(env("RELAY_RATE_LIMIT_RPS"), 64); err == nil {
		cfg.RateLimit.RPS = v
	}
	if v, err := strconv.Atoi(env("RELAY_RATE_LIMIT_BURST")); err == nil {
		cfg.RateLimit.Burst = v
	}
	if v := env("RELAY_STATIC_DIR"); v != "" {
		cfg.Static.Dir = v
	}
	if v := env("RELAY_CORS_ORIGINS"); v != "" {
		cfg.Cors.Origins = splitList(v)
	}
	if v := env("RELAY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("RELAY_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := env("RELAY_ADMIN_USER"); v != "" {
		cfg.Admin.Username = v
	}
	if v := env("RELAY_ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	if v, err := strconv.ParseBool(env("RELAY_METRICS")); err == nil {
		cfg.Metrics.Enabled = v
	}
	if v, err := time.ParseDuration(env("RELAY_SESSION_TTL")); err == nil {
		cfg.Session.IdleTTL = v
	}
	if v, err := strconv.ParseBool(env("RELAY_SESSION_SECURE")); err == nil {
		cfg.Session.Secure = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
