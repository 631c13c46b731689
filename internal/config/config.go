// Package config loads and validates frogfind configuration via Viper.
//
// Values come from, in increasing priority: built-in defaults, a
// .frogfind.yaml file, FROGFIND_* environment variables and command-line
// flags bound by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/frogfind/internal/version"
)

// ErrInvalid is returned when the loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes every environment variable, e.g. FROGFIND_CACHE_TTL.
const EnvPrefix = "FROGFIND"

// Config captures every service setting.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Search SearchConfig `mapstructure:"search"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// CacheConfig bounds the rendered article cache.
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl" validate:"gt=0"`
	MaxEntries int           `mapstructure:"max_entries" validate:"gte=0"`
}

// FetchConfig configures upstream page fetching.
type FetchConfig struct {
	Mode      string        `mapstructure:"mode" validate:"oneof=static dynamic"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent" validate:"required"`
	// MaxBodySize is a human-readable size such as "5MB"; "0" is unlimited.
	MaxBodySize string `mapstructure:"max_body_size" validate:"bytesize"`
	// WaitDuration is an extra settle time for dynamic fetches.
	WaitDuration time.Duration `mapstructure:"wait_duration" validate:"gte=0"`
}

// SearchConfig configures the search backend.
type SearchConfig struct {
	Endpoint  string        `mapstructure:"endpoint" validate:"required,url"`
	UserAgent string        `mapstructure:"user_agent" validate:"required"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Debug bool `mapstructure:"debug"`
	Quiet bool `mapstructure:"quiet"`
	JSON  bool `mapstructure:"json"`
}

// MaxBodyBytes returns the parsed body size limit, 0 for unlimited.
func (c FetchConfig) MaxBodyBytes() int {
	n, err := parseBytes(c.MaxBodySize)
	if err != nil {
		return 0
	}
	return int(n)
}

// Configure points v at the config file and environment. An explicit path
// must exist; otherwise .frogfind.yaml is looked up in the home and working
// directories and may be absent.
func Configure(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".frogfind")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load builds a validated Config from v. Defaults are registered on v
// first so every key is visible to environment lookups.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the built-in value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("cache.ttl", "15m")
	v.SetDefault("cache.max_entries", 0)

	v.SetDefault("fetch.mode", "static")
	v.SetDefault("fetch.timeout", "10s")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	v.SetDefault("fetch.max_body_size", "5MB")
	v.SetDefault("fetch.wait_duration", "0s")

	v.SetDefault("search.endpoint", "https://html.duckduckgo.com/html/")
	v.SetDefault("search.user_agent", "Mozilla/5.0 (compatible; "+version.UserAgent()+")")
	v.SetDefault("search.timeout", "10s")

	v.SetDefault("log.debug", false)
	v.SetDefault("log.quiet", false)
	v.SetDefault("log.json", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	validate := validator.New()
	_ = validate.RegisterValidation("bytesize", func(fl validator.FieldLevel) bool {
		_, err := parseBytes(fl.Field().String())
		return err == nil
	})

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// formatFieldError turns a validator error into "cache.ttl must be > 0".
func formatFieldError(e validator.FieldError) string {
	field := keyFor(e.Namespace())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return field + " must be > " + e.Param()
	case "gte":
		return field + " must be >= " + e.Param()
	case "oneof":
		return field + " must be one of [" + e.Param() + "]"
	case "url":
		return field + " must be a URL"
	case "hostname_port":
		return field + " must be host:port"
	case "bytesize":
		return field + " must be a size such as 5MB"
	}
	return field + " failed " + e.Tag()
}

// keyFor maps "Config.Cache.MaxEntries" to "cache.max_entries".
func keyFor(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			// Keep acronyms such as TTL together.
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				sb.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func parseBytes(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	return humanize.ParseBytes(s)
}

// YAML renders the effective configuration in the config file format.
func (c Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c.Document())
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}

// Document returns the configuration keyed the way the config file and
// environment name it, with durations as strings.
func (c Config) Document() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"addr":             c.Server.Addr,
			"read_timeout":     c.Server.ReadTimeout.String(),
			"write_timeout":    c.Server.WriteTimeout.String(),
			"shutdown_timeout": c.Server.ShutdownTimeout.String(),
		},
		"cache": map[string]any{
			"ttl":         c.Cache.TTL.String(),
			"max_entries": c.Cache.MaxEntries,
		},
		"fetch": map[string]any{
			"mode":          c.Fetch.Mode,
			"timeout":       c.Fetch.Timeout.String(),
			"user_agent":    c.Fetch.UserAgent,
			"max_body_size": c.Fetch.MaxBodySize,
			"wait_duration": c.Fetch.WaitDuration.String(),
		},
		"search": map[string]any{
			"endpoint":   c.Search.Endpoint,
			"user_agent": c.Search.UserAgent,
			"timeout":    c.Search.Timeout.String(),
		},
		"log": map[string]any{
			"debug": c.Log.Debug,
			"quiet": c.Log.Quiet,
			"json":  c.Log.JSON,
		},
	}
}

// Summary returns human-readable limits for the startup log line.
func (c Config) Summary() []any {
	body := "unlimited"
	if n := c.Fetch.MaxBodyBytes(); n > 0 {
		body = humanize.Bytes(uint64(n))
	}
	return []any{
		"addr", c.Server.Addr,
		"fetch_mode", c.Fetch.Mode,
		"cache_ttl", c.Cache.TTL,
		"max_body", body,
	}
}
