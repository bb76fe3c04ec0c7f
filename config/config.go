// Package config provides configuration management for the brewgen relay.
// It layers YAML files over defaults, expands environment variable references
// for secret material, and validates the result before the server starts.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the complete relay configuration.
// It combines server settings, upstream API settings, logging preferences,
// and circuit breaker tuning into a single structure.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Upstream       UpstreamConfig       `yaml:"upstream"`
	Logging        LoggingConfig        `yaml:"logging"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ServerConfig holds server-specific configuration for the HTTP server.
// It defines timeouts, limits, and operational parameters.
type ServerConfig struct {
	// Port specifies the HTTP server port (default: 8080)
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response (default: 45s). This is the only bound on a slow upstream:
	// the relay itself sets no timeout on the outbound call.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout specifies how long to wait for the server to shutdown
	// gracefully before forcing termination (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UpstreamConfig holds the settings for the chat-completion endpoint the
// relay forwards prompts to. The endpoint, model, and sampling parameters
// are fixed per deployment; every request carries the same values.
type UpstreamConfig struct {
	// Endpoint is the chat-completion URL
	Endpoint string `yaml:"endpoint" validate:"required,url"`

	// Model is the model identifier sent in every request payload
	Model string `yaml:"model" validate:"required"`

	// APIKey is the bearer credential for the upstream API.
	// Use an environment reference (e.g. ${OPENAI_API_KEY}) in YAML files.
	// An absent key is not diagnosed here: it surfaces to callers as an
	// ordinary upstream authentication failure.
	APIKey string `yaml:"api_key"`

	// Temperature is the fixed sampling temperature (default: 0.5)
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`

	// MaxTokens caps the model's output length (default: 800)
	MaxTokens int `yaml:"max_tokens" validate:"gt=0"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`

	// Format specifies log output format: json or text
	Format string `yaml:"format"`
}

// CircuitBreakerConfig tunes the breaker guarding the upstream call.
// Disabled by default: with the breaker off, every inbound POST maps to
// exactly one outbound call, which is the relay's documented behavior.
type CircuitBreakerConfig struct {
	// Enabled turns the breaker on
	Enabled bool `yaml:"enabled"`

	// MaxRequests is maximum number of requests allowed to pass through
	// when in half-open state
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval is the cyclic period of the closed state
	Interval time.Duration `yaml:"interval"`

	// Timeout is the period of the open state until it becomes half-open
	Timeout time.Duration `yaml:"timeout"`

	// FailureThreshold is the number of consecutive failures needed to
	// trip the circuit
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// DefaultConfig returns the configuration the relay runs with when no
// YAML file overrides it. The upstream credential is read from the
// process environment.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    45 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-3.5-turbo",
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Temperature: 0.5,
			MaxTokens:   800,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          false,
			MaxRequests:      1,
			Interval:         30 * time.Second,
			Timeout:          10 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// LoadFile loads configuration from a YAML file
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// expandEnvVars resolves environment variable references within
// configuration strings. It supports standard ${VAR} substitution and the
// ${VAR:-default} default-value syntax, and resolves nested references.
//
// The expanded text is never logged: it contains the upstream credential.
func expandEnvVars(s string) string {
	result := os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			envKey := key[:i]
			defaultValue := key[i+2:]

			if val := os.Getenv(envKey); val != "" {
				return val
			}
			return defaultValue
		}

		return os.Getenv(key)
	})

	// Recursively expand until no further substitutions are possible.
	prev := ""
	for prev != result {
		prev = result
		result = os.Expand(result, os.Getenv)
	}

	return result
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	// Start with defaults
	config := DefaultConfig()

	// Decode YAML on top of defaults
	dec := yaml.NewDecoder(strings.NewReader(expandedData))
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

var validate = validator.New()

// Validate checks if the configuration is valid.
// The API key is deliberately not checked: a missing credential surfaces
// as an upstream authentication failure, not a startup error.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout: %v", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("negative write timeout: %v", c.Server.WriteTimeout)
	}
	if c.Server.MaxHeaderBytes < 0 {
		return fmt.Errorf("negative max header bytes: %d", c.Server.MaxHeaderBytes)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("negative shutdown timeout: %v", c.Server.ShutdownTimeout)
	}

	// Upstream validation via struct tags
	if err := validate.Struct(c.Upstream); err != nil {
		return fmt.Errorf("upstream config: %w", err)
	}

	// Logging validation
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	// Circuit breaker validation
	if c.CircuitBreaker.Enabled {
		if c.CircuitBreaker.FailureThreshold == 0 {
			return fmt.Errorf("circuit breaker enabled with zero failure threshold")
		}
		if c.CircuitBreaker.Timeout <= 0 {
			return fmt.Errorf("circuit breaker enabled with non-positive timeout: %v", c.CircuitBreaker.Timeout)
		}
	}

	return nil
}
