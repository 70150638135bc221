package gateway

import (
	"fmt"
	"os"
	"time"
)

// Defaults for the Gemini generateContent endpoint.
const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout = 60 * time.Second
)

// Config holds gateway configuration.
type Config struct {
	// APIKey is sent in the x-goog-api-key header. Required.
	APIKey string

	// Model is the generative model name (default: "gemini-2.5-flash")
	Model string

	// BaseURL is the API root, without trailing slash
	BaseURL string

	// Timeout bounds one outbound request
	Timeout time.Duration
}

// DefaultConfig returns a config with every optional field set.
func DefaultConfig() Config {
	return Config{
		Model:   DefaultModel,
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithBaseURL sets the API root URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// NewConfig applies opts over DefaultConfig and validates the result.
func NewConfig(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the config can be used to issue requests.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Model == "" {
		return fmt.Errorf("gateway: model is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("gateway: base url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("gateway: timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// ConfigFromEnv builds a config from GEMINI_API_KEY (or API_KEY),
// GEMINI_MODEL, GEMINI_BASE_URL and GEMINI_TIMEOUT.
func ConfigFromEnv() (Config, error) {
	return configFromLookup(os.Getenv)
}

func configFromLookup(getenv func(string) string) (Config, error) {
	key := getenv("GEMINI_API_KEY")
	if key == "" {
		key = getenv("API_KEY")
	}
	opts := []Option{WithAPIKey(key)}

	if model := getenv("GEMINI_MODEL"); model != "" {
		opts = append(opts, WithModel(model))
	}
	if baseURL := getenv("GEMINI_BASE_URL"); baseURL != "" {
		opts = append(opts, WithBaseURL(baseURL))
	}
	if raw := getenv("GEMINI_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GEMINI_TIMEOUT %q: %w", raw, err)
		}
		opts = append(opts, WithTimeout(timeout))
	}

	return NewConfig(opts...)
}
