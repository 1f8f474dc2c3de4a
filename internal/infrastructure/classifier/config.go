package classifier

import (
	"errors"
	"time"
)

// Config holds connection settings for the churn model HTTP service
type Config struct {
	// BaseURL is the model service root, e.g. http://model.internal:9000
	BaseURL string
	// Timeout is the per-request HTTP timeout
	Timeout time.Duration
	// MaxRetries bounds retry attempts on transient failures
	MaxRetries int
	// RetryBackoff is the base delay between retries
	RetryBackoff time.Duration
	// ModelVersion is the version advertised until the service reports its own
	ModelVersion string
	// HealthTimeout is the timeout applied to health probes
	HealthTimeout time.Duration
}

var (
	ErrConfigMissingBaseURL = errors.New("classifier: base URL is required")
)

// Validate validates the configuration and fills defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
	if c.HealthTimeout <= 0 {
		c.HealthTimeout = 3 * time.Second
	}
	if c.ModelVersion == "" {
		c.ModelVersion = "unknown"
	}
	return nil
}
