package config

import (
	"fmt"
	"time"

	"github.com/postsync/faultkit/logger"
	"github.com/postsync/faultkit/resilience"
	"github.com/postsync/faultkit/validation"
	"github.com/postsync/faultkit/version"
)

// RetrySettings configure the retry executor for one profile.
type RetrySettings struct {
	MaxAttempts     int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"omitempty,min=1"`
	BaseDelay       time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay        time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
	ExponentialBase float64       `yaml:"exponential_base" mapstructure:"exponential_base" validate:"omitempty,gt=1"`
	Jitter          *bool         `yaml:"jitter" mapstructure:"jitter"`
}

// BreakerSettings configure the circuit breaker for one profile.
type BreakerSettings struct {
	FailureThreshold int           `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"omitempty,min=1"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout" mapstructure:"recovery_timeout"`
}

// LimiterSettings configure the client-side rate limiter for one profile.
type LimiterSettings struct {
	Rate  float64 `yaml:"rate" mapstructure:"rate" validate:"omitempty,gt=0"`
	Burst int     `yaml:"burst" mapstructure:"burst" validate:"omitempty,min=1"`
}

// Profile bundles the resilience settings applied to one service. Zero
// fields in a service profile inherit from the defaults profile.
type Profile struct {
	Retry   RetrySettings   `yaml:"retry" mapstructure:"retry"`
	Breaker BreakerSettings `yaml:"breaker" mapstructure:"breaker"`
	Limiter LimiterSettings `yaml:"limiter" mapstructure:"limiter"`
	// Strategy names the recovery strategy the error handler dispatches
	// to for this service. Empty means no recovery.
	Strategy string `yaml:"strategy" mapstructure:"strategy" validate:"omitempty,oneof=retry_with_backoff fallback_service graceful_degradation"`
}

// Config is the root configuration.
type Config struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`

	// Defaults applies to every service without an explicit profile.
	Defaults Profile `yaml:"defaults" mapstructure:"defaults"`
	// Services maps a service name to its override profile.
	Services map[string]Profile `yaml:"services" mapstructure:"services" validate:"omitempty,dive"`
}

// ApplyDefaults fills zero fields with the built-in defaults.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()

	retry := resilience.DefaultRetryConfig()
	if c.Defaults.Retry.MaxAttempts == 0 {
		c.Defaults.Retry.MaxAttempts = retry.MaxAttempts
	}
	if c.Defaults.Retry.BaseDelay == 0 {
		c.Defaults.Retry.BaseDelay = retry.BaseDelay
	}
	if c.Defaults.Retry.MaxDelay == 0 {
		c.Defaults.Retry.MaxDelay = retry.MaxDelay
	}
	if c.Defaults.Retry.ExponentialBase == 0 {
		c.Defaults.Retry.ExponentialBase = retry.ExponentialBase
	}
	if c.Defaults.Retry.Jitter == nil {
		jitter := retry.Jitter
		c.Defaults.Retry.Jitter = &jitter
	}

	breaker := resilience.DefaultCircuitBreakerConfig("")
	if c.Defaults.Breaker.FailureThreshold == 0 {
		c.Defaults.Breaker.FailureThreshold = breaker.FailureThreshold
	}
	if c.Defaults.Breaker.RecoveryTimeout == 0 {
		c.Defaults.Breaker.RecoveryTimeout = breaker.RecoveryTimeout
	}

	limiter := resilience.DefaultRateLimiterConfig("")
	if c.Defaults.Limiter.Rate == 0 {
		c.Defaults.Limiter.Rate = limiter.Rate
	}
	if c.Defaults.Limiter.Burst == 0 {
		c.Defaults.Limiter.Burst = limiter.Burst
	}
}

// Validate checks the configuration after defaults were applied.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// ProfileFor returns the effective profile for a service: its overrides
// merged over the defaults.
func (c *Config) ProfileFor(service string) Profile {
	effective := c.Defaults
	override, ok := c.Services[service]
	if !ok {
		return effective
	}

	if override.Retry.MaxAttempts != 0 {
		effective.Retry.MaxAttempts = override.Retry.MaxAttempts
	}
	if override.Retry.BaseDelay != 0 {
		effective.Retry.BaseDelay = override.Retry.BaseDelay
	}
	if override.Retry.MaxDelay != 0 {
		effective.Retry.MaxDelay = override.Retry.MaxDelay
	}
	if override.Retry.ExponentialBase != 0 {
		effective.Retry.ExponentialBase = override.Retry.ExponentialBase
	}
	if override.Retry.Jitter != nil {
		effective.Retry.Jitter = override.Retry.Jitter
	}
	if override.Breaker.FailureThreshold != 0 {
		effective.Breaker.FailureThreshold = override.Breaker.FailureThreshold
	}
	if override.Breaker.RecoveryTimeout != 0 {
		effective.Breaker.RecoveryTimeout = override.Breaker.RecoveryTimeout
	}
	if override.Limiter.Rate != 0 {
		effective.Limiter.Rate = override.Limiter.Rate
	}
	if override.Limiter.Burst != 0 {
		effective.Limiter.Burst = override.Limiter.Burst
	}
	if override.Strategy != "" {
		effective.Strategy = override.Strategy
	}
	return effective
}

// RetryConfig builds the executor config for this profile.
func (p Profile) RetryConfig() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	if p.Retry.MaxAttempts != 0 {
		cfg.MaxAttempts = p.Retry.MaxAttempts
	}
	if p.Retry.BaseDelay != 0 {
		cfg.BaseDelay = p.Retry.BaseDelay
	}
	if p.Retry.MaxDelay != 0 {
		cfg.MaxDelay = p.Retry.MaxDelay
	}
	if p.Retry.ExponentialBase != 0 {
		cfg.ExponentialBase = p.Retry.ExponentialBase
	}
	if p.Retry.Jitter != nil {
		cfg.Jitter = *p.Retry.Jitter
	}
	return cfg
}

// BreakerConfig builds the circuit breaker config for this profile.
func (p Profile) BreakerConfig(service string) resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(service)
	if p.Breaker.FailureThreshold != 0 {
		cfg.FailureThreshold = p.Breaker.FailureThreshold
	}
	if p.Breaker.RecoveryTimeout != 0 {
		cfg.RecoveryTimeout = p.Breaker.RecoveryTimeout
	}
	return cfg
}

// LimiterConfig builds the rate limiter config for this profile.
func (p Profile) LimiterConfig(service string) resilience.RateLimiterConfig {
	cfg := resilience.DefaultRateLimiterConfig(service)
	if p.Limiter.Rate != 0 {
		cfg.Rate = p.Limiter.Rate
	}
	if p.Limiter.Burst != 0 {
		cfg.Burst = p.Limiter.Burst
	}
	return cfg
}

// RegistryOption wires this configuration into a breaker registry so that
// each service's breaker is created from its effective profile.
func (c *Config) RegistryOption() resilience.RegistryOption {
	return resilience.WithBreakerConfig(func(service string) resilience.CircuitBreakerConfig {
		return c.ProfileFor(service).BreakerConfig(service)
	})
}
