// Package config loads and validates resilience configuration: retry,
// circuit breaker and rate limiter settings, with per-service profile
// overrides on top of shared defaults.
//
// Configuration comes from a YAML file plus environment variables with the
// FAULTKIT_ prefix (e.g. FAULTKIT_DEFAULTS_RETRY_MAX_ATTEMPTS). A .env
// file, when present, is loaded before the environment is read.
//
//	cfg, err := config.Load("postsync")
//	reg := resilience.NewRegistry(cfg.RegistryOption())
//	retryCfg := cfg.ProfileFor("openai").RetryConfig()
package config
