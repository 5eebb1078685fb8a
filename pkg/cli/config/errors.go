package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrInvalidDuration = goerr.New("invalid duration")
	ErrMissingSecret   = goerr.New("required secret is not set")
	ErrUnknownBackend  = goerr.New("unknown repository backend")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	ConfigKeyKey  = "key"
	BackendKey    = "backend"
)
