package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound    = goerr.New("configuration file not found")
	ErrInvalidConfig     = goerr.New("invalid configuration")
	ErrInvalidTimezone   = goerr.New("invalid timezone")
	ErrInvalidRouterMode = goerr.New("invalid router mode")
	ErrInvalidBackend    = goerr.New("invalid repository backend")
	ErrInvalidProvider   = goerr.New("invalid LLM provider")
	ErrMissingRequired   = goerr.New("required setting is missing")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	FieldKey      = "field"
	ValueKey      = "value"
)
