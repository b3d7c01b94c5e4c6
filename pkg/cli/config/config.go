package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/kairos/pkg/service/eventbus"
	"github.com/secmon-lab/kairos/pkg/service/nlu"
	"github.com/secmon-lab/kairos/pkg/service/worker"
	"github.com/urfave/cli/v3"
)

// Router modes
const (
	RouterModeHeuristic = "heuristic"
	RouterModeLLM       = "llm"
)

// AppConfig represents the application configuration loaded from a TOML
// file. Every section is optional.
type AppConfig struct {
	path string

	Notify    NotifyConfig    `toml:"notify"`
	Bus       BusConfig       `toml:"bus"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Router    RouterConfig    `toml:"router"`
	Todo      TodoConfig      `toml:"todo"`

	location *time.Location
	interval time.Duration
}

// NotifyConfig sets defaults for notifications created outside Slack
type NotifyConfig struct {
	DefaultUser    string `toml:"default_user"`
	DefaultChannel string `toml:"default_channel"`
	Timezone       string `toml:"timezone"`
}

type BusConfig struct {
	Buffer int `toml:"buffer"`
}

type SchedulerConfig struct {
	Interval string `toml:"interval"`
}

type RouterConfig struct {
	Mode string `toml:"mode"`
}

type TodoConfig struct {
	DigestHour int `toml:"digest_hour"`
}

// DefaultAppConfig returns the configuration used when no file is given
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Notify:    NotifyConfig{Timezone: nlu.DefaultTimezone},
		Bus:       BusConfig{Buffer: eventbus.DefaultBuffer},
		Scheduler: SchedulerConfig{Interval: worker.DefaultDeliveryInterval.String()},
		Router:    RouterConfig{Mode: RouterModeHeuristic},
		Todo:      TodoConfig{DigestHour: worker.DefaultDigestHour},
	}
}

// Flags returns CLI flags for the configuration file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("KAIROS_CONFIG"),
			Destination: &a.path,
		},
	}
}

func (a *AppConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", a.path),
		slog.String("timezone", a.Notify.Timezone),
		slog.String("default_channel", a.Notify.DefaultChannel),
		slog.Int("bus_buffer", a.Bus.Buffer),
		slog.String("scheduler_interval", a.Scheduler.Interval),
		slog.String("router_mode", a.Router.Mode),
		slog.Int("digest_hour", a.Todo.DigestHour),
	)
}

// Configure loads the file given by --config over the defaults and
// validates the result.
func (a *AppConfig) Configure() error {
	path := a.path
	*a = *DefaultAppConfig()
	a.path = path

	if path != "" {
		loaded, err := LoadAppConfiguration(path)
		if err != nil {
			return err
		}
		*a = *loaded
		a.path = path
	}

	return a.Validate()
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	config := DefaultAppConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return config, nil
}

// Validate checks every section and resolves derived values
func (a *AppConfig) Validate() error {
	loc, err := time.LoadLocation(a.Notify.Timezone)
	if err != nil {
		return goerr.Wrap(ErrInvalidTimezone, "unknown timezone", goerr.V(ValueKey, a.Notify.Timezone))
	}

	if a.Bus.Buffer <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "bus buffer must be positive", goerr.V(FieldKey, "bus.buffer"), goerr.V(ValueKey, a.Bus.Buffer))
	}

	interval, err := time.ParseDuration(a.Scheduler.Interval)
	if err != nil || interval <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "scheduler interval must be a positive duration", goerr.V(FieldKey, "scheduler.interval"), goerr.V(ValueKey, a.Scheduler.Interval))
	}

	switch a.Router.Mode {
	case RouterModeHeuristic, RouterModeLLM:
	default:
		return goerr.Wrap(ErrInvalidRouterMode, "router mode must be heuristic or llm", goerr.V(ValueKey, a.Router.Mode))
	}

	if a.Todo.DigestHour < 0 || a.Todo.DigestHour > 23 {
		return goerr.Wrap(ErrInvalidConfig, "digest hour must be between 0 and 23", goerr.V(FieldKey, "todo.digest_hour"), goerr.V(ValueKey, a.Todo.DigestHour))
	}

	a.location = loc
	a.interval = interval
	return nil
}

// Location returns the resolved timezone. Valid after Validate.
func (a *AppConfig) Location() *time.Location {
	if a.location == nil {
		return time.UTC
	}
	return a.location
}

// SchedulerInterval returns the delivery tick. Valid after Validate.
func (a *AppConfig) SchedulerInterval() time.Duration {
	if a.interval <= 0 {
		return worker.DefaultDeliveryInterval
	}
	return a.interval
}
