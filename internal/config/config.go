// Package config loads and hot-reloads the hub's process configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can spell windows as
// "48h" or "30m" in both YAML and TOML.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalText parses a time.ParseDuration string. BurntSushi/toml
// resolves string fields through this hook.
func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(b), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration back in time.Duration notation.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalYAML parses either a duration string ("48h") or an integer
// nanosecond count; yaml.v3 does not consult encoding.TextUnmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		return d.UnmarshalText([]byte(s))
	}
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	return fmt.Errorf("parse duration from yaml %q", value.Value)
}

// HubConfig is the hub's single process-wide configuration struct.
// Engine wiring (repositories, bus construction) is fixed at process
// start; only RetentionWindow and BusRingCapacity are hot-reloadable.
type HubConfig struct {
	// HTTPAddr is the listen address for the REST/SSE adapter.
	HTTPAddr string `yaml:"http_addr" toml:"http_addr" env:"HUB_HTTP_ADDR"`
	// BusRingCapacity is the per-subscriber ring size of the event bus.
	// Hot-reloadable; applies only to subscribers created after a reload.
	BusRingCapacity int `yaml:"bus_ring_capacity" toml:"bus_ring_capacity" env:"HUB_BUS_RING_CAPACITY"`
	// RetentionWindow is the maximum age of history rows the retention
	// task keeps. Hot-reloadable.
	RetentionWindow Duration `yaml:"retention_window" toml:"retention_window" env:"HUB_RETENTION_WINDOW"`
	// RetentionCron is the cron expression the retention task runs on.
	RetentionCron string `yaml:"retention_cron" toml:"retention_cron" env:"HUB_RETENTION_CRON"`
	// LogDriver selects the ambient Logger implementation: "slog" or "zap".
	LogDriver string `yaml:"log_driver" toml:"log_driver" env:"HUB_LOG_DRIVER"`

	// Source is the file the config was loaded from, if any. Set by
	// Load, never read from the file itself; the Watcher reloads from it.
	Source string `yaml:"-" toml:"-"`
}

// Default returns the hub's baseline configuration.
func Default() HubConfig {
	return HubConfig{
		HTTPAddr:        ":8080",
		BusRingCapacity: 256,
		RetentionWindow: Duration(30 * 24 * time.Hour),
		RetentionCron:   "@daily",
		LogDriver:       "slog",
	}
}

// Load reads path (YAML or TOML, selected by file extension) into a
// HubConfig seeded with Default, then applies any matching environment
// variable overrides.
func Load(path string) (HubConfig, error) {
	cfg := Default()
	cfg.Source = path
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return HubConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if err := toml.Unmarshal(raw, &cfg); err != nil {
				return HubConfig{}, fmt.Errorf("parse toml config %s: %w", path, err)
			}
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return HubConfig{}, fmt.Errorf("parse yaml config %s: %w", path, err)
			}
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides overwrites every file-backed field (HTTPAddr,
// BusRingCapacity, RetentionWindow, RetentionCron, LogDriver) from its
// mapped environment variable when set. An unparsable capacity or
// window value is ignored.
func applyEnvOverrides(cfg *HubConfig) {
	if v, ok := os.LookupEnv("HUB_HTTP_ADDR"); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("HUB_BUS_RING_CAPACITY"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BusRingCapacity = n
		}
	}
	if v, ok := os.LookupEnv("HUB_RETENTION_WINDOW"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RetentionWindow = Duration(d)
		}
	}
	if v, ok := os.LookupEnv("HUB_RETENTION_CRON"); ok {
		cfg.RetentionCron = v
	}
	if v, ok := os.LookupEnv("HUB_LOG_DRIVER"); ok {
		cfg.LogDriver = v
	}
}
