package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	hotplug "github.com/ntamas/aio-usb-hotplug"
	"github.com/ntamas/aio-usb-hotplug/backend"
)

// Duration wraps time.Duration for TOML string parsing.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the complete usbmon configuration.
type Config struct {
	Device  DeviceConfig  `toml:"device"`
	Monitor MonitorConfig `toml:"monitor"`
}

// DeviceConfig narrows monitoring to specific devices. Empty fields
// match everything.
type DeviceConfig struct {
	VendorID  string `toml:"vendor_id"`  // hex, e.g. "1050" or "0x1050"
	ProductID string `toml:"product_id"` // hex, e.g. "0407" or "0x0407"
}

// MonitorConfig defines how the bus is watched.
type MonitorConfig struct {
	Backend      string   `toml:"backend"` // "auto", "usb", "hid" or "dummy"
	PollInterval Duration `toml:"poll_interval"`
}

// DefaultPath returns the default config file path following XDG
// conventions. On Unix, checks $XDG_CONFIG_HOME first, then falls back
// to ~/.config.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "usbmon", "config.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "usbmon", "config.toml"), nil
}

// Load reads and parses a config file from the given path. If path is
// empty, it uses the default XDG path; a missing default file is not
// an error and yields the defaults (monitor everything).
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config: watch the whole bus with defaults.
	default:
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Monitor.Backend == "" {
		cfg.Monitor.Backend = DefaultBackend
	}
	if cfg.Monitor.PollInterval == 0 {
		cfg.Monitor.PollInterval = DefaultPollInterval
	}
}

// validate checks field values without touching the platform.
func validate(cfg *Config) error {
	var errs []error

	switch cfg.Monitor.Backend {
	case "auto", "usb", "hid", "dummy":
	default:
		errs = append(errs, fmt.Errorf("monitor.backend %q is not one of auto, usb, hid, dummy", cfg.Monitor.Backend))
	}

	if cfg.Monitor.PollInterval < 0 {
		errs = append(errs, errors.New("monitor.poll_interval must not be negative"))
	}

	if cfg.Device.VendorID != "" {
		if _, err := hotplug.ParseID(cfg.Device.VendorID); err != nil {
			errs = append(errs, fmt.Errorf("device.vendor_id: %w", err))
		}
	}
	if cfg.Device.ProductID != "" {
		if _, err := hotplug.ParseID(cfg.Device.ProductID); err != nil {
			errs = append(errs, fmt.Errorf("device.product_id: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Filter converts the device section into backend parameters. A nil
// result means no filtering.
func (c *DeviceConfig) Filter() (map[string]any, error) {
	if c.VendorID == "" && c.ProductID == "" {
		return nil, nil
	}

	params := make(map[string]any, 2)
	if c.VendorID != "" {
		vid, err := hotplug.ParseID(c.VendorID)
		if err != nil {
			return nil, fmt.Errorf("vendor ID: %w", err)
		}
		params[backend.ParamVendorID] = vid
	}
	if c.ProductID != "" {
		pid, err := hotplug.ParseID(c.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product ID: %w", err)
		}
		params[backend.ParamProductID] = pid
	}
	return params, nil
}
