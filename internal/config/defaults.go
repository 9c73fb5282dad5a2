package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default values for optional config fields.
const (
	DefaultBackend      = "auto"
	DefaultPollInterval = Duration(time.Second)
)

// ExampleConfig is the template for --init with documentation comments.
const ExampleConfig = `# usbmon configuration

[device]
# Optional: only report devices with this vendor ID (hex)
#vendor_id = "1050"

# Optional: only report devices with this product ID (hex)
#product_id = "0407"

[monitor]
# Bus scanner backend: "auto" probes the platform, or force one of
# "usb" (libusb), "hid" (hidapi), "dummy" (never finds anything)
backend = "auto"

# How often to rescan when the platform has no hotplug notifications
# (duration string: "500ms", "1s", etc.)
poll_interval = "1s"
`

// GenerateExampleConfig writes the example config to the given path.
// If path is empty, it uses the default XDG path.
// Returns the path where the file was written.
func GenerateExampleConfig(path string) (string, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	// Create parent directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(ExampleConfig), 0644); err != nil {
		return "", fmt.Errorf("cannot write config file: %w", err)
	}

	return path, nil
}
