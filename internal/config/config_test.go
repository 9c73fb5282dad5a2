package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ntamas/aio-usb-hotplug/backend"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
[device]
vendor_id = "1050"
product_id = "0x0407"

[monitor]
backend = "usb"
poll_interval = "500ms"
`
	path := writeTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Device
	if cfg.Device.VendorID != "1050" {
		t.Errorf("device.vendor_id = %q, want %q", cfg.Device.VendorID, "1050")
	}
	if cfg.Device.ProductID != "0x0407" {
		t.Errorf("device.product_id = %q, want %q", cfg.Device.ProductID, "0x0407")
	}

	// Monitor
	if cfg.Monitor.Backend != "usb" {
		t.Errorf("monitor.backend = %q, want %q", cfg.Monitor.Backend, "usb")
	}
	if cfg.Monitor.PollInterval != Duration(500*time.Millisecond) {
		t.Errorf("monitor.poll_interval = %v, want %v", cfg.Monitor.PollInterval, Duration(500*time.Millisecond))
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
[device]
vendor_id = "1050"
`
	path := writeTempConfig(t, content)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Monitor.Backend != DefaultBackend {
		t.Errorf("backend = %q, want default %q", cfg.Monitor.Backend, DefaultBackend)
	}
	if cfg.Monitor.PollInterval != DefaultPollInterval {
		t.Errorf("poll_interval = %v, want default %v", cfg.Monitor.PollInterval, DefaultPollInterval)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	content := `
[monitor]
backend = "telepathy"
`
	path := writeTempConfig(t, content)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoad_InvalidVendorID(t *testing.T) {
	content := `
[device]
vendor_id = "not-hex"
`
	path := writeTempConfig(t, content)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unparsable vendor ID")
	}
}

func TestLoad_ExplicitFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	content := `this is not valid toml {{{`
	path := writeTempConfig(t, content)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestFilter_Empty(t *testing.T) {
	cfg := &Config{}
	params, err := cfg.Device.Filter()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params != nil {
		t.Errorf("Filter() = %v, want nil for empty config", params)
	}
}

func TestFilter_NormalizesIDs(t *testing.T) {
	cfg := &Config{Device: DeviceConfig{VendorID: "0402", ProductID: "0x0204"}}
	params, err := cfg.Device.Filter()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := params[backend.ParamVendorID]; got != uint16(0x0402) {
		t.Errorf("vendor ID = %v, want 0x0402", got)
	}
	if got := params[backend.ParamProductID]; got != uint16(0x0204) {
		t.Errorf("product ID = %v, want 0x0204", got)
	}
}

func TestFilter_VendorOnly(t *testing.T) {
	cfg := &Config{Device: DeviceConfig{VendorID: "1050"}}
	params, err := cfg.Device.Filter()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := params[backend.ParamVendorID]; got != uint16(0x1050) {
		t.Errorf("vendor ID = %v, want 0x1050", got)
	}
	if _, ok := params[backend.ParamProductID]; ok {
		t.Error("product ID set without configuration")
	}
}

func TestGenerateExampleConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "usbmon", "config.toml")

	result, err := GenerateExampleConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result != path {
		t.Errorf("returned path = %q, want %q", result, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("cannot read generated file: %v", err)
	}

	if string(data) != ExampleConfig {
		t.Error("generated config does not match ExampleConfig")
	}

	// Verify the generated config is valid and loadable
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("generated config is not loadable: %v", err)
	}
	if cfg.Monitor.Backend != "auto" {
		t.Errorf("example monitor.backend = %q, want %q", cfg.Monitor.Backend, "auto")
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !filepath.IsAbs(path) {
		t.Errorf("path %q is not absolute", path)
	}

	if filepath.Base(path) != "config.toml" {
		t.Errorf("path base = %q, want config.toml", filepath.Base(path))
	}
}

func TestDefaultPath_XDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/xdg/config")

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "/custom/xdg/config/usbmon/config.toml"
	if path != expected {
		t.Errorf("path = %q, want %q", path, expected)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("cannot write temp config: %v", err)
	}
	return path
}
