package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	hotplug "github.com/ntamas/aio-usb-hotplug"
	"github.com/ntamas/aio-usb-hotplug/backend"
	"github.com/ntamas/aio-usb-hotplug/internal/config"
	"github.com/ntamas/aio-usb-hotplug/internal/ui"
)

var version = "dev"

func main() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(versionFlag, "v", false, "Print version and exit (shorthand)")

	configPath := flag.String("config", "", "Path to config file")
	initConfig := flag.Bool("init", false, "Generate example config file")
	noTUI := flag.Bool("no-tui", false, "Headless mode for scripting")
	vid := flag.String("vid", "", "Vendor ID filter (hex), overrides config")
	pid := flag.String("pid", "", "Product ID filter (hex), overrides config")
	verbose := flag.Bool("verbose", false, "Debug logging (headless mode only)")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("usbmon %s\n", version)
		os.Exit(0)
	}

	if *initConfig {
		path, err := config.GenerateExampleConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created config at %s\n", path)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *vid != "" {
		cfg.Device.VendorID = *vid
	}
	if *pid != "" {
		cfg.Device.ProductID = *pid
	}

	if *noTUI {
		if err := runHeadless(cfg, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	detector, name, err := newDetector(cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Launch TUI
	model := ui.NewModel(cfg, detector, name)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := model.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless prints one line per hotplug event until interrupted.
func runHeadless(cfg *config.Config, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	detector, name, err := newDetector(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("monitoring USB bus", "backend", name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream := detector.Events(ctx)
	for event := range stream.C() {
		fmt.Printf("%s device %s\n", event.Type, event.Key)
	}
	return stream.Err()
}

// newDetector assembles a detector from the config, returning the
// backend name alongside for display purposes.
func newDetector(cfg *config.Config, logger *slog.Logger) (*hotplug.Detector, string, error) {
	params, err := cfg.Device.Filter()
	if err != nil {
		return nil, "", err
	}

	var opts []hotplug.Option
	if logger != nil {
		opts = append(opts, hotplug.WithLogger(logger))
	}

	b, name, err := newBackend(cfg)
	if err != nil {
		return nil, "", err
	}
	if b != nil {
		opts = append(opts, hotplug.WithBackend(b))
	}

	detector, err := hotplug.New(params, opts...)
	if err != nil {
		return nil, "", err
	}
	if name == "auto" {
		// Autodetected backends still honor the configured interval.
		if interval := time.Duration(cfg.Monitor.PollInterval); interval > 0 {
			switch b := detector.Backend().(type) {
			case *backend.USB:
				b.Interval = interval
			case *backend.HID:
				b.Interval = interval
			}
		}
		name = backendName(detector.Backend())
	}
	return detector, name, nil
}

// newBackend builds the configured bus scanner. A nil backend means
// "let the detector autodetect".
func newBackend(cfg *config.Config) (backend.Backend, string, error) {
	interval := time.Duration(cfg.Monitor.PollInterval)

	switch cfg.Monitor.Backend {
	case "", "auto":
		return nil, "auto", nil
	case "usb":
		u := backend.NewUSB()
		if interval > 0 {
			u.Interval = interval
		}
		return u, "usb", nil
	case "hid":
		h := backend.NewHID()
		if interval > 0 {
			h.Interval = interval
		}
		return h, "hid", nil
	case "dummy":
		return backend.NewDummy(), "dummy", nil
	default:
		return nil, "", fmt.Errorf("unknown backend %q", cfg.Monitor.Backend)
	}
}

func backendName(b backend.Backend) string {
	switch b.(type) {
	case *backend.USB:
		return "usb"
	case *backend.HID:
		return "hid"
	case *backend.Dummy:
		return "dummy"
	default:
		return fmt.Sprintf("%T", b)
	}
}
