package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/gousb"
	"github.com/karalabe/hid"

	"github.com/ntamas/aio-usb-hotplug/backend"
)

// LogEntry represents a log message
type LogEntry struct {
	Time    time.Time
	Message string
	Level   LogLevel
}

// LogLevel for log entries
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogSuccess
	LogWarning
	LogError
)

// deviceRow is one connected device in the device panel.
type deviceRow struct {
	key    string
	device backend.Device
	since  time.Time
}

// DevicePanel renders the currently connected devices.
type DevicePanel struct {
	rows      []deviceRow
	width     int
	height    int
	suspended bool
}

// NewDevicePanel creates a new device panel
func NewDevicePanel() *DevicePanel {
	return &DevicePanel{}
}

// Add records a newly connected device.
func (p *DevicePanel) Add(key string, device backend.Device) {
	p.rows = append(p.rows, deviceRow{key: key, device: device, since: time.Now()})
}

// Remove drops a device by key.
func (p *DevicePanel) Remove(key string) {
	for i, row := range p.rows {
		if row.key == key {
			p.rows = append(p.rows[:i], p.rows[i+1:]...)
			return
		}
	}
}

// Count returns the number of connected devices.
func (p *DevicePanel) Count() int {
	return len(p.rows)
}

// SetSuspended toggles the suspended indicator.
func (p *DevicePanel) SetSuspended(suspended bool) {
	p.suspended = suspended
}

// SetSize sets the panel dimensions
func (p *DevicePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the device panel content
func (p *DevicePanel) View() string {
	if len(p.rows) == 0 {
		if p.suspended {
			return DimStyle.Render("  Detection suspended")
		}
		return DimStyle.Render("  No devices")
	}

	var lines []string
	for _, row := range p.rows {
		marker := SuccessStyle.Render(StatusConnected)
		if p.suspended {
			marker = WarningStyle.Render(StatusSuspended)
		}
		since := DimStyle.Render(row.since.Format("15:04:05"))
		lines = append(lines, fmt.Sprintf("%s %s  %s", marker, Describe(row.device, row.key), since))
	}
	return strings.Join(lines, "\n")
}

// Describe renders a device handle for humans. Handles from the
// bundled backends get a detailed rendering; anything else falls back
// to the identity key.
func Describe(device backend.Device, key string) string {
	switch dev := device.(type) {
	case *gousb.DeviceDesc:
		return fmt.Sprintf("%s:%s bus %d addr %d", dev.Vendor, dev.Product, dev.Bus, dev.Address)
	case hid.DeviceInfo:
		name := strings.TrimSpace(dev.Manufacturer + " " + dev.Product)
		if name == "" {
			return key
		}
		return fmt.Sprintf("%s (%04x:%04x)", name, dev.VendorID, dev.ProductID)
	default:
		return key
	}
}

// LogPanel renders the scrolling event log.
type LogPanel struct {
	entries []LogEntry
	width   int
	height  int
}

// NewLogPanel creates a new log panel
func NewLogPanel() *LogPanel {
	return &LogPanel{}
}

// Add appends a log entry
func (p *LogPanel) Add(level LogLevel, message string) {
	p.entries = append(p.entries, LogEntry{
		Time:    time.Now(),
		Message: message,
		Level:   level,
	})
}

// Clear drops all log entries.
func (p *LogPanel) Clear() {
	p.entries = nil
}

// SetSize sets the panel dimensions
func (p *LogPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the log panel content, newest entries last, trimmed to
// the panel height.
func (p *LogPanel) View() string {
	if len(p.entries) == 0 {
		return DimStyle.Render("  No events yet")
	}

	visible := p.entries
	maxLines := p.height
	if maxLines > 0 && len(visible) > maxLines {
		visible = visible[len(visible)-maxLines:]
	}

	var lines []string
	for _, entry := range visible {
		ts := DimStyle.Render(entry.Time.Format("15:04:05"))
		msg := entry.Message
		switch entry.Level {
		case LogSuccess:
			msg = SuccessStyle.Render(msg)
		case LogWarning:
			msg = WarningStyle.Render(msg)
		case LogError:
			msg = ErrorStyle.Render(msg)
		}
		lines = append(lines, ts+" "+msg)
	}
	return strings.Join(lines, "\n")
}
