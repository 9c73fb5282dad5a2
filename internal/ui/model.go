package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	hotplug "github.com/ntamas/aio-usb-hotplug"
	"github.com/ntamas/aio-usb-hotplug/internal/config"
)

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int

	// Engine
	cfg         *config.Config
	detector    *hotplug.Detector
	backendName string

	streamCtx    context.Context
	streamCancel context.CancelFunc
	stream       *hotplug.Stream

	// Panels
	devicePanel *DevicePanel
	logPanel    *LogPanel

	// State
	suspended  bool
	streamDone bool
	streamErr  error
}

// NewModel creates a new model around a configured detector.
func NewModel(cfg *config.Config, detector *hotplug.Detector, backendName string) *Model {
	return &Model{
		cfg:         cfg,
		detector:    detector,
		backendName: backendName,
		devicePanel: NewDevicePanel(),
		logPanel:    NewLogPanel(),
	}
}

// eventMsg wraps hotplug events
type eventMsg struct {
	event hotplug.Event
}

// streamDoneMsg reports that the event stream ended
type streamDoneMsg struct {
	err error
}

// Init starts the scan loop and subscribes to its events.
func (m *Model) Init() tea.Cmd {
	m.logPanel.Add(LogInfo, "Monitoring started - backend: "+m.backendName)
	if m.cfg.Device.VendorID != "" || m.cfg.Device.ProductID != "" {
		m.logPanel.Add(LogInfo, "Filter: "+describeFilter(m.cfg))
	}

	m.streamCtx, m.streamCancel = context.WithCancel(context.Background())
	m.stream = m.detector.Events(m.streamCtx)

	return m.listenForNextEvent()
}

// listenForNextEvent continues listening on the existing event stream
func (m *Model) listenForNextEvent() tea.Cmd {
	stream := m.stream
	return func() tea.Msg {
		if stream == nil {
			return nil
		}
		event, ok := <-stream.C()
		if !ok {
			return streamDoneMsg{err: stream.Err()}
		}
		return eventMsg{event: event}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePanelSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		switch msg.event.Type {
		case hotplug.DeviceAdded:
			m.devicePanel.Add(msg.event.Key, msg.event.Device)
			m.logPanel.Add(LogSuccess, "Added "+Describe(msg.event.Device, msg.event.Key))
		case hotplug.DeviceRemoved:
			m.devicePanel.Remove(msg.event.Key)
			m.logPanel.Add(LogWarning, "Removed "+Describe(msg.event.Device, msg.event.Key))
		}
		return m, m.listenForNextEvent()

	case streamDoneMsg:
		m.streamDone = true
		m.streamErr = msg.err
		if msg.err != nil {
			m.logPanel.Add(LogError, "Detection stopped: "+msg.err.Error())
		} else {
			m.logPanel.Add(LogInfo, "Detection stopped")
		}
		return m, nil
	}

	return m, nil
}

// Err returns the terminal stream failure, if any, for the caller to
// report after the program exits.
func (m *Model) Err() error {
	return m.streamErr
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.streamCancel != nil {
			m.streamCancel()
		}
		return m, tea.Quit

	case "s":
		if m.streamDone {
			return m, nil
		}
		if m.suspended {
			m.detector.Resume()
			m.suspended = false
			m.logPanel.Add(LogInfo, "Detection resumed")
		} else {
			m.detector.Suspend()
			m.suspended = true
			m.logPanel.Add(LogWarning, "Detection suspended")
		}
		m.devicePanel.SetSuspended(m.suspended)
		return m, nil

	case "c":
		m.logPanel.Clear()
		return m, nil
	}

	return m, nil
}

func (m *Model) updatePanelSizes() {
	panelWidth := m.width - 4
	if panelWidth < 20 {
		panelWidth = 20
	}
	// Header and footer take a line each; the rest is split between
	// the device panel and the log panel.
	content := m.height - 6
	if content < 6 {
		content = 6
	}
	m.devicePanel.SetSize(panelWidth, content/2)
	m.logPanel.SetSize(panelWidth, content-content/2)
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Render("usbmon") +
		DimStyle.Render(" - "+m.backendName+" backend")
	if m.suspended {
		header += "  " + WarningStyle.Render(StatusSuspended+" suspended")
	}

	devices := PanelStyle.Width(m.width - 2).Render(
		TitleStyle.Render(fmt.Sprintf("Devices (%d)", m.devicePanel.Count())) +
			"\n" + m.devicePanel.View())

	log := PanelStyle.Width(m.width - 2).Render(
		TitleStyle.Render("Events") + "\n" + m.logPanel.View())

	footer := FooterStyle.Render(
		KeyHintStyle.Render("s") + " suspend/resume  " +
			KeyHintStyle.Render("c") + " clear log  " +
			KeyHintStyle.Render("q") + " quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, devices, log, footer)
}

func describeFilter(cfg *config.Config) string {
	var parts []string
	if cfg.Device.VendorID != "" {
		parts = append(parts, "vendor "+cfg.Device.VendorID)
	}
	if cfg.Device.ProductID != "" {
		parts = append(parts, "product "+cfg.Device.ProductID)
	}
	return strings.Join(parts, ", ")
}
