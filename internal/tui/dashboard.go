package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/worklog/internal/clock"
	"github.com/manav03panchal/worklog/internal/daemon"
	"github.com/manav03panchal/worklog/internal/errors"
)

// tickMsg is sent when the display clock ticks.
type tickMsg time.Time

// refreshMsg is sent when the daemon state should be re-read.
type refreshMsg struct{}

// StatusSource reports the daemon status.
type StatusSource interface {
	Status() *daemon.Status
}

// Controller sends control requests to a running daemon.
type Controller interface {
	Control(c daemon.Control) error
}

// DashboardModel is the bubbletea model for the live dashboard.
type DashboardModel struct {
	source     StatusSource
	controller Controller
	clock      clock.Clock

	status *daemon.Status
	now    time.Time

	// UI state
	width      int
	height     int
	err        error
	message    string
	messageExp time.Time

	refreshInterval time.Duration
	settleDelay     time.Duration
}

// DashboardConfig holds configuration for the dashboard.
type DashboardConfig struct {
	Source     StatusSource
	Controller Controller
	Clock      clock.Clock

	// RefreshInterval is how often the state snapshot is re-read.
	RefreshInterval time.Duration
	// SettleDelay is how long to wait after a control request before
	// re-reading the state the daemon rewrites in response.
	SettleDelay time.Duration
}

// NewDashboardModel creates a new dashboard model.
func NewDashboardModel(config DashboardConfig) *DashboardModel {
	if config.RefreshInterval == 0 {
		config.RefreshInterval = time.Second
	}
	if config.SettleDelay == 0 {
		config.SettleDelay = 300 * time.Millisecond
	}
	if config.Clock == nil {
		config.Clock = clock.New()
	}

	return &DashboardModel{
		source:          config.Source,
		controller:      config.Controller,
		clock:           config.Clock,
		refreshInterval: config.RefreshInterval,
		settleDelay:     config.SettleDelay,
	}
}

// Init initializes the model.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.refreshCmd(),
	)
}

// Update handles messages and updates the model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		if !m.messageExp.IsZero() && m.now.After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		m.loadData()
		return m, m.tickCmd()

	case refreshMsg:
		m.loadData()
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case " ", "t":
		if err := m.send(daemon.ControlToggle); err != nil {
			return m, nil
		}
		if m.recording() {
			m.setMessage("Stopping recording", 2*time.Second)
		} else {
			m.setMessage("Starting recording", 2*time.Second)
		}
		return m, m.settleCmd()

	case "r":
		if err := m.send(daemon.ControlReport); err != nil {
			return m, nil
		}
		m.setMessage("Building today's report", 3*time.Second)
		return m, m.settleCmd()

	case "u":
		m.loadData()
		m.setMessage("Refreshed", time.Second)
		return m, nil
	}

	return m, nil
}

func (m *DashboardModel) send(c daemon.Control) error {
	if m.controller == nil {
		m.err = errors.ErrControlNotSupport
		return m.err
	}
	if err := m.controller.Control(c); err != nil {
		m.err = err
		return err
	}
	m.err = nil
	return nil
}

func (m *DashboardModel) recording() bool {
	return NewStatusComponent(m.status, m.now, m.width).Recording()
}

// View renders the dashboard.
func (m *DashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	now := m.now
	if now.IsZero() {
		now = m.clock.Now()
	}

	sections := []string{header(now)}

	if m.err != nil {
		msg := fmt.Sprintf("Error: %v", m.err)
		if s := errors.GetSuggestion(m.err); s != "" {
			msg += "\n" + s
		}
		sections = append(sections, StyleError.Render(msg))
	}

	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	sections = append(sections, NewStatusComponent(m.status, now, m.width).View())

	if m.status != nil && m.status.Running {
		if mc := NewMetricsComponent(m.status.State, m.width); mc != nil {
			sections = append(sections, mc.View())
		}
	}

	sections = append(sections, HelpBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// loadData re-reads the daemon status.
func (m *DashboardModel) loadData() {
	if m.source == nil {
		return
	}
	m.status = m.source.Status()
	if m.now.IsZero() {
		m.now = m.clock.Now()
	}
}

// setMessage sets a temporary message.
func (m *DashboardModel) setMessage(msg string, duration time.Duration) {
	m.message = msg
	m.messageExp = m.clock.Now().Add(duration)
}

// tickCmd returns a command that sends a tick message.
func (m *DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd returns a command that sends a refresh message.
func (m *DashboardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshMsg{}
	}
}

// settleCmd refreshes once the daemon has had time to rewrite its state.
func (m *DashboardModel) settleCmd() tea.Cmd {
	return tea.Tick(m.settleDelay, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// Run starts the dashboard TUI.
func Run(config DashboardConfig) error {
	p := tea.NewProgram(NewDashboardModel(config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
