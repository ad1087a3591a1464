package config

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/theme"
)

// probeTimeout bounds a connection test.
const probeTimeout = 15 * time.Second

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeForm           Mode = iota // Editing fields
	ModeValidating                 // Testing connection
	ModeValidateResult             // Show validation result
)

// Probe tests that the finance API answers with the given settings.
type Probe func(ctx context.Context, api model.APIConfig) error

// DoneMsg signals the settings view should close without saving.
type DoneMsg struct{}

// SavedMsg signals the configuration was written to disk.
type SavedMsg struct {
	Config *model.AppConfig
	Path   string
}

// ValidateResultMsg carries the result of a connection test.
type ValidateResultMsg struct {
	Err error
}

// savedInternalMsg is sent after SaveConfig returns.
type savedInternalMsg struct {
	cfg *model.AppConfig
	err error
}

// formBindings holds field values on the heap so huh's Value pointers
// stay valid across Bubble Tea model copies.
type formBindings struct {
	baseURL     string
	pageSize    string
	includeRead bool
	pollSec     string
	backend     string
	logLevel    string
}

// Model edits the API, display, storage, and log settings.
type Model struct {
	mode    Mode
	form    *huh.Form
	fb      *formBindings
	base    *model.AppConfig
	pending *model.AppConfig
	path    string
	probe   Probe

	spinner    spinner.Model
	validError error
	statusMsg  string
	width      int
	height     int
}

// New creates a settings view that saves to path.
func New(path string, probe Probe, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		fb:      &formBindings{},
		path:    path,
		probe:   probe,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start opens the form pre-filled from cfg.
func (m *Model) Start(cfg *model.AppConfig) tea.Cmd {
	m.base = cfg
	m.pending = nil
	m.statusMsg = ""
	m.validError = nil
	m.mode = ModeForm

	m.fb.baseURL = cfg.API.BaseURL
	m.fb.pageSize = strconv.Itoa(cfg.API.PageSize)
	m.fb.includeRead = cfg.API.IncludeRead
	m.fb.pollSec = strconv.Itoa(cfg.Display.PollIntervalSec)
	m.fb.backend = cfg.Storage.Backend
	m.fb.logLevel = cfg.Log.Level

	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description("Versioned API root, e.g. https://api.example.com/api/v1").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Page size").
				Value(&m.fb.pageSize).
				Validate(validatePositive("Page size")),
			huh.NewConfirm().
				Title("Include read notifications").
				Value(&m.fb.includeRead),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Refresh interval (seconds)").
				Value(&m.fb.pollSec).
				Validate(validatePositive("Refresh interval")),
			huh.NewSelect[string]().
				Title("Local storage").
				Options(
					huh.NewOption("SQLite file", "sqlite"),
					huh.NewOption("Redis", "redis"),
				).
				Value(&m.fb.backend),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("debug", "debug"),
					huh.NewOption("info", "info"),
					huh.NewOption("warn", "warn"),
					huh.NewOption("error", "error"),
				).
				Value(&m.fb.logLevel),
		),
	).WithWidth(m.formWidth())
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ValidateResultMsg:
		m.validError = msg.Err
		m.mode = ModeValidateResult
		return m, nil

	case savedInternalMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.err)
			m.mode = ModeValidateResult
			return m, nil
		}
		path := m.path
		return m, func() tea.Msg { return SavedMsg{Config: msg.cfg, Path: path} }

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeValidating:
			// Only allow escape during validation
			if msg.String() == "esc" {
				return m, func() tea.Msg { return DoneMsg{} }
			}
			return m, nil
		case ModeValidateResult:
			return m.handleResultKeys(msg)
		}
	}

	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.mode != ModeForm || m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.pending = m.collect()
		m.mode = ModeValidating
		return m, tea.Batch(m.spinner.Tick, m.validate(m.pending.API))
	case huh.StateAborted:
		return m, func() tea.Msg { return DoneMsg{} }
	}
	return m, cmd
}

// handleResultKeys processes keys on the validation result screen.
func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if m.validError == nil {
			return m, m.save(m.pending)
		}
		return m, nil
	case "s":
		// Save even though the connection test failed.
		return m, m.save(m.pending)
	case "r":
		m.mode = ModeValidating
		m.validError = nil
		return m, tea.Batch(m.spinner.Tick, m.validate(m.pending.API))
	case "esc":
		return m, func() tea.Msg { return DoneMsg{} }
	}
	return m, nil
}

// collect builds the new configuration from the form values.
func (m Model) collect() *model.AppConfig {
	cfg := *m.base
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(m.fb.baseURL), "/")
	cfg.API.PageSize, _ = strconv.Atoi(strings.TrimSpace(m.fb.pageSize))
	cfg.API.IncludeRead = m.fb.includeRead
	cfg.Display.PollIntervalSec, _ = strconv.Atoi(strings.TrimSpace(m.fb.pollSec))
	cfg.Storage.Backend = m.fb.backend
	cfg.Log.Level = m.fb.logLevel
	return &cfg
}

func (m Model) validate(api model.APIConfig) tea.Cmd {
	probe := m.probe
	return func() tea.Msg {
		if probe == nil {
			return ValidateResultMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()
		return ValidateResultMsg{Err: probe(ctx, api)}
	}
}

func (m Model) save(cfg *model.AppConfig) tea.Cmd {
	path := m.path
	return func() tea.Msg {
		if err := cfg.Validate(); err != nil {
			return savedInternalMsg{err: err}
		}
		return savedInternalMsg{cfg: cfg, err: model.SaveConfig(path, cfg)}
	}
}

// View renders the settings view for the current mode.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var body string
	switch m.mode {
	case ModeForm:
		if m.form == nil {
			return ""
		}
		body = m.form.View()
	case ModeValidating:
		body = fmt.Sprintf("%s Testing connection to %s...", m.spinner.View(), m.pending.API.BaseURL)
	case ModeValidateResult:
		body = m.viewValidateResult()
	}

	content := titleStyle.Render("Settings") + "\n" + body
	if m.statusMsg != "" {
		content += "\n\n" + theme.WarningStyle.Render(m.statusMsg)
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

func (m Model) viewValidateResult() string {
	if m.validError == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("✓ Connected"),
			"",
			theme.HelpStyle.Render("enter save | esc cancel"),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		theme.WarningStyle.Render("✗ Connection failed"),
		lipgloss.NewStyle().Width(m.formWidth()).Render(m.validError.Error()),
		"",
		theme.HelpStyle.Render("r retry | s save anyway | esc cancel"),
	)
}

// Mode returns the current mode.
func (m Model) Mode() Mode {
	return m.mode
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validatePositive(fieldName string) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}
