package tokenform

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/fintrack/internal/theme"
)

// SubmittedMsg is dispatched when the user submits a token.
type SubmittedMsg struct {
	Token string
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings lives on the heap so huh's Value pointer survives
// Bubble Tea model copies.
type formBindings struct {
	token string
}

// Model prompts for the finance API token.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a token form model.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// Start resets and focuses the form.
func (m *Model) Start() tea.Cmd {
	m.fb.token = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API token").
				Description("Stored in the system keyring.").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("token cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(max(30, m.width-8)).WithShowHelp(true)
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		token := strings.TrimSpace(m.fb.token)
		m.form = nil
		return m, func() tea.Msg { return SubmittedMsg{Token: token} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Finance API Token")

	return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
