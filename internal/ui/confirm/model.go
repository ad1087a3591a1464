package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ResultMsg reports the user's answer. Tag identifies which question
// was asked.
type ResultMsg struct {
	Tag       string
	Confirmed bool
}

type formBindings struct {
	ok bool
}

// Model is a yes/no dialog.
type Model struct {
	form  *huh.Form
	fb    *formBindings
	tag   string
	width int
}

// New creates a confirm dialog model.
func New(width int) Model {
	return Model{fb: &formBindings{}, width: width}
}

// Ask shows the dialog. The default answer is No.
func (m *Model) Ask(tag, title, description string) tea.Cmd {
	m.tag = tag
	m.fb.ok = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.ok),
		),
	).WithWidth(max(30, m.width-8))
	return m.form.Init()
}

// Update handles messages for the dialog.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted, huh.StateAborted:
		res := ResultMsg{Tag: m.tag, Confirmed: m.form.State == huh.StateCompleted && m.fb.ok}
		m.form = nil
		return m, func() tea.Msg { return res }
	}
	return m, cmd
}

// View renders the dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
}

// SetWidth updates the dialog width.
func (m *Model) SetWidth(width int) {
	m.width = width
}
