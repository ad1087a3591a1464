package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/fintrack/internal/keys"
	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// ActionMsg signals the parent to execute an action on the shown
// notification. Action is "read" or "delete".
type ActionMsg struct {
	Action string
	Ref    model.Ref
}

// Model is the notification detail view component.
type Model struct {
	notification *model.Notification
	viewport     viewport.Model
	keys         *keys.KeyMap
	now          func() time.Time
	width        int
	height       int
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		now:      now,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.notification != nil {
		ref := m.notification.Ref()
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.MarkRead):
			if !m.notification.IsRead {
				return m, func() tea.Msg { return ActionMsg{Action: "read", Ref: ref} }
			}
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			return m, func() tea.Msg { return ActionMsg{Action: "delete", Ref: ref} }
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.notification == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No notification selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	n := m.notification
	if n == nil {
		return ""
	}

	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(n.Title))

	state := "read"
	if !n.IsRead {
		state = "unread"
	}
	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.CategoryStyle(n.Category).Render(n.Category.Label()),
		"  ",
		theme.TypeStyle(n.NotificationType).Render(string(n.NotificationType)),
		"  ",
		theme.SourceLabelStyle(n.Source).Render(n.Source.String()),
		"  ",
		theme.DimmedStyle.Render(state),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(10)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) string {
		return metaStyle.Render(label) + " " + valStyle.Render(value)
	}

	if !n.CreatedAt.IsZero() {
		sections = append(sections, row("Received:", fmt.Sprintf(
			"%s (%s)",
			n.CreatedAt.In(m.now().Location()).Format("2006-01-02 15:04"),
			model.RelativeTime(n.CreatedAt, m.now()),
		)))
	}
	sections = append(sections, row("Icon:", model.IconFor(*n)))
	if n.TransactionID != nil {
		sections = append(sections, row("Txn:", fmt.Sprintf("#%d", *n.TransactionID)))
	}
	if target := model.ActionTarget(*n); target != "" {
		sections = append(sections, row("Open:", target))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(0, min(m.width-4, 80))))
	sections = append(sections, "", separator, "")

	body := n.Message
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No message")
	}
	sections = append(sections, lipgloss.NewStyle().Width(max(20, m.width-4)).Render(body))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetNotification updates the notification being displayed.
func (m *Model) SetNotification(n model.Notification) {
	m.notification = &n
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Notification returns the displayed notification, if any.
func (m Model) Notification() (model.Notification, bool) {
	if m.notification == nil {
		return model.Notification{}, false
	}
	return *m.notification, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.notification != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
