package notifylist

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/fintrack/internal/keys"
	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/notify"
	"github.com/nhle/fintrack/internal/theme"
)

// OpenMsg is sent when the user opens a notification's detail.
type OpenMsg struct {
	Notification model.Notification
}

// MarkReadMsg asks the parent to mark a notification read.
type MarkReadMsg struct {
	Ref model.Ref
}

// DeleteMsg asks the parent to delete a notification.
type DeleteMsg struct {
	Ref model.Ref
}

// Model is the grouped notification list.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	view   *notify.View
	width  int
	height int
}

// New creates a notification list. now is used for relative times.
func New(k *keys.KeyMap, width, height int, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	l := list.New([]list.Item{}, ItemDelegate{now: now}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetView replaces the displayed groups, keeping the cursor on the same
// notification when it is still present.
func (m *Model) SetView(v *notify.View) tea.Cmd {
	var keep model.ID
	if sel, ok := m.Selected(); ok {
		keep = sel.ID
	}

	m.view = v

	var items []list.Item
	if v != nil {
		for _, g := range v.Groups {
			items = append(items, headerItem{title: g.Title, count: len(g.Notifications)})
			for _, n := range g.Notifications {
				items = append(items, NotificationItem{Notification: n})
			}
		}
	}
	cmd := m.list.SetItems(items)

	target := -1
	for i, it := range items {
		ni, ok := it.(NotificationItem)
		if !ok {
			continue
		}
		if target < 0 || ni.Notification.ID == keep {
			target = i
		}
		if ni.Notification.ID == keep {
			break
		}
	}
	if target >= 0 {
		m.list.Select(target)
	}
	return cmd
}

// CurrentView returns the displayed view, or nil before the first load.
func (m Model) CurrentView() *notify.View {
	return m.view
}

// Visible returns the notifications currently shown, in display order.
func (m Model) Visible() []model.Notification {
	return m.view.Visible()
}

// Selected returns the focused notification.
func (m Model) Selected() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(NotificationItem)
	if !ok {
		return model.Notification{}, false
	}
	return it.Notification, true
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the notification list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Select):
		if n, ok := m.Selected(); ok {
			return m, func() tea.Msg { return OpenMsg{Notification: n} }
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.MarkRead):
		if n, ok := m.Selected(); ok && !n.IsRead {
			return m, func() tea.Msg { return MarkReadMsg{Ref: n.Ref()} }
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Delete):
		if n, ok := m.Selected(); ok {
			return m, func() tea.Msg { return DeleteMsg{Ref: n.Ref()} }
		}
		return m, nil
	}

	up := key.Matches(keyMsg, m.keys.Up)

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.skipHeaders(up)
	return m, cmd
}

// skipHeaders moves the cursor off bucket header rows.
func (m *Model) skipHeaders(up bool) {
	items := m.list.Items()
	for i := 0; i < len(items); i++ {
		if _, isHeader := m.list.SelectedItem().(headerItem); !isHeader {
			return
		}
		idx := m.list.Index()
		if up && idx > 0 {
			m.list.CursorUp()
		} else if idx < len(items)-1 {
			m.list.CursorDown()
		} else {
			return
		}
	}
}

// View renders the list.
func (m Model) View() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.view == nil {
		return style.Render("Loading notifications...")
	}
	if len(m.list.Items()) == 0 {
		if m.view.Category != model.CategoryAll {
			return style.Render("No " + m.view.Category.Label() + " notifications.")
		}
		return style.Render("You're all caught up.\nNo notifications.")
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}
