package notifylist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/theme"
)

// headerItem is a non-selectable bucket title row.
type headerItem struct {
	title string
	count int
}

func (h headerItem) FilterValue() string { return "" }

// NotificationItem wraps a model.Notification so it can be used in a
// bubbles/list.
type NotificationItem struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i NotificationItem) FilterValue() string {
	return i.Notification.Title + " " + i.Notification.Message
}

// ItemDelegate implements list.ItemDelegate for notification rows.
type ItemDelegate struct {
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	switch it := item.(type) {
	case headerItem:
		fmt.Fprint(w, theme.BucketHeaderStyle.Render(
			fmt.Sprintf("%s (%d)", strings.ToUpper(it.title), it.count),
		))
	case NotificationItem:
		d.renderNotification(w, it.Notification, index == m.Index(), m.Width())
	}
}

func (d ItemDelegate) renderNotification(w io.Writer, n model.Notification, selected bool, width int) {
	dot := " "
	if !n.IsRead {
		dot = theme.UnreadDotStyle.Render("●")
	}

	catBadge := theme.CategoryStyle(n.Category).Render(shortLabel(n.Category))

	title := n.Title
	if !n.IsRead {
		title = lipgloss.NewStyle().Bold(true).Render(title)
	}

	srcBadge := ""
	if n.Source == model.SourceLocal {
		srcBadge = theme.SourceLabelStyle(n.Source).Render("local")
	}

	timeStr := theme.DimmedStyle.Render(model.RelativeTime(n.CreatedAt, d.now()))

	message := n.Message
	if width > 0 {
		budget := width - lipgloss.Width(title) - 40
		if budget < 0 {
			budget = 0
		}
		message = truncate(message, budget)
	}

	line := fmt.Sprintf("%s %s %s %s%s  %s",
		dot, catBadge, title, theme.DimmedStyle.Render(message), srcBadge, timeStr,
	)

	if n.IsRead && !selected {
		line = theme.DimmedStyle.Render(line)
	}

	if selected {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// shortLabel returns a fixed-width category badge.
func shortLabel(c model.Category) string {
	switch c {
	case model.CategoryTransactions:
		return "TXN"
	case model.CategoryBudget:
		return "BUD"
	case model.CategoryBills:
		return "BIL"
	case model.CategorySecurity:
		return "SEC"
	default:
		return "---"
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
