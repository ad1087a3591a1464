package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/fintrack/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2563EB"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the detail view content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// BucketHeaderStyle renders the Today / Yesterday / Earlier This Week rows.
var BucketHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGray).
	PaddingLeft(1)

// DimmedStyle renders read notifications.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// UnreadDotStyle marks unread notifications.
var UnreadDotStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// TabStyle and ActiveTabStyle render the category tab bar.
var (
	TabStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorBlue).
			Padding(0, 1)
)

// WarningStyle is used for offline and error banners.
var WarningStyle = lipgloss.NewStyle().
	Foreground(ColorYellow).
	Bold(true)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// CategoryColor returns the accent color for a category.
func CategoryColor(c model.Category) lipgloss.AdaptiveColor {
	switch c {
	case model.CategoryTransactions:
		return ColorBlue
	case model.CategoryBudget:
		return ColorGreen
	case model.CategoryBills:
		return ColorOrange
	case model.CategorySecurity:
		return ColorRed
	default:
		return ColorGray
	}
}

// CategoryStyle returns a color-coded badge style for the given category.
func CategoryStyle(c model.Category) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(CategoryColor(c))
}

// TypeStyle returns a color-coded style for a notification type. Alerts
// are red, reminders yellow, confirmations green.
func TypeStyle(t model.NotificationType) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch t {
	case model.TypeBudgetExceeded, model.TypeSecurityAlert, model.TypeNewDeviceLogin:
		return base.Foreground(ColorRed)
	case model.TypeBillReminder, model.TypeUpcomingBill, model.TypeSubscriptionRenewal:
		return base.Foreground(ColorYellow)
	case model.TypeBudgetGoalAchieved:
		return base.Foreground(ColorGreen)
	case model.TypeLargeTransaction:
		return base.Foreground(ColorOrange)
	case model.TypeWeeklySummary:
		return base.Foreground(ColorMagenta)
	default:
		return base.Foreground(ColorBlue)
	}
}

// SourceLabelStyle returns a style for the local/remote origin badge.
func SourceLabelStyle(s model.Source) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1)

	switch s {
	case model.SourceLocal:
		return base.Foreground(ColorMagenta)
	case model.SourceRemote:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
