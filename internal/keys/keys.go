package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Category tabs
	NextTab        key.Binding
	PrevTab        key.Binding
	TabAll         key.Binding
	TabTransaction key.Binding
	TabBudget      key.Binding
	TabBills       key.Binding
	TabSecurity    key.Binding

	// Actions
	MarkRead    key.Binding
	Delete      key.Binding
	MarkAllRead key.Binding
	ClearAll    key.Binding

	// API token form
	Token key.Binding

	// Settings form
	Settings key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open detail"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "l", "right"),
			key.WithHelp("tab", "next category"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "h", "left"),
			key.WithHelp("shift+tab", "previous category"),
		),
		TabAll: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "all"),
		),
		TabTransaction: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "transactions"),
		),
		TabBudget: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "budget"),
		),
		TabBills: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "bills"),
		),
		TabSecurity: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "security"),
		),
		MarkRead: key.NewBinding(
			key.WithKeys("m", " "),
			key.WithHelp("m", "mark read"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		MarkAllRead: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "mark all read"),
		),
		ClearAll: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear all"),
		),
		Token: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "set API token"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
	}
}

// TabBindings returns the direct tab bindings in category order.
func (k *KeyMap) TabBindings() []key.Binding {
	return []key.Binding{k.TabAll, k.TabTransaction, k.TabBudget, k.TabBills, k.TabSecurity}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.NextTab, k.MarkRead,
		k.Delete, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.NextTab, k.PrevTab, k.TabAll, k.TabTransaction, k.TabBudget, k.TabBills, k.TabSecurity},
		{k.MarkRead, k.Delete, k.MarkAllRead, k.ClearAll},
		{k.Refresh, k.Command, k.Token, k.Settings, k.Help},
	}
}
