package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/fintrack/internal/credential"
	"github.com/nhle/fintrack/internal/keys"
	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/notify"
	appsync "github.com/nhle/fintrack/internal/sync"
	"github.com/nhle/fintrack/internal/theme"
	"github.com/nhle/fintrack/internal/ui"
	"github.com/nhle/fintrack/internal/ui/command"
	configview "github.com/nhle/fintrack/internal/ui/config"
	"github.com/nhle/fintrack/internal/ui/confirm"
	"github.com/nhle/fintrack/internal/ui/detail"
	helpview "github.com/nhle/fintrack/internal/ui/help"
	"github.com/nhle/fintrack/internal/ui/notifylist"
	"github.com/nhle/fintrack/internal/ui/tokenform"
)

// Service is the notification API the UI drives. *notify.Aggregator
// implements it.
type Service interface {
	Load(ctx context.Context, category model.Category) (*notify.View, error)
	MarkRead(ctx context.Context, ref model.Ref) error
	Delete(ctx context.Context, ref model.Ref) error
	MarkAllRead(ctx context.Context, visible []model.Notification) notify.BatchResult
	ClearAll(ctx context.Context, visible []model.Notification) notify.BatchResult
}

// TokenSetter receives a new API token at runtime.
type TokenSetter interface {
	SetToken(token string)
}

var _ Service = (*notify.Aggregator)(nil)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewToken
	ViewConfirm
	ViewSettings
)

const confirmClearAll = "clear-all"

// Options configures the root model.
type Options struct {
	// Category is the initial tab.
	Category model.Category

	// Tokens receives a token entered in the token form. May be nil.
	Tokens TokenSetter

	// StoreToken persists an entered token. Defaults to the keyring.
	StoreToken func(token string) error

	// Config and ConfigPath enable the settings view. Probe tests a
	// candidate API configuration before it is saved.
	Config     *model.AppConfig
	ConfigPath string
	Probe      configview.Probe

	Now    func() time.Time
	Logger logrus.FieldLogger
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and the active category tab.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	svc          Service
	refresher    *appsync.Refresher
	tokens       TokenSetter
	storeToken   func(string) error
	log          logrus.FieldLogger
	now          func() time.Time
	keys         *keys.KeyMap
	category     model.Category
	config       *model.AppConfig

	list        notifylist.Model
	detail      detail.Model
	helpView    helpview.Model
	commandView command.Model
	tokenView   tokenform.Model
	confirmView confirm.Model
	configView  configview.Model

	// pendingClear is the visible set captured when clear-all was asked.
	pendingClear []model.Notification

	ready     bool
	authError string
	flash     string
}

// New creates the root application model.
func New(svc Service, refresher *appsync.Refresher, opts Options) Model {
	k := keys.DefaultKeyMap()
	if opts.Category == "" || !opts.Category.Valid() {
		opts.Category = model.CategoryAll
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StoreToken == nil {
		opts.StoreToken = func(token string) error {
			return credential.Set(credential.APITokenKey, token)
		}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	return Model{
		currentView: ViewList,
		svc:         svc,
		refresher:   refresher,
		tokens:      opts.Tokens,
		storeToken:  opts.StoreToken,
		log:         opts.Logger,
		now:         opts.Now,
		keys:        k,
		category:    opts.Category,
		list:        notifylist.New(k, 80, 24, opts.Now),
		detail:      detail.New(k, 80, 24, opts.Now),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		tokenView:   tokenform.New(80, 24),
		confirmView: confirm.New(80),
		configView:  configview.New(opts.ConfigPath, opts.Probe, 80, 24),
		config:      opts.Config,
	}
}

// Init starts the background refresher on the initial tab.
func (m Model) Init() tea.Cmd {
	return m.refresher.Start(m.category)
}

// Category returns the active tab.
func (m Model) Category() model.Category {
	return m.category
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.list.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.tokenView.SetSize(w, h)
		m.confirmView.SetWidth(w)
		m.configView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.ResultMsg:
		return m.handleResult(msg)

	case notifylist.OpenMsg:
		m.previousView = ViewList
		m.currentView = ViewDetail
		m.detail.SetNotification(msg.Notification)
		if !msg.Notification.IsRead {
			return m, m.markRead(msg.Notification.Ref())
		}
		return m, nil

	case notifylist.MarkReadMsg:
		return m, m.markRead(msg.Ref)

	case notifylist.DeleteMsg:
		return m, m.deleteNotification(msg.Ref)

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		switch msg.Action {
		case "read":
			return m, m.markRead(msg.Ref)
		case "delete":
			m.currentView = ViewList
			return m, m.deleteNotification(msg.Ref)
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).WithField("id", msg.ref.ID).Warn("notification action failed")
			m.flash = fmt.Sprintf("Failed: %v", msg.err)
		} else if msg.verb == "deleted" {
			m.flash = "Notification deleted"
		}
		m.refresher.Refresh(m.category)
		return m, nil

	case batchDoneMsg:
		m.flash = msg.result.Message()
		if err := msg.result.Err(); err != nil {
			m.log.WithError(err).WithField("op", msg.result.Op).Warn("bulk operation partially failed")
		}
		if !msg.result.NoOp() {
			m.refresher.Refresh(m.category)
		}
		return m, nil

	case confirm.ResultMsg:
		m.currentView = ViewList
		visible := m.pendingClear
		m.pendingClear = nil
		if msg.Tag == confirmClearAll && msg.Confirmed {
			return m, m.clearAll(visible)
		}
		return m, nil

	case tokenform.SubmittedMsg:
		m.currentView = ViewList
		return m, m.saveToken(msg.Token)

	case tokenform.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case tokenSavedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Error("token not saved")
			m.flash = msg.err.Error()
			return m, nil
		}
		if m.tokens != nil {
			m.tokens.SetToken(msg.token)
		}
		m.authError = ""
		m.flash = "API token saved"
		m.refresher.Refresh(m.category)
		return m, nil

	case configview.DoneMsg:
		m.currentView = ViewList
		return m, nil

	case configview.SavedMsg:
		m.currentView = ViewList
		m.config = msg.Config
		m.flash = "Settings saved to " + msg.Path + ", restart to apply"
		m.log.WithField("path", msg.Path).Info("settings saved")
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.refresher.Stop()
			return m, tea.Quit
		}
		if m.capturesInput() {
			if m.currentView == ViewCommand && key.Matches(msg, m.keys.Back) {
				m.currentView = m.previousView
				return m, nil
			}
			break
		}
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturesInput reports whether the active view consumes every key.
func (m Model) capturesInput() bool {
	switch m.currentView {
	case ViewCommand, ViewToken, ViewConfirm, ViewSettings:
		return true
	}
	return false
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit) && m.currentView == ViewList:
		m.refresher.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
		m.currentView = m.previousView
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Token):
		m.previousView = m.currentView
		m.currentView = ViewToken
		return m, m.tokenView.Start(), true
	}

	if m.currentView != ViewList {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Settings):
		return m.openSettings()

	case key.Matches(msg, m.keys.Refresh):
		m.refresher.Refresh(m.category)
		return m, nil, true

	case key.Matches(msg, m.keys.NextTab):
		return m.switchCategory(cycleTab(m.category, 1)), nil, true

	case key.Matches(msg, m.keys.PrevTab):
		return m.switchCategory(cycleTab(m.category, -1)), nil, true

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.markAllRead(m.list.Visible()), true

	case key.Matches(msg, m.keys.ClearAll):
		return m.askClearAll()
	}

	for i, b := range m.keys.TabBindings() {
		if key.Matches(msg, b) {
			return m.switchCategory(model.FilterCategories[i]), nil, true
		}
	}
	return m, nil, false
}

// askClearAll opens the confirm dialog, capturing the tab's current
// contents so the dialog deletes exactly what the user saw.
func (m Model) askClearAll() (Model, tea.Cmd, bool) {
	visible := m.list.Visible()
	if len(visible) == 0 {
		m.flash = "No notifications to clear"
		return m, nil, true
	}
	m.pendingClear = visible
	m.previousView = m.currentView
	m.currentView = ViewConfirm
	noun := "notifications"
	if len(visible) == 1 {
		noun = "notification"
	}
	return m, m.confirmView.Ask(
		confirmClearAll,
		"Clear all notifications?",
		fmt.Sprintf("This deletes %d %s on the %s tab.", len(visible), noun, m.category.Label()),
	), true
}

// openSettings shows the settings form when a config is available.
func (m Model) openSettings() (Model, tea.Cmd, bool) {
	if m.config == nil {
		m.flash = "Settings are unavailable"
		return m, nil, true
	}
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m, m.configView.Start(m.config), true
}

// switchCategory changes the active tab and reloads it.
func (m Model) switchCategory(c model.Category) Model {
	if c == m.category {
		return m
	}
	m.category = c
	m.flash = ""
	m.list.SetView(nil)
	m.refresher.Refresh(c)
	return m
}

func (m Model) handleResult(msg appsync.ResultMsg) (tea.Model, tea.Cmd) {
	wait := m.refresher.WaitForNextResult()

	// A result for a tab the user already left.
	if msg.Category != m.category {
		return m, wait
	}

	if msg.Error != nil {
		m.flash = fmt.Sprintf("Refresh failed: %v", msg.Error)
		return m, wait
	}

	if msg.AuthError != nil {
		m.authError = msg.AuthError.Message
	} else if !msg.View.Degraded {
		m.authError = ""
	}
	if msg.NewUnread > 0 {
		m.flash = fmt.Sprintf("%d new notifications", msg.NewUnread)
	}

	cmd := m.list.SetView(msg.View)

	if m.currentView == ViewDetail {
		if cur, ok := m.detail.Notification(); ok {
			for _, n := range msg.View.Visible() {
				if n.ID == cur.ID {
					m.detail.SetNotification(n)
					break
				}
			}
		}
	}

	return m, tea.Batch(cmd, wait)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewToken:
		m.tokenView, cmd = m.tokenView.Update(msg)
	case ViewConfirm:
		m.confirmView, cmd = m.confirmView.Update(msg)
	case ViewSettings:
		m.configView, cmd = m.configView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Notifications"
	if v := m.list.CurrentView(); v != nil && v.Summary.Unread > 0 {
		title = fmt.Sprintf("Notifications [%d unread]", v.Summary.Unread)
	}
	header := m.layout.RenderHeader(title, m.refreshStatus())
	tabs := m.layout.RenderTabs(tabLabels(m.list.CurrentView()), tabIndex(m.category))
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, tabs, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.list.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewToken:
		return m.tokenView.View()
	case ViewConfirm:
		return m.confirmView.View()
	case ViewSettings:
		return m.configView.View()
	default:
		return ""
	}
}

// refreshStatus returns a short string describing the refresher state.
func (m Model) refreshStatus() string {
	st := m.refresher.Status()
	switch st.State {
	case appsync.StateRunning:
		return "refreshing..."
	case appsync.StateOffline:
		return theme.WarningStyle.Render("⚠ offline: showing local notifications")
	case appsync.StateError:
		return theme.WarningStyle.Render("⚠ refresh failed")
	}
	if st.LastRefresh.IsZero() {
		return ""
	}
	return "updated " + model.RelativeTime(st.LastRefresh, m.now())
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.authError != "" && m.currentView == ViewList {
		return m.authError
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | m mark read | d delete | j/k scroll"
	case ViewToken:
		return "enter save | esc cancel"
	case ViewConfirm:
		return "←/→ choose | enter confirm"
	case ViewSettings:
		return "enter next | shift+tab back | esc cancel"
	}

	if m.flash != "" {
		return m.flash
	}
	return "q quit | ? help | tab/1-5 category | m read | d delete | A read all | C clear all | r refresh | s settings"
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	if name, ok := strings.CutPrefix(cmd, "category "); ok {
		c, err := model.ParseCategory(name)
		if err != nil {
			m.flash = err.Error()
			return nil
		}
		*m = m.switchCategory(c)
		return nil
	}

	switch cmd {
	case "refresh", "r":
		m.refresher.Refresh(m.category)
		return nil
	case "mark all read", "read all":
		return m.markAllRead(m.list.Visible())
	case "clear all", "clear":
		next, c, _ := m.askClearAll()
		*m = next
		return c
	case "token":
		m.previousView = m.currentView
		m.currentView = ViewToken
		return m.tokenView.Start()
	case "settings":
		next, c, _ := m.openSettings()
		*m = next
		return c
	case "help":
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case "quit", "q":
		m.refresher.Stop()
		return tea.Quit
	default:
		m.flash = fmt.Sprintf("Unknown command %q", cmd)
		return nil
	}
}

