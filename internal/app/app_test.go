package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/notify"
	appsync "github.com/nhle/fintrack/internal/sync"
	configview "github.com/nhle/fintrack/internal/ui/config"
	"github.com/nhle/fintrack/internal/ui/confirm"
	"github.com/nhle/fintrack/internal/ui/tokenform"
)

var testNow = time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

type fakeService struct {
	mu          sync.Mutex
	markedRead  []model.Ref
	deleted     []model.Ref
	markAllSeen []model.Notification
	clearSeen   []model.Notification
}

func (f *fakeService) Load(ctx context.Context, c model.Category) (*notify.View, error) {
	return &notify.View{Category: c}, nil
}

func (f *fakeService) MarkRead(ctx context.Context, ref model.Ref) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedRead = append(f.markedRead, ref)
	return nil
}

func (f *fakeService) Delete(ctx context.Context, ref model.Ref) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeService) MarkAllRead(ctx context.Context, visible []model.Notification) notify.BatchResult {
	f.markAllSeen = visible
	return notify.BatchResult{Op: notify.OpMarkRead, Attempted: len(visible), Succeeded: len(visible)}
}

func (f *fakeService) ClearAll(ctx context.Context, visible []model.Notification) notify.BatchResult {
	f.clearSeen = visible
	return notify.BatchResult{Op: notify.OpDelete, Attempted: len(visible), Succeeded: len(visible)}
}

type tokenRecorder struct{ token string }

func (r *tokenRecorder) SetToken(token string) { r.token = token }

func newTestModel(t *testing.T, svc *fakeService, opts Options) Model {
	t.Helper()
	logger, _ := test.NewNullLogger()
	opts.Now = func() time.Time { return testNow }
	opts.Logger = logger
	if opts.StoreToken == nil {
		opts.StoreToken = func(string) error { return nil }
	}
	r := appsync.New(svc, time.Hour, logger)
	t.Cleanup(r.Stop)

	m := New(svc, r, opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func sampleView(c model.Category) *notify.View {
	return &notify.View{
		Category: c,
		Groups: []model.Group{{
			Title: notify.BucketToday,
			Notifications: []model.Notification{
				{ID: "1", Title: "Salary", Category: model.CategoryTransactions, Source: model.SourceRemote, CreatedAt: testNow},
				{ID: "local_a", Title: "Rent due", Category: model.CategoryBills, Source: model.SourceLocal, IsRead: true, CreatedAt: testNow},
			},
		}},
		Summary: model.Summary{Total: 2, Unread: 1, ByCategory: map[string]int{"all": 2, "transactions": 1}},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func withResult(t *testing.T, m Model, v *notify.View) Model {
	t.Helper()
	m, _ = press(t, m, appsync.ResultMsg{Category: v.Category, View: v})
	return m
}

func TestSwitchCategory_ByNumberAndTab(t *testing.T) {
	m := newTestModel(t, &fakeService{}, Options{})

	m, _ = press(t, m, runes("4"))
	if m.Category() != model.CategoryBills {
		t.Fatalf("category = %q, want bills", m.Category())
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Category() != model.CategorySecurity {
		t.Fatalf("category = %q, want security", m.Category())
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Category() != model.CategoryAll {
		t.Fatalf("tab should wrap to all, got %q", m.Category())
	}
}

func TestResult_ForOtherCategoryIgnored(t *testing.T) {
	m := newTestModel(t, &fakeService{}, Options{Category: model.CategoryAll})

	m = withResult(t, m, sampleView(model.CategoryBudget))
	if m.list.CurrentView() != nil {
		t.Fatal("stale result for another tab should be ignored")
	}

	m = withResult(t, m, sampleView(model.CategoryAll))
	if got := len(m.list.Visible()); got != 2 {
		t.Fatalf("visible = %d, want 2", got)
	}
	if !strings.Contains(m.View(), "1 unread") {
		t.Errorf("header should show unread count:\n%s", m.View())
	}
}

func TestResult_AuthErrorShownInStatusBar(t *testing.T) {
	m := newTestModel(t, &fakeService{}, Options{})

	v := sampleView(model.CategoryAll)
	v.Degraded = true
	m, _ = press(t, m, appsync.ResultMsg{
		Category:  model.CategoryAll,
		View:      v,
		AuthError: &appsync.AuthErrorMsg{Message: "token rejected"},
	})

	if !strings.Contains(m.View(), "token rejected") {
		t.Errorf("status bar should show auth error:\n%s", m.View())
	}
}

func TestMarkAllRead_UsesVisibleItems(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc, Options{})
	m = withResult(t, m, sampleView(model.CategoryAll))

	m, cmd := press(t, m, runes("A"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	if len(svc.markAllSeen) != 2 {
		t.Fatalf("MarkAllRead got %d items, want 2", len(svc.markAllSeen))
	}

	m, _ = press(t, m, msg)
	if m.flash != "2 notifications marked as read" {
		t.Errorf("flash = %q", m.flash)
	}
}

func TestClearAll_EmptyIsNoOp(t *testing.T) {
	m := newTestModel(t, &fakeService{}, Options{})
	m = withResult(t, m, &notify.View{Category: model.CategoryAll})

	m, cmd := press(t, m, runes("C"))
	if cmd != nil {
		t.Error("no dialog expected for an empty list")
	}
	if m.currentView != ViewList || m.flash != "No notifications to clear" {
		t.Errorf("view = %v, flash = %q", m.currentView, m.flash)
	}
}

func TestClearAll_ConfirmDeletesCapturedItems(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc, Options{})
	m = withResult(t, m, sampleView(model.CategoryAll))

	m, _ = press(t, m, runes("C"))
	if m.currentView != ViewConfirm {
		t.Fatalf("view = %v, want confirm", m.currentView)
	}

	m, cmd := press(t, m, confirm.ResultMsg{Tag: confirmClearAll, Confirmed: true})
	if m.currentView != ViewList {
		t.Errorf("view = %v, want list", m.currentView)
	}
	if cmd == nil {
		t.Fatal("expected clear command")
	}
	cmd()
	if len(svc.clearSeen) != 2 {
		t.Errorf("ClearAll got %d items, want 2", len(svc.clearSeen))
	}
}

func TestClearAll_DeclinedDoesNothing(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc, Options{})
	m = withResult(t, m, sampleView(model.CategoryAll))

	m, _ = press(t, m, runes("C"))
	_, cmd := press(t, m, confirm.ResultMsg{Tag: confirmClearAll})
	if cmd != nil {
		t.Error("declined dialog should not clear")
	}
}

func TestOpenUnread_MarksRead(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(t, svc, Options{})
	m = withResult(t, m, sampleView(model.CategoryAll))

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected open command")
	}
	m, cmd = press(t, m, cmd())
	if m.currentView != ViewDetail {
		t.Fatalf("view = %v, want detail", m.currentView)
	}
	if cmd == nil {
		t.Fatal("expected mark-read command")
	}
	cmd()
	if len(svc.markedRead) != 1 || svc.markedRead[0].ID != "1" {
		t.Errorf("markedRead = %+v", svc.markedRead)
	}
}

func TestTokenSaved_AppliesToken(t *testing.T) {
	rec := &tokenRecorder{}
	var stored string
	m := newTestModel(t, &fakeService{}, Options{
		Tokens:     rec,
		StoreToken: func(tok string) error { stored = tok; return nil },
	})

	m, cmd := press(t, m, tokenform.SubmittedMsg{Token: "abc"})
	if cmd == nil {
		t.Fatal("expected save command")
	}
	m, _ = press(t, m, cmd())

	if stored != "abc" || rec.token != "abc" {
		t.Errorf("stored = %q, applied = %q", stored, rec.token)
	}
	if m.flash != "API token saved" {
		t.Errorf("flash = %q", m.flash)
	}
}

func TestTokenSaveFailure_KeepsOldToken(t *testing.T) {
	rec := &tokenRecorder{token: "old"}
	m := newTestModel(t, &fakeService{}, Options{
		Tokens:     rec,
		StoreToken: func(string) error { return errors.New("keyring locked") },
	})

	m, cmd := press(t, m, tokenform.SubmittedMsg{Token: "new"})
	m, _ = press(t, m, cmd())

	if rec.token != "old" {
		t.Errorf("token = %q, want old", rec.token)
	}
	if !strings.Contains(m.flash, "keyring locked") {
		t.Errorf("flash = %q", m.flash)
	}
}

func TestExecuteCommand(t *testing.T) {
	m := newTestModel(t, &fakeService{}, Options{})

	m.executeCommand("category budget")
	if m.Category() != model.CategoryBudget {
		t.Errorf("category = %q, want budget", m.Category())
	}

	m.executeCommand("category nope")
	if !strings.Contains(m.flash, "unknown category") {
		t.Errorf("flash = %q", m.flash)
	}

	m.executeCommand("frobnicate")
	if !strings.Contains(m.flash, "Unknown command") {
		t.Errorf("flash = %q", m.flash)
	}
}

func TestCycleTab(t *testing.T) {
	if got := cycleTab(model.CategoryAll, -1); got != model.CategorySecurity {
		t.Errorf("prev of all = %q", got)
	}
	if got := cycleTab(model.CategoryBudget, 1); got != model.CategoryBills {
		t.Errorf("next of budget = %q", got)
	}
}

func TestSettings_UnavailableWithoutConfig(t *testing.T) {
	m := newTestModel(t, &fakeService{}, Options{})

	m, _ = press(t, m, runes("s"))
	if m.currentView != ViewList || m.flash != "Settings are unavailable" {
		t.Errorf("view = %v, flash = %q", m.currentView, m.flash)
	}
}

func TestSettings_OpenAndCancel(t *testing.T) {
	cfg := &model.AppConfig{API: model.APIConfig{BaseURL: "https://x.test", PageSize: 10}}
	m := newTestModel(t, &fakeService{}, Options{Config: cfg, ConfigPath: t.TempDir() + "/c.yaml"})

	m, _ = press(t, m, runes("s"))
	if m.currentView != ViewSettings {
		t.Fatalf("view = %v, want settings", m.currentView)
	}

	// Keys go to the form while it is open.
	m, _ = press(t, m, runes("q"))
	if m.currentView != ViewSettings {
		t.Fatalf("q should not leave settings, view = %v", m.currentView)
	}

	m, _ = press(t, m, configview.DoneMsg{})
	if m.currentView != ViewList {
		t.Errorf("view = %v, want list", m.currentView)
	}
}
