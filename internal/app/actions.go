package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/notify"
)

// actionTimeout bounds a single user-triggered operation.
const actionTimeout = 30 * time.Second

// actionDoneMsg is sent after a single-item operation completes.
type actionDoneMsg struct {
	verb string
	ref  model.Ref
	err  error
}

// batchDoneMsg carries the settled result of a bulk operation.
type batchDoneMsg struct {
	result notify.BatchResult
}

// tokenSavedMsg is sent after the token has been persisted.
type tokenSavedMsg struct {
	token string
	err   error
}

// markRead marks one notification read.
func (m *Model) markRead(ref model.Ref) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{verb: "marked as read", ref: ref, err: svc.MarkRead(ctx, ref)}
	}
}

// deleteNotification removes one notification.
func (m *Model) deleteNotification(ref model.Ref) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionDoneMsg{verb: "deleted", ref: ref, err: svc.Delete(ctx, ref)}
	}
}

// markAllRead marks every unread notification on the current tab.
func (m *Model) markAllRead(visible []model.Notification) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return batchDoneMsg{result: svc.MarkAllRead(ctx, visible)}
	}
}

// clearAll deletes every notification on the current tab.
func (m *Model) clearAll(visible []model.Notification) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return batchDoneMsg{result: svc.ClearAll(ctx, visible)}
	}
}

// saveToken persists a new API token and applies it to the remote.
func (m *Model) saveToken(token string) tea.Cmd {
	save := m.storeToken
	return func() tea.Msg {
		if err := save(token); err != nil {
			return tokenSavedMsg{err: fmt.Errorf("saving API token: %w", err)}
		}
		return tokenSavedMsg{token: token}
	}
}
