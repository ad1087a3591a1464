package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/notify"
	"github.com/nhle/fintrack/internal/source"
)

// State represents the current state of the refresher.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateOffline
	StateError
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "refreshing"
	case StateOffline:
		return "offline"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Status is a snapshot of the refresher.
type Status struct {
	Category    model.Category
	State       State
	LastRefresh time.Time
	Error       error
}

// ResultMsg is a tea.Msg sent when a reload completes.
type ResultMsg struct {
	Category  model.Category
	View      *notify.View
	Error     error
	AuthError *AuthErrorMsg

	// NewUnread is how many more unread notifications exist than at
	// the previous refresh.
	NewUnread int
}

// AuthErrorMsg is a tea.Msg sent when the remote rejects the API token.
type AuthErrorMsg struct {
	Message string
}

// Loader produces a merged notification view.
type Loader interface {
	Load(ctx context.Context, category model.Category) (*notify.View, error)
}

const (
	defaultInterval = 60 * time.Second

	// loadTimeout bounds a single reload.
	loadTimeout = 30 * time.Second
)

// Refresher reloads the active category in the background and feeds
// results to the Bubble Tea runtime.
type Refresher struct {
	loader     Loader
	interval   time.Duration
	timeout    time.Duration
	log        logrus.FieldLogger
	status     Status
	lastUnread int
	seenUnread bool
	resultCh   chan ResultMsg
	triggerCh  chan struct{}
	stopCh     chan struct{}
	mu         gosync.Mutex
	running    bool

	// pending is the category requested by the latest Refresh. It is
	// only read when triggerCh fires, so older requests are overwritten.
	pending    model.Category
	hasPending bool
}

// New creates a Refresher. A non-positive interval selects the default.
func New(loader Loader, interval time.Duration, log logrus.FieldLogger) *Refresher {
	if interval <= 0 {
		interval = defaultInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Refresher{
		loader:    loader,
		interval:  interval,
		timeout:   loadTimeout,
		log:       log,
		status:    Status{Category: model.CategoryAll},
		resultCh:  make(chan ResultMsg, 16),
		triggerCh: make(chan struct{}, 1),
	}
}

// Start launches the refresh loop for category and returns a command
// that waits for the first result. A stopped Refresher can be started
// again.
func (r *Refresher) Start(category model.Category) tea.Cmd {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.status.Category = category
	r.hasPending = false
	stop := make(chan struct{})
	r.stopCh = stop
	r.mu.Unlock()

	go r.loop(stop)

	return r.waitForResult()
}

// Stop halts the refresh loop.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	close(r.stopCh)
	r.running = false
}

// Refresh makes category the active one and triggers an immediate
// reload. When several calls arrive during a slow reload, only the last
// category is loaded next.
func (r *Refresher) Refresh(category model.Category) {
	r.mu.Lock()
	r.pending = category
	r.hasPending = true
	r.mu.Unlock()

	select {
	case r.triggerCh <- struct{}{}:
	default:
		// A reload is already signalled; it will pick up pending.
	}
}

// Status returns the current refresher status.
func (r *Refresher) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Refresher) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.reload()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.reload()
		case <-r.triggerCh:
			r.mu.Lock()
			if r.hasPending {
				r.status.Category = r.pending
				r.hasPending = false
			}
			r.mu.Unlock()
			r.reload()
		}
	}
}

// reload performs a single load and publishes the result.
func (r *Refresher) reload() {
	r.mu.Lock()
	category := r.status.Category
	r.status.State = StateRunning
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	view, err := r.loader.Load(ctx, category)
	if err != nil {
		r.setStatus(StateError, err)
		r.log.WithError(err).WithField("category", category).Error("refresh failed")
		r.sendResult(ResultMsg{Category: category, Error: err})
		return
	}

	msg := ResultMsg{Category: category, View: view}

	if view.Degraded {
		r.setStatus(StateOffline, view.RemoteErr)
		if source.IsAuthError(view.RemoteErr) {
			msg.AuthError = &AuthErrorMsg{
				Message: "finance API rejected the token. Press 't' to set a new one.",
			}
		}
	} else {
		r.setStatus(StateIdle, nil)
	}

	r.mu.Lock()
	if r.seenUnread && view.Summary.Unread > r.lastUnread {
		msg.NewUnread = view.Summary.Unread - r.lastUnread
	}
	r.lastUnread = view.Summary.Unread
	r.seenUnread = true
	r.mu.Unlock()

	r.sendResult(msg)
}

func (r *Refresher) setStatus(state State, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.State = state
	r.status.Error = err
	if state != StateError {
		r.status.LastRefresh = time.Now()
	}
}

// sendResult publishes msg without blocking.
func (r *Refresher) sendResult(msg ResultMsg) {
	select {
	case r.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the loop
	}
}

func (r *Refresher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-r.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next result.
// Call it after handling each ResultMsg to keep listening.
func (r *Refresher) WaitForNextResult() tea.Cmd {
	return r.waitForResult()
}
