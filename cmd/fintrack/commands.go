package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/nhle/fintrack/internal/app"
	"github.com/nhle/fintrack/internal/credential"
	"github.com/nhle/fintrack/internal/logging"
	"github.com/nhle/fintrack/internal/model"
	"github.com/nhle/fintrack/internal/notify"
	appsync "github.com/nhle/fintrack/internal/sync"
)

// TUI opens the interactive notification screen.
type TUI struct{}

// Execute runs the Bubble Tea program until the user quits.
func (x *TUI) Execute(args []string) error {
	rt, err := bootstrap(context.Background())
	if err != nil {
		return err
	}
	defer rt.close()

	interval := time.Duration(rt.cfg.Display.PollIntervalSec) * time.Second
	refresher := appsync.New(rt.agg, interval, logging.For("refresher"))
	defer refresher.Stop()

	m := app.New(rt.agg, refresher, app.Options{
		Category:   rt.category,
		Tokens:     rt.remote,
		Config:     rt.cfg,
		ConfigPath: rt.cfgPath,
		Probe:      rt.probe,
		Logger:     logging.For("ui"),
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}

// List prints the merged notification list.
type List struct {
	Unread bool `short:"u" long:"unread" description:"Only print unread notifications"`
}

// Execute loads the selected category once and prints it.
func (x *List) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	view, err := rt.agg.Load(ctx, rt.category)
	if err != nil {
		return err
	}
	if view.Degraded {
		fmt.Fprintf(os.Stderr, "warning: finance API unreachable, showing local notifications only (%v)\n", view.RemoteErr)
	}
	writeView(os.Stdout, view, x.Unread, time.Now())
	return nil
}

// writeView prints v grouped by day, followed by the counts.
func writeView(w io.Writer, v *notify.View, unreadOnly bool, now time.Time) {
	printed := 0
	for _, g := range v.Groups {
		var lines []string
		for _, n := range g.Notifications {
			if unreadOnly && n.IsRead {
				continue
			}
			dot := " "
			if !n.IsRead {
				dot = "●"
			}
			line := fmt.Sprintf("  %s %s [%s] %s  %s", dot, model.IconFor(n), n.Category, n.Title, model.RelativeTime(n.CreatedAt, now))
			if n.Source == model.SourceLocal {
				line += " (local)"
			}
			lines = append(lines, line)
			if n.Message != "" {
				lines = append(lines, "      "+n.Message)
			}
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintln(w, g.Title)
		fmt.Fprintln(w, strings.Join(lines, "\n"))
		printed++
	}
	if printed == 0 {
		fmt.Fprintln(w, "No notifications.")
	}
	fmt.Fprintf(w, "\n%d total, %d unread\n", v.Summary.Total, v.Summary.Unread)
}

// Token stores the finance API token in the system keyring.
type Token struct {
	Clear bool `long:"clear" description:"Remove the stored token"`
}

// Execute prompts for the token, or removes it with --clear.
func (x *Token) Execute(args []string) error {
	if x.Clear {
		if err := credential.Delete(credential.APITokenKey); err != nil {
			return err
		}
		fmt.Println("API token removed.")
		return nil
	}

	var token string
	err := huh.NewInput().
		Title("Finance API token").
		EchoMode(huh.EchoModePassword).
		Value(&token).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := credential.Set(credential.APITokenKey, token); err != nil {
		return err
	}
	fmt.Println("API token saved.")
	return nil
}

// MarkAll marks every notification of the category read in bulk.
type MarkAll struct{}

// Execute uses the backend's single mark-all-read request for remote
// notifications, then marks matching local notifications read.
func (x *MarkAll) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	msg, remoteErr := rt.remote.MarkAllRead(ctx, rt.category)
	if remoteErr != nil {
		rt.log.WithError(remoteErr).Warn("remote mark-all-read failed")
		fmt.Fprintf(os.Stderr, "remote: %v\n", remoteErr)
	} else if msg != "" {
		fmt.Println(msg)
	}

	var ids []model.ID
	for _, n := range rt.local.List(ctx) {
		if !n.IsRead && rt.category.Matches(n.Category) {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) > 0 {
		changed, err := rt.local.MarkRead(ctx, ids...)
		if err != nil {
			return err
		}
		fmt.Printf("%d local notifications marked as read\n", changed)
	}

	return remoteErr
}

// Record raises a local alert for a large transaction.
type Record struct {
	ID     int64   `long:"id" description:"Transaction id" required:"true"`
	Amount float64 `long:"amount" description:"Transaction amount" required:"true"`
	Income bool    `long:"income" description:"The transaction is income rather than an expense"`
}

// Execute records the transaction alert when it exceeds the threshold.
func (x *Record) Execute(args []string) error {
	ctx := context.Background()
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	n, err := rt.agg.RecordTransaction(ctx, notify.Transaction{ID: x.ID, Amount: x.Amount, Income: x.Income})
	if err != nil {
		return err
	}
	if n == nil {
		fmt.Printf("$%.2f is within the $%.2f threshold, no alert raised\n", x.Amount, rt.cfg.Notifications.LargeTransactionThreshold)
		return nil
	}
	fmt.Printf("recorded %s: %s\n", n.ID, n.Message)
	return nil
}

// Reset clears the local notification store.
type Reset struct {
	Yes bool `short:"y" long:"yes" description:"Skip the confirmation prompt"`
}

// Execute deletes local notifications and the seed marker. Remote
// notifications are not touched.
func (x *Reset) Execute(args []string) error {
	if !x.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title("Delete all local notifications?").
			Description("Remote notifications are kept. The demo set is seeded again on the next load.").
			Value(&confirmed).
			Run()
		if errors.Is(err, huh.ErrUserAborted) || (err == nil && !confirmed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}
	}

	ctx := context.Background()
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.local.Reset(ctx); err != nil {
		return err
	}
	rt.log.Info("local notification store reset")
	fmt.Println("Local notifications cleared.")
	return nil
}
