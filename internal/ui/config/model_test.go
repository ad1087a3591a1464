package config

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/fintrack/internal/model"
)

func baseConfig(t *testing.T) *model.AppConfig {
	t.Helper()
	cfg, err := model.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return cfg
}

func TestCollect_AppliesFormValues(t *testing.T) {
	m := New("", nil, 80, 24)
	m.Start(baseConfig(t))

	m.fb.baseURL = " https://fin.example.com/api/v1/ "
	m.fb.pageSize = "20"
	m.fb.includeRead = false
	m.fb.pollSec = "45"
	m.fb.backend = "redis"
	m.fb.logLevel = "debug"

	cfg := m.collect()
	if cfg.API.BaseURL != "https://fin.example.com/api/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.PageSize != 20 || cfg.API.IncludeRead || cfg.Display.PollIntervalSec != 45 {
		t.Errorf("collected = %+v / %+v", cfg.API, cfg.Display)
	}
	if cfg.Storage.Backend != "redis" || cfg.Log.Level != "debug" {
		t.Errorf("storage = %q, log = %q", cfg.Storage.Backend, cfg.Log.Level)
	}
	if m.base.API.PageSize == 20 {
		t.Error("collect must not modify the base config")
	}
}

func TestValidateResult_EnterSavesOnSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	m := New(path, nil, 80, 24)
	m.Start(baseConfig(t))
	m.fb.baseURL = "https://saved.example.com/api/v1"
	m.pending = m.collect()

	m, _ = m.Update(ValidateResultMsg{})
	if m.Mode() != ModeValidateResult {
		t.Fatalf("mode = %v", m.Mode())
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected save command")
	}
	m, cmd = m.Update(cmd())
	if cmd == nil {
		t.Fatal("expected SavedMsg command")
	}
	saved, ok := cmd().(SavedMsg)
	if !ok || saved.Path != path {
		t.Fatalf("got %#v", saved)
	}

	reloaded, err := model.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if reloaded.API.BaseURL != "https://saved.example.com/api/v1" {
		t.Errorf("BaseURL = %q", reloaded.API.BaseURL)
	}
}

func TestValidateResult_FailureNeedsExplicitSave(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "config.yaml"), nil, 80, 24)
	m.Start(baseConfig(t))
	m.pending = m.collect()

	m, _ = m.Update(ValidateResultMsg{Err: errors.New("connection refused")})
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter should not save after a failed test")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}); cmd == nil {
		t.Error("s should save anyway")
	}
}

func TestValidate_UsesProbe(t *testing.T) {
	var got model.APIConfig
	probe := func(ctx context.Context, api model.APIConfig) error {
		got = api
		return errors.New("401")
	}
	m := New("", probe, 80, 24)

	msg := m.validate(model.APIConfig{BaseURL: "https://x.test"})().(ValidateResultMsg)
	if msg.Err == nil || got.BaseURL != "https://x.test" {
		t.Errorf("msg = %+v, probed = %+v", msg, got)
	}
}

func TestValidateURL(t *testing.T) {
	for _, tc := range []struct {
		in string
		ok bool
	}{
		{"https://api.example.com/api/v1", true},
		{"", false},
		{"api.example.com", false},
	} {
		if err := validateURL(tc.in); (err == nil) != tc.ok {
			t.Errorf("validateURL(%q) = %v", tc.in, err)
		}
	}
}
