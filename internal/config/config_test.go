package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amonks/todomvc/internal/config"
	"github.com/amonks/todomvc/internal/testsupport"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func globalConfigPath(home string) string {
	return filepath.Join(home, ".config", "todomvc", "config.toml")
}

func TestLoad_NotFound(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Server.Addr != "" {
		t.Errorf("expected empty Addr, got %q", cfg.Server.Addr)
	}
	if cfg.Store.Path != "" {
		t.Errorf("expected empty store path, got %q", cfg.Store.Path)
	}
}

func TestLoad_Full(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	configContent := `
[server]
addr = ":9090"
action-delay = "750ms"
settle-wait = "100ms"
page-ttl = "10m"
debug-reconcile = true

[store]
path = "data/todos.json"
save-delay = "1s"
seed = "/etc/todomvc/seed.yaml"
bcrypt-cost = 4

[session]
secret-file = "secret.key"
ttl = "12h"
remember-ttl = "720h"
secure = true
`
	writeFile(t, filepath.Join(tmpDir, "todomvc.toml"), configContent)

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Addr = %q, expected %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Server.ActionDelay.Duration != 750*time.Millisecond {
		t.Errorf("ActionDelay = %v", cfg.Server.ActionDelay)
	}
	if cfg.Server.SettleWait.Duration != 100*time.Millisecond {
		t.Errorf("SettleWait = %v", cfg.Server.SettleWait)
	}
	if cfg.Server.PageTTL.Duration != 10*time.Minute {
		t.Errorf("PageTTL = %v", cfg.Server.PageTTL)
	}
	if !cfg.Server.DebugReconcile {
		t.Error("expected DebugReconcile")
	}
	if cfg.Store.Path != filepath.Join(tmpDir, "data", "todos.json") {
		t.Errorf("store path = %q, expected it relative to the config file", cfg.Store.Path)
	}
	if cfg.Store.Seed != "/etc/todomvc/seed.yaml" {
		t.Errorf("seed = %q", cfg.Store.Seed)
	}
	if cfg.Store.SaveDelay.Duration != time.Second || cfg.Store.BcryptCost != 4 {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Session.SecretFile != filepath.Join(tmpDir, "secret.key") {
		t.Errorf("secret file = %q", cfg.Session.SecretFile)
	}
	if cfg.Session.TTL.Duration != 12*time.Hour || cfg.Session.RememberTTL.Duration != 720*time.Hour || !cfg.Session.Secure {
		t.Errorf("unexpected session config: %+v", cfg.Session)
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home := testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, globalConfigPath(home), `
[server]
addr = ":7000"
action-delay = "2s"
debug-reconcile = true

[store]
path = "global.json"
`)
	writeFile(t, filepath.Join(tmpDir, "todomvc.toml"), `
[server]
action-delay = "0s"
debug-reconcile = false
`)

	cfg, err := config.Load(tmpDir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Addr != ":7000" {
		t.Errorf("expected global addr, got %q", cfg.Server.Addr)
	}
	if cfg.Server.ActionDelay.Duration != 0 {
		t.Errorf("expected project to clear action delay, got %v", cfg.Server.ActionDelay)
	}
	if cfg.Server.DebugReconcile {
		t.Error("expected project to disable DebugReconcile")
	}
	expected := filepath.Join(home, ".config", "todomvc", "global.json")
	if cfg.Store.Path != expected {
		t.Errorf("store path = %q, expected %q", cfg.Store.Path, expected)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "todomvc.toml"), `
[server]
action-delay = "soon"
`)

	_, err := config.Load(tmpDir)
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "todomvc.toml") {
		t.Fatalf("expected error to name the file, got %v", err)
	}
}

func TestLoad_NegativeDuration(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "todomvc.toml"), `
[store]
save-delay = "-1s"
`)

	if _, err := config.Load(tmpDir); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "todomvc.toml"), `
[server]
adress = ":8080"
`)

	_, err := config.Load(tmpDir)
	if err == nil || !strings.Contains(err.Error(), "server.adress") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	testsupport.SetupTestHome(t)
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "todomvc.toml"), "[server\naddr = ")

	if _, err := config.Load(tmpDir); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}
