package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	path := writeConfigFile(t, "upstream:\n  api_key: \"k\"\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v, want nil", err)
	}
	if w.watcher == nil {
		t.Error("w.watcher is nil")
	}
	if w.debounce == nil {
		t.Error("w.debounce is nil")
	}

	_ = w.Stop()
}

func TestWatcher_ReloadOnWrite(t *testing.T) {
	path := writeConfigFile(t, `
models:
  primary: "deepseek-chat"
`)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	reloaded := make(chan *Config, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the event loop time to register the directory watch.
	time.Sleep(200 * time.Millisecond)

	updated := `
models:
  primary: "deepseek-reasoner"
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Models.Primary != "deepseek-reasoner" {
			t.Errorf("expected reloaded primary %q, got %q", "deepseek-reasoner", cfg.Models.Primary)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_InvalidReloadKeepsRunning(t *testing.T) {
	path := writeConfigFile(t, `
models:
  primary: "deepseek-chat"
`)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	reloaded := make(chan *Config, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	time.Sleep(200 * time.Millisecond)

	// Broken config: the callback must not fire.
	if err := os.WriteFile(path, []byte("models: [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(500 * time.Millisecond)

	select {
	case <-reloaded:
		t.Fatal("callback fired for invalid configuration")
	default:
	}

	// A subsequent valid write still reloads.
	valid := `
models:
  primary: "deepseek-coder"
`
	if err := os.WriteFile(path, []byte(valid), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Models.Primary != "deepseek-coder" {
			t.Errorf("expected primary %q, got %q", "deepseek-coder", cfg.Models.Primary)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for recovery reload")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("models:\n  primary: \"deepseek-chat\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Stop() }()

	reloaded := make(chan *Config, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(500 * time.Millisecond)

	select {
	case <-reloaded:
		t.Fatal("callback fired for an unrelated file")
	default:
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := writeConfigFile(t, "upstream:\n  api_key: \"k\"\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = w.Watch(ctx, func(*Config) {})
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)

	if !w.IsRunning() {
		t.Fatal("watcher should be running")
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	<-done

	if w.IsRunning() {
		t.Error("watcher should have stopped")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
