package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/snoutly/trackwatch/internal/evaluator"
	"github.com/snoutly/trackwatch/internal/storage"
)

func testRunner(t *testing.T) *Runner {
	t.Helper()

	store := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "scheduler-test.db"))
	if err := store.Open(); err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate storage: %v", err)
	}

	log := zerolog.Nop()
	dispatcher := evaluator.NewDispatcher(store, evaluator.Options{}, log)
	return New(Config{RunTimeout: 5 * time.Second}, dispatcher, log)
}

func TestStartStop(t *testing.T) {
	r := testRunner(t)
	ctx := context.Background()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Start(ctx); err == nil {
		t.Error("second start did not fail")
	}

	r.Stop()
	// Stop after stop is a no-op.
	r.Stop()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}
	r.Stop()
}

func TestTickSkipsWhileRunning(t *testing.T) {
	r := testRunner(t)

	// Simulate an in-flight pass.
	r.running.Store(true)
	done := make(chan struct{})
	go func() {
		r.tick(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tick blocked behind in-flight pass")
	}

	r.running.Store(false)
	r.tick(context.Background())
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.RunTimeout != 55*time.Second {
		t.Errorf("RunTimeout = %v, want 55s", cfg.RunTimeout)
	}
}
