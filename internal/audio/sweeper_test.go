package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSweepRemovesOnlyStaleAnswers(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-2 * time.Hour)

	files := map[string]time.Time{
		TempPrefix + "old.ogg":   old,
		TempPrefix + "fresh.ogg": time.Now(),
		"keep.txt":               old,
	}
	for name, mod := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	s := NewSweeper(dir, "@every 1m", time.Hour, zap.NewNop())
	removed, err := s.Sweep()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if fileExists(filepath.Join(dir, TempPrefix+"old.ogg")) {
		t.Fatal("stale answer must be removed")
	}
	if !fileExists(filepath.Join(dir, TempPrefix+"fresh.ogg")) || !fileExists(filepath.Join(dir, "keep.txt")) {
		t.Fatal("fresh answers and foreign files must be kept")
	}
}

func TestSweepMissingDir(t *testing.T) {
	s := NewSweeper(filepath.Join(t.TempDir(), "missing"), "@every 1m", time.Hour, zap.NewNop())
	if n, err := s.Sweep(); err != nil || n != 0 {
		t.Fatalf("Sweep = (%d, %v)", n, err)
	}
}

func TestSweeperStartStops(t *testing.T) {
	s := NewSweeper(t.TempDir(), "@every 1h", time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeperRejectsBadSchedule(t *testing.T) {
	s := NewSweeper(t.TempDir(), "not a schedule", time.Hour, zap.NewNop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected an error for an invalid schedule")
	}
}
