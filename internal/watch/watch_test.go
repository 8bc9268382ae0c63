package watch

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/ewhitmore/sessiondex/internal/indexdb"
)

func writeSessionFile(t *testing.T, projectDir, sessionID, prompt string) {
	t.Helper()
	line := `{"type":"user","timestamp":"2026-08-24T10:00:00Z","message":{"content":` +
		strconv.Quote(prompt) + `}}` + "\n"
	path := filepath.Join(projectDir, sessionID+".jsonl")
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(line), 0o644); err != nil {
		t.Fatalf("write session: %v", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		t.Fatalf("rename session: %v", err)
	}
}

func waitForSessionCount(t *testing.T, store *indexdb.Store, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		n, err := store.SessionCount()
		if err != nil {
			t.Fatalf("SessionCount: %v", err)
		}
		if n == want {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	n, _ := store.SessionCount()
	t.Fatalf("session count = %d, want %d within 5s", n, want)
}

func startWatcher(t *testing.T, store *indexdb.Store, root string) (cancel context.CancelFunc, done chan error) {
	t.Helper()
	w, err := New(store, root, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancelCtx := context.WithCancel(context.Background())
	done = make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	return cancelCtx, done
}

func TestWatcherRebuildsOnNewSession(t *testing.T) {
	tmpDir := t.TempDir()
	root := filepath.Join(tmpDir, "projects")
	projectDir := filepath.Join(root, "-home-user-api")
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeSessionFile(t, projectDir, "aaaa-1111", "set up the API")

	store, err := indexdb.Open(filepath.Join(tmpDir, "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	cancel, done := startWatcher(t, store, root)
	defer cancel()

	// Initial build indexes what was already on disk
	waitForSessionCount(t, store, 1)

	// Give the watcher time to register before writing
	time.Sleep(200 * time.Millisecond)

	writeSessionFile(t, projectDir, "bbbb-2222", "add pagination")
	waitForSessionCount(t, store, 2)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v after cancel, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for Run to stop")
	}
}

func TestWatcherPicksUpNewProjectDir(t *testing.T) {
	tmpDir := t.TempDir()
	root := filepath.Join(tmpDir, "projects")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	store, err := indexdb.Open(filepath.Join(tmpDir, "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	cancel, _ := startWatcher(t, store, root)
	defer cancel()

	waitForSessionCount(t, store, 0)
	time.Sleep(200 * time.Millisecond)

	// A project directory created after startup must still be indexed
	projectDir := filepath.Join(root, "-home-user-fresh")
	if err := os.Mkdir(projectDir, 0o755); err != nil {
		t.Fatalf("mkdir project: %v", err)
	}
	writeSessionFile(t, projectDir, "cccc-3333", "bootstrap the repo")

	waitForSessionCount(t, store, 1)
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	root := filepath.Join(tmpDir, "projects")
	projectDir := filepath.Join(root, "-home-user-api")
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	store, err := indexdb.Open(filepath.Join(tmpDir, "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	cancel, _ := startWatcher(t, store, root)
	defer cancel()

	waitForSessionCount(t, store, 0)
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(projectDir, "notes.txt"), []byte("scratch"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// No rebuild should pick anything up for a non-transcript file
	time.Sleep(500 * time.Millisecond)
	n, err := store.SessionCount()
	if err != nil {
		t.Fatalf("SessionCount: %v", err)
	}
	if n != 0 {
		t.Errorf("session count = %d, want 0", n)
	}
}

func TestRunMissingRoot(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := indexdb.Open(filepath.Join(tmpDir, "index.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	w, err := New(store, filepath.Join(tmpDir, "does-not-exist"), time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("Run on missing root = nil, want error")
	}
}
