package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, files ...string) *Watcher {
	t.Helper()
	w, err := NewWatcher(Config{Files: files, Debounce: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		w.Stop()
	})
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return w
}

// replaceFile swaps content in with a rename so each edit is one event.
func replaceFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func nextChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case change := <-w.Events():
		return change
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestWatcher_EmitsContentChange(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "participants.tsv")
	source := filepath.Join(dir, "annotations.json")
	writeFiles(t, dir, "participants.tsv", "annotations.json")

	w := startWatcher(t, table, source)
	if _, ok := w.GetHash(table); !ok {
		t.Fatal("expected initial hash to be recorded")
	}

	if err := os.WriteFile(source, []byte(`{"age": {}}`), 0644); err != nil {
		t.Fatal(err)
	}

	change := nextChange(t, w)
	if len(change.Paths) != 1 || change.Paths[0] != source {
		t.Errorf("expected change to %s, got %+v", source, change)
	}
}

func TestWatcher_IgnoresUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "participants.tsv")
	writeFiles(t, dir, "participants.tsv")

	w := startWatcher(t, table)

	if err := os.WriteFile(filepath.Join(dir, "other.tsv"), []byte("x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(table, []byte("participant_id\tage\tsex\n"), 0644); err != nil {
		t.Fatal(err)
	}

	change := nextChange(t, w)
	if len(change.Paths) != 1 || change.Paths[0] != table {
		t.Errorf("expected only %s, got %+v", table, change)
	}
}

func TestWatcher_SkipsIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "participants.tsv")
	writeFiles(t, dir, "participants.tsv")

	w := startWatcher(t, table)

	// Rewrite with identical bytes, then make a real edit.
	replaceFile(t, table, "participant_id\tage\n")
	time.Sleep(100 * time.Millisecond)
	replaceFile(t, table, "participant_id\tsex\n")

	change := nextChange(t, w)
	if len(change.Paths) != 1 {
		t.Fatalf("expected one changed path, got %+v", change)
	}
	select {
	case extra := <-w.Events():
		t.Errorf("unexpected extra change %+v", extra)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_ReportsRemoval(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "participants.tsv")
	writeFiles(t, dir, "participants.tsv")

	w := startWatcher(t, table)

	if err := os.Remove(table); err != nil {
		t.Fatal(err)
	}

	change := nextChange(t, w)
	if len(change.Removed) != 1 || change.Removed[0] != table {
		t.Errorf("expected removal of %s, got %+v", table, change)
	}
}

func TestNewWatcher_RequiresFiles(t *testing.T) {
	if _, err := NewWatcher(Config{}); err == nil {
		t.Error("expected error without files")
	}
}
