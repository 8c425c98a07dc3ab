package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etymscan/etymscan/internal/record"
)

// TestStore tests save/load round trips and the mismatch guard.
func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("load without file reports not found", func(t *testing.T) {
		t.Parallel()

		store := NewStore(filepath.Join(t.TempDir(), "checkpoint.json"))
		_, err := store.Load("http://example.com/start")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("round trip preserves state", func(t *testing.T) {
		t.Parallel()

		store := NewStore(filepath.Join(t.TempDir(), "checkpoint.json"))

		state := record.NewCrawlState("http://example.com/start")
		state.Page = 7
		state.RecordCount = 123
		state.MarkSeen("fp-a")
		state.MarkSeen("fp-b")

		if err := store.Save(state); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := store.Load("http://example.com/start")
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.Page != 7 {
			t.Errorf("page = %d, want 7", loaded.Page)
		}
		if loaded.RecordCount != 123 {
			t.Errorf("record count = %d, want 123", loaded.RecordCount)
		}
		if !loaded.IsSeen("fp-a") || !loaded.IsSeen("fp-b") {
			t.Error("seen set not restored")
		}
		if loaded.IsSeen("fp-c") {
			t.Error("phantom fingerprint in restored seen set")
		}
		if loaded.StartedAt.IsZero() {
			t.Error("started-at not restored")
		}
	})

	t.Run("mismatched starting point is a hard error", func(t *testing.T) {
		t.Parallel()

		store := NewStore(filepath.Join(t.TempDir(), "checkpoint.json"))
		if err := store.Save(record.NewCrawlState("http://example.com/job-a")); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		_, err := store.Load("http://example.com/job-b")
		if !errors.Is(err, ErrMismatch) {
			t.Fatalf("expected ErrMismatch, got %v", err)
		}
		if !strings.Contains(err.Error(), "job-a") || !strings.Contains(err.Error(), "job-b") {
			t.Errorf("mismatch error should name both starting points: %v", err)
		}
	})

	t.Run("save leaves no temp files behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		store := NewStore(filepath.Join(dir, "checkpoint.json"))
		if err := store.Save(record.NewCrawlState("http://example.com/start")); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("readdir failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Name() != "checkpoint.json" {
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("unexpected directory contents: %v", names)
		}
	})

	t.Run("corrupt checkpoint fails to load", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "checkpoint.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		_, err := NewStore(path).Load("http://example.com/start")
		if err == nil {
			t.Fatal("expected parse error for corrupt checkpoint")
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		t.Parallel()

		store := NewStore(filepath.Join(t.TempDir(), "checkpoint.json"))
		if err := store.Save(record.NewCrawlState("http://example.com/start")); err != nil {
			t.Fatalf("save failed: %v", err)
		}
		if err := store.Remove(); err != nil {
			t.Fatalf("first remove failed: %v", err)
		}
		if err := store.Remove(); err != nil {
			t.Errorf("second remove should be a no-op, got %v", err)
		}
	})
}
