package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etymscan/etymscan/internal/record"
)

// ErrMismatch is returned when a checkpoint exists but was written for a
// different starting point. Resuming it would corrupt the meaning of the
// dedup set, so callers must fail loudly or require an explicit
// override; the checkpoint is never reused silently.
var ErrMismatch = errors.New("checkpoint belongs to a different starting point")

// ErrNotFound is returned by Load when no checkpoint file exists.
// Absence means "start fresh" and is not a failure.
var ErrNotFound = errors.New("no checkpoint found")

// snapshot is the on-disk checkpoint format.
type snapshot struct {
	StartURL    string    `json:"start_url"`
	Page        int       `json:"page"`
	Seen        []string  `json:"seen_fingerprints"`
	RecordCount int       `json:"record_count"`
	StartedAt   time.Time `json:"started_at"`
	SavedAt     time.Time `json:"saved_at"`
}

// Store reads and writes checkpoint files for one crawl job.
type Store struct {
	// path is the checkpoint file location.
	path string
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the checkpoint file location.
func (s *Store) Path() string { return s.path }

// Save writes the crawl state atomically. The temp file is created in
// the checkpoint's directory so the final rename never crosses
// filesystems.
func (s *Store) Save(state *record.CrawlState) error {
	snap := snapshot{
		StartURL:    state.StartURL,
		Page:        state.Page,
		Seen:        state.SeenList(),
		RecordCount: state.RecordCount,
		StartedAt:   state.StartedAt,
		SavedAt:     time.Now(),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// Load reads the checkpoint and validates it against the requested
// starting point. It returns ErrNotFound when no checkpoint exists and
// ErrMismatch when the stored start URL differs from startURL.
func (s *Store) Load(startURL string) (*record.CrawlState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", s.path, err)
	}

	if snap.StartURL != startURL {
		return nil, fmt.Errorf("%w: checkpoint %s was written for %q, requested %q",
			ErrMismatch, s.path, snap.StartURL, startURL)
	}

	state := &record.CrawlState{
		StartURL:    snap.StartURL,
		Page:        snap.Page,
		Seen:        make(map[string]bool, len(snap.Seen)),
		RecordCount: snap.RecordCount,
		StartedAt:   snap.StartedAt,
	}
	for _, fp := range snap.Seen {
		state.Seen[fp] = true
	}
	return state, nil
}

// Remove deletes the checkpoint file. It is called on clean completion;
// a missing file is not an error.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove checkpoint: %w", err)
	}
	return nil
}
