package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/skillsenselab/murmur/component"
	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/logger"
)

const (
	entryFile     = "entry.json"
	segmentsFile  = "segments.json"
	snapshotsFile = "snapshots.json"
)

// FSStore implements Store on the local filesystem. Each entry gets
// its own directory under dir/entries/<id>/ holding entry.json,
// segments.json and snapshots.json. Writes go to a temp file and are
// renamed into place.
type FSStore struct {
	dir      string
	markdown bool

	mu sync.Mutex // serializes read-modify-write cycles (snapshot stack)
}

// FSOption configures an FSStore.
type FSOption func(*FSStore)

// WithMarkdownMirror enables writing a <title>.md transcript mirror
// beside the entry's recording after every entry save.
func WithMarkdownMirror(enabled bool) FSOption {
	return func(s *FSStore) {
		s.markdown = enabled
	}
}

// NewFSStore creates a filesystem store rooted at dir.
func NewFSStore(dir string, opts ...FSOption) (*FSStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, apperrors.Storage("resolve store dir", err)
	}
	if err := os.MkdirAll(filepath.Join(abs, "entries"), 0o750); err != nil {
		return nil, apperrors.Storage("create store dir", err)
	}
	s := &FSStore{dir: abs}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FSStore) entryDir(id int64) string {
	return filepath.Join(s.dir, "entries", strconv.FormatInt(id, 10))
}

// LoadEntry returns the stored entry record.
func (s *FSStore) LoadEntry(_ context.Context, id int64) (*Entry, error) {
	var entry Entry
	found, err := readJSON(filepath.Join(s.entryDir(id), entryFile), &entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFound("entry", id)
	}
	return &entry, nil
}

// SaveEntry writes the entry record and, when enabled, refreshes the
// markdown mirror. Mirror failures log a warning and never fail the save.
func (s *FSStore) SaveEntry(_ context.Context, entry *Entry) error {
	if entry == nil {
		return apperrors.InvalidInput("entry", "must not be nil")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := writeJSON(filepath.Join(s.entryDir(entry.ID), entryFile), entry); err != nil {
		return err
	}

	if s.markdown {
		if err := s.writeMarkdownMirror(entry); err != nil {
			logger.Warn("Markdown mirror write failed", logger.Fields(
				logger.FieldEntry, entry.ID,
				"error", err.Error(),
			))
		}
	}
	return nil
}

// ListEntries returns all stored entries ordered by id.
func (s *FSStore) ListEntries(_ context.Context) ([]*Entry, error) {
	root := filepath.Join(s.dir, "entries")
	dirs, err := os.ReadDir(root)
	if err != nil {
		return nil, apperrors.Storage("list entries", err)
	}

	entries := make([]*Entry, 0, len(dirs))
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		var entry Entry
		found, err := readJSON(filepath.Join(root, d.Name(), entryFile), &entry)
		if err != nil || !found {
			continue // skip unreadable directories, list what we can
		}
		entries = append(entries, &entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// DeleteEntry removes the entry directory and everything in it.
func (s *FSStore) DeleteEntry(_ context.Context, id int64) error {
	if err := os.RemoveAll(s.entryDir(id)); err != nil {
		return apperrors.Storage("delete entry", err)
	}
	return nil
}

// LoadSegments returns the entry's merged segments.
func (s *FSStore) LoadSegments(_ context.Context, entryID int64) ([]MergedSegment, error) {
	var segments []MergedSegment
	if _, err := readJSON(filepath.Join(s.entryDir(entryID), segmentsFile), &segments); err != nil {
		return nil, err
	}
	if segments == nil {
		segments = []MergedSegment{}
	}
	return segments, nil
}

// SaveSegments replaces the entry's merged segment list.
func (s *FSStore) SaveSegments(_ context.Context, entryID int64, segments []MergedSegment) error {
	if segments == nil {
		segments = []MergedSegment{}
	}
	return writeJSON(filepath.Join(s.entryDir(entryID), segmentsFile), segments)
}

// PushSnapshot appends one level to the entry's snapshot stack.
func (s *FSStore) PushSnapshot(_ context.Context, entryID int64, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stack, err := s.loadSnapshots(entryID)
	if err != nil {
		return err
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	stack = append(stack, snap)
	return writeJSON(filepath.Join(s.entryDir(entryID), snapshotsFile), stack)
}

// PopSnapshot removes and returns the topmost snapshot.
func (s *FSStore) PopSnapshot(_ context.Context, entryID int64) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stack, err := s.loadSnapshots(entryID)
	if err != nil {
		return nil, err
	}
	if len(stack) == 0 {
		return nil, apperrors.ErrNothingToUndo
	}

	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	if err := writeJSON(filepath.Join(s.entryDir(entryID), snapshotsFile), stack); err != nil {
		return nil, err
	}
	return &top, nil
}

// ClearSnapshots empties the entry's snapshot stack.
func (s *FSStore) ClearSnapshots(_ context.Context, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(filepath.Join(s.entryDir(entryID), snapshotsFile), []Snapshot{})
}

// SnapshotDepth returns the number of stacked snapshots.
func (s *FSStore) SnapshotDepth(_ context.Context, entryID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stack, err := s.loadSnapshots(entryID)
	if err != nil {
		return 0, err
	}
	return len(stack), nil
}

func (s *FSStore) loadSnapshots(entryID int64) ([]Snapshot, error) {
	var stack []Snapshot
	if _, err := readJSON(filepath.Join(s.entryDir(entryID), snapshotsFile), &stack); err != nil {
		return nil, err
	}
	return stack, nil
}

// writeMarkdownMirror writes the transcript as <title>.md beside the
// recording, falling back to the store root when the entry has no
// audio path.
func (s *FSStore) writeMarkdownMirror(entry *Entry) error {
	dir := s.dir
	if entry.AudioPath != "" {
		dir = filepath.Dir(entry.AudioPath)
	}
	name := mirrorFilename(entry)
	content := fmt.Sprintf("# %s\n\n%s\n", entry.Title, entry.Transcript)
	return atomicWrite(filepath.Join(dir, name), []byte(content))
}

// mirrorFilename sanitizes the entry title into a filesystem-safe
// markdown filename.
func mirrorFilename(entry *Entry) string {
	title := strings.TrimSpace(entry.Title)
	if title == "" {
		title = fmt.Sprintf("entry-%d", entry.ID)
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", string(os.PathSeparator), "-")
	return replacer.Replace(title) + ".md"
}

// readJSON unmarshals path into out. Returns found=false for a missing
// file rather than an error.
func readJSON(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, apperrors.Storage("read "+filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, apperrors.Storage("decode "+filepath.Base(path), err)
	}
	return true, nil
}

// writeJSON marshals v and writes it atomically to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.Storage("encode "+filepath.Base(path), err)
	}
	return atomicWrite(path, data)
}

// atomicWrite writes data to a temp file in the target directory and
// renames it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return apperrors.Storage("create dir", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return apperrors.Storage("create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperrors.Storage("write file", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Storage("close file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperrors.Storage("finalize file", err)
	}
	return nil
}

// --- component integration ---

// Name returns the component name.
func (s *FSStore) Name() string { return "store" }

// Start verifies the store directory is usable.
func (s *FSStore) Start(_ context.Context) error {
	return os.MkdirAll(filepath.Join(s.dir, "entries"), 0o750)
}

// Stop is a no-op; all writes are already durable.
func (s *FSStore) Stop(_ context.Context) error { return nil }

// Health reports unhealthy when the store directory is not accessible.
func (s *FSStore) Health(_ context.Context) component.Health {
	if _, err := os.Stat(s.dir); err != nil {
		return component.Health{
			Name:    s.Name(),
			Status:  component.StatusUnhealthy,
			Message: err.Error(),
		}
	}
	return component.Health{Name: s.Name(), Status: component.StatusHealthy}
}

// Describe returns summary info for the startup display.
func (s *FSStore) Describe() component.Description {
	return component.Description{
		Name:    "Journal Store",
		Type:    "store",
		Details: fmt.Sprintf("dir=%s markdown=%t", s.dir, s.markdown),
	}
}

var (
	_ Store                 = (*FSStore)(nil)
	_ component.Component   = (*FSStore)(nil)
	_ component.Describable = (*FSStore)(nil)
)
