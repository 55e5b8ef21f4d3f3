package journal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillsenselab/murmur/component"
	apperrors "github.com/skillsenselab/murmur/errors"
)

func newTestStore(t *testing.T, opts ...FSOption) *FSStore {
	t.Helper()
	st, err := NewFSStore(t.TempDir(), opts...)
	if err != nil {
		t.Fatalf("NewFSStore() error = %v", err)
	}
	return st
}

func TestFSStore_SaveAndLoadEntry(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	entry := &Entry{
		ID:         42,
		Title:      "Morning thoughts",
		Transcript: "hello world",
		DurationMS: 75000,
	}
	if err := st.SaveEntry(ctx, entry); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}
	if entry.CreatedAt.IsZero() || entry.UpdatedAt.IsZero() {
		t.Error("SaveEntry did not stamp timestamps")
	}

	got, err := st.LoadEntry(ctx, 42)
	if err != nil {
		t.Fatalf("LoadEntry() error = %v", err)
	}
	if got.Title != entry.Title || got.Transcript != entry.Transcript {
		t.Errorf("LoadEntry() = %+v, want %+v", got, entry)
	}
}

func TestFSStore_LoadEntry_NotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.LoadEntry(context.Background(), 999)
	if err == nil {
		t.Fatal("LoadEntry() error = nil, want not found")
	}
	if apperrors.CodeOf(err) != apperrors.ErrCodeNotFound {
		t.Errorf("CodeOf(err) = %s, want %s", apperrors.CodeOf(err), apperrors.ErrCodeNotFound)
	}
}

func TestFSStore_ListEntries(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		if err := st.SaveEntry(ctx, &Entry{ID: id, Title: "entry"}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := st.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, want := range []int64{1, 2, 3} {
		if entries[i].ID != want {
			t.Errorf("entries[%d].ID = %d, want %d", i, entries[i].ID, want)
		}
	}
}

func TestFSStore_DeleteEntry(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.SaveEntry(ctx, &Entry{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveSegments(ctx, 1, []MergedSegment{{ID: "s1", Text: "x"}}); err != nil {
		t.Fatal(err)
	}
	if err := st.DeleteEntry(ctx, 1); err != nil {
		t.Fatalf("DeleteEntry() error = %v", err)
	}
	if _, err := st.LoadEntry(ctx, 1); err == nil {
		t.Error("LoadEntry() after delete succeeded")
	}
	segments, err := st.LoadSegments(ctx, 1)
	if err != nil {
		t.Fatalf("LoadSegments() error = %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("len(segments) = %d after delete, want 0", len(segments))
	}
}

func TestFSStore_Segments(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// No file yet: empty slice, not an error.
	segments, err := st.LoadSegments(ctx, 7)
	if err != nil {
		t.Fatalf("LoadSegments() error = %v", err)
	}
	if segments == nil || len(segments) != 0 {
		t.Errorf("LoadSegments() = %v, want empty slice", segments)
	}

	want := []MergedSegment{
		{ID: "a", Speaker: 0, StartMS: 0, EndMS: 1000, Text: "hello"},
		{ID: "b", Speaker: 1, StartMS: 1000, EndMS: 2500, Text: "world"},
	}
	if err := st.SaveSegments(ctx, 7, want); err != nil {
		t.Fatalf("SaveSegments() error = %v", err)
	}

	got, err := st.LoadSegments(ctx, 7)
	if err != nil {
		t.Fatalf("LoadSegments() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len(segments) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segments[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	// Replacing shrinks the list, never appends.
	if err := st.SaveSegments(ctx, 7, want[:1]); err != nil {
		t.Fatal(err)
	}
	got, _ = st.LoadSegments(ctx, 7)
	if len(got) != 1 {
		t.Errorf("len(segments) after replace = %d, want 1", len(got))
	}
}

func TestFSStore_SnapshotStack(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	depth, err := st.SnapshotDepth(ctx, 5)
	if err != nil {
		t.Fatalf("SnapshotDepth() error = %v", err)
	}
	if depth != 0 {
		t.Errorf("initial depth = %d, want 0", depth)
	}

	if err := st.PushSnapshot(ctx, 5, Snapshot{Stage: "clean", Text: "raw text"}); err != nil {
		t.Fatalf("PushSnapshot() error = %v", err)
	}
	if err := st.PushSnapshot(ctx, 5, Snapshot{Stage: "structure", Text: "cleaned text"}); err != nil {
		t.Fatal(err)
	}

	if depth, _ = st.SnapshotDepth(ctx, 5); depth != 2 {
		t.Errorf("depth = %d, want 2", depth)
	}

	// Last in, first out.
	top, err := st.PopSnapshot(ctx, 5)
	if err != nil {
		t.Fatalf("PopSnapshot() error = %v", err)
	}
	if top.Stage != "structure" || top.Text != "cleaned text" {
		t.Errorf("popped = %+v, want structure snapshot", top)
	}
	if depth, _ = st.SnapshotDepth(ctx, 5); depth != 1 {
		t.Errorf("depth after pop = %d, want 1", depth)
	}
}

func TestFSStore_PopSnapshot_Empty(t *testing.T) {
	st := newTestStore(t)
	_, err := st.PopSnapshot(context.Background(), 5)
	if !errors.Is(err, apperrors.ErrNothingToUndo) {
		t.Errorf("PopSnapshot() error = %v, want ErrNothingToUndo", err)
	}
}

func TestFSStore_ClearSnapshots(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, stage := range []string{"clean", "structure", "organise"} {
		if err := st.PushSnapshot(ctx, 5, Snapshot{Stage: stage, Text: "t"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := st.ClearSnapshots(ctx, 5); err != nil {
		t.Fatalf("ClearSnapshots() error = %v", err)
	}
	if depth, _ := st.SnapshotDepth(ctx, 5); depth != 0 {
		t.Errorf("depth after clear = %d, want 0", depth)
	}
	if _, err := st.PopSnapshot(ctx, 5); !errors.Is(err, apperrors.ErrNothingToUndo) {
		t.Errorf("PopSnapshot() after clear = %v, want ErrNothingToUndo", err)
	}
}

func TestFSStore_MarkdownMirror(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFSStore(dir, WithMarkdownMirror(true))
	if err != nil {
		t.Fatal(err)
	}

	audioDir := t.TempDir()
	entry := &Entry{
		ID:         1,
		Title:      "Standup notes",
		AudioPath:  filepath.Join(audioDir, "rec.wav"),
		Transcript: "hello world",
	}
	if err := st.SaveEntry(context.Background(), entry); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(audioDir, "Standup notes.md"))
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	want := "# Standup notes\n\nhello world\n"
	if string(data) != want {
		t.Errorf("mirror = %q, want %q", data, want)
	}
}

func TestFSStore_MarkdownMirror_FailureNonFatal(t *testing.T) {
	st := newTestStore(t, WithMarkdownMirror(true))

	// Point the audio path into a directory that cannot be created.
	entry := &Entry{
		ID:        1,
		Title:     "t",
		AudioPath: filepath.Join(string(os.PathSeparator), "dev", "null", "nested", "rec.wav"),
	}
	if err := st.SaveEntry(context.Background(), entry); err != nil {
		t.Errorf("SaveEntry() error = %v, want nil despite mirror failure", err)
	}
}

func TestEntry_SpeakerLabel(t *testing.T) {
	entry := &Entry{SpeakerNames: map[int]string{0: "Alice"}}
	if got := entry.SpeakerLabel(0); got != "Alice" {
		t.Errorf("SpeakerLabel(0) = %q, want Alice", got)
	}
	if got := entry.SpeakerLabel(1); got != "Speaker 1" {
		t.Errorf("SpeakerLabel(1) = %q, want Speaker 1", got)
	}
	if got := entry.SpeakerLabel(-1); got != "Unknown" {
		t.Errorf("SpeakerLabel(-1) = %q, want Unknown", got)
	}
	var nilEntry *Entry
	if got := nilEntry.SpeakerLabel(2); got != "Speaker 2" {
		t.Errorf("nil SpeakerLabel(2) = %q, want Speaker 2", got)
	}
	if got := nilEntry.SpeakerLabel(-1); got != "Unknown" {
		t.Errorf("nil SpeakerLabel(-1) = %q, want Unknown", got)
	}
}

func TestUpdateSegment(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	segments := []MergedSegment{
		{ID: "a", Speaker: 0, Text: "hello"},
		{ID: "b", Speaker: 1, Text: "world"},
	}
	if err := st.SaveSegments(ctx, 1, segments); err != nil {
		t.Fatal(err)
	}

	err := UpdateSegment(ctx, st, 1, "b", func(seg *MergedSegment) {
		seg.Text = "corrected"
		seg.Speaker = 0
	})
	if err != nil {
		t.Fatalf("UpdateSegment() error = %v", err)
	}

	got, _ := st.LoadSegments(ctx, 1)
	if got[1].Text != "corrected" || got[1].Speaker != 0 {
		t.Errorf("segments[1] = %+v, want edited", got[1])
	}
	if got[0].Text != "hello" {
		t.Errorf("segments[0] = %+v, want untouched", got[0])
	}

	err = UpdateSegment(ctx, st, 1, "missing", func(*MergedSegment) {})
	if apperrors.CodeOf(err) != apperrors.ErrCodeNotFound {
		t.Errorf("UpdateSegment(missing) = %v, want not found", err)
	}
}

func TestRenameSpeaker(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.SaveEntry(ctx, &Entry{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if err := RenameSpeaker(ctx, st, 1, 0, "Alice"); err != nil {
		t.Fatalf("RenameSpeaker() error = %v", err)
	}

	entry, _ := st.LoadEntry(ctx, 1)
	if entry.SpeakerLabel(0) != "Alice" {
		t.Errorf("SpeakerLabel(0) = %q, want Alice", entry.SpeakerLabel(0))
	}

	// Empty name removes the mapping.
	if err := RenameSpeaker(ctx, st, 1, 0, ""); err != nil {
		t.Fatal(err)
	}
	entry, _ = st.LoadEntry(ctx, 1)
	if entry.SpeakerLabel(0) != "Speaker 0" {
		t.Errorf("SpeakerLabel(0) = %q, want Speaker 0", entry.SpeakerLabel(0))
	}
}

func TestFSStore_Component(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if st.Name() != "store" {
		t.Errorf("Name() = %q, want store", st.Name())
	}
	if err := st.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if h := st.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health() = %s, want %s", h.Status, component.StatusHealthy)
	}
	if err := st.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
