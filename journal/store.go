package journal

import "context"

// Store persists entries, merged segments, and snapshot stacks.
// Implementations must make each write atomic: a crash between calls
// leaves every artifact at its last fully written state.
type Store interface {
	// LoadEntry returns the entry with the given id.
	LoadEntry(ctx context.Context, id int64) (*Entry, error)

	// SaveEntry creates or replaces the entry record.
	SaveEntry(ctx context.Context, entry *Entry) error

	// ListEntries returns all stored entries ordered by id.
	ListEntries(ctx context.Context) ([]*Entry, error)

	// DeleteEntry removes the entry and everything stored with it.
	DeleteEntry(ctx context.Context, id int64) error

	// LoadSegments returns the entry's merged segments, an empty slice
	// when none are stored.
	LoadSegments(ctx context.Context, entryID int64) ([]MergedSegment, error)

	// SaveSegments replaces the entry's merged segment list.
	SaveSegments(ctx context.Context, entryID int64, segments []MergedSegment) error

	// PushSnapshot appends one level to the entry's snapshot stack.
	PushSnapshot(ctx context.Context, entryID int64, snap Snapshot) error

	// PopSnapshot removes and returns the topmost snapshot.
	// Returns a nothing-to-undo error on an empty stack.
	PopSnapshot(ctx context.Context, entryID int64) (*Snapshot, error)

	// ClearSnapshots empties the entry's snapshot stack.
	ClearSnapshots(ctx context.Context, entryID int64) error

	// SnapshotDepth returns the number of stacked snapshots.
	SnapshotDepth(ctx context.Context, entryID int64) (int, error)
}
