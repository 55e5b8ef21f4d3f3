package journal

import (
	"context"

	apperrors "github.com/skillsenselab/murmur/errors"
)

// UpdateSegment loads the entry's segments, applies update to the one
// with the given id, and saves the list back. Editing a segment never
// touches diarization state; a later re-diarize overwrites edits.
func UpdateSegment(ctx context.Context, st Store, entryID int64, segmentID string, update func(*MergedSegment)) error {
	segments, err := st.LoadSegments(ctx, entryID)
	if err != nil {
		return err
	}
	for i := range segments {
		if segments[i].ID == segmentID {
			update(&segments[i])
			return st.SaveSegments(ctx, entryID, segments)
		}
	}
	return apperrors.NotFound("segment", segmentID)
}

// RenameSpeaker sets the display name for a speaker id on the entry
// and persists it. An empty name removes the mapping, restoring the
// default "Speaker N" label.
func RenameSpeaker(ctx context.Context, st Store, entryID int64, speaker int, name string) error {
	entry, err := st.LoadEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.SpeakerNames == nil {
		entry.SpeakerNames = make(map[int]string)
	}
	if name == "" {
		delete(entry.SpeakerNames, speaker)
	} else {
		entry.SpeakerNames[speaker] = name
	}
	return st.SaveEntry(ctx, entry)
}
