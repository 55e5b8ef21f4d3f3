package merge

import (
	"context"

	"github.com/skillsenselab/murmur/diarization"
	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/journal"
	"github.com/skillsenselab/murmur/logger"
)

// Replace persists a recomputed merge for an entry, overwriting the
// prior segment list. The engine state gates the write: anything other
// than a completed run is rejected, so a failed re-diarize leaves the
// previously merged segments untouched.
func Replace(ctx context.Context, st journal.Store, entryID int64, state diarization.State, segments []journal.MergedSegment) error {
	if state != diarization.StateDone {
		return apperrors.InvalidInput("state", "segments can only be replaced after diarization completes")
	}
	if err := st.SaveSegments(ctx, entryID, segments); err != nil {
		return err
	}
	logger.Info("Merged segments replaced", logger.Fields(
		logger.FieldEntry, entryID,
		"segments", len(segments),
	))
	return nil
}
