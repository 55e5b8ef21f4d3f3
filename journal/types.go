package journal

import (
	"fmt"
	"time"
)

// Entry is one voice journal entry.
type Entry struct {
	// ID uniquely identifies the entry.
	ID int64 `json:"id"`
	// Title is the user-visible entry title, also used for the
	// markdown mirror filename.
	Title string `json:"title"`
	// AudioPath points at the entry's recording on disk.
	AudioPath string `json:"audio_path,omitempty"`
	// DurationMS is the recording length in milliseconds.
	DurationMS int64 `json:"duration_ms"`
	// Transcript is the entry's current flat transcript text. When
	// diarization is enabled this is the speaker-labeled rendering.
	Transcript string `json:"transcript"`
	// RawTranscript is the unlabeled chunk-joined transcription; it is
	// the slicing source for diarization merges and re-merges.
	RawTranscript string `json:"raw_transcript,omitempty"`
	// LastApplied names the last transform stage applied to the
	// transcript, empty when no stage is applied.
	LastApplied string `json:"last_applied,omitempty"`
	// SpeakerNames maps diarization speaker ids to display names.
	SpeakerNames map[int]string `json:"speaker_names,omitempty"`
	// CreatedAt is when the entry was first saved.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the entry was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}

// SpeakerLabel returns the display name for a speaker id, falling back
// to "Speaker N" when the user has not named that speaker. Negative ids
// mark unattributed segments and render as "Unknown".
func (e *Entry) SpeakerLabel(speaker int) string {
	if e != nil && e.SpeakerNames != nil {
		if name, ok := e.SpeakerNames[speaker]; ok && name != "" {
			return name
		}
	}
	if speaker < 0 {
		return "Unknown"
	}
	return fmt.Sprintf("Speaker %d", speaker)
}

// MergedSegment is one persisted speaker-attributed slice of the
// transcript. Segments are independently editable after merge; editing
// never re-triggers diarization.
type MergedSegment struct {
	// ID uniquely identifies the segment within its entry.
	ID string `json:"id"`
	// Speaker is the diarization cluster id, or -1 when unattributed.
	Speaker int `json:"speaker"`
	// StartMS is the segment start in milliseconds.
	StartMS int64 `json:"start_ms"`
	// EndMS is the segment end in milliseconds.
	EndMS int64 `json:"end_ms"`
	// Text is the segment's transcript slice.
	Text string `json:"text"`
}

// Snapshot is one level of the transform undo stack: the transcript as
// it was before the named stage ran.
type Snapshot struct {
	// Stage names the transform stage this snapshot precedes.
	Stage string `json:"stage"`
	// Text is the transcript text to restore on undo.
	Text string `json:"text"`
	// TakenAt is when the snapshot was pushed.
	TakenAt time.Time `json:"taken_at"`
}
