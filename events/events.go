package events

// Event type constants.
const (
	// EventTypeConnected is sent when a client successfully connects.
	EventTypeConnected = "connected"

	// EventTypeStatus carries entry-level processing status (stage
	// transitions and chunk progress).
	EventTypeStatus = "entry-status"

	// EventTypeDiarize carries diarization-specific progress.
	EventTypeDiarize = "diarize-status"

	// EventTypeDownload carries model download progress.
	EventTypeDownload = "download-status"
)

// Entry processing stages reported over the event stream.
const (
	StageLoading      = "loading"
	StageChunking     = "chunking"
	StageTranscribing = "transcribing"
	StageDiarizing    = "diarizing"
	StageMerging      = "merging"
	StageDone         = "done"
	StageFailed       = "failed"
	StageCancelled    = "cancelled"
)

// StatusEvent is the wire payload for all status events.
// Current and Total are populated only for progress updates.
type StatusEvent struct {
	Type    string `json:"type"`
	EntryID string `json:"entry_id"`
	Stage   string `json:"stage"`
	Current int    `json:"current,omitempty"`
	Total   int    `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}
