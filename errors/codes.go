package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transient errors (retryable)
const (
	// ErrCodeDownloadFailed indicates a model or remote-audio download failed.
	ErrCodeDownloadFailed ErrorCode = "DOWNLOAD_FAILED"
	// ErrCodeBackendUnavailable indicates a transcription/diarization/LLM backend is unreachable.
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	// ErrCodeTimeout indicates an operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Partial-data errors (absorbed, surfaced as warnings)
const (
	// ErrCodeChunkFailed indicates a single chunk's transcription failed.
	ErrCodeChunkFailed ErrorCode = "CHUNK_FAILED"
)

// Invariant violations (rejected before any side effect)
const (
	// ErrCodeOutOfSequence indicates a pipeline stage was applied out of order.
	ErrCodeOutOfSequence ErrorCode = "OUT_OF_SEQUENCE"
	// ErrCodeNothingToUndo indicates undo was called with an empty snapshot stack.
	ErrCodeNothingToUndo ErrorCode = "NOTHING_TO_UNDO"
	// ErrCodeAlreadyProcessing indicates a job is already active for the entry.
	ErrCodeAlreadyProcessing ErrorCode = "ALREADY_PROCESSING"
)

// Fatal-for-job errors
const (
	// ErrCodeModelCorrupt indicates a diarization model failed to load.
	ErrCodeModelCorrupt ErrorCode = "MODEL_CORRUPT"
	// ErrCodeUnsupportedAudio indicates audio the chunker cannot accept.
	ErrCodeUnsupportedAudio ErrorCode = "UNSUPPORTED_AUDIO"
	// ErrCodeNotFound indicates the requested entry or resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeStorage indicates a persistence failure.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeCancelled indicates the job was cancelled by the user.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeDownloadFailed:     true,
	ErrCodeBackendUnavailable: true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
