package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// IsRetryable reports whether err (or any error it wraps) is a retryable AppError.
func IsRetryable(err error) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// CodeOf returns the error code of err if it is an AppError, ErrCodeInternal otherwise.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// --- Common Error Constructors ---

// DownloadFailed creates a new AppError for a failed model or audio download.
func DownloadFailed(what string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDownloadFailed, Message: fmt.Sprintf("Download of %s failed. Check your connection and try again.", what),
		Retryable: true, Cause: cause,
		Details: map[string]any{"resource": what},
	}
}

// BackendUnavailable creates a new AppError for an unreachable inference backend.
func BackendUnavailable(backend string) *AppError {
	return &AppError{
		Code: ErrCodeBackendUnavailable, Message: fmt.Sprintf("The %s backend is unavailable. Please try again.", backend),
		Retryable: true,
		Details:   map[string]any{"backend": backend},
	}
}

// ChunkFailed creates a new AppError for a single failed chunk transcription.
func ChunkFailed(index int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeChunkFailed, Message: fmt.Sprintf("Transcription of chunk %d failed; substituting empty text.", index),
		Retryable: false, Cause: cause,
		Details: map[string]any{"chunk": index},
	}
}

// OutOfSequence creates a new AppError for a stage applied out of order.
func OutOfSequence(requested, expected string) *AppError {
	return &AppError{
		Code: ErrCodeOutOfSequence, Message: fmt.Sprintf("Stage %s cannot be applied; next valid stage is %s.", requested, expected),
		Retryable: false,
		Details:   map[string]any{"requested": requested, "expected": expected},
	}
}

// AlreadyProcessing creates a new AppError for a rejected concurrent job.
func AlreadyProcessing(entryID int64) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyProcessing, Message: "This entry is already being processed.",
		Retryable: false,
		Details:   map[string]any{"entry_id": entryID},
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource string, id any) *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		Retryable: false,
		Details:   map[string]any{"resource": resource, "id": id},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Retryable: false, Details: details,
	}
}

// UnsupportedAudio creates a new AppError for audio the pipeline cannot accept.
func UnsupportedAudio(reason string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedAudio, Message: fmt.Sprintf("Unsupported audio: %s", reason),
		Retryable: false,
	}
}

// Storage creates a new AppError for a persistence failure.
func Storage(op string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeStorage, Message: fmt.Sprintf("Storage operation %s failed.", op),
		Retryable: false, Cause: cause,
		Details: map[string]any{"operation": op},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}

// Cancelled creates a new AppError for a user-cancelled job.
func Cancelled() *AppError {
	return &AppError{
		Code: ErrCodeCancelled, Message: "The operation was cancelled.",
		Retryable: false,
	}
}

// --- Sentinels for sequencing invariants ---

var (
	// ErrNothingToUndo is returned when undo is called with an empty
	// snapshot stack. It is a shared *AppError so callers can match it
	// with errors.Is or classify it with CodeOf.
	ErrNothingToUndo = &AppError{
		Code: ErrCodeNothingToUndo, Message: "There is nothing to undo.",
		Retryable: false,
	}
)
