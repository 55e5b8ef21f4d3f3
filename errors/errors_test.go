package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodeChunkFailed, "chunk 3 failed")
	want := "CHUNK_FAILED: chunk 3 failed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAppError_ErrorWithCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := DownloadFailed("segmentation model", cause)
	if got := err.Error(); got != fmt.Sprintf("DOWNLOAD_FAILED: %s (cause: connection refused)", err.Message) {
		t.Errorf("unexpected Error(): %q", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Storage("save_entry", cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"download failure", DownloadFailed("model", nil), true},
		{"backend unavailable", BackendUnavailable("whisper"), true},
		{"out of sequence", OutOfSequence("report", "clean"), false},
		{"already processing", AlreadyProcessing(42), false},
		{"wrapped retryable", fmt.Errorf("job failed: %w", BackendUnavailable("ollama")), true},
		{"plain error", stderrors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(AlreadyProcessing(7)); got != ErrCodeAlreadyProcessing {
		t.Errorf("CodeOf() = %v, want %v", got, ErrCodeAlreadyProcessing)
	}
	if got := CodeOf(stderrors.New("plain")); got != ErrCodeInternal {
		t.Errorf("CodeOf(plain) = %v, want %v", got, ErrCodeInternal)
	}
}

func TestWithDetail(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad").WithDetail("field", "threshold")
	if err.Details["field"] != "threshold" {
		t.Errorf("Details[field] = %v, want threshold", err.Details["field"])
	}
}

func TestErrNothingToUndo(t *testing.T) {
	var err error = ErrNothingToUndo

	if !stderrors.Is(err, ErrNothingToUndo) {
		t.Error("errors.Is failed to match the sentinel")
	}
	if got := CodeOf(err); got != ErrCodeNothingToUndo {
		t.Errorf("CodeOf() = %v, want %v", got, ErrCodeNothingToUndo)
	}
	if IsRetryable(err) {
		t.Error("IsRetryable() = true, want false")
	}

	wrapped := fmt.Errorf("undo entry 7: %w", ErrNothingToUndo)
	if !stderrors.Is(wrapped, ErrNothingToUndo) {
		t.Error("errors.Is failed to match through wrapping")
	}
	if got := CodeOf(wrapped); got != ErrCodeNothingToUndo {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, ErrCodeNothingToUndo)
	}
}
