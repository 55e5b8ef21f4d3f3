package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/skillsenselab/murmur/errors"
)

func fastConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	got, err := Retry(context.Background(), fastConfig(), func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if got != "ok" || attempts != 3 {
		t.Errorf("got %q after %d attempts, want ok after 3", got, attempts)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxAttempts = 2
	attempts := 0
	_, err := Retry(context.Background(), cfg, func() (int, error) {
		attempts++
		return 0, errors.New("always fails")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetry_StopsOnNonRetryable(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryIf = RetryIfRetryable
	attempts := 0
	_, err := Retry(context.Background(), cfg, func() (int, error) {
		attempts++
		return 0, apperrors.OutOfSequence("report", "clean")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on invariant violation)", attempts)
	}
}

func TestRetry_RetriesRetryableAppError(t *testing.T) {
	cfg := fastConfig()
	cfg.RetryIf = RetryIfRetryable
	attempts := 0
	_, err := Retry(context.Background(), cfg, func() (int, error) {
		attempts++
		if attempts < 2 {
			return 0, apperrors.DownloadFailed("embedding model", nil)
		}
		return 1, nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Retry(ctx, fastConfig(), func() (int, error) {
		return 0, errors.New("should not matter")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryFunc(t *testing.T) {
	calls := 0
	err := RetryFunc(context.Background(), fastConfig(), func() error {
		calls++
		if calls == 1 {
			return errors.New("once")
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("err = %v, calls = %d; want nil, 2", err, calls)
	}
}

func TestCalculateBackoff_Capped(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.InitialBackoff = time.Second
	cfg.MaxBackoff = 2 * time.Second
	cfg.Jitter = 0
	if got := calculateBackoff(10, cfg); got != cfg.MaxBackoff {
		t.Errorf("backoff = %v, want capped at %v", got, cfg.MaxBackoff)
	}
}
