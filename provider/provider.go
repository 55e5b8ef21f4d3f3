package provider

import "context"

// Provider is the least common denominator for murmur's inference
// backends: the whisper transcription server, the pyannote diarization
// sidecar, and the ollama completion API all satisfy it.
type Provider interface {
	// Name returns the backend's registered name.
	Name() string
	// IsAvailable reports whether the backend can take requests right
	// now. Local model servers come and go; callers probe before
	// dispatching work.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a backend instance from its configuration map. Keys
// are backend-specific ("url", "model", "timeout", ...); factories
// apply their own defaults for anything missing.
type Factory[T Provider] func(cfg map[string]any) (T, error)
