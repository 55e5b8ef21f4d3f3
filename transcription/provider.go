package transcription

import (
	"context"

	"github.com/skillsenselab/murmur/provider"
)

// Provider is the interface that transcription backends must implement.
// Backends receive mono 16 kHz float PCM samples for one chunk and return
// the transcribed text.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe converts one window of audio samples to text.
	Transcribe(ctx context.Context, samples []float32) (string, error)
}

// NewRegistry creates a new provider registry for transcription backends.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
