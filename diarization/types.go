package diarization

import "context"

// EmbeddingSize is the dimension of speaker embedding vectors.
const EmbeddingSize = 192

// SpeakerUnknown marks a span that could not be attributed to a speaker.
const SpeakerUnknown = -1

// Span is a contiguous speech-active range detected by segmentation,
// before speaker assignment.
type Span struct {
	// StartMS is the span start in milliseconds from the buffer start.
	StartMS int64 `json:"start_ms"`
	// EndMS is the span end in milliseconds, always greater than StartMS.
	EndMS int64 `json:"end_ms"`
	// Samples holds the span's mono 16 kHz PCM audio.
	Samples []float32 `json:"-"`
}

// DurationMS returns the span length in milliseconds.
func (s Span) DurationMS() int64 {
	return s.EndMS - s.StartMS
}

// SpeakerSegment is one contiguous span of one speaker's speech.
// Speaker is a dense integer assigned by clustering, stable only within
// one diarization run; re-running may renumber.
type SpeakerSegment struct {
	// Speaker is the cluster id, or SpeakerUnknown.
	Speaker int `json:"speaker"`
	// StartMS is the segment start in milliseconds.
	StartMS int64 `json:"start_ms"`
	// EndMS is the segment end in milliseconds.
	EndMS int64 `json:"end_ms"`
	// Embedding is the span's speaker embedding vector.
	Embedding []float32 `json:"-"`
	// Samples holds the segment's audio for per-segment transcription.
	Samples []float32 `json:"-"`
}

// Segmenter detects speech-active spans in an audio buffer.
type Segmenter interface {
	// Segment returns raw speech spans in detection order.
	Segment(ctx context.Context, samples []float32) ([]Span, error)
}

// Embedder computes a fixed-length speaker embedding for one span.
type Embedder interface {
	// Embed returns an EmbeddingSize-length vector for the samples.
	Embed(ctx context.Context, samples []float32) ([]float32, error)
}
