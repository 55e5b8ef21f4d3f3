package audio

import (
	"time"

	apperrors "github.com/skillsenselab/murmur/errors"
)

// Default chunking parameters. 30-second windows keep chunk length inside
// transcription backend input limits; the 1-second overlap avoids cutting
// words exactly at window boundaries.
const (
	DefaultWindow  = 30 * time.Second
	DefaultOverlap = 1 * time.Second
)

// Chunk is a view into a Buffer.
// OverlapSamples is the number of leading samples already covered by the
// previous chunk; it is zero for the first chunk.
type Chunk struct {
	// Index is the position of the chunk in the sequence, starting at 0.
	Index int `json:"index"`
	// StartSample is the offset of the chunk in the source buffer.
	StartSample int `json:"start_sample"`
	// SampleCount is the number of samples in the chunk.
	SampleCount int `json:"sample_count"`
	// OverlapSamples is the leading overlap shared with the previous chunk.
	OverlapSamples int `json:"overlap_samples"`
}

// End returns the exclusive end offset of the chunk in the source buffer.
func (c Chunk) End() int {
	return c.StartSample + c.SampleCount
}

// Chunker splits buffers into fixed-duration windows with overlap.
type Chunker struct {
	windowSamples  int
	overlapSamples int
}

// NewChunker creates a chunker with the given window and overlap durations.
// Overlap must be non-negative and strictly smaller than the window.
func NewChunker(window, overlap time.Duration) (*Chunker, error) {
	if window <= 0 {
		return nil, apperrors.InvalidInput("window", "must be positive")
	}
	if overlap < 0 || overlap >= window {
		return nil, apperrors.InvalidInput("overlap", "must be shorter than the window")
	}
	return &Chunker{
		windowSamples:  durationToSamples(window),
		overlapSamples: durationToSamples(overlap),
	}, nil
}

// NewDefaultChunker creates a chunker with DefaultWindow and DefaultOverlap.
func NewDefaultChunker() *Chunker {
	c, _ := NewChunker(DefaultWindow, DefaultOverlap)
	return c
}

// WindowSamples returns the target window length in samples.
func (c *Chunker) WindowSamples() int { return c.windowSamples }

// OverlapSamples returns the configured overlap in samples.
func (c *Chunker) OverlapSamples() int { return c.overlapSamples }

// Split produces an ordered sequence of chunks covering the entire buffer
// with no gaps. Buffers shorter than the window produce exactly one chunk
// with zero overlap. An empty buffer yields an empty sequence, not an
// error: zero chunks means "nothing to transcribe".
func (c *Chunker) Split(buf *Buffer) []Chunk {
	total := buf.Len()
	if total == 0 {
		return nil
	}

	stride := c.windowSamples - c.overlapSamples
	chunks := make([]Chunk, 0, (total+stride-1)/stride)

	for start, index := 0, 0; ; start, index = start+stride, index+1 {
		count := c.windowSamples
		if start+count > total {
			count = total - start
		}

		overlap := c.overlapSamples
		if index == 0 {
			overlap = 0
		}

		chunks = append(chunks, Chunk{
			Index:          index,
			StartSample:    start,
			SampleCount:    count,
			OverlapSamples: overlap,
		})

		if start+count >= total {
			break
		}
	}

	return chunks
}

// Samples returns the sample window of the given chunk from buf.
func (c *Chunker) Samples(buf *Buffer, chunk Chunk) []float32 {
	return buf.Slice(chunk.StartSample, chunk.SampleCount)
}

func durationToSamples(d time.Duration) int {
	return int(d * SampleRate / time.Second)
}
