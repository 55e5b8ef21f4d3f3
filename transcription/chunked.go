package transcription

import (
	"context"
	"strings"
	"sync"

	"github.com/skillsenselab/murmur/audio"
	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/logger"
)

// ChunkedTranscriber transcribes long audio by splitting it into
// overlapping windows and invoking the backend once per window.
//
// The backend is treated as a single-flight resource: inference calls are
// serialized through a mutex unless the backend is marked reentrant.
// Words repeated across the overlap region are NOT de-duplicated; this is
// accepted lossy behavior of fixed-window chunking, kept visible rather
// than patched with heuristics that could remove intentional repetition.
type ChunkedTranscriber struct {
	backend     Provider
	chunker     *audio.Chunker
	concurrency int
	reentrant   bool
	progress    func(current, total int)

	mu sync.Mutex // serializes backend calls
}

// Option configures a ChunkedTranscriber.
type Option func(*ChunkedTranscriber)

// WithChunker replaces the default 30s/1s chunker.
func WithChunker(c *audio.Chunker) Option {
	return func(t *ChunkedTranscriber) {
		t.chunker = c
	}
}

// WithConcurrency bounds the number of chunks processed at once.
// Values below 2 keep processing sequential. Concurrency above 1 only
// helps when the backend is reentrant; otherwise the backend mutex
// serializes the inference calls anyway.
func WithConcurrency(n int) Option {
	return func(t *ChunkedTranscriber) {
		if n > 1 {
			t.concurrency = n
		}
	}
}

// WithReentrantBackend marks the backend as safe for concurrent calls,
// removing the serializing mutex around Transcribe.
func WithReentrantBackend() Option {
	return func(t *ChunkedTranscriber) {
		t.reentrant = true
	}
}

// WithProgress registers a callback invoked after each chunk completes
// with the number of finished chunks and the total.
func WithProgress(fn func(current, total int)) Option {
	return func(t *ChunkedTranscriber) {
		t.progress = fn
	}
}

// NewChunkedTranscriber creates a transcriber over the given backend.
func NewChunkedTranscriber(backend Provider, opts ...Option) *ChunkedTranscriber {
	t := &ChunkedTranscriber{
		backend:     backend,
		chunker:     audio.NewDefaultChunker(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe splits buf into chunks, transcribes each, and joins the
// results in chunk order with a single space. A single chunk's failure is
// logged and substituted with empty text rather than aborting the run;
// partial results are preferred over total loss for long media. An empty
// buffer yields an empty Result, not an error. Cancellation is checked at
// every chunk boundary.
func (t *ChunkedTranscriber) Transcribe(ctx context.Context, buf *audio.Buffer) (*Result, error) {
	chunks := t.chunker.Split(buf)
	if len(chunks) == 0 {
		return &Result{}, nil
	}

	logger.Debug("Transcribing chunked audio", logger.Fields(
		"samples", buf.Len(),
		"chunks", len(chunks),
	))

	segments := make([]TranscriptSegment, len(chunks))
	var failed int

	if t.concurrency > 1 {
		var err error
		failed, err = t.transcribeConcurrent(ctx, buf, chunks, segments)
		if err != nil {
			return nil, err
		}
	} else {
		for i, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, apperrors.Cancelled().WithCause(err)
			}
			text, ok := t.transcribeChunk(ctx, buf, chunk)
			segments[i] = TranscriptSegment{Text: text, SourceChunk: chunk.Index}
			if !ok {
				failed++
			}
			if t.progress != nil {
				t.progress(i+1, len(chunks))
			}
		}
	}

	return &Result{
		Text:         joinSegments(segments),
		Segments:     segments,
		FailedChunks: failed,
	}, nil
}

func (t *ChunkedTranscriber) transcribeConcurrent(ctx context.Context, buf *audio.Buffer, chunks []audio.Chunk, segments []TranscriptSegment) (int, error) {
	sem := make(chan struct{}, t.concurrency)
	var (
		wg        sync.WaitGroup
		stateMu   sync.Mutex
		failed    int
		completed int
	)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, chunk audio.Chunk) {
			defer wg.Done()
			defer func() { <-sem }()

			text, ok := t.transcribeChunk(ctx, buf, chunk)

			stateMu.Lock()
			segments[i] = TranscriptSegment{Text: text, SourceChunk: chunk.Index}
			if !ok {
				failed++
			}
			completed++
			done := completed
			stateMu.Unlock()

			if t.progress != nil {
				t.progress(done, len(chunks))
			}
		}(i, chunk)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return failed, apperrors.Cancelled().WithCause(err)
	}
	return failed, nil
}

// transcribeChunk runs one backend call. The second return value reports
// whether the call succeeded.
func (t *ChunkedTranscriber) transcribeChunk(ctx context.Context, buf *audio.Buffer, chunk audio.Chunk) (string, bool) {
	samples := t.chunker.Samples(buf, chunk)

	if !t.reentrant {
		t.mu.Lock()
		defer t.mu.Unlock()
	}

	text, err := t.backend.Transcribe(ctx, samples)
	if err != nil {
		logger.Warn("Chunk transcription failed, substituting empty text",
			logger.Fields(
				logger.FieldChunk, chunk.Index,
				"backend", t.backend.Name(),
				"error", apperrors.ChunkFailed(chunk.Index, err).Error(),
			))
		return "", false
	}
	return strings.TrimSpace(text), true
}

// joinSegments concatenates non-empty segment texts in chunk order with a
// single space separator.
func joinSegments(segments []TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, " ")
}
