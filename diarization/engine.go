package diarization

import (
	"context"
	"sort"
	"sync"

	"github.com/skillsenselab/murmur/audio"
	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/events"
	"github.com/skillsenselab/murmur/logger"
)

// State is the engine's position in the diarization state machine.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateSegmenting State = "segmenting"
	StateEmbedding  State = "embedding"
	StateClustering State = "clustering"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Config holds clustering and filtering parameters for a diarization run.
type Config struct {
	// MaxSpeakers bounds the number of speaker clusters (1-20).
	MaxSpeakers int `json:"max_speakers"`
	// Threshold is the cosine similarity needed to join an existing
	// cluster while the speaker budget is open (0-1). Lower values are
	// more sensitive to speaker differences and yield more clusters.
	Threshold float32 `json:"threshold"`
	// MinSegmentMS drops detected spans shorter than this; such spans
	// are too short to embed reliably and are treated as silence/noise.
	MinSegmentMS int64 `json:"min_segment_ms"`
}

// DefaultConfig returns the standard diarization parameters.
func DefaultConfig() Config {
	return Config{
		MaxSpeakers:  1,
		Threshold:    0.5,
		MinSegmentMS: 500,
	}
}

func (c Config) validate() error {
	if c.MaxSpeakers < 1 || c.MaxSpeakers > 20 {
		return apperrors.InvalidInput("max_speakers", "must be between 1 and 20")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return apperrors.InvalidInput("threshold", "must be between 0 and 1")
	}
	return nil
}

// Engine runs the diarization state machine over an audio buffer.
// The underlying backends are treated as single-flight resources: only
// one Run executes at a time.
type Engine struct {
	segmenter Segmenter
	embedder  Embedder
	loader    func(ctx context.Context) error
	emitter   *events.Emitter

	runMu sync.Mutex // serializes Run

	mu    sync.RWMutex
	state State
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLoader sets the model-loading hook executed in the loading state.
// Typically ModelManager.Install.
func WithLoader(fn func(ctx context.Context) error) EngineOption {
	return func(e *Engine) {
		e.loader = fn
	}
}

// WithEmitter attaches a status event emitter.
func WithEmitter(em *events.Emitter) EngineOption {
	return func(e *Engine) {
		e.emitter = em
	}
}

// NewEngine creates a diarization engine over the given backends.
func NewEngine(segmenter Segmenter, embedder Embedder, opts ...EngineOption) *Engine {
	e := &Engine{
		segmenter: segmenter,
		embedder:  embedder,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the engine's current state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Run diarizes the buffer and returns speaker segments sorted by start
// time ascending, ties broken by detection order, together with the
// run's terminal state (done or failed). An empty buffer or a recording
// without speech yields an empty segment list and done. On any failure
// the returned segments are nil; callers must leave previously
// persisted segments untouched in that case.
//
// State() reports the most recent transition across all runs; callers
// deciding what to do with this run's output must use the returned
// terminal state, since another entry's run may have moved the shared
// state on by the time they look.
func (e *Engine) Run(ctx context.Context, entryID string, buf *audio.Buffer, cfg Config) ([]SpeakerSegment, State, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if err := cfg.validate(); err != nil {
		return nil, StateFailed, e.fail(entryID, err)
	}

	// Loading: ensure models are present. Skipped entirely when no
	// loader is configured (models already resident).
	e.transition(entryID, StateLoading)
	if e.loader != nil {
		if err := e.loader(ctx); err != nil {
			return nil, StateFailed, e.fail(entryID, err)
		}
	}

	e.transition(entryID, StateSegmenting)
	if err := ctx.Err(); err != nil {
		return nil, StateFailed, e.fail(entryID, apperrors.Cancelled().WithCause(err))
	}

	spans, err := e.segmenter.Segment(ctx, buf.Samples)
	if err != nil {
		return nil, StateFailed, e.fail(entryID, err)
	}
	spans = dropShortSpans(spans, cfg.MinSegmentMS)

	if len(spans) == 0 {
		logger.Info("No speech spans detected", logger.Fields(logger.FieldEntry, entryID))
		e.transition(entryID, StateDone)
		return []SpeakerSegment{}, StateDone, nil
	}

	logger.Debug("Segmentation complete", logger.Fields(
		logger.FieldEntry, entryID,
		"spans", len(spans),
	))

	e.transition(entryID, StateEmbedding)
	embedded := make([]SpeakerSegment, 0, len(spans))
	for i, span := range spans {
		if err := ctx.Err(); err != nil {
			return nil, StateFailed, e.fail(entryID, apperrors.Cancelled().WithCause(err))
		}

		vec, err := e.embedder.Embed(ctx, span.Samples)
		if err != nil {
			// A span the embedder rejects is dropped rather than
			// assigned a speaker; the gap is acceptable silence/noise.
			logger.Warn("Dropping span that failed to embed", logger.Fields(
				logger.FieldEntry, entryID,
				logger.FieldSegment, i,
				"error", err.Error(),
			))
			continue
		}

		embedded = append(embedded, SpeakerSegment{
			Speaker:   SpeakerUnknown,
			StartMS:   span.StartMS,
			EndMS:     span.EndMS,
			Embedding: vec,
			Samples:   span.Samples,
		})
		e.progress(entryID, StateEmbedding, i+1, len(spans))
	}

	e.transition(entryID, StateClustering)
	clusterer := NewClusterer(cfg.MaxSpeakers, cfg.Threshold)
	for i := range embedded {
		if err := ctx.Err(); err != nil {
			return nil, StateFailed, e.fail(entryID, apperrors.Cancelled().WithCause(err))
		}
		embedded[i].Speaker = clusterer.Assign(embedded[i].Embedding, embedded[i].StartMS, embedded[i].EndMS)
	}

	sort.SliceStable(embedded, func(i, j int) bool {
		return embedded[i].StartMS < embedded[j].StartMS
	})

	logger.Info("Diarization complete", logger.Fields(
		logger.FieldEntry, entryID,
		"segments", len(embedded),
		"speakers", clusterer.Count(),
	))

	e.transition(entryID, StateDone)
	return embedded, StateDone, nil
}

func (e *Engine) transition(entryID string, s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
	e.emitter.DiarizeStage(entryID, string(s))
}

func (e *Engine) progress(entryID string, s State, current, total int) {
	e.emitter.DiarizeProgress(entryID, string(s), current, total)
}

func (e *Engine) fail(entryID string, err error) error {
	e.mu.Lock()
	e.state = StateFailed
	e.mu.Unlock()
	e.emitter.DiarizeStage(entryID, string(StateFailed))
	logger.Error("Diarization failed", logger.Fields(
		logger.FieldEntry, entryID,
		"error", err.Error(),
	))
	return err
}

func dropShortSpans(spans []Span, minMS int64) []Span {
	if minMS <= 0 {
		return spans
	}
	kept := spans[:0]
	for _, s := range spans {
		if s.DurationMS() >= minMS {
			kept = append(kept, s)
		}
	}
	return kept
}
