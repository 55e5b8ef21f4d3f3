package pipeline

import (
	"context"
	"strconv"

	"github.com/skillsenselab/murmur/audio"
	"github.com/skillsenselab/murmur/diarization"
	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/events"
	"github.com/skillsenselab/murmur/jobs"
	"github.com/skillsenselab/murmur/journal"
	"github.com/skillsenselab/murmur/logger"
	"github.com/skillsenselab/murmur/merge"
	"github.com/skillsenselab/murmur/observability"
	"github.com/skillsenselab/murmur/transcription"
)

// Result summarizes one processing run.
type Result struct {
	// Transcript is the entry's persisted transcript text after the
	// run: the raw joined transcription, or the speaker-labeled
	// rendering when diarization ran.
	Transcript string
	// Segments holds the merged speaker segments; empty without
	// diarization or when no speech was detected.
	Segments []journal.MergedSegment
	// FailedChunks counts chunks whose transcription was substituted
	// with empty text.
	FailedChunks int
}

// Processor runs the processing pipeline for journal entries.
type Processor struct {
	store   journal.Store
	backend transcription.Provider

	engine     *diarization.Engine
	diarizeCfg diarization.Config

	tracker *jobs.Tracker
	emitter *events.Emitter
	metrics *observability.Metrics
	chunker *audio.Chunker

	serviceName string
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithDiarization enables the diarization and merge stages.
func WithDiarization(engine *diarization.Engine, cfg diarization.Config) ProcessorOption {
	return func(p *Processor) {
		p.engine = engine
		p.diarizeCfg = cfg
	}
}

// WithTracker runs every entry under a tracked job, enforcing the
// one-job-per-entry invariant and enabling cooperative cancellation.
func WithTracker(t *jobs.Tracker) ProcessorOption {
	return func(p *Processor) {
		p.tracker = t
	}
}

// WithEmitter attaches a status event emitter for stage transitions.
func WithEmitter(em *events.Emitter) ProcessorOption {
	return func(p *Processor) {
		p.emitter = em
	}
}

// WithMetrics records per-stage metrics on the given recorder.
func WithMetrics(m *observability.Metrics) ProcessorOption {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithChunker overrides the default 30s/1s chunking.
func WithChunker(c *audio.Chunker) ProcessorOption {
	return func(p *Processor) {
		p.chunker = c
	}
}

// WithServiceName tags spans and stage metrics with a service name.
func WithServiceName(name string) ProcessorOption {
	return func(p *Processor) {
		p.serviceName = name
	}
}

// NewProcessor creates a pipeline processor over the given store and
// transcription backend.
func NewProcessor(store journal.Store, backend transcription.Provider, opts ...ProcessorOption) *Processor {
	p := &Processor{
		store:       store,
		backend:     backend,
		diarizeCfg:  diarization.DefaultConfig(),
		serviceName: "murmur",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFile decodes a WAV recording and processes it.
func (p *Processor) ProcessFile(ctx context.Context, entryID int64, path string) (*Result, error) {
	buf, err := audio.DecodeWAVFile(path)
	if err != nil {
		return nil, err
	}
	return p.process(ctx, entryID, path, buf)
}

// Process runs the pipeline over an already-decoded buffer.
func (p *Processor) Process(ctx context.Context, entryID int64, buf *audio.Buffer) (*Result, error) {
	return p.process(ctx, entryID, "", buf)
}

func (p *Processor) process(ctx context.Context, entryID int64, audioPath string, buf *audio.Buffer) (*Result, error) {
	runCtx := ctx
	if p.tracker != nil {
		job, err := p.tracker.Start(ctx, entryID, jobs.KindTranscribe)
		if err != nil {
			return nil, err
		}
		runCtx = job.Context()
	}

	if p.metrics != nil {
		p.metrics.RecordJobStart(runCtx)
		defer p.metrics.RecordJobEnd(runCtx)
	}

	result, err := p.run(runCtx, entryID, audioPath, buf)
	if p.tracker != nil {
		if err != nil {
			p.tracker.Fail(entryID, err)
		} else {
			p.tracker.Complete(entryID)
		}
	}
	return result, err
}

func (p *Processor) run(ctx context.Context, entryID int64, audioPath string, buf *audio.Buffer) (*Result, error) {
	key := entryKey(entryID)
	entry, err := p.loadOrCreateEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if audioPath != "" {
		entry.AudioPath = audioPath
	}
	entry.DurationMS = buf.Duration().Milliseconds()

	result := &Result{}

	// Transcription. The persisted write happens only after the whole
	// stage completes, and re-transcription invalidates any applied
	// transform stages.
	p.emitter.Stage(key, events.StageTranscribing)
	err = p.stage(ctx, entryID, events.StageTranscribing, observability.SpanTranscribe, func(ctx context.Context) error {
		out, err := p.newTranscriber(entryID).Transcribe(ctx, buf)
		if err != nil {
			return err
		}

		result.Transcript = out.Text
		result.FailedChunks = out.FailedChunks

		entry.RawTranscript = out.Text
		entry.Transcript = out.Text
		entry.LastApplied = ""
		if err := p.store.SaveEntry(ctx, entry); err != nil {
			return err
		}
		return p.store.ClearSnapshots(ctx, entryID)
	})
	if err != nil {
		return nil, err
	}

	if p.engine == nil {
		return result, nil
	}

	// Diarization and merge. The merge gate uses this run's terminal
	// state; the engine's State() may already belong to another entry.
	var (
		segs  []diarization.SpeakerSegment
		final diarization.State
	)
	err = p.stage(ctx, entryID, events.StageDiarizing, observability.SpanDiarize, func(ctx context.Context) error {
		segs, final, err = p.engine.Run(ctx, key, buf, p.diarizeCfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, entryID, events.StageMerging, observability.SpanMerge, func(ctx context.Context) error {
		merged := merge.Merge(entry.RawTranscript, entry.DurationMS, segs)
		if err := merge.Replace(ctx, p.store, entryID, final, merged); err != nil {
			return err
		}
		result.Segments = merged

		if flat := merge.FlatTranscript(entry, merged); flat != "" {
			entry.Transcript = flat
			result.Transcript = flat
		}
		return p.store.SaveEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Pipeline finished", logger.Fields(
		logger.FieldEntry, entryID,
		"segments", len(result.Segments),
		"failed_chunks", result.FailedChunks,
	))
	return result, nil
}

// ReDiarize re-runs diarization with new parameters against the
// entry's saved audio, without re-transcribing. The recomputed merge
// replaces the prior segment list only when the engine reaches done; a
// failed re-run leaves previous segments untouched. Any manual segment
// edits are lost on re-merge.
func (p *Processor) ReDiarize(ctx context.Context, entryID int64, cfg diarization.Config) ([]journal.MergedSegment, error) {
	if p.engine == nil {
		return nil, apperrors.BackendUnavailable("diarization")
	}

	runCtx := ctx
	if p.tracker != nil {
		job, err := p.tracker.Start(ctx, entryID, jobs.KindDiarize)
		if err != nil {
			return nil, err
		}
		runCtx = job.Context()
	}

	merged, err := p.reDiarize(runCtx, entryID, cfg)
	if p.tracker != nil {
		if err != nil {
			p.tracker.Fail(entryID, err)
		} else {
			p.tracker.Complete(entryID)
		}
	}
	return merged, err
}

func (p *Processor) reDiarize(ctx context.Context, entryID int64, cfg diarization.Config) ([]journal.MergedSegment, error) {
	entry, err := p.store.LoadEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.AudioPath == "" {
		return nil, apperrors.NotFound("recording", entryID)
	}
	buf, err := audio.DecodeWAVFile(entry.AudioPath)
	if err != nil {
		return nil, err
	}

	key := entryKey(entryID)
	var (
		segs  []diarization.SpeakerSegment
		final diarization.State
	)
	err = p.stage(ctx, entryID, events.StageDiarizing, observability.SpanDiarize, func(ctx context.Context) error {
		segs, final, err = p.engine.Run(ctx, key, buf, cfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	var merged []journal.MergedSegment
	err = p.stage(ctx, entryID, events.StageMerging, observability.SpanMerge, func(ctx context.Context) error {
		source := entry.RawTranscript
		if source == "" {
			source = entry.Transcript
		}
		merged = merge.Merge(source, entry.DurationMS, segs)
		if err := merge.Replace(ctx, p.store, entryID, final, merged); err != nil {
			return err
		}

		if flat := merge.FlatTranscript(entry, merged); flat != "" {
			entry.Transcript = flat
		}
		return p.store.SaveEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return merged, nil
}

// newTranscriber builds a per-run chunked transcriber whose progress
// reports feed the entry's tracked job.
func (p *Processor) newTranscriber(entryID int64) *transcription.ChunkedTranscriber {
	opts := []transcription.Option{}
	if p.chunker != nil {
		opts = append(opts, transcription.WithChunker(p.chunker))
	}
	if p.tracker != nil {
		opts = append(opts, transcription.WithProgress(func(current, total int) {
			p.tracker.Report(entryID, events.StageTranscribing, current, total)
		}))
	}
	return transcription.NewChunkedTranscriber(p.backend, opts...)
}

// stage wraps one pipeline stage with a span, stage metrics and the
// cancellation check at the stage boundary.
func (p *Processor) stage(ctx context.Context, entryID int64, stage, spanName string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Cancelled().WithCause(err)
	}

	sc := observability.NewStageContext(p.serviceName, stage, entryKey(entryID), "", p.metrics)
	ctx = observability.WithStageContext(ctx, sc)
	ctx, span := sc.StartStageSpan(ctx, spanName)

	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
	}
	sc.EndStage(ctx, span, status, err)
	return err
}

func (p *Processor) loadOrCreateEntry(ctx context.Context, entryID int64) (*journal.Entry, error) {
	entry, err := p.store.LoadEntry(ctx, entryID)
	if err == nil {
		return entry, nil
	}
	if apperrors.CodeOf(err) == apperrors.ErrCodeNotFound {
		return &journal.Entry{ID: entryID}, nil
	}
	return nil, err
}

func entryKey(entryID int64) string {
	return strconv.FormatInt(entryID, 10)
}
