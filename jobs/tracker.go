package jobs

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/events"
	"github.com/skillsenselab/murmur/logger"
)

// Kind names the operation a job performs.
type Kind string

const (
	KindDownload   Kind = "download"
	KindImport     Kind = "import"
	KindTranscribe Kind = "transcribe"
	KindDiarize    Kind = "diarize"
)

// Job is one tracked operation on one entry.
type Job struct {
	// ID uniquely identifies this job run.
	ID string
	// EntryID is the entry the job operates on.
	EntryID int64
	// Kind is the operation being performed.
	Kind Kind
	// Stage is the job's current pipeline stage.
	Stage string
	// Current and Total describe progress within the stage;
	// Total 0 means indeterminate.
	Current, Total int
	// StartedAt is when the job was registered.
	StartedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// Context returns the job's context. Workers must check it at every
// chunk and segment boundary; it is cancelled by Tracker.Cancel.
func (j *Job) Context() context.Context {
	return j.ctx
}

// Cancelled reports whether cancellation has been requested.
func (j *Job) Cancelled() bool {
	return j.ctx.Err() != nil
}

// Tracker holds the in-memory set of running jobs, at most one per
// entry.
type Tracker struct {
	emitter *events.Emitter

	mu   sync.Mutex
	jobs map[int64]*Job
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithEmitter attaches a status event emitter; job progress and
// terminal transitions are announced through it.
func WithEmitter(em *events.Emitter) Option {
	return func(t *Tracker) {
		t.emitter = em
	}
}

// NewTracker creates an empty job tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{jobs: make(map[int64]*Job)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start registers a job for the entry and returns it. A second job for
// the same entry is rejected while the first is tracked; the invariant
// protects the persisted entry from racing writers.
func (t *Tracker) Start(ctx context.Context, entryID int64, kind Kind) (*Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.jobs[entryID]; exists {
		return nil, apperrors.AlreadyProcessing(entryID)
	}

	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:        uuid.NewString(),
		EntryID:   entryID,
		Kind:      kind,
		Stage:     string(events.StageLoading),
		StartedAt: time.Now(),
		ctx:       jobCtx,
		cancel:    cancel,
	}
	t.jobs[entryID] = job

	logger.Info("Job started", logger.Fields(
		logger.FieldEntry, entryID,
		logger.FieldJob, job.ID,
		"kind", string(kind),
	))
	t.emitter.Stage(entryKey(entryID), job.Stage)
	return job, nil
}

// Get returns the entry's tracked job, if any.
func (t *Tracker) Get(entryID int64) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[entryID]
	return job, ok
}

// IsProcessing reports whether the entry has a tracked job.
func (t *Tracker) IsProcessing(entryID int64) bool {
	_, ok := t.Get(entryID)
	return ok
}

// Active returns all tracked jobs.
func (t *Tracker) Active() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		out = append(out, job)
	}
	return out
}

// Report updates the job's stage and progress and emits a progress
// event. Reports against an untracked entry are dropped.
func (t *Tracker) Report(entryID int64, stage string, current, total int) {
	t.mu.Lock()
	job, ok := t.jobs[entryID]
	if ok {
		job.Stage = stage
		job.Current = current
		job.Total = total
	}
	t.mu.Unlock()

	if ok {
		t.emitter.Progress(entryKey(entryID), stage, current, total)
	}
}

// Cancel requests cooperative cancellation of the entry's job. The job
// stays tracked until its worker observes the cancelled context and
// finishes through Fail or Complete. Returns false when no job is
// tracked.
func (t *Tracker) Cancel(entryID int64) bool {
	t.mu.Lock()
	job, ok := t.jobs[entryID]
	t.mu.Unlock()

	if !ok {
		return false
	}
	job.cancel()
	logger.Info("Job cancellation requested", logger.Fields(
		logger.FieldEntry, entryID,
		logger.FieldJob, job.ID,
	))
	return true
}

// Complete removes the job after emitting the terminal done event.
func (t *Tracker) Complete(entryID int64) {
	job, ok := t.remove(entryID)
	if !ok {
		return
	}
	logger.Info("Job completed", logger.Fields(
		logger.FieldEntry, entryID,
		logger.FieldJob, job.ID,
	))
	t.emitter.Done(entryKey(entryID))
}

// Fail removes the job after emitting the terminal event: cancelled
// when the error is a cancellation, failed otherwise.
func (t *Tracker) Fail(entryID int64, err error) {
	job, ok := t.remove(entryID)
	if !ok {
		return
	}

	if apperrors.CodeOf(err) == apperrors.ErrCodeCancelled {
		logger.Info("Job cancelled", logger.Fields(
			logger.FieldEntry, entryID,
			logger.FieldJob, job.ID,
		))
		t.emitter.Cancelled(entryKey(entryID))
		return
	}

	logger.Error("Job failed", logger.Fields(
		logger.FieldEntry, entryID,
		logger.FieldJob, job.ID,
		"error", err.Error(),
	))
	t.emitter.Failed(entryKey(entryID), err.Error())
}

// remove untracks the job and releases its context.
func (t *Tracker) remove(entryID int64) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[entryID]
	if !ok {
		return nil, false
	}
	delete(t.jobs, entryID)
	job.cancel()
	return job, true
}

func entryKey(entryID int64) string {
	return strconv.FormatInt(entryID, 10)
}
