package postprocess

import (
	"context"
	"strconv"
	"sync"

	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/events"
	"github.com/skillsenselab/murmur/journal"
	"github.com/skillsenselab/murmur/llm"
	"github.com/skillsenselab/murmur/logger"
)

// Controller sequences transcript transforms for journal entries.
// Apply and undo for one entry never run concurrently; the controller
// holds the edit session lock across the whole operation.
type Controller struct {
	store    journal.Store
	provider llm.Provider
	emitter  *events.Emitter

	mu sync.Mutex // one edit session at a time
}

// Option configures a Controller.
type Option func(*Controller)

// WithEmitter attaches a status event emitter; transform completions
// and undos are announced through it.
func WithEmitter(em *events.Emitter) Option {
	return func(c *Controller) {
		c.emitter = em
	}
}

// NewController creates a transform controller over the given store
// and completion backend.
func NewController(store journal.Store, provider llm.Provider, opts ...Option) *Controller {
	c := &Controller{store: store, provider: provider}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Applied returns the last transform stage applied to the entry.
func (c *Controller) Applied(ctx context.Context, entryID int64) (Stage, error) {
	entry, err := c.store.LoadEntry(ctx, entryID)
	if err != nil {
		return StageNone, err
	}
	return ParseStage(entry.LastApplied)
}

// Apply runs one transform stage on the entry's transcript. The stage
// must be exactly the next one in pipeline order; anything else is
// rejected without touching the entry. On success the prior text is
// pushed onto the snapshot stack, the transformed text is persisted,
// and the applied stage advances.
func (c *Controller) Apply(ctx context.Context, entryID int64, stage Stage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.store.LoadEntry(ctx, entryID)
	if err != nil {
		return "", err
	}

	applied, err := ParseStage(entry.LastApplied)
	if err != nil {
		return "", err
	}
	expected := applied.Next()
	if stage == StageNone || stage != expected {
		return "", apperrors.OutOfSequence(stage.String(), expected.String())
	}

	// Repeated-word normalization runs before every transform, and
	// speaker labels are swapped for assigned names so the backend
	// sees "[Alice]" rather than "[Speaker 0]".
	text := NormalizeRepeats(entry.Transcript)
	text = SubstituteSpeakerNames(entry, text)

	prompt := llm.RenderPrompt(stage.Prompt(), text)
	transformed, err := llm.CompleteText(ctx, c.provider, prompt)
	if err != nil {
		logger.Warn("Transform stage failed", logger.Fields(
			logger.FieldEntry, entryID,
			logger.FieldStage, stage.String(),
			"error", err.Error(),
		))
		return "", err
	}

	// Snapshot the pre-transform text only once the transform has
	// succeeded, so stack depth always equals applied stage count on
	// every in-process error path. The push and the entry save below
	// are still two separate writes: a crash between them leaves one
	// extra snapshot. Undo tolerates that by deriving the applied
	// stage from the popped snapshot, so popping the stray entry is a
	// no-op restore of the current text.
	if err := c.store.PushSnapshot(ctx, entryID, journal.Snapshot{
		Stage: stage.String(),
		Text:  entry.Transcript,
	}); err != nil {
		return "", err
	}

	entry.Transcript = transformed
	entry.LastApplied = stage.String()
	if err := c.store.SaveEntry(ctx, entry); err != nil {
		return "", err
	}

	logger.Info("Transform stage applied", logger.Fields(
		logger.FieldEntry, entryID,
		logger.FieldStage, stage.String(),
	))
	c.emitter.Stage(strconv.FormatInt(entryID, 10), stage.String())
	return transformed, nil
}

// Undo reverts the most recently applied stage, restoring the text
// that preceded it. An empty stack returns ErrNothingToUndo and leaves
// the entry untouched.
func (c *Controller) Undo(ctx context.Context, entryID int64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.store.LoadEntry(ctx, entryID)
	if err != nil {
		return "", err
	}

	snap, err := c.store.PopSnapshot(ctx, entryID)
	if err != nil {
		return "", err
	}

	// The snapshot names the stage whose application it preceded, so
	// the restored text corresponds to the stage before it. Deriving
	// the applied stage from the snapshot rather than the entry keeps
	// the two consistent even if a crash left a stray snapshot on the
	// stack.
	snapStage, err := ParseStage(snap.Stage)
	if err != nil {
		return "", err
	}

	entry.Transcript = snap.Text
	if snapStage > StageNone {
		entry.LastApplied = (snapStage - 1).String()
	}
	if err := c.store.SaveEntry(ctx, entry); err != nil {
		return "", err
	}

	logger.Info("Transform stage undone", logger.Fields(
		logger.FieldEntry, entryID,
		logger.FieldStage, snap.Stage,
	))
	c.emitter.Stage(strconv.FormatInt(entryID, 10), "undo")
	return snap.Text, nil
}

// Clear drops all pipeline state for the entry: the snapshot stack is
// emptied and the applied stage resets to none. Called after
// re-transcription or any manual text edit, since the stages are
// defined relative to a specific source text.
func (c *Controller) Clear(ctx context.Context, entryID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearLocked(ctx, entryID)
}

func (c *Controller) clearLocked(ctx context.Context, entryID int64) error {
	if err := c.store.ClearSnapshots(ctx, entryID); err != nil {
		return err
	}

	entry, err := c.store.LoadEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.LastApplied != "" {
		entry.LastApplied = ""
		if err := c.store.SaveEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// SetTranscript stores a manually edited transcript. Manual edits
// invalidate every applied stage, so the pipeline state is cleared in
// the same edit session.
func (c *Controller) SetTranscript(ctx context.Context, entryID int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, err := c.store.LoadEntry(ctx, entryID)
	if err != nil {
		return err
	}
	entry.Transcript = text
	entry.LastApplied = ""
	if err := c.store.SaveEntry(ctx, entry); err != nil {
		return err
	}
	if err := c.store.ClearSnapshots(ctx, entryID); err != nil {
		return err
	}
	c.emitter.Stage(strconv.FormatInt(entryID, 10), "edited")
	return nil
}
