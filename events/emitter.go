package events

import (
	"encoding/json"
	"fmt"

	"github.com/skillsenselab/murmur/logger"
)

// EntryPattern returns the broadcast pattern matching all clients
// subscribed to the given entry.
func EntryPattern(entryID string) string {
	return fmt.Sprintf("entry:%s:*", entryID)
}

// ClientID builds a hub client ID for a subscriber watching an entry.
func ClientID(entryID, subscriberID string) string {
	return fmt.Sprintf("entry:%s:%s", entryID, subscriberID)
}

// Emitter publishes typed status events to the hub.
// A nil Emitter is safe to use; all methods become no-ops, which keeps
// event emission optional in tests and library use.
type Emitter struct {
	b Broadcaster
}

// NewEmitter creates an emitter that publishes through the given broadcaster.
func NewEmitter(b Broadcaster) *Emitter {
	return &Emitter{b: b}
}

// Stage reports that an entry transitioned to a new processing stage.
func (e *Emitter) Stage(entryID, stage string) {
	e.publish(StatusEvent{
		Type:    EventTypeStatus,
		EntryID: entryID,
		Stage:   stage,
	})
}

// Progress reports chunk or segment progress within a stage.
func (e *Emitter) Progress(entryID, stage string, current, total int) {
	e.publish(StatusEvent{
		Type:    EventTypeStatus,
		EntryID: entryID,
		Stage:   stage,
		Current: current,
		Total:   total,
	})
}

// Done reports successful completion of entry processing.
func (e *Emitter) Done(entryID string) {
	e.Stage(entryID, StageDone)
}

// Failed reports a processing failure with a human-readable message.
func (e *Emitter) Failed(entryID, message string) {
	e.publish(StatusEvent{
		Type:    EventTypeStatus,
		EntryID: entryID,
		Stage:   StageFailed,
		Message: message,
	})
}

// Cancelled reports that processing was cancelled.
func (e *Emitter) Cancelled(entryID string) {
	e.Stage(entryID, StageCancelled)
}

// DiarizeStage reports a diarization engine state transition.
func (e *Emitter) DiarizeStage(entryID, stage string) {
	e.publish(StatusEvent{
		Type:    EventTypeDiarize,
		EntryID: entryID,
		Stage:   stage,
	})
}

// DiarizeProgress reports diarization progress within a stage.
func (e *Emitter) DiarizeProgress(entryID, stage string, current, total int) {
	e.publish(StatusEvent{
		Type:    EventTypeDiarize,
		EntryID: entryID,
		Stage:   stage,
		Current: current,
		Total:   total,
	})
}

// DownloadProgress reports model download progress in bytes.
func (e *Emitter) DownloadProgress(entryID, model string, current, total int) {
	e.publish(StatusEvent{
		Type:    EventTypeDownload,
		EntryID: entryID,
		Stage:   model,
		Current: current,
		Total:   total,
	})
}

func (e *Emitter) publish(ev StatusEvent) {
	if e == nil || e.b == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Error("[EVENTS] Marshal failed", map[string]interface{}{
			"type":  ev.Type,
			"error": err.Error(),
		})
		return
	}
	e.b.BroadcastToPattern(EntryPattern(ev.EntryID), data)
}
