package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/events"
)

type captureBroadcaster struct {
	mu     sync.Mutex
	events []events.StatusEvent
}

func (c *captureBroadcaster) BroadcastToPattern(_ string, data []byte) {
	var ev events.StatusEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return
	}
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *captureBroadcaster) stages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Stage
	}
	return out
}

func newTestTracker() (*Tracker, *captureBroadcaster) {
	capture := &captureBroadcaster{}
	return NewTracker(WithEmitter(events.NewEmitter(capture))), capture
}

func TestTracker_StartRejectsSecondJob(t *testing.T) {
	tracker, _ := newTestTracker()
	ctx := context.Background()

	if _, err := tracker.Start(ctx, 42, KindTranscribe); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	_, err := tracker.Start(ctx, 42, KindDiarize)
	if err == nil {
		t.Fatal("second Start() error = nil, want rejection")
	}
	if apperrors.CodeOf(err) != apperrors.ErrCodeAlreadyProcessing {
		t.Errorf("CodeOf(err) = %s, want %s", apperrors.CodeOf(err), apperrors.ErrCodeAlreadyProcessing)
	}

	// A different entry is unaffected.
	if _, err := tracker.Start(ctx, 43, KindDiarize); err != nil {
		t.Errorf("Start(other entry) error = %v", err)
	}
}

func TestTracker_MembershipAnswersProcessing(t *testing.T) {
	tracker, _ := newTestTracker()
	ctx := context.Background()

	if tracker.IsProcessing(1) {
		t.Error("IsProcessing() = true before start")
	}

	if _, err := tracker.Start(ctx, 1, KindImport); err != nil {
		t.Fatal(err)
	}
	if !tracker.IsProcessing(1) {
		t.Error("IsProcessing() = false while tracked")
	}

	tracker.Complete(1)
	if tracker.IsProcessing(1) {
		t.Error("IsProcessing() = true after terminal event")
	}

	// Entry is free for a new job after completion.
	if _, err := tracker.Start(ctx, 1, KindDiarize); err != nil {
		t.Errorf("Start() after complete error = %v", err)
	}
}

func TestTracker_ReportUpdatesProgress(t *testing.T) {
	tracker, capture := newTestTracker()
	ctx := context.Background()

	if _, err := tracker.Start(ctx, 1, KindTranscribe); err != nil {
		t.Fatal(err)
	}
	tracker.Report(1, events.StageTranscribing, 2, 3)

	job, ok := tracker.Get(1)
	if !ok {
		t.Fatal("Get() missing tracked job")
	}
	if job.Stage != events.StageTranscribing || job.Current != 2 || job.Total != 3 {
		t.Errorf("job = %+v, want transcribing 2/3", job)
	}

	found := false
	capture.mu.Lock()
	for _, ev := range capture.events {
		if ev.Stage == events.StageTranscribing && ev.Current == 2 && ev.Total == 3 {
			found = true
		}
	}
	capture.mu.Unlock()
	if !found {
		t.Error("no progress event emitted")
	}

	// Reports for untracked entries are dropped, not panicking.
	tracker.Report(99, events.StageChunking, 1, 2)
}

func TestTracker_CancelIsCooperative(t *testing.T) {
	tracker, _ := newTestTracker()
	job, err := tracker.Start(context.Background(), 1, KindDownload)
	if err != nil {
		t.Fatal(err)
	}

	if job.Cancelled() {
		t.Error("Cancelled() = true before cancel")
	}
	if !tracker.Cancel(1) {
		t.Fatal("Cancel() = false for tracked job")
	}

	// The context is signalled but the job stays tracked until the
	// worker acknowledges.
	if !job.Cancelled() {
		t.Error("Cancelled() = false after cancel")
	}
	select {
	case <-job.Context().Done():
	default:
		t.Error("job context not cancelled")
	}
	if !tracker.IsProcessing(1) {
		t.Error("job removed before worker acknowledged cancellation")
	}

	tracker.Fail(1, apperrors.Cancelled())
	if tracker.IsProcessing(1) {
		t.Error("job still tracked after terminal event")
	}

	if tracker.Cancel(2) {
		t.Error("Cancel() = true for untracked entry")
	}
}

func TestTracker_TerminalEvents(t *testing.T) {
	tracker, capture := newTestTracker()
	ctx := context.Background()

	if _, err := tracker.Start(ctx, 1, KindTranscribe); err != nil {
		t.Fatal(err)
	}
	tracker.Complete(1)

	if _, err := tracker.Start(ctx, 2, KindTranscribe); err != nil {
		t.Fatal(err)
	}
	tracker.Fail(2, errors.New("backend exploded"))

	if _, err := tracker.Start(ctx, 3, KindDiarize); err != nil {
		t.Fatal(err)
	}
	tracker.Cancel(3)
	tracker.Fail(3, apperrors.Cancelled())

	stages := capture.stages()
	var sawDone, sawFailed, sawCancelled bool
	for _, s := range stages {
		switch s {
		case events.StageDone:
			sawDone = true
		case events.StageFailed:
			sawFailed = true
		case events.StageCancelled:
			sawCancelled = true
		}
	}
	if !sawDone || !sawFailed || !sawCancelled {
		t.Errorf("stages = %v, want done, failed and cancelled events", stages)
	}

	// Terminal calls on untracked entries are no-ops.
	tracker.Complete(99)
	tracker.Fail(99, errors.New("x"))
}

func TestTracker_Active(t *testing.T) {
	tracker, _ := newTestTracker()
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		if _, err := tracker.Start(ctx, id, KindImport); err != nil {
			t.Fatal(err)
		}
	}
	tracker.Complete(2)

	active := tracker.Active()
	if len(active) != 2 {
		t.Fatalf("len(Active()) = %d, want 2", len(active))
	}
	for _, job := range active {
		if job.EntryID == 2 {
			t.Error("completed job still in Active()")
		}
		if job.ID == "" {
			t.Error("job missing id")
		}
	}
}
