// Package events provides Server-Sent Events (SSE) infrastructure for
// streaming processing progress to listening clients.
//
// The pipeline, the diarization engine, and the job tracker publish status
// events through an Emitter; browser or desktop clients subscribe per journal
// entry and receive stage transitions and progress counters as they happen.
//
// # Architecture
//
//   - Hub: Central event router managing client subscriptions
//   - Emitter: Typed publisher for entry status and diarization progress
//   - Handler: Gin handler for the SSE endpoint
//
// # Usage
//
//	hub := events.NewHub()
//	go hub.Run()
//	emitter := events.NewEmitter(hub)
//	router.GET("/events/:entryId", events.Handler(hub))
//
//	emitter.Stage("entry-1", "transcribing")
//	emitter.Progress("entry-1", "transcribing", 2, 5)
package events
