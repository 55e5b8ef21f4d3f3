// Package pipeline orchestrates the full processing flow for one
// journal entry: decode, chunk, transcribe, optionally diarize, merge,
// persist. Each entry's run is wrapped in a tracked job; cancellation
// is cooperative at stage boundaries, and each stage's persisted write
// happens only after that stage fully completes, so a crash leaves the
// entry at the last completed stage.
package pipeline
