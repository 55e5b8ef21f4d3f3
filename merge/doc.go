// Package merge aligns diarization output with transcribed text.
// Transcription is time-unaware (chunk-indexed) while speaker segments
// are time-aware, so segment text is sliced from the flat transcript
// proportionally to each segment's share of the recording. Alignment
// is best-effort at chunk granularity; exact word-level alignment is
// out of scope.
package merge
