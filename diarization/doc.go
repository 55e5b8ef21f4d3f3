// Package diarization determines "who spoke when" in a recording.
//
// The Engine runs a fixed state machine over an audio buffer:
//
//	loading -> segmenting -> embedding -> clustering -> done | failed
//
// Segmentation and embedding are capability interfaces (Segmenter,
// Embedder) so alternative backends can be substituted without touching
// downstream merging. Clustering groups span embeddings into at most
// MaxSpeakers identities by cosine similarity, preferring speaker
// continuity when similarities tie.
//
// Models required by the bundled backend are fetched on first use; see
// ModelManager.
package diarization
