// Package provider implements a small generic provider framework for
// swappable inference backends.
//
// Transcription, diarization, and text-completion backends all register
// through Registry[T], which manages named factories and cached instances.
// This keeps backend selection a configuration concern: the pipeline asks the
// registry for a provider by name and never links against a concrete backend.
package provider
