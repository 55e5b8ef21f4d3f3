// Package llm defines the text-completion boundary used by transcript
// post-processing. Backends are registered through the provider
// registry; the bundled backend talks to a local Ollama server. The
// caller treats completion as a black box subject to arbitrary latency
// and occasional failure.
package llm
