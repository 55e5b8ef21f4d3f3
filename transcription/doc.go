// Package transcription defines the provider interface for speech-to-text
// backends and the chunked transcriber that drives them.
//
// It follows the provider pattern with a pluggable registry for
// runtime-selectable backends. The ChunkedTranscriber splits long audio
// into overlapping windows, transcribes each window, and joins the parts
// in chunk order.
//
// # Usage
//
//	reg := transcription.NewRegistry()
//	reg.Set("whisper", whisperProvider)
//	backend, _ := reg.Get("whisper")
//	tr := transcription.NewChunkedTranscriber(backend)
//	result, err := tr.Transcribe(ctx, buf)
package transcription
