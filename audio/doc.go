// Package audio provides the PCM buffer model and fixed-window chunking
// for the transcription pipeline.
//
// A Buffer holds mono 16 kHz 32-bit float samples. The Chunker splits a
// buffer into overlapping windows sized for transcription backends with
// bounded input length. Decode helpers read WAV files into normalized
// buffers (downmix to mono, linear resample to 16 kHz).
//
// # Usage
//
//	buf, err := audio.DecodeWAVFile("recording.wav")
//	chunker, err := audio.NewChunker(30*time.Second, time.Second)
//	chunks := chunker.Split(buf)
package audio
