package audio

import (
	"time"
)

// SampleRate is the normalized sample rate for all pipeline audio.
const SampleRate = 16000

// Buffer holds mono PCM samples at SampleRate.
// Each pipeline stage produces a new buffer or segment list; a buffer is
// never mutated in place across stage boundaries.
type Buffer struct {
	// Samples are 32-bit float PCM values in [-1, 1].
	Samples []float32
}

// NewBuffer wraps samples in a Buffer.
func NewBuffer(samples []float32) *Buffer {
	return &Buffer{Samples: samples}
}

// Len returns the number of samples.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Duration returns the playback duration of the buffer.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Len()) * time.Second / SampleRate
}

// Slice returns a view of samples [start, start+count).
// The returned slice aliases the buffer's storage.
func (b *Buffer) Slice(start, count int) []float32 {
	end := start + count
	if start < 0 || end > len(b.Samples) {
		return nil
	}
	return b.Samples[start:end]
}

// Downmix averages interleaved multichannel frames into mono.
// A channel count below 2 returns the input unchanged.
func Downmix(samples []float32, channels int) []float32 {
	if channels < 2 {
		return samples
	}
	frames := len(samples) / channels
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}

// Resample converts samples from srcRate to SampleRate using linear
// interpolation. Exact-rate input is returned unchanged.
func Resample(samples []float32, srcRate int) []float32 {
	if srcRate == SampleRate || srcRate <= 0 || len(samples) == 0 {
		return samples
	}
	ratio := float64(srcRate) / float64(SampleRate)
	newLen := int(float64(len(samples)) / ratio)
	out := make([]float32, newLen)
	for i := 0; i < newLen; i++ {
		srcIdx := float64(i) * ratio
		idx := int(srcIdx)
		frac := srcIdx - float64(idx)
		a := sampleAt(samples, idx)
		b := sampleAt(samples, idx+1, a)
		out[i] = a + (b-a)*float32(frac)
	}
	return out
}

func sampleAt(samples []float32, idx int, fallback ...float32) float32 {
	if idx >= 0 && idx < len(samples) {
		return samples[idx]
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return 0
}
