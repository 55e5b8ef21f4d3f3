// Package resilience provides context-aware retry with exponential backoff
// and jitter. The diarization model downloader uses it to survive transient
// network failures without re-downloading models that already arrived.
package resilience
