// Package pyannote implements diarization.Segmenter and
// diarization.Embedder using a pyannote HTTP sidecar.
package pyannote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/skillsenselab/murmur/audio"
	"github.com/skillsenselab/murmur/diarization"
)

const (
	// ProviderName is the registered name for the pyannote backend.
	ProviderName = "pyannote"

	defaultPyannoteURL     = "http://localhost:8388"
	defaultPyannoteTimeout = 300 * time.Second
)

// Config holds configuration for the pyannote sidecar backend.
type Config struct {
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Backend talks to a pyannote sidecar exposing /segment and /embed.
type Backend struct {
	cfg    Config
	client *http.Client
}

// NewBackend creates a new pyannote sidecar backend.
func NewBackend(cfg Config) *Backend {
	if cfg.URL == "" {
		cfg.URL = defaultPyannoteURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultPyannoteTimeout
	}
	return &Backend{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the backend name.
func (b *Backend) Name() string { return ProviderName }

// IsAvailable checks if the sidecar is reachable.
func (b *Backend) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// segmentResponse is the sidecar's voice activity payload.
type segmentResponse struct {
	Segments []struct {
		StartMS int64 `json:"start_ms"`
		EndMS   int64 `json:"end_ms"`
	} `json:"segments"`
	Error string `json:"error,omitempty"`
}

// Segment posts the audio to the sidecar and maps the detected speech
// spans back onto the sample buffer.
func (b *Backend) Segment(ctx context.Context, samples []float32) ([]diarization.Span, error) {
	var result segmentResponse
	if err := b.post(ctx, "/segment", samples, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("pyannote segmentation: %s", result.Error)
	}

	spans := make([]diarization.Span, 0, len(result.Segments))
	for _, seg := range result.Segments {
		start := int(seg.StartMS) * audio.SampleRate / 1000
		end := int(seg.EndMS) * audio.SampleRate / 1000
		if start < 0 {
			start = 0
		}
		if end > len(samples) {
			end = len(samples)
		}
		if end <= start {
			continue
		}
		spans = append(spans, diarization.Span{
			StartMS: seg.StartMS,
			EndMS:   seg.EndMS,
			Samples: samples[start:end],
		})
	}
	return spans, nil
}

// embedResponse is the sidecar's speaker embedding payload.
type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// Embed posts a speech span to the sidecar and returns its speaker
// embedding vector.
func (b *Backend) Embed(ctx context.Context, samples []float32) ([]float32, error) {
	var result embedResponse
	if err := b.post(ctx, "/embed", samples, &result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("pyannote embedding: %s", result.Error)
	}
	return result.Embedding, nil
}

// post encodes the samples as WAV and decodes the sidecar's JSON reply.
func (b *Backend) post(ctx context.Context, path string, samples []float32, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", "audio.wav")
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if err := audio.EncodeWAV(part, audio.NewBuffer(samples)); err != nil {
		return fmt.Errorf("encode audio: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.URL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("pyannote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pyannote error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode pyannote response: %w", err)
	}
	return nil
}

var (
	_ diarization.Segmenter = (*Backend)(nil)
	_ diarization.Embedder  = (*Backend)(nil)
)
