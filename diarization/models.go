package diarization

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skillsenselab/murmur/component"
	apperrors "github.com/skillsenselab/murmur/errors"
	"github.com/skillsenselab/murmur/logger"
	"github.com/skillsenselab/murmur/resilience"
)

// Model files required by the bundled pyannote backend.
const (
	SegmentationModel = "segmentation-3.0.onnx"
	EmbeddingModel    = "wespeaker_en_voxceleb_CAM++.onnx"

	defaultModelBaseURL = "https://github.com/thewh1teagle/pyannote-rs/releases/download/v0.1.0"
)

// DownloadProgress reports model download progress in bytes.
// Total is 0 when the server does not announce a content length.
type DownloadProgress func(model string, downloaded, total int64)

// ModelManager downloads and caches the diarization models.
// It implements component.Component so it can join the lifecycle registry.
type ModelManager struct {
	dir      string
	baseURL  string
	client   *http.Client
	retry    resilience.RetryConfig
	progress DownloadProgress
}

// ModelOption configures a ModelManager.
type ModelOption func(*ModelManager)

// WithBaseURL replaces the default model release URL.
func WithBaseURL(url string) ModelOption {
	return func(m *ModelManager) {
		m.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient replaces the default download client.
func WithHTTPClient(c *http.Client) ModelOption {
	return func(m *ModelManager) {
		m.client = c
	}
}

// WithRetry replaces the default download retry policy.
func WithRetry(cfg resilience.RetryConfig) ModelOption {
	return func(m *ModelManager) {
		m.retry = cfg
	}
}

// WithDownloadProgress registers a progress callback.
func WithDownloadProgress(fn DownloadProgress) ModelOption {
	return func(m *ModelManager) {
		m.progress = fn
	}
}

// NewModelManager creates a manager caching models under dir.
func NewModelManager(dir string, opts ...ModelOption) *ModelManager {
	m := &ModelManager{
		dir:     dir,
		baseURL: defaultModelBaseURL,
		client:  &http.Client{Timeout: 10 * time.Minute},
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SegmentationPath returns the cached segmentation model path.
func (m *ModelManager) SegmentationPath() string {
	return filepath.Join(m.dir, SegmentationModel)
}

// EmbeddingPath returns the cached embedding model path.
func (m *ModelManager) EmbeddingPath() string {
	return filepath.Join(m.dir, EmbeddingModel)
}

// Installed reports whether both models are present on disk.
func (m *ModelManager) Installed() bool {
	return fileExists(m.SegmentationPath()) && fileExists(m.EmbeddingPath())
}

// Install downloads any missing model. Already-cached models are skipped,
// so subsequent runs pass through the loading state immediately. Download
// failures are retryable network errors.
func (m *ModelManager) Install(ctx context.Context) error {
	type model struct {
		name, dest string
	}
	models := []model{
		{SegmentationModel, m.SegmentationPath()},
		{EmbeddingModel, m.EmbeddingPath()},
	}

	for _, md := range models {
		if fileExists(md.dest) {
			continue
		}
		md := md
		// GitHub release assets require the + characters escaped.
		url := m.baseURL + "/" + strings.ReplaceAll(md.name, "+", "%2B")
		err := resilience.RetryFunc(ctx, m.retry, func() error {
			return m.download(ctx, md.name, url, md.dest)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// download fetches one model to a temporary file and renames it into
// place, so a crash mid-download never leaves a corrupt model behind.
func (m *ModelManager) download(ctx context.Context, name, url, dest string) error {
	logger.Info("Downloading diarization model", logger.Fields(
		"model", name,
		"url", url,
	))

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return apperrors.Storage("create models dir", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.DownloadFailed(name, err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return apperrors.DownloadFailed(name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.DownloadFailed(name, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), name+".partial-*")
	if err != nil {
		return apperrors.Storage("create temp model file", err)
	}
	defer os.Remove(tmp.Name())

	total := resp.ContentLength
	var downloaded int64
	buf := make([]byte, 64*1024)
	for {
		if err := ctx.Err(); err != nil {
			tmp.Close()
			return apperrors.Cancelled().WithCause(err)
		}
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := tmp.Write(buf[:n]); werr != nil {
				tmp.Close()
				return apperrors.Storage("write model file", werr)
			}
			downloaded += int64(n)
			if m.progress != nil {
				m.progress(name, downloaded, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			tmp.Close()
			return apperrors.DownloadFailed(name, readErr)
		}
	}

	if err := tmp.Close(); err != nil {
		return apperrors.Storage("close model file", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return apperrors.Storage("finalize model file", err)
	}

	logger.Info("Model downloaded", logger.Fields(
		"model", name,
		"bytes", downloaded,
	))
	return nil
}

// Name returns the component name.
func (m *ModelManager) Name() string { return "models" }

// Start ensures the model cache directory exists. Downloads are deferred
// to first diarization use.
func (m *ModelManager) Start(_ context.Context) error {
	return os.MkdirAll(m.dir, 0o755)
}

// Stop is a no-op; cached models stay on disk.
func (m *ModelManager) Stop(_ context.Context) error { return nil }

// Health reports degraded until both models are installed.
func (m *ModelManager) Health(_ context.Context) component.Health {
	if m.Installed() {
		return component.Health{Name: m.Name(), Status: component.StatusHealthy}
	}
	return component.Health{
		Name:    m.Name(),
		Status:  component.StatusDegraded,
		Message: "models not installed",
	}
}

// Describe returns summary info for the startup display.
func (m *ModelManager) Describe() component.Description {
	return component.Description{
		Name:    "Diarization Models",
		Type:    "models",
		Details: fmt.Sprintf("dir=%s installed=%t", m.dir, m.Installed()),
	}
}

var (
	_ component.Component   = (*ModelManager)(nil)
	_ component.Describable = (*ModelManager)(nil)
)

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
