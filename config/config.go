package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/skillsenselab/murmur/logger"
)

// Config is the root configuration for the murmur core.
type Config struct {
	Logging     logger.Config     `yaml:"logging" mapstructure:"logging"`
	Chunking    ChunkingConfig    `yaml:"chunking" mapstructure:"chunking"`
	Diarization DiarizationConfig `yaml:"diarization" mapstructure:"diarization"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
}

// ChunkingConfig controls how long audio is split for transcription.
type ChunkingConfig struct {
	// WindowSeconds is the target chunk duration.
	WindowSeconds int `yaml:"window_seconds" mapstructure:"window_seconds" validate:"gt=0"`
	// OverlapSeconds is the overlap carried between adjacent chunks.
	// Must be strictly smaller than the window.
	OverlapSeconds int `yaml:"overlap_seconds" mapstructure:"overlap_seconds" validate:"gte=0,ltfield=WindowSeconds"`
	// MaxConcurrency bounds concurrent chunk transcriptions. 1 serializes
	// access to the backend, which is the safe default for local models.
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency" validate:"gte=1"`
}

// DiarizationConfig controls speaker diarization.
type DiarizationConfig struct {
	// MaxSpeakers bounds the number of speaker clusters.
	MaxSpeakers int `yaml:"max_speakers" mapstructure:"max_speakers" validate:"gte=1,lte=20"`
	// Threshold is the clustering similarity threshold. Lower values are more
	// sensitive to speaker differences and yield more clusters.
	Threshold float64 `yaml:"threshold" mapstructure:"threshold" validate:"gte=0,lte=1"`
	// MinSegmentMs drops detected spans shorter than this; they are too short
	// to embed reliably.
	MinSegmentMs int `yaml:"min_segment_ms" mapstructure:"min_segment_ms" validate:"gte=0"`
	// ModelsDir is where downloaded diarization models are cached.
	ModelsDir string `yaml:"models_dir" mapstructure:"models_dir"`
}

// LLMConfig configures the text-completion backend used for transcript
// post-processing.
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// StorageConfig configures journal persistence.
type StorageConfig struct {
	// Dir is the root directory for entries, recordings, and markdown mirrors.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// WriteMarkdown mirrors transcript text to a .md file beside the recording.
	WriteMarkdown bool `yaml:"write_markdown" mapstructure:"write_markdown"`
}

// ApplyDefaults fills unset fields with working defaults.
func (c *Config) ApplyDefaults() {
	c.Logging.ApplyDefaults()
	if c.Chunking.WindowSeconds == 0 {
		c.Chunking.WindowSeconds = 30
	}
	if c.Chunking.OverlapSeconds == 0 && c.Chunking.WindowSeconds > 1 {
		c.Chunking.OverlapSeconds = 1
	}
	if c.Chunking.MaxConcurrency == 0 {
		c.Chunking.MaxConcurrency = 1
	}
	if c.Diarization.MaxSpeakers == 0 {
		c.Diarization.MaxSpeakers = 1
	}
	if c.Diarization.Threshold == 0 {
		c.Diarization.Threshold = 0.5
	}
	if c.Diarization.MinSegmentMs == 0 {
		c.Diarization.MinSegmentMs = 500
	}
	if c.Diarization.ModelsDir == "" {
		c.Diarization.ModelsDir = "diarize_models"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 120 * time.Second
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "journal"
	}
}

// Validate checks the configuration against field constraints.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
