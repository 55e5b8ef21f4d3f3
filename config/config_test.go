package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Chunking.WindowSeconds != 30 {
		t.Errorf("WindowSeconds = %d, want 30", cfg.Chunking.WindowSeconds)
	}
	if cfg.Chunking.OverlapSeconds != 1 {
		t.Errorf("OverlapSeconds = %d, want 1", cfg.Chunking.OverlapSeconds)
	}
	if cfg.Chunking.MaxConcurrency != 1 {
		t.Errorf("MaxConcurrency = %d, want 1", cfg.Chunking.MaxConcurrency)
	}
	if cfg.Diarization.MaxSpeakers != 1 {
		t.Errorf("MaxSpeakers = %d, want 1", cfg.Diarization.MaxSpeakers)
	}
	if cfg.Diarization.Threshold != 0.5 {
		t.Errorf("Threshold = %v, want 0.5", cfg.Diarization.Threshold)
	}
	if cfg.LLM.Provider != "ollama" {
		t.Errorf("LLM.Provider = %q, want ollama", cfg.LLM.Provider)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"overlap >= window", func(c *Config) { c.Chunking.OverlapSeconds = 30 }, true},
		{"too many speakers", func(c *Config) { c.Diarization.MaxSpeakers = 21 }, true},
		{"threshold above range", func(c *Config) { c.Diarization.Threshold = 1.5 }, true},
		{"zero window", func(c *Config) { c.Chunking.WindowSeconds = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yaml := "chunking:\n  window_seconds: 20\n  overlap_seconds: 2\ndiarization:\n  max_speakers: 4\n  threshold: 0.3\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg Config
	if err := Load(&cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Chunking.WindowSeconds != 20 {
		t.Errorf("WindowSeconds = %d, want 20", cfg.Chunking.WindowSeconds)
	}
	if cfg.Diarization.MaxSpeakers != 4 {
		t.Errorf("MaxSpeakers = %d, want 4", cfg.Diarization.MaxSpeakers)
	}
	if cfg.Diarization.Threshold != 0.3 {
		t.Errorf("Threshold = %v, want 0.3", cfg.Diarization.Threshold)
	}
	// Unset values still get defaults.
	if cfg.Chunking.MaxConcurrency != 1 {
		t.Errorf("MaxConcurrency = %d, want default 1", cfg.Chunking.MaxConcurrency)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("DIARIZATION_MAX_SPEAKERS")
	found := false
	for _, v := range variants {
		if v == "diarization.max_speakers" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected diarization.max_speakers in %v", variants)
	}
}
