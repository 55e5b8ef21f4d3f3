package logger

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("Format = %q, want console", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("Output = %q, want stdout", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("Timestamp should default to true")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json"}, false},
		{"bad level", Config{Level: "verbose", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("entry_id", 42, "stage", "clustering")
	if m["entry_id"] != 42 {
		t.Errorf("entry_id = %v, want 42", m["entry_id"])
	}
	if m["stage"] != "clustering" {
		t.Errorf("stage = %v, want clustering", m["stage"])
	}
}

func TestFields_OddArgsIgnored(t *testing.T) {
	m := Fields("a", 1, "dangling")
	if len(m) != 1 {
		t.Errorf("len = %d, want 1", len(m))
	}
}

func TestDurationFields(t *testing.T) {
	m := DurationFields("transcribe", 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Errorf("duration = %v, want 1500", m[FieldDuration])
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("murmur").WithComponent("chunker")
	if l == nil {
		t.Fatal("WithComponent returned nil")
	}
}
