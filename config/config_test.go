package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if c.Threshold != 70 {
		t.Errorf("Expected default threshold 70, got %v", c.Threshold)
	}
	if c.ModelFileName != "mobilenet_v1_1.0_224.tflite" {
		t.Errorf("Unexpected default model %q", c.ModelFileName)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
port = "9000"
threshold = 55.5
policy = "argmax"
resampler = "xdraw"
skip_blank_labels = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Port != "9000" || c.Threshold != 55.5 || c.Policy != "argmax" || c.Resampler != "xdraw" || !c.SkipBlankLabels {
		t.Errorf("Loaded values not applied: %+v", c)
	}
	// keys absent from the file keep their defaults
	if c.Host != "0.0.0.0" || c.FramePolicy != "block" {
		t.Errorf("Defaults lost: %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("threshold = ["), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("Expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.toml")
	os.WriteFile(invalid, []byte(`policy = "vote"`), 0o644)
	if _, err := Load(invalid); err == nil {
		t.Error("Expected validation error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold high", func(c *Config) { c.Threshold = 101 }},
		{"threshold negative", func(c *Config) { c.Threshold = -1 }},
		{"threshold nan", func(c *Config) { c.Threshold = float32(math.NaN()) }},
		{"resampler", func(c *Config) { c.Resampler = "lanczos" }},
		{"frame policy", func(c *Config) { c.FramePolicy = "queue" }},
		{"activation", func(c *Config) { c.Activation = "relu" }},
		{"model name", func(c *Config) { c.ModelFileName = "" }},
		{"threads", func(c *Config) { c.Threads = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Errorf("Expected validation error")
			}
		})
	}
}
