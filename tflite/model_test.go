//go:build tflite

// Run with: go test -tags tflite ./tflite (needs the TensorFlow Lite C headers and library).
package tflite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/krau/scenelens/engine"
)

func TestOpenRejectsBeforeParsing(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "absent.tflite"), engine.ErrResourceMissing},
		{"zero bytes", write("empty.tflite", nil), engine.ErrModelLoad},
		{"truncated", write("short.tflite", []byte("\x18\x00\x00")), engine.ErrModelLoad},
		{"onnx payload", write("wrong.tflite", []byte("\x08\x07\x12\x04onnx")), engine.ErrModelLoad},
		{"bad identifier", write("bad.tflite", []byte("\x18\x00\x00\x00TFL2\x00\x00")), engine.ErrModelLoad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Open(tt.path, WithThreads(2))
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if m != nil {
				t.Error("Expected no model on failure")
			}
		})
	}
}

func TestOpenerWrapsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tflite")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	h, err := Opener()(path)
	if !errors.Is(err, engine.ErrModelLoad) {
		t.Errorf("Expected ErrModelLoad, got %v", err)
	}
	if h != nil {
		t.Error("Expected nil handle on failure")
	}
}
