package onnx

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// LibPath resolves the ONNX Runtime shared library: override when set, else the first
// default location for this OS that exists.
func LibPath(override string) string {
	if override != "" {
		return override
	}
	return firstExisting(candidates(runtime.GOOS))
}

func candidates(goos string) []string {
	switch goos {
	case "linux":
		return []string{
			filepath.Join("onnxlibs", "libonnxruntime.so"),
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
		}
	case "darwin":
		return []string{
			"/usr/local/lib/libonnxruntime.dylib",
			"/opt/homebrew/lib/libonnxruntime.dylib",
		}
	case "windows":
		return []string{"onnxruntime.dll"}
	default:
		return nil
	}
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMu sync.Mutex
var envReady bool

// Init loads the shared library and initializes the ONNX Runtime environment once.
// libPath overrides the default library locations when not empty.
func Init(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()
	if envReady {
		return nil
	}
	path := LibPath(libPath)
	if path == "" {
		slog.Error("ONNX Runtime library path could not be determined for this OS")
		return fmt.Errorf("onnx runtime library not found")
	}
	slog.Info("Using ONNX Runtime library", slog.String("path", path))
	ort.SetSharedLibraryPath(path)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime environment: %w", err)
	}
	envReady = true
	return nil
}

// Destroy tears the environment down. Sessions must be closed first.
func Destroy() error {
	envMu.Lock()
	defer envMu.Unlock()
	if !envReady {
		return nil
	}
	envReady = false
	return ort.DestroyEnvironment()
}
