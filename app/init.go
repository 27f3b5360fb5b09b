// Package app builds a classifier.Pipeline from the configuration with every inference
// backend registered.
package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/krau/scenelens/classifier"
	"github.com/krau/scenelens/config"
	"github.com/krau/scenelens/engine"
	"github.com/krau/scenelens/labels"
	"github.com/krau/scenelens/onnx"
	"github.com/krau/scenelens/tflite"
)

// Init opens the pipeline described by cfg. The returned cleanup releases the model and,
// for ONNX models, the runtime environment.
func Init(cfg config.Config) (*classifier.Pipeline, func(), error) {
	resample, err := classifier.ResamplerByName(cfg.Resampler)
	if err != nil {
		return nil, nil, err
	}

	activate, err := classifier.ActivationByName(cfg.Activation)
	if err != nil {
		return nil, nil, err
	}

	usesONNX := strings.EqualFold(filepath.Ext(cfg.ModelFileName), ".onnx")
	if usesONNX {
		if err := onnx.Init(cfg.Libonnx); err != nil {
			return nil, nil, err
		}
	}

	opener := engine.ByExtension(map[string]engine.Opener{
		".tflite": tflite.Opener(tflite.WithThreads(cfg.Threads)),
		".onnx":   onnx.Opener(onnx.WithThreads(cfg.Threads)),
	})

	opts := []classifier.Option{
		classifier.WithOpener(opener),
		classifier.WithModelName(cfg.ModelFileName),
		classifier.WithLabelsName(cfg.ModelLabelsName),
		classifier.WithResampler(resample),
		classifier.WithActivation(activate),
		classifier.WithLogger(slog.Default()),
	}
	if cfg.SkipBlankLabels {
		opts = append(opts, classifier.WithLabelOptions(labels.SkipBlank()))
	}

	p, err := classifier.Initialize(engine.DirAssets{Root: cfg.ModelDir}, opts...)
	if err != nil {
		if usesONNX {
			onnx.Destroy()
		}
		return nil, nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	cleanup := func() {
		if err := p.Shutdown(); err != nil {
			slog.Error("Failed to release model", slog.String("error", err.Error()))
		}
		if usesONNX {
			if err := onnx.Destroy(); err != nil {
				slog.Error("Failed to destroy ONNX Runtime environment", slog.String("error", err.Error()))
			}
		}
	}
	return p, cleanup, nil
}
