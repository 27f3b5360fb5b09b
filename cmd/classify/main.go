package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/krau/scenelens/app"
	"github.com/krau/scenelens/classifier"
	"github.com/krau/scenelens/config"
	"github.com/krau/scenelens/frames"
)

func main() {
	configPath := flag.String("config", "", "Path to config.toml (defaults apply when empty)")
	modelDir := flag.String("dir", "", "Directory holding the model and labels")
	model := flag.String("model", "", "Model file name inside -dir")
	labelsName := flag.String("labels", "", "Labels file name inside -dir")
	policyName := flag.String("policy", "", "Decode policy: threshold or argmax")
	activation := flag.String("activation", "", "Score activation: none, softmax or sigmoid")
	minPercent := flag.Float64("min", -1, "Minimum confidence in percent for the threshold policy")
	verbose := flag.Bool("v", false, "Log per-frame timing")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] image...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("Failed to load config", slog.String("error", err.Error()))
			os.Exit(1)
		}
		cfg = loaded
	}
	if *modelDir != "" {
		cfg.ModelDir = *modelDir
	}
	if *model != "" {
		cfg.ModelFileName = *model
	}
	if *labelsName != "" {
		cfg.ModelLabelsName = *labelsName
	}
	if *policyName != "" {
		cfg.Policy = *policyName
	}
	if *activation != "" {
		cfg.Activation = *activation
	}
	if *minPercent >= 0 {
		cfg.Threshold = float32(*minPercent)
	}

	policy, err := classifier.ParsePolicy(cfg.Policy, cfg.Threshold)
	if err != nil {
		slog.Error("Invalid policy", slog.String("error", err.Error()))
		os.Exit(2)
	}

	pipeline, cleanup, err := app.Init(cfg)
	if err != nil {
		slog.Error("Failed to initialize pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	failed := 0
	for _, path := range flag.Args() {
		img, err := frames.Open(path)
		if err != nil {
			slog.Error("Skipping frame", slog.String("path", path), slog.String("error", err.Error()))
			failed++
			continue
		}
		res, err := pipeline.Classify(img, policy)
		if err != nil {
			slog.Error("Skipping frame", slog.String("path", path), slog.String("error", err.Error()))
			failed++
			continue
		}
		fmt.Printf("%s:\n%s\n", path, res)
	}
	if failed > 0 {
		cleanup()
		os.Exit(1)
	}
}
