package config

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Token   string `toml:"token" mapstructure:"token"`
	Host    string `toml:"host" mapstructure:"host"`
	Port    string `toml:"port" mapstructure:"port"`
	Libonnx string `toml:"libonnx" mapstructure:"libonnx"`

	ModelDir        string `toml:"model_dir" mapstructure:"model_dir"`
	ModelFileName   string `toml:"model_file_name" mapstructure:"model_file_name"`
	ModelLabelsName string `toml:"model_labels_name" mapstructure:"model_labels_name"`
	SkipBlankLabels bool   `toml:"skip_blank_labels" mapstructure:"skip_blank_labels"`
	Threads         int    `toml:"threads" mapstructure:"threads"`

	// Threshold is a percentage in [0, 100].
	Threshold   float32 `toml:"threshold" mapstructure:"threshold"`
	Policy      string  `toml:"policy" mapstructure:"policy"`
	Resampler   string  `toml:"resampler" mapstructure:"resampler"`
	Activation  string  `toml:"activation" mapstructure:"activation"`
	FramePolicy string  `toml:"frame_policy" mapstructure:"frame_policy"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Token:           "",
		Host:            "0.0.0.0",
		Port:            "8000",
		ModelDir:        "models",
		ModelFileName:   "mobilenet_v1_1.0_224.tflite",
		ModelLabelsName: "mobilenet_v1_1.0_224.txt",
		Threshold:       70,
		Policy:          "threshold",
		Resampler:       "imaging",
		Activation:      "none",
		FramePolicy:     "block",
	}
}

var (
	cfg      = Default()
	loadOnce sync.Once
)

// Path is the file C reads, overridable with SCENELENS_CONFIG.
func Path() string {
	if p := os.Getenv("SCENELENS_CONFIG"); p != "" {
		return p
	}
	return "config.toml"
}

func C() Config {
	loadOnce.Do(func() {
		path := Path()
		if _, err := os.Stat(path); err == nil {
			loaded, err := Load(path)
			if err != nil {
				panic(err)
			}
			cfg = loaded
		}
	})
	return cfg
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if math.IsNaN(float64(c.Threshold)) || c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be between 0 and 100")
	}
	switch c.Policy {
	case "threshold", "argmax":
	default:
		return fmt.Errorf("policy must be threshold or argmax, got %q", c.Policy)
	}
	switch c.Resampler {
	case "imaging", "xdraw", "nfnt":
	default:
		return fmt.Errorf("resampler must be imaging, xdraw or nfnt, got %q", c.Resampler)
	}
	switch c.Activation {
	case "", "none", "softmax", "sigmoid":
	default:
		return fmt.Errorf("activation must be none, softmax or sigmoid, got %q", c.Activation)
	}
	switch c.FramePolicy {
	case "block", "drop":
	default:
		return fmt.Errorf("frame_policy must be block or drop, got %q", c.FramePolicy)
	}
	if c.ModelFileName == "" || c.ModelLabelsName == "" {
		return fmt.Errorf("model_file_name and model_labels_name cannot be empty")
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads cannot be negative")
	}
	return nil
}
