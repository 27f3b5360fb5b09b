// Package classifier turns frames into scene labels: it encodes an image into the
// model's input tensor, runs the resident model and decodes the score vector with a
// selectable policy.
//
// A Pipeline owns its model handle and label table. Classify may be called from any
// goroutine; the handle serializes inference. Callers that receive frames faster than
// inference completes decide themselves whether to queue, drop or block.
package classifier

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/krau/scenelens/engine"
	"github.com/krau/scenelens/labels"
)

const (
	DefaultModelName  = "mobilenet_v1_1.0_224.tflite"
	DefaultLabelsName = "mobilenet_v1_1.0_224.txt"
)

type settings struct {
	opener     engine.Opener
	modelName  string
	labelsName string
	resample   Resampler
	activate   Activation
	labelOpts  []labels.Option
	logger     *slog.Logger
}

// Option configures Initialize.
type Option func(*settings)

// WithOpener sets how the model artifact is opened, typically engine.ByExtension over
// the available backends. It is required.
func WithOpener(open engine.Opener) Option {
	return func(s *settings) { s.opener = open }
}

func WithModelName(name string) Option {
	return func(s *settings) { s.modelName = name }
}

func WithLabelsName(name string) Option {
	return func(s *settings) { s.labelsName = name }
}

func WithResampler(r Resampler) Option {
	return func(s *settings) { s.resample = r }
}

// WithActivation applies a to every score vector before decoding.
func WithActivation(a Activation) Option {
	return func(s *settings) { s.activate = a }
}

func WithLabelOptions(opts ...labels.Option) Option {
	return func(s *settings) { s.labelOpts = append(s.labelOpts, opts...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// Pipeline is a loaded model plus its label table.
type Pipeline struct {
	mu     sync.RWMutex
	handle engine.Handle
	closed bool

	labels   labels.Table
	size     int
	classes  int
	resample Resampler
	activate Activation
	log      *slog.Logger
}

// Initialize loads the label table and the model from assets. The model input must be
// shaped 1 x N x N x 3; N becomes the encoder's target size.
func Initialize(assets engine.Assets, opts ...Option) (*Pipeline, error) {
	s := settings{
		modelName:  DefaultModelName,
		labelsName: DefaultLabelsName,
		resample:   ImagingLinear,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.opener == nil {
		return nil, fmt.Errorf("%w: no model opener configured", ErrModelLoad)
	}

	table, err := labels.Load(assets, s.labelsName, s.labelOpts...)
	if err != nil {
		return nil, err
	}

	path, err := assets.Locate(s.modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to locate model: %w", err)
	}
	handle, err := s.opener(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model %s: %w", path, err)
	}

	in, out := handle.InputShape(), handle.OutputShape()
	if len(in) != 4 || in[0] != 1 || in[1] != in[2] || in[1] < 1 || in[3] != 3 {
		handle.Close()
		return nil, fmt.Errorf("%w: input shape %s, want 1xNxNx3", ErrModelLoad, in)
	}
	if out.Size() < 1 {
		handle.Close()
		return nil, fmt.Errorf("%w: output shape %s has no classes", ErrModelLoad, out)
	}

	p := &Pipeline{
		handle:   handle,
		labels:   table,
		size:     int(in[1]),
		classes:  out.Size(),
		resample: s.resample,
		activate: s.activate,
		log:      s.logger,
	}
	if p.classes != table.Len() {
		p.log.Warn("Label count differs from model classes",
			slog.Int("labels", table.Len()),
			slog.Int("classes", p.classes))
	}
	p.log.Info("Model loaded",
		slog.String("path", path),
		slog.Int("input_size", p.size),
		slog.Int("classes", p.classes),
		slog.Int("labels", table.Len()))
	return p, nil
}

func (p *Pipeline) InputSize() int { return p.size }
func (p *Pipeline) Classes() int { return p.classes }
func (p *Pipeline) Labels() labels.Table { return p.labels }

// Classify encodes img, runs the model and decodes the scores with policy. A nil policy
// means Thresholded at DefaultThreshold.
func (p *Pipeline) Classify(img image.Image, policy Policy) (Result, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return Result{}, ErrUseAfterClose
	}
	if policy == nil {
		policy = Thresholded{MinPercent: DefaultThreshold}
	}

	start := time.Now()
	input, err := Encode(img, p.size, p.resample)
	if err != nil {
		return Result{}, err
	}
	scores, err := Infer(p.handle, input)
	if err != nil {
		return Result{}, err
	}
	if len(scores) != p.classes {
		return Result{}, fmt.Errorf("%w: got %d scores, want %d", ErrInference, len(scores), p.classes)
	}
	if p.activate != nil {
		p.activate(scores)
	}

	res := policy.Decode(scores, p.labels)
	p.log.Debug("Frame classified",
		slog.String("policy", policy.Name()),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("detections", len(res.Detections)))
	return res, nil
}

// Shutdown releases the model. It waits for in-flight Classify calls; later calls fail
// with ErrUseAfterClose. Calling it again is a no-op.
func (p *Pipeline) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.handle.Close(); err != nil {
		return fmt.Errorf("failed to release model: %w", err)
	}
	return nil
}

func (p *Pipeline) Close() error { return p.Shutdown() }
