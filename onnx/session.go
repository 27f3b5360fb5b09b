package onnx

import (
	"fmt"
	"sync"

	"github.com/krau/scenelens/engine"
	ort "github.com/yalue/onnxruntime_go"
)

type options struct {
	threads int
}

// Option configures a Model.
type Option func(*options)

// WithThreads sets the intra-op thread count. Values below 1 keep the runtime default.
func WithThreads(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// Model is an ONNX Runtime session with pre-allocated input and output tensors.
type Model struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	inShape  engine.Shape
	outShape engine.Shape
	closed   bool
}

// Opener returns an engine.Opener for .onnx artifacts. The environment must be
// initialized with Init first.
func Opener(opts ...Option) engine.Opener {
	return func(path string) (engine.Handle, error) {
		m, err := Open(path, opts...)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

func Open(path string, opts ...Option) (*Model, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	mapping, err := engine.MapFile(path)
	if err != nil {
		return nil, err
	}
	// the session keeps its own copy of the graph
	defer mapping.Close()

	data := mapping.Bytes()
	if !engine.IsONNX(data) {
		return nil, fmt.Errorf("%w: %s is not an ONNX model", engine.ErrModelLoad, path)
	}

	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get model input/output info: %w", engine.ErrModelLoad, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("%w: model has no input or output", engine.ErrModelLoad)
	}
	if inputs[0].DataType != ort.TensorElementDataTypeFloat || outputs[0].DataType != ort.TensorElementDataTypeFloat {
		return nil, fmt.Errorf("%w: only float32 models are supported", engine.ErrModelLoad)
	}

	m := &Model{
		inShape:  pinDynamic(inputs[0].Dimensions),
		outShape: pinDynamic(outputs[0].Dimensions),
	}

	sessionOptions, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create session options: %w", engine.ErrModelLoad, err)
	}
	defer sessionOptions.Destroy()
	if o.threads > 0 {
		if err := sessionOptions.SetIntraOpNumThreads(o.threads); err != nil {
			return nil, fmt.Errorf("%w: failed to set threads: %w", engine.ErrModelLoad, err)
		}
	}

	m.input, err = ort.NewEmptyTensor[float32](ort.NewShape(m.inShape...))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create input tensor: %w", engine.ErrModelLoad, err)
	}
	m.output, err = ort.NewEmptyTensor[float32](ort.NewShape(m.outShape...))
	if err != nil {
		m.release()
		return nil, fmt.Errorf("%w: failed to create output tensor: %w", engine.ErrModelLoad, err)
	}

	m.session, err = ort.NewAdvancedSessionWithONNXData(
		data,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		[]ort.Value{m.input},
		[]ort.Value{m.output},
		sessionOptions,
	)
	if err != nil {
		m.release()
		return nil, fmt.Errorf("%w: failed to create ONNX Runtime session: %w", engine.ErrModelLoad, err)
	}
	return m, nil
}

// pinDynamic replaces symbolic dimensions (reported as -1) with 1.
func pinDynamic(dims ort.Shape) engine.Shape {
	shape := make(engine.Shape, len(dims))
	for i, d := range dims {
		if d < 1 {
			d = 1
		}
		shape[i] = d
	}
	return shape
}

func (m *Model) InputShape() engine.Shape { return m.inShape }
func (m *Model) OutputShape() engine.Shape { return m.outShape }

func (m *Model) Run(input, output []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return engine.ErrUseAfterClose
	}
	if err := engine.CheckBuffers(m.inShape, m.outShape, input, output); err != nil {
		return err
	}
	copy(m.input.GetData(), input)
	if err := m.session.Run(); err != nil {
		return fmt.Errorf("%w: %w", engine.ErrInference, err)
	}
	copy(output, m.output.GetData())
	return nil
}

// Close destroys the session and its tensors.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.release()
}

func (m *Model) release() error {
	var err error
	if m.session != nil {
		err = m.session.Destroy()
		m.session = nil
	}
	if m.input != nil {
		m.input.Destroy()
		m.input = nil
	}
	if m.output != nil {
		m.output.Destroy()
		m.output = nil
	}
	return err
}
