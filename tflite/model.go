// Package tflite runs TensorFlow Lite models through the TensorFlow Lite C API.
package tflite

import (
	"fmt"
	"sync"

	"github.com/krau/scenelens/engine"
	"github.com/mattn/go-tflite"
)

type options struct {
	threads int
}

// Option configures a Model.
type Option func(*options)

// WithThreads sets the interpreter thread count. Values below 1 keep the runtime default.
func WithThreads(n int) Option {
	return func(o *options) {
		o.threads = n
	}
}

// Model is a resident TensorFlow Lite interpreter with one float32 input and one float32
// output tensor.
type Model struct {
	mu      sync.Mutex
	model   *tflite.Model
	options *tflite.InterpreterOptions
	interp  *tflite.Interpreter
	input   *tflite.Tensor
	output  *tflite.Tensor

	inShape  engine.Shape
	outShape engine.Shape
	closed   bool
}

// Opener returns an engine.Opener that loads .tflite artifacts.
func Opener(opts ...Option) engine.Opener {
	return func(path string) (engine.Handle, error) {
		m, err := Open(path, opts...)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Open validates the artifact and builds an interpreter for it. The runtime maps the
// file read-only itself, so weights are never copied into process memory.
func Open(path string, opts ...Option) (*Model, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	mapping, err := engine.MapFile(path)
	if err != nil {
		return nil, err
	}
	ok := engine.IsTFLite(mapping.Bytes())
	mapping.Close()
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a TensorFlow Lite model", engine.ErrModelLoad, path)
	}

	m := &Model{}
	m.model = tflite.NewModelFromFile(path)
	if m.model == nil {
		return nil, fmt.Errorf("%w: cannot parse %s", engine.ErrModelLoad, path)
	}

	m.options = tflite.NewInterpreterOptions()
	if o.threads > 0 {
		m.options.SetNumThread(o.threads)
	}

	m.interp = tflite.NewInterpreter(m.model, m.options)
	if m.interp == nil {
		m.release()
		return nil, fmt.Errorf("%w: cannot create interpreter for %s", engine.ErrModelLoad, path)
	}
	if status := m.interp.AllocateTensors(); status != tflite.OK {
		m.release()
		return nil, fmt.Errorf("%w: allocate tensors: status %d", engine.ErrModelLoad, status)
	}

	m.input = m.interp.GetInputTensor(0)
	m.output = m.interp.GetOutputTensor(0)
	if m.input == nil || m.output == nil {
		m.release()
		return nil, fmt.Errorf("%w: model has no input or output tensor", engine.ErrModelLoad)
	}
	if m.input.Type() != tflite.Float32 || m.output.Type() != tflite.Float32 {
		m.release()
		return nil, fmt.Errorf("%w: only float32 models are supported", engine.ErrModelLoad)
	}

	m.inShape = shapeOf(m.input)
	m.outShape = shapeOf(m.output)
	return m, nil
}

func shapeOf(t *tflite.Tensor) engine.Shape {
	shape := make(engine.Shape, t.NumDims())
	for i := range shape {
		shape[i] = int64(t.Dim(i))
	}
	return shape
}

func (m *Model) InputShape() engine.Shape { return m.inShape }
func (m *Model) OutputShape() engine.Shape { return m.outShape }

// Run copies input into the interpreter, invokes it and copies the scores into output.
func (m *Model) Run(input, output []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return engine.ErrUseAfterClose
	}
	if err := engine.CheckBuffers(m.inShape, m.outShape, input, output); err != nil {
		return err
	}
	if status := m.input.CopyFromBuffer(input); status != tflite.OK {
		return fmt.Errorf("%w: copy input: status %d", engine.ErrInference, status)
	}
	if status := m.interp.Invoke(); status != tflite.OK {
		return fmt.Errorf("%w: invoke: status %d", engine.ErrInference, status)
	}
	if status := m.output.CopyToBuffer(output); status != tflite.OK {
		return fmt.Errorf("%w: copy output: status %d", engine.ErrInference, status)
	}
	return nil
}

// Close releases the interpreter, its options and the model.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.release()
	return nil
}

func (m *Model) release() {
	if m.interp != nil {
		m.interp.Delete()
		m.interp = nil
	}
	if m.options != nil {
		m.options.Delete()
		m.options = nil
	}
	if m.model != nil {
		m.model.Delete()
		m.model = nil
	}
	m.input, m.output = nil, nil
}
