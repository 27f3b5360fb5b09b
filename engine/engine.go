// Package engine defines the resident model handle shared by the inference backends,
// together with the read-only mapping of model artifacts and the error taxonomy.
package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Handle is a loaded model. Run fills output from input and is deterministic for a given
// model and input. Implementations serialize Run internally.
type Handle interface {
	InputShape() Shape
	OutputShape() Shape
	Run(input, output []float32) error
	Close() error
}

// Opener opens a model artifact by path.
type Opener func(path string) (Handle, error)

// Shape is a tensor shape, outermost dimension first.
type Shape []int64

// Size returns the number of elements described by the shape.
func (s Shape) Size() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, d := range s {
		n *= int(d)
	}
	return n
}

func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.FormatInt(d, 10)
	}
	return strings.Join(parts, "x")
}

// CheckBuffers validates caller buffers against the model's declared shapes.
func CheckBuffers(in, out Shape, input, output []float32) error {
	if len(input) != in.Size() {
		return fmt.Errorf("%w: input has %d values, model expects %s (%d)", ErrInference, len(input), in, in.Size())
	}
	if len(output) != out.Size() {
		return fmt.Errorf("%w: output buffer has %d values, model produces %s (%d)", ErrInference, len(output), out, out.Size())
	}
	return nil
}

// ByExtension picks a backend from the artifact's file extension.
func ByExtension(backends map[string]Opener) Opener {
	return func(path string) (Handle, error) {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrResourceMissing, path)
			}
			return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
		}
		ext := strings.ToLower(filepath.Ext(path))
		open, ok := backends[ext]
		if !ok {
			return nil, fmt.Errorf("%w: no backend for %q files", ErrModelLoad, ext)
		}
		return open(path)
	}
}

// Assets resolves packaged resources by name.
type Assets interface {
	Open(name string) (io.ReadCloser, error)
	Locate(name string) (string, error)
}

// DirAssets serves assets from a directory on disk.
type DirAssets struct {
	Root string
}

func (d DirAssets) Open(name string) (io.ReadCloser, error) {
	path, err := d.Locate(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceMissing, err)
	}
	return f, nil
}

func (d DirAssets) Locate(name string) (string, error) {
	path := filepath.Join(d.Root, name)
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrResourceMissing, path)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrResourceMissing, path)
	}
	return path, nil
}
