package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// TFLiteIdentifier is the FlatBuffer file identifier stored at bytes 4..8 of a
// TensorFlow Lite model.
const TFLiteIdentifier = "TFL3"

// IsTFLite reports whether data carries the TensorFlow Lite file identifier.
func IsTFLite(data []byte) bool {
	return len(data) >= 8 && string(data[4:8]) == TFLiteIdentifier
}

// IsONNX reports whether data starts like a serialized ModelProto (field 1, ir_version).
func IsONNX(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x08
}

// Mapping is a read-only view of a model artifact. On unix systems the bytes are
// mapped from the file and never copied into the Go heap.
type Mapping struct {
	path string
	data []byte

	mu     sync.Mutex
	closed bool
}

// MapFile maps path read-only.
func MapFile(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrResourceMissing, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrModelLoad, path)
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrModelLoad, path)
	}

	data, err := mapReadOnly(f, int(fi.Size()))
	if err != nil {
		return nil, fmt.Errorf("%w: map %s: %w", ErrModelLoad, path, err)
	}
	return &Mapping{path: path, data: data}, nil
}

func (m *Mapping) Path() string { return m.path }

// Bytes returns the mapped contents. The slice must not be used after Close.
func (m *Mapping) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	return m.data
}

func (m *Mapping) Len() int { return len(m.Bytes()) }

// Close releases the mapping. Later calls are no-ops.
func (m *Mapping) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	data := m.data
	m.data = nil
	return unmap(data)
}
