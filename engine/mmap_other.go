//go:build !unix

package engine

import (
	"io"
	"os"
)

// No mmap here; the artifact is read once into memory.
func mapReadOnly(f *os.File, size int) ([]byte, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return data, nil
}

func unmap([]byte) error { return nil }
