// Package labels loads the class vocabulary of a classification model.
package labels

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/krau/scenelens/engine"
)

// Unknown is reported for class ids the table does not cover.
const Unknown = "Unknown"

// Table maps class id to label. It is not modified after loading.
type Table []string

func (t Table) Len() int { return len(t) }

// Label returns the label for class id i, or Unknown when i is out of range.
func (t Table) Label(i int) string {
	if i < 0 || i >= len(t) {
		return Unknown
	}
	return t[i]
}

type options struct {
	skipBlank bool
}

type Option func(*options)

// SkipBlank drops lines that are empty after trimming. By default they are kept as empty
// labels so line numbers stay aligned with class ids.
func SkipBlank() Option {
	return func(o *options) {
		o.skipBlank = true
	}
}

// Read builds a table from newline separated labels.
func Read(r io.Reader, opts ...Option) (Table, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var table Table
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" && o.skipBlank {
			continue
		}
		table = append(table, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return table, nil
}

// Load reads the named label asset.
func Load(assets engine.Assets, name string, opts ...Option) (Table, error) {
	rc, err := assets.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels: %w", err)
	}
	defer rc.Close()
	return Read(rc, opts...)
}
