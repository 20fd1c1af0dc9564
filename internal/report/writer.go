package report

import (
	"io"

	"github.com/nao1215/webinventory/internal/model"
)

// Writer defines the interface for inventory output.
// Implementations render crawl results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the site inventory to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(site *model.Site) (int, error)

	// WriteDiff outputs a comparison between two crawl runs.
	// This serves the run history compare path rather than a fresh crawl.
	WriteDiff(diff *model.Diff) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write inventories, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the inventory to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(site *model.Site) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(site)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteDiff outputs the comparison to all configured Writers.
func (m *MultiWriter) WriteDiff(diff *model.Diff) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDiff(diff)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
