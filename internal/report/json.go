package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/webinventory/internal/model"
)

// JSONWriter outputs inventories in JSON format.
// This is the primary output contract, designed for tool integration and
// programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// inventoryDocument is the envelope the inventory is serialized in. The
// output contract is a single JSON document with one "website" key.
//
// Design decision: We apply the envelope here rather than nesting it into
// model.Site because it is purely an output concern; the crawler, the run
// history database, and the compare path all work on the bare Site.
type inventoryDocument struct {
	Website *model.Site `json:"website"`
}

// Write outputs the site inventory as a {"website": ...} JSON document.
// The document is assembled in memory and written in one shot, so a failed
// encode never leaves partial JSON on the destination.
func (w *JSONWriter) Write(site *model.Site) (int, error) {
	return w.writeJSON(inventoryDocument{Website: site})
}

// WriteDiff outputs the run comparison in JSON format.
func (w *JSONWriter) WriteDiff(diff *model.Diff) (int, error) {
	return w.writeJSON(diff)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
