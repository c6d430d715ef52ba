package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes all blocks as a YAML sequence.
type YAMLWriter struct {
	w     *bufio.Writer
	items []Block
	done  bool // items emitted since the last Write
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:     bufio.NewWriter(w),
		items: make([]Block, 0),
	}
}

// Write buffers a single block.
func (w *YAMLWriter) Write(b Block) error {
	w.items = append(w.items, b)
	w.done = false
	return nil
}

// Flush writes the buffered blocks as YAML and clears the buffer.
func (w *YAMLWriter) Flush() error {
	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	if err := encoder.Encode(w.items); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	w.items = w.items[:0]
	w.done = true
	return w.w.Flush()
}

// Close writes any pending document. A Close right after Flush is a no-op.
func (w *YAMLWriter) Close() error {
	if w.done {
		return nil
	}
	return w.Flush()
}
