package output

import (
	"bufio"
	"io"
)

// blockSeparator follows every text block, leaving one blank line between entries.
const blockSeparator = "\n\n"

// TextWriter writes blocks as plain text.
type TextWriter struct {
	w *bufio.Writer
}

// NewTextWriter creates a plain text writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write writes the block text followed by a blank line.
func (w *TextWriter) Write(b Block) error {
	if _, err := w.w.WriteString(b.Text); err != nil {
		return err
	}
	_, err := w.w.WriteString(blockSeparator)
	return err
}

// Flush flushes the buffer.
func (w *TextWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *TextWriter) Close() error {
	return w.Flush()
}
