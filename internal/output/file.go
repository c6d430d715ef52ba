package output

import (
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
)

// Defaults for the output location.
const (
	DefaultDir  = "output"
	DefaultFile = "scraped_data.txt"
)

// FileStats summarizes a completed WriteFile call.
type FileStats struct {
	Path   string
	Blocks int
	Bytes  int64
}

// EnsureDir creates dir and any missing parents. An empty dir means
// DefaultDir.
func EnsureDir(dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// WriteFile creates dir (and any missing parents), truncates dir/name and
// writes every text from texts in the given format. The file is always
// closed before returning. There is no atomic rename: an interrupted write
// leaves a partial file behind.
func WriteFile(dir, name string, format Format, texts iter.Seq[string], opts ...WriterOption) (stats FileStats, err error) {
	if dir == "" {
		dir = DefaultDir
	}
	if name == "" {
		name = DefaultFile
	}
	stats.Path = filepath.Join(dir, name)

	if err := EnsureDir(dir); err != nil {
		return stats, err
	}

	f, err := os.Create(stats.Path) //#nosec G304 -- CLI tool writes to user-specified output file
	if err != nil {
		return stats, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	cw := &countingWriter{w: f}
	n, err := WriteBlocks(cw, format, texts, opts...)
	stats.Blocks = n
	stats.Bytes = cw.n
	if err != nil {
		return stats, err
	}
	return stats, nil
}

// WriteBlocks writes texts to w in the given format and returns the number of
// blocks written.
func WriteBlocks(w io.Writer, format Format, texts iter.Seq[string], opts ...WriterOption) (int, error) {
	writer, err := NewWriter(w, format, opts...)
	if err != nil {
		return 0, err
	}

	count := 0
	if texts != nil {
		for text := range texts {
			if err := writer.Write(Block{Index: count, Text: text}); err != nil {
				return count, fmt.Errorf("failed to write block %d: %w", count, err)
			}
			count++
		}
	}

	if err := writer.Close(); err != nil {
		return count, fmt.Errorf("failed to flush output: %w", err)
	}
	return count, nil
}

// countingWriter tracks bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
