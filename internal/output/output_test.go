package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// --- NewWriter Factory Tests ---

func TestNewWriter_Types(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "*output.TextWriter"},
		{"", "*output.TextWriter"},
		{FormatJSON, "*output.JSONWriter"},
		{FormatJSONL, "*output.JSONLWriter"},
		{FormatYAML, "*output.YAMLWriter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if got := fmt.Sprintf("%T", w); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("csv"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected error containing 'unsupported', got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: " JSON ", want: FormatJSON},
		{in: "jsonl", want: FormatJSONL},
		{in: "yaml", want: FormatYAML},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- TextWriter Tests ---

func TestTextWriter_BlankLineAfterEachBlock(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	for i, text := range []string{"Alpha", "Beta"} {
		if err := w.Write(Block{Index: i, Text: text}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := buf.String(); got != "Alpha\n\nBeta\n\n" {
		t.Errorf("output = %q, want %q", got, "Alpha\n\nBeta\n\n")
	}
}

func TestTextWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_OutputsArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")

	_ = w.Write(Block{Index: 0, Text: "first"})
	_ = w.Write(Block{Index: 1, Text: "second"})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result []Block
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(result) != 2 || result[0].Text != "first" || result[1].Index != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestJSONWriter_Compact(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	_ = w.Write(Block{Index: 0, Text: "x"})
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	if got := buf.String(); got != `[{"index":0,"text":"x"}]`+"\n" {
		t.Errorf("output = %q", got)
	}
}

func TestJSONWriter_CloseAfterFlush_NoDuplicate(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	_ = w.Write(Block{Text: "once"})
	_ = w.Flush()
	_ = w.Close()

	if strings.Count(buf.String(), "once") != 1 {
		t.Errorf("expected a single document, got %q", buf.String())
	}
}

func TestJSONWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("expected empty array, got %q", got)
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_SeparateLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	for i, text := range []string{"a", "b", "c"} {
		if err := w.Write(Block{Index: i, Text: text}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	_ = w.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	var b Block
	if err := json.Unmarshal([]byte(lines[2]), &b); err != nil {
		t.Fatalf("line 3 is not valid JSON: %v", err)
	}
	if b.Index != 2 || b.Text != "c" {
		t.Errorf("unexpected block: %+v", b)
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_Sequence(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	_ = w.Write(Block{Index: 0, Text: "Hello"})
	_ = w.Write(Block{Index: 1, Text: "World"})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result []Block
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal YAML: %v", err)
	}
	if len(result) != 2 || result[1].Text != "World" {
		t.Errorf("unexpected result: %+v", result)
	}
}

// --- WriterOption Tests ---

func TestWithIndent_Custom(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON, WithPretty(true), WithIndent("\t"))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	_ = w.Write(Block{Text: "tabbed"})
	_ = w.Close()

	if !strings.Contains(buf.String(), "\t") {
		t.Errorf("expected tab indentation, got %q", buf.String())
	}
}

// --- WriteFile Tests ---

func TestWriteFile_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")

	stats, err := WriteFile(dir, "data.txt", FormatText, slices.Values([]string{"Alpha", "Beta"}))
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "data.txt"))
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(data) != "Alpha\n\nBeta\n\n" {
		t.Errorf("content = %q", data)
	}
	if stats.Blocks != 2 {
		t.Errorf("Blocks = %d, want 2", stats.Blocks)
	}
	if stats.Bytes != int64(len(data)) {
		t.Errorf("Bytes = %d, want %d", stats.Bytes, len(data))
	}
	if stats.Path != filepath.Join(dir, "data.txt") {
		t.Errorf("Path = %q", stats.Path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "data.txt" {
		t.Errorf("expected exactly data.txt in %s, got %v", dir, entries)
	}
}

func TestWriteFile_EmptySequenceCreatesEmptyFile(t *testing.T) {
	dir := t.TempDir()

	stats, err := WriteFile(dir, "empty.txt", FormatText, slices.Values([]string(nil)))
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	info, err := os.Stat(stats.Path)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got %d bytes", info.Size())
	}
}

func TestWriteFile_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("stale content that is longer\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		if _, err := WriteFile(dir, "out.txt", FormatText, slices.Values([]string{"fresh"})); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	data, _ := os.ReadFile(path)
	if string(data) != "fresh\n\n" {
		t.Errorf("content = %q, want overwrite without append", data)
	}
}

func TestWriteFile_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	stats, err := WriteFile("", "", FormatText, nil)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if stats.Path != filepath.Join(DefaultDir, DefaultFile) {
		t.Errorf("Path = %q, want default location", stats.Path)
	}
	if _, err := os.Stat(stats.Path); err != nil {
		t.Errorf("default output file not created: %v", err)
	}
}

func TestWriteFile_DirectoryIsAFile(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := WriteFile(filepath.Join(blocker, "sub"), "x.txt", FormatText, nil)
	if err == nil {
		t.Fatal("expected error when output directory cannot be created")
	}
	if !strings.Contains(err.Error(), "output directory") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWriteFile_UnsupportedFormat(t *testing.T) {
	_, err := WriteFile(t.TempDir(), "x", Format("csv"), nil)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	for range 2 {
		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir() error = %v", err)
		}
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
}
