package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/smithp17/AutoDialer/internal/profile"
)

var testRecords = []profile.Record{
	{
		Name:     "Jane Doe",
		URL:      "https://www.linkedin.com/in/janedoe",
		Headline: "Staff Engineer · Distributed systems",
		About:    "Café owner <and> builder & tinkerer.",
	},
	{
		URL: "https://www.linkedin.com/in/empty",
	},
}

// --- NewWriter Factory Tests ---

func TestNewWriter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if _, ok := w.(*JSONWriter); !ok {
		t.Errorf("expected *JSONWriter, got %T", w)
	}
}

func TestNewWriter_JSONL(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSONL)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if _, ok := w.(*JSONLWriter); !ok {
		t.Errorf("expected *JSONLWriter, got %T", w)
	}
}

func TestNewWriter_YAML(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatYAML)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if _, ok := w.(*YAMLWriter); !ok {
		t.Errorf("expected *YAMLWriter, got %T", w)
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	_, err := NewWriter(buf, Format("unsupported"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}

	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected error containing 'unsupported', got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"json", "jsonl", "yaml"} {
		if f, err := ParseFormat(s); err != nil || string(f) != s {
			t.Errorf("ParseFormat(%q) = (%q, %v)", s, f, err)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Error("ParseFormat(csv) should fail")
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_SingleRecordIsStillArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, DefaultIndent)

	if err := w.Write(testRecords[0]); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result []profile.Record
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if diff := cmp.Diff(testRecords[:1], result); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONWriter_EmptyIsEmptyArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, DefaultIndent)

	if err := w.WriteAll(nil); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("output = %q, want []", got)
	}
}

func TestJSONWriter_Layout(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, DefaultIndent)

	if err := w.WriteAll(testRecords); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	out := buf.String()

	// Four-space indent, field order name, url, headline, about.
	if !strings.Contains(out, "[\n    {\n        \"name\": \"Jane Doe\",\n        \"url\":") {
		t.Errorf("unexpected layout:\n%s", out)
	}
	if strings.Index(out, `"headline"`) > strings.Index(out, `"about"`) {
		t.Error("headline should precede about")
	}

	// Non-ASCII and HTML-significant characters are written unescaped.
	for _, want := range []string{"Café", "·", "<and>", "&"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q unescaped:\n%s", want, out)
		}
	}

	// Empty fields are present, not omitted.
	if !strings.Contains(out, `"about": ""`) {
		t.Errorf("empty about should be written as empty string:\n%s", out)
	}
}

func TestJSONWriter_CompactWithoutIndent(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, "")

	_ = w.Write(testRecords[1])
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := `[{"name":"","url":"https://www.linkedin.com/in/empty","headline":"","about":""}]` + "\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_OneRecordPerLine(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.WriteAll(testRecords); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(testRecords) {
		t.Fatalf("expected %d lines, got %d", len(testRecords), len(lines))
	}
	var got profile.Record
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("line 0 is not valid JSON: %v", err)
	}
	if diff := cmp.Diff(testRecords[0], got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_Sequence(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	if err := w.WriteAll(testRecords); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result []profile.Record
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if diff := cmp.Diff(testRecords, result); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

// --- WriteFile Tests ---

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scraped_profiles.json")

	n, err := WriteFile(path, FormatJSON, DefaultIndent, testRecords)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if int64(len(data)) != n {
		t.Errorf("WriteFile() reported %d bytes, file has %d", n, len(data))
	}

	var result []profile.Record
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if diff := cmp.Diff(testRecords, result); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only the artifact in the directory, got %d entries", len(entries))
	}
}

func TestWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := WriteFile(path, FormatJSON, DefaultIndent, nil); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("file = %q, want []", data)
	}
}

func TestWriteFile_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	if _, err := WriteFile(path, Format("csv"), "", testRecords); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be left behind on failure")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temporary file left behind: %v", entries)
	}
}

func TestFormat_Metadata(t *testing.T) {
	if FormatYAML.Extension() != ".yaml" || FormatJSONL.ContentType() != "application/x-ndjson" {
		t.Error("unexpected format metadata")
	}
	if FormatJSON.ContentType() != "application/json" || FormatJSON.Extension() != ".json" {
		t.Error("unexpected JSON metadata")
	}
}
