package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/smithp17/AutoDialer/internal/profile"
)

// JSONWriter buffers records and writes them as a single JSON array. The
// array is written even when it is empty. Non-ASCII text is written as-is.
type JSONWriter struct {
	w      *bufio.Writer
	indent string
	items  []profile.Record
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		indent: indent,
		items:  make([]profile.Record, 0),
	}
}

// Write buffers a single record.
func (w *JSONWriter) Write(rec profile.Record) error {
	w.items = append(w.items, rec)
	return nil
}

// WriteAll buffers multiple records.
func (w *JSONWriter) WriteAll(recs []profile.Record) error {
	w.items = append(w.items, recs...)
	return nil
}

// Close writes the buffered records as a JSON array.
func (w *JSONWriter) Close() error {
	enc := json.NewEncoder(w.w)
	enc.SetEscapeHTML(false)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(w.items); err != nil {
		return err
	}
	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL).
type JSONLWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{w: bw, enc: enc}
}

// Write writes a single record as a JSON line.
func (w *JSONLWriter) Write(rec profile.Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return err
	}
	return w.w.Flush()
}

// WriteAll writes multiple records as JSON lines.
func (w *JSONLWriter) WriteAll(recs []profile.Record) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.w.Flush()
}
