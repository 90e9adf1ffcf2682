package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/smithp17/AutoDialer/internal/profile"
)

// YAMLWriter buffers records and writes them as a YAML sequence.
type YAMLWriter struct {
	w     *bufio.Writer
	items []profile.Record
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:     bufio.NewWriter(w),
		items: make([]profile.Record, 0),
	}
}

// Write buffers a single record.
func (w *YAMLWriter) Write(rec profile.Record) error {
	w.items = append(w.items, rec)
	return nil
}

// WriteAll buffers multiple records.
func (w *YAMLWriter) WriteAll(recs []profile.Record) error {
	w.items = append(w.items, recs...)
	return nil
}

// Close writes the buffered records as a YAML sequence.
func (w *YAMLWriter) Close() error {
	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	if err := encoder.Encode(w.items); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	return w.w.Flush()
}
