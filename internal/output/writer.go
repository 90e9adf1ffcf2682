// Package output serializes profile records into the run artifact.
package output

import (
	"fmt"
	"io"

	"github.com/smithp17/AutoDialer/internal/profile"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// DefaultIndent matches the artifact layout downstream consumers expect.
const DefaultIndent = "    "

// Writer serializes records in one format.
type Writer interface {
	// Write outputs a single record.
	Write(rec profile.Record) error

	// WriteAll outputs multiple records.
	WriteAll(recs []profile.Record) error

	// Close writes anything still buffered. The underlying io.Writer is
	// left open.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	indent string
}

// WithIndent sets the indentation string. An empty indent produces compact
// output.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{indent: DefaultIndent}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Extension returns the conventional file extension for format.
func (f Format) Extension() string {
	switch f {
	case FormatJSONL:
		return ".jsonl"
	case FormatYAML:
		return ".yaml"
	default:
		return ".json"
	}
}

// ContentType returns the MIME type served for format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSONL:
		return "application/x-ndjson"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/json"
	}
}
