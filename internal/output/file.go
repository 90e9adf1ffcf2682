package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/smithp17/AutoDialer/internal/logger"
	"github.com/smithp17/AutoDialer/internal/profile"
)

// countingWriter tracks how many bytes pass through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteFile serializes recs to path in format, replacing any previous file.
// The artifact is written to a temporary file in the same directory and
// renamed into place, so readers never see a partial file. It returns the
// number of bytes written.
func WriteFile(path string, format Format, indent string, recs []profile.Record) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("create output file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	cw := &countingWriter{w: tmp}
	w, err := NewWriter(cw, format, WithIndent(indent))
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := w.WriteAll(recs); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}

	logger.Debug("output written",
		"path", path,
		"format", string(format),
		"records", len(recs),
		"size", humanize.Bytes(uint64(cw.n)))
	return cw.n, nil
}
