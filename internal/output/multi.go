package output

import (
	"errors"

	"github.com/inodb/vibe-amr/internal/detect"
)

// MultiWriter fans rows out to several writers, e.g. the TSV report and
// the results database.
type MultiWriter struct {
	writers []detect.RowWriter
}

// NewMultiWriter creates a writer that writes to every w in order.
func NewMultiWriter(w ...detect.RowWriter) *MultiWriter {
	return &MultiWriter{writers: w}
}

// WriteHeader writes the header of every writer.
func (m *MultiWriter) WriteHeader() error {
	for _, w := range m.writers {
		if err := w.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

// Write stops at the first failing writer.
func (m *MultiWriter) Write(r *detect.Row) error {
	for _, w := range m.writers {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every writer, even after a failure, and joins the errors.
func (m *MultiWriter) Flush() error {
	var errs []error
	for _, w := range m.writers {
		errs = append(errs, w.Flush())
	}
	return errors.Join(errs...)
}
