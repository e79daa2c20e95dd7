// Package output provides report row formatters.
package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/inodb/vibe-amr/internal/detect"
)

// TabWriter writes report rows in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w:       bufio.NewWriter(w),
		columns: detect.Columns,
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single row. Tabs and newlines inside fields are replaced
// by spaces so every row stays on one line.
func (tw *TabWriter) Write(r *detect.Row) error {
	values := r.Values()
	for i, v := range values {
		values[i] = sanitize(v)
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

var fieldReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")

func sanitize(s string) string {
	return fieldReplacer.Replace(s)
}
