package catalog

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// DefaultErrorLog is the file rejected catalog rows are appended to.
const DefaultErrorLog = "SNPParsingErrors.txt"

// ErrorSink receives catalog rows that could not be parsed.
type ErrorSink interface {
	Report(line string, err error) error
}

// WriterSink writes "<line>\t<error>" entries to an io.Writer.
// It is safe for concurrent use.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
	n  int
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Report writes one entry.
func (s *WriterSink) Report(line string, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	if _, werr := fmt.Fprintf(s.w, "%s\t%v\n", line, err); werr != nil {
		return fmt.Errorf("write error log: %w", werr)
	}
	return nil
}

// Count returns the number of entries reported.
func (s *WriterSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

// FileSink appends entries to a file, creating it on first use.
type FileSink struct {
	*WriterSink
	f *os.File
}

// OpenFileSink opens path for appending.
func OpenFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w", err)
	}
	return &FileSink{WriterSink: NewWriterSink(f), f: f}, nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	return s.f.Close()
}

// discardSink drops every entry.
type discardSink struct{}

func (discardSink) Report(string, error) error { return nil }
