// Package fasta reads and writes FASTA records.
package fasta

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is one FASTA entry. Header excludes the leading '>'.
type Record struct {
	Header   string
	Sequence string
}

// ID returns the header up to the first '|' or whitespace.
func (r Record) ID() string {
	if i := strings.IndexAny(r.Header, "| \t"); i != -1 {
		return r.Header[:i]
	}
	return r.Header
}

// Reader reads FASTA records from a stream. Compressed input is the
// caller's concern (see the source package).
type Reader struct {
	reader     *bufio.Reader
	lineNumber int
	next       *Record // record whose header was read ahead
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next record, or nil, nil at the end of input.
// Blank lines and ';' comment lines are skipped.
func (r *Reader) Next() (*Record, error) {
	rec := r.next
	r.next = nil
	var seq strings.Builder

	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read FASTA line %d: %w", r.lineNumber+1, err)
		}
		if line == "" && err != nil {
			break
		}
		r.lineNumber++

		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, ">"):
			header := &Record{Header: strings.TrimSpace(line[1:])}
			if rec != nil {
				r.next = header
				rec.Sequence = seq.String()
				return rec, nil
			}
			rec = header
		case line == "" || strings.HasPrefix(line, ";"):
		case rec == nil:
			return nil, fmt.Errorf("FASTA line %d: sequence before first header", r.lineNumber)
		default:
			seq.WriteString(line)
		}
	}

	if rec == nil {
		return nil, nil
	}
	rec.Sequence = seq.String()
	return rec, nil
}

// ReadAll reads every record from r.
func ReadAll(r io.Reader) ([]Record, error) {
	fr := NewReader(r)
	var recs []Record
	for {
		rec, err := fr.Next()
		if err != nil {
			return recs, err
		}
		if rec == nil {
			return recs, nil
		}
		recs = append(recs, *rec)
	}
}

// Writer writes FASTA records.
type Writer struct {
	w     *bufio.Writer
	width int
}

// NewWriter creates a writer. Sequences are wrapped at width characters;
// zero writes each sequence on one line.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{w: bufio.NewWriter(w), width: width}
}

// Write writes one record.
func (fw *Writer) Write(rec Record) error {
	if _, err := fw.w.WriteString(">" + rec.Header + "\n"); err != nil {
		return err
	}
	seq := rec.Sequence
	if fw.width <= 0 {
		_, err := fw.w.WriteString(seq + "\n")
		return err
	}
	for len(seq) > 0 {
		n := min(fw.width, len(seq))
		if _, err := fw.w.WriteString(seq[:n] + "\n"); err != nil {
			return err
		}
		seq = seq[n:]
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (fw *Writer) Flush() error {
	return fw.w.Flush()
}

// WriteAll writes recs and flushes.
func WriteAll(w io.Writer, recs []Record, width int) error {
	fw := NewWriter(w, width)
	for _, rec := range recs {
		if err := fw.Write(rec); err != nil {
			return err
		}
	}
	return fw.Flush()
}
