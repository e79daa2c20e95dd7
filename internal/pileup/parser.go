package pileup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parser reads records from mpileup text.
type Parser struct {
	reader     *bufio.Reader
	lineNumber int
}

// NewParser creates a parser over r. Decompression, if any, is the
// caller's concern (see the source package).
func NewParser(r io.Reader) *Parser {
	return &Parser{reader: bufio.NewReaderSize(r, 64*1024)}
}

// Next reads the next record.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Record, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("read pileup line: %w", err)
			}
			if line == "" {
				return nil, nil
			}
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return ParseLine(line, p.lineNumber)
	}
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// ParseLine parses one tab-delimited pileup line:
// accession, position, reference base, depth, read bases[, qualities...].
func ParseLine(line string, lineNumber int) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return nil, &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("expected at least 5 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	depth, err := strconv.Atoi(fields[3])
	if err != nil || depth < 0 {
		return nil, &ParseError{
			Line:    lineNumber,
			Message: fmt.Sprintf("invalid depth: %s", fields[3]),
		}
	}

	if len(fields[2]) == 0 {
		return nil, &ParseError{Line: lineNumber, Message: "empty reference base"}
	}

	rec := &Record{
		Accession: fields[0],
		Pos:       pos,
		Ref:       upper(fields[2][0]),
		Depth:     depth,
		Bases:     fields[4],
		Line:      lineNumber,
	}
	if len(fields) > 5 {
		rec.Quals = fields[5]
	}
	return rec, nil
}

// ReadAll reads every record from p. Malformed lines are returned as
// errors alongside the records that did parse; only read failures abort.
func ReadAll(p *Parser) ([]*Record, []error, error) {
	var recs []*Record
	var skipped []error
	for {
		rec, err := p.Next()
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				skipped = append(skipped, err)
				continue
			}
			return recs, skipped, err
		}
		if rec == nil {
			return recs, skipped, nil
		}
		recs = append(recs, rec)
	}
}

// ParseError represents an error during pileup parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pileup parse error at line %d: %s", e.Line, e.Message)
}
