// Package pileup reads samtools/bcftools mpileup output and decodes
// per-position read base strings.
package pileup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAmbiguousBase is reported when a read base string contains a token
// that is not part of the pileup grammar.
var ErrAmbiguousBase = errors.New("ambiguous pileup character")

// BaseCounts summarizes the read calls of one pileup position.
type BaseCounts struct {
	Bases      map[byte]int // calls per base; reference matches count under the reference base
	Insertions int          // '+' events
	Deletions  int          // '-' and '*' events
	Inserted   []string     // inserted sequences, one per insertion event
	Deleted    []string     // deleted sequences, one per deletion event
	Ambiguous  []byte       // characters that could not be decoded
}

// Count returns the number of calls for base b (case-insensitive).
func (c *BaseCounts) Count(b byte) int {
	return c.Bases[upper(b)]
}

// Err returns an *AmbiguousBaseError if any character could not be decoded.
func (c *BaseCounts) Err() error {
	if len(c.Ambiguous) == 0 {
		return nil
	}
	return &AmbiguousBaseError{Chars: string(c.Ambiguous)}
}

// AmbiguousBaseError lists the undecodable characters of a base string.
type AmbiguousBaseError struct {
	Line  int
	Chars string
}

func (e *AmbiguousBaseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s %q", e.Line, ErrAmbiguousBase, e.Chars)
	}
	return fmt.Sprintf("%s %q", ErrAmbiguousBase, e.Chars)
}

func (e *AmbiguousBaseError) Unwrap() error { return ErrAmbiguousBase }

// ParseReadBases decodes a pileup read base string against its reference
// base. Strand is discarded. The grammar follows samtools mpileup:
//
//	^Q    read start plus mapping quality (skipped)
//	$     read end (removed before scanning)
//	*     deleted base
//	. ,   reference match, optionally followed by +N<seq> or -N<seq>
//	ACGT  substitution
//
// A non-reference character directly followed by an indel marker only
// records the indel.
func ParseReadBases(ref byte, bases string) BaseCounts {
	ref = upper(ref)
	s := strings.ToUpper(strings.ReplaceAll(bases, "$", ""))
	c := BaseCounts{Bases: make(map[byte]int, 4)}

	for i := 0; i < len(s); {
		ch := s[i]
		next := byte(0)
		if i+1 < len(s) {
			next = s[i+1]
		}

		switch {
		case ch == '^':
			i += 2
		case ch == '*':
			c.Deletions++
			c.Deleted = append(c.Deleted, string(ref))
			i++
		case ch == '.' || ch == ',':
			c.Bases[ref]++
			if next == '+' || next == '-' {
				i = c.consumeIndel(s, i)
			} else {
				i++
			}
		case isCallChar(ch) && next != '+' && next != '-':
			switch ch {
			case '+':
				c.Insertions++
			case '-':
				c.Deletions++
			default:
				c.Bases[ch]++
			}
			i++
		case next == '+' || next == '-':
			i = c.consumeIndel(s, i)
		default:
			c.Ambiguous = append(c.Ambiguous, ch)
			i++
		}
	}

	return c
}

// consumeIndel parses the indel token whose marker sits at s[i+1] and
// returns the index just past it. The length is the decimal run following
// the marker; exactly that many characters form the sequence. A token
// declaring more characters than remain is ambiguous and ends the string.
func (c *BaseCounts) consumeIndel(s string, i int) int {
	marker := s[i+1]
	j := i + 2
	n := 0
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		if n > len(s) {
			c.Ambiguous = append(c.Ambiguous, marker)
			return len(s)
		}
		n = n*10 + int(s[j]-'0')
		j++
	}
	if j == i+2 {
		c.Ambiguous = append(c.Ambiguous, marker)
		return i + 2
	}

	end := j + n
	if n > len(s) || end > len(s) {
		c.Ambiguous = append(c.Ambiguous, marker)
		return len(s)
	}
	seq := s[j:end]

	if marker == '+' {
		c.Insertions++
		c.Inserted = append(c.Inserted, seq)
	} else {
		c.Deletions++
		c.Deleted = append(c.Deleted, seq)
	}
	return end
}

func isCallChar(ch byte) bool {
	switch ch {
	case 'A', 'C', 'G', 'T', '+', '-':
		return true
	}
	return false
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}
