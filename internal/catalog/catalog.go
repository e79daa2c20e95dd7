// Package catalog reads and writes the resistance variant catalog: one
// tab-delimited row per variant with columns aro_id, name, gene_type,
// mutation_type, mutations and dna.
package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-amr/internal/amr"
	"github.com/inodb/vibe-amr/internal/metrics"
)

// Columns is the catalog header.
var Columns = []string{"aro_id", "name", "gene_type", "mutation_type", "mutations", "dna"}

// Loader parses catalogs. Rows that fail to parse are reported to the
// error sink and skipped.
type Loader struct {
	sink    ErrorSink
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewLoader creates a loader reporting rejected rows to sink. A nil sink
// discards them.
func NewLoader(sink ErrorSink) *Loader {
	if sink == nil {
		sink = discardSink{}
	}
	return &Loader{sink: sink, logger: zap.NewNop()}
}

// SetLogger sets the logger for warning and info messages.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// SetMetrics sets the counters updated for rejected rows.
func (l *Loader) SetMetrics(m *metrics.Metrics) {
	l.metrics = m
}

// Load reads a catalog with a default loader.
func Load(r io.Reader, sink ErrorSink) ([]*amr.Variant, error) {
	return NewLoader(sink).Load(r)
}

// Load reads every variant from r. Only read and sink failures abort.
func (l *Loader) Load(r io.Reader) ([]*amr.Variant, error) {
	br := bufio.NewReaderSize(r, 256*1024)
	var variants []*amr.Variant
	lineNumber, rejected := 0, 0

	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return variants, fmt.Errorf("read catalog line %d: %w", lineNumber+1, err)
		}
		if line == "" && err != nil {
			break
		}
		lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") || (lineNumber == 1 && strings.HasPrefix(line, Columns[0])) {
			continue
		}

		v, perr := ParseLine(line)
		if perr != nil {
			rejected++
			l.logger.Debug("skipping catalog row",
				zap.Int("line", lineNumber),
				zap.Error(perr))
			if serr := l.sink.Report(line, perr); serr != nil {
				return variants, serr
			}
			continue
		}
		variants = append(variants, v)
	}

	l.metrics.AddCatalogErrors(rejected)
	if rejected > 0 {
		l.logger.Warn("catalog rows skipped",
			zap.Int("skipped", rejected),
			zap.Int("loaded", len(variants)))
	}
	l.logger.Info("loaded catalog", zap.Int("variants", len(variants)))
	return variants, nil
}

// ParseLine parses one catalog row.
func ParseLine(line string) (*amr.Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 5 {
		return nil, fmt.Errorf("expected at least 5 columns, found %d", len(fields))
	}

	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid ARO id %q", fields[0])
	}
	gt, err := amr.ParseGeneType(fields[2])
	if err != nil {
		return nil, err
	}
	mt, err := amr.LookupMutationType(fields[3])
	if err != nil {
		return nil, err
	}

	aro := amr.ARO{ID: id, Name: fields[1]}
	if len(fields) > 5 {
		aro.DNA = strings.TrimSpace(fields[5])
	}

	snps, err := mt.ParseSNP(aro, fields[4])
	if err != nil {
		return nil, err
	}
	return amr.NewVariant(aro, snps, mt, gt), nil
}

// Write writes variants as a catalog, header first.
func Write(w io.Writer, variants []*amr.Variant) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Columns, "\t") + "\n"); err != nil {
		return err
	}
	for _, v := range variants {
		values := []string{
			strconv.Itoa(v.ARO.ID),
			v.ARO.Name,
			string(v.GeneType),
			v.MutType.Name(),
			MutationText(v),
			v.ARO.DNA,
		}
		if _, err := bw.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// MutationText formats a variant's expected mutations in the grammar its
// mutation type parses.
func MutationText(v *amr.Variant) string {
	parts := make([]string, len(v.SNPs))
	for i, s := range v.SNPs {
		if _, ok := v.MutType.(amr.NonSense); ok {
			parts[i] = s.WT + strconv.Itoa(s.Position) + "STOP"
			continue
		}
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}
