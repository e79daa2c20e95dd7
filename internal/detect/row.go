package detect

import (
	"strconv"

	"github.com/inodb/vibe-amr/internal/amr"
)

// Columns is the report header.
var Columns = []string{
	"ARO",
	"Gene_Type",
	"Mutation_Type",
	"Classification",
	"Mutations",
	"Total_Depth",
	"Depth",
	"Percent",
	"Evidence",
}

// Row is one report line. Numeric fields are preformatted; multi-position
// verdicts join per-position values with ';'. They are empty when the
// verdict has no supporting evidence.
type Row struct {
	Seq          int // input order, 0-based
	ARO          int
	GeneType     string
	MutationType string
	Verdict      amr.Verdict
	Mutations    string
	TotalDepth   string
	Depth        string
	Percent      string
	Evidence     string
}

// Values returns the row's fields in Columns order.
func (r *Row) Values() []string {
	return []string{
		strconv.Itoa(r.ARO),
		r.GeneType,
		r.MutationType,
		r.Verdict.String(),
		r.Mutations,
		r.TotalDepth,
		r.Depth,
		r.Percent,
		r.Evidence,
	}
}

// RowWriter defines the interface for writing report rows.
type RowWriter interface {
	WriteHeader() error
	Write(r *Row) error
	Flush() error
}
