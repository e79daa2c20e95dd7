// Package amr models antimicrobial-resistance variants and classifies
// pileup evidence against curated resistance mutations.
package amr

import (
	"fmt"
	"strconv"
	"strings"
)

// ARO is a resistance-associated gene or region from the curated database.
type ARO struct {
	ID      int    // ARO accession
	Name    string // display name
	CVTerm  string // ontology term id
	Species string // source organism
	DNA     string // reference nucleotide sequence
	Protein string // reference protein sequence
}

// Accession returns the ARO id as used for the pileup reference name.
func (a ARO) Accession() string {
	return strconv.Itoa(a.ID)
}

// Kind distinguishes substitutions from insertions and deletions.
type Kind uint8

const (
	Substitution Kind = iota
	Insertion
	Deletion
)

func (k Kind) String() string {
	switch k {
	case Insertion:
		return "Insertion"
	case Deletion:
		return "Deletion"
	default:
		return "Substitution"
	}
}

// IndelMut is the Mut value carried by insertion and deletion calls.
const IndelMut = "Indel"

// SNP is a point variant, either expected (from the resistance catalog) or
// detected (from pileup evidence). Insertions and deletions are SNPs with a
// non-Substitution Kind and their sequences attached.
type SNP struct {
	WT         string   // wild-type base or amino acid
	Mut        string   // mutant base or amino acid; IndelMut for indels
	Position   int      // 1-based nucleotide or codon position
	Depth      int      // supporting reads, 0 when unknown
	TotalDepth int      // reads covering the position, 0 when unknown
	Codon      string   // reconstructed codon (protein evidence only)
	Kind       Kind     // Substitution, Insertion or Deletion
	Sequences  []string // inserted or deleted sequences (indels only)
}

// NewSNP creates a substitution call.
func NewSNP(wt, mut string, position, depth, totalDepth int) SNP {
	return SNP{WT: wt, Mut: mut, Position: position, Depth: depth, TotalDepth: totalDepth}
}

// NewIndel creates an insertion or deletion call.
func NewIndel(wt string, position int, sequences []string, kind Kind, depth, totalDepth int) SNP {
	return SNP{
		WT:         wt,
		Mut:        IndelMut,
		Position:   position,
		Depth:      depth,
		TotalDepth: totalDepth,
		Kind:       kind,
		Sequences:  sequences,
	}
}

// IsIndel reports whether the call is an insertion or deletion.
func (s SNP) IsIndel() bool {
	return s.Kind != Substitution
}

// FrameShifting reports whether any of the indel's sequences has a length
// that is not a multiple of three.
func (s SNP) FrameShifting() bool {
	if !s.IsIndel() {
		return false
	}
	for _, seq := range s.Sequences {
		if len(seq)%3 != 0 {
			return true
		}
	}
	return false
}

// String formats the call as <WT><Position><Mut>, e.g. "L527V".
func (s SNP) String() string {
	return s.WT + strconv.Itoa(s.Position) + s.Mut
}

// describe formats detected evidence with its support, for report debugging.
func (s SNP) describe() string {
	var sb strings.Builder
	sb.WriteString(s.String())
	if s.IsIndel() {
		fmt.Fprintf(&sb, "[%s:%s]", s.Kind, strings.Join(s.Sequences, "/"))
	}
	if s.Codon != "" {
		fmt.Fprintf(&sb, "(%s)", s.Codon)
	}
	fmt.Fprintf(&sb, ":%d/%d", s.Depth, s.TotalDepth)
	return sb.String()
}

// Describe formats evidence calls for the report's debug column.
func Describe(snps []SNP) string {
	parts := make([]string, len(snps))
	for i, s := range snps {
		parts[i] = s.describe()
	}
	return strings.Join(parts, ",")
}

// JoinSNPs formats expected mutations comma-separated.
func JoinSNPs(snps []SNP) string {
	parts := make([]string, len(snps))
	for i, s := range snps {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// GeneType selects how a variant's positions map onto pileup coordinates.
type GeneType string

const (
	ProteinVariant               GeneType = "protein variant"
	RNAVariant                   GeneType = "rna variant"
	ProteinOverexpressionVariant GeneType = "protein overexpression variant"
)

// ParseGeneType parses a catalog gene type.
func ParseGeneType(s string) (GeneType, error) {
	switch g := GeneType(strings.ToLower(strings.TrimSpace(s))); g {
	case ProteinVariant, RNAVariant, ProteinOverexpressionVariant:
		return g, nil
	}
	return "", fmt.Errorf("unknown gene type %q", s)
}

// IsProtein reports whether positions are codon numbers.
func (g GeneType) IsProtein() bool {
	return g == ProteinVariant || g == ProteinOverexpressionVariant
}
