// Package synthetic builds FASTA sequences with known resistance states
// from catalog variants, for measuring detection accuracy.
package synthetic

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/inodb/vibe-amr/internal/amr"
	"github.com/inodb/vibe-amr/internal/fasta"
)

// Mode selects how expected positions are edited.
type Mode string

const (
	Protein Mode = "protein" // positions are codons
	RNA     Mode = "rna"     // positions are bases
)

// Truth labels in synthetic headers.
const (
	LabelWildtype = "wt"
	LabelMutant   = "mut"
	LabelOther    = "other"
)

// Defaults.
const (
	DefaultSeed = 25041
	DefaultN    = 40
)

// DefaultExclude lists AROs left out of synthetic sets.
var DefaultExclude = []int{3003686}

// Options configures Generate.
type Options struct {
	Mode    Mode
	N       int    // AROs per label; mutants are split across mutation types
	Seed    uint64 // random seed
	Exclude []int  // AROs never selected
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = Protein
	}
	if o.N <= 0 {
		o.N = DefaultN
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Exclude == nil {
		o.Exclude = DefaultExclude
	}
	return o
}

// Result holds the generated records and the variants that could not be
// spliced into their reference sequence.
type Result struct {
	Records []fasta.Record
	Skipped []error
}

// Generate selects AROs and writes one synthetic sequence per ARO.
//
// AROs are shuffled with the seed, then each mutation type takes N divided
// by the number of types, filling any shortfall with AROs that have a
// single mutation. N wild-type and N other AROs are taken from what
// remains. Mutant sequences carry the expected mutant at every position,
// wild-type sequences the wild type and other sequences a random residue
// that is neither. Headers read ARO|mode|label|MutationType|pos:residue;...
func Generate(variants []*amr.Variant, opts Options) Result {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))

	byARO := make(map[int][]*amr.Variant)
	var aros []int
	for _, v := range variants {
		id := v.ARO.ID
		if v.GeneType.IsProtein() != (opts.Mode == Protein) || slices.Contains(opts.Exclude, id) {
			continue
		}
		if _, ok := byARO[id]; !ok {
			aros = append(aros, id)
		}
		byARO[id] = append(byARO[id], v)
	}
	slices.Sort(aros)
	rng.Shuffle(len(aros), func(i, j int) { aros[i], aros[j] = aros[j], aros[i] })

	var types []string
	for _, id := range aros {
		for _, v := range byARO[id] {
			if n := v.MutType.Name(); !slices.Contains(types, n) {
				types = append(types, n)
			}
		}
	}
	slices.Sort(types)

	type pick struct {
		variant *amr.Variant
		label   string
	}
	var picks []pick

	take := func(mutType string) *amr.Variant {
		for i, id := range aros {
			for _, v := range byARO[id] {
				if v.MutType.Name() == mutType {
					aros = slices.Delete(aros, i, i+1)
					return v
				}
			}
		}
		return nil
	}

	if len(types) > 0 {
		per := opts.N / len(types)
		for _, mt := range types {
			got := 0
			for got < per {
				v := take(mt)
				if v == nil {
					break
				}
				picks = append(picks, pick{v, LabelMutant})
				got++
			}
			for got < per {
				v := take(amr.Single{}.Name())
				if v == nil {
					break
				}
				picks = append(picks, pick{v, LabelMutant})
				got++
			}
		}
	}

	for _, label := range []string{LabelWildtype, LabelOther} {
		n := min(opts.N, len(aros))
		tail := aros[len(aros)-n:]
		for _, id := range tail {
			picks = append(picks, pick{byARO[id][0], label})
		}
		aros = aros[:len(aros)-n]
	}

	var res Result
	for _, p := range picks {
		rec, err := build(p.variant, p.label, opts.Mode, rng)
		if err != nil {
			res.Skipped = append(res.Skipped, err)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func build(v *amr.Variant, label string, mode Mode, rng *rand.Rand) (fasta.Record, error) {
	_, frameshift := v.MutType.(amr.Frameshift)
	dna := v.ARO.DNA

	var header strings.Builder
	fmt.Fprintf(&header, "%d|%s|%s|%s|", v.ARO.ID, mode, label, amr.DisplayName(v.MutType))

	for _, snp := range v.SNPs {
		var replacement, residue string
		var err error
		if mode == Protein {
			replacement, err = codonFor(snp, label, rng)
			residue = string(amr.TranslateCodon(replacement))
			if residue == "*" {
				residue = "STOP"
			}
		} else {
			replacement = baseFor(snp, label, rng)
			residue = replacement
		}
		if err != nil {
			return fasta.Record{}, fmt.Errorf("ARO %d %s: %w", v.ARO.ID, snp, err)
		}

		dna, err = splice(dna, replacement, snp.Position, mode, frameshift)
		if err != nil {
			return fasta.Record{}, fmt.Errorf("ARO %d %s: %w", v.ARO.ID, snp, err)
		}
		header.WriteString(strconv.Itoa(snp.Position) + ":" + residue + ";")
	}
	return fasta.Record{Header: header.String(), Sequence: dna}, nil
}

// codonFor returns the codon spliced in for snp.
func codonFor(snp amr.SNP, label string, rng *rand.Rand) (string, error) {
	var aa string
	switch label {
	case LabelWildtype:
		aa = snp.WT
	case LabelOther:
		// Codons are drawn uniformly, so residues are weighted by how
		// many codons encode them.
		codons := amr.Codons()
		for {
			aa = string(amr.TranslateCodon(codons[rng.IntN(len(codons))]))
			if aa != snp.WT && aa != snp.Mut {
				break
			}
		}
	default:
		switch {
		case strings.EqualFold(snp.Mut, "fs"):
			aa = snp.WT
		default:
			aa = snp.Mut
		}
	}

	codon, ok := amr.ReverseTranslate(aa)
	if !ok {
		return "", fmt.Errorf("no codon for residue %q", aa)
	}
	return codon, nil
}

var bases = []string{"A", "T", "G", "C"}

// baseFor returns the base spliced in for snp.
func baseFor(snp amr.SNP, label string, rng *rand.Rand) string {
	switch label {
	case LabelWildtype:
		return snp.WT
	case LabelOther:
		b := "A"
		for b == snp.WT || b == snp.Mut {
			b = bases[rng.IntN(len(bases))]
		}
		return b
	}
	return snp.Mut
}

// splice replaces the residue at 1-based position. Frameshift variants
// get an extra "A" in front of the replacement.
func splice(dna, replacement string, position int, mode Mode, frameshift bool) (string, error) {
	start, end := position-1, position
	if mode == Protein {
		start, end = (position-1)*3, (position-1)*3+3
	}
	if start < 0 || end > len(dna) {
		return "", fmt.Errorf("position %d outside sequence of length %d", position, len(dna))
	}
	if frameshift {
		replacement = "A" + replacement
	}
	return dna[:start] + replacement + dna[end:], nil
}
