package amr

import (
	"fmt"
	"strings"

	"github.com/inodb/vibe-amr/internal/pileup"
)

// Variant is one resistance signature: a gene, its expected mutations and
// the mutation type that knows how to classify them.
type Variant struct {
	ARO      ARO
	SNPs     []SNP // expected mutations, in catalog order
	MutType  MutationType
	GeneType GeneType
}

// NewVariant creates a variant. RNA variants have U normalized to T so
// they compare against DNA pileups.
func NewVariant(aro ARO, snps []SNP, mt MutationType, gt GeneType) *Variant {
	expected := make([]SNP, len(snps))
	copy(expected, snps)
	if gt == RNAVariant {
		for i := range expected {
			expected[i].WT = uracilToThymine(expected[i].WT)
			expected[i].Mut = uracilToThymine(expected[i].Mut)
		}
	}
	return &Variant{ARO: aro, SNPs: expected, MutType: mt, GeneType: gt}
}

func uracilToThymine(s string) string {
	if strings.EqualFold(s, "u") {
		return "T"
	}
	return s
}

// Export formats the variant as a tab-delimited line:
// aro, gene type, mutation type, mutations, dna.
func (v *Variant) Export() string {
	return fmt.Sprintf("%d\t%s\t%s\t%s\t%s\n", v.ARO.ID, v.GeneType, DisplayName(v.MutType), JoinSNPs(v.SNPs), v.ARO.DNA)
}

// String returns "<Gene type>:<Mutation type>".
func (v *Variant) String() string {
	gt := string(v.GeneType)
	if gt != "" {
		gt = strings.ToUpper(gt[:1]) + gt[1:]
	}
	return gt + ":" + DisplayName(v.MutType)
}

// IndelGroup holds the indel calls found around one expected position.
// RNA groups have two slots (the preceding base and the base itself);
// protein groups have four (the preceding base and the three codon bases).
type IndelGroup struct {
	Position int
	Slots    [][]SNP
}

// Indels returns every indel call of the group, slot by slot.
func (g IndelGroup) Indels() []SNP {
	var out []SNP
	for _, s := range g.Slots {
		out = append(out, s...)
	}
	return out
}

// Evidence is what a pileup says about a variant's expected positions.
type Evidence struct {
	SNPs        []SNP        // substitution calls (amino acid calls for proteins)
	IndelGroups []IndelGroup // indel calls per expected position
	Warnings    []error      // pileup lines whose evidence was discarded
}

// HasIndels reports whether any indel call was found.
func (e Evidence) HasIndels() bool {
	for _, g := range e.IndelGroups {
		for _, s := range g.Slots {
			if len(s) > 0 {
				return true
			}
		}
	}
	return false
}

// Empty reports whether no call of any kind was found.
func (e Evidence) Empty() bool {
	return len(e.SNPs) == 0 && !e.HasIndels()
}

// EvidenceFromRecords turns the pileup records at one position into calls
// attributed to position: a wild-type call, one call per other observed
// base, and one insertion and one deletion call when present. An
// undecodable line voids the whole set.
func EvidenceFromRecords(recs []*pileup.Record, position int) ([]SNP, error) {
	var calls []SNP
	for _, rec := range recs {
		c := rec.Counts()
		if len(c.Ambiguous) > 0 {
			return nil, &pileup.AmbiguousBaseError{Line: rec.Line, Chars: string(c.Ambiguous)}
		}

		wt := string(rec.Ref)
		if n := c.Count(rec.Ref); n > 0 {
			calls = append(calls, NewSNP(wt, wt, position, n, rec.Depth))
		}
		for _, b := range []byte("ATGC") {
			if b == rec.Ref {
				continue
			}
			if n := c.Count(b); n > 0 {
				calls = append(calls, NewSNP(wt, string(b), position, n, rec.Depth))
			}
		}
		if c.Insertions > 0 {
			calls = append(calls, NewIndel(wt, position, c.Inserted, Insertion, c.Insertions, rec.Depth))
		}
		if c.Deletions > 0 {
			calls = append(calls, NewIndel(wt, position, c.Deleted, Deletion, c.Deletions, rec.Depth))
		}
	}
	return calls, nil
}

// FindInPileup collects the evidence for the variant's expected positions.
// It does not modify the variant.
func (v *Variant) FindInPileup(idx *pileup.Index) Evidence {
	if v.GeneType.IsProtein() {
		return v.findProtein(idx)
	}
	return v.findRNA(idx)
}

// findRNA reads nucleotide positions directly. Indels are attributed by
// mpileup to the base before the event, so the preceding position is
// scanned for indels too.
func (v *Variant) findRNA(idx *pileup.Index) Evidence {
	var ev Evidence
	acc := v.ARO.Accession()

	for _, snp := range v.SNPs {
		relevant := idx.Lookup(acc, snp.Position)
		var base0, base1 []SNP

		if len(relevant) > 0 {
			calls, err := EvidenceFromRecords(relevant, snp.Position)
			if err != nil {
				ev.Warnings = append(ev.Warnings, fmt.Errorf("%s:%d: %w", acc, snp.Position, err))
			}
			for _, c := range calls {
				if c.IsIndel() {
					base1 = append(base1, c)
				} else {
					ev.SNPs = append(ev.SNPs, c)
				}
			}

			calls, err = EvidenceFromRecords(idx.Lookup(acc, snp.Position-1), snp.Position)
			if err != nil {
				ev.Warnings = append(ev.Warnings, fmt.Errorf("%s:%d: %w", acc, snp.Position-1, err))
			}
			for _, c := range calls {
				if c.IsIndel() {
					base0 = append(base0, c)
				}
			}
		}

		ev.IndelGroups = append(ev.IndelGroups, IndelGroup{
			Position: snp.Position,
			Slots:    [][]SNP{base0, base1},
		})
	}
	return ev
}

// codonSlot keeps the calls observed for one codon base, keyed by base in
// first-seen order.
type codonSlot struct {
	keys  []string
	calls map[string]SNP
}

func (s *codonSlot) put(base string, call SNP) {
	if s.calls == nil {
		s.calls = make(map[string]SNP)
	}
	if _, ok := s.calls[base]; !ok {
		s.keys = append(s.keys, base)
	}
	s.calls[base] = call
}

// findProtein reads the three bases of each expected codon plus the base
// before it. A single-base insertion shifts the following calls one slot
// to the right, with the inserted base taking the next slot. Each
// combination of observed codon bases is translated into an amino acid
// call carrying the lowest depth and the highest total depth of its bases.
func (v *Variant) findProtein(idx *pileup.Index) Evidence {
	var ev Evidence
	acc := v.ARO.Accession()

	for _, snp := range v.SNPs {
		var slots [4]codonSlot
		var indels [4][]SNP
		shift := 0

		for i := 0; i < 4; i++ {
			pos := snp.Position*3 - 3 + i
			calls, err := EvidenceFromRecords(idx.Lookup(acc, pos), snp.Position)
			if err != nil {
				ev.Warnings = append(ev.Warnings, fmt.Errorf("%s:%d: %w", acc, pos, err))
			}
			for _, c := range calls {
				if !c.IsIndel() {
					if shift < 4 {
						slots[shift].put(c.Mut, c)
					}
					continue
				}
				indels[i] = append(indels[i], c)
				if c.Kind == Insertion {
					shift++
					for _, b := range singleBases(c.Sequences) {
						if shift < 4 {
							slots[shift].put(b, c)
						}
					}
				}
			}
			shift++
		}

		group := IndelGroup{Position: snp.Position, Slots: make([][]SNP, 4)}
		copy(group.Slots, indels[:])
		if group.Indels() != nil {
			ev.IndelGroups = append(ev.IndelGroups, group)
		}

		for _, b1 := range slots[1].keys {
			for _, b2 := range slots[2].keys {
				for _, b3 := range slots[3].keys {
					c1, c2, c3 := slots[1].calls[b1], slots[2].calls[b2], slots[3].calls[b3]
					codon := b1 + b2 + b3
					ev.SNPs = append(ev.SNPs, SNP{
						WT:         snp.WT,
						Mut:        string(TranslateCodon(codon)),
						Position:   snp.Position,
						Depth:      min(c1.Depth, c2.Depth, c3.Depth),
						TotalDepth: max(c1.TotalDepth, c2.TotalDepth, c3.TotalDepth),
						Codon:      codon,
					})
				}
			}
		}
	}
	return ev
}

// singleBases returns the distinct one-base sequences in first-seen order.
func singleBases(seqs []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range seqs {
		if len(s) == 1 && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
