package detect

import (
	"strconv"
	"strings"

	"github.com/inodb/vibe-amr/internal/amr"
)

// Summarize turns a classification into a report row. Depth and percent
// are taken from the category matching the verdict: resistant reads for
// ResistantVariant and Partial, wild-type reads for Wildtype, the
// remainder of the total for OtherVariant and in-frame indel reads for
// InsertionVariant. NotFound and Unknown carry no numbers.
func Summarize(v *amr.Variant, c amr.Classification) *Row {
	row := &Row{
		ARO:          v.ARO.ID,
		GeneType:     string(v.GeneType),
		MutationType: amr.DisplayName(v.MutType),
		Verdict:      c.Verdict,
		Mutations:    amr.JoinSNPs(v.SNPs),
	}

	groups := c.Groups
	if !c.Nested() {
		if len(c.Evidence) == 0 {
			return row
		}
		groups = [][]amr.SNP{c.Evidence}
	}

	var totals, depths, percents, evidence []string
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		evidence = append(evidence, amr.Describe(g))

		t := newTally(expectedFor(v.SNPs, g[0].Position), g)
		count, ok := t.count(c.Verdict)
		if !ok {
			continue
		}
		totals = append(totals, strconv.Itoa(int(t.total)))
		depths = append(depths, strconv.Itoa(count))
		percents = append(percents, formatPercent(t.total.Percent(count))+"%")
	}

	row.TotalDepth = strings.Join(totals, ";")
	row.Depth = strings.Join(depths, ";")
	row.Percent = strings.Join(percents, ";")
	row.Evidence = strings.Join(evidence, ";")
	return row
}

// expectedFor returns the expected SNP at position, or the first one.
func expectedFor(expected []amr.SNP, position int) amr.SNP {
	for _, e := range expected {
		if e.Position == position {
			return e
		}
	}
	if len(expected) > 0 {
		return expected[0]
	}
	return amr.SNP{}
}

// tally accumulates read support for one position. All calls from one
// pileup line share a total depth; the largest is used.
type tally struct {
	total     amr.NormalizedDepth
	resistant int
	wildtype  int
	inFrame   int
}

func newTally(want amr.SNP, calls []amr.SNP) tally {
	var t tally
	maxTotal := 0
	for _, c := range calls {
		maxTotal = max(maxTotal, c.TotalDepth)
		switch {
		case c.IsIndel() && c.FrameShifting():
			t.resistant += c.Depth
		case c.IsIndel():
			t.inFrame += c.Depth
		case c.Mut == want.Mut:
			t.resistant += c.Depth
		case c.Mut == want.WT:
			t.wildtype += c.Depth
		}
	}
	t.total = amr.NormalizeDepth(maxTotal)
	return t
}

// count selects the read count reported for verdict. OtherVariant is the
// remainder of the total and is not clamped at zero.
func (t tally) count(verdict amr.Verdict) (int, bool) {
	switch verdict {
	case amr.ResistantVariant, amr.Partial:
		return t.resistant, true
	case amr.Wildtype:
		return t.wildtype, true
	case amr.OtherVariant:
		return int(t.total) - t.resistant - t.wildtype, true
	case amr.InsertionVariant:
		return t.inFrame, true
	}
	return 0, false
}

// formatPercent renders a percentage the way reports have always shown
// it: shortest form, with a trailing ".0" for whole numbers.
func formatPercent(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
