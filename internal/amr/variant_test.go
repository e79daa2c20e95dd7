package amr

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-amr/internal/pileup"
)

func indexFromText(t *testing.T, text string) *pileup.Index {
	t.Helper()
	recs, skipped, err := pileup.ReadAll(pileup.NewParser(strings.NewReader(text)))
	require.NoError(t, err)
	require.Empty(t, skipped)
	return pileup.NewIndex(recs)
}

func TestEvidenceFromRecords(t *testing.T) {
	idx := indexFromText(t, "3003392\t10\tA\t7\t..,G,-2TT*\tIIIIIII\n")

	calls, err := EvidenceFromRecords(idx.Lookup("3003392", 10), 10)
	require.NoError(t, err)
	require.Len(t, calls, 3)

	assert.Equal(t, NewSNP("A", "A", 10, 4, 7), calls[0])
	assert.Equal(t, NewSNP("A", "G", 10, 1, 7), calls[1])
	assert.Equal(t, Deletion, calls[2].Kind)
	assert.Equal(t, 2, calls[2].Depth)
	assert.Equal(t, []string{"TT", "A"}, calls[2].Sequences)
}

func TestEvidenceFromRecords_AmbiguousLine(t *testing.T) {
	idx := indexFromText(t, "3003392\t10\tA\t3\t..N\tIII\n")

	calls, err := EvidenceFromRecords(idx.Lookup("3003392", 10), 10)
	require.Error(t, err)
	assert.Nil(t, calls)
	assert.True(t, errors.Is(err, pileup.ErrAmbiguousBase))

	var abe *pileup.AmbiguousBaseError
	require.True(t, errors.As(err, &abe))
	assert.Equal(t, 1, abe.Line)
	assert.Equal(t, "N", abe.Chars)
}

func TestEvidenceFromRecords_TruncatedIndel(t *testing.T) {
	idx := indexFromText(t, "3003392\t10\tA\t3\t..+9223372036854775808AC\tIII\n")

	var calls []SNP
	var err error
	require.NotPanics(t, func() { calls, err = EvidenceFromRecords(idx.Lookup("3003392", 10), 10) })
	assert.Nil(t, calls)
	assert.True(t, errors.Is(err, pileup.ErrAmbiguousBase))
}

func TestNewVariant_NormalizesRNA(t *testing.T) {
	expected := []SNP{{WT: "C", Mut: "U", Position: 100}}
	v := NewVariant(testARO, expected, Single{}, RNAVariant)

	assert.Equal(t, "T", v.SNPs[0].Mut)
	assert.Equal(t, "U", expected[0].Mut, "caller's slice must not change")

	p := NewVariant(testARO, []SNP{{WT: "U", Mut: "V", Position: 1}}, Single{}, ProteinVariant)
	assert.Equal(t, "U", p.SNPs[0].WT)
}

func TestVariant_ExportAndString(t *testing.T) {
	aro := ARO{ID: 3003392, DNA: "ACGT"}
	v := NewVariant(aro, []SNP{{WT: "G", Mut: "C", Position: 452}, {WT: "R", Mut: "L", Position: 659}}, Multiple{}, ProteinVariant)

	assert.Equal(t, "3003392\tprotein variant\tMulti\tG452C,R659L\tACGT\n", v.Export())
	assert.Equal(t, "Protein variant:Multi", v.String())
}

func TestFindInPileup_RNA(t *testing.T) {
	idx := indexFromText(t, strings.Join([]string{
		"3003392\t99\tA\t4\t.+2AC..\tIIII",
		"3003392\t100\tC\t5\t...TT\tIIIII",
		"",
	}, "\n"))

	v := NewVariant(testARO, []SNP{{WT: "C", Mut: "U", Position: 100}}, Single{}, RNAVariant)
	ev := v.FindInPileup(idx)

	require.Empty(t, ev.Warnings)
	assert.Equal(t, []SNP{
		NewSNP("C", "C", 100, 3, 5),
		NewSNP("C", "T", 100, 2, 5),
	}, ev.SNPs)

	require.Len(t, ev.IndelGroups, 1)
	g := ev.IndelGroups[0]
	assert.Equal(t, 100, g.Position)
	require.Len(t, g.Slots, 2)
	require.Len(t, g.Slots[0], 1)
	assert.Equal(t, Insertion, g.Slots[0][0].Kind)
	assert.Equal(t, []string{"AC"}, g.Slots[0][0].Sequences)
	assert.Equal(t, 100, g.Slots[0][0].Position)
	assert.Empty(t, g.Slots[1])

	c, err := v.MutType.Classify(v.SNPs, ev)
	require.NoError(t, err)
	assert.Equal(t, ResistantVariant, c.Verdict)
}

func TestFindInPileup_RNA_PositionNotCovered(t *testing.T) {
	idx := indexFromText(t, "3003392\t99\tA\t4\t.+2AC..\tIIII\n")

	v := NewVariant(testARO, []SNP{{WT: "C", Mut: "T", Position: 100}}, Frameshift{}, RNAVariant)
	ev := v.FindInPileup(idx)

	assert.Empty(t, ev.SNPs)
	require.Len(t, ev.IndelGroups, 1)
	assert.False(t, ev.HasIndels(), "preceding base is only scanned when the position is covered")
	assert.True(t, ev.Empty())
}

func TestFindInPileup_Protein(t *testing.T) {
	idx := indexFromText(t, strings.Join([]string{
		"3003392\t3\tA\t5\t.....\tIIIII",
		"3003392\t4\tC\t8\t.....GGG\tIIIIIIII",
		"3003392\t5\tT\t8\t........\tIIIIIIII",
		"3003392\t6\tG\t8\t........\tIIIIIIII",
		"",
	}, "\n"))

	v := NewVariant(testARO, []SNP{{WT: "L", Mut: "V", Position: 2}}, Single{}, ProteinVariant)
	ev := v.FindInPileup(idx)

	require.Empty(t, ev.Warnings)
	assert.Empty(t, ev.IndelGroups)
	assert.Equal(t, []SNP{
		{WT: "L", Mut: "L", Position: 2, Depth: 5, TotalDepth: 8, Codon: "CTG"},
		{WT: "L", Mut: "V", Position: 2, Depth: 3, TotalDepth: 8, Codon: "GTG"},
	}, ev.SNPs)

	c, err := v.MutType.Classify(v.SNPs, ev)
	require.NoError(t, err)
	assert.Equal(t, ResistantVariant, c.Verdict)
	assert.Len(t, c.Evidence, 2)
}

func TestFindInPileup_ProteinInsertionShift(t *testing.T) {
	idx := indexFromText(t, strings.Join([]string{
		"3003392\t3\tA\t3\t.+1T..\tIII",
		"3003392\t4\tC\t3\t...\tIII",
		"3003392\t5\tT\t3\t...\tIII",
		"3003392\t6\tG\t3\t...\tIII",
		"",
	}, "\n"))

	v := NewVariant(testARO, []SNP{{WT: "L", Mut: "S", Position: 2}}, Single{}, ProteinVariant)
	ev := v.FindInPileup(idx)

	require.Len(t, ev.SNPs, 1)
	assert.Equal(t, "TCT", ev.SNPs[0].Codon)
	assert.Equal(t, "S", ev.SNPs[0].Mut)
	assert.Equal(t, 1, ev.SNPs[0].Depth)
	assert.Equal(t, 3, ev.SNPs[0].TotalDepth)

	require.Len(t, ev.IndelGroups, 1)
	g := ev.IndelGroups[0]
	require.Len(t, g.Slots, 4)
	require.Len(t, g.Slots[0], 1)
	assert.Equal(t, []string{"T"}, g.Slots[0][0].Sequences)
	assert.True(t, g.Slots[0][0].FrameShifting())
}

func TestFindInPileup_ProteinFrameshift(t *testing.T) {
	idx := indexFromText(t, strings.Join([]string{
		"3003392\t834\tC\t40\t" + strings.Repeat(".", 28) + strings.Repeat(".+2AC", 12) + "\t" + strings.Repeat("I", 40),
		"3003392\t835\tG\t40\t" + strings.Repeat(".", 40) + "\t" + strings.Repeat("I", 40),
		"3003392\t836\tA\t40\t" + strings.Repeat(".", 40) + "\t" + strings.Repeat("I", 40),
		"3003392\t837\tT\t40\t" + strings.Repeat(".", 40) + "\t" + strings.Repeat("I", 40),
		"",
	}, "\n"))

	expected, err := Frameshift{}.ParseSNP(testARO, "R279FS")
	require.NoError(t, err)
	v := NewVariant(testARO, expected, Frameshift{}, ProteinVariant)

	ev := v.FindInPileup(idx)
	require.True(t, ev.HasIndels())

	c, err := v.MutType.Classify(v.SNPs, ev)
	require.NoError(t, err)
	assert.Equal(t, ResistantVariant, c.Verdict)
	require.True(t, c.Nested())
	require.Len(t, c.Groups[0], 1)
	assert.Equal(t, 12, c.Groups[0][0].Depth)
	assert.Equal(t, 40, c.Groups[0][0].TotalDepth)
}

func TestFindInPileup_AmbiguousLineIsWarning(t *testing.T) {
	idx := indexFromText(t, strings.Join([]string{
		"3003392\t99\tA\t3\t...\tIII",
		"3003392\t100\tC\t3\t..R\tIII",
		"",
	}, "\n"))

	v := NewVariant(testARO, []SNP{{WT: "C", Mut: "T", Position: 100}}, Single{}, RNAVariant)
	ev := v.FindInPileup(idx)

	require.Len(t, ev.Warnings, 1)
	assert.True(t, errors.Is(ev.Warnings[0], pileup.ErrAmbiguousBase))
	assert.Contains(t, ev.Warnings[0].Error(), "3003392:100")
	assert.Empty(t, ev.SNPs)

	c, err := v.MutType.Classify(v.SNPs, ev)
	require.NoError(t, err)
	assert.Equal(t, NotFound, c.Verdict)
}

func TestFindInPileup_OtherAccessionIgnored(t *testing.T) {
	idx := indexFromText(t, "3000001\t100\tC\t3\tTTT\tIII\n")

	v := NewVariant(testARO, []SNP{{WT: "C", Mut: "T", Position: 100}}, Single{}, RNAVariant)
	ev := v.FindInPileup(idx)
	assert.True(t, ev.Empty())
}
