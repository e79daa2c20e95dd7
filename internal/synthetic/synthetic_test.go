package synthetic

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-amr/internal/amr"
	"github.com/inodb/vibe-amr/internal/fasta"
)

// MLKE
const proteinDNA = "ATGCTGAAAGAA"

func proteinVariant(t *testing.T, id int, mt amr.MutationType, mutation string) *amr.Variant {
	t.Helper()
	aro := amr.ARO{ID: id, DNA: proteinDNA}
	snps, err := mt.ParseSNP(aro, mutation)
	require.NoError(t, err)
	return amr.NewVariant(aro, snps, mt, amr.ProteinVariant)
}

func singles(t *testing.T, ids ...int) []*amr.Variant {
	var out []*amr.Variant
	for _, id := range ids {
		out = append(out, proteinVariant(t, id, amr.Single{}, "L2V"))
	}
	return out
}

func labelOf(rec fasta.Record) string {
	return strings.Split(rec.Header, "|")[2]
}

func byLabel(recs []fasta.Record) map[string][]fasta.Record {
	out := make(map[string][]fasta.Record)
	for _, r := range recs {
		out[labelOf(r)] = append(out[labelOf(r)], r)
	}
	return out
}

func TestGenerate_Mutant(t *testing.T) {
	res := Generate(singles(t, 7), Options{N: 1})
	require.Empty(t, res.Skipped)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "7|protein|mut|Single|2:V;", rec.Header)
	assert.Equal(t, "MVKE", amr.TranslateSequence(rec.Sequence))
}

func TestGenerate_Labels(t *testing.T) {
	res := Generate(singles(t, 1, 2, 3), Options{N: 1})
	require.Empty(t, res.Skipped)
	require.Len(t, res.Records, 3)

	got := byLabel(res.Records)
	require.Len(t, got[LabelMutant], 1)
	require.Len(t, got[LabelWildtype], 1)
	require.Len(t, got[LabelOther], 1)

	assert.Equal(t, "MVKE", amr.TranslateSequence(got[LabelMutant][0].Sequence))
	assert.Equal(t, "MLKE", amr.TranslateSequence(got[LabelWildtype][0].Sequence))
	assert.True(t, strings.HasSuffix(got[LabelWildtype][0].Header, "|2:L;"))

	other := amr.TranslateSequence(got[LabelOther][0].Sequence)
	require.Len(t, other, 4)
	assert.NotContains(t, "LV", string(other[1]))
	assert.Equal(t, "M", other[:1])
	assert.Equal(t, "KE", other[2:])

	ids := map[string]bool{}
	for _, r := range res.Records {
		ids[strings.Split(r.Header, "|")[0]] = true
	}
	assert.Len(t, ids, 3, "each ARO is used once")
}

func TestGenerate_Deterministic(t *testing.T) {
	variants := singles(t, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	a := Generate(variants, Options{N: 3, Seed: 99})
	b := Generate(variants, Options{N: 3, Seed: 99})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different output (-first +second):\n%s", diff)
	}
	assert.Len(t, a.Records, 9)

	reordered := make([]*amr.Variant, len(variants))
	for i, v := range variants {
		reordered[len(variants)-1-i] = v
	}
	c := Generate(reordered, Options{N: 3, Seed: 99})
	assert.Equal(t, a.Records, c.Records, "input order does not matter")
}

func TestGenerate_FillsShortTypesWithSingles(t *testing.T) {
	variants := append(singles(t, 1, 2, 3, 4),
		proteinVariant(t, 20, amr.NonSense{}, "K3STOP"))

	res := Generate(variants, Options{N: 4})
	require.Empty(t, res.Skipped)

	mutants := byLabel(res.Records)[LabelMutant]
	require.Len(t, mutants, 4)

	var nonsense int
	for _, r := range mutants {
		if strings.HasPrefix(r.Header, "20|") {
			nonsense++
			assert.Equal(t, "20|protein|mut|Nonsense|3:STOP;", r.Header)
			assert.Equal(t, "ML*E", amr.TranslateSequence(r.Sequence))
		}
	}
	assert.Equal(t, 1, nonsense)
}

func TestGenerate_Frameshift(t *testing.T) {
	res := Generate([]*amr.Variant{proteinVariant(t, 5, amr.Frameshift{}, "K3FS")}, Options{N: 1})
	require.Empty(t, res.Skipped)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Len(t, rec.Sequence, len(proteinDNA)+1)
	assert.Equal(t, "ATGCTGA", rec.Sequence[:7])
	assert.Equal(t, "5|protein|mut|Frameshift|3:K;", rec.Header)
}

func TestGenerate_PositionOutOfRange(t *testing.T) {
	v := proteinVariant(t, 9, amr.Single{}, "L20V")
	res := Generate([]*amr.Variant{v}, Options{N: 1})
	assert.Empty(t, res.Records)
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].Error(), "ARO 9")
	assert.Contains(t, res.Skipped[0].Error(), "outside sequence")
}

func TestGenerate_Exclude(t *testing.T) {
	res := Generate(singles(t, 1, 2), Options{N: 2, Exclude: []int{2}})
	require.Len(t, res.Records, 1)
	assert.True(t, strings.HasPrefix(res.Records[0].Header, "1|"))

	res = Generate(singles(t, 3003686), Options{N: 1})
	assert.Empty(t, res.Records, "excluded by default")
}

func TestGenerate_RNA(t *testing.T) {
	aro := amr.ARO{ID: 11, DNA: "ACGTACGT"}
	rna := func(id int) *amr.Variant {
		a := aro
		a.ID = id
		snps, err := amr.Single{}.ParseSNP(a, "C2U")
		require.NoError(t, err)
		return amr.NewVariant(a, snps, amr.Single{}, amr.RNAVariant)
	}
	variants := []*amr.Variant{rna(1), rna(2), rna(3), proteinVariant(t, 4, amr.Single{}, "L2V")}

	res := Generate(variants, Options{N: 1, Mode: RNA})
	require.Empty(t, res.Skipped)
	require.Len(t, res.Records, 3, "protein variants are not used for RNA")

	got := byLabel(res.Records)
	assert.Equal(t, "ATGTACGT", got[LabelMutant][0].Sequence)
	assert.True(t, strings.HasSuffix(got[LabelMutant][0].Header, "|rna|mut|Single|2:T;"))
	assert.Equal(t, "ACGTACGT", got[LabelWildtype][0].Sequence)

	other := got[LabelOther][0].Sequence
	assert.Contains(t, []string{"A", "G"}, other[1:2])
	assert.Equal(t, "A", other[:1])
	assert.Equal(t, "TACGT", other[3:])
}

func TestSplice(t *testing.T) {
	tests := []struct {
		name       string
		pos        int
		mode       Mode
		frameshift bool
		want       string
	}{
		{"protein first codon", 1, Protein, false, "GGGCTGAAAGAA"},
		{"protein last codon", 4, Protein, false, "ATGCTGAAAGGG"},
		{"rna", 2, RNA, false, "AGGCTGAAAGAA"},
		{"protein frameshift", 2, Protein, true, "ATGAGGGAAAGAA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splice(proteinDNA, map[Mode]string{Protein: "GGG", RNA: "G"}[tt.mode], tt.pos, tt.mode, tt.frameshift)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := splice(proteinDNA, "GGG", 5, Protein, false)
	assert.Error(t, err)
	_, err = splice(proteinDNA, "G", 0, RNA, false)
	assert.Error(t, err)
}
