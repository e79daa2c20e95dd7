package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/vibe-amr/internal/amr"
)

func TestSummarize(t *testing.T) {
	aro := amr.ARO{ID: 3003392}
	fsIndel := amr.NewIndel("R", 279, []string{"AC"}, amr.Insertion, 12, 40)

	tests := []struct {
		name     string
		variant  *amr.Variant
		c        amr.Classification
		total    string
		depth    string
		percent  string
		evidence string
	}{
		{
			name:    "nonsense wildtype",
			variant: amr.NewVariant(aro, []amr.SNP{{WT: "R", Mut: "*", Position: 279}}, amr.NonSense{}, amr.ProteinVariant),
			c: amr.Classification{Verdict: amr.Wildtype, Evidence: []amr.SNP{
				amr.NewSNP("R", "R", 279, 30, 30),
			}},
			total: "30", depth: "30", percent: "100.0%", evidence: "R279R:30/30",
		},
		{
			name:    "single resistant",
			variant: amr.NewVariant(aro, []amr.SNP{{WT: "C", Mut: "T", Position: 100}}, amr.Single{}, amr.RNAVariant),
			c: amr.Classification{Verdict: amr.ResistantVariant, Evidence: []amr.SNP{
				amr.NewSNP("C", "C", 100, 3, 5),
				amr.NewSNP("C", "T", 100, 2, 5),
			}},
			total: "5", depth: "2", percent: "40.0%", evidence: "C100C:3/5,C100T:2/5",
		},
		{
			name:    "other variant is the remainder",
			variant: amr.NewVariant(aro, []amr.SNP{{WT: "L", Mut: "V", Position: 100}}, amr.Single{}, amr.ProteinVariant),
			c: amr.Classification{Verdict: amr.OtherVariant, Evidence: []amr.SNP{
				amr.NewSNP("L", "L", 100, 40, 50),
				amr.NewSNP("L", "A", 100, 10, 50),
			}},
			total: "50", depth: "10", percent: "20.0%", evidence: "L100L:40/50,L100A:10/50",
		},
		{
			name:    "rounded percent",
			variant: amr.NewVariant(aro, []amr.SNP{{WT: "C", Mut: "T", Position: 100}}, amr.Single{}, amr.RNAVariant),
			c: amr.Classification{Verdict: amr.ResistantVariant, Evidence: []amr.SNP{
				amr.NewSNP("C", "T", 100, 1, 3),
			}},
			total: "3", depth: "1", percent: "33.33%", evidence: "C100T:1/3",
		},
		{
			name:    "zero depth is clamped",
			variant: amr.NewVariant(aro, []amr.SNP{{WT: "C", Mut: "T", Position: 100}}, amr.Single{}, amr.RNAVariant),
			c: amr.Classification{Verdict: amr.Wildtype, Evidence: []amr.SNP{
				amr.NewSNP("C", "C", 100, 0, 0),
			}},
			total: "1", depth: "0", percent: "0.0%", evidence: "C100C:0/0",
		},
		{
			name:    "frameshift group",
			variant: amr.NewVariant(aro, []amr.SNP{{WT: "R", Mut: "FS", Position: 279}}, amr.Frameshift{}, amr.ProteinVariant),
			c:       amr.Classification{Verdict: amr.ResistantVariant, Groups: [][]amr.SNP{{fsIndel}, nil, nil, nil}},
			total:   "40", depth: "12", percent: "30.0%", evidence: "R279Indel[Insertion:AC]:12/40",
		},
		{
			name: "partial reports resistant series",
			variant: amr.NewVariant(aro, []amr.SNP{
				{WT: "G", Mut: "C", Position: 452},
				{WT: "R", Mut: "L", Position: 659},
			}, amr.Multiple{}, amr.ProteinVariant),
			c: amr.Classification{Verdict: amr.Partial, Groups: [][]amr.SNP{
				{amr.NewSNP("G", "C", 452, 4, 10)},
				{amr.NewSNP("R", "R", 659, 8, 8)},
			}},
			total: "10;8", depth: "4;0", percent: "40.0%;0.0%", evidence: "G452C:4/10;R659R:8/8",
		},
		{
			name:    "in-frame insertion",
			variant: amr.NewVariant(aro, []amr.SNP{{WT: "A", Mut: "T", Position: 50}}, amr.Indel{}, amr.RNAVariant),
			c: amr.Classification{Verdict: amr.InsertionVariant, Evidence: []amr.SNP{
				amr.NewIndel("A", 50, []string{"GGC"}, amr.Insertion, 3, 10),
			}},
			total: "10", depth: "3", percent: "30.0%", evidence: "A50Indel[Insertion:GGC]:3/10",
		},
		{
			name:    "not found",
			variant: amr.NewVariant(aro, []amr.SNP{{WT: "C", Mut: "T", Position: 100}}, amr.Single{}, amr.RNAVariant),
			c:       amr.Classification{Verdict: amr.NotFound},
		},
		{
			name:    "unknown keeps evidence only",
			variant: amr.NewVariant(aro, []amr.SNP{{WT: "C", Mut: "T", Position: 100}}, amr.Single{}, amr.RNAVariant),
			c: amr.Classification{Verdict: amr.Unknown, Evidence: []amr.SNP{
				amr.NewSNP("C", "G", 100, 3, 3),
			}},
			evidence: "C100G:3/3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Summarize(tt.variant, tt.c)
			assert.Equal(t, 3003392, row.ARO)
			assert.Equal(t, tt.c.Verdict, row.Verdict)
			assert.Equal(t, amr.JoinSNPs(tt.variant.SNPs), row.Mutations)
			assert.Equal(t, tt.total, row.TotalDepth, "total depth")
			assert.Equal(t, tt.depth, row.Depth, "depth")
			assert.Equal(t, tt.percent, row.Percent, "percent")
			assert.Equal(t, tt.evidence, row.Evidence, "evidence")
		})
	}
}

func TestSummarize_OtherVariantNotClamped(t *testing.T) {
	// Protein calls are codon combinations and may add up past the total.
	v := amr.NewVariant(amr.ARO{ID: 1}, []amr.SNP{{WT: "L", Mut: "V", Position: 2}}, amr.Single{}, amr.ProteinVariant)
	c := amr.Classification{Verdict: amr.OtherVariant, Evidence: []amr.SNP{
		{WT: "L", Mut: "L", Position: 2, Depth: 8, TotalDepth: 8},
		{WT: "L", Mut: "L", Position: 2, Depth: 3, TotalDepth: 8},
	}}
	row := Summarize(v, c)
	assert.Equal(t, "-3", row.Depth)
	assert.Equal(t, "-37.5%", row.Percent)
}

func TestRowValues(t *testing.T) {
	v := amr.NewVariant(amr.ARO{ID: 3003392}, []amr.SNP{{WT: "R", Mut: "*", Position: 279}}, amr.NonSense{}, amr.ProteinVariant)
	row := Summarize(v, amr.Classification{Verdict: amr.Wildtype, Evidence: []amr.SNP{amr.NewSNP("R", "R", 279, 30, 30)}})

	assert.Equal(t, []string{
		"3003392", "protein variant", "Nonsense", "Wildtype", "R279*", "30", "30", "100.0%", "R279R:30/30",
	}, row.Values())
	assert.Len(t, Columns, len(row.Values()))
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100.0"},
		{0, "0.0"},
		{33.33, "33.33"},
		{14.29, "14.29"},
		{12.5, "12.5"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatPercent(tt.in))
	}
}
