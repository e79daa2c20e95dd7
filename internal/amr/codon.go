package amr

import "strings"

// standardCode lists the standard genetic code in a fixed order so that
// reverse translation is deterministic.
var standardCode = [64]struct {
	codon string
	aa    byte
}{
	{"TTT", 'F'}, {"TTC", 'F'}, {"TTA", 'L'}, {"TTG", 'L'},
	{"TCT", 'S'}, {"TCC", 'S'}, {"TCA", 'S'}, {"TCG", 'S'},
	{"TAT", 'Y'}, {"TAC", 'Y'}, {"TAA", '*'}, {"TAG", '*'},
	{"TGT", 'C'}, {"TGC", 'C'}, {"TGA", '*'}, {"TGG", 'W'},

	{"CTT", 'L'}, {"CTC", 'L'}, {"CTA", 'L'}, {"CTG", 'L'},
	{"CCT", 'P'}, {"CCC", 'P'}, {"CCA", 'P'}, {"CCG", 'P'},
	{"CAT", 'H'}, {"CAC", 'H'}, {"CAA", 'Q'}, {"CAG", 'Q'},
	{"CGT", 'R'}, {"CGC", 'R'}, {"CGA", 'R'}, {"CGG", 'R'},

	{"ATT", 'I'}, {"ATC", 'I'}, {"ATA", 'I'}, {"ATG", 'M'},
	{"ACT", 'T'}, {"ACC", 'T'}, {"ACA", 'T'}, {"ACG", 'T'},
	{"AAT", 'N'}, {"AAC", 'N'}, {"AAA", 'K'}, {"AAG", 'K'},
	{"AGT", 'S'}, {"AGC", 'S'}, {"AGA", 'R'}, {"AGG", 'R'},

	{"GTT", 'V'}, {"GTC", 'V'}, {"GTA", 'V'}, {"GTG", 'V'},
	{"GCT", 'A'}, {"GCC", 'A'}, {"GCA", 'A'}, {"GCG", 'A'},
	{"GAT", 'D'}, {"GAC", 'D'}, {"GAA", 'E'}, {"GAG", 'E'},
	{"GGT", 'G'}, {"GGC", 'G'}, {"GGA", 'G'}, {"GGG", 'G'},
}

var codonTable = func() map[string]byte {
	m := make(map[string]byte, len(standardCode))
	for _, c := range standardCode {
		m[c.codon] = c.aa
	}
	return m
}()

// TranslateCodon translates a DNA codon to its amino acid.
// Returns 'X' for unknown codons and '*' for stop codons.
func TranslateCodon(codon string) byte {
	if len(codon) != 3 {
		return 'X'
	}
	if aa, ok := codonTable[strings.ToUpper(codon)]; ok {
		return aa
	}
	return 'X'
}

// IsStopCodon returns true if the codon is a stop codon (TAA, TAG, TGA).
func IsStopCodon(codon string) bool {
	return TranslateCodon(codon) == '*'
}

// ReverseTranslate returns the first codon, in table order, that encodes
// aa. The word "STOP" is accepted for '*'.
func ReverseTranslate(aa string) (string, bool) {
	if strings.EqualFold(aa, "stop") {
		aa = "*"
	}
	if len(aa) != 1 {
		return "", false
	}
	want := aa[0]
	if want >= 'a' && want <= 'z' {
		want -= 'a' - 'A'
	}
	for _, c := range standardCode {
		if c.aa == want {
			return c.codon, true
		}
	}
	return "", false
}

// AminoAcids returns the distinct amino acids of the standard code,
// including '*', in table order.
func AminoAcids() []byte {
	seen := make(map[byte]bool, 21)
	var out []byte
	for _, c := range standardCode {
		if !seen[c.aa] {
			seen[c.aa] = true
			out = append(out, c.aa)
		}
	}
	return out
}

// Codons returns the 64 codons of the standard code in table order.
func Codons() []string {
	out := make([]string, len(standardCode))
	for i, c := range standardCode {
		out[i] = c.codon
	}
	return out
}

// TranslateSequence translates DNA codon by codon from the first base.
// A trailing partial codon is ignored.
func TranslateSequence(dna string) string {
	out := make([]byte, 0, len(dna)/3)
	for i := 0; i+3 <= len(dna); i += 3 {
		out = append(out, TranslateCodon(dna[i:i+3]))
	}
	return string(out)
}
