package amr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupported is returned by mutation types that cannot parse or
// classify a mutation grammar.
var ErrUnsupported = errors.New("unsupported operation")

// MutationType parses a mutation grammar from the resistance catalog and
// classifies pileup evidence against the parsed mutations.
type MutationType interface {
	// Name returns the catalog name, e.g. "single".
	Name() string
	// ParseSNP parses mutation text such as "L527V" into expected SNPs.
	ParseSNP(aro ARO, mutation string) ([]SNP, error)
	// Classify compares evidence against the expected SNPs.
	Classify(expected []SNP, ev Evidence) (Classification, error)
}

// ParseError reports mutation text that does not match its grammar.
type ParseError struct {
	Type     string
	ARO      int
	Mutation string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s error for %d:%s, %v", e.Type, e.ARO, e.Mutation, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LookupMutationType returns the mutation type for a catalog name.
func LookupMutationType(name string) (MutationType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "single":
		return Single{}, nil
	case "multi", "multiple":
		return Multiple{}, nil
	case "nonsense":
		return NonSense{}, nil
	case "frameshift":
		return Frameshift{}, nil
	case "co-dependent", "codependent":
		return Codependent{}, nil
	case "indel":
		return Indel{}, nil
	}
	return nil, fmt.Errorf("unknown mutation type %q", name)
}

// DisplayName returns the capitalized mutation type name used in reports.
func DisplayName(mt MutationType) string {
	if mt == nil {
		return ""
	}
	n := mt.Name()
	if n == "" {
		return n
	}
	return strings.ToUpper(n[:1]) + n[1:]
}

// parseSubstitution parses <WT><pos><MUT>, e.g. "L527V".
func parseSubstitution(m string) (SNP, error) {
	if len(m) < 3 {
		return SNP{}, fmt.Errorf("mutation %q too short", m)
	}
	pos, err := parsePosition(m[1 : len(m)-1])
	if err != nil {
		return SNP{}, err
	}
	return SNP{WT: m[:1], Mut: m[len(m)-1:], Position: pos}, nil
}

// parseSuffixed parses <WT><pos><suffix> where suffix is matched
// case-insensitively.
func parseSuffixed(m, suffix string) (wt string, pos int, got string, err error) {
	if len(m) < len(suffix)+2 {
		return "", 0, "", fmt.Errorf("mutation %q too short", m)
	}
	got = m[len(m)-len(suffix):]
	if !strings.EqualFold(got, suffix) {
		return "", 0, "", fmt.Errorf("mutation does not end in %s", suffix)
	}
	pos, err = parsePosition(m[1 : len(m)-len(suffix)])
	if err != nil {
		return "", 0, "", err
	}
	return m[:1], pos, got, nil
}

func parsePosition(s string) (int, error) {
	pos, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	if pos < 1 {
		return 0, fmt.Errorf("position %d must be >= 1", pos)
	}
	return pos, nil
}

// Single is one substitution, e.g. "L527V".
type Single struct{}

func (Single) Name() string { return "single" }

func (t Single) ParseSNP(aro ARO, mutation string) ([]SNP, error) {
	m := strings.TrimSpace(mutation)
	snp, err := parseSubstitution(m)
	if err != nil {
		return nil, &ParseError{Type: t.Name(), ARO: aro.ID, Mutation: m, Err: err}
	}
	return []SNP{snp}, nil
}

func (Single) Classify(expected []SNP, ev Evidence) (Classification, error) {
	return classifyPoint(expected, ev), nil
}

// classifyPoint classifies a single expected position. All calls at the
// position are kept as evidence; a mutant call outranks a wild-type call,
// which outranks any other call.
func classifyPoint(expected []SNP, ev Evidence) Classification {
	if len(ev.SNPs) == 0 || len(expected) == 0 {
		return Classification{Verdict: NotFound}
	}

	want := expected[0]
	var collected []SNP
	var resistant, wildtype, other bool
	for _, d := range ev.SNPs {
		if d.Position != want.Position {
			continue
		}
		collected = append(collected, d)
		switch d.Mut {
		case want.Mut:
			resistant = true
		case want.WT:
			wildtype = true
		default:
			other = true
		}
	}

	switch {
	case resistant:
		return Classification{Verdict: ResistantVariant, Evidence: collected}
	case wildtype:
		return Classification{Verdict: Wildtype, Evidence: collected}
	case other:
		return Classification{Verdict: OtherVariant, Evidence: collected}
	}
	return Classification{Verdict: Unknown}
}

// Multiple is a set of substitutions that must co-occur, e.g. "G452C,R659L".
type Multiple struct{}

func (Multiple) Name() string { return "multi" }

func (t Multiple) ParseSNP(aro ARO, mutation string) ([]SNP, error) {
	var snps []SNP
	for _, part := range strings.Split(mutation, ",") {
		snp, err := parseSubstitution(strings.TrimSpace(part))
		if err != nil {
			return nil, &ParseError{Type: t.Name(), ARO: aro.ID, Mutation: mutation, Err: err}
		}
		snps = append(snps, snp)
	}
	return snps, nil
}

type positionState uint8

const (
	stateWildtype positionState = iota + 1
	stateMutant
	stateOther
)

// Classify classifies each expected position independently, then
// combines them. Any position without calls makes the whole variant
// NotFound. Evidence is grouped per position.
func (Multiple) Classify(expected []SNP, ev Evidence) (Classification, error) {
	if len(ev.SNPs) == 0 {
		return Classification{Verdict: NotFound}, nil
	}

	states := make([]positionState, len(expected))
	groups := make([][]SNP, len(expected))
	for i, want := range expected {
		var mutant, wildtype, other bool
		var collected []SNP
	scan:
		for _, d := range ev.SNPs {
			if d.Position != want.Position {
				continue
			}
			collected = append(collected, d)
			switch d.Mut {
			case want.Mut:
				mutant = true
				break scan
			case want.WT:
				wildtype = true
			default:
				other = true
			}
		}

		switch {
		case mutant:
			states[i] = stateMutant
		case other:
			states[i] = stateOther
		case wildtype:
			states[i] = stateWildtype
		default:
			return Classification{Verdict: NotFound}, nil
		}
		groups[i] = collected
	}

	seen := make(map[positionState]bool, 3)
	for _, s := range states {
		seen[s] = true
	}

	var verdict Verdict
	if len(seen) == 1 {
		switch states[0] {
		case stateWildtype:
			verdict = Wildtype
		case stateMutant:
			verdict = ResistantVariant
		default:
			verdict = OtherVariant
		}
	} else {
		switch {
		case seen[stateMutant]:
			verdict = Partial
		case seen[stateWildtype]:
			verdict = Wildtype
		case seen[stateOther]:
			verdict = OtherVariant
		default:
			verdict = Unknown
		}
	}
	return Classification{Verdict: verdict, Groups: groups}, nil
}

// NonSense is a premature stop codon, e.g. "R279STOP". The mutant is
// stored as '*', the stop symbol of the codon table.
type NonSense struct{}

func (NonSense) Name() string { return "nonsense" }

func (t NonSense) ParseSNP(aro ARO, mutation string) ([]SNP, error) {
	m := strings.TrimSpace(mutation)
	wt, pos, _, err := parseSuffixed(m, "STOP")
	if err != nil {
		return nil, &ParseError{Type: t.Name(), ARO: aro.ID, Mutation: m, Err: err}
	}
	return []SNP{{WT: wt, Mut: "*", Position: pos}}, nil
}

func (NonSense) Classify(expected []SNP, ev Evidence) (Classification, error) {
	return classifyPoint(expected, ev), nil
}

// Frameshift is a reading-frame disruption at a codon, e.g. "R279FS".
type Frameshift struct{}

func (Frameshift) Name() string { return "frameshift" }

func (t Frameshift) ParseSNP(aro ARO, mutation string) ([]SNP, error) {
	m := strings.TrimSpace(mutation)
	wt, pos, suffix, err := parseSuffixed(m, "FS")
	if err != nil {
		return nil, &ParseError{Type: t.Name(), ARO: aro.ID, Mutation: m, Err: err}
	}
	return []SNP{{WT: wt, Mut: suffix, Position: pos}}, nil
}

// Classify reports ResistantVariant when an indel at an expected position
// has a length that is not a multiple of three. In-frame indels, or only
// substitution calls, classify as Wildtype.
func (Frameshift) Classify(expected []SNP, ev Evidence) (Classification, error) {
	if ev.Empty() {
		return Classification{Verdict: NotFound}, nil
	}
	if !ev.HasIndels() {
		return Classification{Verdict: Wildtype, Evidence: ev.SNPs}, nil
	}

	var inFrame [][]SNP
	for _, want := range expected {
		for _, g := range ev.IndelGroups {
			if g.Position != want.Position {
				continue
			}
			indels := g.Indels()
			for _, indel := range indels {
				if indel.FrameShifting() {
					return Classification{Verdict: ResistantVariant, Groups: g.Slots}, nil
				}
			}
			if len(indels) > 0 {
				inFrame = append(inFrame, g.Slots...)
			}
		}
	}
	return Classification{Verdict: Wildtype, Groups: inFrame}, nil
}

// Codependent mutations span several genes, e.g.
// "ARO300333:A123L+ARO300444:L321A". They are not supported.
type Codependent struct{}

func (Codependent) Name() string { return "co-dependent" }

func (t Codependent) ParseSNP(aro ARO, mutation string) ([]SNP, error) {
	return nil, &ParseError{
		Type:     t.Name(),
		ARO:      aro.ID,
		Mutation: strings.TrimSpace(mutation),
		Err:      fmt.Errorf("parsing co-dependent mutations: %w", ErrUnsupported),
	}
}

func (Codependent) Classify([]SNP, Evidence) (Classification, error) {
	return Classification{Verdict: Unknown}, fmt.Errorf("classifying co-dependent mutations: %w", ErrUnsupported)
}

// Indel is an insertion or deletion mutation. Its catalog grammar is not
// supported, but detected indels can still be classified.
type Indel struct{}

func (Indel) Name() string { return "indel" }

func (t Indel) ParseSNP(aro ARO, mutation string) ([]SNP, error) {
	return nil, &ParseError{
		Type:     t.Name(),
		ARO:      aro.ID,
		Mutation: strings.TrimSpace(mutation),
		Err:      fmt.Errorf("parsing indel mutations: %w", ErrUnsupported),
	}
}

// Classify reports the first indel at an expected position: Insertion if
// it keeps the reading frame, ResistantVariant otherwise. Without indels
// the substitution calls at the position decide.
func (Indel) Classify(expected []SNP, ev Evidence) (Classification, error) {
	if ev.Empty() {
		return Classification{Verdict: NotFound}, nil
	}

	for _, want := range expected {
		for _, g := range ev.IndelGroups {
			if g.Position != want.Position {
				continue
			}
			indels := g.Indels()
			if len(indels) == 0 {
				continue
			}
			if indels[0].FrameShifting() {
				return Classification{Verdict: ResistantVariant, Evidence: indels[:1]}, nil
			}
			return Classification{Verdict: InsertionVariant, Evidence: indels[:1]}, nil
		}

		for _, d := range ev.SNPs {
			if d.Position != want.Position {
				continue
			}
			switch d.Mut {
			case want.Mut:
				return Classification{Verdict: ResistantVariant, Evidence: []SNP{d}}, nil
			case want.WT:
				return Classification{Verdict: Wildtype, Evidence: []SNP{d}}, nil
			default:
				return Classification{Verdict: OtherVariant, Evidence: []SNP{d}}, nil
			}
		}
	}
	return Classification{Verdict: NotFound}, nil
}
