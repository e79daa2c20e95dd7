package evaluate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/inodb/vibe-amr/internal/amr"
	"github.com/inodb/vibe-amr/internal/detect"
	"github.com/inodb/vibe-amr/internal/synthetic"
)

// Class indexes the confusion matrix.
type Class int

const (
	NonResistant Class = iota
	Resistant
)

// ClassNames are the confusion matrix labels.
var ClassNames = [2]string{"Non-Resistant", "Resistant"}

// Truth is one parsed synthetic FASTA header.
type Truth struct {
	ARO          int
	Label        string // synthetic.LabelWildtype, LabelMutant or LabelOther
	MutationType string
	Residues     string // pos:residue;...
}

// ParseHeader parses ARO|mode|label|MutationType|pos:residue;...
// A leading '>' is ignored.
func ParseHeader(h string) (Truth, error) {
	fields := strings.Split(strings.TrimPrefix(strings.TrimSpace(h), ">"), "|")
	if len(fields) < 5 {
		return Truth{}, fmt.Errorf("header %q: expected 5 fields, found %d", h, len(fields))
	}
	aro, err := strconv.Atoi(fields[0])
	if err != nil {
		return Truth{}, fmt.Errorf("header %q: invalid ARO: %w", h, err)
	}
	return Truth{ARO: aro, Label: fields[2], MutationType: fields[3], Residues: fields[4]}, nil
}

func (t Truth) class() Class {
	if t.Label == synthetic.LabelMutant {
		return Resistant
	}
	return NonResistant
}

// expectedResidues returns the sorted residues of the header, with U
// read as T.
func (t Truth) expectedResidues() []string {
	var out []string
	for _, part := range strings.Split(t.Residues, ";") {
		_, res, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		out = append(out, strings.ReplaceAll(res, "U", "T"))
	}
	slices.Sort(out)
	return out
}

func predicted(v amr.Verdict) Class {
	if v == amr.ResistantVariant {
		return Resistant
	}
	return NonResistant
}

var digits = regexp.MustCompile(`\d+`)

// positions returns the distinct numbers in s, sorted.
func positions(s string) []string {
	out := digits.FindAllString(s, -1)
	slices.Sort(out)
	return slices.Compact(out)
}

// mutantResidues returns the sorted last characters of each mutation in
// a report Mutations field, with '*' read as STOP.
func mutantResidues(mutations string) []string {
	var out []string
	for _, m := range strings.FieldsFunc(mutations, func(r rune) bool { return r == ',' || r == ';' }) {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		res := strings.ToUpper(m[len(m)-1:])
		if res == "*" {
			res = "STOP"
		}
		out = append(out, res)
	}
	slices.Sort(out)
	return out
}

// Confusion counts truth (first index) against prediction (second).
// Cases records "ARO|truth residues|report mutations" for each cell.
type Confusion struct {
	Matrix     [2][2]int
	Cases      [2][2][]string
	References int // truth entries evaluated
	Unmatched  int // truth entries with no report row at their positions
}

func (c *Confusion) add(truth, pred Class, t Truth, mutations string) {
	c.Matrix[truth][pred]++
	c.Cases[truth][pred] = append(c.Cases[truth][pred], fmt.Sprintf("%d|%s|%s", t.ARO, t.Residues, mutations))
}

// Metrics returns the binary metrics with Resistant as the positive class.
func (c Confusion) Metrics() Metrics {
	return Metrics{
		TP: float64(c.Matrix[Resistant][Resistant]),
		TN: float64(c.Matrix[NonResistant][NonResistant]),
		FP: float64(c.Matrix[NonResistant][Resistant]),
		FN: float64(c.Matrix[Resistant][NonResistant]),
	}
}

// CheckAccuracy scores report rows against synthetic FASTA headers.
// Headers labelled "other" are left out. Each distinct truth entry is
// matched to the rows of its ARO whose mutation positions equal the
// entry's positions. When several rows match, the first row whose mutant
// residues equal the truth residues decides; if none does, the entry
// counts as predicted non-resistant. Each entry is counted at most once.
func CheckAccuracy(rows []*detect.Row, headers []string) (Confusion, error) {
	var c Confusion

	byARO := make(map[int][]*detect.Row)
	for _, r := range rows {
		byARO[r.ARO] = append(byARO[r.ARO], r)
	}

	seen := make(map[Truth]bool)
	var truths []Truth
	for _, h := range headers {
		t, err := ParseHeader(h)
		if err != nil {
			return c, err
		}
		if t.Label == synthetic.LabelOther || seen[t] {
			continue
		}
		seen[t] = true
		truths = append(truths, t)
	}

	for _, t := range truths {
		c.References++
		want := positions(t.Residues)

		var matched []*detect.Row
		for _, r := range byARO[t.ARO] {
			if slices.Equal(positions(r.Mutations), want) {
				matched = append(matched, r)
			}
		}

		switch len(matched) {
		case 0:
			c.Unmatched++
		case 1:
			c.add(t.class(), predicted(matched[0].Verdict), t, matched[0].Mutations)
		default:
			expected := t.expectedResidues()
			found := false
			for _, r := range matched {
				if slices.Equal(mutantResidues(r.Mutations), expected) {
					c.add(t.class(), predicted(r.Verdict), t, r.Mutations)
					found = true
					break
				}
			}
			if !found {
				c.add(t.class(), NonResistant, t, matched[0].Mutations)
			}
		}
	}
	return c, nil
}

// WriteConfusionMatrix writes the counts as a labelled TSV table.
func WriteConfusionMatrix(w io.Writer, c Confusion) error {
	lines := []string{"Truth\\Pred\t" + ClassNames[NonResistant] + "\t" + ClassNames[Resistant]}
	for _, truth := range []Class{NonResistant, Resistant} {
		lines = append(lines, fmt.Sprintf("%s\t%d\t%d",
			ClassNames[truth], c.Matrix[truth][NonResistant], c.Matrix[truth][Resistant]))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// ReadReport parses a detection report written by the tab writer. The
// header line is required.
func ReadReport(r io.Reader) ([]*detect.Row, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var rows []*detect.Row
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if line == 1 {
			if !strings.HasPrefix(text, detect.Columns[0]+"\t") {
				return nil, errors.New("report has no header line")
			}
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 5 {
			return nil, fmt.Errorf("report line %d: expected at least 5 columns, found %d", line, len(fields))
		}
		aro, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("report line %d: invalid ARO %q", line, fields[0])
		}
		for len(fields) < len(detect.Columns) {
			fields = append(fields, "")
		}
		rows = append(rows, &detect.Row{
			Seq:          len(rows),
			ARO:          aro,
			GeneType:     fields[1],
			MutationType: fields[2],
			Verdict:      amr.ParseVerdict(fields[3]),
			Mutations:    fields[4],
			TotalDepth:   fields[5],
			Depth:        fields[6],
			Percent:      fields[7],
			Evidence:     fields[8],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	if line == 0 {
		return nil, errors.New("report has no header line")
	}
	return rows, nil
}
