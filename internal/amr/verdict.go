package amr

// Verdict is the outcome of classifying evidence against a resistance
// mutation.
type Verdict uint8

const (
	NotFound Verdict = iota
	Wildtype
	ResistantVariant
	OtherVariant
	Partial          // some, not all, positions of a multi-position mutation are mutant
	InsertionVariant // in-frame insertion; informational
	Unknown
)

var verdictNames = [...]string{
	NotFound:         "Not Found",
	Wildtype:         "Wildtype",
	ResistantVariant: "Resistant Variant",
	OtherVariant:     "Other Variant",
	Partial:          "Partial",
	InsertionVariant: "Insertion",
	Unknown:          "Unknown",
}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return verdictNames[Unknown]
}

// ParseVerdict maps a report spelling back to a Verdict. The plural
// "Other Variants" and the "???" placeholders are accepted for reports
// produced by older tooling.
func ParseVerdict(s string) Verdict {
	switch s {
	case "Other Variants":
		return OtherVariant
	case "???", "????":
		return Unknown
	}
	for i, name := range verdictNames {
		if name == s {
			return Verdict(i)
		}
	}
	return Unknown
}

// Classification is a verdict with the evidence that supports it. Flat
// evidence belongs to a single position; Groups holds one evidence list
// per position or indel slot for multi-position verdicts.
type Classification struct {
	Verdict  Verdict
	Evidence []SNP
	Groups   [][]SNP
}

// Nested reports whether the evidence is grouped.
func (c Classification) Nested() bool {
	return c.Groups != nil
}
