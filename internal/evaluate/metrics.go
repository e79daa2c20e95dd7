// Package evaluate scores detection reports against synthetic truth sets.
package evaluate

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Metrics is a binary confusion matrix with the usual derived rates.
// Rates with a zero denominator are NaN.
type Metrics struct {
	TP, TN, FP, FN float64
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// TPR is sensitivity, or recall.
func (m Metrics) TPR() float64 { return ratio(m.TP, m.TP+m.FN) }

// TNR is specificity.
func (m Metrics) TNR() float64 { return ratio(m.TN, m.TN+m.FP) }

// PPV is precision.
func (m Metrics) PPV() float64 { return ratio(m.TP, m.TP+m.FP) }

func (m Metrics) NPV() float64 { return ratio(m.TN, m.TN+m.FN) }

// FNR is the miss rate.
func (m Metrics) FNR() float64 { return ratio(m.FN, m.FN+m.TP) }

// FPR is the fall-out.
func (m Metrics) FPR() float64 { return ratio(m.FP, m.FP+m.TN) }

func (m Metrics) FDR() float64 { return ratio(m.FP, m.FP+m.TP) }

func (m Metrics) FOR() float64 { return ratio(m.FN, m.FN+m.TN) }

func (m Metrics) Accuracy() float64 { return ratio(m.TP+m.TN, m.TP+m.TN+m.FP+m.FN) }

func (m Metrics) F1() float64 { return ratio(2*m.TP, 2*m.TP+m.FP+m.FN) }

// FM is the Fowlkes-Mallows index.
func (m Metrics) FM() float64 { return math.Sqrt(m.PPV() * m.TPR()) }

// MCC is the Matthews correlation coefficient.
func (m Metrics) MCC() float64 {
	den := math.Sqrt((m.TP + m.FP) * (m.TP + m.FN) * (m.TN + m.FP) * (m.TN + m.FN))
	return ratio(m.TP*m.TN-m.FP*m.FN, den)
}

// MetricNames lists the columns written by WriteMetrics.
var MetricNames = []string{
	"TP", "TN", "FP", "FN",
	"TPR", "TNR", "PPV", "NPV", "FNR", "FPR", "FDR", "FOR",
	"Accuracy", "F1", "FM", "MCC",
}

// Values returns the counts and rates in MetricNames order.
func (m Metrics) Values() []float64 {
	return []float64{
		m.TP, m.TN, m.FP, m.FN,
		m.TPR(), m.TNR(), m.PPV(), m.NPV(), m.FNR(), m.FPR(), m.FDR(), m.FOR(),
		m.Accuracy(), m.F1(), m.FM(), m.MCC(),
	}
}

// WriteMetrics writes a header line and a value line, tab separated.
func WriteMetrics(w io.Writer, m Metrics) error {
	vals := m.Values()
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", strings.Join(MetricNames, "\t"), strings.Join(out, "\t"))
	return err
}
