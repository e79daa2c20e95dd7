// Package metrics exposes detection counters in Prometheus format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of one detection run on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	variants      *prometheus.CounterVec
	verdicts      *prometheus.CounterVec
	ambiguous     prometheus.Counter
	catalogErrors prometheus.Counter
}

// New creates and registers the counters.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		variants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibe_amr_variants_total",
			Help: "Variants classified, by gene type.",
		}, []string{"gene_type"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vibe_amr_verdicts_total",
			Help: "Classification verdicts, by mutation type.",
		}, []string{"mutation_type", "verdict"}),
		ambiguous: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vibe_amr_ambiguous_lines_total",
			Help: "Pileup lines discarded because of undecodable read bases.",
		}),
		catalogErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vibe_amr_catalog_errors_total",
			Help: "Catalog rows skipped because their mutation could not be parsed.",
		}),
	}
	m.registry.MustRegister(m.variants, m.verdicts, m.ambiguous, m.catalogErrors)
	return m
}

// ObserveVerdict counts one classified variant.
func (m *Metrics) ObserveVerdict(geneType, mutationType, verdict string) {
	if m == nil {
		return
	}
	m.variants.WithLabelValues(geneType).Inc()
	m.verdicts.WithLabelValues(mutationType, verdict).Inc()
}

// AddAmbiguousLines counts discarded pileup lines.
func (m *Metrics) AddAmbiguousLines(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ambiguous.Add(float64(n))
}

// AddCatalogErrors counts skipped catalog rows.
func (m *Metrics) AddCatalogErrors(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.catalogErrors.Add(float64(n))
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the counters for the node exporter textfile
// collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
