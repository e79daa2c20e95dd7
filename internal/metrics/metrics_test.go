package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveVerdict("protein variant", "Single", "Resistant Variant")
	m.ObserveVerdict("protein variant", "Single", "Resistant Variant")
	m.ObserveVerdict("rna variant", "Single", "Wildtype")
	m.AddAmbiguousLines(3)
	m.AddCatalogErrors(1)
	m.AddCatalogErrors(0)

	path := filepath.Join(t.TempDir(), "vibe_amr.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `vibe_amr_variants_total{gene_type="protein variant"} 2`)
	assert.Contains(t, text, `vibe_amr_variants_total{gene_type="rna variant"} 1`)
	assert.Contains(t, text, `vibe_amr_verdicts_total{mutation_type="Single",verdict="Resistant Variant"} 2`)
	assert.Contains(t, text, "vibe_amr_ambiguous_lines_total 3")
	assert.Contains(t, text, "vibe_amr_catalog_errors_total 1")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveVerdict("rna variant", "Single", "Wildtype")
	m.AddAmbiguousLines(1)
	m.AddCatalogErrors(1)
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "unused.prom")))
}
