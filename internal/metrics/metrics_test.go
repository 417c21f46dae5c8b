package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.SetConverted()
	m.SetConverted()
	m.BytesRead(1024)
	m.BytesRead(0)
	m.BytesRead(-3)
	m.RowRouted("b37.seqvars")
	m.RowRouted("b37.seqvars")
	m.RowRouted("b38.strucvars")
	m.UnknownLabel("pathogenicity")
	m.LocationSkipped("assembly")
	m.RunFinished(1500 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.setsTotal))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.bytesRead))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rowsTotal.WithLabelValues("b37.seqvars")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rowsTotal.WithLabelValues("b38.strucvars")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unknownLabels.WithLabelValues("pathogenicity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skippedLocations.WithLabelValues("assembly")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.runDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SetConverted()
		m.BytesRead(10)
		m.RowRouted("b37.seqvars")
		m.UnknownLabel("pathogenicity")
		m.LocationSkipped("assembly")
		m.RunFinished(time.Second)
	})
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.SetConverted()
	m.RowRouted("b38.seqvars")

	path := filepath.Join(t.TempDir(), "clinvar_tsv.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "clinvar_tsv_sets_total 1")
	assert.Contains(t, string(data), `clinvar_tsv_rows_total{bucket="b38.seqvars"} 1`)

	err = m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}
