package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Record("created")
	m.Record("created")
	m.Record("conflict")
	m.Event("ADD")
	m.RecordError("integrity")
	m.MergeSplit("split")
	m.Notes.Add(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Records.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Records.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Events.WithLabelValues("ADD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordErrors.WithLabelValues("integrity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MergeSplits.WithLabelValues("split")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Notes))

	expected := `
# HELP gtload_records_total Records processed, by outcome.
# TYPE gtload_records_total counter
gtload_records_total{outcome="conflict"} 1
gtload_records_total{outcome="created"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "gtload_records_total"))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Record("updated")
	m.ObserveRun(1500 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "gtload.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gtload_records_total{outcome="updated"} 1`)
	assert.Contains(t, string(data), "gtload_run_duration_seconds 1.5")
}
