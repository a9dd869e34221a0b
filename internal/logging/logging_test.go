package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_CurationLog(t *testing.T) {
	dir := t.TempDir()
	curation := filepath.Join(dir, "out", "curation.log")
	debug := filepath.Join(dir, "debug.log")

	logs, err := New(Options{DebugPath: debug, CurationPath: curation, RunID: "run-1"})
	require.NoError(t, err)

	logs.Curation.Warn("conflict", zap.String("seqID", "AB000096"), zap.String("reason", "sequence associated with marker"))
	logs.Debug.Debug("hidden at info level")
	logs.Debug.Info("visible")
	logs.Sync()

	data, err := os.ReadFile(curation)
	require.NoError(t, err)
	assert.Contains(t, string(data), "WARN")
	assert.Contains(t, string(data), `"seqID": "AB000096"`)
	assert.Contains(t, string(data), `"runID": "run-1"`)

	data, err = os.ReadFile(debug)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"visible"`)
	assert.Contains(t, string(data), `"runID":"run-1"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_Verbose(t *testing.T) {
	debug := filepath.Join(t.TempDir(), "debug.log")
	logs, err := New(Options{Verbose: true, DebugPath: debug})
	require.NoError(t, err)

	_, err = uuid.Parse(logs.RunID)
	assert.NoError(t, err, "generated run ID is a UUID")

	logs.Debug.Debug("detail")
	logs.Sync()
	data, err := os.ReadFile(debug)
	require.NoError(t, err)
	assert.Contains(t, string(data), "detail")
}

func TestNop(t *testing.T) {
	logs := Nop()
	logs.Curation.Info("discarded")
	logs.Sync()
}
