package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gtload/internal/alo"
	"github.com/inodb/gtload/internal/genbank"
	"github.com/inodb/gtload/internal/seqevent"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	f, err := Create(dir, "repeats.gb", "processed.txt", "mergesplit.sql")
	require.NoError(t, err)

	require.NoError(t, f.WriteRepeat("LOCUS       AB000096\nORIGIN\n"))
	require.NoError(t, f.WriteRepeat("LOCUS       AB000097\n//\n"))
	require.NoError(t, f.WriteProcessed(1001))
	require.NoError(t, f.WriteProcessed(1002))
	require.NoError(t, f.WriteMergeSplit([]seqevent.MergeSplitEvent{
		{Kind: seqevent.Merge, From: "AB000001", To: []string{"AB000096"}},
		{Kind: seqevent.Split, From: "AB000002", To: []string{"AB000096", "AB000097"}},
	}))
	assert.Equal(t, 2, f.Repeats)
	assert.Equal(t, 2, f.Processed)
	require.NoError(t, f.Close())

	repeats := readFile(t, filepath.Join(dir, "repeats.gb"))
	assert.Equal(t, "LOCUS       AB000096\nORIGIN\n//\nLOCUS       AB000097\n//\n", repeats)
	assert.Equal(t, "1001\n1002\n", readFile(t, filepath.Join(dir, "processed.txt")))
	assert.Equal(t,
		"exec SEQ_merge 'AB000001', 'AB000096'\nexec SEQ_split 'AB000002', 'AB000096,AB000097'\n",
		readFile(t, filepath.Join(dir, "mergesplit.sql")))
}

func TestRepeatsReadBack(t *testing.T) {
	dir := t.TempDir()
	f, err := Create(dir, "r.gb", "p.txt", "m.sql")
	require.NoError(t, err)
	require.NoError(t, f.WriteRepeat("LOCUS       AB000096\nDEFINITION  x\nORIGIN\n"))
	require.NoError(t, f.WriteRepeat("LOCUS       AB000097\nDEFINITION  y"))
	require.NoError(t, f.Close())

	in, err := os.Open(filepath.Join(dir, "r.gb"))
	require.NoError(t, err)
	rd := genbank.NewReader(in)
	defer rd.Close()

	var n int
	for {
		rec, err := rd.Next()
		require.NoError(t, err)
		if rec == nil {
			break
		}
		n++
	}
	assert.Equal(t, 2, n)
}

func TestCreate_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err := Create(filepath.Join(file, "sub"), "r", "p", "m")
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	s := NewSummary()
	s.AddOutcome(alo.Outcome{Kind: alo.Created, Notes: []string{"a"}})
	s.AddOutcome(alo.Outcome{Kind: alo.Updated})
	s.AddOutcome(alo.Outcome{Kind: alo.Conflict})
	s.AddOutcome(alo.Outcome{Kind: alo.Repeat})
	s.AddRecordError()
	s.Events[seqevent.Add] = 2
	s.Events[seqevent.NonEvent] = 1
	s.AddMergeSplit([]seqevent.MergeSplitEvent{{Kind: seqevent.Merge}, {Kind: seqevent.Split}, {Kind: seqevent.Split}})
	s.Elapsed = 1500 * time.Millisecond

	assert.Equal(t, 5, s.Records)
	assert.Equal(t, 3, s.Skipped())
	assert.Equal(t, 1, s.Notes)

	var buf bytes.Buffer
	require.NoError(t, s.WriteSummary(&buf, false))
	out := buf.String()
	assert.Contains(t, out, "Load Summary:")
	assert.Regexp(t, `Records:\s+5\n`, out)
	assert.Regexp(t, `Created:\s+1\n`, out)
	assert.Regexp(t, `Conflicts:\s+1\n`, out)
	assert.Regexp(t, `Record errors:\s+1\n`, out)
	assert.Contains(t, out, "ADD 2, UPDATE 0, ALREADY_ADDED 0, DUMMY 0, NON_EVENT 1")
	assert.Regexp(t, `Merges/splits:\s+1/2\n`, out)
	assert.Contains(t, out, "1.5s")
	assert.NotContains(t, out, "\x1b[")

	buf.Reset()
	require.NoError(t, s.WriteSummary(&buf, true))
	assert.Contains(t, buf.String(), "\x1b[32m1\x1b[0m")
}
