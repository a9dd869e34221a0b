package genbank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}

func readTestRecord(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(findTestFile(t, name))
	require.NoError(t, err)
	return string(data)
}
