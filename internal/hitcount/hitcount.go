// Package hitcount loads good hit counts of gene-trap sequences from genome
// alignment files.
package hitcount

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/inodb/gtload/internal/input"
)

// Counts maps a sequence ID (without version) to its good hit count.
type Counts map[string]int64

// Count returns the hit count of seqID, or 0 if it has none.
func (c Counts) Count(seqID string) int64 {
	return c[stripVersion(seqID)]
}

// FileFingerprint holds stat-based identity for a loaded file.
type FileFingerprint struct {
	Path    string
	Size    int64 // -1 when the file is not local
	ModTime time.Time
	Entries int
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// ParseBestHits counts the alignment lines of each sequence in a
// tab-delimited best-hits file whose first column is the sequence ID.
func ParseBestHits(r io.Reader, counts Counts) (int, error) {
	n := 0
	err := scanIDs(r, func(id string) {
		counts[id]++
		n++
	})
	return n, err
}

// ParseSingleHits sets the count of every listed sequence to 1.
func ParseSingleHits(r io.Reader, counts Counts) (int, error) {
	n := 0
	err := scanIDs(r, func(id string) {
		counts[id] = 1
		n++
	})
	return n, err
}

func scanIDs(r io.Reader, fn func(id string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		id, _, _ := strings.Cut(line, "\t")
		if id = stripVersion(strings.TrimSpace(id)); id != "" {
			fn(id)
		}
	}
	return scanner.Err()
}

// Load reads the best-hits file and then the single-hits file, so
// single-hit entries override best-hit counts. Empty paths are skipped.
func Load(ctx context.Context, bestHits, singleHits string, opts input.Options) (Counts, []FileFingerprint, error) {
	counts := make(Counts)
	var prints []FileFingerprint
	for _, f := range []struct {
		path  string
		parse func(io.Reader, Counts) (int, error)
	}{
		{bestHits, ParseBestHits},
		{singleHits, ParseSingleHits},
	} {
		if f.path == "" {
			continue
		}
		fp, err := loadFile(ctx, f.path, opts, counts, f.parse)
		if err != nil {
			return nil, nil, err
		}
		prints = append(prints, fp)
	}
	return counts, prints, nil
}

func loadFile(ctx context.Context, path string, opts input.Options, counts Counts,
	parse func(io.Reader, Counts) (int, error)) (FileFingerprint, error) {
	fp := FileFingerprint{Path: path, Size: -1}
	if input.IsLocal(path) {
		var err error
		if fp, err = StatFile(path); err != nil {
			return fp, fmt.Errorf("stat hit count file: %w", err)
		}
	}

	rc, err := input.Open(ctx, path, opts)
	if err != nil {
		return fp, fmt.Errorf("open hit count file: %w", err)
	}
	defer rc.Close()

	if fp.Entries, err = parse(rc, counts); err != nil {
		return fp, fmt.Errorf("read hit count file %s: %w", path, err)
	}
	return fp, nil
}

// stripVersion removes a trailing ".N" version from a sequence ID.
func stripVersion(id string) string {
	if i := strings.LastIndexByte(id, '.'); i > 0 {
		return id[:i]
	}
	return id
}
