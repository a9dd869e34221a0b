// Package output writes the side-channel files and the end-of-run summary of
// a load.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/inodb/gtload/internal/seqevent"
)

// Files holds the side-channel outputs of one run.
type Files struct {
	repeats    *sink
	processed  *sink
	mergeSplit *sink
	closed     bool

	Repeats   int
	Processed int
}

type sink struct {
	f *os.File
	w *bufio.Writer
}

func create(path string) (*sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &sink{f: f, w: bufio.NewWriter(f)}, nil
}

func (s *sink) close() error {
	if s == nil {
		return nil
	}
	err := s.w.Flush()
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Create creates the repeat, processed-key and merge/split files in dir.
func Create(dir, repeats, processed, mergeSplit string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	out := &Files{}
	var err error
	if out.repeats, err = create(filepath.Join(dir, repeats)); err != nil {
		return nil, err
	}
	if out.processed, err = create(filepath.Join(dir, processed)); err != nil {
		out.Close()
		return nil, err
	}
	if out.mergeSplit, err = create(filepath.Join(dir, mergeSplit)); err != nil {
		out.Close()
		return nil, err
	}
	return out, nil
}

// WriteRepeat appends the raw text of a record deferred as a repeat. The
// record is terminated with "//" so the file can be fed back to a run.
func (f *Files) WriteRepeat(text string) error {
	if _, err := f.repeats.w.WriteString(text); err != nil {
		return err
	}
	if !strings.HasSuffix(text, "\n") {
		if err := f.repeats.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if !strings.HasSuffix(strings.TrimRight(text, "\n"), "//") {
		if _, err := f.repeats.w.WriteString("//\n"); err != nil {
			return err
		}
	}
	f.Repeats++
	return nil
}

// WriteProcessed appends one committed sequence key.
func (f *Files) WriteProcessed(sequenceKey int64) error {
	if _, err := f.processed.w.WriteString(strconv.FormatInt(sequenceKey, 10) + "\n"); err != nil {
		return err
	}
	f.Processed++
	return nil
}

// WriteMergeSplit writes one command line per event.
func (f *Files) WriteMergeSplit(events []seqevent.MergeSplitEvent) error {
	for _, ev := range events {
		if _, err := f.mergeSplit.w.WriteString(ev.Command() + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes every file. Closing twice is a no-op.
func (f *Files) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return errors.Join(f.repeats.close(), f.processed.close(), f.mergeSplit.close())
}
