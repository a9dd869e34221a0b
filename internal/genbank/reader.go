package genbank

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RawRecord is the delimited text of one record as read from the input.
type RawRecord struct {
	Text string
	Line int // input line number of the LOCUS line
}

// RecordReader is the interface for sources of raw records.
type RecordReader interface {
	// Next reads the next record.
	// Returns nil, nil when there are no more records.
	Next() (*RawRecord, error)

	// Close releases the underlying input.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int
}

// Reader splits a GenBank flatfile stream into records. A record starts at
// a LOCUS line and ends at its ORIGIN line (kept) or "//"; the sequence
// letters after ORIGIN are skipped without being buffered.
type Reader struct {
	reader     *bufio.Reader
	closer     io.Closer
	lineNumber int
	pending    string // LOCUS line read ahead from an unterminated record
	hasPending bool
}

// NewReader creates a Reader over r. If r is an io.Closer it is closed by
// Close.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{reader: bufio.NewReaderSize(r, 1<<16)}
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	return rd
}

// Next reads the next record.
// Returns nil, nil when there are no more records.
func (r *Reader) Next() (*RawRecord, error) {
	var (
		buf      strings.Builder
		inRecord bool
		start    int
	)

	begin := func(line string) {
		inRecord = true
		start = r.lineNumber
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if r.hasPending {
		r.hasPending = false
		begin(r.pending)
	}

	for {
		line, err := r.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read record line %d: %w", r.lineNumber+1, err)
		}
		if line == "" && err == io.EOF {
			if inRecord {
				return &RawRecord{Text: buf.String(), Line: start}, nil
			}
			return nil, nil
		}
		r.lineNumber++
		line = strings.TrimRight(line, "\r\n")

		switch {
		case !inRecord:
			if strings.HasPrefix(line, "LOCUS") {
				begin(line)
			}
		case strings.HasPrefix(line, "LOCUS"):
			// Previous record had no terminator.
			r.pending = line
			r.hasPending = true
			return &RawRecord{Text: buf.String(), Line: start}, nil
		case strings.HasPrefix(line, "ORIGIN"), strings.HasPrefix(line, "//"):
			buf.WriteString(line)
			buf.WriteByte('\n')
			return &RawRecord{Text: buf.String(), Line: start}, nil
		default:
			buf.WriteString(line)
			buf.WriteByte('\n')
		}

		if err == io.EOF {
			if inRecord {
				return &RawRecord{Text: buf.String(), Line: start}, nil
			}
			return nil, nil
		}
	}
}

// LineNumber returns the current line number being processed.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the underlying input.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
