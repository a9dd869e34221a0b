// Package seqevent classifies incoming sequences against the store and
// detects merged and split sequence records.
package seqevent

import (
	"context"
	"fmt"
	"time"

	"github.com/inodb/gtload/internal/store"
)

// DateLayout is the layout of sequence dates in the store.
const DateLayout = "2006-01-02"

// Kind is the classification of one incoming sequence.
type Kind int

const (
	Add Kind = iota
	Update
	AlreadyAdded
	Dummy
	NonEvent
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "ADD"
	case Update:
		return "UPDATE"
	case AlreadyAdded:
		return "ALREADY_ADDED"
	case Dummy:
		return "DUMMY"
	case NonEvent:
		return "NON_EVENT"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is the result of Detect.
type Event struct {
	Kind Kind
	// Existing is the stored sequence for Update, Dummy and NonEvent.
	Existing *store.Sequence
	// SequenceKey is the key committed earlier in the run for AlreadyAdded.
	SequenceKey int64
}

// SequenceSource looks up stored sequences by primary accession.
type SequenceSource interface {
	SequenceByAccession(ctx context.Context, accID string) (*store.Sequence, error)
}

// Detector classifies sequences. It remembers the sequences committed
// during the run and must only be used from one goroutine.
type Detector struct {
	src  SequenceSource
	seen map[string]int64
}

// NewDetector creates a detector over src.
func NewDetector(src SequenceSource) *Detector {
	return &Detector{src: src, seen: make(map[string]int64)}
}

// Detect classifies the sequence accID dated date.
func (d *Detector) Detect(ctx context.Context, accID string, date time.Time) (Event, error) {
	if key, ok := d.seen[accID]; ok {
		return Event{Kind: AlreadyAdded, SequenceKey: key}, nil
	}

	seq, err := d.src.SequenceByAccession(ctx, accID)
	if err != nil {
		return Event{}, err
	}
	switch {
	case seq == nil:
		return Event{Kind: Add}, nil
	case seq.Status == store.SequenceNotLoaded:
		return Event{Kind: Dummy, Existing: seq}, nil
	}

	// An unreadable stored date is treated as older than any record.
	stored, err := time.Parse(DateLayout, seq.SeqDate)
	if err != nil || stored.Before(date) {
		return Event{Kind: Update, Existing: seq}, nil
	}
	return Event{Kind: NonEvent, Existing: seq}, nil
}

// MarkSeen records that accID was committed with sequence key.
func (d *Detector) MarkSeen(accID string, key int64) {
	d.seen[accID] = key
}

// Seen returns the number of sequences committed during the run.
func (d *Detector) Seen() int {
	return len(d.seen)
}
