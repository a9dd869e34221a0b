package alo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inodb/gtload/internal/store"
)

// NomenSource provides the allele symbol and synonym snapshot.
type NomenSource interface {
	NomenSnapshot(ctx context.Context) ([]store.Nomen, error)
}

// RunContext holds state shared by every record of one run: the dates of
// sequences already processed and the nomenclature snapshot. It is loaded
// once at run start and only touched by the reconciling goroutine.
type RunContext struct {
	processed map[string]time.Time
	nomen     []store.Nomen
}

// NewRunContext loads the nomenclature snapshot from src.
func NewRunContext(ctx context.Context, src NomenSource) (*RunContext, error) {
	nomen, err := src.NomenSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load nomenclature snapshot: %w", err)
	}
	return &RunContext{
		processed: make(map[string]time.Time),
		nomen:     nomen,
	}, nil
}

// IsRepeat reports whether seqID was processed earlier in the run with a
// date strictly before date. An equal or earlier date is not a repeat.
func (rc *RunContext) IsRepeat(seqID string, date time.Time) bool {
	prev, ok := rc.processed[seqID]
	return ok && date.After(prev)
}

// MarkProcessed records the date of seqID on first sight only.
func (rc *RunContext) MarkProcessed(seqID string, date time.Time) {
	if _, ok := rc.processed[seqID]; !ok {
		rc.processed[seqID] = date
	}
}

// Processed returns the number of distinct sequences processed.
func (rc *RunContext) Processed() int {
	return len(rc.processed)
}

// AddNomen adds a symbol created during the run to the snapshot.
func (rc *RunContext) AddNomen(n store.Nomen) {
	rc.nomen = append(rc.nomen, n)
}

// NomenHits returns the symbols and synonyms that embed "(cellLineID)" or
// equal cellLineID.
func (rc *RunContext) NomenHits(cellLineID string) (symbols, synonyms []string) {
	embedded := "(" + cellLineID + ")"
	for _, n := range rc.nomen {
		if n.Text != cellLineID && !strings.Contains(n.Text, embedded) {
			continue
		}
		if n.IsSynonym {
			synonyms = append(synonyms, n.Text)
		} else {
			symbols = append(symbols, n.Text)
		}
	}
	return symbols, synonyms
}
