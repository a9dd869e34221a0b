package seqevent

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// MergeSplitKind tells a merge from a split.
type MergeSplitKind int

const (
	Merge MergeSplitKind = iota
	Split
)

func (k MergeSplitKind) String() string {
	if k == Split {
		return "split"
	}
	return "merge"
}

// MergeSplitEvent is one detected topology change: sequence From was
// absorbed into the sequence in To (merge) or divided between the
// sequences in To (split).
type MergeSplitEvent struct {
	Kind MergeSplitKind
	From string
	To   []string
}

// Command renders the event as a stored-procedure call.
func (e MergeSplitEvent) Command() string {
	if e.Kind == Split {
		return fmt.Sprintf("exec SEQ_split '%s', '%s'", e.From, strings.Join(e.To, ","))
	}
	return fmt.Sprintf("exec SEQ_merge '%s', '%s'", e.From, e.To[0])
}

// MergeSplit accumulates, per incoming primary accession, the secondary
// accessions that are primary accessions of other stored sequences.
type MergeSplit struct {
	src      SequenceSource
	observed map[string][]string
}

// NewMergeSplit creates an empty accumulator.
func NewMergeSplit(src SequenceSource) *MergeSplit {
	return &MergeSplit{src: src, observed: make(map[string][]string)}
}

// Observe checks the secondary accessions of one committed sequence.
func (m *MergeSplit) Observe(ctx context.Context, primary string, sequenceKey int64, secondaries []string) error {
	for _, sec := range secondaries {
		if sec == primary {
			continue
		}
		seq, err := m.src.SequenceByAccession(ctx, sec)
		if err != nil {
			return fmt.Errorf("merge/split lookup %s: %w", sec, err)
		}
		if seq == nil || seq.Key == sequenceKey {
			continue
		}
		if !slices.Contains(m.observed[primary], sec) {
			m.observed[primary] = append(m.observed[primary], sec)
		}
	}
	return nil
}

// Observed returns the accumulated primary to secondaries mapping.
func (m *MergeSplit) Observed() map[string][]string {
	return m.observed
}

// Events inverts and classifies everything observed so far.
func (m *MergeSplit) Events() []MergeSplitEvent {
	return Classify(Invert(m.observed))
}

// Invert turns primary -> secondaries into secondary -> sorted primaries.
func Invert(observed map[string][]string) map[string][]string {
	inv := make(map[string][]string)
	for primary, secs := range observed {
		for _, sec := range secs {
			if !slices.Contains(inv[sec], primary) {
				inv[sec] = append(inv[sec], primary)
			}
		}
	}
	for _, primaries := range inv {
		sort.Strings(primaries)
	}
	return inv
}

// Classify labels each inverted entry: a secondary reached from more than
// one primary was split, one reached from exactly one primary was merged.
// Events are ordered by From.
func Classify(inverted map[string][]string) []MergeSplitEvent {
	events := make([]MergeSplitEvent, 0, len(inverted))
	for from, to := range inverted {
		if len(to) == 0 {
			continue
		}
		kind := Merge
		if len(to) > 1 {
			kind = Split
		}
		events = append(events, MergeSplitEvent{Kind: kind, From: from, To: to})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].From < events[j].From })
	return events
}
