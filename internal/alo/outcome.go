package alo

import (
	"fmt"
	"strings"
)

// Kind is the outcome of reconciling one record.
type Kind int

const (
	Created Kind = iota
	Updated
	Skipped
	Conflict
	Repeat
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Skipped:
		return "skipped"
	case Conflict:
		return "conflict"
	case Repeat:
		return "repeat"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Commits reports whether the record's batch should be committed.
func (k Kind) Commits() bool {
	return k == Created || k == Updated
}

// Outcome is the result of reconciling one record. Conflicts and repeats are
// outcomes, not errors: the record is skipped and the run continues.
type Outcome struct {
	Kind    Kind
	Reason  string
	Details []string
	// Notes are non-fatal discrepancies found while reconciling.
	Notes []string

	AlleleKey   int64
	AlleleNew   bool
	Symbol      string
	CellLineID  string
	SequenceKey int64
}

func (o Outcome) String() string {
	if o.Reason == "" {
		return o.Kind.String()
	}
	if len(o.Details) == 0 {
		return o.Kind.String() + ": " + o.Reason
	}
	return o.Kind.String() + ": " + o.Reason + " (" + strings.Join(o.Details, "; ") + ")"
}

// RecordError is a data-quality error bound to one record. The record is
// skipped; any other error ends the run.
type RecordError interface {
	error
	Record() string
}

// IntegrityKind names an identity violation.
type IntegrityKind int

const (
	CellLineWithoutAllele IntegrityKind = iota
	MultipleAlleles
	MultipleCellLines
)

func (k IntegrityKind) String() string {
	switch k {
	case CellLineWithoutAllele:
		return "cell line without allele"
	case MultipleAlleles:
		return "multiple alleles for cell line"
	case MultipleCellLines:
		return "multiple cell lines for record"
	default:
		return fmt.Sprintf("IntegrityKind(%d)", int(k))
	}
}

// IntegrityError reports a store state that violates a gene-trap identity
// rule.
type IntegrityError struct {
	Kind       IntegrityKind
	SeqID      string
	CellLineID string
	Detail     string
}

func (e *IntegrityError) Error() string {
	msg := fmt.Sprintf("integrity violation for %s: %s", e.SeqID, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Record returns the human-readable record context for curation reports.
func (e *IntegrityError) Record() string {
	if e.CellLineID == "" {
		return e.SeqID
	}
	return e.SeqID + " (cell line " + e.CellLineID + ")"
}
