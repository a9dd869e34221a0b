package genbank

import "fmt"

// FormatError reports a malformed or missing section in one record.
// It is a per-record condition: the record is skipped and the run continues.
type FormatError struct {
	ID      string // primary accession or LOCUS name when known
	Section string
	Message string
}

func (e *FormatError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("genbank format error in %s: %s", e.Section, e.Message)
	}
	return fmt.Sprintf("genbank format error in %s of %s: %s", e.Section, e.ID, e.Message)
}

// Record returns the human-readable record context for curation reports.
func (e *FormatError) Record() string {
	if e.ID == "" {
		return e.Section
	}
	return e.ID + " (" + e.Section + ")"
}
