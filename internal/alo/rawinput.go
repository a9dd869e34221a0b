// Package alo reconciles allele-like objects: the allele, mutant cell line,
// references and sequence association built from one gene-trap record.
package alo

import (
	"fmt"
	"strings"
	"time"

	"github.com/inodb/gtload/internal/store"
)

// Reference association types.
const (
	RefLoad     = "Molecular"
	RefOriginal = "Original"
)

// RawInput is the bundle of unresolved attributes for one candidate allele.
type RawInput struct {
	SeqID   string // primary accession of the sequence
	RawText string // literal record text, for the repeat file
	Creator string

	Allele     AlleleRaw
	CellLines  []CellLineRaw
	Accessions []AccessionRaw
	Mutations  []string
	References []ReferenceRaw
	SeqAssoc   SeqAssocRaw
	GeneTrap   GeneTrapRaw
	Sequence   SequenceRaw

	// Notes are interpretation remarks for the curation log.
	Notes []string
}

// AlleleRaw holds allele attributes before term resolution.
type AlleleRaw struct {
	Symbol          string
	Name            string
	Type            string
	Status          string
	InheritanceMode string
}

// CellLineRaw describes a mutant cell line and its derivation.
type CellLineRaw struct {
	ID             string
	Creator        string
	LabName        string
	ParentCellLine string
	Vector         string
	VectorType     string
	DerivationType string
}

// DerivationName is "<lab name> <vector> <parent cell line>".
func (c CellLineRaw) DerivationName() string {
	return strings.Join([]string{c.LabName, c.Vector, c.ParentCellLine}, " ")
}

// AccessionRaw is an identifier of an object in a logical database. A
// gene-trap bundle carries the cell line ID (object type cell line) and the
// sequence tag ID (object type sequence).
type AccessionRaw struct {
	ID         string
	LogicalDB  string
	ObjectType string
}

// ReferenceRaw is a J number (the load reference) or a PubMed ID.
type ReferenceRaw struct {
	ID   string
	Type string
}

// IsJNumber reports whether the reference is a J number.
func (r ReferenceRaw) IsJNumber() bool {
	return strings.HasPrefix(r.ID, "J:")
}

// SeqAssocRaw links the sequence to the allele.
type SeqAssocRaw struct {
	SeqID     string
	Qualifier string
}

// GeneTrapRaw holds gene-trap attributes of the sequence.
type GeneTrapRaw struct {
	SeqTagID     string
	Method       string // empty when no method keyword matched
	VectorEnd    string
	ReverseComp  string
	GoodHitCount int64
}

// SequenceRaw holds sequence attributes from the record.
type SequenceRaw struct {
	AccID        string
	Secondary    []string
	Version      string
	Description  string
	Length       int64
	Division     string
	MoleculeType string
	Organism     string
	Date         time.Time
	Provider     string
	LogicalDB    string
}

// CellLine returns the single cell line of a gene-trap bundle.
func (in *RawInput) CellLine() (CellLineRaw, error) {
	if len(in.CellLines) != 1 {
		return CellLineRaw{}, &IntegrityError{
			Kind:   MultipleCellLines,
			SeqID:  in.SeqID,
			Detail: fmt.Sprintf("%d cell lines in record", len(in.CellLines)),
		}
	}
	return in.CellLines[0], nil
}

// Accession returns the first accession of objectType, if any.
func (in *RawInput) Accession(objectType string) (AccessionRaw, bool) {
	for _, a := range in.Accessions {
		if a.ObjectType == objectType {
			return a, true
		}
	}
	return AccessionRaw{}, false
}

// CellLineAccession returns the accession that identifies the cell line.
func (in *RawInput) CellLineAccession() (AccessionRaw, bool) {
	return in.Accession(store.ObjectCellLine)
}

// SeqTagAccession returns the sequence tag accession.
func (in *RawInput) SeqTagAccession() (AccessionRaw, bool) {
	return in.Accession(store.ObjectSequence)
}
