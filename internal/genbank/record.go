// Package genbank splits GenBank flatfile records into named sections and
// extracts their fields.
package genbank

import (
	"errors"
)

// Record is one interpreted GenBank record.
type Record struct {
	Raw      string // literal record text, sequence letters excluded
	Sections *Sections

	Locus         Locus
	Definition    string
	PrimaryAcc    string
	SecondaryAccs []string
	Version       string // versioned accession, e.g. AB000096.1
	SeqVersion    string // version number, e.g. 1
	Keywords      []string
	Organism      string
	PubMedIDs     []string
	Comment       string
	Source        Qualifiers
	SecondSource  Qualifiers // nil when the record has one source feature
}

// Parse sectionizes text and extracts every field.
func Parse(text string) (*Record, error) {
	sec, err := Sectionize(text)
	if err != nil {
		return nil, err
	}

	rec := &Record{Raw: text, Sections: sec}
	if rec.Locus, err = ParseLocus(sec.Locus); err != nil {
		return nil, err
	}
	id := rec.Locus.Name

	rec.Definition = ParseDefinition(sec.Definition)
	if rec.PrimaryAcc, rec.SecondaryAccs, err = ParseAccession(sec.Accession); err != nil {
		return nil, withID(err, id)
	}
	id = rec.PrimaryAcc

	if rec.Version, rec.SeqVersion, err = ParseVersion(sec.Version); err != nil {
		return nil, withID(err, id)
	}
	rec.Keywords = ParseKeywords(sec.Keywords)
	if rec.Organism, err = ParseOrganism(sec.Organism); err != nil {
		return nil, withID(err, id)
	}
	for _, ref := range sec.References {
		if pmid := ParsePubMedID(ref); pmid != "" {
			rec.PubMedIDs = append(rec.PubMedIDs, pmid)
		}
	}
	rec.Comment = ParseComment(sec.Comment)

	if rec.Source, err = ParseQualifiers(sec.Source); err != nil {
		return nil, withID(err, id)
	}
	if sec.SecondSource != "" {
		if rec.SecondSource, err = ParseQualifiers(sec.SecondSource); err != nil {
			return nil, withID(err, id)
		}
	}
	return rec, nil
}

// withID fills in the record identifier of a FormatError.
func withID(err error, id string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.ID == "" {
		fe.ID = id
	}
	return err
}
