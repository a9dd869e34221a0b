// Package genetrap specializes generic GenBank records into gene-trap raw
// input bundles: it detects the submitting creator, derives the mutant cell
// line ID and vector end from the sequence tag ID, and builds allele
// nomenclature.
package genetrap

import (
	"strings"
)

// Creator identifies the laboratory that submitted a gene-trap record.
type Creator int

const (
	UnknownCreator Creator = iota
	BayGenomics
	CMHD
	EGTC
	ESDB
	EUCOMM
	FHCRC
	GGTC
	Lexicon
	SIGTR
	TIGEM
	TIGM
	Vanderbilt
	Cornell
	SAGER
	Hicks
)

// tagSource is where the sequence tag ID is read from.
type tagSource int

const (
	fromDefinition tagSource = iota // first token of DEFINITION
	fromClone                       // /clone qualifier
)

// methodSource is the text scanned for the sequence tag method.
type methodSource int

const (
	methodFromComment methodSource = iota
	methodFromNote
	methodFromTagSuffix
)

// vectorSource is where the vector name is read from.
type vectorSource int

const (
	vectorFromNote       vectorSource = iota // whole /note
	vectorFromNoteMarker                     // "Vector:" within /note
	vectorFromSecondSource
)

type profile struct {
	name    string
	labCode string
	labName string
	// match holds lower-case strings searched in the Contact: lines.
	match             []string
	tag               tagSource
	split             splitFunc
	method            methodSource
	vector            vectorSource
	reverseDownstream bool
}

var profiles = [...]profile{
	UnknownCreator: {name: "Unknown"},
	BayGenomics: {
		name: "BayGenomics", labCode: "Byg", labName: "BayGenomics",
		match: []string{"baygenomics"},
		tag:   fromClone, split: splitWhole,
	},
	CMHD: {
		name: "CMHD", labCode: "Cmhd", labName: "Centre for Modeling Human Disease",
		match: []string{"centre for modeling human disease", "cmhd"},
		split: splitWhole,
	},
	EGTC: {
		name: "EGTC", labCode: "Egtc", labName: "Exchangeable Gene Trap Clones",
		match: []string{"exchangeable gene trap", "egtc"},
		tag:   fromClone, split: splitWhole,
	},
	ESDB: {
		name: "ESDB", labCode: "Esdb", labName: "Mammalian Functional Genomics Centre",
		match: []string{"mammalian functional genomics", "esdb"},
		split: splitWhole,
	},
	EUCOMM: {
		name: "EUCOMM", labCode: "Hmgu", labName: "Helmholtz Zentrum Muenchen GmbH",
		match: []string{"eucomm", "european conditional mouse mutagenesis"},
		split: splitDot, method: methodFromTagSuffix, vector: vectorFromNoteMarker,
		reverseDownstream: true,
	},
	FHCRC: {
		name: "FHCRC", labCode: "Fhcrc", labName: "Fred Hutchinson Cancer Research Center",
		match: []string{"fred hutchinson", "fhcrc"},
		split: splitWhole,
	},
	GGTC: {
		name: "GGTC", labCode: "Ggtc", labName: "German Gene Trap Consortium",
		match: []string{"german gene trap consortium", "ggtc"},
		split: splitOffset, method: methodFromNote, vector: vectorFromSecondSource,
		reverseDownstream: true,
	},
	Lexicon: {
		name: "Lexicon", labCode: "Lex", labName: "Lexicon Genetics",
		match: []string{"lexicon genetics"},
		tag:   fromClone, split: splitWhole,
	},
	SIGTR: {
		name: "SIGTR", labCode: "Wtsi", labName: "Wellcome Trust Sanger Institute",
		match: []string{"sanger institute gene trap", "sigtr"},
		tag:   fromClone, split: splitWhole, vector: vectorFromNoteMarker,
	},
	TIGEM: {
		name: "TIGEM", labCode: "Tigem", labName: "Telethon Institute of Genetics and Medicine",
		match: []string{"telethon institute", "tigem"},
		split: splitSuffix, reverseDownstream: true,
	},
	TIGM: {
		name: "TIGM", labCode: "Tigm", labName: "Texas A&M Institute for Genomic Medicine",
		match: []string{"texas a&m institute for genomic medicine", "tigm"},
		split: splitMarker, vector: vectorFromNoteMarker, reverseDownstream: true,
	},
	Vanderbilt: {
		name: "Vanderbilt", labCode: "Vgtc", labName: "Vanderbilt-Ingram Cancer Center",
		match: []string{"vanderbilt"},
		tag:   fromClone, split: splitWhole,
	},
	Cornell: {
		name: "Cornell", labCode: "Cgtr", labName: "Cornell University",
		match: []string{"cornell"},
		split: splitWhole,
	},
	SAGER: {
		name: "SAGER", labCode: "Sgr", labName: "Soriano Gene Trap Resource",
		match: []string{"sager", "soriano"},
		split: splitWhole,
	},
	Hicks: {
		name: "Hicks", labCode: "Hcks", labName: "Hicks Laboratory",
		match: []string{"hicks"},
		split: splitWhole,
	},
}

// Creators lists every known creator.
func Creators() []Creator {
	out := make([]Creator, 0, len(profiles)-1)
	for c := BayGenomics; int(c) < len(profiles); c++ {
		out = append(out, c)
	}
	return out
}

func (c Creator) profile() *profile {
	if c < 0 || int(c) >= len(profiles) {
		return &profiles[UnknownCreator]
	}
	return &profiles[c]
}

func (c Creator) String() string { return c.profile().name }

// LabCode is the lab code used in allele symbols, e.g. "Tigm".
func (c Creator) LabCode() string { return c.profile().labCode }

// LabName is the lab name used in allele names.
func (c Creator) LabName() string { return c.profile().labName }

// CellLineLogicalDB is the logical database of the creator's cell line IDs.
func (c Creator) CellLineLogicalDB() string { return c.String() + " Cell Line" }

// ParseCreator returns the creator with the given name, case-insensitively.
func ParseCreator(name string) (Creator, bool) {
	for _, c := range Creators() {
		if strings.EqualFold(c.String(), name) {
			return c, true
		}
	}
	return UnknownCreator, false
}

// lexiconLiteral identifies Lexicon records, which have no Contact: line.
const lexiconLiteral = "Lexicon Genetics"

// DetectCreator determines the creator from a COMMENT text. The Contact:
// line and the line after it are matched against each creator's known
// names.
func DetectCreator(comment string) Creator {
	if contact := contactLines(comment); contact != "" {
		contact = strings.ToLower(contact)
		for _, c := range Creators() {
			for _, m := range c.profile().match {
				if strings.Contains(contact, m) {
					return c
				}
			}
		}
	}
	if strings.Contains(comment, lexiconLiteral) {
		return Lexicon
	}
	return UnknownCreator
}

func contactLines(comment string) string {
	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		if _, after, ok := strings.Cut(line, "Contact:"); ok {
			if i+1 < len(lines) {
				return after + " " + lines[i+1]
			}
			return after
		}
	}
	return ""
}
