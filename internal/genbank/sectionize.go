package genbank

import (
	"strings"
)

// Sections holds the raw text of each named section of one record.
// Multi-line sections keep their original lines joined by "\n".
type Sections struct {
	Locus        string
	Definition   string
	Accession    string
	Version      string
	Keywords     string
	SourceLine   string
	Organism     string
	References   []string
	Comment      string
	Source       string
	SecondSource string
}

type state int

const (
	stateStart state = iota
	stateLocus
	stateDefinition
	stateAccession
	stateVersion
	stateKeywords
	stateSourceLine
	stateOrganism
	stateReference
	stateComment
	stateOtherSection
	stateFeatures
	stateSource
	stateSecondSource
	stateOtherFeature
	stateDone
)

type tag int

const (
	tagNone tag = iota
	tagLocus
	tagDefinition
	tagAccession
	tagVersion
	tagKeywords
	tagSourceLine
	tagOrganism
	tagReference
	tagComment
	tagFeatures
	tagSourceFeature
	tagFeatureKey
	tagOtherSection
	tagOrigin
)

var sectionTags = []struct {
	prefix string
	tag    tag
}{
	{"LOCUS", tagLocus},
	{"DEFINITION", tagDefinition},
	{"ACCESSION", tagAccession},
	{"VERSION", tagVersion},
	{"KEYWORDS", tagKeywords},
	{"SOURCE", tagSourceLine},
	{"  ORGANISM", tagOrganism},
	{"REFERENCE", tagReference},
	{"COMMENT", tagComment},
	{"FEATURES", tagFeatures},
	{"ORIGIN", tagOrigin},
	{"//", tagOrigin},
}

const featureIndent = "     "

// inFeatureTable reports whether feature keys are recognized in state s.
func (s state) inFeatureTable() bool {
	return s == stateFeatures || s == stateSource || s == stateSecondSource || s == stateOtherFeature
}

// classify returns the tag a line opens, or tagNone for continuation lines.
func classify(line string, s state) tag {
	for _, st := range sectionTags {
		if strings.HasPrefix(line, st.prefix) {
			return st.tag
		}
	}
	if s.inFeatureTable() && len(line) > len(featureIndent) &&
		strings.HasPrefix(line, featureIndent) && line[len(featureIndent)] != ' ' {
		key := strings.Fields(line)[0]
		if key == "source" {
			return tagSourceFeature
		}
		return tagFeatureKey
	}
	// Any other top-level keyword (DBLINK, PROJECT, DBSOURCE, ...)
	if line != "" && line[0] >= 'A' && line[0] <= 'Z' {
		return tagOtherSection
	}
	return tagNone
}

// Sectionize splits the text of one record into its named sections.
// It holds no state between calls. Missing REFERENCE and COMMENT sections
// are tolerated; a missing LOCUS, DEFINITION, ACCESSION, VERSION, ORGANISM
// or source feature is a FormatError.
func Sectionize(text string) (*Sections, error) {
	sec := &Sections{}
	s := stateStart

	// current points at the section receiving continuation lines.
	var current *string

	open := func(next state, dst *string, line string) {
		s = next
		current = dst
		if dst != nil {
			*dst = line
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if s == stateDone {
			break
		}

		switch classify(line, s) {
		case tagLocus:
			open(stateLocus, &sec.Locus, line)
		case tagDefinition:
			open(stateDefinition, &sec.Definition, line)
		case tagAccession:
			open(stateAccession, &sec.Accession, line)
		case tagVersion:
			open(stateVersion, &sec.Version, line)
		case tagKeywords:
			open(stateKeywords, &sec.Keywords, line)
		case tagSourceLine:
			open(stateSourceLine, &sec.SourceLine, line)
		case tagOrganism:
			open(stateOrganism, &sec.Organism, line)
		case tagReference:
			sec.References = append(sec.References, line)
			open(stateReference, &sec.References[len(sec.References)-1], line)
		case tagComment:
			open(stateComment, &sec.Comment, line)
		case tagFeatures:
			open(stateFeatures, nil, line)
		case tagSourceFeature:
			switch {
			case sec.Source == "":
				open(stateSource, &sec.Source, line)
			case sec.SecondSource == "":
				open(stateSecondSource, &sec.SecondSource, line)
			default:
				open(stateOtherFeature, nil, line)
			}
		case tagFeatureKey:
			open(stateOtherFeature, nil, line)
		case tagOtherSection:
			open(stateOtherSection, nil, line)
		case tagOrigin:
			open(stateDone, nil, line)
		default:
			if current != nil && s != stateStart {
				*current += "\n" + line
			}
		}
	}

	if err := sec.validate(); err != nil {
		return nil, err
	}
	return sec, nil
}

// validate checks that every required section was seen.
func (sec *Sections) validate() error {
	id := locusName(sec.Locus)
	required := []struct {
		name  string
		value string
	}{
		{"LOCUS", sec.Locus},
		{"DEFINITION", sec.Definition},
		{"ACCESSION", sec.Accession},
		{"VERSION", sec.Version},
		{"ORGANISM", sec.Organism},
		{"source feature", sec.Source},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &FormatError{ID: id, Section: r.name, Message: "missing required section"}
		}
	}
	return nil
}

// locusName returns the second token of a LOCUS line, or "".
func locusName(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}
