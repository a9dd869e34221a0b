package genbank

import (
	"strconv"
	"strings"
)

// MaxDefinitionLength is the stored length limit of a DEFINITION.
const MaxDefinitionLength = 255

// maxQualifierLines bounds the continuation lines read for one quoted
// qualifier value, so malformed input cannot loop forever.
const maxQualifierLines = 10

// stripTag removes a leading tag (e.g. "DEFINITION") and surrounding spaces.
func stripTag(line, tag string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimLeft(line, " "), tag))
}

// joinSection strips tag from the first line and joins all lines with a
// single space.
func joinSection(section, tag string) string {
	lines := strings.Split(section, "\n")
	parts := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == 0 {
			line = stripTag(line, tag)
		} else {
			line = strings.TrimSpace(line)
		}
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// ParseDefinition returns the DEFINITION text without its tag, truncated to
// MaxDefinitionLength characters.
func ParseDefinition(section string) string {
	def := joinSection(section, "DEFINITION")
	if r := []rune(def); len(r) > MaxDefinitionLength {
		def = string(r[:MaxDefinitionLength])
	}
	return def
}

// ParseAccession returns the preferred accession (first token) and every
// remaining token on the first and continuation lines as secondaries.
func ParseAccession(section string) (primary string, secondary []string, err error) {
	tokens := strings.Fields(joinSection(section, "ACCESSION"))
	if len(tokens) == 0 {
		return "", nil, &FormatError{Section: "ACCESSION", Message: "no accession id"}
	}
	return tokens[0], tokens[1:], nil
}

// ParseVersion returns the versioned accession ("AB000096.1") and the
// version number ("1").
func ParseVersion(section string) (versioned, number string, err error) {
	tokens := strings.Fields(joinSection(section, "VERSION"))
	if len(tokens) == 0 {
		return "", "", &FormatError{Section: "VERSION", Message: "no version"}
	}
	versioned = tokens[0]
	dot := strings.LastIndexByte(versioned, '.')
	if dot < 0 || dot == len(versioned)-1 {
		return "", "", &FormatError{ID: versioned, Section: "VERSION", Message: "no version number in " + versioned}
	}
	number = versioned[dot+1:]
	if _, err := strconv.Atoi(number); err != nil {
		return "", "", &FormatError{ID: versioned, Section: "VERSION", Message: "non-numeric version " + number}
	}
	return versioned, number, nil
}

// ParseKeywords splits the KEYWORDS section on ";" dropping the final ".".
func ParseKeywords(section string) []string {
	text := strings.TrimSuffix(joinSection(section, "KEYWORDS"), ".")
	var keywords []string
	for _, kw := range strings.Split(text, ";") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// ParseOrganism returns the organism name from the ORGANISM line; the
// lineage on continuation lines is ignored.
func ParseOrganism(section string) (string, error) {
	first, _, _ := strings.Cut(section, "\n")
	org := stripTag(first, "ORGANISM")
	if org == "" {
		return "", &FormatError{Section: "ORGANISM", Message: "empty organism"}
	}
	return org, nil
}

// ParseComment returns the COMMENT text with the tag and the twelve-column
// indent removed, one line per source line.
func ParseComment(section string) string {
	if section == "" {
		return ""
	}
	lines := strings.Split(section, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = stripTag(line, "COMMENT")
		} else {
			lines[i] = strings.TrimSpace(line)
		}
	}
	return strings.Join(lines, "\n")
}

// ParsePubMedID returns the PubMed identifier of one REFERENCE block, or ""
// when the block has no PUBMED line.
func ParsePubMedID(reference string) string {
	for _, line := range strings.Split(reference, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "PUBMED" {
			return fields[1]
		}
	}
	return ""
}

// Qualifiers maps source-feature qualifier names to values. A qualifier that
// occurs more than once has its values joined with "; ".
type Qualifiers map[string]string

// Get returns the value of qualifier name, or "".
func (q Qualifiers) Get(name string) string {
	return q[name]
}

// Has reports whether qualifier name was present.
func (q Qualifiers) Has(name string) bool {
	_, ok := q[name]
	return ok
}

func (q Qualifiers) add(name, value string) {
	if prev, ok := q[name]; ok && prev != "" {
		q[name] = prev + "; " + value
		return
	}
	q[name] = value
}

// ParseQualifiers parses the /name="value" lines of a source feature.
// Quoted values may span lines; a value still open after
// maxQualifierLines continuation lines is a FormatError.
func ParseQualifiers(section string) (Qualifiers, error) {
	q := make(Qualifiers)
	if section == "" {
		return q, nil
	}
	lines := strings.Split(section, "\n")

	// lines[0] is the feature key and location.
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "/") {
			continue
		}
		name, value, hasValue := strings.Cut(line[1:], "=")
		if !hasValue {
			q.add(name, "")
			continue
		}
		if !strings.HasPrefix(value, `"`) {
			q.add(name, value)
			continue
		}

		value = value[1:]
		closed := strings.HasSuffix(value, `"`)
		for extra := 0; !closed; extra++ {
			if extra == maxQualifierLines || i+1 >= len(lines) {
				return nil, &FormatError{Section: "source", Message: "unterminated /" + name + " qualifier"}
			}
			i++
			next := strings.TrimSpace(lines[i])
			value += " " + next
			closed = strings.HasSuffix(next, `"`)
		}
		q.add(name, strings.TrimSuffix(value, `"`))
	}
	return q, nil
}
