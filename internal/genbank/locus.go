package genbank

import (
	"strconv"
	"strings"
	"time"
)

// LocusDateLayout is the date format used on LOCUS lines, e.g. 05-FEB-1999.
const LocusDateLayout = "02-Jan-2006"

// Locus holds the fields of a LOCUS line.
type Locus struct {
	Name         string
	Length       string
	MoleculeType string
	Topology     string
	Division     string
	Date         time.Time
}

// locusLayout gives half-open, zero-based column ranges of a LOCUS line.
type locusLayout struct {
	name, length, units, molecule, topology, division, date [2]int
}

// Current NCBI layout (release 138 onwards).
var currentLayout = locusLayout{
	name:     [2]int{12, 28},
	length:   [2]int{29, 40},
	units:    [2]int{40, 43},
	molecule: [2]int{44, 53},
	topology: [2]int{55, 63},
	division: [2]int{64, 67},
	date:     [2]int{68, 79},
}

// Pre-2003 layout still found in legacy dbGSS dumps.
var legacyLayout = locusLayout{
	name:     [2]int{12, 22},
	length:   [2]int{22, 29},
	units:    [2]int{29, 32},
	molecule: [2]int{33, 40},
	topology: [2]int{42, 52},
	division: [2]int{52, 55},
	date:     [2]int{62, 73},
}

// ParseLocus extracts the LOCUS fields of the first line of a LOCUS section.
// The current column layout is probed first, then the legacy layout, and
// finally a whitespace-token parse. Protein lines (units "aa") report
// molecule type "AA".
func ParseLocus(line string) (Locus, error) {
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if l, ok := parseLocusColumns(line, currentLayout); ok {
		return l, nil
	}
	if l, ok := parseLocusColumns(line, legacyLayout); ok {
		return l, nil
	}
	return parseLocusTokens(line)
}

// col returns the trimmed column range of line, or "" when out of range.
func col(line string, r [2]int) string {
	if r[0] >= len(line) {
		return ""
	}
	end := r[1]
	if end > len(line) {
		end = len(line)
	}
	return strings.TrimSpace(line[r[0]:end])
}

func parseLocusColumns(line string, layout locusLayout) (Locus, bool) {
	units := col(line, layout.units)
	if units != "bp" && units != "aa" {
		return Locus{}, false
	}
	length := col(line, layout.length)
	if _, err := strconv.Atoi(length); err != nil {
		return Locus{}, false
	}
	date, err := time.Parse(LocusDateLayout, col(line, layout.date))
	if err != nil {
		return Locus{}, false
	}

	l := Locus{
		Name:     col(line, layout.name),
		Length:   length,
		Topology: col(line, layout.topology),
		Division: col(line, layout.division),
		Date:     date,
	}
	if units == "aa" {
		l.MoleculeType = "AA"
	} else {
		l.MoleculeType = stripStrandedness(col(line, layout.molecule))
	}
	if l.Name == "" || l.Division == "" {
		return Locus{}, false
	}
	return l, true
}

func parseLocusTokens(line string) (Locus, error) {
	fields := strings.Fields(line)
	if len(fields) > 0 && fields[0] == "LOCUS" {
		fields = fields[1:]
	}
	bad := func(msg string) (Locus, error) {
		id := ""
		if len(fields) > 0 {
			id = fields[0]
		}
		return Locus{}, &FormatError{ID: id, Section: "LOCUS", Message: msg}
	}
	if len(fields) < 5 {
		return bad("too few fields: " + strings.TrimSpace(line))
	}
	if _, err := strconv.Atoi(fields[1]); err != nil {
		return bad("invalid length " + fields[1])
	}
	date, err := time.Parse(LocusDateLayout, fields[len(fields)-1])
	if err != nil {
		return bad("invalid date " + fields[len(fields)-1])
	}

	l := Locus{
		Name:     fields[0],
		Length:   fields[1],
		Division: fields[len(fields)-2],
		Date:     date,
	}
	switch fields[2] {
	case "aa":
		l.MoleculeType = "AA"
		if len(fields) == 6 {
			l.Topology = fields[3]
		}
	case "bp":
		if len(fields) < 6 {
			return bad("missing molecule type")
		}
		l.MoleculeType = stripStrandedness(fields[3])
		if len(fields) == 7 {
			l.Topology = fields[4]
		}
	default:
		return bad("unknown length units " + fields[2])
	}
	return l, nil
}

func stripStrandedness(mol string) string {
	for _, p := range []string{"ss-", "ds-", "ms-"} {
		if strings.HasPrefix(mol, p) {
			return strings.TrimPrefix(mol, p)
		}
	}
	return mol
}
