package genetrap

import (
	"fmt"
	"strings"
)

// Vector end and reverse complement terms.
const (
	Upstream         = "upstream"
	Downstream       = "downstream"
	VectorEndNotAppl = "Not Applicable"
	ReverseCompYes   = "yes"
	ReverseCompNo    = "no"
)

// NotSpecified is the sentinel for a vector or parent cell line the record
// does not name.
const NotSpecified = "Not Specified"

const (
	vectorMarker     = "Vector:"
	methodRACE5Prime = "5' RACE"
	methodRACE3Prime = "3' RACE"
)

// NoVectorEndError reports a sequence tag ID whose vector end cannot be
// determined.
type NoVectorEndError struct {
	SeqID   string
	TagID   string
	Creator Creator
}

func (e *NoVectorEndError) Error() string {
	return fmt.Sprintf("no vector end in %s sequence tag %s of %s", e.Creator, e.TagID, e.SeqID)
}

// Record returns the human-readable record context for curation reports.
func (e *NoVectorEndError) Record() string {
	return e.SeqID + " (sequence tag " + e.TagID + ")"
}

// splitFunc derives the cell line ID and vector end from a sequence tag ID.
// method is the resolved sequence tag method, or "" when none matched.
// ok is false when the tag carries no recognizable vector end.
type splitFunc func(tag, method string) (cellLine, end string, ok bool)

// splitWhole uses the whole tag as the cell line ID and takes the vector
// end from the method.
func splitWhole(tag, method string) (string, string, bool) {
	switch method {
	case "":
		return tag, "", false
	case methodRACE5Prime:
		return tag, Upstream, true
	case methodRACE3Prime:
		return tag, Downstream, true
	default:
		return tag, VectorEndNotAppl, true
	}
}

var tigmMarkers = []struct {
	marker, end string
}{
	{"HMF", Upstream},
	{"BBF", Upstream},
	{"HMR", Downstream},
	{"BBR", Downstream},
}

// splitMarker cuts the tag at the earliest vector end marker, e.g.
// IST10126BBR1 -> IST10126, downstream.
func splitMarker(tag, _ string) (string, string, bool) {
	at, end := -1, ""
	for _, m := range tigmMarkers {
		if i := strings.Index(tag, m.marker); i > 0 && (at < 0 || i < at) {
			at, end = i, m.end
		}
	}
	if at < 0 {
		return "", "", false
	}
	return tag[:at], end, true
}

// splitOffset strips a three character prefix whose first character is the
// vector end, e.g. 3SP126F08 -> 126F08, downstream.
func splitOffset(tag, _ string) (string, string, bool) {
	if len(tag) <= 3 {
		return "", "", false
	}
	switch tag[0] {
	case '5':
		return tag[3:], Upstream, true
	case '3':
		return tag[3:], Downstream, true
	}
	return "", "", false
}

// splitDot takes the cell line ID before the first dot and the vector end
// from the suffix, e.g. EUCE0163h02.q1ka5SPK -> EUCE0163h02, upstream.
func splitDot(tag, _ string) (string, string, bool) {
	cellLine, suffix, ok := strings.Cut(tag, ".")
	if !ok || cellLine == "" {
		return "", "", false
	}
	suffix = strings.ToUpper(suffix)
	switch {
	case strings.Contains(suffix, "5SP"), strings.Contains(suffix, "5PR"):
		return cellLine, Upstream, true
	case strings.Contains(suffix, "3SP"), strings.Contains(suffix, "3PR"):
		return cellLine, Downstream, true
	}
	return "", "", false
}

// splitSuffix matches the last four characters of the tag, e.g.
// 5D10_3RC -> 5D10, downstream.
func splitSuffix(tag, _ string) (string, string, bool) {
	if len(tag) <= 4 {
		return "", "", false
	}
	cellLine, suffix := tag[:len(tag)-4], strings.ToUpper(tag[len(tag)-4:])
	switch suffix {
	case "_5RC":
		return cellLine, Upstream, true
	case "_3RC":
		return cellLine, Downstream, true
	}
	return "", "", false
}

// SplitTag derives the cell line ID and vector end of a sequence tag for
// creator c.
func (c Creator) SplitTag(tag, method string) (cellLine, end string, ok bool) {
	split := c.profile().split
	if split == nil {
		return "", "", false
	}
	return split(tag, method)
}

// ReverseComplement returns the reverse complement term for a tag of
// creator c read from vector end end.
func (c Creator) ReverseComplement(end string) string {
	if c.profile().reverseDownstream && end == Downstream {
		return ReverseCompYes
	}
	return ReverseCompNo
}
