package genbank

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefinition_Truncates(t *testing.T) {
	long := "DEFINITION  " + strings.Repeat("a", 200) + "\n            " + strings.Repeat("b", 100)

	def := ParseDefinition(long)
	assert.Len(t, def, MaxDefinitionLength)
	assert.True(t, strings.HasPrefix(def, "aaa"))
	assert.False(t, strings.HasPrefix(def, "DEFINITION"))
}

func TestParseAccession(t *testing.T) {
	primary, secondary, err := ParseAccession("ACCESSION   AB000096 AB000001 AB000002\n            AB000003")
	require.NoError(t, err)
	assert.Equal(t, "AB000096", primary)
	assert.Equal(t, []string{"AB000001", "AB000002", "AB000003"}, secondary)

	primary, secondary, err = ParseAccession("ACCESSION   BZ300001")
	require.NoError(t, err)
	assert.Equal(t, "BZ300001", primary)
	assert.Empty(t, secondary)

	_, _, err = ParseAccession("ACCESSION   ")
	assert.Error(t, err)
}

func TestParseVersion(t *testing.T) {
	versioned, number, err := ParseVersion("VERSION     AB000096.1  GI:2224582")
	require.NoError(t, err)
	assert.Equal(t, "AB000096.1", versioned)
	assert.Equal(t, "1", number)

	for _, bad := range []string{"VERSION", "VERSION     AB000096", "VERSION     AB000096.", "VERSION     AB000096.x"} {
		_, _, err := ParseVersion(bad)
		var fe *FormatError
		assert.ErrorAs(t, err, &fe, bad)
	}
}

func TestParseKeywords(t *testing.T) {
	assert.Equal(t, []string{"GSS", "gene trap"}, ParseKeywords("KEYWORDS    GSS; gene trap."))
	assert.Nil(t, ParseKeywords("KEYWORDS    ."))
}

func TestParseOrganism(t *testing.T) {
	org, err := ParseOrganism("  ORGANISM  Mus musculus\n            Eukaryota; Metazoa.")
	require.NoError(t, err)
	assert.Equal(t, "Mus musculus", org)

	_, err = ParseOrganism("  ORGANISM")
	assert.Error(t, err)
}

func TestParsePubMedID(t *testing.T) {
	ref := "REFERENCE   1  (bases 1 to 3133)\n  AUTHORS   Hansen,G.M.\n   PUBMED   18799693"
	assert.Equal(t, "18799693", ParsePubMedID(ref))
	assert.Equal(t, "", ParsePubMedID("REFERENCE   2\n  TITLE     Direct Submission"))
}

func TestParseComment(t *testing.T) {
	c := ParseComment("COMMENT     Contact: Wurst W\n            German Gene Trap Consortium")
	assert.Equal(t, "Contact: Wurst W\nGerman Gene Trap Consortium", c)
	assert.Equal(t, "", ParseComment(""))
}

func TestParseQualifiers(t *testing.T) {
	q := "     source          1..3133\n" +
		`                     /organism="Mus musculus"` + "\n" +
		`                     /note="Vector: pGTOTMpfs; gene trap cell line IST10126, flanking` + "\n" +
		`                     sequence downstream of the insertion"` + "\n" +
		`                     /note="second note"` + "\n" +
		`                     /environmental_sample` + "\n" +
		`                     /transl_table=11`

	quals, err := ParseQualifiers(q)
	require.NoError(t, err)

	assert.Equal(t, "Mus musculus", quals.Get("organism"))
	assert.Equal(t, "Vector: pGTOTMpfs; gene trap cell line IST10126, flanking sequence downstream of the insertion; second note", quals.Get("note"))
	assert.True(t, quals.Has("environmental_sample"))
	assert.Equal(t, "11", quals.Get("transl_table"))
	assert.False(t, quals.Has("clone"))
}

func TestParseQualifiers_Unterminated(t *testing.T) {
	lines := []string{"     source          1..10", `                     /note="never closed`}
	for i := 0; i < 12; i++ {
		lines = append(lines, "                     more text")
	}

	_, err := ParseQualifiers(strings.Join(lines, "\n"))
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Message, "unterminated /note")
}

func TestParseQualifiers_EmptyQuoted(t *testing.T) {
	quals, err := ParseQualifiers("     source          1..10\n                     /note=\"\"")
	require.NoError(t, err)
	assert.Equal(t, "", quals.Get("note"))
	assert.True(t, quals.Has("note"))
}
