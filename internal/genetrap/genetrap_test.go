package genetrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gtload/internal/alo"
	"github.com/inodb/gtload/internal/genbank"
	"github.com/inodb/gtload/internal/store"
)

func findTestFile(t *testing.T, name string) string {
	t.Helper()

	paths := []string{
		filepath.Join("testdata", name),
		filepath.Join("..", "..", "testdata", name),
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	t.Fatalf("Test file not found: %s", name)
	return ""
}

func parseTestRecord(t *testing.T, name string, edits ...string) *genbank.Record {
	t.Helper()
	data, err := os.ReadFile(findTestFile(t, name))
	require.NoError(t, err)
	text := string(data)
	for i := 0; i+1 < len(edits); i += 2 {
		text = strings.ReplaceAll(text, edits[i], edits[i+1])
	}
	rec, err := genbank.Parse(text)
	require.NoError(t, err)
	return rec
}

type fakeHits map[string]int64

func (f fakeHits) Count(seqID string) int64 { return f[seqID] }

func newTestInterpreter(t *testing.T, hits HitCounts) *Interpreter {
	t.Helper()
	ip, err := NewInterpreter(DefaultConfig(), hits)
	require.NoError(t, err)
	return ip
}

func TestSplitTag(t *testing.T) {
	tests := []struct {
		creator  Creator
		tag      string
		method   string
		cellLine string
		end      string
		ok       bool
	}{
		{TIGM, "IST10126BBR1", "", "IST10126", Downstream, true},
		{TIGM, "IST10126HMF1", "", "IST10126", Upstream, true},
		{TIGM, "IST10126BBF2", "", "IST10126", Upstream, true},
		{TIGM, "IST10126HMR1", "", "IST10126", Downstream, true},
		{TIGM, "ABCHMR1BBF", "", "ABC", Downstream, true},
		{TIGM, "IST10126XYZ1", "", "", "", false},
		{TIGM, "BBR1", "", "", "", false},
		{GGTC, "3SP126F08", "", "126F08", Downstream, true},
		{GGTC, "5SP1A12", "", "1A12", Upstream, true},
		{GGTC, "XSP1A12", "", "", "", false},
		{GGTC, "3SP", "", "", "", false},
		{EUCOMM, "EUCE0163h02.q1ka5SPK", "", "EUCE0163h02", Upstream, true},
		{EUCOMM, "EUCE0163h02.q1ka3PRK", "", "EUCE0163h02", Downstream, true},
		{EUCOMM, "EUCE0163h02.q1kaSPK", "", "", "", false},
		{EUCOMM, "EUCE0163h02", "", "", "", false},
		{TIGEM, "5D10_5RC", "", "5D10", Upstream, true},
		{TIGEM, "5D10_3rc", "", "5D10", Downstream, true},
		{TIGEM, "5D10_XRC", "", "", "", false},
		{BayGenomics, "RRA001", "5' RACE", "RRA001", Upstream, true},
		{Lexicon, "OST12345", "3' RACE", "OST12345", Downstream, true},
		{CMHD, "CMHD-GT_1", "Inverse PCR", "CMHD-GT_1", VectorEndNotAppl, true},
		{SIGTR, "AA0001", "", "AA0001", "", false},
		{UnknownCreator, "AA0001", "5' RACE", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.creator.String()+"/"+tt.tag, func(t *testing.T) {
			cellLine, end, ok := tt.creator.SplitTag(tt.tag, tt.method)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.cellLine, cellLine)
				assert.Equal(t, tt.end, end)
			}
		})
	}
}

func TestReverseComplement(t *testing.T) {
	assert.Equal(t, ReverseCompYes, TIGM.ReverseComplement(Downstream))
	assert.Equal(t, ReverseCompNo, TIGM.ReverseComplement(Upstream))
	assert.Equal(t, ReverseCompNo, BayGenomics.ReverseComplement(Downstream))
}

func TestDetectCreator(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    Creator
	}{
		{"tigm", "Contact: Richards JE\nTexas A&M Institute for Genomic Medicine\nCollege Station", TIGM},
		{"eucomm", "Contact: von Melchner H\nEuropean Conditional Mouse Mutagenesis Program (EUCOMM)", EUCOMM},
		{"ggtc", "Contact: Wurst W\nGerman Gene Trap Consortium", GGTC},
		{"case folded", "Contact: Stryke D\nBAYGENOMICS", BayGenomics},
		{"contact line itself", "Contact: Sanger Institute Gene Trap Resource", SIGTR},
		{"lexicon literal", "OmniBank sequence tag from Lexicon Genetics", Lexicon},
		{"beyond next line", "Contact: Smith J\nSomewhere\nBayGenomics", UnknownCreator},
		{"no contact", "Sequence tag obtained by 5' RACE.", UnknownCreator},
		{"empty", "", UnknownCreator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCreator(tt.comment))
		})
	}
}

func TestCreators(t *testing.T) {
	creators := Creators()
	require.Len(t, creators, 15)

	codes := make(map[string]bool)
	for _, c := range creators {
		assert.NotEmpty(t, c.LabCode(), c.String())
		assert.NotEmpty(t, c.LabName(), c.String())
		assert.False(t, codes[c.LabCode()], "lab code %s is not unique", c.LabCode())
		codes[c.LabCode()] = true
	}

	c, ok := ParseCreator("tigm")
	assert.True(t, ok)
	assert.Equal(t, TIGM, c)
	assert.Equal(t, "TIGM Cell Line", c.CellLineLogicalDB())
	assert.Equal(t, "Hmgu", EUCOMM.LabCode())

	_, ok = ParseCreator("Unknown")
	assert.False(t, ok)
	assert.Equal(t, "Unknown", Creator(99).String())
}

func TestParseMethods(t *testing.T) {
	m, err := ParseMethods(DefaultConfig().Methods)
	require.NoError(t, err)

	got, ok := m.Match("Flanking sequence obtained by INVERSE PCR.")
	assert.True(t, ok)
	assert.Equal(t, "Inverse PCR", got)

	got, ok = m.Match("q1ka5SPK")
	assert.True(t, ok)
	assert.Equal(t, "Splinkerette", got)

	_, ok = m.Match("no method here")
	assert.False(t, ok)

	assert.Equal(t, []string{"5' RACE", "3' RACE", "Inverse PCR", "Splinkerette", "Plasmid Rescue", "Genomic PCR"}, m.Terms())

	m, err = ParseMethods("pcr=PCR, inverse pcr=Inverse PCR")
	require.NoError(t, err)
	got, _ = m.Match("inverse pcr")
	assert.Equal(t, "PCR", got, "first configured keyword wins")

	for _, bad := range []string{"", " , ", "race", "=RACE", "race="} {
		_, err := ParseMethods(bad)
		assert.Error(t, err, bad)
	}
}

func TestInterpret_TIGM(t *testing.T) {
	ip := newTestInterpreter(t, fakeHits{"AB000096": 3})
	in, err := ip.Interpret(parseTestRecord(t, "tigm.gb"))
	require.NoError(t, err)

	assert.Equal(t, "AB000096", in.SeqID)
	assert.Equal(t, "TIGM", in.Creator)
	assert.True(t, strings.HasPrefix(in.RawText, "LOCUS       AB000096"))
	assert.Empty(t, in.Notes)

	assert.Equal(t, alo.AlleleRaw{
		Symbol:          "Gt(IST10126)Tigm",
		Name:            "gene trap IST10126, Texas A&M Institute for Genomic Medicine",
		Type:            "Gene trapped",
		Status:          "Approved",
		InheritanceMode: "Not Applicable",
	}, in.Allele)

	cl, err := in.CellLine()
	require.NoError(t, err)
	assert.Equal(t, "IST10126", cl.ID)
	assert.Equal(t, "Lex3.13", cl.ParentCellLine)
	assert.Equal(t, "pGTOTMpfs", cl.Vector)
	assert.Equal(t, "Texas A&M Institute for Genomic Medicine pGTOTMpfs Lex3.13", cl.DerivationName())

	assert.Equal(t, []alo.AccessionRaw{
		{ID: "IST10126", LogicalDB: "TIGM Cell Line", ObjectType: store.ObjectCellLine},
		{ID: "IST10126BBR1", LogicalDB: SeqTagLogicalDB, ObjectType: store.ObjectSequence},
	}, in.Accessions)

	assert.Equal(t, alo.GeneTrapRaw{
		SeqTagID:     "IST10126BBR1",
		Method:       "Inverse PCR",
		VectorEnd:    Downstream,
		ReverseComp:  ReverseCompYes,
		GoodHitCount: 3,
	}, in.GeneTrap)

	seq := in.Sequence
	assert.Equal(t, []string{"AB000001", "AB000002", "AB000003"}, seq.Secondary)
	assert.Equal(t, "1", seq.Version)
	assert.Equal(t, int64(3133), seq.Length)
	assert.Equal(t, "ROD", seq.Division)
	assert.Equal(t, "DNA", seq.MoleculeType)
	assert.Equal(t, "Mus musculus", seq.Organism)
	assert.Equal(t, time.Date(1999, time.February, 5, 0, 0, 0, 0, time.UTC), seq.Date)
	assert.Equal(t, "dbGSS Gene Trap", seq.Provider)
	assert.Equal(t, SequenceLogicalDB, seq.LogicalDB)

	assert.Equal(t, []string{"Insertion"}, in.Mutations)
	assert.Equal(t, []alo.ReferenceRaw{
		{ID: "J:85004", Type: alo.RefLoad},
		{ID: "18799693", Type: alo.RefOriginal},
	}, in.References)
	assert.Equal(t, alo.SeqAssocRaw{SeqID: "AB000096", Qualifier: NotSpecified}, in.SeqAssoc)
}

func TestInterpret_Creators(t *testing.T) {
	tests := []struct {
		file     string
		creator  string
		tag      string
		cellLine string
		end      string
		method   string
		vector   string
		parent   string
		symbol   string
	}{
		{"ggtc.gb", "GGTC", "3SP126F08", "126F08", Downstream, "Splinkerette", "pT1betageo", "TBV-2", "Gt(126F08)Ggtc"},
		{"eucomm.gb", "EUCOMM", "EUCE0163h02.q1ka5SPK", "EUCE0163h02", Upstream, "Splinkerette", "rsFlipROSAbetageo", "E14TG2a", "Gt(EUCE0163h02)Hmgu"},
		{"baygenomics.gb", "BayGenomics", "RRA001", "RRA001", Upstream, "5' RACE", "pGT1lxf", "E14Tg2a.4", "Gt(RRA001)Byg"},
		{"lexicon.gb", "Lexicon", "OST12345", "OST12345", Downstream, "3' RACE", "VICTR48", "Lex-1", "Gt(OST12345)Lex"},
	}
	ip := newTestInterpreter(t, nil)
	for _, tt := range tests {
		t.Run(tt.creator, func(t *testing.T) {
			in, err := ip.Interpret(parseTestRecord(t, tt.file))
			require.NoError(t, err)

			assert.Equal(t, tt.creator, in.Creator)
			assert.Equal(t, tt.tag, in.GeneTrap.SeqTagID)
			assert.Equal(t, tt.end, in.GeneTrap.VectorEnd)
			assert.Equal(t, tt.method, in.GeneTrap.Method)
			assert.Zero(t, in.GeneTrap.GoodHitCount)
			assert.Equal(t, tt.symbol, in.Allele.Symbol)

			cl, err := in.CellLine()
			require.NoError(t, err)
			assert.Equal(t, tt.cellLine, cl.ID)
			assert.Equal(t, tt.vector, cl.Vector)
			assert.Equal(t, tt.parent, cl.ParentCellLine)
			assert.Equal(t, tt.creator+" Cell Line", in.Accessions[0].LogicalDB)
		})
	}
}

func TestInterpret_Mixed(t *testing.T) {
	f, err := os.Open(findTestFile(t, "mixed.gb"))
	require.NoError(t, err)
	defer f.Close()

	ip := newTestInterpreter(t, nil)
	r := genbank.NewReader(f)
	var creators []string
	for {
		raw, err := r.Next()
		require.NoError(t, err)
		if raw == nil {
			break
		}
		rec, err := genbank.Parse(raw.Text)
		require.NoError(t, err)
		in, err := ip.Interpret(rec)
		require.NoError(t, err)
		creators = append(creators, in.Creator)
	}
	assert.Equal(t, []string{"TIGM", "GGTC", "EUCOMM", "BayGenomics", "Lexicon"}, creators)
}

func TestInterpret_Errors(t *testing.T) {
	ip := newTestInterpreter(t, nil)

	t.Run("unknown creator", func(t *testing.T) {
		rec := parseTestRecord(t, "tigm.gb", "Texas A&M Institute for Genomic Medicine", "Somewhere Else")
		_, err := ip.Interpret(rec)
		var ue *UnknownCreatorError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "AB000096 (COMMENT)", ue.Record())
	})

	t.Run("no vector end", func(t *testing.T) {
		rec := parseTestRecord(t, "tigm.gb", "IST10126BBR1", "IST10126XYZ1")
		_, err := ip.Interpret(rec)
		var ve *NoVectorEndError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "IST10126XYZ1", ve.TagID)
		assert.Equal(t, "AB000096 (sequence tag IST10126XYZ1)", ve.Record())
	})

	t.Run("no method for method-derived vector end", func(t *testing.T) {
		rec := parseTestRecord(t, "baygenomics.gb", "5' RACE", "an unknown protocol")
		_, err := ip.Interpret(rec)
		var ve *NoVectorEndError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, BayGenomics, ve.Creator)
	})

	t.Run("no clone", func(t *testing.T) {
		rec := parseTestRecord(t, "lexicon.gb", `/clone="OST12345"`, `/clone=""`)
		_, err := ip.Interpret(rec)
		var fe *genbank.FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "SOURCE", fe.Section)
	})
}

func TestInterpret_Notes(t *testing.T) {
	ip := newTestInterpreter(t, nil)
	rec := parseTestRecord(t, "tigm.gb",
		"Vector: pGTOTMpfs; ", "",
		"Inverse PCR", "an unknown protocol",
		`/cell_line="Lex3.13"`, `/cell_line=""`,
	)
	in, err := ip.Interpret(rec)
	require.NoError(t, err)

	assert.Equal(t, "", in.GeneTrap.Method)
	assert.Equal(t, Downstream, in.GeneTrap.VectorEnd, "marker split does not need a method")
	cl, _ := in.CellLine()
	assert.Equal(t, NotSpecified, cl.Vector)
	assert.Equal(t, NotSpecified, cl.ParentCellLine)
	assert.Equal(t, []string{
		"no sequence tag method found for IST10126BBR1",
		"vector not specified for cell line IST10126",
	}, in.Notes)
}

func TestNewInterpreter_BadMethods(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Methods = "nonsense"
	_, err := NewInterpreter(cfg, nil)
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	seed := newTestInterpreter(t, nil).Seed()

	ldbs := seed.Vocabularies[store.VocabLogicalDB]
	assert.Contains(t, ldbs, SequenceLogicalDB)
	assert.Contains(t, ldbs, SeqTagLogicalDB)
	assert.Contains(t, ldbs, "EUCOMM Cell Line")
	assert.Len(t, seed.Vocabularies[store.VocabCreator], 15)
	assert.Equal(t, []string{Upstream, Downstream, VectorEndNotAppl}, seed.Vocabularies[store.VocabVectorEnd])
	assert.Equal(t, []store.ParentSeed{{Name: NotSpecified, Strain: NotSpecified}}, seed.ParentCellLines)
}
