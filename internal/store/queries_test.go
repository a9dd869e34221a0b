package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture stores one allele with two cell lines, a synonym, a reference, a
// mutation and a sequence linked to both the allele and a marker.
func fixture(t *testing.T, s *Store) {
	t.Helper()
	b := NewBatch()
	b.Insert(
		Allele{Key: 10, Symbol: "Gt(IST10126)Tigm", Name: "gene trap IST10126", StrainKey: 3},
		Synonym{Key: 1, AlleleKey: 10, Synonym: "Gt(145B3)Old"},
		CellLine{Key: 20, Name: "IST10126", IsMutant: true},
		CellLine{Key: 21, Name: "IST10127", IsMutant: true},
		AlleleCellLine{Key: 1, AlleleKey: 10, CellLineKey: 20},
		AlleleCellLine{Key: 2, AlleleKey: 10, CellLineKey: 21},
		AlleleMutation{Key: 1, AlleleKey: 10, MutationKey: 77},
		ReferenceAssoc{Key: 1, AlleleKey: 10, RefID: "J:85004", AssocType: "Molecular"},
		ReferenceAssoc{Key: 2, AlleleKey: 10, RefID: "18799693", AssocType: "Original"},
		Sequence{Key: 30, AccID: "AB000096", Status: SequenceActive},
		SeqAlleleAssoc{Key: 1, SequenceKey: 30, AlleleKey: 10, QualifierKey: 5},
		SeqMarkerAssoc{Key: 1, SequenceKey: 30, MarkerSymbol: "Kras"},
		Accession{Key: 1, AccID: "IST10126", LogicalDBKey: 4, ObjectKey: 20, ObjectType: ObjectCellLine, Preferred: true},
		Accession{Key: 2, AccID: "IST10126BBR1", LogicalDBKey: 6, ObjectKey: 30, ObjectType: ObjectSequence},
		Derivation{Key: 1, Name: "TIGM pGTOTMpfs Lex3.13", ParentKey: 1, CreatorKey: 2, VectorKey: 3, VectorTypeKey: 4, DerivationTypeKey: 5},
	)
	require.NoError(t, s.Commit(context.Background(), b))
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			s := openInMemory(t, driver)
			fixture(t, s)

			keys, err := s.AccessionObjects(ctx, "IST10126", 4, ObjectCellLine)
			require.NoError(t, err)
			assert.Equal(t, []int64{20}, keys)

			keys, err = s.AccessionObjects(ctx, "IST10126", 5, ObjectCellLine)
			require.NoError(t, err)
			assert.Empty(t, keys)

			alleles, err := s.AllelesForCellLine(ctx, 20)
			require.NoError(t, err)
			require.Len(t, alleles, 1)
			assert.Equal(t, "Gt(IST10126)Tigm", alleles[0].Symbol)

			lines, err := s.CellLinesForAllele(ctx, 10)
			require.NoError(t, err)
			require.Len(t, lines, 2)
			assert.Equal(t, "IST10127", lines[1].Name)

			alleles, err = s.AllelesForSequence(ctx, 30)
			require.NoError(t, err)
			assert.Len(t, alleles, 1)

			markers, err := s.MarkersForSequence(ctx, 30)
			require.NoError(t, err)
			assert.Equal(t, []string{"Kras"}, markers)

			refs, err := s.ReferenceIDs(ctx, 10)
			require.NoError(t, err)
			assert.Equal(t, []string{"J:85004", "18799693"}, refs)

			muts, err := s.MutationKeys(ctx, 10)
			require.NoError(t, err)
			assert.Equal(t, []int64{77}, muts)

			accs, err := s.ObjectAccessions(ctx, 30, ObjectSequence, 6)
			require.NoError(t, err)
			require.Len(t, accs, 1)
			assert.Equal(t, "IST10126BBR1", accs[0].AccID)
			assert.False(t, accs[0].Preferred)

			key, err := s.FindDerivation(ctx, Derivation{ParentKey: 1, CreatorKey: 2, VectorKey: 3, VectorTypeKey: 4, DerivationTypeKey: 5})
			require.NoError(t, err)
			assert.Equal(t, int64(1), key)

			key, err = s.FindDerivation(ctx, Derivation{ParentKey: 1})
			require.NoError(t, err)
			assert.Zero(t, key)

			nomen, err := s.NomenSnapshot(ctx)
			require.NoError(t, err)
			require.Len(t, nomen, 2)
			var synonyms []string
			for _, n := range nomen {
				if n.IsSynonym {
					synonyms = append(synonyms, n.Text)
				}
			}
			assert.Equal(t, []string{"Gt(145B3)Old"}, synonyms)

			missing, err := s.CellLine(ctx, 999)
			require.NoError(t, err)
			assert.Nil(t, missing)

			gt, err := s.GeneTrap(ctx, 30)
			require.NoError(t, err)
			assert.Nil(t, gt)
		})
	}
}

const testSeed = `
vocabularies:
  Strain:
    - C57BL/6N
  Gene Trap Vector End:
    - upstream
    - downstream
    - Not Applicable
parentCellLines:
  - name: Lex3.13
    strain: C57BL/6N
  - name: E14TG2a
    strain: 129P2/OlaHsd
  - name: Lex3.13
    strain: C57BL/6N
`

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	s := openInMemory(t, DriverSQLite)

	seed, err := LoadSeed(strings.NewReader(testSeed))
	require.NoError(t, err)

	res, err := s.ApplySeed(ctx, seed, "gtload", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Terms) // 3 vector ends, 2 strains
	assert.Equal(t, 2, res.CellLines)

	parent, err := s.ParentCellLine(ctx, "E14TG2a")
	require.NoError(t, err)
	require.NotNil(t, parent)

	strains, err := s.Terms(ctx, VocabStrain)
	require.NoError(t, err)
	var strainKey int64
	for _, st := range strains {
		if st.Term == "129P2/OlaHsd" {
			strainKey = st.Key
		}
	}
	assert.Equal(t, strainKey, parent.StrainKey)

	res, err = s.ApplySeed(ctx, seed, "gtload", "2024-01-02")
	require.NoError(t, err)
	assert.Zero(t, res.Terms)
	assert.Zero(t, res.CellLines)
}

func TestLoadSeed_UnknownField(t *testing.T) {
	_, err := LoadSeed(strings.NewReader("terms: []\n"))
	assert.Error(t, err)
}

func TestSeedMerge(t *testing.T) {
	a := &Seed{Vocabularies: map[string][]string{VocabStrain: {"A"}}}
	a.Merge(&Seed{
		Vocabularies:    map[string][]string{VocabStrain: {"B"}, VocabVector: {"pGT1lxf"}},
		ParentCellLines: []ParentSeed{{Name: "E14"}},
	})
	assert.Equal(t, []string{"A", "B"}, a.Vocabularies[VocabStrain])
	assert.Equal(t, []string{"pGT1lxf"}, a.Vocabularies[VocabVector])
	assert.Len(t, a.ParentCellLines, 1)
}
