package alo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inodb/gtload/internal/lookup"
	"github.com/inodb/gtload/internal/seqevent"
	"github.com/inodb/gtload/internal/store"
)

var (
	loadDay  = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	seqDay   = time.Date(1999, time.February, 5, 0, 0, 0, 0, time.UTC)
	tigmName = "Texas A&M Institute for Genomic Medicine"
)

var testSeed = &store.Seed{
	Vocabularies: map[string][]string{
		store.VocabLogicalDB:      {"GenBank", "TIGM Cell Line", "Gene Trap Sequence Tag"},
		store.VocabStrain:         {"C57BL/6N"},
		store.VocabAlleleType:     {"Gene trapped"},
		store.VocabAlleleStatus:   {"Approved", "Reserved"},
		store.VocabInheritance:    {"Not Applicable"},
		store.VocabMutation:       {"Insertion"},
		store.VocabSeqTagMethod:   {"Inverse PCR", "5' RACE"},
		store.VocabVectorEnd:      {"upstream", "downstream", "Not Applicable"},
		store.VocabReverseComp:    {"yes", "no"},
		store.VocabCreator:        {"TIGM"},
		store.VocabVector:         {"pGTOTMpfs", "Not Specified"},
		store.VocabVectorType:     {"Gene trap"},
		store.VocabDerivationType: {"Gene trapped"},
		store.VocabAssocQualifier: {"Not Specified"},
	},
	ParentCellLines: []store.ParentSeed{{Name: "Lex3.13", Strain: "C57BL/6N"}},
}

// env wires a processor to an in-memory SQLite store.
type env struct {
	t     *testing.T
	ctx   context.Context
	store *store.Store
	vocab *lookup.Resolver
	det   *seqevent.Detector
	p     *Processor
}

// newEnv seeds the store, lets fixture add entities, then builds the
// processor so the nomenclature snapshot includes the fixture.
func newEnv(t *testing.T, fixture func(e *env) []store.Entity) *env {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(store.DriverSQLite, "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.ApplySeed(ctx, testSeed, "test", "2024-01-01")
	require.NoError(t, err)

	e := &env{t: t, ctx: ctx, store: s, vocab: lookup.NewResolver(s), det: seqevent.NewDetector(s)}
	if fixture != nil {
		b := store.NewBatch()
		b.Insert(fixture(e)...)
		require.NoError(t, s.Commit(ctx, b))
	}

	run, err := NewRunContext(ctx, s)
	require.NoError(t, err)
	e.p = NewProcessor(s, e.vocab, run, Options{CreatedBy: "test", Now: func() time.Time { return loadDay }})
	return e
}

func (e *env) key(vocab, term string) int64 {
	e.t.Helper()
	k, err := e.vocab.Resolve(e.ctx, vocab, term)
	require.NoError(e.t, err)
	return k
}

// load runs one bundle the way the record loop does.
func (e *env) load(in *RawInput) (Outcome, error) {
	ev, err := e.det.Detect(e.ctx, in.SeqID, in.Sequence.Date)
	if err != nil {
		return Outcome{}, err
	}
	if ev.Kind == seqevent.NonEvent {
		return Outcome{Kind: Skipped, Reason: "non-event"}, nil
	}
	b := store.NewBatch()
	target, err := e.p.StageSequence(e.ctx, in, ev, b)
	if err != nil {
		return Outcome{}, err
	}
	out, err := e.p.Process(e.ctx, in, target, b)
	if err != nil || !out.Kind.Commits() {
		return out, err
	}
	if err := e.store.Commit(e.ctx, b); err != nil {
		return out, err
	}
	e.p.Committed(in, out)
	e.det.MarkSeen(in.SeqID, target.SequenceKey)
	return out, nil
}

func (e *env) count(table string) int {
	e.t.Helper()
	n, err := e.store.Count(e.ctx, table)
	require.NoError(e.t, err)
	return n
}

func tigmInput(seqID, mclID string, date time.Time) *RawInput {
	tag := mclID + "BBR1"
	return &RawInput{
		SeqID:   seqID,
		RawText: "LOCUS       " + seqID + "\n",
		Creator: "TIGM",
		Allele: AlleleRaw{
			Symbol:          "Gt(" + mclID + ")Tigm",
			Name:            "gene trap " + mclID + ", " + tigmName,
			Type:            "Gene trapped",
			Status:          "Approved",
			InheritanceMode: "Not Applicable",
		},
		CellLines: []CellLineRaw{{
			ID:             mclID,
			Creator:        "TIGM",
			LabName:        tigmName,
			ParentCellLine: "Lex3.13",
			Vector:         "pGTOTMpfs",
			VectorType:     "Gene trap",
			DerivationType: "Gene trapped",
		}},
		Accessions: []AccessionRaw{
			{ID: mclID, LogicalDB: "TIGM Cell Line", ObjectType: store.ObjectCellLine},
			{ID: tag, LogicalDB: "Gene Trap Sequence Tag", ObjectType: store.ObjectSequence},
		},
		Mutations: []string{"Insertion"},
		References: []ReferenceRaw{
			{ID: "J:85004", Type: RefLoad},
			{ID: "18799693", Type: RefOriginal},
		},
		SeqAssoc: SeqAssocRaw{SeqID: seqID, Qualifier: "Not Specified"},
		GeneTrap: GeneTrapRaw{
			SeqTagID:     tag,
			Method:       "Inverse PCR",
			VectorEnd:    "downstream",
			ReverseComp:  "yes",
			GoodHitCount: 1,
		},
		Sequence: SequenceRaw{
			AccID:        seqID,
			Secondary:    []string{"AB000001"},
			Version:      "1",
			Description:  tag + " TIGM Gene Trap Library",
			Length:       3133,
			Division:     "GSS",
			MoleculeType: "DNA",
			Organism:     "Mus musculus",
			Date:         date,
			Provider:     "dbGSS Gene Trap",
			LogicalDB:    "GenBank",
		},
	}
}
