package alo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/gtload/internal/lookup"
	"github.com/inodb/gtload/internal/store"
)

// Store is the read side of the persistence sink plus key allocation.
type Store interface {
	NextKey(table string) int64
	AccessionObjects(ctx context.Context, accID string, ldbKey int64, objectType string) ([]int64, error)
	ObjectAccessions(ctx context.Context, objectKey int64, objectType string, ldbKey int64) ([]store.Accession, error)
	CellLine(ctx context.Context, key int64) (*store.CellLine, error)
	ParentCellLine(ctx context.Context, name string) (*store.CellLine, error)
	CellLinesForAllele(ctx context.Context, alleleKey int64) ([]store.CellLine, error)
	AllelesForCellLine(ctx context.Context, cellLineKey int64) ([]store.Allele, error)
	AllelesForSequence(ctx context.Context, sequenceKey int64) ([]store.Allele, error)
	MarkersForSequence(ctx context.Context, sequenceKey int64) ([]string, error)
	ReferenceIDs(ctx context.Context, alleleKey int64) ([]string, error)
	MutationKeys(ctx context.Context, alleleKey int64) ([]int64, error)
	GeneTrap(ctx context.Context, sequenceKey int64) (*store.GeneTrap, error)
	FindDerivation(ctx context.Context, d store.Derivation) (int64, error)
}

// Options configures a Processor.
type Options struct {
	CreatedBy string
	Now       func() time.Time
}

type accessionKey struct {
	id  string
	ldb int64
}

// Target is the sequence a record is reconciled against.
type Target struct {
	SequenceKey int64
	New         bool // inserted by the record's own batch
}

// Processor reconciles raw input bundles with the store. Every change is
// staged in the caller's batch; nothing is written until the caller commits.
type Processor struct {
	store  Store
	vocab  *lookup.Resolver
	run    *RunContext
	opts   Options
	logger *zap.Logger

	cellLines   *lookup.LazyCache[accessionKey, []int64]
	parents     *lookup.LazyCache[string, store.CellLine]
	derivations *lookup.LazyCache[store.Derivation, int64]
}

// NewProcessor creates a processor.
func NewProcessor(s Store, vocab *lookup.Resolver, run *RunContext, opts Options) *Processor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	p := &Processor{
		store:  s,
		vocab:  vocab,
		run:    run,
		opts:   opts,
		logger: zap.NewNop(),
	}
	p.cellLines = lookup.NewLazyCache(func(ctx context.Context, k accessionKey) ([]int64, bool, error) {
		keys, err := s.AccessionObjects(ctx, k.id, k.ldb, store.ObjectCellLine)
		return keys, len(keys) > 0, err
	})
	p.parents = lookup.NewLazyCache(func(ctx context.Context, name string) (store.CellLine, bool, error) {
		c, err := s.ParentCellLine(ctx, name)
		if err != nil || c == nil {
			return store.CellLine{}, false, err
		}
		return *c, true, nil
	})
	p.derivations = lookup.NewLazyCache(func(ctx context.Context, d store.Derivation) (int64, bool, error) {
		key, err := s.FindDerivation(ctx, d)
		return key, key != 0, err
	})
	return p
}

// SetLogger sets the debug logger.
func (p *Processor) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Run returns the run context.
func (p *Processor) Run() *RunContext {
	return p.run
}

func (p *Processor) today() string {
	return p.opts.Now().Format("2006-01-02")
}

// Process reconciles one bundle against target, staging changes in b.
//
// Data-quality problems come back as a RecordError (integrity violations,
// unresolvable terms) or as an Outcome of kind Conflict or Repeat; in both
// cases b must be discarded. Any other error is an infrastructure failure.
func (p *Processor) Process(ctx context.Context, in *RawInput, target Target, b *store.Batch) (Outcome, error) {
	if p.run.IsRepeat(in.SeqID, in.Sequence.Date) {
		return Outcome{Kind: Repeat, Reason: "sequence already processed in this run with an earlier date"}, nil
	}

	cl, err := in.CellLine()
	if err != nil {
		return Outcome{}, err
	}
	mcl, err := p.resolveCellLine(ctx, in, cl, b)
	if err != nil {
		return Outcome{}, err
	}

	allele, conflict, err := p.resolveAllele(ctx, in, mcl, b)
	if err != nil || conflict != nil {
		return outcomeOf(conflict, mcl), err
	}

	out := Outcome{
		Kind:        Updated,
		Notes:       allele.notes,
		AlleleKey:   allele.key,
		AlleleNew:   allele.new,
		Symbol:      allele.symbol,
		CellLineID:  mcl.id,
		SequenceKey: target.SequenceKey,
	}
	if allele.new {
		out.Kind = Created
	}

	conflict, err = p.associateSequence(ctx, in, target, allele, b)
	if err != nil || conflict != nil {
		return outcomeOf(conflict, mcl), err
	}

	notes, err := p.resolveGeneTrap(ctx, in, target, b)
	if err != nil {
		return Outcome{}, err
	}
	out.Notes = append(out.Notes, notes...)
	return out, nil
}

func outcomeOf(conflict *Outcome, mcl cellLineState) Outcome {
	if conflict == nil {
		return Outcome{}
	}
	conflict.CellLineID = mcl.id
	return *conflict
}

// Committed updates run state after the batch of a processed record has
// been committed.
func (p *Processor) Committed(in *RawInput, out Outcome) {
	p.run.MarkProcessed(in.SeqID, in.Sequence.Date)
	if out.AlleleNew {
		p.run.AddNomen(store.Nomen{AlleleKey: out.AlleleKey, Text: out.Symbol})
	}
}

func (p *Processor) resolve(ctx context.Context, vocab, term string) (int64, error) {
	return p.vocab.Resolve(ctx, vocab, term)
}

func conflictf(reason string, details ...string) *Outcome {
	return &Outcome{Kind: Conflict, Reason: reason, Details: details}
}

func notef(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
