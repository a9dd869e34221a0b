// Package load runs the per-record loop of a gene-trap load: records are
// parsed and interpreted in parallel, then reconciled and committed one at a
// time in input order.
package load

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/gtload/internal/alo"
	"github.com/inodb/gtload/internal/genbank"
	"github.com/inodb/gtload/internal/genetrap"
	"github.com/inodb/gtload/internal/input"
	"github.com/inodb/gtload/internal/lookup"
	"github.com/inodb/gtload/internal/metrics"
	"github.com/inodb/gtload/internal/output"
	"github.com/inodb/gtload/internal/seqevent"
	"github.com/inodb/gtload/internal/store"
)

// Options configures a Loader.
type Options struct {
	Workers   int
	CreatedBy string
	Input     input.Options
	Debug     *zap.Logger
	Curation  *zap.Logger
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Loader reconciles the records of one run against a store.
type Loader struct {
	store    *store.Store
	interp   *genetrap.Interpreter
	proc     *alo.Processor
	detector *seqevent.Detector
	ms       *seqevent.MergeSplit
	files    *output.Files
	summary  *output.Summary
	metrics  *metrics.Metrics
	debug    *zap.Logger
	curation *zap.Logger
	workers  int
	input    input.Options
	start    time.Time
}

// New creates a loader. The nomenclature snapshot is read from s here, so
// New must be called after the store has been seeded.
func New(ctx context.Context, s *store.Store, ip *genetrap.Interpreter, files *output.Files, opts Options) (*Loader, error) {
	if files == nil {
		return nil, errors.New("load: output files are required")
	}
	if opts.Debug == nil {
		opts.Debug = zap.NewNop()
	}
	if opts.Curation == nil {
		opts.Curation = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	vocab := lookup.NewResolver(s)
	if err := vocab.Preload(ctx, store.VocabLogicalDB, store.VocabVectorEnd, store.VocabReverseComp); err != nil {
		return nil, err
	}
	run, err := alo.NewRunContext(ctx, s)
	if err != nil {
		return nil, err
	}
	proc := alo.NewProcessor(s, vocab, run, alo.Options{CreatedBy: opts.CreatedBy, Now: opts.Now})
	proc.SetLogger(opts.Debug)

	return &Loader{
		store:    s,
		interp:   ip,
		proc:     proc,
		detector: seqevent.NewDetector(s),
		ms:       seqevent.NewMergeSplit(s),
		files:    files,
		summary:  output.NewSummary(),
		metrics:  opts.Metrics,
		debug:    opts.Debug,
		curation: opts.Curation,
		workers:  opts.Workers,
		input:    opts.Input,
		start:    time.Now(),
	}, nil
}

// Summary returns the tallies of the run so far.
func (l *Loader) Summary() *output.Summary {
	return l.summary
}

// Run loads every input in order and then writes the merge/split commands.
func (l *Loader) Run(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := l.LoadFile(ctx, path); err != nil {
			return err
		}
	}
	_, err := l.Finish()
	return err
}

// LoadFile loads every record of one input.
func (l *Loader) LoadFile(ctx context.Context, path string) error {
	rc, err := input.Open(ctx, path, l.input)
	if err != nil {
		return err
	}
	r := genbank.NewReader(rc)
	defer r.Close()

	l.debug.Info("loading input", zap.String("path", path))
	before := l.summary.Records
	if err := l.LoadRecords(ctx, r); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	l.debug.Info("input done",
		zap.String("path", path),
		zap.Int("records", l.summary.Records-before),
		zap.Int("lines", r.LineNumber()))
	return nil
}

// LoadRecords reconciles every record of r in input order.
func (l *Loader) LoadRecords(ctx context.Context, r genbank.RecordReader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make(chan WorkItem, 2*l.workers)
	var readErr error

	go func() {
		defer close(items)
		seq := 0
		for {
			raw, err := r.Next()
			if err != nil {
				readErr = fmt.Errorf("read record: %w", err)
				return
			}
			if raw == nil {
				return
			}
			select {
			case items <- WorkItem{Seq: seq, Raw: raw}:
				seq++
			case <-ctx.Done():
				return
			}
		}
	}()

	results := ParallelInterpret(l.interp, items, l.workers)
	if err := OrderedCollect(results, func(res WorkResult) error {
		err := ctx.Err()
		if err == nil {
			err = l.handle(ctx, res)
		}
		if err != nil {
			// Stop the reader so the drain in OrderedCollect ends early.
			cancel()
		}
		return err
	}); err != nil {
		return err
	}
	if readErr != nil {
		return readErr
	}
	return ctx.Err()
}

func (l *Loader) handle(ctx context.Context, res WorkResult) error {
	if res.Err != nil {
		return l.fail(recordID(res), res.Err)
	}
	in := res.Input

	ev, err := l.detector.Detect(ctx, in.SeqID, in.Sequence.Date)
	if err != nil {
		return fmt.Errorf("detect sequence %s: %w", in.SeqID, err)
	}
	l.metrics.Event(ev.Kind.String())
	l.summary.Events[ev.Kind]++
	l.debug.Debug("sequence event",
		zap.String("seqID", in.SeqID),
		zap.Stringer("event", ev.Kind),
		zap.Int("line", res.Raw.Line))

	if ev.Kind == seqevent.NonEvent {
		l.report(in, alo.Outcome{Kind: alo.Skipped, Reason: "stored sequence is as recent as the record"})
		return nil
	}

	b := store.NewBatch()
	target, err := l.proc.StageSequence(ctx, in, ev, b)
	if err != nil {
		return l.fail(in.SeqID, err)
	}
	out, err := l.proc.Process(ctx, in, target, b)
	if err != nil {
		return l.fail(in.SeqID, err)
	}

	switch {
	case out.Kind == alo.Repeat:
		if err := l.files.WriteRepeat(in.RawText); err != nil {
			return fmt.Errorf("write repeat %s: %w", in.SeqID, err)
		}
	case out.Kind.Commits():
		if err := l.store.Commit(ctx, b); err != nil {
			return fmt.Errorf("commit %s: %w", in.SeqID, err)
		}
		l.proc.Committed(in, out)
		l.detector.MarkSeen(in.SeqID, target.SequenceKey)
		if err := l.ms.Observe(ctx, in.SeqID, target.SequenceKey, in.Sequence.Secondary); err != nil {
			return err
		}
		if ev.Kind != seqevent.AlreadyAdded {
			if err := l.files.WriteProcessed(target.SequenceKey); err != nil {
				return fmt.Errorf("write processed key: %w", err)
			}
		}
	}
	l.report(in, out)
	return nil
}

// fail classifies err: record errors are reported and the record skipped,
// anything else stops the run.
func (l *Loader) fail(seqID string, err error) error {
	var re alo.RecordError
	if !errors.As(err, &re) {
		return err
	}
	kind := errorKind(err)
	l.summary.AddRecordError()
	l.metrics.RecordError(kind)
	l.curation.Warn("record skipped",
		zap.String("seqID", seqID),
		zap.String("record", re.Record()),
		zap.String("kind", kind),
		zap.String("reason", err.Error()))
	return nil
}

func (l *Loader) report(in *alo.RawInput, out alo.Outcome) {
	out.Notes = append(slices.Clone(in.Notes), out.Notes...)
	l.summary.AddOutcome(out)
	l.metrics.Record(out.Kind.String())
	l.metrics.Notes.Add(float64(len(out.Notes)))

	fields := []zap.Field{zap.String("seqID", in.SeqID)}
	if out.CellLineID != "" {
		fields = append(fields, zap.String("cellLineID", out.CellLineID))
	}
	if out.Symbol != "" {
		fields = append(fields, zap.String("alleleSymbol", out.Symbol))
	}

	switch out.Kind {
	case alo.Conflict:
		l.curation.Warn("conflict", append(fields,
			zap.String("reason", out.Reason),
			zap.Strings("details", out.Details))...)
	case alo.Repeat:
		l.curation.Info("repeat deferred", append(fields, zap.String("reason", out.Reason))...)
	case alo.Skipped:
		l.debug.Debug("record skipped", append(fields, zap.String("reason", out.Reason))...)
	default:
		l.debug.Debug("record loaded", append(fields,
			zap.Stringer("outcome", out.Kind),
			zap.Int64("alleleKey", out.AlleleKey),
			zap.Int64("sequenceKey", out.SequenceKey))...)
	}
	for _, note := range out.Notes {
		l.curation.Info("discrepancy", append(fields, zap.String("note", note))...)
	}
}

// Finish writes the merge/split commands accumulated over the run and
// closes the tallies.
func (l *Loader) Finish() ([]seqevent.MergeSplitEvent, error) {
	events := l.ms.Events()
	if err := l.files.WriteMergeSplit(events); err != nil {
		return nil, fmt.Errorf("write merge/split commands: %w", err)
	}
	for _, ev := range events {
		l.metrics.MergeSplit(ev.Kind.String())
		l.debug.Info("merge/split detected", zap.String("command", ev.Command()))
	}
	l.summary.AddMergeSplit(events)
	l.summary.Elapsed = time.Since(l.start)
	l.metrics.ObserveRun(l.summary.Elapsed)
	return events, nil
}

func recordID(res WorkResult) string {
	var fe *genbank.FormatError
	if errors.As(res.Err, &fe) && fe.ID != "" {
		return fe.ID
	}
	var ue *genetrap.UnknownCreatorError
	if errors.As(res.Err, &ue) {
		return ue.SeqID
	}
	var ve *genetrap.NoVectorEndError
	if errors.As(res.Err, &ve) {
		return ve.SeqID
	}
	return fmt.Sprintf("record at line %d", res.Raw.Line)
}

func errorKind(err error) string {
	var (
		fe *genbank.FormatError
		ue *genetrap.UnknownCreatorError
		ve *genetrap.NoVectorEndError
		re *lookup.ResolutionError
		ie *alo.IntegrityError
	)
	switch {
	case errors.As(err, &ue):
		return "unknown_creator"
	case errors.As(err, &ve):
		return "no_vector_end"
	case errors.As(err, &fe):
		return "format"
	case errors.As(err, &re):
		return "resolution"
	case errors.As(err, &ie):
		return "integrity"
	default:
		return "other"
	}
}
