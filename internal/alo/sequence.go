package alo

import (
	"context"
	"fmt"

	"github.com/inodb/gtload/internal/seqevent"
	"github.com/inodb/gtload/internal/store"
)

// StageSequence stages the sequence changes that an event implies and
// returns the sequence the record is reconciled against.
//
//	ADD            insert sequence and accessions
//	DUMMY          delete the placeholder and its accessions, then insert
//	UPDATE         update the stored sequence and add new secondary accessions
//	ALREADY_ADDED  reuse the key committed earlier in the run
//
// NON_EVENT records must be skipped by the caller.
func (p *Processor) StageSequence(ctx context.Context, in *RawInput, ev seqevent.Event, b *store.Batch) (Target, error) {
	switch ev.Kind {
	case seqevent.Add:
		return p.insertSequence(ctx, in, b)
	case seqevent.Dummy:
		b.Delete(store.TableSequence, ev.Existing.Key)
		b.DeleteWhere(store.TableAccession, []string{"object_key", "object_type"}, ev.Existing.Key, store.ObjectSequence)
		return p.insertSequence(ctx, in, b)
	case seqevent.Update:
		return p.updateSequence(ctx, in, ev.Existing, b)
	case seqevent.AlreadyAdded:
		return Target{SequenceKey: ev.SequenceKey}, nil
	default:
		return Target{}, fmt.Errorf("sequence %s: nothing to stage for %s", in.SeqID, ev.Kind)
	}
}

func (p *Processor) sequenceState(in *RawInput, key int64) store.Sequence {
	s := in.Sequence
	return store.Sequence{
		Key:              key,
		AccID:            s.AccID,
		Version:          s.Version,
		Description:      s.Description,
		Length:           s.Length,
		Division:         s.Division,
		MoleculeType:     s.MoleculeType,
		Organism:         s.Organism,
		Status:           store.SequenceActive,
		Provider:         s.Provider,
		SeqDate:          s.Date.Format(seqevent.DateLayout),
		CreatedBy:        p.opts.CreatedBy,
		ModificationDate: p.today(),
	}
}

func (p *Processor) insertSequence(ctx context.Context, in *RawInput, b *store.Batch) (Target, error) {
	ldbKey, err := p.resolve(ctx, store.VocabLogicalDB, in.Sequence.LogicalDB)
	if err != nil {
		return Target{}, err
	}
	seq := p.sequenceState(in, p.store.NextKey(store.TableSequence))
	b.Insert(seq)
	b.Insert(p.sequenceAccession(in.Sequence.AccID, ldbKey, seq.Key, true))
	for _, sec := range in.Sequence.Secondary {
		b.Insert(p.sequenceAccession(sec, ldbKey, seq.Key, false))
	}
	return Target{SequenceKey: seq.Key, New: true}, nil
}

func (p *Processor) updateSequence(ctx context.Context, in *RawInput, existing *store.Sequence, b *store.Batch) (Target, error) {
	ldbKey, err := p.resolve(ctx, store.VocabLogicalDB, in.Sequence.LogicalDB)
	if err != nil {
		return Target{}, err
	}
	seq := p.sequenceState(in, existing.Key)
	b.Update(store.TableSequence, existing.Key,
		[]string{"version", "description", "length", "division", "molecule_type", "organism", "seq_date", "modification_date"},
		seq.Version, seq.Description, seq.Length, seq.Division, seq.MoleculeType, seq.Organism, seq.SeqDate, seq.ModificationDate)

	accs, err := p.store.ObjectAccessions(ctx, existing.Key, store.ObjectSequence, ldbKey)
	if err != nil {
		return Target{}, err
	}
	have := make(map[string]bool, len(accs))
	for _, a := range accs {
		have[a.AccID] = true
	}
	for _, sec := range in.Sequence.Secondary {
		if !have[sec] {
			have[sec] = true
			b.Insert(p.sequenceAccession(sec, ldbKey, existing.Key, false))
		}
	}
	return Target{SequenceKey: existing.Key}, nil
}

func (p *Processor) sequenceAccession(id string, ldbKey, seqKey int64, preferred bool) store.Accession {
	return store.Accession{
		Key:          p.store.NextKey(store.TableAccession),
		AccID:        id,
		LogicalDBKey: ldbKey,
		ObjectKey:    seqKey,
		ObjectType:   store.ObjectSequence,
		Preferred:    preferred,
		CreatedBy:    p.opts.CreatedBy,
	}
}
