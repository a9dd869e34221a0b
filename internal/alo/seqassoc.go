package alo

import (
	"context"
	"strings"

	"github.com/inodb/gtload/internal/store"
)

// associateSequence links the sequence to the allele.
//
// A sequence already associated with a marker is a conflict. For a new
// allele, a sequence already associated with any other allele is a
// conflict. The association is staged only if it is not already present.
func (p *Processor) associateSequence(ctx context.Context, in *RawInput, target Target, allele alleleState, b *store.Batch) (*Outcome, error) {
	var linked []store.Allele
	if !target.New {
		markers, err := p.store.MarkersForSequence(ctx, target.SequenceKey)
		if err != nil {
			return nil, err
		}
		if len(markers) > 0 {
			return conflictf("sequence associated with marker", strings.Join(markers, ", ")), nil
		}
		if linked, err = p.store.AllelesForSequence(ctx, target.SequenceKey); err != nil {
			return nil, err
		}
	}

	present := false
	if allele.new {
		var others []string
		for _, a := range linked {
			if a.Symbol == allele.symbol {
				present = true
			} else {
				others = append(others, a.Symbol)
			}
		}
		if len(others) > 0 {
			reason := "sequence associated with other alleles"
			if present {
				reason = "sequence associated with current allele " + allele.symbol + " and other alleles"
			}
			return conflictf(reason, strings.Join(others, ", ")), nil
		}
	} else {
		for _, a := range linked {
			if a.Key == allele.key {
				present = true
			}
		}
	}
	if present {
		return nil, nil
	}

	qualifierKey, err := p.resolve(ctx, store.VocabAssocQualifier, in.SeqAssoc.Qualifier)
	if err != nil {
		return nil, err
	}
	b.Insert(store.SeqAlleleAssoc{
		Key:          p.store.NextKey(store.TableSeqAlleleAssoc),
		SequenceKey:  target.SequenceKey,
		AlleleKey:    allele.key,
		QualifierKey: qualifierKey,
	})
	return nil, nil
}

// resolveGeneTrap stages the gene-trap attributes of the sequence and its
// sequence tag accession. Stored attributes other than the hit count are
// never overwritten; a difference is returned as a note.
func (p *Processor) resolveGeneTrap(ctx context.Context, in *RawInput, target Target, b *store.Batch) ([]string, error) {
	raw := in.GeneTrap
	state := store.GeneTrap{
		SequenceKey:  target.SequenceKey,
		GoodHitCount: raw.GoodHitCount,
		CreatedBy:    p.opts.CreatedBy,
	}
	var err error
	if raw.Method != "" {
		if state.TagMethodKey, err = p.resolve(ctx, store.VocabSeqTagMethod, raw.Method); err != nil {
			return nil, err
		}
	}
	if state.VectorEndKey, err = p.resolve(ctx, store.VocabVectorEnd, raw.VectorEnd); err != nil {
		return nil, err
	}
	if state.ReverseCompKey, err = p.resolve(ctx, store.VocabReverseComp, raw.ReverseComp); err != nil {
		return nil, err
	}

	var existing *store.GeneTrap
	if !target.New {
		if existing, err = p.store.GeneTrap(ctx, target.SequenceKey); err != nil {
			return nil, err
		}
	}

	var notes []string
	if existing == nil {
		b.Insert(state)
	} else {
		if existing.GoodHitCount != state.GoodHitCount {
			b.Update(store.TableSeqGeneTrap, target.SequenceKey, []string{"good_hit_count"}, state.GoodHitCount)
		}
		if existing.TagMethodKey != state.TagMethodKey {
			notes = append(notes, notef("sequence %s: stored sequence tag method differs from incoming %q", in.SeqID, raw.Method))
		}
		if existing.VectorEndKey != state.VectorEndKey {
			notes = append(notes, notef("sequence %s: stored vector end differs from incoming %q", in.SeqID, raw.VectorEnd))
		}
		if existing.ReverseCompKey != state.ReverseCompKey {
			notes = append(notes, notef("sequence %s: stored reverse complement differs from incoming %q", in.SeqID, raw.ReverseComp))
		}
	}

	tag, ok := in.SeqTagAccession()
	if !ok {
		return notes, nil
	}
	ldbKey, err := p.resolve(ctx, store.VocabLogicalDB, tag.LogicalDB)
	if err != nil {
		return nil, err
	}
	var accs []store.Accession
	if !target.New {
		if accs, err = p.store.ObjectAccessions(ctx, target.SequenceKey, store.ObjectSequence, ldbKey); err != nil {
			return nil, err
		}
	}
	switch {
	case len(accs) == 0:
		b.Insert(store.Accession{
			Key:          p.store.NextKey(store.TableAccession),
			AccID:        tag.ID,
			LogicalDBKey: ldbKey,
			ObjectKey:    target.SequenceKey,
			ObjectType:   store.ObjectSequence,
			Preferred:    true,
			CreatedBy:    p.opts.CreatedBy,
		})
	case accs[0].AccID != tag.ID:
		b.Update(store.TableAccession, accs[0].Key, []string{"acc_id"}, tag.ID)
		notes = append(notes, notef("sequence %s: sequence tag ID changed from %s to %s", in.SeqID, accs[0].AccID, tag.ID))
	}
	return notes, nil
}
