package alo

import (
	"context"
	"strings"

	"github.com/inodb/gtload/internal/store"
)

type alleleState struct {
	key    int64
	symbol string
	new    bool
	notes  []string
}

// resolveAllele applies the identity decision table:
//
//	no mutant cell line               -> nomenclature guard, then new allele
//	cell line, no allele              -> IntegrityError
//	cell line, exactly one allele     -> update of that allele
//	cell line, several alleles        -> IntegrityError
//
// A non-nil *Outcome is a conflict and the record is skipped.
func (p *Processor) resolveAllele(ctx context.Context, in *RawInput, mcl cellLineState, b *store.Batch) (alleleState, *Outcome, error) {
	if mcl.new {
		return p.createAllele(ctx, in, mcl, b)
	}

	alleles, err := p.store.AllelesForCellLine(ctx, mcl.key)
	if err != nil {
		return alleleState{}, nil, err
	}
	switch len(alleles) {
	case 0:
		return alleleState{}, nil, &IntegrityError{Kind: CellLineWithoutAllele, SeqID: in.SeqID, CellLineID: mcl.id}
	case 1:
	default:
		symbols := make([]string, len(alleles))
		for i, a := range alleles {
			symbols[i] = a.Symbol
		}
		return alleleState{}, nil, &IntegrityError{
			Kind:       MultipleAlleles,
			SeqID:      in.SeqID,
			CellLineID: mcl.id,
			Detail:     strings.Join(symbols, ", "),
		}
	}

	st, err := p.updateAllele(ctx, in, mcl, alleles[0], b)
	return st, nil, err
}

// createAllele stages a new allele for a new mutant cell line unless the
// cell line ID already appears in allele nomenclature.
func (p *Processor) createAllele(ctx context.Context, in *RawInput, mcl cellLineState, b *store.Batch) (alleleState, *Outcome, error) {
	symbols, synonyms := p.run.NomenHits(mcl.id)
	if len(symbols)+len(synonyms) > 0 {
		var details []string
		if len(symbols) > 0 {
			details = append(details, "symbols: "+strings.Join(symbols, ", "))
		}
		if len(synonyms) > 0 {
			details = append(details, "synonyms: "+strings.Join(synonyms, ", "))
		}
		return alleleState{}, conflictf("cell line ID in allele nomenclature", details...), nil
	}

	a := store.Allele{
		Key:              p.store.NextKey(store.TableAllele),
		Symbol:           in.Allele.Symbol,
		Name:             in.Allele.Name,
		StrainKey:        mcl.strainKey,
		CreatedBy:        p.opts.CreatedBy,
		CreationDate:     p.today(),
		ModificationDate: p.today(),
	}
	var err error
	if a.TypeKey, a.StatusKey, a.InheritanceKey, err = p.alleleTerms(ctx, in.Allele); err != nil {
		return alleleState{}, nil, err
	}
	b.Insert(a, store.AlleleCellLine{
		Key:         p.store.NextKey(store.TableAlleleCellLine),
		AlleleKey:   a.Key,
		CellLineKey: mcl.key,
	})

	if err := p.addMutations(ctx, in, a.Key, nil, b); err != nil {
		return alleleState{}, nil, err
	}
	seen := make(map[string]bool)
	for _, ref := range in.References {
		if seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		p.addReference(a.Key, ref, b)
	}

	return alleleState{key: a.Key, symbol: a.Symbol, new: true}, nil, nil
}

// updateAllele compares the incoming allele with the stored one and
// reconciles mutations and references. Differences are notes, not failures.
func (p *Processor) updateAllele(ctx context.Context, in *RawInput, mcl cellLineState, existing store.Allele, b *store.Batch) (alleleState, error) {
	st := alleleState{key: existing.Key, symbol: existing.Symbol}

	typeKey, statusKey, _, err := p.alleleTerms(ctx, in.Allele)
	if err != nil {
		return st, err
	}
	diff := func(field, stored, incoming string) {
		if stored != incoming {
			st.notes = append(st.notes, notef("allele %s: %s differs: stored %q, incoming %q", existing.Symbol, field, stored, incoming))
		}
	}
	diff("symbol", existing.Symbol, in.Allele.Symbol)
	diff("name", existing.Name, in.Allele.Name)
	if existing.TypeKey != typeKey {
		st.notes = append(st.notes, notef("allele %s: allele type differs from incoming %q", existing.Symbol, in.Allele.Type))
	}
	if existing.StatusKey != statusKey {
		st.notes = append(st.notes, notef("allele %s: allele status differs from incoming %q", existing.Symbol, in.Allele.Status))
	}
	if existing.StrainKey != mcl.strainKey {
		st.notes = append(st.notes, notef("allele %s: strain differs from cell line %s strain", existing.Symbol, mcl.id))
	}

	others, err := p.store.CellLinesForAllele(ctx, existing.Key)
	if err != nil {
		return st, err
	}
	for _, c := range others {
		if c.Key != mcl.key {
			st.notes = append(st.notes, notef("allele %s: also associated with cell line %s", existing.Symbol, c.Name))
		}
	}

	mutations, err := p.store.MutationKeys(ctx, existing.Key)
	if err != nil {
		return st, err
	}
	if err := p.addMutations(ctx, in, existing.Key, mutations, b); err != nil {
		return st, err
	}

	ids, err := p.store.ReferenceIDs(ctx, existing.Key)
	if err != nil {
		return st, err
	}
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	for _, ref := range in.References {
		if ref.IsJNumber() || known[ref.ID] {
			continue
		}
		known[ref.ID] = true
		p.addReference(existing.Key, ref, b)
	}
	return st, nil
}

func (p *Processor) alleleTerms(ctx context.Context, a AlleleRaw) (typeKey, statusKey, inheritanceKey int64, err error) {
	if typeKey, err = p.resolve(ctx, store.VocabAlleleType, a.Type); err != nil {
		return
	}
	if statusKey, err = p.resolve(ctx, store.VocabAlleleStatus, a.Status); err != nil {
		return
	}
	inheritanceKey, err = p.resolve(ctx, store.VocabInheritance, a.InheritanceMode)
	return
}

// addMutations stages the record's molecular mutations that are not in
// existing.
func (p *Processor) addMutations(ctx context.Context, in *RawInput, alleleKey int64, existing []int64, b *store.Batch) error {
	have := make(map[int64]bool, len(existing))
	for _, k := range existing {
		have[k] = true
	}
	for _, m := range in.Mutations {
		key, err := p.resolve(ctx, store.VocabMutation, m)
		if err != nil {
			return err
		}
		if have[key] {
			continue
		}
		have[key] = true
		b.Insert(store.AlleleMutation{
			Key:         p.store.NextKey(store.TableAlleleMutation),
			AlleleKey:   alleleKey,
			MutationKey: key,
		})
	}
	return nil
}

func (p *Processor) addReference(alleleKey int64, ref ReferenceRaw, b *store.Batch) {
	b.Insert(store.ReferenceAssoc{
		Key:       p.store.NextKey(store.TableReferenceAssoc),
		AlleleKey: alleleKey,
		RefID:     ref.ID,
		AssocType: ref.Type,
	})
}
