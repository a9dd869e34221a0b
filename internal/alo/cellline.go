package alo

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/inodb/gtload/internal/lookup"
	"github.com/inodb/gtload/internal/store"
)

// VocabParentCellLine names parent cell lines in resolution errors.
const VocabParentCellLine = "Parent Cell Line"

type cellLineState struct {
	key       int64
	strainKey int64
	id        string
	new       bool
}

// resolveCellLine finds the mutant cell line of the record, or stages a new
// one together with its derivation when none exists.
func (p *Processor) resolveCellLine(ctx context.Context, in *RawInput, cl CellLineRaw, b *store.Batch) (cellLineState, error) {
	acc, ok := in.CellLineAccession()
	if !ok {
		return cellLineState{}, fmt.Errorf("record %s: bundle has no cell line accession", in.SeqID)
	}
	ldbKey, err := p.resolve(ctx, store.VocabLogicalDB, acc.LogicalDB)
	if err != nil {
		return cellLineState{}, err
	}

	keys, _, err := p.cellLines.Lookup(ctx, accessionKey{id: acc.ID, ldb: ldbKey})
	if err != nil {
		return cellLineState{}, err
	}
	switch len(keys) {
	case 0:
	case 1:
		existing, err := p.store.CellLine(ctx, keys[0])
		if err != nil {
			return cellLineState{}, err
		}
		if existing == nil {
			return cellLineState{}, fmt.Errorf("cell line %s: accession points at missing cell line %d", acc.ID, keys[0])
		}
		return cellLineState{key: existing.Key, strainKey: existing.StrainKey, id: acc.ID}, nil
	default:
		return cellLineState{}, &IntegrityError{
			Kind:       MultipleCellLines,
			SeqID:      in.SeqID,
			CellLineID: acc.ID,
			Detail:     strconv.Itoa(len(keys)) + " cell lines carry this ID",
		}
	}

	parent, found, err := p.parents.Lookup(ctx, cl.ParentCellLine)
	if err != nil {
		return cellLineState{}, err
	}
	if !found {
		return cellLineState{}, &lookup.ResolutionError{Vocab: VocabParentCellLine, Term: cl.ParentCellLine}
	}

	derivationKey, err := p.resolveDerivation(ctx, cl, parent, b)
	if err != nil {
		return cellLineState{}, err
	}

	mcl := store.CellLine{
		Key:           p.store.NextKey(store.TableCellLine),
		Name:          acc.ID,
		StrainKey:     parent.StrainKey,
		DerivationKey: derivationKey,
		IsMutant:      true,
		CreatedBy:     p.opts.CreatedBy,
		CreationDate:  p.today(),
	}
	b.Insert(mcl, store.Accession{
		Key:          p.store.NextKey(store.TableAccession),
		AccID:        acc.ID,
		LogicalDBKey: ldbKey,
		ObjectKey:    mcl.Key,
		ObjectType:   store.ObjectCellLine,
		Preferred:    true,
		CreatedBy:    p.opts.CreatedBy,
	})
	p.logger.Debug("new mutant cell line", zap.String("cellLineID", acc.ID), zap.String("parent", parent.Name))

	return cellLineState{key: mcl.Key, strainKey: mcl.StrainKey, id: acc.ID, new: true}, nil
}

// resolveDerivation returns the derivation matching the parent, creator,
// vector, vector type and derivation type, staging a new one if needed.
func (p *Processor) resolveDerivation(ctx context.Context, cl CellLineRaw, parent store.CellLine, b *store.Batch) (int64, error) {
	d := store.Derivation{ParentKey: parent.Key}
	var err error
	if d.CreatorKey, err = p.resolve(ctx, store.VocabCreator, cl.Creator); err != nil {
		return 0, err
	}
	if d.VectorKey, err = p.resolve(ctx, store.VocabVector, cl.Vector); err != nil {
		return 0, err
	}
	if d.VectorTypeKey, err = p.resolve(ctx, store.VocabVectorType, cl.VectorType); err != nil {
		return 0, err
	}
	if d.DerivationTypeKey, err = p.resolve(ctx, store.VocabDerivationType, cl.DerivationType); err != nil {
		return 0, err
	}

	key, found, err := p.derivations.Lookup(ctx, d)
	if err != nil {
		return 0, err
	}
	if found {
		return key, nil
	}

	d.Key = p.store.NextKey(store.TableDerivation)
	d.Name = cl.DerivationName()
	d.CreatedBy = p.opts.CreatedBy
	b.Insert(d)
	return d.Key, nil
}
