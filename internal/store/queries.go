package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Nomen is one allele symbol or synonym in the nomenclature snapshot.
type Nomen struct {
	AlleleKey int64
	Text      string
	IsSynonym bool
}

const alleleColumns = `a.allele_key, a.symbol, a.name, a.strain_key, a.type_key, a.status_key,
	a.inheritance_key, a.created_by, a.creation_date, a.modification_date`

const cellLineColumns = `c.cell_line_key, c.name, c.strain_key, c.derivation_key, c.is_mutant,
	c.created_by, c.creation_date`

const sequenceColumns = `s.sequence_key, s.acc_id, s.version, s.description, s.length, s.division,
	s.molecule_type, s.organism, s.status, s.provider, s.seq_date, s.created_by, s.modification_date`

type scanner interface {
	Scan(dest ...any) error
}

func scanAllele(sc scanner) (Allele, error) {
	var a Allele
	err := sc.Scan(&a.Key, &a.Symbol, &a.Name, &a.StrainKey, &a.TypeKey, &a.StatusKey,
		&a.InheritanceKey, &a.CreatedBy, &a.CreationDate, &a.ModificationDate)
	return a, err
}

func scanCellLine(sc scanner) (CellLine, error) {
	var (
		c          CellLine
		derivation sql.NullInt64
		mutant     int64
	)
	err := sc.Scan(&c.Key, &c.Name, &c.StrainKey, &derivation, &mutant, &c.CreatedBy, &c.CreationDate)
	c.DerivationKey = derivation.Int64
	c.IsMutant = mutant != 0
	return c, err
}

func scanSequence(sc scanner) (Sequence, error) {
	var s Sequence
	err := sc.Scan(&s.Key, &s.AccID, &s.Version, &s.Description, &s.Length, &s.Division,
		&s.MoleculeType, &s.Organism, &s.Status, &s.Provider, &s.SeqDate, &s.CreatedBy, &s.ModificationDate)
	return s, err
}

// collect scans every row with scan.
func collect[T any](rows *sql.Rows, scan func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanInt64(sc scanner) (int64, error) {
	var v int64
	err := sc.Scan(&v)
	return v, err
}

func scanString(sc scanner) (string, error) {
	var v string
	err := sc.Scan(&v)
	return v, err
}

// Terms returns every term of a vocabulary.
func (s *Store) Terms(ctx context.Context, vocab string) ([]Term, error) {
	rows, err := s.query(ctx, `SELECT term_key, vocab, term, abbreviation FROM vocab_term WHERE vocab = ?`, vocab)
	if err != nil {
		return nil, fmt.Errorf("query terms of %s: %w", vocab, err)
	}
	terms, err := collect(rows, func(sc scanner) (Term, error) {
		var (
			t    Term
			abbr sql.NullString
		)
		err := sc.Scan(&t.Key, &t.Vocab, &t.Term, &abbr)
		t.Abbreviation = abbr.String
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan terms of %s: %w", vocab, err)
	}
	return terms, nil
}

// AccessionObjects returns the keys of objects of objectType that carry
// accID in logical database ldbKey.
func (s *Store) AccessionObjects(ctx context.Context, accID string, ldbKey int64, objectType string) ([]int64, error) {
	rows, err := s.query(ctx, `SELECT DISTINCT object_key FROM accession
		WHERE acc_id = ? AND ldb_key = ? AND object_type = ? ORDER BY object_key`, accID, ldbKey, objectType)
	if err != nil {
		return nil, fmt.Errorf("query accession %s: %w", accID, err)
	}
	keys, err := collect(rows, scanInt64)
	if err != nil {
		return nil, fmt.Errorf("scan accession %s: %w", accID, err)
	}
	return keys, nil
}

// ObjectAccessions returns the accessions of one object in logical database
// ldbKey.
func (s *Store) ObjectAccessions(ctx context.Context, objectKey int64, objectType string, ldbKey int64) ([]Accession, error) {
	rows, err := s.query(ctx, `SELECT accession_key, acc_id, ldb_key, object_key, object_type, preferred, created_by
		FROM accession WHERE object_key = ? AND object_type = ? AND ldb_key = ? ORDER BY accession_key`,
		objectKey, objectType, ldbKey)
	if err != nil {
		return nil, fmt.Errorf("query accessions of %s %d: %w", objectType, objectKey, err)
	}
	accs, err := collect(rows, func(sc scanner) (Accession, error) {
		var (
			a         Accession
			preferred int64
		)
		err := sc.Scan(&a.Key, &a.AccID, &a.LogicalDBKey, &a.ObjectKey, &a.ObjectType, &preferred, &a.CreatedBy)
		a.Preferred = preferred != 0
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan accessions of %s %d: %w", objectType, objectKey, err)
	}
	return accs, nil
}

// CellLine returns the cell line with key, or nil if there is none.
func (s *Store) CellLine(ctx context.Context, key int64) (*CellLine, error) {
	c, err := scanCellLine(s.queryRow(ctx, `SELECT `+cellLineColumns+` FROM cell_line c WHERE c.cell_line_key = ?`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cell line %d: %w", key, err)
	}
	return &c, nil
}

// ParentCellLine returns the non-mutant cell line called name, or nil if
// there is none.
func (s *Store) ParentCellLine(ctx context.Context, name string) (*CellLine, error) {
	c, err := scanCellLine(s.queryRow(ctx, `SELECT `+cellLineColumns+` FROM cell_line c
		WHERE c.name = ? AND c.is_mutant = 0 ORDER BY c.cell_line_key LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query parent cell line %s: %w", name, err)
	}
	return &c, nil
}

// CellLinesForAllele returns the mutant cell lines associated with an allele.
func (s *Store) CellLinesForAllele(ctx context.Context, alleleKey int64) ([]CellLine, error) {
	rows, err := s.query(ctx, `SELECT `+cellLineColumns+` FROM cell_line c
		JOIN allele_cell_line ac ON ac.cell_line_key = c.cell_line_key
		WHERE ac.allele_key = ? ORDER BY c.cell_line_key`, alleleKey)
	if err != nil {
		return nil, fmt.Errorf("query cell lines of allele %d: %w", alleleKey, err)
	}
	lines, err := collect(rows, scanCellLine)
	if err != nil {
		return nil, fmt.Errorf("scan cell lines of allele %d: %w", alleleKey, err)
	}
	return lines, nil
}

// AllelesForCellLine returns the alleles associated with a mutant cell line.
func (s *Store) AllelesForCellLine(ctx context.Context, cellLineKey int64) ([]Allele, error) {
	rows, err := s.query(ctx, `SELECT `+alleleColumns+` FROM allele a
		JOIN allele_cell_line ac ON ac.allele_key = a.allele_key
		WHERE ac.cell_line_key = ? ORDER BY a.allele_key`, cellLineKey)
	if err != nil {
		return nil, fmt.Errorf("query alleles of cell line %d: %w", cellLineKey, err)
	}
	alleles, err := collect(rows, scanAllele)
	if err != nil {
		return nil, fmt.Errorf("scan alleles of cell line %d: %w", cellLineKey, err)
	}
	return alleles, nil
}

// AllelesForSequence returns the alleles associated with a sequence.
func (s *Store) AllelesForSequence(ctx context.Context, sequenceKey int64) ([]Allele, error) {
	rows, err := s.query(ctx, `SELECT `+alleleColumns+` FROM allele a
		JOIN seq_allele_assoc sa ON sa.allele_key = a.allele_key
		WHERE sa.sequence_key = ? ORDER BY a.allele_key`, sequenceKey)
	if err != nil {
		return nil, fmt.Errorf("query alleles of sequence %d: %w", sequenceKey, err)
	}
	alleles, err := collect(rows, scanAllele)
	if err != nil {
		return nil, fmt.Errorf("scan alleles of sequence %d: %w", sequenceKey, err)
	}
	return alleles, nil
}

// MarkersForSequence returns the symbols of markers associated with a
// sequence.
func (s *Store) MarkersForSequence(ctx context.Context, sequenceKey int64) ([]string, error) {
	rows, err := s.query(ctx, `SELECT marker_symbol FROM seq_marker_assoc
		WHERE sequence_key = ? ORDER BY marker_symbol`, sequenceKey)
	if err != nil {
		return nil, fmt.Errorf("query markers of sequence %d: %w", sequenceKey, err)
	}
	markers, err := collect(rows, scanString)
	if err != nil {
		return nil, fmt.Errorf("scan markers of sequence %d: %w", sequenceKey, err)
	}
	return markers, nil
}

// NomenSnapshot returns every allele symbol and synonym.
func (s *Store) NomenSnapshot(ctx context.Context) ([]Nomen, error) {
	rows, err := s.query(ctx, `SELECT allele_key, symbol, 0 FROM allele
		UNION ALL
		SELECT allele_key, synonym, 1 FROM allele_synonym`)
	if err != nil {
		return nil, fmt.Errorf("query nomenclature: %w", err)
	}
	nomen, err := collect(rows, func(sc scanner) (Nomen, error) {
		var (
			n   Nomen
			syn int64
		)
		err := sc.Scan(&n.AlleleKey, &n.Text, &syn)
		n.IsSynonym = syn != 0
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan nomenclature: %w", err)
	}
	return nomen, nil
}

// ReferenceIDs returns the reference IDs associated with an allele.
func (s *Store) ReferenceIDs(ctx context.Context, alleleKey int64) ([]string, error) {
	rows, err := s.query(ctx, `SELECT ref_id FROM reference_assoc WHERE allele_key = ? ORDER BY assoc_key`, alleleKey)
	if err != nil {
		return nil, fmt.Errorf("query references of allele %d: %w", alleleKey, err)
	}
	ids, err := collect(rows, scanString)
	if err != nil {
		return nil, fmt.Errorf("scan references of allele %d: %w", alleleKey, err)
	}
	return ids, nil
}

// MutationKeys returns the molecular mutation terms of an allele.
func (s *Store) MutationKeys(ctx context.Context, alleleKey int64) ([]int64, error) {
	rows, err := s.query(ctx, `SELECT mutation_key FROM allele_mutation WHERE allele_key = ? ORDER BY assoc_key`, alleleKey)
	if err != nil {
		return nil, fmt.Errorf("query mutations of allele %d: %w", alleleKey, err)
	}
	keys, err := collect(rows, scanInt64)
	if err != nil {
		return nil, fmt.Errorf("scan mutations of allele %d: %w", alleleKey, err)
	}
	return keys, nil
}

// SequenceByAccession returns the sequence whose primary accession is accID,
// or nil if there is none.
func (s *Store) SequenceByAccession(ctx context.Context, accID string) (*Sequence, error) {
	seq, err := scanSequence(s.queryRow(ctx, `SELECT `+sequenceColumns+` FROM seq_sequence s
		WHERE s.acc_id = ? ORDER BY s.sequence_key LIMIT 1`, accID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query sequence %s: %w", accID, err)
	}
	return &seq, nil
}

// GeneTrap returns the gene-trap attributes of a sequence, or nil if there
// are none.
func (s *Store) GeneTrap(ctx context.Context, sequenceKey int64) (*GeneTrap, error) {
	var (
		g      GeneTrap
		method sql.NullInt64
	)
	err := s.queryRow(ctx, `SELECT sequence_key, tag_method_key, vector_end_key, reverse_comp_key,
		good_hit_count, created_by FROM seq_gene_trap WHERE sequence_key = ?`, sequenceKey).
		Scan(&g.SequenceKey, &method, &g.VectorEndKey, &g.ReverseCompKey, &g.GoodHitCount, &g.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query gene trap of sequence %d: %w", sequenceKey, err)
	}
	g.TagMethodKey = method.Int64
	return &g, nil
}

// FindDerivation returns the key of the derivation matching every
// attribute, or 0 if there is none.
func (s *Store) FindDerivation(ctx context.Context, d Derivation) (int64, error) {
	var key int64
	err := s.queryRow(ctx, `SELECT derivation_key FROM derivation
		WHERE parent_key = ? AND creator_key = ? AND vector_key = ? AND vector_type_key = ?
		AND derivation_type_key = ? ORDER BY derivation_key LIMIT 1`,
		d.ParentKey, d.CreatorKey, d.VectorKey, d.VectorTypeKey, d.DerivationTypeKey).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query derivation: %w", err)
	}
	return key, nil
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if _, err := lookupTable(table); err != nil {
		return 0, err
	}
	var n int
	if err := s.queryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
