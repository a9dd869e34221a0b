package store

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seed lists the vocabulary terms and parent cell lines a database needs
// before records can be loaded.
type Seed struct {
	Vocabularies    map[string][]string `yaml:"vocabularies"`
	ParentCellLines []ParentSeed        `yaml:"parentCellLines"`
}

// ParentSeed is a parent cell line and the name of its strain.
type ParentSeed struct {
	Name   string `yaml:"name"`
	Strain string `yaml:"strain"`
}

// SeedResult counts what ApplySeed added.
type SeedResult struct {
	Terms     int
	CellLines int
}

// LoadSeed decodes a YAML seed.
func LoadSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if seed.Vocabularies == nil {
		seed.Vocabularies = make(map[string][]string)
	}
	return &seed, nil
}

// Merge adds the terms of other to s, keeping s's order for existing
// vocabularies.
func (s *Seed) Merge(other *Seed) {
	if s.Vocabularies == nil {
		s.Vocabularies = make(map[string][]string)
	}
	for vocab, terms := range other.Vocabularies {
		s.Vocabularies[vocab] = append(s.Vocabularies[vocab], terms...)
	}
	s.ParentCellLines = append(s.ParentCellLines, other.ParentCellLines...)
}

// ApplySeed inserts every seed term and parent cell line that is not
// already present. Terms match case-insensitively. Parent strains are added
// to the strain vocabulary when missing.
func (s *Store) ApplySeed(ctx context.Context, seed *Seed, createdBy, date string) (SeedResult, error) {
	var res SeedResult
	b := NewBatch()

	vocabs := make([]string, 0, len(seed.Vocabularies)+1)
	for v := range seed.Vocabularies {
		vocabs = append(vocabs, v)
	}
	if _, ok := seed.Vocabularies[VocabStrain]; !ok {
		vocabs = append(vocabs, VocabStrain)
	}
	sort.Strings(vocabs)

	known := make(map[string]map[string]int64, len(vocabs))
	for _, vocab := range vocabs {
		terms, err := s.Terms(ctx, vocab)
		if err != nil {
			return res, err
		}
		m := make(map[string]int64, len(terms))
		for _, t := range terms {
			m[strings.ToLower(t.Term)] = t.Key
		}
		known[vocab] = m
	}

	addTerm := func(vocab, term string) int64 {
		if key, ok := known[vocab][strings.ToLower(term)]; ok {
			return key
		}
		key := s.NextKey(TableVocabTerm)
		b.Insert(Term{Key: key, Vocab: vocab, Term: term})
		known[vocab][strings.ToLower(term)] = key
		res.Terms++
		return key
	}

	for _, vocab := range vocabs {
		for _, term := range seed.Vocabularies[vocab] {
			if term = strings.TrimSpace(term); term != "" {
				addTerm(vocab, term)
			}
		}
	}

	added := make(map[string]bool)
	for _, p := range seed.ParentCellLines {
		if added[p.Name] {
			continue
		}
		existing, err := s.ParentCellLine(ctx, p.Name)
		if err != nil {
			return res, err
		}
		if existing != nil {
			continue
		}
		strain := p.Strain
		if strain == "" {
			strain = "Not Specified"
		}
		b.Insert(CellLine{
			Key:          s.NextKey(TableCellLine),
			Name:         p.Name,
			StrainKey:    addTerm(VocabStrain, strain),
			CreatedBy:    createdBy,
			CreationDate: date,
		})
		added[p.Name] = true
		res.CellLines++
	}

	if err := s.Commit(ctx, b); err != nil {
		return res, fmt.Errorf("commit seed: %w", err)
	}
	return res, nil
}
