package lookup

import (
	"context"
	"fmt"
)

// ResolutionError reports a term that is not in its vocabulary.
type ResolutionError struct {
	Vocab string
	Term  string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("term %q not found in vocabulary %s", e.Term, e.Vocab)
}

// Record returns the human-readable context for curation reports.
func (e *ResolutionError) Record() string {
	return e.Vocab + ": " + e.Term
}

// Resolver resolves terms across vocabularies, loading each vocabulary into
// a FullCache on first use.
type Resolver struct {
	src    TermSource
	caches map[string]*FullCache
}

// NewResolver creates a resolver over src.
func NewResolver(src TermSource) *Resolver {
	return &Resolver{src: src, caches: make(map[string]*FullCache)}
}

// Preload loads the given vocabularies up front.
func (r *Resolver) Preload(ctx context.Context, vocabs ...string) error {
	for _, v := range vocabs {
		if _, err := r.cache(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) cache(ctx context.Context, vocab string) (*FullCache, error) {
	if c, ok := r.caches[vocab]; ok {
		return c, nil
	}
	c, err := LoadFullCache(ctx, r.src, vocab)
	if err != nil {
		return nil, err
	}
	r.caches[vocab] = c
	return c, nil
}

// Resolve returns the key of term in vocab. A missing term is a
// *ResolutionError; a failure to read the vocabulary is returned as is.
func (r *Resolver) Resolve(ctx context.Context, vocab, term string) (int64, error) {
	c, err := r.cache(ctx, vocab)
	if err != nil {
		return 0, err
	}
	key, ok := c.Lookup(term)
	if !ok {
		return 0, &ResolutionError{Vocab: vocab, Term: term}
	}
	return key, nil
}

// Reload drops every cached vocabulary so the next lookup re-reads it.
func (r *Resolver) Reload() {
	r.caches = make(map[string]*FullCache)
}
