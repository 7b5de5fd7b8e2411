// Package retrieval indexes a local corpus and returns the passages most
// relevant to a query.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"termai/internal/models"
)

// ErrUnavailable means there is no vector store to search.
var ErrUnavailable = errors.New("retrieval unavailable: no vector store")

// Searcher returns up to k passages relevant to query, best first. An empty
// corpus yields an empty result and no error.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// Store is a vector store holding corpus passages.
type Store interface {
	AddPassages(ctx context.Context, passages []models.Passage) error
	Search(ctx context.Context, query string, k int) ([]string, error)
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

// Retriever is the Searcher used by the RAG pipeline.
type Retriever struct {
	store Store
}

func NewRetriever(store Store) *Retriever {
	return &Retriever{store: store}
}

// Search clamps k to the corpus size. It returns ErrUnavailable only when
// the Retriever has no store.
func (r *Retriever) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if r.store == nil {
		return nil, ErrUnavailable
	}
	n, err := r.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count passages: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	passages, err := r.store.Search(ctx, query, min(k, n))
	if err != nil {
		return nil, fmt.Errorf("failed to search passages: %w", err)
	}
	return passages, nil
}
