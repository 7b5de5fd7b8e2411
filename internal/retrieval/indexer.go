package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/textsplitter"

	"termai/internal/helper"
	"termai/internal/models"
	"termai/internal/parser"
)

// Indexer loads the documents of a directory, splits them into passages
// and writes them to a Store.
type Indexer struct {
	store    Store
	splitter textsplitter.TextSplitter
}

func NewIndexer(store Store, chunkSize, chunkOverlap int) *Indexer {
	return &Indexer{
		store: store,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// LoadDir returns the passages of every supported file directly inside dir,
// in file name order. A missing directory yields no passages.
func (ix *Indexer) LoadDir(ctx context.Context, dir string) ([]models.Passage, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("dir", dir).Msg("Corpus directory not found, RAG context is empty")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var passages []models.Passage
	for _, entry := range entries {
		if entry.IsDir() || !parser.Supported(entry.Name()) {
			continue
		}
		filePassages, err := ix.loadFile(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", entry.Name(), err)
		}
		passages = append(passages, filePassages...)
	}

	if len(passages) == 0 {
		log.Warn().Str("dir", dir).Msg("No documents found, RAG context is empty")
	}
	return passages, nil
}

func (ix *Indexer) loadFile(ctx context.Context, path string) ([]models.Passage, error) {
	text, err := parser.ExtractText(path)
	if err != nil {
		return nil, err
	}
	docs, err := documentloaders.NewText(strings.NewReader(text)).LoadAndSplit(ctx, ix.splitter)
	if err != nil {
		return nil, err
	}

	var passages []models.Passage
	for _, doc := range docs {
		content := strings.TrimSpace(doc.PageContent)
		if content == "" {
			continue
		}
		id, err := helper.GenerateUUID()
		if err != nil {
			return nil, err
		}
		passages = append(passages, models.Passage{
			ID:             id,
			Content:        content,
			SourceFilename: filepath.Base(path),
			ChunkID:        len(passages) + 1,
		})
	}
	return passages, nil
}

// IndexDir loads dir and stores its passages. It returns the number of
// passages written.
func (ix *Indexer) IndexDir(ctx context.Context, dir string) (int, error) {
	passages, err := ix.LoadDir(ctx, dir)
	if err != nil {
		return 0, err
	}
	if err := ix.store.AddPassages(ctx, passages); err != nil {
		return 0, err
	}
	if len(passages) > 0 {
		log.Info().Int("passages", len(passages)).Str("dir", dir).Msg("Indexed corpus")
	}
	return len(passages), nil
}

// EnsureIndexed indexes dir when the store holds no passages yet.
func (ix *Indexer) EnsureIndexed(ctx context.Context, dir string) error {
	n, err := ix.store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Debug().Int("passages", n).Msg("Using existing index")
		return nil
	}
	_, err = ix.IndexDir(ctx, dir)
	return err
}

// Rebuild drops the stored passages and indexes dir again.
func (ix *Indexer) Rebuild(ctx context.Context, dir string) (int, error) {
	if err := ix.store.Reset(ctx); err != nil {
		return 0, err
	}
	return ix.IndexDir(ctx, dir)
}
