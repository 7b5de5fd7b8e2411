// Package summarize implements map-reduce summarization of a document.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"termai/internal/chunker"
	"termai/internal/llmservice"
	"termai/internal/models"
	"termai/internal/parser"
	"termai/internal/prompt"
)

// Options control chunking, output bounds and map-phase parallelism.
type Options struct {
	ChunkSize        int
	ChunkMaxLength   int
	CombineMaxLength int
	Concurrency      int
}

func DefaultOptions() Options {
	return Options{
		ChunkSize:        500,
		ChunkMaxLength:   150,
		CombineMaxLength: 200,
		Concurrency:      1,
	}
}

type Summarizer struct {
	gen  llmservice.Generator
	opts Options
}

// New creates a Summarizer. Zero option fields fall back to DefaultOptions.
func New(gen llmservice.Generator, opts Options) *Summarizer {
	def := DefaultOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.ChunkMaxLength <= 0 {
		opts.ChunkMaxLength = def.ChunkMaxLength
	}
	if opts.CombineMaxLength <= 0 {
		opts.CombineMaxLength = def.CombineMaxLength
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = def.Concurrency
	}
	return &Summarizer{gen: gen, opts: opts}
}

// Summarize reads the file at path and returns its summary. A missing file
// is not an error: the result is models.FileNotFound and the completion
// service is never called.
func (s *Summarizer) Summarize(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("file", path).Msg("File to summarize does not exist")
		return models.FileNotFound, nil
	}

	text, err := parser.ReadSource(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.SummarizeText(ctx, text)
}

// SummarizeText runs the map and reduce phases over text.
func (s *Summarizer) SummarizeText(ctx context.Context, text string) (string, error) {
	chunks, err := chunker.Split(text, s.opts.ChunkSize)
	if err != nil {
		return "", err
	}
	log.Debug().Int("chunks", len(chunks)).Int("chunk_size", s.opts.ChunkSize).Msg("Split document")

	partials, err := s.summarizeChunks(ctx, chunks)
	if err != nil {
		return "", err
	}

	combined, err := prompt.Compose(prompt.CombineSummaries, prompt.Fields{
		prompt.FieldPartialSummaries: strings.Join(partials, models.SummarySeparator),
	})
	if err != nil {
		return "", err
	}
	return s.gen.Generate(ctx, combined, s.opts.CombineMaxLength)
}

// summarizeChunks summarizes every chunk with at most Concurrency calls in
// flight. partials[i] always belongs to chunks[i].
func (s *Summarizer) summarizeChunks(ctx context.Context, chunks []string) ([]string, error) {
	partials := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			p, err := prompt.Compose(prompt.ChunkSummary, prompt.Fields{prompt.FieldChunkText: chunk})
			if err != nil {
				return err
			}
			summary, err := s.gen.Generate(gctx, p, s.opts.ChunkMaxLength)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i+1, err)
			}
			partials[i] = strings.TrimSpace(summary)
			log.Debug().Int("chunk", i+1).Int("of", len(chunks)).Msg("Summarized chunk")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}
