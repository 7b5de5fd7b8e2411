package rag

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"termai/internal/llmservice"
	"termai/internal/models"
	"termai/internal/prompt"
	"termai/internal/retrieval"
)

type Options struct {
	TopK      int
	MaxLength int
}

func DefaultOptions() Options {
	return Options{TopK: 3, MaxLength: 200}
}

// RAG answers questions with passages from the local corpus.
type RAG struct {
	searcher retrieval.Searcher
	gen      llmservice.Generator
	opts     Options
}

func NewRAG(searcher retrieval.Searcher, gen llmservice.Generator, opts Options) *RAG {
	def := DefaultOptions()
	if opts.TopK <= 0 {
		opts.TopK = def.TopK
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = def.MaxLength
	}
	return &RAG{searcher: searcher, gen: gen, opts: opts}
}

// Answer retrieves context for question and returns the model's answer
// verbatim.
func (r *RAG) Answer(ctx context.Context, question string) (string, error) {
	p, err := r.BuildPrompt(ctx, question)
	if err != nil {
		return "", err
	}
	return r.gen.Generate(ctx, p, r.opts.MaxLength)
}

// BuildPrompt returns the prompt Answer sends. Without usable context the
// prompt carries the question alone; it never contains an empty context
// section.
func (r *RAG) BuildPrompt(ctx context.Context, question string) (string, error) {
	passages, err := r.searcher.Search(ctx, question, r.opts.TopK)
	switch {
	case errors.Is(err, retrieval.ErrUnavailable):
		log.Warn().Msg("No vector store, answering without context")
		passages = nil
	case err != nil:
		return "", err
	}

	retrieved := strings.Join(passages, models.ContextSeparator)
	if strings.TrimSpace(retrieved) == "" {
		return prompt.Compose(prompt.QuestionAnswer, prompt.Fields{prompt.FieldQuestion: question})
	}

	log.Debug().Int("passages", len(passages)).Msg("Retrieved context")
	return prompt.Compose(prompt.ContextAnswer, prompt.Fields{
		prompt.FieldContext:  retrieved,
		prompt.FieldQuestion: question,
	})
}
