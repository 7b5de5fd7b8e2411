// Package reasoning answers a query in two steps: it first asks the model
// for a chain-of-thought, then distills that trace into a final answer.
package reasoning

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"termai/internal/llmservice"
	"termai/internal/prompt"
)

type Options struct {
	ReasoningMaxLength int
	AnswerMaxLength    int
}

func DefaultOptions() Options {
	return Options{ReasoningMaxLength: 250, AnswerMaxLength: 150}
}

// Trace holds both stages of one reasoning run.
type Trace struct {
	Reasoning string
	Answer    string
}

type Reasoner struct {
	gen  llmservice.Generator
	opts Options
}

func New(gen llmservice.Generator, opts Options) *Reasoner {
	def := DefaultOptions()
	if opts.ReasoningMaxLength <= 0 {
		opts.ReasoningMaxLength = def.ReasoningMaxLength
	}
	if opts.AnswerMaxLength <= 0 {
		opts.AnswerMaxLength = def.AnswerMaxLength
	}
	return &Reasoner{gen: gen, opts: opts}
}

// Reason returns only the final answer for query.
func (r *Reasoner) Reason(ctx context.Context, query string) (string, error) {
	trace, err := r.ReasonWithTrace(ctx, query)
	if err != nil {
		return "", err
	}
	return trace.Answer, nil
}

// ReasonWithTrace returns the intermediate chain-of-thought along with the
// final answer.
func (r *Reasoner) ReasonWithTrace(ctx context.Context, query string) (Trace, error) {
	cot, err := prompt.Compose(prompt.ChainOfThought, prompt.Fields{prompt.FieldQuery: query})
	if err != nil {
		return Trace{}, err
	}
	reasoning, err := r.gen.Generate(ctx, cot, r.opts.ReasoningMaxLength)
	if err != nil {
		return Trace{}, fmt.Errorf("chain-of-thought: %w", err)
	}
	log.Debug().Int("reasoning_chars", len(reasoning)).Msg("Generated chain-of-thought")

	final, err := prompt.Compose(prompt.FinalAnswer, prompt.Fields{
		prompt.FieldQuery:     query,
		prompt.FieldReasoning: reasoning,
	})
	if err != nil {
		return Trace{}, err
	}
	answer, err := r.gen.Generate(ctx, final, r.opts.AnswerMaxLength)
	if err != nil {
		return Trace{}, fmt.Errorf("final answer: %w", err)
	}
	return Trace{Reasoning: reasoning, Answer: answer}, nil
}
