// Package refine rewrites text according to instructions in a single pass.
package refine

import (
	"context"

	"termai/internal/llmservice"
	"termai/internal/prompt"
)

const DefaultMaxLength = 200

type Refiner struct {
	gen       llmservice.Generator
	maxLength int
}

func New(gen llmservice.Generator, maxLength int) *Refiner {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Refiner{gen: gen, maxLength: maxLength}
}

// Refine makes exactly one completion call, whatever the quality of the
// result.
func (r *Refiner) Refine(ctx context.Context, text, instructions string) (string, error) {
	p, err := prompt.Compose(prompt.Refinement, prompt.Fields{
		prompt.FieldOriginalText: text,
		prompt.FieldInstructions: instructions,
	})
	if err != nil {
		return "", err
	}
	return r.gen.Generate(ctx, p, r.maxLength)
}
