// Package prompt fills the fixed set of prompt templates used by the
// pipelines.
package prompt

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/prompts"

	"termai/internal/models"
)

// ID names one of the known templates.
type ID string

const (
	ChainOfThought   ID = "chain_of_thought"
	FinalAnswer      ID = "final_answer"
	ChunkSummary     ID = "chunk_summary"
	CombineSummaries ID = "combine_summaries"
	Refinement       ID = "refinement"
	QuestionAnswer   ID = "question_answer"
	ContextAnswer    ID = "context_answer"
)

// Field names.
const (
	FieldQuery            = "query"
	FieldReasoning        = "reasoning"
	FieldChunkText        = "chunk_text"
	FieldPartialSummaries = "partial_summaries"
	FieldOriginalText     = "original_text"
	FieldInstructions     = "instructions"
	FieldQuestion         = "question"
	FieldContext          = "context"
)

// Fields maps field names to their values.
type Fields map[string]string

var ErrUnknownTemplate = errors.New("unknown prompt template")

// MissingFieldError reports a required field that was not supplied.
type MissingFieldError struct {
	Template ID
	Field    string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("prompt %s: missing required field %q", e.Template, e.Field)
}

type template struct {
	text     string
	required []string
}

var templates = map[ID]template{
	ChainOfThought:   {models.ChainOfThoughtTemplate, []string{FieldQuery}},
	FinalAnswer:      {models.FinalAnswerTemplate, []string{FieldQuery, FieldReasoning}},
	ChunkSummary:     {models.ChunkSummaryTemplate, []string{FieldChunkText}},
	CombineSummaries: {models.CombineSummariesTemplate, []string{FieldPartialSummaries}},
	Refinement:       {models.RefinementTemplate, []string{FieldOriginalText, FieldInstructions}},
	QuestionAnswer:   {models.QuestionAnswerTemplate, []string{FieldQuestion}},
	ContextAnswer:    {models.ContextAnswerTemplate, []string{FieldContext, FieldQuestion}},
}

// IDs lists every known template.
func IDs() []ID {
	return []ID{ChainOfThought, FinalAnswer, ChunkSummary, CombineSummaries, Refinement, QuestionAnswer, ContextAnswer}
}

// Required returns the field names the template needs.
func Required(id ID) ([]string, error) {
	t, ok := templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return append([]string(nil), t.required...), nil
}

// Compose renders the template id with fields. Substitution happens in a
// single pass, so placeholders inside field values are left as they are.
// Empty values are allowed; absent ones are not.
func Compose(id ID, fields Fields) (string, error) {
	t, ok := templates[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}

	values := make(map[string]any, len(t.required))
	for _, name := range t.required {
		v, ok := fields[name]
		if !ok {
			return "", &MissingFieldError{Template: id, Field: name}
		}
		values[name] = v
	}

	out, err := prompts.RenderTemplate(t.text, prompts.TemplateFormatFString, values)
	if err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", id, err)
	}
	return out, nil
}
