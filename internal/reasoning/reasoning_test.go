package reasoning

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"termai/internal/llmservice/llmtest"
)

func TestReasonTwoStages(t *testing.T) {
	rec := &llmtest.Recorder{Reply: func(c llmtest.Call, n int) (string, error) {
		if n == 1 {
			return "First, consider {query}.\nThen conclude 42.", nil
		}
		return "42", nil
	}}
	r := New(rec, DefaultOptions())

	answer, err := r.Reason(context.Background(), "What is six times seven?")
	require.NoError(t, err)
	assert.Equal(t, "42", answer)

	calls := rec.Calls()
	require.Len(t, calls, 2)

	assert.True(t, strings.HasPrefix(calls[0].Prompt, "Break down the following query"))
	assert.Contains(t, calls[0].Prompt, "Query: What is six times seven?")
	assert.Equal(t, 250, calls[0].MaxLength)

	assert.Contains(t, calls[1].Prompt, "First, consider {query}.\nThen conclude 42.")
	assert.Contains(t, calls[1].Prompt, "Query: What is six times seven?")
	assert.Equal(t, 150, calls[1].MaxLength)
}

func TestReasonDoesNotSurfaceTrace(t *testing.T) {
	rec := &llmtest.Recorder{}
	answer, err := New(rec, DefaultOptions()).Reason(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "response 2", answer)
	assert.NotContains(t, answer, "response 1")
}

func TestReasonWithTrace(t *testing.T) {
	rec := &llmtest.Recorder{}
	trace, err := New(rec, DefaultOptions()).ReasonWithTrace(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, Trace{Reasoning: "response 1", Answer: "response 2"}, trace)
}

func TestReasonStopsWhenFirstStageFails(t *testing.T) {
	boom := errors.New("unreachable")
	rec := &llmtest.Recorder{Reply: func(llmtest.Call, int) (string, error) { return "", boom }}

	_, err := New(rec, DefaultOptions()).Reason(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.Calls(), 1)
}

func TestReasonCustomLimits(t *testing.T) {
	rec := &llmtest.Recorder{}
	_, err := New(rec, Options{ReasoningMaxLength: 64, AnswerMaxLength: 32}).Reason(context.Background(), "q")
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 64, calls[0].MaxLength)
	assert.Equal(t, 32, calls[1].MaxLength)
}
