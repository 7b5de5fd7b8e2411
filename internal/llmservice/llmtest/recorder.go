// Package llmtest provides a scripted Generator for pipeline tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"
)

// Call is one recorded Generate invocation.
type Call struct {
	Prompt    string
	MaxLength int
}

// Recorder records every prompt it receives. Reply decides the output; when
// nil, the recorder answers "response N" with N the 1-based call number.
type Recorder struct {
	Reply func(call Call, n int) (string, error)

	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) Generate(_ context.Context, prompt string, maxLength int) (string, error) {
	call := Call{Prompt: prompt, MaxLength: maxLength}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	n := len(r.calls)
	r.mu.Unlock()

	if r.Reply == nil {
		return fmt.Sprintf("response %d", n), nil
	}
	return r.Reply(call, n)
}

// Calls returns a copy of the recorded calls in arrival order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}
