// Package mock provides a mock language-model invoker for running the pipeline
// without cloud credentials. Responses are picked by matching the prompt text,
// so the same transcript always yields the same enrichment.
package mock

import (
	"context"
	"strings"
	"sync"

	"call-summary-service/internal/service/llm"
)

// CannedResponse answers any prompt containing Match.
type CannedResponse struct {
	Match string
	Text  string
}

// DefaultResponses cover the enrichment questions.
var DefaultResponses = []CannedResponse{
	{Match: "customer intent", Text: " Billing enquiry"},
	{Match: "Summarise the call transcript", Text: " The customer asked about a charge on their bill and the agent explained it."},
	{Match: "customer sentiment", Text: " neutral"},
	{Match: "cancel an existing service", Text: " No"},
	{Match: "sign up to a new service", Text: " No"},
	{Match: "monthly recurring discount", Text: " No"},
}

// Call is one recorded invocation.
type Call struct {
	Prompt string
	Config llm.GenerationConfig
}

// Invoker implements llm.Invoker with canned responses.
type Invoker struct {
	mu        sync.Mutex
	responses []CannedResponse
	fallback  string
	err       error
	calls     []Call
}

// New creates a mock invoker answering with DefaultResponses.
func New() *Invoker {
	return NewWithResponses(DefaultResponses, "")
}

// NewWithResponses creates a mock invoker with custom responses. Prompts that
// match nothing receive fallback.
func NewWithResponses(responses []CannedResponse, fallback string) *Invoker {
	return &Invoker{
		responses: responses,
		fallback:  fallback,
	}
}

// FailWith makes every subsequent call return err.
func (i *Invoker) FailWith(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.err = err
}

// Invoke records the call and returns the first matching canned response.
func (i *Invoker) Invoke(ctx context.Context, prompt string, cfg llm.GenerationConfig) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.calls = append(i.calls, Call{Prompt: prompt, Config: cfg})

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if i.err != nil {
		return "", i.err
	}

	for _, r := range i.responses {
		if strings.Contains(prompt, r.Match) {
			return r.Text, nil
		}
	}
	return i.fallback, nil
}

// Calls returns a copy of the recorded invocations.
func (i *Invoker) Calls() []Call {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Call{}, i.calls...)
}
