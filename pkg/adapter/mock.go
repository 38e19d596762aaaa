package adapter

import (
	"context"
	"fmt"
)

// MockAdapter returns deterministic responses for local runs and tests.
type MockAdapter struct {
	responses       map[string]string
	defaultResponse string
	echoPrompt      bool
	err             error
	Calls           int
}

// NewMockAdapter creates a mock adapter that echoes the prompt back.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		responses:       make(map[string]string),
		defaultResponse: "mock response:",
		echoPrompt:      true,
	}
}

// NewMockAdapterWithResponses creates a mock adapter with predefined
// responses. The default response is returned verbatim for prompts
// without an exact-match entry.
func NewMockAdapterWithResponses(responses map[string]string, defaultResponse string) *MockAdapter {
	if defaultResponse == "" {
		defaultResponse = "mock response:"
	}
	return &MockAdapter{responses: responses, defaultResponse: defaultResponse}
}

// FailWith makes every Generate call return err.
func (a *MockAdapter) FailWith(err error) *MockAdapter {
	a.err = err
	return a
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Generate returns a deterministic response for the prompt.
func (a *MockAdapter) Generate(ctx context.Context, model string, prompt string) (*Response, error) {
	a.Calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.err != nil {
		return nil, a.err
	}
	if model == "" {
		model = "mock-1"
	}
	if response, ok := a.responses[prompt]; ok {
		return &Response{Content: response, Adapter: a.Name(), Model: model}, nil
	}
	content := a.defaultResponse
	if a.echoPrompt {
		content = fmt.Sprintf("%s\n%s", a.defaultResponse, prompt)
	}
	return &Response{Content: content, Adapter: a.Name(), Model: model}, nil
}
