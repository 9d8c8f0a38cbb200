package tt

import (
	"context"
	"sync"

	"github.com/tmc/langchaingo/llms"
	genagents "github.com/wafo210715/generative-agents"
)

// -----------------------------------------------------------------------------
// StubCompleter - implements genagents.Completer with queued responses
// -----------------------------------------------------------------------------

// StubCompleter returns queued responses in order. Once the queue is
// exhausted the last response repeats (or "" if none were queued).
// It is safe for concurrent use.
type StubCompleter struct {
	mu        sync.Mutex
	responses []string
	respond   func(prompt string, role genagents.Role) string
	checkErr  map[genagents.Role]error
	callCount int

	// Prompts stores the prompt of every call in order.
	Prompts []string

	// Roles stores the role of every call in order.
	Roles []genagents.Role
}

// NewStubCompleter creates a StubCompleter that replies with responses in order.
func NewStubCompleter(responses ...string) *StubCompleter {
	return &StubCompleter{responses: responses}
}

// WithFunc makes the completer compute each reply from the prompt instead of
// using the queue.
func (s *StubCompleter) WithFunc(fn func(prompt string, role genagents.Role) string) *StubCompleter {
	s.respond = fn
	return s
}

// Add queues more responses.
func (s *StubCompleter) Add(responses ...string) *StubCompleter {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, responses...)
	return s
}

// WithCheckError makes Check report err for role.
func (s *StubCompleter) WithCheckError(role genagents.Role, err error) *StubCompleter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkErr == nil {
		s.checkErr = make(map[genagents.Role]error)
	}
	s.checkErr[role] = err
	return s
}

// Check reports the error registered with WithCheckError, if any.
func (s *StubCompleter) Check(role genagents.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkErr[role]
}

// CallCount returns the number of times Complete has been called.
func (s *StubCompleter) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callCount
}

// Complete implements genagents.Completer.
func (s *StubCompleter) Complete(_ context.Context, prompt string, role genagents.Role) string {
	s.mu.Lock()
	idx := s.callCount
	s.callCount++
	s.Prompts = append(s.Prompts, prompt)
	s.Roles = append(s.Roles, role)
	respond := s.respond
	var resp string
	switch {
	case respond != nil:
	case idx < len(s.responses):
		resp = s.responses[idx]
	case len(s.responses) > 0:
		resp = s.responses[len(s.responses)-1]
	}
	s.mu.Unlock()

	if respond != nil {
		return respond(prompt, role)
	}
	return resp
}

// -----------------------------------------------------------------------------
// MockModel - implements genagents.Model and genagents.Embedder
// -----------------------------------------------------------------------------

// MockModel is a configurable mock driver. It is safe for concurrent use.
type MockModel struct {
	mu         sync.Mutex
	responses  []*genagents.ContentResponse
	errors     []error
	embeddings [][]float32
	embedErr   error
	callCount  int

	// CapturedMessages stores the messages passed to each
	// GenerateContent call.
	CapturedMessages [][]llms.MessageContent

	// CapturedTexts stores the texts passed to each CreateEmbedding call.
	CapturedTexts [][]string
}

// NewMockModel creates a new MockModel.
func NewMockModel() *MockModel {
	return &MockModel{}
}

// AddResponse queues a response with the specified content and token counts.
func (m *MockModel) AddResponse(content string, inputTokens, outputTokens int) *MockModel {
	m.responses = append(m.responses, &genagents.ContentResponse{
		Choices: []*genagents.ContentChoice{{Content: content}},
		Info: &genagents.GenerationInfo{
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			TotalTokens:  inputTokens + outputTokens,
		},
	})
	m.errors = append(m.errors, nil)
	return m
}

// AddRawResponse queues a raw ContentResponse.
// Use this when you need full control over the response
// structure (e.g., empty Choices slice).
func (m *MockModel) AddRawResponse(resp *genagents.ContentResponse) *MockModel {
	m.responses = append(m.responses, resp)
	m.errors = append(m.errors, nil)
	return m
}

// AddError queues an error for the next call.
func (m *MockModel) AddError(err error) *MockModel {
	m.responses = append(m.responses, nil)
	m.errors = append(m.errors, err)
	return m
}

// WithEmbedding sets the vector returned by CreateEmbedding for every text.
func (m *MockModel) WithEmbedding(vector []float32) *MockModel {
	m.embeddings = [][]float32{vector}
	return m
}

// WithEmbeddingError makes CreateEmbedding fail with err.
func (m *MockModel) WithEmbeddingError(err error) *MockModel {
	m.embedErr = err
	return m
}

// CallCount returns the number of times GenerateContent has been called.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// GenerateContent implements genagents.Model.
func (m *MockModel) GenerateContent(
	_ context.Context,
	messages []llms.MessageContent,
	_ ...llms.CallOption,
) (*genagents.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	m.callCount++
	m.CapturedMessages = append(m.CapturedMessages, messages)

	if idx < len(m.errors) && m.errors[idx] != nil {
		return nil, m.errors[idx]
	}
	if idx < len(m.responses) && m.responses[idx] != nil {
		return m.responses[idx], nil
	}
	return &genagents.ContentResponse{
		Choices: []*genagents.ContentChoice{{Content: `{"output": "done"}`}},
		Info:    &genagents.GenerationInfo{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}, nil
}

// CreateEmbedding implements genagents.Embedder.
func (m *MockModel) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CapturedTexts = append(m.CapturedTexts, texts)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		if len(m.embeddings) > 0 {
			out[i] = m.embeddings[0]
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// MockLLM - implements LangChainGo's llms.Model
// -----------------------------------------------------------------------------

// MockLLM is a minimal llms.Model returning a fixed response or error.
type MockLLM struct {
	Response *llms.ContentResponse
	Err      error

	// Embeddings is returned by CreateEmbedding when non-nil.
	Embeddings [][]float32
}

// GenerateContent implements llms.Model.
func (m *MockLLM) GenerateContent(
	_ context.Context,
	_ []llms.MessageContent,
	_ ...llms.CallOption,
) (*llms.ContentResponse, error) {
	return m.Response, m.Err
}

// Call implements llms.Model.
func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// MockEmbeddingLLM is a MockLLM that can also embed text.
type MockEmbeddingLLM struct {
	MockLLM
}

// CreateEmbedding returns m.Embeddings.
func (m *MockEmbeddingLLM) CreateEmbedding(_ context.Context, _ []string) ([][]float32, error) {
	return m.Embeddings, m.Err
}

var (
	_ genagents.Completer = (*StubCompleter)(nil)
	_ genagents.Model     = (*MockModel)(nil)
	_ genagents.Embedder  = (*MockModel)(nil)
	_ llms.Model          = (*MockLLM)(nil)
)
