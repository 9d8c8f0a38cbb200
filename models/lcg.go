package models

import (
	"context"
	"errors"
	"time"

	"github.com/tmc/langchaingo/llms"
	genagents "github.com/wafo210715/generative-agents"
)

// ErrEmbeddingsUnsupported is returned by CreateEmbedding when the wrapped
// model cannot produce embeddings.
var ErrEmbeddingsUnsupported = errors.New("model does not support embeddings")

// embeddingClient is implemented by LangChainGo clients that can embed text
// (openai.LLM, ollama.LLM, ...).
type embeddingClient interface {
	CreateEmbedding(ctx context.Context, inputTexts []string) ([][]float32, error)
}

// LCGWrapper wraps an llms.Model and implements genagents.Model.
// It normalizes token usage across providers.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey), openai.WithBaseURL(endpoint))
//	model := models.NewLCGWrapper(llm).WithModelName("deepseek-chat")
//	text, err := genagents.Generate(ctx, model, prompt)
type LCGWrapper struct {
	model     llms.Model
	modelName string
}

// NewLCGWrapper creates a new LCGWrapper wrapping the given llms.Model.
func NewLCGWrapper(model llms.Model) *LCGWrapper {
	return &LCGWrapper{
		model: model,
	}
}

// WithModelName sets the model name reported by Name.
// Returns the model for chaining.
func (m *LCGWrapper) WithModelName(name string) *LCGWrapper {
	m.modelName = name
	return m
}

// Name returns the model name set with WithModelName.
func (m *LCGWrapper) Name() string {
	return m.modelName
}

// Unwrap returns the underlying llms.Model.
func (m *LCGWrapper) Unwrap() llms.Model {
	return m.model
}

// GenerateContent implements genagents.Model.GenerateContent.
// Token usage is normalized across providers.
func (m *LCGWrapper) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*genagents.ContentResponse, error) {
	startTime := time.Now()
	lcgResponse, err := m.model.GenerateContent(ctx, messages, options...)
	duration := time.Since(startTime)

	var response *genagents.ContentResponse
	if lcgResponse != nil {
		response = convertLCGResponse(lcgResponse, duration)
	}
	return response, err
}

// CreateEmbedding implements genagents.Embedder when the wrapped model is an
// embedding-capable LangChainGo client.
func (m *LCGWrapper) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	client, ok := m.model.(embeddingClient)
	if !ok {
		return nil, ErrEmbeddingsUnsupported
	}
	return client.CreateEmbedding(ctx, texts)
}

// convertLCGResponse converts an llms.ContentResponse to genagents.ContentResponse
// with normalized tokens.
func convertLCGResponse(
	lcgResponse *llms.ContentResponse,
	duration time.Duration,
) *genagents.ContentResponse {
	response := &genagents.ContentResponse{
		Choices: make([]*genagents.ContentChoice, len(lcgResponse.Choices)),
		Info:    &genagents.GenerationInfo{Duration: duration},
	}

	for i, choice := range lcgResponse.Choices {
		response.Choices[i] = &genagents.ContentChoice{
			Content:          choice.Content,
			StopReason:       choice.StopReason,
			ReasoningContent: choice.ReasoningContent,
		}
	}

	// Token info lives on the first choice's GenerationInfo
	if len(lcgResponse.Choices) > 0 && lcgResponse.Choices[0].GenerationInfo != nil {
		rawInfo := lcgResponse.Choices[0].GenerationInfo
		response.Info.RawGenerationInfo = rawInfo
		response.Info.InputTokens = extractInputTokens(rawInfo)
		response.Info.OutputTokens = extractOutputTokens(rawInfo)
		response.Info.TotalTokens = extractTotalTokens(
			rawInfo,
			response.Info.InputTokens,
			response.Info.OutputTokens,
		)
	}

	return response
}

// extractInputTokens extracts input/prompt token count from GenerationInfo.
// Handles different key names used by different providers.
func extractInputTokens(info map[string]any) int {
	// OpenAI-compatible (DeepSeek, Moonshot, Ollama)
	if v := getIntFromMap(info, "PromptTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getIntFromMap(info, "InputTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	if v := getIntFromMap(info, "input_tokens"); v > 0 {
		return v
	}
	return 0
}

// extractOutputTokens extracts output/completion token count from GenerationInfo.
func extractOutputTokens(info map[string]any) int {
	if v := getIntFromMap(info, "CompletionTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "OutputTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "output_tokens"); v > 0 {
		return v
	}
	return 0
}

// extractTotalTokens extracts total token count or computes it.
func extractTotalTokens(info map[string]any, input, output int) int {
	if v := getIntFromMap(info, "TotalTokens"); v > 0 {
		return v
	}
	if v := getIntFromMap(info, "total_tokens"); v > 0 {
		return v
	}
	return input + output
}

// getIntFromMap extracts an int value from a map, handling various numeric types.
func getIntFromMap(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	default:
		return 0
	}
}

var (
	_ genagents.Model    = (*LCGWrapper)(nil)
	_ genagents.Embedder = (*LCGWrapper)(nil)
)
