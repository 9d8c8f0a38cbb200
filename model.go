package genagents

import (
	"context"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// Model is the chat-completion surface of a provider driver. It mirrors
// LangChainGo's llms.Model but returns a [ContentResponse] with normalized
// token counts, so drivers built on other SDKs fit behind the same interface.
type Model interface {
	// GenerateContent generates content from a sequence of messages.
	GenerateContent(
		ctx context.Context,
		messages []llms.MessageContent,
		options ...llms.CallOption,
	) (
		*ContentResponse,
		error,
	)
}

// Embedder turns text into embedding vectors.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer performs one round-trip completion for a role.
//
// Implementations never return an error: a transport or provider failure is
// reported as a sentinel text of the form "<provider> ERROR", which callers
// treat as ordinary (unparsable) output.
type Completer interface {
	Complete(ctx context.Context, prompt string, role Role) string
}

// ContentResponse is the response from a GenerateContent call.
type ContentResponse struct {
	// Choices contains the generated content choices.
	Choices []*ContentChoice

	// Info contains generation metadata including normalized token counts.
	Info *GenerationInfo
}

// ContentChoice is a single content choice from the model.
type ContentChoice struct {
	// Content is the textual content of the response.
	Content string

	// StopReason is the reason the model stopped generating.
	StopReason string

	// ReasoningContent contains reasoning/thinking content if supported.
	ReasoningContent string
}

// GenerationInfo contains metadata about the generation including normalized token counts.
type GenerationInfo struct {
	// InputTokens is the number of input/prompt tokens used.
	InputTokens int

	// OutputTokens is the number of output/completion tokens generated.
	OutputTokens int

	// TotalTokens is the total token count (InputTokens + OutputTokens).
	// Some providers return this directly; otherwise it's computed.
	TotalTokens int

	// RawGenerationInfo contains the original provider-specific GenerationInfo map.
	RawGenerationInfo map[string]any

	// Duration is how long the generation took.
	Duration time.Duration
}

// Generate sends prompt as the sole user message and returns the content of
// the first choice.
func Generate(ctx context.Context, model Model, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
