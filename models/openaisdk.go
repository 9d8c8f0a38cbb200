package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/tmc/langchaingo/llms"
	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/provider"
)

// OpenAISDKModel is a chat driver built on the official openai-go SDK.
//
// It sends requests with SDK retries disabled: one Complete call is one
// HTTP request, and retrying is left to the safe-response loop.
// Call options are ignored; provider defaults apply.
type OpenAISDKModel struct {
	client    openai.Client
	modelID   string
	modelName string
}

// NewOpenAISDKModel creates an OpenAISDKModel for cfg. Extra request options
// are applied after the defaults.
func NewOpenAISDKModel(
	cfg provider.ModelConfig,
	opts ...option.RequestOption,
) (*OpenAISDKModel, error) {
	if cfg.Credential == "" {
		return nil, fmt.Errorf("model %s: credential is required", cfg.Name)
	}

	baseOpts := []option.RequestOption{
		option.WithAPIKey(cfg.Credential),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		baseOpts = append(baseOpts, option.WithBaseURL(cfg.Endpoint))
	}
	if strings.HasPrefix(cfg.Endpoint, GitHubModelsBaseURL) {
		baseOpts = append(baseOpts, option.WithHeader("X-GitHub-Api-Version", "2022-11-28"))
	}

	return &OpenAISDKModel{
		client:    openai.NewClient(append(baseOpts, opts...)...),
		modelID:   cfg.ModelID,
		modelName: cfg.Name,
	}, nil
}

// Name returns the config name the model was built from.
func (m *OpenAISDKModel) Name() string {
	return m.modelName
}

// GenerateContent implements genagents.Model.GenerateContent.
func (m *OpenAISDKModel) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	_ ...llms.CallOption,
) (*genagents.ContentResponse, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.modelID),
		Messages: convertMessages(messages),
	}

	startTime := time.Now()
	resp, err := m.client.Chat.Completions.New(ctx, params)
	duration := time.Since(startTime)
	if err != nil {
		return nil, err
	}

	response := &genagents.ContentResponse{
		Choices: make([]*genagents.ContentChoice, len(resp.Choices)),
		Info: &genagents.GenerationInfo{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
			Duration:     duration,
		},
	}
	if response.Info.TotalTokens == 0 {
		response.Info.TotalTokens = response.Info.InputTokens + response.Info.OutputTokens
	}
	for i, choice := range resp.Choices {
		response.Choices[i] = &genagents.ContentChoice{
			Content:    choice.Message.Content,
			StopReason: string(choice.FinishReason),
		}
	}
	return response, nil
}

// convertMessages flattens LangChainGo messages to text-only chat messages.
func convertMessages(messages []llms.MessageContent) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		var sb strings.Builder
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				sb.WriteString(text.Text)
			}
		}
		text := sb.String()

		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			out = append(out, openai.SystemMessage(text))
		case llms.ChatMessageTypeAI:
			out = append(out, openai.AssistantMessage(text))
		default:
			out = append(out, openai.UserMessage(text))
		}
	}
	return out
}

var _ genagents.Model = (*OpenAISDKModel)(nil)
