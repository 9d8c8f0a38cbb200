package gateway

import "github.com/tmc/langchaingo/llms"

// userMessage builds the single-message conversation sent for a prompt.
func userMessage(prompt string) []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
}
