package models

import (
	"fmt"

	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/provider"
)

// Factory builds a chat driver for a model config.
type Factory func(cfg provider.ModelConfig) (genagents.Model, error)

// EmbedderFactory builds an embedding driver for a model config.
type EmbedderFactory func(cfg provider.ModelConfig) (genagents.Embedder, error)

// FromConfig builds the chat driver named by cfg.Driver.
func FromConfig(cfg provider.ModelConfig) (genagents.Model, error) {
	switch cfg.DriverName() {
	case provider.DriverLangChainGo:
		model, err := NewOpenAICompatible(cfg)
		if err != nil {
			return nil, err
		}
		return model, nil
	case provider.DriverOpenAISDK:
		model, err := NewOpenAISDKModel(cfg)
		if err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("model %s: unknown driver %q", cfg.Name, cfg.Driver)
	}
}

// EmbedderFromConfig builds an embedding driver. Embeddings always go
// through LangChainGo regardless of cfg.Driver.
func EmbedderFromConfig(cfg provider.ModelConfig) (genagents.Embedder, error) {
	model, err := NewOpenAICompatible(cfg)
	if err != nil {
		return nil, err
	}
	return model, nil
}

var (
	_ Factory         = FromConfig
	_ EmbedderFactory = EmbedderFromConfig
)
