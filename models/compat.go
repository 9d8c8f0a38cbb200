package models

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms/openai"
	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/provider"
)

const (
	// GitHubModelsBaseURL is the base URL for the GitHub Models API, one of
	// the OpenAI-compatible endpoints a config may point at.
	GitHubModelsBaseURL = "https://models.github.ai/inference"
)

// githubHeaderTransport wraps an http.RoundTripper and injects
// GitHub-specific headers into every request.
type githubHeaderTransport struct {
	base http.RoundTripper
}

func (t *githubHeaderTransport) Do(
	req *http.Request,
) (*http.Response, error) {
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	return t.base.RoundTrip(req)
}

// NewOpenAICompatible creates a LangChainGo-backed model for any
// OpenAI-compatible endpoint (OpenAI, DeepSeek, Moonshot, Ollama, GitHub
// Models, ...).
//
// The config's ModelID selects the chat model; for embedding-role configs it
// also selects the embedding model. Additional openai.Option values are
// applied last so callers can override the defaults (e.g. WithHTTPClient).
//
// Example:
//
//	model, err := models.NewOpenAICompatible(provider.ModelConfig{
//	    Name:       "deepseek-chat",
//	    Role:       genagents.RoleGeneral,
//	    Endpoint:   "https://api.deepseek.com/v1",
//	    Credential: os.Getenv("DEEPSEEK_API_KEY"),
//	    ModelID:    "deepseek-chat",
//	})
func NewOpenAICompatible(
	cfg provider.ModelConfig,
	opts ...openai.Option,
) (*LCGWrapper, error) {
	if cfg.Credential == "" {
		return nil, fmt.Errorf("model %s: credential is required", cfg.Name)
	}

	baseOpts := []openai.Option{
		openai.WithToken(cfg.Credential),
		openai.WithModel(cfg.ModelID),
	}
	if cfg.Endpoint != "" {
		baseOpts = append(baseOpts, openai.WithBaseURL(strings.TrimRight(cfg.Endpoint, "/")))
	}
	if cfg.Role == genagents.RoleEmbedding {
		baseOpts = append(baseOpts, openai.WithEmbeddingModel(cfg.ModelID))
	}
	if strings.HasPrefix(cfg.Endpoint, GitHubModelsBaseURL) {
		baseOpts = append(baseOpts, openai.WithHTTPClient(&githubHeaderTransport{
			base: http.DefaultTransport,
		}))
	}

	// Caller options come after so they can override defaults
	// (e.g. a custom HTTP client).
	allOpts := append(baseOpts, opts...)

	llm, err := openai.New(allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", cfg.Name, err)
	}

	return NewLCGWrapper(llm).WithModelName(cfg.Name), nil
}
