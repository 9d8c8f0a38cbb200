// Package gateway sends prompts to the model configured for a role.
//
// The gateway never returns transport errors to its callers. A failed call
// yields the text "<provider> ERROR", which the safe-response loop treats as
// one more unparsable answer.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/models"
	"github.com/wafo210715/generative-agents/provider"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultDelay is the pause before every provider call.
	DefaultDelay = 100 * time.Millisecond

	// EmbeddingDimensions is the length of the placeholder vector returned
	// when no embedding can be obtained.
	EmbeddingDimensions = 1536

	// BlankText replaces empty input to Embed.
	BlankText = "this is blank"

	// UnknownProvider identifies the provider in sentinels when no config
	// could be resolved.
	UnknownProvider = "unknown"

	sentinelSuffix = " ERROR"
)

// Sentinel returns the failure text for a provider identifier.
func Sentinel(providerID string) string {
	return providerID + sentinelSuffix
}

// IsSentinel reports whether text is a gateway failure sentinel.
func IsSentinel(text string) bool {
	return strings.HasSuffix(text, sentinelSuffix) && !strings.ContainsAny(text, "{}\n")
}

// Gateway performs completions and embeddings against the configured
// providers. It is safe for concurrent use.
//
// Example:
//
//	gw := gateway.New(registry, models.FromConfig).
//	    WithLogger(logger).
//	    WithHooks(hookRegistry)
//	text := gw.Complete(ctx, prompt, genagents.RoleGeneral)
type Gateway struct {
	resolver  provider.Resolver
	factory   models.Factory
	embedders models.EmbedderFactory

	delay   time.Duration
	limiter *rate.Limiter
	hooks   genagents.Dispatcher
	logger  *zap.Logger

	mu        sync.Mutex
	chat      map[string]genagents.Model
	embedding map[string]genagents.Embedder
	rng       *rand.Rand
}

var _ genagents.Completer = (*Gateway)(nil)

// New creates a Gateway resolving configs with resolver and building chat
// drivers with factory. Drivers are built on first use and reused.
func New(resolver provider.Resolver, factory models.Factory) *Gateway {
	return &Gateway{
		resolver:  resolver,
		factory:   factory,
		embedders: models.EmbedderFromConfig,
		delay:     DefaultDelay,
		logger:    zap.NewNop(),
		chat:      make(map[string]genagents.Model),
		embedding: make(map[string]genagents.Embedder),
		rng:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
}

// WithEmbedderFactory sets the factory for embedding drivers.
func (g *Gateway) WithEmbedderFactory(factory models.EmbedderFactory) *Gateway {
	g.embedders = factory
	return g
}

// WithDelay sets the pause before every provider call. Zero disables it.
func (g *Gateway) WithDelay(d time.Duration) *Gateway {
	g.delay = max(d, 0)
	return g
}

// WithRateLimit adds a token-bucket limiter shared by all calls.
// A non-positive rps removes the limiter.
func (g *Gateway) WithRateLimit(rps float64, burst int) *Gateway {
	if rps <= 0 {
		g.limiter = nil
		return g
	}
	g.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	return g
}

// WithHooks sets the dispatcher for model call events.
func (g *Gateway) WithHooks(hooks genagents.Dispatcher) *Gateway {
	g.hooks = hooks
	return g
}

// WithLogger sets the logger.
func (g *Gateway) WithLogger(logger *zap.Logger) *Gateway {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithSeed makes placeholder embeddings deterministic.
func (g *Gateway) WithSeed(seed uint64) *Gateway {
	g.rng = rand.New(rand.NewPCG(seed, 0))
	return g
}

// Check reports whether role resolves to a config. A non-nil error is a
// configuration failure ([genagents.ErrNoProviders] or
// [genagents.ErrUnknownRole]).
func (g *Gateway) Check(role genagents.Role) error {
	_, err := g.resolver.ActiveConfig(role)
	return err
}

// Complete sends prompt as the sole user message to the model resolved for
// role and returns its reply.
//
// Every failure is reported as a sentinel text, never as an error: the
// endpoint host of the resolved config followed by " ERROR", or
// "unknown ERROR" if no config could be resolved.
func (g *Gateway) Complete(ctx context.Context, prompt string, role genagents.Role) string {
	cfg, err := g.resolver.ActiveConfig(role)
	if err != nil {
		g.logger.Error("model resolution failed",
			zap.String("role", role.String()),
			zap.Error(err),
		)
		return Sentinel(UnknownProvider)
	}

	if err := g.wait(ctx); err != nil {
		return g.fail(cfg, err)
	}

	model, err := g.chatModel(cfg)
	if err != nil {
		return g.fail(cfg, err)
	}

	g.fireBefore(ctx, genagents.BeforeModelCallEvent{
		Model:   cfg.Name,
		ModelID: cfg.ModelID,
		Role:    role,
		Prompt:  prompt,
	})

	start := time.Now()
	resp, err := model.GenerateContent(ctx, userMessage(prompt))
	duration := time.Since(start)
	if err == nil && (resp == nil || len(resp.Choices) == 0) {
		err = genagents.ErrEmptyResponse
	}

	after := genagents.AfterModelCallEvent{
		Model:    cfg.Name,
		ModelID:  cfg.ModelID,
		Role:     role,
		Prompt:   prompt,
		Duration: duration,
		Error:    err,
	}
	if resp != nil {
		after.Info = resp.Info
	}

	var text string
	if err != nil {
		text = g.fail(cfg, err)
	} else {
		text = resp.Choices[0].Content
		g.logger.Debug("model call completed",
			zap.String("model", cfg.Name),
			zap.Duration("duration", duration),
		)
	}
	after.Response = text
	g.fireAfter(ctx, after)
	return text
}

// Embed returns the embedding of text from the active embedding model.
//
// Newlines are replaced by spaces and empty text becomes [BlankText]. When no
// embedding model is active, or the call fails, a pseudo-random vector of
// [EmbeddingDimensions] values in [0, 1) is returned so callers can proceed.
func (g *Gateway) Embed(ctx context.Context, text string) []float32 {
	text = strings.ReplaceAll(text, "\n", " ")
	if text == "" {
		text = BlankText
	}

	cfg, err := g.resolver.ActiveConfig(genagents.RoleEmbedding)
	if err == nil && !cfg.Active {
		err = fmt.Errorf("%w: no active embedding model", genagents.ErrNoProviders)
	}
	if err != nil {
		g.logger.Warn("embedding unavailable, using placeholder vector", zap.Error(err))
		return g.placeholder()
	}

	vec, err := g.embed(ctx, cfg, text)
	if err != nil {
		g.logger.Error("embedding failed, using placeholder vector",
			zap.String("model", cfg.Name),
			zap.Error(err),
		)
		return g.placeholder()
	}
	return vec
}

func (g *Gateway) embed(ctx context.Context, cfg provider.ModelConfig, text string) ([]float32, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	embedder, err := g.embedder(cfg)
	if err != nil {
		return nil, err
	}
	vecs, err := embedder.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, errors.New("empty embedding")
	}
	return vecs[0], nil
}

// wait applies the fixed delay and the rate limiter.
func (g *Gateway) wait(ctx context.Context) error {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}
	return nil
}

func (g *Gateway) fail(cfg provider.ModelConfig, err error) string {
	host := cfg.Host()
	g.logger.Error("model call failed",
		zap.String("provider", host),
		zap.String("model", cfg.Name),
		zap.Error(err),
	)
	return Sentinel(host)
}

func (g *Gateway) chatModel(cfg provider.ModelConfig) (genagents.Model, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := driverKey(cfg)
	if m, ok := g.chat[key]; ok {
		return m, nil
	}
	if g.factory == nil {
		return nil, errors.New("no model factory configured")
	}
	m, err := g.factory(cfg)
	if err != nil {
		return nil, err
	}
	g.chat[key] = m
	return m, nil
}

func (g *Gateway) embedder(cfg provider.ModelConfig) (genagents.Embedder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := driverKey(cfg)
	if e, ok := g.embedding[key]; ok {
		return e, nil
	}
	if g.embedders == nil {
		return nil, errors.New("no embedder factory configured")
	}
	e, err := g.embedders(cfg)
	if err != nil {
		return nil, err
	}
	g.embedding[key] = e
	return e, nil
}

// driverKey identifies a memoized driver. Names are only unique within a
// role.
func driverKey(cfg provider.ModelConfig) string {
	return string(cfg.Role) + "/" + cfg.Name
}

func (g *Gateway) placeholder() []float32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	vec := make([]float32, EmbeddingDimensions)
	for i := range vec {
		vec[i] = g.rng.Float32()
	}
	return vec
}

func (g *Gateway) fireBefore(ctx context.Context, e genagents.BeforeModelCallEvent) {
	if g.hooks != nil {
		g.hooks.FireBeforeModelCall(ctx, e)
	}
}

func (g *Gateway) fireAfter(ctx context.Context, e genagents.AfterModelCallEvent) {
	if g.hooks != nil {
		g.hooks.FireAfterModelCall(ctx, e)
	}
}
