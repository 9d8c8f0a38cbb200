package main

import (
	"fmt"
	"time"

	"github.com/wafo210715/generative-agents/gateway"
	"github.com/wafo210715/generative-agents/hooks"
	"github.com/wafo210715/generative-agents/models"
	"github.com/wafo210715/generative-agents/provider"
	"github.com/wafo210715/generative-agents/task"
	"github.com/wafo210715/generative-agents/tasks"
	"github.com/wafo210715/generative-agents/template"
	"go.uber.org/zap"
)

// env is everything a command needs, built from the config file.
type env struct {
	cfg       *provider.Config
	providers *provider.Registry
	templates *template.Engine
	hooks     *hooks.Registry
	gateway   *gateway.Gateway
}

func loadEnv(log *zap.Logger, extra ...any) (*env, error) {
	cfg, err := provider.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:       cfg,
		providers: cfg.Registry().WithLogger(log),
		hooks:     hooks.NewRegistry(),
	}
	for _, h := range extra {
		e.hooks.Register(h)
	}

	if cfg.Templates != "" {
		e.templates = template.NewDir(cfg.Templates)
	} else {
		e.templates = tasks.NewTemplateEngine()
	}

	e.gateway = gateway.New(e.providers, models.FromConfig).
		WithHooks(e.hooks).
		WithLogger(log)
	if cfg.Gateway.Delay != nil {
		e.gateway.WithDelay(*cfg.Gateway.Delay)
	}
	if cfg.Gateway.RequestsPerSecond > 0 {
		e.gateway.WithRateLimit(cfg.Gateway.RequestsPerSecond, cfg.Gateway.Burst)
	}
	return e, nil
}

func (e *env) runtime(log *zap.Logger) *task.Runtime {
	return &task.Runtime{
		Templates: e.templates,
		Gateway:   e.gateway,
		Hooks:     e.hooks,
		Logger:    log,
	}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
