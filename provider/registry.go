// Package provider holds the model configurations and picks the one to use
// for each role.
package provider

import (
	"fmt"

	genagents "github.com/wafo210715/generative-agents"
	"go.uber.org/zap"
)

// Resolver picks the model configuration for a role.
type Resolver interface {
	ActiveConfig(role genagents.Role) (ModelConfig, error)
}

// Registry is an ordered, read-only set of model configurations grouped by
// role. It is safe for concurrent use once constructed.
type Registry struct {
	byRole map[genagents.Role][]ModelConfig
	logger *zap.Logger
}

var _ Resolver = (*Registry)(nil)

// NewRegistry creates a Registry. Registration order is preserved per role
// and decides both priority and the degraded-mode pick.
func NewRegistry(configs ...ModelConfig) *Registry {
	r := &Registry{
		byRole: make(map[genagents.Role][]ModelConfig),
		logger: zap.NewNop(),
	}
	for _, c := range configs {
		r.byRole[c.Role] = append(r.byRole[c.Role], c)
	}
	return r
}

// WithLogger sets the logger used to report degraded resolution.
func (r *Registry) WithLogger(logger *zap.Logger) *Registry {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// ActiveConfig returns the first active config registered for role.
//
// When none is active the first registered config is returned and a warning
// is logged; this keeps demos running without an "active" flag set. A role
// with no configs at all yields [genagents.ErrNoProviders].
func (r *Registry) ActiveConfig(role genagents.Role) (ModelConfig, error) {
	cfg, degraded, err := r.resolve(role)
	if err != nil {
		return ModelConfig{}, err
	}
	if degraded {
		r.logger.Warn("no active model for role, using first registered",
			zap.String("role", role.String()),
			zap.String("model", cfg.Name),
		)
	}
	return cfg, nil
}

// Degraded reports whether role resolves without an active config.
func (r *Registry) Degraded(role genagents.Role) bool {
	_, degraded, err := r.resolve(role)
	return err == nil && degraded
}

// Configs returns a copy of the configs registered for role, in order.
func (r *Registry) Configs(role genagents.Role) []ModelConfig {
	configs := r.byRole[role]
	out := make([]ModelConfig, len(configs))
	copy(out, configs)
	return out
}

func (r *Registry) resolve(role genagents.Role) (ModelConfig, bool, error) {
	if !role.Valid() {
		return ModelConfig{}, false, fmt.Errorf("%w: %q", genagents.ErrUnknownRole, role)
	}
	configs := r.byRole[role]
	if len(configs) == 0 {
		return ModelConfig{}, false, fmt.Errorf("%w: %s", genagents.ErrNoProviders, role)
	}
	for _, c := range configs {
		if c.Active {
			return c, false, nil
		}
	}
	return configs[0], true, nil
}
