package hooks

import (
	"context"

	genagents "github.com/wafo210715/generative-agents"
)

// Registry manages a collection of hooks and dispatches events to them.
//
// # Overview
//
// Registry is the central coordination point for hooks. It:
//   - Stores registered hooks in order
//   - Dispatches events to hooks that implement the relevant interface
//
// Hooks can implement any combination of hook interfaces - they only receive
// events for the interfaces they implement.
//
// # Creating and Using
//
//	registry := hooks.NewRegistry().
//	    Register(debugtrace.NewLogHook(logger)).
//	    Register(observe.NewMetrics(prometheus.DefaultRegisterer))
//
//	gw := gateway.New(providers, drivers).WithHooks(registry)
//	rt := &task.Runtime{Templates: engine, Gateway: gw, Hooks: registry}
//
// # Hooks with Multiple Interfaces
//
//	type FallbackAudit struct {
//	    logger *zap.Logger
//	}
//
//	func (h *FallbackAudit) OnAttempt(ctx context.Context, e genagents.AttemptEvent) {
//	    h.logger.Debug("attempt", zap.String("task", e.Name), zap.Error(e.Err))
//	}
//
//	func (h *FallbackAudit) OnFallback(ctx context.Context, e genagents.FallbackEvent) {
//	    h.logger.Info("fallback", zap.String("task", e.Name))
//	}
//
// # Thread Safety
//
// Registry is NOT safe for concurrent Register calls. Register all hooks
// before the first run; Fire methods may then be called concurrently.
// A nil *Registry is valid and fires nothing.
type Registry struct {
	hooks []any
}

var _ genagents.Dispatcher = (*Registry)(nil)

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make([]any, 0),
	}
}

// Register adds a hook to the registry. The hook can implement any combination
// of hook interfaces (BeforeRunHook, AttemptHook, etc.).
//
// Hooks are called in the order they are registered.
func (r *Registry) Register(hook any) *Registry {
	r.hooks = append(r.hooks, hook)
	return r
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.hooks)
}

// FireBeforeRun dispatches a BeforeRunEvent to all registered BeforeRunHook
// implementations.
func (r *Registry) FireBeforeRun(ctx context.Context, event genagents.BeforeRunEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(genagents.BeforeRunHook); ok {
			hook.OnBeforeRun(ctx, event)
		}
	}
}

// FireAfterRun dispatches an AfterRunEvent to all registered AfterRunHook
// implementations.
func (r *Registry) FireAfterRun(ctx context.Context, event genagents.AfterRunEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(genagents.AfterRunHook); ok {
			hook.OnAfterRun(ctx, event)
		}
	}
}

// FireBeforeModelCall dispatches a BeforeModelCallEvent to all registered
// BeforeModelCallHook implementations.
func (r *Registry) FireBeforeModelCall(
	ctx context.Context,
	event genagents.BeforeModelCallEvent,
) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(genagents.BeforeModelCallHook); ok {
			hook.OnBeforeModelCall(ctx, event)
		}
	}
}

// FireAfterModelCall dispatches an AfterModelCallEvent to all registered
// AfterModelCallHook implementations.
func (r *Registry) FireAfterModelCall(
	ctx context.Context,
	event genagents.AfterModelCallEvent,
) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(genagents.AfterModelCallHook); ok {
			hook.OnAfterModelCall(ctx, event)
		}
	}
}

// FireAttempt dispatches an AttemptEvent to all registered AttemptHook
// implementations.
func (r *Registry) FireAttempt(ctx context.Context, event genagents.AttemptEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(genagents.AttemptHook); ok {
			hook.OnAttempt(ctx, event)
		}
	}
}

// FireFallback dispatches a FallbackEvent to all registered FallbackHook
// implementations.
func (r *Registry) FireFallback(ctx context.Context, event genagents.FallbackEvent) {
	if r == nil {
		return
	}
	for _, h := range r.hooks {
		if hook, ok := h.(genagents.FallbackHook); ok {
			hook.OnFallback(ctx, event)
		}
	}
}
