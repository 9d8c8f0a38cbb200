package genagents

import (
	"context"
)

// -----------------------------------------------------------------------------
// Hook Interfaces
// -----------------------------------------------------------------------------
//
// Hooks observe task runs, provider calls and safe-response attempts. To use
// hooks:
//
//  1. Implement the desired hook interface(s)
//  2. Register with hooks.Registry
//  3. Pass the registry to the gateway and the task runtime
//
// Example:
//
//	type FallbackCounter struct {
//	    n atomic.Int64
//	}
//
//	func (h *FallbackCounter) OnFallback(ctx context.Context, e genagents.FallbackEvent) {
//	    h.n.Add(1)
//	}
//
//	registry := hooks.NewRegistry().Register(&FallbackCounter{})
//
// # Hook Execution Order
//
// Hooks are called in registration order, synchronously, on the goroutine
// that produced the event. Runs for different agents may fire concurrently,
// so hooks must be safe for concurrent use.
//
// # Error Handling
//
// Hooks do not return errors. A panicking hook propagates to the caller.
// -----------------------------------------------------------------------------

// BeforeRunHook is notified before a task run starts its safe-response loop.
type BeforeRunHook interface {
	OnBeforeRun(ctx context.Context, event BeforeRunEvent)
}

// AfterRunHook is notified after a task run finishes.
//
// It is called for every run that fired BeforeRun, and also for runs aborted
// by a configuration error before BeforeRun (with a partial Record).
type AfterRunHook interface {
	OnAfterRun(ctx context.Context, event AfterRunEvent)
}

// BeforeModelCallHook is notified before each provider call.
type BeforeModelCallHook interface {
	OnBeforeModelCall(ctx context.Context, event BeforeModelCallEvent)
}

// AfterModelCallHook is notified after each provider call.
type AfterModelCallHook interface {
	OnAfterModelCall(ctx context.Context, event AfterModelCallEvent)
}

// AttemptHook is notified after each safe-response attempt.
type AttemptHook interface {
	OnAttempt(ctx context.Context, event AttemptEvent)
}

// FallbackHook is notified when a safe-response loop degrades to its fallback.
type FallbackHook interface {
	OnFallback(ctx context.Context, event FallbackEvent)
}

// Dispatcher fires hook events. hooks.Registry is the standard implementation.
type Dispatcher interface {
	FireBeforeRun(ctx context.Context, event BeforeRunEvent)
	FireAfterRun(ctx context.Context, event AfterRunEvent)
	FireBeforeModelCall(ctx context.Context, event BeforeModelCallEvent)
	FireAfterModelCall(ctx context.Context, event AfterModelCallEvent)
	FireAttempt(ctx context.Context, event AttemptEvent)
	FireFallback(ctx context.Context, event FallbackEvent)
}
