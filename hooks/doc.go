// Package hooks provides a registry for observing task runs and provider calls.
//
// Each hook interface corresponds to a specific event type - implement only
// the interfaces you need.
//
// # Hook Interfaces
//
// Task run hooks:
//   - [genagents.BeforeRunHook] - Called once the prompt is resolved
//   - [genagents.AfterRunHook] - Called after the run returns
//
// Provider call hooks:
//   - [genagents.BeforeModelCallHook] - Called before each provider request
//   - [genagents.AfterModelCallHook] - Called after each provider request
//
// Safe-response hooks:
//   - [genagents.AttemptHook] - Called after each attempt of the retry loop
//   - [genagents.FallbackHook] - Called when the loop returns its fallback
//
// # Creating a Hook
//
//	type SlowCallHook struct{ threshold time.Duration }
//
//	func (h *SlowCallHook) OnAfterModelCall(
//	    ctx context.Context,
//	    event genagents.AfterModelCallEvent,
//	) {
//	    if event.Duration > h.threshold {
//	        log.Printf("slow call to %s: %v", event.Model, event.Duration)
//	    }
//	}
//
//	// Compile-time check
//	var _ genagents.AfterModelCallHook = (*SlowCallHook)(nil)
//
// # Registering Hooks
//
// One registry is usually shared by the gateway and the task runtime so a
// single hook sees both provider calls and run outcomes:
//
//	registry := hooks.NewRegistry().Register(&SlowCallHook{threshold: time.Second})
//	gw := gateway.New(providers, drivers).WithHooks(registry)
//	rt := &task.Runtime{Gateway: gw, Hooks: registry}
package hooks
