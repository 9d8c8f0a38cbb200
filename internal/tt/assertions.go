package tt

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	genagents "github.com/wafo210715/generative-agents"
)

// -----------------------------------------------------------------------------
// RecordingHook - collects every hook event
// -----------------------------------------------------------------------------

// RecordingHook implements every hook interface and records the events it
// receives. It is safe for concurrent use.
type RecordingHook struct {
	mu     sync.Mutex
	events []genagents.HookEvent
}

// NewRecordingHook creates an empty RecordingHook.
func NewRecordingHook() *RecordingHook {
	return &RecordingHook{}
}

func (h *RecordingHook) record(e genagents.HookEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

// Events returns a copy of the recorded events.
func (h *RecordingHook) Events() []genagents.HookEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]genagents.HookEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Attempts returns the recorded AttemptEvents.
func (h *RecordingHook) Attempts() []genagents.AttemptEvent {
	var out []genagents.AttemptEvent
	for _, e := range h.Events() {
		if a, ok := e.(genagents.AttemptEvent); ok {
			out = append(out, a)
		}
	}
	return out
}

// Fallbacks returns the recorded FallbackEvents.
func (h *RecordingHook) Fallbacks() []genagents.FallbackEvent {
	var out []genagents.FallbackEvent
	for _, e := range h.Events() {
		if f, ok := e.(genagents.FallbackEvent); ok {
			out = append(out, f)
		}
	}
	return out
}

func (h *RecordingHook) OnBeforeRun(_ context.Context, e genagents.BeforeRunEvent) { h.record(e) }
func (h *RecordingHook) OnAfterRun(_ context.Context, e genagents.AfterRunEvent)   { h.record(e) }
func (h *RecordingHook) OnAttempt(_ context.Context, e genagents.AttemptEvent)     { h.record(e) }
func (h *RecordingHook) OnFallback(_ context.Context, e genagents.FallbackEvent)   { h.record(e) }

func (h *RecordingHook) OnBeforeModelCall(_ context.Context, e genagents.BeforeModelCallEvent) {
	h.record(e)
}

func (h *RecordingHook) OnAfterModelCall(_ context.Context, e genagents.AfterModelCallEvent) {
	h.record(e)
}

// -----------------------------------------------------------------------------
// Event Assertion Helpers
// -----------------------------------------------------------------------------

// EventTypeNames returns the type name of each event, in order.
func EventTypeNames(events []genagents.HookEvent) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = eventTypeName(e)
	}
	return names
}

func eventTypeName(event genagents.HookEvent) string {
	switch event.(type) {
	case genagents.BeforeRunEvent:
		return "BeforeRun"
	case genagents.AfterRunEvent:
		return "AfterRun"
	case genagents.BeforeModelCallEvent:
		return "BeforeModelCall"
	case genagents.AfterModelCallEvent:
		return "AfterModelCall"
	case genagents.AttemptEvent:
		return "Attempt"
	case genagents.FallbackEvent:
		return "Fallback"
	default:
		return "Unknown"
	}
}

// AssertAttempts asserts attempt numbering and which attempts failed.
// failed[i] is whether attempt i+1 is expected to carry an error.
func AssertAttempts(t *testing.T, failed []bool, actual []genagents.AttemptEvent) {
	t.Helper()

	if !assert.Equal(t, len(failed), len(actual), "attempt count mismatch") {
		return
	}
	for i, a := range actual {
		assert.Equal(t, i+1, a.Number, "attempt[%d].Number", i)
		if failed[i] {
			assert.Error(t, a.Err, "attempt[%d].Err", i)
		} else {
			assert.NoError(t, a.Err, "attempt[%d].Err", i)
		}
	}
}

var (
	_ genagents.BeforeRunHook       = (*RecordingHook)(nil)
	_ genagents.AfterRunHook        = (*RecordingHook)(nil)
	_ genagents.BeforeModelCallHook = (*RecordingHook)(nil)
	_ genagents.AfterModelCallHook  = (*RecordingHook)(nil)
	_ genagents.AttemptHook         = (*RecordingHook)(nil)
	_ genagents.FallbackHook        = (*RecordingHook)(nil)
)
