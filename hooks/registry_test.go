package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	genagents "github.com/wafo210715/generative-agents"
)

type recordingHook struct {
	calls []string
}

func (h *recordingHook) OnBeforeRun(_ context.Context, e genagents.BeforeRunEvent) {
	h.calls = append(h.calls, "before_run:"+e.Task)
}

func (h *recordingHook) OnAfterRun(_ context.Context, e genagents.AfterRunEvent) {
	h.calls = append(h.calls, "after_run:"+e.Record.Task)
}

func (h *recordingHook) OnAttempt(_ context.Context, e genagents.AttemptEvent) {
	h.calls = append(h.calls, "attempt:"+e.Name)
}

type fallbackOnlyHook struct {
	fallbacks []genagents.FallbackEvent
}

func (h *fallbackOnlyHook) OnFallback(_ context.Context, e genagents.FallbackEvent) {
	h.fallbacks = append(h.fallbacks, e)
}

type orderHook struct {
	id  string
	log *[]string
}

func (h *orderHook) OnBeforeModelCall(_ context.Context, _ genagents.BeforeModelCallEvent) {
	*h.log = append(*h.log, "before:"+h.id)
}

func (h *orderHook) OnAfterModelCall(_ context.Context, e genagents.AfterModelCallEvent) {
	*h.log = append(*h.log, "after:"+h.id+":"+e.Response)
}

func TestRegistry_DispatchesOnlyImplementedInterfaces(t *testing.T) {
	ctx := context.Background()
	rec := &recordingHook{}
	fb := &fallbackOnlyHook{}
	r := NewRegistry().Register(rec).Register(fb)

	r.FireBeforeRun(ctx, genagents.BeforeRunEvent{Task: "wake_up_hour"})
	r.FireAttempt(ctx, genagents.AttemptEvent{Name: "wake_up_hour", Number: 1})
	r.FireFallback(ctx, genagents.FallbackEvent{Name: "wake_up_hour", Attempts: 3, Fallback: 8})
	r.FireAfterRun(ctx, genagents.AfterRunEvent{
		Record: genagents.RunRecord{Task: "wake_up_hour"},
	})
	r.FireBeforeModelCall(ctx, genagents.BeforeModelCallEvent{})

	assert.Equal(t, []string{
		"before_run:wake_up_hour",
		"attempt:wake_up_hour",
		"after_run:wake_up_hour",
	}, rec.calls)
	assert.Equal(t, []genagents.FallbackEvent{
		{Name: "wake_up_hour", Attempts: 3, Fallback: 8},
	}, fb.fallbacks)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_RegistrationOrder(t *testing.T) {
	var log []string
	r := NewRegistry().
		Register(&orderHook{id: "a", log: &log}).
		Register(&orderHook{id: "b", log: &log})

	ctx := context.Background()
	r.FireBeforeModelCall(ctx, genagents.BeforeModelCallEvent{Model: "m"})
	r.FireAfterModelCall(ctx, genagents.AfterModelCallEvent{
		Model:    "m",
		Response: "host ERROR",
		Error:    errors.New("boom"),
	})

	assert.Equal(t, []string{
		"before:a",
		"before:b",
		"after:a:host ERROR",
		"after:b:host ERROR",
	}, log)
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry
	ctx := context.Background()

	assert.NotPanics(t, func() {
		r.FireBeforeRun(ctx, genagents.BeforeRunEvent{})
		r.FireAfterRun(ctx, genagents.AfterRunEvent{})
		r.FireBeforeModelCall(ctx, genagents.BeforeModelCallEvent{})
		r.FireAfterModelCall(ctx, genagents.AfterModelCallEvent{})
		r.FireAttempt(ctx, genagents.AttemptEvent{})
		r.FireFallback(ctx, genagents.FallbackEvent{})
	})
	assert.Equal(t, 0, r.Len())
}
