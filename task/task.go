// Package task defines the per-task contract shared by every prompt task.
//
// A task pairs a template with the hooks that turn caller arguments into
// template inputs and a model answer into a typed value:
//
//	var wakeUp = task.Task[Persona, int]{
//	    Name:               "wake_up_hour",
//	    TemplateID:         "v2/wake_up_hour_v1.txt",
//	    ExampleOutput:      "8",
//	    SpecialInstruction: "Output only a single number representing the hour",
//	    Fallback:           8,
//	    BuildInputs:        func(p Persona) ([]any, error) { ... },
//	    CleanUp:            func(out safe.Output, _ string) (int, error) { ... },
//	}
//
//	hour, result, err := wakeUp.Execute(ctx, rt, persona)
//
// Execute only returns an error for configuration problems (missing
// template, no model for the role, bad inputs). Model failures degrade to
// the fallback and are visible through Result.UsedFallback.
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/safe"
	"github.com/wafo210715/generative-agents/schema"
	"github.com/wafo210715/generative-agents/template"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultMaxAttempts is the attempt bound when neither the task nor the
// caller sets one.
const DefaultMaxAttempts = 5

// Gateway is the completion surface a task runs against.
type Gateway interface {
	genagents.Completer

	// Check reports a configuration error when role cannot be served.
	Check(role genagents.Role) error
}

// Runtime bundles the collaborators shared by all task runs. A Runtime is
// safe for concurrent use when its members are.
type Runtime struct {
	// Templates resolves template ids to prompts. Required.
	Templates template.Resolver

	// Gateway performs completions. Required.
	Gateway Gateway

	// Trace receives the audit record of verbose runs. Optional.
	Trace genagents.TraceSink

	// Hooks receives run and attempt events. Optional.
	Hooks genagents.Dispatcher

	// Logger is used for run-level logs. Nil disables logging.
	Logger *zap.Logger

	// Tracer starts one span per run. Optional.
	Tracer trace.Tracer
}

func (rt *Runtime) logger() *zap.Logger {
	if rt.Logger == nil {
		return zap.NewNop()
	}
	return rt.Logger
}

// Task is the definition of one prompt task. Tasks are values; define them
// once and reuse them from any goroutine.
type Task[A, T any] struct {
	// Name identifies the task in logs, hooks and records.
	Name string

	// TemplateID is the template path under the template root.
	TemplateID string

	// ExampleOutput is shown to the model in the output envelope.
	ExampleOutput any

	// SpecialInstruction is appended to the output instruction.
	SpecialInstruction string

	// Fallback is returned when the model never produces a valid answer.
	Fallback T

	// Role selects the model. Empty means general.
	Role genagents.Role

	// MaxAttempts bounds model calls per run. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// Schema, when set, must accept the output value before Validate runs.
	Schema *schema.Schema

	// BuildInputs turns arguments into ordered template inputs.
	// Required unless every caller supplies WithTestInput.
	BuildInputs func(args A) ([]any, error)

	// Validate accepts or rejects a model output. Defaults to "CleanUp
	// succeeds".
	Validate func(out safe.Output, prompt string) bool

	// CleanUp converts an accepted output into the result. Required.
	CleanUp func(out safe.Output, prompt string) (T, error)

	// FallbackFor computes an argument-dependent fallback. Defaults to
	// returning Fallback.
	FallbackFor func(args A) T

	// PostProcess adjusts the value after generation, whether it came from
	// the model or the fallback. Optional.
	PostProcess func(args A, value T, result *Result[T]) T
}

// Result is the audit record of one run.
type Result[T any] struct {
	RunID              string
	TaskName           string
	TemplateID         string
	Role               genagents.Role
	Value              T
	Prompt             string
	WrappedPrompt      string
	ExampleOutput      any
	SpecialInstruction string
	Inputs             []any
	Fallback           T
	Attempts           int
	UsedFallback       bool
	Duration           time.Duration
}

// Record returns the untyped record handed to trace sinks and hooks.
func (r Result[T]) Record() genagents.RunRecord {
	return genagents.RunRecord{
		RunID:              r.RunID,
		Task:               r.TaskName,
		TemplateID:         r.TemplateID,
		Role:               r.Role,
		Inputs:             r.Inputs,
		Prompt:             r.Prompt,
		ExampleOutput:      r.ExampleOutput,
		SpecialInstruction: r.SpecialInstruction,
		Fallback:           r.Fallback,
		Value:              r.Value,
		Attempts:           r.Attempts,
		UsedFallback:       r.UsedFallback,
	}
}

// Execute runs the task for args.
//
// Steps: build inputs (or take WithTestInput), resolve the template, compute
// the fallback, check the role is served, run the safe-response loop, apply
// PostProcess, and hand the record to the trace sink when verbose.
func (t Task[A, T]) Execute(
	ctx context.Context,
	rt *Runtime,
	args A,
	opts ...Option,
) (T, Result[T], error) {
	o := newOptions(opts)
	start := time.Now()

	result := Result[T]{
		RunID:              uuid.NewString(),
		TaskName:           t.Name,
		TemplateID:         t.TemplateID,
		Role:               t.role(o),
		ExampleOutput:      t.ExampleOutput,
		SpecialInstruction: t.SpecialInstruction,
	}

	if rt != nil && rt.Tracer != nil {
		var span trace.Span
		ctx, span = rt.Tracer.Start(ctx, "task."+t.Name, trace.WithAttributes(
			attribute.String("task.name", t.Name),
			attribute.String("task.run_id", result.RunID),
			attribute.String("task.template", t.TemplateID),
			attribute.String("task.role", result.Role.String()),
		))
		defer span.End()
	}

	var zero T
	if err := t.prepare(rt, args, o, &result); err != nil {
		result.Duration = time.Since(start)
		t.abort(ctx, rt, result, err)
		return zero, result, err
	}

	if rt.Hooks != nil {
		rt.Hooks.FireBeforeRun(ctx, genagents.BeforeRunEvent{
			RunID:      result.RunID,
			Task:       t.Name,
			TemplateID: t.TemplateID,
			Role:       result.Role,
		})
	}

	outcome := safe.Generate(ctx, rt.Gateway, safe.Request[T]{
		Name:               t.Name,
		Prompt:             result.Prompt,
		ExampleOutput:      t.ExampleOutput,
		SpecialInstruction: t.SpecialInstruction,
		Role:               result.Role,
		MaxAttempts:        t.maxAttempts(o),
		Fallback:           result.Fallback,
		Schema:             t.Schema,
		Validate:           t.validator(),
		CleanUp:            t.CleanUp,
		Verbose:            o.verbose,
		Logger:             rt.Logger,
		Hooks:              rt.Hooks,
	})

	result.WrappedPrompt = outcome.Prompt
	result.Attempts = outcome.Attempts
	result.UsedFallback = outcome.UsedFallback
	result.Value = outcome.Value
	if t.PostProcess != nil {
		result.Value = t.PostProcess(args, result.Value, &result)
	}
	result.Duration = time.Since(start)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.Int("task.attempts", result.Attempts),
			attribute.Bool("task.used_fallback", result.UsedFallback),
		)
	}

	record := result.Record()
	if o.verbose && rt.Trace != nil {
		rt.Trace.TraceRun(ctx, record)
	}
	if rt.Hooks != nil {
		rt.Hooks.FireAfterRun(ctx, genagents.AfterRunEvent{
			Record:   record,
			Duration: result.Duration,
		})
	}
	rt.logger().Debug("task run finished",
		zap.String("task", t.Name),
		zap.String("run_id", result.RunID),
		zap.Int("attempts", result.Attempts),
		zap.Bool("used_fallback", result.UsedFallback),
		zap.Duration("duration", result.Duration),
	)

	return result.Value, result, nil
}

// prepare fills inputs, prompt and fallback, and checks configuration.
func (t Task[A, T]) prepare(rt *Runtime, args A, o options, result *Result[T]) error {
	if t.CleanUp == nil {
		return fmt.Errorf("%w: %s: no clean-up function", genagents.ErrInvalidTask, t.Name)
	}
	if rt == nil || rt.Templates == nil || rt.Gateway == nil {
		return fmt.Errorf("%w: %s: runtime needs templates and a gateway", genagents.ErrInvalidTask, t.Name)
	}

	switch {
	case o.hasTestInput:
		result.Inputs = o.testInput
	case t.BuildInputs != nil:
		inputs, err := t.BuildInputs(args)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", genagents.ErrInputBuild, t.Name, err)
		}
		result.Inputs = inputs
	default:
		return fmt.Errorf("%w: %s: no input builder", genagents.ErrInputBuild, t.Name)
	}

	prompt, err := rt.Templates.Resolve(t.TemplateID, result.Inputs)
	if err != nil {
		return err
	}
	result.Prompt = prompt

	if t.FallbackFor != nil {
		result.Fallback = t.FallbackFor(args)
	} else {
		result.Fallback = t.Fallback
	}

	return rt.Gateway.Check(result.Role)
}

func (t Task[A, T]) abort(ctx context.Context, rt *Runtime, result Result[T], err error) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if rt != nil && rt.Hooks != nil {
		rt.Hooks.FireAfterRun(ctx, genagents.AfterRunEvent{
			Record:   result.Record(),
			Duration: result.Duration,
			Error:    err,
		})
	}
	var logger *zap.Logger
	if rt != nil {
		logger = rt.logger()
	} else {
		logger = zap.NewNop()
	}
	logger.Error("task run aborted",
		zap.String("task", t.Name),
		zap.String("run_id", result.RunID),
		zap.Error(err),
	)
}

func (t Task[A, T]) role(o options) genagents.Role {
	switch {
	case o.role != "":
		return o.role
	case t.Role != "":
		return t.Role
	default:
		return genagents.RoleGeneral
	}
}

func (t Task[A, T]) maxAttempts(o options) int {
	switch {
	case o.maxAttempts > 0:
		return o.maxAttempts
	case t.MaxAttempts > 0:
		return t.MaxAttempts
	default:
		return DefaultMaxAttempts
	}
}

func (t Task[A, T]) validator() func(safe.Output, string) bool {
	if t.Validate != nil {
		return t.Validate
	}
	cleanUp := t.CleanUp
	return func(out safe.Output, prompt string) bool {
		_, err := cleanUp(out, prompt)
		return err == nil
	}
}
