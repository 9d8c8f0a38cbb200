// Package safe turns a best-effort model completion into a validated value.
//
// The prompt is wrapped in an envelope asking for JSON of the form
// {"output": ...}, sent up to MaxAttempts times, and the first answer that
// parses, passes validation and cleans up is returned. When every attempt
// fails the request's fallback value is returned instead. Model problems
// never surface as errors.
package safe

import (
	"context"
	"fmt"
	"strings"
	"time"

	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/schema"
	"go.uber.org/zap"
)

// Request describes one safe generation.
type Request[T any] struct {
	// Name labels hook events and log entries (usually the task name).
	Name string

	// Prompt is the resolved task prompt, before wrapping.
	Prompt string

	// ExampleOutput illustrates the expected output value.
	ExampleOutput any

	// SpecialInstruction is appended to the output instruction line.
	SpecialInstruction string

	// Role selects the model. Empty means general.
	Role genagents.Role

	// MaxAttempts bounds the number of model calls. Values below 1 mean 1.
	MaxAttempts int

	// Fallback is returned unchanged when every attempt fails.
	Fallback T

	// Schema, when set, must accept the output value before Validate runs.
	Schema *schema.Schema

	// Validate accepts or rejects an output. Nil accepts everything, leaving
	// the decision to CleanUp.
	Validate func(out Output, prompt string) bool

	// CleanUp converts an accepted output into the result. Required.
	CleanUp func(out Output, prompt string) (T, error)

	// Verbose logs every failed attempt at debug level.
	Verbose bool

	// Logger receives attempt and fallback logs. Nil disables logging.
	Logger *zap.Logger

	// Hooks receives AttemptEvent and FallbackEvent. Optional.
	Hooks genagents.Dispatcher
}

// Outcome is the result of a safe generation.
type Outcome[T any] struct {
	// Value is the cleaned-up output, or the fallback.
	Value T

	// Prompt is the wrapped prompt that was sent.
	Prompt string

	// Attempts is the number of model calls made.
	Attempts int

	// UsedFallback reports whether Value is the fallback.
	UsedFallback bool
}

// Attempt records a single pass of the retry loop.
type Attempt struct {
	// Number is the 1-indexed attempt number.
	Number int

	// RawResponse is the untouched completion text.
	RawResponse string

	// Output is the extracted output value; nil when parsing failed.
	Output *Output

	// Err is why the attempt failed; nil on success.
	Err error

	// Duration is how long the attempt took.
	Duration time.Duration
}

// Valid reports whether the attempt produced the result.
func (a Attempt) Valid() bool {
	return a.Err == nil
}

// Wrap builds the prompt envelope sent to the model.
func Wrap(prompt string, example any, specialInstruction string) string {
	var sb strings.Builder
	sb.WriteString("\"\"\"\n")
	sb.WriteString(prompt)
	sb.WriteString("\n\"\"\"\n")
	sb.WriteString("Output the response to the prompt above in json. ")
	sb.WriteString(specialInstruction)
	sb.WriteString("\nExample output json:\n")
	sb.WriteString(`{"output": `)
	sb.WriteString(FormatExample(example))
	sb.WriteString("}")
	return sb.String()
}

// Extract trims a completion and drops anything after its last closing
// brace. A completion without "}" yields "".
func Extract(response string) string {
	response = strings.TrimSpace(response)
	end := strings.LastIndex(response, "}")
	return response[:end+1]
}

// Parse extracts the output value from a completion.
//
// The error wraps [genagents.ErrInvalidJSON] when the text is not a JSON
// value and [genagents.ErrMissingOutput] when it is not an object with an
// "output" field.
func Parse(response string) (Output, error) {
	value, err := schema.Decode([]byte(Extract(response)))
	if err != nil {
		return Output{}, fmt.Errorf("%w: %v", genagents.ErrInvalidJSON, err)
	}
	if err := schema.OutputEnvelope.Validate(value); err != nil {
		return Output{}, fmt.Errorf("%w: %v", genagents.ErrMissingOutput, err)
	}

	obj := value.(map[string]any)
	raw, err := encodeJSON(obj[schema.OutputKey])
	if err != nil {
		return Output{}, fmt.Errorf("%w: %v", genagents.ErrInvalidJSON, err)
	}
	return NewOutput(raw), nil
}

// Generate runs the retry loop for req against completer.
//
// The wrapped prompt is built once and reused for every attempt; attempts
// share no state. Generation stops early when ctx is done.
func Generate[T any](
	ctx context.Context,
	completer genagents.Completer,
	req Request[T],
) Outcome[T] {
	logger := req.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	role := req.Role
	if role == "" {
		role = genagents.RoleGeneral
	}
	maxAttempts := max(req.MaxAttempts, 1)

	prompt := Wrap(req.Prompt, req.ExampleOutput, req.SpecialInstruction)
	if req.Verbose {
		logger.Debug("safe generation prompt",
			zap.String("name", req.Name),
			zap.String("prompt", prompt),
		)
	}

	outcome := Outcome[T]{Prompt: prompt}
	for n := 1; n <= maxAttempts; n++ {
		if ctx.Err() != nil {
			break
		}

		value, attempt := runAttempt(ctx, completer, req, prompt, role, n)
		outcome.Attempts = n
		fireAttempt(ctx, req.Hooks, genagents.AttemptEvent{
			Name:        req.Name,
			Number:      n,
			MaxAttempts: maxAttempts,
			RawResponse: attempt.RawResponse,
			Err:         attempt.Err,
		})

		if attempt.Valid() {
			outcome.Value = value
			return outcome
		}
		if req.Verbose {
			logger.Debug("attempt failed",
				zap.String("name", req.Name),
				zap.Int("attempt", n),
				zap.String("response", attempt.RawResponse),
				zap.Error(attempt.Err),
			)
		}
	}

	logger.Info("using fallback",
		zap.String("name", req.Name),
		zap.Int("attempts", outcome.Attempts),
	)
	if req.Hooks != nil {
		req.Hooks.FireFallback(ctx, genagents.FallbackEvent{
			Name:     req.Name,
			Attempts: outcome.Attempts,
			Fallback: req.Fallback,
		})
	}
	outcome.Value = req.Fallback
	outcome.UsedFallback = true
	return outcome
}

func runAttempt[T any](
	ctx context.Context,
	completer genagents.Completer,
	req Request[T],
	prompt string,
	role genagents.Role,
	n int,
) (value T, attempt Attempt) {
	start := time.Now()
	attempt = Attempt{Number: n}
	defer func() {
		attempt.Duration = time.Since(start)
	}()

	attempt.RawResponse = completer.Complete(ctx, prompt, role)

	out, err := Parse(attempt.RawResponse)
	if err != nil {
		attempt.Err = err
		return value, attempt
	}
	attempt.Output = &out

	value, err = accept(req, out, prompt)
	if err != nil {
		var zero T
		attempt.Err = err
		return zero, attempt
	}
	return value, attempt
}

// accept runs the schema, validator and clean-up. A panic in caller code is
// reported as a rejection.
func accept[T any](req Request[T], out Output, prompt string) (value T, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: panic: %v", genagents.ErrRejected, recovered)
		}
	}()

	if req.Schema != nil {
		decoded, err := schema.Decode(out.Raw())
		if err == nil {
			err = req.Schema.Validate(decoded)
		}
		if err != nil {
			return value, fmt.Errorf("%w: %v", genagents.ErrRejected, err)
		}
	}
	if req.Validate != nil && !req.Validate(out, prompt) {
		return value, genagents.ErrRejected
	}
	if req.CleanUp == nil {
		return value, fmt.Errorf("%w: no clean-up function", genagents.ErrRejected)
	}
	value, err = req.CleanUp(out, prompt)
	if err != nil {
		return value, fmt.Errorf("%w: clean-up: %v", genagents.ErrRejected, err)
	}
	return value, nil
}

func fireAttempt(ctx context.Context, hooks genagents.Dispatcher, e genagents.AttemptEvent) {
	if hooks != nil {
		hooks.FireAttempt(ctx, e)
	}
}
