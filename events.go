package genagents

import "time"

// -----------------------------------------------------------------------------
// Hook Event Interface
// -----------------------------------------------------------------------------

// HookEvent is a marker interface for all hook events.
type HookEvent interface {
	hookEvent()
}

// -----------------------------------------------------------------------------
// Run Events
// -----------------------------------------------------------------------------

// BeforeRunEvent is emitted once a task has resolved its prompt, right before
// the safe-response loop starts.
type BeforeRunEvent struct {
	// RunID uniquely identifies this run.
	RunID string

	// Task is the task name (e.g., "wake_up_hour").
	Task string

	// TemplateID is the template the prompt was resolved from.
	TemplateID string

	// Role is the model role the run targets.
	Role Role
}

func (BeforeRunEvent) hookEvent() {}

// AfterRunEvent is emitted after a task run finishes, successfully or not.
type AfterRunEvent struct {
	// Record is the audit record of the run. Value is the fallback when the
	// model never produced a valid answer.
	Record RunRecord

	// Duration is how long the run took.
	Duration time.Duration

	// Error is the configuration error that aborted the run, if any.
	Error error
}

func (AfterRunEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Model Call Events
// -----------------------------------------------------------------------------

// BeforeModelCallEvent is emitted before each provider call.
type BeforeModelCallEvent struct {
	// Model is the name of the resolved model configuration.
	Model string

	// ModelID is the provider-side model identifier.
	ModelID string

	// Role is the requested role.
	Role Role

	// Prompt is the full text sent as the user message.
	Prompt string
}

func (BeforeModelCallEvent) hookEvent() {}

// AfterModelCallEvent is emitted after each provider call completes.
type AfterModelCallEvent struct {
	// Model is the name of the resolved model configuration.
	Model string

	// ModelID is the provider-side model identifier.
	ModelID string

	// Role is the requested role.
	Role Role

	// Prompt is the full text sent as the user message.
	Prompt string

	// Response is the text returned to the caller. On failure this is the
	// "<provider> ERROR" sentinel.
	Response string

	// Info is the generation metadata reported by the driver, if any.
	Info *GenerationInfo

	// Duration is how long the call took, excluding the pre-call delay.
	Duration time.Duration

	// Error is the driver error that was converted into the sentinel.
	Error error
}

func (AfterModelCallEvent) hookEvent() {}

// -----------------------------------------------------------------------------
// Safe-Response Events
// -----------------------------------------------------------------------------

// AttemptEvent is emitted after every attempt of the safe-response loop.
type AttemptEvent struct {
	// Name labels the request (the task name when run through a task).
	Name string

	// Number is the 1-indexed attempt number.
	Number int

	// MaxAttempts is the attempt bound of the loop.
	MaxAttempts int

	// RawResponse is the untouched gateway text.
	RawResponse string

	// Err is why the attempt failed; nil when it produced the result.
	Err error
}

func (AttemptEvent) hookEvent() {}

// FallbackEvent is emitted when the safe-response loop is exhausted and the
// fallback value is returned.
type FallbackEvent struct {
	// Name labels the request (the task name when run through a task).
	Name string

	// Attempts is how many attempts were made.
	Attempts int

	// Fallback is the value returned in place of a model answer.
	Fallback any
}

func (FallbackEvent) hookEvent() {}
