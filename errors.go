package genagents

import "errors"

// Configuration errors. These indicate a setup defect rather than a transient
// model problem; they are the only failures that escape a task run.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrNoProviders      = errors.New("no model configured for role")
	ErrUnknownRole      = errors.New("unknown model role")
	ErrInputBuild       = errors.New("failed to build prompt inputs")
	ErrInvalidTask      = errors.New("invalid task definition")
)

// Attempt errors. These describe why a single attempt of the safe-response
// loop failed; they are absorbed by the loop and never returned to callers.
var (
	ErrEmptyResponse = errors.New("model returned no choices")
	ErrInvalidJSON   = errors.New("invalid JSON in model output")
	ErrMissingOutput = errors.New(`model output has no "output" field`)
	ErrRejected      = errors.New("output rejected by validator")
)

// IsConfigError reports whether err is a configuration-class failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrNoProviders) ||
		errors.Is(err, ErrUnknownRole) ||
		errors.Is(err, ErrInputBuild) ||
		errors.Is(err, ErrInvalidTask)
}
