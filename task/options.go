package task

import genagents "github.com/wafo210715/generative-agents"

// Option configures a single Execute call.
type Option func(*options)

type options struct {
	testInput    []any
	hasTestInput bool
	verbose      bool
	maxAttempts  int
	role         genagents.Role
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTestInput supplies template inputs directly, bypassing BuildInputs.
func WithTestInput(inputs ...any) Option {
	return func(o *options) {
		o.testInput = inputs
		o.hasTestInput = true
	}
}

// WithVerbose logs every attempt and sends the run record to the trace sink.
func WithVerbose() Option {
	return func(o *options) {
		o.verbose = true
	}
}

// WithMaxAttempts overrides the attempt bound for this run.
func WithMaxAttempts(n int) Option {
	return func(o *options) {
		o.maxAttempts = n
	}
}

// WithRole overrides the model role for this run.
func WithRole(role genagents.Role) Option {
	return func(o *options) {
		o.role = role
	}
}
