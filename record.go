package genagents

import "context"

// RunRecord is the audit record of one task run: everything needed to
// reconstruct what was asked and what came back.
type RunRecord struct {
	RunID              string `yaml:"run_id"`
	Task               string `yaml:"task"`
	TemplateID         string `yaml:"template"`
	Role               Role   `yaml:"role"`
	Inputs             []any  `yaml:"inputs"`
	Prompt             string `yaml:"prompt"`
	ExampleOutput      any    `yaml:"example_output"`
	SpecialInstruction string `yaml:"special_instruction"`
	Fallback           any    `yaml:"fallback"`
	Value              any    `yaml:"value"`
	Attempts           int    `yaml:"attempts"`
	UsedFallback       bool   `yaml:"used_fallback"`
}

// TraceSink receives the audit record of verbose runs.
type TraceSink interface {
	TraceRun(ctx context.Context, record RunRecord)
}

// TraceSinkFunc adapts a function to a TraceSink.
type TraceSinkFunc func(ctx context.Context, record RunRecord)

// TraceRun calls f(ctx, record).
func (f TraceSinkFunc) TraceRun(ctx context.Context, record RunRecord) {
	f(ctx, record)
}
