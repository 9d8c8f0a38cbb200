// Package debugtrace prints what task runs asked and what came back.
//
// YAML writes human-readable blocks to an io.Writer (stdout by default):
// one block per verbose task run via genagents.TraceSink, and one block per
// event when registered as a hook. LogHook sends the same information to a
// zap logger.
package debugtrace

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	genagents "github.com/wafo210715/generative-agents"
	"gopkg.in/yaml.v3"
)

// YAML writes run records and hook events as YAML with block scalars.
// Nothing is truncated. It is safe for concurrent use; blocks from
// concurrent runs never interleave.
type YAML struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewYAML creates a YAML tracer that writes to stdout.
func NewYAML() *YAML {
	return NewYAMLWithWriter(os.Stdout)
}

// NewYAMLWithWriter creates a YAML tracer that writes to w.
func NewYAMLWithWriter(w io.Writer) *YAML {
	return &YAML{out: w, now: time.Now}
}

// WithClock replaces the clock used for event timestamps.
func (y *YAML) WithClock(now func() time.Time) *YAML {
	y.now = now
	return y
}

// block collects one event and writes it in a single call.
type block struct {
	strings.Builder
}

func (b *block) line(format string, args ...any) {
	fmt.Fprintf(b, format+"\n", args...)
}

func (b *block) yaml(v any) {
	data, err := yaml.Marshal(v)
	if err != nil {
		b.line("(failed to marshal: %v)", err)
		return
	}
	b.Write(data)
}

func (b *block) indented(text string) {
	for _, l := range strings.Split(text, "\n") {
		b.line("    %s", l)
	}
}

func (y *YAML) header(name string) *block {
	b := &block{}
	b.line("\n>>> [%s]: %s", name, y.now().Format("2006-01-02 15:04:05.000"))
	return b
}

func (y *YAML) flush(b *block) {
	y.mu.Lock()
	defer y.mu.Unlock()
	_, _ = io.WriteString(y.out, b.String())
}

// TraceRun writes the full audit record of a run.
func (y *YAML) TraceRun(_ context.Context, record genagents.RunRecord) {
	b := &block{}
	b.line("=== %s", record.TemplateID)
	b.yaml(record)
	b.line("=== END ==========================================================")
	b.line("")
	y.flush(b)
}

// OnBeforeRun logs the start of a run.
func (y *YAML) OnBeforeRun(_ context.Context, e genagents.BeforeRunEvent) {
	b := y.header("BeforeRun: " + e.Task)
	b.yaml(map[string]any{
		"run_id":   e.RunID,
		"template": e.TemplateID,
		"role":     e.Role.String(),
	})
	y.flush(b)
}

// OnAfterRun logs the outcome of a run.
func (y *YAML) OnAfterRun(_ context.Context, e genagents.AfterRunEvent) {
	b := y.header(fmt.Sprintf("AfterRun: %s (duration: %s)", e.Record.Task, e.Duration))
	data := map[string]any{
		"run_id":        e.Record.RunID,
		"attempts":      e.Record.Attempts,
		"used_fallback": e.Record.UsedFallback,
		"value":         e.Record.Value,
	}
	if e.Error != nil {
		data["error"] = e.Error.Error()
	}
	b.yaml(data)
	y.flush(b)
}

// OnBeforeModelCall logs the prompt sent to the provider.
func (y *YAML) OnBeforeModelCall(_ context.Context, e genagents.BeforeModelCallEvent) {
	b := y.header(fmt.Sprintf("BeforeModelCall: %s (%s)", e.Model, e.Role))
	b.line("Prompt:")
	b.indented(e.Prompt)
	y.flush(b)
}

// OnAfterModelCall logs the provider's answer.
func (y *YAML) OnAfterModelCall(_ context.Context, e genagents.AfterModelCallEvent) {
	b := y.header(fmt.Sprintf("AfterModelCall: %s (duration: %s)", e.Model, e.Duration))
	if e.Error != nil {
		b.line("Error: %v", e.Error)
	}
	b.line("Response:")
	b.indented(e.Response)
	if e.Info != nil {
		b.line("Tokens: input=%d, output=%d, total=%d",
			e.Info.InputTokens, e.Info.OutputTokens, e.Info.TotalTokens)
	}
	y.flush(b)
}

// OnAttempt logs one attempt of the safe-response loop.
func (y *YAML) OnAttempt(_ context.Context, e genagents.AttemptEvent) {
	b := y.header(fmt.Sprintf("Attempt %d/%d: %s", e.Number, e.MaxAttempts, e.Name))
	data := map[string]any{"raw_response": e.RawResponse}
	if e.Err != nil {
		data["error"] = e.Err.Error()
	}
	b.yaml(data)
	y.flush(b)
}

// OnFallback logs that a run degraded to its fallback.
func (y *YAML) OnFallback(_ context.Context, e genagents.FallbackEvent) {
	b := y.header("Fallback: " + e.Name)
	b.yaml(map[string]any{
		"attempts": e.Attempts,
		"fallback": e.Fallback,
	})
	y.flush(b)
}

var (
	_ genagents.TraceSink           = (*YAML)(nil)
	_ genagents.BeforeRunHook       = (*YAML)(nil)
	_ genagents.AfterRunHook        = (*YAML)(nil)
	_ genagents.BeforeModelCallHook = (*YAML)(nil)
	_ genagents.AfterModelCallHook  = (*YAML)(nil)
	_ genagents.AttemptHook         = (*YAML)(nil)
	_ genagents.FallbackHook        = (*YAML)(nil)
)
