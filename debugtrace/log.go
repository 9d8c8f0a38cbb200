package debugtrace

import (
	"context"

	genagents "github.com/wafo210715/generative-agents"
	"go.uber.org/zap"
)

// LogHook reports runs and attempts through zap. Per-call and per-attempt
// events log at debug, fallbacks at warn and traced runs at info.
type LogHook struct {
	logger *zap.Logger
}

// NewLogHook creates a LogHook. A nil logger discards everything.
func NewLogHook(logger *zap.Logger) *LogHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHook{logger: logger}
}

// TraceRun logs the audit record of a verbose run.
func (h *LogHook) TraceRun(_ context.Context, r genagents.RunRecord) {
	h.logger.Info("task run",
		zap.String("run_id", r.RunID),
		zap.String("task", r.Task),
		zap.String("template", r.TemplateID),
		zap.Stringer("role", r.Role),
		zap.Any("inputs", r.Inputs),
		zap.String("prompt", r.Prompt),
		zap.Any("example_output", r.ExampleOutput),
		zap.String("special_instruction", r.SpecialInstruction),
		zap.Any("value", r.Value),
		zap.Int("attempts", r.Attempts),
		zap.Bool("used_fallback", r.UsedFallback),
	)
}

func (h *LogHook) OnBeforeRun(_ context.Context, e genagents.BeforeRunEvent) {
	h.logger.Debug("run started",
		zap.String("run_id", e.RunID),
		zap.String("task", e.Task),
		zap.Stringer("role", e.Role),
	)
}

func (h *LogHook) OnAfterRun(_ context.Context, e genagents.AfterRunEvent) {
	fields := []zap.Field{
		zap.String("run_id", e.Record.RunID),
		zap.String("task", e.Record.Task),
		zap.Int("attempts", e.Record.Attempts),
		zap.Bool("used_fallback", e.Record.UsedFallback),
		zap.Duration("duration", e.Duration),
	}
	if e.Error != nil {
		h.logger.Error("run aborted", append(fields, zap.Error(e.Error))...)
		return
	}
	h.logger.Debug("run finished", fields...)
}

func (h *LogHook) OnBeforeModelCall(_ context.Context, e genagents.BeforeModelCallEvent) {
	h.logger.Debug("model call",
		zap.String("model", e.Model),
		zap.String("model_id", e.ModelID),
		zap.Stringer("role", e.Role),
		zap.Int("prompt_bytes", len(e.Prompt)),
	)
}

func (h *LogHook) OnAfterModelCall(_ context.Context, e genagents.AfterModelCallEvent) {
	fields := []zap.Field{
		zap.String("model", e.Model),
		zap.Duration("duration", e.Duration),
	}
	if e.Info != nil {
		fields = append(fields,
			zap.Int("input_tokens", e.Info.InputTokens),
			zap.Int("output_tokens", e.Info.OutputTokens),
		)
	}
	if e.Error != nil {
		fields = append(fields, zap.Error(e.Error))
	}
	h.logger.Debug("model call finished", fields...)
}

func (h *LogHook) OnAttempt(_ context.Context, e genagents.AttemptEvent) {
	if e.Err == nil {
		return
	}
	h.logger.Debug("attempt failed",
		zap.String("task", e.Name),
		zap.Int("attempt", e.Number),
		zap.Int("max_attempts", e.MaxAttempts),
		zap.String("raw_response", e.RawResponse),
		zap.Error(e.Err),
	)
}

func (h *LogHook) OnFallback(_ context.Context, e genagents.FallbackEvent) {
	h.logger.Warn("fallback used",
		zap.String("task", e.Name),
		zap.Int("attempts", e.Attempts),
		zap.Any("fallback", e.Fallback),
	)
}

var (
	_ genagents.TraceSink           = (*LogHook)(nil)
	_ genagents.BeforeRunHook       = (*LogHook)(nil)
	_ genagents.AfterRunHook        = (*LogHook)(nil)
	_ genagents.BeforeModelCallHook = (*LogHook)(nil)
	_ genagents.AfterModelCallHook  = (*LogHook)(nil)
	_ genagents.AttemptHook         = (*LogHook)(nil)
	_ genagents.FallbackHook        = (*LogHook)(nil)
)
