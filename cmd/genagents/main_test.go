package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genagents "github.com/wafo210715/generative-agents"
	"github.com/wafo210715/generative-agents/observe"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "deepseek-chat",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "{\"output\": \"7am\"}"},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 21, "completion_tokens": 6, "total_tokens": 27}
}`

func fakeProvider(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(completionBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeConfig(t *testing.T, endpoint string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genagents.yaml")
	body := `gateway:
  delay: 0s
models:
  - name: fake-chat
    role: general
    endpoint: ` + endpoint + `
    credential: sk-test
    model_id: deepseek-chat
    active: true
  - name: fake-reasoner
    role: reasoning
    endpoint: ` + endpoint + `
    credential: <YOUR_API_KEY>
    model_id: deepseek-reasoner
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// execute runs the root command with fresh flag state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags() {
	configPath, verbose = "genagents.yaml", false
	pingRole = "general"
	renderDiff = false
	runInputs, runTrace, runOTel, runAttempts, runRole = nil, false, false, 0, ""
	chatRole, chatMetricsAddr = "general", ""
}

func TestRun_WakeUpHour(t *testing.T) {
	srv, calls := fakeProvider(t)
	cfg := writeConfig(t, srv.URL+"/v1")

	out, err := execute(t, "run", "wake_up_hour", "--config", cfg,
		"--input", "Name: Isabella Rodriguez", "--input", "goes to bed around 11pm", "--input", "Isabella")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, out, "value: 7\n")
	assert.Contains(t, out, "task: wake_up_hour")
	assert.Contains(t, out, "used_fallback: false")
	assert.Contains(t, out, "attempts: 1")
}

func TestRun_Trace(t *testing.T) {
	srv, _ := fakeProvider(t)
	cfg := writeConfig(t, srv.URL+"/v1")

	out, err := execute(t, "run", "wake_up_hour", "-c", cfg, "--trace",
		"-i", "Name: Isabella Rodriguez", "-i", "goes to bed around 11pm", "-i", "Isabella")
	require.NoError(t, err)

	assert.Contains(t, out, ">>> [BeforeRun: wake_up_hour]")
	assert.Contains(t, out, ">>> [BeforeModelCall: fake-chat (general)]")
	assert.Contains(t, out, ">>> [Attempt 1/5: wake_up_hour]")
	assert.Contains(t, out, "=== v2/wake_up_hour_v1.txt")
}

func TestRun_OTelExportsSpan(t *testing.T) {
	srv, _ := fakeProvider(t)
	cfg := writeConfig(t, srv.URL+"/v1")

	resetFlags()
	t.Cleanup(resetFlags)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs([]string{"run", "wake_up_hour", "-c", cfg, "--otel", "-i", "a", "-i", "b", "-i", "c"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Contains(t, errOut.String(), "task.wake_up_hour")
}

func TestRun_UnknownTask(t *testing.T) {
	srv, _ := fakeProvider(t)
	cfg := writeConfig(t, srv.URL+"/v1")

	_, err := execute(t, "run", "no_such_task", "-c", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task")
}

func TestRun_ListsTasks(t *testing.T) {
	out, err := execute(t, "run")
	require.NoError(t, err)

	assert.Contains(t, out, "wake_up_hour")
	assert.Contains(t, out, "v2/wake_up_hour_v1.txt")
	assert.Contains(t, out, "decide_to_talk")
}

func TestRun_ConfigErrorEscapes(t *testing.T) {
	srv, calls := fakeProvider(t)
	cfg := writeConfig(t, srv.URL+"/v1")

	_, err := execute(t, "run", "wake_up_hour", "-c", cfg, "--role", "embedding", "-i", "a")
	require.Error(t, err)
	assert.Zero(t, calls.Load())
}

func TestRender(t *testing.T) {
	srv, _ := fakeProvider(t)
	cfg := writeConfig(t, srv.URL+"/v1")

	out, err := execute(t, "render", "v2/wake_up_hour_v1.txt", "-c", cfg,
		"Name: Isabella Rodriguez", "goes to bed around 11pm", "Isabella")
	require.NoError(t, err)

	assert.Contains(t, out, "Isabella")
	assert.NotContains(t, out, "!<INPUT")
	assert.NotContains(t, out, "<commentblockmarker>")
}

func TestRender_Diff(t *testing.T) {
	srv, _ := fakeProvider(t)
	cfg := writeConfig(t, srv.URL+"/v1")

	out, err := execute(t, "render", "v2/wake_up_hour_v1.txt", "--diff", "-c", cfg, "X", "Y", "Z")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "--- v2/wake_up_hour_v1.txt\n+++ v2/wake_up_hour_v1.txt (rendered)\n"), out)
	assert.Contains(t, out, "!<INPUT 0>!")
}

func TestRenderedDiff(t *testing.T) {
	diff, err := renderedDiff("t.txt", "hello !<INPUT 0>!\nbye", "hello Klaus\nbye")
	require.NoError(t, err)

	assert.Equal(t, "--- t.txt\n+++ t.txt (rendered)\n@@ -1,2 +1,2 @@\n-hello !<INPUT 0>!\n+hello Klaus\n bye\n", diff)
}

func TestProviders(t *testing.T) {
	srv, _ := fakeProvider(t)
	cfg := writeConfig(t, srv.URL+"/v1")

	out, err := execute(t, "providers", "-c", cfg)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "ROLE")
	assert.Contains(t, out, "fake-chat")
	assert.Contains(t, out, "degraded")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "set")
}

func TestPing(t *testing.T) {
	srv, calls := fakeProvider(t)
	cfg := writeConfig(t, srv.URL+"/v1")

	out, err := execute(t, "ping", "-c", cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, out, "fake-chat (deepseek-chat)")
	assert.Contains(t, out, `response: {"output": "7am"}`)
}

func TestPing_ReportsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad", "type": "invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)
	cfg := writeConfig(t, srv.URL+"/v1")

	out, err := execute(t, "ping", "-c", cfg)
	require.Error(t, err)
	assert.Contains(t, out, "ERROR")
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observe.NewMetrics(reg)
	m.OnAfterModelCall(context.Background(), genagents.AfterModelCallEvent{
		Model: "fake-chat",
		Role:  genagents.RoleGeneral,
	})

	rec := httptest.NewRecorder()
	metricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "genagents_model_calls_total")
}
