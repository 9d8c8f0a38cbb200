package provider

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genagents "github.com/wafo210715/generative-agents"
)

const sampleConfig = `
templates: ./templates
gateway:
  delay: 250ms
  requests_per_second: 2
  burst: 4
models:
  - name: deepseek-chat
    role: general
    endpoint: ${TEST_GENAGENTS_ENDPOINT}
    credential: ${TEST_GENAGENTS_KEY}
    model_id: deepseek-chat
    active: true
  - name: kimi
    role: general
    endpoint: https://api.moonshot.cn/v1
    credential: <YOUR_API_KEY>
    model_id: moonshot-v1-8k
    driver: openai-sdk
  - name: deepseek-reasoner
    role: reasoning
    endpoint: https://api.deepseek.com/v1
    model_id: deepseek-reasoner
`

func TestLoadConfig(t *testing.T) {
	t.Setenv("TEST_GENAGENTS_ENDPOINT", "https://api.deepseek.com/v1")
	t.Setenv("TEST_GENAGENTS_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./templates", cfg.Templates)
	require.NotNil(t, cfg.Gateway.Delay)
	assert.Equal(t, 250*time.Millisecond, *cfg.Gateway.Delay)
	assert.Equal(t, 2.0, cfg.Gateway.RequestsPerSecond)
	assert.Equal(t, 4, cfg.Gateway.Burst)

	require.Len(t, cfg.Models, 3)
	first := cfg.Models[0]
	assert.Equal(t, "https://api.deepseek.com/v1", first.Endpoint)
	assert.Equal(t, "sk-test", first.Credential)
	assert.True(t, first.HasCredential())
	assert.Equal(t, DriverLangChainGo, first.DriverName())

	assert.False(t, cfg.Models[1].HasCredential())
	assert.Equal(t, DriverOpenAISDK, cfg.Models[1].DriverName())
	assert.False(t, cfg.Models[2].HasCredential())

	reg := cfg.Registry()
	active, err := reg.ActiveConfig(genagents.RoleGeneral)
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", active.Name)
	assert.True(t, reg.Degraded(genagents.RoleReasoning))
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "bad yaml",
			yaml:    "models: [",
			wantErr: "parsing config",
		},
		{
			name:    "missing name",
			yaml:    "models:\n  - role: general\n    model_id: x\n",
			wantErr: "name is required",
		},
		{
			name:    "unknown role",
			yaml:    "models:\n  - name: a\n    role: vision\n    model_id: x\n",
			wantErr: "unknown model role",
		},
		{
			name:    "missing model id",
			yaml:    "models:\n  - name: a\n    role: general\n",
			wantErr: "model_id is required",
		},
		{
			name:    "unknown driver",
			yaml:    "models:\n  - name: a\n    role: general\n    model_id: x\n    driver: grpc\n",
			wantErr: `unknown driver "grpc"`,
		},
		{
			name: "duplicate name",
			yaml: "models:\n  - name: a\n    role: general\n    model_id: x\n" +
				"  - name: a\n    role: reasoning\n    model_id: y\n",
			wantErr: `duplicate name "a"`,
		},
		{
			name:    "negative rate",
			yaml:    "gateway:\n  requests_per_second: -1\nmodels: []\n",
			wantErr: "requests_per_second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestModelConfig_Host(t *testing.T) {
	tests := []struct {
		endpoint string
		name     string
		want     string
	}{
		{"https://api.deepseek.com/v1", "ds", "api.deepseek.com"},
		{"http://localhost:11434/v1/", "local", "localhost:11434"},
		{"api.moonshot.cn/v1", "kimi", "api.moonshot.cn"},
		{"", "offline", "offline"},
		{"https://", "broken", "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ModelConfig{Name: tt.name, Endpoint: tt.endpoint}
			assert.Equal(t, tt.want, cfg.Host())
		})
	}
}
