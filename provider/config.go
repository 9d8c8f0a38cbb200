package provider

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	genagents "github.com/wafo210715/generative-agents"
	"gopkg.in/yaml.v3"
)

// Driver names select the client library used to reach a model.
const (
	DriverLangChainGo = "langchaingo"
	DriverOpenAISDK   = "openai-sdk"
)

// PlaceholderCredential is the credential value shipped in sample
// configuration files. It is treated as "not set".
const PlaceholderCredential = "<YOUR_API_KEY>"

// ModelConfig describes how to reach one model.
type ModelConfig struct {
	// Name is the unique display name (e.g., "deepseek-chat").
	Name string `yaml:"name"`

	// Role is the capability the model serves.
	Role genagents.Role `yaml:"role"`

	// Endpoint is the OpenAI-compatible base URL (e.g., "https://api.deepseek.com/v1").
	Endpoint string `yaml:"endpoint"`

	// Credential is the API key sent to the endpoint.
	Credential string `yaml:"credential"`

	// ModelID is the provider-side model identifier.
	ModelID string `yaml:"model_id"`

	// Active marks the model as the one to use for its role.
	Active bool `yaml:"active"`

	// Driver selects the client library. Empty means [DriverLangChainGo].
	Driver string `yaml:"driver,omitempty"`
}

// Validate checks that the config has everything needed to make a call.
func (c ModelConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !c.Role.Valid() {
		return fmt.Errorf("%w: %q", genagents.ErrUnknownRole, c.Role)
	}
	if c.ModelID == "" {
		return fmt.Errorf("model_id is required")
	}
	switch c.Driver {
	case "", DriverLangChainGo, DriverOpenAISDK:
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.Endpoint != "" {
		if _, err := url.Parse(c.Endpoint); err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
	}
	return nil
}

// DriverName returns the effective driver name.
func (c ModelConfig) DriverName() string {
	if c.Driver == "" {
		return DriverLangChainGo
	}
	return c.Driver
}

// HasCredential reports whether a real credential is configured.
func (c ModelConfig) HasCredential() bool {
	return c.Credential != "" && c.Credential != PlaceholderCredential
}

// Host returns the provider identifier used in failure sentinels: the host
// part of the endpoint, or the config name when there is no endpoint.
func (c ModelConfig) Host() string {
	if c.Endpoint == "" {
		return c.Name
	}
	rest := c.Endpoint
	if _, after, found := strings.Cut(rest, "//"); found {
		rest = after
	}
	host, _, _ := strings.Cut(rest, "/")
	if host == "" {
		return c.Name
	}
	return host
}

// GatewayConfig tunes the completion gateway.
type GatewayConfig struct {
	// Delay is the pause before every provider call.
	Delay *time.Duration `yaml:"delay,omitempty"`

	// RequestsPerSecond enables a token-bucket limiter when positive.
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`

	// Burst is the limiter bucket size. Values below 1 mean 1.
	Burst int `yaml:"burst,omitempty"`
}

// Config is the on-disk configuration file.
type Config struct {
	// Templates is the template root directory.
	Templates string `yaml:"templates,omitempty"`

	// Gateway tunes the completion gateway.
	Gateway GatewayConfig `yaml:"gateway,omitempty"`

	// Models lists model configs in priority order.
	Models []ModelConfig `yaml:"models"`
}

// Validate checks every model config and name uniqueness.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("models[%d] (%s): %w", i, m.Name, err)
		}
		if seen[m.Name] {
			return fmt.Errorf("models[%d]: duplicate name %q", i, m.Name)
		}
		seen[m.Name] = true
	}
	if c.Gateway.RequestsPerSecond < 0 {
		return fmt.Errorf("gateway.requests_per_second must be non-negative")
	}
	if c.Gateway.Delay != nil && *c.Gateway.Delay < 0 {
		return fmt.Errorf("gateway.delay must be non-negative")
	}
	return nil
}

// Registry builds a Registry from the configured models.
func (c *Config) Registry() *Registry {
	return NewRegistry(c.Models...)
}

// LoadConfig reads, expands and validates a YAML configuration file.
//
// ${VAR} references in endpoints and credentials are expanded from the
// environment, so keys stay out of the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig for in-memory data.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for i := range cfg.Models {
		cfg.Models[i].Endpoint = os.ExpandEnv(cfg.Models[i].Endpoint)
		cfg.Models[i].Credential = os.ExpandEnv(cfg.Models[i].Credential)
	}
	cfg.Templates = os.ExpandEnv(cfg.Templates)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}
