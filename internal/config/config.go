// Package config loads the process-wide provider configuration.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Supported provider identifiers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAzure     = "azure"
	ProviderAnthropic = "anthropic"
)

// ConfigError reports a missing required configuration field for the
// selected provider. It is surfaced to the operator; the diagnosis flow
// itself falls back to offline data instead.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Field)
}

// Config holds the provider selection and per-provider credentials. It is
// loaded once at startup and immutable for the process lifetime.
type Config struct {
	Provider  string          `yaml:"provider"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Azure     AzureConfig     `yaml:"azure"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

// GeminiConfig configures the Google Gemini provider.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// AzureConfig configures the Azure OpenAI provider. Endpoint and Deployment
// identify the resource; Azure routes by deployment, not model name.
type AzureConfig struct {
	APIKey     string `yaml:"api_key"`
	Endpoint   string `yaml:"endpoint"`
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`
}

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Status is the operator-facing configuration report shown proactively in
// the UI before any request is made. It never carries credentials.
type Status struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Configured bool   `json:"configured"`
	Missing    string `json:"missing,omitempty"`
}

// Load reads configuration from an optional YAML file overlaid by
// environment variables. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Provider:  ProviderGemini,
		Gemini:    GeminiConfig{Model: "gemini-2.0-flash"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Azure:     AzureConfig{APIVersion: "2024-02-15-preview"},
		Anthropic: AnthropicConfig{Model: "claude-3-5-sonnet-20241022"},
	}
}

// applyEnv overlays environment variables on top of file/default values.
func (c *Config) applyEnv() {
	setEnv(&c.Provider, "SYMPTOMSCOPE_PROVIDER")
	setEnv(&c.Gemini.APIKey, "GEMINI_API_KEY")
	setEnv(&c.Gemini.Model, "GEMINI_MODEL")
	setEnv(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setEnv(&c.OpenAI.Model, "OPENAI_MODEL")
	setEnv(&c.Azure.APIKey, "AZURE_OPENAI_API_KEY")
	setEnv(&c.Azure.Endpoint, "AZURE_OPENAI_ENDPOINT")
	setEnv(&c.Azure.Deployment, "AZURE_OPENAI_DEPLOYMENT")
	setEnv(&c.Azure.APIVersion, "AZURE_OPENAI_API_VERSION")
	setEnv(&c.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setEnv(&c.Anthropic.Model, "ANTHROPIC_MODEL")
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that every required field for the selected provider is
// present, returning a ConfigError naming the first missing one.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return &ConfigError{Field: "GEMINI_API_KEY"}
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return &ConfigError{Field: "OPENAI_API_KEY"}
		}
	case ProviderAzure:
		if c.Azure.APIKey == "" {
			return &ConfigError{Field: "AZURE_OPENAI_API_KEY"}
		}
		if c.Azure.Endpoint == "" {
			return &ConfigError{Field: "AZURE_OPENAI_ENDPOINT"}
		}
		if c.Azure.Deployment == "" {
			return &ConfigError{Field: "AZURE_OPENAI_DEPLOYMENT"}
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return &ConfigError{Field: "ANTHROPIC_API_KEY"}
		}
	default:
		return &ConfigError{Field: "provider"}
	}
	return nil
}

// Model returns the model identifier for the selected provider. Azure
// reports its deployment name.
func (c *Config) Model() string {
	switch c.Provider {
	case ProviderGemini:
		return c.Gemini.Model
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderAzure:
		return c.Azure.Deployment
	case ProviderAnthropic:
		return c.Anthropic.Model
	default:
		return ""
	}
}

// Status reports whether the selected provider is fully configured.
func (c *Config) Status() Status {
	s := Status{
		Provider: c.Provider,
		Model:    c.Model(),
	}
	if err := c.Validate(); err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			s.Missing = cfgErr.Field
		}
		return s
	}
	s.Configured = true
	return s
}
