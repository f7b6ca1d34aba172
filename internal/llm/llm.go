// Package llm provides clients for the supported diagnosis providers.
package llm

import (
	"context"
	"fmt"

	"github.com/symptomscope/symptomscope/internal/config"
	"github.com/symptomscope/symptomscope/pkg/models"
)

// Provider identifies a supported LLM backend.
type Provider string

const (
	ProviderGemini    Provider = config.ProviderGemini
	ProviderOpenAI    Provider = config.ProviderOpenAI
	ProviderAzure     Provider = config.ProviderAzure
	ProviderAnthropic Provider = config.ProviderAnthropic
)

// Request carries the rendered prompt and any image attachments for one
// provider call. Only image-capable providers attach the images; the rest
// silently ignore them.
type Request struct {
	Prompt string
	Images []models.Attachment
}

// Response is the provider output with its envelope already unwrapped.
type Response struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Model        string
}

// Client is one provider variant. Each implementation owns its request
// envelope, authentication convention, and response unwrapping.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Provider() Provider
	Model() string
}

// ProviderError reports a failed provider call: network failure, non-2xx
// status, or an envelope that could not be unwrapped. Status is zero when
// no HTTP status was received.
type ProviderError struct {
	Provider Provider
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}

// New selects the client variant for the configured provider. Selection
// happens once at startup; callers hold the returned Client for the process
// lifetime instead of branching per call.
func New(cfg *config.Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch Provider(cfg.Provider) {
	case ProviderGemini:
		return NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nil
	case ProviderAzure:
		return NewAzureClient(cfg.Azure.APIKey, cfg.Azure.Endpoint, cfg.Azure.Deployment, cfg.Azure.APIVersion), nil
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model), nil
	default:
		// Validate rejects unknown providers first.
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
