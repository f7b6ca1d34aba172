// Package diagnose runs the top-level diagnosis flow: prompt rendering,
// provider dispatch, response normalization, and the offline fallback.
package diagnose

import (
	"context"
	"log/slog"

	"github.com/symptomscope/symptomscope/internal/llm"
	"github.com/symptomscope/symptomscope/internal/normalize"
	"github.com/symptomscope/symptomscope/pkg/models"
)

// Service dispatches diagnosis requests to the configured provider. The
// client is selected once at startup; a nil client means the provider was
// never configured and every request serves the fallback.
type Service struct {
	client llm.Client
	logger *slog.Logger
}

// NewService creates a diagnosis service. client may be nil when provider
// configuration is incomplete.
func NewService(client llm.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		logger: logger.With("component", "diagnose"),
	}
}

// Diagnose runs one diagnosis request: single provider attempt, no retries,
// then immediate fallback. It never returns an error; any failure along the
// way (missing configuration, provider call, normalization) is logged and
// converted into the offline record set so the caller always receives a
// result.
func (s *Service) Diagnose(ctx context.Context, input models.SymptomInput) *models.DiagnosisResult {
	if s.client == nil {
		return s.fallback("no provider configured", nil)
	}

	images := input.Images
	if len(images) > models.MaxImages {
		images = images[:models.MaxImages]
	}

	prompt := buildPrompt(input.Symptoms, len(images) > 0)

	resp, err := s.client.Complete(ctx, llm.Request{Prompt: prompt, Images: images})
	if err != nil {
		return s.fallback("provider call failed", err)
	}

	records, err := normalize.Normalize(resp.Text)
	if err != nil {
		return s.fallback("response normalization failed", err)
	}

	return &models.DiagnosisResult{
		Records:      records,
		Provider:     string(s.client.Provider()),
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}
}

// fallback logs the swallowed error for operators and returns the offline
// record set.
func (s *Service) fallback(reason string, err error) *models.DiagnosisResult {
	fullReason := reason
	if err != nil {
		fullReason = reason + ": " + err.Error()
		s.logger.Warn("serving fallback diagnosis", "reason", reason, "error", err)
	} else {
		s.logger.Warn("serving fallback diagnosis", "reason", reason)
	}

	result := &models.DiagnosisResult{
		Records:        fallbackRecords(),
		Fallback:       true,
		FallbackReason: fullReason,
	}
	if s.client != nil {
		result.Provider = string(s.client.Provider())
		result.Model = s.client.Model()
	}
	return result
}
