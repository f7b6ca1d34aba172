package diagnose

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/symptomscope/symptomscope/internal/llm"
	"github.com/symptomscope/symptomscope/pkg/models"
)

// stubClient implements llm.Client and records the request it received.
type stubClient struct {
	provider llm.Provider
	model    string
	resp     *llm.Response
	err      error
	lastReq  llm.Request
	calls    int
}

func (s *stubClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.lastReq = req
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubClient) Provider() llm.Provider { return s.provider }
func (s *stubClient) Model() string          { return s.model }

func TestDiagnose_Success(t *testing.T) {
	stub := &stubClient{
		provider: llm.ProviderGemini,
		model:    "gemini-2.0-flash",
		resp: &llm.Response{
			Text:         `{"conditions": [{"condition": "Tension Headache", "confidence": 0.7, "urgency": "low", "steps": ["rest"]}]}`,
			InputTokens:  100,
			OutputTokens: 40,
			Model:        "gemini-2.0-flash",
		},
	}
	svc := NewService(stub, nil)

	result := svc.Diagnose(context.Background(), models.SymptomInput{Symptoms: []string{"headache"}})

	require.NotNil(t, result)
	assert.False(t, result.Fallback)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Tension Headache", result.Records[0].Condition)
	assert.Equal(t, "gemini", result.Provider)
	assert.Equal(t, "gemini-2.0-flash", result.Model)
	assert.Equal(t, 100, result.InputTokens)
	assert.Equal(t, 40, result.OutputTokens)
}

func TestDiagnose_NilClientServesFallback(t *testing.T) {
	svc := NewService(nil, nil)

	result := svc.Diagnose(context.Background(), models.SymptomInput{Symptoms: []string{"cough"}})

	require.NotNil(t, result)
	assert.True(t, result.Fallback)
	assert.Contains(t, result.FallbackReason, "no provider configured")
	require.NotEmpty(t, result.Records)
	assert.Equal(t, "General Health Assessment", result.Records[0].Condition)
}

func TestDiagnose_ProviderErrorServesFallback(t *testing.T) {
	stub := &stubClient{
		provider: llm.ProviderOpenAI,
		model:    "gpt-4o-mini",
		err:      &llm.ProviderError{Provider: llm.ProviderOpenAI, Status: 500, Message: "boom"},
	}
	svc := NewService(stub, nil)

	result := svc.Diagnose(context.Background(), models.SymptomInput{Symptoms: []string{"fever"}})

	assert.True(t, result.Fallback)
	assert.Contains(t, result.FallbackReason, "provider call failed")
	assert.NotEmpty(t, result.Records, "fallback set is never empty")
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, 1, stub.calls, "single attempt, no retries")
}

func TestDiagnose_MalformedResponseServesFallback(t *testing.T) {
	stub := &stubClient{
		provider: llm.ProviderAnthropic,
		model:    "claude",
		resp:     &llm.Response{Text: "I cannot provide medical advice."},
	}
	svc := NewService(stub, nil)

	result := svc.Diagnose(context.Background(), models.SymptomInput{Symptoms: []string{"rash"}})

	assert.True(t, result.Fallback)
	assert.Contains(t, result.FallbackReason, "response normalization failed")
	assert.NotEmpty(t, result.Records)
}

func TestDiagnose_NullConditionsServesFallback(t *testing.T) {
	// A null conditions field is a structure error, not an empty success.
	stub := &stubClient{
		provider: llm.ProviderGemini,
		resp:     &llm.Response{Text: `{"conditions": null}`},
	}
	svc := NewService(stub, nil)

	result := svc.Diagnose(context.Background(), models.SymptomInput{Symptoms: []string{"fever"}})

	assert.True(t, result.Fallback)
	assert.Contains(t, result.FallbackReason, "response normalization failed")
	assert.NotEmpty(t, result.Records)
}

func TestDiagnose_ImageCapEnforced(t *testing.T) {
	stub := &stubClient{
		provider: llm.ProviderGemini,
		resp:     &llm.Response{Text: `{"conditions": []}`},
	}
	svc := NewService(stub, nil)

	images := make([]models.Attachment, 5)
	for i := range images {
		images[i] = models.Attachment{Data: []byte{byte(i)}, MIME: "image/png"}
	}

	svc.Diagnose(context.Background(), models.SymptomInput{
		Symptoms: []string{"rash"},
		Images:   images,
	})

	assert.Len(t, stub.lastReq.Images, models.MaxImages)
}

func TestDiagnose_ImageAwarePromptSelected(t *testing.T) {
	stub := &stubClient{
		provider: llm.ProviderGemini,
		resp:     &llm.Response{Text: `{"conditions": []}`},
	}
	svc := NewService(stub, nil)

	svc.Diagnose(context.Background(), models.SymptomInput{
		Symptoms: []string{"rash on arm"},
		Images:   []models.Attachment{{Data: []byte("img"), MIME: "image/jpeg"}},
	})
	assert.Contains(t, stub.lastReq.Prompt, "attached photos")
	assert.Contains(t, stub.lastReq.Prompt, "visual_analysis")

	svc.Diagnose(context.Background(), models.SymptomInput{Symptoms: []string{"rash on arm"}})
	assert.NotContains(t, stub.lastReq.Prompt, "attached photos")
}

func TestDiagnose_ImageIgnoringProviderStillSucceeds(t *testing.T) {
	// Text-only providers drop the images; the flow still succeeds and no
	// visual_analysis field appears.
	stub := &stubClient{
		provider: llm.ProviderOpenAI,
		resp:     &llm.Response{Text: `{"conditions": [{"condition": "Contact Dermatitis", "confidence": 0.6}]}`},
	}
	svc := NewService(stub, nil)

	result := svc.Diagnose(context.Background(), models.SymptomInput{
		Symptoms: []string{"itchy skin"},
		Images:   []models.Attachment{{Data: []byte("img"), MIME: "image/png"}},
	})

	assert.False(t, result.Fallback)
	require.Len(t, result.Records, 1)
	assert.Empty(t, result.Records[0].VisualAnalysis)
}

func TestBuildPrompt_InterpolatesSymptoms(t *testing.T) {
	prompt := buildPrompt([]string{"headache", "nausea", "headache"}, false)

	assert.Contains(t, prompt, "- headache")
	assert.Contains(t, prompt, "- nausea")
	assert.Contains(t, prompt, "JSON only")
	// Duplicates are not collapsed.
	assert.Equal(t, 2, strings.Count(prompt, "- headache"))
}
