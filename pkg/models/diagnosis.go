package models

// Urgency represents how quickly a condition should be looked at
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// DiagnosisRecord represents one candidate condition shown to the end user.
// Confidence is always within [0,1]. Urgency defaults to "low" when the
// provider omits it; unrecognized values pass through unchanged for display.
type DiagnosisRecord struct {
	Condition      string   `json:"condition"`
	Confidence     float64  `json:"confidence"`
	Urgency        Urgency  `json:"urgency"`
	Steps          []string `json:"steps"`
	Description    string   `json:"description"`
	VisualAnalysis string   `json:"visual_analysis,omitempty"`
}

// DiagnosisResult represents the complete result of one diagnosis request
type DiagnosisResult struct {
	Records        []DiagnosisRecord `json:"records"`
	Provider       string            `json:"provider"`
	Model          string            `json:"model"`
	Fallback       bool              `json:"fallback"`
	FallbackReason string            `json:"fallback_reason,omitempty"`
	InputTokens    int               `json:"input_tokens"`
	OutputTokens   int               `json:"output_tokens"`
}
