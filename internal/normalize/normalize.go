// Package normalize turns raw provider text into validated diagnosis records.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/symptomscope/symptomscope/pkg/models"
)

var (
	// ErrNoJSONFound means the response text contains no {...} span at all.
	ErrNoJSONFound = errors.New("no JSON object found in response")

	// ErrMalformedJSON means the extracted candidate did not parse.
	ErrMalformedJSON = errors.New("malformed JSON in response")

	// ErrInvalidStructure means the payload parsed but has no conditions array.
	ErrInvalidStructure = errors.New("response JSON has no conditions array")
)

// Normalize extracts the JSON payload embedded in text and maps it to an
// ordered list of diagnosis records, one per element of the payload's
// conditions array. Providers routinely wrap the payload in prose or
// markdown fences; the prompt demands JSON-only output, so extraction is a
// greedy outer-brace match rather than a full tokenizer. Known limitation:
// multiple top-level objects or unbalanced braces in surrounding prose
// mis-extract and surface as ErrMalformedJSON.
func Normalize(text string) ([]models.DiagnosisRecord, error) {
	candidate, ok := extractJSON(text)
	if !ok {
		return nil, ErrNoJSONFound
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	raw, ok := top["conditions"]
	if !ok {
		return nil, ErrInvalidStructure
	}

	// json.Unmarshal accepts "null" into a slice, leaving it nil; that is
	// not an array, so reject it before mapping.
	var conditions []map[string]any
	if err := json.Unmarshal(raw, &conditions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	if conditions == nil {
		return nil, ErrInvalidStructure
	}

	records := make([]models.DiagnosisRecord, 0, len(conditions))
	for _, c := range conditions {
		records = append(records, mapCondition(c))
	}
	return records, nil
}

// extractJSON returns the first '{' through the last '}' of text.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// mapCondition applies field-level defaulting and coercion to one element.
func mapCondition(c map[string]any) models.DiagnosisRecord {
	rec := models.DiagnosisRecord{
		Condition:   stringField(c, "condition"),
		Confidence:  clamp(confidenceField(c), 0, 1),
		Urgency:     models.Urgency(stringField(c, "urgency")),
		Steps:       stringSliceField(c, "steps"),
		Description: stringField(c, "description"),
	}
	if rec.Urgency == "" {
		rec.Urgency = models.UrgencyLow
	}
	if va := stringField(c, "visual_analysis"); va != "" {
		rec.VisualAnalysis = va
	}
	return rec
}

const defaultConfidence = 0.5

// confidenceField coerces the confidence value to a float. Providers have
// been seen returning floats, integers, and numeric strings; anything else
// falls back to the default.
func confidenceField(c map[string]any) float64 {
	v, ok := c["confidence"]
	if !ok || v == nil {
		return defaultConfidence
	}
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return defaultConfidence
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func stringField(c map[string]any, key string) string {
	if s, ok := c[key].(string); ok {
		return s
	}
	return ""
}

func stringSliceField(c map[string]any, key string) []string {
	out := []string{}
	items, ok := c[key].([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
