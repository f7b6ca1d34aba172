package diagnose

import (
	"fmt"
	"strings"
)

const textPromptTemplate = `You are a medical triage assistant. A patient reports the following symptoms:

%s

Analyze the symptoms and respond with JSON only. No explanations, no markdown, no text outside the JSON object. Use exactly this schema:

{
  "conditions": [
    {
      "condition": "condition name",
      "confidence": 0.0,
      "urgency": "low | medium | high",
      "steps": ["recommended next step"],
      "description": "one-paragraph summary"
    }
  ]
}

List the most likely conditions first. Confidence is a number between 0 and 1.`

const imagePromptTemplate = `You are a medical triage assistant. A patient reports the following symptoms:

%s

The patient also attached photos of the affected area. Analyze the symptoms together with the images and respond with JSON only. No explanations, no markdown, no text outside the JSON object. Use exactly this schema:

{
  "conditions": [
    {
      "condition": "condition name",
      "confidence": 0.0,
      "urgency": "low | medium | high",
      "steps": ["recommended next step"],
      "description": "one-paragraph summary",
      "visual_analysis": "what the attached images show"
    }
  ]
}

List the most likely conditions first. Confidence is a number between 0 and 1.`

// buildPrompt renders the symptom list into the text-only or image-aware
// template. Duplicate symptoms pass through as reported.
func buildPrompt(symptoms []string, withImages bool) string {
	var list strings.Builder
	for _, s := range symptoms {
		list.WriteString("- ")
		list.WriteString(s)
		list.WriteString("\n")
	}

	template := textPromptTemplate
	if withImages {
		template = imagePromptTemplate
	}
	return fmt.Sprintf(template, strings.TrimRight(list.String(), "\n"))
}
