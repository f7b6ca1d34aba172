package diagnose

import "github.com/symptomscope/symptomscope/pkg/models"

// fallbackRecords returns the static offline record set served when the
// provider path fails for any reason. The user always receives a result;
// the swallowed error stays visible to operators only.
func fallbackRecords() []models.DiagnosisRecord {
	return []models.DiagnosisRecord{
		{
			Condition:  "General Health Assessment",
			Confidence: 0.5,
			Urgency:    models.UrgencyLow,
			Steps: []string{
				"Monitor your symptoms over the next 24-48 hours",
				"Stay hydrated and rest",
				"Consult a healthcare professional if symptoms persist or worsen",
				"Seek immediate care for severe pain, difficulty breathing, or high fever",
			},
			Description: "An automated analysis could not be completed. The guidance above applies to most mild symptom presentations; it is not a diagnosis.",
		},
	}
}
