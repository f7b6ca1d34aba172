package models

// MaxImages is the most image attachments a single diagnosis request carries.
const MaxImages = 3

// Attachment is an opaque image payload supplied with a diagnosis request.
type Attachment struct {
	Data []byte
	MIME string
}

// SymptomInput holds the symptoms and optional photos for one diagnosis
// request. Symptoms are not deduplicated; duplicates pass through as
// collected. The input is transient and owned by a single request.
type SymptomInput struct {
	Symptoms []string
	Images   []Attachment
}
