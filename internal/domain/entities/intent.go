package entities

// IntentType represents the classified purpose of a user utterance.
type IntentType string

const (
	IntentGreeting        IntentType = "greeting"
	IntentExactQuery      IntentType = "exact_query"      // lab + test known
	IntentTestQuery       IntentType = "test_query"       // test known, lab unknown
	IntentLabOnly         IntentType = "lab_only"         // lab known, test unknown
	IntentMedicalQuestion IntentType = "medical_question" // general medical question
	IntentUnclear         IntentType = "unclear"
	IntentUnknown         IntentType = "unknown"
)

// IsValid checks if the intent type is one of the defined constants.
func (t IntentType) IsValid() bool {
	switch t {
	case IntentGreeting, IntentExactQuery, IntentTestQuery, IntentLabOnly,
		IntentMedicalQuestion, IntentUnclear, IntentUnknown:
		return true
	}
	return false
}

// IntentEntities holds the lab and/or test name extracted from an utterance.
// A fresh value is derived per utterance; never shared across calls.
type IntentEntities struct {
	LabName  string `json:"lab_name,omitempty"`
	TestName string `json:"test_name,omitempty"`
}

// Intent is the classification result for a single utterance.
type Intent struct {
	Type          IntentType     `json:"type"`
	Confidence    float64        `json:"confidence"`
	Entities      IntentEntities `json:"entities"`
	RequiresPrice bool           `json:"requires_price,omitempty"`
}
