package evaluation

import (
	"time"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
)

// GoldenQuery represents a labeled test query with expected outcomes.
type GoldenQuery struct {
	ID            string              `json:"id"`
	Query         string              `json:"query"`
	Intent        entities.IntentType `json:"intent"`
	ExpectedLab   string              `json:"expected_lab,omitempty"`
	ExpectedTest  string              `json:"expected_test,omitempty"`
	ExpectedNames []string            `json:"expected_names,omitempty"`
	Difficulty    string              `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID        string
	Query          string
	ExpectedIntent entities.IntentType
	ActualIntent   entities.IntentType
	IntentCorrect  bool
	EntityCorrect  bool
	LowConfidence  bool
	RecallAt10     float64
	MRRAt10        float64
	ResultCount    int
	RetrievedNames []string
	Latency        time.Duration
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries    int
	IntentAccuracy  float64
	EntityAccuracy  float64 // intent and both labeled entities correct
	AvgRecallAt10   float64
	AvgMRRAt10      float64
	AvgLatency      time.Duration
	QueriesWithHits int // search queries that returned at least 1 result
	LowConfidence   int // classifications below the guardrail threshold
	ByIntent        map[entities.IntentType]*IntentSummary
}

// IntentSummary holds metrics grouped by expected intent type.
type IntentSummary struct {
	Count         int
	Correct       int
	AvgRecallAt10 float64
	AvgMRRAt10    float64
}
