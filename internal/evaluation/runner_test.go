package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
)

type stubExtractor struct {
	intents map[string]entities.Intent
}

func (s *stubExtractor) ClassifyIntent(query string) entities.Intent {
	if intent, ok := s.intents[query]; ok {
		return intent
	}
	return entities.Intent{Type: entities.IntentUnclear, Confidence: 0.3}
}

type stubSearcher struct {
	results map[string][]entities.ScoredTestRecord
}

func (s *stubSearcher) SearchTestByName(testName string, allTests []entities.TestRecord) []entities.ScoredTestRecord {
	return s.results[testName]
}

func TestRunner_IntentAccuracy(t *testing.T) {
	extractor := &stubExtractor{intents: map[string]entities.Intent{
		"hello": {Type: entities.IntentGreeting, Confidence: 1.0},
		"cbc":   {Type: entities.IntentTestQuery, Confidence: 0.5},
	}}
	runner := NewRunner(extractor, &stubSearcher{}, nil, nil)

	queries := []GoldenQuery{
		{ID: "q1", Query: "hello", Intent: entities.IntentGreeting, Difficulty: "easy"},
		{ID: "q2", Query: "cbc", Intent: entities.IntentTestQuery, Difficulty: "easy"},
		{ID: "q3", Query: "gibberish", Intent: entities.IntentTestQuery, Difficulty: "hard"},
	}

	summary, err := runner.Run(queries)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalQueries)
	assert.InDelta(t, 2.0/3.0, summary.IntentAccuracy, 1e-9)
	assert.Equal(t, 1, summary.ByIntent[entities.IntentGreeting].Correct)
	assert.Equal(t, 2, summary.ByIntent[entities.IntentTestQuery].Count)
	assert.Equal(t, 1, summary.ByIntent[entities.IntentTestQuery].Correct)
}

func TestRunner_RetrievalMetrics(t *testing.T) {
	searcher := &stubSearcher{results: map[string][]entities.ScoredTestRecord{
		"blood sugar": {
			{TestRecord: entities.TestRecord{TestName: "Blood Sugar Random (BSR)"}, RelevanceScore: 500},
			{TestRecord: entities.TestRecord{TestName: "HbA1c"}, RelevanceScore: 200},
		},
	}}
	runner := NewRunner(&stubExtractor{}, searcher, nil, nil)

	queries := []GoldenQuery{
		{
			ID:            "q1",
			Query:         "blood sugar",
			Intent:        entities.IntentUnclear,
			ExpectedNames: []string{"Blood Sugar Random (BSR)"},
			Difficulty:    "easy",
		},
	}

	summary, err := runner.Run(queries)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.QueriesWithHits)
	assert.InDelta(t, 1.0, summary.AvgRecallAt10, 1e-9)
	assert.InDelta(t, 1.0, summary.AvgMRRAt10, 1e-9)
}

func TestRunner_LowConfidenceCounted(t *testing.T) {
	extractor := &stubExtractor{intents: map[string]entities.Intent{
		"mumble": {Type: entities.IntentUnclear, Confidence: 0.3},
	}}
	guardrails := NewGuardrails(GuardrailConfig{MinIntentConfidence: 0.5})
	runner := NewRunner(extractor, &stubSearcher{}, nil, guardrails)

	summary, err := runner.Run([]GoldenQuery{
		{ID: "q1", Query: "mumble", Intent: entities.IntentUnclear, Difficulty: "hard"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.LowConfidence)
	assert.InDelta(t, 1.0, summary.IntentAccuracy, 1e-9)
}
