package evaluation

import (
	"strings"
	"time"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/providers"
)

// NameSearcher looks a test up by name across every lab in the catalog.
type NameSearcher interface {
	SearchTestByName(testName string, allTests []entities.TestRecord) []entities.ScoredTestRecord
}

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	extractor  providers.EntityExtractor
	search     NameSearcher
	tests      []entities.TestRecord
	guardrails *Guardrails
}

func NewRunner(extractor providers.EntityExtractor, search NameSearcher, tests []entities.TestRecord, guardrails *Guardrails) *Runner {
	if guardrails == nil {
		guardrails = NewGuardrails(GuardrailConfig{})
	}
	return &Runner{
		extractor:  extractor,
		search:     search,
		tests:      tests,
		guardrails: guardrails,
	}
}

func (r *Runner) Run(queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByIntent:     make(map[entities.IntentType]*IntentSummary),
	}

	for _, gq := range queries {
		start := time.Now()
		intent := r.extractor.ClassifyIntent(gq.Query)

		result := EvalResult{
			QueryID:        gq.ID,
			Query:          gq.Query,
			ExpectedIntent: gq.Intent,
			ActualIntent:   intent.Type,
			IntentCorrect:  intent.Type == gq.Intent,
			EntityCorrect:  entityMatch(gq.ExpectedLab, intent.Entities.LabName) && entityMatch(gq.ExpectedTest, intent.Entities.TestName),
			LowConfidence:  !r.guardrails.ShouldProcess(intent.Confidence),
		}

		// Retrieval metrics only apply to queries labeled with expected
		// catalog names.
		if len(gq.ExpectedNames) > 0 {
			results := r.search.SearchTestByName(gq.Query, r.tests)
			retrieved := make([]string, len(results))
			for i, res := range results {
				retrieved[i] = strings.ToLower(res.TestName)
			}
			retrieved = r.guardrails.LimitResults(retrieved)

			expected := make([]string, len(gq.ExpectedNames))
			for i, name := range gq.ExpectedNames {
				expected[i] = strings.ToLower(name)
			}

			result.RecallAt10 = RecallAtK(expected, retrieved, 10)
			result.MRRAt10 = MRRAtK(expected, retrieved, 10)
			result.ResultCount = len(results)
			result.RetrievedNames = retrieved
		}

		result.Latency = time.Since(start)
		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

// entityMatch accepts an empty expectation, and otherwise tolerates the
// extractor returning a longer or shorter span than the label.
func entityMatch(expected, actual string) bool {
	if expected == "" {
		return true
	}
	expected = strings.ToLower(expected)
	actual = strings.ToLower(actual)
	if actual == "" {
		return false
	}
	return strings.Contains(actual, expected) || strings.Contains(expected, actual)
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	if res.IntentCorrect {
		s.IntentAccuracy++
	}
	if res.IntentCorrect && res.EntityCorrect {
		s.EntityAccuracy++
	}
	if res.LowConfidence {
		s.LowConfidence++
	}
	s.AvgRecallAt10 += res.RecallAt10
	s.AvgMRRAt10 += res.MRRAt10
	s.AvgLatency += res.Latency
	if res.ResultCount > 0 {
		s.QueriesWithHits++
	}

	if _, ok := s.ByIntent[res.ExpectedIntent]; !ok {
		s.ByIntent[res.ExpectedIntent] = &IntentSummary{}
	}
	is := s.ByIntent[res.ExpectedIntent]
	is.Count++
	if res.IntentCorrect {
		is.Correct++
	}
	is.AvgRecallAt10 += res.RecallAt10
	is.AvgMRRAt10 += res.MRRAt10
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalQueries > 0 {
		n := float64(s.TotalQueries)
		s.IntentAccuracy /= n
		s.EntityAccuracy /= n
		s.AvgRecallAt10 /= n
		s.AvgMRRAt10 /= n
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}

	for _, is := range s.ByIntent {
		if is.Count > 0 {
			n := float64(is.Count)
			is.AvgRecallAt10 /= n
			is.AvgMRRAt10 /= n
		}
	}
}
