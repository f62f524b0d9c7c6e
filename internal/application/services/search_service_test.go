package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
)

func newTestSearchService(t *testing.T) *SearchService {
	t.Helper()
	content := `{
		"stopwords": ["test", "lab", "tests", "diagnostics", "diagnostic", "routine", "count"],
		"synonyms": {
			"blood sugar": ["bsr", "bsf", "glucose", "blood glucose", "random blood sugar", "fasting blood sugar"],
			"cbc": ["cp", "complete picture", "blood cp"]
		}
	}`
	path := filepath.Join(t.TempDir(), "search_terms.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	svc, err := NewSearchService(path)
	require.NoError(t, err)
	return svc
}

func record(name, shortDesc, desc string) entities.TestRecord {
	return entities.TestRecord{TestName: name, ShortDescription: shortDesc, Description: desc, LabName: "Chughtai Lab"}
}

func TestNewSearchService_MissingFile(t *testing.T) {
	_, err := NewSearchService(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSearchTests_ExactMatchDominates(t *testing.T) {
	svc := newTestSearchService(t)
	candidates := []entities.TestRecord{
		record("CBC", "complete blood count", ""),
		record("CBC with ESR", "cbc plus sed rate", ""),
	}

	results := svc.SearchTests("cbc", candidates)
	require.NotEmpty(t, results)
	assert.Equal(t, "CBC", results[0].TestName)
	assert.Equal(t, 1000, results[0].RelevanceScore)
}

func TestSearchTests_ShortQueryPrecisionGuard(t *testing.T) {
	svc := newTestSearchService(t)
	// Token hits only the description of an unrelated record.
	candidates := []entities.TestRecord{
		record("Foley Catheter", "", "often ordered alongside a cbc panel"),
	}

	results := svc.SearchTests("cbc", candidates)
	assert.Empty(t, results)
}

func TestSearchTests_PostFilterInvariant(t *testing.T) {
	svc := newTestSearchService(t)
	candidates := []entities.TestRecord{
		record("Lipid Profile", "", ""),
		record("Something Else", "", "mentions lipid once"),
	}

	results := svc.SearchTests("lipid profile", candidates)
	require.NotEmpty(t, results)
	top := results[0].RelevanceScore
	for _, r := range results {
		retained := r.RelevanceScore >= minRetainedScore ||
			float64(r.RelevanceScore) >= float64(top)*topScoreRetainRate
		assert.True(t, retained, "record %q score %d breaks the retention rule", r.TestName, r.RelevanceScore)
	}
}

func TestSearchTests_StoplistSuppression(t *testing.T) {
	svc := newTestSearchService(t)

	// "test" is generic and dropped when other tokens survive.
	assert.Equal(t, []string{"thyroid"}, svc.tokenize("thyroid test"))
	// Dropping every token would empty the query, so the stoplist is ignored.
	assert.Equal(t, []string{"test", "lab"}, svc.tokenize("test lab"))
	assert.Equal(t, []string{"test"}, svc.tokenize("test"))
}

func TestSearchTests_EmptyQuery(t *testing.T) {
	svc := newTestSearchService(t)
	assert.Nil(t, svc.SearchTests("  ", []entities.TestRecord{record("CBC", "", "")}))
}

func TestSearchTestByName_SynonymClosure(t *testing.T) {
	svc := newTestSearchService(t)
	candidates := []entities.TestRecord{
		record("Glucose Fasting", "", ""),
		record("BSR", "", ""),
		record("Uric Acid", "", ""),
	}

	results := svc.SearchTestByName("blood sugar", candidates)
	require.Len(t, results, 2)

	names := []string{results[0].TestName, results[1].TestName}
	assert.Contains(t, names, "Glucose Fasting")
	assert.Contains(t, names, "BSR")
}

func TestSearchTestByName_ThresholdExcludesWeakMatches(t *testing.T) {
	svc := newTestSearchService(t)
	// Only one of two term words hits: 100 points, below the threshold.
	candidates := []entities.TestRecord{
		record("Thyroid Antibodies", "", ""),
	}

	results := svc.SearchTestByName("thyroid panel", candidates)
	assert.Empty(t, results)
}

func TestSearchTestByName_RanksExactAboveSubstring(t *testing.T) {
	svc := newTestSearchService(t)
	candidates := []entities.TestRecord{
		record("HBA1C Kit", "", ""),
		record("hba1c", "", ""),
	}

	results := svc.SearchTestByName("hba1c", candidates)
	require.Len(t, results, 2)
	assert.Equal(t, "hba1c", results[0].TestName)
	assert.Equal(t, nameScoreExact, results[0].RelevanceScore)
}

func TestFindExactTest_BidirectionalSubstring(t *testing.T) {
	svc := newTestSearchService(t)
	candidates := []entities.TestRecord{
		{TestName: "Complete Blood Count (CBC)", LabName: "Chughtai Lab"},
		{TestName: "CBC", LabName: "Ayzal Lab"},
	}

	found := svc.FindExactTest("chughtai", "complete blood count", candidates)
	require.NotNil(t, found)
	assert.Equal(t, "Chughtai Lab", found.LabName)

	// The full lab name typed by the user contains the stored one.
	found = svc.FindExactTest("ayzal lab karachi branch", "cbc", candidates)
	require.NotNil(t, found)
	assert.Equal(t, "Ayzal Lab", found.LabName)

	assert.Nil(t, svc.FindExactTest("", "cbc", candidates))
	assert.Nil(t, svc.FindExactTest("jinnah", "cbc", candidates))
}

func TestCleanTestName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CBC (at Chughtai Lab)", "CBC"},
		{"LFT at Test Zone", "LFT"},
		{"Lipid Profile @ Ayzal", "Lipid Profile"},
		{"Vitamin D", "Vitamin D"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanTestName(tt.in), "input %q", tt.in)
	}
}

func TestContainsWholeWord(t *testing.T) {
	assert.True(t, containsWholeWord("complete blood count", "blood"))
	assert.True(t, containsWholeWord("cbc", "cbc"))
	assert.False(t, containsWholeWord("scanner", "scan"))
	assert.True(t, containsWholeWord("ct-scan ordered", "scan"))
	assert.False(t, containsWholeWord("", "cbc"))
}
