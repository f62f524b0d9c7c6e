package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
)

func TestLoadGoldenQueries_ValidFile(t *testing.T) {
	content := `[
		{"id": "q1", "query": "cbc at chughtai", "intent": "exact_query", "expected_lab": "Chughtai Lab", "expected_test": "cbc", "difficulty": "easy"},
		{"id": "q2", "query": "blood sugar", "intent": "test_query", "expected_names": ["Blood Sugar Random (BSR)"], "difficulty": "easy"}
	]`
	path := writeTempFile(t, content)

	queries, err := LoadGoldenQueries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(queries))
	}
	if queries[0].ID != "q1" {
		t.Errorf("expected id q1, got %s", queries[0].ID)
	}
	if queries[0].Intent != entities.IntentExactQuery {
		t.Errorf("expected intent exact_query, got %s", queries[0].Intent)
	}
	if queries[0].ExpectedLab != "Chughtai Lab" {
		t.Errorf("expected lab 'Chughtai Lab', got %s", queries[0].ExpectedLab)
	}
	if queries[1].Query != "blood sugar" {
		t.Errorf("expected query 'blood sugar', got %s", queries[1].Query)
	}
	if len(queries[1].ExpectedNames) != 1 {
		t.Errorf("expected 1 expected name, got %d", len(queries[1].ExpectedNames))
	}
}

func TestLoadGoldenQueries_InvalidFile(t *testing.T) {
	_, err := LoadGoldenQueries("/nonexistent/path.json")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadGoldenQueries_InvalidJSON(t *testing.T) {
	path := writeTempFile(t, `not valid json`)
	_, err := LoadGoldenQueries(path)
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestLoadGoldenQueries_EmptyArray(t *testing.T) {
	path := writeTempFile(t, `[]`)
	queries, err := LoadGoldenQueries(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queries) != 0 {
		t.Errorf("expected 0 queries, got %d", len(queries))
	}
}

func TestValidateGoldenQueries_MissingID(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "", Query: "cbc", Intent: entities.IntentTestQuery, Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for missing ID")
	}
}

func TestValidateGoldenQueries_MissingQuery(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "", Intent: entities.IntentTestQuery, Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for missing query")
	}
}

func TestValidateGoldenQueries_InvalidIntent(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "cbc", Intent: entities.IntentType("bad"), Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for invalid intent")
	}
}

func TestValidateGoldenQueries_InvalidDifficulty(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "cbc", Intent: entities.IntentTestQuery, Difficulty: "impossible"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for invalid difficulty")
	}
}

func TestValidateGoldenQueries_DuplicateIDs(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "cbc", Intent: entities.IntentTestQuery, Difficulty: "easy"},
		{ID: "q1", Query: "lft", Intent: entities.IntentTestQuery, Difficulty: "easy"},
	}
	err := ValidateGoldenQueries(queries)
	if err == nil {
		t.Error("expected validation error for duplicate IDs")
	}
}

func TestValidateGoldenQueries_Valid(t *testing.T) {
	queries := []GoldenQuery{
		{ID: "q1", Query: "cbc", Intent: entities.IntentTestQuery, ExpectedNames: []string{"cbc"}, Difficulty: "easy"},
		{ID: "q2", Query: "hello", Intent: entities.IntentGreeting, Difficulty: "medium"},
	}
	err := ValidateGoldenQueries(queries)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}
