package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/application/services"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/catalog"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/evaluation"
	"github.com/sehatlabs/labtestdiscovery/backend/pkg/config"
)

// resolvePath tries the path as-is, then under backend/ for runs from the
// repository root.
func resolvePath(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if _, err := os.Stat(filepath.Join("backend", path)); err == nil {
		return filepath.Join("backend", path)
	}
	return path
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	catalogService := catalog.NewService(resolvePath(cfg.Catalog.DataDir))
	catalogService.Load(context.Background())
	tests := catalogService.Tests(context.Background())
	if len(tests) == 0 {
		log.Printf("Warning: catalog is empty; retrieval metrics will be zero")
	}

	configDir := resolvePath(cfg.Catalog.ConfigDir)

	searchService, err := services.NewSearchService(filepath.Join(configDir, "search_terms.json"))
	if err != nil {
		log.Fatalf("Failed to initialize search service: %v", err)
	}

	intentClassifier, err := services.NewIntentClassifier(filepath.Join(configDir, "entity_lexicon.json"))
	if err != nil {
		log.Fatalf("Failed to initialize intent classifier: %v", err)
	}

	goldenPath := filepath.Join(configDir, "golden_queries.json")
	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		log.Fatalf("Failed to load golden queries: %v", err)
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatalf("Invalid golden queries: %v", err)
	}

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{
		MinIntentConfidence: 0.5,
	})

	runner := evaluation.NewRunner(intentClassifier, searchService, tests, guardrails)
	summary, err := runner.Run(queries)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	// Output results as JSON
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))
}
