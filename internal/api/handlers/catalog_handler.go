package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/application/services"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/catalog"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/domain/entities"
)

// CatalogHandler serves read-only views over the loaded test catalog.
type CatalogHandler struct {
	catalog *catalog.Service
	search  *services.SearchService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(cat *catalog.Service, search *services.SearchService) *CatalogHandler {
	return &CatalogHandler{catalog: cat, search: search}
}

// ListLabs handles GET /api/labs
func (h *CatalogHandler) ListLabs(w http.ResponseWriter, r *http.Request) {
	labs := h.catalog.Labs(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"labs":  labs,
		"count": len(labs),
	})
}

// GetLabTests handles GET /api/labs/{name}/tests
func (h *CatalogHandler) GetLabTests(w http.ResponseWriter, r *http.Request) {
	labName := r.PathValue("name")
	if labName == "" {
		respondWithError(w, http.StatusBadRequest, "lab name is required")
		return
	}

	tests := h.catalog.TestsByLab(r.Context(), labName)
	if len(tests) == 0 {
		respondWithError(w, http.StatusNotFound, "lab not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"lab":   tests[0].LabName,
		"tests": tests,
		"count": len(tests),
	})
}

// SearchTests handles GET /api/tests/search. An optional lab parameter
// restricts ranking to that lab's catalog.
func (h *CatalogHandler) SearchTests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	var results []entities.ScoredTestRecord
	if lab := r.URL.Query().Get("lab"); lab != "" {
		candidates := h.catalog.TestsByLab(r.Context(), lab)
		if len(candidates) == 0 {
			respondWithError(w, http.StatusNotFound, "lab not found")
			return
		}
		results = h.search.SearchTests(query, candidates)
	} else {
		results = h.search.SearchTestByName(query, h.catalog.Tests(r.Context()))
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
