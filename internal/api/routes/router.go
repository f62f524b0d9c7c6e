package routes

import (
	"encoding/json"
	"net/http"

	"github.com/sehatlabs/labtestdiscovery/backend/internal/api/handlers"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/api/middleware"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/catalog"
	"github.com/sehatlabs/labtestdiscovery/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	chatHandler    *handlers.ChatHandler
	catalogHandler *handlers.CatalogHandler

	catalogService *catalog.Service

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	chatHandler *handlers.ChatHandler,
	catalogHandler *handlers.CatalogHandler,
	catalogService *catalog.Service,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		chatHandler:    chatHandler,
		catalogHandler: catalogHandler,

		catalogService: catalogService,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		status := map[string]interface{}{
			"status":        "ok",
			"catalog_ready": r.catalogService != nil && r.catalogService.IsReady(),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			return
		}
	})

	// Chat endpoint
	r.mux.HandleFunc("POST /api/chat", r.chatHandler.HandleChat)

	// Catalog endpoints
	r.mux.HandleFunc("GET /api/labs", r.catalogHandler.ListLabs)
	r.mux.HandleFunc("GET /api/labs/{name}/tests", r.catalogHandler.GetLabTests)
	r.mux.HandleFunc("GET /api/tests/search", r.catalogHandler.SearchTests)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
