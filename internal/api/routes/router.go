package routes

import (
	"net/http"

	"github.com/nickprotop/NeighborTools-sub004/internal/api/handlers"
	"github.com/nickprotop/NeighborTools-sub004/internal/api/middleware"
	"github.com/nickprotop/NeighborTools-sub004/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	locationHandler *handlers.LocationHandler
	securityHandler *handlers.SecurityHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	locationHandler *handlers.LocationHandler,
	securityHandler *handlers.SecurityHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		locationHandler: locationHandler,
		securityHandler: securityHandler,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Location endpoints
	r.mux.HandleFunc("GET /api/locations/search", r.locationHandler.SearchLocations)
	r.mux.HandleFunc("GET /api/locations/reverse", r.locationHandler.ReverseGeocode)
	r.mux.HandleFunc("POST /api/locations/resolve", r.locationHandler.ResolveLocation)
	r.mux.HandleFunc("GET /api/locations/popular", r.locationHandler.GetPopularLocations)

	// Nearby item search
	r.mux.HandleFunc("GET /api/items/nearby", r.locationHandler.FindNearbyItems)

	// Audit review endpoints
	if r.securityHandler != nil {
		r.mux.HandleFunc("GET /api/admin/suspicious-searches", r.securityHandler.ListSuspiciousSearches)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
