package handlers

import (
	"net/http"

	"github.com/nickprotop/NeighborTools-sub004/internal/application/services"
)

// SecurityHandler exposes the audit review surface
type SecurityHandler struct {
	security *services.LocationSecurityService
}

// NewSecurityHandler creates a new security handler
func NewSecurityHandler(security *services.LocationSecurityService) *SecurityHandler {
	return &SecurityHandler{security: security}
}

// ListSuspiciousSearches handles GET /api/admin/suspicious-searches?limit=...
func (h *SecurityHandler) ListSuspiciousSearches(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 100)

	entries, err := h.security.SuspiciousEntries(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": entries,
		"count":   len(entries),
	})
}
