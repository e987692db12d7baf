package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/nickprotop/NeighborTools-sub004/internal/application/services"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
	apperrors "github.com/nickprotop/NeighborTools-sub004/pkg/errors"
)

// LocationHandler handles location search and resolution HTTP requests
type LocationHandler struct {
	searchService *services.ProximitySearchService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(searchService *services.ProximitySearchService) *LocationHandler {
	return &LocationHandler{searchService: searchService}
}

// SearchLocations handles GET /api/locations/search?q=...&limit=...&country=...
func (h *LocationHandler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	limit := parseIntParam(r, "limit", 10)
	countryCode := strings.TrimSpace(r.URL.Query().Get("country"))

	options := h.searchService.SearchLocations(r.Context(), query, limit, countryCode, callerUserID(r))

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": options,
	})
}

// ReverseGeocode handles GET /api/locations/reverse?lat=...&lng=...
func (h *LocationHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseLatLng(w, r)
	if !ok {
		return
	}

	option := h.searchService.ReverseGeocode(r.Context(),
		entities.Coordinate{Latitude: lat, Longitude: lng}, callerUserID(r))
	if option == nil {
		respondWithError(w, http.StatusNotFound, "no address found for coordinates")
		return
	}

	respondWithJSON(w, http.StatusOK, option)
}

// ResolveLocation handles POST /api/locations/resolve
func (h *LocationHandler) ResolveLocation(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text     string `json:"text"`
		Fallback string `json:"fallback,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		respondWithError(w, http.StatusBadRequest, "text is required")
		return
	}

	option := h.searchService.ProcessLocationInput(r.Context(), payload.Text, payload.Fallback)
	if option == nil {
		respondWithError(w, http.StatusNotFound, "location could not be resolved")
		return
	}

	respondWithJSON(w, http.StatusOK, option)
}

// GetPopularLocations handles GET /api/locations/popular?limit=...
func (h *LocationHandler) GetPopularLocations(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 10)

	options, err := h.searchService.GetPopularLocations(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": options,
	})
}

// FindNearbyItems handles GET /api/items/nearby?lat=...&lng=...&radius_km=...
func (h *LocationHandler) FindNearbyItems(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseLatLng(w, r)
	if !ok {
		return
	}

	radiusKm := 10.0
	if raw := strings.TrimSpace(r.URL.Query().Get("radius_km")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid radius_km parameter")
			return
		}
		radiusKm = parsed
	}

	searchType := entities.SearchType(r.URL.Query().Get("search_type"))
	if searchType == "" {
		searchType = entities.SearchTypeItem
	}

	var targetID *string
	if raw := strings.TrimSpace(r.URL.Query().Get("target_id")); raw != "" {
		targetID = &raw
	}

	results, err := h.searchService.FindNearbyItems(r.Context(), services.NearbySearchParams{
		Center:          entities.Coordinate{Latitude: lat, Longitude: lng},
		RadiusKm:        radiusKm,
		SearchType:      searchType,
		UserID:          callerUserID(r),
		TargetID:        targetID,
		UserAgent:       r.UserAgent(),
		IPAddress:       clientIP(r),
		SessionID:       r.Header.Get("X-Session-ID"),
		IncludeFuzzedKm: r.URL.Query().Get("include_distance") == "true",
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

func parseLatLng(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	latStr := strings.TrimSpace(r.URL.Query().Get("lat"))
	lngStr := strings.TrimSpace(r.URL.Query().Get("lng"))
	if latStr == "" || lngStr == "" {
		respondWithError(w, http.StatusBadRequest, "lat and lng parameters are required")
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid lat parameter")
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid lng parameter")
		return 0, 0, false
	}

	if !services.ValidateCoordinates(lat, lng) {
		respondWithError(w, http.StatusBadRequest, "coordinates out of range")
		return 0, 0, false
	}

	return lat, lng, true
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// callerUserID extracts the authenticated user id set by the gateway.
// Absent means anonymous.
func callerUserID(r *http.Request) *string {
	userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if userID == "" {
		return nil
	}
	return &userID
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	return r.RemoteAddr
}

// respondWithAppError maps application error types to HTTP status codes
func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeRateLimited:
			respondWithError(w, http.StatusTooManyRequests, appErr.Message)
		case apperrors.ErrorTypeSuspiciousPattern:
			respondWithError(w, http.StatusUnprocessableEntity, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
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
