package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/repositories"
	"github.com/nickprotop/NeighborTools-sub004/internal/geoprivacy"
	"github.com/nickprotop/NeighborTools-sub004/internal/infrastructure/observability"
	"github.com/nickprotop/NeighborTools-sub004/pkg/config"
	apperrors "github.com/nickprotop/NeighborTools-sub004/pkg/errors"
)

// A degenerate line of probe points cannot locate a target; points must
// deviate from a shared line by more than this to count as spread out.
const collinearToleranceKm = 0.5

// LocationSecurityService gatekeeps every location-revealing search and
// maintains the audit trail used to detect coordinated probing. All
// rate-limit and triangulation state is derived by querying the audit
// log per request; nothing is cached in process, so a broken store
// fails closed.
type LocationSecurityService struct {
	auditRepo repositories.SearchAuditRepository
	cfg       config.SecurityConfig
	metrics   *observability.Metrics
	now       func() time.Time
}

// NewLocationSecurityService creates a new location security service
func NewLocationSecurityService(auditRepo repositories.SearchAuditRepository, cfg config.SecurityConfig, metrics *observability.Metrics) *LocationSecurityService {
	return &LocationSecurityService{
		auditRepo: auditRepo,
		cfg:       cfg,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock; used by tests
func (s *LocationSecurityService) WithClock(now func() time.Time) *LocationSecurityService {
	s.now = now
	return s
}

// LogSearchParams carries everything recorded about one executed search
type LogSearchParams struct {
	UserID         *string
	TargetID       *string
	SearchType     entities.SearchType
	Coordinate     *entities.Coordinate
	RadiusKm       *float64
	Query          *string
	UserAgent      string
	IPAddress      string
	SessionID      string
	ResultCount    int
	ResponseTimeMs int
}

// LogSearch records one executed location search. It never rejects; it
// only annotates the entry with the triangulation check result before
// persisting. Rejection is the caller's job via ValidateLocationSearch
// and IsTriangulationAttempt.
func (s *LocationSecurityService) LogSearch(ctx context.Context, params LogSearchParams) (*entities.SearchAuditEntry, error) {
	entry := &entities.SearchAuditEntry{
		UserID:         params.UserID,
		TargetID:       params.TargetID,
		SearchType:     params.SearchType,
		Query:          params.Query,
		UserAgent:      params.UserAgent,
		IPAddress:      params.IPAddress,
		SessionID:      params.SessionID,
		ResultCount:    params.ResultCount,
		ResponseTimeMs: params.ResponseTimeMs,
		CreatedAt:      s.now(),
	}
	if params.Coordinate != nil {
		lat, lng := params.Coordinate.Latitude, params.Coordinate.Longitude
		entry.Latitude = &lat
		entry.Longitude = &lng
	}
	if params.RadiusKm != nil {
		radius := *params.RadiusKm
		entry.SearchRadiusKm = &radius
	}

	if s.cfg.EnableTriangulationDetection && params.Coordinate != nil {
		suspicious, err := s.IsTriangulationAttempt(ctx, params.UserID, params.TargetID, params.SearchType, *params.Coordinate)
		if err != nil {
			return nil, err
		}
		if suspicious {
			reason := fmt.Sprintf(
				"Possible triangulation attempt: %d or more well-separated search points against the same target within %dh",
				s.cfg.TriangulationMinSearchPoints, s.cfg.TriangulationTimeWindowHours,
			)
			entry.IsSuspicious = true
			entry.SuspiciousReason = &reason
		}
	}

	// Suspicious entries are always kept for review, even when routine
	// search logging is turned off.
	if !s.cfg.LogAllSearches && !entry.IsSuspicious {
		return entry, nil
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	if entry.IsSuspicious && s.metrics != nil {
		s.metrics.SearchesFlagged.Add(ctx, 1)
	}

	return entry, nil
}

// ValidateLocationSearch applies the rate-limit rules. Anonymous callers
// always pass; IP-scoped throttling for them lives outside this core.
// A store failure fails closed: the search is refused.
func (s *LocationSecurityService) ValidateLocationSearch(ctx context.Context, userID, targetID *string) (bool, error) {
	if s.metrics != nil {
		s.metrics.SearchesGated.Add(ctx, 1)
	}

	if userID == nil {
		return true, nil
	}

	since := s.now().Add(-time.Hour)

	hourly, err := s.auditRepo.CountByUserSince(ctx, *userID, since)
	if err != nil {
		return false, apperrors.NewInternalError("failed to check search rate limit", err)
	}
	if hourly >= s.cfg.MaxSearchesPerHour {
		s.countRefusal(ctx)
		return false, nil
	}

	if s.cfg.MinSearchIntervalSeconds > 0 {
		latest, err := s.auditRepo.LatestByUser(ctx, *userID)
		if err != nil {
			return false, apperrors.NewInternalError("failed to check search interval", err)
		}
		if latest != nil {
			minInterval := time.Duration(s.cfg.MinSearchIntervalSeconds) * time.Second
			if s.now().Sub(latest.CreatedAt) < minInterval {
				s.countRefusal(ctx)
				return false, nil
			}
		}
	}

	if targetID != nil {
		perTarget, err := s.auditRepo.CountByUserTargetSince(ctx, *userID, *targetID, since)
		if err != nil {
			return false, apperrors.NewInternalError("failed to check per-target rate limit", err)
		}
		if perTarget >= s.cfg.MaxSearchesPerTarget {
			s.countRefusal(ctx)
			return false, nil
		}
	}

	return true, nil
}

// IsTriangulationAttempt reports whether the candidate coordinate,
// combined with the caller's recent history against the same target,
// forms the geometric signature of multilateration: enough mutually
// separated, non-collinear probe points inside the detection window.
func (s *LocationSecurityService) IsTriangulationAttempt(ctx context.Context, userID, targetID *string, searchType entities.SearchType, coordinate entities.Coordinate) (bool, error) {
	if !s.cfg.EnableTriangulationDetection {
		return false, nil
	}

	since := s.now().Add(-time.Duration(s.cfg.TriangulationTimeWindowHours) * time.Hour)
	scope := repositories.AuditScope{
		UserID:     userID,
		TargetID:   targetID,
		SearchType: searchType,
	}

	history, err := s.auditRepo.ListWithCoordinatesSince(ctx, scope, since)
	if err != nil {
		return false, apperrors.NewInternalError("failed to load search history", err)
	}

	points := make([]entities.Coordinate, 0, len(history)+1)
	for _, entry := range history {
		if c := entry.Coordinate(); c != nil {
			points = append(points, *c)
		}
	}
	points = append(points, coordinate)

	if len(points) < s.cfg.TriangulationMinSearchPoints {
		return false, nil
	}

	spread := spreadPoints(points, s.cfg.TriangulationMinDistanceKm)
	if len(spread) < s.cfg.TriangulationMinSearchPoints {
		return false, nil
	}

	return !collinearWithin(spread, collinearToleranceKm), nil
}

// SuspiciousEntries returns recently flagged audit entries for review
func (s *LocationSecurityService) SuspiciousEntries(ctx context.Context, limit int) ([]*entities.SearchAuditEntry, error) {
	return s.auditRepo.ListSuspicious(ctx, limit)
}

// PurgeExpiredEntries removes audit entries past the retention window
func (s *LocationSecurityService) PurgeExpiredEntries(ctx context.Context) (int64, error) {
	if s.cfg.SearchLogRetentionDays <= 0 {
		return 0, nil
	}
	cutoff := s.now().AddDate(0, 0, -s.cfg.SearchLogRetentionDays)
	return s.auditRepo.PurgeOlderThan(ctx, cutoff)
}

func (s *LocationSecurityService) countRefusal(ctx context.Context) {
	if s.metrics != nil {
		s.metrics.SearchesRefused.Add(ctx, 1)
	}
}

// spreadPoints greedily keeps points that are at least minKm from every
// point already kept, filtering out nearly-identical repeated queries.
func spreadPoints(points []entities.Coordinate, minKm float64) []entities.Coordinate {
	var kept []entities.Coordinate
	for _, candidate := range points {
		separated := true
		for _, existing := range kept {
			if geoprivacy.GreatCircleDistance(candidate, existing) < minKm {
				separated = false
				break
			}
		}
		if separated {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// collinearWithin reports whether all points lie within toleranceKm of
// the line through the two most distant points in the set.
func collinearWithin(points []entities.Coordinate, toleranceKm float64) bool {
	if len(points) < 3 {
		return true
	}

	// Pick the most distant pair as the baseline.
	var a, b entities.Coordinate
	maxDistance := -1.0
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if d := geoprivacy.GreatCircleDistance(points[i], points[j]); d > maxDistance {
				maxDistance = d
				a, b = points[i], points[j]
			}
		}
	}
	if maxDistance <= 0 {
		return true
	}

	for _, p := range points {
		if perpendicularDistanceKm(a, b, p) > toleranceKm {
			return false
		}
	}
	return true
}

// perpendicularDistanceKm approximates the distance from p to the line
// through a and b using a local planar projection in kilometers. The
// approximation is fine at triangulation-probe scale.
func perpendicularDistanceKm(a, b, p entities.Coordinate) float64 {
	cosLat := math.Cos(a.Latitude * math.Pi / 180)

	bx := (b.Longitude - a.Longitude) * 111.32 * cosLat
	by := (b.Latitude - a.Latitude) * 111.32
	px := (p.Longitude - a.Longitude) * 111.32 * cosLat
	py := (p.Latitude - a.Latitude) * 111.32

	baseLength := math.Hypot(bx, by)
	if baseLength == 0 {
		return math.Hypot(px, py)
	}

	cross := math.Abs(bx*py - by*px)
	return cross / baseLength
}
