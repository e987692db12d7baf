package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
	"github.com/nickprotop/NeighborTools-sub004/internal/domain/repositories"
	"github.com/nickprotop/NeighborTools-sub004/internal/infrastructure/clients/postgres"
	apperrors "github.com/nickprotop/NeighborTools-sub004/pkg/errors"
)

const auditTable = "search_audit_log"

// SearchAuditAdapter implements SearchAuditRepository over PostgreSQL
type SearchAuditAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSearchAuditAdapter creates a new search audit adapter
func NewSearchAuditAdapter(client *postgres.Client) repositories.SearchAuditRepository {
	return &SearchAuditAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists one audit entry
func (a *SearchAuditAdapter) Create(ctx context.Context, entry *entities.SearchAuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":                entry.ID,
		"user_id":           nullString(entry.UserID),
		"target_id":         nullString(entry.TargetID),
		"search_type":       string(entry.SearchType),
		"latitude":          nullFloat(entry.Latitude),
		"longitude":         nullFloat(entry.Longitude),
		"search_radius_km":  nullFloat(entry.SearchRadiusKm),
		"query":             nullString(entry.Query),
		"user_agent":        entry.UserAgent,
		"ip_address":        entry.IPAddress,
		"session_id":        entry.SessionID,
		"is_suspicious":     entry.IsSuspicious,
		"suspicious_reason": nullString(entry.SuspiciousReason),
		"result_count":      entry.ResultCount,
		"response_time_ms":  entry.ResponseTimeMs,
		"created_at":        entry.CreatedAt,
		"is_deleted":        entry.IsDeleted,
	}

	query, args, err := a.db.Insert(auditTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build audit insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create search audit entry", err)
	}

	return nil
}

// CountByUserSince counts non-deleted entries for a user created after since
func (a *SearchAuditAdapter) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	return a.count(ctx, goqu.Ex{
		"user_id":    userID,
		"is_deleted": false,
	}, since)
}

// CountByUserTargetSince counts non-deleted entries for a (user, target) pair created after since
func (a *SearchAuditAdapter) CountByUserTargetSince(ctx context.Context, userID, targetID string, since time.Time) (int, error) {
	return a.count(ctx, goqu.Ex{
		"user_id":    userID,
		"target_id":  targetID,
		"is_deleted": false,
	}, since)
}

func (a *SearchAuditAdapter) count(ctx context.Context, where goqu.Ex, since time.Time) (int, error) {
	query, args, err := a.db.From(auditTable).
		Select(goqu.COUNT("*")).
		Where(where, goqu.C("created_at").Gte(since)).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build audit count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count search audit entries", err)
	}

	return count, nil
}

// LatestByUser returns the user's most recent non-deleted entry
func (a *SearchAuditAdapter) LatestByUser(ctx context.Context, userID string) (*entities.SearchAuditEntry, error) {
	query, args, err := a.db.From(auditTable).
		Select(auditColumns()...).
		Where(goqu.Ex{"user_id": userID, "is_deleted": false}).
		Order(goqu.C("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build latest audit query", err)
	}

	entry, err := a.scanOne(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get latest search audit entry", err)
	}

	return entry, nil
}

// ListWithCoordinatesSince returns coordinate-bearing entries in scope created after since
func (a *SearchAuditAdapter) ListWithCoordinatesSince(ctx context.Context, scope repositories.AuditScope, since time.Time) ([]*entities.SearchAuditEntry, error) {
	where := goqu.Ex{
		"search_type": string(scope.SearchType),
		"is_deleted":  false,
	}
	if scope.UserID != nil {
		where["user_id"] = *scope.UserID
	} else {
		where["user_id"] = nil
	}
	if scope.TargetID != nil {
		where["target_id"] = *scope.TargetID
	} else {
		where["target_id"] = nil
	}

	query, args, err := a.db.From(auditTable).
		Select(auditColumns()...).
		Where(where,
			goqu.C("created_at").Gte(since),
			goqu.C("latitude").IsNotNull(),
			goqu.C("longitude").IsNotNull(),
		).
		Order(goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build audit scope query", err)
	}

	return a.scanMany(ctx, query, args)
}

// ListSuspicious returns the most recent flagged entries
func (a *SearchAuditAdapter) ListSuspicious(ctx context.Context, limit int) ([]*entities.SearchAuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := a.db.From(auditTable).
		Select(auditColumns()...).
		Where(goqu.Ex{"is_suspicious": true, "is_deleted": false}).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build suspicious audit query", err)
	}

	return a.scanMany(ctx, query, args)
}

// PurgeOlderThan hard-deletes entries created before cutoff
func (a *SearchAuditAdapter) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := a.db.Delete(auditTable).
		Where(goqu.C("created_at").Lt(cutoff)).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build audit purge query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to purge search audit entries", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to read purge row count", err)
	}

	return removed, nil
}

func (a *SearchAuditAdapter) scanMany(ctx context.Context, query string, args []interface{}) ([]*entities.SearchAuditEntry, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query search audit entries", err)
	}
	defer rows.Close()

	var entries []*entities.SearchAuditEntry
	for rows.Next() {
		entry, err := a.scanOne(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan search audit entry", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate search audit entries", err)
	}

	return entries, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *SearchAuditAdapter) scanOne(row rowScanner) (*entities.SearchAuditEntry, error) {
	entry := &entities.SearchAuditEntry{}
	var (
		userID, targetID, searchQuery, reason sql.NullString
		latitude, longitude, radius           sql.NullFloat64
		searchType                            string
	)

	err := row.Scan(
		&entry.ID,
		&userID,
		&targetID,
		&searchType,
		&latitude,
		&longitude,
		&radius,
		&searchQuery,
		&entry.UserAgent,
		&entry.IPAddress,
		&entry.SessionID,
		&entry.IsSuspicious,
		&reason,
		&entry.ResultCount,
		&entry.ResponseTimeMs,
		&entry.CreatedAt,
		&entry.IsDeleted,
	)
	if err != nil {
		return nil, err
	}

	entry.SearchType = entities.SearchType(searchType)
	entry.UserID = stringPtr(userID)
	entry.TargetID = stringPtr(targetID)
	entry.Query = stringPtr(searchQuery)
	entry.SuspiciousReason = stringPtr(reason)
	entry.Latitude = floatPtr(latitude)
	entry.Longitude = floatPtr(longitude)
	entry.SearchRadiusKm = floatPtr(radius)

	return entry, nil
}

func auditColumns() []interface{} {
	return []interface{}{
		"id", "user_id", "target_id", "search_type",
		"latitude", "longitude", "search_radius_km", "query",
		"user_agent", "ip_address", "session_id",
		"is_suspicious", "suspicious_reason",
		"result_count", "response_time_ms", "created_at", "is_deleted",
	}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
