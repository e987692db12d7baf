package repositories

import (
	"context"
	"time"

	"github.com/nickprotop/NeighborTools-sub004/internal/domain/entities"
)

// AuditScope narrows history queries to the actor/target/type combination
// whose prior searches matter for abuse detection. Nil actor or target
// matches the anonymous / untargeted entries.
type AuditScope struct {
	UserID     *string
	TargetID   *string
	SearchType entities.SearchType
}

// SearchAuditRepository owns the append-only search audit log. All
// time-window calculations are based on the server-assigned CreatedAt.
type SearchAuditRepository interface {
	// Create persists one audit entry
	Create(ctx context.Context, entry *entities.SearchAuditEntry) error

	// CountByUserSince counts non-deleted entries for a user created after since
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error)

	// CountByUserTargetSince counts non-deleted entries for a (user, target) pair created after since
	CountByUserTargetSince(ctx context.Context, userID, targetID string, since time.Time) (int, error)

	// LatestByUser returns the user's most recent non-deleted entry, nil if none
	LatestByUser(ctx context.Context, userID string) (*entities.SearchAuditEntry, error)

	// ListWithCoordinatesSince returns coordinate-bearing entries in scope created after since
	ListWithCoordinatesSince(ctx context.Context, scope AuditScope, since time.Time) ([]*entities.SearchAuditEntry, error)

	// ListSuspicious returns the most recent flagged entries for review
	ListSuspicious(ctx context.Context, limit int) ([]*entities.SearchAuditEntry, error)

	// PurgeOlderThan hard-deletes entries created before cutoff, returning the count removed
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
