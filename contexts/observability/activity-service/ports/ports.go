package ports

import (
	"context"
	"time"

	"vulntrack/contexts/observability/activity-service/domain/entities"
	"vulntrack/internal/shared/roles"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// UserRef is the slim account projection attached to log entries.
type UserRef struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      roles.Role
}

// AssetRef is the slim asset projection attached to asset logs.
type AssetRef struct {
	ID          int64
	ProjectName string
	AssetName   string
}

// UserDirectory resolves account references. Read-only.
type UserDirectory interface {
	UserRefs(ctx context.Context, userIDs []int64) (map[int64]UserRef, error)
}

// SubordinateResolver reports the users below a given user in the
// delegation graph: everyone they created plus everyone assigned to
// them.
type SubordinateResolver interface {
	SubordinateIDs(ctx context.Context, userID int64) ([]int64, error)
}

// ActivityFilter narrows an activity query. Nil and zero values mean
// no restriction.
type ActivityFilter struct {
	StartDate    *time.Time
	EndDate      *time.Time
	UserID       *int64
	ActivityType string
	Limit        int
	Offset       int
}

// SessionFilter narrows a session query.
type SessionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	UserID    *int64
	IsActive  *bool
	Limit     int
	Offset    int
}

// AssetActivityFilter narrows an asset-activity query.
type AssetActivityFilter struct {
	AssetID      *int64
	StartDate    *time.Time
	EndDate      *time.Time
	UserID       *int64
	ActivityType string
	Limit        int
	Offset       int
}

// AuditFilter narrows an audit-trail query.
type AuditFilter struct {
	Resource string
	Action   string
	Limit    int
	Offset   int
}

// ActivityDetail joins a log with its user reference.
type ActivityDetail struct {
	Log  entities.ActivityLog
	User *UserRef
}

// SessionDetail joins a session with its user reference.
type SessionDetail struct {
	Session entities.SessionRecord
	User    *UserRef
}

// AssetActivityDetail joins an asset log with its user and asset
// references.
type AssetActivityDetail struct {
	Log   entities.AssetActivityLog
	User  *UserRef
	Asset *AssetRef
}

// AuditDetail joins an audit entry with its user reference.
type AuditDetail struct {
	Entry entities.AuditEntry
	User  *UserRef
}

// Repository is the activity context's persistence boundary. Queries
// take a visibility set: nil means unrestricted, otherwise results are
// limited to the given user IDs.
type Repository interface {
	InsertActivity(ctx context.Context, log entities.ActivityLog) error
	InsertAssetActivity(ctx context.Context, log entities.AssetActivityLog) error
	InsertAuditEntry(ctx context.Context, entry entities.AuditEntry) error

	ListActivities(ctx context.Context, visible []int64, filter ActivityFilter) ([]ActivityDetail, error)
	ListSessions(ctx context.Context, visible []int64, filter SessionFilter) ([]SessionDetail, error)
	ListAssetActivities(ctx context.Context, visible []int64, filter AssetActivityFilter) ([]AssetActivityDetail, error)
	ListAuditEntries(ctx context.Context, visible []int64, filter AuditFilter) ([]AuditDetail, error)

	CountActivitiesByType(ctx context.Context, visible []int64, start, end time.Time) (map[string]int, error)
	CountActiveSessions(ctx context.Context, visible []int64) (int, error)
}
