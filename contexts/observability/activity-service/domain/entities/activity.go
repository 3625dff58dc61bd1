// Package entities holds the observability records: user activity,
// asset-scoped activity, login sessions and the append-only audit
// trail.
package entities

import "time"

// ActivityLog is a general user-activity record.
type ActivityLog struct {
	ID           int64
	UserID       int64
	ActivityType string
	Action       string
	ResourceType string
	ResourceID   int64
	ResourceName string
	Details      map[string]any
	IPAddress    string
	UserAgent    string
	SessionID    string
	CreatedAt    time.Time
}

// AssetActivityLog is an asset-scoped record carrying before/after
// snapshots of the mutated fields.
type AssetActivityLog struct {
	ID           int64
	AssetID      int64
	UserID       int64
	ActivityType string
	Action       string
	OldValues    map[string]any
	NewValues    map[string]any
	Details      map[string]any
	CreatedAt    time.Time
}

// SessionRecord mirrors a login session. The identity context writes
// these rows; this context only reads them.
type SessionRecord struct {
	ID           int64
	UserID       int64
	SessionID    string
	LoginTime    time.Time
	LogoutTime   *time.Time
	IPAddress    string
	UserAgent    string
	IsActive     bool
	LastActivity time.Time
}

// AuditEntry is an append-only audit row.
type AuditEntry struct {
	ID         int64
	UserID     int64
	Action     string
	Resource   string
	ResourceID int64
	Details    map[string]any
	IPAddress  string
	UserAgent  string
	Timestamp  time.Time
}
