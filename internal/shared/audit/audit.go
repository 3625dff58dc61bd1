// Package audit defines the single recording contract shared by every
// context. Recording is best-effort: implementations swallow storage
// failures and log them locally, so callers on the primary write path
// never branch on a recording error.
package audit

import (
	"context"
	"time"
)

// Common activity types.
const (
	TypeAuth             = "auth"
	TypeUserManagement   = "user_management"
	TypeAssetManagement  = "asset_management"
	TypeReportManagement = "report_management"
	TypeSystem           = "system"
	TypeSession          = "session"
)

// Common actions.
const (
	ActionLogin    = "login"
	ActionLogout   = "logout"
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionView     = "view"
	ActionAssign   = "assign"
	ActionUnassign = "unassign"
)

// Event is a general user-activity record.
type Event struct {
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
}

// AssetEvent is an asset-scoped activity record carrying before/after
// snapshots of the mutated fields.
type AssetEvent struct {
	AssetID      int64
	UserID       int64
	ActivityType string
	Action       string
	OldValues    map[string]any
	NewValues    map[string]any
	Details      map[string]any
}

// TrailEntry is an append-only audit row.
type TrailEntry struct {
	UserID     int64
	Action     string
	Resource   string
	ResourceID int64
	Details    map[string]any
	IPAddress  string
	UserAgent  string
	Timestamp  time.Time
}

// Recorder accepts records fire-and-forget. No method returns an
// error: a dropped record must never fail the caller's operation.
type Recorder interface {
	Activity(ctx context.Context, event Event)
	AssetActivity(ctx context.Context, event AssetEvent)
	Audit(ctx context.Context, entry TrailEntry)
}

// Discard is a Recorder that drops everything. Useful in tests and as
// a nil-safe default.
type Discard struct{}

func (Discard) Activity(context.Context, Event)           {}
func (Discard) AssetActivity(context.Context, AssetEvent) {}
func (Discard) Audit(context.Context, TrailEntry)         {}

// Resolve returns recorder, or Discard when recorder is nil.
func Resolve(recorder Recorder) Recorder {
	if recorder == nil {
		return Discard{}
	}
	return recorder
}
