package application

import (
	"context"
	"log/slog"
	"time"

	"vulntrack/contexts/observability/activity-service/domain/entities"
	domainerrors "vulntrack/contexts/observability/activity-service/domain/errors"
	"vulntrack/contexts/observability/activity-service/ports"
	"vulntrack/internal/shared/audit"
	"vulntrack/internal/shared/roles"
)

// adminLevel is the minimum hierarchy level allowed to read the logs.
const adminLevel = 5

// Recorder persists audit records emitted by the other contexts. It
// implements the shared fire-and-forget contract: storage failures are
// logged and swallowed so the primary write path never fails on a
// dropped record.
type Recorder struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (r Recorder) Activity(ctx context.Context, event audit.Event) {
	log := entities.ActivityLog{
		UserID:       event.UserID,
		ActivityType: event.ActivityType,
		Action:       event.Action,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		ResourceName: event.ResourceName,
		Details:      event.Details,
		IPAddress:    event.IPAddress,
		UserAgent:    event.UserAgent,
		SessionID:    event.SessionID,
		CreatedAt:    r.now(),
	}
	if err := r.Repo.InsertActivity(ctx, log); err != nil {
		r.logger().Warn("activity record dropped",
			"event", "activity_record_dropped",
			"module", "activity-service",
			"activity_type", event.ActivityType,
			"action", event.Action,
			"error", err)
	}
}

func (r Recorder) AssetActivity(ctx context.Context, event audit.AssetEvent) {
	log := entities.AssetActivityLog{
		AssetID:      event.AssetID,
		UserID:       event.UserID,
		ActivityType: event.ActivityType,
		Action:       event.Action,
		OldValues:    event.OldValues,
		NewValues:    event.NewValues,
		Details:      event.Details,
		CreatedAt:    r.now(),
	}
	if err := r.Repo.InsertAssetActivity(ctx, log); err != nil {
		r.logger().Warn("asset activity record dropped",
			"event", "asset_activity_record_dropped",
			"module", "activity-service",
			"asset_id", event.AssetID,
			"action", event.Action,
			"error", err)
	}
}

func (r Recorder) Audit(ctx context.Context, entry audit.TrailEntry) {
	timestamp := entry.Timestamp
	if timestamp.IsZero() {
		timestamp = r.now()
	}
	row := entities.AuditEntry{
		UserID:     entry.UserID,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Details:    entry.Details,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		Timestamp:  timestamp,
	}
	if err := r.Repo.InsertAuditEntry(ctx, row); err != nil {
		r.logger().Warn("audit entry dropped",
			"event", "audit_entry_dropped",
			"module", "activity-service",
			"resource", entry.Resource,
			"action", entry.Action,
			"error", err)
	}
}

func (r Recorder) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}

func (r Recorder) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Viewer is the authenticated caller of a log query.
type Viewer struct {
	UserID int64
	Role   roles.Role
}

// Service answers visibility-filtered log queries. Admin level is
// required for every query; superadmins see everything, admins see
// their subordinates (or only themselves when they have none).
type Service struct {
	Repo         ports.Repository
	Users        ports.UserDirectory
	Subordinates ports.SubordinateResolver
	Clock        ports.Clock
	Logger       *slog.Logger
}

// Summary is the aggregated activity overview.
type Summary struct {
	ActivityCounts   map[string]int
	ActiveSessions   int
	RecentActivities []ports.ActivityDetail
	RangeStart       time.Time
	RangeEnd         time.Time
}

const defaultLimit = 50

// ActivityLogs returns activity records visible to the viewer, newest
// first.
func (s Service) ActivityLogs(ctx context.Context, viewer Viewer, filter ports.ActivityFilter) ([]ports.ActivityDetail, error) {
	visible, err := s.visibleUserIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	filter.Limit = normalizeLimit(filter.Limit)
	return s.Repo.ListActivities(ctx, visible, filter)
}

// UserSessions returns login sessions visible to the viewer, newest
// first.
func (s Service) UserSessions(ctx context.Context, viewer Viewer, filter ports.SessionFilter) ([]ports.SessionDetail, error) {
	visible, err := s.visibleUserIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	filter.Limit = normalizeLimit(filter.Limit)
	return s.Repo.ListSessions(ctx, visible, filter)
}

// AssetActivityLogs returns asset-scoped records visible to the
// viewer, newest first.
func (s Service) AssetActivityLogs(ctx context.Context, viewer Viewer, filter ports.AssetActivityFilter) ([]ports.AssetActivityDetail, error) {
	visible, err := s.visibleUserIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	filter.Limit = normalizeLimit(filter.Limit)
	return s.Repo.ListAssetActivities(ctx, visible, filter)
}

// AuditTrail returns audit entries visible to the viewer, newest
// first.
func (s Service) AuditTrail(ctx context.Context, viewer Viewer, filter ports.AuditFilter) ([]ports.AuditDetail, error) {
	visible, err := s.visibleUserIDs(ctx, viewer)
	if err != nil {
		return nil, err
	}
	filter.Limit = normalizeLimit(filter.Limit)
	return s.Repo.ListAuditEntries(ctx, visible, filter)
}

// ActivitySummary aggregates the viewer's visible activity over the
// requested range, defaulting to the trailing 24 hours.
func (s Service) ActivitySummary(ctx context.Context, viewer Viewer, start, end *time.Time) (Summary, error) {
	visible, err := s.visibleUserIDs(ctx, viewer)
	if err != nil {
		return Summary{}, err
	}

	rangeEnd := s.now()
	if end != nil {
		rangeEnd = *end
	}
	rangeStart := rangeEnd.Add(-24 * time.Hour)
	if start != nil {
		rangeStart = *start
	}

	counts, err := s.Repo.CountActivitiesByType(ctx, visible, rangeStart, rangeEnd)
	if err != nil {
		return Summary{}, err
	}
	activeSessions, err := s.Repo.CountActiveSessions(ctx, visible)
	if err != nil {
		return Summary{}, err
	}
	recent, err := s.Repo.ListActivities(ctx, visible, ports.ActivityFilter{
		StartDate: &rangeStart,
		EndDate:   &rangeEnd,
		Limit:     10,
	})
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		ActivityCounts:   counts,
		ActiveSessions:   activeSessions,
		RecentActivities: recent,
		RangeStart:       rangeStart,
		RangeEnd:         rangeEnd,
	}, nil
}

// visibleUserIDs resolves the viewer's visibility set: nil for
// superadmins, the subordinate set for admins, and the viewer alone
// when there are no subordinates.
func (s Service) visibleUserIDs(ctx context.Context, viewer Viewer) ([]int64, error) {
	if roles.HierarchyLevel(viewer.Role) < adminLevel {
		return nil, domainerrors.ErrNotAuthorized
	}
	if viewer.Role == roles.SuperAdmin {
		return nil, nil
	}
	subordinates, err := s.Subordinates.SubordinateIDs(ctx, viewer.UserID)
	if err != nil {
		return nil, err
	}
	if len(subordinates) == 0 {
		return []int64{viewer.UserID}, nil
	}
	return subordinates, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return limit
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
