package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"vulntrack/contexts/observability/activity-service/adapters/memory"
	"vulntrack/contexts/observability/activity-service/domain/entities"
	domainerrors "vulntrack/contexts/observability/activity-service/domain/errors"
	"vulntrack/contexts/observability/activity-service/ports"
	"vulntrack/internal/shared/audit"
	"vulntrack/internal/shared/roles"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

var (
	superViewer  = Viewer{UserID: 1, Role: roles.SuperAdmin}
	adminViewer  = Viewer{UserID: 2, Role: roles.Admin}
	leaderViewer = Viewer{UserID: 3, Role: roles.TeamLeader}
)

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.SeedUser(ports.UserRef{ID: 1, Username: "root", FirstName: "Sue", LastName: "Super", Role: roles.SuperAdmin})
	store.SeedUser(ports.UserRef{ID: 2, Username: "admin", FirstName: "Ada", LastName: "Admin", Role: roles.Admin})
	store.SeedUser(ports.UserRef{ID: 3, Username: "leader", FirstName: "Lee", LastName: "Leader", Role: roles.TeamLeader})
	store.SeedUser(ports.UserRef{ID: 4, Username: "tester", FirstName: "Tess", LastName: "Tester", Role: roles.Tester})
	service := Service{
		Repo:         store,
		Users:        store,
		Subordinates: store,
		Clock:        fixedClock{now: testNow},
	}
	return service, store
}

func seedActivity(store *memory.Store, userID int64, activityType, action string, at time.Time) {
	store.InsertActivity(context.Background(), entities.ActivityLog{
		UserID:       userID,
		ActivityType: activityType,
		Action:       action,
		CreatedAt:    at,
	})
}

func TestRecorderPersistsRecords(t *testing.T) {
	ctx := context.Background()
	_, store := newTestService(t)
	recorder := Recorder{Repo: store, Clock: fixedClock{now: testNow}}

	recorder.Activity(ctx, audit.Event{
		UserID:       4,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionCreate,
		ResourceType: "asset",
		ResourceID:   10,
	})
	recorder.AssetActivity(ctx, audit.AssetEvent{
		AssetID:      10,
		UserID:       4,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionUpdate,
		NewValues:    map[string]any{"status": "active"},
	})
	recorder.Audit(ctx, audit.TrailEntry{
		UserID:   4,
		Action:   audit.ActionView,
		Resource: "report",
	})

	logs, err := store.ListActivities(ctx, nil, ports.ActivityFilter{})
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d activity logs, want 1", len(logs))
	}
	if logs[0].Log.Action != audit.ActionCreate {
		t.Fatalf("action = %q, want %q", logs[0].Log.Action, audit.ActionCreate)
	}
	if !logs[0].Log.CreatedAt.Equal(testNow) {
		t.Fatalf("created at = %v, want %v", logs[0].Log.CreatedAt, testNow)
	}

	assetLogs, err := store.ListAssetActivities(ctx, nil, ports.AssetActivityFilter{})
	if err != nil {
		t.Fatalf("ListAssetActivities: %v", err)
	}
	if len(assetLogs) != 1 || assetLogs[0].Log.AssetID != 10 {
		t.Fatalf("asset logs = %+v, want one entry for asset 10", assetLogs)
	}

	trail, err := store.ListAuditEntries(ctx, nil, ports.AuditFilter{})
	if err != nil {
		t.Fatalf("ListAuditEntries: %v", err)
	}
	if len(trail) != 1 {
		t.Fatalf("got %d audit entries, want 1", len(trail))
	}
	if !trail[0].Entry.Timestamp.Equal(testNow) {
		t.Fatalf("zero timestamp should default to clock time, got %v", trail[0].Entry.Timestamp)
	}
}

type failingRepo struct {
	ports.Repository
}

func (failingRepo) InsertActivity(context.Context, entities.ActivityLog) error {
	return errors.New("storage down")
}

func (failingRepo) InsertAssetActivity(context.Context, entities.AssetActivityLog) error {
	return errors.New("storage down")
}

func (failingRepo) InsertAuditEntry(context.Context, entities.AuditEntry) error {
	return errors.New("storage down")
}

func TestRecorderSwallowsStorageFailures(t *testing.T) {
	ctx := context.Background()
	recorder := Recorder{Repo: failingRepo{}, Clock: fixedClock{now: testNow}}

	// Must not panic or surface the failure to the caller.
	recorder.Activity(ctx, audit.Event{UserID: 4, ActivityType: audit.TypeAuth, Action: audit.ActionLogin})
	recorder.AssetActivity(ctx, audit.AssetEvent{AssetID: 10, UserID: 4, Action: audit.ActionUpdate})
	recorder.Audit(ctx, audit.TrailEntry{UserID: 4, Action: audit.ActionView, Resource: "report"})
}

func TestActivityLogsRequiresAdminLevel(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t)

	if _, err := service.ActivityLogs(ctx, leaderViewer, ports.ActivityFilter{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("team leader query error = %v, want ErrNotAuthorized", err)
	}
	if _, err := service.ActivityLogs(ctx, Viewer{UserID: 4, Role: roles.Tester}, ports.ActivityFilter{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("tester query error = %v, want ErrNotAuthorized", err)
	}
}

func TestActivityLogsVisibility(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)

	seedActivity(store, 1, audit.TypeSystem, audit.ActionUpdate, testNow.Add(-3*time.Hour))
	seedActivity(store, 3, audit.TypeAssetManagement, audit.ActionCreate, testNow.Add(-2*time.Hour))
	seedActivity(store, 4, audit.TypeReportManagement, audit.ActionCreate, testNow.Add(-1*time.Hour))

	all, err := service.ActivityLogs(ctx, superViewer, ports.ActivityFilter{})
	if err != nil {
		t.Fatalf("superadmin query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("superadmin sees %d logs, want 3", len(all))
	}
	if all[0].Log.UserID != 4 {
		t.Fatalf("newest log first: got user %d, want 4", all[0].Log.UserID)
	}
	if all[0].User == nil || all[0].User.Username != "tester" {
		t.Fatalf("user ref not attached: %+v", all[0].User)
	}

	// Admin with subordinates sees only them.
	store.SeedSubordinates(2, []int64{3, 4})
	scoped, err := service.ActivityLogs(ctx, adminViewer, ports.ActivityFilter{})
	if err != nil {
		t.Fatalf("admin query: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("admin sees %d logs, want 2", len(scoped))
	}
	for _, detail := range scoped {
		if detail.Log.UserID == 1 {
			t.Fatal("admin must not see superadmin activity")
		}
	}

	// Admin without subordinates falls back to own records only.
	store.SeedSubordinates(2, nil)
	seedActivity(store, 2, audit.TypeAuth, audit.ActionLogin, testNow)
	own, err := service.ActivityLogs(ctx, adminViewer, ports.ActivityFilter{})
	if err != nil {
		t.Fatalf("admin self query: %v", err)
	}
	if len(own) != 1 || own[0].Log.UserID != 2 {
		t.Fatalf("admin without subordinates got %+v, want only own log", own)
	}
}

func TestActivityLogsFilters(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)

	seedActivity(store, 3, audit.TypeAssetManagement, audit.ActionCreate, testNow.Add(-48*time.Hour))
	seedActivity(store, 3, audit.TypeAssetManagement, audit.ActionUpdate, testNow.Add(-2*time.Hour))
	seedActivity(store, 4, audit.TypeReportManagement, audit.ActionCreate, testNow.Add(-1*time.Hour))

	byType, err := service.ActivityLogs(ctx, superViewer, ports.ActivityFilter{ActivityType: audit.TypeReportManagement})
	if err != nil {
		t.Fatalf("type filter: %v", err)
	}
	if len(byType) != 1 || byType[0].Log.UserID != 4 {
		t.Fatalf("type filter got %+v, want the report log", byType)
	}

	userID := int64(3)
	start := testNow.Add(-24 * time.Hour)
	byUser, err := service.ActivityLogs(ctx, superViewer, ports.ActivityFilter{UserID: &userID, StartDate: &start})
	if err != nil {
		t.Fatalf("user filter: %v", err)
	}
	if len(byUser) != 1 || byUser[0].Log.Action != audit.ActionUpdate {
		t.Fatalf("user+date filter got %+v, want the recent update", byUser)
	}
}

func TestActivityLogsDefaultLimit(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)

	for i := range 60 {
		seedActivity(store, 3, audit.TypeAssetManagement, audit.ActionUpdate, testNow.Add(-time.Duration(i)*time.Minute))
	}

	logs, err := service.ActivityLogs(ctx, superViewer, ports.ActivityFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(logs) != 50 {
		t.Fatalf("got %d logs, want the default page of 50", len(logs))
	}

	page2, err := service.ActivityLogs(ctx, superViewer, ports.ActivityFilter{Limit: 50, Offset: 50})
	if err != nil {
		t.Fatalf("offset query: %v", err)
	}
	if len(page2) != 10 {
		t.Fatalf("got %d logs on second page, want 10", len(page2))
	}
}

func TestUserSessionsActiveFilter(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)

	store.SeedSession(entities.SessionRecord{UserID: 3, SessionID: "s-1", LoginTime: testNow.Add(-2 * time.Hour), IsActive: true, LastActivity: testNow})
	logout := testNow.Add(-30 * time.Minute)
	store.SeedSession(entities.SessionRecord{UserID: 4, SessionID: "s-2", LoginTime: testNow.Add(-1 * time.Hour), LogoutTime: &logout, IsActive: false, LastActivity: logout})

	active := true
	sessions, err := service.UserSessions(ctx, superViewer, ports.SessionFilter{IsActive: &active})
	if err != nil {
		t.Fatalf("session query: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Session.SessionID != "s-1" {
		t.Fatalf("active filter got %+v, want only s-1", sessions)
	}

	all, err := service.UserSessions(ctx, superViewer, ports.SessionFilter{})
	if err != nil {
		t.Fatalf("session query: %v", err)
	}
	if len(all) != 2 || all[0].Session.SessionID != "s-2" {
		t.Fatalf("sessions not newest first: %+v", all)
	}
}

func TestAssetActivityLogsAssetFilter(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)
	store.SeedAsset(ports.AssetRef{ID: 10, ProjectName: "web-app", AssetName: "storefront"})

	store.InsertAssetActivity(ctx, entities.AssetActivityLog{AssetID: 10, UserID: 3, ActivityType: audit.TypeAssetManagement, Action: audit.ActionUpdate, CreatedAt: testNow.Add(-time.Hour)})
	store.InsertAssetActivity(ctx, entities.AssetActivityLog{AssetID: 11, UserID: 3, ActivityType: audit.TypeAssetManagement, Action: audit.ActionDelete, CreatedAt: testNow})

	assetID := int64(10)
	logs, err := service.AssetActivityLogs(ctx, superViewer, ports.AssetActivityFilter{AssetID: &assetID})
	if err != nil {
		t.Fatalf("asset query: %v", err)
	}
	if len(logs) != 1 || logs[0].Log.AssetID != 10 {
		t.Fatalf("asset filter got %+v, want only asset 10", logs)
	}
	if logs[0].Asset == nil || logs[0].Asset.AssetName != "storefront" {
		t.Fatalf("asset ref not attached: %+v", logs[0].Asset)
	}
}

func TestAuditTrailResourceFilter(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)

	store.InsertAuditEntry(ctx, entities.AuditEntry{UserID: 2, Action: audit.ActionView, Resource: "report", Timestamp: testNow.Add(-time.Hour)})
	store.InsertAuditEntry(ctx, entities.AuditEntry{UserID: 2, Action: audit.ActionDelete, Resource: "asset", Timestamp: testNow})

	entries, err := service.AuditTrail(ctx, superViewer, ports.AuditFilter{Resource: "report"})
	if err != nil {
		t.Fatalf("audit query: %v", err)
	}
	if len(entries) != 1 || entries[0].Entry.Action != audit.ActionView {
		t.Fatalf("resource filter got %+v, want the report view entry", entries)
	}

	if _, err := service.AuditTrail(ctx, leaderViewer, ports.AuditFilter{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("team leader audit query error = %v, want ErrNotAuthorized", err)
	}
}

func TestActivitySummary(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)

	seedActivity(store, 3, audit.TypeAssetManagement, audit.ActionCreate, testNow.Add(-2*time.Hour))
	seedActivity(store, 3, audit.TypeAssetManagement, audit.ActionUpdate, testNow.Add(-1*time.Hour))
	seedActivity(store, 4, audit.TypeReportManagement, audit.ActionCreate, testNow.Add(-30*time.Minute))
	// Outside the default 24h window.
	seedActivity(store, 4, audit.TypeAuth, audit.ActionLogin, testNow.Add(-48*time.Hour))

	store.SeedSession(entities.SessionRecord{UserID: 3, SessionID: "s-1", LoginTime: testNow.Add(-time.Hour), IsActive: true, LastActivity: testNow})
	store.SeedSession(entities.SessionRecord{UserID: 4, SessionID: "s-2", LoginTime: testNow.Add(-time.Hour), IsActive: false, LastActivity: testNow})

	summary, err := service.ActivitySummary(ctx, superViewer, nil, nil)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got := summary.ActivityCounts[audit.TypeAssetManagement]; got != 2 {
		t.Fatalf("asset management count = %d, want 2", got)
	}
	if got := summary.ActivityCounts[audit.TypeAuth]; got != 0 {
		t.Fatalf("stale auth activity counted: %d", got)
	}
	if summary.ActiveSessions != 1 {
		t.Fatalf("active sessions = %d, want 1", summary.ActiveSessions)
	}
	if len(summary.RecentActivities) != 3 {
		t.Fatalf("recent activities = %d, want 3", len(summary.RecentActivities))
	}
	if !summary.RangeEnd.Equal(testNow) || !summary.RangeStart.Equal(testNow.Add(-24*time.Hour)) {
		t.Fatalf("default range = [%v, %v], want trailing 24h", summary.RangeStart, summary.RangeEnd)
	}

	start := testNow.Add(-90 * time.Minute)
	scoped, err := service.ActivitySummary(ctx, superViewer, &start, nil)
	if err != nil {
		t.Fatalf("scoped summary: %v", err)
	}
	if got := scoped.ActivityCounts[audit.TypeAssetManagement]; got != 1 {
		t.Fatalf("scoped asset management count = %d, want 1", got)
	}
}
