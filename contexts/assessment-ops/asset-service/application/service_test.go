package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"vulntrack/contexts/assessment-ops/asset-service/adapters/memory"
	domainerrors "vulntrack/contexts/assessment-ops/asset-service/domain/errors"
	"vulntrack/contexts/assessment-ops/asset-service/ports"
	"vulntrack/internal/shared/audit"
	"vulntrack/internal/shared/roles"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var (
	adminActor  = Actor{ID: 1, Role: roles.Admin, FirstName: "Ada", LastName: "Admin"}
	leaderActor = Actor{ID: 2, Role: roles.TeamLeader, FirstName: "Lee", LastName: "Leader"}
	testerActor = Actor{ID: 3, Role: roles.Tester, FirstName: "Tess", LastName: "Tester"}
	clientActor = Actor{ID: 4, Role: roles.ClientAdmin, FirstName: "Cleo", LastName: "Client"}
	memberActor = Actor{ID: 5, Role: roles.ClientUser, FirstName: "Mia", LastName: "Member"}
)

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	for _, actor := range []Actor{adminActor, leaderActor, testerActor, clientActor, memberActor} {
		store.SeedUser(ports.UserRef{
			ID:        actor.ID,
			Username:  actor.FirstName,
			FirstName: actor.FirstName,
			LastName:  actor.LastName,
			Role:      actor.Role,
			IsActive:  true,
		})
	}
	service := Service{
		Repo:  store,
		Users: store,
		Clock: fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	return service, store
}

func validInput() CreateAssetInput {
	return CreateAssetInput{
		ProjectName:   "Acme Portal",
		AssetName:     "portal.acme.example",
		AssetType:     "web-app",
		Environment:   "prod",
		ScanFrequency: "monthly",
		PlanTier:      "basic",
	}
}

func TestCreateAssetClientAdminBecomesOwner(t *testing.T) {
	service, _ := newTestService(t)

	detail, err := service.CreateAsset(context.Background(), clientActor, validInput(), RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if detail.Asset.ProjectOwnerID == nil || *detail.Asset.ProjectOwnerID != clientActor.ID {
		t.Fatalf("expected client-admin as owner, got %+v", detail.Asset.ProjectOwnerID)
	}
	if detail.Owner == nil || detail.Owner.ID != clientActor.ID {
		t.Fatalf("expected owner ref attached, got %+v", detail.Owner)
	}

	if _, err := service.CreateAsset(context.Background(), testerActor, validInput(), RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for tester, got %v", err)
	}

	bad := validInput()
	bad.AssetType = "mainframe"
	if _, err := service.CreateAsset(context.Background(), adminActor, bad, RequestMeta{}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad type, got %v", err)
	}
}

func TestListAssetsVisibility(t *testing.T) {
	service, _ := newTestService(t)

	if _, err := service.CreateAsset(context.Background(), adminActor, validInput(), RequestMeta{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	other := validInput()
	other.ProjectName = "Client Project"
	if _, err := service.CreateAsset(context.Background(), clientActor, other, RequestMeta{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := service.ListAssets(context.Background(), adminActor)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected admin to see 2 assets, got %d", len(all))
	}

	mine, err := service.ListAssets(context.Background(), clientActor)
	if err != nil {
		t.Fatalf("client list: %v", err)
	}
	if len(mine) != 1 || mine[0].Asset.ProjectName != "Client Project" {
		t.Fatalf("expected client-admin to see only own asset, got %+v", mine)
	}

	if _, err := service.ListAssets(context.Background(), testerActor); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestTeamLeaderAssignmentTrack(t *testing.T) {
	service, _ := newTestService(t)

	detail, err := service.CreateAsset(context.Background(), adminActor, validInput(), RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assetID := detail.Asset.ID

	if err := service.AssignTeamLeader(context.Background(), leaderActor, assetID, leaderActor.ID, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for non-admin, got %v", err)
	}
	if err := service.AssignTeamLeader(context.Background(), adminActor, assetID, 404, RequestMeta{}); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := service.AssignTeamLeader(context.Background(), adminActor, assetID, leaderActor.ID, RequestMeta{}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	tasks, err := service.MyTasks(context.Background(), leaderActor)
	if err != nil {
		t.Fatalf("my tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Asset.ID != assetID {
		t.Fatalf("expected assigned asset in tasks, got %+v", tasks)
	}
	if tasks[0].AssignedBy == nil || tasks[0].AssignedBy.ID != adminActor.ID {
		t.Fatalf("expected assigner recorded, got %+v", tasks[0].AssignedBy)
	}

	if err := service.UnassignTeamLeader(context.Background(), adminActor, assetID, RequestMeta{}); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	tasks, err = service.MyTasks(context.Background(), leaderActor)
	if err != nil {
		t.Fatalf("my tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks after unassign, got %+v", tasks)
	}
}

func TestTesterAssignmentTrack(t *testing.T) {
	service, _ := newTestService(t)

	detail, err := service.CreateAsset(context.Background(), adminActor, validInput(), RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assetID := detail.Asset.ID

	if err := service.AssignTester(context.Background(), adminActor, assetID, testerActor.ID, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for admin on tester track, got %v", err)
	}
	if err := service.AssignTester(context.Background(), leaderActor, assetID, testerActor.ID, RequestMeta{}); err != nil {
		t.Fatalf("assign tester: %v", err)
	}

	tasks, err := service.MyAssignedTasks(context.Background(), testerActor)
	if err != nil {
		t.Fatalf("assigned tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Asset.ID != assetID {
		t.Fatalf("expected asset on tester track, got %+v", tasks)
	}
	if tasks[0].TesterAssigner == nil || tasks[0].TesterAssigner.ID != leaderActor.ID {
		t.Fatalf("expected tester assigner recorded, got %+v", tasks[0].TesterAssigner)
	}

	if err := service.UnassignTester(context.Background(), leaderActor, assetID, RequestMeta{}); err != nil {
		t.Fatalf("unassign tester: %v", err)
	}
	tasks, err = service.MyAssignedTasks(context.Background(), testerActor)
	if err != nil {
		t.Fatalf("assigned tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty tester track, got %+v", tasks)
	}
}

func TestClientGrantLifecycle(t *testing.T) {
	service, _ := newTestService(t)

	detail, err := service.CreateAsset(context.Background(), clientActor, validInput(), RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assetID := detail.Asset.ID

	if err := service.GrantClientAccess(context.Background(), clientActor, assetID, memberActor.ID, RequestMeta{}); err != nil {
		t.Fatalf("grant: %v", err)
	}
	// Granting twice stays a single active grant.
	if err := service.GrantClientAccess(context.Background(), clientActor, assetID, memberActor.ID, RequestMeta{}); err != nil {
		t.Fatalf("regrant: %v", err)
	}

	grants, err := service.ClientGrants(context.Background(), clientActor, assetID)
	if err != nil {
		t.Fatalf("grants: %v", err)
	}
	if len(grants) != 1 || grants[0].Member.ID != memberActor.ID {
		t.Fatalf("expected single active grant, got %+v", grants)
	}

	visible, err := service.MyGrantedAssets(context.Background(), memberActor)
	if err != nil {
		t.Fatalf("granted assets: %v", err)
	}
	if len(visible) != 1 || visible[0].Detail.Asset.ID != assetID {
		t.Fatalf("expected member to see granted asset, got %+v", visible)
	}

	if err := service.RevokeClientAccess(context.Background(), clientActor, assetID, memberActor.ID, RequestMeta{}); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	visible, err = service.MyGrantedAssets(context.Background(), memberActor)
	if err != nil {
		t.Fatalf("granted assets: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("expected revoked grant to hide asset, got %+v", visible)
	}

	if err := service.GrantClientAccess(context.Background(), adminActor, assetID, memberActor.ID, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for admin grant, got %v", err)
	}
}

func TestUpdateAssetAccessGate(t *testing.T) {
	service, _ := newTestService(t)

	detail, err := service.CreateAsset(context.Background(), clientActor, validInput(), RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assetID := detail.Asset.ID

	name := "portal-v2.acme.example"
	updated, err := service.UpdateAsset(context.Background(), clientActor, assetID, ports.AssetPatch{AssetName: &name}, RequestMeta{})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Asset.AssetName != name {
		t.Fatalf("expected name updated, got %q", updated.Asset.AssetName)
	}

	if _, err := service.UpdateAsset(context.Background(), leaderActor, assetID, ports.AssetPatch{AssetName: &name}, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	badTier := "platinum"
	if _, err := service.UpdateAsset(context.Background(), clientActor, assetID, ports.AssetPatch{PlanTier: &badTier}, RequestMeta{}); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestDeleteAssetCascades(t *testing.T) {
	service, store := newTestService(t)

	detail, err := service.CreateAsset(context.Background(), adminActor, validInput(), RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assetID := detail.Asset.ID
	if err := service.AssignTeamLeader(context.Background(), adminActor, assetID, leaderActor.ID, RequestMeta{}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := service.DeleteAsset(context.Background(), adminActor, assetID, RequestMeta{}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetAsset(context.Background(), assetID); !errors.Is(err, domainerrors.ErrAssetNotFound) {
		t.Fatalf("expected asset gone, got %v", err)
	}
}

type captureRecorder struct {
	events []audit.Event
}

func (r *captureRecorder) Activity(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}
func (r *captureRecorder) AssetActivity(context.Context, audit.AssetEvent) {}
func (r *captureRecorder) Audit(context.Context, audit.TrailEntry)        {}

func TestClientGrantLifecycleRecordsActivity(t *testing.T) {
	service, _ := newTestService(t)
	recorder := &captureRecorder{}
	service.Recorder = recorder
	ctx := context.Background()

	detail, err := service.CreateAsset(ctx, clientActor, validInput(), RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	meta := RequestMeta{IPAddress: "10.0.0.9", UserAgent: "cli"}
	if err := service.GrantClientAccess(ctx, clientActor, detail.Asset.ID, memberActor.ID, meta); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := service.RevokeClientAccess(ctx, clientActor, detail.Asset.ID, memberActor.ID, meta); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	var grantEvents []audit.Event
	for _, event := range recorder.events {
		if event.ResourceType == "client-grant" {
			grantEvents = append(grantEvents, event)
		}
	}
	if len(grantEvents) != 2 {
		t.Fatalf("expected grant and revoke events, got %d", len(grantEvents))
	}
	if grantEvents[0].Action != audit.ActionAssign || grantEvents[1].Action != audit.ActionUnassign {
		t.Fatalf("unexpected actions %q, %q", grantEvents[0].Action, grantEvents[1].Action)
	}
	for _, event := range grantEvents {
		if event.IPAddress != "10.0.0.9" {
			t.Fatalf("event should carry the request origin, got %q", event.IPAddress)
		}
	}
}
