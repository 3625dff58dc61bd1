package unit

import (
	"context"
	"errors"
	"testing"

	assetservice "vulntrack/contexts/assessment-ops/asset-service"
	"vulntrack/contexts/assessment-ops/asset-service/application"
	domainerrors "vulntrack/contexts/assessment-ops/asset-service/domain/errors"
	"vulntrack/contexts/assessment-ops/asset-service/ports"
	httptransport "vulntrack/contexts/assessment-ops/asset-service/transport/http"
	"vulntrack/internal/shared/audit"
	"vulntrack/internal/shared/roles"
)

var (
	assetAdmin  = application.Actor{ID: 1, Role: roles.Admin, FirstName: "Ada", LastName: "Admin"}
	assetLeader = application.Actor{ID: 2, Role: roles.TeamLeader, FirstName: "Lena", LastName: "Leader"}
	assetTester = application.Actor{ID: 3, Role: roles.Tester, FirstName: "Tom", LastName: "Tester"}
	assetClient = application.Actor{ID: 4, Role: roles.ClientAdmin, FirstName: "Cara", LastName: "Client"}
	assetMember = application.Actor{ID: 5, Role: roles.ClientUser, FirstName: "Mia", LastName: "Member"}
)

func newAssetModule() assetservice.Module {
	module := assetservice.NewInMemoryModule(audit.Discard{}, discardLogger())
	for _, actor := range []application.Actor{assetAdmin, assetLeader, assetTester, assetClient, assetMember} {
		module.Store.SeedUser(ports.UserRef{
			ID:        actor.ID,
			Username:  actor.FirstName,
			FirstName: actor.FirstName,
			LastName:  actor.LastName,
			Role:      actor.Role,
			IsActive:  true,
		})
	}
	return module
}

func validCreateAssetRequest() httptransport.CreateAssetRequest {
	return httptransport.CreateAssetRequest{
		ProjectName:   "Acme Portal",
		AssetName:     "portal.acme.example",
		AssetType:     "web-app",
		Environment:   "prod",
		ScanFrequency: "monthly",
		PlanTier:      "basic",
	}
}

func TestAssetAssignmentPipeline(t *testing.T) {
	module := newAssetModule()
	ctx := context.Background()

	created, err := module.Handler.CreateAssetHandler(ctx, assetAdmin, validCreateAssetRequest(), application.RequestMeta{})
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	assetID := created.Data.ID

	if _, err := module.Handler.AssignTeamLeaderHandler(ctx, assetAdmin, assetID, httptransport.AssignTeamLeaderRequest{
		TeamLeaderID: assetLeader.ID,
	}, application.RequestMeta{}); err != nil {
		t.Fatalf("assign team leader: %v", err)
	}

	tasks, err := module.Handler.MyTasksHandler(ctx, assetLeader)
	if err != nil {
		t.Fatalf("leader tasks: %v", err)
	}
	if len(tasks.Data) != 1 || tasks.Data[0].ID != assetID {
		t.Fatalf("leader should see the assigned asset, got %+v", tasks.Data)
	}

	if _, err := module.Handler.AssignTesterHandler(ctx, assetLeader, assetID, httptransport.AssignTesterRequest{
		TesterID: assetTester.ID,
	}, application.RequestMeta{}); err != nil {
		t.Fatalf("assign tester: %v", err)
	}

	assigned, err := module.Handler.MyAssignedTasksHandler(ctx, assetTester)
	if err != nil {
		t.Fatalf("tester tasks: %v", err)
	}
	if len(assigned.Data) != 1 || assigned.Data[0].ID != assetID {
		t.Fatalf("tester should see the assigned asset, got %+v", assigned.Data)
	}

	detail, err := module.Handler.GetAssetHandler(ctx, assetAdmin, assetID)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if detail.Data.AssignedTo == nil || detail.Data.AssignedTo.ID != assetLeader.ID {
		t.Fatalf("asset detail missing team leader: %+v", detail.Data.AssignedTo)
	}
	if detail.Data.AssignedTester == nil || detail.Data.AssignedTester.ID != assetTester.ID {
		t.Fatalf("asset detail missing tester: %+v", detail.Data.AssignedTester)
	}
}

func TestAssetAssignmentRoleGates(t *testing.T) {
	module := newAssetModule()
	ctx := context.Background()

	created, err := module.Handler.CreateAssetHandler(ctx, assetAdmin, validCreateAssetRequest(), application.RequestMeta{})
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}

	_, err = module.Handler.AssignTeamLeaderHandler(ctx, assetTester, created.Data.ID, httptransport.AssignTeamLeaderRequest{
		TeamLeaderID: assetLeader.ID,
	}, application.RequestMeta{})
	if !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("tester assigning a leader should fail, got %v", err)
	}

	_, err = module.Handler.AssignTesterHandler(ctx, assetLeader, created.Data.ID, httptransport.AssignTesterRequest{
		TesterID: 99,
	}, application.RequestMeta{})
	if !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("assigning an unknown tester should fail, got %v", err)
	}
}

func TestAssetClientGrantLifecycle(t *testing.T) {
	module := newAssetModule()
	ctx := context.Background()

	created, err := module.Handler.CreateAssetHandler(ctx, assetClient, validCreateAssetRequest(), application.RequestMeta{})
	if err != nil {
		t.Fatalf("create asset as client-admin: %v", err)
	}
	if created.Data.ProjectOwner == nil || created.Data.ProjectOwner.ID != assetClient.ID {
		t.Fatalf("client-admin creations should own the project, got %+v", created.Data.ProjectOwner)
	}
	assetID := created.Data.ID

	if _, err := module.Handler.GrantClientAccessHandler(ctx, assetClient, assetID, httptransport.ClientGrantRequest{
		ClientTeamMemberID: assetMember.ID,
	}, application.RequestMeta{}); err != nil {
		t.Fatalf("grant client access: %v", err)
	}

	granted, err := module.Handler.MyGrantedAssetsHandler(ctx, assetMember)
	if err != nil {
		t.Fatalf("member granted assets: %v", err)
	}
	if len(granted.Data) != 1 || granted.Data[0].ID != assetID {
		t.Fatalf("member should see one granted asset, got %+v", granted.Data)
	}

	if _, err := module.Handler.RevokeClientAccessHandler(ctx, assetClient, assetID, httptransport.ClientGrantRequest{
		ClientTeamMemberID: assetMember.ID,
	}, application.RequestMeta{}); err != nil {
		t.Fatalf("revoke client access: %v", err)
	}

	granted, err = module.Handler.MyGrantedAssetsHandler(ctx, assetMember)
	if err != nil {
		t.Fatalf("member granted assets after revoke: %v", err)
	}
	if len(granted.Data) != 0 {
		t.Fatalf("revoked grant should not be listed, got %+v", granted.Data)
	}
}

func TestAssetValidationRejectsUnknownEnums(t *testing.T) {
	module := newAssetModule()
	ctx := context.Background()

	req := validCreateAssetRequest()
	req.AssetType = "mainframe"
	_, err := module.Handler.CreateAssetHandler(ctx, assetAdmin, req, application.RequestMeta{})
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("unknown asset type should be rejected, got %v", err)
	}
}
