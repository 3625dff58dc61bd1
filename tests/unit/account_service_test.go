package unit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	accountservice "vulntrack/contexts/identity-access/account-service"
	"vulntrack/contexts/identity-access/account-service/application"
	"vulntrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "vulntrack/contexts/identity-access/account-service/domain/errors"
	httptransport "vulntrack/contexts/identity-access/account-service/transport/http"
	"vulntrack/internal/shared/audit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAccountModule() accountservice.Module {
	return accountservice.NewInMemoryModule(audit.Discard{}, discardLogger())
}

// provisionActor registers an account through the public flow and
// returns the authenticated user plus a live session token.
func provisionActor(t *testing.T, module accountservice.Module, username string, role string) (entities.User, string) {
	t.Helper()
	ctx := context.Background()

	_, err := module.Handler.RegisterHandler(ctx, httptransport.RegisterRequest{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "s3cret-pass",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}

	login, err := module.Handler.LoginHandler(ctx, httptransport.LoginRequest{
		Username: username,
		Password: "s3cret-pass",
	}, application.RequestMeta{IPAddress: "127.0.0.1"})
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}

	actor, err := module.Service.Authenticate(ctx, login.Data.Token)
	if err != nil {
		t.Fatalf("authenticate %s: %v", username, err)
	}
	return actor, login.Data.Token
}

func TestAccountProvisioningFlow(t *testing.T) {
	module := newAccountModule()
	ctx := context.Background()
	admin, _ := provisionActor(t, module, "flow-admin", "admin")

	created, err := module.Handler.CreateUserHandler(ctx, admin, httptransport.CreateUserRequest{
		Username:  "flow-tester",
		Email:     "flow-tester@example.com",
		Password:  "tester-pass",
		FirstName: "Flow",
		LastName:  "Tester",
		Role:      "tester",
	}, application.RequestMeta{})
	if err != nil {
		t.Fatalf("admin should be able to create a tester: %v", err)
	}
	if created.Data.Password != "tester-pass" {
		t.Fatalf("creator should receive the plaintext credential, got %q", created.Data.Password)
	}
	if created.Data.User.Role != "tester" {
		t.Fatalf("unexpected role %q", created.Data.User.Role)
	}

	_, err = module.Handler.CreateUserHandler(ctx, admin, httptransport.CreateUserRequest{
		Username:  "flow-root",
		Email:     "flow-root@example.com",
		Password:  "root-pass",
		FirstName: "Flow",
		LastName:  "Root",
		Role:      "superadmin",
	}, application.RequestMeta{})
	if !errors.Is(err, domainerrors.ErrRoleNotAllowed) {
		t.Fatalf("admin creating a superadmin should fail with ErrRoleNotAllowed, got %v", err)
	}
}

func TestAccountDelegationEdges(t *testing.T) {
	module := newAccountModule()
	ctx := context.Background()
	admin, _ := provisionActor(t, module, "edge-admin", "admin")

	leader, err := module.Handler.CreateUserHandler(ctx, admin, httptransport.CreateUserRequest{
		Username: "edge-leader", Email: "edge-leader@example.com", Password: "leader-pass",
		FirstName: "Edge", LastName: "Leader", Role: "team-leader",
	}, application.RequestMeta{})
	if err != nil {
		t.Fatalf("create leader: %v", err)
	}
	tester, err := module.Handler.CreateUserHandler(ctx, admin, httptransport.CreateUserRequest{
		Username: "edge-tester", Email: "edge-tester@example.com", Password: "tester-pass",
		FirstName: "Edge", LastName: "Tester", Role: "tester",
	}, application.RequestMeta{})
	if err != nil {
		t.Fatalf("create tester: %v", err)
	}

	_, err = module.Handler.AssignUserHandler(ctx, admin, httptransport.AssignUserRequest{
		AssignedUserID: tester.Data.User.ID,
		AssigneeID:     leader.Data.User.ID,
	})
	if err != nil {
		t.Fatalf("assign tester to leader: %v", err)
	}

	assignments, err := module.Handler.AssignmentsHandler(ctx, admin)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(assignments.Data) != 1 {
		t.Fatalf("expected one assignment edge, got %d", len(assignments.Data))
	}
	if assignments.Data[0].AssignedUserID != tester.Data.User.ID {
		t.Fatalf("assignment points at wrong user: %+v", assignments.Data[0])
	}

	// A self-registered outsider is not under the admin's creation
	// edges, so it cannot be delegated.
	outsider, _ := provisionActor(t, module, "edge-outsider", "tester")
	_, err = module.Handler.AssignUserHandler(ctx, admin, httptransport.AssignUserRequest{
		AssignedUserID: outsider.ID,
		AssigneeID:     leader.Data.User.ID,
	})
	if !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator for a foreign user, got %v", err)
	}
}

func TestAccountRevocationBlocksLogin(t *testing.T) {
	module := newAccountModule()
	ctx := context.Background()
	admin, _ := provisionActor(t, module, "revoke-admin", "admin")

	created, err := module.Handler.CreateUserHandler(ctx, admin, httptransport.CreateUserRequest{
		Username: "revoke-tester", Email: "revoke-tester@example.com", Password: "tester-pass",
		FirstName: "Revoke", LastName: "Tester", Role: "tester",
	}, application.RequestMeta{})
	if err != nil {
		t.Fatalf("create tester: %v", err)
	}

	_, err = module.Handler.SetAccessHandler(ctx, admin, httptransport.SetAccessRequest{
		UserID: created.Data.User.ID,
	}, false, application.RequestMeta{})
	if err != nil {
		t.Fatalf("revoke access: %v", err)
	}

	_, err = module.Handler.LoginHandler(ctx, httptransport.LoginRequest{
		Username: "revoke-tester",
		Password: "tester-pass",
	}, application.RequestMeta{})
	if !errors.Is(err, domainerrors.ErrAccessRevoked) {
		t.Fatalf("expected ErrAccessRevoked, got %v", err)
	}

	_, err = module.Handler.SetAccessHandler(ctx, admin, httptransport.SetAccessRequest{
		UserID: created.Data.User.ID,
	}, true, application.RequestMeta{})
	if err != nil {
		t.Fatalf("restore access: %v", err)
	}
	if _, err := module.Handler.LoginHandler(ctx, httptransport.LoginRequest{
		Username: "revoke-tester",
		Password: "tester-pass",
	}, application.RequestMeta{}); err != nil {
		t.Fatalf("login after restore: %v", err)
	}
}

func TestAccountLogoutEndsSession(t *testing.T) {
	module := newAccountModule()
	ctx := context.Background()
	actor, token := provisionActor(t, module, "logout-admin", "admin")

	if _, err := module.Handler.LogoutHandler(ctx, actor, token, application.RequestMeta{}); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := module.Service.Authenticate(ctx, token); !errors.Is(err, domainerrors.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated after logout, got %v", err)
	}
}
