package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"vulntrack/contexts/identity-access/account-service/adapters/memory"
	"vulntrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "vulntrack/contexts/identity-access/account-service/domain/errors"
	"vulntrack/contexts/identity-access/account-service/ports"
	"vulntrack/internal/shared/audit"
	"vulntrack/internal/shared/roles"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// plainHasher keeps test fixtures readable by storing passwords with a
// visible prefix instead of a real digest.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Compare(hash string, plain string) bool {
	return hash == "hashed:"+plain
}

type sequenceTokens struct{ n int }

func (g *sequenceTokens) NewToken() string {
	g.n++
	return fmt.Sprintf("token-%d", g.n)
}

type captureRecorder struct {
	events []audit.Event
}

func (r *captureRecorder) Activity(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}
func (r *captureRecorder) AssetActivity(context.Context, audit.AssetEvent) {}
func (r *captureRecorder) Audit(context.Context, audit.TrailEntry)        {}

func newTestService(t *testing.T) (Service, *memory.Store, *captureRecorder) {
	t.Helper()
	store := memory.NewStore()
	recorder := &captureRecorder{}
	service := Service{
		Repo:     store,
		Hasher:   plainHasher{},
		Tokens:   &sequenceTokens{},
		Clock:    fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		Recorder: recorder,
	}
	return service, store, recorder
}

func seedUser(t *testing.T, service Service, username string, role roles.Role) entities.User {
	t.Helper()
	user, err := service.Register(context.Background(), CreateUserInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "secret-" + username,
		FirstName: "Test",
		LastName:  username,
		Role:      string(role),
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return user
}

func TestLoginIssuesReusableToken(t *testing.T) {
	service, _, recorder := newTestService(t)
	user := seedUser(t, service, "lead", roles.TeamLeader)

	first, err := service.Login(context.Background(), "lead", "secret-lead", RequestMeta{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if first.User.ID != user.ID || first.Token == "" {
		t.Fatalf("unexpected login result %+v", first)
	}
	if first.User.LastLogin == nil {
		t.Fatal("expected last login to be stamped")
	}

	second, err := service.Login(context.Background(), "lead", "secret-lead", RequestMeta{})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if second.Token != first.Token {
		t.Fatalf("expected token reuse, got %q then %q", first.Token, second.Token)
	}

	var loginEvents int
	for _, event := range recorder.events {
		if event.Action == audit.ActionLogin {
			loginEvents++
		}
	}
	if loginEvents != 2 {
		t.Fatalf("expected 2 login events, got %d", loginEvents)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	service, _, recorder := newTestService(t)
	seedUser(t, service, "lead", roles.TeamLeader)

	_, err := service.Login(context.Background(), "lead", "nope", RequestMeta{})
	if !errors.Is(err, domainerrors.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(recorder.events) == 0 || recorder.events[len(recorder.events)-1].Action != "login_failed" {
		t.Fatal("expected a login_failed activity event")
	}
}

func TestLoginRevokedAccount(t *testing.T) {
	service, store, _ := newTestService(t)
	user := seedUser(t, service, "lead", roles.TeamLeader)

	inactive := false
	if _, err := store.UpdateUser(context.Background(), user.ID, ports.UserPatch{IsActive: &inactive}, time.Now()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err := service.Login(context.Background(), "lead", "secret-lead", RequestMeta{})
	if !errors.Is(err, domainerrors.ErrAccessRevoked) {
		t.Fatalf("expected ErrAccessRevoked, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	service, _, _ := newTestService(t)
	seedUser(t, service, "lead", roles.TeamLeader)

	result, err := service.Login(context.Background(), "lead", "secret-lead", RequestMeta{})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	actor, err := service.Authenticate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if actor.Username != "lead" {
		t.Fatalf("unexpected actor %+v", actor)
	}
	if _, err := service.Authenticate(context.Background(), "bogus"); !errors.Is(err, domainerrors.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestCreateUserEnforcesMatrix(t *testing.T) {
	service, _, _ := newTestService(t)
	admin := seedUser(t, service, "admin", roles.Admin)
	tester := seedUser(t, service, "tester", roles.Tester)

	provisioned, err := service.CreateUser(context.Background(), admin, CreateUserInput{
		Username:  "newlead",
		Email:     "newlead@example.com",
		Password:  "initial-pass",
		FirstName: "New",
		LastName:  "Lead",
		Role:      string(roles.TeamLeader),
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if provisioned.PlainPassword != "initial-pass" {
		t.Fatalf("expected plaintext echoed to creator, got %q", provisioned.PlainPassword)
	}

	created, err := service.CreatedUsers(context.Background(), admin)
	if err != nil {
		t.Fatalf("created users: %v", err)
	}
	if len(created) != 1 || created[0].User.ID != provisioned.User.ID {
		t.Fatalf("expected creation edge to new user, got %+v", created)
	}
	if created[0].PlainPassword != "initial-pass" {
		t.Fatalf("expected plaintext on edge, got %q", created[0].PlainPassword)
	}

	_, err = service.CreateUser(context.Background(), tester, CreateUserInput{
		Username: "x", Email: "x@example.com", Password: "p", Role: string(roles.ClientUser),
	}, RequestMeta{})
	if !errors.Is(err, domainerrors.ErrRoleNotAllowed) {
		t.Fatalf("expected ErrRoleNotAllowed, got %v", err)
	}

	_, err = service.CreateUser(context.Background(), admin, CreateUserInput{
		Username: "newlead", Email: "other@example.com", Password: "p", Role: string(roles.Tester),
	}, RequestMeta{})
	if !errors.Is(err, domainerrors.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAssignUserRequiresCreationEdges(t *testing.T) {
	service, _, _ := newTestService(t)
	admin := seedUser(t, service, "admin", roles.Admin)
	stranger := seedUser(t, service, "stranger", roles.Tester)

	lead, err := service.CreateUser(context.Background(), admin, CreateUserInput{
		Username: "lead", Email: "lead@example.com", Password: "p", Role: string(roles.TeamLeader),
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}
	tester, err := service.CreateUser(context.Background(), admin, CreateUserInput{
		Username: "tester", Email: "tester@example.com", Password: "p", Role: string(roles.Tester),
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create tester: %v", err)
	}

	if err := service.AssignUser(context.Background(), admin, tester.User.ID, lead.User.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	assigned, err := service.AssignedUsers(context.Background(), lead.User)
	if err != nil {
		t.Fatalf("assigned users: %v", err)
	}
	if len(assigned) != 1 || assigned[0].User.ID != tester.User.ID {
		t.Fatalf("expected tester under lead, got %+v", assigned)
	}

	err = service.AssignUser(context.Background(), admin, stranger.ID, lead.User.ID)
	if !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator for non-created user, got %v", err)
	}

	// Unassigning an absent edge is a no-op.
	if err := service.UnassignUser(context.Background(), admin, stranger.ID, lead.User.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
}

func TestSetAccessScope(t *testing.T) {
	service, _, _ := newTestService(t)
	admin := seedUser(t, service, "admin", roles.Admin)
	outsider := seedUser(t, service, "outsider", roles.Tester)
	root := seedUser(t, service, "root", roles.SuperAdmin)

	lead, err := service.CreateUser(context.Background(), admin, CreateUserInput{
		Username: "lead", Email: "lead@example.com", Password: "p", Role: string(roles.TeamLeader),
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	if err := service.SetAccess(context.Background(), admin, lead.User.ID, false, RequestMeta{}); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := service.Repo.GetUser(context.Background(), lead.User.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if revoked.IsActive {
		t.Fatal("expected account revoked")
	}

	if err := service.SetAccess(context.Background(), admin, outsider.ID, false, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator, got %v", err)
	}
	if err := service.SetAccess(context.Background(), root, outsider.ID, false, RequestMeta{}); err != nil {
		t.Fatalf("superadmin revoke: %v", err)
	}
	if err := service.SetAccess(context.Background(), outsider, admin.ID, false, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestHierarchyWalksCreationLineage(t *testing.T) {
	service, _, _ := newTestService(t)
	root := seedUser(t, service, "root", roles.SuperAdmin)

	admin, err := service.CreateUser(context.Background(), root, CreateUserInput{
		Username: "admin", Email: "admin@example.com", Password: "p", Role: string(roles.Admin),
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	if _, err := service.CreateUser(context.Background(), admin.User, CreateUserInput{
		Username: "lead", Email: "lead@example.com", Password: "p", Role: string(roles.TeamLeader),
	}, RequestMeta{}); err != nil {
		t.Fatalf("create lead: %v", err)
	}

	nodes, err := service.Hierarchy(context.Background(), root)
	if err != nil {
		t.Fatalf("hierarchy: %v", err)
	}
	if len(nodes) != 1 || nodes[0].User.Username != "admin" {
		t.Fatalf("unexpected top level %+v", nodes)
	}
	if len(nodes[0].Children) != 1 || nodes[0].Children[0].User.Username != "lead" {
		t.Fatalf("unexpected second level %+v", nodes[0].Children)
	}
}

func TestChangePassword(t *testing.T) {
	service, _, _ := newTestService(t)
	user := seedUser(t, service, "lead", roles.TeamLeader)

	if err := service.ChangePassword(context.Background(), user, "wrong", "next", RequestMeta{}); !errors.Is(err, domainerrors.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := service.ChangePassword(context.Background(), user, "secret-lead", "next", RequestMeta{}); err != nil {
		t.Fatalf("change: %v", err)
	}
	if _, err := service.Login(context.Background(), "lead", "next", RequestMeta{}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	service, store, _ := newTestService(t)
	admin := seedUser(t, service, "admin", roles.Admin)

	lead, err := service.CreateUser(context.Background(), admin, CreateUserInput{
		Username: "lead", Email: "lead@example.com", Password: "p", Role: string(roles.TeamLeader),
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := service.DeleteUser(context.Background(), admin, lead.User.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetUser(context.Background(), lead.User.ID); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
	created, err := service.CreatedUsers(context.Background(), admin)
	if err != nil {
		t.Fatalf("created users: %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected creation edge gone, got %+v", created)
	}

	if err := service.DeleteUser(context.Background(), admin, 999); !errors.Is(err, domainerrors.ErrNotCreator) {
		t.Fatalf("expected ErrNotCreator, got %v", err)
	}
}
