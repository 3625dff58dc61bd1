package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoginRejectsBadCredentials(t *testing.T) {
	server := newTestServer()
	registerAndLogin(t, server, "victim", "tester")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"victim","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCurrentUserRequiresToken(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.Header.Set("Authorization", "Token not-a-real-token")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestListUsersRequiresAdminLevel(t *testing.T) {
	server := newTestServer()
	testerToken := registerAndLogin(t, server, "list-tester", "tester")
	adminToken := registerAndLogin(t, server, "list-admin", "admin")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodGet, "/api/users", "", testerToken))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for tester, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodGet, "/api/users", "", adminToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateUserEnforcesRoleMatrix(t *testing.T) {
	server := newTestServer()
	testerToken := registerAndLogin(t, server, "matrix-tester", "tester")

	body := `{"username":"newadmin","email":"newadmin@example.com","password":"s3cret-pass","firstName":"New","lastName":"Admin","role":"admin"}`
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/users", body, testerToken))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when a tester provisions an admin, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateUserDuplicateUsernameConflicts(t *testing.T) {
	server := newTestServer()
	adminToken := registerAndLogin(t, server, "conflict-admin", "admin")

	body := `{"username":"dup-user","email":"dup1@example.com","password":"s3cret-pass","firstName":"Dup","lastName":"One","role":"tester"}`
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/users", body, adminToken))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	body = `{"username":"dup-user","email":"dup2@example.com","password":"s3cret-pass","firstName":"Dup","lastName":"Two","role":"tester"}`
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/users", body, adminToken))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	server := newTestServer()
	token := registerAndLogin(t, server, "logout-user", "admin")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/auth/logout", "", token))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodGet, "/api/auth/user", "", token))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d body=%s", rr.Code, rr.Body.String())
	}
}
