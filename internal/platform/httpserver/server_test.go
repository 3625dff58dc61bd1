package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	assetservice "vulntrack/contexts/assessment-ops/asset-service"
	reportservice "vulntrack/contexts/assessment-ops/report-service"
	accountservice "vulntrack/contexts/identity-access/account-service"
	activityservice "vulntrack/contexts/observability/activity-service"
)

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	activity := activityservice.NewInMemoryModule(logger)
	accounts := accountservice.NewInMemoryModule(activity.Recorder, logger)
	assets := assetservice.NewInMemoryModule(activity.Recorder, logger)
	reports := reportservice.NewInMemoryModule(activity.Recorder, logger)
	return New(accounts, assets, reports, activity, logger, ":0")
}

// registerAndLogin provisions a user through the public endpoints and
// returns a live session token.
func registerAndLogin(t *testing.T, server *Server, username string, role string) string {
	t.Helper()

	registerBody := fmt.Sprintf(
		`{"username":%q,"email":"%s@example.com","password":"s3cret-pass","firstName":"Test","lastName":"User","role":%q}`,
		username, username, role,
	)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(registerBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d body=%s", username, rr.Code, rr.Body.String())
	}

	loginBody := fmt.Sprintf(`{"username":%q,"password":"s3cret-pass"}`, username)
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d body=%s", username, rr.Code, rr.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatalf("login %s returned an empty token", username)
	}
	return resp.Data.Token
}

func authedRequest(method string, target string, body string, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+token)
	return req
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSessionCookieAuthenticates(t *testing.T) {
	server := newTestServer()
	token := registerAndLogin(t, server, "cookie-admin", "admin")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.AddCookie(&http.Cookie{Name: "sessionId", Value: token})
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 via cookie, got %d body=%s", rr.Code, rr.Body.String())
	}
}
