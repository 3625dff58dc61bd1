package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const createAssetBody = `{
	"projectName": "Acme Portal",
	"assetName": "portal.acme.example",
	"assetType": "web-app",
	"environment": "prod",
	"scanFrequency": "monthly",
	"planTier": "basic"
}`

func TestAssetRoutesRequireAuthentication(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/assets", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateAssetForbiddenForTester(t *testing.T) {
	server := newTestServer()
	token := registerAndLogin(t, server, "asset-tester", "tester")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/assets", createAssetBody, token))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAssetLifecycleAsClientAdmin(t *testing.T) {
	server := newTestServer()
	token := registerAndLogin(t, server, "asset-owner", "client-admin")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/assets", createAssetBody, token))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var created struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodGet, fmt.Sprintf("/api/assets/%d", created.Data.ID), "", token))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodDelete, fmt.Sprintf("/api/assets/%d", created.Data.ID), "", token))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodGet, fmt.Sprintf("/api/assets/%d", created.Data.ID), "", token))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAssetRejectsMalformedID(t *testing.T) {
	server := newTestServer()
	token := registerAndLogin(t, server, "asset-admin", "admin")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodGet, "/api/assets/not-a-number", "", token))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMyTasksForbiddenForAdmin(t *testing.T) {
	server := newTestServer()
	token := registerAndLogin(t, server, "tasks-admin", "admin")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodGet, "/api/my-tasks", "", token))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}
