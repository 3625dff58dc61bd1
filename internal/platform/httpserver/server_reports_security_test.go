package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	reportports "vulntrack/contexts/assessment-ops/report-service/ports"
	"vulntrack/internal/shared/roles"
)

func TestReportRoutesRequireAuthentication(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateReportForbiddenForAdmin(t *testing.T) {
	server := newTestServer()
	token := registerAndLogin(t, server, "report-admin", "admin")

	body := `{"reportTitle":"Q1 Assessment","associatedAssetId":10}`
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/reports", body, token))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateReportUnknownAssetNotFound(t *testing.T) {
	server := newTestServer()
	token := registerAndLogin(t, server, "report-tester", "tester")

	body := `{"reportTitle":"Q1 Assessment","associatedAssetId":404}`
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/reports", body, token))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReportCreateAndListAsTester(t *testing.T) {
	server := newTestServer()
	token := registerAndLogin(t, server, "flow-tester", "tester")

	// First registered account gets id 1; mirror it in the report
	// context's directories.
	server.reports.Store.SeedUser(reportports.UserRef{ID: 1, Username: "flow-tester", FirstName: "Test", LastName: "User", Role: roles.Tester})
	server.reports.Store.SeedAsset(reportports.AssetInfo{ID: 10, ProjectName: "Acme Portal", AssetName: "portal.acme.example"})

	body := `{"reportTitle":"Q1 Assessment","associatedAssetId":10}`
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/reports", body, token))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"currentStatus":"Draft"`) {
		t.Fatalf("new report should start as Draft: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodGet, "/api/reports", "", token))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Q1 Assessment") {
		t.Fatalf("tester should see the report they created: %s", rr.Body.String())
	}
}

func TestFindingRejectsMalformedID(t *testing.T) {
	server := newTestServer()
	token := registerAndLogin(t, server, "finding-tester", "tester")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPut, "/api/findings/oops", `{}`, token))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestReportDocumentForbiddenForUnrelatedTester(t *testing.T) {
	server := newTestServer()
	authorToken := registerAndLogin(t, server, "doc-author", "tester")
	otherToken := registerAndLogin(t, server, "doc-other", "tester")

	server.reports.Store.SeedUser(reportports.UserRef{ID: 1, Username: "doc-author", FirstName: "Doc", LastName: "Author", Role: roles.Tester})
	server.reports.Store.SeedAsset(reportports.AssetInfo{ID: 10, ProjectName: "Acme Portal", AssetName: "portal.acme.example"})

	body := `{"reportTitle":"Q1 Assessment","associatedAssetId":10}`
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodPost, "/api/reports", body, authorToken))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodGet, "/api/reports/1/pdf", "", otherToken))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unrelated tester, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, authedRequest(http.MethodGet, "/api/reports/1/pdf", "", authorToken))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for the author, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.Contains(got, "Security_Report_1") {
		t.Fatalf("attachment filename missing: %q", got)
	}
}
