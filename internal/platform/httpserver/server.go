package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	assetservice "vulntrack/contexts/assessment-ops/asset-service"
	reportservice "vulntrack/contexts/assessment-ops/report-service"
	accountservice "vulntrack/contexts/identity-access/account-service"
	accounterrors "vulntrack/contexts/identity-access/account-service/domain/errors"
	"vulntrack/contexts/identity-access/account-service/domain/entities"
	accounthttp "vulntrack/contexts/identity-access/account-service/transport/http"
	activityservice "vulntrack/contexts/observability/activity-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "vulntrack/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	accounts accountservice.Module
	assets   assetservice.Module
	reports  reportservice.Module
	activity activityservice.Module
}

func New(
	accounts accountservice.Module,
	assets assetservice.Module,
	reports reportservice.Module,
	activity activityservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		accounts: accounts,
		assets:   assets,
		reports:  reports,
		activity: activity,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("GET /api/auth/user", s.handleCurrentUser)
	s.mux.HandleFunc("PUT /api/auth/profile", s.handleUpdateProfile)
	s.mux.HandleFunc("POST /api/auth/change-password", s.handleChangePassword)

	s.mux.HandleFunc("GET /api/users", s.handleListUsers)
	s.mux.HandleFunc("POST /api/users", s.handleCreateUser)
	s.mux.HandleFunc("PUT /api/users/{user_id}", s.handleUpdateUser)
	s.mux.HandleFunc("DELETE /api/users/{user_id}", s.handleDeleteUser)
	s.mux.HandleFunc("GET /api/users/created", s.handleCreatedUsers)
	s.mux.HandleFunc("GET /api/users/hierarchy", s.handleHierarchy)
	s.mux.HandleFunc("GET /api/users/assignable", s.handleAssignableUsers)
	s.mux.HandleFunc("GET /api/users/assigned", s.handleAssignedUsers)
	s.mux.HandleFunc("GET /api/users/assignments", s.handleAssignments)
	s.mux.HandleFunc("POST /api/users/assign", s.handleAssignUser)
	s.mux.HandleFunc("POST /api/users/unassign", s.handleUnassignUser)
	s.mux.HandleFunc("GET /api/access-control/users", s.handleAccessControlUsers)
	s.mux.HandleFunc("POST /api/access-control/revoke", s.handleRevokeAccess)
	s.mux.HandleFunc("POST /api/access-control/restore", s.handleRestoreAccess)
	s.mux.HandleFunc("GET /api/team-leaders", s.handleTeamLeaders)
	s.mux.HandleFunc("GET /api/testers", s.handleTesters)
	s.mux.HandleFunc("GET /api/client-admins", s.handleClientAdmins)
	s.mux.HandleFunc("GET /api/client-team-members", s.handleClientTeamMembers)

	s.mux.HandleFunc("GET /api/assets", s.handleListAssets)
	s.mux.HandleFunc("POST /api/assets", s.handleCreateAsset)
	s.mux.HandleFunc("GET /api/assets/{asset_id}", s.handleGetAsset)
	s.mux.HandleFunc("PUT /api/assets/{asset_id}", s.handleUpdateAsset)
	s.mux.HandleFunc("DELETE /api/assets/{asset_id}", s.handleDeleteAsset)
	s.mux.HandleFunc("POST /api/assets/{asset_id}/assign-team-leader", s.handleAssignTeamLeader)
	s.mux.HandleFunc("POST /api/assets/{asset_id}/unassign-team-leader", s.handleUnassignTeamLeader)
	s.mux.HandleFunc("POST /api/assets/{asset_id}/assign-tester", s.handleAssignTester)
	s.mux.HandleFunc("POST /api/assets/{asset_id}/unassign-tester", s.handleUnassignTester)
	s.mux.HandleFunc("POST /api/assets/{asset_id}/client-team/assign", s.handleGrantClientAccess)
	s.mux.HandleFunc("POST /api/assets/{asset_id}/client-team/unassign", s.handleRevokeClientAccess)
	s.mux.HandleFunc("GET /api/assets/{asset_id}/client-team", s.handleClientGrants)
	s.mux.HandleFunc("GET /api/my-tasks", s.handleMyTasks)
	s.mux.HandleFunc("GET /api/my-assigned-tasks", s.handleMyAssignedTasks)
	s.mux.HandleFunc("GET /api/my-client-team-assets", s.handleMyGrantedAssets)

	s.mux.HandleFunc("GET /api/reports", s.handleListReports)
	s.mux.HandleFunc("POST /api/reports", s.handleCreateReport)
	s.mux.HandleFunc("GET /api/reports/{report_id}", s.handleGetReport)
	s.mux.HandleFunc("PUT /api/reports/{report_id}", s.handleUpdateReport)
	s.mux.HandleFunc("DELETE /api/reports/{report_id}", s.handleDeleteReport)
	s.mux.HandleFunc("GET /api/reports/{report_id}/pdf", s.handleReportDocument)
	s.mux.HandleFunc("GET /api/assets/{asset_id}/reports", s.handleAssetReports)
	s.mux.HandleFunc("GET /api/reports/{report_id}/findings", s.handleListFindings)
	s.mux.HandleFunc("POST /api/reports/{report_id}/findings", s.handleCreateFinding)
	s.mux.HandleFunc("PUT /api/findings/{finding_id}", s.handleUpdateFinding)
	s.mux.HandleFunc("DELETE /api/findings/{finding_id}", s.handleDeleteFinding)
	s.mux.HandleFunc("GET /api/reports/{report_id}/notes", s.handleReportNotes)
	s.mux.HandleFunc("POST /api/reports/{report_id}/notes", s.handleCreateNote)
	s.mux.HandleFunc("GET /api/assets/{asset_id}/notes", s.handleAssetNotes)
	s.mux.HandleFunc("PUT /api/notes/{note_id}", s.handleUpdateNote)
	s.mux.HandleFunc("DELETE /api/notes/{note_id}", s.handleDeleteNote)

	s.mux.HandleFunc("GET /api/activity-logs", s.handleActivityLogs)
	s.mux.HandleFunc("GET /api/user-sessions", s.handleUserSessions)
	s.mux.HandleFunc("GET /api/asset-activity-logs", s.handleAssetActivityLogs)
	s.mux.HandleFunc("GET /api/activity-summary", s.handleActivitySummary)
	s.mux.HandleFunc("GET /api/audit-trail", s.handleAuditTrail)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authenticate resolves the request's session token to an active user.
// It writes the 401 response itself when resolution fails.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (entities.User, string, bool) {
	token := resolveToken(r)
	user, err := s.accounts.Service.Authenticate(r.Context(), token)
	if err != nil {
		if errors.Is(err, accounterrors.ErrNotAuthenticated) {
			writeAccountError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		} else {
			writeAccountError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		}
		return entities.User{}, "", false
	}
	return user, token, true
}

// resolveToken accepts "Authorization: Token <key>" or the sessionId
// cookie set by browser clients.
func resolveToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Token") {
		return strings.TrimSpace(parts[1])
	}
	if cookie, err := r.Cookie("sessionId"); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dest any, writeError func(http.ResponseWriter, int, string, string)) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func parsePathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(r.PathValue(key)), 10, 64)
}

func writeAccountError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accounthttp.ErrorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
