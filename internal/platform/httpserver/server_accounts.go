package httpserver

import (
	"errors"
	"net/http"

	accountapp "vulntrack/contexts/identity-access/account-service/application"
	accounterrors "vulntrack/contexts/identity-access/account-service/domain/errors"
	accounthttp "vulntrack/contexts/identity-access/account-service/transport/http"
)

func writeAccountDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounterrors.ErrInvalidCredentials),
		errors.Is(err, accounterrors.ErrAccessRevoked),
		errors.Is(err, accounterrors.ErrNotAuthenticated):
		writeAccountError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, accounterrors.ErrNotAuthorized),
		errors.Is(err, accounterrors.ErrRoleNotAllowed),
		errors.Is(err, accounterrors.ErrNotCreator):
		writeAccountError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, accounterrors.ErrUserNotFound):
		writeAccountError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, accounterrors.ErrUsernameTaken),
		errors.Is(err, accounterrors.ErrEmailTaken),
		errors.Is(err, accounterrors.ErrDuplicateRelation):
		writeAccountError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, accounterrors.ErrInvalidRequest),
		errors.Is(err, accounterrors.ErrWrongPassword):
		writeAccountError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeAccountError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func accountMeta(r *http.Request, token string) accountapp.RequestMeta {
	return accountapp.RequestMeta{
		IPAddress: resolveClientIP(r),
		UserAgent: r.UserAgent(),
		SessionID: token,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.LoginRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.LoginHandler(r.Context(), req, accountMeta(r, ""))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	actor, token, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.LogoutHandler(r.Context(), actor, token, accountMeta(r, token))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.RegisterRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.RegisterHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.CurrentUserHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, token, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req accounthttp.UpdateProfileRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.UpdateProfileHandler(r.Context(), actor, req, accountMeta(r, token))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, token, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req accounthttp.ChangePasswordRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.ChangePasswordHandler(r.Context(), actor, req, accountMeta(r, token))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.ListUsersHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor, token, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req accounthttp.CreateUserRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.CreateUserHandler(r.Context(), actor, req, accountMeta(r, token))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	userID, err := parsePathID(r, "user_id")
	if err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_request", "user_id must be an integer")
		return
	}
	var req accounthttp.UpdateUserRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.UpdateUserHandler(r.Context(), actor, userID, req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	userID, err := parsePathID(r, "user_id")
	if err != nil {
		writeAccountError(w, http.StatusBadRequest, "invalid_request", "user_id must be an integer")
		return
	}
	resp, err := s.accounts.Handler.DeleteUserHandler(r.Context(), actor, userID)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreatedUsers(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.CreatedUsersHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.HierarchyHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignableUsers(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.AssignableUsersHandler(r.Context(), actor, r.URL.Query().Get("role"))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignedUsers(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.AssignedUsersHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignments(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.AssignmentsHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignUser(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req accounthttp.AssignUserRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.AssignUserHandler(r.Context(), actor, req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnassignUser(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req accounthttp.AssignUserRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.UnassignUserHandler(r.Context(), actor, req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccessControlUsers(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.AccessControlUsersHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	s.handleSetAccess(w, r, false)
}

func (s *Server) handleRestoreAccess(w http.ResponseWriter, r *http.Request) {
	s.handleSetAccess(w, r, true)
}

func (s *Server) handleSetAccess(w http.ResponseWriter, r *http.Request, active bool) {
	actor, token, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req accounthttp.SetAccessRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.SetAccessHandler(r.Context(), actor, req, active, accountMeta(r, token))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTeamLeaders(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.TeamLeadersHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTesters(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.TestersHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClientAdmins(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.ClientAdminsHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClientTeamMembers(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.accounts.Handler.ClientTeamHandler(r.Context(), actor)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
