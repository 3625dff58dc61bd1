package httpserver

import (
	"errors"
	"net/http"

	assetapp "vulntrack/contexts/assessment-ops/asset-service/application"
	asseterrors "vulntrack/contexts/assessment-ops/asset-service/domain/errors"
	assethttp "vulntrack/contexts/assessment-ops/asset-service/transport/http"
	"vulntrack/contexts/identity-access/account-service/domain/entities"
)

func writeAssetError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, assethttp.ErrorResponse{Code: code, Message: message})
}

func writeAssetDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, asseterrors.ErrAssetNotFound),
		errors.Is(err, asseterrors.ErrUserNotFound):
		writeAssetError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, asseterrors.ErrNotAuthorized):
		writeAssetError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, asseterrors.ErrInvalidRequest):
		writeAssetError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeAssetError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func assetActor(user entities.User) assetapp.Actor {
	return assetapp.Actor{
		ID:        user.ID,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func assetMeta(r *http.Request) assetapp.RequestMeta {
	return assetapp.RequestMeta{
		IPAddress: resolveClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// requireAssetID writes the 400 response itself on a malformed path id.
func requireAssetID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	assetID, err := parsePathID(r, "asset_id")
	if err != nil {
		writeAssetError(w, http.StatusBadRequest, "invalid_request", "asset_id must be an integer")
		return 0, false
	}
	return assetID, true
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.ListAssetsHandler(r.Context(), assetActor(actor))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req assethttp.CreateAssetRequest
	if !s.decodeJSON(w, r, &req, writeAssetError) {
		return
	}
	resp, err := s.assets.Handler.CreateAssetHandler(r.Context(), assetActor(actor), req, assetMeta(r))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	assetID, ok := requireAssetID(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.GetAssetHandler(r.Context(), assetActor(actor), assetID)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	assetID, ok := requireAssetID(w, r)
	if !ok {
		return
	}
	var req assethttp.UpdateAssetRequest
	if !s.decodeJSON(w, r, &req, writeAssetError) {
		return
	}
	resp, err := s.assets.Handler.UpdateAssetHandler(r.Context(), assetActor(actor), assetID, req, assetMeta(r))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	assetID, ok := requireAssetID(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.DeleteAssetHandler(r.Context(), assetActor(actor), assetID, assetMeta(r))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignTeamLeader(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	assetID, ok := requireAssetID(w, r)
	if !ok {
		return
	}
	var req assethttp.AssignTeamLeaderRequest
	if !s.decodeJSON(w, r, &req, writeAssetError) {
		return
	}
	resp, err := s.assets.Handler.AssignTeamLeaderHandler(r.Context(), assetActor(actor), assetID, req, assetMeta(r))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnassignTeamLeader(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	assetID, ok := requireAssetID(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.UnassignTeamLeaderHandler(r.Context(), assetActor(actor), assetID, assetMeta(r))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignTester(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	assetID, ok := requireAssetID(w, r)
	if !ok {
		return
	}
	var req assethttp.AssignTesterRequest
	if !s.decodeJSON(w, r, &req, writeAssetError) {
		return
	}
	resp, err := s.assets.Handler.AssignTesterHandler(r.Context(), assetActor(actor), assetID, req, assetMeta(r))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnassignTester(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	assetID, ok := requireAssetID(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.UnassignTesterHandler(r.Context(), assetActor(actor), assetID, assetMeta(r))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGrantClientAccess(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	assetID, ok := requireAssetID(w, r)
	if !ok {
		return
	}
	var req assethttp.ClientGrantRequest
	if !s.decodeJSON(w, r, &req, writeAssetError) {
		return
	}
	resp, err := s.assets.Handler.GrantClientAccessHandler(r.Context(), assetActor(actor), assetID, req, assetMeta(r))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevokeClientAccess(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	assetID, ok := requireAssetID(w, r)
	if !ok {
		return
	}
	var req assethttp.ClientGrantRequest
	if !s.decodeJSON(w, r, &req, writeAssetError) {
		return
	}
	resp, err := s.assets.Handler.RevokeClientAccessHandler(r.Context(), assetActor(actor), assetID, req, assetMeta(r))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClientGrants(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	assetID, ok := requireAssetID(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.ClientGrantsHandler(r.Context(), assetActor(actor), assetID)
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMyTasks(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.MyTasksHandler(r.Context(), assetActor(actor))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMyAssignedTasks(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.MyAssignedTasksHandler(r.Context(), assetActor(actor))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMyGrantedAssets(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.assets.Handler.MyGrantedAssetsHandler(r.Context(), assetActor(actor))
	if err != nil {
		writeAssetDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
