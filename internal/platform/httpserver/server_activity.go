package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"vulntrack/contexts/identity-access/account-service/domain/entities"
	activityapp "vulntrack/contexts/observability/activity-service/application"
	activityerrors "vulntrack/contexts/observability/activity-service/domain/errors"
	activityhttp "vulntrack/contexts/observability/activity-service/transport/http"
)

func writeActivityError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, activityhttp.ErrorResponse{Code: code, Message: message})
}

func writeActivityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, activityerrors.ErrNotAuthorized):
		writeActivityError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, activityerrors.ErrInvalidRequest):
		writeActivityError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeActivityError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func activityViewer(user entities.User) activityapp.Viewer {
	return activityapp.Viewer{UserID: user.ID, Role: user.Role}
}

func (s *Server) handleActivityLogs(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.activity.Handler.ActivityLogs(r.Context(), activityViewer(actor), activityhttp.ActivityLogsQuery{
		StartDate:    query.Get("startDate"),
		EndDate:      query.Get("endDate"),
		UserID:       query.Get("userId"),
		ActivityType: query.Get("activityType"),
		Limit:        query.Get("limit"),
		Offset:       query.Get("offset"),
	})
	if err != nil {
		writeActivityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUserSessions(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.activity.Handler.UserSessions(r.Context(), activityViewer(actor), activityhttp.SessionsQuery{
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
		UserID:    query.Get("userId"),
		IsActive:  query.Get("isActive"),
		Limit:     query.Get("limit"),
		Offset:    query.Get("offset"),
	})
	if err != nil {
		writeActivityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetActivityLogs(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.activity.Handler.AssetActivityLogs(r.Context(), activityViewer(actor), activityhttp.AssetActivityQuery{
		AssetID:      query.Get("assetId"),
		StartDate:    query.Get("startDate"),
		EndDate:      query.Get("endDate"),
		UserID:       query.Get("userId"),
		ActivityType: query.Get("activityType"),
		Limit:        query.Get("limit"),
		Offset:       query.Get("offset"),
	})
	if err != nil {
		writeActivityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActivitySummary(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.activity.Handler.ActivitySummary(r.Context(), activityViewer(actor), summaryQuery(r.URL.Query()))
	if err != nil {
		writeActivityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.activity.Handler.AuditTrail(r.Context(), activityViewer(actor), activityhttp.AuditTrailQuery{
		Resource: query.Get("resource"),
		Action:   query.Get("action"),
		Limit:    query.Get("limit"),
		Offset:   query.Get("offset"),
	})
	if err != nil {
		writeActivityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func summaryQuery(query url.Values) activityhttp.SummaryQuery {
	return activityhttp.SummaryQuery{
		StartDate: query.Get("startDate"),
		EndDate:   query.Get("endDate"),
	}
}
