package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	reportapp "vulntrack/contexts/assessment-ops/report-service/application"
	reporterrors "vulntrack/contexts/assessment-ops/report-service/domain/errors"
	reporthttp "vulntrack/contexts/assessment-ops/report-service/transport/http"
	"vulntrack/contexts/identity-access/account-service/domain/entities"
)

func writeReportError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, reporthttp.ErrorResponse{Code: code, Message: message})
}

func writeReportDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reporterrors.ErrReportNotFound),
		errors.Is(err, reporterrors.ErrFindingNotFound),
		errors.Is(err, reporterrors.ErrNoteNotFound),
		errors.Is(err, reporterrors.ErrAssetNotFound),
		errors.Is(err, reporterrors.ErrUserNotFound):
		writeReportError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, reporterrors.ErrNotAuthorized):
		writeReportError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, reporterrors.ErrInvalidRequest):
		writeReportError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeReportError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func reportActor(user entities.User) reportapp.Actor {
	return reportapp.Actor{
		ID:        user.ID,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func reportMeta(r *http.Request) reportapp.RequestMeta {
	return reportapp.RequestMeta{
		IPAddress: resolveClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func requireReportID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	reportID, err := parsePathID(r, "report_id")
	if err != nil {
		writeReportError(w, http.StatusBadRequest, "invalid_request", "report_id must be an integer")
		return 0, false
	}
	return reportID, true
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.reports.Handler.ListReports(r.Context(), reportActor(actor))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req reporthttp.CreateReportRequest
	if !s.decodeJSON(w, r, &req, writeReportError) {
		return
	}
	resp, err := s.reports.Handler.CreateReport(r.Context(), reportActor(actor), req, reportMeta(r))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authenticate(w, r); !ok {
		return
	}
	reportID, ok := requireReportID(w, r)
	if !ok {
		return
	}
	resp, err := s.reports.Handler.GetReport(r.Context(), reportID)
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	reportID, ok := requireReportID(w, r)
	if !ok {
		return
	}
	var req reporthttp.UpdateReportRequest
	if !s.decodeJSON(w, r, &req, writeReportError) {
		return
	}
	resp, err := s.reports.Handler.UpdateReport(r.Context(), reportActor(actor), reportID, req, reportMeta(r))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	reportID, ok := requireReportID(w, r)
	if !ok {
		return
	}
	resp, err := s.reports.Handler.DeleteReport(r.Context(), reportActor(actor), reportID, reportMeta(r))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssetReports(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authenticate(w, r); !ok {
		return
	}
	assetID, err := parsePathID(r, "asset_id")
	if err != nil {
		writeReportError(w, http.StatusBadRequest, "invalid_request", "asset_id must be an integer")
		return
	}
	resp, err := s.reports.Handler.AssetReports(r.Context(), assetID)
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListFindings(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authenticate(w, r); !ok {
		return
	}
	reportID, ok := requireReportID(w, r)
	if !ok {
		return
	}
	resp, err := s.reports.Handler.ListFindings(r.Context(), reportID)
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateFinding(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	reportID, ok := requireReportID(w, r)
	if !ok {
		return
	}
	var req reporthttp.CreateFindingRequest
	if !s.decodeJSON(w, r, &req, writeReportError) {
		return
	}
	resp, err := s.reports.Handler.CreateFinding(r.Context(), reportActor(actor), reportID, req, reportMeta(r))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateFinding(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	findingID, err := parsePathID(r, "finding_id")
	if err != nil {
		writeReportError(w, http.StatusBadRequest, "invalid_request", "finding_id must be an integer")
		return
	}
	var req reporthttp.UpdateFindingRequest
	if !s.decodeJSON(w, r, &req, writeReportError) {
		return
	}
	resp, err := s.reports.Handler.UpdateFinding(r.Context(), reportActor(actor), findingID, req, reportMeta(r))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteFinding(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	findingID, err := parsePathID(r, "finding_id")
	if err != nil {
		writeReportError(w, http.StatusBadRequest, "invalid_request", "finding_id must be an integer")
		return
	}
	resp, err := s.reports.Handler.DeleteFinding(r.Context(), reportActor(actor), findingID, reportMeta(r))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReportNotes(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authenticate(w, r); !ok {
		return
	}
	reportID, ok := requireReportID(w, r)
	if !ok {
		return
	}
	resp, err := s.reports.Handler.ReportNotes(r.Context(), reportID)
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	reportID, ok := requireReportID(w, r)
	if !ok {
		return
	}
	var req reporthttp.CreateNoteRequest
	if !s.decodeJSON(w, r, &req, writeReportError) {
		return
	}
	resp, err := s.reports.Handler.CreateNote(r.Context(), reportActor(actor), reportID, req, reportMeta(r))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAssetNotes(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.authenticate(w, r); !ok {
		return
	}
	assetID, err := parsePathID(r, "asset_id")
	if err != nil {
		writeReportError(w, http.StatusBadRequest, "invalid_request", "asset_id must be an integer")
		return
	}
	resp, err := s.reports.Handler.AssetNotes(r.Context(), assetID)
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	noteID, err := parsePathID(r, "note_id")
	if err != nil {
		writeReportError(w, http.StatusBadRequest, "invalid_request", "note_id must be an integer")
		return
	}
	var req reporthttp.UpdateNoteRequest
	if !s.decodeJSON(w, r, &req, writeReportError) {
		return
	}
	resp, err := s.reports.Handler.UpdateNote(r.Context(), reportActor(actor), noteID, req, reportMeta(r))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	noteID, err := parsePathID(r, "note_id")
	if err != nil {
		writeReportError(w, http.StatusBadRequest, "invalid_request", "note_id must be an integer")
		return
	}
	resp, err := s.reports.Handler.DeleteNote(r.Context(), reportActor(actor), noteID, reportMeta(r))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReportDocument streams the rendered document instead of a JSON
// envelope.
func (s *Server) handleReportDocument(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	reportID, ok := requireReportID(w, r)
	if !ok {
		return
	}
	doc, err := s.reports.Handler.RenderDocument(r.Context(), reportActor(actor), reportID, reportMeta(r))
	if err != nil {
		writeReportDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}
