// Package httpadapter adapts the report application service to the
// transport DTO contract. Routing, decoding and error mapping live in
// the platform HTTP server.
package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"vulntrack/contexts/assessment-ops/report-service/application"
	"vulntrack/contexts/assessment-ops/report-service/domain/entities"
	domainerrors "vulntrack/contexts/assessment-ops/report-service/domain/errors"
	"vulntrack/contexts/assessment-ops/report-service/ports"
	httptransport "vulntrack/contexts/assessment-ops/report-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) CreateReport(ctx context.Context, actor application.Actor, req httptransport.CreateReportRequest, meta application.RequestMeta) (httptransport.ReportResponse, error) {
	start, err := parseDate(req.TestStartDate)
	if err != nil {
		return httptransport.ReportResponse{}, domainerrors.ErrInvalidRequest
	}
	end, err := parseDate(req.TestEndDate)
	if err != nil {
		return httptransport.ReportResponse{}, domainerrors.ErrInvalidRequest
	}
	next, err := parseOptionalDate(req.NextScheduledTest)
	if err != nil {
		return httptransport.ReportResponse{}, domainerrors.ErrInvalidRequest
	}

	detail, err := h.Service.CreateReport(ctx, actor, application.CreateReportInput{
		ReportTitle:        req.ReportTitle,
		AssetID:            req.AssociatedAssetID,
		TestStartDate:      start,
		TestEndDate:        end,
		TotalTestDuration:  req.TotalTestDuration,
		ExecutiveSummary:   req.ExecutiveSummary,
		NextScheduledTest:  next,
		DistributionEmails: req.DistributionEmails,
	}, meta)
	if err != nil {
		return httptransport.ReportResponse{}, err
	}
	return httptransport.ReportResponse{Status: "success", Data: toReportData(detail)}, nil
}

func (h Handler) ListReports(ctx context.Context, actor application.Actor) (httptransport.ReportListResponse, error) {
	details, err := h.Service.ListReports(ctx, actor)
	if err != nil {
		return httptransport.ReportListResponse{}, err
	}
	return httptransport.ReportListResponse{Status: "success", Data: toReportList(details)}, nil
}

func (h Handler) AssetReports(ctx context.Context, assetID int64) (httptransport.ReportListResponse, error) {
	details, err := h.Service.AssetReports(ctx, assetID)
	if err != nil {
		return httptransport.ReportListResponse{}, err
	}
	return httptransport.ReportListResponse{Status: "success", Data: toReportList(details)}, nil
}

func (h Handler) GetReport(ctx context.Context, reportID int64) (httptransport.ReportResponse, error) {
	detail, err := h.Service.GetReport(ctx, reportID)
	if err != nil {
		return httptransport.ReportResponse{}, err
	}
	return httptransport.ReportResponse{Status: "success", Data: toReportData(detail)}, nil
}

func (h Handler) UpdateReport(ctx context.Context, actor application.Actor, reportID int64, req httptransport.UpdateReportRequest, meta application.RequestMeta) (httptransport.ReportResponse, error) {
	patch := ports.ReportPatch{
		ReportTitle:        req.ReportTitle,
		TotalTestDuration:  req.TotalTestDuration,
		ExecutiveSummary:   req.ExecutiveSummary,
		CurrentStatus:      req.CurrentStatus,
		PreparedBy:         req.PreparedBy,
		ReviewedBy:         req.ReviewedBy,
		DistributionEmails: req.DistributionEmails,
	}
	for _, field := range []struct {
		raw  *string
		dest **time.Time
	}{
		{req.TestStartDate, &patch.TestStartDate},
		{req.TestEndDate, &patch.TestEndDate},
		{req.NextScheduledTest, &patch.NextScheduledTest},
	} {
		if field.raw == nil {
			continue
		}
		parsed, err := parseDate(*field.raw)
		if err != nil {
			return httptransport.ReportResponse{}, domainerrors.ErrInvalidRequest
		}
		*field.dest = &parsed
	}

	detail, err := h.Service.UpdateReport(ctx, actor, reportID, patch, meta)
	if err != nil {
		return httptransport.ReportResponse{}, err
	}
	return httptransport.ReportResponse{Status: "success", Data: toReportData(detail)}, nil
}

func (h Handler) DeleteReport(ctx context.Context, actor application.Actor, reportID int64, meta application.RequestMeta) (httptransport.MessageResponse, error) {
	if err := h.Service.DeleteReport(ctx, actor, reportID, meta); err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Status: "success", Message: "Report deleted successfully"}, nil
}

func (h Handler) ListFindings(ctx context.Context, reportID int64) (httptransport.FindingListResponse, error) {
	findings, err := h.Service.ListFindings(ctx, reportID)
	if err != nil {
		return httptransport.FindingListResponse{}, err
	}
	items := make([]httptransport.FindingData, 0, len(findings))
	for _, finding := range findings {
		items = append(items, toFindingData(finding))
	}
	return httptransport.FindingListResponse{Status: "success", Data: items}, nil
}

func (h Handler) CreateFinding(ctx context.Context, actor application.Actor, reportID int64, req httptransport.CreateFindingRequest, meta application.RequestMeta) (httptransport.FindingResponse, error) {
	finding, err := h.Service.CreateFinding(ctx, actor, reportID, application.CreateFindingInput{
		VulnerabilityTitle:  req.VulnerabilityTitle,
		Severity:            req.Severity,
		Impact:              req.Impact,
		Likelihood:          req.Likelihood,
		Category:            req.Category,
		VulnerabilityStatus: req.VulnerabilityStatus,
		NumberOfOccurrences: req.NumberOfOccurrences,
		AffectedURLs:        req.AffectedURLs,
		Description:         req.Description,
		ProofOfConcept:      req.ProofOfConcept,
		Recommendation:      req.Recommendation,
		References:          req.References,
		AdditionalNotes:     req.AdditionalNotes,
	}, meta)
	if err != nil {
		return httptransport.FindingResponse{}, err
	}
	return httptransport.FindingResponse{Status: "success", Data: toFindingData(finding)}, nil
}

func (h Handler) UpdateFinding(ctx context.Context, actor application.Actor, findingID int64, req httptransport.UpdateFindingRequest, meta application.RequestMeta) (httptransport.FindingResponse, error) {
	finding, err := h.Service.UpdateFinding(ctx, actor, findingID, ports.FindingPatch{
		VulnerabilityTitle:  req.VulnerabilityTitle,
		Severity:            req.Severity,
		Impact:              req.Impact,
		Likelihood:          req.Likelihood,
		Category:            req.Category,
		VulnerabilityStatus: req.VulnerabilityStatus,
		NumberOfOccurrences: req.NumberOfOccurrences,
		AffectedURLs:        req.AffectedURLs,
		Description:         req.Description,
		ProofOfConcept:      req.ProofOfConcept,
		Recommendation:      req.Recommendation,
		References:          req.References,
		AdditionalNotes:     req.AdditionalNotes,
	}, meta)
	if err != nil {
		return httptransport.FindingResponse{}, err
	}
	return httptransport.FindingResponse{Status: "success", Data: toFindingData(finding)}, nil
}

func (h Handler) DeleteFinding(ctx context.Context, actor application.Actor, findingID int64, meta application.RequestMeta) (httptransport.MessageResponse, error) {
	if err := h.Service.DeleteFinding(ctx, actor, findingID, meta); err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Status: "success", Message: "Vulnerability finding deleted successfully"}, nil
}

func (h Handler) CreateNote(ctx context.Context, actor application.Actor, reportID int64, req httptransport.CreateNoteRequest, meta application.RequestMeta) (httptransport.NoteResponse, error) {
	detail, err := h.Service.CreateNote(ctx, actor, reportID, application.CreateNoteInput{
		AssetID:     req.AssetID,
		NoteContent: req.NoteContent,
		NoteType:    req.NoteType,
		Priority:    req.Priority,
	}, meta)
	if err != nil {
		return httptransport.NoteResponse{}, err
	}
	return httptransport.NoteResponse{Status: "success", Data: toNoteData(detail)}, nil
}

func (h Handler) ReportNotes(ctx context.Context, reportID int64) (httptransport.NoteListResponse, error) {
	details, err := h.Service.ReportNotes(ctx, reportID)
	if err != nil {
		return httptransport.NoteListResponse{}, err
	}
	return httptransport.NoteListResponse{Status: "success", Data: toNoteList(details)}, nil
}

func (h Handler) AssetNotes(ctx context.Context, assetID int64) (httptransport.NoteListResponse, error) {
	details, err := h.Service.AssetNotes(ctx, assetID)
	if err != nil {
		return httptransport.NoteListResponse{}, err
	}
	return httptransport.NoteListResponse{Status: "success", Data: toNoteList(details)}, nil
}

func (h Handler) UpdateNote(ctx context.Context, actor application.Actor, noteID int64, req httptransport.UpdateNoteRequest, meta application.RequestMeta) (httptransport.NoteResponse, error) {
	detail, err := h.Service.UpdateNote(ctx, actor, noteID, ports.NotePatch{
		NoteContent: req.NoteContent,
		NoteType:    req.NoteType,
		Priority:    req.Priority,
		Status:      req.Status,
	}, meta)
	if err != nil {
		return httptransport.NoteResponse{}, err
	}
	return httptransport.NoteResponse{Status: "success", Data: toNoteData(detail)}, nil
}

func (h Handler) DeleteNote(ctx context.Context, actor application.Actor, noteID int64, meta application.RequestMeta) (httptransport.MessageResponse, error) {
	if err := h.Service.DeleteNote(ctx, actor, noteID, meta); err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Status: "success", Message: "Note deleted successfully"}, nil
}

func (h Handler) RenderDocument(ctx context.Context, actor application.Actor, reportID int64, meta application.RequestMeta) (application.RenderedDocument, error) {
	return h.Service.RenderDocument(ctx, actor, reportID, meta)
}

func toReportList(details []ports.ReportDetail) []httptransport.ReportData {
	items := make([]httptransport.ReportData, 0, len(details))
	for _, detail := range details {
		items = append(items, toReportData(detail))
	}
	return items
}

func toReportData(detail ports.ReportDetail) httptransport.ReportData {
	report := detail.Report
	breakdown := report.SeverityBreakdown
	if breakdown == nil {
		breakdown = map[string]int{}
	}
	data := httptransport.ReportData{
		ID:                  report.ID,
		ReportTitle:         report.ReportTitle,
		TesterName:          report.TesterName,
		TestStartDate:       formatDate(report.TestStartDate),
		TestEndDate:         formatDate(report.TestEndDate),
		TotalTestDuration:   report.TotalTestDuration,
		ExecutiveSummary:    report.ExecutiveSummary,
		TotalFindings:       report.TotalFindings,
		SeverityBreakdown:   breakdown,
		OverallRiskRating:   report.OverallRiskRating,
		CurrentStatus:       report.CurrentStatus,
		PreparedBy:          report.PreparedBy,
		ReviewedBy:          report.ReviewedBy,
		ReportFinalizedDate: formatOptionalDate(report.ReportFinalizedDate),
		NextScheduledTest:   formatOptionalDate(report.NextScheduledTest),
		DistributionEmails:  emptyIfNil(report.DistributionEmails),
		CreatedAt:           formatTime(report.CreatedAt),
		UpdatedAt:           formatTime(report.UpdatedAt),
	}
	if detail.Asset != nil {
		data.AssociatedAsset = &httptransport.AssetRefData{
			ID:          detail.Asset.ID,
			ProjectName: detail.Asset.ProjectName,
			AssetName:   detail.Asset.AssetName,
			AssetURL:    detail.Asset.AssetURL,
		}
	}
	if detail.CreatedBy != nil {
		data.CreatedBy = toUserRefData(*detail.CreatedBy)
	}
	return data
}

func toFindingData(finding entities.VulnerabilityFinding) httptransport.FindingData {
	return httptransport.FindingData{
		ID:                  finding.ID,
		ReportID:            finding.ReportID,
		FindingID:           finding.FindingID,
		VulnerabilityTitle:  finding.VulnerabilityTitle,
		Severity:            finding.Severity,
		Impact:              finding.Impact,
		Likelihood:          finding.Likelihood,
		Category:            finding.Category,
		VulnerabilityStatus: finding.VulnerabilityStatus,
		NumberOfOccurrences: finding.NumberOfOccurrences,
		AffectedURLs:        emptyIfNil(finding.AffectedURLs),
		Description:         finding.Description,
		ProofOfConcept:      finding.ProofOfConcept,
		Recommendation:      finding.Recommendation,
		References:          emptyIfNil(finding.References),
		AdditionalNotes:     finding.AdditionalNotes,
		CreatedAt:           formatTime(finding.CreatedAt),
		UpdatedAt:           formatTime(finding.UpdatedAt),
	}
}

func toNoteList(details []ports.NoteDetail) []httptransport.NoteData {
	items := make([]httptransport.NoteData, 0, len(details))
	for _, detail := range details {
		items = append(items, toNoteData(detail))
	}
	return items
}

func toNoteData(detail ports.NoteDetail) httptransport.NoteData {
	note := detail.Note
	data := httptransport.NoteData{
		ID:          note.ID,
		ReportID:    note.ReportID,
		AssetID:     note.AssetID,
		NoteContent: note.NoteContent,
		NoteType:    note.NoteType,
		Priority:    note.Priority,
		Status:      note.Status,
		CreatedAt:   formatTime(note.CreatedAt),
		UpdatedAt:   formatTime(note.UpdatedAt),
	}
	if detail.Author != nil {
		data.Author = toUserRefData(*detail.Author)
	}
	return data
}

func toUserRefData(ref ports.UserRef) *httptransport.UserRefData {
	return &httptransport.UserRefData{
		ID:        ref.ID,
		Username:  ref.Username,
		FirstName: ref.FirstName,
		LastName:  ref.LastName,
		Role:      string(ref.Role),
	}
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
