package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"vulntrack/contexts/assessment-ops/report-service/domain/entities"
	domainerrors "vulntrack/contexts/assessment-ops/report-service/domain/errors"
	"vulntrack/contexts/assessment-ops/report-service/ports"
	"vulntrack/internal/shared/audit"
	"vulntrack/internal/shared/roles"
)

// Actor is the authenticated caller projected into the report context.
type Actor struct {
	ID        int64
	Role      roles.Role
	FirstName string
	LastName  string
}

func (a Actor) fullName() string {
	return a.FirstName + " " + a.LastName
}

// Service implements the report lifecycle, findings management with
// summary rollups, and client review notes.
type Service struct {
	Repo     ports.Repository
	Assets   ports.AssetDirectory
	Users    ports.UserDirectory
	Renderer ports.DocumentRenderer
	Clock    ports.Clock
	Recorder audit.Recorder
	Logger   *slog.Logger
}

// RequestMeta carries transport-level context for activity recording.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// CreateReportInput is the report intake payload. Tester identity,
// prepared-by and reviewed-by are derived server-side.
type CreateReportInput struct {
	ReportTitle        string
	AssetID            int64
	TestStartDate      time.Time
	TestEndDate        time.Time
	TotalTestDuration  string
	ExecutiveSummary   string
	NextScheduledTest  *time.Time
	DistributionEmails []string
}

// CreateFindingInput is the finding intake payload. FindingID is
// generated server-side.
type CreateFindingInput struct {
	VulnerabilityTitle  string
	Severity            string
	Impact              string
	Likelihood          string
	Category            string
	VulnerabilityStatus string
	NumberOfOccurrences int
	AffectedURLs        []string
	Description         string
	ProofOfConcept      string
	Recommendation      string
	References          []string
	AdditionalNotes     string
}

// CreateNoteInput is the review note intake payload.
type CreateNoteInput struct {
	AssetID     int64
	NoteContent string
	NoteType    string
	Priority    string
}

func isAdmin(actor Actor) bool {
	return actor.Role == roles.Admin || actor.Role == roles.SuperAdmin
}

// CreateReport opens a new report. Only testers create reports, and a
// new report always starts as Draft with the tester as preparer and
// the team leader who placed the tester as reviewer.
func (s Service) CreateReport(ctx context.Context, actor Actor, input CreateReportInput, meta RequestMeta) (ports.ReportDetail, error) {
	if actor.Role != roles.Tester {
		return ports.ReportDetail{}, domainerrors.ErrNotAuthorized
	}
	if strings.TrimSpace(input.ReportTitle) == "" || input.AssetID == 0 {
		return ports.ReportDetail{}, domainerrors.ErrInvalidRequest
	}
	asset, err := s.Assets.AssetInfo(ctx, input.AssetID)
	if err != nil {
		return ports.ReportDetail{}, err
	}

	reviewedBy := ""
	if asset.AssignedTesterByID != nil {
		leader, err := s.Users.UserRef(ctx, *asset.AssignedTesterByID)
		if err == nil {
			reviewedBy = leader.FullName()
		}
	}

	now := s.now()
	report := entities.Report{
		ReportTitle:        strings.TrimSpace(input.ReportTitle),
		AssetID:            input.AssetID,
		TesterName:         actor.fullName(),
		TestStartDate:      input.TestStartDate,
		TestEndDate:        input.TestEndDate,
		TotalTestDuration:  input.TotalTestDuration,
		ExecutiveSummary:   input.ExecutiveSummary,
		SeverityBreakdown:  map[string]int{},
		CurrentStatus:      entities.StatusDraft,
		PreparedBy:         actor.fullName(),
		ReviewedBy:         reviewedBy,
		NextScheduledTest:  input.NextScheduledTest,
		DistributionEmails: input.DistributionEmails,
		CreatedByID:        actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.Repo.CreateReport(ctx, report)
	if err != nil {
		return ports.ReportDetail{}, err
	}

	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeReportManagement,
		Action:       audit.ActionCreate,
		ResourceType: "report",
		ResourceID:   created.ID,
		ResourceName: created.ReportTitle,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})

	return s.Repo.GetReportDetail(ctx, created.ID)
}

// ListReports returns the reports visible to actor. Testers see their
// own work in any state. Team leaders see submitted work from testers
// they placed. Admins see final reports, client-admins final reports
// on assets they own.
func (s Service) ListReports(ctx context.Context, actor Actor) ([]ports.ReportDetail, error) {
	switch {
	case actor.Role == roles.Tester:
		return s.Repo.ListReportsByCreator(ctx, actor.ID)
	case actor.Role == roles.TeamLeader:
		return s.Repo.ListReportsForReviewer(ctx, actor.ID, []string{entities.StatusInReview, entities.StatusFinal})
	case isAdmin(actor):
		return s.Repo.ListReportsByStatus(ctx, entities.StatusFinal)
	case actor.Role == roles.ClientAdmin:
		return s.Repo.ListReportsByStatusAndOwner(ctx, entities.StatusFinal, actor.ID)
	default:
		return []ports.ReportDetail{}, nil
	}
}

// AssetReports lists every report filed against an asset.
func (s Service) AssetReports(ctx context.Context, assetID int64) ([]ports.ReportDetail, error) {
	return s.Repo.ListReportsByAsset(ctx, assetID)
}

func (s Service) GetReport(ctx context.Context, reportID int64) (ports.ReportDetail, error) {
	return s.Repo.GetReportDetail(ctx, reportID)
}

// UpdateReport applies a partial edit. Testers may only touch their
// own reports and may not finalize them. Team leaders may only touch
// reports governed by their tester assignments, and moving a report to
// Final stamps the finalized date.
func (s Service) UpdateReport(ctx context.Context, actor Actor, reportID int64, patch ports.ReportPatch, meta RequestMeta) (ports.ReportDetail, error) {
	report, err := s.Repo.GetReport(ctx, reportID)
	if err != nil {
		return ports.ReportDetail{}, err
	}

	switch actor.Role {
	case roles.Tester:
		if report.CreatedByID != actor.ID {
			return ports.ReportDetail{}, domainerrors.ErrNotAuthorized
		}
		if patch.CurrentStatus != nil && *patch.CurrentStatus == entities.StatusFinal {
			return ports.ReportDetail{}, domainerrors.ErrNotAuthorized
		}
	case roles.TeamLeader:
		asset, err := s.Assets.AssetInfo(ctx, report.AssetID)
		if err != nil {
			return ports.ReportDetail{}, err
		}
		if asset.AssignedTesterByID == nil || *asset.AssignedTesterByID != actor.ID {
			return ports.ReportDetail{}, domainerrors.ErrNotAuthorized
		}
		if patch.CurrentStatus != nil && *patch.CurrentStatus == entities.StatusFinal && report.CurrentStatus != entities.StatusFinal {
			finalized := s.now()
			patch.ReportFinalizedDate = &finalized
		}
	default:
		return ports.ReportDetail{}, domainerrors.ErrNotAuthorized
	}

	if patch.CurrentStatus != nil && !entities.ValidReportStatus(*patch.CurrentStatus) {
		return ports.ReportDetail{}, domainerrors.ErrInvalidRequest
	}

	updated, err := s.Repo.UpdateReport(ctx, reportID, patch, s.now())
	if err != nil {
		return ports.ReportDetail{}, err
	}

	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeReportManagement,
		Action:       audit.ActionUpdate,
		ResourceType: "report",
		ResourceID:   reportID,
		ResourceName: updated.ReportTitle,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})

	return s.Repo.GetReportDetail(ctx, reportID)
}

// DeleteReport removes a report with its findings and notes. A tester
// may only delete their own reports.
func (s Service) DeleteReport(ctx context.Context, actor Actor, reportID int64, meta RequestMeta) error {
	report, err := s.Repo.GetReport(ctx, reportID)
	if err != nil {
		return err
	}
	if actor.Role == roles.Tester && report.CreatedByID != actor.ID {
		return domainerrors.ErrNotAuthorized
	}
	if err := s.Repo.DeleteReportCascade(ctx, reportID); err != nil {
		return err
	}
	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeReportManagement,
		Action:       audit.ActionDelete,
		ResourceType: "report",
		ResourceID:   reportID,
		ResourceName: report.ReportTitle,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	return nil
}

// ListFindings returns a report's findings, newest first.
func (s Service) ListFindings(ctx context.Context, reportID int64) ([]entities.VulnerabilityFinding, error) {
	return s.Repo.ListFindingsByReport(ctx, reportID)
}

// CreateFinding documents a vulnerability under a report and recomputes
// the report's summary. Tester only.
func (s Service) CreateFinding(ctx context.Context, actor Actor, reportID int64, input CreateFindingInput, meta RequestMeta) (entities.VulnerabilityFinding, error) {
	if actor.Role != roles.Tester {
		return entities.VulnerabilityFinding{}, domainerrors.ErrNotAuthorized
	}
	if err := validateFindingInput(input); err != nil {
		return entities.VulnerabilityFinding{}, err
	}
	if _, err := s.Repo.GetReport(ctx, reportID); err != nil {
		return entities.VulnerabilityFinding{}, err
	}

	now := s.now()
	status := input.VulnerabilityStatus
	if status == "" {
		status = entities.FindingStatusNew
	}
	occurrences := input.NumberOfOccurrences
	if occurrences <= 0 {
		occurrences = 1
	}
	finding := entities.VulnerabilityFinding{
		ReportID:            reportID,
		FindingID:           s.newFindingID(now),
		VulnerabilityTitle:  strings.TrimSpace(input.VulnerabilityTitle),
		Severity:            input.Severity,
		Impact:              input.Impact,
		Likelihood:          input.Likelihood,
		Category:            input.Category,
		VulnerabilityStatus: status,
		NumberOfOccurrences: occurrences,
		AffectedURLs:        input.AffectedURLs,
		Description:         input.Description,
		ProofOfConcept:      input.ProofOfConcept,
		Recommendation:      input.Recommendation,
		References:          input.References,
		AdditionalNotes:     input.AdditionalNotes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	created, err := s.Repo.CreateFinding(ctx, finding)
	if err != nil {
		return entities.VulnerabilityFinding{}, err
	}
	if err := s.Repo.RecomputeSummary(ctx, reportID, now); err != nil {
		return entities.VulnerabilityFinding{}, err
	}

	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeReportManagement,
		Action:       audit.ActionCreate,
		ResourceType: "finding",
		ResourceID:   created.ID,
		ResourceName: created.FindingID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	return created, nil
}

// UpdateFinding edits a finding and recomputes the report summary.
// Tester only.
func (s Service) UpdateFinding(ctx context.Context, actor Actor, findingID int64, patch ports.FindingPatch, meta RequestMeta) (entities.VulnerabilityFinding, error) {
	if actor.Role != roles.Tester {
		return entities.VulnerabilityFinding{}, domainerrors.ErrNotAuthorized
	}
	if err := validateFindingPatch(patch); err != nil {
		return entities.VulnerabilityFinding{}, err
	}
	finding, err := s.Repo.GetFinding(ctx, findingID)
	if err != nil {
		return entities.VulnerabilityFinding{}, err
	}

	now := s.now()
	updated, err := s.Repo.UpdateFinding(ctx, findingID, patch, now)
	if err != nil {
		return entities.VulnerabilityFinding{}, err
	}
	if err := s.Repo.RecomputeSummary(ctx, finding.ReportID, now); err != nil {
		return entities.VulnerabilityFinding{}, err
	}

	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeReportManagement,
		Action:       audit.ActionUpdate,
		ResourceType: "finding",
		ResourceID:   findingID,
		ResourceName: updated.FindingID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	return updated, nil
}

// DeleteFinding removes a finding and recomputes the report summary.
// Tester only.
func (s Service) DeleteFinding(ctx context.Context, actor Actor, findingID int64, meta RequestMeta) error {
	if actor.Role != roles.Tester {
		return domainerrors.ErrNotAuthorized
	}
	finding, err := s.Repo.GetFinding(ctx, findingID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteFinding(ctx, findingID); err != nil {
		return err
	}
	if err := s.Repo.RecomputeSummary(ctx, finding.ReportID, s.now()); err != nil {
		return err
	}
	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeReportManagement,
		Action:       audit.ActionDelete,
		ResourceType: "finding",
		ResourceID:   findingID,
		ResourceName: finding.FindingID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	return nil
}

// CreateNote attaches a client review note to a report. Client team
// members only; a new note always opens as an Open Review note unless
// classified otherwise.
func (s Service) CreateNote(ctx context.Context, actor Actor, reportID int64, input CreateNoteInput, meta RequestMeta) (ports.NoteDetail, error) {
	if actor.Role != roles.ClientUser {
		return ports.NoteDetail{}, domainerrors.ErrNotAuthorized
	}
	if strings.TrimSpace(input.NoteContent) == "" || input.AssetID == 0 {
		return ports.NoteDetail{}, domainerrors.ErrInvalidRequest
	}
	if _, err := s.Repo.GetReport(ctx, reportID); err != nil {
		return ports.NoteDetail{}, err
	}

	noteType := input.NoteType
	if noteType == "" {
		noteType = entities.NoteTypeReview
	}
	priority := input.Priority
	if priority == "" {
		priority = entities.NotePriorityMedium
	}
	if !entities.ValidNoteType(noteType) || !entities.ValidNotePriority(priority) {
		return ports.NoteDetail{}, domainerrors.ErrInvalidRequest
	}

	now := s.now()
	note := entities.ReportNote{
		ReportID:    reportID,
		AssetID:     input.AssetID,
		AuthorID:    actor.ID,
		NoteContent: input.NoteContent,
		NoteType:    noteType,
		Priority:    priority,
		Status:      entities.NoteStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.Repo.CreateNote(ctx, note)
	if err != nil {
		return ports.NoteDetail{}, err
	}

	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeReportManagement,
		Action:       audit.ActionCreate,
		ResourceType: "report-note",
		ResourceID:   created.ID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})

	author, err := s.Users.UserRef(ctx, actor.ID)
	if err != nil {
		return ports.NoteDetail{Note: created}, nil
	}
	return ports.NoteDetail{Note: created, Author: &author}, nil
}

// ReportNotes lists a report's notes, newest first.
func (s Service) ReportNotes(ctx context.Context, reportID int64) ([]ports.NoteDetail, error) {
	return s.Repo.ListNotesByReport(ctx, reportID)
}

// AssetNotes lists every note across an asset's reports, newest first.
func (s Service) AssetNotes(ctx context.Context, assetID int64) ([]ports.NoteDetail, error) {
	return s.Repo.ListNotesByAsset(ctx, assetID)
}

// UpdateNote edits a note. Author only.
func (s Service) UpdateNote(ctx context.Context, actor Actor, noteID int64, patch ports.NotePatch, meta RequestMeta) (ports.NoteDetail, error) {
	note, err := s.Repo.GetNote(ctx, noteID)
	if err != nil {
		return ports.NoteDetail{}, err
	}
	if note.AuthorID != actor.ID {
		return ports.NoteDetail{}, domainerrors.ErrNotAuthorized
	}
	if err := validateNotePatch(patch); err != nil {
		return ports.NoteDetail{}, err
	}
	updated, err := s.Repo.UpdateNote(ctx, noteID, patch, s.now())
	if err != nil {
		return ports.NoteDetail{}, err
	}
	author, err := s.Users.UserRef(ctx, updated.AuthorID)
	if err != nil {
		return ports.NoteDetail{Note: updated}, nil
	}
	return ports.NoteDetail{Note: updated, Author: &author}, nil
}

// DeleteNote removes a note. Author only.
func (s Service) DeleteNote(ctx context.Context, actor Actor, noteID int64, meta RequestMeta) error {
	note, err := s.Repo.GetNote(ctx, noteID)
	if err != nil {
		return err
	}
	if note.AuthorID != actor.ID {
		return domainerrors.ErrNotAuthorized
	}
	if err := s.Repo.DeleteNote(ctx, noteID); err != nil {
		return err
	}
	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeReportManagement,
		Action:       audit.ActionDelete,
		ResourceType: "report-note",
		ResourceID:   noteID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	return nil
}

// RenderedDocument is a generated report document ready to serve.
type RenderedDocument struct {
	Content     []byte
	ContentType string
	Filename    string
}

// RenderDocument produces the downloadable report document for actors
// with standing on the report: admins always, the governing team
// leader, the authoring tester, or the asset's client side.
func (s Service) RenderDocument(ctx context.Context, actor Actor, reportID int64, meta RequestMeta) (RenderedDocument, error) {
	report, err := s.Repo.GetReport(ctx, reportID)
	if err != nil {
		return RenderedDocument{}, err
	}
	asset, err := s.Assets.AssetInfo(ctx, report.AssetID)
	if err != nil {
		return RenderedDocument{}, err
	}

	allowed := false
	switch {
	case isAdmin(actor):
		allowed = true
	case actor.Role == roles.TeamLeader:
		allowed = asset.AssignedByID != nil && *asset.AssignedByID == actor.ID
	case actor.Role == roles.Tester:
		allowed = report.CreatedByID == actor.ID
	case actor.Role == roles.ClientAdmin || actor.Role == roles.ClientUser:
		allowed = asset.ProjectOwnerID != nil && *asset.ProjectOwnerID == actor.ID
	}
	if !allowed {
		return RenderedDocument{}, domainerrors.ErrNotAuthorized
	}

	findings, err := s.Repo.ListFindingsByReport(ctx, reportID)
	if err != nil {
		return RenderedDocument{}, err
	}

	doc := ports.ReportDocument{Report: report, Asset: asset, Findings: findings}
	if tester, err := s.Users.UserRef(ctx, report.CreatedByID); err == nil {
		doc.Tester = &tester
	}
	if asset.ProjectOwnerID != nil {
		if owner, err := s.Users.UserRef(ctx, *asset.ProjectOwnerID); err == nil {
			doc.ProjectOwner = &owner
		}
	}

	content, err := s.Renderer.Render(doc)
	if err != nil {
		return RenderedDocument{}, err
	}

	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeReportManagement,
		Action:       audit.ActionView,
		ResourceType: "report-document",
		ResourceID:   reportID,
		Details:      map[string]any{"reportId": reportID, "userRole": string(actor.Role)},
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})

	return RenderedDocument{
		Content:     content,
		ContentType: s.Renderer.ContentType(),
		Filename:    fmt.Sprintf("Security_Report_%d", reportID),
	}, nil
}

// newFindingID builds the external finding identifier from the unix
// timestamp and a short random suffix.
func (s Service) newFindingID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("VUL-%d-%s", now.Unix(), suffix)
}

func validateFindingInput(input CreateFindingInput) error {
	if strings.TrimSpace(input.VulnerabilityTitle) == "" {
		return domainerrors.ErrInvalidRequest
	}
	if !entities.ValidSeverity(input.Severity) {
		return domainerrors.ErrInvalidRequest
	}
	if !entities.ValidImpact(input.Impact) || !entities.ValidImpact(input.Likelihood) {
		return domainerrors.ErrInvalidRequest
	}
	if input.VulnerabilityStatus != "" && !entities.ValidFindingStatus(input.VulnerabilityStatus) {
		return domainerrors.ErrInvalidRequest
	}
	return nil
}

func validateFindingPatch(patch ports.FindingPatch) error {
	if patch.Severity != nil && !entities.ValidSeverity(*patch.Severity) {
		return domainerrors.ErrInvalidRequest
	}
	if patch.Impact != nil && !entities.ValidImpact(*patch.Impact) {
		return domainerrors.ErrInvalidRequest
	}
	if patch.Likelihood != nil && !entities.ValidImpact(*patch.Likelihood) {
		return domainerrors.ErrInvalidRequest
	}
	if patch.VulnerabilityStatus != nil && !entities.ValidFindingStatus(*patch.VulnerabilityStatus) {
		return domainerrors.ErrInvalidRequest
	}
	return nil
}

func validateNotePatch(patch ports.NotePatch) error {
	if patch.NoteType != nil && !entities.ValidNoteType(*patch.NoteType) {
		return domainerrors.ErrInvalidRequest
	}
	if patch.Priority != nil && !entities.ValidNotePriority(*patch.Priority) {
		return domainerrors.ErrInvalidRequest
	}
	if patch.Status != nil && !entities.ValidNoteStatus(*patch.Status) {
		return domainerrors.ErrInvalidRequest
	}
	return nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) recorder() audit.Recorder {
	return audit.Resolve(s.Recorder)
}
