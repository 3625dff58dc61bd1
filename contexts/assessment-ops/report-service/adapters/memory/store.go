// Package memory provides an in-memory report repository for tests
// and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vulntrack/contexts/assessment-ops/report-service/domain/entities"
	domainerrors "vulntrack/contexts/assessment-ops/report-service/domain/errors"
	"vulntrack/contexts/assessment-ops/report-service/ports"
)

type Store struct {
	mu sync.RWMutex

	reports  map[int64]entities.Report
	findings map[int64]entities.VulnerabilityFinding
	notes    map[int64]entities.ReportNote
	users    map[int64]ports.UserRef
	assets   map[int64]ports.AssetInfo

	nextReportID  int64
	nextFindingID int64
	nextNoteID    int64
}

func NewStore() *Store {
	return &Store{
		reports:  make(map[int64]entities.Report),
		findings: make(map[int64]entities.VulnerabilityFinding),
		notes:    make(map[int64]entities.ReportNote),
		users:    make(map[int64]ports.UserRef),
		assets:   make(map[int64]ports.AssetInfo),
	}
}

// SeedUser registers a user reference for directory lookups.
func (s *Store) SeedUser(ref ports.UserRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[ref.ID] = ref
}

// SeedAsset registers an asset projection for directory lookups.
func (s *Store) SeedAsset(info ports.AssetInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[info.ID] = info
}

func (s *Store) UserRef(ctx context.Context, userID int64) (ports.UserRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.users[userID]
	if !ok {
		return ports.UserRef{}, domainerrors.ErrUserNotFound
	}
	return ref, nil
}

func (s *Store) AssetInfo(ctx context.Context, assetID int64) (ports.AssetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.assets[assetID]
	if !ok {
		return ports.AssetInfo{}, domainerrors.ErrAssetNotFound
	}
	return info, nil
}

func (s *Store) CreateReport(ctx context.Context, report entities.Report) (entities.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReportID++
	report.ID = s.nextReportID
	if report.SeverityBreakdown == nil {
		report.SeverityBreakdown = map[string]int{}
	}
	s.reports[report.ID] = report
	return report, nil
}

func (s *Store) GetReport(ctx context.Context, reportID int64) (entities.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[reportID]
	if !ok {
		return entities.Report{}, domainerrors.ErrReportNotFound
	}
	return report, nil
}

func (s *Store) GetReportDetail(ctx context.Context, reportID int64) (ports.ReportDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[reportID]
	if !ok {
		return ports.ReportDetail{}, domainerrors.ErrReportNotFound
	}
	return s.detail(report), nil
}

func (s *Store) UpdateReport(ctx context.Context, reportID int64, patch ports.ReportPatch, now time.Time) (entities.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[reportID]
	if !ok {
		return entities.Report{}, domainerrors.ErrReportNotFound
	}
	if patch.ReportTitle != nil {
		report.ReportTitle = *patch.ReportTitle
	}
	if patch.TestStartDate != nil {
		report.TestStartDate = *patch.TestStartDate
	}
	if patch.TestEndDate != nil {
		report.TestEndDate = *patch.TestEndDate
	}
	if patch.TotalTestDuration != nil {
		report.TotalTestDuration = *patch.TotalTestDuration
	}
	if patch.ExecutiveSummary != nil {
		report.ExecutiveSummary = *patch.ExecutiveSummary
	}
	if patch.CurrentStatus != nil {
		report.CurrentStatus = *patch.CurrentStatus
	}
	if patch.PreparedBy != nil {
		report.PreparedBy = *patch.PreparedBy
	}
	if patch.ReviewedBy != nil {
		report.ReviewedBy = *patch.ReviewedBy
	}
	if patch.ReportFinalizedDate != nil {
		finalized := *patch.ReportFinalizedDate
		report.ReportFinalizedDate = &finalized
	}
	if patch.NextScheduledTest != nil {
		next := *patch.NextScheduledTest
		report.NextScheduledTest = &next
	}
	if patch.DistributionEmails != nil {
		report.DistributionEmails = append([]string(nil), patch.DistributionEmails...)
	}
	report.UpdatedAt = now
	s.reports[reportID] = report
	return report, nil
}

func (s *Store) DeleteReportCascade(ctx context.Context, reportID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reports[reportID]; !ok {
		return domainerrors.ErrReportNotFound
	}
	delete(s.reports, reportID)
	for id, finding := range s.findings {
		if finding.ReportID == reportID {
			delete(s.findings, id)
		}
	}
	for id, note := range s.notes {
		if note.ReportID == reportID {
			delete(s.notes, id)
		}
	}
	return nil
}

func (s *Store) ListReportsByCreator(ctx context.Context, creatorID int64) ([]ports.ReportDetail, error) {
	return s.listWhere(func(report entities.Report) bool {
		return report.CreatedByID == creatorID
	}), nil
}

func (s *Store) ListReportsForReviewer(ctx context.Context, reviewerID int64, statuses []string) ([]ports.ReportDetail, error) {
	allowed := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		allowed[status] = true
	}
	return s.listWhere(func(report entities.Report) bool {
		if !allowed[report.CurrentStatus] {
			return false
		}
		asset, ok := s.assets[report.AssetID]
		return ok && asset.AssignedTesterByID != nil && *asset.AssignedTesterByID == reviewerID
	}), nil
}

func (s *Store) ListReportsByStatus(ctx context.Context, status string) ([]ports.ReportDetail, error) {
	return s.listWhere(func(report entities.Report) bool {
		return report.CurrentStatus == status
	}), nil
}

func (s *Store) ListReportsByStatusAndOwner(ctx context.Context, status string, ownerID int64) ([]ports.ReportDetail, error) {
	return s.listWhere(func(report entities.Report) bool {
		if report.CurrentStatus != status {
			return false
		}
		asset, ok := s.assets[report.AssetID]
		return ok && asset.ProjectOwnerID != nil && *asset.ProjectOwnerID == ownerID
	}), nil
}

func (s *Store) ListReportsByAsset(ctx context.Context, assetID int64) ([]ports.ReportDetail, error) {
	return s.listWhere(func(report entities.Report) bool {
		return report.AssetID == assetID
	}), nil
}

func (s *Store) listWhere(match func(entities.Report) bool) []ports.ReportDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	details := make([]ports.ReportDetail, 0)
	for _, report := range s.reports {
		if match(report) {
			details = append(details, s.detail(report))
		}
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].Report.CreatedAt.After(details[j].Report.CreatedAt)
	})
	return details
}

func (s *Store) detail(report entities.Report) ports.ReportDetail {
	detail := ports.ReportDetail{Report: report}
	if ref, ok := s.users[report.CreatedByID]; ok {
		detail.CreatedBy = &ref
	}
	if asset, ok := s.assets[report.AssetID]; ok {
		detail.Asset = &asset
	}
	return detail
}

func (s *Store) CreateFinding(ctx context.Context, finding entities.VulnerabilityFinding) (entities.VulnerabilityFinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFindingID++
	finding.ID = s.nextFindingID
	s.findings[finding.ID] = finding
	return finding, nil
}

func (s *Store) GetFinding(ctx context.Context, findingID int64) (entities.VulnerabilityFinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	finding, ok := s.findings[findingID]
	if !ok {
		return entities.VulnerabilityFinding{}, domainerrors.ErrFindingNotFound
	}
	return finding, nil
}

func (s *Store) UpdateFinding(ctx context.Context, findingID int64, patch ports.FindingPatch, now time.Time) (entities.VulnerabilityFinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	finding, ok := s.findings[findingID]
	if !ok {
		return entities.VulnerabilityFinding{}, domainerrors.ErrFindingNotFound
	}
	if patch.VulnerabilityTitle != nil {
		finding.VulnerabilityTitle = *patch.VulnerabilityTitle
	}
	if patch.Severity != nil {
		finding.Severity = *patch.Severity
	}
	if patch.Impact != nil {
		finding.Impact = *patch.Impact
	}
	if patch.Likelihood != nil {
		finding.Likelihood = *patch.Likelihood
	}
	if patch.Category != nil {
		finding.Category = *patch.Category
	}
	if patch.VulnerabilityStatus != nil {
		finding.VulnerabilityStatus = *patch.VulnerabilityStatus
	}
	if patch.NumberOfOccurrences != nil {
		finding.NumberOfOccurrences = *patch.NumberOfOccurrences
	}
	if patch.AffectedURLs != nil {
		finding.AffectedURLs = append([]string(nil), patch.AffectedURLs...)
	}
	if patch.Description != nil {
		finding.Description = *patch.Description
	}
	if patch.ProofOfConcept != nil {
		finding.ProofOfConcept = *patch.ProofOfConcept
	}
	if patch.Recommendation != nil {
		finding.Recommendation = *patch.Recommendation
	}
	if patch.References != nil {
		finding.References = append([]string(nil), patch.References...)
	}
	if patch.AdditionalNotes != nil {
		finding.AdditionalNotes = *patch.AdditionalNotes
	}
	finding.UpdatedAt = now
	s.findings[findingID] = finding
	return finding, nil
}

func (s *Store) DeleteFinding(ctx context.Context, findingID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findings[findingID]; !ok {
		return domainerrors.ErrFindingNotFound
	}
	delete(s.findings, findingID)
	return nil
}

func (s *Store) ListFindingsByReport(ctx context.Context, reportID int64) ([]entities.VulnerabilityFinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findingsOf(reportID), nil
}

func (s *Store) findingsOf(reportID int64) []entities.VulnerabilityFinding {
	findings := make([]entities.VulnerabilityFinding, 0)
	for _, finding := range s.findings {
		if finding.ReportID == reportID {
			findings = append(findings, finding)
		}
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].CreatedAt.Equal(findings[j].CreatedAt) {
			return findings[i].ID > findings[j].ID
		}
		return findings[i].CreatedAt.After(findings[j].CreatedAt)
	})
	return findings
}

func (s *Store) RecomputeSummary(ctx context.Context, reportID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[reportID]
	if !ok {
		return domainerrors.ErrReportNotFound
	}
	summary := entities.Summarize(s.findingsOf(reportID))
	report.TotalFindings = summary.Total
	report.SeverityBreakdown = summary.Breakdown
	report.OverallRiskRating = summary.Rating
	report.UpdatedAt = now
	s.reports[reportID] = report
	return nil
}

func (s *Store) CreateNote(ctx context.Context, note entities.ReportNote) (entities.ReportNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNoteID++
	note.ID = s.nextNoteID
	s.notes[note.ID] = note
	return note, nil
}

func (s *Store) GetNote(ctx context.Context, noteID int64) (entities.ReportNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[noteID]
	if !ok {
		return entities.ReportNote{}, domainerrors.ErrNoteNotFound
	}
	return note, nil
}

func (s *Store) UpdateNote(ctx context.Context, noteID int64, patch ports.NotePatch, now time.Time) (entities.ReportNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[noteID]
	if !ok {
		return entities.ReportNote{}, domainerrors.ErrNoteNotFound
	}
	if patch.NoteContent != nil {
		note.NoteContent = *patch.NoteContent
	}
	if patch.NoteType != nil {
		note.NoteType = *patch.NoteType
	}
	if patch.Priority != nil {
		note.Priority = *patch.Priority
	}
	if patch.Status != nil {
		note.Status = *patch.Status
	}
	note.UpdatedAt = now
	s.notes[noteID] = note
	return note, nil
}

func (s *Store) DeleteNote(ctx context.Context, noteID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[noteID]; !ok {
		return domainerrors.ErrNoteNotFound
	}
	delete(s.notes, noteID)
	return nil
}

func (s *Store) ListNotesByReport(ctx context.Context, reportID int64) ([]ports.NoteDetail, error) {
	return s.listNotes(func(note entities.ReportNote) bool {
		return note.ReportID == reportID
	}), nil
}

func (s *Store) ListNotesByAsset(ctx context.Context, assetID int64) ([]ports.NoteDetail, error) {
	return s.listNotes(func(note entities.ReportNote) bool {
		return note.AssetID == assetID
	}), nil
}

func (s *Store) listNotes(match func(entities.ReportNote) bool) []ports.NoteDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	details := make([]ports.NoteDetail, 0)
	for _, note := range s.notes {
		if match(note) {
			detail := ports.NoteDetail{Note: note}
			if ref, ok := s.users[note.AuthorID]; ok {
				detail.Author = &ref
			}
			details = append(details, detail)
		}
	}
	sort.Slice(details, func(i, j int) bool {
		if details[i].Note.CreatedAt.Equal(details[j].Note.CreatedAt) {
			return details[i].Note.ID > details[j].Note.ID
		}
		return details[i].Note.CreatedAt.After(details[j].Note.CreatedAt)
	})
	return details
}
