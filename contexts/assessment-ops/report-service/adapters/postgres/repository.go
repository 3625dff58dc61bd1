package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"vulntrack/contexts/assessment-ops/report-service/domain/entities"
	domainerrors "vulntrack/contexts/assessment-ops/report-service/domain/errors"
	"vulntrack/contexts/assessment-ops/report-service/ports"
	"vulntrack/internal/shared/roles"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// SystemClock satisfies ports.Clock with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

func (r *Repository) CreateReport(ctx context.Context, report entities.Report) (entities.Report, error) {
	row, err := toReportModel(report)
	if err != nil {
		return entities.Report{}, err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Report{}, err
	}
	return row.toEntity()
}

func (r *Repository) GetReport(ctx context.Context, reportID int64) (entities.Report, error) {
	var row reportModel
	err := r.db.WithContext(ctx).Where("id = ?", reportID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Report{}, domainerrors.ErrReportNotFound
		}
		return entities.Report{}, err
	}
	return row.toEntity()
}

func (r *Repository) GetReportDetail(ctx context.Context, reportID int64) (ports.ReportDetail, error) {
	report, err := r.GetReport(ctx, reportID)
	if err != nil {
		return ports.ReportDetail{}, err
	}
	details, err := r.attachRefs(ctx, []entities.Report{report})
	if err != nil {
		return ports.ReportDetail{}, err
	}
	return details[0], nil
}

func (r *Repository) UpdateReport(ctx context.Context, reportID int64, patch ports.ReportPatch, now time.Time) (entities.Report, error) {
	updates := map[string]any{"updated_at": now.UTC()}
	if patch.ReportTitle != nil {
		updates["report_title"] = *patch.ReportTitle
	}
	if patch.TestStartDate != nil {
		updates["test_start_date"] = patch.TestStartDate.UTC()
	}
	if patch.TestEndDate != nil {
		updates["test_end_date"] = patch.TestEndDate.UTC()
	}
	if patch.TotalTestDuration != nil {
		updates["total_test_duration"] = *patch.TotalTestDuration
	}
	if patch.ExecutiveSummary != nil {
		updates["executive_summary"] = *patch.ExecutiveSummary
	}
	if patch.CurrentStatus != nil {
		updates["current_status"] = *patch.CurrentStatus
	}
	if patch.PreparedBy != nil {
		updates["prepared_by"] = *patch.PreparedBy
	}
	if patch.ReviewedBy != nil {
		updates["reviewed_by"] = *patch.ReviewedBy
	}
	if patch.ReportFinalizedDate != nil {
		updates["report_finalized_date"] = patch.ReportFinalizedDate.UTC()
	}
	if patch.NextScheduledTest != nil {
		updates["next_scheduled_test"] = patch.NextScheduledTest.UTC()
	}
	if patch.DistributionEmails != nil {
		updates["distribution_emails"] = copyOrEmpty(patch.DistributionEmails)
	}

	result := r.db.WithContext(ctx).
		Model(&reportModel{}).
		Where("id = ?", reportID).
		Updates(updates)
	if result.Error != nil {
		return entities.Report{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Report{}, domainerrors.ErrReportNotFound
	}
	return r.GetReport(ctx, reportID)
}

// DeleteReportCascade removes the report with its findings and notes
// in one transaction.
func (r *Repository) DeleteReportCascade(ctx context.Context, reportID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", reportID).Delete(&findingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&noteModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", reportID).Delete(&reportModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrReportNotFound
		}
		return nil
	})
}

func (r *Repository) ListReportsByCreator(ctx context.Context, creatorID int64) ([]ports.ReportDetail, error) {
	return r.listReports(ctx, r.db.WithContext(ctx).Where("created_by_id = ?", creatorID))
}

// ListReportsForReviewer returns reports on assets whose tester was
// placed by reviewerID, restricted to the given statuses.
func (r *Repository) ListReportsForReviewer(ctx context.Context, reviewerID int64, statuses []string) ([]ports.ReportDetail, error) {
	return r.listReports(ctx, r.db.WithContext(ctx).
		Where("asset_id IN (?)",
			r.db.Model(&assetInfoModel{}).Select("id").Where("assigned_tester_by_id = ?", reviewerID)).
		Where("current_status IN ?", statuses))
}

func (r *Repository) ListReportsByStatus(ctx context.Context, status string) ([]ports.ReportDetail, error) {
	return r.listReports(ctx, r.db.WithContext(ctx).Where("current_status = ?", status))
}

func (r *Repository) ListReportsByStatusAndOwner(ctx context.Context, status string, ownerID int64) ([]ports.ReportDetail, error) {
	return r.listReports(ctx, r.db.WithContext(ctx).
		Where("current_status = ?", status).
		Where("asset_id IN (?)",
			r.db.Model(&assetInfoModel{}).Select("id").Where("project_owner_id = ?", ownerID)))
}

func (r *Repository) ListReportsByAsset(ctx context.Context, assetID int64) ([]ports.ReportDetail, error) {
	return r.listReports(ctx, r.db.WithContext(ctx).Where("asset_id = ?", assetID))
}

func (r *Repository) listReports(ctx context.Context, tx *gorm.DB) ([]ports.ReportDetail, error) {
	var rows []reportModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	reports := make([]entities.Report, 0, len(rows))
	for _, row := range rows {
		report, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return r.attachRefs(ctx, reports)
}

func (r *Repository) CreateFinding(ctx context.Context, finding entities.VulnerabilityFinding) (entities.VulnerabilityFinding, error) {
	row := toFindingModel(finding)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.VulnerabilityFinding{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetFinding(ctx context.Context, findingID int64) (entities.VulnerabilityFinding, error) {
	var row findingModel
	err := r.db.WithContext(ctx).Where("id = ?", findingID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VulnerabilityFinding{}, domainerrors.ErrFindingNotFound
		}
		return entities.VulnerabilityFinding{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateFinding(ctx context.Context, findingID int64, patch ports.FindingPatch, now time.Time) (entities.VulnerabilityFinding, error) {
	updates := map[string]any{"updated_at": now.UTC()}
	if patch.VulnerabilityTitle != nil {
		updates["vulnerability_title"] = *patch.VulnerabilityTitle
	}
	if patch.Severity != nil {
		updates["severity"] = *patch.Severity
	}
	if patch.Impact != nil {
		updates["impact"] = *patch.Impact
	}
	if patch.Likelihood != nil {
		updates["likelihood"] = *patch.Likelihood
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.VulnerabilityStatus != nil {
		updates["vulnerability_status"] = *patch.VulnerabilityStatus
	}
	if patch.NumberOfOccurrences != nil {
		updates["number_of_occurrences"] = *patch.NumberOfOccurrences
	}
	if patch.AffectedURLs != nil {
		updates["affected_urls"] = copyOrEmpty(patch.AffectedURLs)
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.ProofOfConcept != nil {
		updates["proof_of_concept"] = *patch.ProofOfConcept
	}
	if patch.Recommendation != nil {
		updates["recommendation"] = *patch.Recommendation
	}
	if patch.References != nil {
		updates["refs"] = copyOrEmpty(patch.References)
	}
	if patch.AdditionalNotes != nil {
		updates["additional_notes"] = *patch.AdditionalNotes
	}

	result := r.db.WithContext(ctx).
		Model(&findingModel{}).
		Where("id = ?", findingID).
		Updates(updates)
	if result.Error != nil {
		return entities.VulnerabilityFinding{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.VulnerabilityFinding{}, domainerrors.ErrFindingNotFound
	}
	return r.GetFinding(ctx, findingID)
}

func (r *Repository) DeleteFinding(ctx context.Context, findingID int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", findingID).Delete(&findingModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrFindingNotFound
	}
	return nil
}

func (r *Repository) ListFindingsByReport(ctx context.Context, reportID int64) ([]entities.VulnerabilityFinding, error) {
	var rows []findingModel
	err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	findings := make([]entities.VulnerabilityFinding, 0, len(rows))
	for _, row := range rows {
		findings = append(findings, row.toEntity())
	}
	return findings, nil
}

// RecomputeSummary locks the report row, rereads its findings and
// writes the derived rollup, all in one transaction so concurrent
// finding edits cannot interleave stale summaries.
func (r *Repository) RecomputeSummary(ctx context.Context, reportID int64, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row reportModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", reportID).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrReportNotFound
			}
			return err
		}

		var findingRows []findingModel
		if err := tx.Where("report_id = ?", reportID).Find(&findingRows).Error; err != nil {
			return err
		}
		findings := make([]entities.VulnerabilityFinding, 0, len(findingRows))
		for _, finding := range findingRows {
			findings = append(findings, finding.toEntity())
		}

		summary := entities.Summarize(findings)
		breakdown, err := json.Marshal(summary.Breakdown)
		if err != nil {
			return err
		}
		return tx.Model(&reportModel{}).
			Where("id = ?", reportID).
			Updates(map[string]any{
				"total_findings":      summary.Total,
				"severity_breakdown":  string(breakdown),
				"overall_risk_rating": summary.Rating,
				"updated_at":          now.UTC(),
			}).
			Error
	})
}

func (r *Repository) CreateNote(ctx context.Context, note entities.ReportNote) (entities.ReportNote, error) {
	row := toNoteModel(note)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.ReportNote{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetNote(ctx context.Context, noteID int64) (entities.ReportNote, error) {
	var row noteModel
	err := r.db.WithContext(ctx).Where("id = ?", noteID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ReportNote{}, domainerrors.ErrNoteNotFound
		}
		return entities.ReportNote{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateNote(ctx context.Context, noteID int64, patch ports.NotePatch, now time.Time) (entities.ReportNote, error) {
	updates := map[string]any{"updated_at": now.UTC()}
	if patch.NoteContent != nil {
		updates["note_content"] = *patch.NoteContent
	}
	if patch.NoteType != nil {
		updates["note_type"] = *patch.NoteType
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}

	result := r.db.WithContext(ctx).
		Model(&noteModel{}).
		Where("id = ?", noteID).
		Updates(updates)
	if result.Error != nil {
		return entities.ReportNote{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ReportNote{}, domainerrors.ErrNoteNotFound
	}
	return r.GetNote(ctx, noteID)
}

func (r *Repository) DeleteNote(ctx context.Context, noteID int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", noteID).Delete(&noteModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNoteNotFound
	}
	return nil
}

func (r *Repository) ListNotesByReport(ctx context.Context, reportID int64) ([]ports.NoteDetail, error) {
	return r.listNotes(ctx, r.db.WithContext(ctx).Where("report_id = ?", reportID))
}

func (r *Repository) ListNotesByAsset(ctx context.Context, assetID int64) ([]ports.NoteDetail, error) {
	return r.listNotes(ctx, r.db.WithContext(ctx).Where("asset_id = ?", assetID))
}

func (r *Repository) listNotes(ctx context.Context, tx *gorm.DB) ([]ports.NoteDetail, error) {
	var rows []noteModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.AuthorID)
	}
	refs, err := r.userRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	details := make([]ports.NoteDetail, 0, len(rows))
	for _, row := range rows {
		detail := ports.NoteDetail{Note: row.toEntity()}
		if ref, ok := refs[row.AuthorID]; ok {
			detail.Author = &ref
		}
		details = append(details, detail)
	}
	return details, nil
}

func (r *Repository) attachRefs(ctx context.Context, reports []entities.Report) ([]ports.ReportDetail, error) {
	userIDs := make([]int64, 0, len(reports))
	assetIDs := make([]int64, 0, len(reports))
	for _, report := range reports {
		userIDs = append(userIDs, report.CreatedByID)
		assetIDs = append(assetIDs, report.AssetID)
	}
	refs, err := r.userRefs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	assets, err := r.assetInfos(ctx, assetIDs)
	if err != nil {
		return nil, err
	}
	details := make([]ports.ReportDetail, 0, len(reports))
	for _, report := range reports {
		detail := ports.ReportDetail{Report: report}
		if ref, ok := refs[report.CreatedByID]; ok {
			detail.CreatedBy = &ref
		}
		if asset, ok := assets[report.AssetID]; ok {
			detail.Asset = &asset
		}
		details = append(details, detail)
	}
	return details, nil
}

// userRefs reads the identity context's users table read-only; the
// account service owns all writes to it.
func (r *Repository) userRefs(ctx context.Context, ids []int64) (map[int64]ports.UserRef, error) {
	refs := make(map[int64]ports.UserRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	var rows []userRefModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		refs[row.ID] = ports.UserRef{
			ID:        row.ID,
			Username:  row.Username,
			Email:     row.Email,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Role:      roles.Role(row.Role),
		}
	}
	return refs, nil
}

func (r *Repository) assetInfos(ctx context.Context, ids []int64) (map[int64]ports.AssetInfo, error) {
	infos := make(map[int64]ports.AssetInfo, len(ids))
	if len(ids) == 0 {
		return infos, nil
	}
	var rows []assetInfoModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		infos[row.ID] = row.toInfo()
	}
	return infos, nil
}

// UserRef satisfies ports.UserDirectory.
func (r *Repository) UserRef(ctx context.Context, userID int64) (ports.UserRef, error) {
	refs, err := r.userRefs(ctx, []int64{userID})
	if err != nil {
		return ports.UserRef{}, err
	}
	ref, ok := refs[userID]
	if !ok {
		return ports.UserRef{}, domainerrors.ErrUserNotFound
	}
	return ref, nil
}

// AssetInfo satisfies ports.AssetDirectory with a read-only view of
// the assessment context's assets table.
func (r *Repository) AssetInfo(ctx context.Context, assetID int64) (ports.AssetInfo, error) {
	infos, err := r.assetInfos(ctx, []int64{assetID})
	if err != nil {
		return ports.AssetInfo{}, err
	}
	info, ok := infos[assetID]
	if !ok {
		return ports.AssetInfo{}, domainerrors.ErrAssetNotFound
	}
	return info, nil
}

func copyOrEmpty(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return append([]string(nil), items...)
}

type reportModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	ReportTitle string `gorm:"column:report_title"`
	AssetID     int64  `gorm:"column:asset_id"`
	TesterName  string `gorm:"column:tester_name"`

	TestStartDate     time.Time `gorm:"column:test_start_date"`
	TestEndDate       time.Time `gorm:"column:test_end_date"`
	TotalTestDuration string    `gorm:"column:total_test_duration"`
	ExecutiveSummary  string    `gorm:"column:executive_summary"`

	TotalFindings     int    `gorm:"column:total_findings"`
	SeverityBreakdown string `gorm:"column:severity_breakdown;type:jsonb"`
	OverallRiskRating string `gorm:"column:overall_risk_rating"`
	CurrentStatus     string `gorm:"column:current_status"`

	PreparedBy          string     `gorm:"column:prepared_by"`
	ReviewedBy          string     `gorm:"column:reviewed_by"`
	ReportFinalizedDate *time.Time `gorm:"column:report_finalized_date"`
	NextScheduledTest   *time.Time `gorm:"column:next_scheduled_test"`
	DistributionEmails  []string   `gorm:"column:distribution_emails;type:text[]"`

	CreatedByID int64     `gorm:"column:created_by_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (reportModel) TableName() string { return "reports" }

func toReportModel(report entities.Report) (reportModel, error) {
	breakdown := report.SeverityBreakdown
	if breakdown == nil {
		breakdown = map[string]int{}
	}
	encoded, err := json.Marshal(breakdown)
	if err != nil {
		return reportModel{}, err
	}
	return reportModel{
		ID:                  report.ID,
		ReportTitle:         report.ReportTitle,
		AssetID:             report.AssetID,
		TesterName:          report.TesterName,
		TestStartDate:       report.TestStartDate,
		TestEndDate:         report.TestEndDate,
		TotalTestDuration:   report.TotalTestDuration,
		ExecutiveSummary:    report.ExecutiveSummary,
		TotalFindings:       report.TotalFindings,
		SeverityBreakdown:   string(encoded),
		OverallRiskRating:   report.OverallRiskRating,
		CurrentStatus:       report.CurrentStatus,
		PreparedBy:          report.PreparedBy,
		ReviewedBy:          report.ReviewedBy,
		ReportFinalizedDate: report.ReportFinalizedDate,
		NextScheduledTest:   report.NextScheduledTest,
		DistributionEmails:  copyOrEmpty(report.DistributionEmails),
		CreatedByID:         report.CreatedByID,
		CreatedAt:           report.CreatedAt,
		UpdatedAt:           report.UpdatedAt,
	}, nil
}

func (m reportModel) toEntity() (entities.Report, error) {
	breakdown := map[string]int{}
	if m.SeverityBreakdown != "" {
		if err := json.Unmarshal([]byte(m.SeverityBreakdown), &breakdown); err != nil {
			return entities.Report{}, err
		}
	}
	return entities.Report{
		ID:                  m.ID,
		ReportTitle:         m.ReportTitle,
		AssetID:             m.AssetID,
		TesterName:          m.TesterName,
		TestStartDate:       m.TestStartDate,
		TestEndDate:         m.TestEndDate,
		TotalTestDuration:   m.TotalTestDuration,
		ExecutiveSummary:    m.ExecutiveSummary,
		TotalFindings:       m.TotalFindings,
		SeverityBreakdown:   breakdown,
		OverallRiskRating:   m.OverallRiskRating,
		CurrentStatus:       m.CurrentStatus,
		PreparedBy:          m.PreparedBy,
		ReviewedBy:          m.ReviewedBy,
		ReportFinalizedDate: m.ReportFinalizedDate,
		NextScheduledTest:   m.NextScheduledTest,
		DistributionEmails:  copyOrEmpty(m.DistributionEmails),
		CreatedByID:         m.CreatedByID,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}, nil
}

type findingModel struct {
	ID                  int64    `gorm:"column:id;primaryKey"`
	ReportID            int64    `gorm:"column:report_id"`
	FindingID           string   `gorm:"column:finding_id;unique"`
	VulnerabilityTitle  string   `gorm:"column:vulnerability_title"`
	Severity            string   `gorm:"column:severity"`
	Impact              string   `gorm:"column:impact"`
	Likelihood          string   `gorm:"column:likelihood"`
	Category            string   `gorm:"column:category"`
	VulnerabilityStatus string   `gorm:"column:vulnerability_status"`
	NumberOfOccurrences int      `gorm:"column:number_of_occurrences"`
	AffectedURLs        []string `gorm:"column:affected_urls;type:text[]"`
	Description         string   `gorm:"column:description"`
	ProofOfConcept      string   `gorm:"column:proof_of_concept"`
	Recommendation      string   `gorm:"column:recommendation"`
	// refs avoids the REFERENCES reserved word in DDL tooling.
	References      []string  `gorm:"column:refs;type:text[]"`
	AdditionalNotes string    `gorm:"column:additional_notes"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (findingModel) TableName() string { return "vulnerability_findings" }

func toFindingModel(finding entities.VulnerabilityFinding) findingModel {
	return findingModel{
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
		AffectedURLs:        copyOrEmpty(finding.AffectedURLs),
		Description:         finding.Description,
		ProofOfConcept:      finding.ProofOfConcept,
		Recommendation:      finding.Recommendation,
		References:          copyOrEmpty(finding.References),
		AdditionalNotes:     finding.AdditionalNotes,
		CreatedAt:           finding.CreatedAt,
		UpdatedAt:           finding.UpdatedAt,
	}
}

func (m findingModel) toEntity() entities.VulnerabilityFinding {
	return entities.VulnerabilityFinding{
		ID:                  m.ID,
		ReportID:            m.ReportID,
		FindingID:           m.FindingID,
		VulnerabilityTitle:  m.VulnerabilityTitle,
		Severity:            m.Severity,
		Impact:              m.Impact,
		Likelihood:          m.Likelihood,
		Category:            m.Category,
		VulnerabilityStatus: m.VulnerabilityStatus,
		NumberOfOccurrences: m.NumberOfOccurrences,
		AffectedURLs:        copyOrEmpty(m.AffectedURLs),
		Description:         m.Description,
		ProofOfConcept:      m.ProofOfConcept,
		Recommendation:      m.Recommendation,
		References:          copyOrEmpty(m.References),
		AdditionalNotes:     m.AdditionalNotes,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

type noteModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	ReportID    int64     `gorm:"column:report_id"`
	AssetID     int64     `gorm:"column:asset_id"`
	AuthorID    int64     `gorm:"column:author_id"`
	NoteContent string    `gorm:"column:note_content"`
	NoteType    string    `gorm:"column:note_type"`
	Priority    string    `gorm:"column:priority"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (noteModel) TableName() string { return "report_notes" }

func toNoteModel(note entities.ReportNote) noteModel {
	return noteModel{
		ID:          note.ID,
		ReportID:    note.ReportID,
		AssetID:     note.AssetID,
		AuthorID:    note.AuthorID,
		NoteContent: note.NoteContent,
		NoteType:    note.NoteType,
		Priority:    note.Priority,
		Status:      note.Status,
		CreatedAt:   note.CreatedAt,
		UpdatedAt:   note.UpdatedAt,
	}
}

func (m noteModel) toEntity() entities.ReportNote {
	return entities.ReportNote{
		ID:          m.ID,
		ReportID:    m.ReportID,
		AssetID:     m.AssetID,
		AuthorID:    m.AuthorID,
		NoteContent: m.NoteContent,
		NoteType:    m.NoteType,
		Priority:    m.Priority,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type assetInfoModel struct {
	ID                 int64  `gorm:"column:id;primaryKey"`
	ProjectName        string `gorm:"column:project_name"`
	AssetName          string `gorm:"column:asset_name"`
	AssetURL           string `gorm:"column:asset_url"`
	ProjectOwnerID     *int64 `gorm:"column:project_owner_id"`
	AssignedByID       *int64 `gorm:"column:assigned_by_id"`
	AssignedTesterByID *int64 `gorm:"column:assigned_tester_by_id"`
}

func (assetInfoModel) TableName() string { return "assets" }

func (m assetInfoModel) toInfo() ports.AssetInfo {
	return ports.AssetInfo{
		ID:                 m.ID,
		ProjectName:        m.ProjectName,
		AssetName:          m.AssetName,
		AssetURL:           m.AssetURL,
		ProjectOwnerID:     m.ProjectOwnerID,
		AssignedByID:       m.AssignedByID,
		AssignedTesterByID: m.AssignedTesterByID,
	}
}

type userRefModel struct {
	ID        int64  `gorm:"column:id;primaryKey"`
	Username  string `gorm:"column:username"`
	Email     string `gorm:"column:email"`
	FirstName string `gorm:"column:first_name"`
	LastName  string `gorm:"column:last_name"`
	Role      string `gorm:"column:role"`
}

func (userRefModel) TableName() string { return "users" }
