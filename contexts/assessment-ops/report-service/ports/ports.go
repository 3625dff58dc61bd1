package ports

import (
	"context"
	"time"

	"vulntrack/contexts/assessment-ops/report-service/domain/entities"
	"vulntrack/internal/shared/roles"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// UserRef is the slim account projection the report context needs.
type UserRef struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      roles.Role
}

func (u UserRef) FullName() string {
	return u.FirstName + " " + u.LastName
}

// AssetInfo is the asset projection needed for report gating: the
// owner, the admin who placed the team leader, and the team leader who
// placed the tester.
type AssetInfo struct {
	ID                 int64
	ProjectName        string
	AssetName          string
	AssetURL           string
	ProjectOwnerID     *int64
	AssignedByID       *int64
	AssignedTesterByID *int64
}

// AssetDirectory resolves assets owned by the assessment context.
// Read-only.
type AssetDirectory interface {
	AssetInfo(ctx context.Context, assetID int64) (AssetInfo, error)
}

// UserDirectory resolves account references. Read-only.
type UserDirectory interface {
	UserRef(ctx context.Context, userID int64) (UserRef, error)
}

// ReportPatch carries optional report edits. Nil means unchanged.
type ReportPatch struct {
	ReportTitle         *string
	TestStartDate       *time.Time
	TestEndDate         *time.Time
	TotalTestDuration   *string
	ExecutiveSummary    *string
	CurrentStatus       *string
	PreparedBy          *string
	ReviewedBy          *string
	ReportFinalizedDate *time.Time
	NextScheduledTest   *time.Time
	DistributionEmails  []string
}

// FindingPatch carries optional finding edits.
type FindingPatch struct {
	VulnerabilityTitle  *string
	Severity            *string
	Impact              *string
	Likelihood          *string
	Category            *string
	VulnerabilityStatus *string
	NumberOfOccurrences *int
	AffectedURLs        []string
	Description         *string
	ProofOfConcept      *string
	Recommendation      *string
	References          []string
	AdditionalNotes     *string
}

// NotePatch carries optional note edits.
type NotePatch struct {
	NoteContent *string
	NoteType    *string
	Priority    *string
	Status      *string
}

// ReportDetail joins a report with its asset and creator references.
type ReportDetail struct {
	Report    entities.Report
	Asset     *AssetInfo
	CreatedBy *UserRef
}

// NoteDetail joins a note with its author reference.
type NoteDetail struct {
	Note   entities.ReportNote
	Author *UserRef
}

// Repository is the report context's persistence boundary.
type Repository interface {
	CreateReport(ctx context.Context, report entities.Report) (entities.Report, error)
	GetReport(ctx context.Context, reportID int64) (entities.Report, error)
	GetReportDetail(ctx context.Context, reportID int64) (ReportDetail, error)
	UpdateReport(ctx context.Context, reportID int64, patch ReportPatch, now time.Time) (entities.Report, error)
	DeleteReportCascade(ctx context.Context, reportID int64) error

	ListReportsByCreator(ctx context.Context, creatorID int64) ([]ReportDetail, error)
	ListReportsForReviewer(ctx context.Context, reviewerID int64, statuses []string) ([]ReportDetail, error)
	ListReportsByStatus(ctx context.Context, status string) ([]ReportDetail, error)
	ListReportsByStatusAndOwner(ctx context.Context, status string, ownerID int64) ([]ReportDetail, error)
	ListReportsByAsset(ctx context.Context, assetID int64) ([]ReportDetail, error)

	CreateFinding(ctx context.Context, finding entities.VulnerabilityFinding) (entities.VulnerabilityFinding, error)
	GetFinding(ctx context.Context, findingID int64) (entities.VulnerabilityFinding, error)
	UpdateFinding(ctx context.Context, findingID int64, patch FindingPatch, now time.Time) (entities.VulnerabilityFinding, error)
	DeleteFinding(ctx context.Context, findingID int64) error
	ListFindingsByReport(ctx context.Context, reportID int64) ([]entities.VulnerabilityFinding, error)

	// RecomputeSummary rereads the report's findings and persists the
	// derived rollup atomically.
	RecomputeSummary(ctx context.Context, reportID int64, now time.Time) error

	CreateNote(ctx context.Context, note entities.ReportNote) (entities.ReportNote, error)
	GetNote(ctx context.Context, noteID int64) (entities.ReportNote, error)
	UpdateNote(ctx context.Context, noteID int64, patch NotePatch, now time.Time) (entities.ReportNote, error)
	DeleteNote(ctx context.Context, noteID int64) error
	ListNotesByReport(ctx context.Context, reportID int64) ([]NoteDetail, error)
	ListNotesByAsset(ctx context.Context, assetID int64) ([]NoteDetail, error)
}

// ReportDocument is the flattened view handed to a renderer.
type ReportDocument struct {
	Report       entities.Report
	Asset        AssetInfo
	Findings     []entities.VulnerabilityFinding
	Tester       *UserRef
	ProjectOwner *UserRef
}

// DocumentRenderer turns a report into a downloadable document.
type DocumentRenderer interface {
	Render(doc ReportDocument) ([]byte, error)
	ContentType() string
}
