package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"vulntrack/contexts/assessment-ops/report-service/adapters/document"
	"vulntrack/contexts/assessment-ops/report-service/adapters/memory"
	"vulntrack/contexts/assessment-ops/report-service/domain/entities"
	domainerrors "vulntrack/contexts/assessment-ops/report-service/domain/errors"
	"vulntrack/contexts/assessment-ops/report-service/ports"
	"vulntrack/internal/shared/audit"
	"vulntrack/internal/shared/roles"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var (
	adminActor  = Actor{ID: 1, Role: roles.Admin, FirstName: "Ada", LastName: "Admin"}
	leaderActor = Actor{ID: 2, Role: roles.TeamLeader, FirstName: "Lee", LastName: "Leader"}
	testerActor = Actor{ID: 3, Role: roles.Tester, FirstName: "Tess", LastName: "Tester"}
	clientActor = Actor{ID: 4, Role: roles.ClientAdmin, FirstName: "Cleo", LastName: "Client"}
	memberActor = Actor{ID: 5, Role: roles.ClientUser, FirstName: "Mia", LastName: "Member"}
)

const assetID = int64(10)

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	for _, actor := range []Actor{adminActor, leaderActor, testerActor, clientActor, memberActor} {
		store.SeedUser(ports.UserRef{
			ID:        actor.ID,
			Username:  actor.FirstName,
			FirstName: actor.FirstName,
			LastName:  actor.LastName,
			Role:      actor.Role,
		})
	}
	ownerID := clientActor.ID
	leaderID := leaderActor.ID
	adminID := adminActor.ID
	store.SeedAsset(ports.AssetInfo{
		ID:                 assetID,
		ProjectName:        "Acme Portal",
		AssetName:          "portal.acme.example",
		ProjectOwnerID:     &ownerID,
		AssignedByID:       &adminID,
		AssignedTesterByID: &leaderID,
	})
	service := Service{
		Repo:     store,
		Assets:   store,
		Users:    store,
		Renderer: document.TextRenderer{},
		Clock:    fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	return service, store
}

func validInput() CreateReportInput {
	return CreateReportInput{
		ReportTitle:   "Q1 Web Assessment",
		AssetID:       assetID,
		TestStartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		TestEndDate:   time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
	}
}

func seedReport(t *testing.T, service Service) ports.ReportDetail {
	t.Helper()
	detail, err := service.CreateReport(context.Background(), testerActor, validInput(), RequestMeta{})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	return detail
}

func TestCreateReportDerivesSignoffFields(t *testing.T) {
	service, _ := newTestService(t)

	detail := seedReport(t, service)
	report := detail.Report
	if report.CurrentStatus != entities.StatusDraft {
		t.Fatalf("expected Draft, got %q", report.CurrentStatus)
	}
	if report.TesterName != "Tess Tester" || report.PreparedBy != "Tess Tester" {
		t.Fatalf("expected tester identity stamped, got %q / %q", report.TesterName, report.PreparedBy)
	}
	if report.ReviewedBy != "Lee Leader" {
		t.Fatalf("expected reviewer from assignment chain, got %q", report.ReviewedBy)
	}

	if _, err := service.CreateReport(context.Background(), adminActor, validInput(), RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for admin, got %v", err)
	}
	bad := validInput()
	bad.AssetID = 404
	if _, err := service.CreateReport(context.Background(), testerActor, bad, RequestMeta{}); !errors.Is(err, domainerrors.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestListReportsVisibility(t *testing.T) {
	service, _ := newTestService(t)

	detail := seedReport(t, service)
	reportID := detail.Report.ID

	mine, err := service.ListReports(context.Background(), testerActor)
	if err != nil {
		t.Fatalf("tester list: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected tester to see own draft, got %d", len(mine))
	}

	// Drafts are invisible to everyone else.
	for _, actor := range []Actor{leaderActor, adminActor, clientActor} {
		visible, err := service.ListReports(context.Background(), actor)
		if err != nil {
			t.Fatalf("list for %s: %v", actor.Role, err)
		}
		if len(visible) != 0 {
			t.Fatalf("expected no drafts for %s, got %d", actor.Role, len(visible))
		}
	}

	inReview := entities.StatusInReview
	if _, err := service.UpdateReport(context.Background(), testerActor, reportID, ports.ReportPatch{CurrentStatus: &inReview}, RequestMeta{}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	forReview, err := service.ListReports(context.Background(), leaderActor)
	if err != nil {
		t.Fatalf("leader list: %v", err)
	}
	if len(forReview) != 1 {
		t.Fatalf("expected submitted report in review queue, got %d", len(forReview))
	}

	final := entities.StatusFinal
	if _, err := service.UpdateReport(context.Background(), leaderActor, reportID, ports.ReportPatch{CurrentStatus: &final}, RequestMeta{}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	for _, actor := range []Actor{adminActor, clientActor} {
		visible, err := service.ListReports(context.Background(), actor)
		if err != nil {
			t.Fatalf("list for %s: %v", actor.Role, err)
		}
		if len(visible) != 1 {
			t.Fatalf("expected final report for %s, got %d", actor.Role, len(visible))
		}
	}
}

func TestUpdateReportStatusRules(t *testing.T) {
	service, _ := newTestService(t)

	detail := seedReport(t, service)
	reportID := detail.Report.ID

	final := entities.StatusFinal
	if _, err := service.UpdateReport(context.Background(), testerActor, reportID, ports.ReportPatch{CurrentStatus: &final}, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected tester blocked from Final, got %v", err)
	}

	otherTester := Actor{ID: 99, Role: roles.Tester, FirstName: "Omar", LastName: "Other"}
	title := "hijack"
	if _, err := service.UpdateReport(context.Background(), otherTester, reportID, ports.ReportPatch{ReportTitle: &title}, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected other tester blocked, got %v", err)
	}

	otherLeader := Actor{ID: 98, Role: roles.TeamLeader, FirstName: "Nina", LastName: "Nearby"}
	if _, err := service.UpdateReport(context.Background(), otherLeader, reportID, ports.ReportPatch{CurrentStatus: &final}, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected non-governing leader blocked, got %v", err)
	}

	if _, err := service.UpdateReport(context.Background(), adminActor, reportID, ports.ReportPatch{ReportTitle: &title}, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected admin blocked from report edits, got %v", err)
	}

	updated, err := service.UpdateReport(context.Background(), leaderActor, reportID, ports.ReportPatch{CurrentStatus: &final}, RequestMeta{})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if updated.Report.CurrentStatus != entities.StatusFinal {
		t.Fatalf("expected Final, got %q", updated.Report.CurrentStatus)
	}
	if updated.Report.ReportFinalizedDate == nil {
		t.Fatal("expected finalized date stamped")
	}
}

func TestFindingLifecycleRecomputesSummary(t *testing.T) {
	service, _ := newTestService(t)

	detail := seedReport(t, service)
	reportID := detail.Report.ID

	finding, err := service.CreateFinding(context.Background(), testerActor, reportID, CreateFindingInput{
		VulnerabilityTitle: "SQL injection in login",
		Severity:           entities.SeverityCritical,
		Impact:             "High",
		Likelihood:         "High",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create finding: %v", err)
	}
	if !strings.HasPrefix(finding.FindingID, "VUL-") {
		t.Fatalf("unexpected finding id %q", finding.FindingID)
	}
	if finding.VulnerabilityStatus != entities.FindingStatusNew || finding.NumberOfOccurrences != 1 {
		t.Fatalf("expected defaults applied, got %+v", finding)
	}

	report, err := service.GetReport(context.Background(), reportID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report.Report.TotalFindings != 1 || report.Report.OverallRiskRating != entities.RatingCritical {
		t.Fatalf("expected Critical rollup, got %+v", report.Report)
	}
	if report.Report.SeverityBreakdown["critical"] != 1 {
		t.Fatalf("expected breakdown critical=1, got %v", report.Report.SeverityBreakdown)
	}

	low := entities.SeverityLow
	if _, err := service.UpdateFinding(context.Background(), testerActor, finding.ID, ports.FindingPatch{Severity: &low}, RequestMeta{}); err != nil {
		t.Fatalf("update finding: %v", err)
	}
	report, err = service.GetReport(context.Background(), reportID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report.Report.OverallRiskRating != entities.RatingGood {
		t.Fatalf("expected Good after downgrade, got %q", report.Report.OverallRiskRating)
	}

	for range 3 {
		if _, err := service.CreateFinding(context.Background(), testerActor, reportID, CreateFindingInput{
			VulnerabilityTitle: "Weak cache headers",
			Severity:           entities.SeverityMedium,
			Impact:             "Medium",
			Likelihood:         "Medium",
		}, RequestMeta{}); err != nil {
			t.Fatalf("create medium finding: %v", err)
		}
	}
	report, err = service.GetReport(context.Background(), reportID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report.Report.TotalFindings != 4 || report.Report.OverallRiskRating != entities.RatingNotGood {
		t.Fatalf("expected Not Good with three mediums, got %+v", report.Report)
	}

	if err := service.DeleteFinding(context.Background(), testerActor, finding.ID, RequestMeta{}); err != nil {
		t.Fatalf("delete finding: %v", err)
	}
	report, err = service.GetReport(context.Background(), reportID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if report.Report.TotalFindings != 3 {
		t.Fatalf("expected 3 findings after delete, got %d", report.Report.TotalFindings)
	}

	if _, err := service.CreateFinding(context.Background(), leaderActor, reportID, CreateFindingInput{
		VulnerabilityTitle: "nope",
		Severity:           entities.SeverityLow,
		Impact:             "Low",
		Likelihood:         "Low",
	}, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for leader, got %v", err)
	}
}

func TestNotesAuthorGate(t *testing.T) {
	service, _ := newTestService(t)

	detail := seedReport(t, service)
	reportID := detail.Report.ID

	note, err := service.CreateNote(context.Background(), memberActor, reportID, CreateNoteInput{
		AssetID:     assetID,
		NoteContent: "Please clarify the scope of finding 2.",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if note.Note.NoteType != entities.NoteTypeReview || note.Note.Priority != entities.NotePriorityMedium || note.Note.Status != entities.NoteStatusOpen {
		t.Fatalf("expected note defaults, got %+v", note.Note)
	}
	if note.Author == nil || note.Author.ID != memberActor.ID {
		t.Fatalf("expected author attached, got %+v", note.Author)
	}

	if _, err := service.CreateNote(context.Background(), clientActor, reportID, CreateNoteInput{AssetID: assetID, NoteContent: "x"}, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for client-admin, got %v", err)
	}

	addressed := "Addressed"
	if _, err := service.UpdateNote(context.Background(), clientActor, note.Note.ID, ports.NotePatch{Status: &addressed}, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected non-author blocked, got %v", err)
	}
	updated, err := service.UpdateNote(context.Background(), memberActor, note.Note.ID, ports.NotePatch{Status: &addressed}, RequestMeta{})
	if err != nil {
		t.Fatalf("update note: %v", err)
	}
	if updated.Note.Status != "Addressed" {
		t.Fatalf("expected Addressed, got %q", updated.Note.Status)
	}

	if err := service.DeleteNote(context.Background(), clientActor, note.Note.ID, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected non-author delete blocked, got %v", err)
	}
	if err := service.DeleteNote(context.Background(), memberActor, note.Note.ID, RequestMeta{}); err != nil {
		t.Fatalf("delete note: %v", err)
	}
	notes, err := service.ReportNotes(context.Background(), reportID)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(notes) != 0 {
		t.Fatalf("expected no notes, got %d", len(notes))
	}
}

func TestRenderDocumentAccess(t *testing.T) {
	service, _ := newTestService(t)

	detail := seedReport(t, service)
	reportID := detail.Report.ID

	doc, err := service.RenderDocument(context.Background(), testerActor, reportID, RequestMeta{})
	if err != nil {
		t.Fatalf("render as author: %v", err)
	}
	if !strings.Contains(string(doc.Content), "Q1 Web Assessment") {
		t.Fatal("expected report title in rendered document")
	}
	if doc.Filename != "Security_Report_1" {
		t.Fatalf("unexpected filename %q", doc.Filename)
	}

	// The admin who placed the team leader has leader-track access; an
	// unrelated leader does not.
	if _, err := service.RenderDocument(context.Background(), clientActor, reportID, RequestMeta{}); err != nil {
		t.Fatalf("render as owner: %v", err)
	}
	otherLeader := Actor{ID: 98, Role: roles.TeamLeader}
	if _, err := service.RenderDocument(context.Background(), otherLeader, reportID, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected unrelated leader blocked, got %v", err)
	}
	otherTester := Actor{ID: 97, Role: roles.Tester}
	if _, err := service.RenderDocument(context.Background(), otherTester, reportID, RequestMeta{}); !errors.Is(err, domainerrors.ErrNotAuthorized) {
		t.Fatalf("expected unrelated tester blocked, got %v", err)
	}
}

type captureRecorder struct {
	events []audit.Event
}

func (r *captureRecorder) Activity(_ context.Context, event audit.Event) {
	r.events = append(r.events, event)
}
func (r *captureRecorder) AssetActivity(context.Context, audit.AssetEvent) {}
func (r *captureRecorder) Audit(context.Context, audit.TrailEntry)        {}

func TestDeleteNoteRecordsActivity(t *testing.T) {
	service, _ := newTestService(t)
	recorder := &captureRecorder{}
	service.Recorder = recorder
	ctx := context.Background()
	report := seedReport(t, service)

	note, err := service.CreateNote(ctx, memberActor, report.Report.ID, CreateNoteInput{
		AssetID:     assetID,
		NoteContent: "Please expand the executive summary.",
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	if err := service.DeleteNote(ctx, memberActor, note.Note.ID, RequestMeta{IPAddress: "10.0.0.9"}); err != nil {
		t.Fatalf("delete note: %v", err)
	}

	var deleted *audit.Event
	for i, event := range recorder.events {
		if event.ResourceType == "report-note" && event.Action == audit.ActionDelete {
			deleted = &recorder.events[i]
		}
	}
	if deleted == nil {
		t.Fatalf("expected a delete event for the note, got %+v", recorder.events)
	}
	if deleted.ResourceID != note.Note.ID || deleted.IPAddress != "10.0.0.9" {
		t.Fatalf("unexpected delete event %+v", *deleted)
	}
}
