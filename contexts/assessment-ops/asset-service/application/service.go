package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vulntrack/contexts/assessment-ops/asset-service/domain/entities"
	domainerrors "vulntrack/contexts/assessment-ops/asset-service/domain/errors"
	"vulntrack/contexts/assessment-ops/asset-service/ports"
	"vulntrack/internal/shared/audit"
	"vulntrack/internal/shared/roles"
)

// Actor is the authenticated caller projected into the asset context.
type Actor struct {
	ID        int64
	Role      roles.Role
	FirstName string
	LastName  string
}

// Service implements the asset lifecycle and the three assignment
// tracks: team leader, tester and client team.
type Service struct {
	Repo     ports.Repository
	Users    ports.UserDirectory
	Clock    ports.Clock
	Recorder audit.Recorder
	Logger   *slog.Logger
}

// RequestMeta carries transport-level context for activity recording.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// CreateAssetInput is the full intake payload.
type CreateAssetInput struct {
	ProjectName         string
	ProjectOwnerID      *int64
	ProjectDescription  string
	AssetName           string
	AssetURL            string
	AssetType           string
	TechnologyStack     []string
	Environment         string
	AuthMethod          string
	PrivateNetwork      bool
	ScanFrequency       string
	PreferredTestWindow string
	ScopeInclusions     string
	ScopeExclusions     string
	NotifyOn            []string
	NotificationEmails  []string
	PlanTier            string
	TestsPerMonth       *int
	ContractExpiryDate  *time.Time
	Tags                []string
	SupportingDocs      []string
}

func isAdmin(actor Actor) bool {
	return actor.Role == roles.Admin || actor.Role == roles.SuperAdmin
}

// ListAssets returns the asset inventory visible to actor: everything
// for admin+, owned-or-created assets for client-admins.
func (s Service) ListAssets(ctx context.Context, actor Actor) ([]ports.AssetDetail, error) {
	switch {
	case isAdmin(actor):
		return s.Repo.ListAllAssets(ctx)
	case actor.Role == roles.ClientAdmin:
		return s.Repo.ListAssetsOwnedOrCreated(ctx, actor.ID)
	default:
		return nil, domainerrors.ErrNotAuthorized
	}
}

// CreateAsset registers a new engagement target. A client-admin
// creator becomes the project owner automatically.
func (s Service) CreateAsset(ctx context.Context, actor Actor, input CreateAssetInput, meta RequestMeta) (ports.AssetDetail, error) {
	if !isAdmin(actor) && actor.Role != roles.ClientAdmin {
		return ports.AssetDetail{}, domainerrors.ErrNotAuthorized
	}
	if err := validateAssetInput(input); err != nil {
		return ports.AssetDetail{}, err
	}

	now := s.now()
	asset := entities.Asset{
		ProjectName:         strings.TrimSpace(input.ProjectName),
		ProjectOwnerID:      input.ProjectOwnerID,
		ProjectDescription:  input.ProjectDescription,
		AssetName:           strings.TrimSpace(input.AssetName),
		AssetURL:            strings.TrimSpace(input.AssetURL),
		AssetType:           input.AssetType,
		TechnologyStack:     input.TechnologyStack,
		Environment:         input.Environment,
		AuthMethod:          input.AuthMethod,
		PrivateNetwork:      input.PrivateNetwork,
		ScanFrequency:       input.ScanFrequency,
		PreferredTestWindow: input.PreferredTestWindow,
		ScopeInclusions:     input.ScopeInclusions,
		ScopeExclusions:     input.ScopeExclusions,
		NotifyOn:            input.NotifyOn,
		NotificationEmails:  input.NotificationEmails,
		PlanTier:            input.PlanTier,
		TestsPerMonth:       input.TestsPerMonth,
		ContractExpiryDate:  input.ContractExpiryDate,
		Tags:                input.Tags,
		SupportingDocs:      input.SupportingDocs,
		CreatedByID:         actor.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if actor.Role == roles.ClientAdmin {
		ownerID := actor.ID
		asset.ProjectOwnerID = &ownerID
	}

	created, err := s.Repo.CreateAsset(ctx, asset)
	if err != nil {
		return ports.AssetDetail{}, err
	}

	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionCreate,
		ResourceType: "asset",
		ResourceID:   created.ID,
		ResourceName: created.ProjectName + " / " + created.AssetName,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	s.recorder().AssetActivity(ctx, audit.AssetEvent{
		AssetID:      created.ID,
		UserID:       actor.ID,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionCreate,
		NewValues: map[string]any{
			"projectName": created.ProjectName,
			"assetName":   created.AssetName,
			"assetType":   created.AssetType,
		},
	})

	return s.Repo.GetAssetDetail(ctx, created.ID)
}

// GetAsset enforces the owner-or-creator read gate for non-admins.
func (s Service) GetAsset(ctx context.Context, actor Actor, assetID int64) (ports.AssetDetail, error) {
	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return ports.AssetDetail{}, err
	}
	if err := s.requireAssetAccess(actor, asset); err != nil {
		return ports.AssetDetail{}, err
	}
	return s.Repo.GetAssetDetail(ctx, assetID)
}

// UpdateAsset applies a partial edit, recording changed fields as an
// asset activity with before and after values.
func (s Service) UpdateAsset(ctx context.Context, actor Actor, assetID int64, patch ports.AssetPatch, meta RequestMeta) (ports.AssetDetail, error) {
	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return ports.AssetDetail{}, err
	}
	if err := s.requireAssetAccess(actor, asset); err != nil {
		return ports.AssetDetail{}, err
	}
	if err := validateAssetPatch(patch); err != nil {
		return ports.AssetDetail{}, err
	}

	updated, err := s.Repo.UpdateAsset(ctx, assetID, patch, s.now())
	if err != nil {
		return ports.AssetDetail{}, err
	}

	s.recorder().AssetActivity(ctx, audit.AssetEvent{
		AssetID:      assetID,
		UserID:       actor.ID,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionUpdate,
		OldValues:    patchOldValues(asset, patch),
		NewValues:    patchNewValues(updated, patch),
	})

	return s.Repo.GetAssetDetail(ctx, assetID)
}

// DeleteAsset removes the asset and its assignment rows. Reports
// referencing the asset go with it at the storage layer.
func (s Service) DeleteAsset(ctx context.Context, actor Actor, assetID int64, meta RequestMeta) error {
	asset, err := s.Repo.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if err := s.requireAssetAccess(actor, asset); err != nil {
		return err
	}
	if err := s.Repo.DeleteAssetCascade(ctx, assetID); err != nil {
		return err
	}
	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionDelete,
		ResourceType: "asset",
		ResourceID:   assetID,
		ResourceName: asset.ProjectName + " / " + asset.AssetName,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	return nil
}

// AssignTeamLeader hands the asset to a team leader and appends a
// pending row to the assignment ledger.
func (s Service) AssignTeamLeader(ctx context.Context, actor Actor, assetID int64, leaderID int64, meta RequestMeta) error {
	if !isAdmin(actor) {
		return domainerrors.ErrNotAuthorized
	}
	if leaderID == 0 {
		return domainerrors.ErrInvalidRequest
	}
	if _, err := s.Repo.GetAsset(ctx, assetID); err != nil {
		return err
	}
	leader, err := s.Users.UserRef(ctx, leaderID)
	if err != nil {
		return err
	}

	now := s.now()
	if err := s.Repo.SetTeamLeader(ctx, assetID, leaderID, actor.ID, now); err != nil {
		return err
	}
	if err := s.Repo.AppendAssignment(ctx, entities.AssetAssignment{
		AssetID:      assetID,
		AssignedToID: leaderID,
		AssignedByID: actor.ID,
		AssignedAt:   now,
		Status:       entities.AssignmentStatusPending,
	}); err != nil {
		return err
	}

	s.recorder().AssetActivity(ctx, audit.AssetEvent{
		AssetID:      assetID,
		UserID:       actor.ID,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionAssign,
		NewValues:    map[string]any{"assignedTo": leader.FullName(), "assignedToId": leaderID},
	})
	return nil
}

// UnassignTeamLeader clears the track and drops the ledger rows.
func (s Service) UnassignTeamLeader(ctx context.Context, actor Actor, assetID int64, meta RequestMeta) error {
	if !isAdmin(actor) {
		return domainerrors.ErrNotAuthorized
	}
	if _, err := s.Repo.GetAsset(ctx, assetID); err != nil {
		return err
	}
	if err := s.Repo.ClearTeamLeader(ctx, assetID); err != nil {
		return err
	}
	if err := s.Repo.DeleteAssignments(ctx, assetID); err != nil {
		return err
	}
	s.recorder().AssetActivity(ctx, audit.AssetEvent{
		AssetID:      assetID,
		UserID:       actor.ID,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionUnassign,
		Details:      map[string]any{"track": "team-leader"},
	})
	return nil
}

// MyTasks lists assets on the actor's team-leader track.
func (s Service) MyTasks(ctx context.Context, actor Actor) ([]ports.AssetDetail, error) {
	if actor.Role != roles.TeamLeader {
		return nil, domainerrors.ErrNotAuthorized
	}
	return s.Repo.ListAssetsByTeamLeader(ctx, actor.ID)
}

// AssignTester places a tester on the asset. Only the team leader
// track owner can do this, and the assigner is recorded so report
// review authority can be derived later.
func (s Service) AssignTester(ctx context.Context, actor Actor, assetID int64, testerID int64, meta RequestMeta) error {
	if actor.Role != roles.TeamLeader {
		return domainerrors.ErrNotAuthorized
	}
	if testerID == 0 {
		return domainerrors.ErrInvalidRequest
	}
	if _, err := s.Repo.GetAsset(ctx, assetID); err != nil {
		return err
	}
	tester, err := s.Users.UserRef(ctx, testerID)
	if err != nil {
		return err
	}
	if err := s.Repo.SetTester(ctx, assetID, testerID, actor.ID, s.now()); err != nil {
		return err
	}
	s.recorder().AssetActivity(ctx, audit.AssetEvent{
		AssetID:      assetID,
		UserID:       actor.ID,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionAssign,
		NewValues:    map[string]any{"assignedTester": tester.FullName(), "assignedTesterId": testerID},
	})
	return nil
}

func (s Service) UnassignTester(ctx context.Context, actor Actor, assetID int64, meta RequestMeta) error {
	if actor.Role != roles.TeamLeader {
		return domainerrors.ErrNotAuthorized
	}
	if _, err := s.Repo.GetAsset(ctx, assetID); err != nil {
		return err
	}
	if err := s.Repo.ClearTester(ctx, assetID); err != nil {
		return err
	}
	s.recorder().AssetActivity(ctx, audit.AssetEvent{
		AssetID:      assetID,
		UserID:       actor.ID,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionUnassign,
		Details:      map[string]any{"track": "tester"},
	})
	return nil
}

// MyAssignedTasks lists assets on the actor's tester track.
func (s Service) MyAssignedTasks(ctx context.Context, actor Actor) ([]ports.AssetDetail, error) {
	if actor.Role != roles.Tester {
		return nil, domainerrors.ErrNotAuthorized
	}
	return s.Repo.ListAssetsByTester(ctx, actor.ID)
}

// GrantClientAccess gives a client-user read access to the asset.
// Granting twice is a no-op while the grant is active.
func (s Service) GrantClientAccess(ctx context.Context, actor Actor, assetID int64, memberID int64, meta RequestMeta) error {
	if actor.Role != roles.ClientAdmin {
		return domainerrors.ErrNotAuthorized
	}
	if memberID == 0 {
		return domainerrors.ErrInvalidRequest
	}
	if _, err := s.Repo.GetAsset(ctx, assetID); err != nil {
		return err
	}
	member, err := s.Users.UserRef(ctx, memberID)
	if err != nil {
		return err
	}
	if err := s.Repo.EnsureClientGrant(ctx, assetID, memberID, actor.ID, s.now()); err != nil {
		return err
	}
	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionAssign,
		ResourceType: "client-grant",
		ResourceID:   assetID,
		ResourceName: member.FullName(),
		Details:      map[string]any{"clientTeamMemberId": memberID},
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	return nil
}

// RevokeClientAccess flips the grant to Inactive; the row stays for
// history.
func (s Service) RevokeClientAccess(ctx context.Context, actor Actor, assetID int64, memberID int64, meta RequestMeta) error {
	if actor.Role != roles.ClientAdmin {
		return domainerrors.ErrNotAuthorized
	}
	if memberID == 0 {
		return domainerrors.ErrInvalidRequest
	}
	if err := s.Repo.RevokeClientGrant(ctx, assetID, memberID, s.now()); err != nil {
		return err
	}
	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeAssetManagement,
		Action:       audit.ActionUnassign,
		ResourceType: "client-grant",
		ResourceID:   assetID,
		Details:      map[string]any{"clientTeamMemberId": memberID},
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	return nil
}

// ClientGrants lists active grants on an asset for its client-admin.
func (s Service) ClientGrants(ctx context.Context, actor Actor, assetID int64) ([]ports.ClientAssignmentDetail, error) {
	if actor.Role != roles.ClientAdmin {
		return nil, domainerrors.ErrNotAuthorized
	}
	return s.Repo.ActiveClientGrants(ctx, assetID)
}

// MyGrantedAssets lists the assets a client-user can read.
func (s Service) MyGrantedAssets(ctx context.Context, actor Actor) ([]ports.ClientAssetGrant, error) {
	if actor.Role != roles.ClientUser {
		return nil, domainerrors.ErrNotAuthorized
	}
	return s.Repo.AssetsGrantedToMember(ctx, actor.ID)
}

func (s Service) requireAssetAccess(actor Actor, asset entities.Asset) error {
	if isAdmin(actor) {
		return nil
	}
	if asset.ProjectOwnerID != nil && *asset.ProjectOwnerID == actor.ID {
		return nil
	}
	if asset.CreatedByID == actor.ID {
		return nil
	}
	return domainerrors.ErrNotAuthorized
}

func validateAssetInput(input CreateAssetInput) error {
	if strings.TrimSpace(input.ProjectName) == "" || strings.TrimSpace(input.AssetName) == "" {
		return domainerrors.ErrInvalidRequest
	}
	if !entities.ValidAssetType(input.AssetType) ||
		!entities.ValidEnvironment(input.Environment) ||
		!entities.ValidScanFrequency(input.ScanFrequency) ||
		!entities.ValidPlanTier(input.PlanTier) {
		return domainerrors.ErrInvalidRequest
	}
	return nil
}

func validateAssetPatch(patch ports.AssetPatch) error {
	if patch.AssetType != nil && !entities.ValidAssetType(*patch.AssetType) {
		return domainerrors.ErrInvalidRequest
	}
	if patch.Environment != nil && !entities.ValidEnvironment(*patch.Environment) {
		return domainerrors.ErrInvalidRequest
	}
	if patch.ScanFrequency != nil && !entities.ValidScanFrequency(*patch.ScanFrequency) {
		return domainerrors.ErrInvalidRequest
	}
	if patch.PlanTier != nil && !entities.ValidPlanTier(*patch.PlanTier) {
		return domainerrors.ErrInvalidRequest
	}
	return nil
}

func patchOldValues(before entities.Asset, patch ports.AssetPatch) map[string]any {
	old := make(map[string]any)
	if patch.ProjectName != nil {
		old["projectName"] = before.ProjectName
	}
	if patch.AssetName != nil {
		old["assetName"] = before.AssetName
	}
	if patch.AssetURL != nil {
		old["assetUrl"] = before.AssetURL
	}
	if patch.AssetType != nil {
		old["assetType"] = before.AssetType
	}
	if patch.Environment != nil {
		old["environment"] = before.Environment
	}
	if patch.PlanTier != nil {
		old["planTier"] = before.PlanTier
	}
	return old
}

func patchNewValues(after entities.Asset, patch ports.AssetPatch) map[string]any {
	next := make(map[string]any)
	if patch.ProjectName != nil {
		next["projectName"] = after.ProjectName
	}
	if patch.AssetName != nil {
		next["assetName"] = after.AssetName
	}
	if patch.AssetURL != nil {
		next["assetUrl"] = after.AssetURL
	}
	if patch.AssetType != nil {
		next["assetType"] = after.AssetType
	}
	if patch.Environment != nil {
		next["environment"] = after.Environment
	}
	if patch.PlanTier != nil {
		next["planTier"] = after.PlanTier
	}
	return next
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
