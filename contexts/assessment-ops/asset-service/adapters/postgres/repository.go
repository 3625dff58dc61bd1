package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vulntrack/contexts/assessment-ops/asset-service/domain/entities"
	domainerrors "vulntrack/contexts/assessment-ops/asset-service/domain/errors"
	"vulntrack/contexts/assessment-ops/asset-service/ports"
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

func (r *Repository) GetAsset(ctx context.Context, assetID int64) (entities.Asset, error) {
	var row assetModel
	err := r.db.WithContext(ctx).Where("id = ?", assetID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Asset{}, domainerrors.ErrAssetNotFound
		}
		return entities.Asset{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) GetAssetDetail(ctx context.Context, assetID int64) (ports.AssetDetail, error) {
	asset, err := r.GetAsset(ctx, assetID)
	if err != nil {
		return ports.AssetDetail{}, err
	}
	details, err := r.attachUserRefs(ctx, []entities.Asset{asset})
	if err != nil {
		return ports.AssetDetail{}, err
	}
	return details[0], nil
}

func (r *Repository) CreateAsset(ctx context.Context, asset entities.Asset) (entities.Asset, error) {
	row := toAssetModel(asset)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Asset{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateAsset(ctx context.Context, assetID int64, patch ports.AssetPatch, now time.Time) (entities.Asset, error) {
	updates := map[string]any{"updated_at": now.UTC()}
	if patch.ProjectName != nil {
		updates["project_name"] = *patch.ProjectName
	}
	if patch.ProjectOwnerID != nil {
		updates["project_owner_id"] = *patch.ProjectOwnerID
	}
	if patch.ProjectDescription != nil {
		updates["project_description"] = *patch.ProjectDescription
	}
	if patch.AssetName != nil {
		updates["asset_name"] = *patch.AssetName
	}
	if patch.AssetURL != nil {
		updates["asset_url"] = *patch.AssetURL
	}
	if patch.AssetType != nil {
		updates["asset_type"] = *patch.AssetType
	}
	if patch.TechnologyStack != nil {
		updates["technology_stack"] = copyOrEmpty(patch.TechnologyStack)
	}
	if patch.Environment != nil {
		updates["environment"] = *patch.Environment
	}
	if patch.AuthMethod != nil {
		updates["auth_method"] = *patch.AuthMethod
	}
	if patch.PrivateNetwork != nil {
		updates["private_network"] = *patch.PrivateNetwork
	}
	if patch.ScanFrequency != nil {
		updates["scan_frequency"] = *patch.ScanFrequency
	}
	if patch.PreferredTestWindow != nil {
		updates["preferred_test_window"] = *patch.PreferredTestWindow
	}
	if patch.ScopeInclusions != nil {
		updates["scope_inclusions"] = *patch.ScopeInclusions
	}
	if patch.ScopeExclusions != nil {
		updates["scope_exclusions"] = *patch.ScopeExclusions
	}
	if patch.NotifyOn != nil {
		updates["notify_on"] = copyOrEmpty(patch.NotifyOn)
	}
	if patch.NotificationEmails != nil {
		updates["notification_emails"] = copyOrEmpty(patch.NotificationEmails)
	}
	if patch.PlanTier != nil {
		updates["plan_tier"] = *patch.PlanTier
	}
	if patch.TestsPerMonth != nil {
		updates["tests_per_month"] = *patch.TestsPerMonth
	}
	if patch.ContractExpiryDate != nil {
		updates["contract_expiry_date"] = patch.ContractExpiryDate.UTC()
	}
	if patch.Tags != nil {
		updates["tags"] = copyOrEmpty(patch.Tags)
	}
	if patch.SupportingDocs != nil {
		updates["supporting_docs"] = copyOrEmpty(patch.SupportingDocs)
	}

	result := r.db.WithContext(ctx).
		Model(&assetModel{}).
		Where("id = ?", assetID).
		Updates(updates)
	if result.Error != nil {
		return entities.Asset{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.Asset{}, domainerrors.ErrAssetNotFound
	}
	return r.GetAsset(ctx, assetID)
}

// DeleteAssetCascade removes the asset and its assignment rows in one
// transaction. Reports hang off the asset by foreign key with cascade
// delete, so the database clears them with the asset row.
func (r *Repository) DeleteAssetCascade(ctx context.Context, assetID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", assetID).Delete(&assetAssignmentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("asset_id = ?", assetID).Delete(&clientAssignmentModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", assetID).Delete(&assetModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrAssetNotFound
		}
		return nil
	})
}

func (r *Repository) ListAllAssets(ctx context.Context) ([]ports.AssetDetail, error) {
	return r.listAssets(ctx, r.db.WithContext(ctx))
}

func (r *Repository) ListAssetsOwnedOrCreated(ctx context.Context, userID int64) ([]ports.AssetDetail, error) {
	return r.listAssets(ctx, r.db.WithContext(ctx).
		Where("project_owner_id = ? OR created_by_id = ?", userID, userID))
}

func (r *Repository) ListAssetsByTeamLeader(ctx context.Context, leaderID int64) ([]ports.AssetDetail, error) {
	return r.listAssets(ctx, r.db.WithContext(ctx).Where("assigned_to_id = ?", leaderID))
}

func (r *Repository) ListAssetsByTester(ctx context.Context, testerID int64) ([]ports.AssetDetail, error) {
	return r.listAssets(ctx, r.db.WithContext(ctx).Where("assigned_tester_id = ?", testerID))
}

func (r *Repository) listAssets(ctx context.Context, tx *gorm.DB) ([]ports.AssetDetail, error) {
	var rows []assetModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	assets := make([]entities.Asset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, row.toEntity())
	}
	return r.attachUserRefs(ctx, assets)
}

func (r *Repository) SetTeamLeader(ctx context.Context, assetID int64, leaderID int64, byID int64, at time.Time) error {
	return r.updateAssignmentColumns(ctx, assetID, map[string]any{
		"assigned_to_id": leaderID,
		"assigned_by_id": byID,
		"assigned_at":    at.UTC(),
	})
}

func (r *Repository) ClearTeamLeader(ctx context.Context, assetID int64) error {
	return r.updateAssignmentColumns(ctx, assetID, map[string]any{
		"assigned_to_id": nil,
		"assigned_by_id": nil,
		"assigned_at":    nil,
	})
}

func (r *Repository) SetTester(ctx context.Context, assetID int64, testerID int64, byID int64, at time.Time) error {
	return r.updateAssignmentColumns(ctx, assetID, map[string]any{
		"assigned_tester_id":    testerID,
		"assigned_tester_by_id": byID,
		"assigned_tester_at":    at.UTC(),
	})
}

func (r *Repository) ClearTester(ctx context.Context, assetID int64) error {
	return r.updateAssignmentColumns(ctx, assetID, map[string]any{
		"assigned_tester_id":    nil,
		"assigned_tester_by_id": nil,
		"assigned_tester_at":    nil,
	})
}

func (r *Repository) updateAssignmentColumns(ctx context.Context, assetID int64, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&assetModel{}).
		Where("id = ?", assetID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAssetNotFound
	}
	return nil
}

func (r *Repository) AppendAssignment(ctx context.Context, assignment entities.AssetAssignment) error {
	row := assetAssignmentModel{
		AssetID:      assignment.AssetID,
		AssignedToID: assignment.AssignedToID,
		AssignedByID: assignment.AssignedByID,
		AssignedAt:   assignment.AssignedAt.UTC(),
		Status:       assignment.Status,
		Notes:        assignment.Notes,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) DeleteAssignments(ctx context.Context, assetID int64) error {
	return r.db.WithContext(ctx).Where("asset_id = ?", assetID).Delete(&assetAssignmentModel{}).Error
}

// EnsureClientGrant is an atomic get-or-create on the (asset, member)
// pair. A previously revoked grant is reactivated in place.
func (r *Repository) EnsureClientGrant(ctx context.Context, assetID int64, memberID int64, byID int64, now time.Time) error {
	row := clientAssignmentModel{
		AssetID:      assetID,
		MemberID:     memberID,
		AssignedByID: byID,
		AssignedAt:   now.UTC(),
		Status:       entities.ClientAssignmentActive,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "asset_id"}, {Name: "client_team_member_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":         entities.ClientAssignmentActive,
				"assigned_by_id": byID,
				"updated_at":     now.UTC(),
			}),
		}).
		Create(&row).
		Error
}

func (r *Repository) RevokeClientGrant(ctx context.Context, assetID int64, memberID int64, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&clientAssignmentModel{}).
		Where("asset_id = ? AND client_team_member_id = ?", assetID, memberID).
		Updates(map[string]any{"status": entities.ClientAssignmentInactive, "updated_at": now.UTC()}).
		Error
}

func (r *Repository) ActiveClientGrants(ctx context.Context, assetID int64) ([]ports.ClientAssignmentDetail, error) {
	var rows []clientAssignmentModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND status = ?", assetID, entities.ClientAssignmentActive).
		Order("assigned_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rows)*2)
	for _, row := range rows {
		ids = append(ids, row.MemberID, row.AssignedByID)
	}
	refs, err := r.userRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]ports.ClientAssignmentDetail, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.ClientAssignmentDetail{
			Assignment: row.toEntity(),
			Member:     refs[row.MemberID],
			AssignedBy: refs[row.AssignedByID],
		})
	}
	return items, nil
}

func (r *Repository) AssetsGrantedToMember(ctx context.Context, memberID int64) ([]ports.ClientAssetGrant, error) {
	var rows []clientAssignmentModel
	err := r.db.WithContext(ctx).
		Where("client_team_member_id = ? AND status = ?", memberID, entities.ClientAssignmentActive).
		Order("assigned_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	grants := make([]ports.ClientAssetGrant, 0, len(rows))
	for _, row := range rows {
		detail, err := r.GetAssetDetail(ctx, row.AssetID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrAssetNotFound) {
				continue
			}
			return nil, err
		}
		grant := ports.ClientAssetGrant{Detail: detail, Assignment: row.toEntity()}
		refs, err := r.userRefs(ctx, []int64{row.AssignedByID})
		if err != nil {
			return nil, err
		}
		if ref, ok := refs[row.AssignedByID]; ok {
			grant.AssignedBy = &ref
		}
		grants = append(grants, grant)
	}
	return grants, nil
}

func (r *Repository) attachUserRefs(ctx context.Context, assets []entities.Asset) ([]ports.AssetDetail, error) {
	ids := make([]int64, 0, len(assets)*6)
	for _, asset := range assets {
		ids = append(ids, asset.CreatedByID)
		for _, ref := range []*int64{
			asset.ProjectOwnerID,
			asset.AssignedToID,
			asset.AssignedByID,
			asset.AssignedTesterID,
			asset.AssignedTesterByID,
		} {
			if ref != nil {
				ids = append(ids, *ref)
			}
		}
	}
	refs, err := r.userRefs(ctx, ids)
	if err != nil {
		return nil, err
	}
	lookup := func(id *int64) *ports.UserRef {
		if id == nil {
			return nil
		}
		if ref, ok := refs[*id]; ok {
			return &ref
		}
		return nil
	}
	details := make([]ports.AssetDetail, 0, len(assets))
	for _, asset := range assets {
		createdByID := asset.CreatedByID
		details = append(details, ports.AssetDetail{
			Asset:          asset,
			Owner:          lookup(asset.ProjectOwnerID),
			AssignedTo:     lookup(asset.AssignedToID),
			AssignedBy:     lookup(asset.AssignedByID),
			AssignedTester: lookup(asset.AssignedTesterID),
			TesterAssigner: lookup(asset.AssignedTesterByID),
			CreatedBy:      lookup(&createdByID),
		})
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
			IsActive:  row.IsActive,
		}
	}
	return refs, nil
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

func copyOrEmpty(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return append([]string(nil), items...)
}

type assetModel struct {
	ID int64 `gorm:"column:id;primaryKey"`

	ProjectName        string `gorm:"column:project_name"`
	ProjectOwnerID     *int64 `gorm:"column:project_owner_id"`
	ProjectDescription string `gorm:"column:project_description"`

	AssetName       string   `gorm:"column:asset_name"`
	AssetURL        string   `gorm:"column:asset_url"`
	AssetType       string   `gorm:"column:asset_type"`
	TechnologyStack []string `gorm:"column:technology_stack;type:text[]"`

	Environment    string `gorm:"column:environment"`
	AuthMethod     string `gorm:"column:auth_method"`
	PrivateNetwork bool   `gorm:"column:private_network"`

	ScanFrequency       string `gorm:"column:scan_frequency"`
	PreferredTestWindow string `gorm:"column:preferred_test_window"`
	ScopeInclusions     string `gorm:"column:scope_inclusions"`
	ScopeExclusions     string `gorm:"column:scope_exclusions"`

	NotifyOn           []string `gorm:"column:notify_on;type:text[]"`
	NotificationEmails []string `gorm:"column:notification_emails;type:text[]"`

	PlanTier           string     `gorm:"column:plan_tier"`
	TestsPerMonth      *int       `gorm:"column:tests_per_month"`
	ContractExpiryDate *time.Time `gorm:"column:contract_expiry_date"`

	Tags           []string `gorm:"column:tags;type:text[]"`
	SupportingDocs []string `gorm:"column:supporting_docs;type:text[]"`

	AssignedToID *int64     `gorm:"column:assigned_to_id"`
	AssignedAt   *time.Time `gorm:"column:assigned_at"`
	AssignedByID *int64     `gorm:"column:assigned_by_id"`

	AssignedTesterID   *int64     `gorm:"column:assigned_tester_id"`
	AssignedTesterAt   *time.Time `gorm:"column:assigned_tester_at"`
	AssignedTesterByID *int64     `gorm:"column:assigned_tester_by_id"`

	CreatedByID int64     `gorm:"column:created_by_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (assetModel) TableName() string { return "assets" }

func toAssetModel(asset entities.Asset) assetModel {
	return assetModel{
		ID:                  asset.ID,
		ProjectName:         asset.ProjectName,
		ProjectOwnerID:      asset.ProjectOwnerID,
		ProjectDescription:  asset.ProjectDescription,
		AssetName:           asset.AssetName,
		AssetURL:            asset.AssetURL,
		AssetType:           asset.AssetType,
		TechnologyStack:     copyOrEmpty(asset.TechnologyStack),
		Environment:         asset.Environment,
		AuthMethod:          asset.AuthMethod,
		PrivateNetwork:      asset.PrivateNetwork,
		ScanFrequency:       asset.ScanFrequency,
		PreferredTestWindow: asset.PreferredTestWindow,
		ScopeInclusions:     asset.ScopeInclusions,
		ScopeExclusions:     asset.ScopeExclusions,
		NotifyOn:            copyOrEmpty(asset.NotifyOn),
		NotificationEmails:  copyOrEmpty(asset.NotificationEmails),
		PlanTier:            asset.PlanTier,
		TestsPerMonth:       asset.TestsPerMonth,
		ContractExpiryDate:  asset.ContractExpiryDate,
		Tags:                copyOrEmpty(asset.Tags),
		SupportingDocs:      copyOrEmpty(asset.SupportingDocs),
		AssignedToID:        asset.AssignedToID,
		AssignedAt:          asset.AssignedAt,
		AssignedByID:        asset.AssignedByID,
		AssignedTesterID:    asset.AssignedTesterID,
		AssignedTesterAt:    asset.AssignedTesterAt,
		AssignedTesterByID:  asset.AssignedTesterByID,
		CreatedByID:         asset.CreatedByID,
		CreatedAt:           asset.CreatedAt,
		UpdatedAt:           asset.UpdatedAt,
	}
}

func (m assetModel) toEntity() entities.Asset {
	return entities.Asset{
		ID:                  m.ID,
		ProjectName:         m.ProjectName,
		ProjectOwnerID:      m.ProjectOwnerID,
		ProjectDescription:  m.ProjectDescription,
		AssetName:           m.AssetName,
		AssetURL:            m.AssetURL,
		AssetType:           m.AssetType,
		TechnologyStack:     copyOrEmpty(m.TechnologyStack),
		Environment:         m.Environment,
		AuthMethod:          m.AuthMethod,
		PrivateNetwork:      m.PrivateNetwork,
		ScanFrequency:       m.ScanFrequency,
		PreferredTestWindow: m.PreferredTestWindow,
		ScopeInclusions:     m.ScopeInclusions,
		ScopeExclusions:     m.ScopeExclusions,
		NotifyOn:            copyOrEmpty(m.NotifyOn),
		NotificationEmails:  copyOrEmpty(m.NotificationEmails),
		PlanTier:            m.PlanTier,
		TestsPerMonth:       m.TestsPerMonth,
		ContractExpiryDate:  m.ContractExpiryDate,
		Tags:                copyOrEmpty(m.Tags),
		SupportingDocs:      copyOrEmpty(m.SupportingDocs),
		AssignedToID:        m.AssignedToID,
		AssignedAt:          m.AssignedAt,
		AssignedByID:        m.AssignedByID,
		AssignedTesterID:    m.AssignedTesterID,
		AssignedTesterAt:    m.AssignedTesterAt,
		AssignedTesterByID:  m.AssignedTesterByID,
		CreatedByID:         m.CreatedByID,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

type assetAssignmentModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	AssetID      int64     `gorm:"column:asset_id"`
	AssignedToID int64     `gorm:"column:assigned_to_id"`
	AssignedByID int64     `gorm:"column:assigned_by_id"`
	AssignedAt   time.Time `gorm:"column:assigned_at"`
	Status       string    `gorm:"column:status"`
	Notes        string    `gorm:"column:notes"`
}

func (assetAssignmentModel) TableName() string { return "asset_assignments" }

type clientAssignmentModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	AssetID      int64     `gorm:"column:asset_id;uniqueIndex:client_team_assignments_pair"`
	MemberID     int64     `gorm:"column:client_team_member_id;uniqueIndex:client_team_assignments_pair"`
	AssignedByID int64     `gorm:"column:assigned_by_id"`
	AssignedAt   time.Time `gorm:"column:assigned_at"`
	Status       string    `gorm:"column:status"`
	Notes        string    `gorm:"column:notes"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (clientAssignmentModel) TableName() string { return "client_team_assignments" }

func (m clientAssignmentModel) toEntity() entities.ClientTeamAssignment {
	return entities.ClientTeamAssignment{
		ID:           m.ID,
		AssetID:      m.AssetID,
		MemberID:     m.MemberID,
		AssignedByID: m.AssignedByID,
		AssignedAt:   m.AssignedAt,
		Status:       m.Status,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type userRefModel struct {
	ID        int64  `gorm:"column:id;primaryKey"`
	Username  string `gorm:"column:username"`
	Email     string `gorm:"column:email"`
	FirstName string `gorm:"column:first_name"`
	LastName  string `gorm:"column:last_name"`
	Role      string `gorm:"column:role"`
	IsActive  bool   `gorm:"column:is_active"`
}

func (userRefModel) TableName() string { return "users" }
