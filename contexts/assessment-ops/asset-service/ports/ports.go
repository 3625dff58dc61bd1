package ports

import (
	"context"
	"time"

	"vulntrack/contexts/assessment-ops/asset-service/domain/entities"
	"vulntrack/internal/shared/roles"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// UserRef is the slim projection of an account the asset context
// needs for gating and display.
type UserRef struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      roles.Role
	IsActive  bool
}

func (u UserRef) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserDirectory resolves account references owned by the identity
// context. Read-only.
type UserDirectory interface {
	UserRef(ctx context.Context, userID int64) (UserRef, error)
}

// AssetPatch carries optional editable fields. Nil means "leave
// unchanged".
type AssetPatch struct {
	ProjectName         *string
	ProjectOwnerID      *int64
	ProjectDescription  *string
	AssetName           *string
	AssetURL            *string
	AssetType           *string
	TechnologyStack     []string
	Environment         *string
	AuthMethod          *string
	PrivateNetwork      *bool
	ScanFrequency       *string
	PreferredTestWindow *string
	ScopeInclusions     *string
	ScopeExclusions     *string
	NotifyOn            []string
	NotificationEmails  []string
	PlanTier            *string
	TestsPerMonth       *int
	ContractExpiryDate  *time.Time
	Tags                []string
	SupportingDocs      []string
}

// AssetDetail is an asset joined with the user references its
// responses embed.
type AssetDetail struct {
	Asset          entities.Asset
	Owner          *UserRef
	AssignedTo     *UserRef
	AssignedBy     *UserRef
	AssignedTester *UserRef
	TesterAssigner *UserRef
	CreatedBy      *UserRef
}

// ClientAssignmentDetail joins an active grant with the member and
// grantor references.
type ClientAssignmentDetail struct {
	Assignment entities.ClientTeamAssignment
	Member     UserRef
	AssignedBy UserRef
}

// ClientAssetGrant is an asset seen through an active client-team
// grant.
type ClientAssetGrant struct {
	Detail     AssetDetail
	Assignment entities.ClientTeamAssignment
	AssignedBy *UserRef
}

// Repository is the asset context's persistence boundary.
type Repository interface {
	GetAsset(ctx context.Context, assetID int64) (entities.Asset, error)
	GetAssetDetail(ctx context.Context, assetID int64) (AssetDetail, error)
	CreateAsset(ctx context.Context, asset entities.Asset) (entities.Asset, error)
	UpdateAsset(ctx context.Context, assetID int64, patch AssetPatch, now time.Time) (entities.Asset, error)
	DeleteAssetCascade(ctx context.Context, assetID int64) error

	ListAllAssets(ctx context.Context) ([]AssetDetail, error)
	ListAssetsOwnedOrCreated(ctx context.Context, userID int64) ([]AssetDetail, error)
	ListAssetsByTeamLeader(ctx context.Context, leaderID int64) ([]AssetDetail, error)
	ListAssetsByTester(ctx context.Context, testerID int64) ([]AssetDetail, error)

	SetTeamLeader(ctx context.Context, assetID int64, leaderID int64, byID int64, at time.Time) error
	ClearTeamLeader(ctx context.Context, assetID int64) error
	SetTester(ctx context.Context, assetID int64, testerID int64, byID int64, at time.Time) error
	ClearTester(ctx context.Context, assetID int64) error

	AppendAssignment(ctx context.Context, assignment entities.AssetAssignment) error
	DeleteAssignments(ctx context.Context, assetID int64) error

	EnsureClientGrant(ctx context.Context, assetID int64, memberID int64, byID int64, now time.Time) error
	RevokeClientGrant(ctx context.Context, assetID int64, memberID int64, now time.Time) error
	ActiveClientGrants(ctx context.Context, assetID int64) ([]ClientAssignmentDetail, error)
	AssetsGrantedToMember(ctx context.Context, memberID int64) ([]ClientAssetGrant, error)
}
