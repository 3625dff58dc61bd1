package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vulntrack/contexts/assessment-ops/asset-service/domain/entities"
	domainerrors "vulntrack/contexts/assessment-ops/asset-service/domain/errors"
	"vulntrack/contexts/assessment-ops/asset-service/ports"
)

// Store is an in-memory ports.Repository and ports.UserDirectory for
// development and tests. User references are seeded by the caller.
type Store struct {
	mu sync.RWMutex

	assets       map[int64]entities.Asset
	assignments  map[int64]entities.AssetAssignment
	clientGrants map[int64]entities.ClientTeamAssignment
	users        map[int64]ports.UserRef

	nextAssetID      int64
	nextAssignmentID int64
	nextGrantID      int64
}

func NewStore() *Store {
	return &Store{
		assets:           make(map[int64]entities.Asset),
		assignments:      make(map[int64]entities.AssetAssignment),
		clientGrants:     make(map[int64]entities.ClientTeamAssignment),
		users:            make(map[int64]ports.UserRef),
		nextAssetID:      1,
		nextAssignmentID: 1,
		nextGrantID:      1,
	}
}

// SeedUser registers a user reference resolvable through the
// directory port.
func (s *Store) SeedUser(ref ports.UserRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[ref.ID] = ref
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

func (s *Store) GetAsset(ctx context.Context, assetID int64) (entities.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return entities.Asset{}, domainerrors.ErrAssetNotFound
	}
	return asset, nil
}

func (s *Store) GetAssetDetail(ctx context.Context, assetID int64) (ports.AssetDetail, error) {
	asset, err := s.GetAsset(ctx, assetID)
	if err != nil {
		return ports.AssetDetail{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detail(asset), nil
}

func (s *Store) CreateAsset(ctx context.Context, asset entities.Asset) (entities.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset.ID = s.nextAssetID
	s.nextAssetID++
	s.assets[asset.ID] = asset
	return asset, nil
}

func (s *Store) UpdateAsset(ctx context.Context, assetID int64, patch ports.AssetPatch, now time.Time) (entities.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return entities.Asset{}, domainerrors.ErrAssetNotFound
	}
	if patch.ProjectName != nil {
		asset.ProjectName = *patch.ProjectName
	}
	if patch.ProjectOwnerID != nil {
		asset.ProjectOwnerID = patch.ProjectOwnerID
	}
	if patch.ProjectDescription != nil {
		asset.ProjectDescription = *patch.ProjectDescription
	}
	if patch.AssetName != nil {
		asset.AssetName = *patch.AssetName
	}
	if patch.AssetURL != nil {
		asset.AssetURL = *patch.AssetURL
	}
	if patch.AssetType != nil {
		asset.AssetType = *patch.AssetType
	}
	if patch.TechnologyStack != nil {
		asset.TechnologyStack = append([]string(nil), patch.TechnologyStack...)
	}
	if patch.Environment != nil {
		asset.Environment = *patch.Environment
	}
	if patch.AuthMethod != nil {
		asset.AuthMethod = *patch.AuthMethod
	}
	if patch.PrivateNetwork != nil {
		asset.PrivateNetwork = *patch.PrivateNetwork
	}
	if patch.ScanFrequency != nil {
		asset.ScanFrequency = *patch.ScanFrequency
	}
	if patch.PreferredTestWindow != nil {
		asset.PreferredTestWindow = *patch.PreferredTestWindow
	}
	if patch.ScopeInclusions != nil {
		asset.ScopeInclusions = *patch.ScopeInclusions
	}
	if patch.ScopeExclusions != nil {
		asset.ScopeExclusions = *patch.ScopeExclusions
	}
	if patch.NotifyOn != nil {
		asset.NotifyOn = append([]string(nil), patch.NotifyOn...)
	}
	if patch.NotificationEmails != nil {
		asset.NotificationEmails = append([]string(nil), patch.NotificationEmails...)
	}
	if patch.PlanTier != nil {
		asset.PlanTier = *patch.PlanTier
	}
	if patch.TestsPerMonth != nil {
		asset.TestsPerMonth = patch.TestsPerMonth
	}
	if patch.ContractExpiryDate != nil {
		asset.ContractExpiryDate = patch.ContractExpiryDate
	}
	if patch.Tags != nil {
		asset.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.SupportingDocs != nil {
		asset.SupportingDocs = append([]string(nil), patch.SupportingDocs...)
	}
	asset.UpdatedAt = now.UTC()
	s.assets[assetID] = asset
	return asset, nil
}

func (s *Store) DeleteAssetCascade(ctx context.Context, assetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assets[assetID]; !ok {
		return domainerrors.ErrAssetNotFound
	}
	for id, assignment := range s.assignments {
		if assignment.AssetID == assetID {
			delete(s.assignments, id)
		}
	}
	for id, grant := range s.clientGrants {
		if grant.AssetID == assetID {
			delete(s.clientGrants, id)
		}
	}
	delete(s.assets, assetID)
	return nil
}

func (s *Store) ListAllAssets(ctx context.Context) ([]ports.AssetDetail, error) {
	return s.listWhere(func(entities.Asset) bool { return true }), nil
}

func (s *Store) ListAssetsOwnedOrCreated(ctx context.Context, userID int64) ([]ports.AssetDetail, error) {
	return s.listWhere(func(asset entities.Asset) bool {
		if asset.CreatedByID == userID {
			return true
		}
		return asset.ProjectOwnerID != nil && *asset.ProjectOwnerID == userID
	}), nil
}

func (s *Store) ListAssetsByTeamLeader(ctx context.Context, leaderID int64) ([]ports.AssetDetail, error) {
	return s.listWhere(func(asset entities.Asset) bool {
		return asset.AssignedToID != nil && *asset.AssignedToID == leaderID
	}), nil
}

func (s *Store) ListAssetsByTester(ctx context.Context, testerID int64) ([]ports.AssetDetail, error) {
	return s.listWhere(func(asset entities.Asset) bool {
		return asset.AssignedTesterID != nil && *asset.AssignedTesterID == testerID
	}), nil
}

func (s *Store) listWhere(match func(entities.Asset) bool) []ports.AssetDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assets := make([]entities.Asset, 0, len(s.assets))
	for _, asset := range s.assets {
		if match(asset) {
			assets = append(assets, asset)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	details := make([]ports.AssetDetail, 0, len(assets))
	for _, asset := range assets {
		details = append(details, s.detail(asset))
	}
	return details
}

func (s *Store) detail(asset entities.Asset) ports.AssetDetail {
	lookup := func(id *int64) *ports.UserRef {
		if id == nil {
			return nil
		}
		if ref, ok := s.users[*id]; ok {
			return &ref
		}
		return nil
	}
	createdByID := asset.CreatedByID
	return ports.AssetDetail{
		Asset:          asset,
		Owner:          lookup(asset.ProjectOwnerID),
		AssignedTo:     lookup(asset.AssignedToID),
		AssignedBy:     lookup(asset.AssignedByID),
		AssignedTester: lookup(asset.AssignedTesterID),
		TesterAssigner: lookup(asset.AssignedTesterByID),
		CreatedBy:      lookup(&createdByID),
	}
}

func (s *Store) SetTeamLeader(ctx context.Context, assetID int64, leaderID int64, byID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	ts := at.UTC()
	asset.AssignedToID = &leaderID
	asset.AssignedByID = &byID
	asset.AssignedAt = &ts
	s.assets[assetID] = asset
	return nil
}

func (s *Store) ClearTeamLeader(ctx context.Context, assetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	asset.AssignedToID = nil
	asset.AssignedByID = nil
	asset.AssignedAt = nil
	s.assets[assetID] = asset
	return nil
}

func (s *Store) SetTester(ctx context.Context, assetID int64, testerID int64, byID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	ts := at.UTC()
	asset.AssignedTesterID = &testerID
	asset.AssignedTesterByID = &byID
	asset.AssignedTesterAt = &ts
	s.assets[assetID] = asset
	return nil
}

func (s *Store) ClearTester(ctx context.Context, assetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	asset.AssignedTesterID = nil
	asset.AssignedTesterByID = nil
	asset.AssignedTesterAt = nil
	s.assets[assetID] = asset
	return nil
}

func (s *Store) AppendAssignment(ctx context.Context, assignment entities.AssetAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignment.ID = s.nextAssignmentID
	s.nextAssignmentID++
	s.assignments[assignment.ID] = assignment
	return nil
}

func (s *Store) DeleteAssignments(ctx context.Context, assetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, assignment := range s.assignments {
		if assignment.AssetID == assetID {
			delete(s.assignments, id)
		}
	}
	return nil
}

func (s *Store) EnsureClientGrant(ctx context.Context, assetID int64, memberID int64, byID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, grant := range s.clientGrants {
		if grant.AssetID == assetID && grant.MemberID == memberID {
			grant.Status = entities.ClientAssignmentActive
			grant.AssignedByID = byID
			grant.UpdatedAt = now.UTC()
			s.clientGrants[id] = grant
			return nil
		}
	}
	grant := entities.ClientTeamAssignment{
		ID:           s.nextGrantID,
		AssetID:      assetID,
		MemberID:     memberID,
		AssignedByID: byID,
		AssignedAt:   now.UTC(),
		Status:       entities.ClientAssignmentActive,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
	s.nextGrantID++
	s.clientGrants[grant.ID] = grant
	return nil
}

func (s *Store) RevokeClientGrant(ctx context.Context, assetID int64, memberID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, grant := range s.clientGrants {
		if grant.AssetID == assetID && grant.MemberID == memberID {
			grant.Status = entities.ClientAssignmentInactive
			grant.UpdatedAt = now.UTC()
			s.clientGrants[id] = grant
		}
	}
	return nil
}

func (s *Store) ActiveClientGrants(ctx context.Context, assetID int64) ([]ports.ClientAssignmentDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grants := make([]entities.ClientTeamAssignment, 0)
	for _, grant := range s.clientGrants {
		if grant.AssetID == assetID && grant.Status == entities.ClientAssignmentActive {
			grants = append(grants, grant)
		}
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].ID < grants[j].ID })
	items := make([]ports.ClientAssignmentDetail, 0, len(grants))
	for _, grant := range grants {
		items = append(items, ports.ClientAssignmentDetail{
			Assignment: grant,
			Member:     s.users[grant.MemberID],
			AssignedBy: s.users[grant.AssignedByID],
		})
	}
	return items, nil
}

func (s *Store) AssetsGrantedToMember(ctx context.Context, memberID int64) ([]ports.ClientAssetGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grants := make([]entities.ClientTeamAssignment, 0)
	for _, grant := range s.clientGrants {
		if grant.MemberID == memberID && grant.Status == entities.ClientAssignmentActive {
			grants = append(grants, grant)
		}
	}
	sort.Slice(grants, func(i, j int) bool { return grants[i].ID < grants[j].ID })
	items := make([]ports.ClientAssetGrant, 0, len(grants))
	for _, grant := range grants {
		asset, ok := s.assets[grant.AssetID]
		if !ok {
			continue
		}
		item := ports.ClientAssetGrant{Detail: s.detail(asset), Assignment: grant}
		if ref, ok := s.users[grant.AssignedByID]; ok {
			item.AssignedBy = &ref
		}
		items = append(items, item)
	}
	return items, nil
}
