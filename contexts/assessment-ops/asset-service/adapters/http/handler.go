package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vulntrack/contexts/assessment-ops/asset-service/application"
	domainerrors "vulntrack/contexts/assessment-ops/asset-service/domain/errors"
	"vulntrack/contexts/assessment-ops/asset-service/ports"
	httptransport "vulntrack/contexts/assessment-ops/asset-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListAssetsHandler(ctx context.Context, actor application.Actor) (httptransport.AssetListResponse, error) {
	details, err := h.Service.ListAssets(ctx, actor)
	if err != nil {
		return httptransport.AssetListResponse{}, err
	}
	return httptransport.AssetListResponse{Status: "success", Data: toAssetList(details)}, nil
}

func (h Handler) CreateAssetHandler(ctx context.Context, actor application.Actor, req httptransport.CreateAssetRequest, meta application.RequestMeta) (httptransport.AssetResponse, error) {
	input := application.CreateAssetInput{
		ProjectName:         req.ProjectName,
		ProjectOwnerID:      req.ProjectOwnerID,
		ProjectDescription:  req.ProjectDescription,
		AssetName:           req.AssetName,
		AssetURL:            req.AssetURL,
		AssetType:           req.AssetType,
		TechnologyStack:     req.TechnologyStack,
		Environment:         req.Environment,
		AuthMethod:          req.AuthMethod,
		PrivateNetwork:      req.PrivateNetwork,
		ScanFrequency:       req.ScanFrequency,
		PreferredTestWindow: req.PreferredTestWindow,
		ScopeInclusions:     req.ScopeInclusions,
		ScopeExclusions:     req.ScopeExclusions,
		NotifyOn:            req.NotifyOn,
		NotificationEmails:  req.NotificationEmails,
		PlanTier:            req.PlanTier,
		TestsPerMonth:       req.TestsPerMonth,
		Tags:                req.Tags,
		SupportingDocs:      req.SupportingDocs,
	}
	if expiry, ok, err := parseOptionalDate(req.ContractExpiryDate); err != nil {
		return httptransport.AssetResponse{}, domainerrors.ErrInvalidRequest
	} else if ok {
		input.ContractExpiryDate = &expiry
	}

	detail, err := h.Service.CreateAsset(ctx, actor, input, meta)
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return httptransport.AssetResponse{Status: "success", Data: toAssetData(detail)}, nil
}

func (h Handler) GetAssetHandler(ctx context.Context, actor application.Actor, assetID int64) (httptransport.AssetResponse, error) {
	detail, err := h.Service.GetAsset(ctx, actor, assetID)
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return httptransport.AssetResponse{Status: "success", Data: toAssetData(detail)}, nil
}

func (h Handler) UpdateAssetHandler(ctx context.Context, actor application.Actor, assetID int64, req httptransport.UpdateAssetRequest, meta application.RequestMeta) (httptransport.AssetResponse, error) {
	patch := ports.AssetPatch{
		ProjectName:         req.ProjectName,
		ProjectOwnerID:      req.ProjectOwnerID,
		ProjectDescription:  req.ProjectDescription,
		AssetName:           req.AssetName,
		AssetURL:            req.AssetURL,
		AssetType:           req.AssetType,
		TechnologyStack:     req.TechnologyStack,
		Environment:         req.Environment,
		AuthMethod:          req.AuthMethod,
		PrivateNetwork:      req.PrivateNetwork,
		ScanFrequency:       req.ScanFrequency,
		PreferredTestWindow: req.PreferredTestWindow,
		ScopeInclusions:     req.ScopeInclusions,
		ScopeExclusions:     req.ScopeExclusions,
		NotifyOn:            req.NotifyOn,
		NotificationEmails:  req.NotificationEmails,
		PlanTier:            req.PlanTier,
		TestsPerMonth:       req.TestsPerMonth,
		Tags:                req.Tags,
		SupportingDocs:      req.SupportingDocs,
	}
	if req.ContractExpiryDate != nil {
		if expiry, ok, err := parseOptionalDate(*req.ContractExpiryDate); err != nil {
			return httptransport.AssetResponse{}, domainerrors.ErrInvalidRequest
		} else if ok {
			patch.ContractExpiryDate = &expiry
		}
	}

	detail, err := h.Service.UpdateAsset(ctx, actor, assetID, patch, meta)
	if err != nil {
		return httptransport.AssetResponse{}, err
	}
	return httptransport.AssetResponse{Status: "success", Data: toAssetData(detail)}, nil
}

func (h Handler) DeleteAssetHandler(ctx context.Context, actor application.Actor, assetID int64, meta application.RequestMeta) (httptransport.MessageResponse, error) {
	if err := h.Service.DeleteAsset(ctx, actor, assetID, meta); err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Status: "success", Message: "asset deleted"}, nil
}

func (h Handler) AssignTeamLeaderHandler(ctx context.Context, actor application.Actor, assetID int64, req httptransport.AssignTeamLeaderRequest, meta application.RequestMeta) (httptransport.MessageResponse, error) {
	if err := h.Service.AssignTeamLeader(ctx, actor, assetID, req.TeamLeaderID, meta); err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Status: "success", Message: "asset assigned"}, nil
}

func (h Handler) UnassignTeamLeaderHandler(ctx context.Context, actor application.Actor, assetID int64, meta application.RequestMeta) (httptransport.MessageResponse, error) {
	if err := h.Service.UnassignTeamLeader(ctx, actor, assetID, meta); err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Status: "success", Message: "asset unassigned"}, nil
}

func (h Handler) MyTasksHandler(ctx context.Context, actor application.Actor) (httptransport.AssetListResponse, error) {
	details, err := h.Service.MyTasks(ctx, actor)
	if err != nil {
		return httptransport.AssetListResponse{}, err
	}
	return httptransport.AssetListResponse{Status: "success", Data: toAssetList(details)}, nil
}

func (h Handler) AssignTesterHandler(ctx context.Context, actor application.Actor, assetID int64, req httptransport.AssignTesterRequest, meta application.RequestMeta) (httptransport.MessageResponse, error) {
	if err := h.Service.AssignTester(ctx, actor, assetID, req.TesterID, meta); err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Status: "success", Message: "task assigned to tester"}, nil
}

func (h Handler) UnassignTesterHandler(ctx context.Context, actor application.Actor, assetID int64, meta application.RequestMeta) (httptransport.MessageResponse, error) {
	if err := h.Service.UnassignTester(ctx, actor, assetID, meta); err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Status: "success", Message: "task unassigned from tester"}, nil
}

func (h Handler) MyAssignedTasksHandler(ctx context.Context, actor application.Actor) (httptransport.AssetListResponse, error) {
	details, err := h.Service.MyAssignedTasks(ctx, actor)
	if err != nil {
		return httptransport.AssetListResponse{}, err
	}
	return httptransport.AssetListResponse{Status: "success", Data: toAssetList(details)}, nil
}

func (h Handler) GrantClientAccessHandler(ctx context.Context, actor application.Actor, assetID int64, req httptransport.ClientGrantRequest, meta application.RequestMeta) (httptransport.MessageResponse, error) {
	if err := h.Service.GrantClientAccess(ctx, actor, assetID, req.ClientTeamMemberID, meta); err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Status: "success", Message: "asset assigned to client team"}, nil
}

func (h Handler) RevokeClientAccessHandler(ctx context.Context, actor application.Actor, assetID int64, req httptransport.ClientGrantRequest, meta application.RequestMeta) (httptransport.MessageResponse, error) {
	if err := h.Service.RevokeClientAccess(ctx, actor, assetID, req.ClientTeamMemberID, meta); err != nil {
		return httptransport.MessageResponse{}, err
	}
	return httptransport.MessageResponse{Status: "success", Message: "asset unassigned from client team"}, nil
}

func (h Handler) ClientGrantsHandler(ctx context.Context, actor application.Actor, assetID int64) (httptransport.ClientGrantListResponse, error) {
	grants, err := h.Service.ClientGrants(ctx, actor, assetID)
	if err != nil {
		return httptransport.ClientGrantListResponse{}, err
	}
	items := make([]httptransport.ClientGrantData, 0, len(grants))
	for _, grant := range grants {
		items = append(items, httptransport.ClientGrantData{
			ID:         grant.Assignment.ID,
			AssetID:    grant.Assignment.AssetID,
			Member:     toUserRefData(grant.Member),
			AssignedBy: toUserRefData(grant.AssignedBy),
			AssignedAt: formatTime(grant.Assignment.AssignedAt),
			Status:     grant.Assignment.Status,
			Notes:      grant.Assignment.Notes,
		})
	}
	return httptransport.ClientGrantListResponse{Status: "success", Data: items}, nil
}

func (h Handler) MyGrantedAssetsHandler(ctx context.Context, actor application.Actor) (httptransport.GrantedAssetListResponse, error) {
	grants, err := h.Service.MyGrantedAssets(ctx, actor)
	if err != nil {
		return httptransport.GrantedAssetListResponse{}, err
	}
	items := make([]httptransport.GrantedAssetData, 0, len(grants))
	for _, grant := range grants {
		item := httptransport.GrantedAssetData{AssetData: toAssetData(grant.Detail)}
		item.Assignment.ID = grant.Assignment.ID
		item.Assignment.AssignedAt = formatTime(grant.Assignment.AssignedAt)
		item.Assignment.Status = grant.Assignment.Status
		item.Assignment.Notes = grant.Assignment.Notes
		if grant.AssignedBy != nil {
			ref := toUserRefData(*grant.AssignedBy)
			item.GrantedBy = &ref
		}
		items = append(items, item)
	}
	return httptransport.GrantedAssetListResponse{Status: "success", Data: items}, nil
}

func toAssetData(detail ports.AssetDetail) httptransport.AssetData {
	asset := detail.Asset
	data := httptransport.AssetData{
		ID:                  asset.ID,
		ProjectName:         asset.ProjectName,
		ProjectDescription:  asset.ProjectDescription,
		AssetName:           asset.AssetName,
		AssetURL:            asset.AssetURL,
		AssetType:           asset.AssetType,
		TechnologyStack:     emptyIfNil(asset.TechnologyStack),
		Environment:         asset.Environment,
		AuthMethod:          asset.AuthMethod,
		PrivateNetwork:      asset.PrivateNetwork,
		ScanFrequency:       asset.ScanFrequency,
		PreferredTestWindow: asset.PreferredTestWindow,
		ScopeInclusions:     asset.ScopeInclusions,
		ScopeExclusions:     asset.ScopeExclusions,
		NotifyOn:            emptyIfNil(asset.NotifyOn),
		NotificationEmails:  emptyIfNil(asset.NotificationEmails),
		PlanTier:            asset.PlanTier,
		TestsPerMonth:       asset.TestsPerMonth,
		Tags:                emptyIfNil(asset.Tags),
		SupportingDocs:      emptyIfNil(asset.SupportingDocs),
		CreatedAt:           formatTime(asset.CreatedAt),
		UpdatedAt:           formatTime(asset.UpdatedAt),
	}
	if asset.ContractExpiryDate != nil {
		data.ContractExpiryDate = asset.ContractExpiryDate.UTC().Format("2006-01-02")
	}
	if asset.AssignedAt != nil {
		data.AssignedAt = formatTime(*asset.AssignedAt)
	}
	if asset.AssignedTesterAt != nil {
		data.AssignedTesterAt = formatTime(*asset.AssignedTesterAt)
	}
	data.ProjectOwner = optionalRef(detail.Owner)
	data.AssignedTo = optionalRef(detail.AssignedTo)
	data.AssignedBy = optionalRef(detail.AssignedBy)
	data.AssignedTester = optionalRef(detail.AssignedTester)
	data.AssignedTesterBy = optionalRef(detail.TesterAssigner)
	data.CreatedBy = optionalRef(detail.CreatedBy)
	return data
}

func toAssetList(details []ports.AssetDetail) []httptransport.AssetData {
	items := make([]httptransport.AssetData, 0, len(details))
	for _, detail := range details {
		items = append(items, toAssetData(detail))
	}
	return items
}

func toUserRefData(ref ports.UserRef) httptransport.UserRefData {
	return httptransport.UserRefData{
		ID:        ref.ID,
		Username:  ref.Username,
		FirstName: ref.FirstName,
		LastName:  ref.LastName,
		Role:      string(ref.Role),
	}
}

func optionalRef(ref *ports.UserRef) *httptransport.UserRefData {
	if ref == nil {
		return nil
	}
	data := toUserRefData(*ref)
	return &data
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

func parseOptionalDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return ts.UTC(), true, nil
}
