// Package httpadapter adapts the activity application service to the
// transport DTO contract. Raw query strings are parsed here; routing
// and error mapping live in the platform HTTP server.
package httpadapter

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"vulntrack/contexts/observability/activity-service/application"
	domainerrors "vulntrack/contexts/observability/activity-service/domain/errors"
	"vulntrack/contexts/observability/activity-service/ports"
	httptransport "vulntrack/contexts/observability/activity-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ActivityLogs(ctx context.Context, viewer application.Viewer, query httptransport.ActivityLogsQuery) (httptransport.ActivityLogListResponse, error) {
	filter := ports.ActivityFilter{ActivityType: query.ActivityType}
	var err error
	if filter.StartDate, err = parseOptionalTime(query.StartDate); err != nil {
		return httptransport.ActivityLogListResponse{}, domainerrors.ErrInvalidRequest
	}
	if filter.EndDate, err = parseOptionalTime(query.EndDate); err != nil {
		return httptransport.ActivityLogListResponse{}, domainerrors.ErrInvalidRequest
	}
	if filter.UserID, err = parseOptionalID(query.UserID); err != nil {
		return httptransport.ActivityLogListResponse{}, domainerrors.ErrInvalidRequest
	}
	if filter.Limit, filter.Offset, err = parsePaging(query.Limit, query.Offset); err != nil {
		return httptransport.ActivityLogListResponse{}, domainerrors.ErrInvalidRequest
	}

	details, err := h.Service.ActivityLogs(ctx, viewer, filter)
	if err != nil {
		return httptransport.ActivityLogListResponse{}, err
	}
	items := make([]httptransport.ActivityLogData, 0, len(details))
	for _, detail := range details {
		items = append(items, toActivityLogData(detail))
	}
	return httptransport.ActivityLogListResponse{Status: "success", Data: items}, nil
}

func (h Handler) UserSessions(ctx context.Context, viewer application.Viewer, query httptransport.SessionsQuery) (httptransport.SessionListResponse, error) {
	filter := ports.SessionFilter{}
	var err error
	if filter.StartDate, err = parseOptionalTime(query.StartDate); err != nil {
		return httptransport.SessionListResponse{}, domainerrors.ErrInvalidRequest
	}
	if filter.EndDate, err = parseOptionalTime(query.EndDate); err != nil {
		return httptransport.SessionListResponse{}, domainerrors.ErrInvalidRequest
	}
	if filter.UserID, err = parseOptionalID(query.UserID); err != nil {
		return httptransport.SessionListResponse{}, domainerrors.ErrInvalidRequest
	}
	if query.IsActive != "" {
		active := query.IsActive == "true"
		filter.IsActive = &active
	}
	if filter.Limit, filter.Offset, err = parsePaging(query.Limit, query.Offset); err != nil {
		return httptransport.SessionListResponse{}, domainerrors.ErrInvalidRequest
	}

	details, err := h.Service.UserSessions(ctx, viewer, filter)
	if err != nil {
		return httptransport.SessionListResponse{}, err
	}
	items := make([]httptransport.SessionData, 0, len(details))
	for _, detail := range details {
		items = append(items, toSessionData(detail))
	}
	return httptransport.SessionListResponse{Status: "success", Data: items}, nil
}

func (h Handler) AssetActivityLogs(ctx context.Context, viewer application.Viewer, query httptransport.AssetActivityQuery) (httptransport.AssetActivityListResponse, error) {
	filter := ports.AssetActivityFilter{ActivityType: query.ActivityType}
	var err error
	if filter.AssetID, err = parseOptionalID(query.AssetID); err != nil {
		return httptransport.AssetActivityListResponse{}, domainerrors.ErrInvalidRequest
	}
	if filter.StartDate, err = parseOptionalTime(query.StartDate); err != nil {
		return httptransport.AssetActivityListResponse{}, domainerrors.ErrInvalidRequest
	}
	if filter.EndDate, err = parseOptionalTime(query.EndDate); err != nil {
		return httptransport.AssetActivityListResponse{}, domainerrors.ErrInvalidRequest
	}
	if filter.UserID, err = parseOptionalID(query.UserID); err != nil {
		return httptransport.AssetActivityListResponse{}, domainerrors.ErrInvalidRequest
	}
	if filter.Limit, filter.Offset, err = parsePaging(query.Limit, query.Offset); err != nil {
		return httptransport.AssetActivityListResponse{}, domainerrors.ErrInvalidRequest
	}

	details, err := h.Service.AssetActivityLogs(ctx, viewer, filter)
	if err != nil {
		return httptransport.AssetActivityListResponse{}, err
	}
	items := make([]httptransport.AssetActivityData, 0, len(details))
	for _, detail := range details {
		items = append(items, toAssetActivityData(detail))
	}
	return httptransport.AssetActivityListResponse{Status: "success", Data: items}, nil
}

func (h Handler) AuditTrail(ctx context.Context, viewer application.Viewer, query httptransport.AuditTrailQuery) (httptransport.AuditTrailListResponse, error) {
	filter := ports.AuditFilter{Resource: query.Resource, Action: query.Action}
	var err error
	if filter.Limit, filter.Offset, err = parsePaging(query.Limit, query.Offset); err != nil {
		return httptransport.AuditTrailListResponse{}, domainerrors.ErrInvalidRequest
	}

	details, err := h.Service.AuditTrail(ctx, viewer, filter)
	if err != nil {
		return httptransport.AuditTrailListResponse{}, err
	}
	items := make([]httptransport.AuditEntryData, 0, len(details))
	for _, detail := range details {
		items = append(items, toAuditEntryData(detail))
	}
	return httptransport.AuditTrailListResponse{Status: "success", Data: items}, nil
}

func (h Handler) ActivitySummary(ctx context.Context, viewer application.Viewer, query httptransport.SummaryQuery) (httptransport.SummaryResponse, error) {
	start, err := parseOptionalTime(query.StartDate)
	if err != nil {
		return httptransport.SummaryResponse{}, domainerrors.ErrInvalidRequest
	}
	end, err := parseOptionalTime(query.EndDate)
	if err != nil {
		return httptransport.SummaryResponse{}, domainerrors.ErrInvalidRequest
	}

	summary, err := h.Service.ActivitySummary(ctx, viewer, start, end)
	if err != nil {
		return httptransport.SummaryResponse{}, err
	}

	resp := httptransport.SummaryResponse{Status: "success"}
	counts := make([]httptransport.ActivityCountData, 0, len(summary.ActivityCounts))
	for activityType, count := range summary.ActivityCounts {
		counts = append(counts, httptransport.ActivityCountData{ActivityType: activityType, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].ActivityType < counts[j].ActivityType })
	resp.Data.ActivityCounts = counts
	resp.Data.ActiveSessions = summary.ActiveSessions
	recent := make([]httptransport.ActivityLogData, 0, len(summary.RecentActivities))
	for _, detail := range summary.RecentActivities {
		recent = append(recent, toActivityLogData(detail))
	}
	resp.Data.RecentActivities = recent
	resp.Data.DateRange.Start = formatTime(summary.RangeStart)
	resp.Data.DateRange.End = formatTime(summary.RangeEnd)
	return resp, nil
}

func toActivityLogData(detail ports.ActivityDetail) httptransport.ActivityLogData {
	log := detail.Log
	return httptransport.ActivityLogData{
		ID:           log.ID,
		User:         toUserRefData(detail.User),
		ActivityType: log.ActivityType,
		Action:       log.Action,
		ResourceType: log.ResourceType,
		ResourceID:   log.ResourceID,
		ResourceName: log.ResourceName,
		Details:      emptyIfNilMap(log.Details),
		IPAddress:    log.IPAddress,
		UserAgent:    log.UserAgent,
		SessionID:    log.SessionID,
		CreatedAt:    formatTime(log.CreatedAt),
	}
}

func toSessionData(detail ports.SessionDetail) httptransport.SessionData {
	session := detail.Session
	data := httptransport.SessionData{
		ID:           session.ID,
		User:         toUserRefData(detail.User),
		SessionID:    session.SessionID,
		LoginTime:    formatTime(session.LoginTime),
		IPAddress:    session.IPAddress,
		UserAgent:    session.UserAgent,
		IsActive:     session.IsActive,
		LastActivity: formatTime(session.LastActivity),
	}
	if session.LogoutTime != nil {
		data.LogoutTime = formatTime(*session.LogoutTime)
	}
	return data
}

func toAssetActivityData(detail ports.AssetActivityDetail) httptransport.AssetActivityData {
	log := detail.Log
	data := httptransport.AssetActivityData{
		ID:           log.ID,
		User:         toUserRefData(detail.User),
		ActivityType: log.ActivityType,
		Action:       log.Action,
		OldValues:    emptyIfNilMap(log.OldValues),
		NewValues:    emptyIfNilMap(log.NewValues),
		Details:      emptyIfNilMap(log.Details),
		CreatedAt:    formatTime(log.CreatedAt),
	}
	if detail.Asset != nil {
		data.Asset = &httptransport.AssetRefData{
			ID:          detail.Asset.ID,
			ProjectName: detail.Asset.ProjectName,
			AssetName:   detail.Asset.AssetName,
		}
	}
	return data
}

func toAuditEntryData(detail ports.AuditDetail) httptransport.AuditEntryData {
	entry := detail.Entry
	return httptransport.AuditEntryData{
		ID:         entry.ID,
		User:       toUserRefData(detail.User),
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Details:    emptyIfNilMap(entry.Details),
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		Timestamp:  formatTime(entry.Timestamp),
	}
}

func toUserRefData(ref *ports.UserRef) *httptransport.UserRefData {
	if ref == nil {
		return nil
	}
	return &httptransport.UserRefData{
		ID:        ref.ID,
		Username:  ref.Username,
		FirstName: ref.FirstName,
		LastName:  ref.LastName,
		Role:      string(ref.Role),
	}
}

func parseOptionalTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, nil
		}
	}
	return nil, domainerrors.ErrInvalidRequest
}

func parseOptionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domainerrors.ErrInvalidRequest
	}
	return &id, nil
}

func parsePaging(rawLimit, rawOffset string) (int, int, error) {
	limit, offset := 0, 0
	var err error
	if rawLimit != "" {
		if limit, err = strconv.Atoi(rawLimit); err != nil {
			return 0, 0, domainerrors.ErrInvalidRequest
		}
	}
	if rawOffset != "" {
		if offset, err = strconv.Atoi(rawOffset); err != nil {
			return 0, 0, domainerrors.ErrInvalidRequest
		}
	}
	return limit, offset, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func emptyIfNilMap(values map[string]any) map[string]any {
	if values == nil {
		return map[string]any{}
	}
	return values
}
