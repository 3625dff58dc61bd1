package postgresadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"vulntrack/contexts/observability/activity-service/domain/entities"
	"vulntrack/contexts/observability/activity-service/ports"
	"vulntrack/internal/shared/roles"

	"gorm.io/gorm"
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

func (r *Repository) InsertActivity(ctx context.Context, log entities.ActivityLog) error {
	row, err := toActivityModel(log)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) InsertAssetActivity(ctx context.Context, log entities.AssetActivityLog) error {
	row, err := toAssetActivityModel(log)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) InsertAuditEntry(ctx context.Context, entry entities.AuditEntry) error {
	row, err := toAuditModel(entry)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListActivities(ctx context.Context, visible []int64, filter ports.ActivityFilter) ([]ports.ActivityDetail, error) {
	tx := r.db.WithContext(ctx).Model(&activityModel{})
	if visible != nil {
		tx = tx.Where("user_id IN ?", visible)
	}
	if filter.StartDate != nil {
		tx = tx.Where("created_at >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		tx = tx.Where("created_at <= ?", filter.EndDate.UTC())
	}
	if filter.UserID != nil {
		tx = tx.Where("user_id = ?", *filter.UserID)
	}
	if filter.ActivityType != "" {
		tx = tx.Where("activity_type = ?", filter.ActivityType)
	}

	var rows []activityModel
	err := tx.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	refs, err := r.userRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]ports.ActivityDetail, 0, len(rows))
	for _, row := range rows {
		log, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		detail := ports.ActivityDetail{Log: log}
		if ref, ok := refs[row.UserID]; ok {
			detail.User = &ref
		}
		details = append(details, detail)
	}
	return details, nil
}

// ListSessions reads the identity context's user_sessions table
// read-only; the account service owns all writes to it.
func (r *Repository) ListSessions(ctx context.Context, visible []int64, filter ports.SessionFilter) ([]ports.SessionDetail, error) {
	tx := r.db.WithContext(ctx).Model(&sessionModel{})
	if visible != nil {
		tx = tx.Where("user_id IN ?", visible)
	}
	if filter.StartDate != nil {
		tx = tx.Where("login_time >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		tx = tx.Where("login_time <= ?", filter.EndDate.UTC())
	}
	if filter.UserID != nil {
		tx = tx.Where("user_id = ?", *filter.UserID)
	}
	if filter.IsActive != nil {
		tx = tx.Where("is_active = ?", *filter.IsActive)
	}

	var rows []sessionModel
	err := tx.Order("login_time DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	refs, err := r.userRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]ports.SessionDetail, 0, len(rows))
	for _, row := range rows {
		detail := ports.SessionDetail{Session: row.toEntity()}
		if ref, ok := refs[row.UserID]; ok {
			detail.User = &ref
		}
		details = append(details, detail)
	}
	return details, nil
}

func (r *Repository) ListAssetActivities(ctx context.Context, visible []int64, filter ports.AssetActivityFilter) ([]ports.AssetActivityDetail, error) {
	tx := r.db.WithContext(ctx).Model(&assetActivityModel{})
	if visible != nil {
		tx = tx.Where("user_id IN ?", visible)
	}
	if filter.AssetID != nil {
		tx = tx.Where("asset_id = ?", *filter.AssetID)
	}
	if filter.StartDate != nil {
		tx = tx.Where("created_at >= ?", filter.StartDate.UTC())
	}
	if filter.EndDate != nil {
		tx = tx.Where("created_at <= ?", filter.EndDate.UTC())
	}
	if filter.UserID != nil {
		tx = tx.Where("user_id = ?", *filter.UserID)
	}
	if filter.ActivityType != "" {
		tx = tx.Where("activity_type = ?", filter.ActivityType)
	}

	var rows []assetActivityModel
	err := tx.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	userIDs := make([]int64, 0, len(rows))
	assetIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.UserID)
		assetIDs = append(assetIDs, row.AssetID)
	}
	refs, err := r.userRefs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	assets, err := r.assetRefs(ctx, assetIDs)
	if err != nil {
		return nil, err
	}

	details := make([]ports.AssetActivityDetail, 0, len(rows))
	for _, row := range rows {
		log, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		detail := ports.AssetActivityDetail{Log: log}
		if ref, ok := refs[row.UserID]; ok {
			detail.User = &ref
		}
		if asset, ok := assets[row.AssetID]; ok {
			detail.Asset = &asset
		}
		details = append(details, detail)
	}
	return details, nil
}

func (r *Repository) ListAuditEntries(ctx context.Context, visible []int64, filter ports.AuditFilter) ([]ports.AuditDetail, error) {
	tx := r.db.WithContext(ctx).Model(&auditModel{})
	if visible != nil {
		tx = tx.Where("user_id IN ?", visible)
	}
	if filter.Resource != "" {
		tx = tx.Where("resource = ?", filter.Resource)
	}
	if filter.Action != "" {
		tx = tx.Where("action = ?", filter.Action)
	}

	var rows []auditModel
	err := tx.Order("timestamp DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	refs, err := r.userRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]ports.AuditDetail, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		detail := ports.AuditDetail{Entry: entry}
		if ref, ok := refs[row.UserID]; ok {
			detail.User = &ref
		}
		details = append(details, detail)
	}
	return details, nil
}

func (r *Repository) CountActivitiesByType(ctx context.Context, visible []int64, start, end time.Time) (map[string]int, error) {
	tx := r.db.WithContext(ctx).Model(&activityModel{}).
		Where("created_at >= ? AND created_at <= ?", start.UTC(), end.UTC())
	if visible != nil {
		tx = tx.Where("user_id IN ?", visible)
	}

	var rows []struct {
		ActivityType string `gorm:"column:activity_type"`
		Count        int    `gorm:"column:count"`
	}
	err := tx.Select("activity_type, COUNT(*) AS count").
		Group("activity_type").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.ActivityType] = row.Count
	}
	return counts, nil
}

func (r *Repository) CountActiveSessions(ctx context.Context, visible []int64) (int, error) {
	tx := r.db.WithContext(ctx).Model(&sessionModel{}).Where("is_active = ?", true)
	if visible != nil {
		tx = tx.Where("user_id IN ?", visible)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// UserRefs satisfies ports.UserDirectory with a read-only view of the
// identity context's users table.
func (r *Repository) UserRefs(ctx context.Context, userIDs []int64) (map[int64]ports.UserRef, error) {
	return r.userRefs(ctx, userIDs)
}

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

func (r *Repository) assetRefs(ctx context.Context, ids []int64) (map[int64]ports.AssetRef, error) {
	refs := make(map[int64]ports.AssetRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	var rows []assetRefModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		refs[row.ID] = ports.AssetRef{
			ID:          row.ID,
			ProjectName: row.ProjectName,
			AssetName:   row.AssetName,
		}
	}
	return refs, nil
}

func marshalMap(values map[string]any) (string, error) {
	if values == nil {
		values = map[string]any{}
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func unmarshalMap(raw string) (map[string]any, error) {
	values := map[string]any{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, err
	}
	return values, nil
}

type activityModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	UserID       int64     `gorm:"column:user_id;index"`
	ActivityType string    `gorm:"column:activity_type"`
	Action       string    `gorm:"column:action"`
	ResourceType string    `gorm:"column:resource_type"`
	ResourceID   int64     `gorm:"column:resource_id"`
	ResourceName string    `gorm:"column:resource_name"`
	Details      string    `gorm:"column:details;type:jsonb"`
	IPAddress    string    `gorm:"column:ip_address"`
	UserAgent    string    `gorm:"column:user_agent"`
	SessionID    string    `gorm:"column:session_id"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
}

func (activityModel) TableName() string { return "activity_logs" }

func toActivityModel(log entities.ActivityLog) (activityModel, error) {
	details, err := marshalMap(log.Details)
	if err != nil {
		return activityModel{}, err
	}
	return activityModel{
		ID:           log.ID,
		UserID:       log.UserID,
		ActivityType: log.ActivityType,
		Action:       log.Action,
		ResourceType: log.ResourceType,
		ResourceID:   log.ResourceID,
		ResourceName: log.ResourceName,
		Details:      details,
		IPAddress:    log.IPAddress,
		UserAgent:    log.UserAgent,
		SessionID:    log.SessionID,
		CreatedAt:    log.CreatedAt,
	}, nil
}

func (m activityModel) toEntity() (entities.ActivityLog, error) {
	details, err := unmarshalMap(m.Details)
	if err != nil {
		return entities.ActivityLog{}, err
	}
	return entities.ActivityLog{
		ID:           m.ID,
		UserID:       m.UserID,
		ActivityType: m.ActivityType,
		Action:       m.Action,
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		ResourceName: m.ResourceName,
		Details:      details,
		IPAddress:    m.IPAddress,
		UserAgent:    m.UserAgent,
		SessionID:    m.SessionID,
		CreatedAt:    m.CreatedAt,
	}, nil
}

type assetActivityModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	AssetID      int64     `gorm:"column:asset_id;index"`
	UserID       int64     `gorm:"column:user_id;index"`
	ActivityType string    `gorm:"column:activity_type"`
	Action       string    `gorm:"column:action"`
	OldValues    string    `gorm:"column:old_values;type:jsonb"`
	NewValues    string    `gorm:"column:new_values;type:jsonb"`
	Details      string    `gorm:"column:details;type:jsonb"`
	CreatedAt    time.Time `gorm:"column:created_at;index"`
}

func (assetActivityModel) TableName() string { return "asset_activity_logs" }

func toAssetActivityModel(log entities.AssetActivityLog) (assetActivityModel, error) {
	oldValues, err := marshalMap(log.OldValues)
	if err != nil {
		return assetActivityModel{}, err
	}
	newValues, err := marshalMap(log.NewValues)
	if err != nil {
		return assetActivityModel{}, err
	}
	details, err := marshalMap(log.Details)
	if err != nil {
		return assetActivityModel{}, err
	}
	return assetActivityModel{
		ID:           log.ID,
		AssetID:      log.AssetID,
		UserID:       log.UserID,
		ActivityType: log.ActivityType,
		Action:       log.Action,
		OldValues:    oldValues,
		NewValues:    newValues,
		Details:      details,
		CreatedAt:    log.CreatedAt,
	}, nil
}

func (m assetActivityModel) toEntity() (entities.AssetActivityLog, error) {
	oldValues, err := unmarshalMap(m.OldValues)
	if err != nil {
		return entities.AssetActivityLog{}, err
	}
	newValues, err := unmarshalMap(m.NewValues)
	if err != nil {
		return entities.AssetActivityLog{}, err
	}
	details, err := unmarshalMap(m.Details)
	if err != nil {
		return entities.AssetActivityLog{}, err
	}
	return entities.AssetActivityLog{
		ID:           m.ID,
		AssetID:      m.AssetID,
		UserID:       m.UserID,
		ActivityType: m.ActivityType,
		Action:       m.Action,
		OldValues:    oldValues,
		NewValues:    newValues,
		Details:      details,
		CreatedAt:    m.CreatedAt,
	}, nil
}

type auditModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	UserID     int64     `gorm:"column:user_id;index"`
	Action     string    `gorm:"column:action"`
	Resource   string    `gorm:"column:resource"`
	ResourceID int64     `gorm:"column:resource_id"`
	Details    string    `gorm:"column:details;type:jsonb"`
	IPAddress  string    `gorm:"column:ip_address"`
	UserAgent  string    `gorm:"column:user_agent"`
	Timestamp  time.Time `gorm:"column:timestamp;index"`
}

func (auditModel) TableName() string { return "audit_trail" }

func toAuditModel(entry entities.AuditEntry) (auditModel, error) {
	details, err := marshalMap(entry.Details)
	if err != nil {
		return auditModel{}, err
	}
	return auditModel{
		ID:         entry.ID,
		UserID:     entry.UserID,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Details:    details,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		Timestamp:  entry.Timestamp,
	}, nil
}

func (m auditModel) toEntity() (entities.AuditEntry, error) {
	details, err := unmarshalMap(m.Details)
	if err != nil {
		return entities.AuditEntry{}, err
	}
	return entities.AuditEntry{
		ID:         m.ID,
		UserID:     m.UserID,
		Action:     m.Action,
		Resource:   m.Resource,
		ResourceID: m.ResourceID,
		Details:    details,
		IPAddress:  m.IPAddress,
		UserAgent:  m.UserAgent,
		Timestamp:  m.Timestamp,
	}, nil
}

type sessionModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	UserID       int64      `gorm:"column:user_id"`
	SessionID    string     `gorm:"column:session_id"`
	LoginTime    time.Time  `gorm:"column:login_time"`
	LogoutTime   *time.Time `gorm:"column:logout_time"`
	IPAddress    string     `gorm:"column:ip_address"`
	UserAgent    string     `gorm:"column:user_agent"`
	IsActive     bool       `gorm:"column:is_active"`
	LastActivity time.Time  `gorm:"column:last_activity"`
}

func (sessionModel) TableName() string { return "user_sessions" }

func (m sessionModel) toEntity() entities.SessionRecord {
	return entities.SessionRecord{
		ID:           m.ID,
		UserID:       m.UserID,
		SessionID:    m.SessionID,
		LoginTime:    m.LoginTime,
		LogoutTime:   m.LogoutTime,
		IPAddress:    m.IPAddress,
		UserAgent:    m.UserAgent,
		IsActive:     m.IsActive,
		LastActivity: m.LastActivity,
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

type assetRefModel struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	ProjectName string `gorm:"column:project_name"`
	AssetName   string `gorm:"column:asset_name"`
}

func (assetRefModel) TableName() string { return "assets" }
