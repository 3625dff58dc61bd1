package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UserRefData is the embedded user summary on log payloads.
type UserRefData struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// AssetRefData is the embedded asset summary on asset log payloads.
type AssetRefData struct {
	ID          int64  `json:"id"`
	ProjectName string `json:"projectName"`
	AssetName   string `json:"assetName"`
}

// ActivityLogsQuery carries the raw query parameters of a log listing.
type ActivityLogsQuery struct {
	StartDate    string
	EndDate      string
	UserID       string
	ActivityType string
	Limit        string
	Offset       string
}

// SessionsQuery carries the raw query parameters of a session listing.
type SessionsQuery struct {
	StartDate string
	EndDate   string
	UserID    string
	IsActive  string
	Limit     string
	Offset    string
}

// AssetActivityQuery carries the raw query parameters of an asset log
// listing.
type AssetActivityQuery struct {
	AssetID      string
	StartDate    string
	EndDate      string
	UserID       string
	ActivityType string
	Limit        string
	Offset       string
}

// AuditTrailQuery carries the raw query parameters of an audit trail
// listing.
type AuditTrailQuery struct {
	Resource string
	Action   string
	Limit    string
	Offset   string
}

// SummaryQuery carries the raw query parameters of a summary request.
type SummaryQuery struct {
	StartDate string
	EndDate   string
}

type ActivityLogData struct {
	ID           int64          `json:"id"`
	User         *UserRefData   `json:"user,omitempty"`
	ActivityType string         `json:"activityType"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resourceType,omitempty"`
	ResourceID   int64          `json:"resourceId,omitempty"`
	ResourceName string         `json:"resourceName,omitempty"`
	Details      map[string]any `json:"details"`
	IPAddress    string         `json:"ipAddress,omitempty"`
	UserAgent    string         `json:"userAgent,omitempty"`
	SessionID    string         `json:"sessionId,omitempty"`
	CreatedAt    string         `json:"createdAt"`
}

type ActivityLogListResponse struct {
	Status string            `json:"status"`
	Data   []ActivityLogData `json:"data"`
}

type SessionData struct {
	ID           int64        `json:"id"`
	User         *UserRefData `json:"user,omitempty"`
	SessionID    string       `json:"sessionId"`
	LoginTime    string       `json:"loginTime"`
	LogoutTime   string       `json:"logoutTime,omitempty"`
	IPAddress    string       `json:"ipAddress,omitempty"`
	UserAgent    string       `json:"userAgent,omitempty"`
	IsActive     bool         `json:"isActive"`
	LastActivity string       `json:"lastActivity"`
}

type SessionListResponse struct {
	Status string        `json:"status"`
	Data   []SessionData `json:"data"`
}

type AssetActivityData struct {
	ID           int64          `json:"id"`
	Asset        *AssetRefData  `json:"asset,omitempty"`
	User         *UserRefData   `json:"user,omitempty"`
	ActivityType string         `json:"activityType"`
	Action       string         `json:"action"`
	OldValues    map[string]any `json:"oldValues"`
	NewValues    map[string]any `json:"newValues"`
	Details      map[string]any `json:"details"`
	CreatedAt    string         `json:"createdAt"`
}

type AssetActivityListResponse struct {
	Status string              `json:"status"`
	Data   []AssetActivityData `json:"data"`
}

type AuditEntryData struct {
	ID         int64          `json:"id"`
	User       *UserRefData   `json:"user,omitempty"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID int64          `json:"resourceId,omitempty"`
	Details    map[string]any `json:"details"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	Timestamp  string         `json:"timestamp"`
}

type AuditTrailListResponse struct {
	Status string           `json:"status"`
	Data   []AuditEntryData `json:"data"`
}

type ActivityCountData struct {
	ActivityType string `json:"activityType"`
	Count        int    `json:"count"`
}

type SummaryResponse struct {
	Status string `json:"status"`
	Data   struct {
		ActivityCounts   []ActivityCountData `json:"activityCounts"`
		ActiveSessions   int                 `json:"activeSessions"`
		RecentActivities []ActivityLogData   `json:"recentActivities"`
		DateRange        struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"dateRange"`
	} `json:"data"`
}
