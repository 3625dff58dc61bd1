package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UserRefData is the embedded user summary on asset payloads.
type UserRefData struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type AssetData struct {
	ID int64 `json:"id"`

	ProjectName        string       `json:"projectName"`
	ProjectOwner       *UserRefData `json:"projectOwner,omitempty"`
	ProjectDescription string       `json:"projectDescription,omitempty"`

	AssetName       string   `json:"assetName"`
	AssetURL        string   `json:"assetUrl,omitempty"`
	AssetType       string   `json:"assetType"`
	TechnologyStack []string `json:"technologyStack"`

	Environment    string `json:"environment"`
	AuthMethod     string `json:"authMethod,omitempty"`
	PrivateNetwork bool   `json:"privateNetwork"`

	ScanFrequency       string `json:"scanFrequency"`
	PreferredTestWindow string `json:"preferredTestWindow,omitempty"`
	ScopeInclusions     string `json:"scopeInclusions,omitempty"`
	ScopeExclusions     string `json:"scopeExclusions,omitempty"`

	NotifyOn           []string `json:"notifyOn"`
	NotificationEmails []string `json:"notificationEmails"`

	PlanTier           string `json:"planTier"`
	TestsPerMonth      *int   `json:"testsPerMonth,omitempty"`
	ContractExpiryDate string `json:"contractExpiryDate,omitempty"`

	Tags           []string `json:"tags"`
	SupportingDocs []string `json:"supportingDocs"`

	AssignedTo *UserRefData `json:"assignedTo,omitempty"`
	AssignedBy *UserRefData `json:"assignedBy,omitempty"`
	AssignedAt string       `json:"assignedAt,omitempty"`

	AssignedTester   *UserRefData `json:"assignedTester,omitempty"`
	AssignedTesterBy *UserRefData `json:"assignedTesterBy,omitempty"`
	AssignedTesterAt string       `json:"assignedTesterAt,omitempty"`

	CreatedBy *UserRefData `json:"createdBy,omitempty"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

type CreateAssetRequest struct {
	ProjectName        string `json:"projectName"`
	ProjectOwnerID     *int64 `json:"projectOwnerId,omitempty"`
	ProjectDescription string `json:"projectDescription,omitempty"`

	AssetName       string   `json:"assetName"`
	AssetURL        string   `json:"assetUrl,omitempty"`
	AssetType       string   `json:"assetType"`
	TechnologyStack []string `json:"technologyStack,omitempty"`

	Environment    string `json:"environment"`
	AuthMethod     string `json:"authMethod,omitempty"`
	PrivateNetwork bool   `json:"privateNetwork,omitempty"`

	ScanFrequency       string `json:"scanFrequency"`
	PreferredTestWindow string `json:"preferredTestWindow,omitempty"`
	ScopeInclusions     string `json:"scopeInclusions,omitempty"`
	ScopeExclusions     string `json:"scopeExclusions,omitempty"`

	NotifyOn           []string `json:"notifyOn,omitempty"`
	NotificationEmails []string `json:"notificationEmails,omitempty"`

	PlanTier           string `json:"planTier"`
	TestsPerMonth      *int   `json:"testsPerMonth,omitempty"`
	ContractExpiryDate string `json:"contractExpiryDate,omitempty"`

	Tags           []string `json:"tags,omitempty"`
	SupportingDocs []string `json:"supportingDocs,omitempty"`
}

type UpdateAssetRequest struct {
	ProjectName        *string `json:"projectName,omitempty"`
	ProjectOwnerID     *int64  `json:"projectOwnerId,omitempty"`
	ProjectDescription *string `json:"projectDescription,omitempty"`

	AssetName       *string  `json:"assetName,omitempty"`
	AssetURL        *string  `json:"assetUrl,omitempty"`
	AssetType       *string  `json:"assetType,omitempty"`
	TechnologyStack []string `json:"technologyStack,omitempty"`

	Environment    *string `json:"environment,omitempty"`
	AuthMethod     *string `json:"authMethod,omitempty"`
	PrivateNetwork *bool   `json:"privateNetwork,omitempty"`

	ScanFrequency       *string `json:"scanFrequency,omitempty"`
	PreferredTestWindow *string `json:"preferredTestWindow,omitempty"`
	ScopeInclusions     *string `json:"scopeInclusions,omitempty"`
	ScopeExclusions     *string `json:"scopeExclusions,omitempty"`

	NotifyOn           []string `json:"notifyOn,omitempty"`
	NotificationEmails []string `json:"notificationEmails,omitempty"`

	PlanTier           *string `json:"planTier,omitempty"`
	TestsPerMonth      *int    `json:"testsPerMonth,omitempty"`
	ContractExpiryDate *string `json:"contractExpiryDate,omitempty"`

	Tags           []string `json:"tags,omitempty"`
	SupportingDocs []string `json:"supportingDocs,omitempty"`
}

type AssetResponse struct {
	Status string    `json:"status"`
	Data   AssetData `json:"data"`
}

type AssetListResponse struct {
	Status string      `json:"status"`
	Data   []AssetData `json:"data"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type AssignTeamLeaderRequest struct {
	TeamLeaderID int64 `json:"teamLeaderId"`
}

type AssignTesterRequest struct {
	TesterID int64 `json:"testerId"`
}

type ClientGrantRequest struct {
	ClientTeamMemberID int64 `json:"clientTeamMemberId"`
}

type ClientGrantData struct {
	ID         int64       `json:"id"`
	AssetID    int64       `json:"assetId"`
	Member     UserRefData `json:"clientTeamMember"`
	AssignedBy UserRefData `json:"assignedBy"`
	AssignedAt string      `json:"assignedAt"`
	Status     string      `json:"status"`
	Notes      string      `json:"notes,omitempty"`
}

type ClientGrantListResponse struct {
	Status string            `json:"status"`
	Data   []ClientGrantData `json:"data"`
}

// GrantedAssetData is an asset payload seen by a client-user, with the
// grant metadata attached.
type GrantedAssetData struct {
	AssetData
	Assignment struct {
		ID         int64  `json:"id"`
		AssignedAt string `json:"assignedAt"`
		Status     string `json:"status"`
		Notes      string `json:"notes,omitempty"`
	} `json:"assignment"`
	GrantedBy *UserRefData `json:"grantedBy,omitempty"`
}

type GrantedAssetListResponse struct {
	Status string             `json:"status"`
	Data   []GrantedAssetData `json:"data"`
}
