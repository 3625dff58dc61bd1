package entities

import "time"

// Asset is an engagement target owned by a client organization and
// worked through the team-leader and tester assignment tracks.
type Asset struct {
	ID int64

	ProjectName        string
	ProjectOwnerID     *int64
	ProjectDescription string

	AssetName       string
	AssetURL        string
	AssetType       string
	TechnologyStack []string

	Environment    string
	AuthMethod     string
	PrivateNetwork bool

	ScanFrequency       string
	PreferredTestWindow string
	ScopeInclusions     string
	ScopeExclusions     string

	NotifyOn           []string
	NotificationEmails []string

	PlanTier           string
	TestsPerMonth      *int
	ContractExpiryDate *time.Time

	Tags           []string
	SupportingDocs []string

	AssignedToID *int64
	AssignedAt   *time.Time
	AssignedByID *int64

	AssignedTesterID   *int64
	AssignedTesterAt   *time.Time
	AssignedTesterByID *int64

	CreatedByID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssetAssignment is the append-style ledger row written when an asset
// is handed to a team leader.
type AssetAssignment struct {
	ID           int64
	AssetID      int64
	AssignedToID int64
	AssignedByID int64
	AssignedAt   time.Time
	Status       string
	Notes        string
}

// ClientTeamAssignment grants a client-user read access to an asset.
// Revocation is a soft status flip so the grant history survives.
type ClientTeamAssignment struct {
	ID           int64
	AssetID      int64
	MemberID     int64
	AssignedByID int64
	AssignedAt   time.Time
	Status       string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	AssignmentStatusPending    = "pending"
	AssignmentStatusInProgress = "in-progress"
	AssignmentStatusCompleted  = "completed"

	ClientAssignmentActive   = "Active"
	ClientAssignmentInactive = "Inactive"
)

// ValidAssetType reports whether raw is one of the supported target
// categories.
func ValidAssetType(raw string) bool {
	switch raw {
	case "web-app", "api", "mobile", "iot", "network", "other":
		return true
	}
	return false
}

func ValidEnvironment(raw string) bool {
	switch raw {
	case "dev", "staging", "prod", "other":
		return true
	}
	return false
}

func ValidScanFrequency(raw string) bool {
	switch raw {
	case "one-time", "daily", "weekly", "monthly":
		return true
	}
	return false
}

func ValidPlanTier(raw string) bool {
	switch raw {
	case "free", "basic", "advanced", "custom":
		return true
	}
	return false
}
