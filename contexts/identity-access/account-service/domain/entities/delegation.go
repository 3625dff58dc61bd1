package entities

import "time"

// CreationEdge records that one account provisioned another. It is
// written once at user creation and removed only when either endpoint
// is deleted. The plaintext password is retained deliberately so the
// creator can hand credentials to the new account holder; it must
// never be serialized outside the "users I created" responses.
type CreationEdge struct {
	ID            int64     `json:"id"`
	CreatorID     int64     `json:"creatorId"`
	CreatedUserID int64     `json:"createdUserId"`
	PlainPassword string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AssignmentEdge places one account under another for visibility
// purposes. A given assigned user sits under at most one assignee;
// re-assignment overwrites the assigner.
type AssignmentEdge struct {
	ID             int64     `json:"id"`
	AssignerID     int64     `json:"assignerId"`
	AssignedUserID int64     `json:"assignedUserId"`
	AssigneeID     int64     `json:"assigneeId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Session tracks a bearer token's liveness. The token doubles as the
// session key; every authenticated request refreshes LastActivity.
type Session struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"userId"`
	Token        string     `json:"sessionId"`
	LoginTime    time.Time  `json:"loginTime"`
	LogoutTime   *time.Time `json:"logoutTime,omitempty"`
	IPAddress    string     `json:"ipAddress"`
	UserAgent    string     `json:"userAgent"`
	IsActive     bool       `json:"isActive"`
	LastActivity time.Time  `json:"lastActivity"`
}
