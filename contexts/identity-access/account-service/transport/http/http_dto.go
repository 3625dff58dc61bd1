package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UserData is the canonical user payload shared by account responses.
type UserData struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Role           string `json:"role"`
	HierarchyLevel int    `json:"hierarchyLevel"`
	IsActive       bool   `json:"isActive"`
	LastLogin      string `json:"lastLogin,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token string   `json:"token"`
		User  UserData `json:"user"`
	} `json:"data"`
}

type LogoutResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type RegisterResponse struct {
	Status string   `json:"status"`
	Data   UserData `json:"data"`
}

type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// CreateUserResponse is the one creator-facing payload that echoes the
// provisioned plaintext password.
type CreateUserResponse struct {
	Status string `json:"status"`
	Data   struct {
		User     UserData `json:"user"`
		Password string   `json:"password"`
	} `json:"data"`
}

type UserResponse struct {
	Status string   `json:"status"`
	Data   UserData `json:"data"`
}

type UserListResponse struct {
	Status string     `json:"status"`
	Data   []UserData `json:"data"`
}

// CreatedUserData is a user seen through its creation edge, plaintext
// credentials included.
type CreatedUserData struct {
	User      UserData `json:"user"`
	Password  string   `json:"password"`
	CreatedAt string   `json:"createdAt"`
}

type CreatedUsersResponse struct {
	Status string            `json:"status"`
	Data   []CreatedUserData `json:"data"`
}

type HierarchyNodeData struct {
	User     UserData            `json:"user"`
	Password string              `json:"password,omitempty"`
	Children []HierarchyNodeData `json:"children"`
}

type HierarchyResponse struct {
	Status string              `json:"status"`
	Data   []HierarchyNodeData `json:"data"`
}

type AssignedUserData struct {
	User       UserData `json:"user"`
	AssignerID int64    `json:"assignerId"`
	AssignedAt string   `json:"assignedAt"`
}

type AssignedUsersResponse struct {
	Status string             `json:"status"`
	Data   []AssignedUserData `json:"data"`
}

type AssignmentData struct {
	ID             int64    `json:"id"`
	AssignedUserID int64    `json:"assignedUserId"`
	AssigneeID     int64    `json:"assigneeId"`
	AssignedUser   UserData `json:"assignedUser"`
	CreatedAt      string   `json:"createdAt"`
	UpdatedAt      string   `json:"updatedAt"`
}

type AssignmentsResponse struct {
	Status string           `json:"status"`
	Data   []AssignmentData `json:"data"`
}

type AssignUserRequest struct {
	AssignedUserID int64 `json:"assignedUserId"`
	AssigneeID     int64 `json:"assigneeId"`
}

type AssignUserResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Role      *string `json:"role,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ChangePasswordResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SetAccessRequest struct {
	UserID int64 `json:"userId"`
}

type SetAccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type DeleteUserResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
