package entities

import (
	"time"

	"vulntrack/internal/shared/roles"
)

// User is a platform account. The password hash never leaves the
// repository layer; the plaintext captured at creation lives on the
// creation edge, not here.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      roles.Role `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// FullName is used wherever the original system displayed
// "<first> <last>" (report tester/reviewer stamps, activity records).
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HierarchyLevel is a pure function of the role.
func (u User) HierarchyLevel() int {
	return roles.HierarchyLevel(u.Role)
}
