package ports

import (
	"context"
	"time"

	"vulntrack/contexts/identity-access/account-service/domain/entities"
	"vulntrack/internal/shared/roles"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// TokenGenerator issues opaque bearer tokens.
type TokenGenerator interface {
	NewToken() string
}

// PasswordHasher hides the hashing primitive behind a port.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash string, plain string) bool
}

// CreateUserRecord is persisted atomically: when CreatorID is set, the
// user row and its creation edge (with the operator-visible plaintext)
// commit together or not at all.
type CreateUserRecord struct {
	Username      string
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	Role          roles.Role
	CreatorID     *int64
	PlainPassword string
	CreatedAt     time.Time
}

// CreatedUser pairs a provisioned account with the plaintext password
// captured on its creation edge.
type CreatedUser struct {
	User          entities.User
	PlainPassword string
	CreatedAt     time.Time
}

// AssignedUser is a user visible through an assignment edge.
type AssignedUser struct {
	User       entities.User
	AssignerID int64
	AssignedAt time.Time
}

// AssignmentDetail is an assignment edge joined with the assigned user.
type AssignmentDetail struct {
	Edge         entities.AssignmentEdge
	AssignedUser entities.User
}

// UserPatch carries optional admin-editable fields. Nil means "leave
// unchanged".
type UserPatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *roles.Role
	IsActive  *bool
}

// Repository is the write/read boundary for accounts, delegation
// edges, tokens and sessions.
type Repository interface {
	GetUser(ctx context.Context, userID int64) (entities.User, error)
	CredentialsByUsername(ctx context.Context, username string) (entities.User, string, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error)
	CreateUser(ctx context.Context, record CreateUserRecord) (entities.User, error)
	UpdateUser(ctx context.Context, userID int64, patch UserPatch, now time.Time) (entities.User, error)
	ListUsers(ctx context.Context) ([]entities.User, error)
	PasswordHash(ctx context.Context, userID int64) (string, error)
	UpdatePassword(ctx context.Context, userID int64, hash string, now time.Time) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	DeleteUserCascade(ctx context.Context, userID int64) error

	HasCreationEdge(ctx context.Context, creatorID int64, createdUserID int64) (bool, error)
	CreatedUsers(ctx context.Context, creatorID int64) ([]CreatedUser, error)
	UpsertAssignment(ctx context.Context, assignerID int64, assignedUserID int64, assigneeID int64, now time.Time) error
	DeleteAssignment(ctx context.Context, assignedUserID int64, assigneeID int64) error
	AssignmentsByAssigner(ctx context.Context, assignerID int64) ([]AssignmentDetail, error)
	UsersAssignedTo(ctx context.Context, assigneeID int64) ([]AssignedUser, error)
	SubordinateIDs(ctx context.Context, userID int64) ([]int64, error)
	TeamMembers(ctx context.Context, userID int64, role roles.Role) ([]entities.User, error)

	GetOrCreateToken(ctx context.Context, userID int64, candidate string) (string, error)
	DeleteToken(ctx context.Context, token string) error
	UserByToken(ctx context.Context, token string) (entities.User, bool, error)
	UpsertSession(ctx context.Context, session entities.Session) error
	CloseSession(ctx context.Context, token string, at time.Time) error
	TouchSession(ctx context.Context, token string, at time.Time) error
}

// SubordinateResolver is the read-only slice of the repository other
// contexts consume for visibility filtering.
type SubordinateResolver interface {
	SubordinateIDs(ctx context.Context, userID int64) ([]int64, error)
}
