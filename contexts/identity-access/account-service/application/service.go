package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vulntrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "vulntrack/contexts/identity-access/account-service/domain/errors"
	"vulntrack/contexts/identity-access/account-service/ports"
	"vulntrack/internal/shared/audit"
	"vulntrack/internal/shared/roles"
)

// Service implements account lifecycle, authentication and the
// delegation graph on top of explicit ports.
type Service struct {
	Repo     ports.Repository
	Hasher   ports.PasswordHasher
	Tokens   ports.TokenGenerator
	Clock    ports.Clock
	Recorder audit.Recorder
	Logger   *slog.Logger
}

// RequestMeta carries transport-level context used only for activity
// recording.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	SessionID string
}

// CreateUserInput is the payload for register and delegated creation.
type CreateUserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User  entities.User
	Token string
}

// ProvisionedUser is the one response that may carry the plaintext
// password back to the account's creator.
type ProvisionedUser struct {
	User          entities.User
	PlainPassword string
}

func (s Service) Login(ctx context.Context, username string, password string, meta RequestMeta) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, domainerrors.ErrInvalidRequest
	}

	user, hash, err := s.Repo.CredentialsByUsername(ctx, username)
	if err != nil {
		return LoginResult{}, err
	}

	if !s.Hasher.Compare(hash, password) {
		s.recorder().Activity(ctx, audit.Event{
			UserID:       user.ID,
			ActivityType: audit.TypeAuth,
			Action:       "login_failed",
			Details:      map[string]any{"reason": "invalid_password", "username": username},
			IPAddress:    meta.IPAddress,
			UserAgent:    meta.UserAgent,
		})
		return LoginResult{}, domainerrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.recorder().Activity(ctx, audit.Event{
			UserID:       user.ID,
			ActivityType: audit.TypeAuth,
			Action:       "login_failed",
			Details:      map[string]any{"reason": "access_revoked", "username": username},
			IPAddress:    meta.IPAddress,
			UserAgent:    meta.UserAgent,
		})
		return LoginResult{}, domainerrors.ErrAccessRevoked
	}

	now := s.now()
	token, err := s.Repo.GetOrCreateToken(ctx, user.ID, s.Tokens.NewToken())
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.Repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return LoginResult{}, err
	}
	user.LastLogin = &now

	// Session upsert is best-effort: a failed liveness record must not
	// block a valid login.
	if err := s.Repo.UpsertSession(ctx, entities.Session{
		UserID:       user.ID,
		Token:        token,
		LoginTime:    now,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		IsActive:     true,
		LastActivity: now,
	}); err != nil {
		s.logger().Warn("session record failed",
			"event", "account_session_record_failed",
			"module", "identity-access/account-service",
			"layer", "application",
			"error", err,
		)
	}

	s.recorder().Activity(ctx, audit.Event{
		UserID:       user.ID,
		ActivityType: audit.TypeAuth,
		Action:       audit.ActionLogin,
		Details:      map[string]any{"username": username},
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		SessionID:    token,
	})

	return LoginResult{User: user, Token: token}, nil
}

func (s Service) Logout(ctx context.Context, actor entities.User, token string, meta RequestMeta) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	now := s.now()
	if err := s.Repo.CloseSession(ctx, token, now); err != nil {
		s.logger().Warn("session close failed",
			"event", "account_session_close_failed",
			"module", "identity-access/account-service",
			"layer", "application",
			"error", err,
		)
	}
	if err := s.Repo.DeleteToken(ctx, token); err != nil {
		return err
	}
	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeAuth,
		Action:       audit.ActionLogout,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
		SessionID:    token,
	})
	return nil
}

// Authenticate resolves a bearer token to an active user and
// refreshes the session's liveness timestamp. The refresh commits
// independently and never fails the request.
func (s Service) Authenticate(ctx context.Context, token string) (entities.User, error) {
	if strings.TrimSpace(token) == "" {
		return entities.User{}, domainerrors.ErrNotAuthenticated
	}
	user, found, err := s.Repo.UserByToken(ctx, token)
	if err != nil {
		return entities.User{}, err
	}
	if !found {
		return entities.User{}, domainerrors.ErrNotAuthenticated
	}
	if !user.IsActive {
		return entities.User{}, domainerrors.ErrNotAuthenticated
	}
	if err := s.Repo.TouchSession(ctx, token, s.now()); err != nil {
		s.logger().Debug("session touch failed",
			"event", "account_session_touch_failed",
			"module", "identity-access/account-service",
			"layer", "application",
			"error", err,
		)
	}
	return user, nil
}

// Register is the public self-service signup path; it creates no
// delegation edge.
func (s Service) Register(ctx context.Context, input CreateUserInput) (entities.User, error) {
	role, err := s.validateCreateInput(input)
	if err != nil {
		return entities.User{}, err
	}
	if err := s.checkUniqueness(ctx, input.Username, input.Email); err != nil {
		return entities.User{}, err
	}
	hash, err := s.Hasher.Hash(input.Password)
	if err != nil {
		return entities.User{}, err
	}
	return s.Repo.CreateUser(ctx, ports.CreateUserRecord{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		CreatedAt:    s.now(),
	})
}

// CreateUser provisions an account on behalf of actor, gated by the
// role-creation matrix, and records the creation edge atomically with
// the user row.
func (s Service) CreateUser(ctx context.Context, actor entities.User, input CreateUserInput, meta RequestMeta) (ProvisionedUser, error) {
	role, err := s.validateCreateInput(input)
	if err != nil {
		return ProvisionedUser{}, err
	}
	if !roles.CanCreate(actor.Role, role) {
		return ProvisionedUser{}, domainerrors.ErrRoleNotAllowed
	}
	if err := s.checkUniqueness(ctx, input.Username, input.Email); err != nil {
		return ProvisionedUser{}, err
	}
	hash, err := s.Hasher.Hash(input.Password)
	if err != nil {
		return ProvisionedUser{}, err
	}

	created, err := s.Repo.CreateUser(ctx, ports.CreateUserRecord{
		Username:      strings.TrimSpace(input.Username),
		Email:         strings.TrimSpace(input.Email),
		PasswordHash:  hash,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		Role:          role,
		CreatorID:     &actor.ID,
		PlainPassword: input.Password,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return ProvisionedUser{}, err
	}

	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeUserManagement,
		Action:       audit.ActionCreate,
		ResourceType: "user",
		ResourceID:   created.ID,
		ResourceName: created.FullName() + " (@" + created.Username + ")",
		Details: map[string]any{
			"created_user_role":  string(created.Role),
			"created_user_email": created.Email,
		},
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	return ProvisionedUser{User: created, PlainPassword: input.Password}, nil
}

func (s Service) ChangePassword(ctx context.Context, actor entities.User, current string, next string, meta RequestMeta) error {
	if current == "" || next == "" {
		return domainerrors.ErrInvalidRequest
	}
	hash, err := s.Repo.PasswordHash(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !s.Hasher.Compare(hash, current) {
		return domainerrors.ErrWrongPassword
	}
	newHash, err := s.Hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, actor.ID, newHash, s.now()); err != nil {
		return err
	}
	s.recorder().Activity(ctx, audit.Event{
		UserID:       actor.ID,
		ActivityType: audit.TypeAuth,
		Action:       audit.ActionUpdate,
		Details:      map[string]any{"target": "password_change"},
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	return nil
}

func (s Service) validateCreateInput(input CreateUserInput) (roles.Role, error) {
	if strings.TrimSpace(input.Username) == "" ||
		strings.TrimSpace(input.Email) == "" ||
		input.Password == "" {
		return "", domainerrors.ErrInvalidRequest
	}
	role, ok := roles.Parse(input.Role)
	if !ok {
		return "", domainerrors.ErrInvalidRequest
	}
	return role, nil
}

func (s Service) checkUniqueness(ctx context.Context, username string, email string) error {
	taken, err := s.Repo.UsernameExists(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if taken {
		return domainerrors.ErrUsernameTaken
	}
	taken, err = s.Repo.EmailExists(ctx, strings.TrimSpace(email), 0)
	if err != nil {
		return err
	}
	if taken {
		return domainerrors.ErrEmailTaken
	}
	return nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) recorder() audit.Recorder {
	return audit.Resolve(s.Recorder)
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
