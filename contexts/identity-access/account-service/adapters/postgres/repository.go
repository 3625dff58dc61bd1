package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vulntrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "vulntrack/contexts/identity-access/account-service/domain/errors"
	"vulntrack/contexts/identity-access/account-service/ports"
	"vulntrack/internal/shared/roles"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

// UUIDTokenGenerator issues uuid4 bearer tokens.
type UUIDTokenGenerator struct{}

func (UUIDTokenGenerator) NewToken() string { return uuid.NewString() }

// BcryptHasher satisfies ports.PasswordHasher.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h BcryptHasher) Compare(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func (r *Repository) GetUser(ctx context.Context, userID int64) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) CredentialsByUsername(ctx context.Context, username string) (entities.User, string, error) {
	var row userModel
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, "", domainerrors.ErrInvalidCredentials
		}
		return entities.User{}, "", err
	}
	return row.toEntity(), row.PasswordHash, nil
}

func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("username = ?", username).
		Count(&count).
		Error
	return count > 0, err
}

func (r *Repository) EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&userModel{}).Where("email = ?", email)
	if excludeUserID != 0 {
		tx = tx.Where("id <> ?", excludeUserID)
	}
	var count int64
	err := tx.Count(&count).Error
	return count > 0, err
}

func (r *Repository) CreateUser(ctx context.Context, record ports.CreateUserRecord) (entities.User, error) {
	row := userModel{
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		FirstName:    record.FirstName,
		LastName:     record.LastName,
		Role:         string(record.Role),
		IsActive:     true,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.CreatedAt,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				switch constraintName(err) {
				case "users_username_key":
					return domainerrors.ErrUsernameTaken
				case "users_email_key":
					return domainerrors.ErrEmailTaken
				}
				return domainerrors.ErrUsernameTaken
			}
			return err
		}
		if record.CreatorID == nil {
			return nil
		}
		edge := creationEdgeModel{
			CreatorID:     *record.CreatorID,
			CreatedUserID: row.ID,
			PlainPassword: record.PlainPassword,
			CreatedAt:     record.CreatedAt,
		}
		if err := tx.Create(&edge).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateRelation
			}
			return err
		}
		return nil
	})
	if err != nil {
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) UpdateUser(ctx context.Context, userID int64, patch ports.UserPatch, now time.Time) (entities.User, error) {
	updates := map[string]any{"updated_at": now.UTC()}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.FirstName != nil {
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["last_name"] = *patch.LastName
	}
	if patch.Role != nil {
		updates["role"] = string(*patch.Role)
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", userID).
		Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return entities.User{}, domainerrors.ErrEmailTaken
		}
		return entities.User{}, result.Error
	}
	if result.RowsAffected == 0 {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return r.GetUser(ctx, userID)
}

func (r *Repository) ListUsers(ctx context.Context) ([]entities.User, error) {
	var rows []userModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toEntity())
	}
	return users, nil
}

func (r *Repository) PasswordHash(ctx context.Context, userID int64) (string, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Select("password_hash").
		Where("id = ?", userID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domainerrors.ErrUserNotFound
		}
		return "", err
	}
	return row.PasswordHash, nil
}

func (r *Repository) UpdatePassword(ctx context.Context, userID int64, hash string, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{"password_hash": hash, "updated_at": now.UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("id = ?", userID).
		Update("last_login", at.UTC()).
		Error
}

// DeleteUserCascade removes the user and everything hanging off it in
// one transaction so no dangling edge can survive a partial failure.
func (r *Repository) DeleteUserCascade(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("creator_id = ? OR created_user_id = ?", userID, userID).
			Delete(&creationEdgeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assigner_id = ? OR assigned_user_id = ? OR assignee_id = ?", userID, userID, userID).
			Delete(&assignmentEdgeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&sessionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&authTokenModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", userID).Delete(&userModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrUserNotFound
		}
		return nil
	})
}

func (r *Repository) HasCreationEdge(ctx context.Context, creatorID int64, createdUserID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&creationEdgeModel{}).
		Where("creator_id = ? AND created_user_id = ?", creatorID, createdUserID).
		Count(&count).
		Error
	return count > 0, err
}

func (r *Repository) CreatedUsers(ctx context.Context, creatorID int64) ([]ports.CreatedUser, error) {
	var rows []struct {
		userModel
		PlainPassword string    `gorm:"column:plain_password"`
		EdgeCreatedAt time.Time `gorm:"column:edge_created_at"`
	}
	err := r.db.WithContext(ctx).
		Table("user_relationships").
		Select("users.*, user_relationships.plain_password, user_relationships.created_at AS edge_created_at").
		Joins("JOIN users ON users.id = user_relationships.created_user_id").
		Where("user_relationships.creator_id = ?", creatorID).
		Order("user_relationships.created_at ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]ports.CreatedUser, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.CreatedUser{
			User:          row.userModel.toEntity(),
			PlainPassword: row.PlainPassword,
			CreatedAt:     row.EdgeCreatedAt,
		})
	}
	return items, nil
}

// UpsertAssignment is an atomic get-or-create on the
// (assigned_user, assignee) pair; a concurrent loser lands on the
// conflict branch and overwrites the assigner instead of erroring.
func (r *Repository) UpsertAssignment(ctx context.Context, assignerID int64, assignedUserID int64, assigneeID int64, now time.Time) error {
	row := assignmentEdgeModel{
		AssignerID:     assignerID,
		AssignedUserID: assignedUserID,
		AssigneeID:     assigneeID,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assigned_user_id"}, {Name: "assignee_id"}},
			DoUpdates: clause.Assignments(map[string]any{"assigner_id": assignerID, "updated_at": now.UTC()}),
		}).
		Create(&row).
		Error
}

func (r *Repository) DeleteAssignment(ctx context.Context, assignedUserID int64, assigneeID int64) error {
	return r.db.WithContext(ctx).
		Where("assigned_user_id = ? AND assignee_id = ?", assignedUserID, assigneeID).
		Delete(&assignmentEdgeModel{}).
		Error
}

func (r *Repository) AssignmentsByAssigner(ctx context.Context, assignerID int64) ([]ports.AssignmentDetail, error) {
	var edges []assignmentEdgeModel
	if err := r.db.WithContext(ctx).
		Where("assigner_id = ?", assignerID).
		Order("created_at ASC").
		Find(&edges).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.AssignmentDetail, 0, len(edges))
	for _, edge := range edges {
		var user userModel
		if err := r.db.WithContext(ctx).Where("id = ?", edge.AssignedUserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, ports.AssignmentDetail{
			Edge:         edge.toEntity(),
			AssignedUser: user.toEntity(),
		})
	}
	return items, nil
}

func (r *Repository) UsersAssignedTo(ctx context.Context, assigneeID int64) ([]ports.AssignedUser, error) {
	var rows []struct {
		userModel
		AssignerID int64     `gorm:"column:edge_assigner_id"`
		AssignedAt time.Time `gorm:"column:edge_created_at"`
	}
	err := r.db.WithContext(ctx).
		Table("user_assignments").
		Select("users.*, user_assignments.assigner_id AS edge_assigner_id, user_assignments.created_at AS edge_created_at").
		Joins("JOIN users ON users.id = user_assignments.assigned_user_id").
		Where("user_assignments.assignee_id = ?", assigneeID).
		Order("user_assignments.created_at ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	items := make([]ports.AssignedUser, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.AssignedUser{
			User:       row.userModel.toEntity(),
			AssignerID: row.AssignerID,
			AssignedAt: row.AssignedAt,
		})
	}
	return items, nil
}

// SubordinateIDs is the one-hop union of both relation kinds,
// evaluated fresh on every call.
func (r *Repository) SubordinateIDs(ctx context.Context, userID int64) ([]int64, error) {
	var created []int64
	if err := r.db.WithContext(ctx).
		Model(&creationEdgeModel{}).
		Where("creator_id = ?", userID).
		Pluck("created_user_id", &created).
		Error; err != nil {
		return nil, err
	}
	var assigned []int64
	if err := r.db.WithContext(ctx).
		Model(&assignmentEdgeModel{}).
		Where("assignee_id = ?", userID).
		Pluck("assigned_user_id", &assigned).
		Error; err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(created)+len(assigned))
	out := make([]int64, 0, len(created)+len(assigned))
	for _, id := range append(created, assigned...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func (r *Repository) TeamMembers(ctx context.Context, userID int64, role roles.Role) ([]entities.User, error) {
	var rows []userModel
	err := r.db.WithContext(ctx).
		Model(&userModel{}).
		Distinct("users.*").
		Joins("LEFT JOIN user_relationships ON user_relationships.created_user_id = users.id AND user_relationships.creator_id = ?", userID).
		Joins("LEFT JOIN user_assignments ON user_assignments.assigned_user_id = users.id AND user_assignments.assignee_id = ?", userID).
		Where("users.role = ?", string(role)).
		Where("user_relationships.id IS NOT NULL OR user_assignments.id IS NOT NULL").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	users := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toEntity())
	}
	return users, nil
}

// GetOrCreateToken reuses the user's existing token when present, in
// line with one long-lived bearer key per account.
func (r *Repository) GetOrCreateToken(ctx context.Context, userID int64, candidate string) (string, error) {
	row := authTokenModel{
		Key:       candidate,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return "", createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return candidate, nil
	}
	var existing authTokenModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error; err != nil {
		return "", err
	}
	return existing.Key, nil
}

func (r *Repository) DeleteToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("key = ?", token).Delete(&authTokenModel{}).Error
}

func (r *Repository) UserByToken(ctx context.Context, token string) (entities.User, bool, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Table("auth_tokens").
		Select("users.*").
		Joins("JOIN users ON users.id = auth_tokens.user_id").
		Where("auth_tokens.key = ?", token).
		Scan(&row).
		Error
	if err != nil {
		return entities.User{}, false, err
	}
	if row.ID == 0 {
		return entities.User{}, false, nil
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpsertSession(ctx context.Context, session entities.Session) error {
	row := sessionModel{
		UserID:       session.UserID,
		Token:        session.Token,
		LoginTime:    session.LoginTime.UTC(),
		IPAddress:    session.IPAddress,
		UserAgent:    session.UserAgent,
		IsActive:     true,
		LastActivity: session.LastActivity.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"user_id":       session.UserID,
				"ip_address":    session.IPAddress,
				"user_agent":    session.UserAgent,
				"is_active":     true,
				"logout_time":   nil,
				"last_activity": session.LastActivity.UTC(),
			}),
		}).
		Create(&row).
		Error
}

func (r *Repository) CloseSession(ctx context.Context, token string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ?", token).
		Updates(map[string]any{"logout_time": at.UTC(), "is_active": false}).
		Error
}

// TouchSession commits on its own so refreshing liveness never
// serializes unrelated requests.
func (r *Repository) TouchSession(ctx context.Context, token string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ?", token).
		Update("last_activity", at.UTC()).
		Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

type userModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	Username     string     `gorm:"column:username;uniqueIndex"`
	Email        string     `gorm:"column:email;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash"`
	FirstName    string     `gorm:"column:first_name"`
	LastName     string     `gorm:"column:last_name"`
	Role         string     `gorm:"column:role"`
	IsActive     bool       `gorm:"column:is_active"`
	LastLogin    *time.Time `gorm:"column:last_login"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func (m userModel) toEntity() entities.User {
	return entities.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Role:      roles.Role(m.Role),
		IsActive:  m.IsActive,
		LastLogin: m.LastLogin,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type creationEdgeModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	CreatorID     int64     `gorm:"column:creator_id;uniqueIndex:user_relationships_pair"`
	CreatedUserID int64     `gorm:"column:created_user_id;uniqueIndex:user_relationships_pair"`
	PlainPassword string    `gorm:"column:plain_password"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (creationEdgeModel) TableName() string { return "user_relationships" }

type assignmentEdgeModel struct {
	ID             int64     `gorm:"column:id;primaryKey"`
	AssignerID     int64     `gorm:"column:assigner_id"`
	AssignedUserID int64     `gorm:"column:assigned_user_id;uniqueIndex:user_assignments_pair"`
	AssigneeID     int64     `gorm:"column:assignee_id;uniqueIndex:user_assignments_pair"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (assignmentEdgeModel) TableName() string { return "user_assignments" }

func (m assignmentEdgeModel) toEntity() entities.AssignmentEdge {
	return entities.AssignmentEdge{
		ID:             m.ID,
		AssignerID:     m.AssignerID,
		AssignedUserID: m.AssignedUserID,
		AssigneeID:     m.AssigneeID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type authTokenModel struct {
	Key       string    `gorm:"column:key;primaryKey"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (authTokenModel) TableName() string { return "auth_tokens" }

type sessionModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	UserID       int64      `gorm:"column:user_id"`
	Token        string     `gorm:"column:session_id;uniqueIndex"`
	LoginTime    time.Time  `gorm:"column:login_time"`
	LogoutTime   *time.Time `gorm:"column:logout_time"`
	IPAddress    string     `gorm:"column:ip_address"`
	UserAgent    string     `gorm:"column:user_agent"`
	IsActive     bool       `gorm:"column:is_active"`
	LastActivity time.Time  `gorm:"column:last_activity"`
}

func (sessionModel) TableName() string { return "user_sessions" }
