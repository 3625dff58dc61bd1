package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"vulntrack/contexts/identity-access/account-service/domain/entities"
	domainerrors "vulntrack/contexts/identity-access/account-service/domain/errors"
	"vulntrack/contexts/identity-access/account-service/ports"
	"vulntrack/internal/shared/roles"
)

// Store is an in-memory ports.Repository for development and tests.
type Store struct {
	mu sync.RWMutex

	users       map[int64]userRecord
	creation    map[int64]entities.CreationEdge
	assignments map[int64]entities.AssignmentEdge
	tokenUser   map[string]int64
	userToken   map[int64]string
	sessions    map[string]entities.Session

	plainByEdge map[int64]string

	nextUserID       int64
	nextEdgeID       int64
	nextAssignmentID int64
	nextSessionID    int64
}

type userRecord struct {
	user entities.User
	hash string
}

func NewStore() *Store {
	return &Store{
		users:            make(map[int64]userRecord),
		creation:         make(map[int64]entities.CreationEdge),
		assignments:      make(map[int64]entities.AssignmentEdge),
		tokenUser:        make(map[string]int64),
		userToken:        make(map[int64]string),
		sessions:         make(map[string]entities.Session),
		plainByEdge:      make(map[int64]string),
		nextUserID:       1,
		nextEdgeID:       1,
		nextAssignmentID: 1,
		nextSessionID:    1,
	}
}

func (s *Store) GetUser(ctx context.Context, userID int64) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return rec.user, nil
}

func (s *Store) CredentialsByUsername(ctx context.Context, username string) (entities.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.users {
		if rec.user.Username == username {
			return rec.user, rec.hash, nil
		}
	}
	return entities.User{}, "", domainerrors.ErrInvalidCredentials
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.users {
		if rec.user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) EmailExists(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.users {
		if rec.user.ID == excludeUserID {
			continue
		}
		if strings.EqualFold(rec.user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateUser(ctx context.Context, record ports.CreateUserRecord) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if rec.user.Username == record.Username {
			return entities.User{}, domainerrors.ErrUsernameTaken
		}
		if strings.EqualFold(rec.user.Email, record.Email) {
			return entities.User{}, domainerrors.ErrEmailTaken
		}
	}
	user := entities.User{
		ID:        s.nextUserID,
		Username:  record.Username,
		Email:     record.Email,
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Role:      record.Role,
		IsActive:  true,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.CreatedAt,
	}
	s.nextUserID++
	s.users[user.ID] = userRecord{user: user, hash: record.PasswordHash}

	if record.CreatorID != nil {
		edge := entities.CreationEdge{
			ID:            s.nextEdgeID,
			CreatorID:     *record.CreatorID,
			CreatedUserID: user.ID,
			PlainPassword: record.PlainPassword,
			CreatedAt:     record.CreatedAt,
		}
		s.nextEdgeID++
		s.creation[edge.ID] = edge
		s.plainByEdge[edge.ID] = record.PlainPassword
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, userID int64, patch ports.UserPatch, now time.Time) (entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	if patch.Email != nil {
		for _, other := range s.users {
			if other.user.ID != userID && strings.EqualFold(other.user.Email, *patch.Email) {
				return entities.User{}, domainerrors.ErrEmailTaken
			}
		}
		rec.user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		rec.user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		rec.user.LastName = *patch.LastName
	}
	if patch.Role != nil {
		rec.user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		rec.user.IsActive = *patch.IsActive
	}
	rec.user.UpdatedAt = now.UTC()
	s.users[userID] = rec
	return rec.user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]entities.User, 0, len(s.users))
	for _, rec := range s.users {
		users = append(users, rec.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) PasswordHash(ctx context.Context, userID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[userID]
	if !ok {
		return "", domainerrors.ErrUserNotFound
	}
	return rec.hash, nil
}

func (s *Store) UpdatePassword(ctx context.Context, userID int64, hash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	rec.hash = hash
	rec.user.UpdatedAt = now.UTC()
	s.users[userID] = rec
	return nil
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[userID]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	ts := at.UTC()
	rec.user.LastLogin = &ts
	s.users[userID] = rec
	return nil
}

func (s *Store) DeleteUserCascade(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return domainerrors.ErrUserNotFound
	}
	for id, edge := range s.creation {
		if edge.CreatorID == userID || edge.CreatedUserID == userID {
			delete(s.creation, id)
			delete(s.plainByEdge, id)
		}
	}
	for id, edge := range s.assignments {
		if edge.AssignerID == userID || edge.AssignedUserID == userID || edge.AssigneeID == userID {
			delete(s.assignments, id)
		}
	}
	for token, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, token)
		}
	}
	if token, ok := s.userToken[userID]; ok {
		delete(s.tokenUser, token)
		delete(s.userToken, userID)
	}
	delete(s.users, userID)
	return nil
}

func (s *Store) HasCreationEdge(ctx context.Context, creatorID int64, createdUserID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, edge := range s.creation {
		if edge.CreatorID == creatorID && edge.CreatedUserID == createdUserID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreatedUsers(ctx context.Context, creatorID int64) ([]ports.CreatedUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edges := make([]entities.CreationEdge, 0)
	for _, edge := range s.creation {
		if edge.CreatorID == creatorID {
			edges = append(edges, edge)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	items := make([]ports.CreatedUser, 0, len(edges))
	for _, edge := range edges {
		rec, ok := s.users[edge.CreatedUserID]
		if !ok {
			continue
		}
		items = append(items, ports.CreatedUser{
			User:          rec.user,
			PlainPassword: edge.PlainPassword,
			CreatedAt:     edge.CreatedAt,
		})
	}
	return items, nil
}

func (s *Store) UpsertAssignment(ctx context.Context, assignerID int64, assignedUserID int64, assigneeID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, edge := range s.assignments {
		if edge.AssignedUserID == assignedUserID && edge.AssigneeID == assigneeID {
			edge.AssignerID = assignerID
			edge.UpdatedAt = now.UTC()
			s.assignments[id] = edge
			return nil
		}
	}
	edge := entities.AssignmentEdge{
		ID:             s.nextAssignmentID,
		AssignerID:     assignerID,
		AssignedUserID: assignedUserID,
		AssigneeID:     assigneeID,
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}
	s.nextAssignmentID++
	s.assignments[edge.ID] = edge
	return nil
}

func (s *Store) DeleteAssignment(ctx context.Context, assignedUserID int64, assigneeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, edge := range s.assignments {
		if edge.AssignedUserID == assignedUserID && edge.AssigneeID == assigneeID {
			delete(s.assignments, id)
		}
	}
	return nil
}

func (s *Store) AssignmentsByAssigner(ctx context.Context, assignerID int64) ([]ports.AssignmentDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edges := make([]entities.AssignmentEdge, 0)
	for _, edge := range s.assignments {
		if edge.AssignerID == assignerID {
			edges = append(edges, edge)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	items := make([]ports.AssignmentDetail, 0, len(edges))
	for _, edge := range edges {
		rec, ok := s.users[edge.AssignedUserID]
		if !ok {
			continue
		}
		items = append(items, ports.AssignmentDetail{Edge: edge, AssignedUser: rec.user})
	}
	return items, nil
}

func (s *Store) UsersAssignedTo(ctx context.Context, assigneeID int64) ([]ports.AssignedUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edges := make([]entities.AssignmentEdge, 0)
	for _, edge := range s.assignments {
		if edge.AssigneeID == assigneeID {
			edges = append(edges, edge)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	items := make([]ports.AssignedUser, 0, len(edges))
	for _, edge := range edges {
		rec, ok := s.users[edge.AssignedUserID]
		if !ok {
			continue
		}
		items = append(items, ports.AssignedUser{
			User:       rec.user,
			AssignerID: edge.AssignerID,
			AssignedAt: edge.CreatedAt,
		})
	}
	return items, nil
}

func (s *Store) SubordinateIDs(ctx context.Context, userID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int64]struct{})
	out := make([]int64, 0)
	for _, edge := range s.creation {
		if edge.CreatorID == userID {
			if _, dup := seen[edge.CreatedUserID]; !dup {
				seen[edge.CreatedUserID] = struct{}{}
				out = append(out, edge.CreatedUserID)
			}
		}
	}
	for _, edge := range s.assignments {
		if edge.AssigneeID == userID {
			if _, dup := seen[edge.AssignedUserID]; !dup {
				seen[edge.AssignedUserID] = struct{}{}
				out = append(out, edge.AssignedUserID)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *Store) TeamMembers(ctx context.Context, userID int64, role roles.Role) ([]entities.User, error) {
	ids, err := s.SubordinateIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]entities.User, 0, len(ids))
	for _, id := range ids {
		rec, ok := s.users[id]
		if !ok || rec.user.Role != role {
			continue
		}
		users = append(users, rec.user)
	}
	return users, nil
}

func (s *Store) GetOrCreateToken(ctx context.Context, userID int64, candidate string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.userToken[userID]; ok {
		return existing, nil
	}
	s.userToken[userID] = candidate
	s.tokenUser[candidate] = userID
	return candidate, nil
}

func (s *Store) DeleteToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID, ok := s.tokenUser[token]; ok {
		delete(s.userToken, userID)
		delete(s.tokenUser, token)
	}
	return nil
}

func (s *Store) UserByToken(ctx context.Context, token string) (entities.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.tokenUser[token]
	if !ok {
		return entities.User{}, false, nil
	}
	rec, ok := s.users[userID]
	if !ok {
		return entities.User{}, false, nil
	}
	return rec.user, true, nil
}

func (s *Store) UpsertSession(ctx context.Context, session entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[session.Token]; ok {
		existing.UserID = session.UserID
		existing.IPAddress = session.IPAddress
		existing.UserAgent = session.UserAgent
		existing.IsActive = true
		existing.LogoutTime = nil
		existing.LastActivity = session.LastActivity.UTC()
		s.sessions[session.Token] = existing
		return nil
	}
	session.ID = s.nextSessionID
	s.nextSessionID++
	session.IsActive = true
	s.sessions[session.Token] = session
	return nil
}

func (s *Store) CloseSession(ctx context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil
	}
	ts := at.UTC()
	session.LogoutTime = &ts
	session.IsActive = false
	s.sessions[token] = session
	return nil
}

func (s *Store) TouchSession(ctx context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil
	}
	session.LastActivity = at.UTC()
	s.sessions[token] = session
	return nil
}

// Sessions exposes a snapshot for tests.
func (s *Store) Sessions() []entities.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entities.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
